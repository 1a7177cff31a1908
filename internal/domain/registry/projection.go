package registry

import (
	"sort"
	"strings"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/types"
)

// Project derives the module and widget views from the registry contents.
// It is recomputed from scratch after every mutation.
func Project(records []types.WidgetRecord, modules []types.Module) types.Projection {
	all := make([]types.Module, 0, len(records)+len(modules))
	for _, rec := range records {
		all = append(all, types.ModuleFromWidget(rec))
	}
	all = append(all, modules...)

	groups := make(map[string][]types.Module)
	for _, m := range all {
		cat := m.Category
		if strings.TrimSpace(cat) == "" {
			cat = types.DefaultCategory
		}
		groups[cat] = append(groups[cat], m)
	}

	categories := make([]types.CategoryGroup, 0, len(groups))
	for cat, mods := range groups {
		sort.SliceStable(mods, func(i, j int) bool {
			a, b := strings.ToLower(mods[i].Name), strings.ToLower(mods[j].Name)
			if a != b {
				return a < b
			}
			return mods[i].ID < mods[j].ID
		})
		categories = append(categories, types.CategoryGroup{Category: cat, Modules: mods})
	}
	sort.Slice(categories, func(i, j int) bool {
		return strings.ToLower(categories[i].Category) < strings.ToLower(categories[j].Category)
	})

	widgets := make([]types.WidgetEntry, 0, len(records))
	for _, rec := range records {
		widgets = append(widgets, types.WidgetEntry{
			ID:       rec.ID,
			Name:     rec.Name,
			Icon:     rec.Icon,
			Category: rec.Category,
			Path:     rec.Path,
			Autoload: rec.Settings.Autoload,
			Position: rec.Settings.Position,
			Size:     rec.Settings.Size,
		})
	}

	return types.Projection{Categories: categories, Widgets: widgets}
}
