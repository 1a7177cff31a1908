package registry

import (
	"strings"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/paths"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/types"
)

// Normalize fills display defaults, normalizes the path and merges default
// settings field by field: a zero position, width or height is unset and
// takes its default. Autoload defaults to false, its zero value.
// Normalize is idempotent.
func Normalize(rec types.WidgetRecord) types.WidgetRecord {
	rec.Name = strings.TrimSpace(rec.Name)
	rec.Path = paths.NormalizeWidgetPath(rec.Path)

	if strings.TrimSpace(rec.Category) == "" {
		rec.Category = types.DefaultCategory
	}
	if rec.Icon == "" {
		rec.Icon = types.DefaultIcon
	}
	if rec.Description == "" {
		rec.Description = types.DefaultDescription
	}
	if rec.Version == "" {
		rec.Version = types.DefaultVersion
	}

	if rec.Settings.Position == (types.Position{}) {
		rec.Settings.Position = types.Position{X: types.DefaultX, Y: types.DefaultY}
	}
	if rec.Settings.Size.Width <= 0 {
		rec.Settings.Size.Width = types.DefaultWidth
	}
	if rec.Settings.Size.Height <= 0 {
		rec.Settings.Size.Height = types.DefaultHeight
	}
	return rec
}
