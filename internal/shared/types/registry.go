package types

// ModuleType discriminates what a module launches
type ModuleType string

const (
	ModuleTypeWidget       ModuleType = "widget"
	ModuleTypeLocalHTML    ModuleType = "local-html"
	ModuleTypeYouTubeEmbed ModuleType = "youtube-embed"
)

// Valid reports whether t is a known module type
func (t ModuleType) Valid() bool {
	switch t {
	case ModuleTypeWidget, ModuleTypeLocalHTML, ModuleTypeYouTubeEmbed:
		return true
	}
	return false
}

// Module is anything the shell can launch. Widgets are projected into
// modules at read time; the other types are persisted on their own.
type Module struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        ModuleType `json:"type"`
	Category    string     `json:"category"`
	Icon        string     `json:"icon"`
	Description string     `json:"description"`
	Path        string     `json:"path,omitempty"`     // widget and local-html
	VideoID     string     `json:"videoId,omitempty"`  // youtube-embed
	Position    *Position  `json:"position,omitempty"` // initial window position
	LastUpdated int64      `json:"lastUpdated"`
}

// ModuleFromWidget projects a widget record into the module view
func ModuleFromWidget(w WidgetRecord) Module {
	pos := w.Settings.Position
	return Module{
		ID:          w.ID,
		Name:        w.Name,
		Type:        ModuleTypeWidget,
		Category:    w.Category,
		Icon:        w.Icon,
		Description: w.Description,
		Path:        w.Path,
		Position:    &pos,
		LastUpdated: w.LastUpdated,
	}
}

// CategoryGroup is one category bucket of the module view
type CategoryGroup struct {
	Category string   `json:"category"`
	Modules  []Module `json:"modules"`
}

// WidgetEntry is one row of the widget view with its controls
type WidgetEntry struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Icon     string   `json:"icon"`
	Category string   `json:"category"`
	Path     string   `json:"path"`
	Autoload bool     `json:"autoload"`
	Position Position `json:"position"`
	Size     Size     `json:"size"`
}

// Projection holds the derived, read-only views of the registry
type Projection struct {
	Categories []CategoryGroup `json:"categories"`
	Widgets    []WidgetEntry   `json:"widgets"`
}

// RegistryStats contains registry statistics
type RegistryStats struct {
	TotalWidgets int            `json:"total_widgets"`
	TotalModules int            `json:"total_modules"`
	Autoload     int            `json:"autoload"`
	Categories   map[string]int `json:"categories"`
	LastUpdated  int64          `json:"last_updated,omitempty"`
}
