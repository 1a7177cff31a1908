package types

// Default values applied when a widget manifest or API caller leaves a field out.
const (
	DefaultCategory    = "Widgets"
	DefaultIcon        = "🧩"
	DefaultDescription = "No description provided"
	DefaultVersion     = "1.0.0"
	DefaultWidth       = 250
	DefaultHeight      = 100
	DefaultX           = 20
	DefaultY           = 20
)

// Position represents a window position on screen
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Size represents window dimensions
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// WidgetSettings holds the independently mutable part of a widget record
type WidgetSettings struct {
	Position Position `json:"position"`
	Size     Size     `json:"size"`
	Autoload bool     `json:"autoload"`
}

// DefaultSettings returns the settings a widget gets when nothing else is known
func DefaultSettings() WidgetSettings {
	return WidgetSettings{
		Position: Position{X: DefaultX, Y: DefaultY},
		Size:     Size{Width: DefaultWidth, Height: DefaultHeight},
		Autoload: false,
	}
}

// WidgetRecord is the persisted representation of one widget
type WidgetRecord struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"` // Dedup key
	Path        string         `json:"path"` // widgets/<dir>/<entry>
	Category    string         `json:"category"`
	Icon        string         `json:"icon"`
	Description string         `json:"description"`
	Version     string         `json:"version"`
	Settings    WidgetSettings `json:"settings"`
	LastUpdated int64          `json:"lastUpdated"` // Unix millis, merge tie-breaker
}

// SettingsPatch is a partial settings update. Nil fields are left untouched.
type SettingsPatch struct {
	Position *Position `json:"position,omitempty"`
	Size     *Size     `json:"size,omitempty"`
	Autoload *bool     `json:"autoload,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p SettingsPatch) IsEmpty() bool {
	return p.Position == nil && p.Size == nil && p.Autoload == nil
}

// Apply shallow-merges the patch into s and returns the result
func (p SettingsPatch) Apply(s WidgetSettings) WidgetSettings {
	if p.Position != nil {
		s.Position = *p.Position
	}
	if p.Size != nil {
		s.Size = *p.Size
	}
	if p.Autoload != nil {
		s.Autoload = *p.Autoload
	}
	return s
}
