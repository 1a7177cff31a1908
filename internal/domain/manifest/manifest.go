package manifest

import (
	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/types"
)

// Manifest is the on-disk widget descriptor. Every field is optional.
// Settings may be nested under "settings" or, for legacy manifests,
// flattened at the top level; the nested form wins when both are present.
type Manifest struct {
	Name        string          `json:"name" yaml:"name"`
	Icon        string          `json:"icon" yaml:"icon"`
	Description string          `json:"description" yaml:"description"`
	Version     string          `json:"version" yaml:"version"`
	Category    string          `json:"category" yaml:"category"`
	Main        string          `json:"main" yaml:"main"` // Entry document relative to the widget dir
	Settings    *ManifestLayout `json:"settings,omitempty" yaml:"settings,omitempty"`

	// Legacy flattened layout
	Position *types.Position `json:"position,omitempty" yaml:"position,omitempty"`
	Size     *types.Size     `json:"size,omitempty" yaml:"size,omitempty"`
	Autoload *bool           `json:"autoload,omitempty" yaml:"autoload,omitempty"`
}

// ManifestLayout is the nested settings block of a manifest
type ManifestLayout struct {
	Position *types.Position `json:"position,omitempty" yaml:"position,omitempty"`
	Size     *types.Size     `json:"size,omitempty" yaml:"size,omitempty"`
	Autoload *bool           `json:"autoload,omitempty" yaml:"autoload,omitempty"`
}

// Hint carries the caller-supplied fields used when a manifest is missing
// or does not set them
type Hint struct {
	Name        string
	Path        string
	Icon        string
	Description string
}

// settings resolves the manifest layout against the defaults
func (m *Manifest) settings() types.WidgetSettings {
	s := types.DefaultSettings()

	var nested ManifestLayout
	if m.Settings != nil {
		nested = *m.Settings
	}

	if p := firstPosition(nested.Position, m.Position); p != nil {
		s.Position = *p
	}
	if sz := firstSize(nested.Size, m.Size); sz != nil {
		if sz.Width > 0 {
			s.Size.Width = sz.Width
		}
		if sz.Height > 0 {
			s.Size.Height = sz.Height
		}
	}
	if a := firstBool(nested.Autoload, m.Autoload); a != nil {
		s.Autoload = *a
	}
	return s
}

func firstPosition(ps ...*types.Position) *types.Position {
	for _, p := range ps {
		if p != nil {
			return p
		}
	}
	return nil
}

func firstSize(ss ...*types.Size) *types.Size {
	for _, s := range ss {
		if s != nil {
			return s
		}
	}
	return nil
}

func firstBool(bs ...*bool) *bool {
	for _, b := range bs {
		if b != nil {
			return b
		}
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
