package theme

import (
	"errors"
	"fmt"
)

// ErrEmptyPalette is returned by Derive when no usable color is given
var ErrEmptyPalette = errors.New("palette has no usable colors")

// Theme types
const (
	TypeDark   = "dark"
	TypeLight  = "light"
	TypeCustom = "custom"
)

// Theme represents a UI theme
type Theme struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Type        string            `json:"type"` // "dark", "light"
	Colors      map[string]string `json:"colors"`
	Palette     []string          `json:"palette,omitempty"` // Source colors when derived
}

// Color keys every theme carries
var ColorKeys = []string{"background", "surface", "primary", "accent", "text", "textMuted", "border"}

// Validate checks that every color key holds a parseable color
func (t Theme) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("theme id is required")
	}
	for _, key := range ColorKeys {
		v, ok := t.Colors[key]
		if !ok {
			return fmt.Errorf("theme %s is missing color %q", t.ID, key)
		}
		if _, err := parseHex(v); err != nil {
			return fmt.Errorf("theme %s color %q: %w", t.ID, key, err)
		}
	}
	return nil
}

// Derive builds a theme from a palette of hex colors. The darkest color
// becomes the background, the most saturated one the accent, and the text
// color is whichever of white or black contrasts better. Unparseable
// entries are skipped.
func Derive(palette []string) (Theme, error) {
	colors := make([]rgb, 0, len(palette))
	kept := make([]string, 0, len(palette))
	for _, p := range palette {
		c, err := parseHex(p)
		if err != nil {
			continue
		}
		colors = append(colors, c)
		kept = append(kept, c.hex())
	}
	if len(colors) == 0 {
		return Theme{}, ErrEmptyPalette
	}

	bg, accent := colors[0], colors[0]
	for _, c := range colors[1:] {
		if c.luminance() < bg.luminance() {
			bg = c
		}
		if c.saturation() > accent.saturation() {
			accent = c
		}
	}

	text := white
	if contrast(black, bg) > contrast(white, bg) {
		text = black
	}

	kind := TypeDark
	if bg.luminance() > 0.5 {
		kind = TypeLight
	}

	// primary is the most saturated color other than the accent, falling
	// back to the accent itself
	primary := accent
	for _, c := range colors {
		if c != accent && c != bg && (primary == accent || c.saturation() > primary.saturation()) {
			primary = c
		}
	}

	return Theme{
		ID:          TypeCustom,
		Name:        "Derived",
		Description: "Derived from palette",
		Type:        kind,
		Colors: map[string]string{
			"background": bg.hex(),
			"surface":    bg.mix(text, 0.08).hex(),
			"primary":    primary.hex(),
			"accent":     accent.hex(),
			"text":       text.hex(),
			"textMuted":  text.mix(bg, 0.4).hex(),
			"border":     bg.mix(text, 0.2).hex(),
		},
		Palette: kept,
	}, nil
}

// Presets returns the built-in themes
func Presets() []Theme {
	return []Theme{
		{
			ID:          "dark",
			Name:        "Dark",
			Description: "Default dark theme",
			Type:        TypeDark,
			Colors: map[string]string{
				"background": "#1a1a1a",
				"surface":    "#252525",
				"primary":    "#3b82f6",
				"accent":     "#10b981",
				"text":       "#ffffff",
				"textMuted":  "#a0a0a0",
				"border":     "#404040",
			},
		},
		{
			ID:          "light",
			Name:        "Light",
			Description: "Default light theme",
			Type:        TypeLight,
			Colors: map[string]string{
				"background": "#ffffff",
				"surface":    "#f5f5f5",
				"primary":    "#3b82f6",
				"accent":     "#10b981",
				"text":       "#1a1a1a",
				"textMuted":  "#666666",
				"border":     "#e0e0e0",
			},
		},
	}
}

// Preset returns a built-in theme by id
func Preset(themeID string) (Theme, bool) {
	for _, t := range Presets() {
		if t.ID == themeID {
			return t, true
		}
	}
	return Theme{}, false
}
