package theme

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// rgb is an sRGB palette color
type rgb struct {
	colorful.Color
}

// parseHex accepts #rgb and #rrggbb with or without the leading '#'
func parseHex(s string) (rgb, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 || strings.Trim(strings.ToLower(h), "0123456789abcdef") != "" {
		return rgb{}, fmt.Errorf("invalid color %q", s)
	}
	c, err := colorful.Hex("#" + h)
	if err != nil {
		return rgb{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return rgb{c}, nil
}

func (c rgb) hex() string {
	return c.Clamped().Hex()
}

// luminance is the WCAG relative luminance in [0,1]
func (c rgb) luminance() float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// saturation is the HSL saturation in [0,1]
func (c rgb) saturation() float64 {
	_, s, _ := c.Hsl()
	return s
}

// mix blends c toward o by t in [0,1]
func (c rgb) mix(o rgb, t float64) rgb {
	return rgb{c.BlendRgb(o.Color, t)}
}

func contrast(a, b rgb) float64 {
	la, lb := a.luminance(), b.luminance()
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

var (
	white = rgb{colorful.Color{R: 1, G: 1, B: 1}}
	black = rgb{colorful.Color{}}
)
