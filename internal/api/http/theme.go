package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/domain/theme"
)

// ThemeRequest selects a preset, derives from a palette, or sets a full theme
type ThemeRequest struct {
	Preset  string       `json:"preset,omitempty"`
	Palette []string     `json:"palette,omitempty"`
	Theme   *theme.Theme `json:"theme,omitempty"`
}

// GetTheme returns the active theme and the presets
func (h *Handlers) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"theme":   h.themes.Current(c.Request.Context()),
		"presets": theme.Presets(),
	})
}

// SetTheme changes the active theme
func (h *Handlers) SetTheme(c *gin.Context) {
	var req ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	var (
		t   theme.Theme
		err error
	)
	switch {
	case req.Preset != "":
		t, err = h.themes.SetPreset(ctx, req.Preset)
	case len(req.Palette) > 0:
		t, err = h.themes.ApplyPalette(ctx, req.Palette)
	case req.Theme != nil:
		t, err = h.themes.Set(ctx, *req.Theme)
	default:
		err = errors.New("one of preset, palette or theme is required")
	}
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
