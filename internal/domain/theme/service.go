package theme

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/store"
)

// Service persists the current theme under the store's theme key
type Service struct {
	store  store.Store
	logger *zap.Logger
}

// NewService creates a theme service
func NewService(s store.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: s, logger: logger}
}

// Current returns the stored theme, or the dark preset when none is stored
// or the stored one cannot be read
func (s *Service) Current(ctx context.Context) Theme {
	var t Theme
	err := store.GetJSON(ctx, s.store, store.KeyTheme, &t)
	if err == nil && t.Validate() == nil {
		return t
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("Failed to read theme, using default", zap.Error(err))
	}
	def, _ := Preset(TypeDark)
	return def
}

// Set validates and persists t
func (s *Service) Set(ctx context.Context, t Theme) (Theme, error) {
	if err := t.Validate(); err != nil {
		return Theme{}, err
	}
	if err := store.SetJSON(ctx, s.store, store.KeyTheme, t); err != nil {
		return Theme{}, fmt.Errorf("failed to persist theme: %w", err)
	}
	s.logger.Info("Theme set", zap.String("id", t.ID), zap.String("type", t.Type))
	return t, nil
}

// SetPreset activates a built-in theme
func (s *Service) SetPreset(ctx context.Context, themeID string) (Theme, error) {
	t, ok := Preset(themeID)
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q", themeID)
	}
	return s.Set(ctx, t)
}

// ApplyPalette derives a theme from palette and persists it
func (s *Service) ApplyPalette(ctx context.Context, palette []string) (Theme, error) {
	t, err := Derive(palette)
	if err != nil {
		return Theme{}, err
	}
	return s.Set(ctx, t)
}
