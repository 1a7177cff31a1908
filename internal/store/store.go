package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/infrastructure/resilience"
)

// Schema keys
const (
	KeyWidgets        = "widgets"
	KeyModules        = "modules"
	KeyWidgetBasePath = "widgetBasePath"
	KeyTheme          = "theme"
)

var (
	// ErrNotFound is returned by Get for keys that are neither set nor part of the default schema
	ErrNotFound = errors.New("key not found")
	// ErrInvalidValue is returned by Set when the value is not valid JSON
	ErrInvalidValue = errors.New("value is not valid JSON")
	// ErrTimeout is returned when a guarded call exceeds its bound
	ErrTimeout = resilience.ErrTimeout
)

// Store is a process-wide key/value persistence layer. Values are raw JSON
// documents; every write replaces the whole value stored under the key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// Defaults returns the fixed default schema. Deleting one of these keys
// restores its default value.
func Defaults() map[string][]byte {
	return map[string][]byte{
		KeyWidgets:        []byte(`[]`),
		KeyModules:        []byte(`[]`),
		KeyWidgetBasePath: []byte(`""`),
	}
}

// GetJSON reads key and decodes it into out
func GetJSON(ctx context.Context, s Store, key string, out interface{}) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key
func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
