// Package store provides the durable key/value store backing the widget shell.
//
// Values are JSON documents keyed by string. The fixed default schema holds:
//   - widgets: array of widget records
//   - modules: array of non-widget modules
//   - widgetBasePath: directory the "widgets/" path root resolves to
//
// Implementations:
//   - File: one JSON document on disk, rewritten atomically on every write
//   - Memory: map-backed, for tests and ephemeral shells
//   - Guarded: wraps either with a per-call timeout and a circuit breaker
//
// Callers treat the store as a transactional map: every write replaces the
// whole value under a key, there are no field-level updates.
//
// Example Usage:
//
//	file, err := store.OpenFile(path, logger)
//	s := store.NewGuarded(file, store.GuardOptions{Timeout: 5 * time.Second})
//	var records []types.WidgetRecord
//	err = store.GetJSON(ctx, s, store.KeyWidgets, &records)
package store
