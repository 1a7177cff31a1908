// Package registry owns the canonical set of widget records.
//
// Records live in the durable store under the "widgets" key; non-widget
// modules (local HTML documents, YouTube embeds) live under "modules".
// Every mutation re-reads the persisted collection, merges, writes the
// whole collection back and then rebuilds the in-memory views, all while
// holding a single mutation lock.
//
// Components:
//   - Registry: load, add, settings updates, cleanup, reset, modules
//   - Dedup: keep the newest record per name
//   - Project: category-grouped module view and flat widget view
//   - ImportFromFolder / Scan: discover widget directories on disk
//
// Records are identified for deduplication by name. Two different widgets
// that share a display name collapse into one on the next cleanup.
//
// Example Usage:
//
//	reg := registry.New(st, registry.Options{Logger: logger})
//	reg.Load(ctx)
//	rec := reg.Add(ctx, types.WidgetRecord{Name: "Clock", Path: "widgets/clock/index.html"})
//	removed := reg.Cleanup(ctx)
package registry
