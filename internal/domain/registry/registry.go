package registry

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/domain/manifest"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/id"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/types"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/store"
)

// Recorder receives registry metrics
type Recorder interface {
	RecordRegistryOp(op, status string, duration time.Duration)
	SetRegistrySize(widgets, modules int)
}

// Listener is notified with the fresh projection after every mutation.
// Listeners run while the registry holds its mutation lock and must not
// call back into registry mutations.
type Listener func(types.Projection)

// Options configures a Registry
type Options struct {
	Logger    *zap.Logger
	Resolver  *manifest.Resolver
	Generator *id.Generator
	Recorder  Recorder
}

// Registry owns the canonical widget records and keeps them in step with
// the durable store. All mutations are serialized: each one re-reads the
// persisted collection, merges, writes the whole collection back and then
// rebuilds the in-memory views.
type Registry struct {
	store    store.Store
	logger   *zap.Logger
	resolver *manifest.Resolver
	gen      *id.Generator
	recorder Recorder

	mutMu    sync.Mutex // Serializes store read-modify-write cycles
	opFailed bool       // Guarded by mutMu

	mu         sync.RWMutex // Protects the fields below
	order      []string
	byID       map[string]types.WidgetRecord
	modules    []types.Module
	projection types.Projection

	listenerMu sync.Mutex
	listeners  map[int]Listener
	nextListen int
}

// New creates a registry over s. Call Load to populate it.
func New(s store.Store, opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = manifest.NewResolver(logger)
	}
	gen := opts.Generator
	if gen == nil {
		gen = id.Default()
	}

	r := &Registry{
		store:     s,
		logger:    logger,
		resolver:  resolver,
		gen:       gen,
		recorder:  opts.Recorder,
		byID:      make(map[string]types.WidgetRecord),
		listeners: make(map[int]Listener),
	}
	r.projection = Project(nil, nil)
	return r
}

// Load replaces the in-memory state with the persisted collections.
// On store failure the current state is kept and the failure is logged.
func (r *Registry) Load(ctx context.Context) {
	r.mutMu.Lock()
	defer r.mutMu.Unlock()
	defer r.observe("load", time.Now())()

	records, err := r.readWidgets(ctx)
	if err != nil {
		r.logger.Warn("Failed to load widgets, keeping current state", zap.Error(err))
		r.fail()
		return
	}
	modules, err := r.readModules(ctx)
	if err != nil {
		r.logger.Warn("Failed to load modules, keeping current modules", zap.Error(err))
		modules = nil
	}

	r.rebuild(records, modules)
	r.logger.Info("Registry loaded",
		zap.Int("widgets", len(records)),
		zap.Int("modules", len(modules)),
	)
}

// Add normalizes rec and stores it. A stored record with the same name
// (or, failing that, the same path) is replaced in place; otherwise the
// record is appended. Returns the stored record, or nil when the record
// could not be persisted.
func (r *Registry) Add(ctx context.Context, rec types.WidgetRecord) *types.WidgetRecord {
	r.mutMu.Lock()
	defer r.mutMu.Unlock()
	defer r.observe("add", time.Now())()

	rec = Normalize(rec)
	if rec.Name == "" {
		r.logger.Warn("Refusing to add widget without a name", zap.String("path", rec.Path))
		r.fail()
		return nil
	}

	records, err := r.readWidgets(ctx)
	if err != nil {
		r.logger.Warn("Failed to read widgets before add", zap.String("name", rec.Name), zap.Error(err))
		r.fail()
		return nil
	}

	idx := indexByName(records, rec.Name)
	if idx < 0 && rec.Path != "" {
		idx = indexByPath(records, rec.Path)
	}

	if rec.ID == "" {
		if idx >= 0 {
			rec.ID = records[idx].ID
		} else {
			rec.ID = r.gen.GenerateStamped(id.WidgetPrefix)
		}
	}
	if other := indexByID(records, rec.ID); other >= 0 && other != idx {
		r.logger.Warn("Widget id already belongs to another record",
			zap.String("id", rec.ID),
			zap.String("name", rec.Name),
			zap.String("existing", records[other].Name),
		)
		r.fail()
		return nil
	}

	rec.LastUpdated = r.gen.Stamp()
	if idx >= 0 {
		records[idx] = rec
	} else {
		records = append(records, rec)
	}

	if err := store.SetJSON(ctx, r.store, store.KeyWidgets, records); err != nil {
		r.logger.Warn("Failed to persist widget", zap.String("name", rec.Name), zap.Error(err))
		r.fail()
		return nil
	}

	r.rebuild(records, nil)
	r.logger.Info("Widget stored",
		zap.String("id", rec.ID),
		zap.String("name", rec.Name),
		zap.Bool("replaced", idx >= 0),
	)
	out := rec
	return &out
}

// UpdateSettings shallow-merges patch into the persisted settings of id.
// Unknown ids are a logged no-op: nothing is written.
func (r *Registry) UpdateSettings(ctx context.Context, widgetID string, patch types.SettingsPatch) (*types.WidgetRecord, bool) {
	return r.modifySettings(ctx, "update_settings", widgetID, func(types.WidgetSettings) types.SettingsPatch {
		return patch
	})
}

// ToggleAutoload flips the persisted autoload flag of widgetID inside a
// single read-modify-write cycle, so rapid toggles never lose an update.
func (r *Registry) ToggleAutoload(ctx context.Context, widgetID string) (*types.WidgetRecord, bool) {
	return r.modifySettings(ctx, "toggle_autoload", widgetID, func(cur types.WidgetSettings) types.SettingsPatch {
		flipped := !cur.Autoload
		return types.SettingsPatch{Autoload: &flipped}
	})
}

func (r *Registry) modifySettings(ctx context.Context, op, widgetID string, patchFor func(types.WidgetSettings) types.SettingsPatch) (*types.WidgetRecord, bool) {
	r.mutMu.Lock()
	defer r.mutMu.Unlock()
	defer r.observe(op, time.Now())()

	records, err := r.readWidgets(ctx)
	if err != nil {
		r.logger.Warn("Failed to read widgets", zap.String("op", op), zap.String("id", widgetID), zap.Error(err))
		r.fail()
		return nil, false
	}

	idx := indexByID(records, widgetID)
	if idx < 0 {
		r.logger.Warn("Widget not found", zap.String("op", op), zap.String("id", widgetID))
		return nil, false
	}

	rec := records[idx]
	rec.Settings = patchFor(rec.Settings).Apply(rec.Settings)
	rec.LastUpdated = r.gen.Stamp()
	records[idx] = rec

	if err := store.SetJSON(ctx, r.store, store.KeyWidgets, records); err != nil {
		r.logger.Warn("Failed to persist settings", zap.String("op", op), zap.String("id", widgetID), zap.Error(err))
		r.fail()
		return nil, false
	}

	r.rebuild(records, nil)
	out := rec
	return &out, true
}

// Cleanup runs the dedup pass over the persisted collection and returns
// the records it discarded
func (r *Registry) Cleanup(ctx context.Context) []types.WidgetRecord {
	r.mutMu.Lock()
	defer r.mutMu.Unlock()
	defer r.observe("cleanup", time.Now())()

	records, err := r.readWidgets(ctx)
	if err != nil {
		r.logger.Warn("Failed to read widgets for cleanup", zap.Error(err))
		r.fail()
		return nil
	}

	kept, removed := Dedup(records)
	if len(removed) > 0 {
		if err := store.SetJSON(ctx, r.store, store.KeyWidgets, kept); err != nil {
			r.logger.Warn("Failed to persist deduplicated widgets", zap.Error(err))
			r.fail()
			return nil
		}
	}

	r.rebuild(kept, nil)
	r.logger.Info("Registry cleanup complete",
		zap.Int("kept", len(kept)),
		zap.Int("removed", len(removed)),
	)
	return removed
}

// Reset clears every widget and module from the store and memory
func (r *Registry) Reset(ctx context.Context) bool {
	r.mutMu.Lock()
	defer r.mutMu.Unlock()
	defer r.observe("reset", time.Now())()

	for _, key := range []string{store.KeyWidgets, store.KeyModules} {
		if err := r.store.Delete(ctx, key); err != nil {
			r.logger.Warn("Failed to reset store key", zap.String("key", key), zap.Error(err))
			r.fail()
			return false
		}
	}

	r.rebuild([]types.WidgetRecord{}, []types.Module{})
	r.logger.Info("Registry reset")
	return true
}

// Get returns a copy of the record with the given id
func (r *Registry) Get(widgetID string) (types.WidgetRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[widgetID]
	return rec, ok
}

// Records returns all records in store order
func (r *Registry) Records() []types.WidgetRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.WidgetRecord, 0, len(r.order))
	for _, wid := range r.order {
		out = append(out, r.byID[wid])
	}
	return out
}

// Projection returns the current module and widget views
func (r *Registry) Projection() types.Projection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.projection
}

// Stats returns registry statistics
func (r *Registry) Stats() types.RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := types.RegistryStats{
		TotalWidgets: len(r.order),
		TotalModules: len(r.order) + len(r.modules),
		Categories:   make(map[string]int),
	}
	for _, rec := range r.byID {
		stats.Categories[rec.Category]++
		if rec.Settings.Autoload {
			stats.Autoload++
		}
		if rec.LastUpdated > stats.LastUpdated {
			stats.LastUpdated = rec.LastUpdated
		}
	}
	for _, m := range r.modules {
		stats.Categories[m.Category]++
	}
	return stats
}

// Subscribe registers fn for projection updates and returns a function
// that removes it
func (r *Registry) Subscribe(fn Listener) func() {
	r.listenerMu.Lock()
	defer r.listenerMu.Unlock()

	key := r.nextListen
	r.nextListen++
	r.listeners[key] = fn

	return func() {
		r.listenerMu.Lock()
		delete(r.listeners, key)
		r.listenerMu.Unlock()
	}
}

// rebuild swaps in new collections and recomputes the projection.
// A nil modules slice keeps the current modules. Caller holds mutMu.
func (r *Registry) rebuild(records []types.WidgetRecord, modules []types.Module) {
	r.mu.Lock()
	r.order = make([]string, 0, len(records))
	r.byID = make(map[string]types.WidgetRecord, len(records))
	for _, rec := range records {
		if _, dup := r.byID[rec.ID]; dup {
			r.logger.Warn("Duplicate widget id in store, keeping first", zap.String("id", rec.ID))
			continue
		}
		r.order = append(r.order, rec.ID)
		r.byID[rec.ID] = rec
	}
	if modules != nil {
		r.modules = modules
	}

	ordered := make([]types.WidgetRecord, 0, len(r.order))
	for _, wid := range r.order {
		ordered = append(ordered, r.byID[wid])
	}
	r.projection = Project(ordered, r.modules)
	projection := r.projection
	widgets, mods := len(r.order), len(r.modules)
	r.mu.Unlock()

	if r.recorder != nil {
		r.recorder.SetRegistrySize(widgets, mods)
	}

	r.listenerMu.Lock()
	listeners := make([]Listener, 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.listenerMu.Unlock()

	for _, fn := range listeners {
		fn(projection)
	}
}

func (r *Registry) readWidgets(ctx context.Context) ([]types.WidgetRecord, error) {
	var records []types.WidgetRecord
	if err := store.GetJSON(ctx, r.store, store.KeyWidgets, &records); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []types.WidgetRecord{}, nil
		}
		return nil, err
	}
	if records == nil {
		records = []types.WidgetRecord{}
	}
	return records, nil
}

func (r *Registry) readModules(ctx context.Context) ([]types.Module, error) {
	var modules []types.Module
	if err := store.GetJSON(ctx, r.store, store.KeyModules, &modules); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []types.Module{}, nil
		}
		return nil, err
	}
	if modules == nil {
		modules = []types.Module{}
	}
	return modules, nil
}

// observe times an operation; fail marks it failed before it returns
func (r *Registry) observe(op string, start time.Time) func() {
	r.opFailed = false
	return func() {
		if r.recorder == nil {
			return
		}
		status := "ok"
		if r.opFailed {
			status = "error"
		}
		r.recorder.RecordRegistryOp(op, status, time.Since(start))
	}
}

func (r *Registry) fail() {
	r.opFailed = true
}

func indexByName(records []types.WidgetRecord, name string) int {
	for i, rec := range records {
		if rec.Name == name {
			return i
		}
	}
	return -1
}

func indexByPath(records []types.WidgetRecord, path string) int {
	for i, rec := range records {
		if rec.Path == path {
			return i
		}
	}
	return -1
}

func indexByID(records []types.WidgetRecord, widgetID string) int {
	for i, rec := range records {
		if rec.ID == widgetID {
			return i
		}
	}
	return -1
}
