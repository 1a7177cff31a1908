package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/id"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/types"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/utils"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/store"
)

// ErrInvalidModule is returned when a module fails validation
var ErrInvalidModule = errors.New("invalid module")

// Modules returns the persisted non-widget modules
func (r *Registry) Modules() []types.Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.Module, len(r.modules))
	copy(out, r.modules)
	return out
}

// Module looks up a launchable module by id. Widgets are returned in
// their projected module form.
func (r *Registry) Module(moduleID string) (types.Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rec, ok := r.byID[moduleID]; ok {
		return types.ModuleFromWidget(rec), true
	}
	for _, m := range r.modules {
		if m.ID == moduleID {
			return m, true
		}
	}
	return types.Module{}, false
}

// AddModule validates and persists a local-html or youtube-embed module.
// Widget modules come from Add and are rejected here.
func (r *Registry) AddModule(ctx context.Context, m types.Module) (*types.Module, error) {
	if err := validateModule(&m); err != nil {
		return nil, err
	}

	r.mutMu.Lock()
	defer r.mutMu.Unlock()
	defer r.observe("add_module", time.Now())()

	modules, err := r.readModules(ctx)
	if err != nil {
		r.fail()
		return nil, fmt.Errorf("failed to read modules: %w", err)
	}

	if m.ID == "" {
		m.ID = r.gen.GenerateStamped(id.ModulePrefix)
	}
	m.LastUpdated = r.gen.Stamp()

	replaced := false
	for i := range modules {
		if modules[i].ID == m.ID {
			modules[i] = m
			replaced = true
			break
		}
	}
	if !replaced {
		modules = append(modules, m)
	}

	if err := store.SetJSON(ctx, r.store, store.KeyModules, modules); err != nil {
		r.fail()
		return nil, fmt.Errorf("failed to persist module: %w", err)
	}

	r.rebuild(r.recordsLocked(), modules)
	r.logger.Info("Module stored",
		zap.String("id", m.ID),
		zap.String("type", string(m.Type)),
		zap.Bool("replaced", replaced),
	)
	return &m, nil
}

// RemoveModule deletes a non-widget module. Returns false if it was absent.
func (r *Registry) RemoveModule(ctx context.Context, moduleID string) (bool, error) {
	r.mutMu.Lock()
	defer r.mutMu.Unlock()
	defer r.observe("remove_module", time.Now())()

	modules, err := r.readModules(ctx)
	if err != nil {
		r.fail()
		return false, fmt.Errorf("failed to read modules: %w", err)
	}

	kept := modules[:0]
	found := false
	for _, m := range modules {
		if m.ID == moduleID {
			found = true
			continue
		}
		kept = append(kept, m)
	}
	if !found {
		return false, nil
	}

	if err := store.SetJSON(ctx, r.store, store.KeyModules, kept); err != nil {
		r.fail()
		return false, fmt.Errorf("failed to persist modules: %w", err)
	}

	r.rebuild(r.recordsLocked(), kept)
	r.logger.Info("Module removed", zap.String("id", moduleID))
	return true, nil
}

// BasePath returns the folder the stored widget paths are relative to
func (r *Registry) BasePath(ctx context.Context) string {
	var base string
	if err := store.GetJSON(ctx, r.store, store.KeyWidgetBasePath, &base); err != nil {
		r.logger.Warn("Failed to read widget base path", zap.Error(err))
		return ""
	}
	return base
}

// SetBasePath persists the widget base path
func (r *Registry) SetBasePath(ctx context.Context, base string) error {
	r.mutMu.Lock()
	defer r.mutMu.Unlock()

	if err := store.SetJSON(ctx, r.store, store.KeyWidgetBasePath, base); err != nil {
		return fmt.Errorf("failed to persist widget base path: %w", err)
	}
	r.logger.Info("Widget base path set", zap.String("path", base))
	return nil
}

// recordsLocked snapshots the in-memory records. Caller holds mutMu.
func (r *Registry) recordsLocked() []types.WidgetRecord {
	return r.Records()
}

func validateModule(m *types.Module) error {
	m.Name = strings.TrimSpace(m.Name)
	if err := utils.ValidateName(m.Name, "name"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidModule, err)
	}
	if m.Category == "" {
		m.Category = types.DefaultCategory
	}
	if m.Icon == "" {
		m.Icon = types.DefaultIcon
	}

	switch m.Type {
	case types.ModuleTypeLocalHTML:
		if err := utils.ValidatePath(m.Path, "path", true); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidModule, err)
		}
		m.Path = strings.ReplaceAll(m.Path, "\\", "/")
	case types.ModuleTypeYouTubeEmbed:
		if err := utils.ValidateVideoID(m.VideoID); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidModule, err)
		}
	case types.ModuleTypeWidget:
		return fmt.Errorf("%w: widgets are added through the widget registry", ErrInvalidModule)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidModule, m.Type)
	}
	return nil
}
