package lifecycle

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/domain/registry"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/types"
)

// YouTubeEmbedBase is the URL prefix for youtube-embed modules
const YouTubeEmbedBase = "https://www.youtube.com/embed/"

// Launcher is the window collaborator launch requests are dispatched to
type Launcher interface {
	Launch(ctx context.Context, req types.LaunchRequest) (*types.Window, error)
	FindByModule(moduleID string) (*types.Window, bool)
}

// Recorder receives launch metrics
type Recorder interface {
	RecordLaunch(kind, status string)
}

// CleanupReport is the outcome of a registry cleanup as seen by the
// lifecycle: windows still running for removed records are orphans
type CleanupReport struct {
	Removed  []types.WidgetRecord `json:"removed"`
	Orphaned []types.Window       `json:"orphaned"`
}

// Controller derives launch actions from registry records
type Controller struct {
	registry *registry.Registry
	launcher Launcher
	logger   *zap.Logger
	recorder Recorder
}

// NewController creates a lifecycle controller
func NewController(reg *registry.Registry, launcher Launcher, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		registry: reg,
		launcher: launcher,
		logger:   logger,
	}
}

// WithMetrics adds launch metrics to the controller
func (c *Controller) WithMetrics(recorder Recorder) *Controller {
	c.recorder = recorder
	return c
}

// BootSweep launches every record with autoload set, in registry order.
// Returns the number of launches dispatched.
func (c *Controller) BootSweep(ctx context.Context) int {
	launched := 0
	for _, rec := range c.registry.Records() {
		if !rec.Settings.Autoload {
			continue
		}
		if err := ctx.Err(); err != nil {
			c.logger.Warn("Boot sweep interrupted", zap.Int("launched", launched), zap.Error(err))
			return launched
		}
		if c.dispatchWidget(ctx, rec) {
			launched++
		}
	}
	c.logger.Info("Boot sweep complete", zap.Int("launched", launched))
	return launched
}

// Launch dispatches the record with the given id. Unknown ids are logged
// and ignored.
func (c *Controller) Launch(ctx context.Context, widgetID string) bool {
	rec, ok := c.registry.Get(widgetID)
	if !ok {
		c.logger.Warn("Launch requested for unknown widget", zap.String("id", widgetID))
		c.record("widget", "not_found")
		return false
	}
	return c.dispatchWidget(ctx, rec)
}

// LaunchModule dispatches any module type
func (c *Controller) LaunchModule(ctx context.Context, moduleID string) bool {
	m, ok := c.registry.Module(moduleID)
	if !ok {
		c.logger.Warn("Launch requested for unknown module", zap.String("id", moduleID))
		c.record("module", "not_found")
		return false
	}

	req, err := requestFor(m)
	if err != nil {
		c.logger.Warn("Module cannot be launched", zap.String("id", moduleID), zap.Error(err))
		c.record(string(m.Type), "invalid")
		return false
	}
	return c.dispatch(ctx, string(m.Type), req)
}

// ToggleAutostart flips the persisted autoload flag of a record and
// returns the new value
func (c *Controller) ToggleAutostart(ctx context.Context, widgetID string) (bool, bool) {
	rec, ok := c.registry.ToggleAutoload(ctx, widgetID)
	if !ok {
		return false, false
	}
	c.logger.Info("Autostart toggled",
		zap.String("id", widgetID),
		zap.Bool("autoload", rec.Settings.Autoload),
	)
	return rec.Settings.Autoload, true
}

// Cleanup runs the registry dedup pass and reports windows that are still
// open for the records it removed. Open windows do not pin records.
func (c *Controller) Cleanup(ctx context.Context) CleanupReport {
	report := CleanupReport{
		Removed:  c.registry.Cleanup(ctx),
		Orphaned: []types.Window{},
	}
	if report.Removed == nil {
		report.Removed = []types.WidgetRecord{}
	}

	for _, rec := range report.Removed {
		win, ok := c.launcher.FindByModule(rec.ID)
		if !ok {
			continue
		}
		report.Orphaned = append(report.Orphaned, *win)
		c.logger.Warn("Window left without a record after cleanup",
			zap.String("window_id", win.ID),
			zap.String("record_id", rec.ID),
			zap.String("name", rec.Name),
		)
	}
	return report
}

func (c *Controller) dispatchWidget(ctx context.Context, rec types.WidgetRecord) bool {
	pos := rec.Settings.Position
	return c.dispatch(ctx, string(types.ModuleTypeWidget), types.LaunchRequest{
		Title:       rec.Name,
		ContentPath: rec.Path,
		Position:    &pos,
		IsWidget:    true,
		ID:          rec.ID,
	})
}

// dispatch hands req to the launcher. Launch failures are logged, never
// returned: the registry does not depend on the outcome.
func (c *Controller) dispatch(ctx context.Context, kind string, req types.LaunchRequest) bool {
	win, err := c.launcher.Launch(ctx, req)
	if err != nil {
		c.logger.Warn("Launch dispatch failed",
			zap.String("id", req.ID),
			zap.String("title", req.Title),
			zap.Error(err),
		)
		c.record(kind, "error")
		return false
	}

	fields := []zap.Field{zap.String("id", req.ID), zap.String("title", req.Title)}
	if win != nil {
		fields = append(fields, zap.String("window_id", win.ID))
	}
	c.logger.Debug("Launch dispatched", fields...)
	c.record(kind, "ok")
	return true
}

func (c *Controller) record(kind, status string) {
	if c.recorder != nil {
		c.recorder.RecordLaunch(kind, status)
	}
}

// requestFor maps a module onto a launch request
func requestFor(m types.Module) (types.LaunchRequest, error) {
	req := types.LaunchRequest{Title: m.Name, ID: m.ID, Position: m.Position}

	switch m.Type {
	case types.ModuleTypeWidget:
		req.ContentPath = m.Path
		req.IsWidget = true
	case types.ModuleTypeLocalHTML:
		req.ContentPath = m.Path
	case types.ModuleTypeYouTubeEmbed:
		if m.VideoID == "" {
			return req, fmt.Errorf("youtube module %s has no video id", m.ID)
		}
		req.ContentPath = YouTubeEmbedBase + url.PathEscape(m.VideoID)
	default:
		return req, fmt.Errorf("unknown module type %q", m.Type)
	}
	return req, nil
}
