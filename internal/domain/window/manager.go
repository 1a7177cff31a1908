package window

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/id"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/types"
)

// ErrEmptyContent is returned when a launch request has no content path
var ErrEmptyContent = errors.New("launch request has no content path")

// Event types emitted by the manager
const (
	EventOpened    = "window.opened"
	EventRaised    = "window.raised"
	EventMinimized = "window.minimized"
	EventRestored  = "window.restored"
	EventClosed    = "window.closed"
)

// Event describes a window state change
type Event struct {
	Type   string       `json:"type"`
	Window types.Window `json:"window"`
}

// Notifier receives window events. It is called outside the manager lock.
type Notifier func(Event)

// Recorder receives window metrics
type Recorder interface {
	RecordWindowEvent(event string)
	SetOpenWindows(running, minimized int)
}

// Manager tracks the shell's open windows. At most one window exists per
// module id; launching a module that already has a window raises it.
type Manager struct {
	mu        sync.RWMutex
	windows   map[string]*types.Window // Protected by mu
	byModule  map[string]string        // Module ID -> window ID, protected by mu
	focusedID string                   // Protected by mu

	logger   *zap.Logger
	notify   Notifier
	recorder Recorder
}

// NewManager creates a window manager
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		windows:  make(map[string]*types.Window),
		byModule: make(map[string]string),
		logger:   logger,
	}
}

// WithNotifier sets the event callback
func (m *Manager) WithNotifier(fn Notifier) *Manager {
	m.notify = fn
	return m
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(recorder Recorder) *Manager {
	m.recorder = recorder
	return m
}

// Launch opens a window for req, or raises the window already showing
// req.ID
func (m *Manager) Launch(ctx context.Context, req types.LaunchRequest) (*types.Window, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ContentPath) == "" {
		return nil, ErrEmptyContent
	}

	m.mu.Lock()
	if req.ID != "" {
		if wid, ok := m.byModule[req.ID]; ok {
			if win, ok := m.windows[wid]; ok {
				win.State = types.WindowRunning
				if req.Position != nil {
					pos := *req.Position
					win.Position = &pos
				}
				m.focusedID = wid
				out := *win
				m.mu.Unlock()

				m.emit(EventRaised, out)
				return &out, nil
			}
		}
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Untitled"
	}
	win := &types.Window{
		ID:          id.NewWindowID().String(),
		ModuleID:    req.ID,
		Title:       title,
		ContentPath: req.ContentPath,
		IsWidget:    req.IsWidget,
		State:       types.WindowRunning,
		OpenedAt:    time.Now(),
	}
	if req.Position != nil {
		pos := *req.Position
		win.Position = &pos
	}

	m.windows[win.ID] = win
	if req.ID != "" {
		m.byModule[req.ID] = win.ID
	}
	m.focusedID = win.ID
	out := *win
	m.mu.Unlock()

	m.logger.Info("Window opened",
		zap.String("window_id", out.ID),
		zap.String("module_id", out.ModuleID),
		zap.String("title", out.Title),
		zap.Bool("widget", out.IsWidget),
	)
	m.emit(EventOpened, out)
	return &out, nil
}

// Get retrieves a window by ID
func (m *Manager) Get(windowID string) (*types.Window, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	win, ok := m.windows[windowID]
	if !ok {
		return nil, false
	}
	out := *win
	return &out, true
}

// FindByModule returns the window showing moduleID
func (m *Manager) FindByModule(moduleID string) (*types.Window, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wid, ok := m.byModule[moduleID]
	if !ok {
		return nil, false
	}
	out := *m.windows[wid]
	return &out, true
}

// State reports the state of the window showing moduleID
func (m *Manager) State(moduleID string) types.WindowState {
	if win, ok := m.FindByModule(moduleID); ok {
		return win.State
	}
	return types.WindowStopped
}

// List returns all windows, optionally filtered by state, oldest first
func (m *Manager) List(state *types.WindowState) []types.Window {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Window, 0, len(m.windows))
	for _, win := range m.windows {
		if state == nil || win.State == *state {
			out = append(out, *win)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].OpenedAt.Before(out[j].OpenedAt)
	})
	return out
}

// Minimize hides a running window
func (m *Manager) Minimize(windowID string) bool {
	return m.transition(windowID, EventMinimized, func(win *types.Window) bool {
		if win.State != types.WindowRunning {
			return false
		}
		win.State = types.WindowMinimized
		if m.focusedID == win.ID {
			m.focusedID = ""
		}
		return true
	})
}

// Restore shows a minimized window and focuses it
func (m *Manager) Restore(windowID string) bool {
	return m.transition(windowID, EventRestored, func(win *types.Window) bool {
		if win.State != types.WindowMinimized {
			return false
		}
		win.State = types.WindowRunning
		m.focusedID = win.ID
		return true
	})
}

// Close destroys a window
func (m *Manager) Close(windowID string) bool {
	m.mu.Lock()
	win, ok := m.windows[windowID]
	if !ok {
		m.mu.Unlock()
		return false
	}

	delete(m.windows, windowID)
	if win.ModuleID != "" && m.byModule[win.ModuleID] == windowID {
		delete(m.byModule, win.ModuleID)
	}
	if m.focusedID == windowID {
		m.focusedID = ""
	}
	win.State = types.WindowStopped
	out := *win
	m.mu.Unlock()

	m.logger.Info("Window closed", zap.String("window_id", windowID), zap.String("module_id", out.ModuleID))
	m.emit(EventClosed, out)
	return true
}

// Focused returns the ID of the focused window, if any
func (m *Manager) Focused() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.focusedID, m.focusedID != ""
}

// Stats returns manager statistics
func (m *Manager) Stats() types.WindowStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statsLocked()
}

func (m *Manager) statsLocked() types.WindowStats {
	stats := types.WindowStats{Total: len(m.windows)}
	for _, win := range m.windows {
		switch win.State {
		case types.WindowRunning:
			stats.Running++
		case types.WindowMinimized:
			stats.Minimized++
		}
	}
	return stats
}

// transition applies fn under the lock and emits event when fn reports a change
func (m *Manager) transition(windowID, event string, fn func(*types.Window) bool) bool {
	m.mu.Lock()
	win, ok := m.windows[windowID]
	if !ok || !fn(win) {
		m.mu.Unlock()
		return false
	}
	out := *win
	m.mu.Unlock()

	m.emit(event, out)
	return true
}

func (m *Manager) emit(event string, win types.Window) {
	if m.recorder != nil {
		m.recorder.RecordWindowEvent(event)
		stats := m.Stats()
		m.recorder.SetOpenWindows(stats.Running, stats.Minimized)
	}
	if m.notify != nil {
		m.notify(Event{Type: event, Window: win})
	}
}
