package types

import "time"

// WindowState represents widget window lifecycle states
type WindowState string

const (
	WindowStopped   WindowState = "stopped"
	WindowRunning   WindowState = "running"
	WindowMinimized WindowState = "minimized"
)

// LaunchRequest is what the registry hands to the window collaborator
type LaunchRequest struct {
	Title       string    `json:"title"`
	ContentPath string    `json:"content_path"`
	Position    *Position `json:"position,omitempty"`
	IsWidget    bool      `json:"is_widget"`
	ID          string    `json:"id,omitempty"`
}

// Window represents an open shell window
type Window struct {
	ID          string      `json:"id"`        // Window instance ID
	ModuleID    string      `json:"module_id"` // Record or module the window shows
	Title       string      `json:"title"`
	ContentPath string      `json:"content_path"`
	IsWidget    bool        `json:"is_widget"`
	State       WindowState `json:"state"`
	Position    *Position   `json:"position,omitempty"`
	OpenedAt    time.Time   `json:"opened_at"`
}

// WindowStats contains window manager statistics
type WindowStats struct {
	Total     int `json:"total"`
	Running   int `json:"running"`
	Minimized int `json:"minimized"`
}
