// Package types provides shared data structures for the widget shell backend.
//
// Core Types:
//   - WidgetRecord: persisted widget identity, location and settings
//   - WidgetSettings, SettingsPatch: window geometry and autoload flag
//   - Module: launchable unit (widget, local-html, youtube-embed)
//   - Projection: category and widget views derived from the registry
//   - Window, WindowState, LaunchRequest: window collaborator contract
//
// Example Usage:
//
//	rec := types.WidgetRecord{
//	    Name:     "Clock",
//	    Path:     "widgets/clock/index.html",
//	    Settings: types.DefaultSettings(),
//	}
package types
