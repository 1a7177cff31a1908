// Package main is the entry point for the widget shell backend.
//
// The binary owns the widget registry of the desktop overlay shell: it
// persists installed widgets and launchable modules to a local JSON store,
// auto-starts widgets at boot and serves the registry to the shell UI.
//
//	UI (overlay) ⇄ HTTP + /stream ⇄ widget-shell ⇄ store.json
//
// Commands:
//   - serve: load, auto-start and serve the API until SIGINT/SIGTERM
//   - import <folder>: import every widget directory below folder
//   - list: print the registered widgets
//   - cleanup: collapse duplicate records
//   - reset --yes: clear the registry
//
// Configuration comes from the environment (PORT, STORE_PATH,
// WIDGET_BASE_PATH, LOG_LEVEL, ...) with an optional TOML overlay:
//
//	widget-shell serve --config ~/.config/widget-shell/config.toml
//	widget-shell --ephemeral serve
package main
