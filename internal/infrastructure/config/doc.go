// Package config loads server configuration from the environment with
// envconfig, optionally overlaid by a TOML file.
//
// Environment Variables:
//   - PORT, HOST, CORS_ORIGINS
//   - STORE_PATH (default $XDG_DATA_HOME/widget-shell/store.json), STORE_TIMEOUT,
//     STORE_BREAKER_FAILURES, STORE_EPHEMERAL
//   - WIDGET_BASE_PATH, WIDGET_AUTOSTART
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//
// Example Usage:
//
//	cfg, err := config.LoadWithFile(flagConfigPath)
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
