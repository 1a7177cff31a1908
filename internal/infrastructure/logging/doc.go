// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON to stderr
//   - Development: colored console output
//
// Components receive a *zap.Logger obtained from Component, so every
// entry carries the component name.
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: "info"})
//	reg := registry.New(st, registry.Options{Logger: logger.Component("registry")})
//	defer logger.Close()
package logging
