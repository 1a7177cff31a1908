// Package theme derives and stores the shell theme.
//
// Derive is a pure function from a palette of hex colors to a Theme.
// Service keeps the active theme in the durable store; the registry
// never computes themes itself.
package theme
