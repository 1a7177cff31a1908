// Package http exposes the registry, lifecycle, window and theme
// operations over a gin router.
//
// Registry failures that the domain layer degrades on (a store write that
// did not happen) surface as 503; unknown ids as 404; invalid input as 400.
package http
