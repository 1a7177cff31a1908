// Package middleware holds the gin middleware of the HTTP API: CORS,
// per-client rate limiting, request ids and request logging.
package middleware
