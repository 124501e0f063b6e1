// Package server provides the HTTP control API and WebSocket status stream
package server

import "time"

// Server configuration constants
const (
	// Per-connection control message rate limiting
	RateLimitMessages = 10
	RateLimitWindow   = time.Second
)
