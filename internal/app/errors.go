package service

import "errors"

// Sentinel kinds for session errors.
var (
	// ErrStaleResponse marks a completion superseded by a newer submit. Its
	// result was discarded and shells ignore it.
	ErrStaleResponse = errors.New("stale response discarded")
	// ErrRejected is returned when the service answered success=false.
	ErrRejected = errors.New("search rejected by service")
	// ErrNoUpstream is returned when the service was built without a client.
	ErrNoUpstream = errors.New("similarity client not configured")
)
