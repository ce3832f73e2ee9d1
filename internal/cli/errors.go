package cli

import "errors"

// Sentinel kinds for CLI errors.
var (
	ErrProfileDrift = errors.New("configured profiles are unknown to the service")
)
