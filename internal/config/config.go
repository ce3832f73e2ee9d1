// Package config defines process configuration and its loading layers.
//
// Conventions:
//   - Defaults live in New; Load layers a YAML file and NBAN_ env vars on top.
//   - Keys are flat snake_case and map 1:1 to koanf struct tags.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the UI HTTP listen address, e.g. ":3000".
	Addr string `koanf:"addr"`

	// UpstreamURL is the base URL of the similarity service.
	UpstreamURL string `koanf:"upstream_url"`

	// RequestTimeoutMS bounds a single upstream call.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// RateLimitPerSec and RateBurst throttle outbound calls. A zero rate
	// disables throttling.
	RateLimitPerSec float64 `koanf:"rate_limit_per_sec"`
	RateBurst       int     `koanf:"rate_burst"`

	// MaxSessions caps the number of browser sessions kept in memory. It must
	// be positive.
	MaxSessions int `koanf:"max_sessions"`

	// Profiles is the closed set of profile labels offered by the form.
	// Their lower-cased forms must match the service's feature groups.
	Profiles []string `koanf:"profiles"`

	// SuggestionCount caps "did you mean" names after a not-found error.
	SuggestionCount int `koanf:"suggestion_count"`

	// CheckProfiles compares Profiles with the service at startup.
	CheckProfiles bool `koanf:"check_profiles"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":3000",
		UpstreamURL:      "http://localhost:8080",
		RequestTimeoutMS: 10_000,
		RateLimitPerSec:  5,
		RateBurst:        5,
		MaxSessions:      1_000,
		Profiles:         []string{"Scoring", "Style", "Defense", "Impact", "Traditional"},
		SuggestionCount:  3,
		CheckProfiles:    false,
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}
