package cli

import "time"

// Config holds the flags of one CLI invocation.
type Config struct {
	BaseURL    string        // Base URL of the similarity service
	PlayerName string        // Player to search for
	Year       string        // Optional season year, as typed
	Profile    string        // Profile key or label
	GroupSize  int           // Number of neighbours (k)
	Exact      bool          // Exact KD-tree search instead of ANN
	Timeout    time.Duration // HTTP request timeout
	LogFile    string        // Optional file receiving a copy of the logs
	Verbose    bool          // Debug logging

	Seasons       bool     // List the player's seasons instead of searching
	CheckProfiles bool     // Compare Profiles with the service's feature groups
	Profiles      []string // Offered profile labels; defaults when empty
	RateLimit     float64  // Requests per second, 0 disables
	RateBurst     int

	// SuggestionCount caps "did you mean" names after a not-found, 0 disables.
	SuggestionCount int
}
