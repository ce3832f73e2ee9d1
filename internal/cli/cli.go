// Package cli runs a single search from the command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/neighborhoods/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging routes logs to stderr, keeping stdout for the table. When
// logFile is set a copy goes there too. The returned func closes the file.
func SetupLogging(logFile string, verbose bool) (func(), error) {
	var w io.Writer = os.Stderr
	closeFn := func() {}

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, file)
		closeFn = func() { _ = file.Close() }
	}

	if err := logger.InitWithWriter(w); err != nil {
		closeFn()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	if err := logger.SetLevelString(level); err != nil {
		closeFn()
		return nil, err
	}
	return closeFn, nil
}

// ShowHelp prints usage information for the similar tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `NBA Neighborhoods CLI
=====================

Finds players whose seasons resemble a target player under a statistical
profile, using the similarity service.

Usage:
  go run ./cmd/similar -name "LeBron James" -profile scoring [options]

Options:
  -url string
        Base URL of the similarity service (default "http://localhost:8080")
  -name string
        Player name (required unless -check-profiles)
  -year string
        Season year, e.g. 2004 (default: all seasons)
  -profile string
        One of the configured profiles, e.g. scoring
  -k int
        Group size (default 5)
  -exact
        Exact KD-tree search instead of approximate ANN
  -timeout duration
        HTTP request timeout (default 10s)
  -seasons
        List the seasons available for -name and exit
  -check-profiles
        Compare the configured profiles with the service and exit
  -log string
        Also write logs to this file
  -verbose
        Enable debug logging
  -help
        Show this help message

Environment:
  NBAN_PROFILES, NBAN_RATE_LIMIT_PER_SEC and NBAN_RATE_BURST are honoured,
  as is a YAML file named by NBAN_CONFIG.

Examples:
  go run ./cmd/similar -name "Tim Duncan" -profile defense -year 2003 -k 10 -exact
  go run ./cmd/similar -name "Stephen Curry" -seasons
`)
}
