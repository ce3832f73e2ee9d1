package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/neighborhoods/internal/cli"
	"github.com/okian/neighborhoods/internal/config"
	"github.com/okian/neighborhoods/internal/domain/form"
)

// Default configuration constants.
const (
	defaultRunTimeout = 2 * time.Minute
)

func main() {
	// Shared config supplies defaults for the upstream and profile set.
	cfg, err := config.Load(context.Background())
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var (
		baseURL       = flag.String("url", cfg.UpstreamURL, "Base URL of the similarity service")
		name          = flag.String("name", "", "Player name")
		year          = flag.String("year", "", "Season year (default: all seasons)")
		profileKey    = flag.String("profile", "", "Profile, e.g. scoring")
		k             = flag.Int("k", form.DefaultGroupSize, "Group size")
		exact         = flag.Bool("exact", false, "Exact KD-tree search instead of ANN")
		timeout       = flag.Duration("timeout", cfg.RequestTimeout(), "HTTP request timeout")
		seasons       = flag.Bool("seasons", false, "List the seasons available for -name")
		checkProfiles = flag.Bool("check-profiles", false, "Compare configured profiles with the service")
		logFile       = flag.String("log", "", "Also write logs to this file")
		verbose       = flag.Bool("verbose", false, "Enable verbose logging")
		help          = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		cli.ShowHelp(os.Stdout)
		return
	}

	closeLog, err := cli.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)

	runCfg := &cli.Config{
		BaseURL:       *baseURL,
		PlayerName:    *name,
		Year:          *year,
		Profile:       *profileKey,
		GroupSize:     *k,
		Exact:         *exact,
		Timeout:       *timeout,
		LogFile:       *logFile,
		Verbose:       *verbose,
		Seasons:       *seasons,
		CheckProfiles: *checkProfiles,
		Profiles:      cfg.Profiles,
		RateLimit:     cfg.RateLimitPerSec,
		RateBurst:     cfg.RateBurst,

		SuggestionCount: cfg.SuggestionCount,
	}

	err = cli.Run(ctx, runCfg, os.Stdout)
	cancel()
	closeLog()
	if err != nil {
		os.Stderr.WriteString("similar: " + err.Error() + "\n")
		os.Exit(1)
	}
}
