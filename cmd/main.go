package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/okian/neighborhoods/internal/adapters/http/api"
	"github.com/okian/neighborhoods/internal/adapters/http/site"
	"github.com/okian/neighborhoods/internal/adapters/http/swagger"
	"github.com/okian/neighborhoods/internal/adapters/similarity"
	app "github.com/okian/neighborhoods/internal/app"
	"github.com/okian/neighborhoods/internal/config"
	"github.com/okian/neighborhoods/internal/domain/profile"
	"github.com/okian/neighborhoods/pkg/logger"
	"github.com/okian/neighborhoods/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
	serviceName           = "nban-ui"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := newService(cfg, loggerInstance)
	if err != nil {
		loggerInstance.Fatal(ctx, "failed to build service", logger.Error(err))
	}

	if cfg.CheckProfiles {
		checkProfiles(ctx, svc, loggerInstance)
	}

	handler, err := newHandler(ctx, svc, loggerInstance)
	if err != nil {
		loggerInstance.Fatal(ctx, "failed to build routes", logger.Error(err))
	}

	go startSystemMetricsUpdater(ctx)

	// No WriteTimeout: a search may wait for the full upstream timeout.
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("upstream", cfg.UpstreamURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newService builds the similarity client and the session service from cfg.
func newService(cfg *config.Config, l logger.Logger) (*app.Service, error) {
	profiles, err := profile.NewSet(cfg.Profiles)
	if err != nil {
		return nil, fmt.Errorf("profiles: %w", err)
	}
	client, err := similarity.New(cfg.UpstreamURL,
		similarity.WithTimeout(cfg.RequestTimeout()),
		similarity.WithRateLimit(cfg.RateLimitPerSec, cfg.RateBurst),
		similarity.WithLogger(l.Named("similarity")),
	)
	if err != nil {
		return nil, err
	}
	return app.New(
		app.WithUpstream(client),
		app.WithProfiles(profiles),
		app.WithMaxSessions(cfg.MaxSessions),
		app.WithSuggestionCount(cfg.SuggestionCount),
		app.WithLogger(l),
	), nil
}

// newHandler registers every route and wraps the router with tracing.
func newHandler(ctx context.Context, svc *app.Service, l logger.Logger) (http.Handler, error) {
	r := mux.NewRouter()

	swagger.Register(ctx, r)
	site.Register(ctx, r)

	apiServer, err := api.NewServer(svc, svc, api.WithLogger(l))
	if err != nil {
		return nil, err
	}
	apiServer.Register(ctx, r)

	return otelhttp.NewHandler(r, serviceName), nil
}

// checkProfiles logs drift between configured profiles and the service. The
// UI still starts; mismatched profiles surface as upstream errors.
func checkProfiles(ctx context.Context, svc *app.Service, l logger.Logger) {
	missing, extra, err := svc.CheckProfiles(ctx)
	if err != nil {
		l.Warn(ctx, "profile check skipped", logger.Error(err))
		return
	}
	if len(missing) == 0 && len(extra) == 0 {
		l.Info(ctx, "profiles match the similarity service")
		return
	}
	l.Warn(ctx, "profiles differ from the similarity service",
		logger.Any("missing", missing),
		logger.Any("extra", extra),
	)
}

// startSystemMetricsUpdater refreshes process gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
