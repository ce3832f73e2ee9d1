// Package similarity is the HTTP client of the external similar-players
// service.
package similarity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/neighborhoods/internal/domain/types"
	"github.com/okian/neighborhoods/pkg/logger"
	"github.com/okian/neighborhoods/pkg/metrics"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// Service paths.
const (
	PathSimilar       = "/api/similar"
	PathFeatureGroups = "/api/feature-groups"
	PathPlayers       = "/api/players"
	PathPlayer        = "/api/player/"
)

// RequestIDHeader carries the per-call identity to the service.
const RequestIDHeader = "X-Request-ID"

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// Client calls the similarity service.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	logger  logger.Logger
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBaseURL, baseURL)
	}

	c := &Client{
		base:    u,
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		timeout: defaultTimeout,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string { return c.base.String() }

type requestIDKey struct{}

// WithRequestID attaches id to ctx so the next call sends it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// Search posts req to /api/similar. A 2xx reply is returned as decoded, even
// with success=false; deciding what that means is up to the caller.
func (c *Client) Search(ctx context.Context, req types.SearchRequest) (types.SearchResponse, error) {
	var resp types.SearchResponse
	if err := c.do(ctx, http.MethodPost, PathSimilar, "similar", req, &resp); err != nil {
		return types.SearchResponse{}, err
	}
	return resp, nil
}

// FeatureGroups lists the profile keys the service recognizes.
func (c *Client) FeatureGroups(ctx context.Context) (types.FeatureGroupsResponse, error) {
	var resp types.FeatureGroupsResponse
	err := c.do(ctx, http.MethodGet, PathFeatureGroups, "feature_groups", nil, &resp)
	return resp, err
}

// Players lists every player name known to the service.
func (c *Client) Players(ctx context.Context) ([]string, error) {
	var resp types.PlayersResponse
	if err := c.do(ctx, http.MethodGet, PathPlayers, "players", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Players, nil
}

// PlayerSeasons lists the seasons available for one player.
func (c *Client) PlayerSeasons(ctx context.Context, name string) (types.PlayerSeasonsResponse, error) {
	var resp types.PlayerSeasonsResponse
	err := c.do(ctx, http.MethodGet, PathPlayer+url.PathEscape(name), "player", nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path, endpoint string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrTransport, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	id := requestID(ctx)
	req.Header.Set(RequestIDHeader, id)

	start := time.Now()
	resp, err := c.http.Do(req)
	latencyMs := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, "error", latencyMs)
		c.logger.Warn(ctx, "similarity call failed",
			logger.String("endpoint", endpoint),
			logger.String("requestID", id),
			logger.Error(err))
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Debug(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()
	metrics.RecordUpstreamRequest(endpoint, strconv.Itoa(resp.StatusCode), latencyMs)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	c.logger.Debug(ctx, "similarity call completed",
		logger.String("endpoint", endpoint),
		logger.String("requestID", id),
		logger.Int("status", resp.StatusCode),
		logger.Float64("latencyMs", latencyMs))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e types.ErrorResponse
		if json.Unmarshal(data, &e) == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}
