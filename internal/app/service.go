// Package service wires form sessions to the similarity client.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/neighborhoods/internal/adapters/repository"
	"github.com/okian/neighborhoods/internal/domain/form"
	"github.com/okian/neighborhoods/internal/domain/profile"
	"github.com/okian/neighborhoods/internal/domain/types"
	"github.com/okian/neighborhoods/pkg/logger"
)

const (
	defaultSuggestionCount = 3
	defaultMaxSessions     = 1_000
)

// Upstream is the part of the similarity client the service depends on.
type Upstream interface {
	Search(ctx context.Context, req types.SearchRequest) (types.SearchResponse, error)
	FeatureGroups(ctx context.Context) (types.FeatureGroupsResponse, error)
	Players(ctx context.Context) ([]string, error)
	PlayerSeasons(ctx context.Context, name string) (types.PlayerSeasonsResponse, error)
}

// Service owns the per-browser sessions.
type Service struct {
	upstream        Upstream
	profiles        *profile.Set
	store           repository.Store[*Session]
	suggestionCount int
	maxSessions     int
	logger          logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		profiles:        profile.MustDefault(),
		suggestionCount: defaultSuggestionCount,
		maxSessions:     defaultMaxSessions,
		logger:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithMaxSize[*Session](s.maxSessions))
	}
	return s
}

// Profiles returns the set new sessions offer.
func (s *Service) Profiles() *profile.Set { return s.profiles }

// Session returns the session for id, creating a fresh one when id is empty
// or unknown. created reports whether a new session was made; its ID then
// differs from id when id was empty.
func (s *Service) Session(ctx context.Context, id string) (sess *Session, created bool) {
	if id == "" {
		id = uuid.NewString()
	}
	sess, created = s.store.GetOrCreate(ctx, id, func() *Session { return s.newSession(id) })
	if created {
		s.logger.Debug(ctx, "session created", logger.String("session", id))
	}
	return sess, created
}

// NewSession returns a session outside the store, for one-shot callers.
func (s *Service) NewSession() *Session {
	return s.newSession(uuid.NewString())
}

// Lookup returns a stored session.
func (s *Service) Lookup(ctx context.Context, id string) (*Session, error) {
	sess, ok := s.store.Get(ctx, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	return sess, nil
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount(ctx context.Context) int {
	return s.store.Len(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	labels := make([]string, 0, len(s.profiles.All()))
	for _, p := range s.profiles.All() {
		labels = append(labels, p.Label)
	}
	return map[string]any{
		"sessions":         s.store.Len(context.Background()),
		"maxSessions":      s.maxSessions,
		"profiles":         labels,
		"suggestionCount":  s.suggestionCount,
		"upstreamAttached": s.upstream != nil,
	}
}

// CheckProfiles compares the configured profiles with the feature groups the
// service recognizes.
func (s *Service) CheckProfiles(ctx context.Context) (missing, extra []string, err error) {
	if s.upstream == nil {
		return nil, nil, ErrNoUpstream
	}
	groups, err := s.upstream.FeatureGroups(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("feature groups: %w", err)
	}
	missing, extra = s.profiles.Drift(groups.FeatureGroups)
	if len(missing) > 0 || len(extra) > 0 {
		s.logger.Warn(ctx, "profile drift",
			logger.Any("missing", missing),
			logger.Any("extra", extra),
		)
	}
	return missing, extra, nil
}

// PlayerSeasons lists the seasons the service has for name.
func (s *Service) PlayerSeasons(ctx context.Context, name string) (types.PlayerSeasonsResponse, error) {
	if s.upstream == nil {
		return types.PlayerSeasonsResponse{}, ErrNoUpstream
	}
	return s.upstream.PlayerSeasons(ctx, name)
}

func (s *Service) newSession(id string) *Session {
	return &Session{
		id:   id,
		form: form.New(s.profiles),
		svc:  s,
	}
}
