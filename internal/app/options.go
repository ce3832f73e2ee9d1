package service

import (
	"github.com/okian/neighborhoods/internal/adapters/repository"
	"github.com/okian/neighborhoods/internal/domain/profile"
	"github.com/okian/neighborhoods/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithUpstream sets the similarity client sessions submit through.
func WithUpstream(u Upstream) Option {
	return func(s *Service) {
		if u != nil {
			s.upstream = u
		}
	}
}

// WithProfiles sets the profile set offered by new sessions.
func WithProfiles(p *profile.Set) Option {
	return func(s *Service) {
		if p != nil {
			s.profiles = p
		}
	}
}

// WithSuggestionCount caps "did you mean" names offered after a not-found.
// Zero disables suggestions.
func WithSuggestionCount(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.suggestionCount = n
		}
	}
}

// WithMaxSessions bounds the session store.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		s.maxSessions = n
	}
}

// WithStore replaces the session store.
func WithStore(st repository.Store[*Session]) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
