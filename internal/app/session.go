package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/neighborhoods/internal/adapters/similarity"
	"github.com/okian/neighborhoods/internal/domain/form"
	"github.com/okian/neighborhoods/internal/domain/results"
	"github.com/okian/neighborhoods/internal/domain/suggest"
	"github.com/okian/neighborhoods/internal/domain/types"
	"github.com/okian/neighborhoods/pkg/logger"
	"github.com/okian/neighborhoods/pkg/metrics"
)

// Phase is the submission state of a session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSuccess
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Session is one user's form and results. It is safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	id         string
	form       *form.State
	results    results.State
	validation form.Validation
	phase      Phase
	seq        uint64
	cancel     context.CancelFunc

	svc *Service
}

// View is a point-in-time copy of a session for rendering.
type View struct {
	ID         string
	Form       form.State
	Validation form.Validation
	Results    results.State
	Phase      Phase
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// SetField updates one form field. Changing a field's value clears the error
// the last submit reported for it.
func (s *Session) SetField(name form.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := *s.form
	if err := s.form.SetField(name, value); err != nil {
		return err
	}
	if *s.form != before {
		s.clearFieldErrorLocked(name)
	}
	return nil
}

// ToggleProfile selects or clears a profile and drops any pending profile
// error.
func (s *Session) ToggleProfile(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.form.ToggleProfile(key); err != nil {
		return err
	}
	s.clearFieldErrorLocked(form.FieldProfile)
	return nil
}

// clearFieldErrorLocked replaces the validation map so earlier views keep
// their copy.
func (s *Session) clearFieldErrorLocked(name form.Field) {
	if _, ok := s.validation.FieldErrors[name]; !ok {
		return
	}
	errs := make(map[form.Field]string, len(s.validation.FieldErrors)-1)
	for f, msg := range s.validation.FieldErrors {
		if f != name {
			errs[f] = msg
		}
	}
	s.validation = form.Validation{Valid: len(errs) == 0, FieldErrors: errs}
}

// View snapshots the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	v := View{
		ID:         s.id,
		Form:       *s.form,
		Validation: s.validation,
		Results:    s.results.Clone(),
		Phase:      s.phase,
	}
	return v
}

// Submit validates the form and, when valid, runs one search. A newer submit
// cancels this one; the superseded completion returns ErrStaleResponse and
// leaves results alone. Invalid forms return a *form.ValidationError without
// any network call. Upstream failures are recorded on the session and also
// returned.
func (s *Session) Submit(ctx context.Context) (View, error) {
	log := s.svc.logger.Named("session")

	s.mu.Lock()
	req, err := s.form.Request()
	if err != nil {
		if v, ok := form.AsValidation(err); ok {
			s.validation = v
			for f := range v.FieldErrors {
				metrics.RecordValidationFailure(string(f))
			}
		}
		metrics.RecordSearch(metrics.OutcomeInvalid)
		view := s.viewLocked()
		s.mu.Unlock()
		return view, err
	}
	if s.svc.upstream == nil {
		s.mu.Unlock()
		return View{}, ErrNoUpstream
	}

	s.validation = form.Validation{Valid: true}
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
	}
	callCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	requestID := uuid.NewString()
	callCtx = similarity.WithRequestID(callCtx, requestID)
	query := results.Query{PlayerName: req.PlayerName, ProfileLabel: s.form.SelectedLabel()}
	s.results.Begin()
	s.phase = PhaseSubmitting
	s.mu.Unlock()
	defer cancel()

	log.Debug(ctx, "submitting search",
		logger.String("session", s.id),
		logger.Uint64("seq", seq),
		logger.String("requestID", requestID),
		logger.String("player", req.PlayerName),
		logger.String("feature_group", req.FeatureGroup),
		logger.Int("k", req.K),
		logger.Bool("exact", req.Exact),
	)

	resp, searchErr := s.svc.upstream.Search(callCtx, req)

	var suggestions []string
	if searchErr != nil && similarity.IsNotFound(searchErr) && s.svc.suggestionCount > 0 {
		suggestions = s.suggestions(callCtx, req.PlayerName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		metrics.RecordSearch(metrics.OutcomeStale)
		log.Debug(ctx, "discarding stale response",
			logger.String("session", s.id),
			logger.Uint64("seq", seq),
			logger.Uint64("latest", s.seq),
		)
		return s.viewLocked(), ErrStaleResponse
	}
	s.cancel = nil

	if searchErr != nil {
		s.results.Fail(similarity.ServerMessage(searchErr))
		s.results.Suggest(suggestions)
		s.phase = PhaseFailed
		metrics.RecordSearch(metrics.OutcomeFailed)
		log.Warn(ctx, "search failed",
			logger.String("session", s.id),
			logger.String("requestID", requestID),
			logger.String("player", req.PlayerName),
			logger.Error(searchErr),
		)
		return s.viewLocked(), searchErr
	}

	if !s.results.Apply(resp, query) {
		s.phase = PhaseFailed
		metrics.RecordSearch(metrics.OutcomeRejected)
		log.Warn(ctx, "search rejected",
			logger.String("session", s.id),
			logger.String("player", req.PlayerName),
			logger.String("reason", resp.Error),
		)
		return s.viewLocked(), ErrRejected
	}

	s.phase = PhaseSuccess
	metrics.RecordSearch(metrics.OutcomeSuccess)
	s.checkAlignment(ctx, log, resp)
	log.Info(ctx, "search committed",
		logger.String("session", s.id),
		logger.String("player", req.PlayerName),
		logger.Int("rows", len(resp.Data)),
		logger.String("method", resp.Metadata.SearchMethod),
	)
	return s.viewLocked(), nil
}

// suggestions looks up near matches for name. Lookup failures only cost the
// hint.
func (s *Session) suggestions(ctx context.Context, name string) []string {
	players, err := s.svc.upstream.Players(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.svc.logger.Debug(ctx, "player catalogue unavailable", logger.Error(err))
		}
		return nil
	}
	return suggest.Closest(name, players, s.svc.suggestionCount)
}

func (s *Session) checkAlignment(ctx context.Context, log logger.Logger, resp types.SearchResponse) {
	want := len(resp.Metadata.Features)
	for i, row := range resp.Data {
		if !results.Misaligned(row, want) {
			continue
		}
		metrics.RecordContractViolation()
		log.Warn(ctx, "metrics do not match features",
			logger.String("session", s.id),
			logger.Int("row", i),
			logger.String("player", row.Player),
			logger.Int("metrics", len(row.Metrics)),
			logger.Int("features", want),
		)
	}
}
