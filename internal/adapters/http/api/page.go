package api

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	service "github.com/okian/neighborhoods/internal/app"
	"github.com/okian/neighborhoods/internal/domain/form"
	"github.com/okian/neighborhoods/internal/domain/profile"
	"github.com/okian/neighborhoods/internal/domain/results"
	"github.com/okian/neighborhoods/pkg/logger"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "nban_session"

// PageHandler renders the form and results of the caller's session.
type PageHandler struct {
	deps         Dependencies
	page         *template.Template
	logger       logger.Logger
	secureCookie bool
}

// NewPageHandler creates a page handler.
func NewPageHandler(deps Dependencies, page *template.Template, l logger.Logger, secureCookie bool) *PageHandler {
	return &PageHandler{deps: deps, page: page, logger: l, secureCookie: secureCookie}
}

type profileOption struct {
	Key      string
	Label    string
	Selected bool
}

// pageModel is what the template sees.
type pageModel struct {
	Form        form.State
	Profiles    []profileOption
	FieldErrors map[string]string
	Table       results.Table
	HasResults  bool
	Error       string
	Suggestions []string
	Loading     bool
}

// HandleIndex handles GET /.
func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	h.render(w, r, sess.View())
}

// HandleSearch handles POST /search: it applies the posted fields, submits
// and redirects back to the page.
func (h *PageHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_form", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	sess := h.session(w, r)
	h.apply(r, sess, r.PostForm)

	// Validation and upstream failures are already recorded on the session
	// and shown on the page; stale completions defer to the newer submit.
	if _, err := sess.Submit(r.Context()); err != nil && !errors.Is(err, service.ErrStaleResponse) {
		h.logger.Debug(r.Context(), "submit finished with error",
			logger.String("session", sess.ID()),
			logger.Error(err),
		)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleProfile handles POST /profile/{key}: it applies the posted fields and
// toggles the profile.
func (h *PageHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_form", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	sess := h.session(w, r)
	h.apply(r, sess, r.PostForm)

	if err := sess.ToggleProfile(mux.Vars(r)["key"]); err != nil {
		if errors.Is(err, profile.ErrUnknownProfile) {
			writeError(w, http.StatusNotFound, "unknown_profile", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// apply copies posted fields into the session. A post carrying player_name
// is a full form post, so a missing exact box means unchecked.
func (h *PageHandler) apply(r *http.Request, sess *service.Session, values url.Values) {
	for _, f := range []form.Field{form.FieldPlayerName, form.FieldYear, form.FieldGroupSize} {
		if v, ok := values[string(f)]; ok && len(v) > 0 {
			h.setField(r, sess, f, v[0])
		}
	}
	if _, full := values[string(form.FieldPlayerName)]; full {
		h.setField(r, sess, form.FieldExact, values.Get(string(form.FieldExact)))
	}
}

func (h *PageHandler) setField(r *http.Request, sess *service.Session, f form.Field, v string) {
	if err := sess.SetField(f, v); err != nil {
		h.logger.Warn(r.Context(), "field rejected", logger.String("field", string(f)), logger.Error(err))
	}
}

// session resolves the caller's session from its cookie, issuing a new one
// when the cookie is absent or malformed.
func (h *PageHandler) session(w http.ResponseWriter, r *http.Request) *service.Session {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			id = c.Value
		}
	}
	sess, created := h.deps.Session(r.Context(), id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID(),
			Path:     "/",
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, v service.View) {
	var buf bytes.Buffer
	if err := h.page.Execute(&buf, newPageModel(v)); err != nil {
		h.logger.Error(r.Context(), "render page", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "render", ErrRender)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func newPageModel(v service.View) pageModel {
	m := pageModel{
		Form:        v.Form,
		FieldErrors: make(map[string]string, len(v.Validation.FieldErrors)),
		Table:       v.Results.Table(),
		HasResults:  v.Results.HasResults(),
		Error:       v.Results.Error,
		Suggestions: v.Results.Suggestions,
		Loading:     v.Results.Loading,
	}
	for f, msg := range v.Validation.FieldErrors {
		m.FieldErrors[string(f)] = msg
	}
	if set := v.Form.Profiles(); set != nil {
		for _, p := range set.All() {
			m.Profiles = append(m.Profiles, profileOption{Key: p.Key, Label: p.Label, Selected: p.Key == v.Form.Profile})
		}
	}
	return m
}
