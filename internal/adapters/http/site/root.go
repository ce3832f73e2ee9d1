// Package site serves the embedded page template and stylesheet.
package site

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// Error constants
var (
	ErrTemplate = errors.New("page template unavailable")
)

// Register attaches the static asset routes under /static/.
func Register(_ context.Context, r *mux.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.PathPrefix("/static/").
		Handler(http.StripPrefix("/static/", http.FileServer(FS()))).
		Methods(http.MethodGet, http.MethodHead)
}
