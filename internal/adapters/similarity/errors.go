package similarity

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds for similarity client errors.
var (
	ErrBaseURL   = errors.New("invalid similarity service url")
	ErrTransport = errors.New("similarity service unreachable")
	ErrDecode    = errors.New("undecodable similarity service response")
)

// APIError is a non-2xx reply. Message holds the service's "error" field
// when the body carried one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("similarity service: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("similarity service: %d: %s", e.Status, e.Message)
}

// NotFound reports a 404, which the service uses for unknown players.
func (e *APIError) NotFound() bool { return e.Status == http.StatusNotFound }

// ServerMessage returns the service-provided message carried by err, or "".
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.NotFound()
}
