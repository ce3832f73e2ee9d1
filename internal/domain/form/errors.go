package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel kinds for form errors.
var (
	ErrUnknownField = errors.New("unknown form field")
	ErrInvalid      = errors.New("form is invalid")
)

// ValidationError carries the field messages of a blocked submission.
type ValidationError struct {
	Validation Validation
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Validation.FieldErrors))
	for f := range e.Validation.FieldErrors {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(fields, ", "))
}

// Unwrap lets callers match ErrInvalid.
func (e *ValidationError) Unwrap() error { return ErrInvalid }
