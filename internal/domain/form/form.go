// Package form holds the editable search form and its validation.
package form

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/neighborhoods/internal/domain/profile"
	"github.com/okian/neighborhoods/internal/domain/types"
)

// Field names accepted by SetField and reported in FieldErrors.
type Field string

const (
	FieldPlayerName Field = "player_name"
	FieldYear       Field = "year"
	FieldProfile    Field = "profile"
	FieldGroupSize  Field = "group_size"
	FieldExact      Field = "exact"
)

// Bounds and messages mirrored from the original number inputs.
const (
	DefaultGroupSize = 5
	MinGroupSize     = 1
	MinYear          = 2000

	MsgEnterName     = "Please enter a name."
	MsgSelectProfile = "Please select a profile."
	MsgEnterNumber   = "Please enter a number."
)

// MsgMinimum formats the range-underflow message of a numeric field.
func MsgMinimum(min int) string {
	return fmt.Sprintf("Value must be greater than or equal to %d.", min)
}

// State is the editable form. The zero value is not usable; call New.
type State struct {
	PlayerName string
	Year       string // as typed; empty means all seasons
	Profile    string // selected profile key, empty when none
	GroupSize  int
	Exact      bool

	profiles *profile.Set
}

// Validation is the outcome of Validate.
type Validation struct {
	Valid       bool
	FieldErrors map[Field]string
}

// New returns a form offering the given profiles with default values.
func New(profiles *profile.Set) *State {
	if profiles == nil {
		profiles = profile.MustDefault()
	}
	return &State{GroupSize: DefaultGroupSize, profiles: profiles}
}

// Profiles returns the set the form offers.
func (s *State) Profiles() *profile.Set { return s.profiles }

// SetField updates one field from its textual value. No cross-field checks
// happen here.
func (s *State) SetField(name Field, value string) error {
	switch name {
	case FieldPlayerName:
		s.PlayerName = value
	case FieldYear:
		s.Year = strings.TrimSpace(value)
	case FieldGroupSize:
		s.GroupSize = coerceInt(value)
	case FieldExact:
		s.Exact = parseCheckbox(value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// ToggleProfile selects key, or clears the selection when key is already
// selected. Unknown keys leave the selection untouched.
func (s *State) ToggleProfile(key string) error {
	p, err := s.profiles.Lookup(key)
	if err != nil {
		return err
	}
	if s.Profile == p.Key {
		s.Profile = ""
		return nil
	}
	s.Profile = p.Key
	return nil
}

// SelectedLabel returns the display label of the selection, or "".
func (s *State) SelectedLabel() string {
	if s.Profile == "" {
		return ""
	}
	p, err := s.profiles.Lookup(s.Profile)
	if err != nil {
		return ""
	}
	return p.Label
}

// Validate checks the submission preconditions.
func (s *State) Validate() Validation {
	errs := make(map[Field]string)

	if strings.TrimSpace(s.PlayerName) == "" {
		errs[FieldPlayerName] = MsgEnterName
	}
	if s.Profile == "" {
		errs[FieldProfile] = MsgSelectProfile
	} else if _, err := s.profiles.Lookup(s.Profile); err != nil {
		errs[FieldProfile] = MsgSelectProfile
	}
	if s.GroupSize < MinGroupSize {
		errs[FieldGroupSize] = MsgMinimum(MinGroupSize)
	}
	if s.Year != "" {
		year, err := strconv.Atoi(s.Year)
		switch {
		case err != nil:
			errs[FieldYear] = MsgEnterNumber
		case year < MinYear:
			errs[FieldYear] = MsgMinimum(MinYear)
		}
	}

	return Validation{Valid: len(errs) == 0, FieldErrors: errs}
}

// Request serializes the form. It fails with a *ValidationError when the
// preconditions do not hold.
func (s *State) Request() (types.SearchRequest, error) {
	if v := s.Validate(); !v.Valid {
		return types.SearchRequest{}, &ValidationError{Validation: v}
	}
	req := types.SearchRequest{
		PlayerName:   s.PlayerName,
		FeatureGroup: profile.Key(s.Profile),
		K:            s.GroupSize,
		Exact:        s.Exact,
	}
	if s.Year != "" {
		season := s.Year
		req.Season = &season
	}
	return req, nil
}

// AsValidation extracts the Validation carried by err, if any.
func AsValidation(err error) (Validation, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Validation, true
	}
	return Validation{}, false
}

// coerceInt follows number-input semantics: unparsable text becomes 0.
func coerceInt(v string) int {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}
	return 0
}

func parseCheckbox(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
