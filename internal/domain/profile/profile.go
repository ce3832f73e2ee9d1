// Package profile describes the closed set of profiles a search can target.
//
// A profile is a named subset of statistical features on the service side.
// The form only knows its label; the wire value is the lower-cased label.
package profile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnknownProfile is returned for keys outside the configured set.
var ErrUnknownProfile = errors.New("unknown profile")

// Profile is one selectable entry of the form.
type Profile struct {
	Key   string // wire value, lower case
	Label string // display text
}

// Set is an ordered, closed collection of profiles.
type Set struct {
	ordered []Profile
	byKey   map[string]Profile
}

// DefaultLabels is the profile list offered when configuration names none.
var DefaultLabels = []string{"Scoring", "Style", "Defense", "Impact", "Traditional"}

// NewSet builds a Set from display labels, preserving order. Duplicate keys
// and blank labels are rejected.
func NewSet(labels []string) (*Set, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: empty profile set", ErrUnknownProfile)
	}
	s := &Set{byKey: make(map[string]Profile, len(labels))}
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			return nil, fmt.Errorf("%w: blank label", ErrUnknownProfile)
		}
		p := Profile{Key: Key(l), Label: cases.Title(language.English).String(l)}
		if _, dup := s.byKey[p.Key]; dup {
			return nil, fmt.Errorf("duplicate profile %q", l)
		}
		s.byKey[p.Key] = p
		s.ordered = append(s.ordered, p)
	}
	return s, nil
}

// MustDefault returns the default set. It panics only if DefaultLabels is broken.
func MustDefault() *Set {
	s, err := NewSet(DefaultLabels)
	if err != nil {
		panic(err)
	}
	return s
}

// Key normalizes a label or key to its wire form. Casers carry state, so
// one is built per call.
func Key(label string) string {
	return cases.Lower(language.English).String(strings.TrimSpace(label))
}

// Lookup resolves a label or key to its profile.
func (s *Set) Lookup(key string) (Profile, error) {
	p, ok := s.byKey[Key(key)]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, key)
	}
	return p, nil
}

// All returns the profiles in configured order.
func (s *Set) All() []Profile {
	out := make([]Profile, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Drift compares the set against the feature groups the service recognizes.
// missing holds keys the service does not know; extra holds groups the form
// does not offer. Both are sorted.
func (s *Set) Drift(serverGroups []string) (missing, extra []string) {
	server := make(map[string]struct{}, len(serverGroups))
	for _, g := range serverGroups {
		server[Key(g)] = struct{}{}
	}
	for _, p := range s.ordered {
		if _, ok := server[p.Key]; !ok {
			missing = append(missing, p.Key)
		}
	}
	for g := range server {
		if _, ok := s.byKey[g]; !ok {
			extra = append(extra, g)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)
	return missing, extra
}
