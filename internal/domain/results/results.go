// Package results holds the last committed search and renders it as a table.
package results

import (
	"github.com/okian/neighborhoods/internal/domain/types"
)

// Messages surfaced to the user.
const (
	MsgRejected = "Failed to get results"
	MsgFallback = "An error occurred"
)

// Query identifies the request a result set belongs to. It is frozen when a
// response is committed, so later edits to the form do not relabel the table.
type Query struct {
	PlayerName   string
	ProfileLabel string
}

// State is the renderer-owned view of the last search.
type State struct {
	Rows         []types.ResultRow
	Features     []string
	Query        Query
	SearchMethod string
	Loading      bool
	Error        string
	Suggestions  []string
}

// Begin marks a submission in flight and clears the previous error.
func (s *State) Begin() {
	s.Loading = true
	s.Error = ""
	s.Suggestions = nil
}

// Apply commits a response for query. A rejected response keeps the previous
// rows and columns and reports whether it committed.
func (s *State) Apply(resp types.SearchResponse, query Query) bool {
	s.Loading = false
	if !resp.Success {
		s.Error = MsgRejected
		return false
	}
	s.Rows = resp.Data
	s.Features = resp.Metadata.Features
	if s.Features == nil {
		s.Features = []string{}
	}
	s.Query = query
	s.SearchMethod = resp.Metadata.SearchMethod
	s.Error = ""
	s.Suggestions = nil
	return true
}

// Fail ends a submission with msg, keeping rows and columns. An empty msg is
// replaced by the generic fallback.
func (s *State) Fail(msg string) {
	s.Loading = false
	if msg == "" {
		msg = MsgFallback
	}
	s.Error = msg
}

// Suggest attaches "did you mean" names to the current failure.
func (s *State) Suggest(names []string) {
	s.Suggestions = names
}

// HasResults reports whether a result set has ever been committed.
func (s *State) HasResults() bool {
	return len(s.Rows) > 0
}

// Clone returns a copy whose slices do not alias s.
func (s *State) Clone() State {
	c := *s
	c.Rows = append([]types.ResultRow(nil), s.Rows...)
	c.Features = append([]string(nil), s.Features...)
	c.Suggestions = append([]string(nil), s.Suggestions...)
	return c
}

// Misaligned reports whether a row's metrics disagree with the declared
// feature count. A target row with no metrics is the service's signal that
// the target's stats were not found and is not flagged.
func Misaligned(row types.ResultRow, features int) bool {
	if row.IsTarget && len(row.Metrics) == 0 {
		return false
	}
	return len(row.Metrics) != features
}
