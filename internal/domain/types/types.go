// Package types holds the wire contract shared with the similarity service.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SearchRequest is the body of POST /api/similar.
type SearchRequest struct {
	PlayerName   string  `json:"player_name"`
	FeatureGroup string  `json:"feature_group"`
	K            int     `json:"k"`
	Season       *string `json:"season"` // nil serializes as null
	Exact        bool    `json:"exact"`
}

// SearchResponse is the success body of POST /api/similar. Data and Metadata
// are only meaningful when Success is true.
type SearchResponse struct {
	Success  bool        `json:"success"`
	Data     []ResultRow `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    string      `json:"error,omitempty"`
}

// Metadata describes the columns and method behind a response.
type Metadata struct {
	Features     []string `json:"features"`
	FeatureGroup string   `json:"feature_group,omitempty"`
	SearchMethod string   `json:"search_method,omitempty"`
	TotalResults int      `json:"total_results,omitempty"`
}

// ResultRow is one player-season returned by the service. Metrics line up
// positionally with Metadata.Features.
type ResultRow struct {
	Player     string    `json:"player"`
	Season     Season    `json:"season"`
	IsTarget   bool      `json:"is_target"`
	Similarity *float64  `json:"similarity,omitempty"`
	Distance   *float64  `json:"distance,omitempty"`
	Metrics    []float64 `json:"metrics"`
}

// Season is the raw season label of a row. The service sends a string such as
// "2004-05" or "All seasons", and a bare number for a target row queried by
// year; both decode to their textual form.
type Season string

// UnmarshalJSON accepts a JSON string, number or null.
func (s *Season) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Season(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("season: %w", err)
	}
	*s = Season(n.String())
	return nil
}

// ErrorResponse is the body of a non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FeatureGroupsResponse is the body of GET /api/feature-groups.
type FeatureGroupsResponse struct {
	FeatureGroups []string            `json:"feature_groups"`
	Profiles      map[string][]string `json:"profiles"`
}

// PlayersResponse is the body of GET /api/players.
type PlayersResponse struct {
	Players []string `json:"players"`
	Total   int      `json:"total"`
}

// PlayerSeasonsResponse is the body of GET /api/player/{name}.
type PlayerSeasonsResponse struct {
	Player       string   `json:"player"`
	Seasons      []Season `json:"seasons"`
	TotalSeasons int      `json:"total_seasons"`
}
