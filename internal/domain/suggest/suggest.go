// Package suggest ranks catalogue names against a misspelled query.
package suggest

import (
	"sort"
	"strings"

	"github.com/xrash/smetrics"
	"golang.org/x/text/unicode/norm"
)

// Jaro-Winkler tuning: boost threshold and common-prefix cap.
const (
	boostThreshold = 0.7
	prefixSize     = 4
)

// MinScore drops candidates that are merely noise.
const MinScore = 0.8

type scored struct {
	name  string
	score float64
}

// Closest returns up to n catalogue names closest to query, best first.
// Comparison is case-insensitive and NFKC-normalized; an exact match is
// never suggested.
func Closest(query string, catalogue []string, n int) []string {
	q := normalize(query)
	if q == "" || n <= 0 {
		return nil
	}

	var hits []scored
	for _, name := range catalogue {
		c := normalize(name)
		if c == q {
			continue
		}
		s := smetrics.JaroWinkler(q, c, boostThreshold, prefixSize)
		if s >= MinScore {
			hits = append(hits, scored{name: name, score: s})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].name < hits[j].name
	})

	if len(hits) > n {
		hits = hits[:n]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}
