package results

import (
	"fmt"
	"strconv"
)

// Fixed column headers and cell sentinels.
const (
	ColumnPlayer     = "Player"
	ColumnSeason     = "Season"
	ColumnSimilarity = "Similarity"

	CellTarget = "Target"
	CellNA     = "N/A"
)

// Column describes one table column.
type Column struct {
	Title   string
	Feature bool // declared by the service metadata
}

// Row is one rendered line.
type Row struct {
	Cells  []string
	Target bool
	// Misaligned is set when the row's metrics and the declared features
	// differ in length; only the shorter length is rendered. See Misaligned.
	Misaligned bool
}

// Table is the render model of a State.
type Table struct {
	Heading      string
	SearchMethod string
	Columns      []Column
	Rows         []Row
}

// Violations returns the indexes of misaligned rows.
func (t Table) Violations() []int {
	var out []int
	for i, r := range t.Rows {
		if r.Misaligned {
			out = append(out, i)
		}
	}
	return out
}

// Table builds the render model. Metric cells are positional.
func (s *State) Table() Table {
	t := Table{
		Heading:      heading(s.Query),
		SearchMethod: s.SearchMethod,
		Columns: []Column{
			{Title: ColumnPlayer},
			{Title: ColumnSeason},
			{Title: ColumnSimilarity},
		},
	}
	for _, f := range s.Features {
		t.Columns = append(t.Columns, Column{Title: f, Feature: true})
	}

	for _, r := range s.Rows {
		n := min(len(r.Metrics), len(s.Features))
		row := Row{
			Cells:      make([]string, 0, 3+n),
			Target:     r.IsTarget,
			Misaligned: Misaligned(r, len(s.Features)),
		}
		row.Cells = append(row.Cells, r.Player, FormatSeason(string(r.Season)), similarityCell(r.IsTarget, r.Similarity))
		for _, m := range r.Metrics[:n] {
			row.Cells = append(row.Cells, formatNumber(m))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func heading(q Query) string {
	switch {
	case q.PlayerName == "":
		return ""
	case q.ProfileLabel == "":
		return fmt.Sprintf("Players similar to %s", q.PlayerName)
	default:
		return fmt.Sprintf("%s Results for %s", q.ProfileLabel, q.PlayerName)
	}
}

func similarityCell(target bool, sim *float64) string {
	if target {
		return CellTarget
	}
	if sim == nil {
		return CellNA
	}
	return formatNumber(*sim)
}

// formatNumber prints the shortest representation, as a browser would.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
