package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/okian/neighborhoods/internal/domain/results"
)

const targetMarker = "*"

// Render writes t as an aligned text table. Target rows are marked with an
// asterisk in the first column.
func Render(w io.Writer, t results.Table) error {
	if t.Heading != "" {
		fmt.Fprintln(w, t.Heading)
	}
	if t.SearchMethod != "" {
		fmt.Fprintf(w, "(%s)\n", t.SearchMethod)
	}
	if len(t.Rows) == 0 {
		fmt.Fprintln(w, "no results")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	titles := make([]string, 0, len(t.Columns)+1)
	titles = append(titles, "")
	for _, c := range t.Columns {
		titles = append(titles, c.Title)
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))

	for _, r := range t.Rows {
		mark := ""
		if r.Target {
			mark = targetMarker
		}
		fmt.Fprintln(tw, mark+"\t"+strings.Join(r.Cells, "\t"))
	}
	return tw.Flush()
}
