package results

import (
	"fmt"
	"strconv"
)

// FormatSeason renders a bare start year as a season range, e.g. 2004 as
// "2004-05" and 1999 as "1999-00". Anything that is not an integer passes
// through unchanged, which keeps the function idempotent.
func FormatSeason(raw string) string {
	year, err := strconv.Atoi(raw)
	if err != nil {
		return raw
	}
	next := (year + 1) % 100
	if next < 0 {
		next = -next
	}
	return fmt.Sprintf("%d-%02d", year, next)
}
