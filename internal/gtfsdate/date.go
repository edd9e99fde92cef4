// Package gtfsdate parses GTFS calendar dates ("YYYYMMDD") into UTC
// timestamps at midnight, the representation the extraction pipeline
// uses for all date-range comparisons.
package gtfsdate

import (
	"fmt"
	"time"

	"github.com/mkuranowski/gtfs-subset/internal/gtfserr"
)

const layout = "20060102"

// Parse parses a single "YYYYMMDD" string into a UTC timestamp at
// 00:00:00. Malformed strings fail with gtfserr.ErrBadDate.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, gtfserr.ErrBadDate)
	}
	return t.UTC(), nil
}

// ParseBatch parses a batch of "YYYYMMDD" strings, preserving order. It
// fails with gtfserr.ErrBadDate on the first malformed entry.
func ParseBatch(xs []string) ([]time.Time, error) {
	out := make([]time.Time, len(xs))
	for i, x := range xs {
		t, err := Parse(x)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
