package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/mkuranowski/gtfs-subset/internal/csvengine"
	"github.com/mkuranowski/gtfs-subset/internal/feed"
	"github.com/mkuranowski/gtfs-subset/internal/gtfsdate"
	"github.com/mkuranowski/gtfs-subset/internal/gtfserr"
)

// dateTimeLayout matches the "YYYY-MM-DD HH:MM:SS" strings the
// metadata probe reports, always at midnight.
const dateTimeLayout = "2006-01-02 15:04:05"

// ServiceDateRange reads calendar.start_date and calendar.end_date
// across the whole feed and returns the earliest start and the latest
// end, each formatted "YYYY-MM-DD HH:MM:SS". It performs a read-only
// pass: no output is written.
func ServiceDateRange(ctx context.Context, f *feed.Layout, opts ...Option) (start, end string, err error) {
	cfg := newConfig(opts...)

	path, ok := f.Path("calendar")
	if !ok {
		return "", "", fmt.Errorf("reading calendar for metadata: %w", gtfserr.ErrFileMissing)
	}

	ids, err := cfg.engine().FilterFile(ctx, csvengine.FilterOptions{
		Path:          path,
		ColumnTypes:   columnTypesFor("calendar"),
		UseColumns:    []string{"start_date", "end_date"},
		ReturnColumns: []string{"start_date", "end_date"},
	})
	if err != nil {
		return "", "", fmt.Errorf("reading calendar for metadata: %w", err)
	}

	minStart, err := extremeDate(ids[0], earliest)
	if err != nil {
		return "", "", err
	}
	maxEnd, err := extremeDate(ids[1], latest)
	if err != nil {
		return "", "", err
	}

	return minStart.Format(dateTimeLayout), maxEnd.Format(dateTimeLayout), nil
}

// ordering picks the better of (candidate, current-best).
type ordering func(candidate, best time.Time) bool

func earliest(candidate, best time.Time) bool { return candidate.Before(best) }
func latest(candidate, best time.Time) bool   { return candidate.After(best) }

func extremeDate(ids csvengine.IdSet, better ordering) (time.Time, error) {
	var best time.Time
	found := false
	for v := range ids {
		d, err := gtfsdate.Parse(v)
		if err != nil {
			return time.Time{}, err
		}
		if !found || better(d, best) {
			best = d
			found = true
		}
	}
	return best, nil
}
