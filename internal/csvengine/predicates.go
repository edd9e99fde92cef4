package csvengine

import (
	"time"

	"github.com/mkuranowski/gtfs-subset/internal/bbox"
	"github.com/mkuranowski/gtfs-subset/internal/gtfsdate"
)

// KeepIfIn keeps a row when every named column's value is a member of
// ids. A row whose column value is empty is passed through
// unconditionally (the data model's foreign-key-empty exception): an
// absent foreign key is not a dangling reference to prune.
func KeepIfIn(columns []string, ids IdSet) Predicate {
	return func(c Chunk) Chunk {
		out := make(Chunk, 0, len(c))
		for _, row := range c {
			keep := true
			for _, col := range columns {
				v, ok := row.Get(col)
				if !ok {
					continue // empty/missing column passes through
				}
				if !ids.Contains(v) {
					keep = false
					break
				}
			}
			if keep {
				out = append(out, row)
			}
		}
		return out
	}
}

// KeepIfBboxContains keeps stops.txt rows whose (stop_lat, stop_lon)
// falls inside b. Rows with an unparseable coordinate are dropped:
// containment cannot be asserted.
func KeepIfBboxContains(b bbox.Bbox) Predicate {
	return func(c Chunk) Chunk {
		out := make(Chunk, 0, len(c))
		for _, row := range c {
			lat, okLat := row.Float64("stop_lat")
			lon, okLon := row.Float64("stop_lon")
			if okLat && okLon && b.Contains(lat, lon) {
				out = append(out, row)
			}
		}
		return out
	}
}

// KeepIfDateInRange keeps rows whose column, parsed as a GTFS date,
// falls in [start, end] inclusive. Rows with a malformed date are
// dropped.
func KeepIfDateInRange(column string, start, end time.Time) Predicate {
	return func(c Chunk) Chunk {
		out := make(Chunk, 0, len(c))
		for _, row := range c {
			v, ok := row.Get(column)
			if !ok {
				continue
			}
			d, err := gtfsdate.Parse(v)
			if err != nil {
				continue
			}
			if !d.Before(start) && !d.After(end) {
				out = append(out, row)
			}
		}
		return out
	}
}

// KeepIfWindowOverlap keeps rows whose startCol >= start and whose
// endCol <= end, both inclusive. Despite the name, this is containment
// of the row's window within [start, end], not a true interval-overlap
// test: calendar.txt rows are kept only when their entire service
// window fits inside the requested range.
func KeepIfWindowOverlap(startCol, endCol string, start, end time.Time) Predicate {
	return func(c Chunk) Chunk {
		out := make(Chunk, 0, len(c))
		for _, row := range c {
			sv, sok := row.Get(startCol)
			ev, eok := row.Get(endCol)
			if !sok || !eok {
				continue
			}
			s, err := gtfsdate.Parse(sv)
			if err != nil {
				continue
			}
			e, err := gtfsdate.Parse(ev)
			if err != nil {
				continue
			}
			if !s.Before(start) && !e.After(end) {
				out = append(out, row)
			}
		}
		return out
	}
}
