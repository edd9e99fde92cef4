package extractor

import (
	"context"
	"time"

	"github.com/mkuranowski/gtfs-subset/internal/csvengine"
)

// ExtractByDate seeds the filter from calendar rows whose window is
// contained in [start, end], unioned with calendar_dates exceptions
// whose date falls in the range. From there it pulls trips, routes,
// agency, and shapes as ExtractByBbox does, then runs the common-files
// tail from frequencies onward. It returns the *.txt file names
// written to the filter's output directory.
func (rf *ReferentialFilter) ExtractByDate(ctx context.Context, start, end time.Time) ([]string, error) {
	calendarResult, err := rf.pass(ctx, "calendar", csvengine.KeepIfWindowOverlap("start_date", "end_date", start, end), true, nil, "service_id")
	if err != nil {
		return nil, err
	}
	serviceIDs := calendarResult[0]

	exceptionResult, err := rf.pass(ctx, "calendar_dates", csvengine.KeepIfDateInRange("date", start, end), true, nil, "service_id")
	if err != nil {
		return nil, err
	}
	serviceIDs = serviceIDs.Union(exceptionResult[0])

	tripsResult, err := rf.pass(ctx, "trips", csvengine.KeepIfIn([]string{"service_id"}, serviceIDs), true, nil, "route_id", "trip_id", "shape_id")
	if err != nil {
		return nil, err
	}
	routeIDs, tripIDs, shapeIDs := tripsResult[0], tripsResult[1], tripsResult[2]

	if err := rf.routesAgencyShapes(ctx, routeIDs, shapeIDs); err != nil {
		return nil, err
	}

	// calendar and calendar_dates were already written above with
	// exactly the ids this tail would recompute; rerunning them here
	// would be idempotent but wasteful, so the tail is entered at
	// frequencies.
	if err := rf.commonFilesTailFromFrequencies(ctx, tripIDs); err != nil {
		return nil, err
	}

	return rf.outputFiles()
}
