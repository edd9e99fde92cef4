package extractor

import (
	"context"

	"github.com/mkuranowski/gtfs-subset/internal/bbox"
	"github.com/mkuranowski/gtfs-subset/internal/csvengine"
)

// ExtractByBbox seeds the filter from the stops that fall inside b,
// then pulls every downstream file into closure: stop_times, trips,
// routes, agency, shapes, and the common-files tail. It returns the
// *.txt file names written to the filter's output directory.
func (rf *ReferentialFilter) ExtractByBbox(ctx context.Context, b bbox.Bbox) ([]string, error) {
	stopIDsResult, err := rf.pass(ctx, "stops", csvengine.KeepIfBboxContains(b), false,
		[]string{"stop_id", "stop_lat", "stop_lon"}, "stop_id")
	if err != nil {
		return nil, err
	}
	stopIDsInBbox := stopIDsResult[0]

	tripIDsResult, err := rf.pass(ctx, "stop_times", csvengine.KeepIfIn([]string{"stop_id"}, stopIDsInBbox), false,
		[]string{"stop_id", "trip_id"}, "trip_id")
	if err != nil {
		return nil, err
	}
	tripIDs := tripIDsResult[0]

	tripsResult, err := rf.pass(ctx, "trips", csvengine.KeepIfIn([]string{"trip_id"}, tripIDs), true, nil, "route_id", "service_id", "shape_id")
	if err != nil {
		return nil, err
	}
	routeIDs, serviceIDs, shapeIDs := tripsResult[0], tripsResult[1], tripsResult[2]

	if err := rf.routesAgencyShapes(ctx, routeIDs, shapeIDs); err != nil {
		return nil, err
	}

	if err := rf.commonFilesTail(ctx, serviceIDs, tripIDs); err != nil {
		return nil, err
	}

	return rf.outputFiles()
}
