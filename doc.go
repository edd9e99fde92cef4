/*
Package gtfssubset extracts a geographic or temporal subset of a GTFS
(General Transit Feed Specification) feed while preserving every
cross-file referential relationship the format requires: a stop kept by
a bounding box pulls along the stop_times, trips, routes, agency,
calendar, and shapes that reach it, and nothing else.

It supports both ZIP archives and already-extracted directories.

Basic usage:

	import gtfssubset "github.com/mkuranowski/gtfs-subset"

	subsetter := gtfssubset.New()
	files, err := subsetter.ExtractByBbox("feed.zip", "out/", bbox.New(8.57, 49.35, 8.79, 49.46))
	if err != nil {
		log.Fatal(err)
	}

Two extraction drivers are available:

  - ExtractByBbox keeps data reachable from stops inside a WGS84
    bounding box.
  - ExtractByDate keeps data reachable from services whose calendar
    window lies entirely within an inclusive [start, end] window, or
    that have a calendar_dates exception dated inside it. A service
    whose calendar window only partly overlaps [start, end] is not
    kept on the strength of its calendar row.

Both drivers converge on a shared tail: routes and agency are always
filtered together, shapes/frequencies/transfers are filtered when
present in the source feed, and feed_info is copied through unchanged.

Advanced Usage with Options:

	subsetter := gtfssubset.New(
		gtfssubset.WithWorkers(4),
		gtfssubset.WithChunkSize(5000),
		gtfssubset.WithProgressCallback(func(pass string) {
			fmt.Printf("completed pass: %s\n", pass)
		}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	files, err := subsetter.ExtractByBboxContext(ctx, "large-feed.zip", "out/", b)

Concurrency:

Each pass reads one file in fixed-size chunks, farming chunk-local
predicate evaluation out to a bounded worker pool sized by Workers
(default: CPU count minus one, floored at 1), then writes surviving
rows back out in their original order. Passes within a single
extraction run sequentially — chunk parallelism is the only
concurrency, matching the small, mostly I/O-bound nature of GTFS
files.

Error Handling:

ExtractByBbox/ExtractByDate/Metadata return an error for operational
failures: a malformed input archive, a missing required GTFS file, or
context cancellation. Errors wrap sentinel values from
internal/gtfserr so callers can use errors.Is for classification.

Metadata:

Metadata/MetadataContext report a feed's full service date span
("YYYY-MM-DD HH:MM:SS" strings spanning the earliest calendar
start_date and the latest calendar end_date in the source feed,
unfiltered) — useful for picking a --start-date/--end-date window
before running ExtractByDate.

For more information about GTFS, see: https://gtfs.org/
*/
package gtfssubset
