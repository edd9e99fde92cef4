package extractor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/mkuranowski/gtfs-subset/internal/csvengine"
	"github.com/mkuranowski/gtfs-subset/internal/feed"
	"github.com/mkuranowski/gtfs-subset/internal/gtfserr"
	"github.com/mkuranowski/gtfs-subset/internal/gtfsschema"
	"github.com/mkuranowski/gtfs-subset/logging"
)

// ReferentialFilter walks a feed's relationship graph in a fixed pass
// order, writing a subset of each file to outDir and threading each
// pass's emitted id-sets into the next pass's predicate.
type ReferentialFilter struct {
	feed   *feed.Layout
	outDir string
	cfg    Config
}

// New builds a ReferentialFilter over feed, writing into outDir.
// outDir is created if absent; if it already exists, its presence is
// logged and its contents are reused (existing files are overwritten
// pass by pass, not pre-cleared).
func New(f *feed.Layout, outDir string, opts ...Option) (*ReferentialFilter, error) {
	cfg := newConfig(opts...)

	if _, err := os.Stat(outDir); err == nil {
		cfg.Logger.Info("reusing existing output directory", logging.String("dir", outDir))
	} else if os.IsNotExist(err) {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory %q: %w", outDir, gtfserr.ErrIoFailure)
		}
	} else {
		return nil, fmt.Errorf("accessing output directory %q: %w", outDir, gtfserr.ErrIoFailure)
	}

	return &ReferentialFilter{feed: f, outDir: outDir, cfg: cfg}, nil
}

func (rf *ReferentialFilter) outPath(name string) string {
	return filepath.Join(rf.outDir, name+".txt")
}

func (rf *ReferentialFilter) checkCancel(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", gtfserr.ErrCancelled, err)
	}
	return nil
}

// pass runs one engine.FilterFile call against the named input file
// and reports progress. It is the single choke point every step in a
// driver funnels through. useColumns, when non-nil, restricts which
// columns are read for a read-only pass (ignored once write is true,
// since writing a survivor needs every original column); it must
// include every column the predicate and returnColumns touch.
func (rf *ReferentialFilter) pass(ctx context.Context, name string, predicate csvengine.Predicate, write bool, useColumns []string, returnColumns ...string) ([]csvengine.IdSet, error) {
	if err := rf.checkCancel(ctx); err != nil {
		return nil, err
	}

	path, ok := rf.feed.Path(name)
	if !ok {
		return nil, fmt.Errorf("pass %q: %w", name, gtfserr.ErrFileMissing)
	}

	opts := csvengine.FilterOptions{
		Path:          path,
		ColumnTypes:   columnTypesFor(name),
		UseColumns:    useColumns,
		Predicate:     predicate,
		ReturnColumns: returnColumns,
	}
	if write {
		opts.WriteTo = rf.outPath(name)
	}

	ids, err := rf.cfg.engine().FilterFile(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("pass %q: %w", name, err)
	}
	rf.cfg.report(name)
	return ids, nil
}

// routesAgencyShapes runs the three passes shared verbatim by both
// drivers once route_ids and shape_ids are known: routes (collecting
// agency_ids), agency, and the optional shapes file.
func (rf *ReferentialFilter) routesAgencyShapes(ctx context.Context, routeIDs, shapeIDs csvengine.IdSet) error {
	agencyIDs, err := rf.pass(ctx, "routes", csvengine.KeepIfIn([]string{"route_id"}, routeIDs), true, nil, "agency_id")
	if err != nil {
		return err
	}

	if _, err := rf.pass(ctx, "agency", csvengine.KeepIfIn([]string{"agency_id"}, agencyIDs[0]), true, nil); err != nil {
		return err
	}

	if rf.feed.Exists("shapes") {
		if _, err := rf.pass(ctx, "shapes", csvengine.KeepIfIn([]string{"shape_id"}, shapeIDs), true, nil); err != nil {
			return err
		}
	}

	return nil
}

// commonFilesTail runs the passes shared by both drivers once
// serviceIDs and tripIDs are known: calendar_dates, calendar,
// frequencies (optional), stop_times, stops, transfers (optional), and
// an unmodified copy of feed_info.
func (rf *ReferentialFilter) commonFilesTail(ctx context.Context, serviceIDs, tripIDs csvengine.IdSet) error {
	if _, err := rf.pass(ctx, "calendar_dates", csvengine.KeepIfIn([]string{"service_id"}, serviceIDs), true, nil); err != nil {
		return err
	}

	if _, err := rf.pass(ctx, "calendar", csvengine.KeepIfIn([]string{"service_id"}, serviceIDs), true, nil); err != nil {
		return err
	}

	return rf.commonFilesTailFromFrequencies(ctx, tripIDs)
}

// commonFilesTailFromFrequencies runs the common-files tail starting
// at frequencies, skipping the calendar_dates/calendar steps. The date
// driver calls this variant because its own calendar and
// calendar_dates passes already wrote exactly what those two steps
// would recompute.
func (rf *ReferentialFilter) commonFilesTailFromFrequencies(ctx context.Context, tripIDs csvengine.IdSet) error {
	if rf.feed.Exists("frequencies") {
		if _, err := rf.pass(ctx, "frequencies", csvengine.KeepIfIn([]string{"trip_id"}, tripIDs), true, nil); err != nil {
			return err
		}
	}

	stopIDsResult, err := rf.pass(ctx, "stop_times", csvengine.KeepIfIn([]string{"trip_id"}, tripIDs), true, nil, "stop_id")
	if err != nil {
		return err
	}
	stopIDs := stopIDsResult[0]

	if _, err := rf.pass(ctx, "stops", csvengine.KeepIfIn([]string{"stop_id"}, stopIDs), true, nil); err != nil {
		return err
	}

	if rf.feed.Exists("transfers") {
		transferPred := csvengine.KeepIfIn([]string{"from_stop_id", "to_stop_id"}, stopIDs)
		if _, err := rf.pass(ctx, "transfers", transferPred, true, nil); err != nil {
			return err
		}
	}

	if err := rf.copyFeedInfo(); err != nil {
		return err
	}

	return nil
}

// copyFeedInfo copies feed_info byte-for-byte: it is never filtered,
// only carried forward.
func (rf *ReferentialFilter) copyFeedInfo() error {
	src, ok := rf.feed.Path("feed_info")
	if !ok {
		return fmt.Errorf("copying feed_info: %w", gtfserr.ErrFileMissing)
	}

	in, err := os.Open(src) // #nosec G304 -- src comes from feed discovery
	if err != nil {
		return fmt.Errorf("opening feed_info: %w", gtfserr.ErrIoFailure)
	}
	defer in.Close()

	out, err := os.Create(rf.outPath("feed_info")) // #nosec G304 -- destination is our own output directory
	if err != nil {
		return fmt.Errorf("creating feed_info output: %w", gtfserr.ErrIoFailure)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying feed_info: %w", gtfserr.ErrIoFailure)
	}
	return nil
}

// outputFiles lists the *.txt files present in outDir, sorted for
// deterministic output.
func (rf *ReferentialFilter) outputFiles() ([]string, error) {
	entries, err := os.ReadDir(rf.outDir)
	if err != nil {
		return nil, fmt.Errorf("listing output directory %q: %w", rf.outDir, gtfserr.ErrIoFailure)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".txt" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// columnTypesFor is a small convenience wrapper around the declared
// schema, kept here so driver files don't need to import gtfsschema
// directly for a single lookup.
func columnTypesFor(file string) gtfsschema.Columns {
	return gtfsschema.ByFile[file]
}
