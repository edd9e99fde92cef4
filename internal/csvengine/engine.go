// Package csvengine reads a GTFS CSV file in bounded, ordered chunks,
// evaluates a predicate over each chunk (optionally in parallel), writes
// surviving rows back out in input order, and collects distinct values
// of requested return columns along the way.
package csvengine

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/mkuranowski/gtfs-subset/internal/gtfserr"
	"github.com/mkuranowski/gtfs-subset/internal/gtfsschema"
	"github.com/mkuranowski/gtfs-subset/logging"
	"github.com/mkuranowski/gtfs-subset/pools"
)

// FilterOptions configures a single pass over one GTFS file.
type FilterOptions struct {
	// Path is the CSV file to read.
	Path string
	// ColumnTypes declares the logical type of each known column. A
	// cell declared Int64 or Float64 that fails to parse is stored as
	// missing rather than as its raw text, so every accessor (Get,
	// Int64, Float64) agrees on what "missing" means. Columns absent
	// from this map are treated as Text. A nil map treats every column
	// as Text.
	ColumnTypes gtfsschema.Columns
	// UseColumns restricts which columns are materialized into each
	// Row. Honored only when WriteTo is empty: writing a survivor
	// requires every original column, so a projected read would lose
	// data the writer needs.
	UseColumns []string
	// Predicate decides which rows survive. A nil Predicate keeps every
	// row.
	Predicate Predicate
	// WriteTo is the destination path for surviving rows. Left empty
	// when the pass is read-only (e.g. a metadata probe).
	WriteTo string
	// ReturnColumns names the columns whose distinct surviving values
	// should be collected and returned by FilterFile.
	ReturnColumns []string
}

// Engine executes filter passes with a bounded degree of parallelism.
type Engine struct {
	// Workers is the number of chunks processed concurrently. Values
	// less than 1 are treated as 1.
	Workers int
	// ChunkSize is the number of rows per unit of work dispatched to a
	// worker. Values less than 1 are treated as 1000.
	ChunkSize int
	Logger    logging.Logger

	bufPool *pools.BufferPool
	rowPool *pools.MapPool
}

// NewEngine builds an Engine with the given worker count and chunk
// size. A nil logger falls back to the global logger.
func NewEngine(workers, chunkSize int, logger logging.Logger) *Engine {
	if workers < 1 {
		workers = 1
	}
	if chunkSize < 1 {
		chunkSize = 1000
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Engine{
		Workers:   workers,
		ChunkSize: chunkSize,
		Logger:    logger,
		bufPool:   pools.NewBufferPool(64 * 1024),
		rowPool:   pools.NewMapPool(),
	}
}

// FilterFile streams opts.Path in chunks, filters it through
// opts.Predicate, optionally writes survivors to opts.WriteTo, and
// returns one IdSet per entry of opts.ReturnColumns (see collector for
// the exact padding contract).
func (e *Engine) FilterFile(ctx context.Context, opts FilterOptions) ([]IdSet, error) {
	f, err := os.Open(opts.Path) // #nosec G304 -- opts.Path comes from feed discovery, not untrusted user input
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", opts.Path, gtfserr.ErrFileMissing)
	}
	defer f.Close()

	reader, header, err := newBomAwareCsvReader(f)
	if err != nil {
		return nil, fmt.Errorf("reading header of %q: %w", opts.Path, err)
	}

	var writer *bufio.Writer
	var outFile *os.File
	if opts.WriteTo != "" {
		outFile, err = os.Create(opts.WriteTo) // #nosec G304 -- opts.WriteTo is operator-controlled output path
		if err != nil {
			return nil, fmt.Errorf("creating %q: %w", opts.WriteTo, gtfserr.ErrIoFailure)
		}
		defer outFile.Close()
		writer = bufio.NewWriter(outFile)
		defer writer.Flush()
		if err := e.writeQuotedRecord(writer, header); err != nil {
			return nil, err
		}
	}

	predicate := opts.Predicate
	if predicate == nil {
		predicate = func(c Chunk) Chunk { return c }
	}

	collect := newCollector(opts.ReturnColumns, header)

	colIndex := make(map[string]int, len(header))
	for i, h := range header {
		colIndex[h] = i
	}
	wantColumn := func(col string) bool {
		if len(opts.UseColumns) == 0 || opts.WriteTo != "" {
			return true
		}
		for _, c := range opts.UseColumns {
			if c == col {
				return true
			}
		}
		return false
	}

	e.Logger.Debug("starting filter pass",
		logging.String("file", opts.Path),
		logging.Int("workers", e.Workers),
		logging.Int("chunk_size", e.ChunkSize))

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", gtfserr.ErrCancelled, err)
		}

		raws, readErr := readRawChunks(reader, e.Workers, e.ChunkSize)
		if len(raws) == 0 {
			if readErr != nil && readErr != io.EOF {
				return nil, fmt.Errorf("reading %q: %w", opts.Path, gtfserr.ErrIoFailure)
			}
			break
		}

		chunks := make([]Chunk, len(raws))
		var wg sync.WaitGroup
		sem := make(chan struct{}, e.Workers)
		for i, raw := range raws {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, raw [][]string) {
				defer wg.Done()
				defer func() { <-sem }()
				chunk := make(Chunk, len(raw))
				for j, rec := range raw {
					chunk[j] = e.rowFromRecord(header, rec, colIndex, wantColumn, j, opts.ColumnTypes)
				}
				chunks[i] = predicate(chunk)
			}(i, raw)
		}
		wg.Wait()

		for i, chunk := range chunks {
			for _, row := range chunk {
				collect.observe(row)
			}
			if writer != nil {
				if err := e.writeSurvivingRecords(writer, raws[i], chunk); err != nil {
					return nil, err
				}
			}
			for _, row := range chunk {
				e.rowPool.Put(row)
			}
		}

		if readErr == io.EOF {
			break
		}
	}

	return collect.results(), nil
}

// newBomAwareCsvReader wraps r with a UTF-8 BOM-stripping transform and
// returns a configured csv.Reader positioned after the header row.
func newBomAwareCsvReader(r io.Reader) (*csv.Reader, []string, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(bufio.NewReaderSize(decoded, 64*1024))
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("empty or unreadable CSV: %w", gtfserr.ErrIoFailure)
	}
	return cr, header, nil
}

// readRawChunks reads up to workers*chunkSize rows, split into workers
// chunks of at most chunkSize rows, preserving order. It returns
// io.EOF alongside any final partial batch.
func readRawChunks(r *csv.Reader, workers, chunkSize int) ([][][]string, error) {
	var chunks [][][]string
	var readErr error

	for w := 0; w < workers; w++ {
		chunk := make([][]string, 0, chunkSize)
		for len(chunk) < chunkSize {
			rec, err := r.Read()
			if err != nil {
				readErr = err
				break
			}
			chunk = append(chunk, rec)
		}
		if len(chunk) > 0 {
			chunks = append(chunks, chunk)
		}
		if readErr != nil {
			break
		}
	}

	return chunks, readErr
}

// rowIndexKey is a reserved Row key, never a valid GTFS column name,
// used internally to trace a filtered Row back to its raw record.
const rowIndexKey = "\x00idx"

func (e *Engine) rowFromRecord(header []string, rec []string, colIndex map[string]int, want func(string) bool, idx int, types gtfsschema.Columns) Row {
	row := Row(e.rowPool.Get())
	for _, h := range header {
		if !want(h) {
			continue
		}
		i := colIndex[h]
		if i >= len(rec) {
			continue
		}
		v := rec[i]
		if !cellParses(v, types[h]) {
			continue // unparseable numeric cell: stored as missing
		}
		row[h] = v
	}
	row[rowIndexKey] = fmt.Sprint(idx)
	return row
}

// cellParses reports whether v is a valid value for t. Text always
// parses; Int64/Float64 require strconv to succeed. An empty cell
// parses trivially (it is "missing", not "malformed").
func cellParses(v string, t gtfsschema.ColumnType) bool {
	if v == "" {
		return true
	}
	switch t {
	case gtfsschema.Int64:
		_, err := strconv.ParseInt(v, 10, 64)
		return err == nil
	case gtfsschema.Float64:
		_, err := strconv.ParseFloat(v, 64)
		return err == nil
	default:
		return true
	}
}

// writeSurvivingRecords writes the raw records whose index (recorded
// via rowIndexKey) appears among survivors, in original order.
func (e *Engine) writeSurvivingRecords(w *bufio.Writer, raw [][]string, survivors Chunk) error {
	for _, row := range survivors {
		idxStr := row[rowIndexKey]
		var idx int
		if _, err := fmt.Sscanf(idxStr, "%d", &idx); err != nil || idx < 0 || idx >= len(raw) {
			return fmt.Errorf("internal error: corrupt row index %q: %w", idxStr, gtfserr.ErrIoFailure)
		}
		if err := e.writeQuotedRecord(w, raw[idx]); err != nil {
			return err
		}
	}
	return nil
}

// writeQuotedRecord assembles rec, as an RFC 4180 record with every
// field double-quoted and doublequote-escaped and terminated by a
// single "\n", into a pooled buffer before copying it to w. Reusing
// the buffer avoids a per-record allocation on the hot write path.
func (e *Engine) writeQuotedRecord(w *bufio.Writer, rec []string) error {
	buf := e.bufPool.Get()
	defer e.bufPool.Put(buf)

	for i, field := range rec {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing output: %w", gtfserr.ErrIoFailure)
	}
	return nil
}
