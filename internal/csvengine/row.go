package csvengine

import "strconv"

// Row is one parsed CSV record, keyed by column name. Only the columns
// the caller asked to read (see FilterOptions.UseColumns) are present;
// absent columns are simply unavailable to predicates that name them.
type Row map[string]string

// Chunk is a contiguous, ordered run of rows from one file. Chunks
// partition the file; they never escape the engine.
type Chunk []Row

// Predicate inspects a chunk and returns the surviving rows, in the
// same relative order. Predicates must be pure and side-effect free:
// the engine may run them concurrently across chunks of the same file.
type Predicate func(Chunk) Chunk

// Get returns the raw string value of column and whether it is present
// and non-empty (a "missing" value, per the data model, is either an
// absent column or an empty cell).
func (r Row) Get(column string) (string, bool) {
	v, ok := r[column]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Int64 parses column as an integer. A missing or unparseable cell
// reports ok=false; the caller treats that as "missing" per the data
// model, never as a hard error.
func (r Row) Int64(column string) (int64, bool) {
	v, ok := r.Get(column)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Float64 parses column as a float. A missing or unparseable cell
// reports ok=false.
func (r Row) Float64(column string) (float64, bool) {
	v, ok := r.Get(column)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
