// Package gtfserr defines the sentinel error kinds shared across the
// extraction pipeline. Components wrap one of these with additional
// context via fmt.Errorf("...: %w", ...) so callers can still use
// errors.Is to recognize the failure kind.
package gtfserr

import "errors"

var (
	// ErrFeedIncomplete means a required GTFS file is missing from the feed.
	ErrFeedIncomplete = errors.New("gtfs: required file missing from feed")

	// ErrFileMissing means a referenced input file does not exist at read time.
	ErrFileMissing = errors.New("gtfs: file missing")

	// ErrBadZip means the input has a non-.zip extension or could not be unpacked.
	ErrBadZip = errors.New("gtfs: bad zip input")

	// ErrBadDate means a date string does not match YYYYMMDD.
	ErrBadDate = errors.New("gtfs: malformed date")

	// ErrBadBbox means a bbox argument could not be parsed into four floats.
	ErrBadBbox = errors.New("gtfs: malformed bbox")

	// ErrCancelled means a cancellation signal interrupted the run.
	ErrCancelled = errors.New("gtfs: extraction cancelled")

	// ErrIoFailure covers underlying filesystem or encoding failures.
	ErrIoFailure = errors.New("gtfs: io failure")
)
