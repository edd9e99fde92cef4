// Package feed discovers the files of a GTFS feed, whether it lives in
// a plain directory or inside a ZIP archive, and exposes them by
// canonical name. ZIP input is unpacked into a private scratch
// directory whose lifetime is scoped to the Layout.
package feed

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkuranowski/gtfs-subset/internal/gtfserr"
	"github.com/mkuranowski/gtfs-subset/internal/gtfsschema"
	"github.com/mkuranowski/gtfs-subset/logging"
)

// names lists the recognized file stems in longest-match-first order:
// GTFS requires "calendar_dates" be matched before "calendar" so the
// shorter stem doesn't shadow it. "stop_times" has no shorter
// conflicting stem but is kept first for consistency.
var names = []string{
	"stop_times",
	"calendar_dates",
	"agency",
	"calendar",
	"feed_info",
	"routes",
	"stops",
	"trips",
	"frequencies",
	"shapes",
	"transfers",
}

// Layout is a discovered GTFS feed: a set of named CSV files plus,
// for ZIP input, the scratch directory they were unpacked into.
type Layout struct {
	files      map[string]string
	scratchDir string
	logger     logging.Logger
}

// Open discovers a feed at inputPath. If inputPath is a regular file it
// must have a ".zip" suffix; it is unpacked into a fresh scratch
// directory which Close removes. If inputPath is a directory it is
// scanned directly. Open fails with gtfserr.ErrFeedIncomplete if any
// required file (see gtfsschema.Required) is absent.
func Open(inputPath string, logger logging.Logger) (*Layout, error) {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("accessing input %q: %w", inputPath, gtfserr.ErrIoFailure)
	}

	l := &Layout{files: make(map[string]string), logger: logger}

	if info.Mode().IsRegular() {
		if !strings.EqualFold(filepath.Ext(inputPath), ".zip") {
			return nil, fmt.Errorf("input %q is a file but not a .zip: %w", inputPath, gtfserr.ErrBadZip)
		}
		scratch, err := unpackZip(inputPath)
		if err != nil {
			return nil, err
		}
		l.scratchDir = scratch
		if err := l.scan(scratch); err != nil {
			_ = os.RemoveAll(scratch)
			return nil, err
		}
	} else {
		if err := l.scan(inputPath); err != nil {
			return nil, err
		}
	}

	if err := l.requireComplete(); err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

// unpackZip extracts the .txt files at the ZIP's root (or single
// top-level prefix) into a fresh scratch directory.
func unpackZip(zipPath string) (string, error) {
	scratch, err := os.MkdirTemp("", "gtfs-subset-*")
	if err != nil {
		return "", fmt.Errorf("creating scratch directory: %w", gtfserr.ErrIoFailure)
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		_ = os.RemoveAll(scratch)
		return "", fmt.Errorf("opening zip %q: %w", zipPath, gtfserr.ErrBadZip)
	}
	defer r.Close()

	prefix := commonTopLevelPrefix(r.File)

	for _, zf := range r.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		name := zf.Name
		if prefix != "" {
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			name = strings.TrimPrefix(name, prefix)
		}
		if !strings.HasSuffix(name, ".txt") {
			continue
		}
		if strings.Contains(name, "/") {
			// Not at root or single top-level prefix; skip nested files.
			continue
		}
		if err := extractEntry(zf, filepath.Join(scratch, name)); err != nil {
			_ = os.RemoveAll(scratch)
			return "", err
		}
	}

	return scratch, nil
}

// commonTopLevelPrefix returns "dir/" if every .txt file in the archive
// lives under the same single top-level directory, else "".
func commonTopLevelPrefix(files []*zip.File) string {
	prefix := ""
	seen := false
	for _, zf := range files {
		if zf.FileInfo().IsDir() || !strings.HasSuffix(zf.Name, ".txt") {
			continue
		}
		idx := strings.Index(zf.Name, "/")
		if idx < 0 {
			return ""
		}
		p := zf.Name[:idx+1]
		if !seen {
			prefix = p
			seen = true
		} else if p != prefix {
			return ""
		}
	}
	return prefix
}

func extractEntry(zf *zip.File, dest string) error {
	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("reading zip entry %q: %w", zf.Name, gtfserr.ErrIoFailure)
	}
	defer rc.Close()

	out, err := os.Create(dest) // #nosec G304 -- dest is derived from our own scratch dir
	if err != nil {
		return fmt.Errorf("writing scratch file %q: %w", dest, gtfserr.ErrIoFailure)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil { // #nosec G110 -- GTFS feeds are not adversarial archive bombs in this context
		return fmt.Errorf("extracting %q: %w", zf.Name, gtfserr.ErrIoFailure)
	}
	return nil
}

// scan walks dir and records every recognized GTFS file by its
// canonical name, using longest-match-first stem recognition.
func (l *Layout) scan(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scanning %q: %w", dir, gtfserr.ErrIoFailure)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), ".txt")
		matched := ""
		for _, name := range names {
			if strings.Contains(stem, name) {
				matched = name
				break
			}
		}
		if matched == "" {
			l.logger.Warn("ignoring unknown GTFS file", logging.String("file", entry.Name()))
			continue
		}
		l.files[matched] = filepath.Join(dir, entry.Name())
	}
	return nil
}

func (l *Layout) requireComplete() error {
	for _, name := range gtfsschema.Required {
		if _, ok := l.files[name]; !ok {
			return fmt.Errorf("missing required file %q.txt: %w", name, gtfserr.ErrFeedIncomplete)
		}
	}
	return nil
}

// Path returns the absolute path of the named file (e.g. "stops") and
// whether it was found during discovery. Optional files answer false
// when the feed did not include them.
func (l *Layout) Path(name string) (string, bool) {
	p, ok := l.files[name]
	return p, ok
}

// Exists reports whether the named file is present in this feed.
func (l *Layout) Exists(name string) bool {
	_, ok := l.files[name]
	return ok
}

// Close releases the scratch directory, if one was created for ZIP
// input. It is safe to call multiple times.
func (l *Layout) Close() error {
	if l.scratchDir == "" {
		return nil
	}
	dir := l.scratchDir
	l.scratchDir = ""
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing scratch directory %q: %w", dir, gtfserr.ErrIoFailure)
	}
	return nil
}
