package feed

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkuranowski/gtfs-subset/internal/gtfserr"
)

const minimalRequiredCSV = "id\n1\n"

func writeMinimalFeed(t *testing.T, dir string, omit ...string) {
	t.Helper()
	skip := map[string]bool{}
	for _, name := range omit {
		skip[name] = true
	}
	required := []string{"agency", "calendar", "calendar_dates", "feed_info", "routes", "stops", "stop_times", "trips"}
	for _, name := range required {
		if skip[name] {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name+".txt"), []byte(minimalRequiredCSV), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
}

func TestOpenDirectoryComplete(t *testing.T) {
	dir := t.TempDir()
	writeMinimalFeed(t, dir)

	l, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	if !l.Exists("stops") {
		t.Error("expected stops to exist")
	}
	if l.Exists("shapes") {
		t.Error("did not expect shapes to exist")
	}
}

func TestOpenMissingRequiredFile(t *testing.T) {
	dir := t.TempDir()
	writeMinimalFeed(t, dir, "agency")

	_, err := Open(dir, nil)
	if !errors.Is(err, gtfserr.ErrFeedIncomplete) {
		t.Fatalf("expected ErrFeedIncomplete, got %v", err)
	}
}

func TestOpenZipExtractsToScratchDir(t *testing.T) {
	src := t.TempDir()
	writeMinimalFeed(t, src)

	zipPath := filepath.Join(t.TempDir(), "feed.zip")
	zf, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("creating zip: %v", err)
	}
	zw := zip.NewWriter(zf)
	entries, _ := os.ReadDir(src)
	for _, e := range entries {
		w, err := zw.Create(e.Name())
		if err != nil {
			t.Fatalf("zip entry: %v", err)
		}
		data, _ := os.ReadFile(filepath.Join(src, e.Name()))
		if _, err := w.Write(data); err != nil {
			t.Fatalf("writing entry: %v", err)
		}
	}
	zw.Close()
	zf.Close()

	l, err := Open(zipPath, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !l.Exists("trips") {
		t.Error("expected trips to exist")
	}
	path, _ := l.Path("trips")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected extracted file to exist on disk: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected scratch directory to be removed after Close")
	}
}

func TestOpenRejectsNonZipFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.tar")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	_, err := Open(path, nil)
	if !errors.Is(err, gtfserr.ErrBadZip) {
		t.Fatalf("expected ErrBadZip, got %v", err)
	}
}

func TestCalendarDatesRecognizedBeforeCalendar(t *testing.T) {
	dir := t.TempDir()
	writeMinimalFeed(t, dir)

	l, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	calPath, _ := l.Path("calendar")
	datesPath, _ := l.Path("calendar_dates")
	if calPath == datesPath {
		t.Fatalf("calendar and calendar_dates resolved to the same file: %s", calPath)
	}
	if filepath.Base(datesPath) != "calendar_dates.txt" {
		t.Errorf("calendar_dates resolved to %s", datesPath)
	}
}
