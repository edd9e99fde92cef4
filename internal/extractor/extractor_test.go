package extractor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mkuranowski/gtfs-subset/internal/bbox"
	"github.com/mkuranowski/gtfs-subset/internal/feed"
	"github.com/mkuranowski/gtfs-subset/internal/gtfsdate"
)

// buildFixture writes a small, fully cross-referenced GTFS feed with
// two independent route/trip/service/shape chains, one reachable from
// a tight bbox and date window and one deliberately outside both.
func buildFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"agency.txt":         "agency_id,agency_name\nA1,Agency One\n",
		"routes.txt":         "route_id,agency_id\nR1,A1\nR2,A1\n",
		"trips.txt":          "route_id,service_id,trip_id,shape_id\nR1,S1,T1,SH1\nR2,S2,T2,SH2\n",
		"stop_times.txt":     "trip_id,stop_id,stop_sequence\nT1,ST1,1\nT1,ST2,2\nT2,ST3,1\n",
		"stops.txt":          "stop_id,stop_lat,stop_lon\nST1,10,10\nST2,10.5,10.5\nST3,50,50\n",
		"calendar.txt":       "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\nS1,1,1,1,1,1,0,0,20220101,20220110\nS2,1,1,1,1,1,0,0,20220201,20220210\n",
		"calendar_dates.txt": "service_id,date,exception_type\nS1,20220105,1\n",
		"shapes.txt":         "shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence\nSH1,10,10,1\nSH2,50,50,1\n",
		"feed_info.txt":      "feed_publisher_name,feed_publisher_url,feed_lang\nAcme,https://acme.example,en\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

func readOutput(t *testing.T, dir, name string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestExtractByBboxProducesReferentiallyClosedSubset(t *testing.T) {
	src := buildFixture(t)
	l, err := feed.Open(src, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	outDir := t.TempDir()
	rf, err := New(l, outDir, WithWorkers(2), WithChunkSize(2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	b := bbox.New(9, 9, 11, 11)
	names, err := rf.ExtractByBbox(context.Background(), b)
	if err != nil {
		t.Fatalf("ExtractByBbox: %v", err)
	}

	want := []string{"agency.txt", "calendar.txt", "calendar_dates.txt", "feed_info.txt", "routes.txt", "shapes.txt", "stop_times.txt", "stops.txt", "trips.txt"}
	if len(names) != len(want) {
		t.Fatalf("expected %d output files, got %d: %v", len(want), len(names), names)
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("output file %d: got %q, want %q", i, names[i], n)
		}
	}

	stops := readOutput(t, outDir, "stops.txt")
	if len(stops) != 3 { // header + ST1 + ST2
		t.Errorf("stops.txt: expected 3 lines, got %d: %v", len(stops), stops)
	}
	for _, l := range stops[1:] {
		if strings.Contains(l, "ST3") {
			t.Errorf("stops.txt unexpectedly contains out-of-bbox stop: %s", l)
		}
	}

	trips := readOutput(t, outDir, "trips.txt")
	if len(trips) != 2 { // header + T1
		t.Errorf("trips.txt: expected 2 lines, got %d: %v", len(trips), trips)
	}
	if !strings.Contains(trips[1], "T1") || strings.Contains(trips[1], "T2") {
		t.Errorf("trips.txt should contain only T1: %v", trips)
	}

	routes := readOutput(t, outDir, "routes.txt")
	if len(routes) != 2 || !strings.Contains(routes[1], "R1") {
		t.Errorf("routes.txt should contain only R1: %v", routes)
	}

	shapes := readOutput(t, outDir, "shapes.txt")
	if len(shapes) != 2 || !strings.Contains(shapes[1], "SH1") {
		t.Errorf("shapes.txt should contain only SH1: %v", shapes)
	}
}

func TestExtractByDateMatchesBboxSubsetOnThisFixture(t *testing.T) {
	src := buildFixture(t)
	l, err := feed.Open(src, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	outDir := t.TempDir()
	rf, err := New(l, outDir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	start, _ := gtfsdate.Parse("20220101")
	end, _ := gtfsdate.Parse("20220110")
	names, err := rf.ExtractByDate(context.Background(), start, end)
	if err != nil {
		t.Fatalf("ExtractByDate: %v", err)
	}
	if len(names) != 9 {
		t.Fatalf("expected 9 output files, got %d: %v", len(names), names)
	}

	trips := readOutput(t, outDir, "trips.txt")
	if len(trips) != 2 || !strings.Contains(trips[1], "T1") {
		t.Errorf("trips.txt should contain only T1 (service S1): %v", trips)
	}

	calendar := readOutput(t, outDir, "calendar.txt")
	if len(calendar) != 2 || !strings.Contains(calendar[1], "S1") {
		t.Errorf("calendar.txt should contain only S1: %v", calendar)
	}
}

func TestExtractByBboxSkipsAbsentOptionalShapes(t *testing.T) {
	src := buildFixture(t)
	if err := os.Remove(filepath.Join(src, "shapes.txt")); err != nil {
		t.Fatalf("removing shapes.txt: %v", err)
	}

	l, err := feed.Open(src, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	outDir := t.TempDir()
	rf, err := New(l, outDir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	b := bbox.New(9, 9, 11, 11)
	names, err := rf.ExtractByBbox(context.Background(), b)
	if err != nil {
		t.Fatalf("ExtractByBbox: %v", err)
	}
	if len(names) != 8 {
		t.Fatalf("expected 8 output files without shapes, got %d: %v", len(names), names)
	}
	for _, n := range names {
		if n == "shapes.txt" {
			t.Errorf("did not expect shapes.txt in output")
		}
	}
}

func TestServiceDateRangeReportsFullSpan(t *testing.T) {
	src := buildFixture(t)
	l, err := feed.Open(src, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	start, end, err := ServiceDateRange(context.Background(), l)
	if err != nil {
		t.Fatalf("ServiceDateRange: %v", err)
	}
	if start != "2022-01-01 00:00:00" {
		t.Errorf("start: got %q", start)
	}
	if end != "2022-02-10 00:00:00" {
		t.Errorf("end: got %q", end)
	}
}
