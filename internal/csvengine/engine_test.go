package csvengine

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestFilterFileWritesSurvivorsInOrder(t *testing.T) {
	dir := t.TempDir()
	src := writeCSV(t, dir, "stops.txt",
		"stop_id,stop_name\n1,Alpha\n2,Beta\n3,Gamma\n4,Delta\n")
	dst := filepath.Join(dir, "out.txt")

	e := NewEngine(2, 1, nil)
	keep := NewIdSet("1", "3")
	ids, err := e.FilterFile(context.Background(), FilterOptions{
		Path:          src,
		Predicate:     KeepIfIn([]string{"stop_id"}, keep),
		WriteTo:       dst,
		ReturnColumns: []string{"stop_id"},
	})
	if err != nil {
		t.Fatalf("FilterFile: %v", err)
	}

	out, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	want := `"stop_id","stop_name"` + "\n" + `"1","Alpha"` + "\n" + `"3","Gamma"` + "\n"
	if string(out) != want {
		t.Errorf("output mismatch:\ngot:  %q\nwant: %q", out, want)
	}

	if len(ids) != 1 {
		t.Fatalf("expected 1 return column, got %d", len(ids))
	}
	if !ids[0].Contains("1") || !ids[0].Contains("3") || ids[0].Len() != 2 {
		t.Errorf("unexpected return ids: %v", ids[0])
	}
}

func TestFilterFileMissingReturnColumnPadsEmpty(t *testing.T) {
	dir := t.TempDir()
	src := writeCSV(t, dir, "routes.txt", "route_id\n1\n2\n")

	e := NewEngine(1, 10, nil)
	ids, err := e.FilterFile(context.Background(), FilterOptions{
		Path:          src,
		ReturnColumns: []string{"route_id", "agency_id"},
	})
	if err != nil {
		t.Fatalf("FilterFile: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(ids))
	}
	if ids[0].Len() != 2 {
		t.Errorf("expected 2 route ids, got %d", ids[0].Len())
	}
	if ids[1].Len() != 0 {
		t.Errorf("expected agency_id slot to be empty, got %d", ids[1].Len())
	}
}

func TestFilterFileUseColumnsProjectsReadOnlyPass(t *testing.T) {
	dir := t.TempDir()
	src := writeCSV(t, dir, "stops.txt",
		"stop_id,stop_name,stop_lat,stop_lon\n"+
			"1,Alpha,50.0,19.0\n"+
			"2,Beta,51.0,20.0\n")

	var seenNames []string
	e := NewEngine(1, 10, nil)
	ids, err := e.FilterFile(context.Background(), FilterOptions{
		Path:       src,
		UseColumns: []string{"stop_id", "stop_lat"},
		Predicate: func(c Chunk) Chunk {
			for _, row := range c {
				if name, ok := row.Get("stop_name"); ok {
					seenNames = append(seenNames, name)
				}
			}
			return c
		},
		ReturnColumns: []string{"stop_id"},
	})
	if err != nil {
		t.Fatalf("FilterFile: %v", err)
	}

	if len(seenNames) != 0 {
		t.Errorf("expected stop_name to be projected out, but predicate observed %v", seenNames)
	}
	if ids[0].Len() != 2 || !ids[0].Contains("1") || !ids[0].Contains("2") {
		t.Errorf("unexpected return ids: %v", ids[0])
	}
}

func TestFilterFileUseColumnsIgnoredWhenWriting(t *testing.T) {
	dir := t.TempDir()
	src := writeCSV(t, dir, "stops.txt", "stop_id,stop_name\n1,Alpha\n2,Beta\n")
	dst := filepath.Join(dir, "out.txt")

	e := NewEngine(1, 10, nil)
	if _, err := e.FilterFile(context.Background(), FilterOptions{
		Path:       src,
		UseColumns: []string{"stop_id"},
		WriteTo:    dst,
	}); err != nil {
		t.Fatalf("FilterFile: %v", err)
	}

	out, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	want := `"stop_id","stop_name"` + "\n" + `"1","Alpha"` + "\n" + `"2","Beta"` + "\n"
	if string(out) != want {
		t.Errorf("output mismatch: got %q, want %q", out, want)
	}
}

func TestFilterFileMultiChunkPreservesOrderAcrossWorkers(t *testing.T) {
	dir := t.TempDir()
	var sb strings.Builder
	sb.WriteString("id\n")
	for i := 1; i <= 50; i++ {
		sb.WriteString(strconv.Itoa(i))
		sb.WriteByte('\n')
	}
	src := writeCSV(t, dir, "big.txt", sb.String())
	dst := filepath.Join(dir, "out.txt")

	e := NewEngine(4, 3, nil)
	if _, err := e.FilterFile(context.Background(), FilterOptions{
		Path:    src,
		WriteTo: dst,
	}); err != nil {
		t.Fatalf("FilterFile: %v", err)
	}

	out, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 51 {
		t.Fatalf("expected 51 lines (header + 50 rows), got %d", len(lines))
	}
	for i := 1; i <= 50; i++ {
		want := `"` + strconv.Itoa(i) + `"`
		if lines[i] != want {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want)
		}
	}
}
