package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/types"
)

func sampleRecord(id string) types.RunRecord {
	return types.RunRecord{
		SchemaVersion: "1.0.0",
		RunID:         id,
		GeneratedAt:   "2026-01-01T00:00:00Z",
		Generator:     types.Generator{Name: "circlebench", Version: "0.1.0", Kind: "mock"},
		Task: types.TaskSummary{
			Circles:          []string{"Red", "Blue"},
			RequiredOverlaps: []types.Pair{{"Blue", "Red"}},
		},
		Result: types.Result{Error: types.InvalidSVG},
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs")
	path, err := SaveRun(dir, sampleRecord("run-1"))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "run-1.json" {
		t.Fatalf("unexpected path %s", path)
	}
	got, err := LoadRun(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.RunID != "run-1" || got.Result.Error != types.InvalidSVG {
		t.Fatalf("unexpected record %+v", got)
	}
	if got.Task.RequiredOverlaps[0] != (types.Pair{"Blue", "Red"}) {
		t.Fatalf("pair round trip = %v", got.Task.RequiredOverlaps)
	}
}

func TestSaveRunRequiresID(t *testing.T) {
	if _, err := SaveRun(t.TempDir(), types.RunRecord{}); err == nil {
		t.Fatal("expected error for missing run_id")
	}
}

func TestLoadRunErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadRun(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRun(bad); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestListRuns(t *testing.T) {
	dir := t.TempDir()
	for _, id := range []string{"b", "a"} {
		if _, err := SaveRun(dir, sampleRecord(id)); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0o755); err != nil {
		t.Fatal(err)
	}
	paths, err := ListRuns(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 || filepath.Base(paths[0]) != "a.json" || filepath.Base(paths[1]) != "b.json" {
		t.Fatalf("unexpected listing %v", paths)
	}
}
