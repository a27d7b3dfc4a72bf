//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ogulcanaydogan/circle-overlap-bench/internal/gate"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/generate"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/hash"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/report"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/server"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/store"
	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/schema"
	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/types"
)

func TestFullPipeline_MockStoreValidateGate(t *testing.T) {
	tk := defaultTask(t, 3, types.NewPair("Red", "Blue"))
	rec := runRound(t, tk, generate.Mock{})

	m := rec.Result.Metrics
	if m == nil {
		t.Fatalf("expected metrics, got %+v", rec.Result)
	}
	if m.CircleCount != "3/3" || m.CorrectOverlaps != "1/1" || m.IncorrectOverlaps != 1 {
		t.Fatalf("unexpected metrics %+v", m)
	}

	dir := t.TempDir()
	path, err := store.SaveRun(dir, rec)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := store.LoadRun(path)
	if err != nil {
		t.Fatal(err)
	}

	doc := asDocument(t, loaded)
	problems, err := schema.ValidateBuiltin(schema.Run, doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(problems) > 0 {
		t.Fatalf("run record schema problems: %v", problems)
	}
	digest, _, err := hash.HashCanonicalJSON(doc["result"])
	if err != nil {
		t.Fatal(err)
	}
	if digest != loaded.ResultDigest {
		t.Fatalf("stored result digest %s, recomputed %s", loaded.ResultDigest, digest)
	}

	zero := 0
	if v := gate.Evaluate(gate.Policy{MaxIncorrectOverlaps: &zero}, loaded.Result); len(v) != 1 {
		t.Fatalf("expected one gate violation, got %v", v)
	}
	if v := gate.Evaluate(gate.Policy{RequireExactCount: true, MinCorrectRatio: 1}, loaded.Result); len(v) != 0 {
		t.Fatalf("expected lenient gate to pass, got %v", v)
	}
}

func TestFullPipeline_InvalidCandidate(t *testing.T) {
	tk := defaultTask(t, 2, types.NewPair("Red", "Blue"))
	bad := filepath.Join(t.TempDir(), "bad.svg")
	if err := os.WriteFile(bad, []byte("<svg><circle cx='1' r='2'>"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := runRound(t, tk, generate.File{Path: bad})
	if !rec.Result.Invalid() || rec.Result.Error != types.InvalidSVG {
		t.Fatalf("expected invalid result, got %+v", rec.Result)
	}

	problems, err := schema.ValidateBuiltin(schema.Result, asDocument(t, rec.Result))
	if err != nil {
		t.Fatal(err)
	}
	if len(problems) > 0 {
		t.Fatalf("error result schema problems: %v", problems)
	}

	var buf bytes.Buffer
	if err := report.WriteSummary(&buf, rec.Result); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Error: Invalid SVG XML") {
		t.Fatalf("unexpected summary %q", buf.String())
	}
	if !strings.Contains(report.BuildMarkdown(rec), "INVALID") {
		t.Fatal("markdown report should flag the invalid candidate")
	}
}

func TestFullPipeline_ServerMatchesLocalScoring(t *testing.T) {
	tk := defaultTask(t, 3, types.NewPair("Red", "Blue"))
	local := runRound(t, tk, generate.Mock{})

	srv := httptest.NewServer(server.NewMux(server.DefaultConfig()))
	defer srv.Close()

	body, err := json.Marshal(server.Request{
		Circles:   3,
		Overlaps:  []types.Pair{{"Red", "Blue"}},
		Candidate: generate.MockResponse,
	})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(srv.URL+"/evaluate", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Result-Digest"); got != local.ResultDigest {
		t.Fatalf("server digest %s, local %s", got, local.ResultDigest)
	}
	var remote types.Result
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		t.Fatal(err)
	}
	if *remote.Metrics != *local.Result.Metrics {
		t.Fatalf("server metrics %+v, local %+v", remote.Metrics, local.Result.Metrics)
	}
}
