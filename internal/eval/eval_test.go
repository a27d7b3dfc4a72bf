package eval

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/circle-overlap-bench/internal/extract"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/task"
	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/schema"
	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/types"
)

const fencedCandidate = "Sure!\n```svg\n<svg width=\"300\" height=\"300\">\n" +
	"  <!-- Red Circle -->\n  <circle cx=\"100\" cy=\"100\" r=\"50\" fill=\"Red\" />\n" +
	"  <circle cx=\"160\" cy=\"100\" r=\"50\" fill=\"Blue\" />\n" +
	"  <circle cx=\"220\" cy=\"100\" r=\"50\" fill=\"Green\" />\n</svg>\n```\n"

func newTask(t *testing.T, n int, pairs ...types.Pair) *task.Task {
	t.Helper()
	tk, err := task.New(n, pairs, nil)
	require.NoError(t, err)
	return tk
}

func TestEvaluate_FencedCandidate(t *testing.T) {
	r := New().Evaluate(fencedCandidate, newTask(t, 3, types.Pair{"Red", "Blue"}))
	require.False(t, r.Invalid())
	assert.Equal(t, "3/3", r.Metrics.CircleCount)
	assert.Equal(t, "1/1", r.Metrics.CorrectOverlaps)
	assert.Equal(t, 1, r.Metrics.IncorrectOverlaps)
	assert.Equal(t, []types.Pair{{"blue", "green"}}, r.Details.HallucinatedPairs)
}

func TestEvaluate_WithoutExtractionFenceIsInvalid(t *testing.T) {
	r := New(WithExtractor(extract.Identity)).Evaluate(fencedCandidate, newTask(t, 3))
	assert.True(t, r.Invalid())
	assert.Equal(t, types.InvalidSVG, r.Error)
}

func TestEvaluate_MalformedLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := New(WithLogger(logger)).Evaluate("<svg><circle r='1'/>", newTask(t, 1))
	assert.True(t, r.Invalid())
	assert.Contains(t, buf.String(), "not well-formed")
}

func TestEvaluate_SkippedCircleLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := New(WithLogger(logger)).Evaluate(`<svg><circle r="x"/><circle r="1"/></svg>`, newTask(t, 2))
	require.False(t, r.Invalid())
	assert.Equal(t, "1/2", r.Metrics.CircleCount)
	assert.Contains(t, buf.String(), "skipping circle")
}

func TestEvaluateChecked_Deterministic(t *testing.T) {
	tk := newTask(t, 3, types.Pair{"Red", "Blue"}, types.Pair{"Green", "Yellow"})
	r1, d1, err := New().EvaluateChecked(fencedCandidate, tk, 5)
	require.NoError(t, err)
	r2, d2, err := New().EvaluateChecked(fencedCandidate, tk, 1)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)

	a, err := json.Marshal(r1)
	require.NoError(t, err)
	b, err := json.Marshal(r2)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestEvaluateChecked_DetectsNondeterminism(t *testing.T) {
	calls := 0
	flaky := extract.Func(func(text string) string {
		calls++
		if calls%2 == 0 {
			return "not svg"
		}
		return text
	})
	_, _, err := New(WithExtractor(flaky)).EvaluateChecked(`<svg></svg>`, newTask(t, 1), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "determinism check failed")
}

func TestNewRunRecord(t *testing.T) {
	tk := newTask(t, 2, types.Pair{"Red", "Blue"})
	prompt := tk.Prompt()
	r := New().Evaluate(fencedCandidate, tk)
	rec, err := NewRunRecord(tk, prompt, fencedCandidate, r, types.Generator{Kind: "mock"})
	require.NoError(t, err)

	_, err = uuid.Parse(rec.RunID)
	assert.NoError(t, err)
	assert.Equal(t, ToolName, rec.Generator.Name)
	assert.Equal(t, ToolVersion, rec.Generator.Version)
	assert.True(t, strings.HasPrefix(rec.PromptDigest, "sha256:"))
	assert.Equal(t, []string{"Red", "Blue"}, rec.Task.Circles)

	_, d, err := New().EvaluateChecked(fencedCandidate, tk, 1)
	require.NoError(t, err)
	assert.Equal(t, d, rec.ResultDigest)

	var doc map[string]any
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &doc))
	errs, err := schema.ValidateBuiltin(schema.Run, doc)
	require.NoError(t, err)
	assert.Empty(t, errs)
	errs, err = schema.ValidateBuiltin(schema.Result, doc["result"])
	require.NoError(t, err)
	assert.Empty(t, errs)
}
