//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ogulcanaydogan/circle-overlap-bench/internal/eval"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/generate"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/task"
	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/types"
)

func defaultTask(t *testing.T, count int, required ...types.Pair) *task.Task {
	t.Helper()
	tk, err := task.New(count, required, nil)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	return tk
}

// runRound drives one full round and returns the record the CLI would save.
func runRound(t *testing.T, tk *task.Task, gen generate.Generator) types.RunRecord {
	t.Helper()
	prompt := tk.Prompt()
	candidate, err := gen.Generate(context.Background(), prompt)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	result, _, err := eval.New().EvaluateChecked(candidate, tk, 3)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	rec, err := eval.NewRunRecord(tk, prompt, candidate, result, types.Generator{Kind: "mock"})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	return rec
}

// asDocument round-trips v through JSON so schema checks see what a reader of the file would.
func asDocument(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	return doc
}
