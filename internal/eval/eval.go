// Package eval wires extraction, parsing and scoring into one evaluation round.
package eval

import (
	"fmt"
	"log/slog"

	"github.com/ogulcanaydogan/circle-overlap-bench/internal/extract"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/hash"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/score"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/svg"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/task"
	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/types"
)

type Evaluator struct {
	extractor extract.Extractor
	logger    *slog.Logger
}

type Option func(*Evaluator)

func WithExtractor(e extract.Extractor) Option {
	return func(ev *Evaluator) { ev.extractor = e }
}

func WithLogger(l *slog.Logger) Option {
	return func(ev *Evaluator) { ev.logger = l }
}

func New(opts ...Option) *Evaluator {
	ev := &Evaluator{extractor: extract.FirstSVG{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

// Evaluate scores candidate against t. It has no side effects besides logging.
func (e *Evaluator) Evaluate(candidate string, t *task.Task) types.Result {
	doc := svg.Parse(e.extractor.Extract(candidate))
	if doc.Malformed() {
		e.logger.Debug("candidate markup is not well-formed", "error", doc.Err)
	}
	for _, issue := range doc.Issues() {
		e.logger.Debug("skipping circle", "element", issue.Element, "attr", issue.Attr, "value", issue.Value)
	}
	return score.Document(doc, t.RequiredOverlaps(), t.Colors())
}

// EvaluateChecked runs Evaluate runs times (at least once) and fails if the
// canonical digests of the results ever differ.
func (e *Evaluator) EvaluateChecked(candidate string, t *task.Task, runs int) (types.Result, string, error) {
	result := e.Evaluate(candidate, t)
	first, _, err := hash.HashCanonicalJSON(result)
	if err != nil {
		return types.Result{}, "", err
	}
	for i := 1; i < runs; i++ {
		next, _, err := hash.HashCanonicalJSON(e.Evaluate(candidate, t))
		if err != nil {
			return types.Result{}, "", err
		}
		if first != next {
			return types.Result{}, "", fmt.Errorf("determinism check failed: %s != %s", first, next)
		}
	}
	return result, first, nil
}
