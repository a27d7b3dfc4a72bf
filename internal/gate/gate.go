// Package gate applies pass/fail thresholds to an evaluation result.
package gate

import (
	"fmt"
	"os"

	goyaml "gopkg.in/yaml.v3"

	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/types"
)

type Policy struct {
	Version              string  `yaml:"version"`
	RequireExactCount    bool    `yaml:"require_exact_count"`
	MinCorrectRatio      float64 `yaml:"min_correct_ratio"`
	MaxIncorrectOverlaps *int    `yaml:"max_incorrect_overlaps"`
	AllowInvalid         bool    `yaml:"allow_invalid"`
}

func LoadPolicy(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, err
	}
	var p Policy
	if err := goyaml.Unmarshal(raw, &p); err != nil {
		return Policy{}, fmt.Errorf("parse policy %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("policy %s: %w", path, err)
	}
	return p, nil
}

func (p Policy) Validate() error {
	if p.MinCorrectRatio < 0 || p.MinCorrectRatio > 1 {
		return fmt.Errorf("min_correct_ratio must be within [0,1], got %v", p.MinCorrectRatio)
	}
	if p.MaxIncorrectOverlaps != nil && *p.MaxIncorrectOverlaps < 0 {
		return fmt.Errorf("max_incorrect_overlaps must not be negative, got %d", *p.MaxIncorrectOverlaps)
	}
	return nil
}

// Evaluate returns one message per violated threshold; none means the result passes.
func Evaluate(p Policy, r types.Result) []string {
	if r.Invalid() {
		if p.AllowInvalid {
			return nil
		}
		return []string{fmt.Sprintf("candidate rejected: %s", r.Error)}
	}
	if r.Metrics == nil {
		return []string{"result has no metrics"}
	}
	m := *r.Metrics

	violations := make([]string, 0)
	if p.RequireExactCount && m.DetectedCircles != m.ExpectedCircles {
		violations = append(violations, fmt.Sprintf("circle count %s is not exact", m.CircleCount))
	}
	if ratio := m.CorrectRatio(); ratio < p.MinCorrectRatio {
		violations = append(violations, fmt.Sprintf("correct overlaps %s below minimum ratio %.2f", m.CorrectOverlaps, p.MinCorrectRatio))
	}
	if p.MaxIncorrectOverlaps != nil && m.IncorrectOverlaps > *p.MaxIncorrectOverlaps {
		msg := fmt.Sprintf("%d incorrect overlaps exceed maximum %d", m.IncorrectOverlaps, *p.MaxIncorrectOverlaps)
		if r.Details != nil && len(r.Details.HallucinatedPairs) > 0 {
			msg += fmt.Sprintf(" (first: %s)", r.Details.HallucinatedPairs[0])
		}
		violations = append(violations, msg)
	}
	return violations
}
