// Package report renders evaluation results for people and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/types"
)

// WriteSummary prints the fixed three-line metrics block, or the error line
// for an invalid candidate.
func WriteSummary(w io.Writer, r types.Result) error {
	if _, err := fmt.Fprint(w, "\n--- EVALUATION RESULTS ---\n"); err != nil {
		return err
	}
	if r.Invalid() || r.Metrics == nil {
		_, err := fmt.Fprintf(w, "Error: %s\n", r.Error)
		return err
	}
	_, err := fmt.Fprintf(w, "1. Circle Count Accuracy: %s\n2. Correct Overlaps:      %s\n3. Incorrect Overlaps:    %d\n",
		r.Metrics.CircleCount, r.Metrics.CorrectOverlaps, r.Metrics.IncorrectOverlaps)
	return err
}

func WriteDetails(w io.Writer, r types.Result) error {
	if r.Details == nil {
		_, err := fmt.Fprintln(w, "\nDebug Details: {}")
		return err
	}
	raw, err := json.Marshal(r.Details)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "\nDebug Details: %s\n", raw)
	return err
}
