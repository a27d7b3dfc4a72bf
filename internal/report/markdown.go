package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/types"
)

func BuildMarkdown(rec types.RunRecord) string {
	r := rec.Result
	status := "SCORED"
	if r.Invalid() {
		status = "INVALID"
	}
	var b strings.Builder
	b.WriteString("# Circle Overlap Evaluation Report\n\n")
	b.WriteString(fmt.Sprintf("- Status: **%s**\n", status))
	if rec.RunID != "" {
		b.WriteString(fmt.Sprintf("- Run: `%s`\n", rec.RunID))
	}
	gen := rec.Generator.Kind
	if rec.Generator.Model != "" {
		gen += " (" + rec.Generator.Model + ")"
	}
	if gen != "" {
		b.WriteString(fmt.Sprintf("- Generator: `%s`\n", gen))
	}
	b.WriteString(fmt.Sprintf("- Circles: %s\n", strings.Join(rec.Task.Circles, ", ")))
	b.WriteString(fmt.Sprintf("- Required Overlaps: %s\n", pairList(rec.Task.RequiredOverlaps)))
	if rec.ResultDigest != "" {
		b.WriteString(fmt.Sprintf("- Result Digest: `%s`\n", rec.ResultDigest))
	}

	if r.Invalid() || r.Metrics == nil {
		b.WriteString(fmt.Sprintf("\n## Error\n\n%s\n", r.Error))
		return b.String()
	}

	b.WriteString("\n## Metrics\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|---|---:|\n")
	b.WriteString(fmt.Sprintf("| Circle Count Accuracy | %s |\n", r.Metrics.CircleCount))
	b.WriteString(fmt.Sprintf("| Correct Overlaps | %s |\n", r.Metrics.CorrectOverlaps))
	b.WriteString(fmt.Sprintf("| Incorrect Overlaps | %d |\n", r.Metrics.IncorrectOverlaps))

	if r.Details != nil {
		b.WriteString("\n## Pairs\n\n")
		b.WriteString("| Kind | Pairs |\n")
		b.WriteString("|---|---|\n")
		b.WriteString(fmt.Sprintf("| Found | %s |\n", pairList(r.Details.FoundPairs)))
		b.WriteString(fmt.Sprintf("| Missed | %s |\n", pairList(r.Details.MissedPairs)))
		b.WriteString(fmt.Sprintf("| Hallucinated | %s |\n", pairList(r.Details.HallucinatedPairs)))
	}
	return b.String()
}

func WriteMarkdown(path string, rec types.RunRecord) error {
	return os.WriteFile(path, []byte(BuildMarkdown(rec)), 0o644)
}

func pairList(pairs []types.Pair) string {
	if len(pairs) == 0 {
		return "-"
	}
	items := make([]string, len(pairs))
	for i, p := range pairs {
		items[i] = strings.ReplaceAll(p.String(), "|", "\\|")
	}
	return strings.Join(items, ", ")
}
