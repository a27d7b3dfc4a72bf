// Package score compares detected circle geometry against required overlaps.
package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/ogulcanaydogan/circle-overlap-bench/internal/svg"
	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/types"
)

// Overlapping reports whether two circles overlap. Tangent circles do not.
func Overlapping(a, b types.Circle) bool {
	dx, dy := a.CX-b.CX, a.CY-b.CY
	return math.Sqrt(dx*dx+dy*dy) < a.R+b.R
}

// Overlaps returns the distinct color pairs of every overlapping pair of
// circles, sorted. Several circle pairs with the same colors count once.
func Overlaps(circles []types.Circle) []types.Pair {
	seen := make(map[types.Pair]struct{})
	for i := 0; i < len(circles); i++ {
		for j := i + 1; j < len(circles); j++ {
			if Overlapping(circles[i], circles[j]) {
				seen[types.NewPair(circles[i].Color, circles[j].Color)] = struct{}{}
			}
		}
	}
	return sortedPairs(seen)
}

// Score diffs the overlaps among circles against required. Colors are
// compared case-insensitively; expectedColors only contributes its length.
func Score(circles []types.Circle, required []types.Pair, expectedColors []string) types.Result {
	want := make(map[types.Pair]struct{}, len(required))
	for _, p := range required {
		want[p.Lower()] = struct{}{}
	}
	got := make(map[types.Pair]struct{})
	for _, p := range Overlaps(lowerColors(circles)) {
		got[p] = struct{}{}
	}

	found := sortedPairs(got)
	var hits int
	hallucinated := make([]types.Pair, 0)
	for _, p := range found {
		if _, ok := want[p]; ok {
			hits++
			continue
		}
		hallucinated = append(hallucinated, p)
	}
	missed := make([]types.Pair, 0)
	for _, p := range sortedPairs(want) {
		if _, ok := got[p]; !ok {
			missed = append(missed, p)
		}
	}

	return types.Result{
		Metrics: &types.Metrics{
			CircleCount:       fmt.Sprintf("%d/%d", len(circles), len(expectedColors)),
			CorrectOverlaps:   fmt.Sprintf("%d/%d", hits, len(want)),
			IncorrectOverlaps: len(hallucinated),
			DetectedCircles:   len(circles),
			ExpectedCircles:   len(expectedColors),
			TruePositives:     hits,
			RequiredOverlaps:  len(want),
		},
		Details: &types.Details{
			FoundPairs:        found,
			MissedPairs:       missed,
			HallucinatedPairs: hallucinated,
		},
	}
}

// Document scores a parsed document, short-circuiting to the invalid-markup
// result before any geometry work when the document is malformed.
func Document(doc svg.Document, required []types.Pair, expectedColors []string) types.Result {
	if doc.Malformed() {
		return types.Result{Error: types.InvalidSVG}
	}
	return Score(doc.Circles(), required, expectedColors)
}

func lowerColors(circles []types.Circle) []types.Circle {
	out := make([]types.Circle, len(circles))
	for i, c := range circles {
		c.Color = strings.ToLower(c.Color)
		out[i] = c
	}
	return out
}

func sortedPairs(set map[types.Pair]struct{}) []types.Pair {
	out := make([]types.Pair, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	types.SortPairs(out)
	return out
}
