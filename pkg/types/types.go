package types

import (
	"sort"
	"strings"
)

// InvalidSVG is the error message reported when the candidate markup is not well-formed.
const InvalidSVG = "Invalid SVG XML"

// Pair is an unordered color pair kept in sorted order so that (A,B) and (B,A) compare equal.
type Pair [2]string

func NewPair(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{a, b}
}

// Lower returns the pair with both colors lowercased and re-sorted.
func (p Pair) Lower() Pair {
	return NewPair(strings.ToLower(p[0]), strings.ToLower(p[1]))
}

func (p Pair) String() string {
	return "(" + p[0] + ", " + p[1] + ")"
}

func SortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
}

type Circle struct {
	Color string  `json:"color"`
	CX    float64 `json:"cx"`
	CY    float64 `json:"cy"`
	R     float64 `json:"r"`
}

type Metrics struct {
	CircleCount       string `json:"metric_circle_count"`
	CorrectOverlaps   string `json:"metric_correct_overlaps_found"`
	IncorrectOverlaps int    `json:"metric_incorrect_overlaps_made"`
	DetectedCircles   int    `json:"detected_circles"`
	ExpectedCircles   int    `json:"expected_circles"`
	TruePositives     int    `json:"true_positives"`
	RequiredOverlaps  int    `json:"required_overlaps"`
}

type Details struct {
	FoundPairs        []Pair `json:"found_pairs"`
	MissedPairs       []Pair `json:"missed_pairs"`
	HallucinatedPairs []Pair `json:"hallucinated_pairs"`
}

// Result is the outcome of scoring one candidate. Either Error is set and
// Metrics/Details are nil, or Metrics and Details are both populated.
type Result struct {
	Error   string   `json:"error,omitempty"`
	Metrics *Metrics `json:"metrics,omitempty"`
	Details *Details `json:"details,omitempty"`
}

func (r Result) Invalid() bool {
	return r.Error != ""
}

// CorrectRatio is true positives over required overlaps, 1 when nothing is required.
func (m Metrics) CorrectRatio() float64 {
	if m.RequiredOverlaps == 0 {
		return 1
	}
	return float64(m.TruePositives) / float64(m.RequiredOverlaps)
}

type Generator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Kind    string `json:"kind"`
	Model   string `json:"model,omitempty"`
}

type TaskSummary struct {
	Circles          []string `json:"circles"`
	RequiredOverlaps []Pair   `json:"required_overlaps"`
}

// RunRecord is the persisted form of one evaluation round.
type RunRecord struct {
	SchemaVersion   string      `json:"schema_version"`
	RunID           string      `json:"run_id"`
	GeneratedAt     string      `json:"generated_at"`
	Generator       Generator   `json:"generator"`
	Task            TaskSummary `json:"task"`
	PromptDigest    string      `json:"prompt_digest"`
	CandidateDigest string      `json:"candidate_digest"`
	ResultDigest    string      `json:"result_digest"`
	Result          Result      `json:"result"`
}
