// Package task describes one benchmark round: how many circles to draw, which
// palette colors they get, and which color pairs must overlap.
package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/types"
)

var (
	// ErrConfiguration is the parent of every task construction failure.
	ErrConfiguration = errors.New("configuration error")
	// ErrPaletteExhausted means more circles were requested than the palette has colors.
	ErrPaletteExhausted = fmt.Errorf("%w: too many circles for defined colors", ErrConfiguration)
	ErrInvalidCount     = fmt.Errorf("%w: circle count must be positive", ErrConfiguration)
	ErrEmptyPalette     = fmt.Errorf("%w: palette has no colors", ErrConfiguration)
)

// Palette is an ordered list of color names. Circle i is filled with Palette[i].
type Palette []string

func DefaultPalette() Palette {
	return Palette{"Red", "Blue", "Green", "Yellow", "Purple", "Orange"}
}

type CircleSpec struct {
	Color string
	Index int
}

type Task struct {
	circles  []CircleSpec
	required []types.Pair
}

// New builds a task with count circles colored from palette. A nil palette
// means DefaultPalette; a non-nil empty one is an error. Required pairs are
// sorted and deduplicated.
func New(count int, required []types.Pair, palette Palette) (*Task, error) {
	if palette == nil {
		palette = DefaultPalette()
	}
	if len(palette) == 0 {
		return nil, ErrEmptyPalette
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}
	if count > len(palette) {
		return nil, fmt.Errorf("%w: %d requested, palette has %d", ErrPaletteExhausted, count, len(palette))
	}

	circles := make([]CircleSpec, count)
	for i := range circles {
		circles[i] = CircleSpec{Color: palette[i], Index: i}
	}

	seen := make(map[types.Pair]struct{}, len(required))
	pairs := make([]types.Pair, 0, len(required))
	for _, p := range required {
		p = types.NewPair(p[0], p[1])
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		pairs = append(pairs, p)
	}
	types.SortPairs(pairs)

	return &Task{circles: circles, required: pairs}, nil
}

func (t *Task) Circles() []CircleSpec {
	return append([]CircleSpec(nil), t.circles...)
}

// Colors returns the assigned colors in circle order.
func (t *Task) Colors() []string {
	out := make([]string, len(t.circles))
	for i, c := range t.circles {
		out[i] = c.Color
	}
	return out
}

func (t *Task) RequiredOverlaps() []types.Pair {
	return append([]types.Pair(nil), t.required...)
}

func (t *Task) Summary() types.TaskSummary {
	return types.TaskSummary{
		Circles:          t.Colors(),
		RequiredOverlaps: t.RequiredOverlaps(),
	}
}

// Prompt renders the natural-language instruction for the generator.
func (t *Task) Prompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a valid SVG code block containing exactly %d circles. ", len(t.circles))
	fmt.Fprintf(&b, "The circles must be filled with these colors: %s. \n", strings.Join(t.Colors(), ", "))
	b.WriteString("Use standard <circle cx='...' cy='...' r='...' fill='...' /> tags.\n\n")
	b.WriteString("CRITICAL GEOMETRY REQUIREMENTS:\n")
	if len(t.required) == 0 {
		b.WriteString("- No circles should overlap.\n")
	}
	for _, p := range t.required {
		fmt.Fprintf(&b, "- The %s circle MUST overlap with the %s circle.\n", p[0], p[1])
	}
	b.WriteString("- Any pair of circles not listed above must NOT overlap.\n")
	b.WriteString("Return only the SVG code.")
	return b.String()
}
