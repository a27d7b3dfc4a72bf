// Package extract pulls the SVG fragment out of free-form generator output.
package extract

import "regexp"

type Extractor interface {
	Extract(text string) string
}

// Func adapts a plain function to an Extractor.
type Func func(text string) string

func (f Func) Extract(text string) string { return f(text) }

var svgBlock = regexp.MustCompile(`(?is)<svg.*?>.*?</svg>`)

// FirstSVG returns the shortest <svg ...>...</svg> span starting at the first
// opening tag. Text without such a span is returned unchanged so the parser
// can still reject it.
type FirstSVG struct{}

func (FirstSVG) Extract(text string) string {
	if m := svgBlock.FindString(text); m != "" {
		return m
	}
	return text
}

// Identity hands the text to the parser as is.
var Identity = Func(func(text string) string { return text })
