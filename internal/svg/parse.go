// Package svg reads circle geometry out of SVG markup that may be malformed.
package svg

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/types"
)

// ErrMalformedDocument marks markup that is not a single well-formed XML element tree.
var ErrMalformedDocument = errors.New("malformed document")

var defaultNamespace = regexp.MustCompile(`\sxmlns=("[^"]+"|'[^']+')`)

// Issue describes a circle element that was skipped.
type Issue struct {
	Element int
	Attr    string
	Value   string
	Err     error
}

func (i Issue) Error() string {
	return fmt.Sprintf("circle %d: attribute %s=%q: %v", i.Element, i.Attr, i.Value, i.Err)
}

func (i Issue) Unwrap() error { return i.Err }

// Outcome is the parse result of one <circle> element: a circle or an issue.
type Outcome struct {
	Circle types.Circle
	Issue  *Issue
}

type Document struct {
	Outcomes []Outcome
	// Err wraps ErrMalformedDocument when the markup could not be parsed.
	Err error
}

func (d Document) Malformed() bool { return d.Err != nil }

// Circles returns the successfully parsed circles in document order.
func (d Document) Circles() []types.Circle {
	out := make([]types.Circle, 0, len(d.Outcomes))
	for _, o := range d.Outcomes {
		if o.Issue == nil {
			out = append(out, o.Circle)
		}
	}
	return out
}

func (d Document) Issues() []Issue {
	var out []Issue
	for _, o := range d.Outcomes {
		if o.Issue != nil {
			out = append(out, *o.Issue)
		}
	}
	return out
}

// Parse never returns an error: a document that is not well-formed comes back
// with Err set and no outcomes, and a circle with a bad number is recorded as
// an Issue without affecting its siblings.
func Parse(text string) Document {
	dec := xml.NewDecoder(strings.NewReader(stripDefaultNamespace(text)))
	// text is already decoded; a declared encoding names the original bytes.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }

	var (
		outcomes []Outcome
		depth    int
		roots    int
		index    int
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return malformed(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := uniqueAttrs(t); err != nil {
				return malformed(err)
			}
			if depth == 0 {
				roots++
				if roots > 1 {
					return malformed(fmt.Errorf("junk after document element <%s>", t.Name.Local))
				}
			} else if t.Name.Space == "" && t.Name.Local == "circle" {
				outcomes = append(outcomes, readCircle(index, t.Attr))
				index++
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(strings.TrimSpace(string(t))) > 0 {
				return malformed(errors.New("text outside document element"))
			}
		}
	}
	if roots == 0 {
		return malformed(errors.New("no element found"))
	}
	return Document{Outcomes: outcomes}
}

func malformed(err error) Document {
	return Document{Err: fmt.Errorf("%w: %v", ErrMalformedDocument, err)}
}

func uniqueAttrs(el xml.StartElement) error {
	seen := make(map[xml.Name]struct{}, len(el.Attr))
	for _, a := range el.Attr {
		if _, ok := seen[a.Name]; ok {
			return fmt.Errorf("duplicate attribute %s on <%s>", a.Name.Local, el.Name.Local)
		}
		seen[a.Name] = struct{}{}
	}
	return nil
}

func stripDefaultNamespace(text string) string {
	loc := defaultNamespace.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[0]] + text[loc[1]:]
}

func readCircle(index int, attrs []xml.Attr) Outcome {
	c := types.Circle{Color: strings.ToLower(attr(attrs, "fill", "black"))}
	for _, f := range []struct {
		name string
		dst  *float64
	}{{"cx", &c.CX}, {"cy", &c.CY}, {"r", &c.R}} {
		raw := attr(attrs, f.name, "0")
		v, err := parseNumber(raw)
		if err != nil {
			return Outcome{Issue: &Issue{Element: index, Attr: f.name, Value: raw, Err: err}}
		}
		*f.dst = v
	}
	return Outcome{Circle: c}
}

// ErrNumberSyntax marks an attribute value that is not a decimal number.
var ErrNumberSyntax = errors.New("invalid number")

// parseNumber accepts decimal floats with optional surrounding whitespace,
// underscores between digits, and inf/nan spellings. Hex floats are rejected.
// Out-of-range values become ±Inf.
func parseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	body := strings.TrimLeft(s, "+-")
	if len(body) > 1 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') {
		return 0, fmt.Errorf("%w: %q", ErrNumberSyntax, raw)
	}
	if strings.Contains(s, "_") {
		for i := 0; i < len(s); i++ {
			if s[i] == '_' && (i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1])) {
				return 0, fmt.Errorf("%w: %q", ErrNumberSyntax, raw)
			}
		}
		s = strings.ReplaceAll(s, "_", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return v, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func attr(attrs []xml.Attr, name, def string) string {
	for _, a := range attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value
		}
	}
	return def
}
