package task

import (
	"strings"

	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/types"
)

// ParsePairTokens turns "Color1,Color2" tokens into pairs. Tokens that do not
// split into exactly two parts are returned in dropped instead of failing.
// Pairs keep the order they were written in; New canonicalizes them.
func ParsePairTokens(tokens []string) (pairs []types.Pair, dropped []string) {
	for _, tok := range tokens {
		parts := strings.Split(tok, ",")
		if len(parts) != 2 {
			dropped = append(dropped, tok)
			continue
		}
		pairs = append(pairs, types.Pair{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])})
	}
	return pairs, dropped
}

// FormatPairs renders pairs the way the CLI echoes them back: [(A, B), (C, D)].
func FormatPairs(pairs []types.Pair) string {
	items := make([]string, len(pairs))
	for i, p := range pairs {
		items[i] = p.String()
	}
	return "[" + strings.Join(items, ", ") + "]"
}
