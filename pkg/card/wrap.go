package card

import "strings"

// MeasureFunc returns the rendered width of s in pixels.
type MeasureFunc func(s string) int

// Wrap breaks text into lines no wider than maxWidth using greedy
// first-fit on whitespace-separated tokens. A token wider than maxWidth
// is placed on its own line unsplit. Whitespace-only text yields no lines.
func Wrap(text string, maxWidth int, measure MeasureFunc) []string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	lines := make([]string, 0, 4)
	line := tokens[0]
	for _, tok := range tokens[1:] {
		candidate := line + " " + tok
		if measure(candidate) <= maxWidth {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = tok
	}
	return append(lines, line)
}
