package chunker

import (
	"regexp"
	"strings"
)

var (
	hyphenWrapRe = regexp.MustCompile(`(\w)-\n(\w)`)
	blankRunsRe  = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText repairs whitespace noise left behind by layout parsers:
// line endings are unified, words hyphenated across a line wrap are
// rejoined, and runs of blank lines collapse to a single blank line.
// Empty input yields empty output.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	t := strings.ReplaceAll(text, "\r\n", "\n")
	t = strings.ReplaceAll(t, "\r", "\n")
	t = hyphenWrapRe.ReplaceAllString(t, "${1}${2}")
	t = blankRunsRe.ReplaceAllString(t, "\n\n")
	return strings.TrimSpace(t)
}
