package chunker

import (
	"fmt"
	"regexp"
	"strings"
)

// Clause marker grammar. Patterns are tried in order; the first match wins.
// Kept as a declared table so new marker forms can be added without
// touching the parse loop.
type clausePattern struct {
	re       *regexp.Regexp
	lettered bool
}

var clausePatterns = []clausePattern{
	// "1", "2.3", "10.1.4 Grant of License"
	{re: regexp.MustCompile(`^\s*(\d+(?:\.\d+)*)\b`)},
	// "1.2(a)(ii) ..." — numeric ref with parenthetical sub-markers
	{re: regexp.MustCompile(`^\s*(\d+(?:\.\d+)*)(?:\([a-zA-Z0-9]+\))*`)},
	// "(a) ..." or "a) ..."
	{re: regexp.MustCompile(`^\s*\(?([a-z])\)\s+`), lettered: true},
}

var (
	numericRefRe  = regexp.MustCompile(`^\d+(?:\.\d+)*$`)
	letteredRefRe = regexp.MustCompile(`^\([a-z]\)$`)
)

// ParseClauseRef recognizes a leading clause marker in normalized text and
// returns the reference with its nesting level. Numeric refs ("1.2.3")
// level by dot count + 1; lettered refs ("(a)") are level 1. No marker
// yields ("", 0) — a normal outcome, not an error.
func ParseClauseRef(text string) (string, int) {
	if text == "" {
		return "", 0
	}
	t := strings.TrimSpace(text)
	for _, p := range clausePatterns {
		m := p.re.FindStringSubmatch(t)
		if m == nil || m[1] == "" {
			continue
		}
		if p.lettered {
			return fmt.Sprintf("(%s)", m[1]), 1
		}
		return m[1], strings.Count(m[1], ".") + 1
	}
	return "", 0
}

// IsNumericRef reports whether ref is a purely numeric dotted reference.
func IsNumericRef(ref string) bool {
	return ref != "" && numericRefRe.MatchString(ref)
}

// IsLetteredRef reports whether ref is a single lettered marker like "(a)".
func IsLetteredRef(ref string) bool {
	return ref != "" && letteredRefRe.MatchString(ref)
}
