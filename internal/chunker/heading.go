package chunker

import (
	"regexp"
	"strings"
	"unicode"
)

// HeadingVocabulary holds the structural keywords the classifier treats as
// heading evidence. It is injected, not global, so tests can substitute
// vocabularies for other document families.
type HeadingVocabulary struct {
	// Keywords that mark structural sections of a legal document.
	Keywords []string
	// Prefixes that force heading level 1 (attachment-style sections).
	LevelOnePrefixes []string
}

// DefaultHeadingVocabulary covers common contract section names.
func DefaultHeadingVocabulary() HeadingVocabulary {
	return HeadingVocabulary{
		Keywords: []string{
			"definitions", "interpretation", "term", "audit", "fees",
			"schedule", "appendix", "annex", "exhibit", "license",
			"restrictions", "termination", "renewal",
		},
		LevelOnePrefixes: []string{"schedule", "appendix", "annex", "exhibit"},
	}
}

var numberedHeadingRe = regexp.MustCompile(`^\s*\d+(?:\.\d+)*\s+[A-Z]`)

// HeadingClassifier decides whether a block's text is a structural heading
// and what hierarchy level it opens.
type HeadingClassifier struct {
	vocab     HeadingVocabulary
	keywordRe *regexp.Regexp
}

func NewHeadingClassifier(vocab HeadingVocabulary) *HeadingClassifier {
	quoted := make([]string, 0, len(vocab.Keywords))
	for _, k := range vocab.Keywords {
		quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(k)))
	}
	var re *regexp.Regexp
	if len(quoted) > 0 {
		re = regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
	}
	return &HeadingClassifier{vocab: vocab, keywordRe: re}
}

// IsHeading applies the shape heuristics: plausible length, no trailing
// period, and either a numbered-heading prefix, a dominant uppercase or
// title-case ratio, or a structural keyword backed by a weaker ratio.
func (c *HeadingClassifier) IsHeading(text string) bool {
	t := strings.TrimSpace(text)
	if len(t) < 2 || len(t) > 120 {
		return false
	}
	if strings.HasSuffix(t, ".") {
		return false
	}

	if numberedHeadingRe.MatchString(t) {
		return true
	}

	caps, title := letterRatios(t)
	if caps > 0.8 || title > 0.8 {
		return true
	}

	if c.keywordRe != nil && c.keywordRe.MatchString(strings.ToLower(t)) {
		if caps > 0.5 || title > 0.6 {
			return true
		}
	}
	return false
}

// Level assigns the hierarchy level for heading text: numeric prefixes use
// dot count + 1; fully uppercase text and attachment-style prefixes are
// level 1; everything else is level 2.
func (c *HeadingClassifier) Level(text string) int {
	t := strings.TrimSpace(text)
	if t == "" {
		return 2
	}
	if m := clausePatterns[0].re.FindStringSubmatch(t); m != nil {
		return strings.Count(m[1], ".") + 1
	}
	if isAllUpper(t) {
		return 1
	}
	lower := strings.ToLower(t)
	for _, prefix := range c.vocab.LevelOnePrefixes {
		if strings.HasPrefix(lower, strings.ToLower(prefix)) {
			return 1
		}
	}
	return 2
}

// letterRatios returns the uppercase ratio among alphabetic runes and the
// ratio of words whose first letter is uppercase.
func letterRatios(t string) (caps, title float64) {
	var letters, upper int
	for _, r := range t {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters > 0 {
		caps = float64(upper) / float64(letters)
	}

	words := wordRe.FindAllString(t, -1)
	if len(words) > 0 {
		titled := 0
		for _, w := range words {
			r := []rune(w)[0]
			if unicode.IsUpper(r) {
				titled++
			}
		}
		title = float64(titled) / float64(len(words))
	}
	return caps, title
}

var wordRe = regexp.MustCompile(`[A-Za-z]+`)

// isAllUpper reports whether t contains at least one cased letter and
// every cased letter is uppercase.
func isAllUpper(t string) bool {
	cased := false
	for _, r := range t {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
