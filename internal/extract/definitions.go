package extract

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rgoodwin/lexchunk/internal/docmodel"
)

// Candidate chunks are capped so a pathological document cannot blow up
// extraction cost.
const maxDefinitionCandidates = 250

// DefinitionsVocabulary holds the indicator vocabularies for candidate
// selection. Injected so tests can substitute vocabularies.
type DefinitionsVocabulary struct {
	// SectionKeywords mark a section path as a definitions section.
	SectionKeywords []string
	// InlineIndicators mark chunk text as definition-bearing when too few
	// definitions sections exist.
	InlineIndicators []string
}

func DefaultDefinitionsVocabulary() DefinitionsVocabulary {
	return DefinitionsVocabulary{
		SectionKeywords: []string{
			"definitions", "definition", "interpretation", "defined terms",
		},
		InlineIndicators: []string{
			" means ", " shall mean ", " has the meaning ", " is defined as ",
		},
	}
}

// The definition grammar: three independent pattern forms, each a head
// (term + keyword) whose definition body runs to the next stop position —
// the next definition-like head, the next numbered clause, or end of text.
// Declared as data so new forms can be added without touching the scan
// loop.
const defKeyword = `(?:means|shall mean|has the meaning|is defined as)`

type definitionPattern struct {
	name string
	head *regexp.Regexp
	stop *regexp.Regexp
}

var (
	defStopProse = regexp.MustCompile(
		`(?is)\n\s*"[^"]{1,80}"\s+` + defKeyword +
			`|\n\s*[A-Z][A-Za-z0-9\- ]{1,80}\s+` + defKeyword +
			`|\n\s*\d+(?:\.\d+)*\b`)
	defStopColon = regexp.MustCompile(
		`(?is)\n\s*[A-Z][A-Za-z0-9\- ]{1,80}\s*:` +
			`|\n\s*\d+(?:\.\d+)*\b`)

	definitionPatterns = []definitionPattern{
		{
			name: "quoted",
			head: regexp.MustCompile(`(?is)"([^"]{1,80})"\s+` + defKeyword + `\s+`),
			stop: defStopProse,
		},
		{
			name: "unquoted",
			head: regexp.MustCompile(`(?is)([A-Z][A-Za-z0-9\- ]{1,80})\s+` + defKeyword + `\s+`),
			stop: defStopProse,
		},
		{
			name: "colon",
			head: regexp.MustCompile(`(?im)^\s*([A-Z][A-Za-z0-9\- ]{1,80})\s*:\s*`),
			stop: defStopColon,
		},
	}
)

// DefinitionsExtractor recovers (term, definition) pairs from chunk text.
type DefinitionsExtractor struct {
	vocab DefinitionsVocabulary
}

func NewDefinitionsExtractor(vocab DefinitionsVocabulary) *DefinitionsExtractor {
	return &DefinitionsExtractor{vocab: vocab}
}

// ExtractDefinitions runs the default extractor over a chunk set.
func ExtractDefinitions(chunked *docmodel.ChunkSet) (*DefinitionsResult, error) {
	return NewDefinitionsExtractor(DefaultDefinitionsVocabulary()).Extract(chunked)
}

// Extract selects candidate chunks, runs the pattern grammar over each,
// deduplicates by case-insensitive term keeping the highest-confidence
// occurrence, and returns results sorted alphabetically by term.
func (e *DefinitionsExtractor) Extract(chunked *docmodel.ChunkSet) (*DefinitionsResult, error) {
	if chunked == nil {
		return nil, ErrNoChunks
	}

	candidates := e.selectCandidates(chunked.Chunks)

	seen := make(map[string]Definition)
	for _, ch := range candidates {
		inDefs := e.inDefinitionsSection(ch.SectionPath)
		for _, m := range scanDefinitionMatches(ch.Text) {
			term := normalizeTerm(m.term)
			def := cleanDefinition(m.def)
			if term == "" || def == "" {
				continue
			}
			if len(term) > 80 || strings.Contains(term, "\n") {
				continue
			}
			conf := definitionConfidence(m.pattern, inDefs, term, def)
			item := Definition{
				Term:       term,
				Definition: def,
				Confidence: conf,
				Location: Location{
					SectionPath: ch.SectionPath,
					ClauseRef:   ch.ClauseRef,
				},
				Evidence: []Evidence{{
					ChunkID:   ch.ChunkID,
					PageStart: ch.PageStart,
					PageEnd:   ch.PageEnd,
					ClauseRef: ch.ClauseRef,
					Snippet:   makeSnippet(ch.Text, term),
				}},
			}
			key := strings.ToLower(term)
			if prev, ok := seen[key]; !ok || conf > prev.Confidence {
				seen[key] = item
			}
		}
	}

	definitions := make([]Definition, 0, len(seen))
	for _, d := range seen {
		definitions = append(definitions, d)
	}
	sort.Slice(definitions, func(i, j int) bool {
		return strings.ToLower(definitions[i].Term) < strings.ToLower(definitions[j].Term)
	})

	return &DefinitionsResult{
		DocID:       chunked.DocID,
		ExtractedAt: time.Now().UTC(),
		Pipeline:    currentRunMeta(),
		Definitions: definitions,
	}, nil
}

// selectCandidates prefers chunks inside a definitions section; when
// fewer than 5 exist it falls back to scanning every chunk for inline
// indicator phrases. Total candidates are capped for bounded cost.
func (e *DefinitionsExtractor) selectCandidates(chunks []docmodel.Chunk) []docmodel.Chunk {
	var candidates []docmodel.Chunk
	for _, ch := range chunks {
		if e.inDefinitionsSection(ch.SectionPath) {
			candidates = append(candidates, ch)
		}
	}

	if len(candidates) < 5 {
		for _, ch := range chunks {
			text := strings.ToLower(ch.Text)
			for _, ind := range e.vocab.InlineIndicators {
				if strings.Contains(text, ind) {
					candidates = append(candidates, ch)
					break
				}
			}
		}
	}

	if len(candidates) > maxDefinitionCandidates {
		candidates = candidates[:maxDefinitionCandidates]
	}
	return candidates
}

func (e *DefinitionsExtractor) inDefinitionsSection(sectionPath []string) bool {
	if len(sectionPath) == 0 {
		return false
	}
	haystack := strings.ToLower(strings.Join(sectionPath, " > "))
	for _, k := range e.vocab.SectionKeywords {
		if strings.Contains(haystack, k) {
			return true
		}
	}
	return false
}

type definitionMatch struct {
	term    string
	def     string
	pattern string
}

// scanDefinitionMatches collects matches from all three pattern forms.
// Each pattern scans sequentially: after a head match, the definition body
// extends to the pattern's next stop position and scanning resumes there,
// so a definition body is not rescanned for heads of the same form.
func scanDefinitionMatches(text string) []definitionMatch {
	if text == "" {
		return nil
	}
	var matches []definitionMatch
	for _, p := range definitionPatterns {
		pos := 0
		for pos < len(text) {
			loc := p.head.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				break
			}
			headEnd := pos + loc[1]
			term := text[pos+loc[2] : pos+loc[3]]

			defEnd := len(text)
			if stop := p.stop.FindStringIndex(text[headEnd:]); stop != nil {
				defEnd = headEnd + stop[0]
			}
			def := text[headEnd:defEnd]
			if strings.TrimSpace(def) != "" {
				matches = append(matches, definitionMatch{
					term:    term,
					def:     def,
					pattern: p.name,
				})
			}
			if defEnd <= pos {
				break
			}
			pos = defEnd
		}
	}
	return matches
}

var innerSpaceRe = regexp.MustCompile(`\s+`)

// normalizeTerm strips quotes and outer whitespace and collapses internal
// whitespace runs.
func normalizeTerm(term string) string {
	t := strings.TrimSpace(term)
	t = strings.Trim(t, `"`)
	t = strings.TrimSpace(t)
	return innerSpaceRe.ReplaceAllString(t, " ")
}

func cleanDefinition(def string) string {
	return innerSpaceRe.ReplaceAllString(strings.TrimSpace(def), " ")
}

// definitionConfidence scores a match: base 0.5, boosted by a definitions
// section and the quoted form, nudged by definition length, penalized for
// degenerate terms, clamped to [0,1].
func definitionConfidence(pattern string, inDefs bool, term, def string) float64 {
	score := 0.5
	if inDefs {
		score += 0.2
	}
	if pattern == "quoted" {
		score += 0.2
	}
	if len(def) > 20 {
		score += 0.1
	}
	if len(term) > 80 || len(def) < 10 {
		score -= 0.2
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// makeSnippet cuts a review snippet around the first occurrence of the
// term, ellipsized on truncated sides.
func makeSnippet(text, term string) string {
	const maxLen = 240
	if text == "" {
		return ""
	}
	idx := strings.Index(strings.ToLower(text), strings.ToLower(term))
	if idx == -1 {
		if len(text) > maxLen {
			return text[:maxLen] + "…"
		}
		return text
	}
	start := idx - 80
	if start < 0 {
		start = 0
	}
	end := idx + 200
	if end > len(text) {
		end = len(text)
	}
	snippet := text[start:end]
	if start > 0 {
		snippet = "…" + snippet
	}
	if end < len(text) {
		snippet = snippet + "…"
	}
	return snippet
}
