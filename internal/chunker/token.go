package chunker

import "strings"

// EstimateTokens gives a rough token count as the whitespace word count.
// Exact tokenization is not required; the estimate only feeds sizing
// metadata on emitted chunks.
func EstimateTokens(text string) int {
	return len(strings.Fields(text))
}
