package chunker

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// StableChunkID derives the content-addressed chunk identifier. It is a
// pure function of the document id, the ordered contributing block ids,
// and the final chunk text, so unchanged chunks keep the same id across
// re-chunking runs and an index collaborator can diff by id. The id is
// recomputed on every run, never cached.
func StableChunkID(docID string, sourceBlocks []string, text string) string {
	parts := make([]string, 0, len(sourceBlocks)+2)
	parts = append(parts, docID)
	parts = append(parts, sourceBlocks...)
	parts = append(parts, text)
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%x", sum[:])
}
