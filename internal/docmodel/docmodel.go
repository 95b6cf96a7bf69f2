package docmodel

import "time"

// BlockType classifies a parsed block. Parsers may emit other strings;
// the chunker only gives special treatment to the types below.
type BlockType string

const (
	BlockParagraph BlockType = "paragraph"
	BlockHeading   BlockType = "heading"
	BlockTable     BlockType = "table"
	BlockHeader    BlockType = "header"
	BlockFooter    BlockType = "footer"
)

// Block is an atomic unit of parsed document content with page provenance.
// Blocks are produced by a parsing collaborator and are immutable input.
// A PageStart/PageEnd of 0 means the parser did not know the page.
type Block struct {
	BlockID   string    `json:"block_id"`
	Type      BlockType `json:"type"`
	Text      string    `json:"text"`
	PageStart int       `json:"page_start,omitempty"`
	PageEnd   int       `json:"page_end,omitempty"`
	BBox      []float64 `json:"bbox,omitempty"`
	Table     *Table    `json:"table,omitempty"`
}

// Page is an ordering anchor only; content lives in blocks.
type Page struct {
	PageNumber int `json:"page_number"`
}

// Source identifies the raw document the block stream came from.
type Source struct {
	Filename string `json:"filename,omitempty"`
	SHA256   string `json:"sha256,omitempty"`
}

// Document is the input schema produced by the parsing collaborator.
type Document struct {
	DocID     string  `json:"doc_id"`
	Source    *Source `json:"source,omitempty"`
	PageCount int     `json:"page_count"`
	Pages     []Page  `json:"pages,omitempty"`
	Blocks    []Block `json:"blocks"`
}

// ID returns the document identifier, falling back to the source hash.
func (d *Document) ID() string {
	if d.DocID != "" {
		return d.DocID
	}
	if d.Source != nil && d.Source.SHA256 != "" {
		return d.Source.SHA256
	}
	return "unknown"
}

// ChunkType classifies an emitted chunk.
type ChunkType string

const (
	ChunkHeading    ChunkType = "heading"
	ChunkTable      ChunkType = "table"
	ChunkDefinition ChunkType = "definition"
	ChunkClause     ChunkType = "clause"
	ChunkParagraph  ChunkType = "paragraph"
)

// Chunk is the engine's unit of output: one or more blocks combined into an
// independently addressable span with section and clause metadata.
type Chunk struct {
	ChunkID      string      `json:"chunk_id"`
	Type         ChunkType   `json:"type"`
	Text         string      `json:"text"`
	TokensEst    int         `json:"tokens_est"`
	CharLen      int         `json:"char_len"`
	PageStart    int         `json:"page_start"`
	PageEnd      int         `json:"page_end"`
	SectionPath  []string    `json:"section_path"`
	Heading      string      `json:"heading,omitempty"`
	ClauseRef    string      `json:"clause_ref,omitempty"`
	ClauseLevel  int         `json:"clause_level,omitempty"`
	SourceBlocks []string    `json:"source_blocks"`
	BBoxList     [][]float64 `json:"bbox"`
	Table        *Table      `json:"table,omitempty"`
}

// RunMeta identifies the ruleset that produced an output set.
type RunMeta struct {
	Version   string `json:"version"`
	Ruleset   string `json:"ruleset"`
	PageStart int    `json:"page_start,omitempty"`
	PageEnd   int    `json:"page_end,omitempty"`
}

// ChunkSet is the output envelope of a chunking run. A re-chunk fully
// replaces the prior set; chunks are never mutated in place.
type ChunkSet struct {
	DocID     string    `json:"doc_id"`
	ChunkedAt time.Time `json:"chunked_at"`
	Chunking  RunMeta   `json:"chunking"`
	Chunks    []Chunk   `json:"chunks"`
}

const (
	// RulesVersion tags outputs with the heuristic generation.
	RulesVersion = "v1"
	// Ruleset tags outputs with the vocabulary/pattern revision.
	Ruleset = "2026-01"
)
