package chunker

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rgoodwin/lexchunk/internal/docmodel"
)

// DefaultMaxChars is the chunk length ceiling before a forced split.
const DefaultMaxChars = 2000

// ErrNoDocument is returned when chunking is invoked without a decodable
// input document. This is a caller contract violation (a pipeline ordering
// bug upstream), so it fails loudly instead of producing an empty set.
var ErrNoDocument = errors.New("chunker: no input document")

// Config controls chunking behavior.
type Config struct {
	MaxChars  int // Chunk length ceiling in characters before a forced split.
	PageStart int // Optional inclusive page filter, 1-based. 0 = unbounded.
	PageEnd   int

	// Vocabulary for the heading classifier. Zero value uses the default
	// legal-document vocabulary.
	Vocabulary *HeadingVocabulary
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{MaxChars: DefaultMaxChars}
}

// assemblerState is the explicit state of the chunk assembler.
type assemblerState int

const (
	stateIdle assemblerState = iota // no open chunk
	stateOpen                       // accumulating into current
)

// openChunk is the builder for the chunk currently being assembled.
type openChunk struct {
	texts        []string
	pageStart    int
	pageEnd      int
	sectionPath  []string
	heading      string
	clauseRef    string
	clauseLevel  int
	sourceBlocks []string
	bboxList     [][]float64
	isTable      bool
	isHeading    bool
	table        *docmodel.Table
}

// assembler walks the block stream and emits chunks. It is single-use:
// one assembler per chunking run, no shared state between runs.
type assembler struct {
	docID      string
	cfg        Config
	classifier *HeadingClassifier
	sections   SectionStack
	state      assemblerState
	current    *openChunk
	out        []docmodel.Chunk
}

// ChunkDocument reconstructs a navigable chunk sequence from the
// document's block stream. The run is deterministic and purely functional
// over its inputs; a re-chunk fully replaces any prior chunk set.
func ChunkDocument(doc *docmodel.Document, cfg Config) (*docmodel.ChunkSet, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}
	vocab := DefaultHeadingVocabulary()
	if cfg.Vocabulary != nil {
		vocab = *cfg.Vocabulary
	}

	a := &assembler{
		docID:      doc.ID(),
		cfg:        cfg,
		classifier: NewHeadingClassifier(vocab),
	}

	for i := range doc.Blocks {
		a.consume(&doc.Blocks[i])
	}
	a.flush()

	return &docmodel.ChunkSet{
		DocID:     doc.ID(),
		ChunkedAt: time.Now().UTC(),
		Chunking: docmodel.RunMeta{
			Version:   docmodel.RulesVersion,
			Ruleset:   docmodel.Ruleset,
			PageStart: cfg.PageStart,
			PageEnd:   cfg.PageEnd,
		},
		Chunks: a.out,
	}, nil
}

// consume advances the state machine by one block.
func (a *assembler) consume(block *docmodel.Block) {
	if !a.inRange(block) {
		return
	}
	switch block.Type {
	case docmodel.BlockHeader, docmodel.BlockFooter:
		return
	}

	isTable := block.Type == docmodel.BlockTable || block.Table != nil
	text := NormalizeText(block.Text)
	if isTable && text == "" {
		text = NormalizeText(block.Table.Serialize())
	}
	if text == "" && !isTable {
		return
	}

	// Table wins over heading when a block is both: tables are rarer and
	// structurally significant, and losing one inside a heading chunk
	// would strand its rows.
	if isTable {
		a.flush()
		a.open(block, text)
		a.current.isTable = true
		a.current.table = block.Table
		a.flush()
		return
	}

	if block.Type == docmodel.BlockHeading || a.classifier.IsHeading(text) {
		a.flush()
		a.sections.Observe(a.classifier.Level(text), text)
		a.open(block, text)
		a.current.isHeading = true
		a.flush()
		return
	}

	if a.state == stateIdle {
		a.open(block, text)
		return
	}

	// A different clause marker usually opens a new clause, except that
	// lettered markers after a numeric or lettered clause are sub-clause
	// continuations and merge.
	nextRef, _ := ParseClauseRef(text)
	if a.current.clauseRef != "" && nextRef != "" && nextRef != a.current.clauseRef {
		continuation := IsLetteredRef(nextRef) &&
			(IsNumericRef(a.current.clauseRef) || IsLetteredRef(a.current.clauseRef))
		if !continuation {
			a.flush()
			a.open(block, text)
			return
		}
	}

	prospective := utf8.RuneCountInString(text)
	for _, t := range a.current.texts {
		prospective += utf8.RuneCountInString(t)
	}
	if prospective > a.cfg.MaxChars {
		a.flush()
		a.open(block, text)
		return
	}

	a.append(block, text, nextRef)
}

// open seeds a new chunk from a block. Section path and heading reflect
// the stack as of this block, so a heading chunk includes itself.
func (a *assembler) open(block *docmodel.Block, text string) {
	path := a.sections.Path()
	heading := ""
	if len(path) > 0 {
		heading = path[len(path)-1]
	}
	ref, level := ParseClauseRef(text)
	a.current = &openChunk{
		texts:        []string{text},
		pageStart:    block.PageStart,
		pageEnd:      block.PageEnd,
		sectionPath:  path,
		heading:      heading,
		clauseRef:    ref,
		clauseLevel:  level,
		sourceBlocks: []string{block.BlockID},
	}
	if block.BBox != nil {
		a.current.bboxList = append(a.current.bboxList, block.BBox)
	}
	a.state = stateOpen
}

// append merges a prose block into the open chunk: text joins with a blank
// line on flush, the page interval widens to the union, and the block's
// provenance is recorded.
func (a *assembler) append(block *docmodel.Block, text, nextRef string) {
	cur := a.current
	cur.texts = append(cur.texts, text)

	if cur.pageStart == 0 {
		cur.pageStart = block.PageStart
	} else if block.PageStart != 0 && block.PageStart < cur.pageStart {
		cur.pageStart = block.PageStart
	}
	if cur.pageEnd == 0 {
		cur.pageEnd = block.PageEnd
	} else if block.PageEnd > cur.pageEnd {
		cur.pageEnd = block.PageEnd
	}

	cur.sourceBlocks = append(cur.sourceBlocks, block.BlockID)
	if block.BBox != nil {
		cur.bboxList = append(cur.bboxList, block.BBox)
	}
	if cur.clauseRef == "" && nextRef != "" {
		cur.clauseRef = nextRef
	}
}

// flush closes the open chunk, if any, and emits it. Chunks whose merged
// text normalizes to empty are discarded rather than emitted.
func (a *assembler) flush() {
	cur := a.current
	a.current = nil
	a.state = stateIdle
	if cur == nil {
		return
	}

	text := NormalizeText(strings.Join(cur.texts, "\n\n"))
	if text == "" {
		return
	}

	a.out = append(a.out, docmodel.Chunk{
		ChunkID:      StableChunkID(a.docID, cur.sourceBlocks, text),
		Type:         chunkType(cur),
		Text:         text,
		TokensEst:    EstimateTokens(text),
		CharLen:      utf8.RuneCountInString(text),
		PageStart:    cur.pageStart,
		PageEnd:      cur.pageEnd,
		SectionPath:  cur.sectionPath,
		Heading:      cur.heading,
		ClauseRef:    cur.clauseRef,
		ClauseLevel:  cur.clauseLevel,
		SourceBlocks: cur.sourceBlocks,
		BBoxList:     cur.bboxList,
		Table:        cur.table,
	})
}

func chunkType(cur *openChunk) docmodel.ChunkType {
	if cur.isHeading {
		return docmodel.ChunkHeading
	}
	if cur.isTable {
		return docmodel.ChunkTable
	}
	for _, s := range cur.sectionPath {
		if strings.Contains(strings.ToLower(s), "definition") {
			return docmodel.ChunkDefinition
		}
	}
	if cur.clauseRef != "" {
		return docmodel.ChunkClause
	}
	return docmodel.ChunkParagraph
}

// inRange applies the optional page filter: a block is included when its
// page interval overlaps the configured range, and blocks without page
// info are always included.
func (a *assembler) inRange(block *docmodel.Block) bool {
	if a.cfg.PageStart == 0 && a.cfg.PageEnd == 0 {
		return true
	}
	if block.PageStart == 0 && block.PageEnd == 0 {
		return true
	}
	if a.cfg.PageStart != 0 && block.PageEnd != 0 && block.PageEnd < a.cfg.PageStart {
		return false
	}
	if a.cfg.PageEnd != 0 && block.PageStart != 0 && block.PageStart > a.cfg.PageEnd {
		return false
	}
	return true
}
