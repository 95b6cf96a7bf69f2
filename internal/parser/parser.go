package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rgoodwin/lexchunk/internal/docmodel"
)

// Parser converts raw document bytes into the page/block stream the
// chunking engine consumes. These are plain-text fallbacks; a
// high-fidelity layout parser can supply the same schema externally.
type Parser interface {
	Parse(r io.Reader, filename string) (*docmodel.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".html": true,
	".htm":  true,
	".pdf":  true,
	".docx": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// blockBuilder assigns sequential block ids and accumulates the stream.
// A page of 0 means the source format carries no page information.
type blockBuilder struct {
	blocks []docmodel.Block
	seq    int
}

func (b *blockBuilder) add(blockType docmodel.BlockType, text string, page int, table *docmodel.Table) {
	b.seq++
	b.blocks = append(b.blocks, docmodel.Block{
		BlockID:   fmt.Sprintf("b%04d", b.seq),
		Type:      blockType,
		Text:      text,
		PageStart: page,
		PageEnd:   page,
		Table:     table,
	})
}

func (b *blockBuilder) document(filename string, pageCount int) *docmodel.Document {
	doc := &docmodel.Document{
		Source:    &docmodel.Source{Filename: filename},
		PageCount: pageCount,
		Blocks:    b.blocks,
	}
	for i := 1; i <= pageCount; i++ {
		doc.Pages = append(doc.Pages, docmodel.Page{PageNumber: i})
	}
	return doc
}
