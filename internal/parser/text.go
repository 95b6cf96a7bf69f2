package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/rgoodwin/lexchunk/internal/docmodel"
)

// TextParser handles plain text files. Blank lines separate paragraphs;
// each paragraph becomes one block. Plain text carries no page info.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*docmodel.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var b blockBuilder
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			b.add(docmodel.BlockParagraph, current.String(), 0, nil)
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return b.document(filename, 0), nil
}
