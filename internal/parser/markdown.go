package parser

import (
	"bytes"
	"io"

	"github.com/rgoodwin/lexchunk/internal/docmodel"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Headings become
// heading blocks, pipe tables (GFM table extension) become table blocks,
// and everything else accumulates into paragraph blocks.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*docmodel.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var b blockBuilder
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := extractText(node, src)
			if title != "" {
				b.add(docmodel.BlockHeading, title, 0, nil)
			}
		case *east.Table:
			table := markdownTable(node, src)
			if !table.IsEmpty() {
				b.add(docmodel.BlockTable, "", 0, table)
			}
		default:
			if t := extractText(n, src); t != "" {
				b.add(docmodel.BlockParagraph, t, 0, nil)
			}
		}
	}

	return b.document(filename, 0), nil
}

// markdownTable converts a goldmark table node (header row + data rows)
// into canonical rows.
func markdownTable(node *east.Table, src []byte) *docmodel.Table {
	table := &docmodel.Table{}
	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		switch row.(type) {
		case *east.TableHeader, *east.TableRow:
		default:
			continue
		}
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, extractText(cell, src))
		}
		if len(cells) > 0 {
			table.Rows = append(table.Rows, cells)
		}
	}
	return table
}

// extractText gets the text content of a goldmark AST node: the raw
// source lines for block nodes that carry them, otherwise the
// concatenated inline text children.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
			buf.WriteByte('\n')
		}
		return string(bytes.TrimSpace(buf.Bytes()))
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return string(bytes.TrimSpace(buf.Bytes()))
}
