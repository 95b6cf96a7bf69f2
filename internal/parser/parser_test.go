package parser

import (
	"strings"
	"testing"

	"github.com/rgoodwin/lexchunk/internal/docmodel"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     Parser
	}{
		{"contract.txt", &TextParser{}},
		{"CONTRACT.TXT", &TextParser{}},
		{"notes.md", &MarkdownParser{}},
		{"schedule.csv", &CSVParser{}},
		{"page.html", &HTMLParser{}},
		{"page.htm", &HTMLParser{}},
		{"agreement.pdf", &PDFParser{}},
		{"agreement.docx", &DOCXParser{}},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename)
		if err != nil {
			t.Errorf("ForFile(%q): unexpected error: %v", tt.filename, err)
			continue
		}
		if p == nil {
			t.Errorf("ForFile(%q): nil parser", tt.filename)
		}
	}

	if _, err := ForFile("image.png"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("a.txt") || !IsSupportedExtension("b.PDF") {
		t.Error("expected supported extensions to be accepted")
	}
	if IsSupportedExtension("c.exe") || IsSupportedExtension("noext") {
		t.Error("expected unsupported extensions to be rejected")
	}
}

func TestTextParser_ParagraphSplit(t *testing.T) {
	input := "First line\ncontinues here.\n\nSecond paragraph.\n\n\nThird paragraph.\n"
	doc, err := (&TextParser{}).Parse(strings.NewReader(input), "doc.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Blocks) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d: %+v", len(doc.Blocks), doc.Blocks)
	}
	if doc.Blocks[0].Text != "First line\ncontinues here." {
		t.Errorf("expected joined lines within a paragraph, got %q", doc.Blocks[0].Text)
	}
	if doc.Blocks[1].Text != "Second paragraph." {
		t.Errorf("unexpected second paragraph: %q", doc.Blocks[1].Text)
	}
	for i, b := range doc.Blocks {
		if b.Type != docmodel.BlockParagraph {
			t.Errorf("block %d: expected paragraph type, got %q", i, b.Type)
		}
		if b.PageStart != 0 {
			t.Errorf("block %d: plain text carries no page info, got %d", i, b.PageStart)
		}
	}
}

func TestTextParser_BlockIDsSequential(t *testing.T) {
	input := "one\n\ntwo\n\nthree"
	doc, err := (&TextParser{}).Parse(strings.NewReader(input), "doc.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"b0001", "b0002", "b0003"}
	for i, b := range doc.Blocks {
		if b.BlockID != want[i] {
			t.Errorf("block %d: id = %q, want %q", i, b.BlockID, want[i])
		}
	}
	if doc.Source == nil || doc.Source.Filename != "doc.txt" {
		t.Errorf("expected source filename recorded, got %+v", doc.Source)
	}
}

func TestTextParser_Empty(t *testing.T) {
	doc, err := (&TextParser{}).Parse(strings.NewReader("  \n\n  "), "doc.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Blocks) != 0 {
		t.Errorf("expected no blocks from whitespace-only input, got %d", len(doc.Blocks))
	}
}

func TestMarkdownParser_HeadingsAndParagraphs(t *testing.T) {
	input := "# DEFINITIONS\n\nCapitalized terms have the meanings below.\n\n## 1.1 Software\n\nmeans the object code.\n"
	doc, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d: %+v", len(doc.Blocks), doc.Blocks)
	}
	if doc.Blocks[0].Type != docmodel.BlockHeading || doc.Blocks[0].Text != "DEFINITIONS" {
		t.Errorf("unexpected first block: %+v", doc.Blocks[0])
	}
	if doc.Blocks[1].Type != docmodel.BlockParagraph {
		t.Errorf("expected paragraph, got %+v", doc.Blocks[1])
	}
	if doc.Blocks[2].Type != docmodel.BlockHeading || doc.Blocks[2].Text != "1.1 Software" {
		t.Errorf("unexpected third block: %+v", doc.Blocks[2])
	}
}

func TestMarkdownParser_PipeTable(t *testing.T) {
	input := "| Program | Qty |\n| --- | --- |\n| WidgetPro | 50 |\n| GadgetSuite | 10 |\n"
	doc, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Blocks) != 1 {
		t.Fatalf("expected 1 table block, got %d: %+v", len(doc.Blocks), doc.Blocks)
	}
	b := doc.Blocks[0]
	if b.Type != docmodel.BlockTable || b.Table == nil {
		t.Fatalf("expected table block, got %+v", b)
	}
	if len(b.Table.Rows) != 3 {
		t.Fatalf("expected header + 2 data rows, got %d", len(b.Table.Rows))
	}
	if b.Table.Rows[0][0] != "Program" || b.Table.Rows[0][1] != "Qty" {
		t.Errorf("unexpected header row: %v", b.Table.Rows[0])
	}
	if b.Table.Rows[1][0] != "WidgetPro" || b.Table.Rows[1][1] != "50" {
		t.Errorf("unexpected data row: %v", b.Table.Rows[1])
	}
}

func TestHTMLParser_Structure(t *testing.T) {
	input := `<html><body>
<header>ACME Corp - Confidential</header>
<h1>DEFINITIONS</h1>
<p>Capitalized terms have the meanings below.</p>
<script>alert("skip me")</script>
<table>
<tr><th>Program</th><th>Qty</th></tr>
<tr><td>WidgetPro</td><td>50</td></tr>
</table>
<footer>Page 1 of 9</footer>
</body></html>`
	doc, err := (&HTMLParser{}).Parse(strings.NewReader(input), "doc.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Blocks) != 5 {
		t.Fatalf("expected 5 blocks, got %d: %+v", len(doc.Blocks), doc.Blocks)
	}
	if doc.Blocks[0].Type != docmodel.BlockHeader {
		t.Errorf("expected header block first, got %+v", doc.Blocks[0])
	}
	if doc.Blocks[1].Type != docmodel.BlockHeading || doc.Blocks[1].Text != "DEFINITIONS" {
		t.Errorf("unexpected heading block: %+v", doc.Blocks[1])
	}
	if doc.Blocks[2].Type != docmodel.BlockParagraph {
		t.Errorf("expected paragraph, got %+v", doc.Blocks[2])
	}
	tb := doc.Blocks[3]
	if tb.Type != docmodel.BlockTable || tb.Table == nil || len(tb.Table.Rows) != 2 {
		t.Fatalf("unexpected table block: %+v", tb)
	}
	if tb.Table.Rows[1][0] != "WidgetPro" {
		t.Errorf("unexpected table row: %v", tb.Table.Rows[1])
	}
	if doc.Blocks[4].Type != docmodel.BlockFooter {
		t.Errorf("expected footer block last, got %+v", doc.Blocks[4])
	}
	for _, b := range doc.Blocks {
		if strings.Contains(b.Text, "skip me") {
			t.Error("script content leaked into blocks")
		}
	}
}

func TestCSVParser_SingleTableBlock(t *testing.T) {
	input := "Program,Metric,Quantity\nWidgetPro,Named User,50\nGadgetSuite,Processor\n"
	doc, err := (&CSVParser{}).Parse(strings.NewReader(input), "schedule.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(doc.Blocks))
	}
	b := doc.Blocks[0]
	if b.Type != docmodel.BlockTable || b.Table == nil {
		t.Fatalf("expected table block, got %+v", b)
	}
	if len(b.Table.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(b.Table.Rows))
	}
	if len(b.Table.Rows[2]) != 2 {
		t.Errorf("expected ragged row preserved, got %v", b.Table.Rows[2])
	}
}

func TestCSVParser_Empty(t *testing.T) {
	doc, err := (&CSVParser{}).Parse(strings.NewReader(""), "schedule.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Blocks) != 0 {
		t.Errorf("expected no blocks for empty input, got %d", len(doc.Blocks))
	}
}
