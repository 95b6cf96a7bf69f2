package extract

import (
	"testing"

	"github.com/rgoodwin/lexchunk/internal/docmodel"
)

func tableChunk(id string, rows [][]string) docmodel.Chunk {
	return docmodel.Chunk{
		ChunkID:   id,
		Type:      docmodel.ChunkTable,
		Table:     &docmodel.Table{Rows: rows},
		PageStart: 4,
		PageEnd:   4,
	}
}

func TestExtractEntitlements_NilChunkSet(t *testing.T) {
	_, err := ExtractEntitlements(nil)
	if err != ErrNoChunks {
		t.Fatalf("expected ErrNoChunks, got %v", err)
	}
}

func TestExtractEntitlements_LicensedProgramsTable(t *testing.T) {
	res, err := ExtractEntitlements(chunkSet(tableChunk("t1", [][]string{
		{"Program", "Metric", "Quantity"},
		{"WidgetPro", "Named User", "50"},
		{"WidgetLite", "Processor", "4"},
	})))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ents := res.Entitlements
	if ents.Status != StatusOK {
		t.Errorf("expected status OK, got %q", ents.Status)
	}
	if len(ents.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(ents.Tables))
	}
	table := ents.Tables[0]
	if table.TableType != TableLicensedPrograms {
		t.Errorf("expected licensed_programs classification, got %q", table.TableType)
	}
	if table.Confidence != 0.8 {
		t.Errorf("expected classified table confidence 0.8, got %f", table.Confidence)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 normalized rows, got %d", len(table.Rows))
	}
	if table.Rows[0]["product"] != "WidgetPro" || table.Rows[0]["metric"] != "Named User" {
		t.Errorf("unexpected normalized row: %v", table.Rows[0])
	}

	if len(ents.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(ents.Products))
	}
	p := ents.Products[0]
	if p.Name != "WidgetPro" {
		t.Errorf("expected product WidgetPro, got %q", p.Name)
	}
	if p.Metric != "Named User" {
		t.Errorf("expected metric Named User, got %q", p.Metric)
	}
	if p.Quantity == nil || !p.Quantity.Parsed || p.Quantity.Value != 50 {
		t.Errorf("expected parsed quantity 50, got %+v", p.Quantity)
	}
	if p.Source != "table" {
		t.Errorf("expected source table, got %q", p.Source)
	}
	if p.Confidence != 0.8 {
		t.Errorf("expected product confidence 0.8, got %f", p.Confidence)
	}
	if len(ents.References) != 0 {
		t.Errorf("expected no references when products exist, got %d", len(ents.References))
	}
}

func TestExtractEntitlements_HeaderOnSecondRow(t *testing.T) {
	res, err := ExtractEntitlements(chunkSet(tableChunk("t1", [][]string{
		{"SCHEDULE A"},
		{"Program", "Metric", "Qty"},
		{"WidgetPro", "Named User", "25"},
	})))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entitlements.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(res.Entitlements.Products))
	}
	if res.Entitlements.Products[0].Name != "WidgetPro" {
		t.Errorf("expected WidgetPro, got %q", res.Entitlements.Products[0].Name)
	}
}

func TestExtractEntitlements_HeaderlessTableUsesPositionalKeys(t *testing.T) {
	res, err := ExtractEntitlements(chunkSet(tableChunk("t1", [][]string{
		{"WidgetPro", "100"},
	})))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ents := res.Entitlements
	if len(ents.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(ents.Tables))
	}
	if ents.Tables[0].TableType != TableUnknown {
		t.Errorf("expected unknown table type, got %q", ents.Tables[0].TableType)
	}
	if ents.Tables[0].Confidence != 0.6 {
		t.Errorf("expected unclassified table confidence 0.6, got %f", ents.Tables[0].Confidence)
	}
	if ents.Tables[0].Headers[0] != "col_1" {
		t.Errorf("expected synthesized headers, got %v", ents.Tables[0].Headers)
	}

	if len(ents.Products) != 1 {
		t.Fatalf("expected 1 product from positional inference, got %d", len(ents.Products))
	}
	p := ents.Products[0]
	if p.Name != "WidgetPro" {
		t.Errorf("expected name from col_1, got %q", p.Name)
	}
	if p.Quantity == nil || !p.Quantity.Parsed || p.Quantity.Value != 100 {
		t.Errorf("expected quantity 100 from col_2, got %+v", p.Quantity)
	}
}

func TestExtractEntitlements_ReferenceFallback(t *testing.T) {
	res, err := ExtractEntitlements(chunkSet(defsChunk(
		"c1",
		"Licensed quantities are as set forth in the applicable Order Form executed by the parties.",
	)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ents := res.Entitlements
	if ents.Status != StatusNoEntitlements {
		t.Errorf("expected NO_ENTITLEMENTS status, got %q", ents.Status)
	}
	if len(ents.Products) != 0 {
		t.Errorf("expected no products, got %d", len(ents.Products))
	}
	if len(ents.References) != 1 {
		t.Fatalf("expected 1 reference, got %d", len(ents.References))
	}
	ref := ents.References[0]
	if ref.RefType != "ordering_document" {
		t.Errorf("expected ordering_document ref type, got %q", ref.RefType)
	}
	if ref.Confidence != 0.6 {
		t.Errorf("expected reference confidence 0.6, got %f", ref.Confidence)
	}
	if len(ref.Evidence) != 1 || ref.Evidence[0].ChunkID != "c1" {
		t.Errorf("expected evidence pointing at c1, got %+v", ref.Evidence)
	}
}

func TestExtractEntitlements_EmptyDocumentStatus(t *testing.T) {
	res, err := ExtractEntitlements(chunkSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Entitlements.Status != StatusNoEntitlements {
		t.Errorf("expected NO_ENTITLEMENTS status, got %q", res.Entitlements.Status)
	}
}

func TestExtractEntitlements_PipeTextFallbackRows(t *testing.T) {
	ch := docmodel.Chunk{
		ChunkID: "t1",
		Type:    docmodel.ChunkTable,
		Text:    "Program | Metric | Quantity\nWidgetPro | Named User | 50",
	}
	res, err := ExtractEntitlements(chunkSet(ch))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entitlements.Products) != 1 {
		t.Fatalf("expected 1 product from pipe-text rows, got %d", len(res.Entitlements.Products))
	}
	if res.Entitlements.Products[0].Name != "WidgetPro" {
		t.Errorf("expected WidgetPro, got %q", res.Entitlements.Products[0].Name)
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		parsed bool
	}{
		{"50", 50, true},
		{"1,000", 1000, true},
		{"50 users", 50, true},
		{"unlimited", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, parsed := parseQuantity(tt.in)
		if got != tt.want || parsed != tt.parsed {
			t.Errorf("parseQuantity(%q) = (%d, %v), want (%d, %v)",
				tt.in, got, parsed, tt.want, tt.parsed)
		}
	}
}

func TestNormalizeHeaderKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Program", "product"},
		{"License Metric", "metric"},
		{"QTY", "quantity"},
		{"Territory", "territory"},
		{"Unmapped Header", "unmapped header"},
	}
	for _, tt := range tests {
		if got := NormalizeHeaderKey(tt.in); got != tt.want {
			t.Errorf("NormalizeHeaderKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassifyTable(t *testing.T) {
	e := NewEntitlementsExtractor(DefaultEntitlementsVocabulary())
	tests := []struct {
		headers []string
		want    string
	}{
		{[]string{"Program", "Metric", "Qty"}, TableLicensedPrograms},
		{[]string{"Item", "Price", "Total"}, TablePricing},
		{[]string{"CSI", "Level"}, TableSupport},
		{[]string{"col_1", "col_2"}, TableUnknown},
	}
	for _, tt := range tests {
		if got := e.classifyTable(tt.headers); got != tt.want {
			t.Errorf("classifyTable(%v) = %q, want %q", tt.headers, got, tt.want)
		}
	}
}
