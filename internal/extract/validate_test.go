package extract

import (
	"strings"
	"testing"
)

func validDefinition() Definition {
	return Definition{
		Term:       "Software",
		Definition: "the licensed object code",
		Confidence: 0.9,
		Evidence:   []Evidence{{ChunkID: "c1"}},
	}
}

func TestValidateDefinition(t *testing.T) {
	d := validDefinition()
	if !ValidateDefinition(&d) {
		t.Fatal("expected valid definition to pass")
	}

	tests := []struct {
		name   string
		mutate func(*Definition)
	}{
		{"nil term", func(d *Definition) { d.Term = "" }},
		{"whitespace term", func(d *Definition) { d.Term = "   " }},
		{"overlong term", func(d *Definition) { d.Term = strings.Repeat("x", 81) }},
		{"newline in term", func(d *Definition) { d.Term = "a\nb" }},
		{"empty definition", func(d *Definition) { d.Definition = "" }},
		{"negative confidence", func(d *Definition) { d.Confidence = -0.1 }},
		{"confidence above one", func(d *Definition) { d.Confidence = 1.1 }},
		{"no evidence", func(d *Definition) { d.Evidence = nil }},
	}
	for _, tt := range tests {
		d := validDefinition()
		tt.mutate(&d)
		if ValidateDefinition(&d) {
			t.Errorf("%s: expected rejection", tt.name)
		}
	}

	if ValidateDefinition(nil) {
		t.Error("expected nil definition to be rejected")
	}
}

func TestValidateProduct(t *testing.T) {
	valid := EntitlementProduct{
		Name:       "WidgetPro",
		Source:     "table",
		Confidence: 0.8,
		Evidence:   []Evidence{{ChunkID: "t1"}},
	}
	if !ValidateProduct(&valid) {
		t.Fatal("expected valid product to pass")
	}

	noName := valid
	noName.Name = " "
	if ValidateProduct(&noName) {
		t.Error("expected nameless product to be rejected")
	}

	wrongSource := valid
	wrongSource.Source = "prose"
	if ValidateProduct(&wrongSource) {
		t.Error("expected non-table source to be rejected")
	}

	badConf := valid
	badConf.Confidence = 2.0
	if ValidateProduct(&badConf) {
		t.Error("expected out-of-range confidence to be rejected")
	}

	noEvidence := valid
	noEvidence.Evidence = nil
	if ValidateProduct(&noEvidence) {
		t.Error("expected product without evidence to be rejected")
	}

	if ValidateProduct(nil) {
		t.Error("expected nil product to be rejected")
	}
}

func TestValidateReference(t *testing.T) {
	valid := EntitlementReference{
		RefType:    "ordering_document",
		RefText:    "as set forth in the Order Form",
		Confidence: 0.6,
		Evidence:   []Evidence{{ChunkID: "c1"}},
	}
	if !ValidateReference(&valid) {
		t.Fatal("expected valid reference to pass")
	}

	noText := valid
	noText.RefText = ""
	if ValidateReference(&noText) {
		t.Error("expected empty ref text to be rejected")
	}

	noEvidence := valid
	noEvidence.Evidence = nil
	if ValidateReference(&noEvidence) {
		t.Error("expected reference without evidence to be rejected")
	}

	if ValidateReference(nil) {
		t.Error("expected nil reference to be rejected")
	}
}
