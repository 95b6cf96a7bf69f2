package chunker

import "testing"

func TestParseClauseRef(t *testing.T) {
	tests := []struct {
		text      string
		wantRef   string
		wantLevel int
	}{
		{"1 Scope", "1", 1},
		{"2.3 Payment terms apply as follows.", "2.3", 2},
		{"10.1.4 Grant of License", "10.1.4", 3},
		{"(a) first sub-clause text", "(a)", 1},
		{"a) alternate lettered form", "(a)", 1},
		{"  3.2 indented clause", "3.2", 2},
		{"No marker here at all", "", 0},
		{"", "", 0},
		{`"Term" means the period defined below.`, "", 0},
	}

	for _, tt := range tests {
		ref, level := ParseClauseRef(tt.text)
		if ref != tt.wantRef || level != tt.wantLevel {
			t.Errorf("ParseClauseRef(%q) = (%q, %d), want (%q, %d)",
				tt.text, ref, level, tt.wantRef, tt.wantLevel)
		}
	}
}

func TestIsNumericRef(t *testing.T) {
	for _, ref := range []string{"1", "2.3", "10.1.4"} {
		if !IsNumericRef(ref) {
			t.Errorf("expected %q to be numeric", ref)
		}
	}
	for _, ref := range []string{"", "(a)", "1.2a", "abc"} {
		if IsNumericRef(ref) {
			t.Errorf("expected %q not to be numeric", ref)
		}
	}
}

func TestIsLetteredRef(t *testing.T) {
	if !IsLetteredRef("(a)") || !IsLetteredRef("(z)") {
		t.Error("expected single lettered markers to match")
	}
	for _, ref := range []string{"", "1.2", "(A)", "(ab)", "a"} {
		if IsLetteredRef(ref) {
			t.Errorf("expected %q not to be lettered", ref)
		}
	}
}
