package chunker

import (
	"strings"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf", "line one\r\nline two", "line one\nline two"},
		{"bare cr", "line one\rline two", "line one\nline two"},
		{"hyphen wrap", "termi-\nnation of the agreement", "termination of the agreement"},
		{"blank runs", "para one\n\n\n\n\npara two", "para one\n\npara two"},
		{"trim", "  padded text \n", "padded text"},
		{"hyphen kept mid-word", "non-exclusive license", "non-exclusive license"},
	}

	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("%s: NormalizeText(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestStableChunkID_Deterministic(t *testing.T) {
	a := StableChunkID("doc-1", []string{"b1", "b2"}, "chunk text")
	b := StableChunkID("doc-1", []string{"b1", "b2"}, "chunk text")
	if a != b {
		t.Errorf("expected stable ids, got %q and %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if strings.ToLower(a) != a {
		t.Errorf("expected lowercase hex, got %q", a)
	}
}

func TestStableChunkID_SensitiveToInputs(t *testing.T) {
	base := StableChunkID("doc-1", []string{"b1"}, "text")
	if StableChunkID("doc-2", []string{"b1"}, "text") == base {
		t.Error("expected id to change with doc id")
	}
	if StableChunkID("doc-1", []string{"b2"}, "text") == base {
		t.Error("expected id to change with source blocks")
	}
	if StableChunkID("doc-1", []string{"b1"}, "other") == base {
		t.Error("expected id to change with text")
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"one", 1},
		{"two words", 2},
		{"  padded   with   runs  ", 3},
		{"line\nbreaks\ncount too", 4},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.in); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
