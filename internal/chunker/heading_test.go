package chunker

import "testing"

func newTestClassifier() *HeadingClassifier {
	return NewHeadingClassifier(DefaultHeadingVocabulary())
}

func TestIsHeading_Accepts(t *testing.T) {
	c := newTestClassifier()
	headings := []string{
		"DEFINITIONS",
		"1. DEFINITIONS",
		"3.1 Grant of License",
		"Schedule A - Licensed Programs",
		"Termination of Agreement",
		"EXHIBIT B",
	}
	for _, h := range headings {
		if !c.IsHeading(h) {
			t.Errorf("expected %q to classify as a heading", h)
		}
	}
}

func TestIsHeading_Rejects(t *testing.T) {
	c := newTestClassifier()
	notHeadings := []string{
		"",
		"x",
		"This is a normal sentence that ends with a period.",
		"the parties agree as follows",
		"Fees and payment details are described in the attached invoice schedule which follows",
	}
	for _, h := range notHeadings {
		if c.IsHeading(h) {
			t.Errorf("expected %q not to classify as a heading", h)
		}
	}
}

func TestIsHeading_LengthBounds(t *testing.T) {
	c := newTestClassifier()
	long := make([]byte, 130)
	for i := range long {
		long[i] = 'A'
	}
	if c.IsHeading(string(long)) {
		t.Error("expected overly long text to be rejected")
	}
}

func TestHeadingLevel(t *testing.T) {
	c := newTestClassifier()
	tests := []struct {
		text string
		want int
	}{
		{"1. DEFINITIONS", 1},
		{"3.1 Grant of License", 2},
		{"10.1.4 Sublicensing", 3},
		{"DEFINITIONS", 1},
		{"Schedule A - Licensed Programs", 1},
		{"Appendix 1", 1},
		{"Grant of License", 2},
	}
	for _, tt := range tests {
		if got := c.Level(tt.text); got != tt.want {
			t.Errorf("Level(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestHeadingClassifier_CustomVocabulary(t *testing.T) {
	c := NewHeadingClassifier(HeadingVocabulary{
		Keywords:         []string{"dosage"},
		LevelOnePrefixes: []string{"protocol"},
	})
	if !c.IsHeading("Dosage And Administration") {
		t.Error("expected custom keyword heading to match")
	}
	if c.Level("Protocol Amendments") != 1 {
		t.Error("expected custom level-one prefix to apply")
	}
}

func TestSectionStack_PopAndPush(t *testing.T) {
	var s SectionStack
	s.Observe(1, "1. DEFINITIONS")
	s.Observe(2, "1.1 Interpretation")
	if s.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", s.Depth())
	}

	// A same-level heading replaces, it does not nest.
	s.Observe(2, "1.2 References")
	path := s.Path()
	if len(path) != 2 || path[1] != "1.2 References" {
		t.Errorf("expected replacement at level 2, got %v", path)
	}

	// A shallower heading pops everything at or below its level.
	s.Observe(1, "2. LICENSE")
	path = s.Path()
	if len(path) != 1 || path[0] != "2. LICENSE" {
		t.Errorf("expected reset to level 1, got %v", path)
	}
}

func TestSectionStack_PathIsCopy(t *testing.T) {
	var s SectionStack
	s.Observe(1, "A")
	path := s.Path()
	s.Observe(1, "B")
	if path[0] != "A" {
		t.Error("expected returned path to be unaffected by later observations")
	}
}

func TestSectionStack_EmptyPath(t *testing.T) {
	var s SectionStack
	if s.Path() != nil {
		t.Error("expected nil path for empty stack")
	}
}
