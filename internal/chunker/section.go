package chunker

// SectionStack maintains the open heading breadcrumb while blocks are
// consumed. Entries are strictly increasing in level from bottom to top:
// observing a heading pops every entry at the same or a deeper level
// before pushing, so repeated or skipped levels replace rather than nest.
type SectionStack struct {
	entries []sectionEntry
}

type sectionEntry struct {
	level   int
	heading string
}

// Observe records a new heading at the given level.
func (s *SectionStack) Observe(level int, heading string) {
	for len(s.entries) > 0 && s.entries[len(s.entries)-1].level >= level {
		s.entries = s.entries[:len(s.entries)-1]
	}
	s.entries = append(s.entries, sectionEntry{level: level, heading: heading})
}

// Path returns the heading texts bottom-to-top. The returned slice is a
// copy; callers may keep it across further Observe calls.
func (s *SectionStack) Path() []string {
	if len(s.entries) == 0 {
		return nil
	}
	path := make([]string, len(s.entries))
	for i, e := range s.entries {
		path[i] = e.heading
	}
	return path
}

// Depth returns the number of open headings.
func (s *SectionStack) Depth() int {
	return len(s.entries)
}
