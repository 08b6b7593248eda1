package section

// Tracker records, per file, the net number of lines each saved edit added or
// removed, keyed by the edit's original starting line. Sections saved one at a
// time keep their original line numbers valid until the next full reparse, so
// a later edit at original line L can be addressed on disk at
// L + CumulativeBefore(file, L) without reparsing the whole document.
type Tracker struct {
	drift map[string]map[int]int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{drift: make(map[string]map[int]int)}
}

// Record stores the net line drift introduced at originalLine in file.
// Recording the same line again overwrites the previous value: repeated saves
// to one section reflect a new absolute line count, not an additional delta.
func (t *Tracker) Record(file string, originalLine, addedLines int) {
	m, ok := t.drift[file]
	if !ok {
		m = make(map[int]int)
		t.drift[file] = m
	}
	m[originalLine] = addedLines
}

// CumulativeBefore sums every recorded drift for file whose original line is
// strictly less than targetLine. An unknown file contributes zero.
func (t *Tracker) CumulativeBefore(file string, targetLine int) int {
	total := 0
	for line, added := range t.drift[file] {
		if line < targetLine {
			total += added
		}
	}
	return total
}

// ResetFile drops all drift recorded for one file, after that file has been
// reparsed and its line numbers refer to a new coordinate space.
func (t *Tracker) ResetFile(file string) {
	delete(t.drift, file)
}

// Reset clears the tracker entirely. Called after a full project reparse,
// when every stored line number refers to a stale coordinate space.
func (t *Tracker) Reset() {
	t.drift = make(map[string]map[int]int)
}
