package section

// Section represents a hierarchical division of a document, typically
// corresponding to a heading in markdown. Sections track their position in the
// document tree through parent/child indices and carry precise line and byte
// coordinates for content extraction and modification.
//
// Coordinates refer to the last successful parse of FilePath. Line numbers are
// 1-based; the content range [LineStart, LineEnd) is half-open and excludes the
// heading line itself. Byte offsets are valid only until the file changes on
// disk and must never be trusted across edits.
//
// ParentIndex and ChildrenIndices are positions within one generation of the
// in-memory section list. Any reload of a file produces a new generation and
// invalidates every previously held index.
type Section struct {
	// Title is the heading text without markup symbols.
	Title string
	// Level is the nesting depth, 1 for top-level.
	Level int
	// LineStart is the first line of section content (after the heading).
	LineStart int
	// LineEnd is the line where the next section begins or the file ends.
	LineEnd int
	// ColumnStart and ColumnEnd span the heading, kept for re-matching.
	ColumnStart int
	ColumnEnd   int
	// ByteStart and ByteEnd bound the section content in the parsed buffer.
	ByteStart int
	ByteEnd   int
	// FilePath is the owning file and the partition key for all per-file
	// bookkeeping.
	FilePath string
	// ParentIndex is the list index of the enclosing section, -1 for roots.
	ParentIndex int
	// ChildrenIndices lists directly nested sections in document order.
	ChildrenIndices []int
	// Pending holds buffered, not-yet-flushed edited lines. nil means the
	// section is unedited since its last load.
	Pending []string
}

// Edited reports whether the section carries buffered content.
func (s *Section) Edited() bool {
	return s.Pending != nil
}

// Parent returns the index of the enclosing section.
func Parent(sections []Section, i int) (int, bool) {
	if i < 0 || i >= len(sections) || sections[i].ParentIndex < 0 {
		return 0, false
	}
	return sections[i].ParentIndex, true
}

// FirstChild returns the index of the first directly nested section.
func FirstChild(sections []Section, i int) (int, bool) {
	if i < 0 || i >= len(sections) || len(sections[i].ChildrenIndices) == 0 {
		return 0, false
	}
	return sections[i].ChildrenIndices[0], true
}

// NextDescendant returns the first child if present, otherwise the next entry
// at a strictly deeper level than the current one.
func NextDescendant(sections []Section, i int) (int, bool) {
	if c, ok := FirstChild(sections, i); ok {
		return c, true
	}
	for j := i + 1; j < len(sections); j++ {
		if sections[j].Level > sections[i].Level {
			return j, true
		}
	}
	return 0, false
}

// NextSibling scans forward for the next section at the same level. The scan
// stops as soon as it leaves the current subtree, i.e. when it encounters a
// section at a shallower level, even if same-level sections exist beyond it.
func NextSibling(sections []Section, i int) (int, bool) {
	if i < 0 || i >= len(sections) {
		return 0, false
	}
	level := sections[i].Level
	for j := i + 1; j < len(sections); j++ {
		if sections[j].Level == level {
			return j, true
		}
		if sections[j].Level < level {
			break
		}
	}
	return 0, false
}

// PrevSibling scans backward for the previous section at the same level,
// stopping at the subtree boundary.
func PrevSibling(sections []Section, i int) (int, bool) {
	if i < 0 || i >= len(sections) {
		return 0, false
	}
	level := sections[i].Level
	for j := i - 1; j >= 0; j-- {
		if sections[j].Level == level {
			return j, true
		}
		if sections[j].Level < level {
			break
		}
	}
	return 0, false
}

// FirstAtLevel returns the first section sharing the level of section i,
// regardless of subtree boundaries.
func FirstAtLevel(sections []Section, i int) (int, bool) {
	if i < 0 || i >= len(sections) {
		return 0, false
	}
	level := sections[i].Level
	for j := range sections {
		if sections[j].Level == level {
			return j, true
		}
	}
	return 0, false
}

// LastAtLevel returns the last section sharing the level of section i.
func LastAtLevel(sections []Section, i int) (int, bool) {
	if i < 0 || i >= len(sections) {
		return 0, false
	}
	level := sections[i].Level
	for j := len(sections) - 1; j >= 0; j-- {
		if sections[j].Level == level {
			return j, true
		}
	}
	return 0, false
}

// Reindex rebuilds ParentIndex and ChildrenIndices for a section list from
// the level sequence alone. It is used after splicing freshly parsed sections
// into a larger list, where parser-local indices no longer hold. Hierarchy
// never crosses a file boundary.
func Reindex(sections []Section) {
	type frame struct {
		index int
		level int
	}
	var stack []frame

	for i := range sections {
		sections[i].ParentIndex = -1
		sections[i].ChildrenIndices = nil
	}
	for i := range sections {
		if i > 0 && sections[i].FilePath != sections[i-1].FilePath {
			stack = stack[:0]
		}
		for len(stack) > 0 && stack[len(stack)-1].level >= sections[i].Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			p := stack[len(stack)-1].index
			sections[i].ParentIndex = p
			sections[p].ChildrenIndices = append(sections[p].ChildrenIndices, i)
		}
		stack = append(stack, frame{index: i, level: sections[i].Level})
	}
}
