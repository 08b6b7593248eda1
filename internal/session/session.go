// Package session owns the live section list, the current selection, the
// editor buffer, the offset tracker and the reorder protocol. It is the single
// source of truth the TUI interrogates and mutates, one input event at a time.
package session

import (
	"context"
	"fmt"
	"os"
	"strings"

	"stanza/internal/editor"
	"stanza/internal/journal"
	"stanza/internal/parser"
	"stanza/internal/patch"
	"stanza/internal/plan"
	"stanza/internal/section"
)

// View determines which screen renders and how input is interpreted.
type View int

const (
	// ViewFileList shows available files in multi-file projects.
	ViewFileList View = iota
	// ViewList shows the hierarchical section tree.
	ViewList
	// ViewDetail shows the editor for one section's content.
	ViewDetail
	// ViewCommand captures vim-style command input after ':'.
	ViewCommand
)

// FileMode determines navigation scope and quit behavior.
type FileMode int

const (
	// SingleFile quits directly to the shell.
	SingleFile FileMode = iota
	// MultiFile returns to the file list before quitting.
	MultiFile
)

// Session bridges document sections and the interactive editor. Exactly one
// goroutine owns a Session; every operation runs to completion before the
// next input event is accepted.
type Session struct {
	// Sections is the current generation of parsed sections. Any reload
	// replaces a file's sections wholesale and invalidates held indices.
	Sections []section.Section
	// Files lists the documents available for editing.
	Files []string
	// FileIndex is the selection in the file list view.
	FileIndex int
	// Mode controls file list visibility and quit behavior.
	Mode FileMode
	// View is the active screen.
	View View
	// Selected is the current section index.
	Selected int
	// Editor holds the buffer while the detail view is active, else nil.
	Editor *editor.Buffer
	// Command accumulates input after ':'.
	Command string
	// Message is transient status feedback for the help strip.
	Message string
	// WrapWidth bounds editor line width.
	WrapWidth int

	format  parser.Format
	tracker *section.Tracker
	journal *journal.Journal

	moveState        MoveState
	movingIndex      int
	snapshot         []section.Section
	snapshotSelected int
}

// New initialises a session from parse results. Single-file projects skip
// the file list; multi-file projects start on it after quitting the list.
func New(files []string, sections []section.Section, format parser.Format, wrapWidth int) *Session {
	mode := SingleFile
	if len(files) > 1 {
		mode = MultiFile
	}
	return &Session{
		Sections:    sections,
		Files:       files,
		Mode:        mode,
		View:        ViewList,
		WrapWidth:   wrapWidth,
		format:      format,
		tracker:     section.NewTracker(),
		movingIndex: -1,
	}
}

// AttachJournal enables best-effort journaling of applied edits.
func (s *Session) AttachJournal(j *journal.Journal) {
	s.journal = j
}

// Tracker exposes the per-file drift bookkeeping.
func (s *Session) Tracker() *section.Tracker {
	return s.tracker
}

// SelectFile loads the sections of file i and switches to the list view.
// The previous generation, including the tracker, is discarded.
func (s *Session) SelectFile(i int) error {
	if i < 0 || i >= len(s.Files) {
		return fmt.Errorf("file index %d out of range", i)
	}
	sections, err := s.format.ExtractSections(s.Files[i])
	if err != nil {
		return err
	}
	s.FileIndex = i
	s.Sections = sections
	s.Selected = 0
	s.tracker.Reset()
	s.View = ViewList
	return nil
}

// EnterDetail loads the selected section's trimmed content into the editor
// buffer and switches to the detail view. Entry is refused while a reorder is
// in flight, and is a no-op on an empty list.
func (s *Session) EnterDetail() {
	if len(s.Sections) == 0 || s.moveState != MoveIdle {
		return
	}

	sec := &s.Sections[s.Selected]
	var text string
	if sec.Edited() {
		text = strings.Join(sec.Pending, "\n")
	} else {
		content, err := os.ReadFile(sec.FilePath)
		if err != nil {
			s.Message = fmt.Sprintf("Error reading %s: %v", sec.FilePath, err)
			return
		}
		start := min(sec.ByteStart, len(content))
		end := min(sec.ByteEnd, len(content))
		text = string(content[start:end])
	}

	trimmed := strings.TrimSpace(text)
	s.Editor = editor.New()
	if trimmed == "" {
		s.Editor.Load("\n")
	} else {
		s.Editor.Load("\n" + trimmed + "\n")
	}
	s.View = ViewDetail
}

// ExitDetail returns to the section list, buffering the editor content on the
// section when keep is true and discarding it otherwise.
func (s *Session) ExitDetail(keep bool) {
	if keep && s.Editor != nil && s.Selected < len(s.Sections) {
		s.Sections[s.Selected].Pending = s.Editor.Lines()
	}
	s.Editor = nil
	s.View = ViewList
}

// SaveCurrent persists the editor buffer to the selected section's file.
//
// The buffer is flattened, stored as the section's pending content, and
// written through a single-edit plan addressed at the section's current
// coordinates plus any drift accumulated for lines before it. On success the
// owning file is reparsed and spliced back into the section list, the
// selection is re-resolved by title and level, and the file's drift is reset
// to the new coordinate space. If the reparse fails the disk write is not
// rolled back; the drift entry recorded for this edit keeps the stale
// in-memory coordinates addressable.
func (s *Session) SaveCurrent() error {
	if s.Editor == nil || len(s.Sections) == 0 {
		return nil
	}

	lines := s.Editor.Lines()
	s.Sections[s.Selected].Pending = lines

	sec := s.Sections[s.Selected]
	content := strings.TrimSpace(strings.Join(lines, "\n"))
	drift := s.tracker.CumulativeBefore(sec.FilePath, sec.LineStart)

	edit := plan.Edit{
		FileName:    sec.FilePath,
		LineStart:   sec.LineStart + drift,
		LineEnd:     sec.LineEnd + drift,
		ColumnStart: sec.ColumnStart,
		ColumnEnd:   sec.ColumnEnd,
		DocComment:  content,
		ItemName:    sec.Title,
	}
	p := plan.Plan{Edits: []plan.Edit{edit}}
	if err := p.Apply(); err != nil {
		return err
	}

	delta := patch.Replacement{
		LineStart: edit.LineStart,
		LineEnd:   edit.LineEnd,
		Text:      content,
	}.LineDelta()
	s.tracker.Record(sec.FilePath, sec.LineStart, delta)

	if s.journal != nil {
		_ = s.journal.Record(context.Background(), journal.Entry{
			FilePath:  sec.FilePath,
			ItemName:  sec.Title,
			LineStart: edit.LineStart,
			LineEnd:   edit.LineEnd,
			LineDelta: delta,
			Operation: "save",
		})
	}

	fresh, err := s.format.ExtractSections(sec.FilePath)
	if err != nil {
		return fmt.Errorf("saved, but failed to reload %s: %w", sec.FilePath, err)
	}

	base := s.spliceFile(sec.FilePath, fresh)
	s.Selected = resolveSelection(s.Sections, base, len(fresh), sec.Title, sec.Level)
	s.tracker.ResetFile(sec.FilePath)
	s.Message = "Saved"
	return nil
}

// spliceFile replaces every section belonging to file with the fresh
// generation, appended after the remaining sections, and rebuilds the
// hierarchy indices for the new arrangement.
func (s *Session) spliceFile(file string, fresh []section.Section) int {
	kept := s.Sections[:0:0]
	for _, sec := range s.Sections {
		if sec.FilePath != file {
			kept = append(kept, sec)
		}
	}
	base := len(kept)
	s.Sections = append(kept, fresh...)
	section.Reindex(s.Sections)
	return base
}

// resolveSelection re-resolves the current selection against a freshly
// spliced range by stable identity: the first entry matching title and level
// wins, in document order. Without a match the selection lands at the end of
// the spliced range.
func resolveSelection(sections []section.Section, base, count int, title string, level int) int {
	for i := base; i < base+count; i++ {
		if sections[i].Title == title && sections[i].Level == level {
			return i
		}
	}
	if base+count > 0 {
		return base + count - 1
	}
	return 0
}

// LoadPlan pre-populates pending content from a previously saved plan,
// matching edits to sections by file path and coordinates.
func (s *Session) LoadPlan(p plan.Plan) {
	type key struct {
		file        string
		lineStart   int
		columnStart int
	}
	byKey := make(map[key][]string, len(p.Edits))
	for _, e := range p.Edits {
		byKey[key{e.FileName, e.LineStart, e.ColumnStart}] = strings.Split(e.DocComment, "\n")
	}

	for i := range s.Sections {
		sec := &s.Sections[i]
		if lines, ok := byKey[key{sec.FilePath, sec.LineStart, sec.ColumnStart}]; ok {
			sec.Pending = lines
		}
	}
}

// GeneratePlan captures every section with buffered content as a
// serializable plan, the session's final report at shutdown.
func (s *Session) GeneratePlan() plan.Plan {
	return plan.Generate(s.Sections)
}

// ExecuteCommand runs one ':' command and returns whether the application
// should quit. The view always lands back on a baseline state.
func (s *Session) ExecuteCommand(cmd string) bool {
	s.Command = ""
	s.View = ViewList

	switch cmd {
	case "w":
		switch {
		case s.moveState == MoveMoved:
			if err := s.SaveReorder(); err != nil {
				s.Message = fmt.Sprintf("Error saving: %v", err)
			}
		case s.Editor != nil:
			if err := s.SaveCurrent(); err != nil {
				s.Message = fmt.Sprintf("Error saving: %v", err)
			} else {
				s.View = ViewDetail
			}
		default:
			s.Message = "Nothing to save"
		}
	case "x":
		switch {
		case s.moveState == MoveMoved:
			if err := s.SaveReorder(); err != nil {
				s.Message = fmt.Sprintf("Error saving: %v", err)
			}
		case s.Editor != nil:
			if err := s.SaveCurrent(); err != nil {
				s.Message = fmt.Sprintf("Error saving: %v", err)
			} else {
				// Already persisted; keeping the buffer would re-mark the
				// freshly reloaded section as edited.
				s.ExitDetail(false)
			}
		default:
			s.Message = "Nothing to save"
		}
	case "q", "q!":
		switch {
		case s.Editor != nil:
			s.ExitDetail(false)
		case s.moveState != MoveIdle:
			s.CancelMove()
		default:
			if s.Mode == MultiFile {
				s.View = ViewFileList
				return false
			}
			return true
		}
	case "wn":
		s.saveAndStep(1)
	case "wp":
		s.saveAndStep(-1)
	default:
		s.Message = fmt.Sprintf("Unknown command: %s", cmd)
	}
	return false
}

// saveAndStep persists the open section and re-opens the neighbouring one.
func (s *Session) saveAndStep(direction int) {
	if s.Editor == nil {
		return
	}
	if err := s.SaveCurrent(); err != nil {
		s.Message = fmt.Sprintf("Error saving: %v", err)
		return
	}

	next := s.Selected + direction
	if next < 0 || next >= len(s.Sections) {
		if direction > 0 {
			s.Message = "No more sections"
		} else {
			s.Message = "No previous sections"
		}
		s.View = ViewDetail
		return
	}

	s.ExitDetail(false)
	s.Selected = next
	s.EnterDetail()
}

// --- Hierarchy navigation: pure queries over the current list ---

// FindNext returns the following flat index.
func (s *Session) FindNext() (int, bool) {
	if s.Selected+1 < len(s.Sections) {
		return s.Selected + 1, true
	}
	return 0, false
}

// FindPrev returns the preceding flat index.
func (s *Session) FindPrev() (int, bool) {
	if s.Selected > 0 && len(s.Sections) > 0 {
		return s.Selected - 1, true
	}
	return 0, false
}

// Parent returns the enclosing section.
func (s *Session) Parent() (int, bool) {
	return section.Parent(s.Sections, s.Selected)
}

// FirstChild returns the first directly nested section.
func (s *Session) FirstChild() (int, bool) {
	return section.FirstChild(s.Sections, s.Selected)
}

// NextDescendant returns the first child, or the next deeper section.
func (s *Session) NextDescendant() (int, bool) {
	return section.NextDescendant(s.Sections, s.Selected)
}

// NextSibling returns the next section at the same level within the subtree.
func (s *Session) NextSibling() (int, bool) {
	return section.NextSibling(s.Sections, s.Selected)
}

// PrevSibling returns the previous section at the same level within the
// subtree.
func (s *Session) PrevSibling() (int, bool) {
	return section.PrevSibling(s.Sections, s.Selected)
}

// First returns the first section overall.
func (s *Session) First() (int, bool) {
	if len(s.Sections) == 0 {
		return 0, false
	}
	return 0, true
}

// Last returns the last section overall.
func (s *Session) Last() (int, bool) {
	if len(s.Sections) == 0 {
		return 0, false
	}
	return len(s.Sections) - 1, true
}

// FirstAtLevel returns the first section at the current level.
func (s *Session) FirstAtLevel() (int, bool) {
	return section.FirstAtLevel(s.Sections, s.Selected)
}

// LastAtLevel returns the last section at the current level.
func (s *Session) LastAtLevel() (int, bool) {
	return section.LastAtLevel(s.Sections, s.Selected)
}

// Indent is the display indentation width of the selected section.
func (s *Session) Indent() int {
	if len(s.Sections) == 0 {
		return 0
	}
	return s.Sections[s.Selected].Level * 2
}

// MaxLineWidth is the text width available after indentation.
func (s *Session) MaxLineWidth() int {
	w := s.WrapWidth - s.Indent()
	if w < 0 {
		return 0
	}
	return w
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
