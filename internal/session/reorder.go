package session

import (
	"context"
	"fmt"
	"os"
	"strings"

	"stanza/internal/journal"
	"stanza/internal/section"
)

// MoveState tracks the reorder protocol. Detail view entry is blocked unless
// the state is MoveIdle, and only MoveMoved has anything to commit.
type MoveState int

const (
	// MoveIdle means no reorder is in flight.
	MoveIdle MoveState = iota
	// MoveSelected marks a section picked up but not yet displaced.
	MoveSelected
	// MoveMoved marks at least one applied move or level change.
	MoveMoved
)

// MoveState reports the reorder protocol state.
func (s *Session) MoveState() MoveState {
	return s.moveState
}

// MovingIndex returns the index of the section being moved, or -1.
func (s *Session) MovingIndex() int {
	if s.moveState == MoveIdle {
		return -1
	}
	return s.movingIndex
}

// StartMove picks up the selected section for reordering and snapshots the
// list so a cancel can restore it exactly.
func (s *Session) StartMove() {
	if len(s.Sections) == 0 || s.moveState != MoveIdle {
		return
	}
	s.snapshot = append([]section.Section(nil), s.Sections...)
	s.snapshotSelected = s.Selected
	s.movingIndex = s.Selected
	s.moveState = MoveSelected
}

// CancelMove discards all pending moves, restoring the list and selection
// captured when the section was picked up.
func (s *Session) CancelMove() {
	if s.moveState == MoveIdle {
		return
	}
	s.Sections = s.snapshot
	s.Selected = s.snapshotSelected
	s.snapshot = nil
	s.movingIndex = -1
	s.moveState = MoveIdle
	s.Message = "Move cancelled"
}

func (s *Session) markMoved() {
	s.moveState = MoveMoved
}

// MoveUp swaps the moving section with its predecessor. The selection follows.
func (s *Session) MoveUp() bool {
	if s.moveState == MoveIdle || s.movingIndex <= 0 {
		return false
	}
	i := s.movingIndex
	s.Sections[i-1], s.Sections[i] = s.Sections[i], s.Sections[i-1]
	s.movingIndex = i - 1
	s.Selected = i - 1
	s.markMoved()
	return true
}

// MoveDown swaps the moving section with its successor.
func (s *Session) MoveDown() bool {
	if s.moveState == MoveIdle || s.movingIndex >= len(s.Sections)-1 {
		return false
	}
	i := s.movingIndex
	s.Sections[i], s.Sections[i+1] = s.Sections[i+1], s.Sections[i]
	s.movingIndex = i + 1
	s.Selected = i + 1
	s.markMoved()
	return true
}

// MoveToTop relocates the moving section to the head of the list.
func (s *Session) MoveToTop() bool {
	if s.moveState == MoveIdle || s.movingIndex == 0 {
		return false
	}
	moved := s.Sections[s.movingIndex]
	s.Sections = append(s.Sections[:s.movingIndex], s.Sections[s.movingIndex+1:]...)
	s.Sections = append([]section.Section{moved}, s.Sections...)
	s.movingIndex = 0
	s.Selected = 0
	s.markMoved()
	return true
}

// MoveToBottom relocates the moving section to the tail of the list.
func (s *Session) MoveToBottom() bool {
	last := len(s.Sections) - 1
	if s.moveState == MoveIdle || s.movingIndex == last {
		return false
	}
	moved := s.Sections[s.movingIndex]
	s.Sections = append(s.Sections[:s.movingIndex], s.Sections[s.movingIndex+1:]...)
	s.Sections = append(s.Sections, moved)
	s.movingIndex = last
	s.Selected = last
	s.markMoved()
	return true
}

// LevelIn promotes the moving section one heading level, clamped at 1.
func (s *Session) LevelIn() bool {
	if s.moveState == MoveIdle || s.Sections[s.movingIndex].Level <= 1 {
		return false
	}
	s.Sections[s.movingIndex].Level--
	s.markMoved()
	return true
}

// LevelOut demotes the moving section one heading level, clamped at 6.
func (s *Session) LevelOut() bool {
	if s.moveState == MoveIdle || s.Sections[s.movingIndex].Level >= 6 {
		return false
	}
	s.Sections[s.movingIndex].Level++
	s.markMoved()
	return true
}

// SaveReorder commits the current list order to disk. Every file owning a
// section is rewritten wholesale: sections render in list order as a heading
// line ("#" repeated per level plus the title), a blank line, the trimmed
// body and a trailing blank line. Bodies come from pending content when the
// section was edited, otherwise from the byte range captured at the last
// parse. Afterwards every project file is reparsed, the drift tracker is
// reset and the selection re-resolves to the moved section.
func (s *Session) SaveReorder() error {
	if s.moveState != MoveMoved {
		return nil
	}

	var movedTitle string
	var movedLevel int
	if s.movingIndex >= 0 && s.movingIndex < len(s.Sections) {
		movedTitle = s.Sections[s.movingIndex].Title
		movedLevel = s.Sections[s.movingIndex].Level
	}

	var order []string
	byFile := make(map[string][]section.Section)
	for _, sec := range s.Sections {
		if _, ok := byFile[sec.FilePath]; !ok {
			order = append(order, sec.FilePath)
		}
		byFile[sec.FilePath] = append(byFile[sec.FilePath], sec)
	}

	for _, file := range order {
		if err := s.rewriteFile(file, byFile[file]); err != nil {
			return err
		}
	}

	var sections []section.Section
	for _, file := range s.Files {
		fresh, err := s.format.ExtractSections(file)
		if err != nil {
			continue
		}
		sections = append(sections, fresh...)
	}
	section.Reindex(sections)
	s.Sections = sections
	s.tracker.Reset()

	s.Selected = 0
	for i, sec := range s.Sections {
		if sec.Title == movedTitle && sec.Level == movedLevel {
			s.Selected = i
			break
		}
	}

	s.snapshot = nil
	s.movingIndex = -1
	s.moveState = MoveIdle
	s.Message = "Sections reordered"
	return nil
}

// rewriteFile serializes the given sections, in order, as the file's new
// content.
func (s *Session) rewriteFile(file string, sections []section.Section) error {
	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	var b strings.Builder
	for _, sec := range sections {
		b.WriteString(strings.Repeat("#", sec.Level))
		b.WriteString(" ")
		b.WriteString(sec.Title)
		b.WriteString("\n\n")

		var body string
		if sec.Edited() {
			body = strings.Join(sec.Pending, "\n")
		} else {
			start := min(sec.ByteStart, len(content))
			end := min(sec.ByteEnd, len(content))
			body = string(content[start:end])
		}
		if trimmed := strings.TrimSpace(body); trimmed != "" {
			b.WriteString(trimmed)
			b.WriteString("\n\n")
		}
	}

	out := b.String()
	if err := os.WriteFile(file, []byte(out), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}

	if s.journal != nil {
		oldLines := strings.Count(string(content), "\n") + 1
		newLines := strings.Count(out, "\n") + 1
		name := ""
		if len(sections) > 0 {
			name = sections[0].Title
		}
		_ = s.journal.Record(context.Background(), journal.Entry{
			FilePath:  file,
			ItemName:  name,
			LineDelta: newLines - oldLines,
			Operation: "reorder",
		})
	}
	return nil
}
