// Package tui renders the section editor with tcell and translates key
// events into session operations. All state lives in the session; this
// package only draws and dispatches.
package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"stanza/internal/editor"
	"stanza/internal/session"
)

// App owns the terminal screen for the lifetime of a session.
type App struct {
	screen tcell.Screen
	sess   *session.Session
}

// New initialises the terminal. The caller must invoke Run, which restores
// the terminal on return.
func New(sess *session.Session) (*App, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to init screen: %w", err)
	}
	return &App{screen: screen, sess: sess}, nil
}

// Run drives the event loop until the session quits.
func (a *App) Run() error {
	defer a.screen.Fini()

	for {
		a.draw()
		ev := a.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			a.screen.Sync()
		case *tcell.EventKey:
			if a.handleKey(ev) {
				return nil
			}
		}
	}
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch a.sess.View {
	case session.ViewFileList:
		return a.handleFileListKey(ev)
	case session.ViewList:
		return a.handleListKey(ev)
	case session.ViewDetail:
		return a.handleDetailKey(ev)
	case session.ViewCommand:
		return a.handleCommandKey(ev)
	}
	return false
}

func (a *App) handleFileListKey(ev *tcell.EventKey) bool {
	s := a.sess
	switch {
	case ev.Key() == tcell.KeyUp || ev.Rune() == 'k':
		if s.FileIndex > 0 {
			s.FileIndex--
		}
	case ev.Key() == tcell.KeyDown || ev.Rune() == 'j':
		if s.FileIndex < len(s.Files)-1 {
			s.FileIndex++
		}
	case ev.Key() == tcell.KeyEnter:
		if err := s.SelectFile(s.FileIndex); err != nil {
			s.Message = fmt.Sprintf("Error: %v", err)
		}
	case ev.Rune() == 'q' || ev.Key() == tcell.KeyCtrlC:
		return true
	}
	return false
}

func (a *App) handleListKey(ev *tcell.EventKey) bool {
	s := a.sess

	if ev.Key() == tcell.KeyCtrlC {
		return true
	}

	// Reorder movements while a section is picked up.
	if s.MoveState() != session.MoveIdle {
		switch ev.Key() {
		case tcell.KeyUp:
			s.MoveUp()
			return false
		case tcell.KeyDown:
			s.MoveDown()
			return false
		case tcell.KeyLeft:
			s.LevelIn()
			return false
		case tcell.KeyRight:
			s.LevelOut()
			return false
		case tcell.KeyHome:
			s.MoveToTop()
			return false
		case tcell.KeyEnd:
			s.MoveToBottom()
			return false
		case tcell.KeyEscape:
			s.CancelMove()
			return false
		}
		if ev.Rune() == ':' {
			s.Command = ""
			s.View = session.ViewCommand
		}
		return false
	}

	shift := ev.Modifiers()&tcell.ModShift != 0
	switch {
	case ev.Rune() == ':':
		s.Command = ""
		s.View = session.ViewCommand
	case ev.Key() == tcell.KeyEnter:
		s.EnterDetail()
	case ev.Rune() == 'm' || ev.Rune() == ' ':
		s.StartMove()
	case ev.Key() == tcell.KeyUp && shift, ev.Rune() == 'K':
		if i, ok := s.PrevSibling(); ok {
			s.Selected = i
		}
	case ev.Key() == tcell.KeyDown && shift, ev.Rune() == 'J':
		if i, ok := s.NextSibling(); ok {
			s.Selected = i
		}
	case ev.Key() == tcell.KeyUp, ev.Rune() == 'k':
		if i, ok := s.FindPrev(); ok {
			s.Selected = i
		}
	case ev.Key() == tcell.KeyDown, ev.Rune() == 'j':
		if i, ok := s.FindNext(); ok {
			s.Selected = i
		}
	case ev.Key() == tcell.KeyLeft, ev.Rune() == 'h':
		if i, ok := s.Parent(); ok {
			s.Selected = i
		}
	case ev.Key() == tcell.KeyRight, ev.Rune() == 'l':
		if i, ok := s.NextDescendant(); ok {
			s.Selected = i
		}
	case ev.Key() == tcell.KeyHome && shift:
		if i, ok := s.FirstAtLevel(); ok {
			s.Selected = i
		}
	case ev.Key() == tcell.KeyEnd && shift:
		if i, ok := s.LastAtLevel(); ok {
			s.Selected = i
		}
	case ev.Key() == tcell.KeyHome, ev.Rune() == 'g':
		if i, ok := s.First(); ok {
			s.Selected = i
		}
	case ev.Key() == tcell.KeyEnd, ev.Rune() == 'G':
		if i, ok := s.Last(); ok {
			s.Selected = i
		}
	case ev.Rune() == 'q':
		if s.Mode == session.MultiFile {
			s.View = session.ViewFileList
			return false
		}
		return true
	}
	return false
}

func (a *App) handleDetailKey(ev *tcell.EventKey) bool {
	s := a.sess
	buf := s.Editor
	if buf == nil {
		s.View = session.ViewList
		return false
	}

	if buf.Mode() == editor.ModeInsert {
		switch ev.Key() {
		case tcell.KeyEscape:
			buf.SetMode(editor.ModeNormal)
		case tcell.KeyEnter:
			buf.InsertNewline()
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			buf.DeleteBack()
		case tcell.KeyUp:
			buf.Move(-1, 0)
		case tcell.KeyDown:
			buf.Move(1, 0)
		case tcell.KeyLeft:
			buf.Move(0, -1)
		case tcell.KeyRight:
			buf.Move(0, 1)
		case tcell.KeyRune:
			buf.InsertRune(ev.Rune())
		}
		return false
	}

	switch {
	case ev.Rune() == ':':
		s.Command = ""
		s.View = session.ViewCommand
	case ev.Rune() == 'i':
		buf.SetMode(editor.ModeInsert)
	case ev.Key() == tcell.KeyUp, ev.Rune() == 'k':
		buf.Move(-1, 0)
	case ev.Key() == tcell.KeyDown, ev.Rune() == 'j':
		buf.Move(1, 0)
	case ev.Key() == tcell.KeyLeft, ev.Rune() == 'h':
		buf.Move(0, -1)
	case ev.Key() == tcell.KeyRight, ev.Rune() == 'l':
		buf.Move(0, 1)
	case ev.Key() == tcell.KeyCtrlC:
		return true
	}
	return false
}

func (a *App) handleCommandKey(ev *tcell.EventKey) bool {
	s := a.sess
	switch ev.Key() {
	case tcell.KeyEscape:
		s.Command = ""
		s.View = session.ViewList
	case tcell.KeyEnter:
		return s.ExecuteCommand(s.Command)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(s.Command) > 0 {
			s.Command = s.Command[:len(s.Command)-1]
		}
	case tcell.KeyRune:
		s.Command += string(ev.Rune())
	}
	return false
}

var (
	styleDefault  = tcell.StyleDefault
	styleSelected = tcell.StyleDefault.Reverse(true)
	styleMoving   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleHeader   = tcell.StyleDefault.Bold(true)
	styleDim      = tcell.StyleDefault.Dim(true)
)

func (a *App) draw() {
	a.screen.Clear()
	switch a.sess.View {
	case session.ViewFileList:
		a.drawFileList()
	case session.ViewList, session.ViewCommand:
		a.drawList()
	case session.ViewDetail:
		a.drawDetail()
	}
	a.drawStatus()
	a.screen.Show()
}

func (a *App) drawFileList() {
	s := a.sess
	a.printLine(0, 0, styleHeader, "Files")
	for i, f := range s.Files {
		style := styleDefault
		if i == s.FileIndex {
			style = styleSelected
		}
		a.printLine(2, i+2, style, f)
	}
}

func (a *App) drawList() {
	s := a.sess
	title := "Sections"
	if len(s.Files) > 0 && s.FileIndex < len(s.Files) {
		title = s.Files[s.FileIndex]
	}
	a.printLine(0, 0, styleHeader, title)

	_, height := a.screen.Size()
	visible := height - 4
	if visible < 1 {
		visible = 1
	}
	top := 0
	if s.Selected >= visible {
		top = s.Selected - visible + 1
	}

	row := 2
	for i := top; i < len(s.Sections) && row < height-2; i++ {
		sec := s.Sections[i]
		style := styleDefault
		marker := "  "
		if i == s.MovingIndex() {
			style = styleMoving
			marker = "> "
		} else if i == s.Selected {
			style = styleSelected
		}
		edited := ""
		if sec.Edited() {
			edited = " *"
		}
		indent := strings.Repeat("  ", sec.Level-1)
		a.printLine(0, row, style, fmt.Sprintf("%s%s%s%s", marker, indent, sec.Title, edited))
		row++
	}
}

func (a *App) drawDetail() {
	s := a.sess
	if s.Editor == nil || len(s.Sections) == 0 {
		return
	}
	sec := s.Sections[s.Selected]

	crumbs := []string{sec.Title}
	for p := sec.ParentIndex; p >= 0; p = s.Sections[p].ParentIndex {
		crumbs = append([]string{s.Sections[p].Title}, crumbs...)
	}
	a.printLine(0, 0, styleHeader, strings.Join(crumbs, " > "))

	_, height := a.screen.Size()
	buf := s.Editor
	for i := 0; i < buf.LineCount() && i+2 < height-2; i++ {
		a.printLine(2, i+2, styleDefault, buf.Line(i))
	}

	row, col := buf.Cursor()
	a.screen.ShowCursor(col+2, row+2)
}

func (a *App) drawStatus() {
	s := a.sess
	_, height := a.screen.Size()

	if s.View == session.ViewCommand {
		a.printLine(0, height-1, styleDefault, ":"+s.Command)
		return
	}

	var hint string
	switch {
	case s.View == session.ViewDetail && s.Editor != nil && s.Editor.Mode() == editor.ModeInsert:
		hint = "-- INSERT --  Esc: normal"
	case s.View == session.ViewDetail:
		hint = "i: insert  :w save  :x save+close  :q discard  :wn/:wp next/prev"
	case s.MoveState() != session.MoveIdle:
		hint = "arrows: move  Home/End: top/bottom  Left/Right: level  :w commit  Esc cancel"
	default:
		hint = "Enter: open  m: move  :q quit"
	}

	a.printLine(0, height-2, styleDim, hint)
	if s.Message != "" {
		a.printLine(0, height-1, styleDefault, s.Message)
	}
}

func (a *App) printLine(x, y int, style tcell.Style, text string) {
	width, _ := a.screen.Size()
	col := x
	for _, r := range text {
		if col >= width {
			return
		}
		a.screen.SetContent(col, y, r, nil, style)
		col++
	}
}
