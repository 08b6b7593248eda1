package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stanza/internal/parser"
	"stanza/internal/section"
)

// newFileSession parses a markdown document into a fresh session.
func newFileSession(t *testing.T, content string) (*Session, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	format, err := parser.New("markdown")
	require.NoError(t, err)
	sections, err := format.ExtractSections(path)
	require.NoError(t, err)

	return New([]string{path}, sections, format, 100), path
}

func readBack(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

const threeSections = "# A\n\ncontent a\n\n# B\n\ncontent b\n\n# C\n\ncontent c\n"

func TestEnterDetail(t *testing.T) {
	sess, _ := newFileSession(t, threeSections)

	sess.Selected = 1
	sess.EnterDetail()

	require.NotNil(t, sess.Editor)
	assert.Equal(t, ViewDetail, sess.View)
	assert.Equal(t, "\ncontent b\n", sess.Editor.Text(), "content is trimmed and padded with one blank line each side")
}

func TestEnterDetail_PrefersBufferedContent(t *testing.T) {
	sess, _ := newFileSession(t, threeSections)
	sess.Sections[0].Pending = []string{"", "buffered", ""}

	sess.EnterDetail()
	require.NotNil(t, sess.Editor)
	assert.Equal(t, "\nbuffered\n", sess.Editor.Text())
}

func TestEnterDetail_BlockedDuringMove(t *testing.T) {
	sess, _ := newFileSession(t, threeSections)
	sess.StartMove()

	sess.EnterDetail()
	assert.Nil(t, sess.Editor)
	assert.Equal(t, ViewList, sess.View)
}

func TestExitDetail(t *testing.T) {
	sess, _ := newFileSession(t, threeSections)
	sess.EnterDetail()
	sess.Editor.Load("\nchanged\n")

	t.Run("keep buffers the content", func(t *testing.T) {
		sess.ExitDetail(true)
		assert.Nil(t, sess.Editor)
		assert.Equal(t, ViewList, sess.View)
		assert.Equal(t, []string{"", "changed", ""}, sess.Sections[0].Pending)
	})

	t.Run("discard leaves the section untouched", func(t *testing.T) {
		sess.Sections[0].Pending = nil
		sess.EnterDetail()
		sess.Editor.Load("\nthrown away\n")
		sess.ExitDetail(false)
		assert.Nil(t, sess.Sections[0].Pending)
	})
}

func TestSaveCurrent_MiddleSection(t *testing.T) {
	sess, path := newFileSession(t, threeSections)

	sess.Selected = 1
	sess.EnterDetail()
	sess.Editor.Load("\nreplaced middle\n")
	require.NoError(t, sess.SaveCurrent())

	assert.Equal(t, "# A\n\ncontent a\n\n# B\n\nreplaced middle\n\n# C\n\ncontent c\n", readBack(t, path))
	assert.Equal(t, "Saved", sess.Message)

	// The reload replaced the whole generation; selection re-resolves to B.
	require.Len(t, sess.Sections, 3)
	assert.Equal(t, "B", sess.Sections[sess.Selected].Title)
	assert.False(t, sess.Sections[sess.Selected].Edited(), "freshly reloaded sections carry no buffer")
}

func TestSaveCurrent_SequentialSavesStayAddressable(t *testing.T) {
	sess, path := newFileSession(t, threeSections)

	// Grow the first section by two lines.
	sess.Selected = 0
	sess.EnterDetail()
	sess.Editor.Load("\nx1\nx2\nx3\n")
	require.NoError(t, sess.SaveCurrent())
	sess.ExitDetail(false)

	// The last section's coordinates come from the post-save reload, so the
	// second save must land on the right lines.
	sess.Selected = 2
	require.Equal(t, "C", sess.Sections[2].Title)
	sess.EnterDetail()
	sess.Editor.Load("\nfinal\n")
	require.NoError(t, sess.SaveCurrent())

	assert.Equal(t, "# A\n\nx1\nx2\nx3\n\n# B\n\ncontent b\n\n# C\n\nfinal\n", readBack(t, path))
}

func TestSaveCurrent_KeepsSubsectionHeading(t *testing.T) {
	sess, path := newFileSession(t, "# One\n\nA\n\n## Two\n\nB\n")

	sess.EnterDetail()
	sess.Editor.Load("\nAAA\nextra\n")
	require.NoError(t, sess.SaveCurrent())

	assert.Equal(t, "# One\n\nAAA\nextra\n\n## Two\n\nB\n", readBack(t, path))
}

func TestSaveCurrent_EmptiesSection(t *testing.T) {
	sess, path := newFileSession(t, "# A\n\nbody\n\n# B\n\nkeep\n")

	sess.EnterDetail()
	sess.Editor.Load("\n")
	require.NoError(t, sess.SaveCurrent())

	assert.Equal(t, "# A\n\n\n# B\n\nkeep\n", readBack(t, path))
}

func TestExecuteCommand_WritePersistsAndStays(t *testing.T) {
	sess, path := newFileSession(t, threeSections)
	sess.EnterDetail()
	sess.Editor.Load("\nvia w\n")

	quit := sess.ExecuteCommand("w")
	assert.False(t, quit)
	assert.Equal(t, ViewDetail, sess.View)
	require.NotNil(t, sess.Editor)
	assert.Contains(t, readBack(t, path), "via w")
}

func TestExecuteCommand_WriteAndLeave(t *testing.T) {
	sess, path := newFileSession(t, threeSections)
	sess.EnterDetail()
	sess.Editor.Load("\nvia x\n")

	quit := sess.ExecuteCommand("x")
	assert.False(t, quit)
	assert.Equal(t, ViewList, sess.View)
	assert.Nil(t, sess.Editor)
	assert.Contains(t, readBack(t, path), "via x")
}

func TestExecuteCommand_DiscardLeavesFile(t *testing.T) {
	sess, path := newFileSession(t, threeSections)
	before := readBack(t, path)

	sess.EnterDetail()
	sess.Editor.Load("\nnever written\n")
	quit := sess.ExecuteCommand("q")

	assert.False(t, quit)
	assert.Equal(t, ViewList, sess.View)
	assert.Nil(t, sess.Editor)
	assert.Equal(t, before, readBack(t, path))
	assert.Nil(t, sess.Sections[0].Pending)
}

func TestExecuteCommand_Quit(t *testing.T) {
	t.Run("single file quits", func(t *testing.T) {
		sess, _ := newFileSession(t, threeSections)
		assert.True(t, sess.ExecuteCommand("q"))
	})

	t.Run("multi file returns to file list", func(t *testing.T) {
		sess, path := newFileSession(t, threeSections)
		sess.Files = []string{path, path + "2"}
		sess.Mode = MultiFile
		assert.False(t, sess.ExecuteCommand("q"))
		assert.Equal(t, ViewFileList, sess.View)
	})
}

func TestExecuteCommand_SaveAndAdvance(t *testing.T) {
	sess, path := newFileSession(t, threeSections)
	sess.EnterDetail()
	sess.Editor.Load("\nfrom a\n")

	sess.ExecuteCommand("wn")
	assert.Equal(t, ViewDetail, sess.View)
	assert.Equal(t, "B", sess.Sections[sess.Selected].Title)
	require.NotNil(t, sess.Editor)
	assert.Equal(t, "\ncontent b\n", sess.Editor.Text())
	assert.Contains(t, readBack(t, path), "from a")

	t.Run("wp steps back", func(t *testing.T) {
		sess.ExecuteCommand("wp")
		assert.Equal(t, "A", sess.Sections[sess.Selected].Title)
	})

	t.Run("wn at the end reports and stays", func(t *testing.T) {
		sess.ExecuteCommand("wp")
		assert.Equal(t, "No previous sections", sess.Message)
		assert.Equal(t, ViewDetail, sess.View)
	})
}

func TestExecuteCommand_Unknown(t *testing.T) {
	sess, _ := newFileSession(t, threeSections)
	assert.False(t, sess.ExecuteCommand("frobnicate"))
	assert.Equal(t, "Unknown command: frobnicate", sess.Message)
	assert.Equal(t, ViewList, sess.View)
}

func TestExecuteCommand_NothingToSave(t *testing.T) {
	for _, cmd := range []string{"w", "x"} {
		sess, _ := newFileSession(t, threeSections)
		sess.ExecuteCommand(cmd)
		assert.Equal(t, "Nothing to save", sess.Message, "command %q", cmd)
		assert.Equal(t, ViewList, sess.View)
	}
}

func TestGenerateAndLoadPlan(t *testing.T) {
	sess, path := newFileSession(t, threeSections)

	sess.Selected = 1
	sess.EnterDetail()
	sess.Editor.Load("\nunsaved work\n")
	sess.ExitDetail(true)

	p := sess.GeneratePlan()
	require.Len(t, p.Edits, 1)
	assert.Equal(t, "B", p.Edits[0].ItemName)
	assert.Equal(t, path, p.Edits[0].FileName)

	// A fresh session over the same file picks the buffer back up.
	fresh, _ := newFileSession(t, threeSections)
	fresh.Files = []string{path}
	for i := range fresh.Sections {
		fresh.Sections[i].FilePath = path
	}
	fresh.LoadPlan(p)
	assert.Equal(t, []string{"", "unsaved work", ""}, fresh.Sections[1].Pending)
}

func TestSelectFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.md")
	require.NoError(t, os.WriteFile(a, []byte("# From A\n\nbody\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("# From B\n\nbody\n"), 0644))

	format, err := parser.New("markdown")
	require.NoError(t, err)
	sess := New([]string{a, b}, nil, format, 100)
	require.Equal(t, MultiFile, sess.Mode)

	require.NoError(t, sess.SelectFile(1))
	assert.Equal(t, ViewList, sess.View)
	require.Len(t, sess.Sections, 1)
	assert.Equal(t, "From B", sess.Sections[0].Title)

	assert.Error(t, sess.SelectFile(7))
}

func TestNavigationQueries(t *testing.T) {
	sess, _ := newFileSession(t, "# A\n\n## B\n\n### C\n\n## D\n\n# E\n")

	sess.Selected = 1 // B
	i, ok := sess.NextSibling()
	require.True(t, ok)
	assert.Equal(t, "D", sess.Sections[i].Title)

	i, ok = sess.FirstChild()
	require.True(t, ok)
	assert.Equal(t, "C", sess.Sections[i].Title)

	sess.Selected = i // C
	i, ok = sess.Parent()
	require.True(t, ok)
	assert.Equal(t, "B", sess.Sections[i].Title)

	i, ok = sess.Last()
	require.True(t, ok)
	assert.Equal(t, "E", sess.Sections[i].Title)
}

func TestIndentAndWrap(t *testing.T) {
	sess, _ := newFileSession(t, "# A\n\n## B\n")
	sess.WrapWidth = 20

	sess.Selected = 1
	assert.Equal(t, 4, sess.Indent())
	assert.Equal(t, 16, sess.MaxLineWidth())
}

func TestResolveSelection_FallsBackToEndOfRange(t *testing.T) {
	sections := []section.Section{
		{Title: "other", Level: 1, FilePath: "x.md"},
		{Title: "a", Level: 1, FilePath: "y.md"},
		{Title: "b", Level: 1, FilePath: "y.md"},
	}
	got := resolveSelection(sections, 1, 2, "gone", 1)
	assert.Equal(t, 2, got)
}
