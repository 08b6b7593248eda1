package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stanza/internal/section"
)

func TestGenerate(t *testing.T) {
	sections := []section.Section{
		{Title: "A", FilePath: "doc.md", LineStart: 2, LineEnd: 5, ColumnStart: 1, ColumnEnd: 4},
		{Title: "B", FilePath: "doc.md", LineStart: 6, LineEnd: 8, Pending: []string{"", "edited", ""}},
		{Title: "C", FilePath: "other.md", LineStart: 2, LineEnd: 3, Pending: []string{}},
	}

	p := Generate(sections)
	require.Len(t, p.Edits, 2, "only edited sections are planned")

	assert.Equal(t, "B", p.Edits[0].ItemName)
	assert.Equal(t, "doc.md", p.Edits[0].FileName)
	assert.Equal(t, 6, p.Edits[0].LineStart)
	assert.Equal(t, "\nedited\n", p.Edits[0].DocComment)

	assert.Equal(t, "C", p.Edits[1].ItemName)
	assert.Equal(t, "", p.Edits[1].DocComment, "cleared sections plan an empty replacement")
}

func TestPlanRoundTrip(t *testing.T) {
	p := Plan{Edits: []Edit{{
		FileName:    "doc.md",
		LineStart:   2,
		LineEnd:     5,
		ColumnStart: 1,
		ColumnEnd:   8,
		DocComment:  "line one\nline two",
		ItemName:    "Hello",
	}}}

	data, err := p.Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "edits.json")
	require.NoError(t, os.WriteFile(path, data, 0644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing edits key": `{}`,
		"missing field":     `{"edits":[{"file_name":"a.md","line_start":1,"line_end":2,"column_start":1,"column_end":2,"doc_comment":"x"}]}`,
		"wrong type":        `{"edits":[{"file_name":"a.md","line_start":"1","line_end":2,"column_start":1,"column_end":2,"doc_comment":"x","item_name":"y"}]}`,
		"unknown field":     `{"edits":[{"file_name":"a.md","line_start":1,"line_end":2,"column_start":1,"column_end":2,"doc_comment":"x","item_name":"y","extra":true}]}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "edits.json")
			require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestApply_WritesThroughPatchEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# H\n\nold\n\n"), 0644))

	p := Plan{Edits: []Edit{{
		FileName:  path,
		LineStart: 2,
		LineEnd:   5,
		DocComment: "new body",
		ItemName:  "H",
	}}}
	require.NoError(t, p.Apply())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# H\n\nnew body\n", string(data), "a range reaching end-of-file keeps a single final newline")
}
