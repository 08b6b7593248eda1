package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDifftastic_Array(t *testing.T) {
	raw := `[
		{"language": "Text", "path": "a.md", "status": "unchanged"},
		{"language": "Text", "path": "b.md", "status": "changed", "chunks": [[
			{"lhs": {"line_number": 3, "changes": [{"start": 0, "end": 3, "content": "old", "highlight": "delimiter"}]},
			 "rhs": {"line_number": 3, "changes": [{"start": 0, "end": 3, "content": "new", "highlight": "delimiter"}]}}
		]]}
	]`

	sections, err := ParseDifftastic([]byte(raw))
	require.NoError(t, err)
	require.Len(t, sections, 2, "unchanged files are skipped")

	file := sections[0]
	assert.Equal(t, "b.md (changed)", file.Title)
	assert.Equal(t, 1, file.Level)
	assert.Equal(t, -1, file.ParentIndex)
	assert.Equal(t, []int{1}, file.ChildrenIndices)

	hunk := sections[1]
	assert.Equal(t, "Hunk 1 (@@ -3,1 +3,1 @@)", hunk.Title)
	assert.Equal(t, 2, hunk.Level)
	assert.Equal(t, 0, hunk.ParentIndex)
	assert.Equal(t, []string{"-3: old", "+3: new"}, hunk.Pending)
}

func TestParseDifftastic_NDJSON(t *testing.T) {
	raw := `{"language": "Text", "path": "a.md", "status": "created"}
{"language": "Text", "path": "b.md", "status": "deleted"}`

	sections, err := ParseDifftastic([]byte(raw))
	require.NoError(t, err)
	require.Len(t, sections, 4)

	assert.Equal(t, "a.md (created)", sections[0].Title)
	assert.Equal(t, "File created (no detailed diff available)", sections[1].Title)
	assert.Equal(t, []string{"File was created"}, sections[1].Pending)
	assert.Equal(t, "b.md (deleted)", sections[2].Title)
	assert.Equal(t, 2, sections[3].ParentIndex)
}

func TestParseDifftastic_HunkVariants(t *testing.T) {
	t.Run("pure addition", func(t *testing.T) {
		raw := `[{"language": "Text", "path": "a.md", "status": "changed", "chunks": [[
			{"rhs": {"line_number": 5, "changes": [{"start": 0, "end": 1, "content": "x", "highlight": "normal"}]}},
			{"rhs": {"line_number": 6, "changes": [{"start": 0, "end": 1, "content": "y", "highlight": "normal"}]}}
		]]}]`
		sections, err := ParseDifftastic([]byte(raw))
		require.NoError(t, err)
		require.Len(t, sections, 2)
		assert.Equal(t, "Hunk 1 (addition @@ +5,2 @@)", sections[1].Title)
	})

	t.Run("pure deletion", func(t *testing.T) {
		raw := `[{"language": "Text", "path": "a.md", "status": "changed", "chunks": [[
			{"lhs": {"line_number": 9, "changes": [{"start": 0, "end": 1, "content": "z", "highlight": "normal"}]}}
		]]}]`
		sections, err := ParseDifftastic([]byte(raw))
		require.NoError(t, err)
		require.Len(t, sections, 2)
		assert.Equal(t, "Hunk 1 (deletion @@ -9,1 @@)", sections[1].Title)
	})
}

func TestParseDifftastic_InvalidJSON(t *testing.T) {
	_, err := ParseDifftastic([]byte(`[{"path": 3]`))
	assert.Error(t, err)

	_, err = ParseDifftastic([]byte(`not json at all`))
	assert.Error(t, err)
}
