package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"stanza/internal/section"
)

// Difftastic turns difftastic JSON output into navigable sections: one
// level-1 section per changed file, one level-2 section per hunk. Both the
// array format and newline-delimited JSON are accepted.
type Difftastic struct{}

func (d *Difftastic) Name() string { return "difftastic" }

// DiffFile is one file entry in difftastic output.
type DiffFile struct {
	// Language identified by difftastic for syntax highlighting.
	Language string `json:"language"`
	// Path relative to the comparison root.
	Path string `json:"path"`
	// Chunks groups lines that changed together.
	Chunks [][]DiffLine `json:"chunks,omitempty"`
	// Status is "unchanged", "changed", "created" or "deleted".
	Status string `json:"status"`
}

// DiffLine pairs the two sides of a comparison; a side is absent for pure
// additions or deletions.
type DiffLine struct {
	Lhs *DiffSide `json:"lhs,omitempty"`
	Rhs *DiffSide `json:"rhs,omitempty"`
}

// DiffSide is one side of a diff line.
type DiffSide struct {
	LineNumber int          `json:"line_number"`
	Changes    []DiffChange `json:"changes"`
}

// DiffChange is a structural change within a line.
type DiffChange struct {
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Content   string `json:"content"`
	Highlight string `json:"highlight"`
}

// ExtractSections reads difftastic JSON from path and converts it.
func (d *Difftastic) ExtractSections(path string) ([]section.Section, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return ParseDifftastic(raw)
}

// ParseDifftastic converts raw difftastic JSON into sections. Unchanged files
// are skipped; created and deleted files without detailed hunks get a
// placeholder hunk carrying the status.
func ParseDifftastic(raw []byte) ([]section.Section, error) {
	files, err := decodeDiffFiles(raw)
	if err != nil {
		return nil, err
	}

	var sections []section.Section
	line := 1

	for _, file := range files {
		if file.Status == "unchanged" {
			continue
		}

		fileIdx := len(sections)
		sections = append(sections, section.Section{
			Title:       fmt.Sprintf("%s (%s)", file.Path, file.Status),
			Level:       1,
			LineStart:   line,
			LineEnd:     line + 1,
			FilePath:    file.Path,
			ParentIndex: -1,
		})
		line++

		switch {
		case len(file.Chunks) > 0:
			for hunkIdx, chunk := range file.Chunks {
				content := formatHunkContent(chunk)
				hunkEnd := line + strings.Count(content, "\n")
				sections = append(sections, section.Section{
					Title:       formatHunkTitle(chunk, hunkIdx),
					Level:       2,
					LineStart:   line,
					LineEnd:     hunkEnd,
					FilePath:    file.Path,
					ParentIndex: fileIdx,
					Pending:     strings.Split(strings.TrimRight(content, "\n"), "\n"),
				})
				sections[fileIdx].ChildrenIndices = append(sections[fileIdx].ChildrenIndices, len(sections)-1)
				line = hunkEnd + 1
			}
		case file.Status == "created" || file.Status == "deleted":
			sections = append(sections, section.Section{
				Title:       fmt.Sprintf("File %s (no detailed diff available)", file.Status),
				Level:       2,
				LineStart:   line,
				LineEnd:     line + 1,
				FilePath:    file.Path,
				ParentIndex: fileIdx,
				Pending:     []string{fmt.Sprintf("File was %s", file.Status)},
			})
			sections[fileIdx].ChildrenIndices = append(sections[fileIdx].ChildrenIndices, len(sections)-1)
			line += 2
		}

		sections[fileIdx].LineEnd = line
	}

	return sections, nil
}

func decodeDiffFiles(raw []byte) ([]DiffFile, error) {
	var files []DiffFile
	if err := json.Unmarshal(raw, &files); err == nil {
		return files, nil
	}
	if strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
		return nil, fmt.Errorf("invalid difftastic JSON array")
	}

	// Newline-delimited JSON, one file object per line; this is what git
	// emits when several files changed.
	for _, l := range strings.Split(string(raw), "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		var f DiffFile
		if err := json.Unmarshal([]byte(l), &f); err != nil {
			return nil, fmt.Errorf("failed to parse difftastic JSON line: %w", err)
		}
		files = append(files, f)
	}
	return files, nil
}

// formatHunkTitle renders the hunk's line-number span in unified-diff style.
func formatHunkTitle(chunk []DiffLine, hunkIdx int) string {
	var lhs, rhs []int
	for _, l := range chunk {
		if l.Lhs != nil {
			lhs = append(lhs, l.Lhs.LineNumber)
		}
		if l.Rhs != nil {
			rhs = append(rhs, l.Rhs.LineNumber)
		}
	}

	switch {
	case len(lhs) > 0 && len(rhs) > 0:
		return fmt.Sprintf("Hunk %d (@@ -%d,%d +%d,%d @@)", hunkIdx+1,
			lhs[0], lhs[len(lhs)-1]-lhs[0]+1, rhs[0], rhs[len(rhs)-1]-rhs[0]+1)
	case len(lhs) > 0:
		return fmt.Sprintf("Hunk %d (deletion @@ -%d,%d @@)", hunkIdx+1,
			lhs[0], lhs[len(lhs)-1]-lhs[0]+1)
	case len(rhs) > 0:
		return fmt.Sprintf("Hunk %d (addition @@ +%d,%d @@)", hunkIdx+1,
			rhs[0], rhs[len(rhs)-1]-rhs[0]+1)
	default:
		return fmt.Sprintf("Hunk %d", hunkIdx+1)
	}
}

func formatHunkContent(chunk []DiffLine) string {
	var sb strings.Builder
	for _, l := range chunk {
		if l.Lhs != nil {
			fmt.Fprintf(&sb, "-%d: %s\n", l.Lhs.LineNumber, sideText(l.Lhs))
		}
		if l.Rhs != nil {
			fmt.Fprintf(&sb, "+%d: %s\n", l.Rhs.LineNumber, sideText(l.Rhs))
		}
		if l.Lhs == nil && l.Rhs == nil {
			sb.WriteString(" \n")
		}
	}
	return sb.String()
}

func sideText(side *DiffSide) string {
	var sb strings.Builder
	for _, c := range side.Changes {
		sb.WriteString(c.Content)
	}
	return sb.String()
}
