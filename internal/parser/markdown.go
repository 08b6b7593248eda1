package parser

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	markdown "github.com/smacker/go-tree-sitter/markdown/tree-sitter-markdown"

	"stanza/internal/section"
)

// Markdown extracts sections from ATX-style headings (# syntax) using the
// tree-sitter markdown grammar.
type Markdown struct{}

func (m *Markdown) Name() string { return "markdown" }

func (m *Markdown) sectionQuery() string {
	return `(atx_heading) @heading`
}

// ExtractSections parses path and returns one section per ATX heading. A
// section's content range runs from the line after its heading to the line of
// the next heading (half-open), or to the end of the file.
func (m *Markdown) ExtractSections(path string) ([]section.Section, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	p := sitter.NewParser()
	p.SetLanguage(markdown.GetLanguage())
	tree, err := p.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}

	query, err := sitter.NewQuery([]byte(m.sectionQuery()), markdown.GetLanguage())
	if err != nil {
		return nil, fmt.Errorf("failed to create query: %w", err)
	}
	qc := sitter.NewQueryCursor()
	qc.Exec(query, tree.RootNode())

	var headings []*sitter.Node
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range match.Captures {
			headings = append(headings, c.Node)
		}
	}

	lineOffsets := lineByteOffsets(source)
	totalLines := len(lineOffsets)

	sections := make([]section.Section, 0, len(headings))
	for i, node := range headings {
		headingLine := int(node.StartPoint().Row) + 1
		headingText := firstLine(node.Content(source))
		level := markerLevel(headingText)
		if level == 0 {
			continue
		}

		lineStart := headingLine + 1
		lineEnd := totalLines + 1
		if i+1 < len(headings) {
			lineEnd = int(headings[i+1].StartPoint().Row) + 1
		}

		byteStart := len(source)
		if lineStart-1 < totalLines {
			byteStart = lineOffsets[lineStart-1]
		}
		byteEnd := len(source)
		if lineEnd-1 < totalLines {
			byteEnd = lineOffsets[lineEnd-1]
		}

		columnStart := int(node.StartPoint().Column)
		sections = append(sections, section.Section{
			Title:       strings.TrimSpace(strings.TrimLeft(headingText, "# ")),
			Level:       level,
			LineStart:   lineStart,
			LineEnd:     lineEnd,
			ColumnStart: columnStart,
			ColumnEnd:   columnStart + len(headingText),
			ByteStart:   byteStart,
			ByteEnd:     byteEnd,
			FilePath:    path,
		})
	}

	section.Reindex(sections)
	return sections, nil
}

// lineByteOffsets returns the byte offset of the start of each line, so line
// coordinates can be converted to content byte ranges in one pass.
func lineByteOffsets(source []byte) []int {
	offsets := []int{0}
	for i, b := range source {
		if b == '\n' && i+1 < len(source) {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

// markerLevel counts the leading '#' run of an ATX heading line. A run longer
// than six is not a heading.
func markerLevel(headingText string) int {
	level := 0
	for _, r := range headingText {
		if r != '#' {
			break
		}
		level++
	}
	if level < 1 || level > 6 {
		return 0
	}
	return level
}
