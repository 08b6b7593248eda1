// Package patch applies precise line-range replacements to files on disk.
// It is format-agnostic: callers hand it coordinates and replacement text,
// and it never interprets the content it splices.
package patch

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Replacement substitutes the half-open line range [LineStart, LineEnd) of
// Path with Text. Lines are 1-based; the line at LineEnd is never touched.
type Replacement struct {
	Path      string
	LineStart int
	LineEnd   int
	Text      string
}

// Normalize trims the replacement text and pads it with exactly one blank
// line on each side, so every persisted section has uniform spacing
// regardless of what the user typed.
func Normalize(text string) string {
	return "\n" + strings.TrimSpace(text) + "\n"
}

// LineDelta reports the net line-count change a replacement introduces:
// the normalized replacement's line count minus the replaced range's.
func (r Replacement) LineDelta() int {
	return len(strings.Split(Normalize(r.Text), "\n")) - (r.LineEnd - r.LineStart)
}

// Apply groups replacements by file and rewrites each file once, applying all
// of its replacements as a single batch. Ranges within one file must be
// disjoint; overlapping ranges fail that file's whole batch. Files are
// processed independently: a failure in one file does not roll back files
// already written, and the combined error reports every failed file.
func Apply(replacements []Replacement) error {
	byFile := make(map[string][]Replacement)
	var order []string
	for _, r := range replacements {
		if _, ok := byFile[r.Path]; !ok {
			order = append(order, r.Path)
		}
		byFile[r.Path] = append(byFile[r.Path], r)
	}

	var errs []string
	for _, path := range order {
		if err := applyFile(path, byFile[path]); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("patch failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func applyFile(path string, batch []Replacement) error {
	sorted := append([]Replacement(nil), batch...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LineStart < sorted[j].LineStart
	})
	for i, r := range sorted {
		if r.LineStart < 1 || r.LineEnd < r.LineStart {
			return fmt.Errorf("%s: invalid line range [%d, %d)", path, r.LineStart, r.LineEnd)
		}
		if i > 0 && r.LineStart < sorted[i-1].LineEnd {
			return fmt.Errorf("%s: overlapping line ranges [%d, %d) and [%d, %d)",
				path, sorted[i-1].LineStart, sorted[i-1].LineEnd, r.LineStart, r.LineEnd)
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	lines := strings.Split(string(content), "\n")

	// Apply bottom-up so earlier ranges keep their coordinates.
	for i := len(sorted) - 1; i >= 0; i-- {
		r := sorted[i]
		start := r.LineStart - 1
		end := r.LineEnd - 1
		if start > len(lines) {
			return fmt.Errorf("%s: line %d past end of file (%d lines)", path, r.LineStart, len(lines))
		}
		if end > len(lines) {
			end = len(lines)
		}
		// The trailing empty element stands for the file's final newline. A
		// range reaching it absorbs it, since the normalized replacement
		// supplies that newline itself.
		if end == len(lines)-1 && lines[len(lines)-1] == "" {
			end = len(lines)
		}
		repl := strings.Split(Normalize(r.Text), "\n")
		merged := make([]string, 0, len(lines)-(end-start)+len(repl))
		merged = append(merged, lines[:start]...)
		merged = append(merged, repl...)
		merged = append(merged, lines[end:]...)
		lines = merged
	}

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
