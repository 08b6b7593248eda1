// Package parser turns raw document bytes into section lists. Each document
// format is a Format variant producing the same Section shape, so callers
// never branch on format identity.
package parser

import (
	"fmt"

	"stanza/internal/section"
)

// Format extracts sections from one document format.
type Format interface {
	// Name identifies the format for configuration and display.
	Name() string
	// ExtractSections reads path fresh and returns its sections in document
	// order, each a root or a correctly linked child.
	ExtractSections(path string) ([]section.Section, error)
}

// New returns the format registered under name.
func New(name string) (Format, error) {
	switch name {
	case "markdown":
		return &Markdown{}, nil
	case "difftastic":
		return &Difftastic{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", name)
	}
}
