// Package crawler discovers the documents a session operates on.
package crawler

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Crawler scans paths for documents with matching extensions.
type Crawler struct {
	extensions []string
	ignored    []string
}

// NewCrawler creates a crawler matching the given file extensions
// (without the leading dot).
func NewCrawler(extensions []string) *Crawler {
	return &Crawler{
		extensions: extensions,
		ignored:    []string{".git", "vendor", "node_modules", "testdata"},
	}
}

// FindDocuments resolves each path to matching files. Files are accepted
// as-is when they match an extension; directories are walked recursively with
// ignored directories skipped. The result is deduplicated and sorted.
func (c *Crawler) FindDocuments(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var documents []string

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			documents = append(documents, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if c.matches(path) {
				add(path)
			}
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				for _, ign := range c.ignored {
					if d.Name() == ign {
						return filepath.SkipDir
					}
				}
				return nil
			}
			if c.matches(p) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(documents)
	return documents, nil
}

func (c *Crawler) matches(path string) bool {
	for _, ext := range c.extensions {
		if strings.HasSuffix(path, "."+strings.TrimPrefix(ext, ".")) {
			return true
		}
	}
	return false
}
