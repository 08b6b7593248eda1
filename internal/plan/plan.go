// Package plan defines the serializable batch of coordinate-addressed text
// replacements that is the unit of persistence for in-progress edits.
package plan

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"stanza/internal/patch"
	"stanza/internal/section"
)

//go:embed plan.schema.json
var planSchemaJSON string

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// Edit is one planned replacement: the half-open line range
// [LineStart, LineEnd) of FileName is replaced by DocComment. The column span
// locates the original heading and is retained for traceability, never
// reinterpreted. ItemName is the human-readable section title.
type Edit struct {
	FileName    string `json:"file_name"`
	LineStart   int    `json:"line_start"`
	LineEnd     int    `json:"line_end"`
	ColumnStart int    `json:"column_start"`
	ColumnEnd   int    `json:"column_end"`
	DocComment  string `json:"doc_comment"`
	ItemName    string `json:"item_name"`
}

// Plan is an ordered list of edits. Edits targeting the same file are applied
// as one atomic batch, so ordering across files carries no meaning.
type Plan struct {
	Edits []Edit `json:"edits"`
}

// Generate walks the section list and emits one edit per section carrying
// buffered, unsaved content. Unedited sections are omitted.
func Generate(sections []section.Section) Plan {
	var p Plan
	for i := range sections {
		s := &sections[i]
		if !s.Edited() {
			continue
		}
		p.Edits = append(p.Edits, Edit{
			FileName:    s.FilePath,
			LineStart:   s.LineStart,
			LineEnd:     s.LineEnd,
			ColumnStart: s.ColumnStart,
			ColumnEnd:   s.ColumnEnd,
			DocComment:  strings.Join(s.Pending, "\n"),
			ItemName:    s.Title,
		})
	}
	return p
}

// Apply delegates to the patch engine. It is the plan's only mutating entry
// point.
func (p Plan) Apply() error {
	replacements := make([]patch.Replacement, 0, len(p.Edits))
	for _, e := range p.Edits {
		replacements = append(replacements, patch.Replacement{
			Path:      e.FileName,
			LineStart: e.LineStart,
			LineEnd:   e.LineEnd,
			Text:      e.DocComment,
		})
	}
	return patch.Apply(replacements)
}

// Marshal renders the plan as indented JSON, the on-disk interchange format.
func (p Plan) Marshal() ([]byte, error) {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// Load reads a plan file, validates it against the plan schema and
// unmarshals it.
func Load(path string) (Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to read plan %s: %w", path, err)
	}
	if err := validate(raw); err != nil {
		return Plan{}, fmt.Errorf("plan %s is invalid: %w", path, err)
	}
	var p Plan
	if err := json.Unmarshal(raw, &p); err != nil {
		return Plan{}, fmt.Errorf("failed to decode plan %s: %w", path, err)
	}
	return p, nil
}

func validate(raw []byte) error {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("plan.schema.json", strings.NewReader(planSchemaJSON)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("plan.schema.json")
	})
	if schemaErr != nil {
		return fmt.Errorf("failed to compile plan schema: %w", schemaErr)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return compiledSchema.Validate(v)
}
