// Package document holds candidate AOT files in their YAML interchange form:
// a header of top-level keywords plus the rows of each table. It parses
// documents with line information, encodes them in canonical table order,
// computes the column layout an encoder needs and runs the validation
// pipeline over them.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aotfits/aot/internal/schema"
)

// Document is a candidate AOT file. A table is present when its key exists in
// Tables, even with no rows.
type Document struct {
	Header schema.Header
	Tables map[schema.TableID][]schema.Row

	lines map[string]int
}

// New creates an empty document.
func New() *Document {
	return &Document{
		Header: schema.Header{},
		Tables: make(map[schema.TableID][]schema.Row),
	}
}

// rawDocument is the on-disk shape; table names are resolved after decoding.
type rawDocument struct {
	Header schema.Header           `yaml:"header"`
	Tables map[string][]schema.Row `yaml:"tables"`
}

// Parse reads and parses a YAML document from a file
func Parse(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	return ParseBytes(data)
}

// ParseBytes parses a YAML document from bytes. Unknown top-level keys and
// unknown table names are errors; table contents are not validated.
func ParseBytes(data []byte) (*Document, error) {
	// First pass: node API for line numbers
	var rootNode yaml.Node
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&rootNode); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("document is empty")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	lineMap := make(map[string]int)
	extractLineNumbers(&rootNode, "", lineMap)

	// Second pass: strict decoding of the top-level keys
	var raw rawDocument
	decoder = yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse document (check for unknown/misspelled top-level keys): %w", err)
	}

	doc := New()
	doc.lines = lineMap
	if raw.Header != nil {
		doc.Header = raw.Header
	}

	var unknown schema.ValidationErrors
	for name, rows := range raw.Tables {
		id, err := schema.ParseTableID(name)
		if err != nil {
			var ve *schema.ValidationError
			if errors.As(err, &ve) {
				v := *ve
				v.Line = getLineNumber(lineMap, "tables."+name)
				unknown = append(unknown, v)
				continue
			}
			return nil, err
		}
		doc.Tables[id] = rows
	}
	if len(unknown) > 0 {
		sort.Slice(unknown, func(i, j int) bool {
			if unknown[i].Line != unknown[j].Line {
				return unknown[i].Line < unknown[j].Line
			}
			return unknown[i].Table < unknown[j].Table
		})
		return nil, unknown
	}

	return doc, nil
}

// Has reports whether the table is present in the document.
func (d *Document) Has(id schema.TableID) bool {
	_, ok := d.Tables[id]
	return ok
}

// TableIDs returns the present tables in canonical order.
func (d *Document) TableIDs() []schema.TableID {
	var ids []schema.TableID
	for _, id := range schema.Default().CanonicalOrder() {
		if d.Has(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// unknownTables returns the table ids of Tables that name no registered
// table, in ascending order. Only documents built in code can have them.
func (d *Document) unknownTables() []schema.TableID {
	var ids []schema.TableID
	for id := range d.Tables {
		if _, err := schema.Default().Lookup(id); err != nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Line returns the YAML line of a dotted document path such as
// "tables.AOT_TIME.0.UID". When the path itself has no line (a missing field,
// say) the line of the closest enclosing element is returned. Documents that
// were not parsed have no line information and always return 0.
func (d *Document) Line(path string) int {
	for path != "" {
		if line := getLineNumber(d.lines, path); line > 0 {
			return line
		}
		i := strings.LastIndex(path, ".")
		if i < 0 {
			break
		}
		path = path[:i]
	}
	return 0
}

// annotate fills in the YAML line of every violation contained in err.
func (d *Document) annotate(err error) error {
	if d.lines == nil {
		return err
	}
	var many schema.ValidationErrors
	if errors.As(err, &many) {
		for i := range many {
			if many[i].Line == 0 {
				many[i].Line = d.Line(many[i].Path())
			}
		}
		return err
	}
	var one *schema.ValidationError
	if errors.As(err, &one) && one.Line == 0 {
		one.Line = d.Line(one.Path())
	}
	return err
}

// extractLineNumbers walks the YAML node tree and builds a map of dotted
// paths to line numbers. Mapping entries record the line of their key.
func extractLineNumbers(node *yaml.Node, path string, lineMap map[string]int) {
	if node == nil {
		return
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) > 0 {
			extractLineNumbers(node.Content[0], path, lineMap)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			newPath := key.Value
			if path != "" {
				newPath = path + "." + key.Value
			}
			lineMap[newPath] = key.Line
			extractLineNumbers(node.Content[i+1], newPath, lineMap)
		}
	case yaml.SequenceNode:
		for i, child := range node.Content {
			newPath := fmt.Sprintf("%s.%d", path, i)
			lineMap[newPath] = child.Line
			extractLineNumbers(child, newPath, lineMap)
		}
	}
}

// getLineNumber retrieves the line number for a given path
func getLineNumber(lineMap map[string]int, path string) int {
	if lineMap == nil {
		return 0
	}
	return lineMap[path]
}
