package document

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aotfits/aot/internal/schema"
	"github.com/aotfits/aot/internal/types"
)

// Encode writes the document as YAML. Header keywords come first in their
// declared order, tables follow in canonical order and the fields of each row
// in column order. Fields outside the schema are kept, sorted, after the
// registered ones; nil values are dropped.
func Encode(doc *Document) ([]byte, error) {
	registry := schema.Default()

	header := mappingNode()
	for _, key := range headerKeys(doc.Header) {
		if err := appendEntry(header, key, doc.Header[key]); err != nil {
			return nil, fmt.Errorf("failed to encode header keyword %s: %w", key, err)
		}
	}

	if unknown := doc.unknownTables(); len(unknown) > 0 {
		_, err := registry.Lookup(unknown[0])
		return nil, err
	}

	tables := mappingNode()
	for _, id := range doc.TableIDs() {
		s, _ := registry.Lookup(id)
		rows := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if len(doc.Tables[id]) == 0 {
			rows.Style = yaml.FlowStyle
		}
		for i, row := range doc.Tables[id] {
			rowNode := mappingNode()
			for _, name := range rowKeys(s, row) {
				if err := appendEntry(rowNode, name, row[name]); err != nil {
					return nil, fmt.Errorf("failed to encode %s[%d].%s: %w", id, i, name, err)
				}
			}
			rows.Content = append(rows.Content, rowNode)
		}
		tables.Content = append(tables.Content, scalarNode(id.String()), rows)
	}

	root := mappingNode()
	root.Content = append(root.Content,
		scalarNode("header"), header,
		scalarNode("tables"), tables,
	)

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return buf.Bytes(), nil
}

func headerKeys(h schema.Header) []string {
	var keys, extra []string
	for _, k := range schema.HeaderKeywords() {
		if h[k.Name] != nil {
			keys = append(keys, k.Name)
		}
	}
	for name, value := range h {
		if value != nil && !schema.IsHeaderKeyword(name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

func rowKeys(s *schema.TableSchema, row schema.Row) []string {
	var keys, extra []string
	for _, name := range s.Names() {
		if row[name] != nil {
			keys = append(keys, name)
		}
	}
	for name, value := range row {
		if value != nil && !s.Has(name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func appendEntry(m *yaml.Node, key string, value any) error {
	v, err := valueNode(value)
	if err != nil {
		return err
	}
	m.Content = append(m.Content, scalarNode(key), v)
	return nil
}

// valueNode converts a row or header value to a node. Floats always carry a
// fraction or exponent so they decode as floats again, and arrays are written
// inline.
func valueNode(value any) (*yaml.Node, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(rv.Float(), 32)}, nil
	case reflect.Float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(rv.Float(), 64)}, nil
	case reflect.Slice, reflect.Array:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for i := 0; i < rv.Len(); i++ {
			item, err := valueNode(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, item)
		}
		return seq, nil
	}

	var n yaml.Node
	if err := n.Encode(value); err != nil {
		return nil, err
	}
	return &n, nil
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Column is the on-disk description of one table column.
type Column struct {
	Name   string      `yaml:"name"`
	Kind   types.Kind  `yaml:"kind"`
	Unit   schema.Unit `yaml:"unit"`
	Format string      `yaml:"format"` // Binary-table type code, e.g. "64A" or "QD(1200)"
}

// TableLayout is the column layout of one table as an encoder writes it.
type TableLayout struct {
	Table   schema.TableID `yaml:"table"`
	Rows    int            `yaml:"rows"`
	Columns []Column       `yaml:"columns"`
}

// Layout returns the layout of every present table in canonical order. Every
// registered column is laid out, in schema order, whether or not any row sets
// it. Text columns are as wide as their longest value and list columns as
// long as their longest array.
func Layout(doc *Document) ([]TableLayout, error) {
	registry := schema.Default()
	if unknown := doc.unknownTables(); len(unknown) > 0 {
		_, err := registry.Lookup(unknown[0])
		return nil, err
	}

	var layouts []TableLayout
	for _, id := range doc.TableIDs() {
		s, _ := registry.Lookup(id)
		rows := doc.Tables[id]
		layout := TableLayout{Table: id, Rows: len(rows)}

		for _, f := range s.Fields() {
			format, err := types.WireType(f.Kind, columnWidth(f, rows))
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", id, f.Name, err)
			}
			if err := types.CheckWireType(format, f.Kind); err != nil {
				return nil, fmt.Errorf("%s.%s: %w", id, f.Name, err)
			}
			layout.Columns = append(layout.Columns, Column{
				Name:   f.Name,
				Kind:   f.Kind,
				Unit:   f.Unit,
				Format: format,
			})
		}
		layouts = append(layouts, layout)
	}
	return layouts, nil
}

func columnWidth(f schema.Field, rows []schema.Row) int {
	width := 0
	for _, row := range rows {
		switch f.Kind {
		case types.KindString:
			if s, ok := row[f.Name].(string); ok {
				width = max(width, len(s))
			}
		case types.KindList:
			if v := reflect.ValueOf(row[f.Name]); v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
				width = max(width, v.Len())
			}
		}
	}
	return width
}
