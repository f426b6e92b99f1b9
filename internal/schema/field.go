package schema

import (
	"fmt"
	"strings"

	"github.com/aotfits/aot/internal/types"
)

// Field describes one column of an AOT table.
type Field struct {
	Name        string     `yaml:"name"`
	Kind        types.Kind `yaml:"kind"`
	Unit        Unit       `yaml:"unit"`
	Mandatory   bool       `yaml:"mandatory,omitempty"`
	Unique      bool       `yaml:"unique,omitempty"`
	Description string     `yaml:"description,omitempty"`
	References  TableID    `yaml:"references,omitempty"` // Target table of a reference field, NoTable otherwise
	Allowed     []string   `yaml:"allowed,omitempty"`    // Closed vocabulary for enumerated string fields
}

// IsReference reports whether the field holds the UID of a row in another table.
func (f Field) IsReference() bool {
	return f.References != NoTable
}

// Permits reports whether value is in the field's closed vocabulary.
// Fields without a vocabulary permit any value.
func (f Field) Permits(value any) bool {
	if len(f.Allowed) == 0 {
		return true
	}
	s, ok := value.(string)
	if !ok {
		return false
	}
	for _, allowed := range f.Allowed {
		if s == allowed {
			return true
		}
	}
	return false
}

// Flags lists the constraints on the field's values, e.g. "mandatory,unique".
func (f Field) Flags() string {
	var flags []string
	if f.Mandatory {
		flags = append(flags, "mandatory")
	}
	if f.Unique {
		flags = append(flags, "unique")
	}
	return strings.Join(flags, ",")
}

// Summary is the description prefixed with the referenced table or the
// closed vocabulary, for listings.
func (f Field) Summary() string {
	var prefix string
	switch {
	case f.IsReference():
		prefix = "-> " + f.References.String() + "."
	case len(f.Allowed) > 0:
		prefix = "One of " + strings.Join(f.Allowed, ", ") + "."
	default:
		return f.Description
	}
	if f.Description == "" {
		return prefix
	}
	return prefix + " " + f.Description
}

func (f Field) clone() Field {
	if f.Allowed != nil {
		f.Allowed = append([]string(nil), f.Allowed...)
	}
	return f
}

// TableSchema is the ordered field list of one table. Field order is column
// order on the wire.
type TableSchema struct {
	id     TableID
	fields []Field
	index  map[string]int
}

func newTableSchema(id TableID, fields ...Field) *TableSchema {
	s := &TableSchema{
		id:     id,
		fields: fields,
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		// first definition wins; Check reports the duplicate
		if _, exists := s.index[f.Name]; !exists {
			s.index[f.Name] = i
		}
	}
	return s
}

// ID returns the table the schema belongs to.
func (s *TableSchema) ID() TableID {
	return s.id
}

// Len returns the number of fields.
func (s *TableSchema) Len() int {
	return len(s.fields)
}

// Fields returns a copy of the fields in column order.
func (s *TableSchema) Fields() []Field {
	out := make([]Field, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.clone()
	}
	return out
}

// Names returns the field names in column order.
func (s *TableSchema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Has reports whether the table defines a field with the given name.
func (s *TableSchema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Field returns the descriptor of a named field.
func (s *TableSchema) Field(name string) (Field, error) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, &ValidationError{
			Kind:    ErrUnknownField,
			Table:   s.id.String(),
			Field:   name,
			Row:     -1,
			Message: fmt.Sprintf("'%s' is not a registered field of %s", name, s.id),
		}
	}
	return s.fields[i].clone(), nil
}

// UID returns the identity field of the table.
func (s *TableSchema) UID() Field {
	f, _ := s.Field(FieldUID)
	return f
}

// References returns the reference fields in column order.
func (s *TableSchema) References() []Field {
	var refs []Field
	for _, f := range s.fields {
		if f.IsReference() {
			refs = append(refs, f.clone())
		}
	}
	return refs
}
