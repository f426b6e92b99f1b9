package schema

import (
	"fmt"
	"sync"

	"github.com/aotfits/aot/internal/types"
)

// Registry is the closed catalog of AOT tables. It is immutable once built
// and safe for concurrent use.
type Registry struct {
	tables    [tableCount + 1]*TableSchema
	mandatory [tableCount + 1]bool
	parents   [tableCount + 1]TableID
	subtypes  [tableCount + 1]Subtype
	order     []TableID
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r := build(definitions(), canonicalOrder, mandatoryTables, subtypes)
	if err := r.Check(); err != nil {
		panic(fmt.Sprintf("aot schema registry is inconsistent: %v", err))
	}
	return r
})

// Default returns the process-wide registry, building it on first use.
func Default() *Registry {
	return defaultRegistry()
}

func build(defs map[TableID][]Field, order, mandatory []TableID, subs []Subtype) *Registry {
	r := &Registry{order: append([]TableID(nil), order...)}
	for id, fields := range defs {
		if id.Valid() {
			r.tables[id] = newTableSchema(id, fields...)
		}
	}
	for _, id := range mandatory {
		if id.Valid() {
			r.mandatory[id] = true
		}
	}
	for _, st := range subs {
		if st.Table.Valid() {
			r.parents[st.Table] = st.Parent
			r.subtypes[st.Table] = st
		}
	}
	return r
}

// Lookup returns the schema of a table.
func (r *Registry) Lookup(id TableID) (*TableSchema, error) {
	if !id.Valid() || r.tables[id] == nil {
		return nil, &ValidationError{
			Kind:    ErrUnknownTable,
			Table:   id.String(),
			Row:     -1,
			Message: fmt.Sprintf("%s is not a registered table", id),
		}
	}
	return r.tables[id], nil
}

// LookupName returns the schema of a table given its on-disk name.
func (r *Registry) LookupName(name string) (*TableSchema, error) {
	id, err := ParseTableID(name)
	if err != nil {
		return nil, err
	}
	return r.Lookup(id)
}

// Field returns the descriptor of a field of a table.
func (r *Registry) Field(id TableID, name string) (Field, error) {
	s, err := r.Lookup(id)
	if err != nil {
		return Field{}, err
	}
	return s.Field(name)
}

// IsMandatoryTable reports whether every valid file must contain the table.
func (r *Registry) IsMandatoryTable(id TableID) bool {
	return id.Valid() && r.mandatory[id]
}

// IsSecondaryTable reports whether the table is an optional extension of a
// mandatory table.
func (r *Registry) IsSecondaryTable(id TableID) bool {
	return id.Valid() && r.tables[id] != nil && !r.mandatory[id]
}

// RequiredTables returns the mandatory tables in canonical order.
func (r *Registry) RequiredTables() []TableID {
	var ids []TableID
	for _, id := range r.order {
		if r.IsMandatoryTable(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// SecondaryTables returns the secondary tables in canonical order.
func (r *Registry) SecondaryTables() []TableID {
	var ids []TableID
	for _, id := range r.order {
		if r.IsSecondaryTable(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Parent returns the mandatory table a secondary table extends.
func (r *Registry) Parent(id TableID) (TableID, bool) {
	if !id.Valid() || r.parents[id] == NoTable {
		return NoTable, false
	}
	return r.parents[id], true
}

// Subtype returns the coupling of a secondary table to its parent.
func (r *Registry) Subtype(id TableID) (Subtype, bool) {
	if _, ok := r.Parent(id); !ok {
		return Subtype{}, false
	}
	return r.subtypes[id], true
}

// Children returns the secondary tables extending id, in canonical order.
func (r *Registry) Children(id TableID) []TableID {
	var ids []TableID
	for _, child := range r.order {
		if p, ok := r.Parent(child); ok && p == id {
			ids = append(ids, child)
		}
	}
	return ids
}

// CanonicalOrder returns every table in serialization order. The slice is a
// copy; callers may modify it.
func (r *Registry) CanonicalOrder() []TableID {
	return append([]TableID(nil), r.order...)
}

// Check verifies the internal consistency of the registry.
func (r *Registry) Check() error {
	var errs ValidationErrors
	add := func(table, field, format string, args ...any) {
		errs = append(errs, ValidationError{
			Table:   table,
			Field:   field,
			Row:     -1,
			Message: fmt.Sprintf(format, args...),
		})
	}

	seen := make(map[TableID]bool, len(r.order))
	for _, id := range r.order {
		if !id.Valid() || r.tables[id] == nil {
			add(id.String(), "", "canonical order names an unregistered table")
			continue
		}
		if seen[id] {
			add(id.String(), "", "table appears twice in canonical order")
		}
		seen[id] = true
	}

	for _, id := range AllTables() {
		s := r.tables[id]
		if s == nil {
			add(id.String(), "", "table has no schema")
			continue
		}
		if !seen[id] {
			add(id.String(), "", "table missing from canonical order")
		}

		parent, isChild := r.Parent(id)
		switch {
		case r.mandatory[id] && isChild:
			add(id.String(), "", "mandatory table cannot extend another table")
		case !r.mandatory[id] && !isChild:
			add(id.String(), "", "secondary table has no parent")
		case isChild && !r.mandatory[parent]:
			add(id.String(), "", "parent %s is not a mandatory table", parent)
		}

		names := make(map[string]bool, s.Len())
		uids := 0
		for _, f := range s.fields {
			if names[f.Name] {
				add(id.String(), f.Name, "duplicate field name")
			}
			names[f.Name] = true

			if !f.Kind.Valid() {
				add(id.String(), f.Name, "invalid kind %d", int(f.Kind))
			}
			if !f.Unit.Valid() {
				add(id.String(), f.Name, "unit '%s' is outside the unit vocabulary", f.Unit)
			}

			if f.Name == FieldUID {
				uids++
				if !f.Mandatory || !f.Unique {
					add(id.String(), f.Name, "UID must be mandatory and unique")
				}
				if isChild && f.References != parent {
					add(id.String(), f.Name, "UID of a secondary table must reference %s", parent)
				}
				continue
			}

			if IsReferenceName(f.Name) != f.IsReference() {
				add(id.String(), f.Name, "reference naming and reference target disagree")
			}
			if f.IsReference() {
				if !f.References.Valid() || r.tables[f.References] == nil {
					add(id.String(), f.Name, "references unregistered table %s", f.References)
				}
				if f.Kind != types.KindString || f.Unit != UnitDimensionless {
					add(id.String(), f.Name, "reference fields must be dimensionless strings")
				}
			}
		}
		if uids != 1 {
			add(id.String(), FieldUID, "table must have exactly one UID field, found %d", uids)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
