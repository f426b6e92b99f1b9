package schema

import (
	"fmt"
	"sort"
)

// Row is one record of a table: field name to value. A missing key and a
// nil value both mean the value is absent.
type Row map[string]any

// UIDIndex holds the UIDs carried by each table present in a document.
// Tables absent from the document have no entry.
type UIDIndex map[TableID]map[string]int

// IndexUIDs builds the UID index of a set of tables. The value is the index
// of the first row carrying the UID.
func IndexUIDs(tables map[TableID][]Row) UIDIndex {
	idx := make(UIDIndex, len(tables))
	for id, rows := range tables {
		uids := make(map[string]int, len(rows))
		for i, row := range rows {
			if s, ok := row[FieldUID].(string); ok {
				if _, dup := uids[s]; !dup {
					uids[s] = i
				}
			}
		}
		idx[id] = uids
	}
	return idx
}

// Resolve reports whether uid names a row of table id. present is false when
// the table is not part of the document, in which case the reference cannot
// be checked.
func (idx UIDIndex) Resolve(id TableID, uid string) (found, present bool) {
	uids, present := idx[id]
	if !present {
		return false, false
	}
	_, found = uids[uid]
	return found, true
}

// ValidateTable checks the rows of one table against the registered schema:
// closed field set, mandatory values, value kinds, enumerated vocabularies
// and uniqueness. References are checked by ValidateReferences.
func ValidateTable(id TableID, rows []Row, opts ...Option) error {
	return Default().ValidateTable(id, rows, opts...)
}

// ValidateTable checks the rows of one table against its schema.
func (r *Registry) ValidateTable(id TableID, rows []Row, opts ...Option) error {
	s, err := r.Lookup(id)
	if err != nil {
		return err
	}
	c := NewCollector(NewOptions(opts...).Policy)
	table := id.String()

	type firstUse struct {
		row   int
		value any
	}
	seen := make(map[string]map[string]firstUse)
	for _, f := range s.fields {
		if f.Unique {
			seen[f.Name] = make(map[string]firstUse)
		}
	}

	for i, row := range rows {
		for _, name := range unexpectedFields(s, row) {
			if c.Add(ValidationError{
				Kind:       ErrUnexpectedField,
				Table:      table,
				Field:      name,
				Row:        i,
				Message:    fmt.Sprintf("'%s' is not a field of %s", name, table),
				Suggestion: suggestField(s, name),
			}) {
				return c.Err()
			}
		}

		for _, f := range s.fields {
			value, present := row[f.Name]
			if !present || value == nil {
				if f.Mandatory {
					if c.Add(ValidationError{
						Kind:    ErrMissingMandatoryValue,
						Table:   table,
						Field:   f.Name,
						Row:     i,
						Message: fmt.Sprintf("mandatory field %s has no value", f.Name),
					}) {
						return c.Err()
					}
				}
				continue
			}

			if !f.Kind.Accepts(value) {
				if c.Add(ValidationError{
					Kind:    ErrKindMismatch,
					Table:   table,
					Field:   f.Name,
					Row:     i,
					Value:   value,
					Message: fmt.Sprintf("expected a %s value, got %T", f.Kind, value),
				}) {
					return c.Err()
				}
				continue
			}

			if !f.Permits(value) {
				if c.Add(ValidationError{
					Kind:       ErrValueNotAllowed,
					Table:      table,
					Field:      f.Name,
					Row:        i,
					Value:      value,
					Message:    fmt.Sprintf("'%v' is not a valid %s", value, f.Name),
					Suggestion: fmt.Sprintf("use one of: %v", f.Allowed),
				}) {
					return c.Err()
				}
			}

			if f.Unique {
				key := valueKey(value)
				if first, dup := seen[f.Name][key]; dup {
					if c.Add(ValidationError{
						Kind:    ErrDuplicateUniqueValue,
						Table:   table,
						Field:   f.Name,
						Row:     i,
						Value:   value,
						Message: fmt.Sprintf("value '%v' is already used by row %d", first.value, first.row),
					}) {
						return c.Err()
					}
					continue
				}
				seen[f.Name][key] = firstUse{row: i, value: value}
			}
		}
	}

	return c.Err()
}

// ValidateReferences checks that every reference value of the rows resolves
// to a UID of the referenced table. References into tables missing from idx
// are not checked; absent values are left to ValidateTable.
func ValidateReferences(id TableID, rows []Row, idx UIDIndex, opts ...Option) error {
	return Default().ValidateReferences(id, rows, idx, opts...)
}

// ValidateReferences checks that the reference fields of rows resolve.
func (r *Registry) ValidateReferences(id TableID, rows []Row, idx UIDIndex, opts ...Option) error {
	s, err := r.Lookup(id)
	if err != nil {
		return err
	}
	c := NewCollector(NewOptions(opts...).Policy)
	table := id.String()
	refs := s.References()

	for i, row := range rows {
		for _, f := range refs {
			uid, ok := row[f.Name].(string)
			if !ok {
				continue
			}
			found, present := idx.Resolve(f.References, uid)
			if !present || found {
				continue
			}
			if c.Add(ValidationError{
				Kind:       ErrUnresolvedReference,
				Table:      table,
				Field:      f.Name,
				Row:        i,
				Value:      uid,
				Message:    fmt.Sprintf("'%s' does not match the UID of any row in %s", uid, f.References),
				Suggestion: fmt.Sprintf("add a row with UID '%s' to %s or fix the reference", uid, f.References),
			}) {
				return c.Err()
			}
		}
	}

	return c.Err()
}

// ValidateSubtypes checks that each row of a secondary table extends a parent
// row of the matching TYPE, e.g. an AOT_LOOPS_CONTROL row must extend an
// AOT_LOOPS row whose TYPE is "Control Loop".
func ValidateSubtypes(tables map[TableID][]Row, opts ...Option) error {
	return Default().ValidateSubtypes(tables, opts...)
}

// ValidateSubtypes checks secondary rows against the TYPE of their parent rows.
func (r *Registry) ValidateSubtypes(tables map[TableID][]Row, opts ...Option) error {
	c := NewCollector(NewOptions(opts...).Policy)

	for _, id := range r.SecondaryTables() {
		rows, ok := tables[id]
		if !ok {
			continue
		}
		st, _ := r.Subtype(id)
		parentRows, ok := tables[st.Parent]
		if !ok {
			continue
		}
		parentType := make(map[string]any, len(parentRows))
		for _, pr := range parentRows {
			if uid, ok := pr[FieldUID].(string); ok {
				if _, dup := parentType[uid]; !dup {
					parentType[uid] = pr[FieldType]
				}
			}
		}

		for i, row := range rows {
			uid, ok := row[FieldUID].(string)
			if !ok {
				continue
			}
			got, found := parentType[uid]
			if !found || got == st.ParentType {
				continue
			}
			if c.Add(ValidationError{
				Kind:  ErrSubtypeMismatch,
				Table: id.String(),
				Field: FieldUID,
				Row:   i,
				Value: uid,
				Message: fmt.Sprintf("%s row '%s' has TYPE '%v', but %s rows extend TYPE '%s'",
					st.Parent, uid, got, id, st.ParentType),
			}) {
				return c.Err()
			}
		}
	}

	return c.Err()
}

// ValidateTables validates a set of tables jointly: each table against its
// schema, then references and subtypes across tables. Tables are visited in
// canonical order so results are deterministic.
func ValidateTables(tables map[TableID][]Row, opts ...Option) error {
	return Default().ValidateTables(tables, opts...)
}

// ValidateTables validates a set of tables jointly.
func (r *Registry) ValidateTables(tables map[TableID][]Row, opts ...Option) error {
	o := NewOptions(opts...)
	c := NewCollector(o.Policy)

	var unknown []TableID
	for id := range tables {
		if _, err := r.Lookup(id); err != nil {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
		_, err := r.Lookup(unknown[0])
		return err
	}

	for _, id := range r.order {
		rows, ok := tables[id]
		if !ok {
			continue
		}
		if stop, err := c.Merge(r.ValidateTable(id, rows, opts...)); stop {
			if err != nil {
				return err
			}
			return c.Err()
		}
	}

	idx := IndexUIDs(tables)
	for _, id := range r.order {
		rows, ok := tables[id]
		if !ok {
			continue
		}
		if stop, err := c.Merge(r.ValidateReferences(id, rows, idx, opts...)); stop {
			if err != nil {
				return err
			}
			return c.Err()
		}
	}

	if stop, err := c.Merge(r.ValidateSubtypes(tables, opts...)); stop && err != nil {
		return err
	}
	return c.Err()
}

// CheckRequiredTables reports every mandatory table missing from present.
func (r *Registry) CheckRequiredTables(present func(TableID) bool, opts ...Option) error {
	c := NewCollector(NewOptions(opts...).Policy)
	for _, id := range r.RequiredTables() {
		if present(id) {
			continue
		}
		if c.Add(ValidationError{
			Kind:       ErrIncompleteDocument,
			Table:      id.String(),
			Row:        -1,
			Message:    fmt.Sprintf("mandatory table %s is missing", id),
			Suggestion: "every AOT file carries all mandatory tables, even if empty",
		}) {
			break
		}
	}
	return c.Err()
}

func unexpectedFields(s *TableSchema, row Row) []string {
	var names []string
	for name := range row {
		if !s.Has(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// suggestField proposes a registered field for a misspelled one.
func suggestField(s *TableSchema, name string) string {
	best, bestDist := "", 3
	for _, f := range s.fields {
		if d := editDistance(name, f.Name); d < bestDist {
			best, bestDist = f.Name, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf("did you mean '%s'?", best)
}

func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func valueKey(value any) string {
	return fmt.Sprintf("%T:%v", value, value)
}
