package rowflow

import "fmt"

// Column is a named, typed slot in a Schema.
type Column struct {
	Name string
	Type ValueType
}

// Schema is an ordered sequence of Columns. Duplicate column names are
// rejected at build time rather than allowed to shadow, so "first match
// wins" lookups never hide a later column silently.
type Schema struct {
	Columns []Column
}

// NewSchema builds a Schema, rejecting duplicate column names.
func NewSchema(cols ...Column) (Schema, *BuildError) {
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if seen[c.Name] {
			return Schema{}, newBuildError(ErrColumnAlreadyExists, Position{}, "duplicate column %q", c.Name)
		}
		seen[c.Name] = true
	}
	out := make([]Column, len(cols))
	copy(out, cols)
	return Schema{Columns: out}, nil
}

// IndexOf returns the index of the named column, or -1.
func (s Schema) IndexOf(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the named column and ok=true if present.
func (s Schema) Column(name string) (Column, bool) {
	i := s.IndexOf(name)
	if i < 0 {
		return Column{}, false
	}
	return s.Columns[i], true
}

// Len returns the number of columns.
func (s Schema) Len() int { return len(s.Columns) }

// Append returns a new Schema with cols appended, failing if any new name
// collides with an existing column or with another new column.
func (s Schema) Append(cols ...Column) (Schema, *BuildError) {
	all := make([]Column, 0, len(s.Columns)+len(cols))
	all = append(all, s.Columns...)
	all = append(all, cols...)
	return NewSchema(all...)
}

// Without returns a new Schema with the named columns removed.
func (s Schema) Without(names ...string) Schema {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := make([]Column, 0, len(s.Columns))
	for _, c := range s.Columns {
		if !drop[c.Name] {
			out = append(out, c)
		}
	}
	return Schema{Columns: out}
}

// Keep returns a new Schema retaining only the named columns, in the order
// they appear in s, not the order names are given.
func (s Schema) Keep(names []string) (Schema, *BuildError) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if s.IndexOf(n) < 0 {
			return Schema{}, newBuildError(ErrColumnNotFound, Position{}, "unknown column %q", n)
		}
		want[n] = true
	}
	out := make([]Column, 0, len(names))
	for _, c := range s.Columns {
		if want[c.Name] {
			out = append(out, c)
		}
	}
	return Schema{Columns: out}, nil
}

func (s Schema) String() string {
	out := "("
	for i, c := range s.Columns {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s as %s", c.Name, c.Type)
	}
	return out + ")"
}

// Row is an ordered sequence of Values, one per column of its Schema. Rows
// in flight may be shorter or longer than the Schema; Validate pads or
// truncates on demand.
type Row []Value

// Clone returns an independent copy of r.
func (r Row) Clone() Row {
	cp := make(Row, len(r))
	copy(cp, r)
	return cp
}

// At returns r[i], or Null if i is out of range (used by stages reading a
// not-yet-validated row).
func (r Row) At(i int) Value {
	if i < 0 || i >= len(r) {
		return Null
	}
	return r[i]
}
