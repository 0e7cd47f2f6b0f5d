package rowflow

// ProjectStage appends each computed column to the input row, in order.
// Every projected name must be new: a name already present in the input
// schema is a build-time ColumnAlreadyExists error. All expressions see
// the input schema, so one project stage's new columns cannot reference
// each other.
type ProjectStage struct {
	Names     []string
	Exprs     []Expr
	outSchema Schema
}

// NewProjectStage builds a ProjectStage appending names to input.
func NewProjectStage(input Schema, names []string, exprs []Expr) (*ProjectStage, *BuildError) {
	cols := make([]Column, 0, len(names))
	for i, name := range names {
		if input.IndexOf(name) >= 0 {
			return nil, newBuildError(ErrColumnAlreadyExists, Position{}, "project: column %q already exists", name)
		}
		t, err := exprs[i].OutputType(input)
		if err != nil {
			return nil, err
		}
		cols = append(cols, Column{Name: name, Type: t})
	}
	schema, buildErr := input.Append(cols...)
	if buildErr != nil {
		return nil, buildErr
	}
	return &ProjectStage{Names: names, Exprs: exprs, outSchema: schema}, nil
}

func (s *ProjectStage) OutputSchema(Schema) Schema { return s.outSchema }

func (s *ProjectStage) Apply(ds DataSet) DataSet {
	base := s.outSchema.Len() - len(s.Exprs)
	return newMappedDataSet(ds, s.outSchema, func(row Row) (Row, bool, error) {
		out := make(Row, s.outSchema.Len())
		copy(out, row)
		for i, expr := range s.Exprs {
			out[base+i] = expr.Eval(row)
		}
		return out, true, nil
	})
}

func (s *ProjectStage) Dump() string {
	out := "project "
	for i, n := range s.Names {
		if i > 0 {
			out += ", "
		}
		out += n + " = " + s.Exprs[i].Dump()
	}
	return out
}

// ProjectRenameStage renames existing columns without touching their
// values.
type ProjectRenameStage struct {
	NewNames  []string
	OldNames  []string
	outSchema Schema
}

// NewProjectRenameStage builds a ProjectRenameStage renaming
// newNames[i] = oldNames[i] against input.
func NewProjectRenameStage(input Schema, newNames, oldNames []string) (*ProjectRenameStage, *BuildError) {
	cols := make([]Column, len(input.Columns))
	copy(cols, input.Columns)
	for i, oldName := range oldNames {
		idx := input.IndexOf(oldName)
		if idx < 0 {
			return nil, newBuildError(ErrColumnNotFound, Position{}, "project-rename: column %q not found", oldName)
		}
		cols[idx].Name = newNames[i]
	}
	schema, buildErr := NewSchema(cols...)
	if buildErr != nil {
		return nil, buildErr
	}
	return &ProjectRenameStage{NewNames: newNames, OldNames: oldNames, outSchema: schema}, nil
}

func (s *ProjectRenameStage) OutputSchema(Schema) Schema { return s.outSchema }

func (s *ProjectRenameStage) Apply(ds DataSet) DataSet {
	return newMappedDataSet(ds, s.outSchema, func(row Row) (Row, bool, error) { return row, true, nil })
}

func (s *ProjectRenameStage) Dump() string {
	out := "project-rename "
	for i, n := range s.NewNames {
		if i > 0 {
			out += ", "
		}
		out += n + "=" + s.OldNames[i]
	}
	return out
}

// ProjectRemoveStage drops the named columns.
type ProjectRemoveStage struct {
	Names     []string
	outSchema Schema
	keepIdx   []int
}

// NewProjectRemoveStage builds a ProjectRemoveStage dropping names.
func NewProjectRemoveStage(input Schema, names []string) (*ProjectRemoveStage, *BuildError) {
	for _, n := range names {
		if input.IndexOf(n) < 0 {
			return nil, newBuildError(ErrColumnNotFound, Position{}, "project-remove: column %q not found", n)
		}
	}
	schema := input.Without(names...)
	keepIdx := make([]int, 0, schema.Len())
	for i, c := range input.Columns {
		if schema.IndexOf(c.Name) >= 0 {
			keepIdx = append(keepIdx, i)
		}
	}
	return &ProjectRemoveStage{Names: names, outSchema: schema, keepIdx: keepIdx}, nil
}

func (s *ProjectRemoveStage) OutputSchema(Schema) Schema { return s.outSchema }

func (s *ProjectRemoveStage) Apply(ds DataSet) DataSet {
	return newMappedDataSet(ds, s.outSchema, func(row Row) (Row, bool, error) {
		out := make(Row, len(s.keepIdx))
		for i, idx := range s.keepIdx {
			out[i] = row[idx]
		}
		return out, true, nil
	})
}

func (s *ProjectRemoveStage) Dump() string {
	out := "project-remove "
	for i, n := range s.Names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

// ProjectKeepStage keeps only the named columns, in the order they appear
// in the input schema (matching Schema.Keep), not the order they were
// written.
type ProjectKeepStage struct {
	outSchema Schema
	keepIdx   []int
}

// NewProjectKeepStage builds a ProjectKeepStage keeping only names.
func NewProjectKeepStage(input Schema, names []string) (*ProjectKeepStage, *BuildError) {
	schema, buildErr := input.Keep(names)
	if buildErr != nil {
		return nil, buildErr
	}
	keepIdx := make([]int, schema.Len())
	for i, c := range schema.Columns {
		keepIdx[i] = input.IndexOf(c.Name)
	}
	return &ProjectKeepStage{outSchema: schema, keepIdx: keepIdx}, nil
}

func (s *ProjectKeepStage) OutputSchema(Schema) Schema { return s.outSchema }

func (s *ProjectKeepStage) Apply(ds DataSet) DataSet {
	return newMappedDataSet(ds, s.outSchema, func(row Row) (Row, bool, error) {
		out := make(Row, len(s.keepIdx))
		for i, idx := range s.keepIdx {
			out[i] = row[idx]
		}
		return out, true, nil
	})
}

func (s *ProjectKeepStage) Dump() string {
	out := "project-keep "
	for i, c := range s.outSchema.Columns {
		if i > 0 {
			out += ", "
		}
		out += c.Name
	}
	return out
}
