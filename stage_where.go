package rowflow

// Stage is a single named step mapping a DataSet to a DataSet. Output
// schema is computed once at build time from the input schema.
type Stage interface {
	OutputSchema(input Schema) Schema
	Apply(ds DataSet) DataSet
	Dump() string
}

// WhereStage passes through rows for which Cond evaluates to true. Rows
// whose predicate is false, Null, or Error are dropped silently: a
// non-bool verdict never becomes a build-time failure here, since the
// predicate's static type was already checked when the expression was
// built.
type WhereStage struct {
	Cond Expr
}

func (s *WhereStage) OutputSchema(input Schema) Schema { return input }

func (s *WhereStage) Apply(ds DataSet) DataSet {
	return newMappedDataSet(ds, ds.Schema(), func(row Row) (Row, bool, error) {
		v := s.Cond.Eval(row)
		b, ok := asBool(v)
		return row, ok && b, nil
	})
}

func (s *WhereStage) Dump() string { return "where " + s.Cond.Dump() }

// IgnoreErrorStage passes through only rows with no Error-valued cell.
type IgnoreErrorStage struct{}

func (s *IgnoreErrorStage) OutputSchema(input Schema) Schema { return input }

func (s *IgnoreErrorStage) Apply(ds DataSet) DataSet {
	return newMappedDataSet(ds, ds.Schema(), func(row Row) (Row, bool, error) {
		for _, v := range row {
			if v.IsError() {
				return row, false, nil
			}
		}
		return row, true, nil
	})
}

func (s *IgnoreErrorStage) Dump() string { return "ignore-error" }
