package rowflow

import "context"

// ExplodeStage turns one row with an array-valued column into one row per
// element of that array, replacing the column's value (cast to
// ExplodedType) with each element in turn. Rows whose array is empty are
// dropped; rows where the column is not an array produce a single output
// row with only the offending cell replaced by an Error, leaving the rest
// of the row intact.
type ExplodeStage struct {
	ColumnIndex  int
	ColumnName   string
	ExplodedType ValueType
	outSchema    Schema
}

// NewExplodeStage builds an ExplodeStage exploding the named column of
// input into explodedType.
func NewExplodeStage(input Schema, columnName string, explodedType ValueType) (*ExplodeStage, *BuildError) {
	idx := input.IndexOf(columnName)
	if idx < 0 {
		return nil, newBuildError(ErrColumnNotFound, Position{}, "explode: column %q not found", columnName)
	}
	cols := make([]Column, len(input.Columns))
	copy(cols, input.Columns)
	cols[idx].Type = explodedType
	schema, buildErr := NewSchema(cols...)
	if buildErr != nil {
		return nil, buildErr
	}
	return &ExplodeStage{ColumnIndex: idx, ColumnName: columnName, ExplodedType: explodedType, outSchema: schema}, nil
}

func (s *ExplodeStage) OutputSchema(Schema) Schema { return s.outSchema }

func (s *ExplodeStage) Apply(ds DataSet) DataSet {
	return newExpandingDataSet(ds, s.outSchema, func(ctx context.Context, row Row) ([]Row, error) {
		arr, e := row[s.ColumnIndex].GetArray()
		if e.IsError() {
			errRow := row.Clone()
			errRow[s.ColumnIndex] = e
			return []Row{errRow}, nil
		}
		out := make([]Row, 0, len(arr))
		for _, elem := range arr {
			cp := row.Clone()
			cp[s.ColumnIndex] = elem.CastTo(s.ExplodedType)
			out = append(out, cp)
		}
		return out, nil
	})
}

func (s *ExplodeStage) Dump() string {
	return "explode " + s.ColumnName + " as " + s.ExplodedType.String()
}
