package rowflow

// ValidationMode selects how Validate coerces a row's cells to match the
// declared Schema.
type ValidationMode int

const (
	// Strict applies CastTo (narrow coercion; Error on mismatch).
	Strict ValidationMode = iota
	// Lenient applies ConvertTo (broader coercion; failures become an
	// Error cell rather than stopping the row).
	Lenient
)

// Validate wraps ds so every emitted row matches schema: column-type
// mismatches are coerced per mode, short rows are right-padded with
// ValidationError, long rows are truncated. The validator sits at the
// input of each stage chain; stages never revalidate.
func Validate(ds DataSet, schema Schema, mode ValidationMode) DataSet {
	return newMappedDataSet(ds, schema, func(row Row) (Row, bool, error) {
		return validateRow(row, schema, mode), true, nil
	})
}

func validateRow(row Row, schema Schema, mode ValidationMode) Row {
	n := schema.Len()
	out := make(Row, n)
	for i := 0; i < n; i++ {
		col := schema.Columns[i]
		if i >= len(row) {
			out[i] = NewError(ErrValidationError, "missing column %q", col.Name)
			continue
		}
		out[i] = coerceField(row[i], col.Type, mode)
	}
	return out
}

func coerceField(v Value, target ValueType, mode ValidationMode) Value {
	if target == TypeDynamic || ValueTypeOf(v) == target {
		return v
	}
	switch mode {
	case Strict:
		return v.CastTo(target)
	default:
		return v.ConvertTo(target)
	}
}
