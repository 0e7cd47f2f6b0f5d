package rowflow

import "fmt"

// DistinctStage emits each input row whose tuple of key-expression values
// has not been seen before in the stream. The whole row survives, not just
// the key tuple; the memo of seen keys is unbounded.
type DistinctStage struct {
	Keys []Expr
}

func (s *DistinctStage) OutputSchema(input Schema) Schema { return input }

func (s *DistinctStage) Apply(ds DataSet) DataSet {
	seen := make(map[string]bool)
	return newMappedDataSet(ds, ds.Schema(), func(row Row) (Row, bool, error) {
		key := distinctKey(s.Keys, row)
		if seen[key] {
			return row, false, nil
		}
		seen[key] = true
		return row, true, nil
	})
}

func (s *DistinctStage) Dump() string {
	out := "distinct by "
	for i, k := range s.Keys {
		if i > 0 {
			out += ", "
		}
		out += k.Dump()
	}
	return out
}

func distinctKey(keys []Expr, row Row) string {
	var b []byte
	for _, k := range keys {
		v := k.Eval(row)
		b = append(b, byte(ValueTypeOf(v)))
		b = append(b, fmt.Sprintf("%q", v.String())...)
		b = append(b, 0)
	}
	return string(b)
}
