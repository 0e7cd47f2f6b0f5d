package rowflow

import (
	"context"
	"sort"
	"strconv"
)

// SortOrder is the direction top sorts by. Descending is the default.
type SortOrder int

const (
	Descending SortOrder = iota
	Ascending
)

// NullPos controls where Null/Error-keyed rows land relative to the sorted
// rows. Last is the default.
type NullPos int

const (
	NullsLast NullPos = iota
	NullsFirst
)

// TopStage materialises the full upstream, computes Criteria for each row,
// and keeps the Count rows with the smallest (Ascending) or largest
// (Descending) keys. Null/Error keys are kept separately (at most Count of
// them) and placed ahead of or after the sorted rows per NullPos; the
// combined null+sorted sequence is then truncated to Count so the stage
// never emits more than Count rows overall.
type TopStage struct {
	Count    int
	Criteria Expr
	Order    SortOrder
	Nulls    NullPos
}

func (s *TopStage) OutputSchema(input Schema) Schema { return input }

func (s *TopStage) Apply(ds DataSet) DataSet {
	return &topDataSet{upstream: ds, stage: s}
}

func (s *TopStage) Dump() string {
	out := "top "
	out += strconv.Itoa(s.Count)
	out += " by " + s.Criteria.Dump()
	if s.Order == Ascending {
		out += " asc"
	} else {
		out += " desc"
	}
	if s.Nulls == NullsFirst {
		out += " nulls first"
	} else {
		out += " nulls last"
	}
	return out
}

type topDataSet struct {
	upstream DataSet
	stage    *TopStage
	rows     []Row
	computed bool
	pos      int
}

func (t *topDataSet) Schema() Schema { return t.upstream.Schema() }

func (t *topDataSet) Next(ctx context.Context) (Row, bool, error) {
	if !t.computed {
		t.compute(ctx)
		t.computed = true
	}
	if t.pos >= len(t.rows) {
		return nil, false, nil
	}
	row := t.rows[t.pos]
	t.pos++
	return row, true, nil
}

type keyedRow struct {
	key Value
	row Row
}

// compute materialises the upstream. A collection failure cannot
// terminate the stream: it becomes a single row of all-Error cells of the
// output schema's width.
func (t *topDataSet) compute(ctx context.Context) {
	s := t.stage
	var ranked []keyedRow
	var nullRows []Row
	for {
		row, ok, err := t.upstream.Next(ctx)
		if err != nil {
			t.rows = []Row{errorRowOfWidth(t.Schema().Len(), NewError(ErrExternal, "top: %v", err))}
			return
		}
		if !ok {
			break
		}
		key := s.Criteria.Eval(row)
		if key.IsNull() || key.IsError() {
			if len(nullRows) < s.Count {
				nullRows = append(nullRows, row)
			}
			continue
		}
		ranked = append(ranked, keyedRow{key: key, row: row})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		ord := Compare(ranked[i].key, ranked[j].key)
		if s.Order == Ascending {
			return ord == OrderLess
		}
		return ord == OrderGreater
	})
	rows := make([]Row, len(ranked))
	for i, kr := range ranked {
		rows[i] = kr.row
	}
	var combined []Row
	if s.Nulls == NullsFirst {
		combined = append(nullRows, rows...)
	} else {
		combined = append(rows, nullRows...)
	}
	if len(combined) > s.Count {
		combined = combined[:s.Count]
	}
	t.rows = combined
}

// errorRowOfWidth builds a row of width identical Error cells, used by the
// materialising stages (top, summarize) when their internal collection
// fails.
func errorRowOfWidth(width int, errVal Value) Row {
	row := make(Row, width)
	for i := range row {
		row[i] = errVal
	}
	return row
}
