package rowflow

import (
	"context"
	"strconv"
)

// TakeStage emits at most Count rows from upstream, then ends the stream.
type TakeStage struct {
	Count int
}

func (s *TakeStage) OutputSchema(input Schema) Schema { return input }

func (s *TakeStage) Apply(ds DataSet) DataSet {
	return &takeDataSet{upstream: ds, remaining: s.Count}
}

func (s *TakeStage) Dump() string { return "take " + strconv.Itoa(s.Count) }

type takeDataSet struct {
	upstream  DataSet
	remaining int
}

func (t *takeDataSet) Schema() Schema { return t.upstream.Schema() }

func (t *takeDataSet) Next(ctx context.Context) (Row, bool, error) {
	if t.remaining <= 0 {
		return nil, false, nil
	}
	row, ok, err := t.upstream.Next(ctx)
	if err != nil || !ok {
		return nil, ok, err
	}
	t.remaining--
	return row, true, nil
}
