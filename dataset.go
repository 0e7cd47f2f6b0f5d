package rowflow

import "context"

// DataSet is a lazily-pulled, schema-carrying stream of Rows: each stage
// wraps the previous DataSet rather than materialising its output eagerly.
// Next returns ok=false at end of stream; after that, further calls keep
// returning ok=false rather than panicking.
type DataSet interface {
	Schema() Schema
	Next(ctx context.Context) (Row, bool, error)
}

// Drain pulls every row out of ds into a slice, in order. It stops early
// and returns ctx.Err() if ctx is cancelled mid-stream.
func Drain(ctx context.Context, ds DataSet) ([]Row, error) {
	var rows []Row
	for {
		select {
		case <-ctx.Done():
			return rows, ctx.Err()
		default:
		}
		row, ok, err := ds.Next(ctx)
		if err != nil {
			return rows, err
		}
		if !ok {
			return rows, nil
		}
		rows = append(rows, row)
	}
}

// sliceDataSet is a DataSet backed by an in-memory slice of rows, used by
// tests and by Engine.Process and Engine.HealthCheck to wrap their input.
type sliceDataSet struct {
	schema Schema
	rows   []Row
	pos    int
}

// NewSliceDataSet wraps rows (already matching schema) as a DataSet.
func NewSliceDataSet(schema Schema, rows []Row) DataSet {
	return &sliceDataSet{schema: schema, rows: rows}
}

func (s *sliceDataSet) Schema() Schema { return s.schema }

func (s *sliceDataSet) Next(ctx context.Context) (Row, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if s.pos >= len(s.rows) {
		return nil, false, nil
	}
	row := s.rows[s.pos]
	s.pos++
	return row, true, nil
}

// mappedDataSet applies a per-row function to an upstream DataSet, dropping
// rows for which f returns ok=false, used by stages (where, ignore-error)
// that are simple 1:0-or-1 row transforms.
type mappedDataSet struct {
	upstream DataSet
	schema   Schema
	f        func(Row) (Row, bool, error)
}

func newMappedDataSet(upstream DataSet, schema Schema, f func(Row) (Row, bool, error)) DataSet {
	return &mappedDataSet{upstream: upstream, schema: schema, f: f}
}

func (m *mappedDataSet) Schema() Schema { return m.schema }

func (m *mappedDataSet) Next(ctx context.Context) (Row, bool, error) {
	for {
		row, ok, err := m.upstream.Next(ctx)
		if err != nil || !ok {
			return nil, ok, err
		}
		out, keep, err := m.f(row)
		if err != nil {
			return nil, false, err
		}
		if keep {
			return out, true, nil
		}
	}
}

// expandingDataSet applies a per-row function that yields zero or more
// output rows, used by stages (explode) that fan a single input
// row out into a buffered batch.
type expandingDataSet struct {
	upstream DataSet
	schema   Schema
	f        func(ctx context.Context, row Row) ([]Row, error)
	buffer   []Row
}

func newExpandingDataSet(upstream DataSet, schema Schema, f func(context.Context, Row) ([]Row, error)) DataSet {
	return &expandingDataSet{upstream: upstream, schema: schema, f: f}
}

func (e *expandingDataSet) Schema() Schema { return e.schema }

func (e *expandingDataSet) Next(ctx context.Context) (Row, bool, error) {
	for len(e.buffer) == 0 {
		row, ok, err := e.upstream.Next(ctx)
		if err != nil || !ok {
			return nil, ok, err
		}
		expanded, err := e.f(ctx, row)
		if err != nil {
			return nil, false, err
		}
		e.buffer = expanded
	}
	row := e.buffer[0]
	e.buffer = e.buffer[1:]
	return row, true, nil
}
