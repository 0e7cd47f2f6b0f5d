package rowflow

import (
	"context"
	"sync"
)

// JoinKind selects how LookupStage combines an input row with its
// lookup-source matches.
type JoinKind int

const (
	// JoinSingle always emits exactly one output row per input row: the
	// lookup source's single result (Null-filled on miss).
	JoinSingle JoinKind = iota
	// JoinLeftInner drops the input row entirely if the source has no
	// match.
	JoinLeftInner
	// JoinLeftOuter keeps the input row even on no match, filling the
	// looked-up fields with Null.
	JoinLeftOuter
)

// LookupStage enriches each row with fields fetched from a LookupSource,
// keyed by Key. Rows are batched from upstream (BatchSize at a time) and
// resolved concurrently, fanning goroutines out over a sync.WaitGroup for
// each batch.
type LookupStage struct {
	Source      LookupSource
	SourceName  string
	Key         Expr
	FieldNames  []string
	FieldOutput []string // renamed output names, same length as FieldNames
	FieldTypes  []ValueType
	Kind        JoinKind
	outSchema   Schema
}

// NewLookupStage builds a LookupStage appending the requested fields (cast
// to fieldTypes) onto input's schema.
func NewLookupStage(input Schema, sourceName string, source LookupSource, key Expr, fieldNames, fieldOutput []string, fieldTypes []ValueType, kind JoinKind) (*LookupStage, *BuildError) {
	cols := make([]Column, len(input.Columns))
	copy(cols, input.Columns)
	for i, name := range fieldOutput {
		cols = append(cols, Column{Name: name, Type: fieldTypes[i]})
	}
	schema, buildErr := NewSchema(cols...)
	if buildErr != nil {
		return nil, buildErr
	}
	return &LookupStage{
		Source: source, SourceName: sourceName, Key: key,
		FieldNames: fieldNames, FieldOutput: fieldOutput, FieldTypes: fieldTypes, Kind: kind,
		outSchema: schema,
	}, nil
}

func (s *LookupStage) OutputSchema(Schema) Schema { return s.outSchema }

func (s *LookupStage) Dump() string {
	out := ""
	switch s.Kind {
	case JoinLeftInner:
		out = "join kind=left-inner "
	case JoinLeftOuter:
		out = "join kind=left-outer "
	}
	out += "lookup "
	for i, name := range s.FieldNames {
		if i > 0 {
			out += ", "
		}
		if s.FieldOutput[i] != name {
			out += s.FieldOutput[i] + " = " + name
		} else {
			out += name
		}
		out += " as " + s.FieldTypes[i].String()
	}
	out += " from " + s.SourceName + " on " + s.Key.Dump()
	return out
}

func (s *LookupStage) Apply(ds DataSet) DataSet {
	batchSize := s.Source.BatchSize()
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &lookupDataSet{upstream: ds, stage: s, batchSize: batchSize}
}

type lookupDataSet struct {
	upstream  DataSet
	stage     *LookupStage
	batchSize int
	buffer    []Row
}

func (d *lookupDataSet) Schema() Schema { return d.stage.outSchema }

func (d *lookupDataSet) Next(ctx context.Context) (Row, bool, error) {
	for len(d.buffer) == 0 {
		batch, more, err := d.fetchBatch(ctx)
		if err != nil {
			return nil, false, err
		}
		if len(batch) == 0 && !more {
			return nil, false, nil
		}
		d.buffer = d.resolveBatch(ctx, batch)
		if !more && len(d.buffer) == 0 {
			return nil, false, nil
		}
	}
	row := d.buffer[0]
	d.buffer = d.buffer[1:]
	return row, true, nil
}

func (d *lookupDataSet) fetchBatch(ctx context.Context) ([]Row, bool, error) {
	batch := make([]Row, 0, d.batchSize)
	for len(batch) < d.batchSize {
		row, ok, err := d.upstream.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return batch, false, nil
		}
		batch = append(batch, row)
	}
	return batch, true, nil
}

func (d *lookupDataSet) resolveBatch(ctx context.Context, batch []Row) []Row {
	results := make([][]Row, len(batch))
	var wg sync.WaitGroup
	for i, row := range batch {
		wg.Add(1)
		go func(i int, row Row) {
			defer wg.Done()
			results[i] = d.lookupOne(ctx, row)
		}(i, row)
	}
	wg.Wait()
	var out []Row
	for _, rs := range results {
		out = append(out, rs...)
	}
	return out
}

// errorRow emits the input row with every lookup column set to errVal.
// Source transport failures land here so they surface as per-cell Error
// values; a lookup can never terminate the stream.
func (s *LookupStage) errorRow(row Row, errVal Value) []Row {
	out := row.Clone()
	for i := 0; i < len(s.FieldOutput); i++ {
		out = append(out, errVal)
	}
	return []Row{out}
}

func (d *lookupDataSet) lookupOne(ctx context.Context, row Row) []Row {
	s := d.stage
	key := s.Key.Eval(row)
	n := len(s.FieldOutput)
	if key.IsError() {
		return s.errorRow(row, key)
	}

	switch s.Kind {
	case JoinSingle:
		fields, err := s.Source.Lookup(ctx, key, s.FieldNames)
		if err != nil {
			return s.errorRow(row, NewError(ErrExternal, "lookup %s: %v", s.SourceName, err))
		}
		out := row.Clone()
		out = append(out, castFields(fields, s.outSchema, len(row))...)
		return []Row{out}

	case JoinLeftInner:
		matches, err := s.Source.Join(ctx, key, s.FieldNames)
		if err != nil {
			return s.errorRow(row, NewError(ErrExternal, "lookup %s: %v", s.SourceName, err))
		}
		rows := make([]Row, 0, len(matches))
		for _, m := range matches {
			out := row.Clone()
			out = append(out, castFields(m, s.outSchema, len(row))...)
			rows = append(rows, out)
		}
		return rows

	default: // JoinLeftOuter
		matches, err := s.Source.Join(ctx, key, s.FieldNames)
		if err != nil {
			return s.errorRow(row, NewError(ErrExternal, "lookup %s: %v", s.SourceName, err))
		}
		if len(matches) == 0 {
			nulls := make([]Value, n)
			for i := range nulls {
				nulls[i] = Null
			}
			matches = [][]Value{nulls}
		}
		rows := make([]Row, 0, len(matches))
		for _, m := range matches {
			out := row.Clone()
			out = append(out, castFields(m, s.outSchema, len(row))...)
			rows = append(rows, out)
		}
		return rows
	}
}

func castFields(fields []Value, schema Schema, baseOffset int) []Value {
	out := make([]Value, len(fields))
	for i, v := range fields {
		col := schema.Columns[baseOffset+i]
		out[i] = v.CastTo(col.Type)
	}
	return out
}
