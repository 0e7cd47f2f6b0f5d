package rowflow

import "context"

// Aggregator accumulates one summarize column across the rows of a group.
type Aggregator interface {
	OutputType(inputTypes []ValueType) (ValueType, *BuildError)
	New() AggState
}

// AggState is one running accumulation for one group.
type AggState interface {
	Feed(row Row)
	Result() Value
}

// SummarizeStage groups rows by Keys and feeds each row through each named
// Aggregator, emitting one output row per distinct key combination: agg
// columns first, then key columns.
type SummarizeStage struct {
	AggNames  []string
	AggFuncs  []string
	Aggs      []Aggregator
	AggArgs   [][]Expr
	KeyNames  []string
	KeyExprs  []Expr
	outSchema Schema
}

func (s *SummarizeStage) OutputSchema(Schema) Schema { return s.outSchema }

func (s *SummarizeStage) Dump() string {
	out := "summarize "
	for i, name := range s.AggNames {
		if i > 0 {
			out += ", "
		}
		out += name + " = " + s.AggFuncs[i] + "("
		for j, a := range s.AggArgs[i] {
			if j > 0 {
				out += ", "
			}
			out += a.Dump()
		}
		out += ")"
	}
	out += " by "
	for i, name := range s.KeyNames {
		if i > 0 {
			out += ", "
		}
		out += name + " = " + s.KeyExprs[i].Dump()
	}
	return out
}

type summarizeGroup struct {
	key    Row
	states []aggBinding
}

type aggBinding struct {
	state AggState
	args  []Expr
}

func (s *SummarizeStage) Apply(ds DataSet) DataSet {
	return &summarizeDataSet{upstream: ds, stage: s}
}

type summarizeDataSet struct {
	upstream DataSet
	stage    *SummarizeStage
	rows     []Row
	computed bool
	pos      int
}

func (d *summarizeDataSet) Schema() Schema { return d.stage.outSchema }

func (d *summarizeDataSet) Next(ctx context.Context) (Row, bool, error) {
	if !d.computed {
		d.compute(ctx)
		d.computed = true
	}
	if d.pos >= len(d.rows) {
		return nil, false, nil
	}
	row := d.rows[d.pos]
	d.pos++
	return row, true, nil
}

// compute materialises the upstream into grouped rows. A collection
// failure cannot terminate the stream: it becomes a single row of
// all-Error cells of the output schema's width.
func (d *summarizeDataSet) compute(ctx context.Context) {
	s := d.stage
	groups := make(map[string]*summarizeGroup)
	var order []string
	for {
		row, ok, err := d.upstream.Next(ctx)
		if err != nil {
			d.rows = []Row{errorRowOfWidth(s.outSchema.Len(), NewError(ErrExternal, "summarize: %v", err))}
			return
		}
		if !ok {
			break
		}
		key := make(Row, len(s.KeyExprs))
		for i, ke := range s.KeyExprs {
			key[i] = ke.Eval(row)
		}
		keyStr := distinctKey(s.KeyExprs, row)
		g, ok := groups[keyStr]
		if !ok {
			g = &summarizeGroup{key: key}
			g.states = make([]aggBinding, len(s.Aggs))
			for i, agg := range s.Aggs {
				g.states[i] = aggBinding{state: agg.New(), args: s.AggArgs[i]}
			}
			groups[keyStr] = g
			order = append(order, keyStr)
		}
		for _, b := range g.states {
			b.state.Feed(row)
		}
	}
	rows := make([]Row, 0, len(order))
	for _, keyStr := range order {
		g := groups[keyStr]
		row := make(Row, len(g.states)+len(g.key))
		for i, b := range g.states {
			row[i] = b.state.Result()
		}
		copy(row[len(g.states):], g.key)
		rows = append(rows, row)
	}
	d.rows = rows
}

// ---- built-in aggregators -------------------------------------------------

type countAgg struct{}

func (countAgg) OutputType([]ValueType) (ValueType, *BuildError) { return TypeLong, nil }
func (countAgg) New() AggState                                   { return &countState{} }

type countState struct{ n int64 }

func (s *countState) Feed(Row)      { s.n++ }
func (s *countState) Result() Value { return NewLong(s.n) }

type sumAgg struct{ Arg Expr }

func (a sumAgg) OutputType(inputTypes []ValueType) (ValueType, *BuildError) { return TypeDouble, nil }
func (a sumAgg) New() AggState                                              { return &sumState{arg: a.Arg} }

type sumState struct {
	arg Expr
	sum float64
	any bool
}

func (s *sumState) Feed(row Row) {
	v := s.arg.Eval(row)
	if f, e := v.GetDouble(); !e.IsError() {
		s.sum += f
		s.any = true
	}
}
func (s *sumState) Result() Value {
	if !s.any {
		return NewDouble(0)
	}
	return NewDouble(s.sum)
}

type minMaxAgg struct {
	Arg Expr
	max bool
}

func (a minMaxAgg) OutputType(inputTypes []ValueType) (ValueType, *BuildError) { return TypeDynamic, nil }
func (a minMaxAgg) New() AggState {
	return &minMaxState{arg: a.Arg, max: a.max}
}

type minMaxState struct {
	arg  Expr
	max  bool
	best Value
	set  bool
}

func (s *minMaxState) Feed(row Row) {
	v := s.arg.Eval(row)
	if !s.set {
		s.best, s.set = v, true
		return
	}
	ord := Compare(v, s.best)
	if (s.max && ord == OrderGreater) || (!s.max && ord == OrderLess) {
		s.best = v
	}
}
func (s *minMaxState) Result() Value {
	if !s.set {
		return Null
	}
	return s.best
}

// byAgg implements min_by/max_by: Arg is the value returned, Key is the
// comparison criterion.
type byAgg struct {
	Arg, Key Expr
	max      bool
}

func (a byAgg) OutputType([]ValueType) (ValueType, *BuildError) { return TypeDynamic, nil }
func (a byAgg) New() AggState                                  { return &byState{arg: a.Arg, key: a.Key, max: a.max} }

type byState struct {
	arg, key Expr
	max      bool
	bestKey  Value
	bestVal  Value
	set      bool
}

func (s *byState) Feed(row Row) {
	k := s.key.Eval(row)
	v := s.arg.Eval(row)
	if !s.set {
		s.bestKey, s.bestVal, s.set = k, v, true
		return
	}
	ord := Compare(k, s.bestKey)
	if (s.max && ord == OrderGreater) || (!s.max && ord == OrderLess) {
		s.bestKey, s.bestVal = k, v
	}
}
func (s *byState) Result() Value {
	if !s.set {
		return Null
	}
	return s.bestVal
}

// firstLastAgg implements first/last, with an optional "ignore nulls" arg.
type firstLastAgg struct {
	Arg         Expr
	IgnoreNulls Expr
	last        bool
}

func (a firstLastAgg) OutputType([]ValueType) (ValueType, *BuildError) { return TypeDynamic, nil }
func (a firstLastAgg) New() AggState {
	return &firstLastState{arg: a.Arg, ignoreNulls: a.IgnoreNulls, last: a.last}
}

type firstLastState struct {
	arg, ignoreNulls Expr
	last             bool
	val              Value
	set              bool
}

func (s *firstLastState) Feed(row Row) {
	v := s.arg.Eval(row)
	if s.ignoreNulls != nil {
		ignore := s.ignoreNulls.Eval(row)
		if b, ok := asBool(ignore); ok && b && v.IsNull() {
			return
		}
	}
	if s.last {
		s.val, s.set = v, true
		return
	}
	if !s.set {
		s.val, s.set = v, true
	}
}
func (s *firstLastState) Result() Value {
	if !s.set {
		return Null
	}
	return s.val
}
