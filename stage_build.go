package rowflow

// stage_build.go holds the constructors for the stages that have no
// column-appending schema work to do (where, take, ignore-error, top,
// distinct) plus summarize's aggregator-name resolution, so every stage
// kind the dsl builder drives reports unresolved columns, functions, and
// type contradictions at build time.

// NewWhereStage builds a WhereStage, requiring cond's static type be Bool
// or Dynamic (a Dynamic-typed predicate is checked at eval time instead,
// same as every other dynamically-typed column).
func NewWhereStage(input Schema, cond Expr) (*WhereStage, *BuildError) {
	t, err := cond.OutputType(input)
	if err != nil {
		return nil, err
	}
	if t != TypeBool && t != TypeDynamic {
		return nil, newBuildError(ErrInvalidOperandType, Position{}, "where: predicate must be bool, got %s", t)
	}
	return &WhereStage{Cond: cond}, nil
}

// NewTakeStage builds a TakeStage; n must be non-negative.
func NewTakeStage(n int) (*TakeStage, *BuildError) {
	if n < 0 {
		return nil, newBuildError(ErrInvalidValue, Position{}, "take: count must be >= 0, got %d", n)
	}
	return &TakeStage{Count: n}, nil
}

// NewIgnoreErrorStage builds an IgnoreErrorStage; it has no schema or
// expression to resolve, so it never fails.
func NewIgnoreErrorStage() *IgnoreErrorStage { return &IgnoreErrorStage{} }

// NewTopStage builds a TopStage, requiring criteria to type-check against
// input and n to be positive.
func NewTopStage(input Schema, n int, criteria Expr, order SortOrder, nulls NullPos) (*TopStage, *BuildError) {
	if n <= 0 {
		return nil, newBuildError(ErrInvalidValue, Position{}, "top: count must be > 0, got %d", n)
	}
	if _, err := criteria.OutputType(input); err != nil {
		return nil, err
	}
	return &TopStage{Count: n, Criteria: criteria, Order: order, Nulls: nulls}, nil
}

// NewDistinctStage builds a DistinctStage, requiring every key expression
// to type-check against input.
func NewDistinctStage(input Schema, keys []Expr) (*DistinctStage, *BuildError) {
	if len(keys) == 0 {
		return nil, newBuildError(ErrArity, Position{}, "distinct: at least one key expression is required")
	}
	for _, k := range keys {
		if _, err := k.OutputType(input); err != nil {
			return nil, err
		}
	}
	return &DistinctStage{Keys: keys}, nil
}

// AggSpec is one `name = aggFunc(args...)` summarize aggregator request,
// already resolved to Exprs against the upstream schema.
type AggSpec struct {
	Name    string
	AggFunc string // count, sum, min, max, min_by, max_by, first, last
	Args    []Expr
}

// NewSummarizeStage builds a SummarizeStage from resolved aggregator specs
// and resolved key expressions, producing the agg-columns-then-key-columns
// output schema.
func NewSummarizeStage(input Schema, aggs []AggSpec, keyNames []string, keyExprs []Expr) (*SummarizeStage, *BuildError) {
	s := &SummarizeStage{
		KeyNames: keyNames,
		KeyExprs: keyExprs,
	}
	cols := make([]Column, 0, len(aggs)+len(keyNames))
	for _, spec := range aggs {
		agg, err := buildAggregator(spec)
		if err != nil {
			return nil, err
		}
		t, err := agg.OutputType(nil)
		if err != nil {
			return nil, err
		}
		s.AggNames = append(s.AggNames, spec.Name)
		s.AggFuncs = append(s.AggFuncs, spec.AggFunc)
		s.Aggs = append(s.Aggs, agg)
		s.AggArgs = append(s.AggArgs, spec.Args)
		cols = append(cols, Column{Name: spec.Name, Type: t})
	}
	for i, name := range keyNames {
		t, err := keyExprs[i].OutputType(input)
		if err != nil {
			return nil, err
		}
		cols = append(cols, Column{Name: name, Type: t})
	}
	schema, buildErr := NewSchema(cols...)
	if buildErr != nil {
		return nil, buildErr
	}
	s.outSchema = schema
	return s, nil
}

// buildAggregator resolves an AggSpec's named aggregator function against
// its (already schema-resolved) argument Exprs.
func buildAggregator(spec AggSpec) (Aggregator, *BuildError) {
	switch spec.AggFunc {
	case "count":
		if len(spec.Args) != 0 {
			return nil, newBuildError(ErrArity, Position{}, "count() takes no arguments")
		}
		return countAgg{}, nil
	case "sum":
		if len(spec.Args) != 1 {
			return nil, newBuildError(ErrArity, Position{}, "sum() takes exactly one argument")
		}
		return sumAgg{Arg: spec.Args[0]}, nil
	case "min":
		if len(spec.Args) != 1 {
			return nil, newBuildError(ErrArity, Position{}, "min() takes exactly one argument")
		}
		return minMaxAgg{Arg: spec.Args[0], max: false}, nil
	case "max":
		if len(spec.Args) != 1 {
			return nil, newBuildError(ErrArity, Position{}, "max() takes exactly one argument")
		}
		return minMaxAgg{Arg: spec.Args[0], max: true}, nil
	case "min_by":
		if len(spec.Args) != 2 {
			return nil, newBuildError(ErrArity, Position{}, "min_by() takes exactly two arguments")
		}
		return byAgg{Arg: spec.Args[0], Key: spec.Args[1], max: false}, nil
	case "max_by":
		if len(spec.Args) != 2 {
			return nil, newBuildError(ErrArity, Position{}, "max_by() takes exactly two arguments")
		}
		return byAgg{Arg: spec.Args[0], Key: spec.Args[1], max: true}, nil
	case "first":
		if len(spec.Args) < 1 || len(spec.Args) > 2 {
			return nil, newBuildError(ErrArity, Position{}, "first() takes one or two arguments")
		}
		a := firstLastAgg{Arg: spec.Args[0], last: false}
		if len(spec.Args) == 2 {
			a.IgnoreNulls = spec.Args[1]
		}
		return a, nil
	case "last":
		if len(spec.Args) < 1 || len(spec.Args) > 2 {
			return nil, newBuildError(ErrArity, Position{}, "last() takes one or two arguments")
		}
		a := firstLastAgg{Arg: spec.Args[0], last: true}
		if len(spec.Args) == 2 {
			a.IgnoreNulls = spec.Args[1]
		}
		return a, nil
	default:
		return nil, newBuildError(ErrUnresolvedReference, Position{}, "unknown aggregator %q", spec.AggFunc)
	}
}
