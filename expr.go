package rowflow

// Expr is an evaluatable node in an expression tree: a column reference, a
// literal, or an operator/function call over sub-expressions. Expr.Eval is
// synchronous, per-row, and total: errors are values, not Go errors.
type Expr interface {
	// Eval evaluates the expression against row, returning a Value (which
	// may itself be an Error value).
	Eval(row Row) Value
	// OutputType returns the static type this expression produces given the
	// input schema, used at build time to size the output Schema and catch
	// arity/type contradictions early.
	OutputType(schema Schema) (ValueType, *BuildError)
	// Dump renders the expression back to DSL text.
	Dump() string
}

// ColumnExpr reads row[Index]. The parser/builder guarantees Index is in
// range for any schema the expression was built against; an out-of-range
// index at Eval time is a program invariant violation.
type ColumnExpr struct {
	ColName string
	Index   int
	ColType ValueType
}

func (c *ColumnExpr) Eval(row Row) Value {
	if c.Index < 0 || c.Index >= len(row) {
		return NewError(ErrColumnNotFound, "column %q (index %d) out of range for row of length %d", c.ColName, c.Index, len(row))
	}
	return row[c.Index]
}

func (c *ColumnExpr) OutputType(Schema) (ValueType, *BuildError) { return c.ColType, nil }
func (c *ColumnExpr) Dump() string                               { return c.ColName }

// LiteralExpr is a constant value.
type LiteralExpr struct {
	Val  Value
	Text string // original DSL text, used by Dump for a faithful round trip
}

func (l *LiteralExpr) Eval(Row) Value { return l.Val }
func (l *LiteralExpr) OutputType(Schema) (ValueType, *BuildError) {
	return ValueTypeOf(l.Val), nil
}
func (l *LiteralExpr) Dump() string { return l.Text }

// OperatorExpr evaluates each argument, short-circuiting on the first
// Error argument, then calls the operator.
type OperatorExpr struct {
	Op   Operator
	Args []Expr
}

func (o *OperatorExpr) Eval(row Row) Value {
	args := make([]Value, len(o.Args))
	for i, a := range o.Args {
		v := a.Eval(row)
		if v.IsError() {
			return v
		}
		args[i] = v
	}
	return o.Op.Eval(args)
}

func (o *OperatorExpr) OutputType(schema Schema) (ValueType, *BuildError) {
	argTypes := make([]ValueType, len(o.Args))
	for i, a := range o.Args {
		t, err := a.OutputType(schema)
		if err != nil {
			return 0, err
		}
		argTypes[i] = t
	}
	return o.Op.OutputType(argTypes)
}

func (o *OperatorExpr) Dump() string { return o.Op.Dump(o.Args) }

// FuncCallExpr evaluates each argument (short-circuiting on Error, same as
// OperatorExpr) and then invokes a registered Function.
type FuncCallExpr struct {
	FuncName string
	Fn       Function
	Args     []Expr
}

func (f *FuncCallExpr) Eval(row Row) Value {
	args := make([]Value, len(f.Args))
	for i, a := range f.Args {
		v := a.Eval(row)
		if v.IsError() {
			return v
		}
		args[i] = v
	}
	return f.Fn.Eval(args)
}

func (f *FuncCallExpr) OutputType(schema Schema) (ValueType, *BuildError) {
	argTypes := make([]ValueType, len(f.Args))
	for i, a := range f.Args {
		t, err := a.OutputType(schema)
		if err != nil {
			return 0, err
		}
		argTypes[i] = t
	}
	return f.Fn.OutputType(argTypes)
}

func (f *FuncCallExpr) Dump() string {
	out := f.FuncName + "("
	for i, a := range f.Args {
		if i > 0 {
			out += ", "
		}
		out += a.Dump()
	}
	return out + ")"
}
