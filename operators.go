package rowflow

import (
	"fmt"
	"math"
)

// Operator is the two-method contract every unary/binary/indexing operator
// implements: a build-time output-type check and a per-row evaluator.
// Unlike Function, an Operator's Dump renders infix/prefix syntax rather
// than a call form.
type Operator interface {
	OutputType(argTypes []ValueType) (ValueType, *BuildError)
	Eval(args []Value) Value
	Dump(args []Expr) string
}

// widenNumeric returns the common numeric type two operand types widen to:
// int+int -> int; any mix with Long -> Long; any mix with Float/Double ->
// Double, except Float+Float which stays Float.
func widenNumeric(a, b ValueType) ValueType {
	if a == TypeDouble || b == TypeDouble {
		return TypeDouble
	}
	if a == TypeFloat || b == TypeFloat {
		if a == TypeFloat && b == TypeFloat {
			return TypeFloat
		}
		return TypeDouble
	}
	if a == TypeLong || b == TypeLong {
		return TypeLong
	}
	return TypeInt
}

func mkNumeric(t ValueType, f float64) Value {
	switch t {
	case TypeInt:
		return NewInt(int32(f))
	case TypeLong:
		return NewLong(int64(f))
	case TypeFloat:
		return NewFloat(float32(f))
	default:
		return NewDouble(f)
	}
}

// ---- arithmetic family (+ - * / % div) -------------------------------------

type arithOp struct {
	sym string
	fn  func(a, b float64) (float64, *ValueError)
}

func (o arithOp) OutputType(argTypes []ValueType) (ValueType, *BuildError) {
	if len(argTypes) != 2 {
		return 0, newBuildError(ErrArity, Position{}, "%s expects 2 arguments", o.sym)
	}
	a, b := argTypes[0], argTypes[1]
	if o.sym == "+" && a == TypeString && b == TypeString {
		return TypeString, nil
	}
	if o.sym == "div" || o.sym == "%" {
		return TypeLong, nil
	}
	if !a.IsNumeric() && a != TypeNull || !b.IsNumeric() && b != TypeNull {
		return 0, newBuildError(ErrInvalidOperandType, Position{}, "%s requires numeric operands, got %s and %s", o.sym, a, b)
	}
	return widenNumeric(a, b), nil
}

func (o arithOp) Eval(args []Value) Value {
	a, b := args[0], args[1]
	if o.sym == "+" && a.typ == TypeString && b.typ == TypeString {
		as, _ := a.GetString()
		bs, _ := b.GetString()
		return NewString(as + bs)
	}
	if a.IsNull() || b.IsNull() {
		// Only - * / treat null-on-both-sides as Null; every other
		// operator rejects null operands outright.
		switch o.sym {
		case "-", "*", "/":
			if a.IsNull() && b.IsNull() {
				return Null
			}
			return NewError(ErrInvalidOperandType, "%s does not accept a single null operand", o.sym)
		default:
			return NewError(ErrInvalidOperandType, "%s does not accept null operands", o.sym)
		}
	}
	if !a.typ.IsNumeric() || !b.typ.IsNumeric() {
		return NewError(ErrInvalidOperandType, "%s requires numeric operands, got %s and %s", o.sym, a.typ, b.typ)
	}
	if o.sym == "div" || o.sym == "%" {
		// Both truncate their operands and always return Long.
		al, _ := a.GetLong()
		bl, _ := b.GetLong()
		if bl == 0 {
			return NewError(ErrInvalidValue, "division by zero")
		}
		if o.sym == "div" {
			return NewLong(al / bl)
		}
		return NewLong(al % bl)
	}
	af, _ := a.GetDouble()
	bf, _ := b.GetDouble()
	if o.sym == "/" && bf == 0 {
		return NewError(ErrInvalidValue, "division by zero")
	}
	res, verr := o.fn(af, bf)
	if verr != nil {
		return Value{typ: TypeError, errVal: verr}
	}
	return mkNumeric(widenNumeric(a.typ, b.typ), res)
}

func (o arithOp) Dump(args []Expr) string {
	return fmt.Sprintf("(%s %s %s)", args[0].Dump(), o.sym, args[1].Dump())
}

var (
	opAdd  = arithOp{"+", func(a, b float64) (float64, *ValueError) { return a + b, nil }}
	opSub  = arithOp{"-", func(a, b float64) (float64, *ValueError) { return a - b, nil }}
	opMul  = arithOp{"*", func(a, b float64) (float64, *ValueError) { return a * b, nil }}
	opDiv  = arithOp{"/", func(a, b float64) (float64, *ValueError) { return a / b, nil }}
	opMod  = arithOp{"%", func(a, b float64) (float64, *ValueError) { return math.Mod(a, b), nil }}
	opIDiv = arithOp{"div", func(a, b float64) (float64, *ValueError) { return a / b, nil }}
)

// ---- comparison family ------------------------------------------------

type cmpOp struct {
	sym   string
	match func(Ordering) bool
}

func (o cmpOp) OutputType([]ValueType) (ValueType, *BuildError) { return TypeBool, nil }

func (o cmpOp) Eval(args []Value) Value {
	ord := Compare(args[0], args[1])
	if ord == OrderUnordered {
		if args[0].IsNull() || args[1].IsNull() {
			// Null compares incomparable; only == / != have a defined
			// answer (both false/true respectively never involving null
			// equality beyond null==null handled by Compare already).
			if o.sym == "==" {
				return NewBool(false)
			}
			if o.sym == "!=" || o.sym == "<>" {
				return NewBool(true)
			}
			return NewError(ErrTypeMismatch, "cannot order null against %s", args[1].typ)
		}
		return NewError(ErrTypeMismatch, "cannot compare %s and %s", args[0].typ, args[1].typ)
	}
	return NewBool(o.match(ord))
}

func (o cmpOp) Dump(args []Expr) string {
	return fmt.Sprintf("(%s %s %s)", args[0].Dump(), o.sym, args[1].Dump())
}

var (
	opLt = cmpOp{"<", func(o Ordering) bool { return o == OrderLess }}
	opLe = cmpOp{"<=", func(o Ordering) bool { return o != OrderGreater }}
	opGt = cmpOp{">", func(o Ordering) bool { return o == OrderGreater }}
	opGe = cmpOp{">=", func(o Ordering) bool { return o != OrderLess }}
	opEq = cmpOp{"==", func(o Ordering) bool { return o == OrderEqual }}
	opNe = cmpOp{"!=", func(o Ordering) bool { return o != OrderEqual }}
)

// ---- logical family (and/or/not) ---------------------------------------

type logicalBinOp struct {
	sym string
	and bool
}

func (o logicalBinOp) OutputType(argTypes []ValueType) (ValueType, *BuildError) {
	return TypeBool, nil
}

func (o logicalBinOp) Eval(args []Value) Value {
	a, aok := asBool(args[0])
	b, bok := asBool(args[1])
	if !aok {
		return NewError(ErrInvalidOperandType, "%s requires bool operands", o.sym)
	}
	if !bok {
		return NewError(ErrInvalidOperandType, "%s requires bool operands", o.sym)
	}
	if o.and {
		return NewBool(a && b)
	}
	return NewBool(a || b)
}

func (o logicalBinOp) Dump(args []Expr) string {
	return fmt.Sprintf("(%s %s %s)", args[0].Dump(), o.sym, args[1].Dump())
}

func asBool(v Value) (bool, bool) {
	if v.typ != TypeBool {
		return false, false
	}
	return v.boolVal, true
}

var (
	opAnd = logicalBinOp{"and", true}
	opOr  = logicalBinOp{"or", false}
)

// ---- unary family -------------------------------------------------------

type unaryOp struct {
	sym    string
	eval   func(Value) Value
	out    func(ValueType) (ValueType, *BuildError)
	prefix bool
}

func (o unaryOp) OutputType(argTypes []ValueType) (ValueType, *BuildError) {
	if len(argTypes) != 1 {
		return 0, newBuildError(ErrArity, Position{}, "%s expects 1 argument", o.sym)
	}
	return o.out(argTypes[0])
}

func (o unaryOp) Eval(args []Value) Value { return o.eval(args[0]) }

func (o unaryOp) Dump(args []Expr) string {
	if o.prefix {
		return fmt.Sprintf("(%s %s)", o.sym, args[0].Dump())
	}
	return fmt.Sprintf("(%s %s)", args[0].Dump(), o.sym)
}

var opPlus = unaryOp{
	sym:    "+",
	prefix: true,
	out:    func(t ValueType) (ValueType, *BuildError) { return t, nil },
	eval: func(v Value) Value {
		if !v.typ.IsNumeric() {
			return NewError(ErrInvalidOperandType, "unary + requires a numeric operand")
		}
		return v
	},
}

var opNeg = unaryOp{
	sym:    "-",
	prefix: true,
	out:    func(t ValueType) (ValueType, *BuildError) { return t, nil },
	eval: func(v Value) Value {
		if !v.typ.IsNumeric() {
			return NewError(ErrInvalidOperandType, "unary - requires a numeric operand")
		}
		f, _ := v.GetDouble()
		return mkNumeric(v.typ, -f)
	},
}

var opNot = unaryOp{
	sym:    "not",
	prefix: true,
	out:    func(ValueType) (ValueType, *BuildError) { return TypeBool, nil },
	eval: func(v Value) Value {
		b, ok := asBool(v)
		if !ok {
			return NewError(ErrInvalidOperandType, "not requires a bool operand")
		}
		return NewBool(!b)
	},
}

var opBitNot = unaryOp{
	sym:    "~",
	prefix: true,
	out:    func(t ValueType) (ValueType, *BuildError) { return TypeLong, nil },
	eval: func(v Value) Value {
		l, e := v.GetLong()
		if e.IsError() {
			return e
		}
		return NewLong(^l)
	},
}

var opIsNull = unaryOp{
	sym:    "is null",
	prefix: false,
	out:    func(ValueType) (ValueType, *BuildError) { return TypeBool, nil },
	eval:   func(v Value) Value { return NewBool(v.IsNull()) },
}

var opIsNotNull = unaryOp{
	sym:    "is not null",
	prefix: false,
	out:    func(ValueType) (ValueType, *BuildError) { return TypeBool, nil },
	eval:   func(v Value) Value { return NewBool(!v.IsNull()) },
}

// ---- indexing family (arr[i], obj.key / obj[key]) -----------------------

type indexOp struct{}

func (indexOp) OutputType(argTypes []ValueType) (ValueType, *BuildError) {
	if len(argTypes) != 2 {
		return 0, newBuildError(ErrArity, Position{}, "indexing expects 2 arguments")
	}
	switch argTypes[0] {
	case TypeArray:
		return TypeDynamic, nil
	case TypeObject:
		return TypeDynamic, nil
	case TypeDynamic:
		return TypeDynamic, nil
	default:
		return 0, newBuildError(ErrInvalidOperandType, Position{}, "cannot index into %s", argTypes[0])
	}
}

func (indexOp) Eval(args []Value) Value {
	container, key := args[0], args[1]
	switch container.typ {
	case TypeArray:
		idx, e := key.GetLong()
		if e.IsError() {
			return e
		}
		arr, _ := container.GetArray()
		if idx < 0 || int(idx) >= len(arr) {
			return NewError(ErrInvalidValue, "array index %d out of range (len %d)", idx, len(arr))
		}
		return arr[idx]
	case TypeObject:
		k, e := key.GetString()
		if e.IsError() {
			return e
		}
		return container.GetObjectField(k)
	default:
		return NewError(ErrInvalidOperandType, "cannot index into %s", container.typ)
	}
}

func (indexOp) Dump(args []Expr) string {
	return fmt.Sprintf("%s[%s]", args[0].Dump(), args[1].Dump())
}

var opIndex = indexOp{}

// dotOp is sugar: obj.field reads obj["field"] with a constant key.
type dotOp struct{ field string }

func (d dotOp) OutputType(argTypes []ValueType) (ValueType, *BuildError) {
	if len(argTypes) != 1 {
		return 0, newBuildError(ErrArity, Position{}, "dot access expects 1 argument")
	}
	return TypeDynamic, nil
}

func (d dotOp) Eval(args []Value) Value {
	return opIndex.Eval([]Value{args[0], NewString(d.field)})
}

func (d dotOp) Dump(args []Expr) string { return fmt.Sprintf("%s.%s", args[0].Dump(), d.field) }

// ---- bitwise-and operator (the `&` multiplicative-level token) -----------

type bitAndOp struct{}

func (bitAndOp) OutputType(argTypes []ValueType) (ValueType, *BuildError) {
	if len(argTypes) != 2 {
		return 0, newBuildError(ErrArity, Position{}, "& expects 2 arguments")
	}
	return TypeLong, nil
}

func (bitAndOp) Eval(args []Value) Value {
	a, e := args[0].GetLong()
	if e.IsError() {
		return e
	}
	b, e2 := args[1].GetLong()
	if e2.IsError() {
		return e2
	}
	return NewLong(a & b)
}

func (bitAndOp) Dump(args []Expr) string {
	return fmt.Sprintf("(%s & %s)", args[0].Dump(), args[1].Dump())
}

var opBitAnd = bitAndOp{}
