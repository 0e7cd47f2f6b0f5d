package rowflow

import (
	"math"
	"testing"
)

// evalFn resolves name against a fresh build context's function table and
// evaluates it directly, the way FuncCallExpr would after its own
// short-circuit pass.
func evalFn(t *testing.T, name string, args ...Value) Value {
	t.Helper()
	bctx := NewBuildContext()
	fn, ok := bctx.LookupFunction(name)
	if !ok {
		t.Fatalf("function %q not registered", name)
	}
	return fn.Eval(args)
}

func wantDouble(t *testing.T, got Value, want float64) {
	t.Helper()
	d, e := got.GetDouble()
	if e.IsError() {
		t.Fatalf("got %v, want %g", got, want)
	}
	if math.Abs(d-want) > 1e-9 {
		t.Fatalf("got %g, want %g", d, want)
	}
}

func wantLong(t *testing.T, got Value, want int64) {
	t.Helper()
	l, e := got.GetLong()
	if e.IsError() {
		t.Fatalf("got %v, want %d", got, want)
	}
	if l != want {
		t.Fatalf("got %d, want %d", l, want)
	}
}

func wantBool(t *testing.T, got Value, want bool) {
	t.Helper()
	b, e := got.GetBool()
	if e.IsError() {
		t.Fatalf("got %v, want %t", got, want)
	}
	if b != want {
		t.Fatalf("got %t, want %t", b, want)
	}
}

func wantString(t *testing.T, got Value, want string) {
	t.Helper()
	s, e := got.GetString()
	if e.IsError() {
		t.Fatalf("got %v, want %q", got, want)
	}
	if s != want {
		t.Fatalf("got %q, want %q", s, want)
	}
}

func TestMathFunctions(t *testing.T) {
	cases := []struct {
		name string
		args []Value
		want float64
	}{
		{"abs", []Value{NewInt(-3)}, 3},
		{"ceil", []Value{NewDouble(1.2)}, 2},
		{"floor", []Value{NewDouble(1.8)}, 1},
		{"round", []Value{NewDouble(2.5)}, 3},
		{"sign", []Value{NewDouble(-7)}, -1},
		{"sqrt", []Value{NewInt(16)}, 4},
		{"cbrt", []Value{NewInt(27)}, 3},
		{"exp", []Value{NewInt(0)}, 1},
		{"ln", []Value{NewDouble(math.E)}, 1},
		{"log10", []Value{NewInt(1000)}, 3},
		{"log2", []Value{NewInt(8)}, 3},
		{"pow", []Value{NewInt(2), NewInt(10)}, 1024},
		{"hypot", []Value{NewInt(3), NewInt(4)}, 5},
		{"sin", []Value{NewInt(0)}, 0},
		{"cos", []Value{NewInt(0)}, 1},
		{"atan2", []Value{NewInt(0), NewInt(1)}, 0},
		{"degrees", []Value{NewDouble(math.Pi)}, 180},
		{"radians", []Value{NewDouble(180)}, math.Pi},
		{"mod", []Value{NewInt(7), NewInt(3)}, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			wantDouble(t, evalFn(t, c.name, c.args...), c.want)
		})
	}

	t.Run("constants", func(t *testing.T) {
		wantDouble(t, evalFn(t, "pi"), math.Pi)
		wantDouble(t, evalFn(t, "e"), math.E)
		wantDouble(t, evalFn(t, "tau"), 2*math.Pi)
	})

	t.Run("non-numeric argument is an Error", func(t *testing.T) {
		if !evalFn(t, "sqrt", NewString("nope")).IsError() {
			t.Fatalf("sqrt(string) should be Error")
		}
	})

	t.Run("Error input short-circuits", func(t *testing.T) {
		errVal := NewError(ErrInvalidValue, "boom")
		got := evalFn(t, "abs", errVal)
		if !got.IsError() {
			t.Fatalf("abs(Error) = %v, want Error", got)
		}
	})

	t.Run("wrong arity is an Error, not a panic", func(t *testing.T) {
		if !evalFn(t, "pow", NewInt(2)).IsError() {
			t.Fatalf("pow with 1 arg should be Error")
		}
	})
}

func TestBitBoolFunctions(t *testing.T) {
	wantLong(t, evalFn(t, "bit_and", NewLong(0b1100), NewLong(0b1010)), 0b1000)
	wantLong(t, evalFn(t, "bit_or", NewLong(0b1100), NewLong(0b1010)), 0b1110)
	wantLong(t, evalFn(t, "bit_xor", NewLong(0b1100), NewLong(0b1010)), 0b0110)
	wantLong(t, evalFn(t, "bit_not", NewLong(0)), -1)
	wantLong(t, evalFn(t, "bit_count", NewLong(0b1011)), 3)
	wantLong(t, evalFn(t, "bit_get", NewLong(0b100), NewLong(2)), 1)
	wantLong(t, evalFn(t, "bit_length", NewString("ab")), 16)
	wantLong(t, evalFn(t, "shiftleft", NewLong(1), NewLong(4)), 16)
	wantLong(t, evalFn(t, "shiftright", NewLong(16), NewLong(4)), 1)
	wantLong(t, evalFn(t, "shiftrightunsigned", NewLong(-1), NewLong(63)), 1)

	wantBool(t, evalFn(t, "bool_and", NewBool(true), NewBool(true)), true)
	wantBool(t, evalFn(t, "bool_and", NewBool(true), NewBool(false)), false)
	wantBool(t, evalFn(t, "every", NewBool(true), NewBool(true), NewBool(true)), true)
	wantBool(t, evalFn(t, "bool_or", NewBool(false), NewBool(true)), true)

	t.Run("coalesce picks the first non-null", func(t *testing.T) {
		wantLong(t, evalFn(t, "coalesce", Null, Null, NewLong(3)), 3)
		if !evalFn(t, "coalesce", Null, Null).IsNull() {
			t.Fatalf("coalesce of all nulls should be Null")
		}
	})

	t.Run("ifnull / nvl / nvl2 / nullif", func(t *testing.T) {
		wantLong(t, evalFn(t, "ifnull", Null, NewLong(9)), 9)
		wantLong(t, evalFn(t, "ifnull", NewLong(1), NewLong(9)), 1)
		wantLong(t, evalFn(t, "nvl", Null, NewLong(5)), 5)
		wantLong(t, evalFn(t, "nvl2", NewLong(1), NewLong(2), NewLong(3)), 2)
		wantLong(t, evalFn(t, "nvl2", Null, NewLong(2), NewLong(3)), 3)
		if !evalFn(t, "nullif", NewLong(4), NewLong(4)).IsNull() {
			t.Fatalf("nullif(4, 4) should be Null")
		}
		wantLong(t, evalFn(t, "nullif", NewLong(4), NewLong(5)), 4)
	})

	t.Run("if", func(t *testing.T) {
		wantLong(t, evalFn(t, "if", NewBool(true), NewLong(1), NewLong(2)), 1)
		wantLong(t, evalFn(t, "if", NewBool(false), NewLong(1), NewLong(2)), 2)
		if !evalFn(t, "if", NewLong(1), NewLong(1), NewLong(2)).IsError() {
			t.Fatalf("if with non-bool condition should be Error")
		}
	})
}
