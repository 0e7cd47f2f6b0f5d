package rowflow

import "testing"

func TestColumnExpr(t *testing.T) {
	schema, err := NewSchema(Column{Name: "a", Type: TypeInt}, Column{Name: "b", Type: TypeString})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("resolves and evaluates", func(t *testing.T) {
		e, buildErr := NewColumnExpr(schema, "b", Position{})
		if buildErr != nil {
			t.Fatalf("unexpected build error: %v", buildErr)
		}
		row := Row{NewInt(1), NewString("hi")}
		got := e.Eval(row)
		s, _ := got.GetString()
		if s != "hi" {
			t.Fatalf("Eval() = %q, want %q", s, "hi")
		}
		if got := e.Dump(); got != "b" {
			t.Fatalf("Dump() = %q, want %q", got, "b")
		}
	})

	t.Run("unknown column is a build error", func(t *testing.T) {
		_, buildErr := NewColumnExpr(schema, "zzz", Position{})
		if buildErr == nil || buildErr.Kind != ErrColumnNotFound {
			t.Fatalf("expected ColumnNotFound, got %v", buildErr)
		}
	})

	t.Run("out-of-range index at eval time yields Error, not a panic", func(t *testing.T) {
		e := &ColumnExpr{ColName: "a", Index: 5, ColType: TypeInt}
		got := e.Eval(Row{NewInt(1)})
		if !got.IsError() || got.AsError().Kind != ErrColumnNotFound {
			t.Fatalf("Eval() = %v, want ColumnNotFound error", got)
		}
	})
}

func TestLiteralExpr(t *testing.T) {
	e := NewLiteralExpr(NewInt(42), "42")
	if got := e.Eval(nil); !Equal(got, NewInt(42)) {
		t.Fatalf("Eval() = %v, want 42", got)
	}
	if got := e.Dump(); got != "42" {
		t.Fatalf("Dump() = %q, want %q", got, "42")
	}
	typ, err := e.OutputType(Schema{})
	if err != nil || typ != TypeInt {
		t.Fatalf("OutputType() = %v, %v, want int", typ, err)
	}
}

func TestOperatorExprShortCircuit(t *testing.T) {
	errExpr := lit(NewError(ErrInvalidValue, "boom"), "bad")
	okExpr := lit(NewInt(1), "1")
	e := &OperatorExpr{Op: opAdd, Args: []Expr{errExpr, okExpr}}
	got := e.Eval(nil)
	if !got.IsError() || got.AsError().Kind != ErrInvalidValue {
		t.Fatalf("Eval() = %v, want the first arg's error to propagate unchanged", got)
	}
}

func TestFuncCallExprShortCircuit(t *testing.T) {
	bctx := NewBuildContext()
	fn, ok := bctx.LookupFunction("abs")
	if !ok {
		t.Fatalf("abs not registered")
	}
	errExpr := lit(NewError(ErrInvalidValue, "boom"), "bad")
	e := &FuncCallExpr{FuncName: "abs", Fn: fn, Args: []Expr{errExpr}}
	got := e.Eval(nil)
	if !got.IsError() || got.AsError().Kind != ErrInvalidValue {
		t.Fatalf("Eval() = %v, want the arg's error to propagate unchanged", got)
	}
	if got := e.Dump(); got != "abs(bad)" {
		t.Fatalf("Dump() = %q, want %q", got, "abs(bad)")
	}
}
