package rowflow

import (
	"context"
	"testing"
)

func intSchema(t *testing.T, names ...string) Schema {
	t.Helper()
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n, Type: TypeInt}
	}
	s, err := NewSchema(cols...)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	return s
}

func colExpr(t *testing.T, schema Schema, name string) Expr {
	t.Helper()
	e, err := NewColumnExpr(schema, name, Position{})
	if err != nil {
		t.Fatalf("NewColumnExpr(%q): %v", name, err)
	}
	return e
}

func drainAll(t *testing.T, ds DataSet) []Row {
	t.Helper()
	rows, err := Drain(context.Background(), ds)
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	return rows
}

func TestWhereStage(t *testing.T) {
	schema := intSchema(t, "x")
	cond, err := NewBinaryExpr(">", colExpr(t, schema, "x"), NewLiteralExpr(NewInt(1), "1"), Position{})
	if err != nil {
		t.Fatalf("NewBinaryExpr: %v", err)
	}
	stage, buildErr := NewWhereStage(schema, cond)
	if buildErr != nil {
		t.Fatalf("NewWhereStage: %v", buildErr)
	}

	ds := NewSliceDataSet(schema, []Row{{NewInt(1)}, {NewInt(2)}, {NewInt(3)}})
	rows := drainAll(t, stage.Apply(ds))
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	t.Run("rejects non-bool predicate at build time", func(t *testing.T) {
		if _, err := NewWhereStage(schema, colExpr(t, schema, "x")); err == nil {
			t.Fatalf("expected build error for int predicate")
		}
	})

	t.Run("Dump renders the parenthesised predicate", func(t *testing.T) {
		if got := stage.Dump(); got != "where (x > 1)" {
			t.Fatalf("Dump() = %q, want %q", got, "where (x > 1)")
		}
	})
}

func TestIgnoreErrorStage(t *testing.T) {
	schema := intSchema(t, "x")
	stage := NewIgnoreErrorStage()
	ds := NewSliceDataSet(schema, []Row{
		{NewInt(1)},
		{NewError(ErrInvalidValue, "boom")},
		{NewInt(3)},
	})
	rows := drainAll(t, stage.Apply(ds))
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if got := stage.Dump(); got != "ignore-error" {
		t.Fatalf("Dump() = %q, want %q", got, "ignore-error")
	}
}
