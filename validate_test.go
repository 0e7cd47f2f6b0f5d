package rowflow

import (
	"context"
	"testing"
)

func TestValidate(t *testing.T) {
	schema, err := NewSchema(Column{Name: "x", Type: TypeInt}, Column{Name: "y", Type: TypeBool})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}

	t.Run("already-matching types pass through untouched", func(t *testing.T) {
		ds := NewSliceDataSet(schema, []Row{{NewInt(1), NewBool(true)}})
		rows := drainAll(t, Validate(ds, schema, Strict))
		x, _ := rows[0][0].GetLong()
		y, _ := rows[0][1].GetBool()
		if x != 1 || !y {
			t.Fatalf("row = (%d,%v), want (1,true)", x, y)
		}
	})

	t.Run("short rows are right-padded with ValidationError", func(t *testing.T) {
		ds := NewSliceDataSet(schema, []Row{{NewInt(1)}})
		rows := drainAll(t, Validate(ds, schema, Strict))
		if !rows[0][1].IsError() || rows[0][1].AsError().Kind != ErrValidationError {
			t.Fatalf("missing column = %v, want ValidationError", rows[0][1])
		}
	})

	t.Run("long rows are truncated to schema length", func(t *testing.T) {
		ds := NewSliceDataSet(schema, []Row{{NewInt(1), NewBool(true), NewInt(999)}})
		rows := drainAll(t, Validate(ds, schema, Strict))
		if len(rows[0]) != 2 {
			t.Fatalf("row length = %d, want 2", len(rows[0]))
		}
	})

	t.Run("Strict mode casting a non-bool string to bool yields an Error cell, not a halted row", func(t *testing.T) {
		ds := NewSliceDataSet(schema, []Row{{NewInt(4), NewString("oops")}})
		rows := drainAll(t, Validate(ds, schema, Strict))
		if len(rows) != 1 {
			t.Fatalf("got %d rows, want 1 (validation never drops rows)", len(rows))
		}
		if !rows[0][1].IsError() || rows[0][1].AsError().Kind != ErrInvalidTypeCast {
			t.Fatalf("y = %v, want InvalidTypeCast error", rows[0][1])
		}
	})

	t.Run("Lenient mode uses ConvertTo's broader coercion", func(t *testing.T) {
		ds := NewSliceDataSet(schema, []Row{{NewInt(4), NewString("true")}})
		rows := drainAll(t, Validate(ds, schema, Lenient))
		b, errv := rows[0][1].GetBool()
		if errv.IsError() || !b {
			t.Fatalf(`Lenient "true"->bool = %v, %v, want true`, b, errv)
		}
	})

	t.Run("validation is idempotent: revalidating an already-valid row changes nothing", func(t *testing.T) {
		ds := NewSliceDataSet(schema, []Row{{NewInt(1), NewBool(true)}})
		once := Validate(ds, schema, Strict)
		twice := Validate(once, schema, Strict)
		rows, err := Drain(context.Background(), twice)
		if err != nil {
			t.Fatalf("Drain: %v", err)
		}
		x, _ := rows[0][0].GetLong()
		y, _ := rows[0][1].GetBool()
		if x != 1 || !y {
			t.Fatalf("row = (%d,%v), want (1,true)", x, y)
		}
	})

	t.Run("Dynamic target column always passes through unchanged", func(t *testing.T) {
		dynSchema, err := NewSchema(Column{Name: "x", Type: TypeDynamic})
		if err != nil {
			t.Fatalf("NewSchema: %v", err)
		}
		ds := NewSliceDataSet(dynSchema, []Row{{NewString("anything")}})
		rows := drainAll(t, Validate(ds, dynSchema, Strict))
		s, _ := rows[0][0].GetString()
		if s != "anything" {
			t.Fatalf("dynamic column coerced: got %q", s)
		}
	})
}
