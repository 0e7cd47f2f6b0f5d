package rowflow

import "testing"

func TestExplodeStage(t *testing.T) {
	schema, err := NewSchema(Column{Name: "a", Type: TypeInt}, Column{Name: "b", Type: TypeArray})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	stage, buildErr := NewExplodeStage(schema, "b", TypeInt)
	if buildErr != nil {
		t.Fatalf("NewExplodeStage: %v", buildErr)
	}

	t.Run("empty array drops the row, non-empty array fans out one row per element", func(t *testing.T) {
		ds := NewSliceDataSet(schema, []Row{
			{NewInt(10), NewArray([]Value{NewInt(1), NewInt(2), NewInt(3)})},
			{NewInt(20), NewArray(nil)},
			{NewInt(30), NewArray([]Value{NewInt(4)})},
		})
		rows := drainAll(t, stage.Apply(ds))
		want := [][2]int64{{10, 1}, {10, 2}, {10, 3}, {30, 4}}
		if len(rows) != len(want) {
			t.Fatalf("got %d rows, want %d: %v", len(rows), len(want), rows)
		}
		for i, w := range want {
			a, _ := rows[i][0].GetLong()
			b, _ := rows[i][1].GetLong()
			if a != w[0] || b != w[1] {
				t.Fatalf("row %d = (%d,%d), want (%d,%d)", i, a, b, w[0], w[1])
			}
		}
	})

	t.Run("non-array column becomes a single Error row, the rest of the row intact", func(t *testing.T) {
		ds := NewSliceDataSet(schema, []Row{
			{NewInt(99), NewInt(5)},
		})
		rows := drainAll(t, stage.Apply(ds))
		if len(rows) != 1 {
			t.Fatalf("got %d rows, want 1", len(rows))
		}
		a, errv := rows[0][0].GetLong()
		if errv.IsError() || a != 99 {
			t.Fatalf("column a = %v, %v, want untouched 99", a, errv)
		}
		if !rows[0][1].IsError() {
			t.Fatalf("column b = %v, want Error", rows[0][1])
		}
	})

	t.Run("unknown column is a build error", func(t *testing.T) {
		if _, err := NewExplodeStage(schema, "zzz", TypeInt); err == nil {
			t.Fatalf("expected ColumnNotFound")
		}
	})

	t.Run("Dump round-trips column and type", func(t *testing.T) {
		if got := stage.Dump(); got != "explode b as int" {
			t.Fatalf("Dump() = %q, want %q", got, "explode b as int")
		}
	})
}
