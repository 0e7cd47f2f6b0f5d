package rowflow

import "testing"

func TestNewSchema(t *testing.T) {
	t.Run("accepts unique names", func(t *testing.T) {
		s, err := NewSchema(Column{Name: "a", Type: TypeInt}, Column{Name: "b", Type: TypeString})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Len() != 2 {
			t.Fatalf("Len() = %d, want 2", s.Len())
		}
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		_, err := NewSchema(Column{Name: "a", Type: TypeInt}, Column{Name: "a", Type: TypeString})
		if err == nil {
			t.Fatalf("expected error for duplicate column")
		}
		if err.Kind != ErrColumnAlreadyExists {
			t.Fatalf("kind = %s, want %s", err.Kind, ErrColumnAlreadyExists)
		}
	})
}

func TestSchemaLookups(t *testing.T) {
	s, err := NewSchema(
		Column{Name: "a", Type: TypeInt},
		Column{Name: "b", Type: TypeString},
		Column{Name: "c", Type: TypeBool},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("IndexOf", func(t *testing.T) {
		if i := s.IndexOf("b"); i != 1 {
			t.Fatalf("IndexOf(b) = %d, want 1", i)
		}
		if i := s.IndexOf("missing"); i != -1 {
			t.Fatalf("IndexOf(missing) = %d, want -1", i)
		}
	})

	t.Run("Column", func(t *testing.T) {
		col, ok := s.Column("c")
		if !ok || col.Type != TypeBool {
			t.Fatalf("Column(c) = %v, %v", col, ok)
		}
		if _, ok := s.Column("missing"); ok {
			t.Fatalf("Column(missing) ok = true")
		}
	})

	t.Run("Append rejects collisions", func(t *testing.T) {
		if _, err := s.Append(Column{Name: "d", Type: TypeLong}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := s.Append(Column{Name: "a", Type: TypeLong}); err == nil {
			t.Fatalf("expected collision error")
		}
	})

	t.Run("Without drops named columns", func(t *testing.T) {
		out := s.Without("b")
		if out.IndexOf("b") != -1 {
			t.Fatalf("b still present after Without")
		}
		if out.Len() != 2 {
			t.Fatalf("Len() = %d, want 2", out.Len())
		}
	})

	t.Run("Keep preserves schema order, not names order", func(t *testing.T) {
		out, err := s.Keep([]string{"c", "a"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Columns[0].Name != "a" || out.Columns[1].Name != "c" {
			t.Fatalf("Keep order = %v, want [a c]", out.Columns)
		}
	})

	t.Run("Keep rejects unknown column", func(t *testing.T) {
		_, err := s.Keep([]string{"zzz"})
		if err == nil || err.Kind != ErrColumnNotFound {
			t.Fatalf("expected ColumnNotFound, got %v", err)
		}
	})

	t.Run("String renders (name as type, ...)", func(t *testing.T) {
		small, _ := NewSchema(Column{Name: "x", Type: TypeInt})
		if got := small.String(); got != "(x as int)" {
			t.Fatalf("String() = %q, want %q", got, "(x as int)")
		}
	})
}

func TestRow(t *testing.T) {
	t.Run("Clone is independent", func(t *testing.T) {
		r := Row{NewInt(1), NewInt(2)}
		cp := r.Clone()
		cp[0] = NewInt(99)
		if n, _ := r[0].GetLong(); n != 1 {
			t.Fatalf("original row mutated via clone")
		}
	})

	t.Run("At out of range yields Null", func(t *testing.T) {
		r := Row{NewInt(1)}
		if !r.At(5).IsNull() {
			t.Fatalf("At(5) = %v, want Null", r.At(5))
		}
		if !r.At(-1).IsNull() {
			t.Fatalf("At(-1) = %v, want Null", r.At(-1))
		}
	})
}
