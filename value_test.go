package rowflow

import (
	"testing"
	"time"
)

func TestValueConstructorsAndPredicates(t *testing.T) {
	t.Run("Null is Null", func(t *testing.T) {
		if !Null.IsNull() {
			t.Fatalf("Null.IsNull() = false")
		}
		if Null.IsError() {
			t.Fatalf("Null.IsError() = true")
		}
	})

	t.Run("NewBool", func(t *testing.T) {
		v := NewBool(true)
		if ValueTypeOf(v) != TypeBool {
			t.Fatalf("type = %s, want bool", ValueTypeOf(v))
		}
		b, errv := v.GetBool()
		if !b || errv.IsError() {
			t.Fatalf("GetBool() = %v, %v", b, errv)
		}
	})

	t.Run("NewInt and NewLong widen through GetLong", func(t *testing.T) {
		i := NewInt(7)
		l := NewLong(9000000000)
		iv, errv := i.GetLong()
		if errv.IsError() || iv != 7 {
			t.Fatalf("GetLong(int) = %d, %v", iv, errv)
		}
		lv, errv := l.GetLong()
		if errv.IsError() || lv != 9000000000 {
			t.Fatalf("GetLong(long) = %d, %v", lv, errv)
		}
	})

	t.Run("GetLong truncates Float and Double", func(t *testing.T) {
		fv, errv := NewFloat(2.75).GetLong()
		if errv.IsError() || fv != 2 {
			t.Fatalf("GetLong(float 2.75) = %d, %v, want 2", fv, errv)
		}
		dv, errv := NewDouble(-3.9).GetLong()
		if errv.IsError() || dv != -3 {
			t.Fatalf("GetLong(double -3.9) = %d, %v, want -3", dv, errv)
		}
		if _, errv := NewString("5").GetLong(); !errv.IsError() {
			t.Fatalf("GetLong(string) should be an Error")
		}
	})

	t.Run("GetDouble widens all four numeric types", func(t *testing.T) {
		cases := []Value{NewInt(2), NewLong(3), NewFloat(4.5), NewDouble(6.25)}
		want := []float64{2, 3, 4.5, 6.25}
		for i, v := range cases {
			got, errv := v.GetDouble()
			if errv.IsError() || got != want[i] {
				t.Fatalf("case %d: GetDouble() = %v, %v, want %v", i, got, errv, want[i])
			}
		}
	})

	t.Run("GetBool on non-bool is a type mismatch error", func(t *testing.T) {
		_, errv := NewInt(1).GetBool()
		if !errv.IsError() {
			t.Fatalf("expected error, got %v", errv)
		}
		if errv.AsError().Kind != ErrTypeMismatch {
			t.Fatalf("kind = %s, want %s", errv.AsError().Kind, ErrTypeMismatch)
		}
	})

	t.Run("NewString and GetString", func(t *testing.T) {
		v := NewString("hello")
		s, errv := v.GetString()
		if errv.IsError() || s != "hello" {
			t.Fatalf("GetString() = %q, %v", s, errv)
		}
	})

	t.Run("NewDateTime normalizes to UTC", func(t *testing.T) {
		loc := time.FixedZone("test", 3600)
		local := time.Date(2024, 3, 1, 12, 0, 0, 0, loc)
		v := NewDateTime(local)
		got, errv := v.GetDateTime()
		if errv.IsError() {
			t.Fatalf("GetDateTime() error: %v", errv)
		}
		if got.Location() != time.UTC {
			t.Fatalf("location = %v, want UTC", got.Location())
		}
		if !got.Equal(local) {
			t.Fatalf("instant changed: got %v, want %v", got, local)
		}
	})

	t.Run("NewArray copies its input slice", func(t *testing.T) {
		src := []Value{NewInt(1), NewInt(2)}
		v := NewArray(src)
		src[0] = NewInt(99)
		got, errv := v.GetArray()
		if errv.IsError() {
			t.Fatalf("GetArray() error: %v", errv)
		}
		if n, _ := got[0].GetLong(); n != 1 {
			t.Fatalf("array mutated through source slice: got[0] = %d", n)
		}
	})

	t.Run("GetArray result is itself a copy", func(t *testing.T) {
		v := NewArray([]Value{NewInt(1)})
		got, _ := v.GetArray()
		got[0] = NewInt(42)
		again, _ := v.GetArray()
		if n, _ := again[0].GetLong(); n != 1 {
			t.Fatalf("mutating a GetArray() result changed the Value: %d", n)
		}
	})

	t.Run("NewObject preserves insertion order and last-write-wins value", func(t *testing.T) {
		v := NewObject(
			KV{Key: "b", Value: NewInt(1)},
			KV{Key: "a", Value: NewInt(2)},
			KV{Key: "b", Value: NewInt(3)},
		)
		keys := v.ObjectKeys()
		if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
			t.Fatalf("ObjectKeys() = %v, want [b a]", keys)
		}
		got := v.GetObjectField("b")
		if n, _ := got.GetLong(); n != 3 {
			t.Fatalf("field b = %d, want 3 (last write wins)", n)
		}
	})

	t.Run("GetObjectField missing key yields Null", func(t *testing.T) {
		v := NewObject(KV{Key: "a", Value: NewInt(1)})
		got := v.GetObjectField("missing")
		if !got.IsNull() {
			t.Fatalf("missing field = %v, want Null", got)
		}
	})

	t.Run("GetObjectField on non-object is an error", func(t *testing.T) {
		got := NewInt(1).GetObjectField("a")
		if !got.IsError() {
			t.Fatalf("expected error, got %v", got)
		}
	})

	t.Run("ObjectKeys on non-object is nil", func(t *testing.T) {
		if keys := NewInt(1).ObjectKeys(); keys != nil {
			t.Fatalf("ObjectKeys() = %v, want nil", keys)
		}
	})

	t.Run("NewError and AsError", func(t *testing.T) {
		v := NewError(ErrInvalidValue, "bad value %d", 42)
		if !v.IsError() {
			t.Fatalf("expected error value")
		}
		e := v.AsError()
		if e.Kind != ErrInvalidValue {
			t.Fatalf("kind = %s, want %s", e.Kind, ErrInvalidValue)
		}
		if e.Message != "bad value 42" {
			t.Fatalf("message = %q", e.Message)
		}
	})

	t.Run("AsError on non-error is nil", func(t *testing.T) {
		if NewInt(1).AsError() != nil {
			t.Fatalf("expected nil")
		}
	})
}

func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null, "null"},
		{"bool", NewBool(true), "true"},
		{"int", NewInt(7), "7"},
		{"long", NewLong(9), "9"},
		{"string", NewString("hi"), "hi"},
		{"error", NewError(ErrInvalidValue, "oops"), "InvalidValue: oops"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
