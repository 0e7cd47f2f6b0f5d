package rowflow

import (
	"testing"
	"time"
)

func TestCastTo(t *testing.T) {
	t.Run("identity is a no-op", func(t *testing.T) {
		v := NewInt(5)
		if got := v.CastTo(TypeInt); got.IsError() {
			t.Fatalf("identity cast errored: %v", got)
		}
	})

	t.Run("Null casts to Null regardless of target", func(t *testing.T) {
		if got := Null.CastTo(TypeString); !got.IsNull() {
			t.Fatalf("Null.CastTo(string) = %v, want Null", got)
		}
	})

	t.Run("Error propagates unchanged", func(t *testing.T) {
		e := NewError(ErrInvalidValue, "boom")
		if got := e.CastTo(TypeInt); !got.IsError() || got.AsError().Kind != ErrInvalidValue {
			t.Fatalf("Error.CastTo(int) = %v, want unchanged error", got)
		}
	})

	t.Run("numeric narrows via truncation", func(t *testing.T) {
		got := NewDouble(3.9).CastTo(TypeInt)
		n, errv := got.GetLong()
		if errv.IsError() || n != 3 {
			t.Fatalf("CastTo(int) = %v, %v, want 3", n, errv)
		}
	})

	t.Run("string to timestamp via DefaultTimestampFormat", func(t *testing.T) {
		got := NewString("2024-05-01 10:30:00").CastTo(TypeDateTime)
		if got.IsError() {
			t.Fatalf("CastTo(timestamp) errored: %v", got)
		}
		if ValueTypeOf(got) != TypeDateTime {
			t.Fatalf("type = %s, want timestamp", ValueTypeOf(got))
		}
	})

	t.Run("string to timestamp falls back to DefaultDateFormat", func(t *testing.T) {
		got := NewString("2024-05-01").CastTo(TypeDateTime)
		if got.IsError() {
			t.Fatalf("CastTo(timestamp) errored: %v", got)
		}
	})

	t.Run("timestamp to string", func(t *testing.T) {
		dt := NewDateTime(mustParseTimestamp(t, "2024-05-01 10:30:00"))
		got := dt.CastTo(TypeString)
		s, errv := got.GetString()
		if errv.IsError() || s != "2024-05-01 10:30:00" {
			t.Fatalf("CastTo(string) = %q, %v", s, errv)
		}
	})

	t.Run("unparseable string to timestamp is InvalidTypeCast", func(t *testing.T) {
		got := NewString("not-a-date").CastTo(TypeDateTime)
		if !got.IsError() || got.AsError().Kind != ErrInvalidTypeCast {
			t.Fatalf("got %v, want InvalidTypeCast error", got)
		}
	})

	// The seed scenario where a row's y column ({x:4, y:"oops"}) is declared
	// bool: String is not numeric and not DateTime-adjacent for a bool
	// target, so this always falls to the catch-all InvalidTypeCast branch.
	t.Run("string to bool is InvalidTypeCast (S3)", func(t *testing.T) {
		got := NewString("oops").CastTo(TypeBool)
		if !got.IsError() {
			t.Fatalf("expected error, got %v", got)
		}
		if got.AsError().Kind != ErrInvalidTypeCast {
			t.Fatalf("kind = %s, want %s", got.AsError().Kind, ErrInvalidTypeCast)
		}
	})

	t.Run("bool to bool identity, bool to anything else errors", func(t *testing.T) {
		if got := NewBool(true).CastTo(TypeBool); got.IsError() {
			t.Fatalf("bool->bool errored: %v", got)
		}
		got := NewBool(true).CastTo(TypeInt)
		if !got.IsError() || got.AsError().Kind != ErrInvalidTypeCast {
			t.Fatalf("bool->int = %v, want InvalidTypeCast", got)
		}
	})
}

func TestConvertTo(t *testing.T) {
	t.Run("Null converts to false for Bool target", func(t *testing.T) {
		got := Null.ConvertTo(TypeBool)
		b, errv := got.GetBool()
		if errv.IsError() || b != false {
			t.Fatalf("Null.ConvertTo(bool) = %v, %v, want false", b, errv)
		}
	})

	t.Run("Null converts to Null for non-Bool target", func(t *testing.T) {
		if got := Null.ConvertTo(TypeString); !got.IsNull() {
			t.Fatalf("Null.ConvertTo(string) = %v, want Null", got)
		}
	})

	t.Run("Error propagates unchanged", func(t *testing.T) {
		e := NewError(ErrInvalidValue, "boom")
		if got := e.ConvertTo(TypeBool); !got.IsError() {
			t.Fatalf("Error.ConvertTo(bool) = %v, want error unchanged", got)
		}
	})

	t.Run("numeric zero/nonzero to bool", func(t *testing.T) {
		if got := NewInt(0).ConvertTo(TypeBool); mustBool(t, got) != false {
			t.Fatalf("0 -> bool should be false")
		}
		if got := NewDouble(0.5).ConvertTo(TypeBool); mustBool(t, got) != true {
			t.Fatalf("0.5 -> bool should be true")
		}
	})

	t.Run("string to bool parses via strconv.ParseBool", func(t *testing.T) {
		if got := NewString("true").ConvertTo(TypeBool); mustBool(t, got) != true {
			t.Fatalf(`"true" -> bool should be true`)
		}
		got := NewString("oops").ConvertTo(TypeBool)
		if !got.IsError() || got.AsError().Kind != ErrInvalidTypeConversion {
			t.Fatalf(`"oops" -> bool = %v, want InvalidTypeConversion`, got)
		}
	})

	t.Run("array/object emptiness test to bool", func(t *testing.T) {
		empty := NewArray(nil)
		nonEmpty := NewArray([]Value{NewInt(1)})
		if mustBool(t, empty.ConvertTo(TypeBool)) != false {
			t.Fatalf("empty array -> bool should be false")
		}
		if mustBool(t, nonEmpty.ConvertTo(TypeBool)) != true {
			t.Fatalf("non-empty array -> bool should be true")
		}
	})

	t.Run("bool to numeric", func(t *testing.T) {
		got := NewBool(true).ConvertTo(TypeInt)
		n, errv := got.GetLong()
		if errv.IsError() || n != 1 {
			t.Fatalf("true -> int = %d, %v, want 1", n, errv)
		}
	})

	t.Run("numeric to string", func(t *testing.T) {
		got := NewInt(7).ConvertTo(TypeString)
		s, errv := got.GetString()
		if errv.IsError() || s != "7" {
			t.Fatalf("7 -> string = %q, %v", s, errv)
		}
	})

	t.Run("string to numeric parses, invalid string errors", func(t *testing.T) {
		got := NewString("3.5").ConvertTo(TypeDouble)
		f, errv := got.GetDouble()
		if errv.IsError() || f != 3.5 {
			t.Fatalf(`"3.5" -> double = %v, %v, want 3.5`, f, errv)
		}
		bad := NewString("nope").ConvertTo(TypeDouble)
		if !bad.IsError() || bad.AsError().Kind != ErrInvalidTypeConversion {
			t.Fatalf(`"nope" -> double = %v, want InvalidTypeConversion`, bad)
		}
	})
}

func mustBool(t *testing.T, v Value) bool {
	t.Helper()
	b, errv := v.GetBool()
	if errv.IsError() {
		t.Fatalf("expected bool, got error %v", errv)
	}
	return b
}

func mustParseTimestamp(t *testing.T, s string) time.Time {
	t.Helper()
	tm, ok := parseTimestampLike(s)
	if !ok {
		t.Fatalf("failed to parse %q", s)
	}
	return tm
}
