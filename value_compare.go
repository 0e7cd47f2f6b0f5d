package rowflow

import "time"

// Ordering is the result of comparing two Values.
type Ordering int

const (
	OrderLess Ordering = iota - 1
	OrderEqual
	OrderGreater
	// OrderUnordered means the two values cannot be compared (e.g. Null
	// against anything else, or mismatched non-numeric types).
	OrderUnordered
)

// Compare implements the engine's ordering rules: numeric variants widen to a
// common type (Int<Long<Float<Double, Float+integer widens to Double);
// strings compare lexicographically; DateTime and String compare
// cross-type via DefaultTimestampFormat/DefaultDateFormat; Arrays/Objects
// are equal iff structurally equal (and otherwise unordered); Null is
// equal only to Null and unordered against everything else.
func Compare(a, b Value) Ordering {
	if a.IsNull() || b.IsNull() {
		if a.IsNull() && b.IsNull() {
			return OrderEqual
		}
		return OrderUnordered
	}
	if a.typ.IsNumeric() && b.typ.IsNumeric() {
		return compareNumeric(a, b)
	}
	if a.typ == TypeString && b.typ == TypeString {
		return compareOrdered(a.strVal, b.strVal)
	}
	if a.typ == TypeDateTime && b.typ == TypeDateTime {
		return compareTime(a.timeVal, b.timeVal)
	}
	if a.typ == TypeDateTime && b.typ == TypeString {
		if t, ok := parseTimestampLike(b.strVal); ok {
			return compareTime(a.timeVal, t)
		}
		return OrderUnordered
	}
	if a.typ == TypeString && b.typ == TypeDateTime {
		if t, ok := parseTimestampLike(a.strVal); ok {
			return compareTime(t, b.timeVal)
		}
		return OrderUnordered
	}
	if a.typ == TypeBool && b.typ == TypeBool {
		if a.boolVal == b.boolVal {
			return OrderEqual
		}
		if !a.boolVal {
			return OrderLess
		}
		return OrderGreater
	}
	if a.typ == TypeArray && b.typ == TypeArray {
		if arraysEqual(a.arrVal, b.arrVal) {
			return OrderEqual
		}
		return OrderUnordered
	}
	if a.typ == TypeObject && b.typ == TypeObject {
		if objectsEqual(a.objVal, b.objVal) {
			return OrderEqual
		}
		return OrderUnordered
	}
	return OrderUnordered
}

// Equal reports whether Compare(a, b) == OrderEqual.
func Equal(a, b Value) bool { return Compare(a, b) == OrderEqual }

func compareOrdered[T int64 | float64 | string](a, b T) Ordering {
	switch {
	case a < b:
		return OrderLess
	case a > b:
		return OrderGreater
	default:
		return OrderEqual
	}
}

func compareTime(a, b time.Time) Ordering {
	switch {
	case a.Before(b):
		return OrderLess
	case a.After(b):
		return OrderGreater
	default:
		return OrderEqual
	}
}

func compareNumeric(a, b Value) Ordering {
	// Compare as float64 when either side is floating point, otherwise
	// compare as int64.
	if a.typ == TypeDouble || b.typ == TypeDouble || a.typ == TypeFloat || b.typ == TypeFloat {
		af, _ := a.GetDouble()
		bf, _ := b.GetDouble()
		return compareOrdered(af, bf)
	}
	al, _ := a.GetLong()
	bl, _ := b.GetLong()
	return compareOrdered(al, bl)
}

func arraysEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if Compare(a[i], b[i]) != OrderEqual {
			return false
		}
	}
	return true
}

func objectsEqual(a, b *object) bool {
	if len(a.keys) != len(b.keys) {
		return false
	}
	for _, k := range a.keys {
		av, _ := a.get(k)
		bv, ok := b.get(k)
		if !ok || Compare(av, bv) != OrderEqual {
			return false
		}
	}
	return true
}

func parseTimestampLike(s string) (time.Time, bool) {
	if t, err := time.Parse(DefaultTimestampFormat, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(DefaultDateFormat, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
