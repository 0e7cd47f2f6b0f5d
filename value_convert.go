package rowflow

import (
	"strconv"
)

// CastTo is the narrow coercion flavor: numeric<->numeric permitted;
// string<->DateTime permitted via DefaultTimestampFormat (falling back to
// DefaultDateFormat); all other non-identity casts produce Error. Bool is
// castable only to Bool. Total: never panics.
func (v Value) CastTo(target ValueType) Value {
	if v.IsError() {
		return v
	}
	if v.typ == target || target == TypeDynamic {
		return v
	}
	if v.IsNull() {
		return Null
	}
	switch {
	case v.typ.IsNumeric() && target.IsNumeric():
		return castNumeric(v, target)
	case v.typ == TypeString && target == TypeDateTime:
		s, _ := v.GetString()
		if t, ok := parseTimestampLike(s); ok {
			return NewDateTime(t)
		}
		return NewError(ErrInvalidTypeCast, "cannot cast %q to timestamp", s)
	case v.typ == TypeDateTime && target == TypeString:
		t, _ := v.GetDateTime()
		return NewString(t.Format(DefaultTimestampFormat))
	default:
		return NewError(ErrInvalidTypeCast, "cannot cast %s to %s", v.typ, target)
	}
}

func castNumeric(v Value, target ValueType) Value {
	switch target {
	case TypeInt:
		l, _ := v.GetLong()
		if v.typ == TypeFloat || v.typ == TypeDouble {
			f, _ := v.GetDouble()
			return NewInt(int32(f))
		}
		return NewInt(int32(l))
	case TypeLong:
		if v.typ == TypeFloat || v.typ == TypeDouble {
			f, _ := v.GetDouble()
			return NewLong(int64(f))
		}
		l, _ := v.GetLong()
		return NewLong(l)
	case TypeFloat:
		f, _ := v.GetDouble()
		return NewFloat(float32(f))
	case TypeDouble:
		f, _ := v.GetDouble()
		return NewDouble(f)
	default:
		return NewError(ErrInvalidTypeCast, "cannot cast to %s", target)
	}
}

// ConvertTo is the broader coercion flavor: Bool<->numeric,
// numeric<->string, string->numeric (parse errors become Error),
// Array/Object->Bool (emptiness test). Null converts to false when target
// is Bool, to Null otherwise. Total: never panics.
func (v Value) ConvertTo(target ValueType) Value {
	if v.IsError() {
		return v
	}
	if v.typ == target || target == TypeDynamic {
		return v
	}
	if v.IsNull() {
		if target == TypeBool {
			return NewBool(false)
		}
		return Null
	}

	switch target {
	case TypeBool:
		return convertToBool(v)
	case TypeString:
		return convertToString(v)
	case TypeInt, TypeLong, TypeFloat, TypeDouble:
		return convertToNumeric(v, target)
	case TypeDateTime:
		if v.typ == TypeString {
			return v.CastTo(TypeDateTime)
		}
		return NewError(ErrInvalidTypeConversion, "cannot convert %s to timestamp", v.typ)
	default:
		return NewError(ErrInvalidTypeConversion, "cannot convert %s to %s", v.typ, target)
	}
}

func convertToBool(v Value) Value {
	switch v.typ {
	case TypeBool:
		return v
	case TypeInt, TypeLong, TypeFloat, TypeDouble:
		f, _ := v.GetDouble()
		return NewBool(f != 0)
	case TypeString:
		s, _ := v.GetString()
		b, err := strconv.ParseBool(s)
		if err != nil {
			return NewError(ErrInvalidTypeConversion, "cannot convert %q to bool", s)
		}
		return NewBool(b)
	case TypeArray:
		a, _ := v.GetArray()
		return NewBool(len(a) > 0)
	case TypeObject:
		return NewBool(len(v.ObjectKeys()) > 0)
	default:
		return NewError(ErrInvalidTypeConversion, "cannot convert %s to bool", v.typ)
	}
}

func convertToString(v Value) Value {
	switch v.typ {
	case TypeString:
		return v
	case TypeBool, TypeInt, TypeLong, TypeFloat, TypeDouble, TypeDateTime, TypeArray, TypeObject:
		return NewString(v.String())
	default:
		return NewError(ErrInvalidTypeConversion, "cannot convert %s to string", v.typ)
	}
}

func convertToNumeric(v Value, target ValueType) Value {
	switch v.typ {
	case TypeInt, TypeLong, TypeFloat, TypeDouble:
		return castNumeric(v, target)
	case TypeBool:
		var f float64
		if v.boolVal {
			f = 1
		}
		return convertToNumeric(NewDouble(f), target)
	case TypeString:
		s, _ := v.GetString()
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return NewError(ErrInvalidTypeConversion, "cannot convert %q to %s", s, target)
		}
		return convertToNumeric(NewDouble(f), target)
	default:
		return NewError(ErrInvalidTypeConversion, "cannot convert %s to %s", v.typ, target)
	}
}
