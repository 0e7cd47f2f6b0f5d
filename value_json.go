package rowflow

import (
	"encoding/json"
	"fmt"
)

// ValueFromJSON maps a decoded JSON value into a Value: JSON null ->
// Null; JSON bool -> Bool; JSON integer -> Long; JSON number with a
// fractional part -> Double; JSON string -> String; JSON array -> Array;
// JSON object -> Object.
func ValueFromJSON(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Null
	case bool:
		return NewBool(x)
	case json.Number:
		return numberFromJSON(x)
	case float64:
		return numberFromJSON(json.Number(fmt.Sprintf("%v", x)))
	case int:
		// In-process callers build Data maps in Go, where untyped integer
		// literals arrive as int rather than float64.
		return NewLong(int64(x))
	case int64:
		return NewLong(x)
	case string:
		return NewString(x)
	case []any:
		items := make([]Value, len(x))
		for i, e := range x {
			items[i] = ValueFromJSON(e)
		}
		return NewArray(items)
	case map[string]any:
		// encoding/json does not preserve key order in a map[string]any;
		// callers that need order-preserving decode should decode with
		// json.Decoder + UseNumber into an ordered structure upstream.
		// Object key order here is therefore the Go map iteration order,
		// which is acceptable because a JSON object's field order is not
		// semantically meaningful per RFC 8259.
		pairs := make([]KV, 0, len(x))
		for k, v := range x {
			pairs = append(pairs, KV{Key: k, Value: ValueFromJSON(v)})
		}
		return NewObject(pairs...)
	default:
		return NewError(ErrInvalidValueType, "unsupported JSON value %T", raw)
	}
}

func numberFromJSON(n json.Number) Value {
	s := string(n)
	for _, r := range s {
		if r == '.' || r == 'e' || r == 'E' {
			f, err := n.Float64()
			if err != nil {
				return NewError(ErrFormatError, "invalid JSON number %q", s)
			}
			return NewDouble(f)
		}
	}
	i, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return NewError(ErrFormatError, "invalid JSON number %q", s)
		}
		return NewDouble(f)
	}
	return NewLong(i)
}

// ToJSON renders v back into a plain any suitable for json.Marshal. Error
// values serialise as JSON null; callers that collect errors report them
// separately (see Engine.Process). DateTime serialises using
// DefaultTimestampFormat.
func (v Value) ToJSON() any {
	switch v.typ {
	case TypeNull, TypeError:
		return nil
	case TypeBool:
		return v.boolVal
	case TypeInt:
		return int64(v.intVal)
	case TypeLong:
		return v.longVal
	case TypeFloat:
		return float64(v.floatVal)
	case TypeDouble:
		return v.doubleVal
	case TypeString:
		return v.strVal
	case TypeDateTime:
		return v.timeVal.Format(DefaultTimestampFormat)
	case TypeArray:
		out := make([]any, len(v.arrVal))
		for i, e := range v.arrVal {
			out[i] = e.ToJSON()
		}
		return out
	case TypeObject:
		out := make(map[string]any, len(v.objVal.keys))
		for _, k := range v.objVal.keys {
			val, _ := v.objVal.get(k)
			out[k] = val.ToJSON()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler using ToJSON's mapping.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ToJSON())
}
