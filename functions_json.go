package rowflow

import "strings"

// registerJSONFunctions registers the JSON built-ins over the canonical
// ValueFromJSON/ToJSON projection in value_json.go: path navigation plus
// round-trip encoding.
func registerJSONFunctions(r *Registry) {
	r.MustRegister("get_json_object", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeDynamic), eval: func(args []Value) Value {
			obj := args[0]
			path, e := args[1].GetString()
			if e.IsError() {
				return e
			}
			return navigateJSONPath(obj, path)
		}}
	})
	r.MustRegister("get_json_array", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeArray), eval: func(args []Value) Value {
			obj := args[0]
			path, e := args[1].GetString()
			if e.IsError() {
				return e
			}
			v := navigateJSONPath(obj, path)
			if v.IsError() {
				return v
			}
			if v.typ != TypeArray {
				return NewError(ErrTypeMismatch, "path %q does not select an array", path)
			}
			return v
		}}
	})
	r.MustRegister("json_array_length", func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeLong), eval: func(args []Value) Value {
			arr, e := args[0].GetArray()
			if e.IsError() {
				return e
			}
			return NewLong(int64(len(arr)))
		}}
	})
	r.MustRegister("json_object_keys", func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeArray), eval: func(args []Value) Value {
			if args[0].typ != TypeObject {
				return NewError(ErrTypeMismatch, "expected object, got %s", args[0].typ)
			}
			keys := args[0].ObjectKeys()
			out := make([]Value, len(keys))
			for i, k := range keys {
				out[i] = NewString(k)
			}
			return NewArray(out)
		}}
	})
	r.MustRegister("to_json", func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeString), eval: func(args []Value) Value {
			b, err := args[0].MarshalJSON()
			if err != nil {
				return NewError(ErrFormatError, "cannot encode value as JSON: %v", err)
			}
			return NewString(string(b))
		}}
	})
}

// navigateJSONPath resolves a dotted/bracketed path such as "$.a.b[0]"
// against an Object/Array Value: a missing key yields Null, an
// out-of-range index yields an Error.
func navigateJSONPath(v Value, path string) Value {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return v
	}
	segments := splitJSONPath(path)
	cur := v
	for _, seg := range segments {
		if cur.IsError() {
			return cur
		}
		if idx, ok := seg.index(); ok {
			arr, e := cur.GetArray()
			if e.IsError() {
				return e
			}
			if idx < 0 || idx >= len(arr) {
				return NewError(ErrInvalidValue, "array index %d out of range (len %d)", idx, len(arr))
			}
			cur = arr[idx]
			continue
		}
		if cur.typ != TypeObject {
			return NewError(ErrTypeMismatch, "cannot navigate field %q on %s", seg.key, cur.typ)
		}
		cur = cur.GetObjectField(seg.key)
	}
	return cur
}

type jsonPathSeg struct {
	key   string
	idx   int
	isIdx bool
}

func (s jsonPathSeg) index() (int, bool) { return s.idx, s.isIdx }

func splitJSONPath(path string) []jsonPathSeg {
	var out []jsonPathSeg
	for _, part := range strings.Split(path, ".") {
		for part != "" {
			if part[0] == '[' {
				end := strings.IndexByte(part, ']')
				if end < 0 {
					break
				}
				idx := 0
				for _, c := range part[1:end] {
					if c < '0' || c > '9' {
						idx = -1
						break
					}
					idx = idx*10 + int(c-'0')
				}
				if idx >= 0 {
					out = append(out, jsonPathSeg{idx: idx, isIdx: true})
				}
				part = part[end+1:]
				continue
			}
			br := strings.IndexByte(part, '[')
			if br < 0 {
				out = append(out, jsonPathSeg{key: part})
				part = ""
			} else {
				if br > 0 {
					out = append(out, jsonPathSeg{key: part[:br]})
				}
				part = part[br:]
			}
		}
	}
	return out
}
