package rowflow

import "strings"

// registerArrayFunctions registers the array built-ins (array_contains,
// element_at, slice, flatten, arrays_zip, and friends), following the
// common SQL naming conventions.
func registerArrayFunctions(r *Registry) {
	r.MustRegister("array", func() Function {
		return simpleFn{minArgs: 0, maxArgs: -1, out: fixedOut(TypeArray), eval: func(args []Value) Value {
			return NewArray(args)
		}}
	})
	r.MustRegister("size", arraySize())
	r.MustRegister("array_size", arraySize())

	r.MustRegister("array_contains", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeBool), eval: func(args []Value) Value {
			arr, e := args[0].GetArray()
			if e.IsError() {
				return e
			}
			for _, v := range arr {
				if Equal(v, args[1]) {
					return NewBool(true)
				}
			}
			return NewBool(false)
		}}
	})
	r.MustRegister("array_position", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeLong), eval: func(args []Value) Value {
			arr, e := args[0].GetArray()
			if e.IsError() {
				return e
			}
			for i, v := range arr {
				if Equal(v, args[1]) {
					return NewLong(int64(i + 1))
				}
			}
			return NewLong(0)
		}}
	})
	r.MustRegister("element_at", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeDynamic), eval: func(args []Value) Value {
			arr, e := args[0].GetArray()
			if e.IsError() {
				return e
			}
			idx, e2 := args[1].GetLong()
			if e2.IsError() {
				return e2
			}
			i := idx
			if i < 0 {
				i = int64(len(arr)) + i
			} else {
				i--
			}
			if i < 0 || int(i) >= len(arr) {
				return NewError(ErrInvalidValue, "array index %d out of range (len %d)", idx, len(arr))
			}
			return arr[i]
		}}
	})
	r.MustRegister("elt", func() Function {
		return simpleFn{minArgs: 2, maxArgs: -1, out: fixedOut(TypeDynamic), eval: func(args []Value) Value {
			idx, e := args[0].GetLong()
			if e.IsError() {
				return e
			}
			rest := args[1:]
			if idx < 1 || int(idx) > len(rest) {
				return Null
			}
			return rest[idx-1]
		}}
	})
	r.MustRegister("slice", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 3, out: fixedOut(TypeArray), eval: func(args []Value) Value {
			arr, e := args[0].GetArray()
			if e.IsError() {
				return e
			}
			start, e2 := args[1].GetLong()
			if e2.IsError() {
				return e2
			}
			idx := int(start)
			if idx > 0 {
				idx--
			} else if idx < 0 {
				idx = len(arr) + idx
				if idx < 0 {
					idx = 0
				}
			}
			length := len(arr) - idx
			if len(args) == 3 {
				l, e3 := args[2].GetLong()
				if e3.IsError() {
					return e3
				}
				length = int(l)
			}
			if idx < 0 || idx > len(arr) || length < 0 {
				return NewArray(nil)
			}
			end := idx + length
			if end > len(arr) {
				end = len(arr)
			}
			return NewArray(arr[idx:end])
		}}
	})
	r.MustRegister("array_remove", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeArray), eval: func(args []Value) Value {
			arr, e := args[0].GetArray()
			if e.IsError() {
				return e
			}
			out := make([]Value, 0, len(arr))
			for _, v := range arr {
				if !Equal(v, args[1]) {
					out = append(out, v)
				}
			}
			return NewArray(out)
		}}
	})
	r.MustRegister("array_distinct", func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeArray), eval: func(args []Value) Value {
			arr, e := args[0].GetArray()
			if e.IsError() {
				return e
			}
			var out []Value
			for _, v := range arr {
				dup := false
				for _, seen := range out {
					if Equal(v, seen) {
						dup = true
						break
					}
				}
				if !dup {
					out = append(out, v)
				}
			}
			return NewArray(out)
		}}
	})
	r.MustRegister("array_max", arrayFold(func(best, cur Value) Value {
		if Compare(cur, best) == OrderGreater {
			return cur
		}
		return best
	}))
	r.MustRegister("array_min", arrayFold(func(best, cur Value) Value {
		if Compare(cur, best) == OrderLess {
			return cur
		}
		return best
	}))
	r.MustRegister("array_join", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeString), eval: func(args []Value) Value {
			arr, e := args[0].GetArray()
			if e.IsError() {
				return e
			}
			sep, e2 := args[1].GetString()
			if e2.IsError() {
				return e2
			}
			parts := make([]string, len(arr))
			for i, v := range arr {
				parts[i] = v.String()
			}
			return NewString(strings.Join(parts, sep))
		}}
	})
	r.MustRegister("array_repeat", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeArray), eval: func(args []Value) Value {
			n, e := args[1].GetLong()
			if e.IsError() {
				return e
			}
			if n < 0 {
				return NewError(ErrInvalidValue, "array_repeat count must be >= 0")
			}
			out := make([]Value, n)
			for i := range out {
				out[i] = args[0]
			}
			return NewArray(out)
		}}
	})
	r.MustRegister("array_union", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeArray), eval: func(args []Value) Value {
			a, e := args[0].GetArray()
			if e.IsError() {
				return e
			}
			b, e2 := args[1].GetArray()
			if e2.IsError() {
				return e2
			}
			var out []Value
			for _, v := range append(append([]Value{}, a...), b...) {
				if !inSlice(out, v) {
					out = append(out, v)
				}
			}
			return NewArray(out)
		}}
	})
	r.MustRegister("array_intersect", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeArray), eval: func(args []Value) Value {
			a, e := args[0].GetArray()
			if e.IsError() {
				return e
			}
			b, e2 := args[1].GetArray()
			if e2.IsError() {
				return e2
			}
			var out []Value
			for _, v := range a {
				if inSlice(b, v) && !inSlice(out, v) {
					out = append(out, v)
				}
			}
			return NewArray(out)
		}}
	})
	r.MustRegister("array_except", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeArray), eval: func(args []Value) Value {
			a, e := args[0].GetArray()
			if e.IsError() {
				return e
			}
			b, e2 := args[1].GetArray()
			if e2.IsError() {
				return e2
			}
			var out []Value
			for _, v := range a {
				if !inSlice(b, v) && !inSlice(out, v) {
					out = append(out, v)
				}
			}
			return NewArray(out)
		}}
	})
	r.MustRegister("arrays_overlap", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeBool), eval: func(args []Value) Value {
			a, e := args[0].GetArray()
			if e.IsError() {
				return e
			}
			b, e2 := args[1].GetArray()
			if e2.IsError() {
				return e2
			}
			for _, x := range a {
				for _, y := range b {
					if Equal(x, y) {
						return NewBool(true)
					}
				}
			}
			return NewBool(false)
		}}
	})
	r.MustRegister("arrays_zip", func() Function {
		return simpleFn{minArgs: 1, maxArgs: -1, out: fixedOut(TypeArray), eval: func(args []Value) Value {
			arrs := make([][]Value, len(args))
			maxLen := 0
			for i, a := range args {
				arr, e := a.GetArray()
				if e.IsError() {
					return e
				}
				arrs[i] = arr
				if len(arr) > maxLen {
					maxLen = len(arr)
				}
			}
			out := make([]Value, maxLen)
			for i := 0; i < maxLen; i++ {
				tuple := make([]Value, len(arrs))
				for j, arr := range arrs {
					if i < len(arr) {
						tuple[j] = arr[i]
					} else {
						tuple[j] = Null
					}
				}
				out[i] = NewArray(tuple)
			}
			return NewArray(out)
		}}
	})
	r.MustRegister("flatten", func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeArray), eval: func(args []Value) Value {
			outer, e := args[0].GetArray()
			if e.IsError() {
				return e
			}
			var out []Value
			for _, v := range outer {
				inner, e2 := v.GetArray()
				if e2.IsError() {
					return e2
				}
				out = append(out, inner...)
			}
			return NewArray(out)
		}}
	})
}

func arraySize() FuncBuilder {
	return func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeLong), eval: func(args []Value) Value {
			arr, e := args[0].GetArray()
			if e.IsError() {
				return e
			}
			return NewLong(int64(len(arr)))
		}}
	}
}

func arrayFold(pick func(best, cur Value) Value) FuncBuilder {
	return func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeDynamic), eval: func(args []Value) Value {
			arr, e := args[0].GetArray()
			if e.IsError() {
				return e
			}
			if len(arr) == 0 {
				return Null
			}
			best := arr[0]
			for _, v := range arr[1:] {
				best = pick(best, v)
			}
			return best
		}}
	}
}

func inSlice(arr []Value, v Value) bool {
	for _, x := range arr {
		if Equal(x, v) {
			return true
		}
	}
	return false
}
