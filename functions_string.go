package rowflow

import "strings"

// registerStringFunctions registers the string built-ins, following the
// common SQL naming conventions (concat_ws, split_part, substring_index,
// instr, and friends).
func registerStringFunctions(r *Registry) {
	r.MustRegister("ascii", func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeInt), eval: func(args []Value) Value {
			s, e := args[0].GetString()
			if e.IsError() {
				return e
			}
			if s == "" {
				return NewInt(0)
			}
			return NewInt(int32(s[0]))
		}}
	})
	r.MustRegister("char", charFromCode())
	r.MustRegister("chr", charFromCode())
	r.MustRegister("char_length", strLen())
	r.MustRegister("character_length", strLen())
	r.MustRegister("length", strLen())
	r.MustRegister("len", strLen())

	r.MustRegister("concat", func() Function {
		return simpleFn{minArgs: 1, maxArgs: -1, out: fixedOut(TypeString), eval: func(args []Value) Value {
			var b strings.Builder
			for _, a := range args {
				s, e := a.GetString()
				if e.IsError() {
					return e
				}
				b.WriteString(s)
			}
			return NewString(b.String())
		}}
	})
	r.MustRegister("concat_ws", func() Function {
		return simpleFn{minArgs: 2, maxArgs: -1, out: fixedOut(TypeString), eval: func(args []Value) Value {
			sep, e := args[0].GetString()
			if e.IsError() {
				return e
			}
			parts := make([]string, 0, len(args)-1)
			for _, a := range args[1:] {
				s, e2 := a.GetString()
				if e2.IsError() {
					return e2
				}
				parts = append(parts, s)
			}
			return NewString(strings.Join(parts, sep))
		}}
	})
	r.MustRegister("contains", strBinBool(strings.Contains))
	r.MustRegister("startswith", strBinBool(strings.HasPrefix))
	r.MustRegister("endswith", strBinBool(strings.HasSuffix))
	r.MustRegister("instr", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeLong), eval: func(args []Value) Value {
			s, e := args[0].GetString()
			if e.IsError() {
				return e
			}
			sub, e2 := args[1].GetString()
			if e2.IsError() {
				return e2
			}
			return NewLong(int64(strings.Index(s, sub) + 1))
		}}
	})
	r.MustRegister("lcase", str1(strings.ToLower))
	r.MustRegister("lower", str1(strings.ToLower))
	r.MustRegister("ucase", str1(strings.ToUpper))
	r.MustRegister("upper", str1(strings.ToUpper))
	r.MustRegister("ltrim", str1(func(s string) string { return strings.TrimLeft(s, " \t\n\r") }))
	r.MustRegister("rtrim", str1(func(s string) string { return strings.TrimRight(s, " \t\n\r") }))
	r.MustRegister("trim", str1(strings.TrimSpace))
	r.MustRegister("btrim", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeString), eval: func(args []Value) Value {
			s, e := args[0].GetString()
			if e.IsError() {
				return e
			}
			cutset, e2 := args[1].GetString()
			if e2.IsError() {
				return e2
			}
			return NewString(strings.Trim(s, cutset))
		}}
	})
	r.MustRegister("repeat", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeString), eval: func(args []Value) Value {
			s, e := args[0].GetString()
			if e.IsError() {
				return e
			}
			n, e2 := args[1].GetLong()
			if e2.IsError() {
				return e2
			}
			if n < 0 {
				return NewError(ErrInvalidValue, "repeat count must be >= 0")
			}
			return NewString(strings.Repeat(s, int(n)))
		}}
	})
	r.MustRegister("reverse", str1(func(s string) string {
		runes := []rune(s)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return string(runes)
	}))
	r.MustRegister("space", func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeString), eval: func(args []Value) Value {
			n, e := args[0].GetLong()
			if e.IsError() {
				return e
			}
			return NewString(strings.Repeat(" ", int(n)))
		}}
	})
	r.MustRegister("split", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeArray), eval: func(args []Value) Value {
			s, e := args[0].GetString()
			if e.IsError() {
				return e
			}
			sep, e2 := args[1].GetString()
			if e2.IsError() {
				return e2
			}
			parts := strings.Split(s, sep)
			out := make([]Value, len(parts))
			for i, p := range parts {
				out[i] = NewString(p)
			}
			return NewArray(out)
		}}
	})
	r.MustRegister("split_part", func() Function {
		return simpleFn{minArgs: 3, maxArgs: 3, out: fixedOut(TypeString), eval: func(args []Value) Value {
			s, e := args[0].GetString()
			if e.IsError() {
				return e
			}
			sep, e2 := args[1].GetString()
			if e2.IsError() {
				return e2
			}
			n, e3 := args[2].GetLong()
			if e3.IsError() {
				return e3
			}
			parts := strings.Split(s, sep)
			if n < 1 || int(n) > len(parts) {
				return NewString("")
			}
			return NewString(parts[n-1])
		}}
	})
	r.MustRegister("substring", substringFn())
	r.MustRegister("substring_index", func() Function {
		return simpleFn{minArgs: 3, maxArgs: 3, out: fixedOut(TypeString), eval: func(args []Value) Value {
			s, e := args[0].GetString()
			if e.IsError() {
				return e
			}
			delim, e2 := args[1].GetString()
			if e2.IsError() {
				return e2
			}
			count, e3 := args[2].GetLong()
			if e3.IsError() {
				return e3
			}
			parts := strings.Split(s, delim)
			if count >= 0 {
				if int(count) > len(parts) {
					count = int64(len(parts))
				}
				return NewString(strings.Join(parts[:count], delim))
			}
			n := int64(len(parts)) + count
			if n < 0 {
				n = 0
			}
			return NewString(strings.Join(parts[n:], delim))
		}}
	})
	r.MustRegister("translate", func() Function {
		return simpleFn{minArgs: 3, maxArgs: 3, out: fixedOut(TypeString), eval: func(args []Value) Value {
			s, e := args[0].GetString()
			if e.IsError() {
				return e
			}
			from, e2 := args[1].GetString()
			if e2.IsError() {
				return e2
			}
			to, e3 := args[2].GetString()
			if e3.IsError() {
				return e3
			}
			fr := []rune(from)
			tr := []rune(to)
			out := make([]rune, 0, len(s))
			for _, c := range s {
				replaced := false
				for i, fc := range fr {
					if c == fc {
						if i < len(tr) {
							out = append(out, tr[i])
						}
						replaced = true
						break
					}
				}
				if !replaced {
					out = append(out, c)
				}
			}
			return NewString(string(out))
		}}
	})
	r.MustRegister("levenshtein", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeLong), eval: func(args []Value) Value {
			a, e := args[0].GetString()
			if e.IsError() {
				return e
			}
			b, e2 := args[1].GetString()
			if e2.IsError() {
				return e2
			}
			return NewLong(int64(levenshtein(a, b)))
		}}
	})
	r.MustRegister("conv", func() Function {
		return simpleFn{minArgs: 3, maxArgs: 3, out: fixedOut(TypeString), eval: func(args []Value) Value {
			s, e := args[0].GetString()
			if e.IsError() {
				return e
			}
			fromBase, e2 := args[1].GetLong()
			if e2.IsError() {
				return e2
			}
			toBase, e3 := args[2].GetLong()
			if e3.IsError() {
				return e3
			}
			n, err := parseIntBase(s, int(fromBase))
			if err != nil {
				return NewError(ErrFormatError, "cannot parse %q in base %d", s, fromBase)
			}
			return NewString(formatIntBase(n, int(toBase)))
		}}
	})
}

func strLen() FuncBuilder {
	return func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeLong), eval: func(args []Value) Value {
			s, e := args[0].GetString()
			if e.IsError() {
				return e
			}
			return NewLong(int64(len([]rune(s))))
		}}
	}
}

func charFromCode() FuncBuilder {
	return func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeString), eval: func(args []Value) Value {
			n, e := args[0].GetLong()
			if e.IsError() {
				return e
			}
			return NewString(string(rune(n)))
		}}
	}
}

func strBinBool(f func(s, sub string) bool) FuncBuilder {
	return func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeBool), eval: func(args []Value) Value {
			s, e := args[0].GetString()
			if e.IsError() {
				return e
			}
			sub, e2 := args[1].GetString()
			if e2.IsError() {
				return e2
			}
			return NewBool(f(s, sub))
		}}
	}
}

func substringFn() FuncBuilder {
	return func() Function {
		return simpleFn{minArgs: 2, maxArgs: 3, out: fixedOut(TypeString), eval: func(args []Value) Value {
			s, e := args[0].GetString()
			if e.IsError() {
				return e
			}
			runes := []rune(s)
			start, e2 := args[1].GetLong()
			if e2.IsError() {
				return e2
			}
			idx := int(start)
			if idx > 0 {
				idx--
			} else if idx < 0 {
				idx = len(runes) + idx
				if idx < 0 {
					idx = 0
				}
			}
			length := len(runes) - idx
			if len(args) == 3 {
				l, e3 := args[2].GetLong()
				if e3.IsError() {
					return e3
				}
				length = int(l)
			}
			if idx < 0 || idx > len(runes) || length < 0 {
				return NewString("")
			}
			end := idx + length
			if end > len(runes) {
				end = len(runes)
			}
			return NewString(string(runes[idx:end]))
		}}
	}
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func minInt3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

const digits = "0123456789abcdefghijklmnopqrstuvwxyz"

func parseIntBase(s string, base int) (int64, error) {
	var n int64
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	for _, c := range strings.ToLower(s) {
		idx := strings.IndexRune(digits, c)
		if idx < 0 || idx >= base {
			return 0, errInvalidDigit
		}
		n = n*int64(base) + int64(idx)
	}
	if neg {
		n = -n
	}
	return n, nil
}

var errInvalidDigit = &strconvError{"invalid digit"}

type strconvError struct{ msg string }

func (e *strconvError) Error() string { return e.msg }

func formatIntBase(n int64, base int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var out []byte
	for n > 0 {
		out = append([]byte{digits[n%int64(base)]}, out...)
		n /= int64(base)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
