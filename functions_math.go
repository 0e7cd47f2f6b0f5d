package rowflow

import "math"

// registerMathFunctions registers the scalar math built-ins, following the
// common SQL naming conventions (abs, ceil, log10, pow, atan2, degrees,
// and friends). All of them evaluate over float64 and return Double.
func registerMathFunctions(r *Registry) {
	r.MustRegister("abs", numeric1("abs", math.Abs))
	r.MustRegister("ceil", numeric1("ceil", math.Ceil))
	r.MustRegister("floor", numeric1("floor", math.Floor))
	r.MustRegister("round", numeric1("round", math.Round))
	r.MustRegister("sign", numeric1("sign", func(x float64) float64 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		default:
			return 0
		}
	}))
	r.MustRegister("sqrt", numeric1("sqrt", math.Sqrt))
	r.MustRegister("cbrt", numeric1("cbrt", math.Cbrt))
	r.MustRegister("exp", numeric1("exp", math.Exp))
	r.MustRegister("expm1", numeric1("expm1", math.Expm1))
	r.MustRegister("ln", numeric1("ln", math.Log))
	r.MustRegister("log", numeric1("log", math.Log))
	r.MustRegister("log2", numeric1("log2", math.Log2))
	r.MustRegister("log10", numeric1("log10", math.Log10))
	r.MustRegister("log1p", numeric1("log1p", math.Log1p))
	r.MustRegister("pow", numeric2("pow", math.Pow))
	r.MustRegister("hypot", numeric2("hypot", math.Hypot))
	r.MustRegister("sin", numeric1("sin", math.Sin))
	r.MustRegister("cos", numeric1("cos", math.Cos))
	r.MustRegister("tan", numeric1("tan", math.Tan))
	r.MustRegister("asin", numeric1("asin", math.Asin))
	r.MustRegister("acos", numeric1("acos", math.Acos))
	r.MustRegister("atan", numeric1("atan", math.Atan))
	r.MustRegister("atan2", numeric2("atan2", math.Atan2))
	r.MustRegister("sinh", numeric1("sinh", math.Sinh))
	r.MustRegister("cosh", numeric1("cosh", math.Cosh))
	r.MustRegister("tanh", numeric1("tanh", math.Tanh))
	r.MustRegister("asinh", numeric1("asinh", math.Asinh))
	r.MustRegister("acosh", numeric1("acosh", math.Acosh))
	r.MustRegister("atanh", numeric1("atanh", math.Atanh))
	r.MustRegister("sec", numeric1("sec", func(x float64) float64 { return 1 / math.Cos(x) }))
	r.MustRegister("csc", numeric1("csc", func(x float64) float64 { return 1 / math.Sin(x) }))
	r.MustRegister("cot", numeric1("cot", func(x float64) float64 { return 1 / math.Tan(x) }))
	r.MustRegister("degrees", numeric1("degrees", func(x float64) float64 { return x * 180 / math.Pi }))
	r.MustRegister("radians", numeric1("radians", func(x float64) float64 { return x * math.Pi / 180 }))
	r.MustRegister("mod", numeric2("mod", math.Mod))
	r.MustRegister("e", constant(NewDouble(math.E)))
	r.MustRegister("pi", constant(NewDouble(math.Pi)))
	r.MustRegister("tau", constant(NewDouble(2*math.Pi)))
}

func registerBitBoolFunctions(r *Registry) {
	bitBin := func(f func(a, b int64) int64) FuncBuilder {
		return func() Function {
			return simpleFn{
				minArgs: 2, maxArgs: 2,
				out: fixedOut(TypeLong),
				eval: func(args []Value) Value {
					a, e := args[0].GetLong()
					if e.IsError() {
						return e
					}
					b, e2 := args[1].GetLong()
					if e2.IsError() {
						return e2
					}
					return NewLong(f(a, b))
				},
			}
		}
	}
	r.MustRegister("bit_and", bitBin(func(a, b int64) int64 { return a & b }))
	r.MustRegister("bit_or", bitBin(func(a, b int64) int64 { return a | b }))
	r.MustRegister("bit_xor", bitBin(func(a, b int64) int64 { return a ^ b }))
	r.MustRegister("bit_not", func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeLong), eval: func(args []Value) Value {
			v, e := args[0].GetLong()
			if e.IsError() {
				return e
			}
			return NewLong(^v)
		}}
	})
	r.MustRegister("bit_count", func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeLong), eval: func(args []Value) Value {
			v, e := args[0].GetLong()
			if e.IsError() {
				return e
			}
			count := int64(0)
			u := uint64(v)
			for u != 0 {
				count += int64(u & 1)
				u >>= 1
			}
			return NewLong(count)
		}}
	})
	r.MustRegister("bit_get", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeLong), eval: func(args []Value) Value {
			v, e := args[0].GetLong()
			if e.IsError() {
				return e
			}
			pos, e2 := args[1].GetLong()
			if e2.IsError() {
				return e2
			}
			return NewLong((v >> uint(pos)) & 1)
		}}
	})
	r.MustRegister("bit_length", func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeLong), eval: func(args []Value) Value {
			s, e := args[0].GetString()
			if e.IsError() {
				return e
			}
			return NewLong(int64(len(s) * 8))
		}}
	})
	r.MustRegister("shiftleft", bitBin(func(a, b int64) int64 { return a << uint(b) }))
	r.MustRegister("shiftright", bitBin(func(a, b int64) int64 { return a >> uint(b) }))
	r.MustRegister("shiftrightunsigned", bitBin(func(a, b int64) int64 { return int64(uint64(a) >> uint(b)) }))

	boolAgg := func(f func(args []Value) (bool, *ValueError)) FuncBuilder {
		return func() Function {
			return simpleFn{minArgs: 1, maxArgs: -1, out: fixedOut(TypeBool), eval: func(args []Value) Value {
				b, verr := f(args)
				if verr != nil {
					return Value{typ: TypeError, errVal: verr}
				}
				return NewBool(b)
			}}
		}
	}
	toBools := func(args []Value) ([]bool, *ValueError) {
		out := make([]bool, len(args))
		for i, a := range args {
			b, ok := asBool(a)
			if !ok {
				return nil, &ValueError{Kind: ErrInvalidArgumentType, Message: "expects bool arguments"}
			}
			out[i] = b
		}
		return out, nil
	}
	r.MustRegister("bool_and", boolAgg(func(args []Value) (bool, *ValueError) {
		bs, e := toBools(args)
		if e != nil {
			return false, e
		}
		for _, b := range bs {
			if !b {
				return false, nil
			}
		}
		return true, nil
	}))
	r.MustRegister("every", boolAgg(func(args []Value) (bool, *ValueError) {
		bs, e := toBools(args)
		if e != nil {
			return false, e
		}
		for _, b := range bs {
			if !b {
				return false, nil
			}
		}
		return true, nil
	}))
	r.MustRegister("bool_or", boolAgg(func(args []Value) (bool, *ValueError) {
		bs, e := toBools(args)
		if e != nil {
			return false, e
		}
		for _, b := range bs {
			if b {
				return true, nil
			}
		}
		return false, nil
	}))

	r.MustRegister("coalesce", func() Function {
		return simpleFn{minArgs: 1, maxArgs: -1, out: fixedOut(TypeDynamic), eval: func(args []Value) Value {
			for _, a := range args {
				if !a.IsNull() {
					return a
				}
			}
			return Null
		}}
	})
	r.MustRegister("ifnull", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeDynamic), eval: func(args []Value) Value {
			if args[0].IsNull() {
				return args[1]
			}
			return args[0]
		}}
	})
	r.MustRegister("nvl", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeDynamic), eval: func(args []Value) Value {
			if args[0].IsNull() {
				return args[1]
			}
			return args[0]
		}}
	})
	r.MustRegister("nvl2", func() Function {
		return simpleFn{minArgs: 3, maxArgs: 3, out: fixedOut(TypeDynamic), eval: func(args []Value) Value {
			if args[0].IsNull() {
				return args[2]
			}
			return args[1]
		}}
	})
	r.MustRegister("nullif", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeDynamic), eval: func(args []Value) Value {
			if Equal(args[0], args[1]) {
				return Null
			}
			return args[0]
		}}
	})
	r.MustRegister("if", func() Function {
		return simpleFn{minArgs: 3, maxArgs: 3, out: fixedOut(TypeDynamic), eval: func(args []Value) Value {
			b, ok := asBool(args[0])
			if !ok {
				return NewError(ErrInvalidArgumentType, "if requires a bool condition")
			}
			if b {
				return args[1]
			}
			return args[2]
		}}
	})
}
