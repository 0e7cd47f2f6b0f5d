package rowflow

import (
	"math"
	"math/rand"

	"github.com/google/uuid"
)

// registerMiscFunctions registers the leftover built-ins: identifiers,
// randomness, bucketing, distance, casts, and null/NaN predicates.
func registerMiscFunctions(r *Registry) {
	r.MustRegister("uuid", func() Function {
		return simpleFn{minArgs: 0, maxArgs: 0, out: fixedOut(TypeString), eval: func([]Value) Value {
			return NewString(uuid.New().String())
		}}
	})
	r.MustRegister("random", randomFn())
	r.MustRegister("rand", randomFn())
	r.MustRegister("case", func() Function {
		return simpleFn{minArgs: 2, maxArgs: -1, out: fixedOut(TypeDynamic), eval: func(args []Value) Value {
			i := 0
			for i+1 < len(args) {
				b, ok := asBool(args[i])
				if !ok {
					return NewError(ErrInvalidArgumentType, "case: condition %d is not bool", i/2)
				}
				if b {
					return args[i+1]
				}
				i += 2
			}
			if i < len(args) {
				return args[i]
			}
			return Null
		}}
	})
	r.MustRegister("shuffle", func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeArray), eval: func(args []Value) Value {
			arr, e := args[0].GetArray()
			if e.IsError() {
				return e
			}
			out := make([]Value, len(arr))
			copy(out, arr)
			rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
			return NewArray(out)
		}}
	})
	r.MustRegister("bucket", func() Function {
		return simpleFn{minArgs: 2, maxArgs: -1, out: fixedOut(TypeLong), eval: func(args []Value) Value {
			// args[1:] are ascending pivots; the result is the index of the
			// first pivot the value sorts below, or the last pivot's index
			// when the value is at or past every pivot.
			for i := 1; i < len(args); i++ {
				ord := Compare(args[0], args[i])
				if ord == OrderUnordered {
					return NewError(ErrInvalidArgumentType, "bucket: cannot order %s against pivot %d", ValueTypeOf(args[0]), i)
				}
				if ord == OrderLess {
					return NewLong(int64(i))
				}
			}
			return NewLong(int64(len(args) - 1))
		}}
	})
	r.MustRegister("distance", func() Function {
		return simpleFn{minArgs: 4, maxArgs: 4, out: fixedOut(TypeDouble), eval: func(args []Value) Value {
			vals := make([]float64, 4)
			for i, a := range args {
				v, e := a.GetDouble()
				if e.IsError() {
					return e
				}
				vals[i] = v
			}
			// Haversine great-circle distance in km over a 6371km sphere,
			// from (lat1, lng1) to (lat2, lng2) in degrees.
			lat1 := vals[0] * math.Pi / 180
			lng1 := vals[1] * math.Pi / 180
			lat2 := vals[2] * math.Pi / 180
			lng2 := vals[3] * math.Pi / 180
			dlat := lat2 - lat1
			dlng := lng2 - lng1
			a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlng/2), 2)
			c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
			return NewDouble(6371.0 * c)
		}}
	})

	registerCastFunctions(r)

	r.MustRegister("isnull", func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeBool), eval: func(args []Value) Value {
			return NewBool(args[0].IsNull())
		}}
	})
	r.MustRegister("isnotnull", func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeBool), eval: func(args []Value) Value {
			return NewBool(!args[0].IsNull())
		}}
	})
	r.MustRegister("isnan", func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeBool), eval: func(args []Value) Value {
			d, e := args[0].GetDouble()
			if e.IsError() {
				return e
			}
			return NewBool(math.IsNaN(d))
		}}
	})
}

func randomFn() FuncBuilder {
	return func() Function {
		return simpleFn{minArgs: 0, maxArgs: 0, out: fixedOut(TypeDouble), eval: func([]Value) Value {
			return NewDouble(rand.Float64())
		}}
	}
}

// registerCastFunctions registers the int/long/float/double/bool/string/date
// cast-function family: each is sugar over (Value).ConvertTo for its
// target type.
func registerCastFunctions(r *Registry) {
	castFn := func(target ValueType) FuncBuilder {
		return func() Function {
			return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(target), eval: func(args []Value) Value {
				return args[0].ConvertTo(target)
			}}
		}
	}
	r.MustRegister("int", castFn(TypeInt))
	r.MustRegister("long", castFn(TypeLong))
	r.MustRegister("float", castFn(TypeFloat))
	r.MustRegister("double", castFn(TypeDouble))
	r.MustRegister("bool", castFn(TypeBool))
	r.MustRegister("boolean", castFn(TypeBool))
	r.MustRegister("string", castFn(TypeString))
	r.MustRegister("date", castFn(TypeDateTime))
}
