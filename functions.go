package rowflow

import "fmt"

// Function is the registry contract for a named built-in: an arity/type
// check run once at build time and a per-row evaluator, mirroring
// Operator's two-method shape. No Function implementation may panic; bad
// arity or argument types produce an Error value instead.
type Function interface {
	OutputType(argTypes []ValueType) (ValueType, *BuildError)
	Eval(args []Value) Value
}

// FuncBuilder is the registry entry used by BuildContext: a factory that
// yields a Function, allowing the same logical function to be
// parameterised (e.g. variadic arity checks) without per-call allocation
// tricks.
type FuncBuilder func() Function

// Registry maps a case-sensitive function name to its builder.
type Registry struct {
	entries map[string]FuncBuilder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]FuncBuilder)}
}

// Register adds name -> builder, failing if name is already registered;
// duplicate names are a build-time error.
func (r *Registry) Register(name string, b FuncBuilder) error {
	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("duplicate function %q", name)
	}
	r.entries[name] = b
	return nil
}

// MustRegister panics at init time if name collides; used only by this
// package's own built-in table construction, never by user-supplied
// functions (which go through Register and surface a BuildError).
func (r *Registry) MustRegister(name string, b FuncBuilder) {
	if err := r.Register(name, b); err != nil {
		panic(err)
	}
}

// Lookup returns a fresh Function for name, or ok=false.
func (r *Registry) Lookup(name string) (Function, bool) {
	b, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return b(), true
}

// Names returns every registered function name.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.entries))
	for k := range r.entries {
		out = append(out, k)
	}
	return out
}

// ---- generic adapter helpers ---------------------------------------------
//
// These lift plain Go functions into Function: one variadic wrapper with
// per-argument coercion instead of a wrapper per arity.

type simpleFn struct {
	minArgs, maxArgs int // maxArgs < 0 means unbounded
	out              func(argTypes []ValueType) (ValueType, *BuildError)
	eval             func(args []Value) Value
}

func (f simpleFn) OutputType(argTypes []ValueType) (ValueType, *BuildError) {
	if len(argTypes) < f.minArgs || (f.maxArgs >= 0 && len(argTypes) > f.maxArgs) {
		return 0, newBuildError(ErrArity, Position{}, "wrong number of arguments: got %d", len(argTypes))
	}
	return f.out(argTypes)
}

func (f simpleFn) Eval(args []Value) Value {
	if len(args) < f.minArgs || (f.maxArgs >= 0 && len(args) > f.maxArgs) {
		return NewError(ErrArity, "wrong number of arguments: got %d", len(args))
	}
	for _, a := range args {
		if a.IsError() {
			return a
		}
	}
	return f.eval(args)
}

// fixedOut returns an out-type function that always answers t, ignoring
// arguments (used by functions whose return type doesn't depend on input).
func fixedOut(t ValueType) func([]ValueType) (ValueType, *BuildError) {
	return func([]ValueType) (ValueType, *BuildError) { return t, nil }
}

// numeric1 builds a unary math function float64 -> float64, returning
// Double.
func numeric1(name string, f func(float64) float64) FuncBuilder {
	return func() Function {
		return simpleFn{
			minArgs: 1, maxArgs: 1,
			out: fixedOut(TypeDouble),
			eval: func(args []Value) Value {
				x, e := args[0].GetDouble()
				if e.IsError() {
					return e
				}
				return NewDouble(f(x))
			},
		}
	}
}

// numeric2 builds a binary math function (float64, float64) -> float64.
func numeric2(name string, f func(a, b float64) float64) FuncBuilder {
	return func() Function {
		return simpleFn{
			minArgs: 2, maxArgs: 2,
			out: fixedOut(TypeDouble),
			eval: func(args []Value) Value {
				a, e := args[0].GetDouble()
				if e.IsError() {
					return e
				}
				b, e2 := args[1].GetDouble()
				if e2.IsError() {
					return e2
				}
				return NewDouble(f(a, b))
			},
		}
	}
}

// constant builds a zero-arg function returning a fixed Value (e, pi, tau).
func constant(v Value) FuncBuilder {
	return func() Function {
		return simpleFn{
			minArgs: 0, maxArgs: 0,
			out:  fixedOut(ValueTypeOf(v)),
			eval: func([]Value) Value { return v },
		}
	}
}

// str1 builds a unary string->string function.
func str1(f func(string) string) FuncBuilder {
	return func() Function {
		return simpleFn{
			minArgs: 1, maxArgs: 1,
			out: fixedOut(TypeString),
			eval: func(args []Value) Value {
				s, e := args[0].GetString()
				if e.IsError() {
					return e
				}
				return NewString(f(s))
			},
		}
	}
}
