package rowflow

import (
	"os"
	"regexp"

	"github.com/zoobzio/clockz"
)

// secretPattern matches a field value of the exact form ${NAME}, resolved
// against the environment at build time. Applies to any textual
// configuration surface BuildContext reads (lookup-source config fields
// and DSL string literals alike), not only lookup-source JSON.
var secretPattern = regexp.MustCompile(`^\$\{([^}]+)\}$`)

// BuildContext bundles everything pipeline building needs to resolve
// names against: the function registry, the lookup-source table, a clock
// for time-dependent built-ins, and the observability instruments a built
// Pipeline will share. One BuildContext typically backs a whole host
// process; Pipelines built from it are independent once built.
type BuildContext struct {
	registry      *Registry
	lookupSources map[string]LookupSource
	clock         clockz.Clock
	obs           *Observability
}

// NewBuildContext returns a BuildContext with every built-in function
// registered and clockz.RealClock as the default clock. Use WithClock and
// RegisterLookupSource to customize before building pipelines.
func NewBuildContext() *BuildContext {
	r := NewRegistry()
	registerMathFunctions(r)
	registerBitBoolFunctions(r)
	registerStringFunctions(r)
	registerArrayFunctions(r)
	registerJSONFunctions(r)
	registerMiscFunctions(r)

	bc := &BuildContext{
		registry:      r,
		lookupSources: make(map[string]LookupSource),
		clock:         clockz.RealClock,
		obs:           NewObservability(),
	}
	registerDateTimeFunctions(r, bc.getClock)
	return bc
}

// WithClock swaps the clock backing time-dependent built-ins (now,
// current_timestamp, current_date, unix_timestamp). The datetime function
// table reads the clock through getClock at eval time, so swapping takes
// effect for already-built pipelines too. Intended for tests via
// clockz.NewFakeClock().
func (bc *BuildContext) WithClock(clock clockz.Clock) *BuildContext {
	bc.clock = clock
	return bc
}

// Clock returns the clock currently backing time-dependent built-ins.
func (bc *BuildContext) Clock() clockz.Clock { return bc.getClock() }

func (bc *BuildContext) getClock() clockz.Clock {
	if bc.clock == nil {
		return clockz.RealClock
	}
	return bc.clock
}

// Observability returns the metricz/tracez/hookz instruments shared by
// pipelines built from this context.
func (bc *BuildContext) Observability() *Observability { return bc.obs }

// RegisterFunction adds a user-supplied function under name, failing if
// name collides with a built-in or a previously registered user function
// (duplicate names are a build-time error per the function table's
// uniqueness rule).
func (bc *BuildContext) RegisterFunction(name string, b FuncBuilder) *BuildError {
	if err := bc.registry.Register(name, b); err != nil {
		return newBuildError(ErrArity, Position{}, "%s", err.Error())
	}
	return nil
}

// LookupFunction resolves name against the function table.
func (bc *BuildContext) LookupFunction(name string) (Function, bool) {
	return bc.registry.Lookup(name)
}

// RegisterLookupSource adds a LookupSource under name, failing if name is
// already registered.
func (bc *BuildContext) RegisterLookupSource(name string, src LookupSource) *BuildError {
	if _, ok := bc.lookupSources[name]; ok {
		return newBuildError(ErrColumnAlreadyExists, Position{}, "lookup source %q already registered", name)
	}
	bc.lookupSources[name] = src
	return nil
}

// LookupSourceByName resolves name against the lookup-source table,
// producing a BuildError at pos when unknown rather than a panic, since
// this is invoked from the pipeline builder at parse-resolution time.
func (bc *BuildContext) LookupSourceByName(name string, pos Position) (LookupSource, *BuildError) {
	src, ok := bc.lookupSources[name]
	if !ok {
		return nil, newBuildError(ErrLookupSourceNotFound, pos, "lookup source %q not found", name)
	}
	return src, nil
}

// ResolveSecret interpolates a field value of the exact form ${NAME} into
// the value of environment variable NAME. A value that is not of that
// exact form is returned unchanged; a value of that form whose variable is
// unset produces an EnvVarNotSet BuildError at the call site.
func (bc *BuildContext) ResolveSecret(field string, pos Position) (string, *BuildError) {
	m := secretPattern.FindStringSubmatch(field)
	if m == nil {
		return field, nil
	}
	name := m[1]
	val, ok := os.LookupEnv(name)
	if !ok {
		return "", newBuildError(ErrEnvVarNotSet, pos, "environment variable %q is not set", name)
	}
	return val, nil
}
