// Package rowflow implements a streaming row-transformation engine driven by
// a small textual pipeline DSL.
//
// # Overview
//
// A pipeline declares an input row schema and a linear chain of stages that
// turn an incoming lazy sequence of rows into an outgoing lazy sequence of
// rows. Rows carry dynamically typed Values (null, bool, int32, int64,
// float32, float64, string, timestamp, array, object, and a first-class
// error value). The engine targets low-latency per-request feature
// computation with per-field error isolation and optional enrichment from
// external lookup sources.
//
// # Core concepts
//
//   - Value / ValueType: the polymorphic datum and its type tag (value.go).
//   - Schema / Column / Row: the shape that flows between stages (schema.go).
//   - Expr: column references, literals, and operator/function calls that
//     evaluate synchronously against a single row (expr.go).
//   - DataSet: a lazy, single-pass, context-aware row source (dataset.go).
//   - Stage: a pure function from (Schema, DataSet) to (Schema, DataSet)
//     implemented by where/project*/explode/take/top/distinct/summarize/
//     lookup/ignore-error (stage_*.go).
//   - LookupSource: the external single-key/join collaborator a lookup
//     stage calls in batches (lookup.go).
//   - BuildContext: the compile-time environment binding function and
//     lookup-source names, plus secret interpolation (buildcontext.go).
//   - Pipeline: the immutable, compiled result of parsing and building one
//     DSL pipeline block (pipeline.go).
//
// # Example
//
//	text := `
//	score(user_id as int, raw as array)
//	| explode raw as double
//	| where raw > 0
//	| project doubled = raw * 2
//	| take 10
//	;`
//
//	program, err := dsl.Parse(text)
//	bctx := rowflow.NewBuildContext()
//	pipelines, err := dsl.Build(bctx, program)
//	ds := rowflow.NewSliceDataSet(pipelines["score"].InputSchema, rows)
//	out, err := pipelines["score"].Process(ctx, ds, rowflow.Strict)
//
// # Observability
//
// Every pipeline run wires github.com/zoobzio/metricz row counters and a
// github.com/zoobzio/tracez span around the stage chain, emits
// github.com/zoobzio/capitan structured signals at start, completion, and
// cancellation, and exposes github.com/zoobzio/hookz typed async hooks so
// a host can observe pipeline behaviour without touching the hot path.
// None of this is optional or feature-gated.
package rowflow
