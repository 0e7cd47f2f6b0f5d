package rowflow

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// healthPipelineName is the reserved pipeline every Engine registers
// itself: the leading "%" can never collide with a user-defined pipeline
// name, since "%" is not in the identifier character class.
const healthPipelineName = "%health"

// Engine is the per-request dispatch surface over a fixed set of compiled
// Pipelines, plus the health-check and pipelines-listing endpoints,
// modeled as plain methods rather than HTTP handlers since transport is a
// host concern this engine stays out of.
type Engine struct {
	bctx      *BuildContext
	pipelines map[string]*Pipeline
}

// NewEngine returns an Engine with the reserved %health pipeline already
// registered: input Int column `a`, projecting `b = a + 42`.
func NewEngine(bctx *BuildContext) (*Engine, *BuildError) {
	health, err := buildHealthPipeline(bctx)
	if err != nil {
		return nil, err
	}
	return &Engine{
		bctx:      bctx,
		pipelines: map[string]*Pipeline{healthPipelineName: health},
	}, nil
}

func buildHealthPipeline(bctx *BuildContext) (*Pipeline, *BuildError) {
	schema, err := NewSchema(Column{Name: "a", Type: TypeInt})
	if err != nil {
		return nil, err
	}
	a, err := NewColumnExpr(schema, "a", Position{})
	if err != nil {
		return nil, err
	}
	sum, err := NewBinaryExpr("+", a, NewLiteralExpr(NewLong(42), "42"), Position{})
	if err != nil {
		return nil, err
	}
	stage, err := NewProjectStage(schema, []string{"b"}, []Expr{sum})
	if err != nil {
		return nil, err
	}
	return NewPipeline(healthPipelineName, schema, []Stage{stage}, bctx.Observability()), nil
}

// RegisterPipelines adds every pipeline in pipelines to the engine, failing
// if any name collides with the reserved health pipeline or a previously
// registered pipeline. Intended to be called once with the map returned by
// dsl.Build.
func (e *Engine) RegisterPipelines(pipelines map[string]*Pipeline) *BuildError {
	for name, p := range pipelines {
		if name == healthPipelineName {
			return NewBuildError(ErrColumnAlreadyExists, Position{}, "pipeline name %q is reserved", healthPipelineName)
		}
		if _, exists := e.pipelines[name]; exists {
			return NewBuildError(ErrColumnAlreadyExists, Position{}, "pipeline %q already registered", name)
		}
		e.pipelines[name] = p
	}
	return nil
}

// Pipeline returns the named compiled pipeline.
func (e *Engine) Pipeline(name string) (*Pipeline, bool) {
	p, ok := e.pipelines[name]
	return p, ok
}

// BuildContext returns the build context this engine's pipelines were
// compiled against, for hosts that register late-bound lookup sources or
// inspect the function table.
func (e *Engine) BuildContext() *BuildContext { return e.bctx }

// SingleRequest is one in-process request to run a single eager row
// through a named pipeline. Validate selects Strict (cast-only) vs Lenient
// (convert) reconciliation of data against the pipeline's input schema;
// Errors ("on"/"off") turns per-cell error collection on or off.
type SingleRequest struct {
	Pipeline string
	Data     map[string]any
	Validate bool
	Errors   string // "on" or "off"
}

// RowError is one collected per-cell Error, reported when a SingleRequest
// asks for Errors: "on".
type RowError struct {
	Row     int
	Column  string
	Message string
}

// SingleResponse is the result of a SingleRequest.
type SingleResponse struct {
	Pipeline string
	Status   string // "OK" or "ERROR: …"
	TimeMS   float64
	Count    int
	Data     []map[string]any
	Errors   []RowError
}

// Process runs one SingleRequest to completion, draining the pipeline's
// output DataSet into an in-memory SingleResponse. A pipeline-not-found
// condition and an in-flight evaluation failure both surface as an
// "ERROR: …" status rather than a Go error; cancellations are absorbed
// silently and report whatever rows were produced.
func (e *Engine) Process(ctx context.Context, req SingleRequest) (SingleResponse, error) {
	start := time.Now()
	resp := SingleResponse{Pipeline: req.Pipeline}

	p, ok := e.pipelines[req.Pipeline]
	if !ok {
		resp.Status = fmt.Sprintf("ERROR: pipeline %q not found", req.Pipeline)
		resp.TimeMS = elapsedMS(start)
		return resp, nil
	}

	mode := Lenient
	if req.Validate {
		mode = Strict
	}
	row := rowFromData(p.InputSchema, req.Data)
	ds := NewSliceDataSet(p.InputSchema, []Row{row})

	out, procErr := p.Process(ctx, ds, mode)
	if procErr != nil {
		resp.Status = "ERROR: " + procErr.Error()
		resp.TimeMS = elapsedMS(start)
		return resp, nil
	}

	rows, drainErr := Drain(ctx, out)
	if drainErr != nil && !IsInterrupted(drainErr) {
		resp.Status = "ERROR: " + drainErr.Error()
		resp.TimeMS = elapsedMS(start)
		return resp, nil
	}

	collectErrors := req.Errors == "on"
	outSchema := out.Schema()
	resp.Data = make([]map[string]any, len(rows))
	for i, r := range rows {
		m := make(map[string]any, len(r))
		for col, v := range r {
			name := outSchema.Columns[col].Name
			if collectErrors && v.IsError() {
				resp.Errors = append(resp.Errors, RowError{Row: i, Column: name, Message: v.AsError().String()})
			}
			m[name] = v.ToJSON()
		}
		resp.Data[i] = m
	}
	resp.Count = len(rows)
	resp.Status = "OK"
	resp.TimeMS = elapsedMS(start)
	return resp, nil
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

// rowFromData builds a Row from a JSON-decoded field map, in schema column
// order, mapping a missing field to Null. The row is always full width, so
// the validator coerces that Null per mode; it is not padded with a
// ValidationError the way a short upstream row is.
func rowFromData(schema Schema, data map[string]any) Row {
	row := make(Row, schema.Len())
	for i, c := range schema.Columns {
		if v, ok := data[c.Name]; ok {
			row[i] = ValueFromJSON(v)
		} else {
			row[i] = Null
		}
	}
	return row
}

// HealthCheck runs the %health pipeline against input 57 and reports
// whether it produced the expected 99.
func (e *Engine) HealthCheck(ctx context.Context) error {
	p := e.pipelines[healthPipelineName]
	ds := NewSliceDataSet(p.InputSchema, []Row{{NewInt(57)}})
	out, err := p.Process(ctx, ds, Strict)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	rows, err := Drain(ctx, out)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	if len(rows) != 1 {
		return fmt.Errorf("health check: expected 1 row, got %d", len(rows))
	}
	idx := out.Schema().IndexOf("b")
	got, errVal := rows[0][idx].GetLong()
	if errVal.IsError() {
		return fmt.Errorf("health check: %s", errVal.AsError())
	}
	if got != 99 {
		return fmt.Errorf("health check: expected 99, got %d", got)
	}
	return nil
}

// PipelineInfo describes one registered pipeline for the pipelines-listing
// endpoint: its name, input/output schemas, and textual dump.
type PipelineInfo struct {
	Name         string
	InputSchema  Schema
	OutputSchema Schema
	Dump         string
}

// Pipelines lists every registered pipeline, sorted by name for a stable
// listing order.
func (e *Engine) Pipelines() []PipelineInfo {
	out := make([]PipelineInfo, 0, len(e.pipelines))
	for name, p := range e.pipelines {
		out = append(out, PipelineInfo{
			Name:         name,
			InputSchema:  p.InputSchema,
			OutputSchema: p.OutputSchema(),
			Dump:         p.Dump(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
