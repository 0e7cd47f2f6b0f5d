package rowflow

import (
	"context"
	"strings"
	"time"

	"github.com/zoobzio/capitan"
)

// Pipeline is a named, ordered chain of Stages built once against an input
// Schema. A built Pipeline is immutable and safe for concurrent use across
// requests; each Process call assembles its own DataSet chain.
type Pipeline struct {
	Name        string
	InputSchema Schema
	Stages      []Stage
	obs         *Observability
}

// NewPipeline builds a Pipeline by threading input through each stage's
// OutputSchema in turn; it does not validate that stages were constructed
// against the correct intermediate schema, which is the builder's
// responsibility (see dsl subpackage).
func NewPipeline(name string, input Schema, stages []Stage, obs *Observability) *Pipeline {
	if obs == nil {
		obs = NewObservability()
	}
	return &Pipeline{Name: name, InputSchema: input, Stages: stages, obs: obs}
}

// OutputSchema returns the schema of rows Process ultimately emits.
func (p *Pipeline) OutputSchema() Schema {
	schema := p.InputSchema
	for _, s := range p.Stages {
		schema = s.OutputSchema(schema)
	}
	return schema
}

// Process validates ds against InputSchema under mode, then threads it
// through every stage in order, returning the final DataSet lazily (no
// stage runs until the caller pulls from the result). Only Next and lookup
// calls may block; this method itself never does.
func (p *Pipeline) Process(ctx context.Context, ds DataSet, mode ValidationMode) (DataSet, error) {
	start := time.Now()
	ctx, span := p.obs.tracer.StartSpan(ctx, SpanPipelineProcess)
	span.SetTag(TagPipelineName, p.Name)
	defer span.Finish()

	capitan.Emit(ctx, SignalPipelineStarted,
		FieldPipelineName.Field(p.Name),
	)
	_ = p.obs.hooks.Emit(ctx, EventPipelineStarted, PipelineEvent{Name: p.Name}) //nolint:errcheck

	current := Validate(ds, p.InputSchema, mode)
	for i, stage := range p.Stages {
		current = p.instrumentStage(i, stage, stage.Apply(current))
	}

	return &pipelineDataSet{
		upstream: current,
		pipeline: p,
		start:    start,
	}, nil
}

// instrumentStage wraps a stage's output DataSet so every row pulled
// through it increments the MetricRowsOut counter on the pipeline's
// *metricz.Registry (one counter for all stages, not keyed by stage).
func (p *Pipeline) instrumentStage(index int, stage Stage, ds DataSet) DataSet {
	return newMappedDataSet(ds, ds.Schema(), func(row Row) (Row, bool, error) {
		p.obs.metrics.Counter(MetricRowsOut).Inc()
		_ = index
		_ = stage
		return row, true, nil
	})
}

// Dump produces a round-trippable textual form of the pipeline: the same
// `name(schema) | stage ... ;` shape the DSL parser consumes, one stage
// per line.
func (p *Pipeline) Dump() string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteString(p.InputSchema.String())
	b.WriteString("\n")
	for _, s := range p.Stages {
		b.WriteString("| ")
		b.WriteString(s.Dump())
		b.WriteString("\n")
	}
	b.WriteString(";")
	return b.String()
}

// NodeKind tags whether a Node describes the pipeline root or one stage.
type NodeKind int

const (
	NodePipeline NodeKind = iota
	NodeStage
)

// Node is one entry in the structured tree Describe returns: the pipeline
// itself, with one child Node per stage in execution order.
type Node struct {
	Kind     NodeKind
	Name     string
	Schema   Schema
	Children []*Node
}

// Describe returns the Node tree backing Dump, for hosts that want a
// structured (not textual) view of the pipeline's shape.
func (p *Pipeline) Describe() *Node {
	n := &Node{Kind: NodePipeline, Name: p.Name, Schema: p.InputSchema}
	schema := p.InputSchema
	for _, s := range p.Stages {
		out := s.OutputSchema(schema)
		n.Children = append(n.Children, &Node{Kind: NodeStage, Name: s.Dump(), Schema: out})
		schema = out
	}
	return n
}

// pipelineDataSet wraps the final stage's DataSet to emit the completion
// or cancellation signal exactly once, when the stream is actually
// drained (not when Process is called), since Process never runs a stage
// eagerly.
type pipelineDataSet struct {
	upstream DataSet
	pipeline *Pipeline
	start    time.Time
	done     bool
	rows     int64
}

func (d *pipelineDataSet) Schema() Schema { return d.upstream.Schema() }

func (d *pipelineDataSet) Next(ctx context.Context) (Row, bool, error) {
	row, ok, err := d.upstream.Next(ctx)
	if err != nil {
		d.finish(ctx, err)
		return nil, false, err
	}
	if !ok {
		d.finish(ctx, nil)
		return nil, false, nil
	}
	d.rows++
	return row, true, nil
}

func (d *pipelineDataSet) finish(ctx context.Context, err error) {
	if d.done {
		return
	}
	d.done = true
	p := d.pipeline
	if IsInterrupted(err) {
		capitan.Emit(ctx, SignalPipelineCanceled,
			FieldPipelineName.Field(p.Name),
			FieldRowCount.Field(int(d.rows)),
			FieldDurationSecs.Field(time.Since(d.start).Seconds()),
		)
		_ = p.obs.hooks.Emit(ctx, EventPipelineCanceled, PipelineEvent{Name: p.Name, RowsOut: d.rows, Err: err}) //nolint:errcheck
		return
	}
	capitan.Emit(ctx, SignalPipelineCompleted,
		FieldPipelineName.Field(p.Name),
		FieldRowCount.Field(int(d.rows)),
		FieldDurationSecs.Field(time.Since(d.start).Seconds()),
	)
	_ = p.obs.hooks.Emit(ctx, EventPipelineCompleted, PipelineEvent{Name: p.Name, RowsOut: d.rows, Err: err}) //nolint:errcheck
}
