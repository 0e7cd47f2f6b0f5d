package rowflow

import (
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Signal constants for pipeline-run events. Signals follow the pattern
// <area>.<event>.
const (
	SignalPipelineStarted   capitan.Signal = "pipeline.started"
	SignalPipelineCompleted capitan.Signal = "pipeline.completed"
	SignalPipelineCanceled  capitan.Signal = "pipeline.canceled"

	SignalValidationFailed capitan.Signal = "validation.failed"

	SignalLookupBatchDone capitan.Signal = "lookup.batch-done"
	SignalLookupMiss      capitan.Signal = "lookup.miss"

	SignalRowDropped capitan.Signal = "row.dropped"
)

// Common field keys, primitive-typed per capitan.NewXKey convention so
// signal payloads never need custom struct serialization.
var (
	FieldPipelineName = capitan.NewStringKey("pipeline")
	FieldStageIndex   = capitan.NewIntKey("stage_index")
	FieldStageKind    = capitan.NewStringKey("stage_kind")
	FieldRowCount     = capitan.NewIntKey("row_count")
	FieldErrorCount   = capitan.NewIntKey("error_count")
	FieldDurationSecs = capitan.NewFloat64Key("duration")
	FieldError        = capitan.NewStringKey("error")

	FieldSourceName = capitan.NewStringKey("source_name")
	FieldBatchSize  = capitan.NewIntKey("batch_size")
	FieldKey        = capitan.NewStringKey("key")
)

// Metric keys for the engine-level counters/gauges.
const (
	MetricRowsIn          = metricz.Key("rowflow.rows.in")
	MetricRowsOut         = metricz.Key("rowflow.rows.out")
	MetricRowsDropped     = metricz.Key("rowflow.rows.dropped")
	MetricValidationFails = metricz.Key("rowflow.validation.failures")
	MetricLookupBatches   = metricz.Key("rowflow.lookup.batches")
	MetricLookupMisses    = metricz.Key("rowflow.lookup.misses")
	MetricActiveStages    = metricz.Key("rowflow.stages.active")
)

// Span keys and tags for tracez instrumentation of a pipeline run.
const (
	SpanPipelineProcess = tracez.Key("pipeline.process")
	SpanStageApply      = tracez.Key("stage.apply")
	SpanLookupBatch     = tracez.Key("lookup.batch")
)

const (
	TagPipelineName = tracez.Tag("pipeline.name")
	TagStageIndex   = tracez.Tag("stage.index")
	TagStageKind    = tracez.Tag("stage.kind")
	TagRowCount     = tracez.Tag("row.count")
	TagSuccess      = tracez.Tag("success")
)

// PipelineEvent is emitted via hookz on pipeline start/completion/cancellation.
type PipelineEvent struct {
	Name    string
	RowsIn  int64
	RowsOut int64
	Err     error
}

// Hook event keys.
const (
	EventPipelineStarted   = hookz.Key("pipeline.started")
	EventPipelineCompleted = hookz.Key("pipeline.completed")
	EventPipelineCanceled  = hookz.Key("pipeline.canceled")
)

// Observability bundles the metricz/tracez/hookz instruments a Pipeline
// uses while running, constructed per instance via metricz.New()/
// tracez.New()/hookz.New[T]().
type Observability struct {
	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[PipelineEvent]
}

// NewObservability builds a fresh, independent set of instruments. A
// BuildContext holds one and passes it to every pipeline built from it;
// NewPipeline creates a fresh one only when given nil.
func NewObservability() *Observability {
	metrics := metricz.New()
	metrics.Counter(MetricRowsIn)
	metrics.Counter(MetricRowsOut)
	metrics.Counter(MetricRowsDropped)
	metrics.Counter(MetricValidationFails)
	metrics.Counter(MetricLookupBatches)
	metrics.Counter(MetricLookupMisses)
	metrics.Gauge(MetricActiveStages)

	return &Observability{
		metrics: metrics,
		tracer:  tracez.New(),
		hooks:   hookz.New[PipelineEvent](),
	}
}

// Metrics exposes the registry for external scraping.
func (o *Observability) Metrics() *metricz.Registry { return o.metrics }

// Tracer exposes the tracer for external span export.
func (o *Observability) Tracer() *tracez.Tracer { return o.tracer }

// Hooks exposes the hookz bus so callers can subscribe to pipeline events.
func (o *Observability) Hooks() *hookz.Hooks[PipelineEvent] { return o.hooks }
