// Package trace wraps the OpenTelemetry instruments the runtime reports
// through: counters and gauges for allocation and collection, a span for
// each completed GC cycle, and spans around module loads.
package trace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/minilisp/minilisp"

// Recorder owns the counter/gauge instruments the runtime updates on every
// GC pass and module load. A nil *Recorder is valid and records nothing,
// so hosts that don't want telemetry never have to check for one.
type Recorder struct {
	tracer trace.Tracer

	cellsAllocated metric.Int64Counter
	cellsFreed     metric.Int64Counter
	gcPasses       metric.Int64Counter
	poolFree       metric.Int64Gauge
	internBytes    metric.Int64Gauge
	vmSteps        metric.Int64Counter
	moduleLoads    metric.Int64Counter
}

// NewRecorder builds a Recorder against the process's global MeterProvider
// and TracerProvider (otel.GetMeterProvider/otel.GetTracerProvider).
// Instrument-creation errors are swallowed: telemetry degrading to a no-op
// is preferable to the interpreter failing to start because a metrics
// backend wasn't wired up.
func NewRecorder() *Recorder {
	meter := otel.GetMeterProvider().Meter(instrumentationName)
	r := &Recorder{tracer: otel.GetTracerProvider().Tracer(instrumentationName)}
	r.cellsAllocated, _ = meter.Int64Counter("minilisp.cells_allocated")
	r.cellsFreed, _ = meter.Int64Counter("minilisp.cells_freed")
	r.gcPasses, _ = meter.Int64Counter("minilisp.gc_passes")
	r.poolFree, _ = meter.Int64Gauge("minilisp.pool_free")
	r.internBytes, _ = meter.Int64Gauge("minilisp.intern_bytes_used")
	r.vmSteps, _ = meter.Int64Counter("minilisp.vm_steps")
	r.moduleLoads, _ = meter.Int64Counter("minilisp.module_loads")
	return r
}

// GCStats is the snapshot of pool/GC counters a recorded GC cycle reports.
type GCStats struct {
	CellsAllocated int64
	CellsFreed     int64
	PoolFree       int
	InternBytes    int
}

// RecordGC records one completed GC cycle as a span and updates the
// allocation/pass counters. It is called after the sweep, so the span
// carries the cycle's counters, not its duration.
func (r *Recorder) RecordGC(ctx context.Context, stats GCStats) {
	if r == nil {
		return
	}
	_, span := r.tracer.Start(ctx, "minilisp.gc")
	defer span.End()
	r.gcPasses.Add(ctx, 1)
	r.cellsAllocated.Add(ctx, stats.CellsAllocated)
	r.cellsFreed.Add(ctx, stats.CellsFreed)
	r.poolFree.Record(ctx, int64(stats.PoolFree))
	r.internBytes.Record(ctx, int64(stats.InternBytes))
	span.SetAttributes(
		attribute.Int64("cells_freed", stats.CellsFreed),
		attribute.Int("pool_free", stats.PoolFree),
	)
}

// RecordModuleLoad wraps one module-load call in a span, tagging it with
// the blob's symbol count and byte length for dashboards that bucket by
// module size.
func (r *Recorder) RecordModuleLoad(ctx context.Context, symbolCount, bytecodeLength int) func(err error) {
	if r == nil {
		return func(error) {}
	}
	_, span := r.tracer.Start(ctx, "minilisp.module_load",
		trace.WithAttributes(
			attribute.Int("symbol_count", symbolCount),
			attribute.Int("bytecode_length", bytecodeLength),
		))
	r.moduleLoads.Add(ctx, 1)
	return func(err error) {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}
}

// RecordVMSteps adds n executed instructions to the running counter,
// called periodically rather than per-instruction to keep the hot loop
// free of metric-recording overhead.
func (r *Recorder) RecordVMSteps(ctx context.Context, n int64) {
	if r == nil || n == 0 {
		return
	}
	r.vmSteps.Add(ctx, n)
}
