package trace_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/minilisp/minilisp/internal/trace"
)

func TestRecordGCEmitsSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	t.Cleanup(func() { assert.NoError(t, tp.Shutdown(context.Background())) })
	otel.SetTracerProvider(tp)

	r := trace.NewRecorder()
	r.RecordGC(context.Background(), trace.GCStats{
		CellsAllocated: 10,
		CellsFreed:     4,
		PoolFree:       996,
		InternBytes:    128,
	})

	spans := exporter.GetSpans()
	assert.Len(t, spans, 1)
	assert.Equal(t, "minilisp.gc", spans[0].Name)
}

func TestRecordModuleLoadRecordsErrorOnFailure(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	t.Cleanup(func() { assert.NoError(t, tp.Shutdown(context.Background())) })
	otel.SetTracerProvider(tp)

	r := trace.NewRecorder()
	done := r.RecordModuleLoad(context.Background(), 3, 64)
	done(errors.New("bad relocation"))

	spans := exporter.GetSpans()
	assert.Len(t, spans, 1)
	assert.Equal(t, "minilisp.module_load", spans[0].Name)
	assert.NotEmpty(t, spans[0].Events)
}

func TestNilRecorderIsANoop(t *testing.T) {
	var r *trace.Recorder
	r.RecordGC(context.Background(), trace.GCStats{})
	r.RecordVMSteps(context.Background(), 100)
	done := r.RecordModuleLoad(context.Background(), 1, 1)
	done(nil)
}
