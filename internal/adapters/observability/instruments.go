package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// The instruments below time named pipeline steps. Start returns the context
// to run the step with and a func that ends the measurement.

// StepMetrics records step durations in the StepLatency histogram.
type StepMetrics struct{}

func (StepMetrics) Start(ctx context.Context, step string) (context.Context, func()) {
	start := time.Now()
	return ctx, func() { StepLatency.WithLabelValues(step).Observe(time.Since(start).Seconds()) }
}

// StepTracer opens one OpenTelemetry span per step.
type StepTracer struct{ tracer trace.Tracer }

// NewStepTracer uses tp, or the global provider when tp is nil.
func NewStepTracer(tp trace.TracerProvider) StepTracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return StepTracer{tracer: tp.Tracer("hotel_listing/listing")}
}

func (t StepTracer) Start(ctx context.Context, step string) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, step, trace.WithAttributes(attribute.String("listing.step", step)))
	return ctx, func() { span.End() }
}

// StepTimings adds step durations to the Server-Timing collector carried by
// the context, if any.
type StepTimings struct{}

func (StepTimings) Start(ctx context.Context, step string) (context.Context, func()) {
	st := ServerTimingFrom(ctx)
	if st == nil {
		return ctx, func() {}
	}
	start := time.Now()
	return ctx, func() { st.Add(step, time.Since(start)) }
}

type stepInstrument interface {
	Start(ctx context.Context, step string) (context.Context, func())
}

// Steps fans one measurement out to several instruments.
type Steps []stepInstrument

func (s Steps) Start(ctx context.Context, step string) (context.Context, func()) {
	ends := make([]func(), 0, len(s))
	for _, in := range s {
		var end func()
		ctx, end = in.Start(ctx, step)
		ends = append(ends, end)
	}
	return ctx, func() {
		for i := len(ends) - 1; i >= 0; i-- {
			ends[i]()
		}
	}
}
