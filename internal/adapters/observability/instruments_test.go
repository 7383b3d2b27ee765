package observability_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"hotel_listing/internal/adapters/observability"
)

func TestStepTracer_OneSpanPerStep(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	tr := observability.NewStepTracer(tp)

	ctx, endOuter := tr.Start(context.Background(), "total")
	_, endInner := tr.Start(ctx, "loadAttributes")
	endInner()
	endOuter()

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name() != "loadAttributes" || spans[1].Name() != "total" {
		t.Fatalf("unexpected span names: %s, %s", spans[0].Name(), spans[1].Name())
	}
	if spans[0].Parent().SpanID() != spans[1].SpanContext().SpanID() {
		t.Fatalf("step span should be a child of the total span")
	}
}

func TestStepTimings_WritesToContextCollector(t *testing.T) {
	st := observability.NewServerTiming()
	ctx := observability.WithServerTiming(context.Background(), st)

	_, end := observability.StepTimings{}.Start(ctx, "loadReviews")
	end()
	_, end = observability.StepTimings{}.Start(ctx, "findCheapestRoom")
	end()
	_, end = observability.StepTimings{}.Start(ctx, "loadReviews")
	end()

	h := st.Header()
	if !strings.HasPrefix(h, "loadReviews;dur=") || !strings.Contains(h, ", findCheapestRoom;dur=") {
		t.Fatalf("unexpected header: %q", h)
	}
	if strings.Count(h, "loadReviews") != 1 {
		t.Fatalf("repeated steps should be summed: %q", h)
	}
}

func TestStepTimings_NoCollectorIsNoop(t *testing.T) {
	ctx, end := observability.StepTimings{}.Start(context.Background(), "total")
	end()
	if observability.ServerTimingFrom(ctx) != nil {
		t.Fatalf("expected no collector")
	}
}

func TestServerTiming_Header(t *testing.T) {
	st := observability.NewServerTiming()
	st.Add("total", 1500*time.Microsecond)
	st.Add("total", 500*time.Microsecond)
	if got := st.Header(); got != "total;dur=2.000" {
		t.Fatalf("unexpected header: %q", got)
	}
}

func TestSteps_FanOut(t *testing.T) {
	st := observability.NewServerTiming()
	ctx := observability.WithServerTiming(context.Background(), st)
	before := testutil.CollectAndCount(observability.StepLatency)

	steps := observability.Steps{observability.StepMetrics{}, observability.StepTimings{}}
	_, end := steps.Start(ctx, "fanout_step")
	end()

	if !strings.Contains(st.Header(), "fanout_step;dur=") {
		t.Fatalf("expected server timing entry, got %q", st.Header())
	}
	if after := testutil.CollectAndCount(observability.StepLatency); after != before+1 {
		t.Fatalf("expected a new histogram series, got %d -> %d", before, after)
	}
}

func TestSetupTracing_NoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := observability.SetupTracing(context.Background(), "test-service", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}
