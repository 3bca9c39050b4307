package middleware

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/felixgeelhaar/minirpc/protocol"
)

func newTestTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, exporter
}

func spanAttr(span tracetest.SpanStub, key string) (attribute.Value, bool) {
	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

// sumOf totals an int64 counter across all data points.
func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s has data %T, want Sum[int64]", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestOTelMiddleware(t *testing.T) {
	t.Run("creates span for operation", func(t *testing.T) {
		tp, exporter := newTestTracer(t)

		handler := OTel(WithTracerProvider(tp))(wireHandler)

		err := handler(context.Background(), decodeRequest(`{"id":1,"method":"tools/list","params":[]}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		spans := exporter.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}

		span := spans[0]
		if span.Name != "minirpc.decode.request" {
			t.Errorf("expected span name 'minirpc.decode.request', got %q", span.Name)
		}
		if span.Status.Code != codes.Ok {
			t.Errorf("status = %v, want Ok", span.Status.Code)
		}
		if v, ok := spanAttr(span, "minirpc.payloads"); !ok || v.AsInt64() != 1 {
			t.Errorf("minirpc.payloads = %v, want 1", v.AsInt64())
		}
		if v, ok := spanAttr(span, "minirpc.methods"); !ok || len(v.AsStringSlice()) != 1 || v.AsStringSlice()[0] != "tools/list" {
			t.Errorf("minirpc.methods = %v", v.AsStringSlice())
		}
	})

	t.Run("records error on failure", func(t *testing.T) {
		tp, exporter := newTestTracer(t)

		expectedErr := errors.New("handler failed")
		handler := OTel(WithTracerProvider(tp))(func(ctx context.Context, op *Operation) error {
			return expectedErr
		})

		if err := handler(context.Background(), decodeRequest(`{}`)); !errors.Is(err, expectedErr) {
			t.Fatalf("error = %v, want %v", err, expectedErr)
		}

		spans := exporter.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if len(spans[0].Events) == 0 {
			t.Error("expected error event on span")
		}
		if spans[0].Status.Code != codes.Error {
			t.Errorf("status = %v, want Error", spans[0].Status.Code)
		}
	})

	t.Run("records wire error code of decode failures", func(t *testing.T) {
		tests := []struct {
			input string
			want  protocol.Code
		}{
			{`{"id":`, protocol.ParseError},
			{`{"id":1}`, protocol.InvalidRequest},
		}

		for _, tt := range tests {
			tp, exporter := newTestTracer(t)
			handler := OTel(WithTracerProvider(tp))(wireHandler)
			_ = handler(context.Background(), decodeRequest(tt.input))

			spans := exporter.GetSpans()
			if len(spans) != 1 {
				t.Fatalf("expected 1 span, got %d", len(spans))
			}
			v, ok := spanAttr(spans[0], "minirpc.error_code")
			if !ok {
				t.Fatalf("%s: expected minirpc.error_code attribute", tt.input)
			}
			if v.AsInt64() != int64(tt.want) {
				t.Errorf("%s: error code = %d, want %d", tt.input, v.AsInt64(), tt.want)
			}
		}
	})

	t.Run("skips configured operations", func(t *testing.T) {
		tp, exporter := newTestTracer(t)

		handler := OTel(
			WithTracerProvider(tp),
			WithOTelSkipOperations("decode.request"),
		)(wireHandler)

		if err := handler(context.Background(), decodeRequest(`{"method":"ping","params":[]}`)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if spans := exporter.GetSpans(); len(spans) != 0 {
			t.Errorf("expected 0 spans for skipped operation, got %d", len(spans))
		}
	})

	t.Run("uses custom service name", func(t *testing.T) {
		tp, exporter := newTestTracer(t)

		handler := OTel(
			WithTracerProvider(tp),
			WithOTelServiceName("billing-gateway"),
		)(wireHandler)
		_ = handler(context.Background(), decodeRequest(`{"method":"m","params":[]}`))

		spans := exporter.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if v, ok := spanAttr(spans[0], "service.name"); !ok || v.AsString() != "billing-gateway" {
			t.Error("expected service.name attribute with custom value")
		}
	})

	t.Run("uses global providers by default", func(t *testing.T) {
		if OTel() == nil {
			t.Fatal("expected non-nil middleware")
		}
	})

	t.Run("records metrics", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer mp.Shutdown(context.Background())

		handler := OTel(WithMeterProvider(mp))(wireHandler)
		ctx := context.Background()

		_ = handler(ctx, decodeRequest(`{"id":1,"method":"m","params":[]}`))
		_ = handler(ctx, decodeRequest(`{"id":1}`))
		_ = handler(ctx, &Operation{
			Direction: Decode,
			Kind:      KindResponse,
			Data:      []byte(`[{"error":{"code":-32601,"message":"Method not found"},"id":1},{"error":{"code":-32602,"message":"Invalid params"},"id":2},{"id":3,"result":1}]`),
		})

		var rm metricdata.ResourceMetrics
		if err := reader.Collect(ctx, &rm); err != nil {
			t.Fatalf("collect: %v", err)
		}

		if got := sumOf(t, rm, "minirpc.codec.operations"); got != 3 {
			t.Errorf("operations = %d, want 3", got)
		}
		if got := sumOf(t, rm, "minirpc.codec.errors"); got != 1 {
			t.Errorf("errors = %d, want 1", got)
		}
		if got := sumOf(t, rm, "minirpc.codec.failures"); got != 2 {
			t.Errorf("failures = %d, want 2", got)
		}
	})
}

func TestSpanHelpers(t *testing.T) {
	t.Run("SpanFromContext returns span", func(t *testing.T) {
		tp, _ := newTestTracer(t)

		ctx, span := tp.Tracer("test").Start(context.Background(), "test-span")
		defer span.End()

		if got := SpanFromContext(ctx); got != span {
			t.Error("expected same span from context")
		}
	})

	t.Run("AddSpanEvent adds event", func(t *testing.T) {
		tp, exporter := newTestTracer(t)

		ctx, span := tp.Tracer("test").Start(context.Background(), "test-span")
		AddSpanEvent(ctx, "test-event", attribute.String("key", "value"))
		span.End()

		spans := exporter.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if len(spans[0].Events) != 1 || spans[0].Events[0].Name != "test-event" {
			t.Errorf("events = %v, want one test-event", spans[0].Events)
		}
	})
}

func TestOTelMiddleware_GuardRejectionEvents(t *testing.T) {
	tests := []struct {
		name  string
		guard Middleware
		input string
		want  string
	}{
		{"size limit", SizeLimit(8), `{"id":1,"method":"m","params":[]}`, "size_limit"},
		{"batch limit", BatchLimit(1), `[{"method":"a","params":[]},{"method":"b","params":[]}]`, "batch_limit"},
		{"validate", Validate(newValidator(t)), `{"id":1,"method":"sum","params":{"a":1}}`, "validate"},
		{"rate limit", RateLimit(1, 1), `{"method":"m","params":[]}`, "rate_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, exporter := newTestTracer(t)
			handler := Chain(OTel(WithTracerProvider(tp)), tt.guard)(wireHandler)

			err := handler(context.Background(), decodeRequest(tt.input))
			if tt.want == "rate_limit" {
				err = handler(context.Background(), decodeRequest(tt.input))
			}
			if err == nil {
				t.Fatal("expected guard to reject the operation")
			}

			spans := exporter.GetSpans()
			last := spans[len(spans)-1]
			var found bool
			for _, ev := range last.Events {
				if ev.Name != RejectedEvent {
					continue
				}
				for _, attr := range ev.Attributes {
					if string(attr.Key) == "minirpc.guard" && attr.Value.AsString() == tt.want {
						found = true
					}
				}
			}
			if !found {
				t.Errorf("events = %v, want %s with guard %s", last.Events, RejectedEvent, tt.want)
			}
		})
	}
}

func TestRecordRejection_NoSpan(t *testing.T) {
	// Without an active span the event goes to the no-op span.
	recordRejection(context.Background(), "size_limit", decodeRequest(`{}`))
}
