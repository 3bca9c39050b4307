package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/minirpc/protocol"
)

const (
	instrumentationName = "github.com/felixgeelhaar/minirpc"
)

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*otelConfig)

type otelConfig struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	serviceName    string
	skipOps        map[string]bool
}

// WithTracerProvider sets a custom tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *otelConfig) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider sets a custom meter provider.
func WithMeterProvider(mp metric.MeterProvider) OTelOption {
	return func(c *otelConfig) {
		c.meterProvider = mp
	}
}

// WithOTelServiceName sets the service name for telemetry.
func WithOTelServiceName(name string) OTelOption {
	return func(c *otelConfig) {
		c.serviceName = name
	}
}

// WithOTelSkipOperations specifies operation names, e.g. "encode.response",
// to skip for tracing and metrics.
func WithOTelSkipOperations(names ...string) OTelOption {
	return func(c *otelConfig) {
		for _, n := range names {
			c.skipOps[n] = true
		}
	}
}

// OTel returns middleware that adds OpenTelemetry tracing and metrics.
// It creates a span for each codec operation and records operation counts,
// latency, decode errors by wire code and failures carried in responses.
func OTel(opts ...OTelOption) Middleware {
	cfg := &otelConfig{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		serviceName:    "minirpc",
		skipOps:        make(map[string]bool),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tracer := cfg.tracerProvider.Tracer(
		instrumentationName,
		trace.WithInstrumentationVersion("1.0.0"),
	)

	meter := cfg.meterProvider.Meter(
		instrumentationName,
		metric.WithInstrumentationVersion("1.0.0"),
	)

	opCounter, _ := meter.Int64Counter(
		"minirpc.codec.operations",
		metric.WithDescription("Total number of codec operations"),
		metric.WithUnit("{operation}"),
	)

	opDuration, _ := meter.Float64Histogram(
		"minirpc.codec.operation.duration",
		metric.WithDescription("Duration of codec operations"),
		metric.WithUnit("ms"),
	)

	errorCounter, _ := meter.Int64Counter(
		"minirpc.codec.errors",
		metric.WithDescription("Total number of failed codec operations"),
		metric.WithUnit("{error}"),
	)

	failureCounter, _ := meter.Int64Counter(
		"minirpc.codec.failures",
		metric.WithDescription("Total number of Failure payloads carried by responses"),
		metric.WithUnit("{failure}"),
	)

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, op *Operation) error {
			name := op.Name()
			if cfg.skipOps[name] {
				return next(ctx, op)
			}

			spanKind := trace.SpanKindConsumer
			if op.Direction == Encode {
				spanKind = trace.SpanKindProducer
			}

			ctx, span := tracer.Start(ctx, "minirpc."+name,
				trace.WithSpanKind(spanKind),
				trace.WithAttributes(
					attribute.String("minirpc.op", name),
					attribute.String("service.name", cfg.serviceName),
				),
			)
			defer span.End()

			if id := OperationIDFromContext(ctx); id != "" {
				span.SetAttributes(attribute.String("minirpc.operation_id", id))
			}

			startTime := time.Now()

			attrs := []attribute.KeyValue{
				attribute.String("minirpc.op", name),
				attribute.String("service.name", cfg.serviceName),
			}

			opCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

			err := next(ctx, op)

			duration := float64(time.Since(startTime).Milliseconds())
			opDuration.Record(ctx, duration, metric.WithAttributes(attrs...))

			span.SetAttributes(attribute.Int("minirpc.bytes", len(op.Data)))
			if op.Message != nil {
				span.SetAttributes(
					attribute.Bool("minirpc.batch", op.Message.IsBatch()),
					attribute.Int("minirpc.payloads", op.Message.Len()),
				)
			}
			if methods := op.Methods(); len(methods) > 0 {
				span.SetAttributes(attribute.StringSlice("minirpc.methods", methods))
			}

			if err != nil {
				code := protocol.AsError(err).Code
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				span.SetAttributes(attribute.Int64("minirpc.error_code", int64(code)))
				errorCounter.Add(ctx, 1, metric.WithAttributes(
					append(attrs, attribute.Int64("minirpc.error_code", int64(code)))...,
				))
				return err
			}

			if resp, ok := op.Response(); ok {
				failures := resp.Failures()
				if len(failures) > 0 {
					span.SetAttributes(attribute.Int("minirpc.failures", len(failures)))
				}
				for _, f := range failures {
					failureCounter.Add(ctx, 1, metric.WithAttributes(
						append(attrs, attribute.Int64("minirpc.error_code", int64(f.Error.Code)))...,
					))
				}
			}
			span.SetStatus(codes.Ok, "")

			return nil
		}
	}
}

// SpanFromContext returns the current span from context.
// Returns a no-op span if no span is present.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// AddSpanEvent adds an event to the current span.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// RejectedEvent is the span event a guard records when it rejects an operation.
const RejectedEvent = "minirpc.rejected"

func recordRejection(ctx context.Context, guard string, op *Operation) {
	AddSpanEvent(ctx, RejectedEvent,
		attribute.String("minirpc.guard", guard),
		attribute.String("minirpc.op", op.Name()),
	)
}
