package telemetry

import (
	"context"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	EnvEndpoint = "TORUSLIFE_OTEL_ENDPOINT"
	EnvEnabled  = "TORUSLIFE_OTEL_ENABLED"

	instrumentationName = "toruslife"
)

// Setup registers the global tracer provider exporting spans over OTLP/HTTP.
//
// Export is opt-in: without TORUSLIFE_OTEL_ENDPOINT, or with
// TORUSLIFE_OTEL_ENABLED set to "false", nothing is registered and the
// returned shutdown func does nothing. Timers then still measure wall time.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	if strings.EqualFold(os.Getenv(EnvEnabled), "false") {
		return noop, nil
	}
	endpoint := os.Getenv(EnvEndpoint)
	if endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return noop, err
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}

// StopFunc ends a timer and returns the measured duration.
type StopFunc func() time.Duration

// StartTimer opens a span called name on the global tracer.
// The span ends when the returned func is called.
func StartTimer(name string) StopFunc {
	_, span := otel.Tracer(instrumentationName).Start(context.Background(), name, trace.WithSpanKind(trace.SpanKindInternal))
	start := time.Now()
	return func() time.Duration {
		span.End()
		return time.Since(start)
	}
}
