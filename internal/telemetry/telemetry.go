// Package telemetry configures OpenTelemetry tracing for the engine and the
// HTTP service.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ServiceName is reported as service.name on every span.
const ServiceName = "fibseq"

// ShutdownFunc flushes pending spans and releases the exporter.
type ShutdownFunc func(context.Context) error

// Setup installs a global tracer provider exporting to endpoint over
// OTLP/HTTP. Tracing is opt-in: an empty endpoint returns a no-op shutdown
// and leaves the global no-op provider in place.
//
// The returned shutdown function should be deferred by the caller.
func Setup(ctx context.Context, endpoint, version string) (ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }
	if endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return noop, err
	}

	return install(sdktrace.WithBatcher(exporter), res), nil
}

// install registers a provider built from the span processor option.
// Tests use it with an in-memory exporter.
func install(processor sdktrace.TracerProviderOption, res *resource.Resource) ShutdownFunc {
	tp := sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown
}
