// Package otel wires OpenTelemetry tracing for the storefront.
package otel

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"storefront/pkg/logger"
)

// StdoutHost selects the pretty-printing stdout exporter instead of an
// OTLP collector.
const StdoutHost = "stdout"

// Config defines the information needed to init tracing.
type Config struct {
	ServiceName string
	Host        string
	Probability float64

	// Output receives spans when Host is StdoutHost. Defaults to os.Stdout.
	Output io.Writer
}

type ctxKey int

const tracerKey ctxKey = 1

// InitTracing configures the global tracer provider. With no collector host
// tracing is disabled and a no-op provider is returned.
func InitTracing(log *logger.Logger, cfg Config) (trace.TracerProvider, func(context.Context), error) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	if cfg.Host == "" {
		log.Info(context.Background(), "tracing disabled", "reason", "no collector host")
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp, func(context.Context) {}, nil
	}

	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating new exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Probability))),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
		)),
	)
	otel.SetTracerProvider(tp)
	log.Info(context.Background(), "tracing enabled", "host", cfg.Host, "probability", cfg.Probability)

	shutdown := func(ctx context.Context) {
		if err := tp.Shutdown(ctx); err != nil {
			log.Warn(ctx, "tracer shutdown", "error", err)
		}
	}
	return tp, shutdown, nil
}

func newExporter(cfg Config) (sdktrace.SpanExporter, error) {
	if cfg.Host == StdoutHost {
		opts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
		if cfg.Output != nil {
			opts = append(opts, stdouttrace.WithWriter(cfg.Output))
		}
		return stdouttrace.New(opts...)
	}
	return otlptrace.New(
		context.Background(),
		otlptracegrpc.NewClient(
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.Host),
		),
	)
}

// InjectTracing stores the tracer in the context for use by AddSpan.
func InjectTracing(ctx context.Context, tracer trace.Tracer) context.Context {
	return context.WithValue(ctx, tracerKey, tracer)
}

// AddSpan starts a span named spanName using the tracer held in ctx. When
// the context carries no tracer the current span is returned unchanged.
func AddSpan(ctx context.Context, spanName string, keyValues ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer, ok := ctx.Value(tracerKey).(trace.Tracer)
	if !ok || tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	ctx, span := tracer.Start(ctx, spanName)
	span.SetAttributes(keyValues...)
	return ctx, span
}

// GetTraceID returns the trace id of the span in ctx, or "".
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
