// Package tracing wires the OpenTelemetry tracer used around optimization
// requests and solves.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies the spans of this module.
const InstrumentationName = "github.com/paliers/budget-allocator"

// ShutdownFunc flushes and stops a tracer provider.
type ShutdownFunc func(context.Context) error

// Tracer returns the module tracer from the global provider. Until Setup
// installs one, spans are no-ops.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// Setup installs a global tracer provider exporting finished spans to w as
// JSON. The returned ShutdownFunc must be called before exit to flush spans.
func Setup(w io.Writer, pretty bool) (ShutdownFunc, error) {
	if w == nil {
		return nil, errors.New("trace writer cannot be nil")
	}
	opts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if pretty {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating stdout trace exporter: %w", err)
	}

	tp := NewProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// NewProvider returns an always-sampling tracer provider with opts applied.
func NewProvider(opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	opts = append([]sdktrace.TracerProviderOption{sdktrace.WithSampler(sdktrace.AlwaysSample())}, opts...)
	return sdktrace.NewTracerProvider(opts...)
}
