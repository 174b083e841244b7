package observe

import (
	"context"
	"fmt"
	"time"

	"github.com/vango-dev/reactor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for reactor engines.
const defaultTracerName = "reactor"

// TracingConfig configures the OpenTelemetry observer.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "reactor").
	TracerName string

	// IncludeValues includes cell values in span attributes.
	// Values may contain sensitive information - disabled by default.
	IncludeValues bool

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TracingOption configures the OpenTelemetry observer.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithIncludeValues enables including cell values in span attributes.
func WithIncludeValues(include bool) TracingOption {
	return func(c *TracingConfig) {
		c.IncludeValues = include
	}
}

// defaultTracingConfig returns the default tracing configuration.
func defaultTracingConfig() TracingConfig {
	return TracingConfig{
		TracerName:    defaultTracerName,
		IncludeValues: false,
	}
}

// Tracing is a reactor.Observer that emits one span per engine operation:
// reactor.create_input and reactor.create_compute for cell creation, and
// reactor.set_value for each mutation. The mutation span is back-dated to
// cover the observed duration and carries the affected and notified counts
// as attributes.
//
// The tracer comes from the global OpenTelemetry tracer provider.
// Configure it in main() before building the engine:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//	r := reactor.New[int](reactor.WithObserver[int](observe.NewTracing()))
type Tracing struct {
	reactor.NopObserver

	config TracingConfig
}

var _ reactor.Observer = (*Tracing)(nil)

// NewTracing creates the observer, resolving the tracer from the global
// provider.
func NewTracing(opts ...TracingOption) *Tracing {
	config := defaultTracingConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)
	return &Tracing{config: config}
}

// InputCreated implements reactor.Observer.
func (t *Tracing) InputCreated(id reactor.InputCellID, initial any) {
	attrs := []attribute.KeyValue{
		attribute.String("reactor.cell", id.String()),
	}
	if t.config.IncludeValues {
		attrs = append(attrs, attribute.String("reactor.value", fmt.Sprintf("%v", initial)))
	}
	_, span := t.config.tracer.Start(
		context.Background(),
		"reactor.create_input",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	span.End()
}

// ComputeCreated implements reactor.Observer.
func (t *Tracing) ComputeCreated(id reactor.ComputeCellID, deps []reactor.CellID) {
	_, span := t.config.tracer.Start(
		context.Background(),
		"reactor.create_compute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("reactor.cell", id.String()),
			attribute.Int("reactor.deps", len(deps)),
		),
	)
	span.End()
}

// InputSet implements reactor.Observer. The span is started in the past so
// that its duration matches the mutation it describes.
func (t *Tracing) InputSet(id reactor.InputCellID, value any, affected, notified int, elapsed time.Duration) {
	end := time.Now()
	start := end.Add(-elapsed)

	attrs := []attribute.KeyValue{
		attribute.String("reactor.cell", id.String()),
		attribute.Int("reactor.affected", affected),
		attribute.Int("reactor.notified", notified),
	}
	if t.config.IncludeValues {
		attrs = append(attrs, attribute.String("reactor.value", fmt.Sprintf("%v", value)))
	}

	_, span := t.config.tracer.Start(
		context.Background(),
		"reactor.set_value",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(start),
	)
	span.SetStatus(codes.Ok, "")
	span.End(trace.WithTimestamp(end))
}
