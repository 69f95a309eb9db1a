// Package observability provides OpenTelemetry tracing for strata
package observability

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName names the tracer every strata span is created with.
const InstrumentationName = "github.com/ajitpratap0/strata"

var (
	// Global tracer instance
	tracer trace.Tracer
	mu     sync.RWMutex
)

// TracingConfig contains tracing configuration
type TracingConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	SamplingRate   float64
	// Writer receives exported spans; stderr when nil
	Writer io.Writer
	// PrettyPrint indents exported spans
	PrettyPrint bool
}

// GetTracer returns the global tracer. Before Initialize it is the
// otel global tracer, which drops spans.
func GetTracer() trace.Tracer {
	mu.RLock()
	defer mu.RUnlock()
	if tracer == nil {
		return otel.Tracer(InstrumentationName)
	}
	return tracer
}

// SetTracer replaces the global tracer; nil restores the otel default.
func SetTracer(t trace.Tracer) {
	mu.Lock()
	tracer = t
	mu.Unlock()
}

// Span wraps a trace span and collects attributes until End.
type Span struct {
	span       trace.Span
	attributes []attribute.KeyValue
}

// NewSpan starts a span on the global tracer.
func NewSpan(ctx context.Context, operationName string) (context.Context, *Span) {
	return startSpan(ctx, GetTracer(), operationName)
}

func startSpan(ctx context.Context, t trace.Tracer, operationName string) (context.Context, *Span) {
	ctx, span := t.Start(ctx, operationName)
	return ctx, &Span{span: span}
}

// SetAttribute adds an attribute to the span; it is applied on End.
func (s *Span) SetAttribute(key string, value interface{}) {
	var attr attribute.KeyValue

	switch v := value.(type) {
	case string:
		attr = attribute.String(key, v)
	case int:
		attr = attribute.Int(key, v)
	case int64:
		attr = attribute.Int64(key, v)
	case float64:
		attr = attribute.Float64(key, v)
	case bool:
		attr = attribute.Bool(key, v)
	default:
		attr = attribute.String(key, fmt.Sprintf("%v", v))
	}

	s.attributes = append(s.attributes, attr)
}

// RecordError marks the span failed. A nil err marks it ok.
func (s *Span) RecordError(err error) {
	if err == nil {
		s.span.SetStatus(codes.Ok, "")
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// End applies the collected attributes and ends the span.
func (s *Span) End() {
	if len(s.attributes) > 0 {
		s.span.SetAttributes(s.attributes...)
	}
	s.span.End()
}

// StageTracer wraps each loading stage (read, parse, flatten) of one
// definitions file in a span carrying the file path.
type StageTracer struct {
	tracer trace.Tracer
	file   string
}

// NewStageTracer traces stages of file on t, or on the global tracer when
// t is nil.
func NewStageTracer(t trace.Tracer, file string) *StageTracer {
	if t == nil {
		t = GetTracer()
	}
	return &StageTracer{tracer: t, file: file}
}

// StartSpan starts a span named strata.<stage>.
func (st *StageTracer) StartSpan(ctx context.Context, stage string) (context.Context, *Span) {
	ctx, span := startSpan(ctx, st.tracer, "strata."+stage)
	span.SetAttribute("strata.definitions_file", st.file)
	span.SetAttribute("strata.stage", stage)
	return ctx, span
}

// Trace runs fn inside a stage span and records its error.
func (st *StageTracer) Trace(ctx context.Context, stage string, fn func(context.Context) error) error {
	ctx, span := st.StartSpan(ctx, stage)
	defer span.End()

	err := fn(ctx)
	span.RecordError(err)
	return err
}
