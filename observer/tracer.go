package observer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/thinkspaces/thinkspaces"
)

type tracer struct {
	inner trace.Tracer
}

// NewTracer returns a thinkspaces.Tracer backed by the global OTEL
// TracerProvider. Without a prior Init, spans go to a no-op backend.
func NewTracer() thinkspaces.Tracer {
	return NewTracerFrom(otel.GetTracerProvider())
}

// NewTracerFrom returns a thinkspaces.Tracer backed by tp.
func NewTracerFrom(tp trace.TracerProvider) thinkspaces.Tracer {
	return &tracer{inner: tp.Tracer(scopeName)}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...thinkspaces.SpanAttr) (context.Context, thinkspaces.Span) {
	ctx, s := t.inner.Start(ctx, name, trace.WithAttributes(convert(attrs)...))
	return ctx, span{s}
}

type span struct {
	inner trace.Span
}

func (s span) SetAttr(attrs ...thinkspaces.SpanAttr) {
	s.inner.SetAttributes(convert(attrs)...)
}

func (s span) Event(name string, attrs ...thinkspaces.SpanAttr) {
	s.inner.AddEvent(name, trace.WithAttributes(convert(attrs)...))
}

func (s span) Error(err error) {
	s.inner.RecordError(err)
	s.inner.SetStatus(codes.Error, err.Error())
}

func (s span) End() { s.inner.End() }

func convert(attrs []thinkspaces.SpanAttr) []attribute.KeyValue {
	out := make([]attribute.KeyValue, len(attrs))
	for i, a := range attrs {
		switch v := a.Value.(type) {
		case string:
			out[i] = attribute.String(a.Key, v)
		case int:
			out[i] = attribute.Int(a.Key, v)
		case int64:
			out[i] = attribute.Int64(a.Key, v)
		case float64:
			out[i] = attribute.Float64(a.Key, v)
		case bool:
			out[i] = attribute.Bool(a.Key, v)
		default:
			out[i] = attribute.String(a.Key, fmt.Sprint(v))
		}
	}
	return out
}

var (
	_ thinkspaces.Tracer = (*tracer)(nil)
	_ thinkspaces.Span   = span{}
)
