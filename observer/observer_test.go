package observer

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	lognoop "go.opentelemetry.io/otel/log/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/thinkspaces/thinkspaces"
)

type mockProvider struct {
	name string
	resp thinkspaces.CompletionResponse
	err  error
	got  thinkspaces.CompletionRequest
}

func (m *mockProvider) Name() string { return m.name }
func (m *mockProvider) Generate(_ context.Context, req thinkspaces.CompletionRequest) (thinkspaces.CompletionResponse, error) {
	m.got = req
	return m.resp, m.err
}

type harness struct {
	inst   *Instruments
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	tp     *sdktrace.TracerProvider
}

func newHarness(t *testing.T) harness {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	inst, err := newInstruments(tp, mp, lognoop.NewLoggerProvider(), nil)
	if err != nil {
		t.Fatalf("newInstruments: %v", err)
	}
	return harness{inst: inst, spans: sr, reader: reader, tp: tp}
}

func (h harness) int64Sum(t *testing.T, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := h.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s is %T, want Sum[int64]", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func attrValue(attrs []attribute.KeyValue, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range attrs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func request(model string) thinkspaces.CompletionRequest {
	return thinkspaces.NewCompletionRequest("hi", "", []string{"a", "b"}, map[string]any{"model": model})
}

func TestObservedProviderName(t *testing.T) {
	h := newHarness(t)
	op := WrapProvider(&mockProvider{name: "groq"}, "m", h.inst)
	if got := op.Name(); got != "groq" {
		t.Errorf("Name() = %q, want %q", got, "groq")
	}
}

func TestObservedProviderGenerate(t *testing.T) {
	h := newHarness(t)
	want := thinkspaces.CompletionResponse{
		Output: "hello",
		Metadata: map[string]any{
			"model": "gpt-4o-mini",
			"usage": thinkspaces.Usage{InputTokens: 1_000_000, OutputTokens: 1_000_000, TotalTokens: 2_000_000}.Map(),
		},
	}
	inner := &mockProvider{name: "openai", resp: want}
	op := WrapProvider(inner, "gpt-4o-mini", h.inst)

	got, err := op.Generate(context.Background(), request("gpt-4o-mini"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got.Output != "hello" {
		t.Errorf("Output = %q", got.Output)
	}
	if inner.got.Prompt != "hi" || len(inner.got.Context) != 2 {
		t.Errorf("inner saw %+v", inner.got)
	}

	ended := h.spans.Ended()
	if len(ended) != 1 {
		t.Fatalf("spans = %d, want 1", len(ended))
	}
	s := ended[0]
	if s.Name() != "llm.generate" {
		t.Errorf("span name = %q", s.Name())
	}
	if v, _ := attrValue(s.Attributes(), AttrContextBlocks); v.AsInt64() != 2 {
		t.Errorf("context blocks = %v", v.AsInt64())
	}
	if v, _ := attrValue(s.Attributes(), AttrTokensInput); v.AsInt64() != 1_000_000 {
		t.Errorf("tokens input = %v", v.AsInt64())
	}
	if v, _ := attrValue(s.Attributes(), AttrCostUSD); v.AsFloat64() < 0.749 || v.AsFloat64() > 0.751 {
		t.Errorf("cost = %v, want 0.75", v.AsFloat64())
	}

	if n := h.int64Sum(t, "llm.requests"); n != 1 {
		t.Errorf("llm.requests = %d, want 1", n)
	}
	if n := h.int64Sum(t, "llm.token.usage"); n != 2_000_000 {
		t.Errorf("llm.token.usage = %d, want 2000000", n)
	}
}

func TestObservedProviderGenerateError(t *testing.T) {
	h := newHarness(t)
	wantErr := &thinkspaces.ErrLLM{Provider: "ollama", Message: "failed to reach Ollama"}
	op := WrapProvider(&mockProvider{name: "ollama", err: wantErr}, "llama3", h.inst)

	_, err := op.Generate(context.Background(), request(""))
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}

	ended := h.spans.Ended()
	if len(ended) != 1 {
		t.Fatalf("spans = %d, want 1", len(ended))
	}
	if ended[0].Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", ended[0].Status().Code)
	}
	// The request has no model option, so the wrapped model is reported.
	if v, _ := attrValue(ended[0].Attributes(), AttrLLMModel); v.AsString() != "llama3" {
		t.Errorf("model attr = %q", v.AsString())
	}
	if n := h.int64Sum(t, "llm.requests"); n != 1 {
		t.Errorf("llm.requests = %d, want 1", n)
	}
}

func TestWrapperPlugsIntoExecutor(t *testing.T) {
	h := newHarness(t)
	w := Wrapper(h.inst)
	p := w(&mockProvider{name: "echo"}, "echo")
	if _, ok := p.(*ObservedProvider); !ok {
		t.Fatalf("Wrapper returned %T", p)
	}
}

func TestNewInstrumentsOnGlobalProviders(t *testing.T) {
	inst, err := NewInstruments(map[string]ModelPricing{"x": {InputPerMillion: 1}})
	if err != nil {
		t.Fatalf("NewInstruments: %v", err)
	}
	if inst.Cost.Calculate("x", 1_000_000, 0) != 1 {
		t.Error("pricing override not applied")
	}
}

func TestTracerSpans(t *testing.T) {
	h := newHarness(t)
	tr := NewTracerFrom(h.tp)

	_, s := tr.Start(context.Background(), "interaction.execute",
		thinkspaces.StringAttr("agent.id", "a1"),
		thinkspaces.IntAttr("context.limit", 5),
	)
	s.SetAttr(thinkspaces.SpanAttr{Key: "ok", Value: true}, thinkspaces.SpanAttr{Key: "other", Value: []int{1}})
	s.Event("assembled", thinkspaces.IntAttr("context.history", 2))
	s.Error(errors.New("boom"))
	s.End()

	ended := h.spans.Ended()
	if len(ended) != 1 {
		t.Fatalf("spans = %d, want 1", len(ended))
	}
	got := ended[0]
	if got.Name() != "interaction.execute" {
		t.Errorf("name = %q", got.Name())
	}
	attrs := got.Attributes()
	if v, _ := attrValue(attrs, "agent.id"); v.AsString() != "a1" {
		t.Errorf("agent.id = %q", v.AsString())
	}
	if v, _ := attrValue(attrs, "context.limit"); v.AsInt64() != 5 {
		t.Errorf("context.limit = %d", v.AsInt64())
	}
	if v, _ := attrValue(attrs, "ok"); !v.AsBool() {
		t.Error("ok attr missing")
	}
	if v, _ := attrValue(attrs, "other"); v.AsString() != "[1]" {
		t.Errorf("other = %q, want [1]", v.AsString())
	}
	if len(got.Events()) < 1 || got.Events()[0].Name != "assembled" {
		t.Errorf("events = %+v", got.Events())
	}
	if got.Status().Code != codes.Error {
		t.Errorf("status = %v", got.Status().Code)
	}
}
