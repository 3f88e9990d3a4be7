package observer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/thinkspaces/thinkspaces"
)

// Attribute keys for provider spans and metrics.
var (
	AttrLLMModel      = attribute.Key("llm.model")
	AttrLLMProvider   = attribute.Key("llm.provider")
	AttrTokensInput   = attribute.Key("llm.tokens.input")
	AttrTokensOutput  = attribute.Key("llm.tokens.output")
	AttrCostUSD       = attribute.Key("llm.cost_usd")
	AttrContextBlocks = attribute.Key("llm.context_blocks")
)

// ObservedProvider wraps a thinkspaces.Provider with OTEL instrumentation.
type ObservedProvider struct {
	inner thinkspaces.Provider
	inst  *Instruments
	model string
}

// WrapProvider returns an instrumented provider that emits traces, metrics, and logs.
func WrapProvider(inner thinkspaces.Provider, model string, inst *Instruments) *ObservedProvider {
	return &ObservedProvider{inner: inner, inst: inst, model: model}
}

// Wrapper adapts WrapProvider to the executor's provider wrapper hook.
func Wrapper(inst *Instruments) func(thinkspaces.Provider, string) thinkspaces.Provider {
	return func(p thinkspaces.Provider, model string) thinkspaces.Provider {
		return WrapProvider(p, model, inst)
	}
}

func (o *ObservedProvider) Name() string { return o.inner.Name() }

func (o *ObservedProvider) Generate(ctx context.Context, req thinkspaces.CompletionRequest) (thinkspaces.CompletionResponse, error) {
	model := req.Model()
	if model == "" {
		model = o.model
	}

	ctx, span := o.inst.Tracer.Start(ctx, "llm.generate", trace.WithAttributes(
		AttrLLMModel.String(model),
		AttrLLMProvider.String(o.inner.Name()),
		AttrContextBlocks.Int(len(req.Context)),
	))
	defer span.End()
	start := time.Now()

	resp, err := o.inner.Generate(ctx, req)

	durationMs := float64(time.Since(start).Milliseconds())
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	o.record(ctx, span, model, status, durationMs, thinkspaces.UsageFromMetadata(resp.Metadata))
	return resp, err
}

func (o *ObservedProvider) record(ctx context.Context, span trace.Span, model, status string, durationMs float64, usage thinkspaces.Usage) {
	cost := o.inst.Cost.Calculate(model, usage.InputTokens, usage.OutputTokens)
	provider := o.inner.Name()

	span.SetAttributes(
		AttrTokensInput.Int(usage.InputTokens),
		AttrTokensOutput.Int(usage.OutputTokens),
		AttrCostUSD.Float64(cost),
	)

	attrs := metric.WithAttributes(
		AttrLLMModel.String(model),
		AttrLLMProvider.String(provider),
	)
	o.inst.TokenUsage.Add(ctx, int64(usage.InputTokens), metric.WithAttributes(
		AttrLLMModel.String(model),
		AttrLLMProvider.String(provider),
		attribute.String("direction", "input"),
	))
	o.inst.TokenUsage.Add(ctx, int64(usage.OutputTokens), metric.WithAttributes(
		AttrLLMModel.String(model),
		AttrLLMProvider.String(provider),
		attribute.String("direction", "output"),
	))
	o.inst.CostTotal.Add(ctx, cost, attrs)
	o.inst.GenerateRequests.Add(ctx, 1, metric.WithAttributes(
		AttrLLMModel.String(model),
		AttrLLMProvider.String(provider),
		attribute.String("status", status),
	))
	o.inst.GenerateDuration.Record(ctx, durationMs, attrs)

	var rec otellog.Record
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetBody(otellog.StringValue("llm generate completed"))
	rec.AddAttributes(
		otellog.String("llm.model", model),
		otellog.String("llm.provider", provider),
		otellog.Int("llm.tokens.input", usage.InputTokens),
		otellog.Int("llm.tokens.output", usage.OutputTokens),
		otellog.Float64("llm.cost_usd", cost),
		otellog.Float64("llm.duration_ms", durationMs),
		otellog.String("status", status),
	)
	o.inst.Logger.Emit(ctx, rec)
}

var _ thinkspaces.Provider = (*ObservedProvider)(nil)
