package openaicompat

// Option sets a generation parameter on an outgoing ChatRequest.
type Option func(*ChatRequest)

func WithTemperature(t float64) Option { return func(r *ChatRequest) { r.Temperature = &t } }
func WithTopP(p float64) Option        { return func(r *ChatRequest) { r.TopP = &p } }
func WithMaxTokens(n int) Option       { return func(r *ChatRequest) { r.MaxTokens = n } }
func WithStop(s ...string) Option      { return func(r *ChatRequest) { r.Stop = s } }
func WithSeed(s int) Option            { return func(r *ChatRequest) { r.Seed = &s } }

func WithFrequencyPenalty(p float64) Option {
	return func(r *ChatRequest) { r.FrequencyPenalty = &p }
}

func WithPresencePenalty(p float64) Option {
	return func(r *ChatRequest) { r.PresencePenalty = &p }
}

// RequestOptions maps the generation keys a caller may put in
// CompletionRequest.Options ("temperature", "top_p", "max_tokens",
// "frequency_penalty", "presence_penalty", "stop", "seed") onto Options.
// Keys with values of the wrong type are ignored, as is "model".
func RequestOptions(opts map[string]any) []Option {
	var out []Option
	if v, ok := number(opts["temperature"]); ok {
		out = append(out, WithTemperature(v))
	}
	if v, ok := number(opts["top_p"]); ok {
		out = append(out, WithTopP(v))
	}
	if v, ok := number(opts["max_tokens"]); ok {
		out = append(out, WithMaxTokens(int(v)))
	}
	if v, ok := number(opts["frequency_penalty"]); ok {
		out = append(out, WithFrequencyPenalty(v))
	}
	if v, ok := number(opts["presence_penalty"]); ok {
		out = append(out, WithPresencePenalty(v))
	}
	if v, ok := number(opts["seed"]); ok {
		out = append(out, WithSeed(int(v)))
	}
	switch s := opts["stop"].(type) {
	case string:
		out = append(out, WithStop(s))
	case []string:
		out = append(out, WithStop(s...))
	}
	return out
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
