package observer

import (
	"math"
	"testing"
)

func TestCostCalculator(t *testing.T) {
	calc := NewCostCalculator(nil)

	if cost := calc.Calculate("gemini-2.5-flash", 1_000_000, 1_000_000); math.Abs(cost-0.75) > 0.001 {
		t.Errorf("gemini-2.5-flash cost = %f, want 0.75", cost)
	}
	if cost := calc.Calculate("llama-3.1-70b-versatile", 1_000_000, 0); math.Abs(cost-0.59) > 0.001 {
		t.Errorf("groq default cost = %f, want 0.59", cost)
	}
	if cost := calc.Calculate("echo", 1_000_000, 1_000_000); cost != 0 {
		t.Errorf("echo cost = %f, want 0", cost)
	}
	if cost := calc.Calculate("unknown-model", 1000, 1000); cost != 0.0 {
		t.Errorf("unknown model cost = %f, want 0.0", cost)
	}
}

func TestCostCalculatorOverrides(t *testing.T) {
	calc := NewCostCalculator(map[string]ModelPricing{
		"custom-model": {InputPerMillion: 5.0, OutputPerMillion: 10.0},
		"gpt-4o-mini":  {InputPerMillion: 1.0, OutputPerMillion: 1.0},
	})

	cost := calc.Calculate("custom-model", 500_000, 200_000)
	if math.Abs(cost-4.5) > 0.001 {
		t.Errorf("custom-model cost = %f, want 4.5", cost)
	}
	if cost := calc.Calculate("gpt-4o-mini", 1_000_000, 1_000_000); math.Abs(cost-2.0) > 0.001 {
		t.Errorf("overridden cost = %f, want 2.0", cost)
	}
	if cost := calc.Calculate("gemini-2.5-flash", 1_000_000, 1_000_000); math.Abs(cost-0.75) > 0.001 {
		t.Errorf("after override, default cost = %f, want 0.75", cost)
	}
	if DefaultPricing["gpt-4o-mini"].InputPerMillion != 0.15 {
		t.Error("overrides must not mutate DefaultPricing")
	}
}
