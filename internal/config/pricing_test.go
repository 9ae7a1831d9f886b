package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func withHistory(t *testing.T, model string, versions []modelPricingVersion) {
	t.Helper()
	orig, had := defaultPricingHistory[model]
	t.Cleanup(func() {
		if had {
			defaultPricingHistory[model] = orig
		} else {
			delete(defaultPricingHistory, model)
		}
	})
	defaultPricingHistory[model] = versions
}

func TestLookupPricingAt_UsesEffectiveDate(t *testing.T) {
	model := "test-model-windowed"
	withHistory(t, model, []modelPricingVersion{
		{EffectiveFrom: mustDate(t, "2025-01-01"), Pricing: ModelPricing{InputPerMTok: 1.0}},
		{EffectiveFrom: mustDate(t, "2025-07-01"), Pricing: ModelPricing{InputPerMTok: 2.0}},
	})

	apr, ok := LookupPricingAt(model, mustDate(t, "2025-04-15"))
	require.True(t, ok)
	assert.Equal(t, 1.0, apr.InputPerMTok)

	aug, ok := LookupPricingAt(model, mustDate(t, "2025-08-15"))
	require.True(t, ok)
	assert.Equal(t, 2.0, aug.InputPerMTok)

	latest, ok := LookupPricingAt(model, time.Time{})
	require.True(t, ok)
	assert.Equal(t, 2.0, latest.InputPerMTok)
}

func TestNormalizeModelName(t *testing.T) {
	assert.Equal(t, "claude-opus-4-5", NormalizeModelName("claude-opus-4-5-20251101"))
	assert.Equal(t, "claude-sonnet-4", NormalizeModelName("claude-sonnet-4"))
	assert.Equal(t, "gpt-x-20250101", NormalizeModelName("gpt-x-20250101"))
	assert.Equal(t, "claude-sonnet-4-5-beta", NormalizeModelName("claude-sonnet-4-5-beta"))
}

func TestEstimateCost(t *testing.T) {
	cfg := DefaultConfig()
	u := TokenUsage{Input: 1_000_000, Output: 100_000}

	got := cfg.EstimateCost("claude-sonnet-4-5-20250929", time.Time{}, u)
	assert.InDelta(t, 3.0+1.5, got, 1e-9)

	assert.Zero(t, cfg.EstimateCost("unknown-model", time.Time{}, u))
}

func TestEstimateCost_Overrides(t *testing.T) {
	in := 10.0
	cfg := DefaultConfig()
	cfg.Pricing.Overrides = map[string]ModelPricingOverride{
		"claude-haiku-4-5": {InputPerMTok: &in},
		"local-model":      {InputPerMTok: &in},
	}
	u := TokenUsage{Input: 1_000_000, Output: 1_000_000}

	// Output keeps the list price.
	assert.InDelta(t, 10.0+5.0, cfg.EstimateCost("claude-haiku-4-5", time.Time{}, u), 1e-9)
	// An override prices an otherwise unknown model.
	assert.InDelta(t, 10.0, cfg.EstimateCost("local-model", time.Time{}, u), 1e-9)
}
