package config

import (
	"strings"
	"time"
)

// ModelPricing holds per-million-token prices for a model.
type ModelPricing struct {
	InputPerMTok        float64
	OutputPerMTok       float64
	CacheWrite5mPerMTok float64
	CacheWrite1hPerMTok float64
	CacheReadPerMTok    float64
}

type modelPricingVersion struct {
	EffectiveFrom time.Time
	Pricing       ModelPricing
}

func tier(in, out float64) ModelPricing {
	return ModelPricing{
		InputPerMTok:        in,
		OutputPerMTok:       out,
		CacheWrite5mPerMTok: in * 1.25,
		CacheWrite1hPerMTok: in * 2,
		CacheReadPerMTok:    in / 10,
	}
}

// DefaultPricing maps model base names to their list prices.
var DefaultPricing = map[string]ModelPricing{
	"claude-opus-4-6":   tier(5, 25),
	"claude-opus-4-5":   tier(5, 25),
	"claude-opus-4-1":   tier(15, 75),
	"claude-opus-4":     tier(15, 75),
	"claude-sonnet-4-6": tier(3, 15),
	"claude-sonnet-4-5": tier(3, 15),
	"claude-sonnet-4":   tier(3, 15),
	"claude-haiku-4-5":  tier(1, 5),
	"claude-haiku-3-5":  tier(0.80, 4),
}

// Entries must be sorted by EffectiveFrom ascending.
var defaultPricingHistory = func() map[string][]modelPricingVersion {
	history := make(map[string][]modelPricingVersion, len(DefaultPricing))
	for name, p := range DefaultPricing {
		history[name] = []modelPricingVersion{{Pricing: p}}
	}
	return history
}()

func hasPricingModel(model string) bool {
	if _, ok := defaultPricingHistory[model]; ok {
		return true
	}
	_, ok := DefaultPricing[model]
	return ok
}

// NormalizeModelName strips date suffixes from model identifiers,
// e.g. "claude-opus-4-5-20251101" -> "claude-opus-4-5".
func NormalizeModelName(raw string) string {
	if hasPricingModel(raw) {
		return raw
	}
	if i := strings.LastIndexByte(raw, '-'); i > 0 {
		last := raw[i+1:]
		if len(last) >= 8 && isAllDigits(last) && hasPricingModel(raw[:i]) {
			return raw[:i]
		}
	}
	return raw
}

func isAllDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// LookupPricing returns the current list price for a model.
func LookupPricing(model string) (ModelPricing, bool) {
	return LookupPricingAt(model, time.Time{})
}

// LookupPricingAt returns the pricing in effect at the given time. A zero
// time selects the latest entry.
func LookupPricingAt(model string, at time.Time) (ModelPricing, bool) {
	normalized := NormalizeModelName(model)
	versions, ok := defaultPricingHistory[normalized]
	if !ok || len(versions) == 0 {
		p, ok := DefaultPricing[normalized]
		return p, ok
	}
	if at.IsZero() {
		return versions[len(versions)-1].Pricing, true
	}
	at = at.UTC()
	selected := versions[0].Pricing
	for _, v := range versions {
		if v.EffectiveFrom.IsZero() || !at.Before(v.EffectiveFrom.UTC()) {
			selected = v.Pricing
			continue
		}
		break
	}
	return selected, true
}

// PricingFor applies the configured overrides on top of the list price. An
// override alone is enough to price a model the table does not know.
func (c Config) PricingFor(model string, at time.Time) (ModelPricing, bool) {
	p, ok := LookupPricingAt(model, at)
	o, hasOverride := c.Pricing.Overrides[NormalizeModelName(model)]
	if !hasOverride {
		o, hasOverride = c.Pricing.Overrides[model]
	}
	if !hasOverride {
		return p, ok
	}
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.InputPerMTok, o.InputPerMTok)
	set(&p.OutputPerMTok, o.OutputPerMTok)
	set(&p.CacheWrite5mPerMTok, o.CacheWrite5mPerMTok)
	set(&p.CacheWrite1hPerMTok, o.CacheWrite1hPerMTok)
	set(&p.CacheReadPerMTok, o.CacheReadPerMTok)
	return p, true
}

// TokenUsage is the token breakdown used for cost estimates.
type TokenUsage struct {
	Input        int64
	Output       int64
	CacheWrite5m int64
	CacheWrite1h int64
	CacheRead    int64
}

// Plus returns the field-wise sum.
func (u TokenUsage) Plus(o TokenUsage) TokenUsage {
	return TokenUsage{
		Input:        u.Input + o.Input,
		Output:       u.Output + o.Output,
		CacheWrite5m: u.CacheWrite5m + o.CacheWrite5m,
		CacheWrite1h: u.CacheWrite1h + o.CacheWrite1h,
		CacheRead:    u.CacheRead + o.CacheRead,
	}
}

// CacheWrite is the total of both cache write buckets.
func (u TokenUsage) CacheWrite() int64 { return u.CacheWrite5m + u.CacheWrite1h }

// Cost returns the estimated USD cost of usage at these prices.
func (p ModelPricing) Cost(u TokenUsage) float64 {
	cost := float64(u.Input) * p.InputPerMTok
	cost += float64(u.Output) * p.OutputPerMTok
	cost += float64(u.CacheWrite5m) * p.CacheWrite5mPerMTok
	cost += float64(u.CacheWrite1h) * p.CacheWrite1hPerMTok
	cost += float64(u.CacheRead) * p.CacheReadPerMTok
	return cost / 1_000_000
}

// EstimateCost prices usage for model with overrides applied. Unknown models
// cost nothing.
func (c Config) EstimateCost(model string, at time.Time, u TokenUsage) float64 {
	p, ok := c.PricingFor(model, at)
	if !ok {
		return 0
	}
	return p.Cost(u)
}
