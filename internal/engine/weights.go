package engine

import (
	"math"

	"github.com/steelyard-dev/steelyard/internal/policy"
)

const epsilon = 1e-9

// EffectiveWeights is the per-evaluation view of the policy's term
// weights. Values are immutable: every adjustment stage returns a new
// value, composed left to right (urgency, then the method selector's
// gates, then competition). Nothing here is shared across evaluations.
type EffectiveWeights struct {
	w map[string]float64
}

func newEffectiveWeights(base map[string]float64) EffectiveWeights {
	w := make(map[string]float64, len(base))
	for term, v := range base {
		w[term] = v
	}
	return EffectiveWeights{w: w}
}

// Get returns the current weight for a term, zero when absent.
func (ew EffectiveWeights) Get(term string) float64 {
	return ew.w[term]
}

// Terms returns the term set carrying weights.
func (ew EffectiveWeights) Terms() []string {
	out := make([]string, 0, len(ew.w))
	for term := range ew.w {
		out = append(out, term)
	}
	return out
}

func (ew EffectiveWeights) clone() map[string]float64 {
	next := make(map[string]float64, len(ew.w))
	for term, v := range ew.w {
		next[term] = v
	}
	return next
}

// gatingFactor is the canonical threshold ramp: zero at or below the
// threshold, rising linearly to one at a raw magnitude of one.
func gatingFactor(raw, threshold float64) float64 {
	return clamp01((raw - threshold) / math.Max(epsilon, 1-threshold))
}

// withGate applies one threshold-gated adjustment for term. A pure
// rule scales the term's own weight by the factor, so the term stays
// inert until its signal clears the threshold. A boost/drain rule
// leaves weights untouched until the factor goes positive, then
// boosts the term and drains every other non-exempt term.
func (ew EffectiveWeights) withGate(term string, rule policy.GateRule, factor float64) EffectiveWeights {
	if rule.Pure {
		next := ew.clone()
		next[term] *= factor
		return EffectiveWeights{w: next}
	}
	if factor <= 0 {
		return ew
	}

	next := ew.clone()
	next[term] *= 1 + rule.MaxBoost*factor
	k := 1 - rule.ReduceOthers*factor
	if k < 0 {
		k = 0
	}
	for other := range next {
		if other == term || exempted(rule.Exempt, other) {
			continue
		}
		next[other] *= k
	}
	return EffectiveWeights{w: next}
}

func exempted(exempt []string, term string) bool {
	for _, e := range exempt {
		if e == term {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
