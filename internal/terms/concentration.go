package terms

import (
	"math"

	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/steelyard-dev/steelyard/internal/policy"
)

// Concentration rewards the dominant category once its share of the
// observed values clears the floor. Secondary concentration boosts the
// signal, capped by the clamp.
func Concentration(f *models.Facts, p *policy.DecisionPolicy) Signal {
	s := newSignal(policy.TermConcentration)
	if f == nil || f.Concentration == nil || f.Concentration.Dominant == "" {
		return s
	}

	cc := f.Concentration
	floor := p.Terms.Concentration.ShareFloor
	base := clamp01((cc.Share - floor) / math.Max(epsilon, 1-floor))
	raw := clamp01(base * (1 + p.Terms.Concentration.SecondaryBoost*cc.Secondary))
	if raw == 0 {
		return s
	}
	s.Raw = raw
	s.PerCandidate[cc.Dominant] = raw
	return s
}
