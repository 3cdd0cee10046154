package terms

import (
	"math"

	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/steelyard-dev/steelyard/internal/policy"
)

// Bridge rewards the mediator of two opposing categories, but only
// once both sides are dominant enough for mediation to matter. The
// weaker side gates the signal.
func Bridge(f *models.Facts, p *policy.DecisionPolicy) Signal {
	s := newSignal(policy.TermBridge)
	if f == nil || f.Bridge == nil || f.Bridge.Mediator == "" {
		return s
	}

	b := f.Bridge
	floor := p.Terms.Bridge.DominanceFloor
	sides := math.Min(f.Values[b.First], f.Values[b.Second])
	gate := clamp01((sides - floor) / math.Max(epsilon, 1-floor))

	raw := clamp01(b.Intensity * gate)
	if raw == 0 {
		return s
	}
	s.Raw = raw
	s.PerCandidate[b.Mediator] = raw
	return s
}
