package terms

import (
	"math"

	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/steelyard-dev/steelyard/internal/policy"
)

// Potential is the larger of two symmetric dominance ramps. The ahead
// ramp engages when support dwarfs pressure and the posture index
// clears the gate; the behind ramp is its mirror image. Each ramp
// feeds its own candidate profile.
func Potential(f *models.Facts, p *policy.DecisionPolicy) Signal {
	s := newSignal(policy.TermPotential)
	if f == nil || f.Strength == nil {
		return s
	}

	st := f.Strength
	pp := p.Terms.Potential
	span := math.Max(epsilon, pp.FullRatio-pp.MinRatio)

	ahead := 0.0
	if st.Index >= pp.GateIndex {
		ratio := st.Support / math.Max(epsilon, st.Pressure)
		ahead = clamp01((ratio - pp.MinRatio) / span)
	}
	behind := 0.0
	if st.Index <= -pp.GateIndex {
		ratio := st.Pressure / math.Max(epsilon, st.Support)
		behind = clamp01((ratio - pp.MinRatio) / span)
	}

	s.Raw = math.Max(ahead, behind)
	if s.Raw == 0 {
		return s
	}

	for candidate, w := range pp.Ahead {
		s.PerCandidate[candidate] = clamp01(ahead * w)
	}
	for candidate, w := range pp.Behind {
		s.PerCandidate[candidate] = clamp01(s.PerCandidate[candidate] + behind*w)
	}
	return s
}
