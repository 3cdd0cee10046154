package terms

import (
	"math"

	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/steelyard-dev/steelyard/internal/policy"
)

// Preference interpolates between the weak-posture and strong-posture
// emphasis profiles by the strength index. An index of -1 reads the
// weak profile verbatim, +1 the strong one, 0 their midpoint. The raw
// magnitude is how far the posture sits from neutral.
func Preference(f *models.Facts, p *policy.DecisionPolicy) Signal {
	s := newSignal(policy.TermPreference)
	if f == nil || f.Strength == nil {
		return s
	}

	weak := p.Terms.Preference.Weak
	strong := p.Terms.Preference.Strong
	if len(weak) == 0 && len(strong) == 0 {
		return s
	}

	t := (f.Strength.Index + 1) / 2
	for candidate := range weak {
		s.PerCandidate[candidate] = clamp01((1-t)*weak[candidate] + t*strong[candidate])
	}
	for candidate := range strong {
		if _, done := s.PerCandidate[candidate]; done {
			continue
		}
		s.PerCandidate[candidate] = clamp01((1-t)*weak[candidate] + t*strong[candidate])
	}

	s.Raw = clamp01(math.Abs(f.Strength.Index))
	return s
}
