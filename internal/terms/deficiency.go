package terms

import (
	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/steelyard-dev/steelyard/internal/policy"
)

// Deficiency scores each candidate by how far its observed value sits
// below its target level. The raw magnitude is the worst shortfall,
// which is what urgency gating reacts to.
func Deficiency(f *models.Facts, p *policy.DecisionPolicy) Signal {
	s := newSignal(policy.TermDeficiency)
	if f == nil || len(f.Values) == 0 {
		return s
	}
	for candidate, value := range f.Values {
		target := p.Terms.Deficiency.Target
		if t, ok := f.Targets[candidate]; ok {
			target = t
		}
		gap := clamp01(target - value)
		s.PerCandidate[candidate] = gap
		if gap > s.Raw {
			s.Raw = gap
		}
	}
	return s
}
