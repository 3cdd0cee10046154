package terms

import (
	"math"

	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/steelyard-dev/steelyard/internal/policy"
)

// Control scores each candidate by how strongly it counteracts the
// categories currently in excess. A category is in excess once its
// value clears the configured cap; the overshoot is normalized to the
// remaining headroom.
func Control(f *models.Facts, p *policy.DecisionPolicy) Signal {
	s := newSignal(policy.TermControl)
	if f == nil || len(f.Values) == 0 || len(f.Counters) == 0 {
		return s
	}

	limit := p.Terms.Control.ExcessAbove
	span := math.Max(epsilon, 1-limit)
	excess := map[string]float64{}
	for category, value := range f.Values {
		if value <= limit {
			continue
		}
		e := clamp01((value - limit) / span)
		excess[category] = e
		if e > s.Raw {
			s.Raw = e
		}
	}
	if len(excess) == 0 {
		return s
	}

	for candidate, counters := range f.Counters {
		sum := 0.0
		for category, e := range excess {
			sum += e * counters[category]
		}
		s.PerCandidate[candidate] = clamp01(sum)
	}
	return s
}
