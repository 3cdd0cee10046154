package engine

import (
	"math"

	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/steelyard-dev/steelyard/internal/policy"
)

// withCompetition resolves mutual attenuation among the configured
// competing terms. Shares follow a power law over the terms' raw
// signals; the strongest competitor keeps its full weight and every
// other keeps at least MinKeep of its own. With renormalization the
// summed weight magnitude across the competed set is preserved. Fewer
// than two active competitors means no competition; the trace is nil.
func (ew EffectiveWeights) withCompetition(cfg policy.CompetitionConfig, raw map[string]float64) (EffectiveWeights, *models.CompetitionTrace) {
	active := make([]string, 0, len(cfg.Methods))
	for _, term := range cfg.Methods {
		if math.Abs(ew.Get(term)) > epsilon {
			active = append(active, term)
		}
	}
	if len(active) < 2 {
		return ew, nil
	}

	powered := make(map[string]float64, len(active))
	sum := 0.0
	for _, term := range active {
		p := math.Pow(clamp01(raw[term]), cfg.Power)
		powered[term] = p
		sum += p
	}

	shares := make(map[string]float64, len(active))
	if sum <= epsilon {
		equal := 1.0 / float64(len(active))
		for _, term := range active {
			shares[term] = equal
		}
	} else {
		for _, term := range active {
			shares[term] = powered[term] / sum
		}
	}

	winner := active[0]
	maxShare := shares[winner]
	for _, term := range active[1:] {
		if shares[term] > maxShare {
			winner = term
			maxShare = shares[term]
		}
	}

	multipliers := make(map[string]float64, len(active))
	for _, term := range active {
		multipliers[term] = math.Max(cfg.MinKeep, shares[term]/math.Max(epsilon, maxShare))
	}

	totalBefore := 0.0
	for _, term := range active {
		totalBefore += math.Abs(ew.Get(term))
	}

	next := ew.clone()
	totalAfter := 0.0
	for _, term := range active {
		next[term] *= multipliers[term]
		totalAfter += math.Abs(next[term])
	}

	if cfg.Renormalize {
		scale := 1.0
		if totalAfter > epsilon {
			scale = totalBefore / totalAfter
		}
		totalAfter = 0
		for _, term := range active {
			next[term] *= scale
			totalAfter += math.Abs(next[term])
		}
	}

	trace := &models.CompetitionTrace{
		Terms:       active,
		Shares:      shares,
		Multipliers: multipliers,
		Winner:      winner,
		TotalBefore: totalBefore,
		TotalAfter:  totalAfter,
	}
	return EffectiveWeights{w: next}, trace
}
