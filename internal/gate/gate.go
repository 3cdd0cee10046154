// Package gate turns a set of weighted child verdicts into a single
// pass/fail decision. The distinguished category supplies sub-signals
// that derive a priority; a high priority switches the gate into
// adaptive mode, which lowers the pass threshold and tolerates a
// bounded number of relaxable failures.
package gate

import (
	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/steelyard-dev/steelyard/internal/policy"
)

const epsilon = 1e-9

// Gate evaluates child verdicts against a gate configuration.
type Gate struct {
	cfg policy.GateConfig
}

// New creates a gate with the given configuration.
func New(cfg policy.GateConfig) *Gate {
	return &Gate{cfg: cfg}
}

// Evaluate runs one forward pass over the children and one aggregation
// pass. Children are never re-visited after their score and passed flag
// are read.
func (g *Gate) Evaluate(children []models.ChildVerdict) models.GateResult {
	res := models.GateResult{
		Mode:             models.GateModeStrict,
		Threshold:        g.cfg.StrictThreshold,
		EffectiveWeights: make(map[string]float64, len(children)),
	}
	if len(children) == 0 {
		return res
	}

	res.Priority = derivePriority(g.cfg, children)
	adaptive := res.Priority >= g.cfg.ModeThreshold
	if adaptive {
		res.Mode = models.GateModeAdaptive
		res.Threshold = g.cfg.StrictThreshold - g.cfg.Reduction*res.Priority
		res.AllowedFailures = 1
		if res.Priority >= g.cfg.HighPriority {
			res.AllowedFailures = 2
		}
	}

	allPassed := true
	weightedSum := 0.0
	totalWeight := 0.0
	secondaryScore := 0.0
	secondarySeen := false
	distinguishedPassed := false

	for _, child := range children {
		w := child.Weight
		if w <= 0 {
			w = 1.0
		}
		switch {
		case child.Category == g.cfg.Distinguished:
			w *= 1 + res.Priority*g.cfg.BoostFactor
		case g.cfg.IsRelaxable(child.Category):
			w *= 1 - res.Priority*g.cfg.ReductionFactor
		}
		res.EffectiveWeights[child.Category] = w
		weightedSum += child.Score * w
		totalWeight += w

		if !child.Passed {
			allPassed = false
			if g.cfg.IsRelaxable(child.Category) {
				res.FailedRelaxable = append(res.FailedRelaxable, child.Category)
				if child.Score < g.cfg.SeverityFloor {
					res.SevereFailure = true
				}
			}
		}
		if child.Category == g.cfg.Distinguished && child.Passed {
			distinguishedPassed = true
		}
		if child.Category == g.cfg.Secondary {
			secondaryScore = child.Score
			secondarySeen = true
		}
	}

	if totalWeight > epsilon {
		res.WeightedScore = weightedSum / totalWeight
	}

	res.MandatoryGate = distinguishedPassed && secondarySeen && secondaryScore >= g.cfg.SecondaryFloor
	res.StrictPassed = allPassed && res.WeightedScore >= g.cfg.StrictThreshold
	res.AdaptivePassed = res.MandatoryGate &&
		res.WeightedScore >= res.Threshold &&
		!res.SevereFailure &&
		len(res.FailedRelaxable) <= res.AllowedFailures

	if adaptive {
		res.Verdict = res.AdaptivePassed
	} else {
		res.Verdict = res.StrictPassed
	}
	return res
}
