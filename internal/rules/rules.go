// Package rules is the declarative score-adjustment pass the engine
// runs after weighted aggregation. The engine depends only on the
// Strategy interface; the builtin rule set is one implementation and
// tests substitute a generated mock.
package rules

import "github.com/steelyard-dev/steelyard/internal/models"

// Strategy adjusts the aggregated candidate scores. Implementations
// receive the seeded base scores and the facts, and return adjusted
// scores for the candidates they touched. Returning a subset is
// expected; untouched candidates keep their base score. A returned
// error leaves the base scores standing.
type Strategy interface {
	Apply(base map[string]float64, facts *models.Facts) (*Adjustment, error)
}

// Adjustment is a strategy's output. AssertionsFailed is diagnostic
// only; a failed assertion never invalidates the adjustment.
type Adjustment struct {
	Scores           map[string]float64
	Matches          []models.RuleMatch
	AssertionsFailed []models.AssertionFailure
}
