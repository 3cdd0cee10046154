// Package terms is the signal library: independent pure functions that
// map facts to per-candidate term scores. Terms have no evaluation
// order dependency, raw magnitudes are clamped into [0,1], and absent
// fact blocks yield zero signals rather than errors.
package terms

import (
	"math"

	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/steelyard-dev/steelyard/internal/policy"
)

const epsilon = 1e-9

// Signal is one term's verdict on the candidate set. Raw drives
// gating; PerCandidate feeds the weighted aggregation.
type Signal struct {
	Term         string
	Raw          float64
	PerCandidate map[string]float64
}

// Func is the contract every term satisfies. Implementations must be
// pure with respect to (facts, policy) and must tolerate nil facts.
type Func func(f *models.Facts, p *policy.DecisionPolicy) Signal

// Term pairs an identifier with its evaluation function.
type Term struct {
	ID   string
	Eval Func
}

// Builtin returns the built-in terms in their fixed evaluation order.
func Builtin() []Term {
	return []Term{
		{policy.TermDeficiency, Deficiency},
		{policy.TermPreference, Preference},
		{policy.TermControl, Control},
		{policy.TermBridge, Bridge},
		{policy.TermPotential, Potential},
		{policy.TermConcentration, Concentration},
	}
}

func newSignal(term string) Signal {
	return Signal{Term: term, PerCandidate: map[string]float64{}}
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
