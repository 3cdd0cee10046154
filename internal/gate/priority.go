package gate

import (
	"math"

	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/steelyard-dev/steelyard/internal/policy"
)

// derivePriority blends the distinguished child's fit and coverage
// sub-signals, discounted by a capped conflict penalty. A missing child
// or missing detail yields zero priority, which keeps the gate strict.
func derivePriority(cfg policy.GateConfig, children []models.ChildVerdict) float64 {
	for _, child := range children {
		if child.Category != cfg.Distinguished || child.Detail == nil {
			continue
		}
		d := child.Detail
		blend := cfg.FitShare*clamp01(d.Fit) + cfg.CoverageShare*clamp01(d.Coverage)
		penalty := min(clamp01(d.Conflict), cfg.ConflictCap)
		return clamp01(blend - penalty)
	}
	return 0
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}
