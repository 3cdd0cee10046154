// Package policy compiles loose configuration documents into immutable
// decision policies and caches them per document handle.
package policy

// Term identifiers understood by the signal library.
const (
	TermDeficiency    = "deficiency"
	TermPreference    = "preference"
	TermControl       = "control"
	TermBridge        = "bridge"
	TermPotential     = "potential"
	TermConcentration = "concentration"
)

// Defaults applied by Compile when a field is absent or unusable.
const (
	DefaultGateThreshold    = 0.5
	DefaultCompetitionPower = 2.0
	DefaultMinKeep          = 0.2

	DefaultDeficiencyTarget   = 1.0
	DefaultExcessAbove        = 0.7
	DefaultBridgeFloor        = 0.5
	DefaultPotentialMinRatio  = 1.5
	DefaultPotentialFullRatio = 4.0
	DefaultPotentialGateIndex = 0.35
	DefaultShareFloor         = 0.4
	DefaultSecondaryBoost     = 0.5

	DefaultStrictThreshold = 70.0
	DefaultReduction       = 10.0
	DefaultModeThreshold   = 0.55
	DefaultHighPriority    = 0.75
	DefaultSeverityFloor   = 45.0
	DefaultSecondaryFloor  = 50.0
	DefaultBoostFactor     = 0.5
	DefaultReductionFactor = 0.3
	DefaultFitShare        = 0.6
	DefaultCoverageShare   = 0.4
	DefaultConflictCap     = 0.25

	DefaultDistinguished = "alignment"
	DefaultSecondary     = "soundness"
)

// DecisionPolicy is the fully-defaulted, immutable form of one policy
// document. Compile never fails; unusable fields take the defaults
// above. Every term referenced by gating or competition is guaranteed
// an entry in TermWeights (zero if the document gave none).
type DecisionPolicy struct {
	Name          string
	TermWeights   map[string]float64
	TieBreakOrder []string
	Gating        GatingConfig
	Terms         TermParams
	RuleSpecs     []map[string]any
	Gate          GateConfig
}

// GatingConfig selects how raw signal magnitudes adjust term weights.
// Urgency is the legacy single rule; Terms is the current multi-term
// selector. Both may be present; urgency applies first.
type GatingConfig struct {
	Urgency     *GateRule
	Terms       map[string]GateRule
	Competition CompetitionConfig
}

// GateRule is one threshold-gated boost/drain adjustment. When neither
// a boost nor a drain was configured the rule is Pure: the term's own
// weight is simply scaled by the gating factor.
type GateRule struct {
	Term         string
	Threshold    float64
	MaxBoost     float64
	ReduceOthers float64
	Exempt       []string
	Pure         bool
}

// CompetitionConfig attenuates simultaneously-active gated terms by a
// power-law share allocation with a floor.
type CompetitionConfig struct {
	Methods     []string
	Power       float64
	MinKeep     float64
	Renormalize bool
}

// TermParams carries the per-term tunables of the signal library.
type TermParams struct {
	Deficiency    DeficiencyParams
	Preference    PreferenceParams
	Control       ControlParams
	Bridge        BridgeParams
	Potential     PotentialParams
	Concentration ConcentrationParams
}

// DeficiencyParams: Target is the level a candidate is measured
// against when the facts give no per-candidate target.
type DeficiencyParams struct {
	Target float64
}

// PreferenceParams holds the two opposite emphasis profiles the
// strength index interpolates between.
type PreferenceParams struct {
	Weak   map[string]float64
	Strong map[string]float64
}

// ControlParams: values above ExcessAbove count as excess pressure.
type ControlParams struct {
	ExcessAbove float64
}

// BridgeParams: both sides of a bridge must reach DominanceFloor
// before the mediation signal engages.
type BridgeParams struct {
	DominanceFloor float64
}

// PotentialParams tunes the two symmetric dominance-ratio ramps and
// names the candidates each side favors.
type PotentialParams struct {
	MinRatio  float64
	FullRatio float64
	GateIndex float64
	Ahead     map[string]float64
	Behind    map[string]float64
}

// ConcentrationParams: the signal ramps from ShareFloor to a full
// share of 1; Secondary concentration boosts it by up to SecondaryBoost.
type ConcentrationParams struct {
	ShareFloor     float64
	SecondaryBoost float64
}

// GateConfig tunes the adaptive pass/fail gate. Score-scale fields
// (StrictThreshold, Reduction, SeverityFloor, SecondaryFloor) are on
// the 0..100 child-score scale; everything else lives in [0,1].
type GateConfig struct {
	Distinguished   string
	Secondary       string
	SecondaryFloor  float64
	Relaxable       []string
	StrictThreshold float64
	Reduction       float64
	ModeThreshold   float64
	HighPriority    float64
	SeverityFloor   float64
	BoostFactor     float64
	ReductionFactor float64
	FitShare        float64
	CoverageShare   float64
	ConflictCap     float64
}

// IsRelaxable reports whether the given category may fail under
// adaptive mode.
func (g GateConfig) IsRelaxable(category string) bool {
	for _, c := range g.Relaxable {
		if c == category {
			return true
		}
	}
	return false
}
