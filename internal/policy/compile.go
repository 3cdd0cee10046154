package policy

import (
	"log/slog"
	"math"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
)

const epsilon = 1e-9

// rawPolicy mirrors the document shape with optional fields left as
// pointers so resolution can tell absent from zero.
type rawPolicy struct {
	Name     string           `mapstructure:"name"`
	Weights  map[string]any   `mapstructure:"weights"`
	TieBreak []string         `mapstructure:"tie_break"`
	Gating   rawGating        `mapstructure:"gating"`
	Terms    rawTermParams    `mapstructure:"terms"`
	Rules    []map[string]any `mapstructure:"rules"`
	Gate     rawGate          `mapstructure:"gate"`
}

type rawGating struct {
	Urgency     *rawGateRule           `mapstructure:"urgency"`
	Terms       map[string]rawGateRule `mapstructure:"terms"`
	Competition rawCompetition         `mapstructure:"competition"`
}

type rawGateRule struct {
	Term         string   `mapstructure:"term"`
	Enabled      *bool    `mapstructure:"enabled"`
	Threshold    any      `mapstructure:"threshold"`
	MaxBoost     any      `mapstructure:"max_boost"`
	ReduceOthers any      `mapstructure:"reduce_others"`
	Exempt       []string `mapstructure:"exempt"`
}

type rawCompetition struct {
	Methods     []string `mapstructure:"methods"`
	Power       any      `mapstructure:"power"`
	MinKeep     any      `mapstructure:"min_keep"`
	Renormalize *bool    `mapstructure:"renormalize"`
}

type rawTermParams struct {
	Deficiency struct {
		Target any `mapstructure:"target"`
	} `mapstructure:"deficiency"`
	Preference struct {
		Weak   map[string]any `mapstructure:"weak"`
		Strong map[string]any `mapstructure:"strong"`
	} `mapstructure:"preference"`
	Control struct {
		ExcessAbove any `mapstructure:"excess_above"`
	} `mapstructure:"control"`
	Bridge struct {
		DominanceFloor any `mapstructure:"dominance_floor"`
	} `mapstructure:"bridge"`
	Potential struct {
		MinRatio  any            `mapstructure:"min_ratio"`
		FullRatio any            `mapstructure:"full_ratio"`
		GateIndex any            `mapstructure:"gate_index"`
		Ahead     map[string]any `mapstructure:"ahead"`
		Behind    map[string]any `mapstructure:"behind"`
	} `mapstructure:"potential"`
	Concentration struct {
		ShareFloor     any `mapstructure:"share_floor"`
		SecondaryBoost any `mapstructure:"secondary_boost"`
	} `mapstructure:"concentration"`
}

type rawGate struct {
	Distinguished   string   `mapstructure:"distinguished"`
	Secondary       string   `mapstructure:"secondary"`
	SecondaryFloor  any      `mapstructure:"secondary_floor"`
	Relaxable       []string `mapstructure:"relaxable"`
	StrictThreshold any      `mapstructure:"strict_threshold"`
	Reduction       any      `mapstructure:"reduction"`
	ModeThreshold   any      `mapstructure:"mode_threshold"`
	HighPriority    any      `mapstructure:"high_priority"`
	SeverityFloor   any      `mapstructure:"severity_floor"`
	BoostFactor     any      `mapstructure:"boost_factor"`
	ReductionFactor any      `mapstructure:"reduction_factor"`
	FitShare        any      `mapstructure:"fit_share"`
	CoverageShare   any      `mapstructure:"coverage_share"`
	ConflictCap     any      `mapstructure:"conflict_cap"`
}

// Compile turns a raw document into a fully-defaulted DecisionPolicy.
// It never fails: fields that cannot be decoded keep their defaults,
// and decode problems are logged at debug level only.
func Compile(raw map[string]any) *DecisionPolicy {
	var rp rawPolicy
	if raw != nil {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &rp,
			WeaklyTypedInput: true,
		})
		if err == nil {
			if err := dec.Decode(raw); err != nil {
				slog.Debug("policy decode was partial", "error", err)
			}
		}
	}
	return resolve(rp)
}

func resolve(rp rawPolicy) *DecisionPolicy {
	p := &DecisionPolicy{
		Name:          rp.Name,
		TermWeights:   map[string]float64{},
		TieBreakOrder: append([]string(nil), rp.TieBreak...),
		RuleSpecs:     rp.Rules,
	}

	for term, v := range rp.Weights {
		p.TermWeights[term] = asNumber(v, 0)
	}

	if u := rp.Gating.Urgency; u != nil && enabled(u.Enabled) {
		r := resolveGateRule(*u)
		p.Gating.Urgency = &r
	}
	if len(rp.Gating.Terms) > 0 {
		p.Gating.Terms = make(map[string]GateRule, len(rp.Gating.Terms))
		for term, r := range rp.Gating.Terms {
			if !enabled(r.Enabled) {
				continue
			}
			p.Gating.Terms[term] = resolveGateRule(r)
		}
	}
	p.Gating.Competition = CompetitionConfig{
		Methods:     append([]string(nil), rp.Gating.Competition.Methods...),
		Power:       atLeast(asNumber(rp.Gating.Competition.Power, DefaultCompetitionPower), 0),
		MinKeep:     clamp01(asNumber(rp.Gating.Competition.MinKeep, DefaultMinKeep)),
		Renormalize: enabled(rp.Gating.Competition.Renormalize),
	}

	p.Terms = TermParams{
		Deficiency: DeficiencyParams{
			Target: clamp01(asNumber(rp.Terms.Deficiency.Target, DefaultDeficiencyTarget)),
		},
		Preference: PreferenceParams{
			Weak:   unitProfile(rp.Terms.Preference.Weak),
			Strong: unitProfile(rp.Terms.Preference.Strong),
		},
		Control: ControlParams{
			ExcessAbove: clamp01(asNumber(rp.Terms.Control.ExcessAbove, DefaultExcessAbove)),
		},
		Bridge: BridgeParams{
			DominanceFloor: clamp01(asNumber(rp.Terms.Bridge.DominanceFloor, DefaultBridgeFloor)),
		},
		Potential: PotentialParams{
			MinRatio:  atLeast(asNumber(rp.Terms.Potential.MinRatio, DefaultPotentialMinRatio), 1),
			FullRatio: asNumber(rp.Terms.Potential.FullRatio, DefaultPotentialFullRatio),
			GateIndex: clamp01(asNumber(rp.Terms.Potential.GateIndex, DefaultPotentialGateIndex)),
			Ahead:     unitProfile(rp.Terms.Potential.Ahead),
			Behind:    unitProfile(rp.Terms.Potential.Behind),
		},
		Concentration: ConcentrationParams{
			ShareFloor:     clamp01(asNumber(rp.Terms.Concentration.ShareFloor, DefaultShareFloor)),
			SecondaryBoost: atLeast(asNumber(rp.Terms.Concentration.SecondaryBoost, DefaultSecondaryBoost), 0),
		},
	}
	if p.Terms.Potential.FullRatio <= p.Terms.Potential.MinRatio {
		p.Terms.Potential.FullRatio = p.Terms.Potential.MinRatio + (DefaultPotentialFullRatio - DefaultPotentialMinRatio)
	}

	p.Gate = GateConfig{
		Distinguished:   defaultString(rp.Gate.Distinguished, DefaultDistinguished),
		Secondary:       defaultString(rp.Gate.Secondary, DefaultSecondary),
		SecondaryFloor:  clampRange(asNumber(rp.Gate.SecondaryFloor, DefaultSecondaryFloor), 0, 100),
		Relaxable:       append([]string(nil), rp.Gate.Relaxable...),
		StrictThreshold: clampRange(asNumber(rp.Gate.StrictThreshold, DefaultStrictThreshold), 0, 100),
		Reduction:       atLeast(asNumber(rp.Gate.Reduction, DefaultReduction), 0),
		ModeThreshold:   clamp01(asNumber(rp.Gate.ModeThreshold, DefaultModeThreshold)),
		HighPriority:    clamp01(asNumber(rp.Gate.HighPriority, DefaultHighPriority)),
		SeverityFloor:   clampRange(asNumber(rp.Gate.SeverityFloor, DefaultSeverityFloor), 0, 100),
		BoostFactor:     atLeast(asNumber(rp.Gate.BoostFactor, DefaultBoostFactor), 0),
		ReductionFactor: clamp01(asNumber(rp.Gate.ReductionFactor, DefaultReductionFactor)),
		FitShare:        clamp01(asNumber(rp.Gate.FitShare, DefaultFitShare)),
		CoverageShare:   clamp01(asNumber(rp.Gate.CoverageShare, DefaultCoverageShare)),
		ConflictCap:     clamp01(asNumber(rp.Gate.ConflictCap, DefaultConflictCap)),
	}

	// Every term referenced by gating or competition gets a weight entry.
	if p.Gating.Urgency != nil {
		ensureWeight(p.TermWeights, p.Gating.Urgency.Term)
	}
	for term := range p.Gating.Terms {
		ensureWeight(p.TermWeights, term)
	}
	for _, term := range p.Gating.Competition.Methods {
		ensureWeight(p.TermWeights, term)
	}

	return p
}

func resolveGateRule(r rawGateRule) GateRule {
	// Threshold must stay below 1 so the gating ramp keeps a nonzero run.
	threshold := clampRange(asNumber(r.Threshold, DefaultGateThreshold), 0, 1-epsilon)
	pure := r.MaxBoost == nil && r.ReduceOthers == nil
	return GateRule{
		Term:         r.Term,
		Threshold:    threshold,
		MaxBoost:     atLeast(asNumber(r.MaxBoost, 0), 0),
		ReduceOthers: clamp01(asNumber(r.ReduceOthers, 0)),
		Exempt:       append([]string(nil), r.Exempt...),
		Pure:         pure,
	}
}

// asNumber coerces a loosely-typed value to a finite float64, falling
// back when the value is absent, non-numeric, or non-finite.
func asNumber(v any, fallback float64) float64 {
	var f float64
	switch n := v.(type) {
	case nil:
		return fallback
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return fallback
		}
		f = parsed
	default:
		return fallback
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}

func unitProfile(m map[string]any) map[string]float64 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = clamp01(asNumber(v, 0))
	}
	return out
}

func ensureWeight(w map[string]float64, term string) {
	if term == "" {
		return
	}
	if _, ok := w[term]; !ok {
		w[term] = 0
	}
}

func enabled(b *bool) bool {
	return b == nil || *b
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func atLeast(v, floor float64) float64 {
	if v < floor {
		return floor
	}
	return v
}

func clamp01(v float64) float64 {
	return clampRange(v, 0, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
