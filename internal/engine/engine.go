// Package engine turns a policy document and a facts snapshot into a
// ranked decision. Evaluation is synchronous, deterministic, and
// total: malformed input degrades through defaults and clamps instead
// of failing, and everything noteworthy lands in the diagnostics.
package engine

import (
	"log/slog"
	"math"
	"sort"

	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/steelyard-dev/steelyard/internal/policy"
	"github.com/steelyard-dev/steelyard/internal/rules"
	"github.com/steelyard-dev/steelyard/internal/terms"
)

// Evaluator evaluates facts against decision policies. It is safe for
// concurrent use: the only shared state is the policy cache.
type Evaluator struct {
	cache    *policy.Cache
	strategy rules.Strategy
	terms    []terms.Term
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithStrategy replaces the builtin rule pass for every evaluation.
func WithStrategy(s rules.Strategy) Option {
	return func(e *Evaluator) {
		e.strategy = s
	}
}

// WithCache shares a policy cache across evaluators.
func WithCache(c *policy.Cache) Option {
	return func(e *Evaluator) {
		if c != nil {
			e.cache = c
		}
	}
}

// WithTerms replaces the signal library.
func WithTerms(ts []terms.Term) Option {
	return func(e *Evaluator) {
		if len(ts) > 0 {
			e.terms = ts
		}
	}
}

// New builds an evaluator with the builtin terms and a fresh cache.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		cache: policy.NewCache(),
		terms: terms.Builtin(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cache exposes the evaluator's policy cache.
func (e *Evaluator) Cache() *policy.Cache {
	return e.cache
}

// Evaluate compiles (or recalls) the policy behind doc and scores the
// facts against it.
func (e *Evaluator) Evaluate(doc *policy.Document, facts *models.Facts) *models.Decision {
	return e.EvaluateCompiled(e.cache.GetOrCompile(doc), facts)
}

// EvaluateCompiled runs one evaluation against an already-compiled
// policy. It never fails and never mutates its inputs.
func (e *Evaluator) EvaluateCompiled(pol *policy.DecisionPolicy, facts *models.Facts) *models.Decision {
	if pol == nil {
		pol = policy.Compile(nil)
	}

	signals := make(map[string]terms.Signal, len(e.terms))
	raws := make(map[string]float64, len(e.terms))
	for _, term := range e.terms {
		s := term.Eval(facts, pol)
		signals[term.ID] = s
		raws[term.ID] = s.Raw
	}

	weights := newEffectiveWeights(pol.TermWeights)
	var diag models.Diagnostics

	if u := pol.Gating.Urgency; u != nil && u.Term != "" {
		weights = e.gate(&diag, weights, u.Term, *u, raws)
	}
	for _, term := range sortedRuleTerms(pol.Gating.Terms) {
		weights = e.gate(&diag, weights, term, pol.Gating.Terms[term], raws)
	}

	weights, diag.Competition = weights.withCompetition(pol.Gating.Competition, raws)

	universe := candidateUniverse(facts, e.terms, signals)
	base := make(map[string]float64, len(universe))
	for _, c := range universe {
		total := 0.0
		for _, term := range e.terms {
			if w := weights.Get(term.ID); w != 0 {
				total += w * signals[term.ID].PerCandidate[c]
			}
		}
		base[c] = total
	}

	final, ruleTrace := e.applyRules(pol, base, facts)
	diag.Rules = ruleTrace

	ranking := rankCandidates(universe, final, pol.TieBreakOrder)
	best := ""
	switch {
	case len(ranking) > 0:
		best = ranking[0].Candidate
	case len(pol.TieBreakOrder) > 0:
		best = pol.TieBreakOrder[0]
	}

	slog.Debug("evaluated decision policy",
		"policy", pol.Name,
		"candidates", len(universe),
		"best", best)

	return &models.Decision{
		PolicyName:  pol.Name,
		FactsName:   factsName(facts),
		Best:        best,
		Ranking:     ranking,
		Scores:      final,
		Diagnostics: diag,
	}
}

func (e *Evaluator) gate(diag *models.Diagnostics, ew EffectiveWeights, term string, rule policy.GateRule, raws map[string]float64) EffectiveWeights {
	factor := gatingFactor(raws[term], rule.Threshold)
	before := ew.Get(term)
	next := ew.withGate(term, rule, factor)
	diag.Signals = append(diag.Signals, models.SignalTrace{
		Term:         term,
		Raw:          raws[term],
		Threshold:    rule.Threshold,
		Factor:       factor,
		WeightBefore: before,
		WeightAfter:  next.Get(term),
	})
	return next
}

func (e *Evaluator) applyRules(pol *policy.DecisionPolicy, base map[string]float64, facts *models.Facts) (map[string]float64, *models.RuleTrace) {
	strategy := e.strategy
	if strategy == nil {
		if len(pol.RuleSpecs) == 0 {
			return base, nil
		}
		strategy = rules.CompileRules(pol.RuleSpecs)
	}

	seed := make(map[string]float64, len(base))
	for c, v := range base {
		seed[c] = v
	}
	adj, err := strategy.Apply(seed, facts)
	if err != nil {
		return base, &models.RuleTrace{Err: err.Error()}
	}
	if adj == nil {
		return base, &models.RuleTrace{}
	}

	final := make(map[string]float64, len(base))
	for c, v := range base {
		final[c] = v
	}
	for c, v := range adj.Scores {
		if _, known := final[c]; !known {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		final[c] = v
	}
	return final, &models.RuleTrace{
		Matches:          adj.Matches,
		AssertionsFailed: adj.AssertionsFailed,
	}
}

// candidateUniverse is every candidate the facts or the signals name,
// in a deterministic order: the facts' sorted candidates first, then
// any profile-only candidates the signals contributed, sorted.
func candidateUniverse(facts *models.Facts, order []terms.Term, signals map[string]terms.Signal) []string {
	seen := map[string]bool{}
	var universe []string
	for _, c := range facts.Candidates() {
		seen[c] = true
		universe = append(universe, c)
	}

	var extras []string
	for _, term := range order {
		for c := range signals[term.ID].PerCandidate {
			if !seen[c] {
				seen[c] = true
				extras = append(extras, c)
			}
		}
	}
	sort.Strings(extras)
	return append(universe, extras...)
}

func sortedRuleTerms(m map[string]policy.GateRule) []string {
	out := make([]string, 0, len(m))
	for term := range m {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}

func factsName(facts *models.Facts) string {
	if facts == nil {
		return ""
	}
	return facts.Name
}
