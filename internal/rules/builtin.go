package rules

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/go-viper/mapstructure/v2"

	"github.com/steelyard-dev/steelyard/internal/models"
)

// RuleSet is the builtin Strategy: an ordered list of declarative
// rules compiled from the policy document. Rules run top to bottom
// against a working copy of the scores, so later rules observe the
// adjustments of earlier ones.
type RuleSet struct {
	rules []rule
}

type rule struct {
	ID      string     `mapstructure:"id"`
	When    *condition `mapstructure:"when"`
	Then    *action    `mapstructure:"then"`
	Assert  *assertion `mapstructure:"assert"`
	Explain string     `mapstructure:"explain"`
}

// condition reads one scalar: a candidate's current score, a facts
// value, or the strength index. Exactly one source must be set.
type condition struct {
	Candidate string  `mapstructure:"candidate"`
	Fact      string  `mapstructure:"fact"`
	Index     bool    `mapstructure:"index"`
	Op        string  `mapstructure:"op"`
	Value     float64 `mapstructure:"value"`
}

type action struct {
	Candidate string  `mapstructure:"candidate"`
	Op        string  `mapstructure:"op"` // add | mul | set
	Value     float64 `mapstructure:"value"`
}

type assertion struct {
	Candidate string   `mapstructure:"candidate"`
	Min       *float64 `mapstructure:"min"`
	Max       *float64 `mapstructure:"max"`
}

// CompileRules builds a RuleSet from the opaque rule specs of a
// compiled policy. Malformed entries are skipped, never fatal.
func CompileRules(specs []map[string]any) *RuleSet {
	rs := &RuleSet{}
	for i, spec := range specs {
		var r rule
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &r,
			WeaklyTypedInput: true,
		})
		if err != nil {
			continue
		}
		if err := dec.Decode(spec); err != nil {
			slog.Debug("skipping malformed rule", "index", i, "error", err)
			continue
		}
		if r.ID == "" {
			r.ID = fmt.Sprintf("rule-%d", i)
		}
		if r.Then == nil && r.Assert == nil {
			slog.Debug("skipping rule with no action or assertion", "id", r.ID)
			continue
		}
		if r.When != nil && r.When.Candidate == "" && r.When.Fact == "" && !r.When.Index {
			slog.Debug("skipping rule with an empty condition source", "id", r.ID)
			continue
		}
		rs.rules = append(rs.rules, r)
	}
	return rs
}

// Len reports how many rules compiled successfully.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Apply runs the rule list over a working copy of the base scores and
// returns only the candidates that were touched.
func (rs *RuleSet) Apply(base map[string]float64, facts *models.Facts) (*Adjustment, error) {
	adj := &Adjustment{Scores: map[string]float64{}}
	working := make(map[string]float64, len(base))
	for c, v := range base {
		working[c] = v
	}

	for _, r := range rs.rules {
		if r.When != nil && !r.When.holds(working, facts) {
			continue
		}
		if r.Then != nil && r.Then.Candidate != "" {
			prev := working[r.Then.Candidate]
			next := r.Then.apply(prev)
			working[r.Then.Candidate] = next
			adj.Scores[r.Then.Candidate] = next
			adj.Matches = append(adj.Matches, models.RuleMatch{
				RuleID:    r.ID,
				Candidate: r.Then.Candidate,
				Op:        r.Then.Op,
				Value:     r.Then.Value,
				Explain:   r.Explain,
			})
		}
		if r.Assert != nil && !r.Assert.holds(working) {
			adj.AssertionsFailed = append(adj.AssertionsFailed, models.AssertionFailure{
				RuleID:  r.ID,
				Explain: r.Explain,
			})
		}
	}
	return adj, nil
}

func (c *condition) holds(scores map[string]float64, facts *models.Facts) bool {
	var lhs float64
	switch {
	case c.Candidate != "":
		lhs = scores[c.Candidate]
	case c.Fact != "":
		if facts == nil {
			return false
		}
		lhs = facts.Values[c.Fact]
	case c.Index:
		if facts == nil || facts.Strength == nil {
			return false
		}
		lhs = facts.Strength.Index
	default:
		return false
	}

	switch c.Op {
	case "gt":
		return lhs > c.Value
	case "ge":
		return lhs >= c.Value
	case "lt":
		return lhs < c.Value
	case "le":
		return lhs <= c.Value
	case "eq":
		return math.Abs(lhs-c.Value) < 1e-9
	default:
		return false
	}
}

func (a *action) apply(prev float64) float64 {
	switch a.Op {
	case "add":
		return prev + a.Value
	case "mul":
		return prev * a.Value
	case "set":
		return a.Value
	default:
		return prev
	}
}

func (a *assertion) holds(scores map[string]float64) bool {
	v, ok := scores[a.Candidate]
	if !ok {
		return false
	}
	if a.Min != nil && v < *a.Min {
		return false
	}
	if a.Max != nil && v > *a.Max {
		return false
	}
	return true
}
