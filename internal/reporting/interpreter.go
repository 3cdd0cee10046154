package reporting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/steelyard-dev/steelyard/internal/models"
)

// DescribeScore returns a plain-language label for a candidate score (0–1).
func DescribeScore(score float64) string {
	switch {
	case score >= 0.75:
		return "strong"
	case score >= 0.5:
		return "solid"
	case score >= 0.25:
		return "weak"
	default:
		return "negligible"
	}
}

// DescribeMargin explains how decisive the win was, given the top score
// and the runner-up score.
func DescribeMargin(top, runnerUp float64) string {
	margin := top - runnerUp
	switch {
	case margin <= 0:
		return "decided by tie-break order"
	case margin < 0.05:
		return fmt.Sprintf("narrow margin (%.3f)", margin)
	case margin < 0.2:
		return fmt.Sprintf("comfortable margin (%.3f)", margin)
	default:
		return fmt.Sprintf("decisive margin (%.3f)", margin)
	}
}

// FormatDecisionSummary produces a plain-language explanation of one
// decision, used by evaluate --explain.
func FormatDecisionSummary(d *models.Decision) string {
	var b strings.Builder

	b.WriteString("=== Interpretation ===\n\n")

	if d.Best == "" {
		b.WriteString("No candidate was chosen: the facts named no candidates and the policy has no tie-break order.\n")
		return b.String()
	}

	if len(d.Ranking) == 0 {
		b.WriteString(fmt.Sprintf("Best: %s (no candidates were scored; the tie-break order decided)\n", d.Best))
		return b.String()
	}

	top := d.Ranking[0]
	b.WriteString(fmt.Sprintf("Best: %s with score %.3f (%s)\n", top.Candidate, top.Score, DescribeScore(top.Score)))
	if len(d.Ranking) > 1 {
		b.WriteString(fmt.Sprintf("Won by: %s over %s\n", DescribeMargin(top.Score, d.Ranking[1].Score), d.Ranking[1].Candidate))
	}

	if len(d.Diagnostics.Signals) > 0 {
		b.WriteString("\nSignal gating:\n")
		for _, s := range d.Diagnostics.Signals {
			verb := "held"
			if s.WeightAfter > s.WeightBefore {
				verb = "boosted"
			} else if s.WeightAfter < s.WeightBefore {
				verb = "reduced"
			}
			b.WriteString(fmt.Sprintf("  %s: raw %.3f against threshold %.2f %s weight %.3f -> %.3f\n",
				s.Term, s.Raw, s.Threshold, verb, s.WeightBefore, s.WeightAfter))
		}
	}

	if c := d.Diagnostics.Competition; c != nil && c.Winner != "" {
		b.WriteString(fmt.Sprintf("\nCompetition: %s won the largest share among %s\n",
			c.Winner, strings.Join(c.Terms, ", ")))
	}

	if r := d.Diagnostics.Rules; r != nil {
		if r.Err != "" {
			b.WriteString(fmt.Sprintf("\nRules: strategy failed (%s); base scores stand\n", r.Err))
		} else if len(r.Matches) > 0 {
			b.WriteString(fmt.Sprintf("\nRules: %d adjustment(s) fired\n", len(r.Matches)))
			for _, m := range r.Matches {
				b.WriteString(fmt.Sprintf("  %s: %s\n", m.RuleID, m.Explain))
			}
		}
		for _, a := range r.AssertionsFailed {
			b.WriteString(fmt.Sprintf("  assertion %s did not hold: %s\n", a.RuleID, a.Explain))
		}
	}

	return b.String()
}

// FormatGateSummary produces a plain-language explanation of a gate
// verdict, used by verify.
func FormatGateSummary(result models.GateResult) string {
	var b strings.Builder

	verdict := "FAILED"
	if result.Verdict {
		verdict = "PASSED"
	}
	b.WriteString(fmt.Sprintf("Gate %s in %s mode\n", verdict, result.Mode))
	b.WriteString(fmt.Sprintf("Weighted score: %.2f against threshold %.2f\n", result.WeightedScore, result.Threshold))

	if result.Mode == models.GateModeAdaptive {
		b.WriteString(fmt.Sprintf("Priority: %.2f, allowed relaxable failures: %d\n", result.Priority, result.AllowedFailures))
		if len(result.FailedRelaxable) > 0 {
			b.WriteString(fmt.Sprintf("Relaxable failures: %s\n", strings.Join(result.FailedRelaxable, ", ")))
		}
		if result.SevereFailure {
			b.WriteString("A relaxable category failed severely; no reduction can pass it.\n")
		}
		if !result.MandatoryGate {
			b.WriteString("The mandatory gate did not hold.\n")
		}
	}

	if len(result.EffectiveWeights) > 0 {
		categories := make([]string, 0, len(result.EffectiveWeights))
		for c := range result.EffectiveWeights {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		b.WriteString("Effective weights:\n")
		for _, c := range categories {
			b.WriteString(fmt.Sprintf("  %s: %.3f\n", c, result.EffectiveWeights[c]))
		}
	}

	return b.String()
}
