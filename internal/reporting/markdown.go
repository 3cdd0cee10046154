package reporting

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/steelyard-dev/steelyard/internal/models"
)

// BuildMarkdown renders recorded decisions as a single markdown report.
// Section anchors follow the GitHub slug convention so the table of
// contents links survive rendering.
func BuildMarkdown(decisions []*models.Decision) string {
	var b strings.Builder

	b.WriteString("# Decision Report\n\n")
	b.WriteString(fmt.Sprintf("%d decision(s) recorded.\n\n", len(decisions)))

	headings := make([]string, len(decisions))
	for i, d := range decisions {
		headings[i] = decisionHeading(i, d)
	}

	if len(decisions) > 1 {
		b.WriteString("## Contents\n\n")
		for _, h := range headings {
			b.WriteString(fmt.Sprintf("- [%s](#%s)\n", h, slugify(h)))
		}
		b.WriteString("\n")
	}

	for i, d := range decisions {
		writeDecisionSection(&b, headings[i], d)
	}

	b.WriteString("---\n\n")
	b.WriteString("Generated by steelyard report\n")

	return b.String()
}

func decisionHeading(i int, d *models.Decision) string {
	name := d.PolicyName
	if name == "" {
		name = "unnamed policy"
	}
	return fmt.Sprintf("Decision %d: %s", i+1, name)
}

func writeDecisionSection(b *strings.Builder, heading string, d *models.Decision) {
	b.WriteString(fmt.Sprintf("## %s\n\n", heading))

	best := d.Best
	if best == "" {
		best = "(none)"
	}
	b.WriteString(fmt.Sprintf("**Best:** %s", best))
	if len(d.Ranking) > 1 {
		b.WriteString(fmt.Sprintf(" | **Won by:** %s", DescribeMargin(d.Ranking[0].Score, d.Ranking[1].Score)))
	}
	b.WriteString("\n\n")

	if d.FactsName != "" {
		b.WriteString(fmt.Sprintf("- **Facts:** %s\n", d.FactsName))
	}
	if !d.EvaluatedAt.IsZero() {
		b.WriteString(fmt.Sprintf("- **Evaluated:** %s\n", d.EvaluatedAt.Format(time.RFC3339)))
	}
	if d.ID != "" {
		b.WriteString(fmt.Sprintf("- **ID:** %s\n", d.ID))
	}
	b.WriteString("\n")

	if len(d.Ranking) > 0 {
		b.WriteString("### Ranking\n\n")
		b.WriteString("| Rank | Candidate | Score | Reading |\n")
		b.WriteString("|------|-----------|-------|---------|\n")
		for _, cs := range d.Ranking {
			b.WriteString(fmt.Sprintf("| %d | %s | %.3f | %s |\n",
				cs.Rank, cs.Candidate, cs.Score, DescribeScore(cs.Score)))
		}
		b.WriteString("\n")
	}

	if len(d.Diagnostics.Signals) > 0 {
		b.WriteString("### Signal Gating\n\n")
		b.WriteString("| Term | Raw | Threshold | Factor | Weight Before | Weight After |\n")
		b.WriteString("|------|-----|-----------|--------|---------------|--------------|\n")
		for _, s := range d.Diagnostics.Signals {
			b.WriteString(fmt.Sprintf("| %s | %.3f | %.2f | %.3f | %.3f | %.3f |\n",
				s.Term, s.Raw, s.Threshold, s.Factor, s.WeightBefore, s.WeightAfter))
		}
		b.WriteString("\n")
	}

	if c := d.Diagnostics.Competition; c != nil && len(c.Terms) > 0 {
		b.WriteString("### Competition\n\n")
		if c.Winner != "" {
			b.WriteString(fmt.Sprintf("Winner: **%s** (total weight %.3f -> %.3f)\n\n",
				c.Winner, c.TotalBefore, c.TotalAfter))
		}
		b.WriteString("| Term | Share | Multiplier |\n")
		b.WriteString("|------|-------|------------|\n")
		for _, t := range c.Terms {
			b.WriteString(fmt.Sprintf("| %s | %.3f | %.3f |\n", t, c.Shares[t], c.Multipliers[t]))
		}
		b.WriteString("\n")
	}

	if r := d.Diagnostics.Rules; r != nil && (r.Err != "" || len(r.Matches) > 0 || len(r.AssertionsFailed) > 0) {
		b.WriteString("### Rules\n\n")
		if r.Err != "" {
			b.WriteString(fmt.Sprintf("Strategy error, base scores kept: %s\n\n", r.Err))
		}
		for _, m := range r.Matches {
			b.WriteString(fmt.Sprintf("- **%s**: %s\n", m.RuleID, m.Explain))
		}
		for _, a := range r.AssertionsFailed {
			b.WriteString(fmt.Sprintf("- ⚠️ assertion **%s** did not hold: %s\n", a.RuleID, a.Explain))
		}
		b.WriteString("\n")
	}
}

// slugify converts a heading to its GitHub anchor form: lowercase,
// spaces become hyphens, punctuation is dropped.
func slugify(heading string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(heading) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		case r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
