package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steelyard-dev/steelyard/internal/metrics"
	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/steelyard-dev/steelyard/internal/outcome"
)

var compareOutputFormat string

func newCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <a.json> <b.json>",
		Short: "Compare two decision records",
		Long: `Compare two decision records side by side.

Shows per-candidate score deltas and rank moves, whether the winning
candidate changed, and distribution statistics for each record. Records
may be plain JSON (evaluate -o out.json) or compressed records from a
records directory.`,
		Args: cobra.ExactArgs(2),
		RunE: compareCommandE,
	}

	cmd.Flags().StringVarP(&compareOutputFormat, "format", "f", "table", "Output format: table or json")

	return cmd
}

// candidateComparison holds per-candidate delta information.
type candidateComparison struct {
	Candidate  string  `json:"candidate"`
	InA        bool    `json:"in_a"`
	InB        bool    `json:"in_b"`
	ScoreA     float64 `json:"score_a"`
	ScoreB     float64 `json:"score_b"`
	ScoreDelta float64 `json:"score_delta"`
	RankA      int     `json:"rank_a"`
	RankB      int     `json:"rank_b"`
	RankMove   int     `json:"rank_move"`
}

// comparisonReport is the full comparison output.
type comparisonReport struct {
	FileA       string                `json:"file_a"`
	FileB       string                `json:"file_b"`
	PolicyA     string                `json:"policy_a,omitempty"`
	PolicyB     string                `json:"policy_b,omitempty"`
	BestA       string                `json:"best_a"`
	BestB       string                `json:"best_b"`
	BestChanged bool                  `json:"best_changed"`
	MeanA       float64               `json:"mean_score_a"`
	MeanB       float64               `json:"mean_score_b"`
	StdDevA     float64               `json:"stddev_score_a"`
	StdDevB     float64               `json:"stddev_score_b"`
	Candidates  []candidateComparison `json:"candidates"`
}

func compareCommandE(cmd *cobra.Command, args []string) error {
	if compareOutputFormat != "table" && compareOutputFormat != "json" {
		return fmt.Errorf("unsupported format %q: must be table or json", compareOutputFormat)
	}

	a, err := loadDecisionFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	b, err := loadDecisionFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[1], err)
	}

	report := buildComparisonReport(args[0], args[1], a, b)

	out := cmd.OutOrStdout()
	if compareOutputFormat == "json" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal comparison report: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	printComparisonTable(out, report)
	return nil
}

// loadDecisionFile reads one record, compressed or plain JSON.
func loadDecisionFile(path string) (*models.Decision, error) {
	if strings.HasSuffix(path, outcome.FileExt) {
		return outcome.ReadFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d models.Decision
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func buildComparisonReport(fileA, fileB string, a, b *models.Decision) *comparisonReport {
	report := &comparisonReport{
		FileA:       fileA,
		FileB:       fileB,
		PolicyA:     a.PolicyName,
		PolicyB:     b.PolicyName,
		BestA:       a.Best,
		BestB:       b.Best,
		BestChanged: a.Best != b.Best,
	}

	scoresA := rankingScores(a)
	scoresB := rankingScores(b)
	report.MeanA = metrics.Mean(scoresA)
	report.MeanB = metrics.Mean(scoresB)
	report.StdDevA = metrics.StdDev(scoresA)
	report.StdDevB = metrics.StdDev(scoresB)

	// Candidate union: a's ranking order first, then b-only candidates.
	rankA := rankIndex(a)
	rankB := rankIndex(b)
	var order []string
	seen := make(map[string]bool)
	for _, cs := range a.Ranking {
		order = append(order, cs.Candidate)
		seen[cs.Candidate] = true
	}
	for _, cs := range b.Ranking {
		if !seen[cs.Candidate] {
			order = append(order, cs.Candidate)
		}
	}

	for _, name := range order {
		cc := candidateComparison{Candidate: name}
		if cs, ok := rankA[name]; ok {
			cc.InA = true
			cc.ScoreA = cs.Score
			cc.RankA = cs.Rank
		}
		if cs, ok := rankB[name]; ok {
			cc.InB = true
			cc.ScoreB = cs.Score
			cc.RankB = cs.Rank
		}
		if cc.InA && cc.InB {
			cc.ScoreDelta = cc.ScoreB - cc.ScoreA
			// Positive means the candidate moved up between records.
			cc.RankMove = cc.RankA - cc.RankB
		}
		report.Candidates = append(report.Candidates, cc)
	}

	return report
}

func rankingScores(d *models.Decision) []float64 {
	scores := make([]float64, 0, len(d.Ranking))
	for _, cs := range d.Ranking {
		scores = append(scores, cs.Score)
	}
	return scores
}

func rankIndex(d *models.Decision) map[string]models.CandidateScore {
	idx := make(map[string]models.CandidateScore, len(d.Ranking))
	for _, cs := range d.Ranking {
		idx[cs.Candidate] = cs
	}
	return idx
}

func printComparisonTable(w io.Writer, r *comparisonReport) {
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintln(w, " COMPARISON REPORT")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  [A] %s  (policy: %s, best: %s)\n", r.FileA, orDash(r.PolicyA), orDash(r.BestA))
	fmt.Fprintf(w, "  [B] %s  (policy: %s, best: %s)\n", r.FileB, orDash(r.PolicyB), orDash(r.BestB))
	fmt.Fprintln(w)

	if r.BestChanged {
		fmt.Fprintf(w, "  Best changed: %s -> %s\n", orDash(r.BestA), orDash(r.BestB))
	} else {
		fmt.Fprintf(w, "  Best unchanged: %s\n", orDash(r.BestA))
	}
	fmt.Fprintf(w, "  Mean score:   %.4f -> %.4f (%+.4f)\n", r.MeanA, r.MeanB, r.MeanB-r.MeanA)
	fmt.Fprintf(w, "  Score spread: %.4f -> %.4f\n", r.StdDevA, r.StdDevB)
	fmt.Fprintln(w)

	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintln(w, " PER-CANDIDATE DELTAS")
	fmt.Fprintln(w, strings.Repeat("-", 70))

	names := make([]string, len(r.Candidates))
	for i, cc := range r.Candidates {
		names[i] = cc.Candidate
	}
	width := columnWidth("Candidate", names)

	fmt.Fprintf(w, "  %s  %-9s %-9s %-9s %s\n",
		padRight("Candidate", width), "[A]", "[B]", "Delta", "Rank")
	for _, cc := range r.Candidates {
		scoreA := "n/a"
		if cc.InA {
			scoreA = fmt.Sprintf("%.4f", cc.ScoreA)
		}
		scoreB := "n/a"
		if cc.InB {
			scoreB = fmt.Sprintf("%.4f", cc.ScoreB)
		}

		delta := "n/a"
		rank := ""
		if cc.InA && cc.InB {
			icon := " "
			if cc.ScoreDelta > 0 {
				icon = "↑"
			} else if cc.ScoreDelta < 0 {
				icon = "↓"
			}
			delta = fmt.Sprintf("%s%+.4f", icon, cc.ScoreDelta)

			switch {
			case cc.RankMove > 0:
				rank = fmt.Sprintf("#%d -> #%d (up %d)", cc.RankA, cc.RankB, cc.RankMove)
			case cc.RankMove < 0:
				rank = fmt.Sprintf("#%d -> #%d (down %d)", cc.RankA, cc.RankB, -cc.RankMove)
			default:
				rank = fmt.Sprintf("#%d", cc.RankA)
			}
		}

		fmt.Fprintf(w, "  %s  %-9s %-9s %-9s %s\n",
			padRight(cc.Candidate, width), scoreA, scoreB, delta, rank)
	}
	fmt.Fprintln(w)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
