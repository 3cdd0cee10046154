package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/steelyard-dev/steelyard/internal/reporting"
)

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// columnWidth returns the widest display width among header and values.
func columnWidth(header string, values []string) int {
	w := runewidth.StringWidth(header)
	for _, v := range values {
		if vw := runewidth.StringWidth(v); vw > w {
			w = vw
		}
	}
	return w
}

func printDecision(w io.Writer, d *models.Decision) {
	fmt.Fprintln(w, "="+strings.Repeat("=", 50))
	fmt.Fprintln(w, " DECISION")
	fmt.Fprintln(w, "="+strings.Repeat("=", 50))
	fmt.Fprintln(w)

	if d.PolicyName != "" {
		fmt.Fprintf(w, "Policy: %s\n", d.PolicyName)
	}
	if d.FactsName != "" {
		fmt.Fprintf(w, "Facts:  %s\n", d.FactsName)
	}
	best := d.Best
	if best == "" {
		best = "(none)"
	}
	fmt.Fprintf(w, "Best:   %s\n", best)
	fmt.Fprintln(w)

	if len(d.Ranking) == 0 {
		fmt.Fprintln(w, "No candidates were scored.")
		return
	}

	names := make([]string, len(d.Ranking))
	for i, cs := range d.Ranking {
		names[i] = cs.Candidate
	}
	width := columnWidth("Candidate", names)

	fmt.Fprintf(w, "  %s  %-7s  %s\n", padRight("Candidate", width), "Score", "Reading")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("-", width+22))
	for _, cs := range d.Ranking {
		marker := " "
		if cs.Candidate == d.Best {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s  %-7.3f  %s\n",
			marker, padRight(cs.Candidate, width), cs.Score, reporting.DescribeScore(cs.Score))
	}

	if len(d.Diagnostics.Signals) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Signal gating:")
		for _, s := range d.Diagnostics.Signals {
			fmt.Fprintf(w, "  %-14s raw=%.3f threshold=%.2f weight %.3f -> %.3f\n",
				s.Term, s.Raw, s.Threshold, s.WeightBefore, s.WeightAfter)
		}
	}

	if c := d.Diagnostics.Competition; c != nil && c.Winner != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Competition winner: %s\n", c.Winner)
	}
}

func printDecisionJSON(w io.Writer, d *models.Decision) error {
	data, err := marshalDecision(d)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func marshalDecision(d *models.Decision) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal decision: %w", err)
	}
	return append(data, '\n'), nil
}

// printBatchSummary renders one line per facts file with its decision.
func printBatchSummary(w io.Writer, files []string, decisions []*models.Decision) {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	bests := make([]string, len(decisions))
	for i, d := range decisions {
		bests[i] = d.Best
		if bests[i] == "" {
			bests[i] = "(none)"
		}
	}
	wFile := columnWidth("Facts", names)
	wBest := columnWidth("Best", bests)

	fmt.Fprintf(w, "%s  %s  %s\n", padRight("Facts", wFile), padRight("Best", wBest), "Score")
	fmt.Fprintln(w, strings.Repeat("-", wFile+wBest+11))
	for i, d := range decisions {
		score := 0.0
		if len(d.Ranking) > 0 {
			score = d.Ranking[0].Score
		}
		fmt.Fprintf(w, "%s  %s  %.3f\n",
			padRight(names[i], wFile), padRight(bests[i], wBest), score)
	}
}
