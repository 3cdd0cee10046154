package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/steelyard-dev/steelyard/internal/outcome"
	"github.com/steelyard-dev/steelyard/internal/reporting"
)

var reportOutputPath string

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <records...>",
		Short: "Render stored decision records as a markdown report",
		Long: `Render decision records as a single markdown report.

Arguments may be records directories (as written by evaluate --all) or
individual record files, compressed or plain JSON. The generated
document is checked before it is written: it must carry a top-level
heading and every table-of-contents link must resolve to a section.`,
		Args: cobra.MinimumNArgs(1),
		RunE: reportCommandE,
	}

	cmd.Flags().StringVarP(&reportOutputPath, "output", "o", "report.md", "Output markdown file")

	return cmd
}

func reportCommandE(cmd *cobra.Command, args []string) error {
	var decisions []*models.Decision
	for _, arg := range args {
		ds, err := loadRecords(arg)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", arg, err)
		}
		decisions = append(decisions, ds...)
	}
	if len(decisions) == 0 {
		return fmt.Errorf("no decision records found")
	}

	report := reporting.BuildMarkdown(decisions)
	if err := reporting.CheckStructure([]byte(report)); err != nil {
		return fmt.Errorf("generated report failed its structure check: %w", err)
	}

	if err := os.WriteFile(reportOutputPath, []byte(report), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Report saved to: %s (%d decision(s))\n",
		reportOutputPath, len(decisions))
	return nil
}

// loadRecords loads decisions from a records directory or a single file.
func loadRecords(path string) ([]*models.Decision, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		store, err := outcome.NewStore(path)
		if err != nil {
			return nil, err
		}
		return store.List()
	}

	d, err := loadDecisionFile(path)
	if err != nil {
		return nil, err
	}
	return []*models.Decision{d}, nil
}
