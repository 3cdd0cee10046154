package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/steelyard-dev/steelyard/internal/engine"
	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/steelyard-dev/steelyard/internal/outcome"
	"github.com/steelyard-dev/steelyard/internal/policy"
	"github.com/steelyard-dev/steelyard/internal/reporting"
)

var (
	evalPolicyPath string
	evalFactsPath  string
	evalFactsDir   string
	evalOutputPath string
	evalFormat     string
	evalExplain    bool
	evalWorkers    int
)

func newEvaluateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate facts against a decision policy",
		Long: `Evaluate a facts snapshot against a decision policy and print the
ranked decision.

The policy is a plain YAML document; every field is optional and
unusable values fall back to defaults, so evaluation never fails on a
sloppy policy. Facts are sanitized the same way: non-finite or
out-of-range values degrade to weaker signals instead of errors.

With --all, every facts file in a directory is evaluated concurrently
and a one-line summary is printed per file.`,
		RunE: evaluateCommandE,
	}

	cmd.Flags().StringVarP(&evalPolicyPath, "policy", "p", "", "Policy YAML file (required)")
	cmd.Flags().StringVarP(&evalFactsPath, "facts", "f", "", "Facts YAML file")
	cmd.Flags().StringVar(&evalFactsDir, "all", "", "Evaluate every facts file in this directory")
	cmd.Flags().StringVarP(&evalOutputPath, "output", "o", "", "Save the decision: a .json file, or a records directory for compressed records")
	cmd.Flags().StringVar(&evalFormat, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&evalExplain, "explain", false, "Print a plain-language interpretation of the decision")
	cmd.Flags().IntVar(&evalWorkers, "workers", 4, "Concurrent evaluations with --all")

	return cmd
}

func evaluateCommandE(cmd *cobra.Command, _ []string) error {
	if evalPolicyPath == "" {
		return fmt.Errorf("--policy is required")
	}
	if evalFormat != "text" && evalFormat != "json" {
		return fmt.Errorf("unknown output format: %s (supported: text, json)", evalFormat)
	}
	if (evalFactsPath == "") == (evalFactsDir == "") {
		return fmt.Errorf("exactly one of --facts or --all must be given")
	}

	doc, err := policy.LoadDocument(evalPolicyPath)
	if err != nil {
		return fmt.Errorf("failed to load policy: %w", err)
	}
	eval := engine.New()

	if evalFactsDir != "" {
		return evaluateAll(cmd, eval, doc)
	}

	facts, err := models.LoadFacts(evalFactsPath)
	if err != nil {
		return fmt.Errorf("failed to load facts: %w", err)
	}

	decision := eval.Evaluate(doc, facts)

	out := cmd.OutOrStdout()
	switch evalFormat {
	case "json":
		if err := printDecisionJSON(out, decision); err != nil {
			return err
		}
	default:
		printDecision(out, decision)
		if evalExplain {
			fmt.Fprintln(out)
			fmt.Fprint(out, reporting.FormatDecisionSummary(decision))
		}
	}

	if evalOutputPath != "" {
		path, err := saveDecision(decision, evalOutputPath)
		if err != nil {
			return fmt.Errorf("failed to save output: %w", err)
		}
		fmt.Fprintf(out, "\nDecision saved to: %s\n", path)
	}

	return nil
}

// evaluateAll runs the policy over every YAML facts file in a directory.
// The shared policy handle compiles once; evaluations run concurrently.
func evaluateAll(cmd *cobra.Command, eval *engine.Evaluator, doc *policy.Document) error {
	files, err := collectFactsFiles(evalFactsDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no facts files found in %s", evalFactsDir)
	}

	workers := evalWorkers
	if workers <= 0 {
		workers = 4
	}

	decisions := make([]*models.Decision, len(files))
	eg, _ := errgroup.WithContext(cmd.Context())
	eg.SetLimit(workers)
	for i, path := range files {
		eg.Go(func() error {
			facts, err := models.LoadFacts(path)
			if err != nil {
				return fmt.Errorf("failed to load facts %s: %w", path, err)
			}
			decisions[i] = eval.Evaluate(doc, facts)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printBatchSummary(out, files, decisions)

	if evalOutputPath != "" {
		store, err := outcome.NewStore(evalOutputPath)
		if err != nil {
			return fmt.Errorf("failed to open records directory: %w", err)
		}
		for _, d := range decisions {
			if _, err := store.Write(d); err != nil {
				return fmt.Errorf("failed to save output: %w", err)
			}
		}
		fmt.Fprintf(out, "\n%d record(s) saved to: %s\n", len(decisions), store.Dir())
	}

	return nil
}

// collectFactsFiles returns the YAML files in dir, sorted by name.
func collectFactsFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read facts directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// saveDecision writes a decision either as plain JSON (paths ending in
// .json) or as a compressed record in a records directory.
func saveDecision(d *models.Decision, path string) (string, error) {
	if strings.HasSuffix(path, ".json") {
		data, err := marshalDecision(d)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", err
		}
		return path, nil
	}

	store, err := outcome.NewStore(path)
	if err != nil {
		return "", err
	}
	return store.Write(d)
}
