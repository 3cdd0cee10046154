package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steelyard-dev/steelyard/internal/gate"
	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/steelyard-dev/steelyard/internal/policy"
	"github.com/steelyard-dev/steelyard/internal/reporting"
)

var (
	verifyPolicyPath string
	verifyChecksPath string
	verifyJUnitPath  string
	verifyFormat     string
)

func newVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Run the adaptive gate over a checks document",
		Long: `Run the adaptive gate over a document of weighted check results.

The gate starts strict and relaxes only when the distinguished check
reports high enough priority. Exit code 1 means the checks ran but the
gate rejected them; exit code 2 means the inputs could not be read.

The gate section of a policy file configures thresholds and category
roles; without --policy the built-in defaults apply.`,
		RunE: verifyCommandE,
	}

	cmd.Flags().StringVarP(&verifyPolicyPath, "policy", "p", "", "Policy YAML file supplying the gate section (defaults apply when omitted)")
	cmd.Flags().StringVarP(&verifyChecksPath, "checks", "c", "", "Checks YAML file (required)")
	cmd.Flags().StringVar(&verifyJUnitPath, "junit", "", "Write the verdict as JUnit XML to this path")
	cmd.Flags().StringVar(&verifyFormat, "format", "text", "Output format: text or json")

	return cmd
}

func verifyCommandE(cmd *cobra.Command, _ []string) error {
	if verifyChecksPath == "" {
		return fmt.Errorf("--checks is required")
	}
	if verifyFormat != "text" && verifyFormat != "json" {
		return fmt.Errorf("unknown output format: %s (supported: text, json)", verifyFormat)
	}

	var raw map[string]any
	if verifyPolicyPath != "" {
		doc, err := policy.LoadDocument(verifyPolicyPath)
		if err != nil {
			return fmt.Errorf("failed to load policy: %w", err)
		}
		raw = doc.Raw()
	}
	pol := policy.Compile(raw)

	checks, err := models.LoadChecks(verifyChecksPath)
	if err != nil {
		return fmt.Errorf("failed to load checks: %w", err)
	}

	result := gate.New(pol.Gate).Evaluate(checks.Checks)

	out := cmd.OutOrStdout()
	switch verifyFormat {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal gate result: %w", err)
		}
		fmt.Fprintln(out, string(data))
	default:
		fmt.Fprint(out, reporting.FormatGateSummary(result))
	}

	if verifyJUnitPath != "" {
		name := checks.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(verifyChecksPath), filepath.Ext(verifyChecksPath))
		}
		if err := reporting.WriteJUnitXML(name, checks.Checks, result, verifyJUnitPath); err != nil {
			return fmt.Errorf("failed to write JUnit XML: %w", err)
		}
		fmt.Fprintf(out, "JUnit results saved to: %s\n", verifyJUnitPath)
	}

	if !result.Verdict {
		return &GateFailureError{
			Message: fmt.Sprintf("gate failed in %s mode: weighted score %.2f against threshold %.2f",
				result.Mode, result.WeightedScore, result.Threshold),
		}
	}

	return nil
}
