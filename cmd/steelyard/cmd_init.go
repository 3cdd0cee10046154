package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/steelyard-dev/steelyard/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var interactive bool
	var name string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Scaffold a starter policy and facts file",
		Long: `Scaffold a starter decision policy and an example facts snapshot.

Creates <name>.yaml with a commented starter policy and facts/example.yaml
with neutral signal values for each candidate.

Use --interactive to run a guided wizard that asks for the policy name,
candidates, and the signals to enable.

If no directory is specified, the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initCommandE(cmd, args, interactive, name)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run the guided policy wizard")
	cmd.Flags().StringVar(&name, "name", "my-policy", "Policy name for the generated files")

	return cmd
}

func initCommandE(cmd *cobra.Command, args []string, interactive bool, name string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	spec := &wizard.PolicySpec{
		Name:       name,
		Candidates: []string{"focus", "recovery", "exploration"},
		LeadTerm:   "deficiency",
		TieBreak:   []string{"focus", "recovery", "exploration"},
	}

	if interactive {
		var err error
		spec, err = wizard.RunPolicyWizard(cmd.InOrStdin(), cmd.OutOrStdout(), name)
		if err != nil {
			return fmt.Errorf("wizard failed: %w", err)
		}
	} else if err := wizard.ValidateName(name); err != nil {
		return err
	}

	policyYAML, err := wizard.GeneratePolicyYAML(spec)
	if err != nil {
		return fmt.Errorf("failed to generate policy: %w", err)
	}
	factsYAML, err := wizard.GenerateFactsYAML(spec)
	if err != nil {
		return fmt.Errorf("failed to generate facts: %w", err)
	}

	factsDir := filepath.Join(dir, "facts")
	if err := os.MkdirAll(factsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create facts directory: %w", err)
	}

	policyPath := filepath.Join(dir, spec.Name+".yaml")
	if err := os.WriteFile(policyPath, []byte(policyYAML), 0o644); err != nil {
		return fmt.Errorf("failed to write policy: %w", err)
	}

	factsPath := filepath.Join(factsDir, "example.yaml")
	if err := os.WriteFile(factsPath, []byte(factsYAML), 0o644); err != nil {
		return fmt.Errorf("failed to write facts: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Initialized decision suite:")        //nolint:errcheck
	fmt.Fprintf(out, "  %s\n", policyPath)                  //nolint:errcheck
	fmt.Fprintf(out, "  %s\n", factsPath)                   //nolint:errcheck
	fmt.Fprintln(out)                                       //nolint:errcheck
	fmt.Fprintf(out, "Try: steelyard evaluate -p %s -f %s\n", policyPath, factsPath) //nolint:errcheck

	return nil
}
