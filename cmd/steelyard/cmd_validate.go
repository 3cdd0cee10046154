package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steelyard-dev/steelyard/internal/validation"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file.yaml> [file.yaml ...]",
		Short: "Validate documents against their schemas",
		Long: `Validate policy, facts, and checks documents against their JSON
schemas.

The document kind is inferred from its top-level keys. Validation
reports every schema violation; the engine itself would still accept
these documents by falling back to defaults, so validate is the way to
catch typos before they silently turn into default values.`,
		Args: cobra.MinimumNArgs(1),
		RunE: validateCommandE,
	}

	return cmd
}

func validateCommandE(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	invalid := 0
	for _, path := range args {
		kind, errs, err := validation.ValidateFile(path)
		if err != nil {
			return fmt.Errorf("failed to validate %s: %w", path, err)
		}

		if len(errs) == 0 {
			fmt.Fprintf(out, "✓ %s (%s)\n", path, kind)
			continue
		}

		invalid++
		fmt.Fprintf(out, "✗ %s (%s)\n", path, kind)
		for _, e := range errs {
			fmt.Fprintf(out, "    • %s\n", e)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d document(s) failed validation", invalid, len(args))
	}

	fmt.Fprintf(out, "\n%d document(s) valid\n", len(args))
	return nil
}
