package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_RequiresArgs(t *testing.T) {
	cmd := newValidateCommand()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	assert.Error(t, err)
}

func TestValidateCommand_AllValid(t *testing.T) {
	dir := t.TempDir()
	policyPath := writeTestFile(t, dir, "policy.yaml", starterPolicyYAML)
	factsPath := writeTestFile(t, dir, "facts.yaml", morningFactsYAML)

	var buf bytes.Buffer
	cmd := newValidateCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{policyPath, factsPath})

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "✓ "+policyPath+" (policy)")
	assert.Contains(t, out, "✓ "+factsPath+" (facts)")
	assert.Contains(t, out, "2 document(s) valid")
}

func TestValidateCommand_InvalidDocument(t *testing.T) {
	dir := t.TempDir()
	policyPath := writeTestFile(t, dir, "policy.yaml", starterPolicyYAML)
	badFactsPath := writeTestFile(t, dir, "facts.yaml", `name: week-31
values:
  growth: 1.4
strength:
  index: 2
`)

	var buf bytes.Buffer
	cmd := newValidateCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{policyPath, badFactsPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 document(s) failed validation")

	out := buf.String()
	assert.Contains(t, out, "✓ "+policyPath)
	assert.Contains(t, out, "✗ "+badFactsPath)
	assert.Contains(t, out, "•")
}

func TestValidateCommand_ChecksDocument(t *testing.T) {
	dir := t.TempDir()
	checksPath := writeTestFile(t, dir, "checks.yaml", passingChecksYAML)

	var buf bytes.Buffer
	cmd := newValidateCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{checksPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✓ "+checksPath+" (checks)")
}

func TestValidateCommand_MissingFile(t *testing.T) {
	cmd := newValidateCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"nonexistent.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to validate")
}

func TestRootCommand_HasValidateSubcommand(t *testing.T) {
	root := newRootCommand()
	found := false
	for _, c := range root.Commands() {
		if c.Name() == "validate" {
			found = true
			break
		}
	}
	assert.True(t, found, "root command should have 'validate' subcommand")
}
