package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/steelyard-dev/steelyard/internal/outcome"
)

func resetCompareGlobals() {
	compareOutputFormat = "table"
}

func starterRecord() *models.Decision {
	d := sampleDecision("starter", "focus")
	return d
}

func revisedRecord() *models.Decision {
	d := sampleDecision("revised", "recovery")
	d.Ranking = []models.CandidateScore{
		{Candidate: "recovery", Score: 0.9, Rank: 1},
		{Candidate: "focus", Score: 0.4, Rank: 2},
	}
	d.Scores = map[string]float64{"recovery": 0.9, "focus": 0.4}
	return d
}

// ---------------------------------------------------------------------------
// Argument validation
// ---------------------------------------------------------------------------

func TestCompareCommand_RequiresExactlyTwoArgs(t *testing.T) {
	resetCompareGlobals()

	tests := []struct {
		name string
		args []string
	}{
		{"no args", []string{}},
		{"one arg", []string{"one.json"}},
		{"three args", []string{"one.json", "two.json", "three.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newCompareCommand()
			cmd.SetArgs(tt.args)
			err := cmd.Execute()
			assert.Error(t, err)
		})
	}
}

// ---------------------------------------------------------------------------
// Error handling
// ---------------------------------------------------------------------------

func TestCompareCommand_MissingFile(t *testing.T) {
	resetCompareGlobals()

	cmd := newCompareCommand()
	cmd.SetArgs([]string{"nonexistent1.json", "nonexistent2.json"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load")
}

func TestCompareCommand_InvalidJSON(t *testing.T) {
	resetCompareGlobals()

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{invalid"), 0o644))

	good := writeDecisionJSON(t, dir, "good.json", starterRecord())

	cmd := newCompareCommand()
	cmd.SetArgs([]string{good, bad})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load")
}

func TestCompareCommand_InvalidFormat(t *testing.T) {
	resetCompareGlobals()

	dir := t.TempDir()
	f1 := writeDecisionJSON(t, dir, "r1.json", starterRecord())
	f2 := writeDecisionJSON(t, dir, "r2.json", revisedRecord())

	cmd := newCompareCommand()
	cmd.SetArgs([]string{f1, f2, "--format", "xml"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

// ---------------------------------------------------------------------------
// Table output
// ---------------------------------------------------------------------------

func TestCompareCommand_TableOutput(t *testing.T) {
	resetCompareGlobals()

	dir := t.TempDir()
	f1 := writeDecisionJSON(t, dir, "r1.json", starterRecord())
	f2 := writeDecisionJSON(t, dir, "r2.json", revisedRecord())

	var buf bytes.Buffer
	cmd := newCompareCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{f1, f2})

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "COMPARISON REPORT")
	assert.Contains(t, out, "Best changed: focus -> recovery")
	assert.Contains(t, out, "PER-CANDIDATE DELTAS")
	assert.Contains(t, out, "focus")
	assert.Contains(t, out, "recovery")
}

// ---------------------------------------------------------------------------
// JSON output
// ---------------------------------------------------------------------------

func TestCompareCommand_JSONOutput(t *testing.T) {
	resetCompareGlobals()

	dir := t.TempDir()
	f1 := writeDecisionJSON(t, dir, "r1.json", starterRecord())
	f2 := writeDecisionJSON(t, dir, "r2.json", revisedRecord())

	var buf bytes.Buffer
	cmd := newCompareCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{f1, f2, "--format", "json"})

	require.NoError(t, cmd.Execute())

	var report comparisonReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, "starter", report.PolicyA)
	assert.Equal(t, "revised", report.PolicyB)
	assert.True(t, report.BestChanged)
	assert.Len(t, report.Candidates, 2)
}

// ---------------------------------------------------------------------------
// Compressed records
// ---------------------------------------------------------------------------

func TestCompareCommand_CompressedRecord(t *testing.T) {
	resetCompareGlobals()

	dir := t.TempDir()
	store, err := outcome.NewStore(filepath.Join(dir, "records"))
	require.NoError(t, err)
	compressed, err := store.Write(starterRecord())
	require.NoError(t, err)

	plain := writeDecisionJSON(t, dir, "r2.json", revisedRecord())

	var buf bytes.Buffer
	cmd := newCompareCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{compressed, plain})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Best changed: focus -> recovery")
}

// ---------------------------------------------------------------------------
// Report building logic
// ---------------------------------------------------------------------------

func TestBuildComparisonReport_Deltas(t *testing.T) {
	a := starterRecord()
	b := revisedRecord()

	report := buildComparisonReport("r1.json", "r2.json", a, b)

	assert.Equal(t, "r1.json", report.FileA)
	assert.Equal(t, "r2.json", report.FileB)
	assert.True(t, report.BestChanged)
	assert.InDelta(t, 0.55, report.MeanA, 1e-9)
	assert.InDelta(t, 0.65, report.MeanB, 1e-9)
	assert.InDelta(t, 0.25, report.StdDevA, 1e-9)
	assert.InDelta(t, 0.25, report.StdDevB, 1e-9)

	require.Len(t, report.Candidates, 2)

	// Candidates follow a's ranking order.
	focus := report.Candidates[0]
	assert.Equal(t, "focus", focus.Candidate)
	assert.InDelta(t, -0.4, focus.ScoreDelta, 1e-9)
	assert.Equal(t, -1, focus.RankMove)

	recovery := report.Candidates[1]
	assert.Equal(t, "recovery", recovery.Candidate)
	assert.InDelta(t, 0.6, recovery.ScoreDelta, 1e-9)
	assert.Equal(t, 1, recovery.RankMove)
}

func TestBuildComparisonReport_MissingCandidate(t *testing.T) {
	a := starterRecord()
	b := revisedRecord()
	b.Ranking = append(b.Ranking, models.CandidateScore{
		Candidate: "exploration", Score: 0.1, Rank: 3,
	})

	report := buildComparisonReport("r1.json", "r2.json", a, b)

	require.Len(t, report.Candidates, 3)
	extra := report.Candidates[2]
	assert.Equal(t, "exploration", extra.Candidate)
	assert.False(t, extra.InA)
	assert.True(t, extra.InB)
	assert.Zero(t, extra.ScoreDelta)
	assert.Zero(t, extra.RankMove)
}

func TestBuildComparisonReport_BestUnchanged(t *testing.T) {
	a := starterRecord()
	b := starterRecord()

	report := buildComparisonReport("r1.json", "r2.json", a, b)
	assert.False(t, report.BestChanged)
}

// ---------------------------------------------------------------------------
// Root command wiring
// ---------------------------------------------------------------------------

func TestRootCommand_HasCompareSubcommand(t *testing.T) {
	root := newRootCommand()
	found := false
	for _, c := range root.Commands() {
		if c.Name() == "compare" {
			found = true
			break
		}
	}
	assert.True(t, found, "root command should have 'compare' subcommand")
}

// ---------------------------------------------------------------------------
// Flag parsing
// ---------------------------------------------------------------------------

func TestCompareCommand_FormatFlagParsed(t *testing.T) {
	cmd := newCompareCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--format", "json"}))

	val, err := cmd.Flags().GetString("format")
	require.NoError(t, err)
	assert.Equal(t, "json", val)
}

func TestCompareCommand_ShortFormatFlag(t *testing.T) {
	cmd := newCompareCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-f", "json"}))

	val, err := cmd.Flags().GetString("format")
	require.NoError(t, err)
	assert.Equal(t, "json", val)
}
