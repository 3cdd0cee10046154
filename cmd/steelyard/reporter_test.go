package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steelyard-dev/steelyard/internal/models"
)

func TestPadRight(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		width int
		want  string
	}{
		{"pads short string", "ab", 5, "ab   "},
		{"exact width", "abcde", 5, "abcde"},
		{"wider than width", "abcdef", 5, "abcdef"},
		{"empty string", "", 3, "   "},
		{"wide runes", "日本", 4, "日本"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, padRight(tt.s, tt.width))
		})
	}
}

func TestColumnWidth(t *testing.T) {
	assert.Equal(t, 9, columnWidth("Candidate", []string{"focus", "recovery"}))
	assert.Equal(t, 13, columnWidth("Candidate", []string{"consolidation"}))
	assert.Equal(t, 4, columnWidth("Best", nil))
}

func TestPrintDecision(t *testing.T) {
	d := sampleDecision("starter", "focus")
	d.Diagnostics.Signals = []models.SignalTrace{
		{Term: "deficiency", Raw: 0.8, Threshold: 0.6, Factor: 0.5, WeightBefore: 1.0, WeightAfter: 1.5},
	}
	d.Diagnostics.Competition = &models.CompetitionTrace{Winner: "deficiency"}

	var buf bytes.Buffer
	printDecision(&buf, d)

	out := buf.String()
	assert.Contains(t, out, "DECISION")
	assert.Contains(t, out, "Policy: starter")
	assert.Contains(t, out, "Best:   focus")

	// The winning candidate's row carries the marker.
	var markedLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "* ") {
			markedLine = line
			break
		}
	}
	require.NotEmpty(t, markedLine, "expected a marked best row")
	assert.Contains(t, markedLine, "focus")
	assert.Contains(t, markedLine, "0.800")

	assert.Contains(t, out, "Signal gating:")
	assert.Contains(t, out, "raw=0.800 threshold=0.60 weight 1.000 -> 1.500")
	assert.Contains(t, out, "Competition winner: deficiency")
}

func TestPrintDecision_NoCandidates(t *testing.T) {
	d := &models.Decision{PolicyName: "empty"}

	var buf bytes.Buffer
	printDecision(&buf, d)

	out := buf.String()
	assert.Contains(t, out, "Best:   (none)")
	assert.Contains(t, out, "No candidates were scored.")
}

func TestMarshalDecision(t *testing.T) {
	data, err := marshalDecision(sampleDecision("starter", "focus"))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(string(data), "\n"), "expected trailing newline")
	assert.Contains(t, string(data), `"best": "focus"`)
}

func TestPrintBatchSummary(t *testing.T) {
	files := []string{"/tmp/facts/monday.yaml", "/tmp/facts/tuesday.yaml"}
	decisions := []*models.Decision{
		sampleDecision("starter", "focus"),
		{PolicyName: "starter"},
	}

	var buf bytes.Buffer
	printBatchSummary(&buf, files, decisions)

	out := buf.String()
	assert.Contains(t, out, "monday.yaml")
	assert.Contains(t, out, "tuesday.yaml")
	assert.NotContains(t, out, "/tmp/facts")
	assert.Contains(t, out, "focus")
	assert.Contains(t, out, "(none)")
	assert.Contains(t, out, "0.800")
	assert.Contains(t, out, "0.000")
}
