package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/steelyard-dev/steelyard/internal/policy"
)

func fullSpec() *PolicySpec {
	return &PolicySpec{
		Name:              "daily-planner",
		Candidates:        []string{"focus", "recovery", "growth"},
		LeadTerm:          "deficiency",
		EnableUrgency:     true,
		EnableCompetition: true,
		TieBreak:          []string{"focus", "recovery", "growth"},
	}
}

func TestGeneratePolicyYAML_FullSpec(t *testing.T) {
	result, err := GeneratePolicyYAML(fullSpec())
	require.NoError(t, err)

	assert.Contains(t, result, "name: daily-planner")
	assert.Contains(t, result, "deficiency: 1.5")
	assert.Contains(t, result, "preference: 1.0")
	assert.Contains(t, result, "control: 1.0")
	assert.Contains(t, result, "urgency:")
	assert.Contains(t, result, "threshold: 0.6")
	assert.Contains(t, result, "competition:")
	assert.Contains(t, result, "methods: [preference, control]")
	assert.Contains(t, result, "tie_break:")
	assert.Contains(t, result, "- focus")
}

func TestGeneratePolicyYAML_Minimal(t *testing.T) {
	spec := &PolicySpec{
		Name:       "lean",
		Candidates: []string{"a"},
		LeadTerm:   "preference",
	}

	result, err := GeneratePolicyYAML(spec)
	require.NoError(t, err)

	assert.Contains(t, result, "name: lean")
	assert.Contains(t, result, "preference: 1.5")
	assert.NotContains(t, result, "gating:")
	assert.NotContains(t, result, "tie_break:")
}

func TestGeneratedPolicyCompiles(t *testing.T) {
	result, err := GeneratePolicyYAML(fullSpec())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(result), &raw))

	compiled := policy.Compile(raw)
	assert.Equal(t, "daily-planner", compiled.Name)
	assert.InDelta(t, 1.5, compiled.TermWeights["deficiency"], 1e-9)
	assert.InDelta(t, 1.0, compiled.TermWeights["preference"], 1e-9)
	require.NotNil(t, compiled.Gating.Urgency)
	assert.InDelta(t, 0.6, compiled.Gating.Urgency.Threshold, 1e-9)
	assert.Equal(t, []string{"preference", "control"}, compiled.Gating.Competition.Methods)
	assert.Equal(t, []string{"focus", "recovery", "growth"}, compiled.TieBreakOrder)
}

func TestGenerateFactsYAML(t *testing.T) {
	result, err := GenerateFactsYAML(fullSpec())
	require.NoError(t, err)

	var facts models.Facts
	require.NoError(t, yaml.Unmarshal([]byte(result), &facts))

	assert.Equal(t, "daily-planner-example", facts.Name)
	require.Len(t, facts.Values, 3)
	assert.InDelta(t, 0.5, facts.Values["focus"], 1e-9)
	assert.InDelta(t, 0.5, facts.Values["growth"], 1e-9)
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid kebab", "daily-planner", false},
		{"empty", "", true},
		{"parent traversal", "..", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"single", "hello", []string{"hello"}},
		{"multiple", "a, b, c", []string{"a", "b", "c"}},
		{"with blanks", "a,, b, ,c", []string{"a", "b", "c"}},
		{"whitespace only", "  ,  ,  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitAndTrim(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}
