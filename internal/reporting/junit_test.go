package reporting

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerdicts() ([]models.ChildVerdict, models.GateResult) {
	checks := []models.ChildVerdict{
		{
			Category: "alignment", Score: 88, Weight: 2, Passed: true,
			Detail: &models.VerdictDetail{Fit: 0.9, Coverage: 0.8, Conflict: 0.1},
		},
		{Category: "soundness", Score: 72, Weight: 1.5, Passed: true},
		{Category: "style", Score: 52, Weight: 1, Passed: false},
	}
	result := models.GateResult{
		Verdict:         true,
		Mode:            models.GateModeAdaptive,
		Priority:        0.73,
		Threshold:       60,
		WeightedScore:   74.67,
		AllowedFailures: 1,
		FailedRelaxable: []string{"style"},
		MandatoryGate:   true,
	}
	return checks, result
}

func TestConvertToJUnit_Structure(t *testing.T) {
	checks, result := newTestVerdicts()
	suites := ConvertToJUnit("release-readiness", checks, result)

	assert.Equal(t, 3, suites.Tests)
	assert.Equal(t, 1, suites.Failures)
	assert.Equal(t, 0, suites.Errors)

	require.Len(t, suites.TestSuites, 1)
	suite := suites.TestSuites[0]

	assert.Equal(t, "release-readiness", suite.Name)
	assert.Equal(t, 3, suite.Tests)
	assert.Equal(t, 1, suite.Failures)
	assert.NotEmpty(t, suite.Timestamp)
	require.Len(t, suite.TestCases, 3)
}

func TestConvertToJUnit_PassedCheck(t *testing.T) {
	checks, result := newTestVerdicts()
	suites := ConvertToJUnit("release-readiness", checks, result)
	tc := suites.TestSuites[0].TestCases[0]

	assert.Equal(t, "alignment", tc.Name)
	assert.Equal(t, "release-readiness", tc.Classname)
	assert.Nil(t, tc.Failure)
	assert.Nil(t, tc.Error)
}

func TestConvertToJUnit_FailedCheck(t *testing.T) {
	checks, result := newTestVerdicts()
	suites := ConvertToJUnit("release-readiness", checks, result)
	tc := suites.TestSuites[0].TestCases[2]

	assert.Equal(t, "style", tc.Name)
	require.NotNil(t, tc.Failure)
	assert.Equal(t, "CheckFailure", tc.Failure.Type)
	assert.Contains(t, tc.Failure.Message, "score=52.00")
	assert.Contains(t, tc.Failure.Body, "weight=1.00")
}

func TestConvertToJUnit_FailedCheckWithDetail(t *testing.T) {
	checks := []models.ChildVerdict{
		{
			Category: "alignment", Score: 40, Weight: 2, Passed: false,
			Detail: &models.VerdictDetail{Fit: 0.3, Coverage: 0.4, Conflict: 0.2},
		},
	}
	suites := ConvertToJUnit("doc", checks, models.GateResult{Mode: models.GateModeStrict})
	tc := suites.TestSuites[0].TestCases[0]

	require.NotNil(t, tc.Failure)
	assert.Contains(t, tc.Failure.Body, "fit=0.30")
	assert.Contains(t, tc.Failure.Body, "coverage=0.40")
	assert.Contains(t, tc.Failure.Body, "conflict=0.20")
}

func TestConvertToJUnit_Properties(t *testing.T) {
	checks, result := newTestVerdicts()
	suites := ConvertToJUnit("release-readiness", checks, result)
	props := suites.TestSuites[0].Properties

	propMap := make(map[string]string)
	for _, p := range props {
		propMap[p.Name] = p.Value
	}

	assert.Equal(t, "adaptive", propMap["mode"])
	assert.Equal(t, "0.7300", propMap["priority"])
	assert.Equal(t, "60.00", propMap["threshold"])
	assert.Equal(t, "74.67", propMap["weighted_score"])
	assert.Equal(t, "pass", propMap["verdict"])
}

func TestConvertToJUnit_FailVerdictProperty(t *testing.T) {
	checks, result := newTestVerdicts()
	result.Verdict = false
	suites := ConvertToJUnit("release-readiness", checks, result)

	propMap := make(map[string]string)
	for _, p := range suites.TestSuites[0].Properties {
		propMap[p.Name] = p.Value
	}
	assert.Equal(t, "fail", propMap["verdict"])
}

func TestConvertToJUnit_NoChecks(t *testing.T) {
	suites := ConvertToJUnit("empty", nil, models.GateResult{Mode: models.GateModeStrict})

	assert.Equal(t, 0, suites.Tests)
	require.Len(t, suites.TestSuites, 1)
	assert.Empty(t, suites.TestSuites[0].TestCases)
}

func TestWriteJUnitXML_ValidXML(t *testing.T) {
	checks, result := newTestVerdicts()
	dir := t.TempDir()
	path := filepath.Join(dir, "results.xml")

	err := WriteJUnitXML("release-readiness", checks, result, path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.True(t, strings.HasPrefix(content, "<?xml"))

	var parsed JUnitTestSuites
	err = xml.Unmarshal(data, &parsed)
	require.NoError(t, err)
	assert.Equal(t, 3, parsed.Tests)
	assert.Equal(t, 1, parsed.Failures)
	require.Len(t, parsed.TestSuites, 1)
	assert.Len(t, parsed.TestSuites[0].TestCases, 3)
}

func TestWriteJUnitXML_FailureDetails(t *testing.T) {
	checks, result := newTestVerdicts()
	dir := t.TempDir()
	path := filepath.Join(dir, "results.xml")

	err := WriteJUnitXML("release-readiness", checks, result, path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "CheckFailure")
	assert.Contains(t, content, "style")
	assert.Contains(t, content, "weighted_score")
}
