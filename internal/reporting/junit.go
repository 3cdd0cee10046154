package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/steelyard-dev/steelyard/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one verified checks document.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one weighted check.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents a check that did not pass.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents an unexpected error while verifying.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a check as skipped.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit renders a gate verdict as JUnit XML so CI systems can
// surface per-check failures without understanding gate semantics.
func ConvertToJUnit(name string, checks []models.ChildVerdict, result models.GateResult) *JUnitTestSuites {
	verdict := "fail"
	if result.Verdict {
		verdict = "pass"
	}

	suite := JUnitTestSuite{
		Name:      name,
		Tests:     len(checks),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "mode", Value: result.Mode},
			{Name: "priority", Value: fmt.Sprintf("%.4f", result.Priority)},
			{Name: "threshold", Value: fmt.Sprintf("%.2f", result.Threshold)},
			{Name: "weighted_score", Value: fmt.Sprintf("%.2f", result.WeightedScore)},
			{Name: "verdict", Value: verdict},
		},
	}

	for _, c := range checks {
		tc := convertCheck(name, c)
		if tc.Failure != nil {
			suite.Failures++
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		TestSuites: []JUnitTestSuite{suite},
	}
}

func convertCheck(doc string, c models.ChildVerdict) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      c.Category,
		Classname: doc,
	}

	if !c.Passed {
		body := fmt.Sprintf("weight=%.2f", c.Weight)
		if c.Detail != nil {
			body = fmt.Sprintf("weight=%.2f fit=%.2f coverage=%.2f conflict=%.2f",
				c.Weight, c.Detail.Fit, c.Detail.Coverage, c.Detail.Conflict)
		}
		tc.Failure = &JUnitFailure{
			Message: fmt.Sprintf("%s: score=%.2f", c.Category, c.Score),
			Type:    "CheckFailure",
			Body:    body,
		}
	}

	return tc
}

// WriteJUnitXML writes a gate verdict as JUnit XML to the specified path.
func WriteJUnitXML(name string, checks []models.ChildVerdict, result models.GateResult, path string) error {
	suites := ConvertToJUnit(name, checks, result)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
