package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ChildVerdict is one weighted check result fed to the adaptive gate.
// Score is on a 0..100 scale. A non-positive or non-finite weight is
// treated as 1.0 downstream.
type ChildVerdict struct {
	Category string         `yaml:"category" json:"category"`
	Score    float64        `yaml:"score" json:"score"`
	Weight   float64        `yaml:"weight" json:"weight"`
	Passed   bool           `yaml:"passed" json:"passed"`
	Detail   *VerdictDetail `yaml:"detail,omitempty" json:"detail,omitempty"`
}

// VerdictDetail is the structured block the distinguished category
// supplies; the gate derives its priority from it.
type VerdictDetail struct {
	Fit      float64 `yaml:"fit" json:"fit"`
	Coverage float64 `yaml:"coverage" json:"coverage"`
	Conflict float64 `yaml:"conflict,omitempty" json:"conflict,omitempty"`
}

// GateResult is the adaptive gate's verdict plus everything needed to
// explain it.
type GateResult struct {
	Verdict          bool               `json:"verdict"`
	Mode             string             `json:"mode"`
	Priority         float64            `json:"priority"`
	Threshold        float64            `json:"threshold"`
	WeightedScore    float64            `json:"weighted_score"`
	AllowedFailures  int                `json:"allowed_failures"`
	FailedRelaxable  []string           `json:"failed_relaxable,omitempty"`
	SevereFailure    bool               `json:"severe_failure"`
	MandatoryGate    bool               `json:"mandatory_gate"`
	StrictPassed     bool               `json:"strict_passed"`
	AdaptivePassed   bool               `json:"adaptive_passed"`
	EffectiveWeights map[string]float64 `json:"effective_weights,omitempty"`
}

// Gate evaluation modes.
const (
	GateModeStrict   = "strict"
	GateModeAdaptive = "adaptive"
)

// ChecksDocument is the on-disk form of a set of child verdicts.
type ChecksDocument struct {
	Name   string         `yaml:"name,omitempty" json:"name,omitempty"`
	Checks []ChildVerdict `yaml:"checks" json:"checks"`
}

// LoadChecks loads a checks document from a YAML file.
func LoadChecks(path string) (*ChecksDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc ChecksDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the document holds at least one check with a category.
func (d *ChecksDocument) Validate() error {
	if len(d.Checks) == 0 {
		return fmt.Errorf("checks document must contain at least one check")
	}
	for i, c := range d.Checks {
		if c.Category == "" {
			return fmt.Errorf("check %d is missing a category", i)
		}
	}
	return nil
}
