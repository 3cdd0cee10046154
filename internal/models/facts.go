package models

import (
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Facts is the snapshot of observed state an evaluation runs against.
// Values is the only required block; every other block is optional and
// its absence produces a zero signal rather than an error.
type Facts struct {
	Name          string                        `yaml:"name,omitempty" json:"name,omitempty"`
	Values        map[string]float64            `yaml:"values" json:"values"`
	Targets       map[string]float64            `yaml:"targets,omitempty" json:"targets,omitempty"`
	Strength      *StrengthFacts                `yaml:"strength,omitempty" json:"strength,omitempty"`
	Bridge        *BridgeFacts                  `yaml:"bridge,omitempty" json:"bridge,omitempty"`
	Concentration *ConcentrationFacts           `yaml:"concentration,omitempty" json:"concentration,omitempty"`
	Counters      map[string]map[string]float64 `yaml:"counters,omitempty" json:"counters,omitempty"`
}

// StrengthFacts carries the scalar posture index in [-1,1] plus the
// support/pressure magnitudes it was derived from.
type StrengthFacts struct {
	Index      float64                      `yaml:"index" json:"index"`
	Support    float64                      `yaml:"support" json:"support"`
	Pressure   float64                      `yaml:"pressure" json:"pressure"`
	Components map[string]StrengthComponent `yaml:"components,omitempty" json:"components,omitempty"`
}

// StrengthComponent breaks down how one candidate contributes to the
// overall posture.
type StrengthComponent struct {
	Supports float64 `yaml:"supports" json:"supports"`
	Drains   float64 `yaml:"drains" json:"drains"`
}

// BridgeFacts describes a mediating relationship between two dominant
// opposing categories.
type BridgeFacts struct {
	First     string  `yaml:"first" json:"first"`
	Second    string  `yaml:"second" json:"second"`
	Mediator  string  `yaml:"mediator" json:"mediator"`
	Intensity float64 `yaml:"intensity" json:"intensity"`
}

// ConcentrationFacts describes how strongly the observed values pile up
// on a single dominant category.
type ConcentrationFacts struct {
	Dominant  string  `yaml:"dominant" json:"dominant"`
	Share     float64 `yaml:"share" json:"share"`
	Secondary float64 `yaml:"secondary,omitempty" json:"secondary,omitempty"`
}

// LoadFacts loads a facts document from a YAML file and sanitizes it.
func LoadFacts(path string) (*Facts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f Facts
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	f.Sanitize()
	return &f, nil
}

// Sanitize replaces non-finite numbers with zero and clamps every field
// into its documented range. It never fails; malformed facts degrade to
// weaker signals instead of errors.
func (f *Facts) Sanitize() {
	if f == nil {
		return
	}
	for k, v := range f.Values {
		f.Values[k] = unitInterval(v)
	}
	for k, v := range f.Targets {
		f.Targets[k] = unitInterval(v)
	}
	if s := f.Strength; s != nil {
		s.Index = clampRange(finiteOr(s.Index, 0), -1, 1)
		s.Support = unitInterval(s.Support)
		s.Pressure = unitInterval(s.Pressure)
		for k, c := range s.Components {
			c.Supports = unitInterval(c.Supports)
			c.Drains = unitInterval(c.Drains)
			s.Components[k] = c
		}
	}
	if b := f.Bridge; b != nil {
		b.Intensity = unitInterval(b.Intensity)
	}
	if c := f.Concentration; c != nil {
		c.Share = unitInterval(c.Share)
		c.Secondary = unitInterval(c.Secondary)
	}
	for _, m := range f.Counters {
		for k, v := range m {
			m[k] = unitInterval(v)
		}
	}
}

// Candidates returns every candidate named anywhere in the facts, in a
// deterministic (sorted) order.
func (f *Facts) Candidates() []string {
	if f == nil {
		return nil
	}
	seen := map[string]bool{}
	for k := range f.Values {
		seen[k] = true
	}
	for k := range f.Counters {
		seen[k] = true
	}
	if f.Strength != nil {
		for k := range f.Strength.Components {
			seen[k] = true
		}
	}
	if f.Bridge != nil && f.Bridge.Mediator != "" {
		seen[f.Bridge.Mediator] = true
	}
	if f.Concentration != nil && f.Concentration.Dominant != "" {
		seen[f.Concentration.Dominant] = true
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

func unitInterval(v float64) float64 {
	return clampRange(finiteOr(v, 0), 0, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
