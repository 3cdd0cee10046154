package models

import "time"

// Decision is the full output of one engine evaluation: the chosen
// candidate, the ranking behind it, and enough diagnostics for a report
// layer to explain the outcome without re-deriving the math.
type Decision struct {
	ID          string             `json:"id,omitempty"`
	PolicyName  string             `json:"policy_name,omitempty"`
	FactsName   string             `json:"facts_name,omitempty"`
	Best        string             `json:"best"`
	Ranking     []CandidateScore   `json:"ranking"`
	Scores      map[string]float64 `json:"scores"`
	Diagnostics Diagnostics        `json:"diagnostics"`
	EvaluatedAt time.Time          `json:"evaluated_at,omitempty"`
}

// CandidateScore is one entry of the ranking. Rank is 1-based.
type CandidateScore struct {
	Candidate string  `json:"candidate"`
	Score     float64 `json:"score"`
	Rank      int     `json:"rank"`
}

// Diagnostics explains how the effective weights and final scores came
// to be. It is advisory output; nothing in it is ever an error.
type Diagnostics struct {
	Signals     []SignalTrace     `json:"signals,omitempty"`
	Competition *CompetitionTrace `json:"competition,omitempty"`
	Rules       *RuleTrace        `json:"rules,omitempty"`
}

// SignalTrace records one term's raw magnitude and what gating did to
// its weight.
type SignalTrace struct {
	Term         string  `json:"term"`
	Raw          float64 `json:"raw"`
	Threshold    float64 `json:"threshold"`
	Factor       float64 `json:"factor"`
	WeightBefore float64 `json:"weight_before"`
	WeightAfter  float64 `json:"weight_after"`
}

// CompetitionTrace records the share allocation among competing terms.
type CompetitionTrace struct {
	Terms       []string           `json:"terms"`
	Shares      map[string]float64 `json:"shares"`
	Multipliers map[string]float64 `json:"multipliers"`
	Winner      string             `json:"winner"`
	TotalBefore float64            `json:"total_before"`
	TotalAfter  float64            `json:"total_after"`
}

// RuleTrace records what the rule-adjustment pass did. Err holds a
// strategy failure; base scores stand when it is set.
type RuleTrace struct {
	Matches          []RuleMatch        `json:"matches,omitempty"`
	AssertionsFailed []AssertionFailure `json:"assertions_failed,omitempty"`
	Err              string             `json:"error,omitempty"`
}

// RuleMatch describes one rule that fired.
type RuleMatch struct {
	RuleID    string  `json:"rule_id"`
	Candidate string  `json:"candidate,omitempty"`
	Op        string  `json:"op,omitempty"`
	Value     float64 `json:"value,omitempty"`
	Explain   string  `json:"explain,omitempty"`
}

// AssertionFailure describes one rule assertion that did not hold.
// Failed assertions are diagnostics, never errors.
type AssertionFailure struct {
	RuleID  string `json:"rule_id"`
	Explain string `json:"explain,omitempty"`
}
