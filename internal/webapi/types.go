package webapi

import (
	"time"

	"github.com/steelyard-dev/steelyard/internal/models"
)

// DecisionSummary is the API response for a single decision in the list.
type DecisionSummary struct {
	ID          string    `json:"id"`
	Policy      string    `json:"policy,omitempty"`
	Facts       string    `json:"facts,omitempty"`
	Best        string    `json:"best"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// EvaluateRequest is the body of POST /api/evaluate.
type EvaluateRequest struct {
	Facts *models.Facts `json:"facts"`
}

// PolicyResponse describes the policy document the server evaluates
// against.
type PolicyResponse struct {
	Source string         `json:"source,omitempty"`
	Policy map[string]any `json:"policy"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
