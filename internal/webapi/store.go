package webapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/steelyard-dev/steelyard/internal/history"
	"github.com/steelyard-dev/steelyard/internal/models"
)

// ErrDecisionNotFound is returned when a decision ID does not match any
// stored decision.
var ErrDecisionNotFound = errors.New("decision not found")

// DecisionStore provides read access to recorded decisions.
type DecisionStore interface {
	// ListDecisions returns summaries, newest first. A non-positive
	// limit falls back to the store default.
	ListDecisions(ctx context.Context, limit int) ([]DecisionSummary, error)
	// GetDecision returns a single decision with full diagnostics.
	GetDecision(ctx context.Context, id string) (*models.Decision, error)
}

// Evaluator runs facts against the currently loaded policy document.
type Evaluator interface {
	// EvaluateFacts scores the facts and records the decision.
	EvaluateFacts(ctx context.Context, facts *models.Facts) (*models.Decision, error)
	// PolicyDocument returns the source path and raw content of the
	// policy revision currently in use.
	PolicyDocument() (source string, raw map[string]any)
}

// HistoryStore serves API reads from the SQLite history log.
type HistoryStore struct {
	history *history.History
}

// NewHistoryStore creates a HistoryStore backed by h.
func NewHistoryStore(h *history.History) *HistoryStore {
	return &HistoryStore{history: h}
}

// ListDecisions returns summaries of recorded decisions, newest first.
func (s *HistoryStore) ListDecisions(ctx context.Context, limit int) ([]DecisionSummary, error) {
	entries, err := s.history.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]DecisionSummary, 0, len(entries))
	for _, e := range entries {
		summaries = append(summaries, DecisionSummary{
			ID:          e.ID,
			Policy:      e.PolicyName,
			Facts:       e.FactsName,
			Best:        e.Best,
			EvaluatedAt: e.EvaluatedAt,
		})
	}
	return summaries, nil
}

// GetDecision returns a single recorded decision by ID.
func (s *HistoryStore) GetDecision(ctx context.Context, id string) (*models.Decision, error) {
	d, err := s.history.Get(ctx, id)
	if errors.Is(err, history.ErrNotFound) {
		return nil, fmt.Errorf("decision %s: %w", id, ErrDecisionNotFound)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Ensure HistoryStore satisfies DecisionStore.
var _ DecisionStore = (*HistoryStore)(nil)
