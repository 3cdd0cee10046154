package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/steelyard-dev/steelyard/internal/models"
)

func openTest(t *testing.T) *History {
	t.Helper()
	h, err := Open(DefaultConfig(filepath.Join(t.TempDir(), "history.db")))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func decisionAt(best string, at time.Time) *models.Decision {
	return &models.Decision{
		PolicyName:  "allocation",
		FactsName:   "week-31",
		Best:        best,
		Scores:      map[string]float64{best: 0.9},
		EvaluatedAt: at,
	}
}

func TestRecordAndGet(t *testing.T) {
	h := openTest(t)
	ctx := context.Background()

	d := decisionAt("growth", time.Time{})
	require.NoError(t, h.Record(ctx, d))
	require.NotEmpty(t, d.ID, "record assigns an ID")
	require.False(t, d.EvaluatedAt.IsZero(), "record stamps the decision")

	got, err := h.Get(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, "growth", got.Best)
	require.Equal(t, d.Scores, got.Scores)
	require.Equal(t, d.ID, got.ID)
}

func TestGetUnknownID(t *testing.T) {
	h := openTest(t)

	_, err := h.Get(context.Background(), "no-such-id")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRecordReplacesExistingID(t *testing.T) {
	h := openTest(t)
	ctx := context.Background()

	d := decisionAt("growth", time.Now().UTC())
	require.NoError(t, h.Record(ctx, d))

	d.Best = "defense"
	require.NoError(t, h.Record(ctx, d))

	got, err := h.Get(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, "defense", got.Best)

	count, err := h.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestListNewestFirst(t *testing.T) {
	h := openTest(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	for i, best := range []string{"growth", "defense", "tempo"} {
		d := decisionAt(best, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, h.Record(ctx, d))
	}

	entries, err := h.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "tempo", entries[0].Best)
	require.Equal(t, "defense", entries[1].Best)
	require.Equal(t, "growth", entries[2].Best)
	require.True(t, entries[0].EvaluatedAt.After(entries[2].EvaluatedAt))

	limited, err := h.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, "tempo", limited[0].Best)
}

func TestListEmpty(t *testing.T) {
	h := openTest(t)

	entries, err := h.List(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, entries)
	require.NotNil(t, entries, "empty history lists as an empty slice")
}
