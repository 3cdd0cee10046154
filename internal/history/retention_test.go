package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPruneByAge(t *testing.T) {
	h := openTest(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, h.Record(ctx, decisionAt("stale", now.AddDate(0, 0, -120))))
	require.NoError(t, h.Record(ctx, decisionAt("recent", now.AddDate(0, 0, -5))))

	p := NewPruner(h, &RetentionConfig{RetentionDays: 30})
	deleted, err := p.Prune(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	entries, err := h.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "recent", entries[0].Best)
}

func TestPruneByCount(t *testing.T) {
	h := openTest(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	for i, best := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, h.Record(ctx, decisionAt(best, base.Add(time.Duration(i)*time.Minute))))
	}

	p := NewPruner(h, &RetentionConfig{MaxRecords: 2})
	deleted, err := p.Prune(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), deleted)

	entries, err := h.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "e", entries[0].Best)
	require.Equal(t, "d", entries[1].Best)
}

func TestPruneDisabled(t *testing.T) {
	h := openTest(t)
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, decisionAt("keep", time.Now().UTC().AddDate(-1, 0, 0))))

	p := NewPruner(h, &RetentionConfig{})
	deleted, err := p.Prune(ctx)
	require.NoError(t, err)
	require.Zero(t, deleted)

	count, err := h.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	h := openTest(t)

	p := NewPruner(h, &RetentionConfig{Schedule: "not a cron line"})
	require.Error(t, p.Start(context.Background()))
}

func TestStartWithoutSchedule(t *testing.T) {
	h := openTest(t)

	p := NewPruner(h, &RetentionConfig{})
	require.NoError(t, p.Start(context.Background()))
	p.Stop()
}
