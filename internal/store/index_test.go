package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/burnline/internal/model"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	x, err := Open(filepath.Join(t.TempDir(), "nested", "usage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = x.Close() })
	return x
}

func rec(id string, cost float64, updated time.Time) model.SessionCostRecord {
	return model.SessionCostRecord{
		SessionID:      id,
		ProjectPath:    "/work/app",
		TotalCostUSD:   cost,
		InputTokens:    100,
		OutputTokens:   10,
		StartTime:      updated.Add(-time.Hour),
		LastUpdateTime: updated,
	}
}

func TestUpsertAndList(t *testing.T) {
	x := openTestIndex(t)
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	a := rec("a", 0.05, now.Add(-2*time.Hour))
	a.Model = &model.ModelIdentity{ID: "claude-opus-4-5", DisplayName: "Opus"}
	b := rec("b", 0.08, now)
	b.ParentSessionID = "a"
	b.CostEstimated = true

	require.NoError(t, x.Upsert("work-app", a, FileInfo{MtimeNs: 1, SizeBytes: 2}))
	require.NoError(t, x.Upsert("work-app", b, FileInfo{}))
	require.NoError(t, x.Upsert("other", rec("c", 1.0, now.Add(-time.Hour)), FileInfo{}))

	got, err := x.ListProject("work-app", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Record.SessionID, "newest first")
	assert.Equal(t, "a", got[0].Record.ParentSessionID)
	assert.True(t, got[0].Record.CostEstimated)
	assert.True(t, got[0].Record.LastUpdateTime.Equal(now))
	require.NotNil(t, got[1].Record.Model)
	assert.Equal(t, "Opus", got[1].Record.Model.DisplayName)

	all, err := x.ListAll(2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].Record.SessionID)
	assert.Equal(t, "c", all[1].Record.SessionID)

	tracked, err := x.Tracked("work-app")
	require.NoError(t, err)
	assert.Equal(t, FileInfo{MtimeNs: 1, SizeBytes: 2}, tracked["a"])
}

func TestUpsertReplaces(t *testing.T) {
	x := openTestIndex(t)
	now := time.Now().UTC()
	require.NoError(t, x.Upsert("p", rec("a", 0.1, now), FileInfo{}))
	require.NoError(t, x.Upsert("p", rec("a", 0.3, now), FileInfo{}))

	n, err := x.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := x.ListProject("p", 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, got[0].Record.TotalCostUSD, 1e-9)
}

func TestDelete(t *testing.T) {
	x := openTestIndex(t)
	now := time.Now().UTC()
	require.NoError(t, x.Upsert("p", rec("a", 0.1, now), FileInfo{}))
	require.NoError(t, x.Upsert("q", rec("a", 0.2, now), FileInfo{}))

	require.NoError(t, x.Delete("p", "a"))
	require.NoError(t, x.Delete("p", "missing"))

	ids, err := x.ProjectIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"q"}, ids)

	require.NoError(t, x.DeleteProject("q"))
	n, err := x.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProjectTotals(t *testing.T) {
	x := openTestIndex(t)
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, x.Upsert("cheap", rec("a", 0.05, now), FileInfo{}))
	require.NoError(t, x.Upsert("pricey", rec("b", 1.00, now.Add(-time.Hour)), FileInfo{}))
	require.NoError(t, x.Upsert("pricey", rec("c", 0.50, now), FileInfo{}))

	totals, err := x.ProjectTotals()
	require.NoError(t, err)
	require.Len(t, totals, 2)

	assert.Equal(t, "pricey", totals[0].ProjectID)
	assert.Equal(t, 2, totals[0].Sessions)
	assert.InDelta(t, 1.5, totals[0].EstimatedCost, 1e-9)
	assert.Equal(t, int64(200), totals[0].InputTokens)
	assert.True(t, totals[0].LastActive.Equal(now))
	assert.Equal(t, "/work/app", totals[0].ProjectPath)
}
