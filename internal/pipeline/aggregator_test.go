package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/burnline/internal/model"
	"github.com/theirongolddev/burnline/internal/paths"
	"github.com/theirongolddev/burnline/internal/store"
)

func entry(project, id string, cost float64, updated time.Time) store.Entry {
	return store.Entry{ProjectID: project, Record: model.SessionCostRecord{
		SessionID:      id,
		ProjectPath:    "/work/" + project,
		TotalCostUSD:   cost,
		InputTokens:    100,
		OutputTokens:   10,
		LastUpdateTime: updated,
	}}
}

func TestAggregateProjects(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	entries := []store.Entry{
		entry("app", "a", 0.5, now),
		entry("app", "b", 0.25, now.Add(-time.Hour)),
		entry("lib", "c", 1.0, now.Add(-48*time.Hour)),
	}

	got := AggregateProjects(entries, time.Time{})
	require.Len(t, got, 2)
	assert.Equal(t, "lib", got[0].ProjectID)
	assert.Equal(t, "app", got[1].ProjectID)
	assert.Equal(t, 2, got[1].Sessions)
	assert.InDelta(t, 0.75, got[1].EstimatedCost, 1e-9)
	assert.Equal(t, int64(220), got[1].TotalTokens())
	assert.True(t, got[1].LastActive.Equal(now))
	assert.Equal(t, "/work/app", got[1].ProjectPath)

	recent := AggregateProjects(entries, now.Add(-24*time.Hour))
	require.Len(t, recent, 1)
	assert.Equal(t, "app", recent[0].ProjectID)
}

func TestFilterByProject(t *testing.T) {
	now := time.Now()
	entries := []store.Entry{entry("Work-App", "a", 0, now), entry("lib", "b", 0, now)}
	assert.Len(t, FilterByProject(entries, "app"), 1)
	assert.Len(t, FilterByProject(entries, ""), 2)
	assert.Len(t, FilterByProject(entries, "/work/lib"), 1)
}

func TestLoadAll(t *testing.T) {
	base := t.TempDir()
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	saveRecord(t, base, "app", "old", 0.1, now.Add(-time.Hour))
	saveRecord(t, base, "lib", "new", 0.2, now)

	got, err := LoadAll(base, paths.Product)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].Record.SessionID)
	assert.Equal(t, "lib", got[0].ProjectID)
	assert.Equal(t, "app", got[1].ProjectID)
}
