package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/burnline/internal/model"
	"github.com/theirongolddev/burnline/internal/session"
	"github.com/theirongolddev/burnline/internal/source"
	"github.com/theirongolddev/burnline/internal/store"
)

// LoadAll reads every record of every project under base straight from the
// session files. It is the fallback when the index is disabled.
func LoadAll(base, product string) ([]store.Entry, error) {
	projects, err := source.ScanProjects(base, product)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", base, err)
	}
	var out []store.Entry
	for _, p := range projects {
		recs, err := session.New(p.SessionsDir).Records()
		if err != nil {
			return nil, err
		}
		for _, r := range recs {
			out = append(out, store.Entry{ProjectID: p.ID, Record: r})
		}
	}
	SortNewestFirst(out)
	return out, nil
}

// SortNewestFirst orders entries by last update, most recent first.
func SortNewestFirst(entries []store.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Record.LastUpdateTime.After(entries[j].Record.LastUpdateTime)
	})
}

// AggregateProjects computes per-project statistics from entries updated at
// or after since (zero means all).
func AggregateProjects(entries []store.Entry, since time.Time) []model.ProjectStats {
	filtered := FilterSince(entries, since)

	projMap := make(map[string]*model.ProjectStats)

	for _, e := range filtered {
		ps, ok := projMap[e.ProjectID]
		if !ok {
			ps = &model.ProjectStats{ProjectID: e.ProjectID}
			projMap[e.ProjectID] = ps
		}
		r := e.Record
		ps.Sessions++
		ps.InputTokens += r.InputTokens
		ps.OutputTokens += r.OutputTokens
		ps.EstimatedCost += r.TotalCostUSD
		if r.ProjectPath != "" {
			ps.ProjectPath = r.ProjectPath
		}
		if r.LastUpdateTime.After(ps.LastActive) {
			ps.LastActive = r.LastUpdateTime
		}
	}

	// Sort by cost descending
	projects := make([]model.ProjectStats, 0, len(projMap))
	for _, ps := range projMap {
		projects = append(projects, *ps)
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].EstimatedCost != projects[j].EstimatedCost {
			return projects[i].EstimatedCost > projects[j].EstimatedCost
		}
		return projects[i].ProjectID < projects[j].ProjectID
	})

	return projects
}

// FilterSince returns entries last updated at or after since.
func FilterSince(entries []store.Entry, since time.Time) []store.Entry {
	if since.IsZero() {
		return entries
	}
	var result []store.Entry
	for _, e := range entries {
		if e.Record.LastUpdateTime.Before(since) {
			continue
		}
		result = append(result, e)
	}
	return result
}

// FilterByProject returns entries whose project id or path contains the
// substring, ignoring case.
func FilterByProject(entries []store.Entry, project string) []store.Entry {
	if project == "" {
		return entries
	}
	var result []store.Entry
	for _, e := range entries {
		if containsIgnoreCase(e.ProjectID, project) || containsIgnoreCase(e.Record.ProjectPath, project) {
			result = append(result, e)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
