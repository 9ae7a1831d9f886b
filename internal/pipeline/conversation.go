// Package pipeline turns hook payloads into stored session records and
// folds stored records into conversation and project totals.
package pipeline

import "github.com/theirongolddev/burnline/internal/model"

// DefaultMaxChainDepth bounds conversation walks when no limit is configured.
const DefaultMaxChainDepth = 64

// Loader fetches one record; false means absent or unusable.
type Loader interface {
	Load(id string) (model.SessionCostRecord, bool)
}

// LoadConversationCost walks parent links from sessionID and totals every
// distinct record reached. The walk stops at an empty or already visited id,
// at an absent record, or after maxDepth records (0 or less means
// DefaultMaxChainDepth). Truncated is set when the bound stops the walk
// before a parent that still exists.
func LoadConversationCost(loader Loader, sessionID string, maxDepth int) model.ConversationCost {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxChainDepth
	}

	var out model.ConversationCost
	visited := make(map[string]struct{})
	current := sessionID
	for current != "" {
		if _, seen := visited[current]; seen {
			break
		}
		if len(visited) >= maxDepth {
			_, out.Truncated = loader.Load(current)
			break
		}
		rec, ok := loader.Load(current)
		if !ok {
			break
		}
		visited[current] = struct{}{}
		out.Add(rec)
		current = rec.ParentSessionID
	}
	return out
}
