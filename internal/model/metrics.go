package model

import "time"

// ConversationCost totals a chain of sessions linked by parent ids.
type ConversationCost struct {
	// SessionIDs lists visited sessions, starting session first.
	SessionIDs []string

	TotalCostUSD      float64
	TotalInputTokens  int64
	TotalOutputTokens int64
	TotalLinesAdded   int64
	TotalLinesRemoved int64

	// Truncated is set when the walk stopped at the depth bound.
	Truncated bool
}

// Add accumulates one record. Callers guarantee each id is added once.
func (c *ConversationCost) Add(r SessionCostRecord) {
	c.SessionIDs = append(c.SessionIDs, r.SessionID)
	c.TotalCostUSD += r.TotalCostUSD
	c.TotalInputTokens += r.InputTokens
	c.TotalOutputTokens += r.OutputTokens
	c.TotalLinesAdded += r.LinesAdded
	c.TotalLinesRemoved += r.LinesRemoved
}

// TotalTokens is input plus output.
func (c ConversationCost) TotalTokens() int64 {
	return c.TotalInputTokens + c.TotalOutputTokens
}

// ProjectStats holds aggregated usage for a single project.
type ProjectStats struct {
	ProjectID     string
	ProjectPath   string
	Sessions      int
	InputTokens   int64
	OutputTokens  int64
	EstimatedCost float64
	LastActive    time.Time
}

// TotalTokens is input plus output.
func (p ProjectStats) TotalTokens() int64 {
	return p.InputTokens + p.OutputTokens
}
