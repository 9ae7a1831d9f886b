// Package model defines the persisted session cost record and the values
// derived from it.
package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInvalidRecord is wrapped by every Validate failure.
var ErrInvalidRecord = errors.New("invalid session record")

// ModelIdentity names the model a session last used.
type ModelIdentity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
}

// CostCounters are the cumulative counters the host reports for a session.
type CostCounters struct {
	TotalCostUSD       float64 `json:"total_cost_usd"`
	TotalDurationMS    int64   `json:"total_duration_ms"`
	TotalAPIDurationMS int64   `json:"total_api_duration_ms"`
	LinesAdded         int64   `json:"lines_added"`
	LinesRemoved       int64   `json:"lines_removed"`
}

// Plus returns the field-wise sum.
func (c CostCounters) Plus(o CostCounters) CostCounters {
	return CostCounters{
		TotalCostUSD:       c.TotalCostUSD + o.TotalCostUSD,
		TotalDurationMS:    c.TotalDurationMS + o.TotalDurationMS,
		TotalAPIDurationMS: c.TotalAPIDurationMS + o.TotalAPIDurationMS,
		LinesAdded:         c.LinesAdded + o.LinesAdded,
		LinesRemoved:       c.LinesRemoved + o.LinesRemoved,
	}
}

// SessionCostRecord is the persisted usage snapshot for one session. Each
// save replaces the previous snapshot for the same SessionID.
type SessionCostRecord struct {
	SessionID       string `json:"session_id"`
	ParentSessionID string `json:"parent_session_id,omitempty"`
	ProjectPath     string `json:"project_path"`

	TotalCostUSD        float64 `json:"total_cost_usd"`
	CostEstimated       bool    `json:"cost_estimated,omitempty"`
	InputTokens         int64   `json:"input_tokens"`
	OutputTokens        int64   `json:"output_tokens"`
	CacheCreationTokens int64   `json:"cache_creation_tokens,omitempty"`
	CacheReadTokens     int64   `json:"cache_read_tokens,omitempty"`
	LinesAdded          int64   `json:"lines_added"`
	LinesRemoved        int64   `json:"lines_removed"`
	DurationMS          int64   `json:"duration_ms,omitempty"`

	StartTime      time.Time      `json:"start_time"`
	LastUpdateTime time.Time      `json:"last_update_time"`
	Model          *ModelIdentity `json:"model,omitempty"`

	// Reported is the last raw counter set from the host; Carried holds
	// what earlier counter resets would otherwise have lost.
	Reported       CostCounters `json:"reported"`
	Carried        CostCounters `json:"carried"`
	TranscriptPath string       `json:"transcript_path,omitempty"`
}

// ApplyCounters folds a new cumulative counter set into the record. A
// counter lower than the previous report means the host restarted it, so the
// previous value is carried forward before being replaced.
func (r *SessionCostRecord) ApplyCounters(next CostCounters) {
	prev := r.Reported
	if prev.TotalCostUSD > 0 && next.TotalCostUSD < prev.TotalCostUSD {
		r.Carried.TotalCostUSD += prev.TotalCostUSD
	}
	if prev.TotalDurationMS > 0 && next.TotalDurationMS < prev.TotalDurationMS {
		r.Carried.TotalDurationMS += prev.TotalDurationMS
	}
	if prev.TotalAPIDurationMS > 0 && next.TotalAPIDurationMS < prev.TotalAPIDurationMS {
		r.Carried.TotalAPIDurationMS += prev.TotalAPIDurationMS
	}
	if prev.LinesAdded > 0 && next.LinesAdded < prev.LinesAdded {
		r.Carried.LinesAdded += prev.LinesAdded
	}
	if prev.LinesRemoved > 0 && next.LinesRemoved < prev.LinesRemoved {
		r.Carried.LinesRemoved += prev.LinesRemoved
	}
	r.Reported = next

	total := r.Reported.Plus(r.Carried)
	r.TotalCostUSD = total.TotalCostUSD
	r.DurationMS = total.TotalDurationMS
	r.LinesAdded = total.LinesAdded
	r.LinesRemoved = total.LinesRemoved
}

// ValidSessionID reports whether id can be used as a file name.
func ValidSessionID(id string) bool {
	if id == "" || id == "." || id == ".." || len(id) > 255 {
		return false
	}
	return !strings.ContainsAny(id, `/\:`+"\x00")
}

// Validate checks the record invariants.
func (r SessionCostRecord) Validate() error {
	switch {
	case !ValidSessionID(r.SessionID):
		return fmt.Errorf("%w: session id %q", ErrInvalidRecord, r.SessionID)
	case math.IsNaN(r.TotalCostUSD) || math.IsInf(r.TotalCostUSD, 0) || r.TotalCostUSD < 0:
		return fmt.Errorf("%w: total cost %v", ErrInvalidRecord, r.TotalCostUSD)
	case r.InputTokens < 0 || r.OutputTokens < 0:
		return fmt.Errorf("%w: negative token count", ErrInvalidRecord)
	case r.LastUpdateTime.Before(r.StartTime):
		return fmt.Errorf("%w: last update %s before start %s", ErrInvalidRecord,
			r.LastUpdateTime.Format(time.RFC3339), r.StartTime.Format(time.RFC3339))
	}
	return nil
}

// Age returns how long ago the record was last updated.
func (r SessionCostRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.LastUpdateTime)
}
