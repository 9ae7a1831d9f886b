package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/theirongolddev/burnline/internal/config"
	"github.com/theirongolddev/burnline/internal/logging"
	"github.com/theirongolddev/burnline/internal/model"
	"github.com/theirongolddev/burnline/internal/session"
	"github.com/theirongolddev/burnline/internal/source"
	"github.com/theirongolddev/burnline/internal/store"
)

// IndexWriter mirrors saved records; *store.Index implements it.
type IndexWriter interface {
	Upsert(projectID string, rec model.SessionCostRecord, fi store.FileInfo) error
}

// Recorder turns hook payloads into session records for one project.
type Recorder struct {
	Store     *session.Store
	Index     IndexWriter // optional
	ProjectID string
	Config    config.Config
	Now       func() time.Time
	Logger    *slog.Logger
}

func (r *Recorder) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logging.Logger
}

func (r *Recorder) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

// Build merges p into the stored record for its session without saving.
func (r *Recorder) Build(p source.HookPayload) (model.SessionCostRecord, error) {
	if !model.ValidSessionID(p.SessionID) {
		return model.SessionCostRecord{}, fmt.Errorf("%w: session id %q", model.ErrInvalidRecord, p.SessionID)
	}

	rec, ok := r.Store.Load(p.SessionID)
	if !ok {
		rec = model.SessionCostRecord{SessionID: p.SessionID}
	}
	if path := p.ProjectPath(); path != "" {
		rec.ProjectPath = path
	}
	if p.Model.ID != "" {
		rec.Model = &model.ModelIdentity{ID: p.Model.ID, DisplayName: p.Model.DisplayName}
	}

	tr, haveTranscript := r.scan(p)
	if haveTranscript {
		rec.TranscriptPath = p.TranscriptPath
		if rec.Model == nil && tr.LastModel != "" {
			rec.Model = &model.ModelIdentity{ID: tr.LastModel}
		}
	}

	counters, reported := p.Cost.Counters()
	switch {
	case reported:
		rec.CostEstimated = false
	case haveTranscript:
		counters.TotalCostUSD = tr.EstimateCost(r.Config)
		rec.CostEstimated = true
	default:
		counters.TotalCostUSD = rec.Reported.TotalCostUSD
	}
	if p.Cost == nil {
		// Nothing new from the host; keep the other counters as they were.
		prev := rec.Reported
		prev.TotalCostUSD = counters.TotalCostUSD
		counters = prev
	}
	rec.ApplyCounters(counters)

	switch {
	case p.Cost != nil && (p.Cost.InputTokens != nil || p.Cost.OutputTokens != nil):
		if p.Cost.InputTokens != nil {
			rec.InputTokens = *p.Cost.InputTokens
		}
		if p.Cost.OutputTokens != nil {
			rec.OutputTokens = *p.Cost.OutputTokens
		}
	case haveTranscript:
		rec.InputTokens = tr.Total.Input
		rec.OutputTokens = tr.Total.Output
		rec.CacheCreationTokens = tr.Total.CacheWrite()
		rec.CacheReadTokens = tr.Total.CacheRead
	}

	switch {
	case p.ParentSessionID != "":
		rec.ParentSessionID = p.ParentSessionID
	case rec.ParentSessionID == "" && haveTranscript:
		rec.ParentSessionID = tr.ForeignSessionID
	}
	if rec.ParentSessionID == rec.SessionID {
		rec.ParentSessionID = ""
	}

	now := r.now()
	if rec.StartTime.IsZero() {
		rec.StartTime = now
		if haveTranscript && !tr.StartTime.IsZero() && tr.StartTime.Before(now) {
			rec.StartTime = tr.StartTime.UTC()
		}
	}
	rec.LastUpdateTime = now
	if rec.LastUpdateTime.Before(rec.StartTime) {
		rec.LastUpdateTime = rec.StartTime
	}
	return rec, nil
}

// Record builds the record for p, saves it, and mirrors it to the index.
// Index failures are logged, not returned.
func (r *Recorder) Record(p source.HookPayload) (model.SessionCostRecord, error) {
	rec, err := r.Build(p)
	if err != nil {
		return model.SessionCostRecord{}, err
	}
	if err := r.Store.Save(rec); err != nil {
		return rec, err
	}
	if r.Index != nil {
		fi := store.FileInfoOf(r.Store.Path(rec.SessionID))
		if err := r.Index.Upsert(r.ProjectID, rec, fi); err != nil {
			r.logger().Warn("index update failed", "session_id", rec.SessionID, "error", err)
		}
	}
	r.logger().Debug("recorded session",
		"session_id", rec.SessionID,
		"cost_usd", rec.TotalCostUSD,
		"estimated", rec.CostEstimated,
		"parent", rec.ParentSessionID,
	)
	return rec, nil
}

func (r *Recorder) scan(p source.HookPayload) (source.Transcript, bool) {
	if p.TranscriptPath == "" {
		return source.Transcript{}, false
	}
	tr, err := source.ScanTranscript(p.TranscriptPath, p.SessionID)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger().Debug("transcript not found", "path", p.TranscriptPath)
		} else {
			r.logger().Warn("reading transcript", "path", p.TranscriptPath, "error", err)
		}
		return source.Transcript{}, false
	}
	return tr, true
}
