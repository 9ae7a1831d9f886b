// Package retention removes session records that have aged out.
package retention

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/theirongolddev/burnline/internal/logging"
	"github.com/theirongolddev/burnline/internal/session"
)

// IndexRemover drops index rows for deleted records; *store.Index
// implements it.
type IndexRemover interface {
	Delete(projectID, sessionID string) error
}

// Sweeper deletes expired records from one project's store.
type Sweeper struct {
	Store     *session.Store
	Index     IndexRemover // optional
	ProjectID string
	Now       func() time.Time
	Logger    *slog.Logger
}

func (s *Sweeper) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logging.Logger
}

func (s *Sweeper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Sweep deletes every record older than maxAgeDays days.
// Age is measured from the record's last update, or from the file's mtime
// when the record cannot be read. maxAgeDays <= 0 deletes every record older
// than the current instant. Leftover temp files are aged by mtime.
//
// Individual failures are logged and skipped; the returned error is only for
// a directory that cannot be listed.
func (s *Sweeper) Sweep(maxAgeDays int) (int, error) {
	entries, err := s.Store.List()
	if err != nil {
		return 0, err
	}

	now := s.now()
	deleted := 0
	for _, e := range entries {
		lastActive := e.ModTime
		if !e.Temp {
			if rec, err := session.ReadFile(e.Path); err == nil && !rec.LastUpdateTime.IsZero() {
				lastActive = rec.LastUpdateTime
			}
		}
		if !expired(now, lastActive, maxAgeDays) {
			continue
		}

		if err := os.Remove(e.Path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				s.logger().Warn("removing expired record", "path", e.Path, "error", err)
			}
			continue
		}
		deleted++
		if e.Temp {
			continue
		}
		if s.Index != nil {
			if err := s.Index.Delete(s.ProjectID, e.ID); err != nil {
				s.logger().Warn("unindexing expired record", "session_id", e.ID, "error", err)
			}
		}
	}

	if deleted > 0 {
		s.logger().Debug("swept expired sessions", "dir", s.Store.Dir, "deleted", deleted, "max_age_days", maxAgeDays)
	}
	return deleted, nil
}

func expired(now, lastActive time.Time, maxAgeDays int) bool {
	age := now.Sub(lastActive)
	if maxAgeDays <= 0 {
		return age > 0
	}
	return age > time.Duration(maxAgeDays)*24*time.Hour
}
