// Package session persists one JSON snapshot per session in a project's
// sessions directory.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/burnline/internal/fsutil"
	"github.com/theirongolddev/burnline/internal/logging"
	"github.com/theirongolddev/burnline/internal/model"
)

// Ext is the file extension of stored records.
const Ext = ".json"

// ErrInvalidRecord is returned by Save for records that fail validation.
var ErrInvalidRecord = model.ErrInvalidRecord

// Store reads and writes records under Dir.
type Store struct {
	Dir    string
	Logger *slog.Logger
}

// New returns a Store rooted at dir. The directory is created on first Save.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logging.Logger
}

// Path returns the file that holds id.
func (s *Store) Path(id string) string {
	return filepath.Join(s.Dir, id+Ext)
}

// Save writes rec, replacing any earlier snapshot for the same session.
func (s *Store) Save(rec model.SessionCostRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", rec.SessionID, err)
	}
	if err := fsutil.AtomicWriteFile(s.Path(rec.SessionID), append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("saving session %s: %w", rec.SessionID, err)
	}
	return nil
}

// Load returns the record for id. Missing, unreadable, malformed and invalid
// files all report false; everything but a missing file is logged.
func (s *Store) Load(id string) (model.SessionCostRecord, bool) {
	if !model.ValidSessionID(id) {
		s.logger().Warn("ignoring invalid session id", "session_id", id)
		return model.SessionCostRecord{}, false
	}
	path := s.Path(id)
	rec, err := ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger().Warn("session record unusable", "path", path, "error", err)
		}
		return model.SessionCostRecord{}, false
	}
	if rec.SessionID != id {
		s.logger().Warn("session record id mismatch", "path", path, "session_id", rec.SessionID)
		return model.SessionCostRecord{}, false
	}
	return rec, true
}

// ReadFile decodes and validates a record file.
func ReadFile(path string) (model.SessionCostRecord, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path within sessions dir
	if err != nil {
		return model.SessionCostRecord{}, err
	}
	var rec model.SessionCostRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.SessionCostRecord{}, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	if err := rec.Validate(); err != nil {
		return model.SessionCostRecord{}, err
	}
	return rec, nil
}

// Entry is one file found in the sessions directory.
type Entry struct {
	Path    string
	ID      string // empty for temp files
	ModTime time.Time
	Temp    bool
}

// List returns record and temp files, oldest first. A missing directory is
// empty, not an error.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	var out []Entry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		e := Entry{Path: filepath.Join(s.Dir, name)}
		switch {
		case fsutil.IsTemp(name):
			e.Temp = true
		case strings.HasSuffix(name, Ext):
			e.ID = strings.TrimSuffix(name, Ext)
		default:
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		e.ModTime = info.ModTime()
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModTime.Before(out[j].ModTime) })
	return out, nil
}

// Records loads every valid record, skipping unusable files.
func (s *Store) Records() ([]model.SessionCostRecord, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	var out []model.SessionCostRecord
	for _, e := range entries {
		if e.Temp {
			continue
		}
		if rec, ok := s.Load(e.ID); ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Delete removes the record for id. Deleting a missing record is not an error.
func (s *Store) Delete(id string) error {
	if !model.ValidSessionID(id) {
		return fmt.Errorf("%w: session id %q", ErrInvalidRecord, id)
	}
	if err := os.Remove(s.Path(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}
