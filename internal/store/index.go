// Package store provides a SQLite-backed index of session records across
// projects. The JSON record files stay authoritative; the index only makes
// cross-project listing cheap.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/burnline/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Index is an open usage index.
type Index struct {
	db *sql.DB
}

// Open opens or creates the index database at the given path.
func Open(dbPath string) (*Index, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating index dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(2000)")
	if err != nil {
		return nil, fmt.Errorf("opening index db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the index database.
func (x *Index) Close() error {
	return x.db.Close()
}

// FileInfo is the record file state an entry was indexed from.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// FileInfoOf stats path for Upsert. A failed stat yields the zero value,
// which forces the next Sync to re-read the file.
func FileInfoOf(path string) FileInfo {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}
	}
	return FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}
}

// Entry is one indexed record.
type Entry struct {
	ProjectID string
	Record    model.SessionCostRecord
}

// Upsert stores rec under projectID, replacing any earlier row.
func (x *Index) Upsert(projectID string, rec model.SessionCostRecord, fi FileInfo) error {
	var modelID, modelName string
	if rec.Model != nil {
		modelID, modelName = rec.Model.ID, rec.Model.DisplayName
	}
	estimated := 0
	if rec.CostEstimated {
		estimated = 1
	}

	_, err := x.db.Exec(`INSERT OR REPLACE INTO sessions
		(project_id, session_id, parent_session_id, project_path,
		 total_cost_usd, cost_estimated, input_tokens, output_tokens,
		 cache_creation_tokens, cache_read_tokens, lines_added, lines_removed,
		 duration_ms, start_time, last_update_time, model_id, model_name,
		 file_mtime_ns, file_size, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		projectID, rec.SessionID, rec.ParentSessionID, rec.ProjectPath,
		rec.TotalCostUSD, estimated, rec.InputTokens, rec.OutputTokens,
		rec.CacheCreationTokens, rec.CacheReadTokens, rec.LinesAdded, rec.LinesRemoved,
		rec.DurationMS, formatTime(rec.StartTime), formatTime(rec.LastUpdateTime), modelID, modelName,
		fi.MtimeNs, fi.SizeBytes, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("indexing session %s: %w", rec.SessionID, err)
	}
	return nil
}

// Delete removes one row. Missing rows are not an error.
func (x *Index) Delete(projectID, sessionID string) error {
	_, err := x.db.Exec("DELETE FROM sessions WHERE project_id = ? AND session_id = ?", projectID, sessionID)
	if err != nil {
		return fmt.Errorf("unindexing session %s: %w", sessionID, err)
	}
	return nil
}

// DeleteProject removes every row of a project.
func (x *Index) DeleteProject(projectID string) error {
	_, err := x.db.Exec("DELETE FROM sessions WHERE project_id = ?", projectID)
	return err
}

// Tracked returns session_id -> FileInfo for one project.
func (x *Index) Tracked(projectID string) (map[string]FileInfo, error) {
	rows, err := x.db.Query("SELECT session_id, file_mtime_ns, file_size FROM sessions WHERE project_id = ?", projectID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var id string
		var fi FileInfo
		if err := rows.Scan(&id, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[id] = fi
	}
	return result, rows.Err()
}

// ProjectIDs lists every project with indexed rows.
func (x *Index) ProjectIDs() ([]string, error) {
	rows, err := x.db.Query("SELECT DISTINCT project_id FROM sessions ORDER BY project_id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const selectEntry = `SELECT
	project_id, session_id, parent_session_id, project_path,
	total_cost_usd, cost_estimated, input_tokens, output_tokens,
	cache_creation_tokens, cache_read_tokens, lines_added, lines_removed,
	duration_ms, start_time, last_update_time, model_id, model_name
	FROM sessions`

// ListProject returns a project's rows, most recently updated first. A
// limit of zero or less means no limit.
func (x *Index) ListProject(projectID string, limit int) ([]Entry, error) {
	return x.query(selectEntry+" WHERE project_id = ? ORDER BY last_update_time DESC LIMIT ?", projectID, sqlLimit(limit))
}

// ListAll returns rows from every project, most recently updated first.
func (x *Index) ListAll(limit int) ([]Entry, error) {
	return x.query(selectEntry+" ORDER BY last_update_time DESC LIMIT ?", sqlLimit(limit))
}

// ProjectTotals sums usage per project, highest cost first.
func (x *Index) ProjectTotals() ([]model.ProjectStats, error) {
	rows, err := x.db.Query(`SELECT
		project_id, MAX(project_path), COUNT(*),
		SUM(input_tokens), SUM(output_tokens), SUM(total_cost_usd), MAX(last_update_time)
		FROM sessions GROUP BY project_id ORDER BY SUM(total_cost_usd) DESC, project_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.ProjectStats
	for rows.Next() {
		var ps model.ProjectStats
		var path, last sql.NullString
		if err := rows.Scan(&ps.ProjectID, &path, &ps.Sessions,
			&ps.InputTokens, &ps.OutputTokens, &ps.EstimatedCost, &last); err != nil {
			return nil, err
		}
		ps.ProjectPath = path.String
		ps.LastActive = parseTime(last)
		out = append(out, ps)
	}
	return out, rows.Err()
}

// Count returns the number of indexed rows.
func (x *Index) Count() (int, error) {
	var count int
	err := x.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count)
	return count, err
}

func (x *Index) query(q string, args ...any) ([]Entry, error) {
	rows, err := x.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		r := &e.Record
		var parent, path, start, last, modelID, modelName sql.NullString
		var estimated int
		err := rows.Scan(
			&e.ProjectID, &r.SessionID, &parent, &path,
			&r.TotalCostUSD, &estimated, &r.InputTokens, &r.OutputTokens,
			&r.CacheCreationTokens, &r.CacheReadTokens, &r.LinesAdded, &r.LinesRemoved,
			&r.DurationMS, &start, &last, &modelID, &modelName,
		)
		if err != nil {
			return nil, err
		}
		r.ParentSessionID = parent.String
		r.ProjectPath = path.String
		r.CostEstimated = estimated != 0
		r.StartTime = parseTime(start)
		r.LastUpdateTime = parseTime(last)
		if modelID.String != "" {
			r.Model = &model.ModelIdentity{ID: modelID.String, DisplayName: modelName.String}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// Timestamps are stored as fixed-width UTC so text order is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
