package pipeline

import (
	"fmt"
	"os"

	"github.com/theirongolddev/burnline/internal/logging"
	"github.com/theirongolddev/burnline/internal/session"
	"github.com/theirongolddev/burnline/internal/source"
	"github.com/theirongolddev/burnline/internal/store"
)

// SyncResult reports what SyncIndex did.
type SyncResult struct {
	Projects   int
	CacheHits  int
	Reparsed   int
	Removed    int
	FileErrors int
}

// SyncIndex brings idx in line with the record files of every project under
// base. Files whose mtime and size match the index are left alone; changed
// files are re-read; rows without a file are dropped.
func SyncIndex(base, product string, idx *store.Index) (SyncResult, error) {
	projects, err := source.ScanProjects(base, product)
	if err != nil {
		return SyncResult{}, fmt.Errorf("scanning %s: %w", base, err)
	}

	var result SyncResult
	live := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		live[p.ID] = struct{}{}
		if err := syncProject(p, idx, &result); err != nil {
			return result, err
		}
		result.Projects++
	}

	// Projects whose sessions directory is gone entirely.
	indexed, err := idx.ProjectIDs()
	if err != nil {
		return result, fmt.Errorf("reading index: %w", err)
	}
	for _, id := range indexed {
		if _, ok := live[id]; ok {
			continue
		}
		if err := idx.DeleteProject(id); err != nil {
			return result, err
		}
		result.Removed++
	}
	return result, nil
}

func syncProject(p source.ProjectDir, idx *store.Index, result *SyncResult) error {
	tracked, err := idx.Tracked(p.ID)
	if err != nil {
		return fmt.Errorf("reading index: %w", err)
	}

	entries, err := session.New(p.SessionsDir).List()
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Temp {
			continue
		}
		info, err := os.Stat(e.Path)
		if err != nil {
			continue
		}
		fi := store.FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}

		if cached, ok := tracked[e.ID]; ok && cached == fi {
			seen[e.ID] = struct{}{}
			result.CacheHits++
			continue
		}

		rec, err := session.ReadFile(e.Path)
		if err != nil || rec.SessionID != e.ID {
			logging.Logger.Debug("skipping unusable record", "path", e.Path, "error", err)
			result.FileErrors++
			continue
		}
		if err := idx.Upsert(p.ID, rec, fi); err != nil {
			return err
		}
		seen[e.ID] = struct{}{}
		result.Reparsed++
	}

	for id := range tracked {
		if _, ok := seen[id]; ok {
			continue
		}
		if err := idx.Delete(p.ID, id); err != nil {
			return err
		}
		result.Removed++
	}
	return nil
}
