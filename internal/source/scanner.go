package source

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanProjects lists project directories under <claudeDir>/projects that
// hold a <product>/sessions store. A missing projects directory yields none.
func ScanProjects(claudeDir, product string) ([]ProjectDir, error) {
	projectsDir := filepath.Join(claudeDir, "projects")

	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []ProjectDir
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sessions := filepath.Join(projectsDir, e.Name(), product, "sessions")
		info, err := os.Stat(sessions)
		if err != nil || !info.IsDir() {
			continue
		}
		dirs = append(dirs, ProjectDir{
			ID:          e.Name(),
			Name:        decodeProjectName(e.Name()),
			SessionsDir: sessions,
		})
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].ID < dirs[j].ID })
	return dirs, nil
}

// decodeProjectName extracts a human-readable project name from the encoded directory name.
// Project directories encode absolute paths by replacing "/" with "-", so:
//
//	"-Users-me-projects-gitlore" -> "gitlore"
//	"-Users-me-projects-my-cool-project" -> "my-cool-project"
//
// We find the last known path component ("projects", "repos", "src", "code", ...)
// and take everything after it. Falls back to the last non-empty segment.
func decodeProjectName(dirName string) string {
	parts := strings.Split(dirName, "-")

	knownParents := map[string]bool{
		"projects": true, "repos": true, "src": true,
		"code": true, "workspace": true, "dev": true,
	}

	for i := len(parts) - 2; i >= 0; i-- {
		if knownParents[strings.ToLower(parts[i])] {
			if name := strings.Join(parts[i+1:], "-"); name != "" {
				return name
			}
		}
	}

	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return dirName
}

// DisplayName is decodeProjectName for a project path or slug.
func DisplayName(projectPathOrID string) string {
	s := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' {
			return '-'
		}
		return r
	}, projectPathOrID)
	return decodeProjectName(s)
}
