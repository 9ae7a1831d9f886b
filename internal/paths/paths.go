// Package paths maps project directories to storage locations under the
// Claude data directory.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// EmptySlug is returned by Slug for inputs that contain no name characters.
const EmptySlug = "root"

// Product is the namespace directory used beneath the base and project dirs.
const Product = "burnline"

const (
	configFileName = "config.toml"
	indexFileName  = "usage.db"
	sessionsDir    = "sessions"
)

// Slug converts an absolute project path into a directory name.
// Path separators and drive colons become dashes and surrounding dashes are
// trimmed:
//
//	"/Users/me/proj"     -> "Users-me-proj"
//	`C:\Users\me\proj`   -> "C--Users-me-proj"
func Slug(projectPath string) string {
	s := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '-'
		}
		return r
	}, projectPath)
	s = strings.Trim(s, "-")
	if s == "" {
		return EmptySlug
	}
	return s
}

// ProjectIDFromTranscript returns the project directory name embedded in a
// Claude transcript path such as ~/.claude/projects/<id>/<session>.jsonl.
// The second result is false when the path has no projects/<id>/ segment or
// the id is "." or "..".
func ProjectIDFromTranscript(transcriptPath string) (string, bool) {
	parts := strings.FieldsFunc(transcriptPath, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	// The id must be followed by at least one more element.
	for i := len(parts) - 3; i >= 0; i-- {
		if parts[i] != "projects" {
			continue
		}
		switch id := parts[i+1]; id {
		case ".", "..":
		default:
			return id, true
		}
	}
	return "", false
}

// StoragePaths holds every location derived for one project.
type StoragePaths struct {
	Base              string
	ProjectID         string
	UserConfigDir     string
	ProjectConfigDir  string
	SessionsDir       string
	UserConfigPath    string
	ProjectConfigPath string
	LocalConfigPath   string
	IndexPath         string
}

// New derives storage paths for a project identified by projectID (usually
// Slug of the project path) beneath base. cwd locates the local config layer;
// an empty cwd disables it.
func New(base, projectID, cwd string) StoragePaths {
	userDir := filepath.Join(base, Product)
	projectDir := filepath.Join(base, "projects", projectID, Product)
	local := ""
	if cwd != "" {
		local = filepath.Join(cwd, configFileName)
	}
	return StoragePaths{
		Base:              base,
		ProjectID:         projectID,
		UserConfigDir:     userDir,
		ProjectConfigDir:  projectDir,
		SessionsDir:       filepath.Join(projectDir, sessionsDir),
		UserConfigPath:    filepath.Join(userDir, configFileName),
		ProjectConfigPath: filepath.Join(projectDir, configFileName),
		LocalConfigPath:   local,
		IndexPath:         filepath.Join(userDir, indexFileName),
	}
}

// ForProject is New with the project ID computed from projectPath.
func ForProject(base, projectPath, cwd string) StoragePaths {
	return New(base, Slug(projectPath), cwd)
}

// DefaultBase returns the Claude data directory: $BURNLINE_STORAGE_PATH when
// set, otherwise ~/.claude.
func DefaultBase() string {
	if p := os.Getenv("BURNLINE_STORAGE_PATH"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".claude"
	}
	return filepath.Join(home, ".claude")
}
