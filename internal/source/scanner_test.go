package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanProjects(t *testing.T) {
	base := t.TempDir()
	mk := func(parts ...string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Join(append([]string{base, "projects"}, parts...)...), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	mk("-Users-me-src-app", "burnline", "sessions")
	mk("-Users-me-projects-my-cool-project", "burnline", "sessions")
	mk("-Users-me-other") // transcripts only, no store

	dirs, err := ScanProjects(base, "burnline")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dirs) != 2 {
		t.Fatalf("got %d dirs, want 2: %+v", len(dirs), dirs)
	}
	if dirs[0].Name != "my-cool-project" || dirs[1].Name != "app" {
		t.Errorf("names = %q, %q", dirs[0].Name, dirs[1].Name)
	}
	want := filepath.Join(base, "projects", "-Users-me-src-app", "burnline", "sessions")
	if dirs[1].SessionsDir != want {
		t.Errorf("SessionsDir = %q, want %q", dirs[1].SessionsDir, want)
	}
}

func TestScanProjects_MissingDir(t *testing.T) {
	dirs, err := ScanProjects(filepath.Join(t.TempDir(), "nothing"), "burnline")
	if err != nil || dirs != nil {
		t.Errorf("ScanProjects = %v, %v; want nil, nil", dirs, err)
	}
}

func TestDecodeProjectName(t *testing.T) {
	tests := map[string]string{
		"-Users-me-projects-gitlore":         "gitlore",
		"-Users-me-projects-my-cool-project": "my-cool-project",
		"-home-dev-tool":                     "tool",
		"root":                               "root",
	}
	for in, want := range tests {
		if got := decodeProjectName(in); got != want {
			t.Errorf("decodeProjectName(%q) = %q, want %q", in, got, want)
		}
	}
	if got := DisplayName("/Users/me/src/burnline"); got != "burnline" {
		t.Errorf("DisplayName = %q, want burnline", got)
	}
}
