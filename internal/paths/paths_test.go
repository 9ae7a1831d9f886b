package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/Users/example/project", "Users-example-project"},
		{"/Users/example/project/", "Users-example-project"},
		{`C:\Users\example\project`, "C--Users-example-project"},
		{"C:/Users/example", "C--Users-example"},
		{"/srv/my-app", "srv-my-app"},
		{"/Users/Mixed/Case", "Users-Mixed-Case"},
		{"", EmptySlug},
		{"/", EmptySlug},
		{`\\:`, EmptySlug},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in), "Slug(%q)", tt.in)
	}
}

func TestSlug_Deterministic(t *testing.T) {
	p := "/home/dev/src/burnline"
	first := Slug(p)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Slug(p))
	}
}

func TestProjectIDFromTranscript(t *testing.T) {
	id, ok := ProjectIDFromTranscript("/Users/x/.claude/projects/-Users-x-proj/abc.jsonl")
	assert.True(t, ok)
	assert.Equal(t, "-Users-x-proj", id)

	id, ok = ProjectIDFromTranscript(`C:\Users\x\.claude\projects\C--Users-x-proj\abc.jsonl`)
	assert.True(t, ok)
	assert.Equal(t, "C--Users-x-proj", id)

	_, ok = ProjectIDFromTranscript("/tmp/abc.jsonl")
	assert.False(t, ok)

	// projects must be followed by an id and a file.
	_, ok = ProjectIDFromTranscript("/home/u/projects/abc.jsonl")
	assert.False(t, ok)

	// Dot segments never name a project.
	_, ok = ProjectIDFromTranscript("/home/u/.claude/projects/../x.jsonl")
	assert.False(t, ok)
	_, ok = ProjectIDFromTranscript("/home/u/.claude/projects/./x.jsonl")
	assert.False(t, ok)
}

func TestNew_Layout(t *testing.T) {
	base := filepath.Join("/home", "u", ".claude")
	p := ForProject(base, "/work/app", "/work/app/sub")

	assert.Equal(t, "work-app", p.ProjectID)
	assert.Equal(t, filepath.Join(base, Product, "config.toml"), p.UserConfigPath)
	assert.Equal(t, filepath.Join(base, "projects", "work-app", Product, "config.toml"), p.ProjectConfigPath)
	assert.Equal(t, filepath.Join(base, "projects", "work-app", Product, "sessions"), p.SessionsDir)
	assert.Equal(t, filepath.Join("/work/app/sub", "config.toml"), p.LocalConfigPath)
	assert.Equal(t, filepath.Join(base, Product, "usage.db"), p.IndexPath)
}

func TestDefaultBase_Env(t *testing.T) {
	t.Setenv("BURNLINE_STORAGE_PATH", "/tmp/burnline-store")
	assert.Equal(t, "/tmp/burnline-store", DefaultBase())
}

func TestNew_NoCwdDisablesLocalLayer(t *testing.T) {
	p := New("/base", "proj", "")
	assert.Empty(t, p.LocalConfigPath)
	assert.Equal(t, filepath.Join("/base", "projects", "proj", Product, "sessions"), p.SessionsDir)
}
