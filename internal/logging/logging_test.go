package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_DefaultWarnToStderr(t *testing.T) {
	t.Setenv("BURNLINE_DEBUG", "")
	t.Setenv("BURNLINE_DEBUG_FILE", "")
	var buf bytes.Buffer
	require.NoError(t, Initialize(Options{Stderr: &buf}))

	Logger.Info("hidden")
	Logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "k=v")
}

func TestInitialize_DebugFile(t *testing.T) {
	t.Setenv("BURNLINE_DEBUG", "")
	t.Setenv("BURNLINE_DEBUG_FILE", "")
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	require.NoError(t, Initialize(Options{Debug: true, DebugFile: path}))

	Logger.Debug("trace line")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"trace line"`)
}

func TestRotateLogs(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"a.log", "b.log", "c.log", "keep.txt"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, nil, 0o600))
		mt := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(p, mt, mt))
	}

	require.NoError(t, rotateLogs(dir, 2))

	_, err := os.Stat(filepath.Join(dir, "a.log"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "b.log"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "c.log"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "keep.txt"))
	assert.NoError(t, err)
}
