package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/burnline/internal/model"
	"github.com/theirongolddev/burnline/internal/paths"
	"github.com/theirongolddev/burnline/internal/session"
)

// useDataDir points the package flags at a fresh data dir with plain output.
func useDataDir(t *testing.T, set ...string) string {
	t.Helper()
	dir := t.TempDir()
	saved := []any{flagDataDir, flagProject, flagSet, flagTheme, flagPreset}
	flagDataDir = dir
	flagProject = ""
	flagTheme, flagPreset = "", ""
	flagSet = append([]string{"style.enable_colors=false", "style.enable_emoji=false"}, set...)
	t.Cleanup(func() {
		flagDataDir = saved[0].(string)
		flagProject = saved[1].(string)
		flagSet = saved[2].([]string)
		flagTheme = saved[3].(string)
		flagPreset = saved[4].(string)
	})
	return dir
}

func hookPayload(t *testing.T, id, parent string, cost float64) string {
	t.Helper()
	cwd := filepath.ToSlash(t.TempDir())
	return fmt.Sprintf(`{"session_id":%q,"parent_session_id":%q,
		"workspace":{"project_dir":"/work/app","current_dir":%q},
		"model":{"id":"claude-sonnet-4-5","display_name":"Sonnet"},
		"cost":{"total_cost_usd":%g}}`, id, parent, cwd, cost)
}

func appStore(dataDir string) *session.Store {
	return session.New(paths.New(dataDir, paths.Slug("/work/app"), "").SessionsDir)
}

func TestStatusline_ConversationTotal(t *testing.T) {
	useDataDir(t)

	line, err := statusline(strings.NewReader(hookPayload(t, "A", "", 0.05)), false)
	require.NoError(t, err)
	assert.Equal(t, "app | Sonnet | $0.05", line)

	line, err = statusline(strings.NewReader(hookPayload(t, "B", "A", 0.08)), false)
	require.NoError(t, err)
	assert.Equal(t, "app | Sonnet | $0.13 (2 sessions)", line)
}

func TestStatusline_SessionMode(t *testing.T) {
	useDataDir(t, "components.usage.display_mode=session", "components.usage.precision=3")

	_, err := statusline(strings.NewReader(hookPayload(t, "A", "", 0.05)), false)
	require.NoError(t, err)
	line, err := statusline(strings.NewReader(hookPayload(t, "B", "A", 0.08)), false)
	require.NoError(t, err)
	assert.Equal(t, "app | Sonnet | $0.080", line)
}

func TestStatusline_Preset(t *testing.T) {
	useDataDir(t)
	flagPreset = "PU"

	line, err := statusline(strings.NewReader(hookPayload(t, "A", "", 0.05)), false)
	require.NoError(t, err)
	assert.Equal(t, "app | $0.05", line)
}

func TestStatusline_PersistenceDisabled(t *testing.T) {
	dir := useDataDir(t, "storage.enable_cost_persistence=false")

	line, err := statusline(strings.NewReader(hookPayload(t, "A", "", 0.05)), false)
	require.NoError(t, err)
	assert.Contains(t, line, "$0.05")

	_, ok := appStore(dir).Load("A")
	assert.False(t, ok)
}

func TestStatusline_StartupSweep(t *testing.T) {
	dir := useDataDir(t)
	old := time.Now().UTC().Add(-40 * 24 * time.Hour)
	st := appStore(dir)
	require.NoError(t, st.Save(model.SessionCostRecord{SessionID: "stale", StartTime: old, LastUpdateTime: old}))

	_, err := statusline(strings.NewReader(hookPayload(t, "A", "", 0.05)), false)
	require.NoError(t, err)

	_, ok := st.Load("stale")
	assert.False(t, ok)
	_, ok = st.Load("A")
	assert.True(t, ok)
}

func TestStatusline_BadPayloadStillPrints(t *testing.T) {
	useDataDir(t)
	flagProject = "/work/app"

	line, err := statusline(strings.NewReader("{not json"), false)
	require.NoError(t, err)
	assert.Equal(t, "app", line)

	line, err = statusline(strings.NewReader(""), true)
	require.NoError(t, err)
	assert.Equal(t, "app", line)
}

func TestStatusline_InvalidOverride(t *testing.T) {
	useDataDir(t, "no-equals-sign")
	_, err := statusline(strings.NewReader(hookPayload(t, "A", "", 0.05)), false)
	assert.Error(t, err)
}

func TestStatusline_UnwritableStoreStillPrints(t *testing.T) {
	dir := useDataDir(t)
	// A file where the projects directory should be.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "projects"), nil, 0o600))

	line, err := statusline(strings.NewReader(hookPayload(t, "A", "", 0.05)), false)
	require.NoError(t, err)
	assert.Equal(t, "app | Sonnet", line)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--data-dir", flagDataDir, "--project", "/work/app"}, args...))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConfigSetAndShow(t *testing.T) {
	dir := useDataDir(t)

	_, err := execute(t, "config", "set", "--level", "user", "theme=dark", "storage.session_expiry_days=7")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, paths.Product, "config.toml"))

	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, `theme = "dark"`)
	assert.Contains(t, out, "session_expiry_days = 7")

	_, err = execute(t, "config", "set", "--level", "user", "components.usage.precision=99")
	assert.Error(t, err)
}

func TestClean(t *testing.T) {
	dir := useDataDir(t)
	st := appStore(dir)
	now := time.Now().UTC()
	require.NoError(t, st.Save(model.SessionCostRecord{SessionID: "fresh", StartTime: now.Add(-time.Hour), LastUpdateTime: now.Add(-time.Minute)}))

	_, err := execute(t, "clean", "--days", "0")
	require.Error(t, err)
	_, ok := st.Load("fresh")
	assert.True(t, ok)

	out, err := execute(t, "clean", "--days", "0", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1")
	_, ok = st.Load("fresh")
	assert.False(t, ok)
}

func TestSessionsFilter(t *testing.T) {
	dir := useDataDir(t)
	t.Cleanup(func() { sessionsFilter = "" })
	now := time.Now().UTC()
	other := session.New(paths.New(dir, paths.Slug("/work/other"), "").SessionsDir)
	require.NoError(t, appStore(dir).Save(model.SessionCostRecord{SessionID: "s-app", ProjectPath: "/work/app", StartTime: now, LastUpdateTime: now}))
	require.NoError(t, other.Save(model.SessionCostRecord{SessionID: "s-other", ProjectPath: "/work/other", StartTime: now, LastUpdateTime: now}))

	out, err := execute(t, "sessions", "--filter", "OTHER")
	require.NoError(t, err)
	assert.Contains(t, out, "s-other")
	assert.NotContains(t, out, "s-app")
}
