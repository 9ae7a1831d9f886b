// Package cmd implements the burnline CLI commands.
package cmd

import (
	"io"
	"os"

	"github.com/theirongolddev/burnline/internal/config"
	"github.com/theirongolddev/burnline/internal/logging"
	"github.com/theirongolddev/burnline/internal/paths"
	"github.com/theirongolddev/burnline/internal/session"
	"github.com/theirongolddev/burnline/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDataDir string
	flagProject string
	flagSet     []string
	flagTheme   string
	flagPreset  string
	flagDebug   bool
	flagLogFile string
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "burnline",
	Short: "Claude Code statusline with conversation cost tracking",
	Long: "Reads the statusline payload from stdin, records the session's cost, " +
		"and prints one status line. Subcommands inspect stored sessions and config.",
	SilenceUsage:      true,
	PersistentPreRunE: initLogging,
	RunE:              runStatusline,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", paths.DefaultBase(), "Claude data directory")
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "p", "", "Project path (default: payload workspace or current directory)")
	rootCmd.PersistentFlags().StringArrayVar(&flagSet, "set", nil, "Override a config key for this run (key=value, repeatable)")
	rootCmd.PersistentFlags().StringVar(&flagTheme, "theme", "", "Theme override")
	rootCmd.PersistentFlags().StringVar(&flagPreset, "preset", "", "Component preset override")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Write debug logs")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Debug log file (implies --debug)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress warnings on stderr")
}

func initLogging(cmd *cobra.Command, _ []string) error {
	opts := logging.Options{
		Debug:       flagDebug,
		DebugFile:   flagLogFile,
		MaxLogFiles: config.DefaultConfig().Logging.MaxLogFiles,
		Stderr:      cmd.ErrOrStderr(),
	}
	if flagQuiet && !flagDebug && flagLogFile == "" {
		opts.Stderr = io.Discard
	}
	return logging.Initialize(opts)
}

// project bundles the storage paths and resolved config of one project.
type project struct {
	paths    paths.StoragePaths
	resolver *config.Resolver
	resolved config.Resolved
}

func (p *project) cfg() config.Config { return p.resolved.Config }

func (p *project) store() *session.Store { return session.New(p.paths.SessionsDir) }

// openProject resolves paths and config for projectPath. A transcript path
// under <data-dir>/projects/<id>/ fixes the project id; otherwise it is the
// slug of projectPath. cwd locates the local config layer.
func openProject(projectPath, transcriptPath, cwd string) (*project, error) {
	id, ok := paths.ProjectIDFromTranscript(transcriptPath)
	if !ok {
		id = paths.Slug(projectPath)
	}
	sp := paths.New(flagDataDir, id, cwd)

	overrides, err := cliOverrides()
	if err != nil {
		return nil, err
	}
	r := config.NewResolver(sp)
	res, err := r.Resolve(overrides)
	if err != nil {
		return nil, err
	}

	// debug = true in a config file turns on file logging for this run.
	if res.Config.Debug && !flagDebug && flagLogFile == "" {
		err := logging.Initialize(logging.Options{Debug: true, MaxLogFiles: res.Config.Logging.MaxLogFiles})
		if err != nil {
			logging.Logger.Warn("enabling debug log", "error", err)
		}
	}
	logging.Logger.Debug("resolved config",
		"project_id", sp.ProjectID,
		"layers", len(res.Report.Layers),
		"skipped", len(res.Skipped),
	)
	return &project{paths: sp, resolver: r, resolved: res}, nil
}

// cliOverrides folds --set, --theme and --preset into one tree.
func cliOverrides() (config.Node, error) {
	n, err := config.ParseOverrides(flagSet)
	if err != nil {
		return config.Node{}, err
	}
	extra := map[string]config.Node{}
	if flagTheme != "" {
		extra["theme"] = config.Scalar(flagTheme)
	}
	if flagPreset != "" {
		extra["preset"] = config.Scalar(flagPreset)
	}
	if len(extra) > 0 {
		n = config.Merge(n, config.Mapping(extra))
	}
	return n, nil
}

// currentProject opens the project named by --project or the working
// directory.
func currentProject() (*project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}
	projectPath := flagProject
	if projectPath == "" {
		projectPath = cwd
	}
	return openProject(projectPath, "", cwd)
}

// openIndex opens the usage index when enabled. Failures are logged and
// yield nil; callers fall back to reading the session files.
func (p *project) openIndex() *store.Index {
	if !p.cfg().Storage.EnableIndex {
		return nil
	}
	idx, err := store.Open(p.paths.IndexPath)
	if err != nil {
		logging.Logger.Warn("usage index unavailable", "path", p.paths.IndexPath, "error", err)
		return nil
	}
	return idx
}
