package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/theirongolddev/burnline/internal/cli"
	"github.com/theirongolddev/burnline/internal/config"
	"github.com/theirongolddev/burnline/internal/logging"
	"github.com/theirongolddev/burnline/internal/pipeline"
	"github.com/theirongolddev/burnline/internal/retention"
	"github.com/theirongolddev/burnline/internal/source"
	"github.com/theirongolddev/burnline/internal/store"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func runStatusline(cmd *cobra.Command, _ []string) error {
	line, err := statusline(cmd.InOrStdin(), stdinIsTerminal())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
	return nil
}

// stdinIsTerminal is true when burnline was started by hand; there is no
// payload to wait for then.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) //nolint:gosec // fd fits in int
}

// statusline renders one line for the payload read from in. Only invalid
// command-line overrides are returned as errors; storage problems are logged
// and the line is printed without the affected parts.
func statusline(in io.Reader, interactive bool) (string, error) {
	var p source.HookPayload
	if !interactive {
		payload, err := source.ReadPayload(in)
		switch {
		case errors.Is(err, source.ErrEmptyPayload):
		case err != nil:
			logging.Logger.Warn("ignoring hook payload", "error", err)
		default:
			p = payload
		}
	}

	projectPath := p.ProjectPath()
	if flagProject != "" {
		projectPath = flagProject
	}
	cwd := p.WorkingDir()
	if projectPath == "" || cwd == "" {
		wd, _ := os.Getwd()
		if projectPath == "" {
			projectPath = wd
		}
		if cwd == "" {
			cwd = wd
		}
	}

	proj, err := openProject(projectPath, p.TranscriptPath, cwd)
	if err != nil {
		return "", err
	}
	cfg := proj.cfg()

	idx := proj.openIndex()
	if idx != nil {
		defer func() { _ = idx.Close() }()
	}
	proj.startupSweep(idx)

	parts := map[string]string{
		"project": source.DisplayName(projectPath),
		"model":   p.Model.DisplayName,
	}
	if parts["model"] == "" {
		parts["model"] = p.Model.ID
	}
	if cfg.Components.Usage.Enabled && p.SessionID != "" {
		if u, ok := proj.usage(p, idx); ok {
			opts := segmentOptions(cfg)
			parts["usage"] = cli.RenderUsageSegment(u, opts)
			parts["tokens"] = cli.RenderTokens(u.Tokens, opts)
		}
	}
	return cli.JoinComponents(cfg.ComponentOrder(), cfg.Style.Separator, parts), nil
}

// startupSweep expires old sessions when the config asks for it. An expiry
// of zero days disables it; only `burnline clean --days 0` deletes
// everything.
func (p *project) startupSweep(idx *store.Index) {
	st := p.cfg().Storage
	if !st.EnableStartupCleanup || st.SessionExpiryDays <= 0 {
		return
	}
	sw := &retention.Sweeper{Store: p.store(), ProjectID: p.paths.ProjectID}
	if idx != nil {
		sw.Index = idx
	}
	if _, err := sw.Sweep(st.SessionExpiryDays); err != nil {
		logging.Logger.Warn("startup cleanup failed", "dir", p.paths.SessionsDir, "error", err)
	}
}

// usage records the payload's session and returns what the usage segment
// shows: the session alone, or its whole conversation.
func (p *project) usage(payload source.HookPayload, idx *store.Index) (cli.Usage, bool) {
	cfg := p.cfg()
	rec := &pipeline.Recorder{
		Store:     p.store(),
		ProjectID: p.paths.ProjectID,
		Config:    cfg,
	}
	if idx != nil {
		rec.Index = idx
	}

	record := rec.Build
	if cfg.Storage.EnableCostPersistence {
		record = rec.Record
	}
	r, err := record(payload)
	if err != nil {
		logging.Logger.Warn("recording session cost", "session_id", payload.SessionID, "error", err)
		return cli.Usage{}, false
	}

	u := cli.Usage{
		CostUSD:      r.TotalCostUSD,
		Tokens:       r.InputTokens + r.OutputTokens,
		LinesAdded:   r.LinesAdded,
		LinesRemoved: r.LinesRemoved,
		Sessions:     1,
		Estimated:    r.CostEstimated,
	}
	if cfg.Components.Usage.DisplayMode != config.DisplayConversation ||
		!cfg.Storage.EnableConversationTracking || !cfg.Storage.EnableCostPersistence {
		return u, true
	}

	conv := pipeline.LoadConversationCost(rec.Store, r.SessionID, cfg.Storage.MaxChainDepth)
	if len(conv.SessionIDs) == 0 {
		return u, true
	}
	u.CostUSD = conv.TotalCostUSD
	u.Tokens = conv.TotalTokens()
	u.LinesAdded = conv.TotalLinesAdded
	u.LinesRemoved = conv.TotalLinesRemoved
	u.Sessions = len(conv.SessionIDs)
	u.Truncated = conv.Truncated
	return u, true
}

func segmentOptions(cfg config.Config) cli.SegmentOptions {
	theme, ok := cli.ThemeByName(cfg.Theme)
	if !ok {
		logging.Logger.Debug("unknown theme, using classic", "theme", cfg.Theme)
	}
	return cli.SegmentOptions{
		Theme:            theme,
		Colors:           cfg.Style.EnableColors,
		Emoji:            cfg.Style.EnableEmoji,
		NerdFont:         cfg.Style.EnableNerdFont,
		Precision:        cfg.Components.Usage.Precision,
		ShowLinesAdded:   cfg.Components.Usage.ShowLinesAdded,
		ShowLinesRemoved: cfg.Components.Usage.ShowLinesRemoved,
	}
}
