package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/burnline/internal/cli"
	"github.com/theirongolddev/burnline/internal/logging"
	"github.com/theirongolddev/burnline/internal/paths"
	"github.com/theirongolddev/burnline/internal/pipeline"
	"github.com/theirongolddev/burnline/internal/source"
	"github.com/theirongolddev/burnline/internal/store"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Stored session records, newest first",
	RunE:  runSessions,
}

var (
	sessionsLimit  int
	sessionsAll    bool
	sessionsFilter string
)

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "l", 20, "Number of sessions to show (0 for all)")
	sessionsCmd.Flags().BoolVarP(&sessionsAll, "all", "a", false, "Include every project")
	sessionsCmd.Flags().StringVar(&sessionsFilter, "filter", "", "Only projects whose id or path contains this text (implies --all)")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, _ []string) error {
	proj, err := currentProject()
	if err != nil {
		return err
	}
	all := sessionsAll || sessionsFilter != ""
	entries, err := proj.entries(all, sessionsFilter, sessionsLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "\n  No sessions found.")
		return nil
	}

	title := fmt.Sprintf("SESSIONS  %s (showing %d)", scopeLabel(proj, all, sessionsFilter), len(entries))
	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle(title))
	fmt.Fprintln(out)

	now := time.Now()
	headers := []string{"Session", "Updated", "Model", "Duration", "Tokens", "Cost", "Parent"}
	if all {
		headers = append([]string{"Project"}, headers...)
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		r := e.Record
		modelName := ""
		if r.Model != nil {
			modelName = r.Model.DisplayName
			if modelName == "" {
				modelName = r.Model.ID
			}
		}
		cost := cli.FormatCost(r.TotalCostUSD)
		if r.CostEstimated {
			cost = "~" + cost
		}
		row := []string{
			cli.ShortID(r.SessionID),
			cli.FormatAge(now, r.LastUpdateTime),
			truncate(modelName, 16),
			cli.FormatDuration(r.DurationMS),
			cli.FormatTokens(r.InputTokens + r.OutputTokens),
			cost,
			cli.ShortID(r.ParentSessionID),
		}
		if all {
			row = append([]string{truncate(projectName(e), 18)}, row...)
		}
		rows = append(rows, row)
	}

	fmt.Fprint(out, cli.RenderTable(cli.Table{Headers: headers, Rows: rows}))
	return nil
}

// entries lists records of the current project, or of every project when
// all is set, keeping only projects matching filter. The index serves the
// listing when enabled; otherwise the session files are read directly.
func (p *project) entries(all bool, filter string, limit int) ([]store.Entry, error) {
	fetch := limit
	if filter != "" {
		fetch = 0
	}
	if idx := p.openIndex(); idx != nil {
		defer func() { _ = idx.Close() }()
		if _, err := pipeline.SyncIndex(flagDataDir, paths.Product, idx); err != nil {
			logging.Logger.Warn("index sync failed; reading session files", "error", err)
		} else {
			var entries []store.Entry
			if all {
				entries, err = idx.ListAll(fetch)
			} else {
				entries, err = idx.ListProject(p.paths.ProjectID, fetch)
			}
			if err != nil {
				return nil, err
			}
			return limitEntries(pipeline.FilterByProject(entries, filter), limit), nil
		}
	}

	var entries []store.Entry
	if all {
		var err error
		if entries, err = pipeline.LoadAll(flagDataDir, paths.Product); err != nil {
			return nil, err
		}
	} else {
		recs, err := p.store().Records()
		if err != nil {
			return nil, err
		}
		for _, r := range recs {
			entries = append(entries, store.Entry{ProjectID: p.paths.ProjectID, Record: r})
		}
		pipeline.SortNewestFirst(entries)
	}
	return limitEntries(pipeline.FilterByProject(entries, filter), limit), nil
}

func limitEntries(entries []store.Entry, limit int) []store.Entry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

func scopeLabel(p *project, all bool, filter string) string {
	switch {
	case filter != "":
		return fmt.Sprintf("projects matching %q", filter)
	case all:
		return "all projects"
	}
	return p.paths.ProjectID
}

func projectName(e store.Entry) string {
	if e.Record.ProjectPath != "" {
		return source.DisplayName(e.Record.ProjectPath)
	}
	return source.DisplayName(e.ProjectID)
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
