package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/burnline/internal/cli"
	"github.com/theirongolddev/burnline/internal/logging"
	"github.com/theirongolddev/burnline/internal/model"
	"github.com/theirongolddev/burnline/internal/paths"
	"github.com/theirongolddev/burnline/internal/pipeline"
	"github.com/theirongolddev/burnline/internal/source"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Project cost ranking",
	RunE:  runProjects,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(cmd *cobra.Command, _ []string) error {
	proj, err := currentProject()
	if err != nil {
		return err
	}
	projects, err := projectTotals(proj)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(projects) == 0 {
		fmt.Fprintln(out, "\n  No sessions found.")
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle("PROJECTS"))
	fmt.Fprintln(out)

	now := time.Now()
	rows := make([][]string, 0, len(projects))
	for _, ps := range projects {
		name := ps.ProjectPath
		if name == "" {
			name = ps.ProjectID
		}
		rows = append(rows, []string{
			truncate(source.DisplayName(name), 18),
			cli.FormatNumber(int64(ps.Sessions)),
			cli.FormatTokens(ps.TotalTokens()),
			cli.FormatAge(now, ps.LastActive),
			cli.FormatCost(ps.EstimatedCost),
		})
	}

	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Headers: []string{"Project", "Sessions", "Tokens", "Last active", "Cost"},
		Rows:    rows,
	}))

	return nil
}

func projectTotals(proj *project) ([]model.ProjectStats, error) {
	if idx := proj.openIndex(); idx != nil {
		defer func() { _ = idx.Close() }()
		_, err := pipeline.SyncIndex(flagDataDir, paths.Product, idx)
		if err == nil {
			return idx.ProjectTotals()
		}
		logging.Logger.Warn("index sync failed; reading session files", "error", err)
	}
	entries, err := pipeline.LoadAll(flagDataDir, paths.Product)
	if err != nil {
		return nil, err
	}
	return pipeline.AggregateProjects(entries, time.Time{}), nil
}
