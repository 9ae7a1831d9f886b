package cmd

import (
	"fmt"

	"github.com/theirongolddev/burnline/internal/cli"
	"github.com/theirongolddev/burnline/internal/pipeline"

	"github.com/spf13/cobra"
)

var conversationCmd = &cobra.Command{
	Use:   "conversation <session-id>",
	Short: "Cost of a session and every session it continues",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversation,
}

func init() {
	rootCmd.AddCommand(conversationCmd)
}

func runConversation(cmd *cobra.Command, args []string) error {
	proj, err := currentProject()
	if err != nil {
		return err
	}
	st := proj.store()
	conv := pipeline.LoadConversationCost(st, args[0], proj.cfg().Storage.MaxChainDepth)

	out := cmd.OutOrStdout()
	if len(conv.SessionIDs) == 0 {
		fmt.Fprintf(out, "\n  No stored session %q in %s.\n", args[0], proj.paths.ProjectID)
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle(fmt.Sprintf("CONVERSATION  %s", cli.ShortID(args[0]))))
	fmt.Fprintln(out)

	rows := make([][]string, 0, len(conv.SessionIDs)+2)
	for _, id := range conv.SessionIDs {
		r, ok := st.Load(id)
		if !ok {
			continue
		}
		rows = append(rows, []string{
			id,
			r.StartTime.Local().Format("Jan 02 15:04"),
			cli.FormatTokens(r.InputTokens + r.OutputTokens),
			fmt.Sprintf("+%d -%d", r.LinesAdded, r.LinesRemoved),
			cli.FormatCost(r.TotalCostUSD),
		})
	}
	rows = append(rows, []string{"---"}, []string{
		fmt.Sprintf("%d sessions", len(conv.SessionIDs)),
		"",
		cli.FormatTokens(conv.TotalTokens()),
		fmt.Sprintf("+%d -%d", conv.TotalLinesAdded, conv.TotalLinesRemoved),
		cli.FormatCostPrecision(conv.TotalCostUSD, proj.cfg().Components.Usage.Precision),
	})

	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Headers: []string{"Session", "Started", "Tokens", "Lines", "Cost"},
		Rows:    rows,
	}))
	if conv.Truncated {
		fmt.Fprintf(out, "  Stopped after %d sessions; older parents not counted.\n", len(conv.SessionIDs))
	}
	return nil
}
