package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/burnline/internal/retention"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete expired session records of the current project",
	Long: "Deletes records not updated for more than --days days " +
		"(default: storage.session_expiry_days). --days 0 deletes every record and needs --force.",
	RunE: runClean,
}

var (
	cleanDays  int
	cleanForce bool
)

func init() {
	cleanCmd.Flags().IntVar(&cleanDays, "days", -1, "Maximum age in days (default from config)")
	cleanCmd.Flags().BoolVarP(&cleanForce, "force", "f", false, "Allow --days 0")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, _ []string) error {
	proj, err := currentProject()
	if err != nil {
		return err
	}

	days := cleanDays
	if !cmd.Flags().Changed("days") {
		days = proj.cfg().Storage.SessionExpiryDays
		if days <= 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "  Session expiry is disabled (storage.session_expiry_days = 0); pass --days to clean.")
			return nil
		}
	}
	if days < 0 {
		return errors.New("--days must not be negative")
	}
	if days == 0 && !cleanForce {
		return errors.New("--days 0 deletes every session record; add --force to confirm")
	}

	sw := &retention.Sweeper{Store: proj.store(), ProjectID: proj.paths.ProjectID}
	if idx := proj.openIndex(); idx != nil {
		defer func() { _ = idx.Close() }()
		sw.Index = idx
	}
	n, err := sw.Sweep(days)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  Deleted %d session record(s) from %s\n", n, proj.paths.SessionsDir)
	return nil
}
