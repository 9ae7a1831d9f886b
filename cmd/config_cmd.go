package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/theirongolddev/burnline/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  runConfig,
}

var configSetCmd = &cobra.Command{
	Use:   "set key=value...",
	Short: "Set keys in one config layer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to a layer",
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config layer files",
	RunE:  runConfigPath,
}

var (
	configSources bool
	configLevel   string
	configForce   bool
)

func init() {
	configCmd.Flags().BoolVar(&configSources, "sources", false, "Show which layer set each key")
	configSetCmd.Flags().StringVar(&configLevel, "level", "user", "Layer to write: user, project or local")
	configInitCmd.Flags().StringVar(&configLevel, "level", "user", "Layer to write: user, project or local")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configSetCmd, configInitCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	proj, err := currentProject()
	if err != nil {
		return err
	}
	res := proj.resolved
	out := cmd.OutOrStdout()

	if configSources {
		fmt.Fprintln(out, "  Layers (lowest precedence first):")
		fmt.Fprintf(out, "    %-8s built-in\n", config.LevelDefault)
		for _, l := range res.Report.Layers {
			where := l.Path
			if where == "" {
				where = "command line"
			}
			fmt.Fprintf(out, "    %-8s %s\n", l.Level, where)
			for _, k := range l.Added {
				fmt.Fprintf(out, "             + %s\n", k)
			}
			for _, k := range l.Updated {
				fmt.Fprintf(out, "             ~ %s\n", k)
			}
		}
		for _, s := range res.Skipped {
			if len(s.Keys) == 0 {
				fmt.Fprintf(out, "    %-8s %s (skipped: %v)\n", s.Level, s.Path, s.Err)
				continue
			}
			for _, k := range s.Keys {
				fmt.Fprintf(out, "    %-8s %s (dropped %s: %v)\n", s.Level, s.Path, k, s.Err)
			}
		}
		fmt.Fprintln(out)
	}

	data, err := config.EncodeTree(res.Tree)
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(data))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	level, err := writableLevel(configLevel)
	if err != nil {
		return err
	}
	proj, err := currentProject()
	if err != nil {
		return err
	}
	path, err := proj.resolver.Set(level, args...)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  Updated %s config: %s\n", level, path)
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	level, err := writableLevel(configLevel)
	if err != nil {
		return err
	}
	proj, err := currentProject()
	if err != nil {
		return err
	}
	path, err := proj.resolver.LayerPath(level)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if _, err := proj.resolver.WriteLayer(level, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  Wrote default %s config: %s\n", level, path)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	proj, err := currentProject()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, level := range []config.Level{config.LevelUser, config.LevelProject, config.LevelLocal} {
		path, err := proj.resolver.LayerPath(level)
		if err != nil {
			path = "-"
		}
		fmt.Fprintf(out, "  %-8s %s\n", level, path)
	}
	fmt.Fprintf(out, "  %-8s %s\n", "sessions", proj.paths.SessionsDir)
	fmt.Fprintf(out, "  %-8s %s\n", "index", proj.paths.IndexPath)
	return nil
}

func writableLevel(s string) (config.Level, error) {
	level, err := config.ParseLevel(s)
	if err != nil {
		return 0, err
	}
	switch level {
	case config.LevelUser, config.LevelProject, config.LevelLocal:
		return level, nil
	}
	return 0, fmt.Errorf("level %q is not writable; use user, project or local", s)
}
