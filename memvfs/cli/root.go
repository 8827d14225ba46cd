package cli

import (
	"errors"
	"fmt"

	internal "github.com/ZanzyTHEbar/memvfs/memvfs"
	"github.com/ZanzyTHEbar/memvfs/memvfs/config"
	"github.com/ZanzyTHEbar/memvfs/memvfs/shell"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	debug      bool
	commands   []string
}

// newRootCmd builds the command tree. Flags are bound to a fresh options value
// each time so repeated executions do not share state.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "memvfs",
		Short: "In-memory virtual file system shell",
		Long: `memvfs keeps a directory tree in memory and lets you work with it
through a small shell: md, mf, cd, ls, find, grep, cat and pwd.

Nothing is written to disk; the tree is gone when the session ends.

Run without arguments for an interactive session, or pass commands with -c
to run them in order and exit.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoot(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a config file (default: search ./config.yaml, ~/.config/memvfs)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Log at debug level")
	cmd.Flags().StringArrayVarP(&opts.commands, "command", "c", nil, "Run a shell command and exit (repeatable)")
	return cmd
}

// Execute runs the root command
func Execute() error {
	return newRootCmd().Execute()
}

func runRoot(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Log.Level
	if opts.debug || cfg.Shell.Debug {
		level = "debug"
	}
	logger := internal.NewLogger(cmd.ErrOrStderr(), level, cfg.Log.Console)

	sh, tree, err := shell.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		m := tree.Metrics()
		logger.Debug().
			Int64("nodes", m.TotalNodes).
			Int64("directories", m.Directories).
			Int64("files", m.Files).
			Int("max_depth", m.MaxDepth).
			Interface("operations", m.OperationCounts).
			Msg("session finished")
	}()

	term := newTerminal(cmd.OutOrStdout(), cmd.ErrOrStderr())

	if len(opts.commands) == 0 {
		return sh.Run(cmd.Context(), cmd.InOrStdin(), term)
	}

	for _, c := range opts.commands {
		result, err := sh.Do(c)
		if errors.Is(err, shell.ErrExit) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", c, err)
		}
		if result != "" {
			term.Output(result)
		}
	}
	return nil
}
