package commands

import (
	"context"

	"github.com/urfave/cli/v3"
)

// NewApp builds the root command with its global flags and subcommands.
// Hooks and the version are left to the caller.
func NewApp(flags *Flags) *cli.Command {
	app := &cli.Command{
		Name:      "hunk",
		Usage:     "Review diffs in the terminal",
		UsageText: "hunk [global options] [revision | A..B | A...B] [command options]",
		Description: `Hunk opens an interactive review of a diff: the working tree by default,
a single commit, a commit range or a GitHub pull request (--pr).

Move between hunks and files, mark files viewed, and annotate hunks or lines.
Annotations are exported as Markdown, YAML or JSON for whoever makes the fix.

Run 'hunk themes' to list color themes.
Run 'hunk config show' to see the effective configuration.`,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("HUNK_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/hunk.log)",
				Sources:     cli.EnvVars("HUNK_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("HUNK_CONFIG"),
				Value:       DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("HUNK_DATA_DIR"),
				Value:       DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
	}

	reviewCmd := NewReviewCmd(flags)

	app = NewThemesCmd(flags).Register(app)
	app = NewConfigCmd(flags).Register(app)
	app = NewExportFormatCmd(flags).Register(app)

	// Review flags live on the root command
	app.Flags = append(app.Flags, reviewCmd.Flags()...)

	// Review is the default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		return reviewCmd.Run(ctx, c)
	}

	return app
}
