package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/hunk/internal/core/config"
	"github.com/hay-kot/hunk/internal/core/diffmodel"
	"github.com/hay-kot/hunk/internal/core/git"
	"github.com/hay-kot/hunk/internal/core/github"
	"github.com/hay-kot/hunk/internal/core/notify"
	"github.com/hay-kot/hunk/internal/core/review"
	"github.com/hay-kot/hunk/internal/core/source"
	"github.com/hay-kot/hunk/internal/core/viewsync"
	"github.com/hay-kot/hunk/internal/core/watch"
	"github.com/hay-kot/hunk/internal/tui"
	"github.com/hay-kot/hunk/pkg/executil"
	"github.com/hay-kot/hunk/pkg/profiler"
)

var (
	errWatchStacked = errors.New("--watch cannot be combined with --stacked")
	errWatchPR      = errors.New("--watch cannot be combined with --pr")
	errPRTarget     = errors.New("--pr cannot be combined with a revision argument")
	errStackedPR    = errors.New("--stacked cannot be combined with --pr")
)

// reviewOptions are the invocation options of a review session.
type reviewOptions struct {
	target  string
	pr      string
	files   []string
	watch   bool
	stacked bool
	focus   string
	theme   string
	imports string
}

func (o reviewOptions) validate() error {
	switch {
	case o.watch && o.stacked:
		return errWatchStacked
	case o.watch && o.pr != "":
		return errWatchPR
	case o.stacked && o.pr != "":
		return errStackedPR
	case o.pr != "" && o.target != "":
		return errPRTarget
	}
	return nil
}

type ReviewCmd struct {
	flags *Flags
	opts  reviewOptions
}

// NewReviewCmd creates the review command that runs when hunk is invoked
// without a subcommand.
func NewReviewCmd(flags *Flags) *ReviewCmd {
	return &ReviewCmd{flags: flags}
}

// Flags returns the review flags for registration on the root command.
func (cmd *ReviewCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "pr",
			Usage:       "review a GitHub pull request (number, #number or URL)",
			Destination: &cmd.opts.pr,
		},
		&cli.StringSliceFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "only show files matching a glob (repeatable)",
			Destination: &cmd.opts.files,
		},
		&cli.BoolFlag{
			Name:        "watch",
			Aliases:     []string{"w"},
			Usage:       "rebuild the diff when files in the repository change",
			Destination: &cmd.opts.watch,
		},
		&cli.BoolFlag{
			Name:        "stacked",
			Usage:       "review a commit range one commit at a time",
			Destination: &cmd.opts.stacked,
		},
		&cli.StringFlag{
			Name:        "focus",
			Usage:       "open this file first",
			Destination: &cmd.opts.focus,
		},
		&cli.StringFlag{
			Name:        "theme",
			Aliases:     []string{"t"},
			Usage:       "color theme (see 'hunk themes')",
			Destination: &cmd.opts.theme,
		},
		&cli.StringFlag{
			Name:        "import",
			Usage:       "load annotations from a JSON or YAML export",
			TakesFile:   true,
			Destination: &cmd.opts.imports,
		},
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
			Sources:     cli.EnvVars("HUNK_PROFILER_PORT"),
			Destination: &cmd.flags.ProfilerPort,
		},
	}
}

// Run opens a review session. Exported for use as default command.
func (cmd *ReviewCmd) Run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() > 1 {
		return fmt.Errorf("expected at most one revision, got %d. Run 'hunk --help' for usage", c.Args().Len())
	}
	cmd.opts.target = c.Args().First()
	return cmd.run(ctx)
}

func (cmd *ReviewCmd) run(ctx context.Context) error {
	if err := cmd.opts.validate(); err != nil {
		return err
	}
	cfg := cmd.flags.Config

	// Fail before any git work when there is no terminal to draw on.
	ses, err := tui.NewSession(os.Stdin, os.Stdout, tui.SessionOptions{
		Theme:       cmd.opts.theme,
		ConfigTheme: cfg.Theme,
	})
	if err != nil {
		return err
	}

	if cmd.flags.ProfilerPort > 0 {
		prof := profiler.New(cmd.flags.ProfilerPort, log.Logger)
		if err := prof.Start(ctx); err != nil {
			return fmt.Errorf("start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := prof.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
	}

	include, err := source.NewFilter(cmd.opts.files)
	if err != nil {
		return err
	}
	build := diffmodel.Options{AnchorWindow: cfg.Anchor.Window, Include: include}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("working directory: %w", err)
	}
	exec := &executil.RealExecutor{}

	opts := tui.Options{
		OpenURL: tui.SystemOpener(exec),
		Session: ses,
		Config:  cfg,
		Build:   build,
		Focus:   cmd.opts.focus,
		Policy: viewsync.Policy{
			MaxAttempts: cfg.Sync.MaxAttempts,
			BaseDelay:   cfg.Sync.BaseDelay,
			Timeout:     cfg.Sync.Timeout,
		},
	}

	var root string
	if cmd.opts.pr != "" {
		number, err := github.ParsePRInput(cmd.opts.pr)
		if err != nil {
			return err
		}
		client := github.NewClient(cfg.GhPath, cwd, exec)
		src := source.NewPRSource(client, number)
		pr, err := src.Resolve(ctx)
		if err != nil {
			return err
		}
		opts.Source = src
		opts.Remote = github.NewViewedRemote(client, pr)
		opts.PRURL = pr.URL
		opts.Root = cwd
	} else {
		target, err := git.ParseTarget(cmd.opts.target)
		if err != nil {
			return err
		}
		g := git.NewExecutor(cfg.GitPath, exec)
		root, err = g.Root(ctx, cwd)
		if err != nil {
			return err
		}
		opts.Source = source.NewGitSource(g, root, target)
		opts.Root = root
	}
	opts.Target = opts.Source.Describe()

	stack, notices, err := loadStack(ctx, opts.Source, cmd.opts.stacked, build, cfg)
	if err != nil {
		return err
	}
	opts.Stack = stack

	if cmd.opts.imports != "" {
		n, err := importAnnotations(cmd.opts.imports, stack.Contexts()[0])
		if err != nil {
			return err
		}
		notices = append(notices, n...)
	}

	if cmd.opts.watch {
		w, n := startWatcher(root, cfg)
		notices = append(notices, n...)
		if w != nil {
			defer func() { _ = w.Close() }()
			opts.Watcher = w
		}
	}
	opts.Notices = notices

	log.Info().
		Str("target", opts.Target).
		Int("commits", stack.Len()).
		Bool("watch", opts.Watcher != nil).
		Msg("starting review")

	p := tea.NewProgram(tui.New(opts), tea.WithInput(ses.In), tea.WithOutput(ses.Out))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	if m, ok := final.(tui.Model); ok {
		for _, n := range m.Notices() {
			log.Debug().Str("level", string(n.Level)).Msg(n.Message)
		}
	}
	return nil
}

// startWatcher watches the repository at root. A watcher that cannot start
// turns watch mode off with a warning; the review still opens.
func startWatcher(root string, cfg *config.Config) (*watch.Watcher, []notify.Notification) {
	w, err := watch.New(root, watch.Options{Debounce: cfg.Watch.Debounce, Ignore: cfg.Watch.Ignore})
	if err != nil {
		log.Warn().Err(err).Str("root", root).Msg("watch mode disabled")
		return nil, []notify.Notification{{
			Level:   notify.LevelWarning,
			Message: fmt.Sprintf("Watch mode disabled: %v", err),
		}}
	}
	return w, nil
}

// loadStack fetches and builds the diff. Stacked mode builds one context per
// commit of the range, oldest first.
func loadStack(ctx context.Context, src source.Source, stacked bool, build diffmodel.Options, cfg *config.Config) (*review.Stack, []notify.Notification, error) {
	var notices []notify.Notification
	newContext := func(raw string, commit review.Commit) *review.Context {
		m, warnings := diffmodel.Build(raw, build)
		for _, w := range warnings {
			notices = append(notices, notify.Notification{Level: notify.LevelWarning, Message: w.Error()})
		}
		return review.NewContext(m, review.ContextOptions{
			Commit:        commit,
			MinOverlap:    cfg.Anchor.MinOverlap,
			SidebarHidden: !cfg.Sidebar.Visible,
		})
	}

	if !stacked {
		snap, err := src.Load(ctx)
		if err != nil {
			return nil, nil, err
		}
		return review.NewSnapshot(newContext(snap.Raw, review.Commit{})), notices, nil
	}

	stacker, ok := src.(source.Stacker)
	if !ok {
		return nil, nil, source.ErrStackNeedsRange
	}
	commits, err := stacker.LoadCommits(ctx)
	if err != nil {
		return nil, nil, err
	}

	contexts := make([]*review.Context, 0, len(commits))
	for _, cs := range commits {
		contexts = append(contexts, newContext(cs.Raw, review.Commit{SHA: cs.Commit.SHA, Subject: cs.Commit.Subject}))
	}
	stack, err := review.NewStack(contexts)
	if err != nil {
		return nil, nil, err
	}
	return stack, notices, nil
}

// importAnnotations loads an export into c and anchors it against the
// current diff. Annotations that match nothing are kept as orphans.
func importAnnotations(path string, c *review.Context) ([]notify.Notification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}

	n, err := c.Annotations.Import(data)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	orphaned := c.Annotations.Reanchor(c.Model())

	notices := []notify.Notification{{
		Level:   notify.LevelInfo,
		Message: fmt.Sprintf("Imported %d annotation(s) from %s", n, path),
	}}
	if len(orphaned) > 0 {
		notices = append(notices, notify.Notification{
			Level:   notify.LevelWarning,
			Message: fmt.Sprintf("%d imported annotation(s) do not match the diff", len(orphaned)),
		})
	}
	return notices, nil
}
