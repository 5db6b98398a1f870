// Package tui implements the interactive review session.
package tui

import (
	"context"
	"os"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/hay-kot/hunk/internal/core/config"
	"github.com/hay-kot/hunk/internal/core/diffmodel"
	"github.com/hay-kot/hunk/internal/core/logging"
	"github.com/hay-kot/hunk/internal/core/notify"
	"github.com/hay-kot/hunk/internal/core/review"
	"github.com/hay-kot/hunk/internal/core/source"
	"github.com/hay-kot/hunk/internal/core/styles"
	"github.com/hay-kot/hunk/internal/core/viewsync"
	"github.com/hay-kot/hunk/internal/tui/components"
	"github.com/hay-kot/hunk/internal/tui/diff"
	"github.com/hay-kot/hunk/pkg/executil"
)

const (
	headerHeight = 1
	statusHeight = 1
)

// Options configures a review session.
type Options struct {
	Session *Session
	Config  *config.Config
	Stack   *review.Stack

	// Target describes what is being reviewed. It titles exports.
	Target string

	// Source and Watcher enable watch mode. Build is the template for
	// rebuild options; its Revision is managed by the model.
	Source  source.Source
	Watcher Watcher
	Build   diffmodel.Options

	// Remote enables viewed-status sync with a pull request.
	Remote viewsync.Remote
	Policy viewsync.Policy

	// Focus is the path of the file to open first.
	Focus string

	// Root is the directory file paths are relative to when opening them
	// in an editor.
	Root string
	// PRURL is the pull request being reviewed, if any. OpenURL launches
	// the browser for it; nil uses SystemOpener.
	PRURL   string
	OpenURL URLOpener
	// Getenv looks up the editor variables; nil uses os.Getenv.
	Getenv func(string) string

	// Notices are startup warnings shown once the session opens.
	Notices []notify.Notification
}

// Model is the bubbletea model of a review session. Its state machine has
// one mode at a time; each mode has a key handler and a dispatch table of
// named actions.
type Model struct {
	ses  *Session
	st   styles.Styles
	cfg  *config.Config
	keys KeyMap
	log  zerolog.Logger

	stack  *review.Stack
	target string

	src      source.Source
	watcher  Watcher
	build    diffmodel.Options
	revision uint64
	loading  bool

	remote viewsync.Remote
	sync   *viewsync.Synchronizer
	policy viewsync.Policy

	root    string
	prURL   string
	openURL URLOpener
	getenv  func(string) string

	ctx    context.Context
	cancel context.CancelFunc

	mode          Mode
	width, height int

	tree   *diff.FileTree
	viewer *diff.Viewer

	editor    components.AnnotationEditor
	editing   editTarget
	list      *components.AnnotationList
	help      *components.HelpDialog
	confirm   components.ConfirmModal
	onConfirm actionFunc

	// query is the confirmed search; match is the index of the focused
	// match among matches.
	search  textinput.Model
	query   string
	match   int
	matches int

	notices   *notify.Log
	toasts    *ToastController
	toastView *ToastView
	spinner   spinner.Model

	// changes counts annotation edits; exported is its value at the last
	// successful export.
	changes  int
	exported int
	quitting bool
}

// New creates a review model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		def := config.DefaultConfig()
		def.Keybindings = config.DefaultKeybindings()
		cfg = &def
	}
	ses := opts.Session

	hlStyle := cfg.Highlight.Style
	if hlStyle == "" {
		hlStyle = ses.Theme.ChromaStyle
	}
	hl := diff.NewHighlighter(hlStyle, cfg.Highlight.Enabled && ses.Colors())

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		ses:       ses,
		st:        ses.Styles,
		cfg:       cfg,
		keys:      NewKeyMap(cfg.Keybindings),
		log:       logging.Component("tui"),
		stack:     opts.Stack,
		target:    opts.Target,
		src:       opts.Source,
		watcher:   opts.Watcher,
		build:     opts.Build,
		revision:  opts.Build.Revision,
		remote:    opts.Remote,
		policy:    opts.Policy,
		root:      opts.Root,
		prURL:     opts.PRURL,
		openURL:   opts.OpenURL,
		getenv:    opts.Getenv,
		ctx:       ctx,
		cancel:    cancel,
		mode:      ModeNormal,
		tree:      diff.NewFileTree(opts.Stack.Active().Model()),
		viewer:    diff.NewViewer(hl),
		notices:   notify.NewLog(),
		toasts:    NewToastController(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
	m.toastView = NewToastView(m.toasts)
	m.search = newSearchInput(m.st)
	if m.openURL == nil {
		m.openURL = SystemOpener(&executil.RealExecutor{})
	}
	if m.getenv == nil {
		m.getenv = os.Getenv
	}
	if opts.Remote != nil {
		m.sync = viewsync.New()
	}
	for _, n := range opts.Notices {
		m.toasts.Push(m.notices.Add(n.Level, n.Message))
	}
	for _, w := range ses.Warnings {
		m.toasts.Push(m.notices.Warnf("%s", w.String()))
	}

	if opts.Focus != "" && !opts.Stack.Active().Nav.JumpToFile(opts.Focus) {
		m.toasts.Push(m.notices.Warnf("%s is not in the diff, showing the first file", opts.Focus))
	}

	return m
}

// Mode returns the current mode.
func (m Model) Mode() Mode { return m.mode }

// Notices returns every notice raised during the session.
func (m Model) Notices() []notify.Notification { return m.notices.List() }

// Init starts the workers.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.toasts.HasToasts() {
		m.toasts.SetTicking(true)
		cmds = append(cmds, scheduleToastTick())
	}
	if m.watcher != nil {
		cmds = append(cmds, waitForChange(m.ctx, m.watcher))
	}
	if m.sync != nil {
		cmds = append(cmds, fetchInitialViewed(m.ctx, m.remote, m.policy))
	}
	return tea.Batch(cmds...)
}

func (m Model) active() *review.Context {
	return m.stack.Active()
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	m.cancel()
	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			m.log.Debug().Err(err).Msg("close watcher")
		}
	}
	return m, tea.Quit
}

// notify records a notice, shows it as a toast and starts the toast timer
// if it is not running.
func (m Model) notify(n notify.Notification) tea.Cmd {
	m.log.Debug().Str("level", string(n.Level)).Msg(n.Message)
	m.toasts.Push(n)
	if m.toasts.Ticking() {
		return nil
	}
	m.toasts.SetTicking(true)
	return scheduleToastTick()
}

// unexported reports whether there are annotations that were changed since
// the last export.
func (m Model) unexported() bool {
	return m.stack.AnnotationCount() > 0 && m.changes != m.exported
}

// layout sizes the sidebar and viewer for the window and sidebar state.
func (m Model) layout() {
	body := max(m.height-headerHeight-statusHeight, 1)
	sidebar := m.sidebarWidth()

	if sidebar > 0 {
		// Border and padding take two columns.
		m.tree.SetSize(sidebar-2, body)
	}
	m.viewer.SetSize(max(m.width-sidebar, 1), body)
}

func (m Model) sidebarWidth() int {
	if !m.active().Nav.SidebarVisible() {
		return 0
	}
	w := m.cfg.Sidebar.Width
	if w <= 0 {
		w = config.DefaultConfig().Sidebar.Width
	}
	// Keep room for the diff on narrow terminals.
	if m.width > 0 {
		w = min(w, m.width/2)
	}
	return w
}
