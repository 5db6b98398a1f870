package tui

import (
	"errors"
	"fmt"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/hay-kot/hunk/internal/core/watch"
)

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	// Window
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	// Watch mode
	case watchEventMsg:
		return m.handleWatchEvent(msg)
	case watchErrorMsg:
		return m.handleWatchError(msg)
	case rebuildMsg:
		return m.handleRebuild(msg)

	// Viewed sync
	case initialViewedMsg:
		return m.handleInitialViewed(msg)
	case syncResultMsg:
		return m.handleSyncResult(msg)

	// Action results
	case exportDoneMsg:
		return m.handleExportDone(msg)
	case editorDoneMsg:
		return m.handleEditorDone(msg)
	case browserDoneMsg:
		return m.handleBrowserDone(msg)

	// Ticks
	case toastTickMsg:
		return m.handleToastTick(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	// Input
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// --- Window ---

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.layout()
	return m, nil
}

// --- Keys ---

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeAnnotationEdit:
		return m.handleEditorKey(msg)
	case ModeConfirm:
		return m.handleConfirmKey(msg)
	case ModeHelp:
		return m.handleHelpKey(msg)
	case ModeAnnotationList:
		return m.handleListKey(msg)
	case ModeSearch:
		return m.handleSearchKey(msg)
	default:
		return m.handleNormalKey(msg)
	}
}

func (m Model) handleNormalKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.toasts.Dismiss()
		return m.clearSearch(), nil
	}
	return m.dispatchKey(msg)
}

func (m Model) dispatchKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	action, ok := m.keys.Action(msg)
	if !ok {
		return m, nil
	}
	return m.Dispatch(action)
}

func (m Model) handleEditorKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)

	switch {
	case m.editor.Saved():
		return m.finishEdit()
	case m.editor.Cancelled():
		m.mode = m.editing.returnTo
		m.editing = editTarget{}
		return m, nil
	}
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	m.confirm, _ = m.confirm.Update(msg)

	switch {
	case m.confirm.Confirmed():
		fn := m.onConfirm
		m.onConfirm = nil
		m.mode = ModeNormal
		if fn == nil {
			return m, nil
		}
		return fn(m)
	case m.confirm.Cancelled():
		m.onConfirm = nil
		m.mode = ModeNormal
	}
	return m, nil
}

func (m Model) handleHelpKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		return m.closeOverlay()
	}
	return m.dispatchKey(msg)
}

func (m Model) handleListKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.closeOverlay()
	case "enter":
		return m.jumpToSelected()
	case "e":
		return m.editSelected()
	case "d", "x":
		return m.deleteSelected()
	}

	if action, ok := m.keys.Action(msg); ok {
		return m.Dispatch(action)
	}
	return m, m.list.Update(msg)
}

// --- Watch mode ---

func (m Model) handleWatchEvent(msg watchEventMsg) (tea.Model, tea.Cmd) {
	m.log.Debug().Strs("paths", msg.event.Paths).Msg("change detected, rebuilding")

	m, cmd := m.startRebuild()
	return m, tea.Batch(cmd, waitForChange(m.ctx, m.watcher))
}

func (m Model) handleWatchError(msg watchErrorMsg) (tea.Model, tea.Cmd) {
	if isCancelled(msg.err) {
		return m, nil
	}

	var werr *watch.WatchError
	if errors.As(msg.err, &werr) {
		m.log.Error().Err(werr).Str("op", werr.Op).Msg("watcher failed")
	}
	if err := m.watcher.Close(); err != nil {
		m.log.Debug().Err(err).Msg("close watcher")
	}
	m.watcher = nil
	return m, m.notify(m.notices.Warnf("Watch mode disabled: %v", msg.err))
}

// handleRebuild swaps in a rebuilt model and reconciles the cursor,
// annotations and viewed set against it. Results of superseded rebuilds
// are dropped.
func (m Model) handleRebuild(msg rebuildMsg) (tea.Model, tea.Cmd) {
	if msg.revision != m.revision {
		m.log.Debug().Uint64("revision", msg.revision).Uint64("latest", m.revision).Msg("dropping stale rebuild")
		return m, nil
	}
	m.loading = false

	if msg.err != nil {
		return m, m.notify(m.notices.Errorf("Reload failed: %v", msg.err))
	}

	c := m.active()
	report := c.Rebuild(msg.model)
	if m.sync != nil {
		m.sync.Invalidate()
	}
	m.tree.SetModel(msg.model)

	m.log.Debug().
		Uint64("generation", report.Generation).
		Int("files", msg.model.Len()).
		Int("orphaned", len(report.Orphaned)).
		Strs("new_files", report.NewFiles).
		Msg("model rebuilt")

	var cmds []tea.Cmd
	for _, w := range msg.warnings {
		cmds = append(cmds, m.notify(m.notices.Warnf("%v", w)))
	}
	switch n := len(report.Orphaned); n {
	case 0:
	case 1:
		cmds = append(cmds, m.notify(m.notices.Warnf("1 annotation no longer matches the diff")))
	default:
		cmds = append(cmds, m.notify(m.notices.Warnf("%d annotations no longer match the diff", n)))
	}
	if m.mode == ModeAnnotationList {
		m, _ = m.refreshList()
	}
	return m, tea.Batch(cmds...)
}

// --- Viewed sync ---

func (m Model) handleInitialViewed(msg initialViewedMsg) (tea.Model, tea.Cmd) {
	if m.sync == nil {
		return m, nil
	}
	c := m.active()
	jobs, serr := m.sync.ApplyInitial(c.Viewed, c.Model().Paths(), msg.result)

	cmds := make([]tea.Cmd, 0, len(jobs)+1)
	if serr != nil {
		cmds = append(cmds, m.notify(m.notices.Warnf("Could not load viewed files: %v", serr.Err)))
	}
	for _, job := range jobs {
		cmds = append(cmds, runSyncJob(m.ctx, job, m.remote, m.policy))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleSyncResult(msg syncResultMsg) (tea.Model, tea.Cmd) {
	if m.sync == nil {
		return m, nil
	}
	if serr := m.sync.Apply(m.active().Viewed, msg.result); serr != nil {
		m.log.Warn().Err(serr).Str("path", serr.Path).Int("attempts", serr.Attempts).Msg("viewed sync failed")
		return m, m.notify(m.notices.Warnf("Could not sync %s, reverted: %v", serr.Path, serr.Err))
	}
	return m, nil
}

// --- Export ---

func (m Model) handleExportDone(msg exportDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.notify(m.notices.Errorf("Export failed: %v", msg.err))
	}
	m.exported = msg.changes
	return m, m.notify(m.notices.Infof("%s written to %s", pluralize(msg.count, "annotation"), msg.path))
}

// --- External programs ---

// handleEditorDone reloads after an edit unless the watcher will pick the
// change up anyway.
func (m Model) handleEditorDone(msg editorDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.notify(m.notices.Errorf("Editor failed: %v", msg.err))
	}
	m.log.Debug().Str("path", msg.path).Msg("editor closed")
	if m.watcher != nil || m.remote != nil || m.src == nil || m.stack.Stacked() {
		return m, nil
	}
	return m.startRebuild()
}

func (m Model) handleBrowserDone(msg browserDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.notify(m.notices.Errorf("Could not open browser: %v", msg.err))
	}
	m.log.Debug().Str("url", msg.url).Msg("opened browser")
	return m, nil
}

// --- Toasts ---

func (m Model) handleToastTick(_ toastTickMsg) (tea.Model, tea.Cmd) {
	m.toasts.Tick(toastTickInterval)
	if m.toasts.HasToasts() {
		return m, scheduleToastTick()
	}
	m.toasts.SetTicking(false)
	return m, nil
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
