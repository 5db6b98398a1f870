package tui

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/hay-kot/hunk/internal/core/annotation"
	"github.com/hay-kot/hunk/internal/core/config"
	"github.com/hay-kot/hunk/internal/core/diffmodel"
	"github.com/hay-kot/hunk/internal/core/nav"
	"github.com/hay-kot/hunk/internal/core/notify"
	"github.com/hay-kot/hunk/internal/core/review"
	"github.com/hay-kot/hunk/internal/tui/components"
)

type actionFunc func(m Model) (Model, tea.Cmd)

// dispatchTables maps each mode's named actions to their handlers. Actions
// missing from a mode's table are ignored in that mode.
var dispatchTables = map[Mode]map[string]actionFunc{
	ModeNormal: {
		config.ActionMoveDown:          Model.moveDown,
		config.ActionMoveUp:            Model.moveUp,
		config.ActionNextHunk:          Model.nextHunk,
		config.ActionPrevHunk:          Model.prevHunk,
		config.ActionNextFile:          Model.nextFile,
		config.ActionPrevFile:          Model.prevFile,
		config.ActionToggleSidebar:     Model.toggleSidebar,
		config.ActionMarkViewed:        Model.markViewed,
		config.ActionAddAnnotation:     Model.addAnnotation,
		config.ActionListAnnotations:   Model.listAnnotations,
		config.ActionNextCommit:        Model.nextCommit,
		config.ActionPrevCommit:        Model.prevCommit,
		config.ActionExportAnnotations: Model.exportAnnotations,
		config.ActionReload:            Model.reload,
		config.ActionSearch:            Model.startSearch,
		config.ActionSearchNext:        Model.searchNext,
		config.ActionSearchPrev:        Model.searchPrev,
		config.ActionOpenEditor:        Model.openInEditor,
		config.ActionOpenBrowser:       Model.openInBrowser,
		config.ActionHelp:              Model.showHelp,
		config.ActionQuit:              Model.requestQuit,
	},
	ModeHelp: {
		config.ActionHelp:     Model.closeOverlay,
		config.ActionQuit:     Model.closeOverlay,
		config.ActionMoveDown: Model.helpScrollDown,
		config.ActionMoveUp:   Model.helpScrollUp,
	},
	ModeAnnotationList: {
		config.ActionListAnnotations: Model.closeOverlay,
		config.ActionQuit:            Model.closeOverlay,
		config.ActionMoveDown:        Model.listDown,
		config.ActionMoveUp:          Model.listUp,
		config.ActionAddAnnotation:   Model.editSelected,
	},
	ModeAnnotationEdit: {},
	ModeConfirm:        {},
	ModeSearch:         {},
}

// Dispatch runs the named action in the current mode.
func (m Model) Dispatch(action string) (Model, tea.Cmd) {
	fn, ok := dispatchTables[m.mode][action]
	if !ok {
		m.log.Debug().Str("action", action).Str("mode", m.mode.String()).Msg("action not available")
		return m, nil
	}
	return fn(m)
}

// move applies a navigation step and scrolls the viewer back to the top
// when the focused file changed.
func (m Model) move(step func(s *nav.State) bool) (Model, tea.Cmd) {
	s := m.active().Nav
	before := s.Position().File
	if step(s) && s.Position().File != before {
		m.viewer.Reset()
	}
	return m, nil
}

func (m Model) moveDown() (Model, tea.Cmd) { return m.move((*nav.State).NextLine) }
func (m Model) moveUp() (Model, tea.Cmd)   { return m.move((*nav.State).PrevLine) }
func (m Model) nextHunk() (Model, tea.Cmd) { return m.move((*nav.State).NextHunk) }
func (m Model) prevHunk() (Model, tea.Cmd) { return m.move((*nav.State).PrevHunk) }
func (m Model) nextFile() (Model, tea.Cmd) { return m.move((*nav.State).NextFile) }
func (m Model) prevFile() (Model, tea.Cmd) { return m.move((*nav.State).PrevFile) }

func (m Model) toggleSidebar() (Model, tea.Cmd) {
	m.active().Nav.ToggleSidebar()
	m.layout()
	return m, nil
}

// markViewed flips the viewed flag of the focused file. For pull requests
// the change is applied at once and pushed to the remote on a worker.
func (m Model) markViewed() (Model, tea.Cmd) {
	c := m.active()
	f := c.Nav.CurrentFile()
	if f == nil {
		return m, nil
	}

	if m.sync == nil {
		c.Viewed.Toggle(f.Path)
		return m, nil
	}

	job := m.sync.Toggle(c.Viewed, f.Path)
	if job == nil {
		return m, nil
	}
	return m, runSyncJob(m.ctx, job, m.remote, m.policy)
}

// addAnnotation opens the editor for the hunk or line under the cursor. An
// existing annotation at the same spot is edited instead.
func (m Model) addAnnotation() (Model, tea.Cmd) {
	c := m.active()
	f, h := c.Nav.CurrentFile(), c.Nav.CurrentHunk()
	if f == nil || h == nil {
		return m, m.notify(m.notices.Infof("Nothing to annotate here"))
	}

	line := c.Nav.Position().Line
	anchor := annotation.AnchorAt(f, h, line)
	label := describeAnchor(f, h, line)

	for _, a := range c.Annotations.ForHunk(f.Path, h.Anchor) {
		if sameLine(a.Anchor.LineOffset, anchor.LineOffset) {
			return m.openEditor(editTarget{id: a.ID, returnTo: ModeNormal}, "Edit annotation", label, a.Text)
		}
	}
	return m.openEditor(editTarget{anchor: anchor, returnTo: ModeNormal}, "Add annotation", label, "")
}

func (m Model) openEditor(target editTarget, title, label, text string) (Model, tea.Cmd) {
	m.editing = target
	m.editor = components.NewAnnotationEditor(m.st, title, label, text, m.width)
	m.mode = ModeAnnotationEdit
	return m, m.editor.Init()
}

// finishEdit applies the editor's result. Saving empty text on an existing
// annotation deletes it.
func (m Model) finishEdit() (Model, tea.Cmd) {
	store := m.active().Annotations
	text := m.editor.Value()
	target := m.editing
	m.editing = editTarget{}

	var (
		n   notify.Notification
		err error
	)
	switch {
	case target.id == "" && text == "":
		m.mode = target.returnTo
		return m.refreshList()
	case target.id == "":
		// A rebuild may have landed while the editor was open.
		var id string
		id, err = store.AddTo(m.active().Model(), target.anchor, text)
		if a, ok := store.Get(id); ok && a.Orphaned {
			n = m.notices.Warnf("Annotation added, but its hunk is no longer in the diff")
		} else {
			n = m.notices.Infof("Annotation added")
		}
	case text == "":
		err = store.Delete(target.id)
		n = m.notices.Infof("Annotation deleted")
	default:
		err = store.Edit(target.id, text)
		n = m.notices.Infof("Annotation updated")
	}

	m.mode = target.returnTo
	if err != nil {
		return m, m.notify(m.notices.Errorf("Annotation not saved: %v", err))
	}
	m.changes++
	m, cmd := m.refreshList()
	return m, tea.Batch(cmd, m.notify(n))
}

// refreshList rebuilds the annotation list when it is the active mode.
func (m Model) refreshList() (Model, tea.Cmd) {
	if m.mode == ModeAnnotationList {
		m.list = components.NewAnnotationList(m.st, m.listEntries(), m.width, m.height)
	}
	return m, nil
}

func (m Model) listAnnotations() (Model, tea.Cmd) {
	m.list = components.NewAnnotationList(m.st, m.listEntries(), m.width, m.height)
	m.mode = ModeAnnotationList
	return m, nil
}

func (m Model) listEntries() []components.ListEntry {
	c := m.active()
	model := c.Model()
	all := c.Annotations.List()

	entries := make([]components.ListEntry, 0, len(all))
	for _, a := range all {
		entries = append(entries, components.ListEntry{
			Annotation: a,
			Location:   locationLabel(model, c.Annotations, a),
		})
	}
	return entries
}

func (m Model) listDown() (Model, tea.Cmd) {
	m.list.CursorDown()
	return m, nil
}

func (m Model) listUp() (Model, tea.Cmd) {
	m.list.CursorUp()
	return m, nil
}

// jumpToSelected moves the cursor to the selected annotation and closes
// the list.
func (m Model) jumpToSelected() (Model, tea.Cmd) {
	e, ok := m.list.Selected()
	if !ok {
		return m, nil
	}
	c := m.active()
	loc, err := c.Annotations.Resolve(c.Model(), e.Annotation)
	if err != nil {
		return m, m.notify(m.notices.Warnf("%s no longer matches the diff", e.Location))
	}

	before := c.Nav.Position().File
	if c.Nav.JumpTo(nav.Position{File: loc.File, Hunk: loc.Hunk, Line: loc.Line}) && loc.File != before {
		m.viewer.Reset()
	}
	m.mode = ModeNormal
	return m, nil
}

func (m Model) editSelected() (Model, tea.Cmd) {
	e, ok := m.list.Selected()
	if !ok {
		return m, nil
	}
	return m.openEditor(editTarget{id: e.Annotation.ID, returnTo: ModeAnnotationList}, "Edit annotation", e.Location, e.Annotation.Text)
}

func (m Model) deleteSelected() (Model, tea.Cmd) {
	e, ok := m.list.Selected()
	if !ok {
		return m, nil
	}
	if err := m.active().Annotations.Delete(e.Annotation.ID); err != nil {
		return m, m.notify(m.notices.Errorf("Annotation not deleted: %v", err))
	}
	m.changes++
	m.list.Remove(e.Annotation.ID)
	return m, m.notify(m.notices.Infof("Annotation deleted"))
}

func (m Model) switchCommit(step func(s *review.Stack) bool) (Model, tea.Cmd) {
	if !m.stack.Stacked() {
		return m, m.notify(m.notices.Infof("Not a stacked review, start with --stacked A..B"))
	}
	if !step(m.stack) {
		return m, nil
	}
	m.tree.SetModel(m.active().Model())
	m.viewer.Reset()
	m.layout()
	return m, nil
}

func (m Model) nextCommit() (Model, tea.Cmd) { return m.switchCommit((*review.Stack).Next) }
func (m Model) prevCommit() (Model, tea.Cmd) { return m.switchCommit((*review.Stack).Prev) }

// exportAnnotations writes every context's annotations in the configured
// format. In stacked review each commit gets its own file.
func (m Model) exportAnnotations() (Model, tea.Cmd) {
	if m.stack.AnnotationCount() == 0 {
		return m, m.notify(m.notices.Infof("No annotations to export"))
	}

	format := m.cfg.ExportFormat()
	var cmds []tea.Cmd
	for _, c := range m.stack.Contexts() {
		if c.Annotations.Count() == 0 {
			continue
		}
		base, target := "hunk-annotations", m.target
		if m.stack.Stacked() {
			base += "-" + c.Commit.Short()
			target = fmt.Sprintf("%s (%s %s)", m.target, c.Commit.Short(), c.Commit.Subject)
		}

		data, err := c.Annotations.Export(format, annotation.ExportOptions{Target: target, Model: c.Model()})
		if err != nil {
			cmds = append(cmds, m.notify(m.notices.Errorf("Export failed: %v", err)))
			continue
		}
		cmds = append(cmds, writeExport(m.cfg.ExportPath(base, format), data, c.Annotations.Count(), m.changes))
	}
	return m, tea.Batch(cmds...)
}

// reload rebuilds the diff from its source. Stacked reviews are fixed to
// their commits and never reload.
func (m Model) reload() (Model, tea.Cmd) {
	if m.src == nil || m.stack.Stacked() {
		return m, m.notify(m.notices.Infof("Nothing to reload"))
	}
	return m.startRebuild()
}

// startRebuild requests a new model. Each request gets a new revision so
// only the latest result is applied.
func (m Model) startRebuild() (Model, tea.Cmd) {
	m.revision++
	m.loading = true
	opts := m.build
	opts.Revision = m.revision
	return m, rebuild(m.ctx, m.src, opts)
}

// openInEditor suspends the session and opens the focused file at the
// cursor line.
func (m Model) openInEditor() (Model, tea.Cmd) {
	c := m.active()
	f := c.Nav.CurrentFile()
	if f == nil {
		return m, nil
	}
	if f.Kind == diffmodel.KindDeleted {
		return m, m.notify(m.notices.Infof("%s was deleted", f.Path))
	}
	return m, runEditor(editorCmd(m.cfg.EditorCommand(m.getenv), m.root, f.Path, editorLine(c.Nav)), f.Path)
}

// editorLine is the new-side line number under the cursor, falling back to
// the start of the focused hunk.
func editorLine(s *nav.State) int {
	if l := s.CurrentLine(); l != nil && l.New > 0 {
		return l.New
	}
	if h := s.CurrentHunk(); h != nil {
		return h.NewStart
	}
	return 0
}

func (m Model) openInBrowser() (Model, tea.Cmd) {
	if m.prURL == "" {
		return m, m.notify(m.notices.Infof("Only pull request reviews open in a browser"))
	}
	f := m.active().Nav.CurrentFile()
	if f == nil {
		return m, nil
	}
	return m, openURL(m.ctx, m.openURL, prFileURL(m.prURL, f.Path))
}

func (m Model) showHelp() (Model, tea.Cmd) {
	footer := fmt.Sprintf("Theme %s (%s)", m.ses.Theme.Name, m.ses.ThemeSource)
	if n := m.notices.CountAtLeast(notify.LevelWarning); n > 0 {
		footer += fmt.Sprintf(" • %d warnings this session", n)
	}
	m.help = components.NewHelpDialog(m.st, "Keybindings", m.keys.HelpEntries(), footer, m.width, m.height)
	m.mode = ModeHelp
	return m, nil
}

func (m Model) helpScrollDown() (Model, tea.Cmd) {
	m.help.ScrollDown()
	return m, nil
}

func (m Model) helpScrollUp() (Model, tea.Cmd) {
	m.help.ScrollUp()
	return m, nil
}

func (m Model) closeOverlay() (Model, tea.Cmd) {
	m.mode = ModeNormal
	m.help = nil
	m.list = nil
	return m, nil
}

// requestQuit quits, asking first when annotations would be lost.
func (m Model) requestQuit() (Model, tea.Cmd) {
	if !m.unexported() {
		return m.quit()
	}
	msg := fmt.Sprintf("%d annotations have not been exported and will be lost.", m.stack.AnnotationCount())
	m.confirm = components.NewConfirmModal("Quit without exporting?", msg)
	m.onConfirm = Model.quit
	m.mode = ModeConfirm
	return m, nil
}

// editTarget is the annotation the editor is working on.
type editTarget struct {
	// id is empty when adding a new annotation at anchor.
	id       string
	anchor   annotation.Anchor
	returnTo Mode
}

func sameLine(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func describeAnchor(f *diffmodel.File, h *diffmodel.Hunk, line int) string {
	if line < 0 {
		return fmt.Sprintf("%s @@ -%d +%d @@", f.Path, h.OldStart, h.NewStart)
	}
	start, _ := h.Span(line, line)
	return fmt.Sprintf("%s line %d", f.Path, start)
}

// locationLabel formats where a resolves as "path:Lstart-end", or marks it
// orphaned.
func locationLabel(m *diffmodel.Model, store *annotation.Store, a annotation.Annotation) string {
	loc, err := store.Resolve(m, a)
	if a.Orphaned || err != nil {
		return a.Anchor.Path + " (orphaned)"
	}

	f := &m.Files[loc.File]
	h := &f.Hunks[loc.Hunk]
	from, to := 0, len(h.Lines)-1
	if loc.Line >= 0 {
		from, to = loc.Line, loc.Line
	}
	start, end := h.Span(from, to)
	if start == end {
		return fmt.Sprintf("%s:L%d", f.Path, start)
	}
	return fmt.Sprintf("%s:L%d-%d", f.Path, start, end)
}
