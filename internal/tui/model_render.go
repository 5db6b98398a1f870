package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/hay-kot/hunk/internal/core/annotation"
	"github.com/hay-kot/hunk/internal/core/config"
	"github.com/hay-kot/hunk/internal/core/diffmodel"
	"github.com/hay-kot/hunk/internal/core/styles"
	"github.com/hay-kot/hunk/internal/tui/diff"
)

// View renders the TUI.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	mainView := m.renderMain()

	// Ensure we have dimensions for modals
	w, h := m.width, m.height
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}

	var content string
	switch {
	case m.mode == ModeAnnotationEdit:
		content = m.editor.Overlay(m.st, mainView, w, h)
	case m.mode == ModeAnnotationList && m.list != nil:
		content = m.list.Overlay(m.st, mainView, w, h)
	case m.mode == ModeHelp && m.help != nil:
		content = m.help.Overlay(m.st, mainView, w, h)
	case m.mode == ModeConfirm:
		content = m.confirm.Overlay(m.st, mainView, w, h)
	default:
		content = mainView
	}

	// Apply toast overlay on top of everything
	if m.toasts.HasToasts() {
		content = m.toastView.Overlay(m.st, content, w, h)
	}

	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

// renderMain renders the header, the file tree and diff, and the status bar.
func (m Model) renderMain() string {
	bodyHeight := max(m.height-headerHeight-statusHeight, 1)

	c := m.active()
	f := c.Nav.CurrentFile()

	frame := diff.Frame{
		File: f,
		Pos:  c.Nav.Position(),
	}
	if f != nil {
		path := f.Path
		frame.Viewed = c.IsViewed(path)
		frame.Notes = func(key diffmodel.AnchorKey) []annotation.Annotation {
			return c.Annotations.ForHunk(path, key)
		}
	}
	body := m.viewer.View(m.st, frame)

	if m.sidebarWidth() > 0 {
		status := func(f *diffmodel.File) (bool, int) {
			return c.IsViewed(f.Path), c.Annotations.CountForFile(f.Path)
		}
		sidebar := m.st.SidebarStyle.Height(bodyHeight).Render(m.tree.View(m.st, c.Nav.Position().File, status))
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, body)
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderStatusBar())
}

func (m Model) renderHeader() string {
	c := m.active()

	left := m.st.HeaderStyle.Render("hunk")
	if m.stack.Stacked() {
		counter := m.st.HeaderCounter.Render(fmt.Sprintf("%d/%d", m.stack.Index()+1, m.stack.Len()))
		left += " " + counter + " " + m.st.TextDim.Render(c.Commit.Short()) + " " + m.st.HeaderCommit.Render(c.Commit.Subject)
	} else if m.target != "" {
		left += " " + m.st.HeaderCommit.Render(m.target)
	}

	model := c.Model()
	added, removed := model.Totals()
	parts := []string{
		fmt.Sprintf("%d/%d viewed", c.ViewedCount(), model.Len()),
		m.st.Additions.Render(fmt.Sprintf("+%d", added)) + " " + m.st.Deletions.Render(fmt.Sprintf("-%d", removed)),
	}
	if n := c.Annotations.Count(); n > 0 {
		parts = append(parts, m.st.TreeNoteCount.Render(fmt.Sprintf("%d%s", n, styles.IconNote)))
	}
	if n := len(c.Annotations.Orphaned()); n > 0 {
		parts = append(parts, m.st.Deletions.Render(fmt.Sprintf("%d%s", n, styles.IconOrphaned)))
	}
	right := strings.Join(parts, m.st.TextDim.Render(" "+styles.IconSeparator+" "))

	return joinEnds(left, right, m.width)
}

func (m Model) renderStatusBar() string {
	var left string
	switch m.mode {
	case ModeAnnotationEdit:
		left = "editing annotation"
	case ModeAnnotationList:
		left = "annotations"
	case ModeHelp:
		left = "help"
	case ModeConfirm:
		left = "confirm"
	case ModeSearch:
		left = m.search.View()
	default:
		left = m.hint(config.ActionAddAnnotation, "annotate") + "  " +
			m.hint(config.ActionMarkViewed, "viewed") + "  " +
			m.hint(config.ActionHelp, "help") + "  " +
			m.hint(config.ActionQuit, "quit")
	}

	var right []string
	if status := m.searchStatus(); status != "" {
		right = append(right, status)
	}
	if m.loading {
		right = append(right, m.spinner.View()+" reloading")
	}
	if m.sync != nil {
		switch {
		case !m.sync.Ready():
			right = append(right, m.spinner.View()+" loading viewed files")
		case m.sync.Pending() > 0:
			right = append(right, m.spinner.View()+fmt.Sprintf(" syncing %d", m.sync.Pending()))
		}
	}
	if m.watcher != nil {
		right = append(right, "watching")
	}

	return m.st.StatusStyle.Render(joinEnds(left, strings.Join(right, " "+styles.IconSeparator+" "), m.width))
}

// hint renders the first key bound to action with a label.
func (m Model) hint(action, label string) string {
	keys := m.keys.Keys(action)
	if len(keys) == 0 {
		return ""
	}
	return keys[0] + " " + label
}

// joinEnds places left and right at opposite ends of a width-wide line.
func joinEnds(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if width <= 0 || gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
