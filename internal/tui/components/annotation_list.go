package components

import (
	"strings"

	"charm.land/bubbles/v2/list"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/hay-kot/hunk/internal/core/annotation"
	"github.com/hay-kot/hunk/internal/core/styles"
	"github.com/hay-kot/hunk/internal/core/theme"
)

// ListEntry is one annotation with the location it resolves to.
type ListEntry struct {
	Annotation annotation.Annotation
	// Location is "path:Lstart-end" or "path (orphaned)".
	Location string
}

// Title implements list.DefaultItem.
func (e ListEntry) Title() string {
	if e.Annotation.Orphaned {
		return styles.IconOrphaned + " " + e.Location
	}
	return e.Location
}

// Description implements list.DefaultItem.
func (e ListEntry) Description() string {
	first, _, more := strings.Cut(e.Annotation.Text, "\n")
	if more {
		return first + " …"
	}
	return first
}

// FilterValue implements list.Item.
func (e ListEntry) FilterValue() string {
	return e.Location + " " + e.Annotation.Text
}

// AnnotationList shows the annotations of the active review context.
type AnnotationList struct {
	list list.Model
}

// NewAnnotationList creates a list over entries sized for a width x height
// screen.
func NewAnnotationList(st styles.Styles, entries []ListEntry, width, height int) *AnnotationList {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = e
	}

	delegate := list.NewDefaultDelegate()
	accent := st.Theme.Color(theme.RoleHeader)
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(accent).
		BorderForeground(accent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		BorderForeground(accent)

	l := list.New(items, delegate, max(min(width-8, 80), 20), max(min(height-6, 24), 5))
	l.Title = "Annotations"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("annotation", "annotations")
	l.DisableQuitKeybindings()
	l.Styles.Title = st.ModalTitleStyle

	return &AnnotationList{list: l}
}

// Update forwards navigation keys to the list.
func (a *AnnotationList) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	return cmd
}

// CursorDown moves the selection down.
func (a *AnnotationList) CursorDown() { a.list.CursorDown() }

// CursorUp moves the selection up.
func (a *AnnotationList) CursorUp() { a.list.CursorUp() }

// Selected returns the highlighted entry.
func (a *AnnotationList) Selected() (ListEntry, bool) {
	e, ok := a.list.SelectedItem().(ListEntry)
	return e, ok
}

// Len returns the number of entries.
func (a *AnnotationList) Len() int {
	return len(a.list.Items())
}

// Remove drops the entry for id.
func (a *AnnotationList) Remove(id string) {
	for i, it := range a.list.Items() {
		if e, ok := it.(ListEntry); ok && e.Annotation.ID == id {
			a.list.RemoveItem(i)
			return
		}
	}
}

// View renders the list.
func (a *AnnotationList) View(st styles.Styles) string {
	body := a.list.View()
	if a.Len() == 0 {
		body = lipgloss.JoinVertical(lipgloss.Left,
			st.ModalTitleStyle.Render("Annotations"),
			"",
			st.TextDim.Render("No annotations yet. Press a on a hunk or line to add one."),
		)
	}
	return st.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		body,
		st.ModalHelpStyle.Render("enter jump • e edit • d delete • esc close"),
	))
}

// Overlay renders the list centered over background.
func (a *AnnotationList) Overlay(st styles.Styles, background string, width, height int) string {
	return Overlay(background, a.View(st), width, height)
}
