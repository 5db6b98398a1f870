// Package styles derives the lipgloss styles used by the CLI and TUI from a
// resolved theme.
package styles

import (
	"image/color"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/hay-kot/hunk/internal/core/diffmodel"
	"github.com/hay-kot/hunk/internal/core/theme"
)

// Styles is the full style set for one theme. It is built once per session
// and passed to every renderer.
type Styles struct {
	Theme theme.Theme

	Foreground color.Color
	Muted      color.Color

	Text     lipgloss.Style
	TextBold lipgloss.Style
	TextDim  lipgloss.Style
	Divider  lipgloss.Style

	// Header bar.
	HeaderStyle   lipgloss.Style
	HeaderCommit  lipgloss.Style
	HeaderCounter lipgloss.Style
	StatusStyle   lipgloss.Style

	// Sidebar.
	SidebarStyle  lipgloss.Style
	TreeDir       lipgloss.Style
	TreeFile      lipgloss.Style
	TreeSelected  lipgloss.Style
	TreeViewed    lipgloss.Style
	TreeNoteCount lipgloss.Style

	// Diff body.
	FileHeader        lipgloss.Style
	HunkHeader        lipgloss.Style
	HunkHeaderFocused lipgloss.Style
	Gutter            lipgloss.Style
	LineAdded         lipgloss.Style
	LineRemoved       lipgloss.Style
	LineContext       lipgloss.Style
	CursorLine        lipgloss.Style
	Note              lipgloss.Style
	NoteOrphaned      lipgloss.Style

	Additions lipgloss.Style
	Deletions lipgloss.Style

	// Overlays.
	ModalStyle      lipgloss.Style
	ModalTitleStyle lipgloss.Style
	ModalHelpStyle  lipgloss.Style
	ConfirmMessage  lipgloss.Style

	ToastInfoStyle    lipgloss.Style
	ToastWarningStyle lipgloss.Style
	ToastErrorStyle   lipgloss.Style
}

// New builds the style set for t.
func New(t theme.Theme) Styles {
	fg := t.Foreground()
	muted := t.Muted()
	added := t.Color(theme.RoleAdded)
	removed := t.Color(theme.RoleRemoved)
	bg := t.Color(theme.RoleContextBg)
	cursor := t.Color(theme.RoleCursor)
	border := t.Color(theme.RoleBorder)
	header := t.Color(theme.RoleHeader)

	s := Styles{
		Theme:      t,
		Foreground: fg,
		Muted:      muted,
	}

	s.Text = lipgloss.NewStyle().Foreground(fg)
	s.TextBold = s.Text.Bold(true)
	s.TextDim = lipgloss.NewStyle().Foreground(muted)
	s.Divider = lipgloss.NewStyle().Foreground(border)

	s.HeaderStyle = lipgloss.NewStyle().
		Foreground(header).
		Bold(true)
	s.HeaderCommit = lipgloss.NewStyle().Foreground(fg)
	s.HeaderCounter = lipgloss.NewStyle().
		Foreground(bg).
		Background(header).
		Padding(0, 1).
		Bold(true)
	s.StatusStyle = lipgloss.NewStyle().Foreground(muted)

	s.SidebarStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(border).
		PaddingRight(1)
	s.TreeDir = lipgloss.NewStyle().Foreground(header)
	s.TreeFile = lipgloss.NewStyle().Foreground(fg)
	s.TreeSelected = lipgloss.NewStyle().
		Foreground(fg).
		Background(cursor).
		Bold(true)
	s.TreeViewed = lipgloss.NewStyle().Foreground(added)
	s.TreeNoteCount = lipgloss.NewStyle().Foreground(header)

	s.FileHeader = lipgloss.NewStyle().
		Foreground(header).
		Bold(true)
	s.HunkHeader = lipgloss.NewStyle().Foreground(muted)
	s.HunkHeaderFocused = lipgloss.NewStyle().
		Foreground(header).
		Background(cursor).
		Bold(true)
	s.Gutter = lipgloss.NewStyle().Foreground(muted)
	s.LineAdded = lipgloss.NewStyle().
		Foreground(added).
		Background(t.AddedBg())
	s.LineRemoved = lipgloss.NewStyle().
		Foreground(removed).
		Background(t.RemovedBg())
	s.LineContext = lipgloss.NewStyle().Foreground(fg)
	s.CursorLine = lipgloss.NewStyle().Background(cursor)
	s.Note = lipgloss.NewStyle().
		Foreground(fg).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(header).
		PaddingLeft(1)
	s.NoteOrphaned = s.Note.BorderForeground(removed).Foreground(muted)

	s.Additions = lipgloss.NewStyle().Foreground(added)
	s.Deletions = lipgloss.NewStyle().Foreground(removed)

	s.ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(header).
		Padding(1, 2)
	s.ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(fg)
	s.ModalHelpStyle = lipgloss.NewStyle().
		Foreground(muted).
		MarginTop(1)
	s.ConfirmMessage = lipgloss.NewStyle().
		Foreground(fg).
		MarginBottom(1)

	toast := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Foreground(fg)
	s.ToastInfoStyle = toast.BorderForeground(header)
	s.ToastWarningStyle = toast.BorderForeground(cursor)
	s.ToastErrorStyle = toast.BorderForeground(removed)

	return s
}

// Line returns the base style for a diff line of kind k.
func (s Styles) Line(k diffmodel.LineKind) lipgloss.Style {
	switch k {
	case diffmodel.LineAdded:
		return s.LineAdded
	case diffmodel.LineRemoved:
		return s.LineRemoved
	default:
		return s.LineContext
	}
}

// Kind returns the style for a file change marker.
func (s Styles) Kind(k diffmodel.ChangeKind) lipgloss.Style {
	switch k {
	case diffmodel.KindAdded:
		return s.Additions
	case diffmodel.KindDeleted:
		return s.Deletions
	case diffmodel.KindRenamed, diffmodel.KindBinary:
		return s.TreeNoteCount
	default:
		return s.TextDim
	}
}
