package components

import (
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/hay-kot/hunk/internal/core/styles"
)

const (
	editorMaxWidth = 72
	editorHeight   = 6
)

// AnnotationEditor is a multi-line comment input. Enter saves, alt+enter
// inserts a newline and esc cancels.
type AnnotationEditor struct {
	title     string
	context   string
	input     textarea.Model
	focusCmd  tea.Cmd
	saved     bool
	cancelled bool
}

// NewAnnotationEditor creates a focused editor prefilled with initial.
// context is a one-line description of what is being annotated.
func NewAnnotationEditor(st styles.Styles, title, context, initial string, width int) AnnotationEditor {
	ta := textarea.New()
	ta.Placeholder = "Write a comment…"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetStyles(textarea.DefaultStyles(st.Theme.Dark))
	ta.SetWidth(max(min(width-8, editorMaxWidth), 20))
	ta.SetHeight(editorHeight)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	if initial != "" {
		ta.SetValue(initial)
	}

	e := AnnotationEditor{
		title:   title,
		context: context,
	}
	e.focusCmd = ta.Focus()
	e.input = ta
	return e
}

// Init returns the command that starts the cursor.
func (e AnnotationEditor) Init() tea.Cmd {
	return e.focusCmd
}

// Update handles input for the editor.
func (e AnnotationEditor) Update(msg tea.Msg) (AnnotationEditor, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		switch keyMsg.String() {
		case "enter":
			e.saved = true
			return e, nil
		case "esc":
			e.cancelled = true
			return e, nil
		}
	}

	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return e, cmd
}

// Value returns the entered text without surrounding whitespace.
func (e AnnotationEditor) Value() string {
	return strings.TrimSpace(e.input.Value())
}

// Saved returns true once the user pressed enter.
func (e AnnotationEditor) Saved() bool { return e.saved }

// Cancelled returns true once the user pressed esc.
func (e AnnotationEditor) Cancelled() bool { return e.cancelled }

// View renders the editor.
func (e AnnotationEditor) View(st styles.Styles) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		st.ModalTitleStyle.Render(e.title),
		st.TextDim.Render(e.context),
		"",
		e.input.View(),
		st.ModalHelpStyle.Render("enter save • alt+enter newline • esc cancel"),
	)
	return st.ModalStyle.Render(content)
}

// Overlay renders the editor centered over background.
func (e AnnotationEditor) Overlay(st styles.Styles, background string, width, height int) string {
	return Overlay(background, e.View(st), width, height)
}
