package components

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/hay-kot/hunk/internal/core/styles"
)

const (
	helpModalMaxWidth  = 72
	helpModalMaxHeight = 30
	helpModalMargin    = 4
	helpModalChrome    = 8 // border + padding + title + footer + help
)

// HelpEntry represents a single keyboard shortcut entry.
type HelpEntry struct {
	Key  string
	Desc string
}

// HelpDialog displays all available keyboard shortcuts as a scrollable
// markdown table.
type HelpDialog struct {
	title    string
	footer   string
	width    int
	viewport viewport.Model
}

// NewHelpDialog creates a help dialog sized to fit a width x height screen.
func NewHelpDialog(st styles.Styles, title string, entries []HelpEntry, footer string, width, height int) *HelpDialog {
	modalWidth := max(min(width-helpModalMargin, helpModalMaxWidth), 20)
	contentHeight := max(min(height-helpModalMargin, helpModalMaxHeight)-helpModalChrome, 3)

	h := &HelpDialog{
		title:  title,
		footer: footer,
		width:  modalWidth,
		viewport: viewport.New(
			viewport.WithWidth(modalWidth-6),
			viewport.WithHeight(contentHeight),
		),
	}
	h.viewport.SetContent(renderHelp(st, entries, modalWidth-6))
	return h
}

// helpMarkdown renders entries as a markdown table.
func helpMarkdown(entries []HelpEntry) string {
	var b strings.Builder
	b.WriteString("| Key | Action |\n|---|---|\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "| `%s` | %s |\n", e.Key, e.Desc)
	}
	return b.String()
}

func renderHelp(st styles.Styles, entries []HelpEntry, width int) string {
	style := st.Theme.GlamourStyle()
	noMargin := uint(0)
	style.Document.Margin = &noMargin

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		var out string
		out, err = renderer.Render(helpMarkdown(entries))
		if err == nil {
			return strings.Trim(out, "\n")
		}
	}
	log.Debug().Err(err).Msg("failed to render help markdown, showing plain list")

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, formatKeyDesc(st, e.Key, e.Desc))
	}
	return strings.Join(lines, "\n")
}

// ScrollUp scrolls the table up.
func (h *HelpDialog) ScrollUp() {
	h.viewport.ScrollUp(1)
}

// ScrollDown scrolls the table down.
func (h *HelpDialog) ScrollDown() {
	h.viewport.ScrollDown(1)
}

// View renders the help dialog.
func (h *HelpDialog) View(st styles.Styles) string {
	parts := []string{
		st.ModalTitleStyle.Render(h.title),
		"",
		h.viewport.View(),
	}
	if h.footer != "" {
		parts = append(parts, "", st.TextDim.Render(h.footer))
	}
	parts = append(parts, st.ModalHelpStyle.Render("j/k scroll • esc/? close"))

	return st.ModalStyle.Width(h.width).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// Overlay renders the help dialog as a layer over the given background.
func (h *HelpDialog) Overlay(st styles.Styles, background string, width, height int) string {
	return Overlay(background, h.View(st), width, height)
}

// formatKeyDesc formats a key-description pair with consistent alignment.
func formatKeyDesc(st styles.Styles, key, desc string) string {
	const keyWidth = 16

	pad := max(keyWidth-lipgloss.Width(key), 1)
	return st.TextBold.Render(key+strings.Repeat(" ", pad)) + st.Text.Render(desc)
}
