package diff

import (
	"fmt"
	"strconv"
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/hay-kot/hunk/internal/core/annotation"
	"github.com/hay-kot/hunk/internal/core/diffmodel"
	"github.com/hay-kot/hunk/internal/core/nav"
	"github.com/hay-kot/hunk/internal/core/styles"
)

// gutterWidth is the width of the "old new " line number columns.
const gutterWidth = 10

// Frame is everything the viewer needs to draw one file.
type Frame struct {
	File   *diffmodel.File
	Pos    nav.Position
	Viewed bool
	// Notes returns the annotations attached to the hunk with key.
	Notes func(key diffmodel.AnchorKey) []annotation.Annotation
}

// Viewer renders the focused file as a scrolling list of hunks with the
// cursor kept on screen.
type Viewer struct {
	hl     *Highlighter
	width  int
	height int
	offset int
}

// NewViewer creates a viewer that colors lines with hl. hl may be nil.
func NewViewer(hl *Highlighter) *Viewer {
	return &Viewer{hl: hl}
}

// SetSize updates the dimensions of the viewer.
func (v *Viewer) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Reset scrolls back to the top, used when the focused file changes.
func (v *Viewer) Reset() {
	v.offset = 0
}

// View renders fr.
func (v *Viewer) View(st styles.Styles, fr Frame) string {
	if fr.File == nil {
		return v.renderEmptyState(st, "No changes", "The diff is empty")
	}

	rows, cursor := v.rows(st, fr)
	v.follow(cursor, len(rows))

	end := len(rows)
	if v.height > 0 {
		end = min(v.offset+v.height, len(rows))
	}
	return strings.Join(rows[v.offset:end], "\n")
}

// follow scrolls so the cursor row stays on screen.
func (v *Viewer) follow(cursor, total int) {
	if v.height <= 0 {
		v.offset = 0
		return
	}
	if cursor < v.offset {
		v.offset = cursor
	}
	if cursor >= v.offset+v.height {
		v.offset = cursor - v.height + 1
	}
	v.offset = max(min(v.offset, total-v.height), 0)
}

func (v *Viewer) renderEmptyState(st styles.Styles, title, hint string) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		st.TextBold.Render(title),
		st.TextDim.Render(hint),
		"",
	)
	if v.width <= 0 || v.height <= 0 {
		return content
	}
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, content)
}

// rows lays out the whole file and returns the index of the cursor row.
func (v *Viewer) rows(st styles.Styles, fr Frame) ([]string, int) {
	f := fr.File
	var rows []string
	cursor := 0

	rows = append(rows, v.renderFileHeader(st, fr), st.Divider.Render(strings.Repeat("─", max(v.width, 1))))

	if len(f.Hunks) == 0 {
		cursor = 0
		switch {
		case f.Kind == diffmodel.KindBinary:
			rows = append(rows, st.TextDim.Render("Binary file not shown"))
		case f.PrevPath != "":
			rows = append(rows, st.TextDim.Render("Renamed from "+f.PrevPath+" without content changes"))
		default:
			rows = append(rows, st.TextDim.Render("No content changes"))
		}
		return rows, cursor
	}

	for hi := range f.Hunks {
		h := &f.Hunks[hi]
		var notes []annotation.Annotation
		if fr.Notes != nil {
			notes = fr.Notes(h.Anchor)
		}

		focused := fr.Pos.Hunk == hi
		if focused && fr.Pos.Line == nav.NoLine {
			cursor = len(rows)
		}
		rows = append(rows, v.renderHunkHeader(st, h, focused && fr.Pos.Line == nav.NoLine, len(notes)))
		rows = append(rows, v.renderNotes(st, notes, nil)...)

		for li := range h.Lines {
			isCursor := focused && fr.Pos.Line == li
			if isCursor {
				cursor = len(rows)
			}
			rows = append(rows, v.renderLine(st, f.Path, &h.Lines[li], isCursor))
			rows = append(rows, v.renderNotes(st, notes, &li)...)
		}
	}
	return rows, cursor
}

func (v *Viewer) renderFileHeader(st styles.Styles, fr Frame) string {
	f := fr.File
	stats := st.Additions.Render(fmt.Sprintf("+%d", f.Added)) + " " + st.Deletions.Render(fmt.Sprintf("-%d", f.Removed))
	line := st.Kind(f.Kind).Render(f.Kind.Marker()) + " " + st.FileHeader.Render(f.DisplayPath()) + "  " + stats
	if fr.Viewed {
		line += "  " + st.TreeViewed.Render(styles.IconViewed+" viewed")
	}
	return v.fit(line)
}

func (v *Viewer) renderHunkHeader(st styles.Styles, h *diffmodel.Hunk, focused bool, notes int) string {
	text := fmt.Sprintf("@@ -%s +%s @@", formatRange(h.OldStart, h.OldLines), formatRange(h.NewStart, h.NewLines))
	if h.Heading != "" {
		text += " " + h.Heading
	}
	if notes > 0 {
		text += fmt.Sprintf("  %d%s", notes, styles.IconNote)
	}

	style := st.HunkHeader
	prefix := "  "
	if focused {
		style = st.HunkHeaderFocused
		prefix = styles.IconCursor + " "
	}
	return v.fit(prefix + style.Render(v.pad(text, len(prefix))))
}

func (v *Viewer) renderLine(st styles.Styles, path string, l *diffmodel.Line, cursor bool) string {
	gutter := st.Gutter.Render(fmt.Sprintf("%4s %4s ", lineNumber(l.Old), lineNumber(l.New)))

	base := st.Line(l.Kind)
	if cursor {
		base = base.Background(st.CursorLine.GetBackground())
	}

	body := base.Render(l.Kind.Prefix()) + v.hl.Render(path, l.Text, base)
	if pad := v.width - gutterWidth - ansi.StringWidth(body); pad > 0 {
		body += base.Render(strings.Repeat(" ", pad))
	}
	return v.fit(gutter + body)
}

// renderNotes renders the annotations anchored at line, or the whole-hunk
// annotations when line is nil.
func (v *Viewer) renderNotes(st styles.Styles, notes []annotation.Annotation, line *int) []string {
	var out []string
	for _, a := range notes {
		if !anchoredAt(a.Anchor.LineOffset, line) {
			continue
		}
		style := st.Note
		if a.Orphaned {
			style = st.NoteOrphaned
		}
		if w := v.width - gutterWidth - 2; w > 10 {
			style = style.Width(w)
		}
		box := style.Render(styles.IconNote + " " + a.Text)
		for _, l := range strings.Split(box, "\n") {
			out = append(out, strings.Repeat(" ", gutterWidth)+l)
		}
	}
	return out
}

func anchoredAt(offset, line *int) bool {
	if line == nil || offset == nil {
		return line == nil && offset == nil
	}
	return *offset == *line
}

func (v *Viewer) pad(text string, used int) string {
	if n := v.width - used - ansi.StringWidth(text); n > 0 {
		return text + strings.Repeat(" ", n)
	}
	return text
}

func (v *Viewer) fit(line string) string {
	if v.width <= 0 {
		return line
	}
	return ansi.Truncate(line, v.width, "…")
}

func lineNumber(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// formatRange formats a hunk range (start, length) for unified diff format.
func formatRange(start, length int) string {
	if length == 1 {
		return strconv.Itoa(start)
	}
	return strconv.Itoa(start) + "," + strconv.Itoa(length)
}
