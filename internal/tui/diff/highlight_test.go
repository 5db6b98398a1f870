package diff

import (
	"testing"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestHighlighter_PreservesText(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		path    string
		text    string
		want    string
	}{
		{name: "go source", enabled: true, path: "main.go", text: `func main() { fmt.Println("hi") }`, want: `func main() { fmt.Println("hi") }`},
		{name: "unknown language", enabled: true, path: "notes.zzqq", text: "plain words", want: "plain words"},
		{name: "disabled", enabled: false, path: "main.go", text: "var x = 1", want: "var x = 1"},
		{name: "tabs expand", enabled: true, path: "main.go", text: "\treturn", want: "    return"},
		{name: "empty", enabled: true, path: "main.go", text: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHighlighter("monokai", tt.enabled)
			got := h.Render(tt.path, tt.text, lipgloss.NewStyle())
			assert.Equal(t, tt.want, ansi.Strip(got))
		})
	}
}

func TestHighlighter_NilIsPlain(t *testing.T) {
	var h *Highlighter
	assert.Equal(t, "x := 1", ansi.Strip(h.Render("a.go", "x := 1", lipgloss.NewStyle())))
}

func TestHighlighter_CachesLexerPerExtension(t *testing.T) {
	h := NewHighlighter("monokai", true)
	h.Render("a.go", "package a", lipgloss.NewStyle())
	h.Render("b.go", "package b", lipgloss.NewStyle())
	h.Render("c.zzqq", "text", lipgloss.NewStyle())

	assert.Len(t, h.lexers, 2)
	assert.NotNil(t, h.lexers[".go"])
	assert.Nil(t, h.lexers[".zzqq"])
}
