package diff

import (
	"path/filepath"
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
)

const tabWidth = 4

// Highlighter colors source text by token using a chroma style. Each line is
// tokenized on its own, so multi-line constructs are colored per line.
type Highlighter struct {
	enabled bool
	style   *chroma.Style
	lexers  map[string]chroma.Lexer
}

// NewHighlighter returns a highlighter for the named chroma style. Unknown
// style names fall back to chroma's default.
func NewHighlighter(style string, enabled bool) *Highlighter {
	return &Highlighter{
		enabled: enabled,
		style:   chromastyles.Get(style),
		lexers:  map[string]chroma.Lexer{},
	}
}

func (h *Highlighter) lexer(path string) chroma.Lexer {
	key := filepath.Ext(path)
	if key == "" {
		key = filepath.Base(path)
	}
	if l, ok := h.lexers[key]; ok {
		return l
	}
	l := lexers.Match(filepath.Base(path))
	if l != nil {
		l = chroma.Coalesce(l)
	}
	h.lexers[key] = l
	return l
}

// Render returns text colored for the language of path on top of base.
// Token colors replace the foreground of base and keep its background.
func (h *Highlighter) Render(path, text string, base lipgloss.Style) string {
	text = strings.ReplaceAll(text, "\t", strings.Repeat(" ", tabWidth))
	if h == nil || !h.enabled || text == "" {
		return base.Render(text)
	}

	l := h.lexer(path)
	if l == nil {
		return base.Render(text)
	}

	it, err := l.Tokenise(nil, text)
	if err != nil {
		return base.Render(text)
	}

	var b strings.Builder
	for _, tok := range it.Tokens() {
		val := strings.ReplaceAll(tok.Value, "\n", "")
		if val == "" {
			continue
		}
		s := base
		entry := h.style.Get(tok.Type)
		if entry.Colour.IsSet() {
			s = s.Foreground(lipgloss.Color(entry.Colour.String()))
		}
		if entry.Bold == chroma.Yes {
			s = s.Bold(true)
		}
		if entry.Italic == chroma.Yes {
			s = s.Italic(true)
		}
		b.WriteString(s.Render(val))
	}
	return b.String()
}
