// Package printer writes styled status lines for the non-interactive
// subcommands.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	lipgloss "charm.land/lipgloss/v2"
)

type ctxKey struct{}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Printer writes one line per call.
type Printer struct {
	w     io.Writer
	color bool
}

// New creates a printer. Color is used only when color is true.
func New(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

// NewContext returns a context carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the printer carried by ctx, or a plain one on stdout.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stdout, false)
}

func (p *Printer) Successf(format string, args ...any) {
	p.line(successStyle, "✔", format, args...)
}

func (p *Printer) Infof(format string, args ...any) {
	p.line(infoStyle, "•", format, args...)
}

func (p *Printer) Warnf(format string, args ...any) {
	p.line(warnStyle, "!", format, args...)
}

func (p *Printer) Errorf(format string, args ...any) {
	p.line(errorStyle, "✘", format, args...)
}

// Printf writes an unprefixed line.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) line(style lipgloss.Style, icon, format string, args ...any) {
	if p.color {
		icon = style.Render(icon)
	}
	_, _ = fmt.Fprintf(p.w, "%s %s\n", icon, fmt.Sprintf(format, args...))
}
