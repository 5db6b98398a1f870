package tui

import (
	"errors"
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/hay-kot/hunk/internal/core/styles"
	"github.com/hay-kot/hunk/internal/core/theme"
)

// ErrTerminalUnavailable is returned when the session cannot attach to an
// interactive terminal.
var ErrTerminalUnavailable = errors.New("terminal unavailable")

// SessionOptions are the theme names from the invocation and config file.
type SessionOptions struct {
	Theme       string
	ConfigTheme string
}

// Session captures the terminal the review runs in. It is created once at
// startup and handed to the model.
type Session struct {
	In  *os.File
	Out *os.File

	Theme       theme.Theme
	ThemeSource theme.Source
	Styles      styles.Styles
	Profile     termenv.Profile

	// Warnings are unknown theme names that were skipped.
	Warnings []theme.Warning
}

// NewSession checks that in and out are terminals, detects the background
// and color profile of out and resolves the theme.
func NewSession(in, out *os.File, opts SessionOptions) (*Session, error) {
	if err := checkTerminal(in, "stdin"); err != nil {
		return nil, err
	}
	if err := checkTerminal(out, "stdout"); err != nil {
		return nil, err
	}

	src := theme.EnvSources(opts.Theme, opts.ConfigTheme)
	src.DetectDark = theme.DetectBackground(out)
	res, warnings := theme.Resolve(src)

	s := newSession(res.Theme, termenv.NewOutput(out).EnvColorProfile())
	s.In = in
	s.Out = out
	s.ThemeSource = res.Source
	s.Warnings = warnings
	return s, nil
}

func newSession(t theme.Theme, profile termenv.Profile) *Session {
	return &Session{
		Theme:       t,
		ThemeSource: theme.SourceDefault,
		Styles:      styles.New(t),
		Profile:     profile,
	}
}

func checkTerminal(f *os.File, name string) error {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return fmt.Errorf("%w: %s is not a terminal", ErrTerminalUnavailable, name)
	}
	return nil
}

// Colors reports whether the terminal renders color at all.
func (s *Session) Colors() bool {
	return s.Profile != termenv.Ascii
}
