package theme

import (
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// EnvVar names the environment variable consulted for a theme.
const EnvVar = "HUNK_THEME"

// Source identifies where the effective theme came from.
type Source string

const (
	SourceInvocation Source = "invocation"
	SourceConfig     Source = "config"
	SourceEnv        Source = "environment"
	SourceDetected   Source = "detected"
	SourceDefault    Source = "default"
)

// Sources are the candidate theme names in precedence order, plus an optional
// light/dark background detector.
type Sources struct {
	Invocation string
	Config     string
	Env        string
	// DetectDark reports whether the terminal background is dark. ok is
	// false when it cannot tell.
	DetectDark func() (dark bool, ok bool)
}

// Warning is an unrecognized theme name at one precedence level.
type Warning struct {
	Source Source
	Name   string
}

func (w Warning) String() string {
	return fmt.Sprintf("unknown theme %q from %s, ignoring", w.Name, w.Source)
}

// Resolution is the effective theme and where it was found.
type Resolution struct {
	Theme  Theme
	Source Source
}

// Resolve picks the first recognized name from the invocation option, the
// config file and the environment. An unknown name produces a warning and
// falls through to the next level. With no recognized name, the detected
// background selects the default light or dark theme, and failing that the
// dark default is used.
func Resolve(src Sources) (Resolution, []Warning) {
	var warnings []Warning

	levels := []struct {
		source Source
		name   string
	}{
		{SourceInvocation, src.Invocation},
		{SourceConfig, src.Config},
		{SourceEnv, src.Env},
	}

	for _, l := range levels {
		if Normalize(l.name) == "" {
			continue
		}
		if t, ok := Lookup(l.name); ok {
			return Resolution{Theme: t, Source: l.source}, warnings
		}
		warnings = append(warnings, Warning{Source: l.source, Name: l.name})
	}

	if src.DetectDark != nil {
		if dark, ok := src.DetectDark(); ok {
			name := DefaultLight
			if dark {
				name = DefaultDark
			}
			return Resolution{Theme: MustLookup(name), Source: SourceDetected}, warnings
		}
	}

	return Resolution{Theme: MustLookup(DefaultDark), Source: SourceDefault}, warnings
}

// DetectBackground returns a detector that asks the terminal attached to f
// for its background color. It reports ok=false when f is not a terminal.
func DetectBackground(f *os.File) func() (bool, bool) {
	return func() (bool, bool) {
		if !term.IsTerminal(int(f.Fd())) {
			return false, false
		}
		return termenv.NewOutput(f).HasDarkBackground(), true
	}
}

// EnvSources fills Sources from explicit invocation and config values, the
// environment and the terminal on stdout.
func EnvSources(invocation, config string) Sources {
	return Sources{
		Invocation: invocation,
		Config:     config,
		Env:        os.Getenv(EnvVar),
		DetectDark: DetectBackground(os.Stdout),
	}
}
