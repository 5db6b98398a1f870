package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies the commit and pull request carried on an event's
// context into the event.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if sha := GetCommit(ctx); sha != "" {
		e.Str("commit", sha)
	}

	if n := GetPR(ctx); n != 0 {
		e.Int("pr", n)
	}
}
