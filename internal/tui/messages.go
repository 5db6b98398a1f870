package tui

import (
	"github.com/hay-kot/hunk/internal/core/diffmodel"
	"github.com/hay-kot/hunk/internal/core/viewsync"
	"github.com/hay-kot/hunk/internal/core/watch"
)

// watchEventMsg is a debounced burst of file changes.
type watchEventMsg struct {
	event watch.Event
}

// watchErrorMsg ends watch mode.
type watchErrorMsg struct {
	err error
}

// rebuildMsg carries a freshly built model. revision identifies the
// request so a slower, older rebuild never replaces a newer one.
type rebuildMsg struct {
	revision uint64
	model    *diffmodel.Model
	warnings []*diffmodel.ParseError
	err      error
}

// syncResultMsg is the outcome of one remote viewed update.
type syncResultMsg struct {
	result viewsync.Result
}

// initialViewedMsg is the remote viewed record fetched at startup.
type initialViewedMsg struct {
	result viewsync.InitialResult
}

// exportDoneMsg reports an annotation export.
type exportDoneMsg struct {
	path    string
	count   int
	changes int
	err     error
}

// editorDoneMsg is sent when the external editor exits.
type editorDoneMsg struct {
	path string
	err  error
}

// browserDoneMsg reports launching the browser.
type browserDoneMsg struct {
	url string
	err error
}
