package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/hunk/internal/core/annotation"
	"github.com/hay-kot/hunk/internal/core/config"
	"github.com/hay-kot/hunk/internal/core/diffmodel"
	"github.com/hay-kot/hunk/internal/core/nav"
	"github.com/hay-kot/hunk/internal/core/notify"
	"github.com/hay-kot/hunk/internal/core/review"
	"github.com/hay-kot/hunk/internal/core/source"
	"github.com/hay-kot/hunk/internal/core/styles"
	"github.com/hay-kot/hunk/internal/core/theme"
	"github.com/hay-kot/hunk/internal/core/viewsync"
	"github.com/hay-kot/hunk/internal/core/watch"
	"github.com/hay-kot/hunk/internal/tui/components"
	"github.com/hay-kot/hunk/pkg/tuitest"
)

const reviewDiff = `diff --git a/a.go b/a.go
--- a/a.go
+++ b/a.go
@@ -1,3 +1,6 @@ func main
 package a
+// one
+// two
+// three
 func A() {}
 func B() {}
diff --git a/old.txt b/new.txt
similarity index 100%
rename from old.txt
rename to new.txt
`

// shiftedDiff is reviewDiff with the hunk moved down two lines.
const shiftedDiff = `diff --git a/a.go b/a.go
--- a/a.go
+++ b/a.go
@@ -3,3 +3,6 @@ func main
 package a
+// one
+// two
+// three
 func A() {}
 func B() {}
`

func testStyles() styles.Styles {
	return styles.New(theme.MustLookup(theme.DefaultDark))
}

func testSession() *Session {
	return newSession(theme.MustLookup(theme.DefaultDark), termenv.Ascii)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Keybindings = config.DefaultKeybindings()
	cfg.Export.Dir = t.TempDir()
	return &cfg
}

func buildModel(t *testing.T, raw string) *diffmodel.Model {
	t.Helper()
	m, warnings := diffmodel.Build(raw, diffmodel.Options{})
	require.Empty(t, warnings)
	return m
}

func newTestModel(t *testing.T, mutate ...func(*Options)) Model {
	t.Helper()
	ctx := review.NewContext(buildModel(t, reviewDiff), review.ContextOptions{MinOverlap: 2})
	opts := Options{
		Session: testSession(),
		Config:  testConfig(t),
		Stack:   review.NewSnapshot(ctx),
		Target:  "working tree",
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	m := New(opts)
	return update(t, m, tuitest.WindowSize(100, 30))
}

func update(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return update(t, m, tuitest.KeyText(s)...)
}

func noticesAt(m Model, level notify.Level) []string {
	var out []string
	for _, n := range m.Notices() {
		if n.Level == level {
			out = append(out, n.Message)
		}
	}
	return out
}

func TestDispatch_Navigation(t *testing.T) {
	m := newTestModel(t)
	nav0 := m.active().Nav

	m, _ = m.Dispatch(config.ActionMoveDown)
	assert.Equal(t, nav.Position{File: 0, Hunk: 0, Line: 0}, nav0.Position())

	m, _ = m.Dispatch(config.ActionNextFile)
	assert.Equal(t, "new.txt", nav0.CurrentFile().Path)

	m, _ = m.Dispatch(config.ActionPrevFile)
	assert.Equal(t, nav.Position{File: 0, Hunk: 0, Line: nav.NoLine}, nav0.Position())

	m, _ = m.Dispatch("no-such-action")
	assert.Equal(t, ModeNormal, m.Mode())
}

func TestKeys_MoveAndToggleSidebar(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tuitest.KeyPress('j'), tuitest.KeyPress('j'), tuitest.KeyPress('k'))
	assert.Equal(t, 0, m.active().Nav.Position().Line)

	require.True(t, m.active().Nav.SidebarVisible())
	m = update(t, m, tuitest.KeyPress('b'))
	assert.False(t, m.active().Nav.SidebarVisible())
	assert.Equal(t, 0, m.sidebarWidth())
}

func TestMarkViewed_Local(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tuitest.KeyPress('v'))
	assert.True(t, m.active().IsViewed("a.go"))

	m = update(t, m, tuitest.KeyPress('v'))
	assert.False(t, m.active().IsViewed("a.go"))
}

func TestAnnotation_AddEditDelete(t *testing.T) {
	m := newTestModel(t)
	store := m.active().Annotations

	m = update(t, m, tuitest.KeyPress('j'), tuitest.KeyPress('j'), tuitest.KeyPress('a'))
	require.Equal(t, ModeAnnotationEdit, m.Mode())

	m = typeText(t, m, "fix null check")
	m = update(t, m, tuitest.KeyEnter())
	assert.Equal(t, ModeNormal, m.Mode())

	list := store.List()
	require.Len(t, list, 1)
	assert.Equal(t, "fix null check", list[0].Text)
	require.NotNil(t, list[0].Anchor.LineOffset)
	assert.Equal(t, 1, *list[0].Anchor.LineOffset)
	assert.True(t, m.unexported())

	// Annotating the same line again edits the existing annotation.
	m = update(t, m, tuitest.KeyPress('a'))
	require.Equal(t, ModeAnnotationEdit, m.Mode())
	assert.Equal(t, list[0].ID, m.editing.id)
	assert.Equal(t, "fix null check", m.editor.Value())

	// Saving empty text deletes it.
	m.editor = components.NewAnnotationEditor(m.st, "Edit annotation", "", "", m.width)
	m = update(t, m, tuitest.KeyEnter())
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, 0, store.Count())
}

func TestAnnotation_CancelAndEmptyAdd(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, tuitest.KeyPress('a'))
	m = typeText(t, m, "draft")
	m = update(t, m, tuitest.KeyEsc())
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, 0, m.active().Annotations.Count())

	m = update(t, m, tuitest.KeyPress('a'), tuitest.KeyEnter())
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, 0, m.active().Annotations.Count())
}

func TestAnnotation_NothingToAnnotateOnRename(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tuitest.KeyPress('l'), tuitest.KeyPress('a'))

	assert.Equal(t, ModeNormal, m.Mode())
	assert.Contains(t, noticesAt(m, notify.LevelInfo), "Nothing to annotate here")
}

func TestAnnotationList(t *testing.T) {
	m := newTestModel(t)
	c := m.active()
	f := &c.Model().Files[0]
	_, err := c.Annotations.Add(annotation.AnchorAt(f, &f.Hunks[0], 2), "line note")
	require.NoError(t, err)
	_, err = c.Annotations.Add(annotation.AnchorAt(f, &f.Hunks[0], -1), "hunk note")
	require.NoError(t, err)

	m = update(t, m, tuitest.KeyPress('A'))
	require.Equal(t, ModeAnnotationList, m.Mode())
	require.Equal(t, 2, m.list.Len())

	entries := m.listEntries()
	assert.Equal(t, "a.go:L3", entries[0].Location)
	assert.Equal(t, "a.go:L1-6", entries[1].Location)

	// enter jumps to the selected annotation.
	m = update(t, m, tuitest.KeyEnter())
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, nav.Position{File: 0, Hunk: 0, Line: 2}, c.Nav.Position())

	// d deletes the selection; j moves it.
	m = update(t, m, tuitest.KeyPress('A'), tuitest.KeyPress('j'), tuitest.KeyPress('d'))
	assert.Equal(t, 1, m.list.Len())
	assert.Equal(t, "line note", c.Annotations.List()[0].Text)

	m = update(t, m, tuitest.KeyEsc())
	assert.Equal(t, ModeNormal, m.Mode())
}

func TestAnnotationList_EditReturnsToList(t *testing.T) {
	m := newTestModel(t)
	c := m.active()
	f := &c.Model().Files[0]
	_, err := c.Annotations.Add(annotation.AnchorAt(f, &f.Hunks[0], -1), "old")
	require.NoError(t, err)

	m = update(t, m, tuitest.KeyPress('A'), tuitest.KeyPress('e'))
	require.Equal(t, ModeAnnotationEdit, m.Mode())

	m = typeText(t, m, " and new")
	m = update(t, m, tuitest.KeyEnter())
	assert.Equal(t, ModeAnnotationList, m.Mode())
	assert.Equal(t, "old and new", c.Annotations.List()[0].Text)
}

func TestHelpMode(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, tuitest.KeyPress('?'))
	require.Equal(t, ModeHelp, m.Mode())
	require.NotNil(t, m.help)
	assert.Contains(t, tuitest.StripANSI(m.help.View(m.st)), "Keybindings")

	// Navigation keys scroll the help instead of moving the cursor.
	m = update(t, m, tuitest.KeyPress('j'))
	assert.Equal(t, nav.NoLine, m.active().Nav.Position().Line)

	m = update(t, m, tuitest.KeyPress('?'))
	assert.Equal(t, ModeNormal, m.Mode())

	m = update(t, m, tuitest.KeyPress('?'), tuitest.KeyEsc())
	assert.Equal(t, ModeNormal, m.Mode())
}

func TestQuit(t *testing.T) {
	t.Run("no annotations quits immediately", func(t *testing.T) {
		m := newTestModel(t)
		m, cmd := updateCmd(t, m, tuitest.KeyPress('q'))
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.True(t, m.quitting)
	})

	t.Run("unexported annotations ask first", func(t *testing.T) {
		m := newTestModel(t)
		m = update(t, m, tuitest.KeyPress('a'))
		m = typeText(t, m, "keep me")
		m = update(t, m, tuitest.KeyEnter())

		m, cmd := updateCmd(t, m, tuitest.KeyPress('q'))
		assert.Nil(t, cmd)
		require.Equal(t, ModeConfirm, m.Mode())
		assert.Contains(t, m.confirm.Message(), "1 annotations")

		m = update(t, m, tuitest.KeyPress('n'))
		assert.Equal(t, ModeNormal, m.Mode())
		assert.False(t, m.quitting)

		m = update(t, m, tuitest.KeyPress('q'))
		m, cmd = updateCmd(t, m, tuitest.KeyPress('y'))
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.True(t, m.quitting)
	})
}

func TestExport(t *testing.T) {
	m := newTestModel(t)

	m, cmd := updateCmd(t, m, tuitest.KeyPress('e'))
	assert.Contains(t, noticesAt(m, notify.LevelInfo), "No annotations to export")
	assert.NotNil(t, cmd)

	m = update(t, m, tuitest.KeyPress('a'))
	m = typeText(t, m, "fix null check")
	m = update(t, m, tuitest.KeyEnter())
	require.True(t, m.unexported())

	m, cmd = updateCmd(t, m, tuitest.KeyPress('e'))
	require.NotNil(t, cmd)
	done, ok := cmd().(exportDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.Equal(t, filepath.Join(m.cfg.Export.Dir, "hunk-annotations.md"), done.path)

	data, err := os.ReadFile(done.path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fix null check")

	m = update(t, m, done)
	assert.False(t, m.unexported())
}

func stackedModel(t *testing.T) Model {
	t.Helper()
	c1 := review.NewContext(buildModel(t, reviewDiff), review.ContextOptions{
		Commit: review.Commit{SHA: "1111111aaaa", Subject: "first"},
	})
	c2 := review.NewContext(buildModel(t, shiftedDiff), review.ContextOptions{
		Commit: review.Commit{SHA: "2222222bbbb", Subject: "second"},
	})
	stack, err := review.NewStack([]*review.Context{c1, c2})
	require.NoError(t, err)
	return newTestModel(t, func(o *Options) { o.Stack = stack })
}

func TestStacked_SwitchingKeepsPerCommitState(t *testing.T) {
	m := stackedModel(t)
	header := tuitest.StripANSI(m.renderHeader())
	assert.Contains(t, header, "1/2")
	assert.Contains(t, header, "1111111 first")

	m = update(t, m, tuitest.KeyPress('v'))
	m = update(t, m, tuitest.KeyCtrl('n'))
	assert.Equal(t, 1, m.stack.Index())
	header = tuitest.StripANSI(m.renderHeader())
	assert.Contains(t, header, "2/2")
	assert.Contains(t, header, "2222222 second")
	assert.False(t, m.active().IsViewed("a.go"))

	m = update(t, m, tuitest.KeyPress('a'))
	m = typeText(t, m, "second commit note")
	m = update(t, m, tuitest.KeyEnter())

	m = update(t, m, tuitest.KeyCtrl('p'))
	assert.Equal(t, 0, m.stack.Index())
	assert.True(t, m.active().IsViewed("a.go"))
	assert.Equal(t, 0, m.active().Annotations.Count())

	// Export writes one file per commit with annotations.
	_, cmd := updateCmd(t, m, tuitest.KeyPress('e'))
	require.NotNil(t, cmd)
	done, ok := cmd().(exportDoneMsg)
	require.True(t, ok)
	assert.Equal(t, "hunk-annotations-2222222.md", filepath.Base(done.path))
}

func TestNextCommit_NotStacked(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tuitest.KeyCtrl('n'))
	assert.Equal(t, 0, m.stack.Index())
	require.NotEmpty(t, noticesAt(m, notify.LevelInfo))
}

func TestFocus(t *testing.T) {
	m := newTestModel(t, func(o *Options) { o.Focus = "new.txt" })
	assert.Equal(t, "new.txt", m.active().Nav.CurrentFile().Path)
	assert.Empty(t, noticesAt(m, notify.LevelWarning))

	m = newTestModel(t, func(o *Options) { o.Focus = "missing.go" })
	assert.Equal(t, "a.go", m.active().Nav.CurrentFile().Path)
	assert.Equal(t, []string{"missing.go is not in the diff, showing the first file"}, noticesAt(m, notify.LevelWarning))
}

type fakeRemote struct {
	viewed []string
	setErr error
	calls  int
}

func (r *fakeRemote) FetchViewed(context.Context) ([]string, error) {
	return r.viewed, nil
}

func (r *fakeRemote) SetViewed(context.Context, string, bool) error {
	r.calls++
	return r.setErr
}

func prModel(t *testing.T, remote *fakeRemote) Model {
	t.Helper()
	return newTestModel(t, func(o *Options) {
		o.Remote = remote
		o.Policy = viewsync.Policy{MaxAttempts: 1}
	})
}

func TestViewedSync_QueuedBeforeInitialFetch(t *testing.T) {
	remote := &fakeRemote{viewed: []string{"new.txt"}}
	m := prModel(t, remote)

	m, cmd := updateCmd(t, m, tuitest.KeyPress('v'))
	assert.Nil(t, cmd, "toggle is queued until the remote record arrives")
	assert.True(t, m.active().IsViewed("a.go"))

	m, cmd = updateCmd(t, m, initialViewedMsg{result: viewsync.FetchInitial(context.Background(), remote, m.policy)})
	assert.True(t, m.active().IsViewed("new.txt"))
	assert.True(t, m.active().IsViewed("a.go"))
	require.NotNil(t, cmd)

	res, ok := cmd().(syncResultMsg)
	require.True(t, ok)
	require.NoError(t, res.result.Err)
	assert.Equal(t, 1, remote.calls)
}

func TestViewedSync_RevertsOnFailure(t *testing.T) {
	remote := &fakeRemote{setErr: viewsync.Permanent(errors.New("forbidden"))}
	m := prModel(t, remote)
	m = update(t, m, initialViewedMsg{result: viewsync.InitialResult{}})

	m, cmd := updateCmd(t, m, tuitest.KeyPress('v'))
	require.NotNil(t, cmd)
	assert.True(t, m.active().IsViewed("a.go"), "optimistic toggle shows immediately")

	res, ok := cmd().(syncResultMsg)
	require.True(t, ok)

	m = update(t, m, res)
	assert.False(t, m.active().IsViewed("a.go"))
	warnings := noticesAt(m, notify.LevelWarning)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Could not sync a.go")
}

type fakeWatcher struct {
	closed bool
}

func (w *fakeWatcher) Next(ctx context.Context) (watch.Event, error) {
	return watch.Event{}, watch.ErrClosed
}

func (w *fakeWatcher) Close() error {
	w.closed = true
	return nil
}

type fakeSource struct {
	raw string
	err error
}

func (s *fakeSource) Load(context.Context) (source.Snapshot, error) {
	return source.Snapshot{Raw: s.raw, Title: "working tree"}, s.err
}

func (s *fakeSource) Describe() string { return "working tree" }

func TestWatch_RebuildReconciles(t *testing.T) {
	w := &fakeWatcher{}
	src := &fakeSource{raw: shiftedDiff}
	m := newTestModel(t, func(o *Options) {
		o.Watcher = w
		o.Source = src
	})

	c := m.active()
	f := &c.Model().Files[0]
	_, err := c.Annotations.Add(annotation.AnchorAt(f, &f.Hunks[0], 1), "survives")
	require.NoError(t, err)
	_, err = c.Annotations.Add(annotation.AnchorAt(f, &f.Hunks[0], -1), "also survives")
	require.NoError(t, err)

	m = update(t, m, watchEventMsg{event: watch.Event{Paths: []string{"a.go"}}})
	require.EqualValues(t, 1, m.revision)
	assert.True(t, m.loading)

	// A stale rebuild is ignored.
	m = update(t, m, rebuildMsg{revision: 0, model: buildModel(t, "")})
	assert.Equal(t, 2, c.Model().Len())

	msg := rebuild(context.Background(), src, diffmodel.Options{Revision: 1})()
	m = update(t, m, msg)
	assert.False(t, m.loading)
	assert.Equal(t, 1, c.Model().Len())
	assert.Empty(t, c.Annotations.Orphaned())
	assert.Equal(t, 2, c.Annotations.Count())
	assert.Empty(t, noticesAt(m, notify.LevelWarning))
}

func TestWatch_RemovedFileOrphansAnnotations(t *testing.T) {
	m := newTestModel(t, func(o *Options) {
		o.Watcher = &fakeWatcher{}
		o.Source = &fakeSource{}
	})
	c := m.active()
	f := &c.Model().Files[0]
	_, err := c.Annotations.Add(annotation.AnchorAt(f, &f.Hunks[0], -1), "kept")
	require.NoError(t, err)

	m = update(t, m, watchEventMsg{})
	m = update(t, m, rebuildMsg{revision: 1, model: buildModel(t, "")})

	assert.Equal(t, 1, c.Annotations.Count())
	assert.Len(t, c.Annotations.Orphaned(), 1)
	assert.Equal(t, []string{"1 annotation no longer matches the diff"}, noticesAt(m, notify.LevelWarning))
}

// editedDiff is reviewDiff with one context line of the hunk changed.
const editedDiff = `diff --git a/a.go b/a.go
--- a/a.go
+++ b/a.go
@@ -1,3 +1,6 @@ func main
 package a
+// one
+// two
+// three
 func A() {}
 func B() { return }
`

func TestAnnotation_RebuildWhileEditing(t *testing.T) {
	t.Run("saved on the rebuilt hunk", func(t *testing.T) {
		src := &fakeSource{raw: editedDiff}
		m := newTestModel(t, func(o *Options) {
			o.Watcher = &fakeWatcher{}
			o.Source = src
		})
		m = update(t, m, tuitest.KeyPress('j'), tuitest.KeyPress('a'))
		require.Equal(t, ModeAnnotationEdit, m.Mode())
		m = typeText(t, m, "still attached")

		m = update(t, m, watchEventMsg{})
		m = update(t, m, rebuild(context.Background(), src, diffmodel.Options{Revision: 1})())
		require.Equal(t, ModeAnnotationEdit, m.Mode())

		m = update(t, m, tuitest.KeyEnter())
		c := m.active()
		key := c.Model().Files[0].Hunks[0].Anchor
		notes := c.Annotations.ForHunk("a.go", key)
		require.Len(t, notes, 1)
		assert.Equal(t, "still attached", notes[0].Text)
		assert.Empty(t, c.Annotations.Orphaned())
		assert.Empty(t, noticesAt(m, notify.LevelWarning))
	})

	t.Run("flagged when the hunk is gone", func(t *testing.T) {
		m := newTestModel(t, func(o *Options) {
			o.Watcher = &fakeWatcher{}
			o.Source = &fakeSource{}
		})
		m = update(t, m, tuitest.KeyPress('a'))
		m = typeText(t, m, "lost hunk")

		m = update(t, m, watchEventMsg{})
		m = update(t, m, rebuildMsg{revision: 1, model: buildModel(t, "")})
		m = update(t, m, tuitest.KeyEnter())

		c := m.active()
		assert.Equal(t, 1, c.Annotations.Count())
		assert.Len(t, c.Annotations.Orphaned(), 1)
		assert.Equal(t, []string{"Annotation added, but its hunk is no longer in the diff"}, noticesAt(m, notify.LevelWarning))
	})
}

func TestWatch_ErrorDisablesWatching(t *testing.T) {
	w := &fakeWatcher{}
	m := newTestModel(t, func(o *Options) { o.Watcher = w })

	m = update(t, m, watchErrorMsg{err: watch.ErrClosed})
	assert.NotNil(t, m.watcher, "a closed watcher is not an error")

	m = update(t, m, watchErrorMsg{err: &watch.WatchError{Op: "read", Err: errors.New("too many files")}})
	assert.Nil(t, m.watcher)
	assert.True(t, w.closed)
	require.Len(t, noticesAt(m, notify.LevelWarning), 1)
}

func TestRenderMain(t *testing.T) {
	m := newTestModel(t)
	out := tuitest.StripANSI(m.renderMain())
	lines := strings.Split(out, "\n")

	assert.Len(t, lines, 30)
	assert.Contains(t, lines[0], "hunk working tree")
	assert.Contains(t, lines[0], "0/2 viewed")
	assert.Contains(t, out, "M a.go")
	assert.Contains(t, out, "new.txt")
	assert.Contains(t, lines[len(lines)-1], "a annotate")
}

func TestView_Overlays(t *testing.T) {
	m := newTestModel(t)
	for _, key := range []rune{'?', 'A'} {
		next := update(t, m, tuitest.KeyPress(key))
		assert.NotPanics(t, func() { next.View() })
	}
}
