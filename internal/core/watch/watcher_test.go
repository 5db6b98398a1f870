package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWatcher(t *testing.T, opts Options) (*Watcher, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))

	if opts.Debounce == 0 {
		opts.Debounce = 50 * time.Millisecond
	}
	w, err := New(root, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w, root
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func next(t *testing.T, w *Watcher) Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ev, err := w.Next(ctx)
	require.NoError(t, err)
	return ev
}

func TestWatcher_CoalescesBurst(t *testing.T) {
	w, root := newWatcher(t, Options{})

	write(t, filepath.Join(root, "a.go"), "package a")
	write(t, filepath.Join(root, "pkg", "b.go"), "package pkg")
	write(t, filepath.Join(root, "a.go"), "package a // again")

	ev := next(t, w)
	assert.Equal(t, []string{"a.go", "pkg/b.go"}, ev.Paths)
	assert.False(t, ev.At.IsZero())
}

func TestWatcher_IgnoresNoise(t *testing.T) {
	w, root := newWatcher(t, Options{Ignore: []string{"**/*.log"}})

	write(t, filepath.Join(root, ".git", "index"), "x")
	write(t, filepath.Join(root, "a.go.swp"), "x")
	write(t, filepath.Join(root, "notes~"), "x")
	write(t, filepath.Join(root, "pkg", "debug.log"), "x")
	write(t, filepath.Join(root, "real.go"), "package real")

	ev := next(t, w)
	assert.Equal(t, []string{"real.go"}, ev.Paths)
}

func TestWatcher_FollowsNewDirectories(t *testing.T) {
	w, root := newWatcher(t, Options{})

	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	ev := next(t, w)
	assert.Contains(t, ev.Paths, "sub")

	write(t, filepath.Join(root, "sub", "c.go"), "package sub")
	ev = next(t, w)
	assert.Contains(t, ev.Paths, "sub/c.go")
}

func TestWatcher_ContextCancel(t *testing.T) {
	w, _ := newWatcher(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := w.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWatcher_Close(t *testing.T) {
	w, _ := newWatcher(t, Options{})
	require.NoError(t, w.Close())

	_, err := w.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), Options{})
	var werr *WatchError
	require.ErrorAs(t, err, &werr)
	assert.True(t, strings.HasPrefix(werr.Op, "add "), werr.Op)

	_, err = New(t.TempDir(), Options{Ignore: []string{"[unclosed"}})
	require.ErrorAs(t, err, &werr)
	assert.Contains(t, werr.Error(), "invalid ignore pattern")
}

func TestShouldIgnore(t *testing.T) {
	w := &Watcher{ignore: []string{"vendor/**"}}

	tests := []struct {
		path string
		want bool
	}{
		{path: "main.go", want: false},
		{path: "pkg/a.go", want: false},
		{path: ".git/HEAD", want: true},
		{path: "pkg/.cache/x", want: true},
		{path: ".env", want: true},
		{path: "a.go~", want: true},
		{path: "a.tmp", want: true},
		{path: "4913", want: true},
		{path: "vendor/lib/x.go", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, w.shouldIgnore(tt.path))
		})
	}
}
