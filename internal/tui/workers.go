package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "charm.land/bubbletea/v2"

	"github.com/hay-kot/hunk/internal/core/diffmodel"
	"github.com/hay-kot/hunk/internal/core/source"
	"github.com/hay-kot/hunk/internal/core/viewsync"
	"github.com/hay-kot/hunk/internal/core/watch"
)

// Watcher reports debounced file-system changes.
type Watcher interface {
	Next(ctx context.Context) (watch.Event, error)
	Close() error
}

// Workers are tea.Cmd functions. They only return messages and never touch
// review state.

func waitForChange(ctx context.Context, w Watcher) tea.Cmd {
	return func() tea.Msg {
		ev, err := w.Next(ctx)
		if err != nil {
			return watchErrorMsg{err: err}
		}
		return watchEventMsg{event: ev}
	}
}

func rebuild(ctx context.Context, src source.Source, opts diffmodel.Options) tea.Cmd {
	return func() tea.Msg {
		snap, err := src.Load(ctx)
		if err != nil {
			return rebuildMsg{revision: opts.Revision, err: err}
		}
		m, warnings := diffmodel.Build(snap.Raw, opts)
		return rebuildMsg{revision: opts.Revision, model: m, warnings: warnings}
	}
}

func runSyncJob(ctx context.Context, job *viewsync.Job, remote viewsync.Remote, policy viewsync.Policy) tea.Cmd {
	return func() tea.Msg {
		return syncResultMsg{result: job.Run(ctx, remote, policy)}
	}
}

func fetchInitialViewed(ctx context.Context, remote viewsync.Remote, policy viewsync.Policy) tea.Cmd {
	return func() tea.Msg {
		return initialViewedMsg{result: viewsync.FetchInitial(ctx, remote, policy)}
	}
}

// writeExport writes one export file. changes is the annotation change
// counter the export was taken at.
func writeExport(path string, data []byte, count, changes int) tea.Cmd {
	return func() tea.Msg {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return exportDoneMsg{path: path, err: fmt.Errorf("create export dir: %w", err)}
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return exportDoneMsg{path: path, err: fmt.Errorf("write export: %w", err)}
		}
		return exportDoneMsg{path: path, count: count, changes: changes}
	}
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, watch.ErrClosed)
}
