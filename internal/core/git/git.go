// Package git reads diffs and commit lists from a local repository through
// the git command-line tool.
package git

import "context"

// Commit is one commit in a range.
type Commit struct {
	SHA     string
	Subject string
}

// Git defines the git operations hunk needs.
type Git interface {
	// Root returns the top-level directory of the repository containing dir.
	Root(ctx context.Context, dir string) (string, error)
	// Diff returns the unified diff for target.
	Diff(ctx context.Context, dir string, target Target) (string, error)
	// CommitDiff returns the diff a single commit introduced.
	CommitDiff(ctx context.Context, dir, sha string) (string, error)
	// CommitsInRange lists the commits of a range target, oldest first.
	CommitsInRange(ctx context.Context, dir string, target Target) ([]Commit, error)
	// MergeBase returns the best common ancestor of a and b.
	MergeBase(ctx context.Context, dir, a, b string) (string, error)
}
