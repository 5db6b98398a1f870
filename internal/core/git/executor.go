package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/hay-kot/hunk/pkg/executil"
)

// diffFlags keep the output stable regardless of user configuration:
// rename detection on, no color, no external diff drivers.
var diffFlags = []string{"--no-color", "--no-ext-diff", "-M"}

// Executor implements Git using the git command-line tool.
type Executor struct {
	gitPath string
	exec    executil.Executor
}

// NewExecutor creates a new git executor with the specified git binary path.
func NewExecutor(gitPath string, exec executil.Executor) *Executor {
	return &Executor{gitPath: gitPath, exec: exec}
}

func (e *Executor) Root(ctx context.Context, dir string) (string, error) {
	out, err := e.exec.RunDir(ctx, dir, e.gitPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (e *Executor) Diff(ctx context.Context, dir string, target Target) (string, error) {
	var args []string

	switch target.Kind {
	case TargetWorkingTree:
		args = append([]string{"diff"}, diffFlags...)
		args = append(args, "HEAD")

	case TargetCommit:
		args = append([]string{"show", "--format="}, diffFlags...)
		args = append(args, "--diff-merges=first-parent", target.Rev)

	case TargetRange:
		args = append([]string{"diff"}, diffFlags...)
		args = append(args, target.String())

	default:
		return "", fmt.Errorf("unknown target kind: %d", target.Kind)
	}

	out, err := e.exec.RunDir(ctx, dir, e.gitPath, args...)
	if err != nil {
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}

	return string(out), nil
}

func (e *Executor) MergeBase(ctx context.Context, dir, a, b string) (string, error) {
	out, err := e.exec.RunDir(ctx, dir, e.gitPath, "merge-base", orHead(a), orHead(b))
	if err != nil {
		return "", fmt.Errorf("git merge-base: %w", err)
	}
	sha := strings.TrimSpace(string(out))
	if sha == "" {
		return "", fmt.Errorf("git merge-base: no common ancestor of %s and %s", orHead(a), orHead(b))
	}
	return sha, nil
}

func (e *Executor) CommitsInRange(ctx context.Context, dir string, target Target) ([]Commit, error) {
	if !target.IsRange() {
		return nil, ErrNotRange
	}

	from := orHead(target.From)
	if target.MergeBase {
		base, err := e.MergeBase(ctx, dir, target.From, target.To)
		if err != nil {
			return nil, err
		}
		from = base
	}

	out, err := e.exec.RunDir(ctx, dir, e.gitPath,
		"log", "--reverse", "--no-color", "--format=%H%x00%s", from+".."+orHead(target.To))
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}

	return parseCommitLog(string(out)), nil
}

// CommitDiff returns the diff a single commit introduced.
func (e *Executor) CommitDiff(ctx context.Context, dir, sha string) (string, error) {
	return e.Diff(ctx, dir, Target{Kind: TargetCommit, Rev: sha})
}

// parseCommitLog parses "--format=%H%x00%s" output.
func parseCommitLog(out string) []Commit {
	var commits []Commit
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		sha, subject, _ := strings.Cut(line, "\x00")
		commits = append(commits, Commit{SHA: sha, Subject: subject})
	}
	return commits
}
