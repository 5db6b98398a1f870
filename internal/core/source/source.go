// Package source fetches raw diff text for a review target: the working
// tree, a commit, a commit range or a GitHub pull request.
package source

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/hay-kot/hunk/internal/core/git"
	"github.com/hay-kot/hunk/internal/core/github"
	"github.com/hay-kot/hunk/internal/core/logging"
)

// Snapshot is one fetch of diff text.
type Snapshot struct {
	Raw string
	// Title describes what the diff is of, for headers and exports.
	Title string
}

// CommitSnapshot is the diff of one commit in a stacked review.
type CommitSnapshot struct {
	Commit git.Commit
	Snapshot
}

// Source is a pull-based supplier of diff text. Load is called once at
// startup and again for every watch-triggered rebuild.
type Source interface {
	Load(ctx context.Context) (Snapshot, error)
	Describe() string
}

// Stacker is implemented by sources that can split themselves into one
// snapshot per commit.
type Stacker interface {
	LoadCommits(ctx context.Context) ([]CommitSnapshot, error)
}

// ErrStackNeedsRange is returned when stacked review is requested for a
// target that is not a commit range.
var ErrStackNeedsRange = errors.New("stacked review needs a commit range (A..B or A...B)")

// ErrEmptyRange is returned when a range contains no commits.
var ErrEmptyRange = errors.New("range contains no commits")

// GitSource reads diffs from a local repository.
type GitSource struct {
	git    git.Git
	dir    string
	target git.Target
	log    zerolog.Logger
}

// NewGitSource creates a source for target in the repository at dir.
func NewGitSource(g git.Git, dir string, target git.Target) *GitSource {
	return &GitSource{git: g, dir: dir, target: target, log: logging.Component("source")}
}

func (s *GitSource) Target() git.Target { return s.target }

func (s *GitSource) Describe() string { return s.target.Describe() }

func (s *GitSource) Load(ctx context.Context) (Snapshot, error) {
	raw, err := s.git.Diff(ctx, s.dir, s.target)
	if err != nil {
		return Snapshot{}, err
	}
	s.log.Debug().Str("target", s.target.Describe()).Int("bytes", len(raw)).Msg("loaded diff")
	return Snapshot{Raw: raw, Title: s.target.Describe()}, nil
}

// LoadCommits loads every commit of a range target, oldest first.
func (s *GitSource) LoadCommits(ctx context.Context) ([]CommitSnapshot, error) {
	if !s.target.IsRange() {
		return nil, ErrStackNeedsRange
	}

	commits, err := s.git.CommitsInRange(ctx, s.dir, s.target)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, fmt.Errorf("%s: %w", s.target.Describe(), ErrEmptyRange)
	}

	out := make([]CommitSnapshot, 0, len(commits))
	for _, c := range commits {
		raw, err := s.git.CommitDiff(logging.WithCommit(ctx, c.SHA), s.dir, c.SHA)
		if err != nil {
			return nil, fmt.Errorf("commit %s: %w", c.SHA, err)
		}
		out = append(out, CommitSnapshot{
			Commit:   c,
			Snapshot: Snapshot{Raw: raw, Title: c.Subject},
		})
	}
	return out, nil
}

// PRClient is the subset of the gh client a PRSource uses.
type PRClient interface {
	View(ctx context.Context, number int) (github.PR, error)
	Diff(ctx context.Context, number int) (string, error)
}

// PRSource reads a pull request's diff.
type PRSource struct {
	client PRClient
	number int
	pr     github.PR
}

// NewPRSource creates a source for pull request number.
func NewPRSource(client PRClient, number int) *PRSource {
	return &PRSource{client: client, number: number}
}

// Resolve fetches the pull request metadata. It is called once before the
// first Load.
func (s *PRSource) Resolve(ctx context.Context) (github.PR, error) {
	pr, err := s.client.View(logging.WithPR(ctx, s.number), s.number)
	if err != nil {
		return github.PR{}, err
	}
	s.pr = pr
	return pr, nil
}

// PR returns the resolved pull request.
func (s *PRSource) PR() github.PR { return s.pr }

func (s *PRSource) Describe() string {
	if s.pr.Title != "" {
		return fmt.Sprintf("#%d %s", s.number, s.pr.Title)
	}
	return "#" + strconv.Itoa(s.number)
}

func (s *PRSource) Load(ctx context.Context) (Snapshot, error) {
	raw, err := s.client.Diff(logging.WithPR(ctx, s.number), s.number)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Raw: raw, Title: s.Describe()}, nil
}
