// Package viewsync keeps per-file viewed flags in step with a remote pull
// request. Local flags change immediately; remote updates run as jobs on
// worker goroutines and are reverted locally if they ultimately fail.
//
// A Synchronizer is owned by the event loop and must not be shared across
// goroutines. Job.Run and FetchInitial are the parts that run on workers.
package viewsync

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hay-kot/hunk/internal/core/logging"
)

// Remote is the pull request's server-side viewed record.
type Remote interface {
	FetchViewed(ctx context.Context) ([]string, error)
	SetViewed(ctx context.Context, path string, viewed bool) error
}

// Flags is the local viewed set a synchronizer updates.
type Flags interface {
	Has(path string) bool
	Set(path string, viewed bool)
}

// SyncError reports a remote update that failed after all retries, or a
// failed initial fetch.
type SyncError struct {
	Path     string
	Viewed   bool
	Attempts int
	Err      error
}

func (e *SyncError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("fetch viewed files: %v", e.Err)
	}
	state := "viewed"
	if !e.Viewed {
		state = "not viewed"
	}
	return fmt.Sprintf("mark %s as %s (after %d attempts): %v", e.Path, state, e.Attempts, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// Job is one remote update. It is immutable once created.
type Job struct {
	Path       string
	Viewed     bool
	Generation uint64
	seq        uint64
}

// Result is the outcome of running a Job.
type Result struct {
	Job      *Job
	Attempts int
	Err      error
}

// Run pushes the job to remote, retrying per policy.
func (j *Job) Run(ctx context.Context, remote Remote, policy Policy) Result {
	attempts, err := retryWithBackoff(ctx, policy, func(ctx context.Context) error {
		return remote.SetViewed(ctx, j.Path, j.Viewed)
	})
	return Result{Job: j, Attempts: attempts, Err: err}
}

// InitialResult is the outcome of FetchInitial.
type InitialResult struct {
	Paths []string
	Err   error
}

type queuedToggle struct {
	path     string
	viewed   bool
	previous bool
}

// Synchronizer tracks in-flight jobs and the last value the remote is known
// to hold for each path with work in flight.
type Synchronizer struct {
	ready      bool
	generation uint64
	seq        uint64
	latest     map[string]uint64
	confirmed  map[string]bool
	queued     []queuedToggle
	log        zerolog.Logger
}

// New returns a synchronizer waiting for its initial fetch.
func New() *Synchronizer {
	return &Synchronizer{
		latest:    map[string]uint64{},
		confirmed: map[string]bool{},
		log:       logging.Component("viewsync"),
	}
}

// Ready reports whether the initial fetch has been applied.
func (s *Synchronizer) Ready() bool { return s.ready }

// Generation returns the current generation.
func (s *Synchronizer) Generation() uint64 { return s.generation }

// Pending returns the number of paths with an update in flight or queued.
func (s *Synchronizer) Pending() int {
	if !s.ready {
		return len(s.queued)
	}
	return len(s.latest)
}

// Invalidate discards every in-flight job. Their results will be ignored.
func (s *Synchronizer) Invalidate() {
	s.generation++
	clear(s.latest)
	clear(s.confirmed)
}

// Toggle flips path locally and returns the job that pushes the new value.
// Before the initial fetch has been applied the toggle is queued and Toggle
// returns nil.
func (s *Synchronizer) Toggle(set Flags, path string) *Job {
	previous := set.Has(path)
	viewed := !previous
	set.Set(path, viewed)

	if !s.ready {
		s.queued = append(s.queued, queuedToggle{path: path, viewed: viewed, previous: previous})
		return nil
	}
	return s.newJob(path, viewed, previous)
}

func (s *Synchronizer) newJob(path string, viewed, previous bool) *Job {
	if _, inflight := s.latest[path]; !inflight {
		s.confirmed[path] = previous
	}
	s.seq++
	s.latest[path] = s.seq
	return &Job{Path: path, Viewed: viewed, Generation: s.generation, seq: s.seq}
}

// Apply folds a job result into set. Success leaves the optimistic value in
// place. A failure of the newest job for its path restores the last value the
// remote is known to hold and is returned as a SyncError. Results from an
// older generation or superseded by a newer toggle change nothing locally.
func (s *Synchronizer) Apply(set Flags, r Result) *SyncError {
	j := r.Job
	if j == nil || j.Generation != s.generation {
		s.log.Debug().Msg("ignoring stale sync result")
		return nil
	}

	if s.latest[j.Path] != j.seq {
		if r.Err == nil {
			s.confirmed[j.Path] = j.Viewed
		}
		s.log.Debug().Str("path", j.Path).Msg("ignoring superseded sync result")
		return nil
	}

	confirmed := s.confirmed[j.Path]
	delete(s.latest, j.Path)
	delete(s.confirmed, j.Path)

	if r.Err == nil {
		return nil
	}

	set.Set(j.Path, confirmed)
	s.log.Warn().Err(r.Err).Str("path", j.Path).Int("attempts", r.Attempts).Msg("viewed sync failed, reverted")
	return &SyncError{Path: j.Path, Viewed: j.Viewed, Attempts: r.Attempts, Err: r.Err}
}

// FetchInitial reads the remote viewed record, retrying per policy. It is
// meant to run on a worker.
func FetchInitial(ctx context.Context, remote Remote, policy Policy) InitialResult {
	var paths []string
	_, err := retryWithBackoff(ctx, policy, func(ctx context.Context) error {
		var err error
		paths, err = remote.FetchViewed(ctx)
		return err
	})
	return InitialResult{Paths: paths, Err: err}
}

// ApplyInitial makes the remote record the starting viewed state for files,
// then replays toggles made while the fetch was in flight and returns a job
// for each path whose final value differs from the remote. When the fetch
// failed, local flags are kept, queued toggles are still pushed and the
// failure is returned as a SyncError.
func (s *Synchronizer) ApplyInitial(set Flags, files []string, r InitialResult) ([]*Job, *SyncError) {
	if s.ready {
		return nil, nil
	}
	s.ready = true

	var serr *SyncError
	if r.Err != nil {
		serr = &SyncError{Err: r.Err}
		s.log.Warn().Err(r.Err).Msg("initial viewed fetch failed")
	} else {
		remote := make(map[string]bool, len(r.Paths))
		for _, p := range r.Paths {
			remote[p] = true
		}
		for _, p := range files {
			set.Set(p, remote[p])
		}
	}

	// Collapse repeated toggles of one path into its final value while keeping
	// first-toggle order.
	var order []string
	final := map[string]queuedToggle{}
	for _, q := range s.queued {
		first, seen := final[q.path]
		if !seen {
			order = append(order, q.path)
			final[q.path] = q
			continue
		}
		first.viewed = q.viewed
		final[q.path] = first
	}
	s.queued = nil

	var jobs []*Job
	for _, p := range order {
		q := final[p]
		base := set.Has(p)
		if r.Err != nil {
			base = q.previous
		}
		set.Set(p, q.viewed)
		if base == q.viewed {
			continue
		}
		jobs = append(jobs, s.newJob(p, q.viewed, base))
	}
	return jobs, serr
}
