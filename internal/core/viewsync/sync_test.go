package viewsync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flags map[string]bool

func (f flags) Has(path string) bool { return f[path] }
func (f flags) Set(path string, viewed bool) { f[path] = viewed }

type fakeRemote struct {
	mu       sync.Mutex
	viewed   []string
	fetchErr error
	// failures is how many SetViewed calls fail before one succeeds; -1
	// fails forever.
	failures int
	err      error
	calls    int
}

func (r *fakeRemote) FetchViewed(context.Context) ([]string, error) {
	return r.viewed, r.fetchErr
}

func (r *fakeRemote) SetViewed(context.Context, string, bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failures < 0 || r.calls <= r.failures {
		return r.err
	}
	return nil
}

var fastPolicy = Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Timeout: time.Second}

func readySync(t *testing.T, set Flags) *Synchronizer {
	t.Helper()
	s := New()
	jobs, serr := s.ApplyInitial(set, nil, InitialResult{})
	require.Nil(t, serr)
	require.Empty(t, jobs)
	return s
}

func TestToggle_OptimisticSuccess(t *testing.T) {
	set := flags{}
	s := readySync(t, set)
	remote := &fakeRemote{failures: 1, err: errors.New("502")}

	job := s.Toggle(set, "a.go")
	require.NotNil(t, job)
	assert.True(t, set["a.go"], "toggle is visible before the remote answers")
	assert.Equal(t, 1, s.Pending())

	res := job.Run(context.Background(), remote, fastPolicy)
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Attempts)

	assert.Nil(t, s.Apply(set, res))
	assert.True(t, set["a.go"])
	assert.Equal(t, 0, s.Pending())
}

func TestToggle_RevertsOnPermanentFailure(t *testing.T) {
	set := flags{"a.go": true}
	s := readySync(t, set)
	remote := &fakeRemote{failures: -1, err: errors.New("network down")}

	job := s.Toggle(set, "a.go")
	assert.False(t, set["a.go"])

	res := job.Run(context.Background(), remote, fastPolicy)
	require.Error(t, res.Err)
	assert.Equal(t, 3, res.Attempts)

	serr := s.Apply(set, res)
	require.NotNil(t, serr)
	assert.Equal(t, "a.go", serr.Path)
	assert.ErrorIs(t, serr, remote.err)
	assert.True(t, set["a.go"], "reverted to the pre-toggle value")
}

func TestToggle_PermanentErrorIsNotRetried(t *testing.T) {
	set := flags{}
	s := readySync(t, set)
	remote := &fakeRemote{failures: -1, err: Permanent(errors.New("forbidden"))}

	res := s.Toggle(set, "a.go").Run(context.Background(), remote, fastPolicy)
	require.Error(t, res.Err)
	assert.True(t, IsPermanent(res.Err))
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 1, remote.calls)
}

func TestApply_SupersededResults(t *testing.T) {
	set := flags{}
	s := readySync(t, set)

	first := s.Toggle(set, "a.go")
	second := s.Toggle(set, "a.go")
	require.False(t, set["a.go"])

	// The first update landed; the second then fails. The remote holds the
	// first value, so that is what the local flag reverts to.
	assert.Nil(t, s.Apply(set, Result{Job: first, Attempts: 1}))
	assert.False(t, set["a.go"], "superseded results do not touch local state")

	serr := s.Apply(set, Result{Job: second, Attempts: 3, Err: errors.New("boom")})
	require.NotNil(t, serr)
	assert.True(t, set["a.go"])
}

func TestApply_StaleGeneration(t *testing.T) {
	set := flags{}
	s := readySync(t, set)

	job := s.Toggle(set, "a.go")
	s.Invalidate()

	assert.Nil(t, s.Apply(set, Result{Job: job, Err: errors.New("late failure")}))
	assert.True(t, set["a.go"], "stale failures do not revert")
	assert.Equal(t, 0, s.Pending())
}

func TestApplyInitial_MergesRemoteAndReplaysQueue(t *testing.T) {
	set := flags{}
	s := New()

	assert.Nil(t, s.Toggle(set, "a.go"), "toggles are queued before the initial fetch")
	assert.Nil(t, s.Toggle(set, "b.go"))
	assert.Nil(t, s.Toggle(set, "c.go"))
	assert.Nil(t, s.Toggle(set, "c.go"))
	assert.True(t, set["a.go"])
	assert.Equal(t, 4, s.Pending())

	remote := &fakeRemote{viewed: []string{"b.go", "other-branch.go"}}
	res := FetchInitial(context.Background(), remote, fastPolicy)
	require.NoError(t, res.Err)

	jobs, serr := s.ApplyInitial(set, []string{"a.go", "b.go", "c.go", "d.go"}, res)
	require.Nil(t, serr)
	assert.True(t, s.Ready())

	assert.True(t, set["a.go"])
	assert.True(t, set["b.go"])
	assert.False(t, set["c.go"])
	assert.False(t, set["d.go"])
	assert.NotContains(t, set, "other-branch.go")

	// b.go already matches the remote and c.go was toggled back.
	require.Len(t, jobs, 1)
	assert.Equal(t, "a.go", jobs[0].Path)
	assert.True(t, jobs[0].Viewed)
}

func TestApplyInitial_FetchFailure(t *testing.T) {
	set := flags{}
	s := New()
	s.Toggle(set, "a.go")

	remote := &fakeRemote{fetchErr: errors.New("gh: not logged in")}
	res := FetchInitial(context.Background(), remote, Policy{MaxAttempts: 1})

	jobs, serr := s.ApplyInitial(set, []string{"a.go"}, res)
	require.NotNil(t, serr)
	assert.Contains(t, serr.Error(), "fetch viewed files")
	assert.True(t, set["a.go"], "local toggles survive a failed fetch")
	require.Len(t, jobs, 1)

	jobs, serr = s.ApplyInitial(set, nil, InitialResult{})
	assert.Nil(t, jobs)
	assert.Nil(t, serr)
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	attempts, err := retryWithBackoff(ctx, Policy{MaxAttempts: 5, BaseDelay: time.Hour}, func(context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestPolicy_Normalize(t *testing.T) {
	p := Policy{}.normalize()
	assert.Equal(t, DefaultPolicy().MaxAttempts, p.MaxAttempts)
	assert.Equal(t, DefaultPolicy().Timeout, p.Timeout)
	assert.Equal(t, time.Duration(0), p.BaseDelay)
}
