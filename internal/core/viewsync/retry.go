package viewsync

import (
	"context"
	"errors"
	"time"
)

// Policy bounds how hard a remote update is retried.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Timeout caps each individual attempt.
	Timeout time.Duration
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Timeout:     10 * time.Second,
	}
}

func (p Policy) normalize() Policy {
	d := DefaultPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.Timeout <= 0 {
		p.Timeout = d.Timeout
	}
	return p
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// retryWithBackoff calls fn until it succeeds, returns a permanent error, or
// the attempts run out. The delay doubles after every failed attempt.
func retryWithBackoff(ctx context.Context, p Policy, fn func(ctx context.Context) error) (int, error) {
	p = p.normalize()

	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
		lastErr = fn(attemptCtx)
		cancel()
		if lastErr == nil {
			return attempt + 1, nil
		}

		if IsPermanent(lastErr) {
			return attempt + 1, lastErr
		}

		if attempt+1 < p.MaxAttempts {
			backoff := p.BaseDelay * time.Duration(1<<uint(attempt))
			select {
			case <-ctx.Done():
				return attempt + 1, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return p.MaxAttempts, lastErr
}
