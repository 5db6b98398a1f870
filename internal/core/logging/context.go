package logging

import "context"

type contextKey string

const (
	commitKey contextKey = "commit"
	prKey     contextKey = "pr"
)

// WithCommit adds the commit under review to the context.
func WithCommit(ctx context.Context, sha string) context.Context {
	return context.WithValue(ctx, commitKey, sha)
}

// WithPR adds the pull request number under review to the context.
func WithPR(ctx context.Context, number int) context.Context {
	return context.WithValue(ctx, prKey, number)
}

// GetCommit returns the commit SHA from the context or "".
func GetCommit(ctx context.Context) string {
	if sha, ok := ctx.Value(commitKey).(string); ok {
		return sha
	}
	return ""
}

// GetPR returns the pull request number from the context or 0.
func GetPR(ctx context.Context) int {
	if n, ok := ctx.Value(prKey).(int); ok {
		return n
	}
	return 0
}
