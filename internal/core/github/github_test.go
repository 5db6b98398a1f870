package github

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/hunk/internal/core/viewsync"
	"github.com/hay-kot/hunk/pkg/executil"
)

type mockExecutor struct {
	calls      [][]string
	runDirFunc func(args []string) ([]byte, error)
}

func (m *mockExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	return m.RunDir(ctx, "", cmd, args...)
}

func (m *mockExecutor) RunDir(_ context.Context, _, _ string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, args)
	return m.runDirFunc(args)
}

func argValue(args []string, key string) string {
	for _, a := range args {
		if v, ok := strings.CutPrefix(a, key+"="); ok {
			return v
		}
	}
	return ""
}

func TestParsePRInput(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "42", want: 42},
		{in: "#42", want: 42},
		{in: " 7 ", want: 7},
		{in: "https://github.com/hay-kot/hunk/pull/123", want: 123},
		{in: "https://github.com/hay-kot/hunk/pull/123/files", want: 123},
		{in: "https://github.com/hay-kot/hunk/issues/123", wantErr: true},
		{in: "0", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePRInput(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPR)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_View(t *testing.T) {
	rec := &executil.RecordingExecutor{Outputs: map[string][]byte{
		"gh pr view": []byte(`{"id":"PR_kw1","number":12,"title":"Add stacking","url":"https://github.com/o/r/pull/12","state":"OPEN","headRefName":"stack","baseRefName":"main"}`),
	}}
	pr, err := NewClient("gh", "/repo", rec).View(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, "PR_kw1", pr.ID)
	assert.Equal(t, "Add stacking", pr.Title)
	assert.Equal(t, []string{"gh pr view 12 --json " + prFields}, rec.Lines())
	assert.Equal(t, "/repo", rec.Commands[0].Dir)
}

func TestClient_View_Errors(t *testing.T) {
	t.Run("bad json", func(t *testing.T) {
		rec := &executil.RecordingExecutor{Outputs: map[string][]byte{"gh": []byte("not json")}}
		_, err := NewClient("gh", "", rec).View(context.Background(), 1)
		assert.ErrorContains(t, err, "decode pr 1")
	})

	t.Run("not found is permanent", func(t *testing.T) {
		rec := &executil.RecordingExecutor{Errors: map[string]error{"gh": errors.New("GraphQL: Could not resolve to a PullRequest")}}
		_, err := NewClient("gh", "", rec).View(context.Background(), 1)
		require.Error(t, err)
		assert.True(t, viewsync.IsPermanent(err))
	})
}

func TestClient_Diff(t *testing.T) {
	rec := &executil.RecordingExecutor{Outputs: map[string][]byte{"gh pr diff": []byte("diff --git a/x b/x\n")}}
	out, err := NewClient("gh", "", rec).Diff(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "diff --git a/x b/x\n", out)
	assert.Equal(t, []string{"gh pr diff 5 --color=never"}, rec.Lines())
}

func TestClient_ViewedFiles_Paginates(t *testing.T) {
	pages := map[string]string{
		"": `{"data":{"node":{"files":{"nodes":[
			{"path":"a.go","viewerViewedState":"VIEWED"},
			{"path":"b.go","viewerViewedState":"UNVIEWED"}
		],"pageInfo":{"hasNextPage":true,"endCursor":"c1"}}}}}`,
		"c1": `{"data":{"node":{"files":{"nodes":[
			{"path":"c.go","viewerViewedState":"DISMISSED"},
			{"path":"d.go","viewerViewedState":"VIEWED"}
		],"pageInfo":{"hasNextPage":false,"endCursor":"c2"}}}}}`,
	}

	mock := &mockExecutor{runDirFunc: func(args []string) ([]byte, error) {
		assert.Equal(t, "PR_1", argValue(args, "id"))
		return []byte(pages[argValue(args, "cursor")]), nil
	}}

	paths, err := NewClient("gh", "", mock).ViewedFiles(context.Background(), "PR_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "d.go"}, paths)
	assert.Len(t, mock.calls, 2)
}

func TestViewedRemote_SetViewed(t *testing.T) {
	mock := &mockExecutor{runDirFunc: func([]string) ([]byte, error) { return []byte(`{}`), nil }}
	remote := NewViewedRemote(NewClient("gh", "", mock), PR{ID: "PR_9"})

	require.NoError(t, remote.SetViewed(context.Background(), "pkg/a.go", true))
	require.NoError(t, remote.SetViewed(context.Background(), "pkg/a.go", false))

	require.Len(t, mock.calls, 2)
	assert.Contains(t, argValue(mock.calls[0], "query"), "markFileAsViewed")
	assert.Contains(t, argValue(mock.calls[1], "query"), "unmarkFileAsViewed")
	for _, call := range mock.calls {
		assert.Equal(t, "PR_9", argValue(call, "id"))
		assert.Equal(t, "pkg/a.go", argValue(call, "path"))
	}
}

func TestClassify(t *testing.T) {
	assert.False(t, viewsync.IsPermanent(classify(errors.New("connection reset"))))
	assert.True(t, viewsync.IsPermanent(classify(errors.New("HTTP 403: forbidden"))))
}
