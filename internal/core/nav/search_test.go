package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	m := build(t, sampleDiff)

	tests := []struct {
		name  string
		query string
		want  []Position
	}{
		{name: "empty query", query: "", want: nil},
		{name: "no match", query: "seven", want: nil},
		{
			name:  "ignores case",
			query: "two",
			want:  []Position{{File: 0, Hunk: 0, Line: 1}, {File: 0, Hunk: 0, Line: 2}},
		},
		{
			name:  "across files",
			query: "five",
			want:  []Position{{File: 2, Hunk: 0, Line: 0}, {File: 2, Hunk: 0, Line: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Search(m, tt.query))
		})
	}
}

func TestState_NextPrevMatch(t *testing.T) {
	m := build(t, sampleDiff)
	s := New(m)
	matches := Search(m, "twenty")
	require.Len(t, matches, 3)

	assert.Equal(t, 0, s.NextMatch(matches))
	assert.Equal(t, Position{File: 0, Hunk: 1, Line: 0}, s.Position())
	assert.Equal(t, 1, s.NextMatch(matches))
	assert.Equal(t, 2, s.NextMatch(matches))

	// Wraps around in both directions.
	assert.Equal(t, 0, s.NextMatch(matches))
	assert.Equal(t, 2, s.PrevMatch(matches))
	assert.Equal(t, Position{File: 0, Hunk: 1, Line: 2}, s.Position())
	assert.Equal(t, 1, s.PrevMatch(matches))

	// Starting past every match wraps to the first.
	require.True(t, s.JumpTo(Position{File: 2, Hunk: 0, Line: 0}))
	assert.Equal(t, 0, s.NextMatch(matches))

	assert.Equal(t, -1, s.NextMatch(nil))
	assert.Equal(t, -1, s.PrevMatch(nil))
}
