package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/hunk/internal/core/nav"
	"github.com/hay-kot/hunk/internal/core/notify"
	"github.com/hay-kot/hunk/pkg/tuitest"
)

func runSearch(t *testing.T, m Model, query string) Model {
	t.Helper()
	m = update(t, m, tuitest.KeyPress('/'))
	require.Equal(t, ModeSearch, m.Mode())
	m = typeText(t, m, query)
	return update(t, m, tuitest.KeyEnter())
}

func TestSearch_StepsThroughMatches(t *testing.T) {
	m := runSearch(t, newTestModel(t), "//")
	assert.Equal(t, ModeNormal, m.Mode())

	tests := []struct {
		name   string
		key    rune
		line   int
		status string
	}{
		{name: "next", key: '>', line: 2, status: "/// 2/3"},
		{name: "prev", key: '<', line: 1, status: "/// 1/3"},
		{name: "prev wraps", key: '<', line: 3, status: "/// 3/3"},
		{name: "next wraps", key: '>', line: 1, status: "/// 1/3"},
	}

	assert.Equal(t, nav.Position{File: 0, Hunk: 0, Line: 1}, m.active().Nav.Position())
	for _, tt := range tests {
		m = update(t, m, tuitest.KeyPress(tt.key))
		assert.Equal(t, tt.line, m.active().Nav.Position().Line, tt.name)
		assert.Equal(t, tt.status, m.searchStatus(), tt.name)
	}

	// esc clears the search.
	m = update(t, m, tuitest.KeyEsc())
	assert.Empty(t, m.searchStatus())
}

func TestSearch_IgnoresCase(t *testing.T) {
	m := runSearch(t, newTestModel(t), "FUNC B")
	assert.Equal(t, nav.Position{File: 0, Hunk: 0, Line: 5}, m.active().Nav.Position())
	assert.Equal(t, "/FUNC B 1/1", m.searchStatus())
}

func TestSearch_NoMatches(t *testing.T) {
	m := runSearch(t, newTestModel(t), "zzz")
	assert.Equal(t, nav.Position{File: 0, Hunk: 0, Line: nav.NoLine}, m.active().Nav.Position())
	assert.Equal(t, "/zzz no matches", m.searchStatus())
	assert.Contains(t, noticesAt(m, notify.LevelInfo), `No matches for "zzz"`)
}

func TestSearch_CancelKeepsPosition(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tuitest.KeyPress('/'))
	m = typeText(t, m, "two")
	m = update(t, m, tuitest.KeyEsc())

	assert.Equal(t, ModeNormal, m.Mode())
	assert.Empty(t, m.searchStatus())
	assert.Equal(t, nav.Position{File: 0, Hunk: 0, Line: nav.NoLine}, m.active().Nav.Position())
}

func TestSearch_NextWithoutQuery(t *testing.T) {
	m := update(t, newTestModel(t), tuitest.KeyPress('>'))
	assert.Equal(t, []string{"No search, press / to search"}, noticesAt(m, notify.LevelInfo))
}

func TestSearch_KeysDoNotNavigateWhileTyping(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tuitest.KeyPress('/'))
	m = typeText(t, m, "jq")

	assert.Equal(t, ModeSearch, m.Mode())
	assert.Equal(t, "jq", m.search.Value())
	assert.Equal(t, nav.NoLine, m.active().Nav.Position().Line)
}
