package tui

import (
	"fmt"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/hay-kot/hunk/internal/core/config"
	"github.com/hay-kot/hunk/internal/core/nav"
	"github.com/hay-kot/hunk/internal/core/styles"
)

func newSearchInput(st styles.Styles) textinput.Model {
	in := textinput.New()
	in.Prompt = "/"
	in.Placeholder = "search lines"
	s := textinput.DefaultStyles(st.Theme.Dark)
	s.Focused.Prompt = st.HeaderCounter
	s.Cursor.Color = st.Foreground
	in.SetStyles(s)
	return in
}

// startSearch opens the search prompt in the status bar.
func (m Model) startSearch() (Model, tea.Cmd) {
	m.search.Reset()
	m.mode = ModeSearch
	return m, m.search.Focus()
}

func (m Model) handleSearchKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.Blur()
		m.mode = ModeNormal
		return m, nil
	case "enter":
		m.search.Blur()
		m.mode = ModeNormal
		m.query = m.search.Value()
		if m.query == "" {
			return m.clearSearch(), nil
		}
		return m.stepMatch((*nav.State).NextMatch)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) searchNext() (Model, tea.Cmd) { return m.stepMatch((*nav.State).NextMatch) }
func (m Model) searchPrev() (Model, tea.Cmd) { return m.stepMatch((*nav.State).PrevMatch) }

// stepMatch moves to another line matching the query. Matches are found
// against the current model so rebuilds never leave them stale.
func (m Model) stepMatch(step func(s *nav.State, matches []nav.Position) int) (Model, tea.Cmd) {
	if m.query == "" {
		return m, m.notify(m.notices.Infof("No search, press %s to search", m.firstKey(config.ActionSearch)))
	}

	s := m.active().Nav
	matches := nav.Search(s.Model(), m.query)
	before := s.Position().File
	i := step(s, matches)
	m.matches = len(matches)
	if i < 0 {
		m.match = 0
		return m, m.notify(m.notices.Infof("No matches for %q", m.query))
	}
	m.match = i
	if s.Position().File != before {
		m.viewer.Reset()
	}
	return m, nil
}

func (m Model) clearSearch() Model {
	m.query = ""
	m.match = 0
	m.matches = 0
	return m
}

// searchStatus describes the active search for the status bar.
func (m Model) searchStatus() string {
	if m.query == "" {
		return ""
	}
	if m.matches == 0 {
		return fmt.Sprintf("/%s no matches", m.query)
	}
	return fmt.Sprintf("/%s %d/%d", m.query, m.match+1, m.matches)
}

func (m Model) firstKey(action string) string {
	if keys := m.keys.Keys(action); len(keys) > 0 {
		return keys[0]
	}
	return action
}
