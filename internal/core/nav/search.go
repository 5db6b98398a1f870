package nav

import (
	"strings"

	"github.com/hay-kot/hunk/internal/core/diffmodel"
)

// Search returns the position of every line containing query, ignoring
// case, in model order.
func Search(m *diffmodel.Model, query string) []Position {
	query = strings.ToLower(query)
	if query == "" || m == nil {
		return nil
	}

	var out []Position
	for fi := range m.Files {
		for hi := range m.Files[fi].Hunks {
			for li, l := range m.Files[fi].Hunks[hi].Lines {
				if strings.Contains(strings.ToLower(l.Text), query) {
					out = append(out, Position{File: fi, Hunk: hi, Line: li})
				}
			}
		}
	}
	return out
}

// NextMatch moves to the first match after the cursor, wrapping to the
// first match. It returns the index of the match, or -1 when there are none.
func (s *State) NextMatch(matches []Position) int {
	if len(matches) == 0 {
		return -1
	}
	i := 0
	for j, p := range matches {
		if before(s.pos, p) {
			i = j
			break
		}
	}
	s.JumpTo(matches[i])
	return i
}

// PrevMatch moves to the last match before the cursor, wrapping to the
// last match.
func (s *State) PrevMatch(matches []Position) int {
	if len(matches) == 0 {
		return -1
	}
	i := len(matches) - 1
	for j := len(matches) - 1; j >= 0; j-- {
		if before(matches[j], s.pos) {
			i = j
			break
		}
	}
	s.JumpTo(matches[i])
	return i
}

func before(a, b Position) bool {
	if a.File != b.File {
		return a.File < b.File
	}
	if a.Hunk != b.Hunk {
		return a.Hunk < b.Hunk
	}
	return a.Line < b.Line
}
