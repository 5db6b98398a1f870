// Package nav tracks the reviewer's cursor across the files, hunks and lines
// of a diff model and keeps it valid when the model is replaced.
package nav

import "github.com/hay-kot/hunk/internal/core/diffmodel"

const (
	// NoHunk is the hunk index of a file without hunks (renames, binaries).
	NoHunk = -1
	// NoLine is the line index when the focus is on the hunk or file as a
	// whole rather than a single line.
	NoLine = -1
)

// Position is a cursor into a model. File is -1 only for an empty model.
type Position struct {
	File int
	Hunk int
	Line int
}

// Focus captures what the cursor points at by content so it can be found
// again in a rebuilt model.
type Focus struct {
	Path      string
	PrevPath  string
	HunkIndex int
	Anchor    diffmodel.AnchorKey
	Context   []string
	OldStart  int
	Line      int
}

// State is the navigation state for one model.
type State struct {
	model   *diffmodel.Model
	pos     Position
	sidebar bool
}

// New creates a state positioned on the first file.
func New(m *diffmodel.Model) *State {
	s := &State{model: m, sidebar: true}
	s.pos = s.fileStart(0)
	return s
}

func (s *State) Model() *diffmodel.Model { return s.model }

func (s *State) Position() Position { return s.pos }

func (s *State) SidebarVisible() bool { return s.sidebar }

// ToggleSidebar flips sidebar visibility.
func (s *State) ToggleSidebar() {
	s.sidebar = !s.sidebar
}

// SetSidebar sets sidebar visibility.
func (s *State) SetSidebar(visible bool) {
	s.sidebar = visible
}

// CurrentFile returns the focused file or nil for an empty model.
func (s *State) CurrentFile() *diffmodel.File {
	if s.pos.File < 0 || s.pos.File >= s.model.Len() {
		return nil
	}
	return &s.model.Files[s.pos.File]
}

// CurrentHunk returns the focused hunk or nil.
func (s *State) CurrentHunk() *diffmodel.Hunk {
	f := s.CurrentFile()
	if f == nil || s.pos.Hunk < 0 || s.pos.Hunk >= len(f.Hunks) {
		return nil
	}
	return &f.Hunks[s.pos.Hunk]
}

// CurrentLine returns the focused line or nil when the focus is on a whole
// hunk or file.
func (s *State) CurrentLine() *diffmodel.Line {
	h := s.CurrentHunk()
	if h == nil || s.pos.Line < 0 || s.pos.Line >= len(h.Lines) {
		return nil
	}
	return &h.Lines[s.pos.Line]
}

func (s *State) fileStart(i int) Position {
	if s.model.Len() == 0 {
		return Position{File: -1, Hunk: NoHunk, Line: NoLine}
	}
	i = clamp(i, 0, s.model.Len()-1)
	if len(s.model.Files[i].Hunks) == 0 {
		return Position{File: i, Hunk: NoHunk, Line: NoLine}
	}
	return Position{File: i, Hunk: 0, Line: NoLine}
}

// NextFile moves to the start of the next file.
func (s *State) NextFile() bool {
	if s.pos.File+1 >= s.model.Len() {
		return false
	}
	s.pos = s.fileStart(s.pos.File + 1)
	return true
}

// PrevFile moves to the start of the previous file.
func (s *State) PrevFile() bool {
	if s.pos.File <= 0 {
		return false
	}
	s.pos = s.fileStart(s.pos.File - 1)
	return true
}

// NextHunk moves to the next hunk, continuing into the following files.
// Files without hunks are skipped.
func (s *State) NextHunk() bool {
	f := s.CurrentFile()
	if f == nil {
		return false
	}
	if s.pos.Hunk >= 0 && s.pos.Hunk+1 < len(f.Hunks) {
		s.pos = Position{File: s.pos.File, Hunk: s.pos.Hunk + 1, Line: NoLine}
		return true
	}
	for i := s.pos.File + 1; i < s.model.Len(); i++ {
		if len(s.model.Files[i].Hunks) > 0 {
			s.pos = Position{File: i, Hunk: 0, Line: NoLine}
			return true
		}
	}
	return false
}

// PrevHunk moves to the previous hunk, continuing into earlier files.
func (s *State) PrevHunk() bool {
	if s.CurrentFile() == nil {
		return false
	}
	if s.pos.Hunk > 0 {
		s.pos = Position{File: s.pos.File, Hunk: s.pos.Hunk - 1, Line: NoLine}
		return true
	}
	for i := s.pos.File - 1; i >= 0; i-- {
		if n := len(s.model.Files[i].Hunks); n > 0 {
			s.pos = Position{File: i, Hunk: n - 1, Line: NoLine}
			return true
		}
	}
	return false
}

// NextLine moves one line down, flowing across hunks and files.
func (s *State) NextLine() bool {
	f := s.CurrentFile()
	if f == nil {
		return false
	}

	if h := s.CurrentHunk(); h != nil {
		if s.pos.Line+1 < len(h.Lines) {
			s.pos.Line++
			return true
		}
		if s.pos.Hunk+1 < len(f.Hunks) {
			s.pos = Position{File: s.pos.File, Hunk: s.pos.Hunk + 1, Line: 0}
			return true
		}
	}

	if s.pos.File+1 >= s.model.Len() {
		return false
	}
	next := s.pos.File + 1
	if len(s.model.Files[next].Hunks) == 0 {
		s.pos = Position{File: next, Hunk: NoHunk, Line: NoLine}
	} else {
		s.pos = Position{File: next, Hunk: 0, Line: 0}
	}
	return true
}

// PrevLine moves one line up, flowing across hunks and files. The first
// line of a file steps back to the whole-hunk focus before leaving the file.
func (s *State) PrevLine() bool {
	f := s.CurrentFile()
	if f == nil {
		return false
	}

	if s.pos.Hunk >= 0 {
		switch {
		case s.pos.Line > 0:
			s.pos.Line--
			return true
		case s.pos.Line == 0 && s.pos.Hunk == 0:
			s.pos.Line = NoLine
			return true
		case s.pos.Hunk > 0:
			prev := f.Hunks[s.pos.Hunk-1]
			s.pos = Position{File: s.pos.File, Hunk: s.pos.Hunk - 1, Line: len(prev.Lines) - 1}
			return true
		}
	}

	if s.pos.File <= 0 {
		return false
	}
	prev := s.pos.File - 1
	pf := &s.model.Files[prev]
	if len(pf.Hunks) == 0 {
		s.pos = Position{File: prev, Hunk: NoHunk, Line: NoLine}
		return true
	}
	last := len(pf.Hunks) - 1
	s.pos = Position{File: prev, Hunk: last, Line: len(pf.Hunks[last].Lines) - 1}
	return true
}

// JumpToFile moves to the file with the given path or previous path.
func (s *State) JumpToFile(path string) bool {
	i := s.model.FileIndex(path)
	if i < 0 {
		return false
	}
	s.pos = s.fileStart(i)
	return true
}

// JumpTo moves to an explicit position, rejecting invalid ones.
func (s *State) JumpTo(p Position) bool {
	if p.File < 0 || p.File >= s.model.Len() {
		return false
	}
	f := &s.model.Files[p.File]
	if len(f.Hunks) == 0 {
		s.pos = Position{File: p.File, Hunk: NoHunk, Line: NoLine}
		return true
	}
	if p.Hunk < 0 || p.Hunk >= len(f.Hunks) {
		return false
	}
	if p.Line < NoLine || p.Line >= len(f.Hunks[p.Hunk].Lines) {
		return false
	}
	s.pos = p
	return true
}

// Focus describes the current cursor by content.
func (s *State) Focus() Focus {
	f := s.CurrentFile()
	if f == nil {
		return Focus{HunkIndex: NoHunk, Line: NoLine}
	}
	fc := Focus{
		Path:      f.Path,
		PrevPath:  f.PrevPath,
		HunkIndex: s.pos.Hunk,
		Line:      s.pos.Line,
	}
	if h := s.CurrentHunk(); h != nil {
		fc.Anchor = h.Anchor
		fc.Context = h.Context
		fc.OldStart = h.OldStart
	}
	return fc
}

// Reconcile replaces the model and moves the cursor to the same file and
// hunk in it. A hunk that cannot be matched by anchor keeps its index,
// clamped to the file; a file that vanished sends the cursor to file 0.
func (s *State) Reconcile(m *diffmodel.Model, minOverlap int) {
	focus := s.Focus()
	s.model = m

	fi := m.FileIndex(focus.Path)
	if fi < 0 && focus.PrevPath != "" {
		fi = m.FileIndex(focus.PrevPath)
	}
	if fi < 0 {
		s.pos = s.fileStart(0)
		return
	}

	f := &m.Files[fi]
	if len(f.Hunks) == 0 || focus.HunkIndex == NoHunk {
		s.pos = s.fileStart(fi)
		return
	}

	hi, ok := f.MatchHunk(diffmodel.MatchQuery{
		Key:        focus.Anchor,
		Context:    focus.Context,
		OldStart:   focus.OldStart,
		MinOverlap: minOverlap,
	})
	if !ok {
		s.pos = Position{File: fi, Hunk: clamp(focus.HunkIndex, 0, len(f.Hunks)-1), Line: NoLine}
		return
	}

	s.pos = Position{
		File: fi,
		Hunk: hi,
		Line: clamp(focus.Line, NoLine, len(f.Hunks[hi].Lines)-1),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
