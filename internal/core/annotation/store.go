package annotation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hay-kot/hunk/internal/core/diffmodel"
)

// Store holds the annotations of one review context in creation order.
// It is not safe for concurrent use; the session mutates it from the event
// loop only.
type Store struct {
	items      []*Annotation
	minOverlap int

	newID func() string
	now   func() time.Time
}

// NewStore creates an empty store. minOverlap is the smallest number of
// shared context lines accepted when re-attaching an annotation whose exact
// anchor key disappeared; zero requires exact matches.
func NewStore(minOverlap int) *Store {
	return &Store{
		minOverlap: minOverlap,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// Add creates an annotation and returns its id.
func (s *Store) Add(anchor Anchor, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	if !anchor.valid() {
		return "", ErrInvalidAnchor
	}

	a := &Annotation{
		ID:        s.newID(),
		Anchor:    anchor.clone(),
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	s.items = append(s.items, a)
	return a.ID, nil
}

// AddTo creates an annotation and attaches it to m. An anchor captured
// against an older model moves to its current hunk or is flagged orphaned.
func (s *Store) AddTo(m *diffmodel.Model, anchor Anchor, text string) (string, error) {
	id, err := s.Add(anchor, text)
	if err != nil {
		return "", err
	}
	s.attach(m, s.find(id))
	return id, nil
}

// Edit replaces the text of an annotation.
func (s *Store) Edit(id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	a := s.find(id)
	if a == nil {
		return fmt.Errorf("edit %s: %w", id, ErrNotFound)
	}
	a.Text = text
	return nil
}

// Delete removes an annotation.
func (s *Store) Delete(id string) error {
	for i, a := range s.items {
		if a.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete %s: %w", id, ErrNotFound)
}

// Get returns a copy of the annotation with the given id.
func (s *Store) Get(id string) (Annotation, bool) {
	a := s.find(id)
	if a == nil {
		return Annotation{}, false
	}
	return a.clone(), true
}

// List returns copies of all annotations in creation order.
func (s *Store) List() []Annotation {
	out := make([]Annotation, 0, len(s.items))
	for _, a := range s.items {
		out = append(out, a.clone())
	}
	return out
}

// Count returns the number of annotations.
func (s *Store) Count() int {
	return len(s.items)
}

// Clear removes every annotation.
func (s *Store) Clear() {
	s.items = nil
}

// Orphaned returns the annotations flagged by the last Reanchor.
func (s *Store) Orphaned() []Annotation {
	var out []Annotation
	for _, a := range s.items {
		if a.Orphaned {
			out = append(out, a.clone())
		}
	}
	return out
}

// ForHunk returns the annotations attached to the hunk with the given key in
// the file at path, in creation order.
func (s *Store) ForHunk(path string, key diffmodel.AnchorKey) []Annotation {
	var out []Annotation
	for _, a := range s.items {
		if !a.Orphaned && a.Anchor.Path == path && a.Anchor.Hunk == key {
			out = append(out, a.clone())
		}
	}
	return out
}

// CountForFile returns how many live annotations point into path.
func (s *Store) CountForFile(path string) int {
	n := 0
	for _, a := range s.items {
		if !a.Orphaned && a.Anchor.Path == path {
			n++
		}
	}
	return n
}

// Resolve finds where a resolves in m.
func (s *Store) Resolve(m *diffmodel.Model, a Annotation) (Location, error) {
	fi, hi, ok := s.match(m, a.Anchor)
	if !ok {
		return Location{}, fmt.Errorf("%s in %s: %w", a.Anchor.Hunk, a.Anchor.Path, ErrAnchorUnresolved)
	}

	loc := Location{File: fi, Hunk: hi, Line: -1}
	if a.Anchor.LineOffset != nil {
		n := len(m.Files[fi].Hunks[hi].Lines)
		loc.Line = min(max(*a.Anchor.LineOffset, 0), n-1)
	}
	return loc, nil
}

// Reanchor re-attaches every annotation to m. Annotations that resolve have
// their anchor updated to the hunk they matched (following renames and fuzzy
// matches); the rest are flagged orphaned. It returns the annotations that
// became orphaned in this pass.
func (s *Store) Reanchor(m *diffmodel.Model) []Annotation {
	var orphaned []Annotation
	for _, a := range s.items {
		if s.attach(m, a) {
			orphaned = append(orphaned, a.clone())
		}
	}
	return orphaned
}

// attach points a at the hunk it matches in m, or flags it orphaned. It
// reports whether a became orphaned.
func (s *Store) attach(m *diffmodel.Model, a *Annotation) bool {
	fi, hi, ok := s.match(m, a.Anchor)
	if !ok {
		if a.Orphaned {
			return false
		}
		a.Orphaned = true
		return true
	}

	f := &m.Files[fi]
	h := &f.Hunks[hi]
	a.Orphaned = false
	a.Anchor.Path = f.Path
	a.Anchor.Hunk = h.Anchor
	a.Anchor.Context = append([]string(nil), h.Context...)
	a.Anchor.OldStart = h.OldStart
	if a.Anchor.LineOffset != nil && *a.Anchor.LineOffset >= len(h.Lines) {
		last := len(h.Lines) - 1
		a.Anchor.LineOffset = &last
	}
	return false
}

func (s *Store) match(m *diffmodel.Model, anchor Anchor) (int, int, bool) {
	fi := m.FileIndex(anchor.Path)
	if fi < 0 {
		return -1, -1, false
	}
	hi, ok := m.Files[fi].MatchHunk(diffmodel.MatchQuery{
		Key:        anchor.Hunk,
		Context:    anchor.Context,
		OldStart:   anchor.OldStart,
		MinOverlap: s.minOverlap,
	})
	return fi, hi, ok
}

func (s *Store) find(id string) *Annotation {
	for _, a := range s.items {
		if a.ID == id {
			return a
		}
	}
	return nil
}
