package review

import (
	"slices"

	"github.com/hay-kot/hunk/internal/core/diffmodel"
)

// ViewedSet is the set of file paths marked as viewed in one context.
type ViewedSet struct {
	paths map[string]struct{}
}

// NewViewedSet returns a set containing paths.
func NewViewedSet(paths ...string) *ViewedSet {
	v := &ViewedSet{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		v.paths[p] = struct{}{}
	}
	return v
}

func (v *ViewedSet) Has(path string) bool {
	_, ok := v.paths[path]
	return ok
}

func (v *ViewedSet) Set(path string, viewed bool) {
	if viewed {
		v.paths[path] = struct{}{}
		return
	}
	delete(v.paths, path)
}

// Toggle flips path and returns the new value.
func (v *ViewedSet) Toggle(path string) bool {
	viewed := !v.Has(path)
	v.Set(path, viewed)
	return viewed
}

func (v *ViewedSet) Len() int {
	return len(v.paths)
}

// Paths returns the viewed paths in sorted order.
func (v *ViewedSet) Paths() []string {
	out := make([]string, 0, len(v.paths))
	for p := range v.paths {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Replace swaps the whole set for paths.
func (v *ViewedSet) Replace(paths []string) {
	v.paths = make(map[string]struct{}, len(paths))
	for _, p := range paths {
		v.paths[p] = struct{}{}
	}
}

// Retain drops every path that no file in m has and returns the dropped
// paths in sorted order.
func (v *ViewedSet) Retain(m *diffmodel.Model) []string {
	var dropped []string
	for p := range v.paths {
		if !m.HasPath(p) {
			dropped = append(dropped, p)
			delete(v.paths, p)
		}
	}
	slices.Sort(dropped)
	return dropped
}

// Clone returns an independent copy.
func (v *ViewedSet) Clone() *ViewedSet {
	return NewViewedSet(v.Paths()...)
}
