// Package review bundles the per-revision review state (navigation,
// annotations, viewed files) and sequences bundles for stacked review.
package review

import (
	"github.com/hay-kot/hunk/internal/core/annotation"
	"github.com/hay-kot/hunk/internal/core/diffmodel"
	"github.com/hay-kot/hunk/internal/core/nav"
)

// Commit identifies the revision a context reviews. It is empty for
// working tree and PR snapshots.
type Commit struct {
	SHA     string
	Subject string
}

// Short returns the abbreviated SHA.
func (c Commit) Short() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}

// ContextOptions configures a new context.
type ContextOptions struct {
	Commit Commit
	// MinOverlap is the fuzzy anchor tolerance shared by navigation and
	// annotations.
	MinOverlap int
	// Viewed seeds the viewed set.
	Viewed []string
	// SidebarHidden starts the context with the sidebar collapsed.
	SidebarHidden bool
}

// Context is the independent review state for one revision.
type Context struct {
	Commit      Commit
	Nav         *nav.State
	Annotations *annotation.Store
	Viewed      *ViewedSet

	model      *diffmodel.Model
	minOverlap int
	generation uint64
}

// NewContext creates a context over m.
func NewContext(m *diffmodel.Model, opts ContextOptions) *Context {
	c := &Context{
		Commit:      opts.Commit,
		Nav:         nav.New(m),
		Annotations: annotation.NewStore(opts.MinOverlap),
		Viewed:      NewViewedSet(),
		model:       m,
		minOverlap:  opts.MinOverlap,
	}
	for _, p := range opts.Viewed {
		if m.HasPath(p) {
			c.Viewed.Set(p, true)
		}
	}
	if opts.SidebarHidden {
		c.Nav.SetSidebar(false)
	}
	return c
}

func (c *Context) Model() *diffmodel.Model { return c.model }

// Generation increases with every rebuild. Asynchronous work records the
// generation it started under and is discarded if it no longer matches.
func (c *Context) Generation() uint64 { return c.generation }

// IsViewed reports the viewed flag of the file at path.
func (c *Context) IsViewed(path string) bool {
	return c.Viewed.Has(path)
}

// ViewedCount returns how many files of the current model are viewed.
func (c *Context) ViewedCount() int {
	n := 0
	for i := range c.model.Files {
		if c.Viewed.Has(c.model.Files[i].Path) {
			n++
		}
	}
	return n
}

// RebuildReport summarizes what a rebuild changed.
type RebuildReport struct {
	Generation    uint64
	Orphaned      []annotation.Annotation
	DroppedViewed []string
	NewFiles      []string
}

// Rebuild swaps in a freshly built model and reconciles every dependent
// layer against it: the cursor, annotation anchors and the viewed set. New
// files start unviewed.
func (c *Context) Rebuild(m *diffmodel.Model) RebuildReport {
	old := c.model

	c.Nav.Reconcile(m, c.minOverlap)
	orphaned := c.Annotations.Reanchor(m)
	dropped := c.Viewed.Retain(m)

	var added []string
	for i := range m.Files {
		if old.FileIndex(m.Files[i].Path) < 0 {
			added = append(added, m.Files[i].Path)
		}
	}

	c.model = m
	c.generation++

	return RebuildReport{
		Generation:    c.generation,
		Orphaned:      orphaned,
		DroppedViewed: dropped,
		NewFiles:      added,
	}
}
