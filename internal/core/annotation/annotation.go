// Package annotation stores review comments anchored into diff content.
//
// Anchors refer to hunks by content (path plus anchor key) instead of line
// offsets, so a comment follows its hunk across rebuilds. An annotation whose
// hunk cannot be found anymore is flagged orphaned and kept until the user
// deletes it.
package annotation

import (
	"errors"
	"time"

	"github.com/hay-kot/hunk/internal/core/diffmodel"
)

var (
	ErrNotFound         = errors.New("annotation not found")
	ErrEmptyText        = errors.New("annotation text is empty")
	ErrInvalidAnchor    = errors.New("annotation anchor is missing a path or hunk key")
	ErrAnchorUnresolved = errors.New("annotation anchor does not resolve to any hunk")
)

// Anchor locates an annotation inside a diff.
type Anchor struct {
	Path string              `json:"path" yaml:"path"`
	Hunk diffmodel.AnchorKey `json:"anchor" yaml:"anchor"`
	// LineOffset is the index of the annotated line within the hunk. Nil
	// means the annotation is about the whole hunk.
	LineOffset *int `json:"line_offset,omitempty" yaml:"line_offset,omitempty"`

	// Context and OldStart are matching hints used when the exact key is
	// gone after a rebuild.
	Context  []string `json:"context,omitempty" yaml:"context,omitempty"`
	OldStart int      `json:"old_start,omitempty" yaml:"old_start,omitempty"`
}

// AnchorAt builds an anchor for line of hunk h in file f. A negative line
// anchors the whole hunk.
func AnchorAt(f *diffmodel.File, h *diffmodel.Hunk, line int) Anchor {
	a := Anchor{
		Path:     f.Path,
		Hunk:     h.Anchor,
		Context:  append([]string(nil), h.Context...),
		OldStart: h.OldStart,
	}
	if line >= 0 {
		a.LineOffset = &line
	}
	return a
}

func (a Anchor) valid() bool {
	return a.Path != "" && a.Hunk != ""
}

func (a Anchor) clone() Anchor {
	c := a
	c.Context = append([]string(nil), a.Context...)
	if a.LineOffset != nil {
		off := *a.LineOffset
		c.LineOffset = &off
	}
	return c
}

// Annotation is a single review comment.
type Annotation struct {
	ID        string
	Anchor    Anchor
	Text      string
	CreatedAt time.Time
	Orphaned  bool
}

func (a *Annotation) clone() Annotation {
	c := *a
	c.Anchor = a.Anchor.clone()
	return c
}

// Location is where an annotation resolves in a model. Line is -1 for
// whole-hunk annotations.
type Location struct {
	File int
	Hunk int
	Line int
}
