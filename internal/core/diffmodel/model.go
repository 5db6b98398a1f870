// Package diffmodel turns raw unified diff text into an immutable, ordered
// model of files, hunks and lines. A model is never patched in place: every
// fetch produces a new one and dependent state reconciles against it.
package diffmodel

// ChangeKind classifies how a file changed.
type ChangeKind int

const (
	KindModified ChangeKind = iota
	KindAdded
	KindDeleted
	KindRenamed
	KindBinary
)

func (k ChangeKind) String() string {
	switch k {
	case KindAdded:
		return "added"
	case KindDeleted:
		return "deleted"
	case KindRenamed:
		return "renamed"
	case KindBinary:
		return "binary"
	default:
		return "modified"
	}
}

// Marker returns the single character shown next to the file in listings.
func (k ChangeKind) Marker() string {
	switch k {
	case KindAdded:
		return "A"
	case KindDeleted:
		return "D"
	case KindRenamed:
		return "R"
	case KindBinary:
		return "B"
	default:
		return "M"
	}
}

// LineKind is the role of a single diff line.
type LineKind int

const (
	LineContext LineKind = iota
	LineAdded
	LineRemoved
)

// Prefix returns the unified diff prefix for the kind.
func (k LineKind) Prefix() string {
	switch k {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}

// Line is one line of a hunk. Old is 0 for added lines and New is 0 for
// removed lines; real line numbers start at 1.
type Line struct {
	Kind LineKind
	Old  int
	New  int
	Text string
}

// Hunk is a contiguous block of changes within a file.
type Hunk struct {
	// FilePath and FileIndex refer back to the owning file.
	FilePath  string
	FileIndex int
	Index     int

	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Heading  string

	Lines []Line

	// Anchor is derived from Context, the window of context lines it was
	// computed from.
	Anchor  AnchorKey
	Context []string
}

// Span returns the first and last new-side line numbers touched by the
// lines [from, to] of the hunk, falling back to old-side numbers for
// removed-only spans.
func (h *Hunk) Span(from, to int) (int, int) {
	if len(h.Lines) == 0 {
		return h.NewStart, h.NewStart
	}
	from = clamp(from, 0, len(h.Lines)-1)
	to = clamp(to, from, len(h.Lines)-1)

	start, end := 0, 0
	for _, l := range h.Lines[from : to+1] {
		n := l.New
		if n == 0 {
			n = l.Old
		}
		if start == 0 || n < start {
			start = n
		}
		if n > end {
			end = n
		}
	}
	return start, end
}

// File is one file entry in the model.
type File struct {
	Path     string
	PrevPath string
	Kind     ChangeKind
	Hunks    []Hunk

	Added   int
	Removed int
}

// DisplayPath returns "old → new" for renames and the path otherwise.
func (f *File) DisplayPath() string {
	if f.PrevPath != "" && f.PrevPath != f.Path {
		return f.PrevPath + " → " + f.Path
	}
	return f.Path
}

// Model is the ordered set of files produced by one build.
type Model struct {
	// Revision identifies the build. Callers assign increasing values so
	// results computed against an older model can be recognized.
	Revision uint64
	Files    []File
}

// Len returns the number of files.
func (m *Model) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Files)
}

// FileIndex returns the index of the file whose path or previous path equals
// path, or -1.
func (m *Model) FileIndex(path string) int {
	if m == nil || path == "" {
		return -1
	}
	for i := range m.Files {
		if m.Files[i].Path == path {
			return i
		}
	}
	for i := range m.Files {
		if m.Files[i].PrevPath == path {
			return i
		}
	}
	return -1
}

// Paths returns the current path of every file in order.
func (m *Model) Paths() []string {
	paths := make([]string, 0, m.Len())
	for i := range m.Files {
		paths = append(paths, m.Files[i].Path)
	}
	return paths
}

// HasPath reports whether any file currently has the given path.
func (m *Model) HasPath(path string) bool {
	if m == nil {
		return false
	}
	for i := range m.Files {
		if m.Files[i].Path == path {
			return true
		}
	}
	return false
}

// Totals returns the added and removed line counts over all files.
func (m *Model) Totals() (added, removed int) {
	for i := range m.Files {
		added += m.Files[i].Added
		removed += m.Files[i].Removed
	}
	return added, removed
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
