package diffmodel

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// ParseError records a file section that could not be parsed. It is a
// warning: the file is skipped and the rest of the diff still builds.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse diff: %v", e.Err)
	}
	return fmt.Sprintf("parse diff for %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Options tunes a build.
type Options struct {
	// Revision is stamped on the resulting model.
	Revision uint64
	// AnchorWindow is the number of context lines hashed per hunk.
	AnchorWindow int
	// Include filters files by path. Nil includes everything.
	Include func(path string) bool
}

// Build parses raw unified diff text into a model. Malformed sections are
// skipped and reported; Build itself never fails.
func Build(raw string, opts Options) (*Model, []*ParseError) {
	if opts.AnchorWindow <= 0 {
		opts.AnchorWindow = DefaultAnchorWindow
	}

	m := &Model{Revision: opts.Revision}
	var warnings []*ParseError

	for _, sec := range splitSections(raw) {
		if opts.Include != nil && sec.path != "" && !opts.Include(sec.path) {
			continue
		}

		if err := sec.validate(); err != nil {
			warnings = append(warnings, &ParseError{Path: sec.path, Err: err})
			continue
		}

		parsed, _, err := gitdiff.Parse(strings.NewReader(sec.text()))
		if err != nil {
			warnings = append(warnings, &ParseError{Path: sec.path, Err: err})
			continue
		}
		if len(parsed) != 1 {
			warnings = append(warnings, &ParseError{
				Path: sec.path,
				Err:  fmt.Errorf("expected one file in section, found %d", len(parsed)),
			})
			continue
		}

		f := convertFile(parsed[0], len(m.Files), opts.AnchorWindow)
		if opts.Include != nil && !opts.Include(f.Path) && (f.PrevPath == "" || !opts.Include(f.PrevPath)) {
			continue
		}
		m.Files = append(m.Files, f)
	}

	return m, warnings
}

func convertFile(gf *gitdiff.File, index, window int) File {
	f := File{
		Path: gf.NewName,
		Kind: changeKind(gf),
	}
	if gf.IsDelete || f.Path == "" {
		f.Path = gf.OldName
	}
	if gf.IsRename {
		f.PrevPath = gf.OldName
	}

	for i, frag := range gf.TextFragments {
		h := Hunk{
			FilePath:  f.Path,
			FileIndex: index,
			Index:     i,
			OldStart:  int(frag.OldPosition),
			OldLines:  int(frag.OldLines),
			NewStart:  int(frag.NewPosition),
			NewLines:  int(frag.NewLines),
			Heading:   frag.Comment,
			Lines:     make([]Line, 0, len(frag.Lines)),
		}

		oldNo, newNo := h.OldStart, h.NewStart
		for _, gl := range frag.Lines {
			text := strings.TrimSuffix(gl.Line, "\n")
			switch gl.Op {
			case gitdiff.OpAdd:
				h.Lines = append(h.Lines, Line{Kind: LineAdded, New: newNo, Text: text})
				newNo++
				f.Added++
			case gitdiff.OpDelete:
				h.Lines = append(h.Lines, Line{Kind: LineRemoved, Old: oldNo, Text: text})
				oldNo++
				f.Removed++
			default:
				h.Lines = append(h.Lines, Line{Kind: LineContext, Old: oldNo, New: newNo, Text: text})
				oldNo++
				newNo++
			}
		}

		h.Anchor, h.Context = ComputeAnchor(h.Lines, window, h.OldStart, h.NewStart)
		f.Hunks = append(f.Hunks, h)
	}

	return f
}

func changeKind(gf *gitdiff.File) ChangeKind {
	switch {
	case gf.IsBinary:
		return KindBinary
	case gf.IsNew:
		return KindAdded
	case gf.IsDelete:
		return KindDeleted
	case gf.IsRename:
		return KindRenamed
	default:
		return KindModified
	}
}
