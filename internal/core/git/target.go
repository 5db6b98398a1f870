package git

import (
	"errors"
	"fmt"
	"strings"
)

// TargetKind is what a Target selects.
type TargetKind int

const (
	// TargetWorkingTree is every uncommitted change, staged or not, against HEAD.
	TargetWorkingTree TargetKind = iota
	// TargetCommit is the change a single commit introduced.
	TargetCommit
	// TargetRange is the change between two revisions.
	TargetRange
)

// Target is a parsed revision argument.
type Target struct {
	Kind TargetKind
	// Rev is the commit for TargetCommit.
	Rev string
	// From and To are the range ends for TargetRange. Empty ends mean HEAD.
	From string
	To   string
	// MergeBase is set for "A...B" ranges, which compare B against the
	// merge base of A and B.
	MergeBase bool
}

// ErrNotRange is returned for operations that need a range target.
var ErrNotRange = errors.New("target is not a commit range")

// ParseTarget parses "" (working tree), "<rev>", "<a>..<b>" and "<a>...<b>".
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{Kind: TargetWorkingTree}, nil
	}

	if strings.ContainsAny(s, " \t\n") {
		return Target{}, fmt.Errorf("invalid revision %q", s)
	}

	if from, to, ok := strings.Cut(s, "..."); ok {
		if from == "" && to == "" {
			return Target{}, fmt.Errorf("invalid range %q", s)
		}
		return Target{Kind: TargetRange, From: from, To: to, MergeBase: true}, nil
	}

	if from, to, ok := strings.Cut(s, ".."); ok {
		if from == "" && to == "" {
			return Target{}, fmt.Errorf("invalid range %q", s)
		}
		if strings.Contains(to, "..") {
			return Target{}, fmt.Errorf("invalid range %q", s)
		}
		return Target{Kind: TargetRange, From: from, To: to}, nil
	}

	if strings.HasPrefix(s, "-") {
		return Target{}, fmt.Errorf("invalid revision %q", s)
	}

	return Target{Kind: TargetCommit, Rev: s}, nil
}

func orHead(rev string) string {
	if rev == "" {
		return "HEAD"
	}
	return rev
}

// String returns the target in the form ParseTarget accepts.
func (t Target) String() string {
	switch t.Kind {
	case TargetCommit:
		return t.Rev
	case TargetRange:
		sep := ".."
		if t.MergeBase {
			sep = "..."
		}
		return t.From + sep + t.To
	default:
		return ""
	}
}

// Describe returns a human-readable description of the target.
func (t Target) Describe() string {
	switch t.Kind {
	case TargetWorkingTree:
		return "working tree"
	case TargetCommit:
		return "commit " + t.Rev
	case TargetRange:
		sep := ".."
		if t.MergeBase {
			sep = "..."
		}
		return orHead(t.From) + sep + orHead(t.To)
	default:
		return "unknown"
	}
}

// IsRange reports whether t selects a commit range.
func (t Target) IsRange() bool { return t.Kind == TargetRange }
