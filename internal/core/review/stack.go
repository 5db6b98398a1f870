package review

import (
	"errors"
	"fmt"
)

// ErrEmptyStack is returned when a stack is created without contexts.
var ErrEmptyStack = errors.New("no commits to review")

// Stack is an ordered collection of independent review contexts, one per
// commit, with exactly one active. A single-snapshot review is a stack of
// one.
type Stack struct {
	contexts []*Context
	bySHA    map[string]int
	active   int
	stacked  bool
}

// NewSnapshot wraps a single context.
func NewSnapshot(c *Context) *Stack {
	return &Stack{
		contexts: []*Context{c},
		bySHA:    map[string]int{},
	}
}

// NewStack creates a stacked review over contexts ordered oldest first. The
// first context is active.
func NewStack(contexts []*Context) (*Stack, error) {
	if len(contexts) == 0 {
		return nil, ErrEmptyStack
	}

	s := &Stack{
		contexts: contexts,
		bySHA:    make(map[string]int, len(contexts)),
		stacked:  true,
	}
	for i, c := range contexts {
		if c.Commit.SHA == "" {
			return nil, fmt.Errorf("context %d has no commit", i)
		}
		if _, dup := s.bySHA[c.Commit.SHA]; dup {
			return nil, fmt.Errorf("duplicate commit %s", c.Commit.Short())
		}
		s.bySHA[c.Commit.SHA] = i
	}
	return s, nil
}

func (s *Stack) Stacked() bool { return s.stacked }

func (s *Stack) Len() int { return len(s.contexts) }

// Index returns the position of the active context.
func (s *Stack) Index() int { return s.active }

// Active returns the active context.
func (s *Stack) Active() *Context { return s.contexts[s.active] }

// Contexts returns all contexts in order.
func (s *Stack) Contexts() []*Context { return s.contexts }

// Get returns the context for a commit SHA.
func (s *Stack) Get(sha string) (*Context, bool) {
	i, ok := s.bySHA[sha]
	if !ok {
		return nil, false
	}
	return s.contexts[i], true
}

// Next activates the following commit. It is a no-op on the last one.
func (s *Stack) Next() bool {
	if s.active+1 >= len(s.contexts) {
		return false
	}
	s.active++
	return true
}

// Prev activates the preceding commit. It is a no-op on the first one.
func (s *Stack) Prev() bool {
	if s.active == 0 {
		return false
	}
	s.active--
	return true
}

// AnnotationCount sums annotations over every context.
func (s *Stack) AnnotationCount() int {
	n := 0
	for _, c := range s.contexts {
		n += c.Annotations.Count()
	}
	return n
}
