package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/hunk/internal/core/annotation"
	"github.com/hay-kot/hunk/internal/core/diffmodel"
	"github.com/hay-kot/hunk/internal/core/nav"
)

const baseDiff = `diff --git a/a.go b/a.go
--- a/a.go
+++ b/a.go
@@ -1,3 +1,4 @@
 package a
 // vars
+var x = 1
 func A() {}
diff --git a/b.go b/b.go
--- a/b.go
+++ b/b.go
@@ -5,2 +5,2 @@
-old
+new
 tail
`

func build(t *testing.T, raw string, rev uint64) *diffmodel.Model {
	t.Helper()
	m, warnings := diffmodel.Build(raw, diffmodel.Options{Revision: rev})
	require.Empty(t, warnings)
	return m
}

func annotate(t *testing.T, c *Context, file, hunk int, text string) string {
	t.Helper()
	f := &c.Model().Files[file]
	id, err := c.Annotations.Add(annotation.AnchorAt(f, &f.Hunks[hunk], -1), text)
	require.NoError(t, err)
	return id
}

func TestViewedSet(t *testing.T) {
	v := NewViewedSet("a.go")
	assert.True(t, v.Has("a.go"))
	assert.True(t, v.Toggle("b.go"))
	assert.False(t, v.Toggle("a.go"))
	assert.Equal(t, []string{"b.go"}, v.Paths())

	c := v.Clone()
	c.Set("z.go", true)
	assert.Equal(t, 1, v.Len())
	assert.Equal(t, 2, c.Len())

	v.Replace([]string{"x", "y"})
	assert.Equal(t, []string{"x", "y"}, v.Paths())
}

func TestNewContext_SeedsViewedForKnownPaths(t *testing.T) {
	c := NewContext(build(t, baseDiff, 1), ContextOptions{Viewed: []string{"a.go", "gone.go"}})
	assert.True(t, c.IsViewed("a.go"))
	assert.False(t, c.IsViewed("gone.go"))
	assert.Equal(t, 1, c.ViewedCount())
}

func TestContext_Rebuild(t *testing.T) {
	c := NewContext(build(t, baseDiff, 1), ContextOptions{MinOverlap: 2})
	c.Viewed.Set("a.go", true)
	c.Viewed.Set("b.go", true)
	idA := annotate(t, c, 0, 0, "on a")
	idB := annotate(t, c, 1, 0, "on b")
	require.True(t, c.Nav.JumpTo(nav.Position{File: 0, Hunk: 0, Line: 2}))

	// a.go shifts down, b.go disappears, c.go appears.
	next := `diff --git a/a.go b/a.go
--- a/a.go
+++ b/a.go
@@ -3,3 +3,5 @@
 package a
 // vars
+var x = 1
+var y = 2
 func A() {}
diff --git a/c.go b/c.go
new file mode 100644
--- /dev/null
+++ b/c.go
@@ -0,0 +1 @@
+package c
`
	report := c.Rebuild(build(t, next, 2))

	assert.Equal(t, uint64(1), report.Generation)
	assert.Equal(t, uint64(1), c.Generation())
	assert.Equal(t, []string{"b.go"}, report.DroppedViewed)
	assert.Equal(t, []string{"c.go"}, report.NewFiles)
	require.Len(t, report.Orphaned, 1)
	assert.Equal(t, idB, report.Orphaned[0].ID)

	assert.True(t, c.IsViewed("a.go"))
	assert.False(t, c.IsViewed("b.go"))
	assert.False(t, c.IsViewed("c.go"), "new files start unviewed")

	a, ok := c.Annotations.Get(idA)
	require.True(t, ok)
	assert.False(t, a.Orphaned)
	b, ok := c.Annotations.Get(idB)
	require.True(t, ok, "orphaned annotations are kept")
	assert.True(t, b.Orphaned)

	assert.Equal(t, nav.Position{File: 0, Hunk: 0, Line: 2}, c.Nav.Position())
	assert.Equal(t, "var x = 1", c.Nav.CurrentLine().Text)
	assert.Equal(t, uint64(2), c.Model().Revision)
}

func TestStack_Navigation(t *testing.T) {
	commits := []Commit{{SHA: "aaaaaaaaaa", Subject: "one"}, {SHA: "bbbbbbbbbb", Subject: "two"}, {SHA: "cccccccccc", Subject: "three"}}
	var contexts []*Context
	for i, c := range commits {
		contexts = append(contexts, NewContext(build(t, baseDiff, uint64(i+1)), ContextOptions{Commit: c}))
	}

	s, err := NewStack(contexts)
	require.NoError(t, err)
	assert.True(t, s.Stacked())
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, "one", s.Active().Commit.Subject)

	assert.False(t, s.Prev(), "no wraparound at the first commit")
	assert.True(t, s.Next())
	assert.True(t, s.Next())
	assert.False(t, s.Next(), "no wraparound at the last commit")
	assert.Equal(t, 2, s.Index())

	got, ok := s.Get("bbbbbbbbbb")
	require.True(t, ok)
	assert.Same(t, contexts[1], got)
	_, ok = s.Get("zzz")
	assert.False(t, ok)
}

func TestStack_SwitchingPreservesPerCommitState(t *testing.T) {
	var contexts []*Context
	for i, sha := range []string{"1111111111", "2222222222"} {
		contexts = append(contexts, NewContext(build(t, baseDiff, uint64(i+1)), ContextOptions{Commit: Commit{SHA: sha}}))
	}
	s, err := NewStack(contexts)
	require.NoError(t, err)

	first := s.Active()
	first.Viewed.Set("a.go", true)
	annotate(t, first, 1, 0, "first commit note")
	require.True(t, first.Nav.NextFile())

	viewedBefore := first.Viewed.Paths()
	annotationsBefore := first.Annotations.List()
	posBefore := first.Nav.Position()

	require.True(t, s.Next())
	second := s.Active()
	assert.Empty(t, second.Viewed.Paths())
	assert.Equal(t, 0, second.Annotations.Count())
	second.Viewed.Set("b.go", true)
	annotate(t, second, 0, 0, "second commit note")

	require.True(t, s.Prev())
	assert.Same(t, first, s.Active())
	assert.Equal(t, viewedBefore, s.Active().Viewed.Paths())
	assert.Equal(t, annotationsBefore, s.Active().Annotations.List())
	assert.Equal(t, posBefore, s.Active().Nav.Position())
	assert.Equal(t, 2, s.AnnotationCount())
}

func TestNewStack_Errors(t *testing.T) {
	_, err := NewStack(nil)
	assert.ErrorIs(t, err, ErrEmptyStack)

	m := build(t, baseDiff, 1)
	_, err = NewStack([]*Context{
		NewContext(m, ContextOptions{Commit: Commit{SHA: "abc"}}),
		NewContext(m, ContextOptions{Commit: Commit{SHA: "abc"}}),
	})
	assert.ErrorContains(t, err, "duplicate commit")

	_, err = NewStack([]*Context{NewContext(m, ContextOptions{})})
	assert.ErrorContains(t, err, "has no commit")
}

func TestNewSnapshot(t *testing.T) {
	s := NewSnapshot(NewContext(build(t, baseDiff, 1), ContextOptions{}))
	assert.False(t, s.Stacked())
	assert.Equal(t, 1, s.Len())
	assert.False(t, s.Next())
	assert.False(t, s.Prev())
}
