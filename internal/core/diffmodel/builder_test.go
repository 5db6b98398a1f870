package diffmodel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoFileDiff = `diff --git a/a.txt b/a.txt
index 1111111..2222222 100644
--- a/a.txt
+++ b/a.txt
@@ -1,2 +1,5 @@
 one
+two
+three
+four
 five
diff --git a/old.txt b/new.txt
similarity index 100%
rename from old.txt
rename to new.txt
`

func TestBuild_RenameWithoutChanges(t *testing.T) {
	m, warnings := Build(twoFileDiff, Options{})
	require.Empty(t, warnings)
	require.Len(t, m.Files, 2)

	a := m.Files[0]
	assert.Equal(t, "a.txt", a.Path)
	assert.Equal(t, KindModified, a.Kind)
	require.Len(t, a.Hunks, 1)
	assert.Equal(t, 3, a.Added)
	assert.Equal(t, 0, a.Removed)

	b := m.Files[1]
	assert.Equal(t, "new.txt", b.Path)
	assert.Equal(t, "old.txt", b.PrevPath)
	assert.Equal(t, KindRenamed, b.Kind)
	assert.Empty(t, b.Hunks)
	assert.Equal(t, "old.txt → new.txt", b.DisplayPath())
}

func TestBuild_LineNumbers(t *testing.T) {
	raw := `diff --git a/main.go b/main.go
--- a/main.go
+++ b/main.go
@@ -10,4 +10,4 @@ func main() {
 	a := 1
-	b := 2
+	b := 3
 	c := 4
 	d := 5
`
	m, warnings := Build(raw, Options{})
	require.Empty(t, warnings)
	require.Len(t, m.Files, 1)
	require.Len(t, m.Files[0].Hunks, 1)

	h := m.Files[0].Hunks[0]
	assert.Equal(t, "func main() {", h.Heading)
	assert.Equal(t, "main.go", h.FilePath)

	want := []Line{
		{Kind: LineContext, Old: 10, New: 10, Text: "\ta := 1"},
		{Kind: LineRemoved, Old: 11, Text: "\tb := 2"},
		{Kind: LineAdded, New: 11, Text: "\tb := 3"},
		{Kind: LineContext, Old: 12, New: 12, Text: "\tc := 4"},
		{Kind: LineContext, Old: 13, New: 13, Text: "\td := 5"},
	}
	assert.Equal(t, want, h.Lines)
}

func TestBuild_HunksBelongToOneFileAndNumberingIsMonotonic(t *testing.T) {
	raw := `diff --git a/x.go b/x.go
--- a/x.go
+++ b/x.go
@@ -1,3 +1,3 @@
 a
-b
+B
 c
@@ -20,3 +20,4 @@
 t
+u
 v
 w
diff --git a/y.go b/y.go
new file mode 100644
--- /dev/null
+++ b/y.go
@@ -0,0 +1,2 @@
+hello
+world
`
	m, warnings := Build(raw, Options{})
	require.Empty(t, warnings)
	require.Len(t, m.Files, 2)

	seen := map[*Hunk]int{}
	for fi := range m.Files {
		f := &m.Files[fi]
		for hi := range f.Hunks {
			h := &f.Hunks[hi]
			seen[h]++
			assert.Equal(t, f.Path, h.FilePath)
			assert.Equal(t, fi, h.FileIndex)
			assert.Equal(t, hi, h.Index)

			lastOld, lastNew := 0, 0
			for _, l := range h.Lines {
				if l.Old != 0 {
					assert.GreaterOrEqual(t, l.Old, lastOld)
					lastOld = l.Old
				}
				if l.New != 0 {
					assert.GreaterOrEqual(t, l.New, lastNew)
					lastNew = l.New
				}
			}
		}
	}
	for _, n := range seen {
		assert.Equal(t, 1, n)
	}

	assert.Equal(t, KindAdded, m.Files[1].Kind)
}

func TestBuild_MalformedSectionIsSkipped(t *testing.T) {
	tests := []struct {
		name    string
		section string
	}{
		{
			name: "garbage inside hunk",
			section: `diff --git a/bad.txt b/bad.txt
--- a/bad.txt
+++ b/bad.txt
@@ -1,2 +1,2 @@
 one
GARBAGE
`,
		},
		{
			name: "unparseable hunk header",
			section: `diff --git a/bad.txt b/bad.txt
--- a/bad.txt
+++ b/bad.txt
@@ -x +y @@
 one
`,
		},
		{
			name: "truncated hunk",
			section: `diff --git a/bad.txt b/bad.txt
--- a/bad.txt
+++ b/bad.txt
@@ -1,4 +1,4 @@
 one
`,
		},
		{
			name: "stray line before first hunk",
			section: `diff --git a/bad.txt b/bad.txt
--- a/bad.txt
+++ b/bad.txt
what is this
@@ -1 +1 @@
-a
+b
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.section + twoFileDiff
			m, warnings := Build(raw, Options{})

			require.Len(t, warnings, 1)
			assert.Equal(t, "bad.txt", warnings[0].Path)
			assert.Contains(t, warnings[0].Error(), "bad.txt")

			require.Len(t, m.Files, 2)
			assert.Equal(t, "a.txt", m.Files[0].Path)
			assert.Equal(t, "new.txt", m.Files[1].Path)
		})
	}
}

func TestBuild_IgnoresPreamble(t *testing.T) {
	raw := "commit 0123456\nAuthor: someone\n\n    message\n\n" + twoFileDiff
	m, warnings := Build(raw, Options{})
	assert.Empty(t, warnings)
	assert.Len(t, m.Files, 2)
}

func TestBuild_PlainUnifiedDiff(t *testing.T) {
	raw := `--- a/notes.md
+++ b/notes.md
@@ -1,2 +1,2 @@
 title
--- old rule
+--- new rule
`
	m, warnings := Build(raw, Options{})
	require.Empty(t, warnings)
	require.Len(t, m.Files, 1)
	require.Len(t, m.Files[0].Hunks, 1)
	assert.Len(t, m.Files[0].Hunks[0].Lines, 3)
}

func TestBuild_Binary(t *testing.T) {
	raw := `diff --git a/logo.png b/logo.png
index 1111111..2222222 100644
Binary files a/logo.png and b/logo.png differ
`
	m, warnings := Build(raw, Options{})
	require.Empty(t, warnings)
	require.Len(t, m.Files, 1)
	assert.Equal(t, KindBinary, m.Files[0].Kind)
	assert.Empty(t, m.Files[0].Hunks)
}

func TestBuild_Include(t *testing.T) {
	m, warnings := Build(twoFileDiff, Options{
		Include: func(path string) bool { return strings.HasSuffix(path, "a.txt") },
	})
	assert.Empty(t, warnings)
	require.Len(t, m.Files, 1)
	assert.Equal(t, "a.txt", m.Files[0].Path)
}

func TestBuild_Revision(t *testing.T) {
	m, _ := Build(twoFileDiff, Options{Revision: 7})
	assert.Equal(t, uint64(7), m.Revision)
}

func TestModel_FileIndex(t *testing.T) {
	m, _ := Build(twoFileDiff, Options{})

	assert.Equal(t, 0, m.FileIndex("a.txt"))
	assert.Equal(t, 1, m.FileIndex("new.txt"))
	assert.Equal(t, 1, m.FileIndex("old.txt"), "previous path of a rename matches")
	assert.Equal(t, -1, m.FileIndex("missing.txt"))
	assert.True(t, m.HasPath("new.txt"))
	assert.False(t, m.HasPath("old.txt"))

	added, removed := m.Totals()
	assert.Equal(t, 3, added)
	assert.Equal(t, 0, removed)
}

func TestHunk_Span(t *testing.T) {
	m, _ := Build(twoFileDiff, Options{})
	h := &m.Files[0].Hunks[0]

	start, end := h.Span(1, 3)
	assert.Equal(t, 2, start)
	assert.Equal(t, 4, end)

	start, end = h.Span(0, 99)
	assert.Equal(t, 1, start)
	assert.Equal(t, 5, end)
}
