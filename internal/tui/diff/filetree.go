package diff

import (
	"fmt"
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/hay-kot/hunk/internal/core/diffmodel"
	"github.com/hay-kot/hunk/internal/core/styles"
)

// TreeNode represents a node in the file tree (either a directory or file).
type TreeNode struct {
	Name      string // directory chain ("a/b/") or file name
	Path      string // full path
	IsDir     bool
	FileIndex int // index into the model, -1 for directories
	Children  []*TreeNode
	Depth     int // display depth after chains are collapsed
}

// FileStatus reports the review state shown next to a file.
type FileStatus func(f *diffmodel.File) (viewed bool, notes int)

// FileTree is the sidebar listing of the files in a model, grouped by
// directory. Directories with a single subdirectory and no files are merged
// into one row.
type FileTree struct {
	model   *diffmodel.Model
	root    *TreeNode
	visible []*TreeNode
	width   int
	height  int
	offset  int
}

// NewFileTree creates a new file tree from a model.
func NewFileTree(m *diffmodel.Model) *FileTree {
	t := &FileTree{}
	t.SetModel(m)
	return t
}

// SetModel rebuilds the tree for m.
func (t *FileTree) SetModel(m *diffmodel.Model) {
	t.model = m
	t.root = buildTree(m)
	collapseChains(t.root)
	t.visible = t.visible[:0]
	t.collectVisible(t.root, -1)
	t.offset = 0
}

// SetSize updates the dimensions of the file tree.
func (t *FileTree) SetSize(width, height int) {
	t.width = width
	t.height = height
}

// Rows returns the rendered rows in display order.
func (t *FileTree) Rows() []*TreeNode {
	return t.visible
}

// Row returns the row that shows the file at index i, or -1.
func (t *FileTree) Row(i int) int {
	for r, n := range t.visible {
		if !n.IsDir && n.FileIndex == i {
			return r
		}
	}
	return -1
}

func buildTree(m *diffmodel.Model) *TreeNode {
	root := &TreeNode{IsDir: true, FileIndex: -1, Depth: -1}
	if m == nil {
		return root
	}

	for i := range m.Files {
		path := m.Files[i].Path
		parts := strings.Split(path, "/")
		current := root

		for d := 0; d < len(parts)-1; d++ {
			var next *TreeNode
			for _, child := range current.Children {
				if child.IsDir && child.Name == parts[d] {
					next = child
					break
				}
			}
			if next == nil {
				next = &TreeNode{
					Name:      parts[d],
					Path:      strings.Join(parts[:d+1], "/"),
					IsDir:     true,
					FileIndex: -1,
				}
				current.Children = append(current.Children, next)
			}
			current = next
		}

		current.Children = append(current.Children, &TreeNode{
			Name:      parts[len(parts)-1],
			Path:      path,
			FileIndex: i,
		})
	}
	return root
}

// collapseChains merges a directory into its only child directory so deep,
// sparse paths take one row.
func collapseChains(n *TreeNode) {
	for _, c := range n.Children {
		if !c.IsDir {
			continue
		}
		for len(c.Children) == 1 && c.Children[0].IsDir {
			only := c.Children[0]
			c.Name = c.Name + "/" + only.Name
			c.Path = only.Path
			c.Children = only.Children
		}
		collapseChains(c)
	}
}

func (t *FileTree) collectVisible(n *TreeNode, depth int) {
	if depth >= 0 {
		n.Depth = depth
		t.visible = append(t.visible, n)
	}
	for _, c := range n.Children {
		t.collectVisible(c, depth+1)
	}
}

// View renders the tree with the file at selected highlighted.
func (t *FileTree) View(st styles.Styles, selected int, status FileStatus) string {
	if t.model.Len() == 0 {
		return lipgloss.NewStyle().
			Width(t.width).
			Height(t.height).
			Render(st.TextDim.Render("No files changed"))
	}

	t.follow(t.Row(selected))

	end := len(t.visible)
	if t.height > 0 {
		end = min(t.offset+t.height, len(t.visible))
	}

	lines := make([]string, 0, end-t.offset)
	for _, n := range t.visible[t.offset:end] {
		lines = append(lines, t.renderNode(st, n, n.FileIndex == selected && !n.IsDir, status))
	}

	return lipgloss.NewStyle().
		Width(t.width).
		Height(t.height).
		Render(strings.Join(lines, "\n"))
}

// follow scrolls so row stays on screen.
func (t *FileTree) follow(row int) {
	if row < 0 || t.height <= 0 {
		return
	}
	if row < t.offset {
		t.offset = row
	}
	if row >= t.offset+t.height {
		t.offset = row - t.height + 1
	}
}

func (t *FileTree) renderNode(st styles.Styles, n *TreeNode, selected bool, status FileStatus) string {
	indent := strings.Repeat("  ", n.Depth)

	if n.IsDir {
		line := indent + st.TreeDir.Render(styles.IconDirOpen+" "+n.Name+"/")
		return t.fit(line)
	}

	f := &t.model.Files[n.FileIndex]
	viewed, notes := false, 0
	if status != nil {
		viewed, notes = status(f)
	}

	mark := styles.IconUnviewed
	if viewed {
		mark = st.TreeViewed.Render(styles.IconViewed)
	}

	name := n.Name
	if f.Kind == diffmodel.KindRenamed {
		name += " ←"
	}

	nameStyle := st.TreeFile
	if selected {
		nameStyle = st.TreeSelected
	}

	line := fmt.Sprintf("%s%s %s %s", indent, mark, st.Kind(f.Kind).Render(f.Kind.Marker()), nameStyle.Render(name))
	if notes > 0 {
		line += " " + st.TreeNoteCount.Render(fmt.Sprintf("%d%s", notes, styles.IconNote))
	}
	return t.fit(line)
}

func (t *FileTree) fit(line string) string {
	if t.width <= 0 {
		return line
	}
	return ansi.Truncate(line, t.width, "…")
}
