package tui

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/hay-kot/hunk/pkg/executil"
)

// URLOpener opens a URL in the user's browser.
type URLOpener func(ctx context.Context, url string) error

// SystemOpener opens URLs with the platform launcher.
func SystemOpener(e executil.Executor) URLOpener {
	return func(ctx context.Context, url string) error {
		name, args := "xdg-open", []string{url}
		switch runtime.GOOS {
		case "darwin":
			name = "open"
		case "windows":
			name, args = "rundll32", []string{"url.dll,FileProtocolHandler", url}
		}
		_, err := e.Run(ctx, name, args...)
		return err
	}
}

// prFileURL links to a file on the pull request's files tab. GitHub anchors
// each file diff with the SHA-256 of its path.
func prFileURL(prURL, path string) string {
	sum := sha256.Sum256([]byte(path))
	return strings.TrimSuffix(prURL, "/") + "/files#diff-" + hex.EncodeToString(sum[:])
}

// editorCmd builds the command opening path at line. Line 0 opens the file
// without jumping.
func editorCmd(argv []string, root, path string, line int) *exec.Cmd {
	args := append([]string(nil), argv[1:]...)
	if line > 0 {
		args = append(args, "+"+strconv.Itoa(line))
	}
	args = append(args, filepath.Join(root, path))
	return exec.Command(argv[0], args...)
}

func runEditor(c *exec.Cmd, path string) tea.Cmd {
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return editorDoneMsg{path: path, err: err}
	})
}

func openURL(ctx context.Context, open URLOpener, url string) tea.Cmd {
	return func() tea.Msg {
		return browserDoneMsg{url: url, err: open(ctx, url)}
	}
}
