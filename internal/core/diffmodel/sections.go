package diffmodel

import (
	"fmt"
	"strconv"
	"strings"
)

// section is the raw text of one file's diff.
type section struct {
	path  string
	lines []string
}

func (s section) text() string {
	return strings.Join(s.lines, "\n") + "\n"
}

// splitSections cuts raw diff text into per-file sections. A section starts
// at a "diff --git" header, or at a "---"/"+++" pair when the input is a
// plain unified diff without git headers. Anything before the first header
// is a preamble (commit message, mail headers) and is discarded.
func splitSections(raw string) []section {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(strings.TrimRight(raw, "\n"), "\n")

	gitHeaders := false
	for _, l := range lines {
		if isGitHeader(l) {
			gitHeaders = true
			break
		}
	}

	var (
		out     []section
		current *section
		inHunk  bool
	)

	flush := func() {
		if current != nil {
			current.path = sectionPath(current.lines)
			out = append(out, *current)
		}
		current = nil
	}

	for i, l := range lines {
		starts := false
		if gitHeaders {
			starts = isGitHeader(l)
		} else {
			// In plain unified diffs "--- " inside a hunk is a removed line,
			// so only treat it as a header outside hunks or right before "+++ ".
			starts = strings.HasPrefix(l, "--- ") && i+1 < len(lines) && strings.HasPrefix(lines[i+1], "+++ ") &&
				(!inHunk || (i+2 < len(lines) && strings.HasPrefix(lines[i+2], "@@")))
		}

		if starts {
			flush()
			current = &section{}
			inHunk = false
		}
		if current == nil {
			continue
		}
		if strings.HasPrefix(l, "@@") {
			inHunk = true
		}
		current.lines = append(current.lines, l)
	}
	flush()

	return out
}

func isGitHeader(l string) bool {
	return strings.HasPrefix(l, "diff --git ") ||
		strings.HasPrefix(l, "diff --cc ") ||
		strings.HasPrefix(l, "diff --combined ")
}

// sectionPath extracts a best-effort path for warnings, preferring the new
// side of the header.
func sectionPath(lines []string) string {
	for _, l := range lines {
		if strings.HasPrefix(l, "+++ ") {
			p := strings.TrimSpace(strings.TrimPrefix(l, "+++ "))
			if p != "/dev/null" {
				return trimPrefixDir(p)
			}
		}
	}
	for _, l := range lines {
		if strings.HasPrefix(l, "--- ") {
			p := strings.TrimSpace(strings.TrimPrefix(l, "--- "))
			if p != "/dev/null" {
				return trimPrefixDir(p)
			}
		}
	}
	if len(lines) > 0 && strings.HasPrefix(lines[0], "diff --git ") {
		fields := strings.Fields(strings.TrimPrefix(lines[0], "diff --git "))
		if len(fields) > 0 {
			return trimPrefixDir(fields[len(fields)-1])
		}
	}
	if len(lines) > 0 {
		fields := strings.Fields(lines[0])
		if len(fields) > 0 {
			return fields[len(fields)-1]
		}
	}
	return ""
}

func trimPrefixDir(p string) string {
	if i := strings.IndexByte(p, '\t'); i >= 0 {
		p = p[:i]
	}
	if strings.HasPrefix(p, "a/") || strings.HasPrefix(p, "b/") {
		return p[2:]
	}
	return p
}

var extendedHeaders = []string{
	"diff --git ",
	"index ",
	"old mode ",
	"new mode ",
	"deleted file mode ",
	"new file mode ",
	"similarity index ",
	"dissimilarity index ",
	"rename from ",
	"rename to ",
	"copy from ",
	"copy to ",
	"--- ",
	"+++ ",
	"Binary files ",
}

func isExtendedHeader(l string) bool {
	for _, p := range extendedHeaders {
		if strings.HasPrefix(l, p) {
			return true
		}
	}
	return false
}

// validate checks that every line of the section belongs to a header or to a
// hunk whose body matches its header counts.
func (s section) validate() error {
	if len(s.lines) > 0 && !strings.HasPrefix(s.lines[0], "diff --git ") && isGitHeader(s.lines[0]) {
		return fmt.Errorf("combined diff sections are not supported")
	}

	var (
		inHunk         bool
		remOld, remNew int
	)

	for i, l := range s.lines {
		if !inHunk {
			switch {
			case strings.HasPrefix(l, "@@"):
			case l == "GIT binary patch":
				// Binary payload lines follow until the section ends.
				return nil
			case isExtendedHeader(l):
				continue
			default:
				return fmt.Errorf("line %d: unexpected line %q before first hunk", i+1, truncate(l))
			}
		}

		if remOld == 0 && remNew == 0 {
			switch {
			case strings.HasPrefix(l, "@@"):
				h, err := parseHunkHeader(l)
				if err != nil {
					return fmt.Errorf("line %d: %w", i+1, err)
				}
				remOld, remNew = h.OldCount, h.NewCount
				inHunk = true
				continue
			case strings.HasPrefix(l, `\`):
				continue
			case l == "" && i == len(s.lines)-1:
				continue
			default:
				return fmt.Errorf("line %d: line %q outside of any hunk", i+1, truncate(l))
			}
		}

		if l == "" {
			// Some tools strip the space from empty context lines.
			remOld--
			remNew--
		} else {
			switch l[0] {
			case ' ':
				remOld--
				remNew--
			case '-':
				remOld--
			case '+':
				remNew--
			case '\\':
			default:
				return fmt.Errorf("line %d: unrecognized line prefix %q", i+1, l[:1])
			}
		}

		if remOld < 0 || remNew < 0 {
			return fmt.Errorf("line %d: hunk body longer than its header", i+1)
		}
	}

	if remOld > 0 || remNew > 0 {
		return fmt.Errorf("truncated hunk: %d old and %d new lines missing", remOld, remNew)
	}
	return nil
}

func truncate(s string) string {
	const limit = 40
	if len(s) > limit {
		return s[:limit] + "…"
	}
	return s
}

// hunkHeader is the metadata of an "@@ -a,b +c,d @@ heading" line.
type hunkHeader struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Heading  string
}

func parseHunkHeader(line string) (hunkHeader, error) {
	if !strings.HasPrefix(line, "@@") {
		return hunkHeader{}, fmt.Errorf("invalid hunk header: missing @@ prefix")
	}

	closeIdx := strings.Index(line[2:], "@@")
	if closeIdx == -1 {
		return hunkHeader{}, fmt.Errorf("invalid hunk header: missing closing @@")
	}
	closeIdx += 2

	parts := strings.Fields(line[2:closeIdx])
	if len(parts) != 2 {
		return hunkHeader{}, fmt.Errorf("invalid hunk header: expected 2 ranges, got %d", len(parts))
	}
	if !strings.HasPrefix(parts[0], "-") || !strings.HasPrefix(parts[1], "+") {
		return hunkHeader{}, fmt.Errorf("invalid hunk header: malformed ranges %q", line[:closeIdx+2])
	}

	oldStart, oldCount, err := parseRange(parts[0][1:])
	if err != nil {
		return hunkHeader{}, fmt.Errorf("parse old range: %w", err)
	}
	newStart, newCount, err := parseRange(parts[1][1:])
	if err != nil {
		return hunkHeader{}, fmt.Errorf("parse new range: %w", err)
	}

	return hunkHeader{
		OldStart: oldStart,
		OldCount: oldCount,
		NewStart: newStart,
		NewCount: newCount,
		Heading:  strings.TrimSpace(line[closeIdx+2:]),
	}, nil
}

// parseRange parses "start,count" or "start" (count 1).
func parseRange(s string) (start, count int, err error) {
	before, after, found := strings.Cut(s, ",")

	start, err = strconv.Atoi(before)
	if err != nil {
		return 0, 0, fmt.Errorf("parse start: %w", err)
	}
	if !found {
		return start, 1, nil
	}

	count, err = strconv.Atoi(after)
	if err != nil {
		return 0, 0, fmt.Errorf("parse count: %w", err)
	}
	if count < 0 {
		return 0, 0, fmt.Errorf("negative count in range %q", s)
	}
	return start, count, nil
}
