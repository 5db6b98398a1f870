package diffmodel

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// DefaultAnchorWindow is the number of context lines hashed into an anchor key.
const DefaultAnchorWindow = 3

// AnchorKey identifies a hunk by its content rather than its position.
type AnchorKey string

// IsPositional reports whether the key fell back to line offsets because
// the hunk had no context lines.
func (k AnchorKey) IsPositional() bool {
	return strings.HasPrefix(string(k), "pos:")
}

// ComputeAnchor hashes the first window context lines of a hunk. Hunks with
// no context lines fall back to their old/new start offsets.
func ComputeAnchor(lines []Line, window, oldStart, newStart int) (AnchorKey, []string) {
	if window <= 0 {
		window = DefaultAnchorWindow
	}

	ctx := make([]string, 0, window)
	for _, l := range lines {
		if l.Kind != LineContext {
			continue
		}
		ctx = append(ctx, strings.TrimRight(l.Text, " \t\r"))
		if len(ctx) == window {
			break
		}
	}

	if len(ctx) == 0 {
		return AnchorKey(fmt.Sprintf("pos:%d,%d", oldStart, newStart)), nil
	}

	sum := sha256.Sum256([]byte(strings.Join(ctx, "\n")))
	return AnchorKey("ctx:" + hex.EncodeToString(sum[:])[:16]), ctx
}

// Overlap counts how many lines of a also appear in b. Duplicates are
// matched at most once.
func Overlap(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	pool := make(map[string]int, len(b))
	for _, s := range b {
		pool[s]++
	}
	n := 0
	for _, s := range a {
		if pool[s] > 0 {
			pool[s]--
			n++
		}
	}
	return n
}

// MatchQuery describes a hunk to find again after a rebuild.
type MatchQuery struct {
	Key      AnchorKey
	Context  []string
	OldStart int
	// MinOverlap is the smallest number of shared context lines accepted
	// for a fuzzy match. Zero disables fuzzy matching.
	MinOverlap int
}

// MatchHunk finds the hunk in f that q refers to. An exact key match wins;
// among several, the one with the nearest old start. Otherwise the hunk
// sharing the most context lines (at least q.MinOverlap) is chosen, again
// breaking ties by old start distance.
func (f *File) MatchHunk(q MatchQuery) (int, bool) {
	if f == nil || len(f.Hunks) == 0 {
		return -1, false
	}

	best, bestDist := -1, 0
	for i := range f.Hunks {
		if f.Hunks[i].Anchor != q.Key {
			continue
		}
		d := abs(f.Hunks[i].OldStart - q.OldStart)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best >= 0 {
		return best, true
	}

	if q.MinOverlap <= 0 || len(q.Context) == 0 {
		return -1, false
	}

	bestOverlap := 0
	for i := range f.Hunks {
		n := Overlap(q.Context, f.Hunks[i].Context)
		if n < q.MinOverlap {
			continue
		}
		d := abs(f.Hunks[i].OldStart - q.OldStart)
		if n > bestOverlap || (n == bestOverlap && d < bestDist) {
			best, bestOverlap, bestDist = i, n, d
		}
	}
	return best, best >= 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
