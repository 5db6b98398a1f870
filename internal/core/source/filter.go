package source

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// NewFilter returns a path predicate for the --file patterns. A path passes
// when any pattern matches it. Patterns are doublestar globs; a pattern
// without glob characters also matches everything below it as a directory.
// No patterns means every path passes.
func NewFilter(patterns []string) (func(string) bool, error) {
	var clean []string
	for _, p := range patterns {
		p = strings.TrimSpace(strings.TrimPrefix(p, "./"))
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid file pattern %q", p)
		}
		clean = append(clean, strings.TrimSuffix(p, "/"))
	}

	if len(clean) == 0 {
		return nil, nil
	}

	return func(path string) bool {
		for _, p := range clean {
			if ok, _ := doublestar.Match(p, path); ok {
				return true
			}
			if !strings.ContainsAny(p, "*?[{") && strings.HasPrefix(path, p+"/") {
				return true
			}
		}
		return false
	}, nil
}
