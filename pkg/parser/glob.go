package parser

import (
	"fmt"
	"path/filepath"
)

// ExpandGlobs expands input paths and glob patterns into a deduplicated list.
//
// Input order is preserved so multi-file logs are read in the order given;
// matches of a single pattern are sorted. Patterns that match nothing are kept
// as literal paths so opening them reports a useful error. The stdin path "-"
// passes through unchanged.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			result = append(result, path)
		}
	}

	for _, pattern := range patterns {
		if pattern == StdinPath {
			add(pattern)
			continue
		}

		// filepath.Glob returns matches in lexical order.
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			add(pattern)
			continue
		}

		for _, match := range matches {
			add(match)
		}
	}

	return result, nil
}
