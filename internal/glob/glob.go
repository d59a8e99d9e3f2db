// Package glob expands wildcard arguments (`*`, `?`, `[...]`) against the
// filesystem, the way a shell expands a command's arguments before running
// it. The command name itself (argument 0) is never touched.
package glob

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func hasWildcard(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

// Expand returns a new argument vector with every wildcard argument
// (anything after argv[0]) replaced by its sorted directory-order matches.
// A pattern that matches nothing is kept literally. If any pattern was
// present but the total number of matches across all patterns is zero, the
// original vector is returned unchanged (so argv[0] is never duplicated or
// reordered and callers can compare by identity to decide whether to free a
// separately-allocated vector — a non-issue in Go, kept here only as a
// documented invariant for callers that need to know whether expansion
// happened).
func Expand(argv []string) []string {
	if len(argv) == 0 {
		return argv
	}

	out := []string{argv[0]}
	anyPattern := false
	anyMatch := false

	for _, arg := range argv[1:] {
		if !hasWildcard(arg) {
			out = append(out, arg)
			continue
		}
		anyPattern = true
		matches := expandPattern(arg)
		if len(matches) == 0 {
			out = append(out, arg)
			continue
		}
		anyMatch = true
		out = append(out, matches...)
	}

	if anyPattern && !anyMatch {
		return argv
	}
	return out
}

// expandPattern matches a single wildcard argument against the filesystem,
// splitting it into a directory part and a filename pattern on the last
// `/`. Matches are sorted lexicographically (directory-read order is not
// guaranteed portable, so a stable sort gives deterministic, testable
// output).
func expandPattern(pattern string) []string {
	dir, file := ".", pattern
	if idx := strings.LastIndexByte(pattern, '/'); idx >= 0 {
		dir, file = pattern[:idx], pattern[idx+1:]
		if dir == "" {
			dir = "/"
		}
	}

	if !hasWildcard(file) {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var matches []string
	for _, e := range entries {
		name := e.Name()
		if name == "." || name == ".." {
			continue
		}
		ok, err := filepath.Match(file, name)
		if err != nil || !ok {
			continue
		}
		if dir == "." {
			matches = append(matches, name)
		} else {
			matches = append(matches, filepath.Join(dir, name))
		}
	}

	sort.Strings(matches)
	return matches
}
