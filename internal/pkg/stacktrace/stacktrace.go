// Package stacktrace trims runtime stack dumps down to this module's frames.
package stacktrace

import (
	"bufio"
	"bytes"
	"strings"
)

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" for every frame of
// a debug.Stack dump that lives under an internal/ directory, innermost
// first.
func InternalPaths(stack []byte) []string {
	var paths []string

	sc := bufio.NewScanner(bytes.NewReader(stack))
	for sc.Scan() {
		line := sc.Text()
		// file:line entries are the tab-indented half of each frame.
		if !strings.HasPrefix(line, "\t") {
			continue
		}

		loc, _, _ := strings.Cut(strings.TrimSpace(line), " ")
		_, rel, ok := strings.Cut(loc, "/internal/")
		if !ok || !strings.Contains(rel, ".go:") {
			continue
		}

		paths = append(paths, "internal/"+rel)
	}

	return paths
}
