// Package harvest flattens a tree snapshot into a text corpus for pattern
// extraction.
package harvest

import (
	"strings"

	"github.com/autopair-dev/wadb-agent/pkg/uitree"
)

// Collect walks the subtree depth-first (pre-order, bounded by
// uitree.MaxDepth) and concatenates every non-empty text and description
// value into one space-joined corpus. Repeated literal values are emitted
// once; crowded settings screens duplicate labels across row and row-summary
// nodes, and duplicates only add noise to extraction.
func Collect(root *uitree.Node) string {
	if root == nil {
		return ""
	}

	seen := make(map[string]struct{})
	var parts []string

	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		parts = append(parts, s)
	}

	root.Walk(func(n *uitree.Node) bool {
		add(n.Text)
		add(n.Desc)
		return true
	})

	return strings.Join(parts, " ")
}

// ContainsAny reports whether the corpus contains any of the markers,
// case-insensitively.
func ContainsAny(corpus string, markers []string) bool {
	lower := strings.ToLower(corpus)
	for _, m := range markers {
		if m == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
