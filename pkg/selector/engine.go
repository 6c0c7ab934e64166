package selector

import "github.com/autopair-dev/wadb-agent/pkg/uitree"

// FindFirst returns the first node in the subtree satisfying the expression.
// "First" is pre-order traversal with children in tree-reported order; this
// ordering is a contract so retries see reproducible results. Returns nil
// when nothing matches within the depth ceiling.
func FindFirst(root *uitree.Node, expr Expression) *uitree.Node {
	if root == nil || expr == nil {
		return nil
	}

	var found *uitree.Node
	root.Walk(func(n *uitree.Node) bool {
		if expr.Match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindAll returns every matching node in pre-order.
func FindAll(root *uitree.Node, expr Expression) []*uitree.Node {
	if root == nil || expr == nil {
		return nil
	}

	var out []*uitree.Node
	root.Walk(func(n *uitree.Node) bool {
		if expr.Match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FirstMatch evaluates a prioritized expression list and returns the node
// found by the first expression that yields one.
func FirstMatch(root *uitree.Node, exprs []Expression) *uitree.Node {
	for _, e := range exprs {
		if n := FindFirst(root, e); n != nil {
			return n
		}
	}
	return nil
}
