// Package uitree models the live accessibility tree the agent inspects and
// acts upon. A tree snapshot is externally owned and invalidated by every
// screen-changing action: no Node may be used after Activate or Scroll, and
// callers must re-acquire the root before the next read.
package uitree

// Bounds is an element's on-screen rectangle.
type Bounds struct {
	X      int
	Y      int
	Width  int
	Height int
}

// CenterX returns the horizontal center of the rectangle.
func (b Bounds) CenterX() int { return b.X + b.Width/2 }

// CenterY returns the vertical center of the rectangle.
func (b Bounds) CenterY() int { return b.Y + b.Height/2 }

// Empty reports whether the rectangle has no area.
func (b Bounds) Empty() bool { return b.Width <= 0 || b.Height <= 0 }

// Node is one element in a tree snapshot. The snapshot owns all nodes; the
// Parent pointer is a weak back-reference and is nil at the root.
type Node struct {
	Text       string
	Desc       string // accessibility content description
	Class      string
	Bounds     Bounds
	Clickable  bool
	Checkable  bool
	Checked    bool
	Scrollable bool
	Enabled    bool
	Children   []*Node
	Parent     *Node
	Depth      int
}

// MaxDepth is the hard recursion ceiling for all tree walks. External trees
// can be malformed or pathologically deep; anything past this is ignored.
const MaxDepth = 60

// Walk visits nodes in pre-order (node first, children in tree-reported
// order), stopping early when fn returns false. Depth is bounded by MaxDepth.
func (n *Node) Walk(fn func(*Node) bool) {
	n.walk(0, fn)
}

func (n *Node) walk(depth int, fn func(*Node) bool) bool {
	if n == nil || depth > MaxDepth {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.walk(depth+1, fn) {
			return false
		}
	}
	return true
}

// FirstScrollable returns the first scrollable node in pre-order, or nil.
func (n *Node) FirstScrollable() *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.Scrollable {
			found = c
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes in the subtree (bounded by MaxDepth).
func (n *Node) Count() int {
	total := 0
	n.Walk(func(*Node) bool {
		total++
		return true
	})
	return total
}
