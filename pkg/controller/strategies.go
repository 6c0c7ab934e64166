package controller

import (
	"strings"

	"github.com/autopair-dev/wadb-agent/pkg/selector"
	"github.com/autopair-dev/wadb-agent/pkg/uitree"
)

// SearchStrategy is one way of locating the wireless debugging toggle in a
// hierarchy. Strategies run in order; the first hit wins, so the list goes
// from most to least specific.
type SearchStrategy struct {
	Name string
	Find func(root *uitree.Node, pack *selector.Pack) *uitree.Node
}

// toggleStrategies is the default chain.
var toggleStrategies = []SearchStrategy{
	{Name: "selector-pack", Find: findBySelectorPack},
	{Name: "keyword-proximity", Find: findByKeywordProximity},
	{Name: "checkable-scan", Find: findByCheckableScan},
}

// findBySelectorPack tries the pack's toggle expressions in priority order.
func findBySelectorPack(root *uitree.Node, pack *selector.Pack) *uitree.Node {
	return selector.FirstMatch(root, pack.Toggle)
}

// findByKeywordProximity finds a node labelled with a toggle keyword, then
// looks for an actionable element near it: a checkable descendant first, then
// a checkable within the labelled row's parent, then the closest clickable
// ancestor. Vendor skins put the switch in a sibling view more often than in
// the labelled node itself.
func findByKeywordProximity(root *uitree.Node, pack *selector.Pack) *uitree.Node {
	var label *uitree.Node
	root.Walk(func(n *uitree.Node) bool {
		if matchesKeyword(n, pack.ToggleKeywords) {
			label = n
			return false
		}
		return true
	})
	if label == nil {
		return nil
	}

	if c := firstCheckable(label); c != nil {
		return c
	}
	if label.Parent != nil {
		if c := firstCheckable(label.Parent); c != nil {
			return c
		}
	}
	for n := label; n != nil; n = n.Parent {
		if n.Clickable && n.Enabled {
			return n
		}
	}
	return nil
}

// findByCheckableScan is the last resort: the first enabled switch-like
// element on screen. On the developer options wireless debugging panel that
// is almost always the feature toggle.
func findByCheckableScan(root *uitree.Node, _ *selector.Pack) *uitree.Node {
	var hit *uitree.Node
	root.Walk(func(n *uitree.Node) bool {
		if n.Checkable && n.Enabled && strings.Contains(n.Class, "Switch") {
			hit = n
			return false
		}
		return true
	})
	return hit
}

func matchesKeyword(n *uitree.Node, keywords []string) bool {
	for _, kw := range keywords {
		if containsFold(n.Text, kw) || containsFold(n.Desc, kw) {
			return true
		}
	}
	return false
}

func firstCheckable(n *uitree.Node) *uitree.Node {
	var hit *uitree.Node
	n.Walk(func(c *uitree.Node) bool {
		if c.Checkable && c.Enabled {
			hit = c
			return false
		}
		return true
	})
	return hit
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
