// Package selector evaluates declarative element-matching expressions
// against a tree snapshot. Expressions are immutable once built; evaluation
// is a pure function of (subtree, expression) with no caching, because the
// tree is assumed stale after any action.
package selector

import (
	"regexp"
	"strings"

	"github.com/autopair-dev/wadb-agent/pkg/uitree"
)

// Expression is a predicate over a single node. Combinators short-circuit.
type Expression interface {
	Match(n *uitree.Node) bool
}

type matchFunc func(n *uitree.Node) bool

func (f matchFunc) Match(n *uitree.Node) bool { return f(n) }

// TextIs matches an exact text value.
func TextIs(want string) Expression {
	return matchFunc(func(n *uitree.Node) bool { return n.Text == want })
}

// TextHas matches a case-insensitive substring of the text.
func TextHas(want string) Expression {
	want = strings.ToLower(want)
	return matchFunc(func(n *uitree.Node) bool {
		return strings.Contains(strings.ToLower(n.Text), want)
	})
}

// DescHas matches a case-insensitive substring of the description.
func DescHas(want string) Expression {
	want = strings.ToLower(want)
	return matchFunc(func(n *uitree.Node) bool {
		return strings.Contains(strings.ToLower(n.Desc), want)
	})
}

// ClassIs matches the element class exactly.
func ClassIs(want string) Expression {
	return matchFunc(func(n *uitree.Node) bool { return n.Class == want })
}

// ClassHas matches a substring of the element class. Vendors prefix or
// relocate widget classes, so exact class matching is often too strict.
func ClassHas(want string) Expression {
	return matchFunc(func(n *uitree.Node) bool { return strings.Contains(n.Class, want) })
}

// CheckedIs matches the checked state.
func CheckedIs(want bool) Expression {
	return matchFunc(func(n *uitree.Node) bool { return n.Checked == want })
}

// Checkable matches checkable elements.
func Checkable() Expression {
	return matchFunc(func(n *uitree.Node) bool { return n.Checkable })
}

// Clickable matches clickable elements.
func Clickable() Expression {
	return matchFunc(func(n *uitree.Node) bool { return n.Clickable })
}

// Scrollable matches scrollable elements.
func Scrollable() Expression {
	return matchFunc(func(n *uitree.Node) bool { return n.Scrollable })
}

// AttrMatches matches a regular expression against a named attribute
// ("text", "desc" or "class").
func AttrMatches(attr string, re *regexp.Regexp) Expression {
	return matchFunc(func(n *uitree.Node) bool {
		switch attr {
		case "text":
			return re.MatchString(n.Text)
		case "desc":
			return re.MatchString(n.Desc)
		case "class":
			return re.MatchString(n.Class)
		default:
			return false
		}
	})
}

// Any matches when at least one sub-expression matches (logical OR).
func Any(exprs ...Expression) Expression {
	return matchFunc(func(n *uitree.Node) bool {
		for _, e := range exprs {
			if e.Match(n) {
				return true
			}
		}
		return false
	})
}

// All matches when every sub-expression matches (logical AND).
func All(exprs ...Expression) Expression {
	return matchFunc(func(n *uitree.Node) bool {
		for _, e := range exprs {
			if !e.Match(n) {
				return false
			}
		}
		return true
	})
}
