package controller

import (
	"testing"

	"github.com/autopair-dev/wadb-agent/pkg/selector"
	"github.com/autopair-dev/wadb-agent/pkg/uitree"
)

func TestKeywordProximityFindsSiblingSwitch(t *testing.T) {
	// Vendor layout: the label and the switch are separate children of the
	// same row container.
	sw := &uitree.Node{Class: "android.widget.Switch", Checkable: true, Enabled: true}
	label := &uitree.Node{Text: "无线调试", Enabled: true}
	row := &uitree.Node{Class: "android.widget.LinearLayout", Clickable: true, Enabled: true,
		Children: []*uitree.Node{label, sw}}
	label.Parent, sw.Parent = row, row
	root := &uitree.Node{Enabled: true, Children: []*uitree.Node{row}}
	row.Parent = root

	got := findByKeywordProximity(root, selector.Default())
	if got != sw {
		t.Errorf("got %+v, want the sibling switch", got)
	}
}

func TestKeywordProximityFallsBackToClickableAncestor(t *testing.T) {
	label := &uitree.Node{Text: "Wireless debugging", Enabled: true}
	row := &uitree.Node{Clickable: true, Enabled: true, Children: []*uitree.Node{label}}
	label.Parent = row
	root := &uitree.Node{Enabled: true, Children: []*uitree.Node{row}}
	row.Parent = root

	if got := findByKeywordProximity(root, selector.Default()); got != row {
		t.Errorf("got %+v, want the clickable row", got)
	}
}

func TestKeywordProximityNoKeyword(t *testing.T) {
	root := &uitree.Node{Enabled: true, Children: []*uitree.Node{
		{Text: "Bluetooth", Clickable: true, Enabled: true},
	}}
	if got := findByKeywordProximity(root, selector.Default()); got != nil {
		t.Errorf("matched %+v without any keyword on screen", got)
	}
}

func TestCheckableScanPicksSwitchOnly(t *testing.T) {
	check := &uitree.Node{Class: "android.widget.CheckBox", Checkable: true, Enabled: true}
	sw := &uitree.Node{Class: "android.widget.Switch", Checkable: true, Enabled: true}
	disabled := &uitree.Node{Class: "android.widget.Switch", Checkable: true}
	root := &uitree.Node{Enabled: true, Children: []*uitree.Node{check, disabled, sw}}

	if got := findByCheckableScan(root, selector.Default()); got != sw {
		t.Errorf("got %+v, want the first enabled switch", got)
	}
}

func TestStrategyOrder(t *testing.T) {
	names := make([]string, len(toggleStrategies))
	for i, s := range toggleStrategies {
		names[i] = s.Name
	}
	want := []string{"selector-pack", "keyword-proximity", "checkable-scan"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("strategy order = %v, want %v", names, want)
		}
	}
}
