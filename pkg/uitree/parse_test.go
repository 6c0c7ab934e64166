package uitree

import "testing"

const sampleHierarchy = `<?xml version='1.0' encoding='UTF-8' standalone='yes' ?>
<hierarchy rotation="0">
  <node text="" class="android.widget.FrameLayout" bounds="[0,0][1080,2340]" clickable="false" enabled="true">
    <node text="Wireless debugging" class="android.widget.TextView" bounds="[48,300][600,360]" clickable="false" enabled="true"/>
    <node text="" content-desc="toggle" class="android.widget.Switch" bounds="[900,290][1040,370]" clickable="true" checkable="true" checked="false" enabled="true"/>
    <node text="" class="androidx.recyclerview.widget.RecyclerView" bounds="[0,400][1080,2200]" scrollable="true" enabled="true">
      <node text="IP address &amp; Port" class="android.widget.TextView" bounds="[48,500][500,560]" enabled="true"/>
      <node text="192.168.1.7:40123" class="android.widget.TextView" bounds="[48,560][500,620]" enabled="true"/>
    </node>
  </node>
</hierarchy>`

func TestParseHierarchy(t *testing.T) {
	root, err := ParseHierarchy(sampleHierarchy)
	if err != nil {
		t.Fatalf("ParseHierarchy: %v", err)
	}

	// Synthetic root plus six real nodes.
	if got := root.Count(); got != 7 {
		t.Errorf("node count = %d, want 7", got)
	}

	var toggle *Node
	root.Walk(func(n *Node) bool {
		if n.Desc == "toggle" {
			toggle = n
			return false
		}
		return true
	})
	if toggle == nil {
		t.Fatal("switch node not found")
	}
	if !toggle.Checkable || toggle.Checked {
		t.Errorf("switch checkable=%v checked=%v, want checkable and unchecked", toggle.Checkable, toggle.Checked)
	}
	if !toggle.Clickable {
		t.Error("switch not clickable")
	}
	if toggle.Bounds.CenterX() != 970 || toggle.Bounds.CenterY() != 330 {
		t.Errorf("switch center = (%d,%d), want (970,330)", toggle.Bounds.CenterX(), toggle.Bounds.CenterY())
	}

	list := root.FirstScrollable()
	if list == nil {
		t.Fatal("scrollable list not found")
	}
	if len(list.Children) != 2 {
		t.Errorf("list children = %d, want 2", len(list.Children))
	}
	if list.Children[1].Text != "192.168.1.7:40123" {
		t.Errorf("address row text = %q", list.Children[1].Text)
	}
	if list.Children[0].Parent != list {
		t.Error("parent back-reference not set")
	}
	if list.Children[0].Depth != 3 {
		t.Errorf("address label depth = %d, want 3", list.Children[0].Depth)
	}
}

func TestParseHierarchyEnabledDefault(t *testing.T) {
	// Many dumps omit the enabled attribute; absence means enabled.
	root, err := ParseHierarchy(`<hierarchy><node text="a" bounds="[0,0][10,10]"/></hierarchy>`)
	if err != nil {
		t.Fatalf("ParseHierarchy: %v", err)
	}
	if !root.Children[0].Enabled {
		t.Error("node without enabled attribute should be enabled")
	}
}

func TestParseHierarchyMalformed(t *testing.T) {
	for _, bad := range []string{"", "<hierarchy", "not xml at all"} {
		if _, err := ParseHierarchy(bad); err == nil {
			t.Errorf("ParseHierarchy(%q) succeeded, want error", bad)
		}
	}
}

func TestParseBoundsFormats(t *testing.T) {
	root, err := ParseHierarchy(`<hierarchy><node text="x" bounds="[10,20][110,220]"/></hierarchy>`)
	if err != nil {
		t.Fatalf("ParseHierarchy: %v", err)
	}
	b := root.Children[0].Bounds
	if b.X != 10 || b.Y != 20 || b.Width != 100 || b.Height != 200 {
		t.Errorf("bounds = %+v", b)
	}

	// Unparseable bounds degrade to an empty rectangle, not an error.
	root, err = ParseHierarchy(`<hierarchy><node text="x" bounds="garbage"/></hierarchy>`)
	if err != nil {
		t.Fatalf("ParseHierarchy: %v", err)
	}
	if !root.Children[0].Bounds.Empty() {
		t.Error("garbage bounds should parse as empty")
	}
}
