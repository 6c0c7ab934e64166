package uitree

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// ParseHierarchy parses UIAutomator2 page source XML into a Node tree.
// Returns the synthetic hierarchy root whose children are the top-level nodes.
func ParseHierarchy(xmlData string) (*Node, error) {
	var hierarchy struct {
		XMLName xml.Name  `xml:"hierarchy"`
		Nodes   []xmlNode `xml:"node"`
	}

	if err := xml.Unmarshal([]byte(xmlData), &hierarchy); err != nil {
		return nil, fmt.Errorf("parse hierarchy XML: %w", err)
	}

	root := &Node{Class: "hierarchy", Enabled: true}
	for _, n := range hierarchy.Nodes {
		root.Children = append(root.Children, buildNode(n, root, 1))
	}
	return root, nil
}

type xmlNode struct {
	Text        string    `xml:"text,attr"`
	ContentDesc string    `xml:"content-desc,attr"`
	Class       string    `xml:"class,attr"`
	Bounds      string    `xml:"bounds,attr"`
	Clickable   string    `xml:"clickable,attr"`
	Checkable   string    `xml:"checkable,attr"`
	Checked     string    `xml:"checked,attr"`
	Scrollable  string    `xml:"scrollable,attr"`
	Enabled     string    `xml:"enabled,attr"`
	Children    []xmlNode `xml:"node"`
}

func buildNode(x xmlNode, parent *Node, depth int) *Node {
	n := &Node{
		Text:       x.Text,
		Desc:       x.ContentDesc,
		Class:      x.Class,
		Bounds:     parseBounds(x.Bounds),
		Clickable:  x.Clickable == "true",
		Checkable:  x.Checkable == "true",
		Checked:    x.Checked == "true",
		Scrollable: x.Scrollable == "true",
		Enabled:    x.Enabled != "false", // default true
		Parent:     parent,
		Depth:      depth,
	}

	if depth >= MaxDepth {
		return n
	}
	for _, c := range x.Children {
		n.Children = append(n.Children, buildNode(c, n, depth+1))
	}
	return n
}

// parseBounds parses the Android bounds string "[x1,y1][x2,y2]".
func parseBounds(s string) Bounds {
	s = strings.ReplaceAll(s, "][", ",")
	s = strings.Trim(s, "[]")
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Bounds{}
	}

	x1, _ := strconv.Atoi(parts[0])
	y1, _ := strconv.Atoi(parts[1])
	x2, _ := strconv.Atoi(parts[2])
	y2, _ := strconv.Atoi(parts[3])

	return Bounds{
		X:      x1,
		Y:      y1,
		Width:  x2 - x1,
		Height: y2 - y1,
	}
}
