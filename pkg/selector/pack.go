package selector

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Pack bundles the selector sets and screen markers for locating the
// developer panel and the wireless debugging toggle. The built-in defaults
// cover stock Android plus the common vendor variations; a YAML pack file
// can override any field for devices the defaults miss.
type Pack struct {
	// SettingsPackages are package names accepted as the settings app when
	// verifying the foreground screen.
	SettingsPackages []string

	// PanelMarkers confirm, in harvested screen text, that the developer
	// panel is in the foreground.
	PanelMarkers []string

	// IntermediateMarkers identify a vendor "system"-style screen that
	// nests the developer panel one level deeper.
	IntermediateMarkers []string

	// HiddenModeMarkers confirm that repeated build-number taps unlocked
	// developer mode.
	HiddenModeMarkers []string

	// ToggleKeywords drive the text-proximity fallback search for the
	// wireless debugging toggle.
	ToggleKeywords []string

	// Prioritized expression lists; first expression to yield a node wins.
	PanelEntry        []Expression
	IntermediateEntry []Expression
	DeviceInfoEntry   []Expression
	BuildNumber       []Expression
	Toggle            []Expression
	SecondaryToggle   []Expression
	ConfirmDialog     []Expression
}

// Default returns the built-in pack.
func Default() *Pack {
	return &Pack{
		SettingsPackages: []string{
			"com.android.settings",
			"com.android.tv.settings",
			"com.samsung.android.settings",
		},
		PanelMarkers: []string{
			"USB debugging", "Wireless debugging", "OEM unlocking",
			"USB 调试", "无线调试", "开发者选项",
		},
		IntermediateMarkers: []string{
			"System & updates", "System update", "系统和更新", "Additional settings", "更多设置",
		},
		// Narrow on purpose: the pre-unlock countdown toast also mentions
		// "developer", and the unlock loop exits on the first marker hit.
		HiddenModeMarkers: []string{
			"You are now a developer", "开发者模式",
		},
		ToggleKeywords: []string{
			"wireless debugging", "wifi debugging", "adb over network", "无线调试",
		},
		PanelEntry: []Expression{
			Any(
				TextHas("Developer options"),
				TextHas("开发者选项"),
				DescHas("Developer options"),
			),
		},
		IntermediateEntry: []Expression{
			Any(
				TextHas("System & updates"),
				TextHas("系统和更新"),
				TextIs("System"),
				TextHas("Additional settings"),
				TextHas("更多设置"),
			),
		},
		DeviceInfoEntry: []Expression{
			Any(
				TextHas("About phone"),
				TextHas("About device"),
				TextHas("关于手机"),
				TextHas("My device"),
			),
		},
		BuildNumber: []Expression{
			Any(
				TextHas("Build number"),
				TextHas("版本号"),
				TextHas("MIUI version"),
			),
		},
		Toggle: []Expression{
			All(Any(TextHas("Wireless debugging"), TextHas("无线调试")), Checkable()),
			Any(TextHas("Wireless debugging"), TextHas("无线调试"), DescHas("Wireless debugging")),
			All(ClassHas("Switch"), CheckedIs(false)),
		},
		SecondaryToggle: []Expression{
			Any(TextHas("USB debugging"), TextHas("USB 调试")),
		},
		ConfirmDialog: []Expression{
			Any(TextIs("Allow"), TextIs("OK"), TextIs("允许"), TextIs("确定")),
		},
	}
}

// packFile is the YAML shape of an override pack.
type packFile struct {
	SettingsPackages    []string   `yaml:"settingsPackages"`
	PanelMarkers        []string   `yaml:"panelMarkers"`
	IntermediateMarkers []string   `yaml:"intermediateMarkers"`
	HiddenModeMarkers   []string   `yaml:"hiddenModeMarkers"`
	ToggleKeywords      []string   `yaml:"toggleKeywords"`
	PanelEntry          []exprNode `yaml:"panelEntry"`
	IntermediateEntry   []exprNode `yaml:"intermediateEntry"`
	DeviceInfoEntry     []exprNode `yaml:"deviceInfoEntry"`
	BuildNumber         []exprNode `yaml:"buildNumber"`
	Toggle              []exprNode `yaml:"toggle"`
	SecondaryToggle     []exprNode `yaml:"secondaryToggle"`
	ConfirmDialog       []exprNode `yaml:"confirmDialog"`
}

// exprNode is the YAML shape of one expression. Exactly one field should be
// set per node; combinators nest.
type exprNode struct {
	Any      []exprNode `yaml:"any"`
	All      []exprNode `yaml:"all"`
	TextIs   string     `yaml:"textIs"`
	TextHas  string     `yaml:"textHas"`
	DescHas  string     `yaml:"descHas"`
	ClassIs  string     `yaml:"classIs"`
	ClassHas string     `yaml:"classHas"`
	Checked  *bool      `yaml:"checked"`
	State    string     `yaml:"state"` // clickable, checkable, scrollable
	Attr     string     `yaml:"attr"`  // with pattern: regex on text/desc/class
	Pattern  string     `yaml:"pattern"`
}

func (e exprNode) compile() (Expression, error) {
	switch {
	case len(e.Any) > 0:
		sub, err := compileList(e.Any)
		if err != nil {
			return nil, err
		}
		return Any(sub...), nil
	case len(e.All) > 0:
		sub, err := compileList(e.All)
		if err != nil {
			return nil, err
		}
		return All(sub...), nil
	case e.TextIs != "":
		return TextIs(e.TextIs), nil
	case e.TextHas != "":
		return TextHas(e.TextHas), nil
	case e.DescHas != "":
		return DescHas(e.DescHas), nil
	case e.ClassIs != "":
		return ClassIs(e.ClassIs), nil
	case e.ClassHas != "":
		return ClassHas(e.ClassHas), nil
	case e.Checked != nil:
		return CheckedIs(*e.Checked), nil
	case e.State != "":
		switch e.State {
		case "clickable":
			return Clickable(), nil
		case "checkable":
			return Checkable(), nil
		case "scrollable":
			return Scrollable(), nil
		}
		return nil, fmt.Errorf("unknown state %q", e.State)
	case e.Pattern != "":
		attr := e.Attr
		if attr == "" {
			attr = "text"
		}
		re, err := regexp.Compile(e.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", e.Pattern, err)
		}
		return AttrMatches(attr, re), nil
	}
	return nil, fmt.Errorf("empty selector expression")
}

func compileList(nodes []exprNode) ([]Expression, error) {
	out := make([]Expression, 0, len(nodes))
	for _, n := range nodes {
		e, err := n.compile()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// LoadPack reads a YAML pack file and overlays it on the defaults. Only
// fields present in the file are replaced.
func LoadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parsePack(data)
}

func parsePack(data []byte) (*Pack, error) {
	var pf packFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse selector pack: %w", err)
	}

	pack := Default()
	if len(pf.SettingsPackages) > 0 {
		pack.SettingsPackages = pf.SettingsPackages
	}
	if len(pf.PanelMarkers) > 0 {
		pack.PanelMarkers = pf.PanelMarkers
	}
	if len(pf.IntermediateMarkers) > 0 {
		pack.IntermediateMarkers = pf.IntermediateMarkers
	}
	if len(pf.HiddenModeMarkers) > 0 {
		pack.HiddenModeMarkers = pf.HiddenModeMarkers
	}
	if len(pf.ToggleKeywords) > 0 {
		pack.ToggleKeywords = pf.ToggleKeywords
	}

	overlays := []struct {
		nodes []exprNode
		dst   *[]Expression
	}{
		{pf.PanelEntry, &pack.PanelEntry},
		{pf.IntermediateEntry, &pack.IntermediateEntry},
		{pf.DeviceInfoEntry, &pack.DeviceInfoEntry},
		{pf.BuildNumber, &pack.BuildNumber},
		{pf.Toggle, &pack.Toggle},
		{pf.SecondaryToggle, &pack.SecondaryToggle},
		{pf.ConfirmDialog, &pack.ConfirmDialog},
	}
	for _, o := range overlays {
		if len(o.nodes) == 0 {
			continue
		}
		exprs, err := compileList(o.nodes)
		if err != nil {
			return nil, err
		}
		*o.dst = exprs
	}

	return pack, nil
}
