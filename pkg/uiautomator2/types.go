package uiautomator2

// Response is the generic WebDriver-style response envelope.
type Response struct {
	SessionID string      `json:"sessionId,omitempty"`
	Value     interface{} `json:"value"`
}

// Capabilities are session creation capabilities.
type Capabilities struct {
	AlwaysMatch map[string]interface{}   `json:"alwaysMatch,omitempty"`
	FirstMatch  []map[string]interface{} `json:"firstMatch,omitempty"`
}

// SessionRequest creates a new session.
type SessionRequest struct {
	Capabilities Capabilities `json:"capabilities"`
}

// PointModel is an x/y coordinate.
type PointModel struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// RectModel is a rectangular area.
type RectModel struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ClickRequest taps at an offset.
type ClickRequest struct {
	Offset *PointModel `json:"offset,omitempty"`
}

// ScrollRequest scrolls within an area.
type ScrollRequest struct {
	Area      *RectModel `json:"area,omitempty"`
	Direction string     `json:"direction"`
	Percent   float64    `json:"percent"`
	Speed     int        `json:"speed,omitempty"`
}

// KeyCodeRequest presses a key code.
type KeyCodeRequest struct {
	KeyCode int `json:"keycode"`
}
