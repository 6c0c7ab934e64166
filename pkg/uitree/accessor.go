package uitree

// Accessor is the read/act surface over the live external element tree.
//
// The staleness contract: any call to Activate, Scroll, OpenScreen or
// PressHome may change the screen and invalidates every Node obtained from a
// previous Root call. Callers re-acquire the root after each action.
type Accessor interface {
	// Ready reports whether the automation capability is available.
	Ready() bool

	// Root returns a fresh snapshot of the current screen's tree.
	Root() (*Node, error)

	// Activate simulates the element's primary action (a tap).
	Activate(n *Node) error

	// Scroll scrolls within the element; forward means toward the end of
	// the content (down for vertical lists).
	Scroll(n *Node, forward bool) error

	// OpenScreen asks the host to open a system screen by intent action.
	OpenScreen(action string) error

	// PressHome returns the device to the launcher.
	PressHome() error

	// ForegroundPackage returns the owning application of the foreground
	// window, when the host can determine it.
	ForegroundPackage() (string, error)
}

// Well-known intent actions the controller navigates with.
const (
	ActionSettings         = "android.settings.SETTINGS"
	ActionDeveloperOptions = "android.settings.APPLICATION_DEVELOPMENT_SETTINGS"
	ActionDeviceInfo       = "android.settings.DEVICE_INFO_SETTINGS"
)
