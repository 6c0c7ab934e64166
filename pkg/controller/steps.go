package controller

import (
	"context"
	"fmt"

	"github.com/autopair-dev/wadb-agent/pkg/extract"
	"github.com/autopair-dev/wadb-agent/pkg/harvest"
	"github.com/autopair-dev/wadb-agent/pkg/selector"
	"github.com/autopair-dev/wadb-agent/pkg/uitree"
)

// attempt executes one full pass through the phases. Element references are
// never reused across an action: every tap and scroll invalidates the
// hierarchy, so each step re-reads the root before touching anything.
func (c *Controller) attempt(ctx context.Context) (*extract.Candidate, error) {
	c.setPhase(PhaseCheckingPreconditions)
	if err := c.checkPreconditions(ctx); err != nil {
		return nil, err
	}

	c.setPhase(PhaseNavigating)
	if err := c.navigate(ctx); err != nil {
		return nil, err
	}

	if err := c.enableFeature(ctx); err != nil {
		return nil, err
	}

	c.setPhase(PhaseExtracting)
	return c.extractAddress(ctx)
}

// checkPreconditions waits for the automation server and confirms the
// trigger network is still connected.
func (c *Controller) checkPreconditions(ctx context.Context) error {
	t := c.opts.Timings

	ready := false
	for i := 0; i < t.ReadyPolls; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if c.acc.Ready() {
			ready = true
			break
		}
		if !c.sleep(ctx, t.ReadyPollInterval) {
			return ctx.Err()
		}
	}
	if !ready {
		return fmt.Errorf("%w: automation server not responding", ErrPreconditionUnavailable)
	}

	info := c.snapshot()
	if info.Trigger == "network" && c.connected != nil {
		if ssid, ok := c.connected(); !ok || ssid != info.Network {
			return fmt.Errorf("%w: network %q no longer connected", ErrPreconditionUnavailable, info.Network)
		}
	}
	return nil
}

// navigate brings the developer options panel to the foreground: deep link
// first, then walking the settings tree, unlocking developer options via the
// build number when the panel does not exist yet.
func (c *Controller) navigate(ctx context.Context) error {
	if err := c.openDeveloperOptions(ctx); err == nil {
		return nil
	} else if ctx.Err() != nil {
		return ctx.Err()
	}

	// Panel unreachable; assume developer options are locked and unlock
	// them, then try once more.
	c.setPhase(PhaseActivatingHiddenMode)
	if err := c.unlockDeveloperOptions(ctx); err != nil {
		return err
	}

	c.setPhase(PhaseNavigating)
	if err := c.openDeveloperOptions(ctx); err != nil {
		return err
	}
	return nil
}

// openDeveloperOptions locates the developer panel: deep link first, then
// the settings tree, then the vendor two-hop through an intermediate screen
// (System, Additional settings).
func (c *Controller) openDeveloperOptions(ctx context.Context) error {
	c.setPhase(PhaseLocatingPanel)

	if err := c.acc.OpenScreen(uitree.ActionDeveloperOptions); err == nil {
		if !c.sleep(ctx, c.opts.Timings.NavSettle) {
			return ctx.Err()
		}
		if c.onDeveloperPanel() {
			return nil
		}
	}

	if err := c.acc.OpenScreen(uitree.ActionSettings); err != nil {
		return fmt.Errorf("%w: settings did not open: %v", ErrNavigationFailed, err)
	}
	if !c.sleep(ctx, c.opts.Timings.NavSettle) {
		return ctx.Err()
	}
	if !c.settingsForeground() {
		return fmt.Errorf("%w: settings not in foreground", ErrNavigationFailed)
	}

	if c.tapEntry(ctx, c.pack.PanelEntry) && c.onDeveloperPanel() {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if c.tapEntry(ctx, c.pack.IntermediateEntry) && c.onPanel(c.pack.IntermediateMarkers) {
		if c.tapEntry(ctx, c.pack.PanelEntry) && c.onDeveloperPanel() {
			return nil
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return ErrNavigationFailed
}

// settingsForeground verifies a settings app owns the screen. Foreground
// detection is best effort; an unreadable window state is not treated as
// failure.
func (c *Controller) settingsForeground() bool {
	pkg, err := c.acc.ForegroundPackage()
	if err != nil || pkg == "" {
		return true
	}
	for _, want := range c.pack.SettingsPackages {
		if pkg == want {
			return true
		}
	}
	return false
}

// onDeveloperPanel recognizes the developer options panel by its text
// markers, or by the USB debugging row which every vendor's panel carries.
func (c *Controller) onDeveloperPanel() bool {
	root, err := c.acc.Root()
	if err != nil {
		return false
	}
	if harvest.ContainsAny(harvest.Collect(root), c.pack.PanelMarkers) {
		return true
	}
	return selector.FirstMatch(root, c.pack.SecondaryToggle) != nil
}

// unlockDeveloperOptions opens device info and taps the build number until a
// confirmation marker appears or the tap budget runs out. Vendors that never
// surface a marker simply get the full tap budget.
func (c *Controller) unlockDeveloperOptions(ctx context.Context) error {
	t := c.opts.Timings

	if err := c.acc.OpenScreen(uitree.ActionDeviceInfo); err != nil {
		// No deep link on this build; walk in from the settings root.
		if err := c.acc.OpenScreen(uitree.ActionSettings); err != nil {
			return fmt.Errorf("%w: device info did not open: %v", ErrNavigationFailed, err)
		}
		if !c.sleep(ctx, t.NavSettle) {
			return ctx.Err()
		}
		if !c.tapEntry(ctx, c.pack.DeviceInfoEntry) {
			return fmt.Errorf("%w: device info entry not found", ErrNavigationFailed)
		}
	}
	if !c.sleep(ctx, t.NavSettle) {
		return ctx.Err()
	}

	tapped := 0
	confirmed := false
	for i := 0; i < t.BuildTaps; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		root, err := c.acc.Root()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNavigationFailed, err)
		}
		node := selector.FirstMatch(root, c.pack.BuildNumber)
		if node == nil {
			if !c.scrollForward(root) {
				break
			}
			if !c.sleep(ctx, t.ScrollSettle) {
				return ctx.Err()
			}
			continue
		}
		if err := c.acc.Activate(node); err != nil {
			return fmt.Errorf("%w: build number tap: %v", ErrNavigationFailed, err)
		}
		tapped++
		if !c.sleep(ctx, t.BuildTapInterval) {
			return ctx.Err()
		}
		if c.onPanel(c.pack.HiddenModeMarkers) {
			confirmed = true
			break
		}
	}
	if tapped == 0 {
		return fmt.Errorf("%w: build number entry not found", ErrNavigationFailed)
	}

	c.log.Info().
		Int("taps", tapped).
		Bool("confirmed", confirmed).
		Msg("developer options unlock sequence sent")
	return nil
}

// tapEntry scrolls through the current screen looking for an entry matching
// the expressions and taps the first hit. Reports whether a tap happened.
func (c *Controller) tapEntry(ctx context.Context, exprs []selector.Expression) bool {
	t := c.opts.Timings

	for sweep := 0; sweep <= t.ScrollSweeps; sweep++ {
		if ctx.Err() != nil {
			return false
		}
		root, err := c.acc.Root()
		if err != nil {
			return false
		}
		if node := selector.FirstMatch(root, exprs); node != nil {
			if err := c.acc.Activate(node); err != nil {
				return false
			}
			c.sleep(ctx, t.NavSettle)
			return true
		}
		if sweep == t.ScrollSweeps || !c.scrollForward(root) {
			return false
		}
		if !c.sleep(ctx, t.ScrollSettle) {
			return false
		}
	}
	return false
}

// onPanel reads the current screen and checks it carries any of the given
// text markers.
func (c *Controller) onPanel(markers []string) bool {
	root, err := c.acc.Root()
	if err != nil {
		return false
	}
	return harvest.ContainsAny(harvest.Collect(root), markers)
}

func (c *Controller) scrollForward(root *uitree.Node) bool {
	target := root.FirstScrollable()
	if target == nil {
		return false
	}
	return c.acc.Scroll(target, true) == nil
}

// enableFeature locates the toggle, flips it on, and confirms the change.
func (c *Controller) enableFeature(ctx context.Context) error {
	c.setPhase(PhaseEnablingFeature)
	node, strat, err := c.findToggle(ctx)
	if err != nil {
		return err
	}
	c.log.Debug().Str("strategy", strat).Msg("toggle located")

	t := c.opts.Timings

	if node.Checked {
		if !c.opts.SecondaryToggleFirst {
			// Already enabled; the address should be on screen.
			return nil
		}
		// Cycle off then on so the panel re-renders the address.
		if err := c.acc.Activate(node); err != nil {
			return fmt.Errorf("%w: %v", ErrToggleNotConfirmed, err)
		}
		if !c.sleep(ctx, t.VerifyPollInterval) {
			return ctx.Err()
		}
		node, _, err = c.findToggle(ctx)
		if err != nil {
			return err
		}
	}

	if err := c.acc.Activate(node); err != nil {
		return fmt.Errorf("%w: %v", ErrToggleNotConfirmed, err)
	}

	c.dismissConfirmDialog(ctx)

	// Confirm the switch reads back enabled. A visible pairing address is
	// accepted too: some skins replace the switch row once enabled.
	for i := 0; i < t.VerifyPolls; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		root, err := c.acc.Root()
		if err == nil {
			if n := c.matchToggle(root); n != nil && n.Checked {
				return nil
			}
			if extract.HasAddress(harvest.Collect(root), c.opts.Extract) {
				return nil
			}
		}
		if !c.sleep(ctx, t.VerifyPollInterval) {
			return ctx.Err()
		}
	}
	return ErrToggleNotConfirmed
}

// findToggle runs the strategy chain over the screen, scrolling between
// sweeps. Returns the node, the winning strategy name, and an error when
// every sweep came up empty.
func (c *Controller) findToggle(ctx context.Context) (*uitree.Node, string, error) {
	t := c.opts.Timings

	for sweep := 0; sweep <= t.ScrollSweeps; sweep++ {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		root, err := c.acc.Root()
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrElementNotFound, err)
		}
		for _, strat := range toggleStrategies {
			if node := strat.Find(root, c.pack); node != nil {
				return node, strat.Name, nil
			}
		}
		if sweep == t.ScrollSweeps || !c.scrollForward(root) {
			break
		}
		if !c.sleep(ctx, t.ScrollSettle) {
			return nil, "", ctx.Err()
		}
	}
	return nil, "", ErrElementNotFound
}

// matchToggle finds the toggle in an already-acquired hierarchy, without
// scrolling.
func (c *Controller) matchToggle(root *uitree.Node) *uitree.Node {
	for _, strat := range toggleStrategies {
		if node := strat.Find(root, c.pack); node != nil {
			return node
		}
	}
	return nil
}

// dismissConfirmDialog accepts the "allow wireless debugging on this
// network" dialog when it appears. Absence is not an error.
func (c *Controller) dismissConfirmDialog(ctx context.Context) {
	if !c.sleep(ctx, c.opts.Timings.VerifyPollInterval) {
		return
	}
	root, err := c.acc.Root()
	if err != nil {
		return
	}
	node := selector.FirstMatch(root, c.pack.ConfirmDialog)
	if node == nil {
		return
	}
	if err := c.acc.Activate(node); err != nil {
		c.log.Debug().Err(err).Msg("confirm dialog tap failed")
		return
	}
	c.sleep(ctx, c.opts.Timings.VerifyPollInterval)
}

// extractAddress harvests the panel text until an address shows up or the
// retry budget runs out.
func (c *Controller) extractAddress(ctx context.Context) (*extract.Candidate, error) {
	t := c.opts.Timings

	for i := 0; i < t.HarvestRetries; i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		root, err := c.acc.Root()
		if err == nil {
			corpus := harvest.Collect(root)
			if cand, ok := extract.FromCorpus(corpus, c.opts.Extract); ok {
				return &cand, nil
			}
		}
		if !c.sleep(ctx, t.HarvestSettle) {
			return nil, ctx.Err()
		}
	}
	return nil, ErrExtractionFailed
}
