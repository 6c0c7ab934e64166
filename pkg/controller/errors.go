package controller

import "errors"

var (
	// ErrPreconditionUnavailable means the automation server never became
	// ready, or the target network dropped before the run started.
	ErrPreconditionUnavailable = errors.New("automation preconditions unavailable")

	// ErrNavigationFailed means the developer options panel could not be
	// reached by deep link or by walking the settings tree.
	ErrNavigationFailed = errors.New("could not reach developer options")

	// ErrElementNotFound means no search strategy located the wireless
	// debugging toggle on the panel.
	ErrElementNotFound = errors.New("wireless debugging toggle not found")

	// ErrToggleNotConfirmed means the toggle was tapped but never read
	// back as enabled.
	ErrToggleNotConfirmed = errors.New("toggle state change not confirmed")

	// ErrExtractionFailed means no pairing address appeared in the panel
	// text within the retry budget.
	ErrExtractionFailed = errors.New("no pairing address found on screen")

	// ErrRunInProgress is returned by TriggerManually while a run is
	// already active.
	ErrRunInProgress = errors.New("a run is already in progress")
)
