package controller

// Phase is where a run currently is. Within an attempt phases advance
// forward, with two sanctioned loops: ActivatingHiddenMode returns to
// Navigating after unlocking developer options, and RetryPending re-enters
// CheckingPreconditions for the next attempt.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseTriggered
	PhaseCheckingPreconditions
	PhaseNavigating
	PhaseLocatingPanel
	PhaseActivatingHiddenMode
	PhaseEnablingFeature
	PhaseExtracting
	PhaseDispatching
	PhaseCompleted
	PhaseRetryPending
	PhaseFailed
)

var phaseNames = map[Phase]string{
	PhaseIdle:                  "idle",
	PhaseTriggered:             "triggered",
	PhaseCheckingPreconditions: "checking-preconditions",
	PhaseNavigating:            "navigating",
	PhaseLocatingPanel:         "locating-panel",
	PhaseActivatingHiddenMode:  "activating-hidden-mode",
	PhaseEnablingFeature:       "enabling-feature",
	PhaseExtracting:            "extracting",
	PhaseDispatching:           "dispatching",
	PhaseCompleted:             "completed",
	PhaseRetryPending:          "retry-pending",
	PhaseFailed:                "failed",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}
