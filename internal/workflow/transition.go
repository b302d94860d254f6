package workflow

import (
	"errors"
	"strings"

	"threadworks/internal/storage"
)

// Rule violations. Handlers map these to 4xx responses; the facade raises
// them before any network call is made.
var (
	ErrNoCurrentPhase     = errors.New("no current phase set")
	ErrNoNextPhase        = errors.New("no next phase in sequence")
	ErrPhaseNotInOrder    = errors.New("phase is not part of the order")
	ErrSkipNotAllowed     = errors.New("phase cannot be skipped")
	ErrSkipReasonRequired = errors.New("skip reason is required")
	ErrRejectReason       = errors.New("reject reason is required")
	ErrRejectTarget       = errors.New("reject target phase is required")
	ErrNoRejectTargets    = errors.New("no previous phases to reject to")
	ErrNotPreviousPhase   = errors.New("reject target must be an earlier phase")
	ErrNotReadyToComplete = errors.New("not all measurements are in the final phase")
)

// NextPhase returns the successor of currentID within the order's selected
// phases.
func NextPhase(orderPhases []storage.PhaseConfig, currentID string) (storage.PhaseConfig, error) {
	if currentID == "" {
		return storage.PhaseConfig{}, ErrNoCurrentPhase
	}
	for i, p := range orderPhases {
		if p.ID != currentID {
			continue
		}
		if i+1 >= len(orderPhases) {
			return storage.PhaseConfig{}, ErrNoNextPhase
		}
		return orderPhases[i+1], nil
	}
	return storage.PhaseConfig{}, ErrPhaseNotInOrder
}

// ValidateAdvance checks the skip rules for moving past the given phase.
// A phase with canSkip=false performs a plain completion and never accepts a
// reason; a skip always requires a non-blank one.
func ValidateAdvance(current storage.PhaseConfig, skipReason string, skipping bool) error {
	if !skipping {
		return nil
	}
	if !current.CanSkip {
		return ErrSkipNotAllowed
	}
	if strings.TrimSpace(skipReason) == "" {
		return ErrSkipReasonRequired
	}
	return nil
}

// RejectTargets lists the phases an item currently in fromID may be rejected
// back to: every selected phase with a strictly smaller sequenceOrder.
func RejectTargets(orderPhases []storage.PhaseConfig, fromID string) []storage.PhaseConfig {
	from, ok := findPhase(orderPhases, fromID)
	if !ok {
		return nil
	}
	var out []storage.PhaseConfig
	for _, p := range orderPhases {
		if p.SequenceOrder < from.SequenceOrder {
			out = append(out, p)
		}
	}
	return out
}

// ValidateReject checks a reject-to-previous-phase request. The target must
// be chosen explicitly; there is no implicit one-step-back default.
func ValidateReject(orderPhases []storage.PhaseConfig, fromID, targetID, reason string) error {
	from, ok := findPhase(orderPhases, fromID)
	if !ok {
		return ErrPhaseNotInOrder
	}
	if len(RejectTargets(orderPhases, fromID)) == 0 {
		return ErrNoRejectTargets
	}
	if targetID == "" {
		return ErrRejectTarget
	}
	target, ok := findPhase(orderPhases, targetID)
	if !ok {
		return ErrPhaseNotInOrder
	}
	if target.SequenceOrder >= from.SequenceOrder {
		return ErrNotPreviousPhase
	}
	if strings.TrimSpace(reason) == "" {
		return ErrRejectReason
	}
	return nil
}

// IsReadyToComplete reports whether the order may be marked complete: every
// measurement sits in the last selected phase and there is at least one.
func IsReadyToComplete(order *storage.Order, orderPhases []storage.PhaseConfig) bool {
	if order == nil || len(orderPhases) == 0 {
		return false
	}
	last := orderPhases[len(orderPhases)-1]
	total := TotalMeasurements(order)
	return total > 0 && MeasurementCount(order, last.ID) == total
}

func findPhase(phases []storage.PhaseConfig, id string) (storage.PhaseConfig, bool) {
	for _, p := range phases {
		if p.ID == id {
			return p, true
		}
	}
	return storage.PhaseConfig{}, false
}
