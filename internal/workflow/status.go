package workflow

import "threadworks/internal/storage"

// Status is the display status of one phase within one order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCurrent   Status = "current"
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
)

// MeasurementCount reports how many measurements sit in the given phase
// according to the order's phaseStates aggregate. Falls back to the length of
// measurementIds when the count was never set.
func MeasurementCount(order *storage.Order, phaseID string) int {
	for _, ps := range order.PhaseStates {
		if ps.PhaseConfigID != phaseID {
			continue
		}
		if ps.Count > 0 {
			return ps.Count
		}
		return len(ps.MeasurementIDs)
	}
	return 0
}

// TotalMeasurements is the order's measurement count as recorded by the
// server.
func TotalMeasurements(order *storage.Order) int {
	return order.TotalMeasurements
}

// ResolveStatus computes the display status of a phase for an order.
// orderPhases must be the order's selected phases in sequence order (see
// Catalog.ForOrder).
//
// Three tiers, first match wins:
//
//  1. an entry in order.skippedPhases marks the phase skipped, whatever the
//     aggregate says;
//  2. a phaseStates entry with a recognized status maps directly
//     (in-progress becomes current);
//  3. records written before phaseStates existed fall back to occupancy: a
//     phase holding measurements is current, a phase listed in
//     completedPhaseIds is completed, a phase strictly before the earliest
//     occupied phase is completed, everything else is pending.
//
// The fallback tier is a heuristic kept for partially migrated orders only;
// new writes always populate phaseStates.
func ResolveStatus(phase storage.PhaseConfig, order *storage.Order, orderPhases []storage.PhaseConfig) Status {
	if order == nil {
		return StatusPending
	}

	for _, sp := range order.SkippedPhases {
		if sp.PhaseID == phase.ID {
			return StatusSkipped
		}
	}

	for _, ps := range order.PhaseStates {
		if ps.PhaseConfigID != phase.ID {
			continue
		}
		switch ps.Status {
		case storage.PhaseCompleted:
			return StatusCompleted
		case storage.PhaseInProgress:
			return StatusCurrent
		case storage.PhaseSkipped:
			return StatusSkipped
		case storage.PhasePending:
			return StatusPending
		}
		// Unrecognized status string, fall through to the legacy tier.
		break
	}

	if MeasurementCount(order, phase.ID) > 0 {
		return StatusCurrent
	}

	for _, id := range order.CompletedPhaseIDs {
		if id == phase.ID {
			return StatusCompleted
		}
	}

	for _, p := range orderPhases {
		if MeasurementCount(order, p.ID) > 0 {
			if phase.SequenceOrder < p.SequenceOrder {
				return StatusCompleted
			}
			break
		}
	}

	return StatusPending
}
