package workflow

import (
	"time"

	"threadworks/internal/storage"
)

// RebuildPhaseStates recomputes the order's denormalized per-phase aggregate
// from the measurements currently on record. Called after every transition so
// phaseStates stays the single source of truth; timestamps and user activity
// already accumulated on a phase are carried over.
func RebuildPhaseStates(order *storage.Order, orderPhases []storage.PhaseConfig, measurements []storage.Measurement, now time.Time) []storage.PhaseState {
	prev := map[string]storage.PhaseState{}
	for _, ps := range order.PhaseStates {
		prev[ps.PhaseConfigID] = ps
	}

	byPhase := map[string][]string{}
	for _, m := range measurements {
		if m.CurrentPhaseID != "" {
			byPhase[m.CurrentPhaseID] = append(byPhase[m.CurrentPhaseID], m.ID)
		}
	}

	skipped := map[string]storage.SkippedPhase{}
	for _, sp := range order.SkippedPhases {
		skipped[sp.PhaseID] = sp
	}

	completed := map[string]bool{}
	for _, id := range order.CompletedPhaseIDs {
		completed[id] = true
	}

	currentIdx := -1
	for i, p := range orderPhases {
		if p.ID == order.CurrentPhaseID {
			currentIdx = i
		}
	}

	states := make([]storage.PhaseState, 0, len(orderPhases))
	for i, p := range orderPhases {
		ids := byPhase[p.ID]

		state := storage.PhaseState{
			PhaseConfigID:  p.ID,
			PhaseName:      p.PhaseName,
			PhaseKey:       p.PhaseKey,
			MeasurementIDs: ids,
			Count:          len(ids),
		}
		if old, ok := prev[p.ID]; ok {
			state.UserActivities = old.UserActivities
			state.StartedAt = old.StartedAt
			state.CompletedAt = old.CompletedAt
		}

		switch {
		case skipped[p.ID].PhaseID != "":
			sp := skipped[p.ID]
			state.Status = storage.PhaseSkipped
			state.SkipReason = sp.Reason
			state.SkippedBy = sp.SkippedBy
			at := sp.SkippedAt
			state.SkippedAt = &at
		case order.Status == storage.OrderStatusCompleted:
			state.Status = storage.PhaseCompleted
		case len(ids) > 0:
			// Occupied phases are in progress even behind the order
			// pointer, a rejected measurement reopens its phase.
			state.Status = storage.PhaseInProgress
		case completed[p.ID] || (currentIdx >= 0 && i < currentIdx):
			state.Status = storage.PhaseCompleted
		case i == currentIdx:
			state.Status = storage.PhaseInProgress
		default:
			state.Status = storage.PhasePending
		}

		if state.Status == storage.PhaseInProgress && state.StartedAt == nil {
			at := now
			state.StartedAt = &at
		}
		if state.Status == storage.PhaseCompleted && state.CompletedAt == nil {
			at := now
			state.CompletedAt = &at
		}

		states = append(states, state)
	}

	return states
}

// RecordActivity bumps the per-user counters on the phase the user just acted
// on. completed distinguishes a forward move from a rejection.
func RecordActivity(states []storage.PhaseState, phaseID, userID, userName, measurementID string, completed bool, now time.Time) {
	if userID == "" {
		return
	}
	for i := range states {
		if states[i].PhaseConfigID != phaseID {
			continue
		}
		if states[i].UserActivities == nil {
			states[i].UserActivities = map[string]*storage.UserActivity{}
		}
		act := states[i].UserActivities[userID]
		if act == nil {
			act = &storage.UserActivity{UserID: userID, UserName: userName}
			states[i].UserActivities[userID] = act
		}
		if completed {
			act.CompletedCount++
			act.CompletedMeasurementIDs = append(act.CompletedMeasurementIDs, measurementID)
		} else {
			act.RejectedCount++
		}
		at := now
		if act.FirstActivityAt == nil {
			act.FirstActivityAt = &at
		}
		act.LastActivityAt = &at
		return
	}
}
