package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"threadworks/internal/storage"
)

func TestRebuildPhaseStates_Statuses(t *testing.T) {
	phases := testPhases()
	now := time.Now()

	order := testOrder()
	order.CurrentPhaseID = "B"
	order.CompletedPhaseIDs = []string{"A"}

	measurements := []storage.Measurement{
		{ID: "m1", OrderID: order.ID, CurrentPhaseID: "B"},
		{ID: "m2", OrderID: order.ID, CurrentPhaseID: "B"},
	}

	states := RebuildPhaseStates(order, phases, measurements, now)
	assert.Len(t, states, 3)

	assert.Equal(t, storage.PhaseCompleted, states[0].Status)
	assert.Equal(t, storage.PhaseInProgress, states[1].Status)
	assert.Equal(t, 2, states[1].Count)
	assert.ElementsMatch(t, []string{"m1", "m2"}, states[1].MeasurementIDs)
	assert.Equal(t, storage.PhasePending, states[2].Status)

	assert.NotNil(t, states[1].StartedAt)
	assert.NotNil(t, states[0].CompletedAt)
}

func TestRebuildPhaseStates_RejectedMeasurementReopensPhase(t *testing.T) {
	phases := testPhases()
	now := time.Now()

	// Order pointer already moved to C, but one measurement was rejected back
	// to A. The completed phase must reopen.
	order := testOrder()
	order.CurrentPhaseID = "C"
	order.CompletedPhaseIDs = []string{"A", "B"}

	measurements := []storage.Measurement{
		{ID: "m1", OrderID: order.ID, CurrentPhaseID: "A"},
		{ID: "m2", OrderID: order.ID, CurrentPhaseID: "C"},
	}

	states := RebuildPhaseStates(order, phases, measurements, now)
	assert.Equal(t, storage.PhaseInProgress, states[0].Status)
	assert.Equal(t, storage.PhaseCompleted, states[1].Status)
	assert.Equal(t, storage.PhaseInProgress, states[2].Status)
}

func TestRebuildPhaseStates_SkipRecordWins(t *testing.T) {
	phases := testPhases()
	now := time.Now()

	order := testOrder()
	order.CurrentPhaseID = "C"
	order.SkippedPhases = []storage.SkippedPhase{
		{PhaseID: "B", PhaseName: "Stitching", Reason: "outsourced", SkippedAt: now, SkippedBy: "Priya"},
	}

	states := RebuildPhaseStates(order, phases, nil, now)
	assert.Equal(t, storage.PhaseSkipped, states[1].Status)
	assert.Equal(t, "outsourced", states[1].SkipReason)
	assert.Equal(t, "Priya", states[1].SkippedBy)
	assert.NotNil(t, states[1].SkippedAt)
}

func TestRebuildPhaseStates_CompletedOrderMarksAll(t *testing.T) {
	phases := testPhases()
	now := time.Now()

	order := testOrder()
	order.Status = storage.OrderStatusCompleted
	order.CurrentPhaseID = "C"

	states := RebuildPhaseStates(order, phases, nil, now)
	for _, st := range states {
		assert.Equal(t, storage.PhaseCompleted, st.Status)
	}
}

func TestRebuildPhaseStates_PreservesAccumulatedActivity(t *testing.T) {
	phases := testPhases()
	now := time.Now()
	earlier := now.Add(-time.Hour)

	order := testOrder()
	order.CurrentPhaseID = "B"
	order.PhaseStates = []storage.PhaseState{
		{
			PhaseConfigID: "A",
			StartedAt:     &earlier,
			UserActivities: map[string]*storage.UserActivity{
				"u1": {UserID: "u1", UserName: "Ravi", CompletedCount: 4},
			},
		},
	}

	states := RebuildPhaseStates(order, phases, nil, now)
	assert.Equal(t, &earlier, states[0].StartedAt)
	assert.Equal(t, 4, states[0].UserActivities["u1"].CompletedCount)
}

func TestRecordActivity(t *testing.T) {
	now := time.Now()
	states := []storage.PhaseState{
		{PhaseConfigID: "A"},
		{PhaseConfigID: "B"},
	}

	RecordActivity(states, "A", "u1", "Ravi", "m1", true, now)
	RecordActivity(states, "A", "u1", "Ravi", "m2", true, now)
	RecordActivity(states, "A", "u1", "Ravi", "m3", false, now)

	act := states[0].UserActivities["u1"]
	assert.NotNil(t, act)
	assert.Equal(t, 2, act.CompletedCount)
	assert.Equal(t, 1, act.RejectedCount)
	assert.Equal(t, []string{"m1", "m2"}, act.CompletedMeasurementIDs)
	assert.NotNil(t, act.FirstActivityAt)
	assert.NotNil(t, act.LastActivityAt)

	// Anonymous calls are ignored.
	RecordActivity(states, "B", "", "", "m1", true, now)
	assert.Nil(t, states[1].UserActivities)
}
