package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"threadworks/internal/storage"
)

func testPhases() []storage.PhaseConfig {
	return []storage.PhaseConfig{
		{ID: "A", PhaseName: "Cutting", SequenceOrder: 1, IsActive: true},
		{ID: "B", PhaseName: "Stitching", SequenceOrder: 2, IsActive: true, CanSkip: true},
		{ID: "C", PhaseName: "Packing", SequenceOrder: 3, IsActive: true},
	}
}

func testOrder() *storage.Order {
	return &storage.Order{
		ID:             "order-1",
		Status:         storage.OrderStatusInProgress,
		PhaseConfigIDs: []string{"A", "B", "C"},
	}
}

func TestResolveStatus_SkippedBeatsPhaseStates(t *testing.T) {
	phases := testPhases()
	order := testOrder()

	// The aggregate says completed, the skip record says skipped. The skip
	// record wins.
	order.PhaseStates = []storage.PhaseState{
		{PhaseConfigID: "B", Status: storage.PhaseCompleted},
	}
	order.SkippedPhases = []storage.SkippedPhase{
		{PhaseID: "B", PhaseName: "Stitching", Reason: "customer provided pre-stitched garments", SkippedAt: time.Now()},
	}

	got := ResolveStatus(phases[1], order, phases)
	assert.Equal(t, StatusSkipped, got)
}

func TestResolveStatus_PhaseStatesMapping(t *testing.T) {
	phases := testPhases()

	tests := []struct {
		name   string
		status string
		want   Status
	}{
		{"completed maps directly", storage.PhaseCompleted, StatusCompleted},
		{"in-progress becomes current", storage.PhaseInProgress, StatusCurrent},
		{"skipped maps directly", storage.PhaseSkipped, StatusSkipped},
		{"pending maps directly", storage.PhasePending, StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := testOrder()
			order.PhaseStates = []storage.PhaseState{
				{PhaseConfigID: "A", Status: tt.status},
			}
			assert.Equal(t, tt.want, ResolveStatus(phases[0], order, phases))
		})
	}
}

func TestResolveStatus_LegacyOccupancyFallback(t *testing.T) {
	phases := testPhases()

	// Pre-aggregate record: no phaseStates at all, measurements tracked only
	// through counts.
	order := testOrder()
	order.PhaseStates = []storage.PhaseState{
		{PhaseConfigID: "B", MeasurementIDs: []string{"m1", "m2"}},
	}

	// B holds measurements: current.
	assert.Equal(t, StatusCurrent, ResolveStatus(phases[1], order, phases))
	// A sits before the earliest occupied phase: completed.
	assert.Equal(t, StatusCompleted, ResolveStatus(phases[0], order, phases))
	// C is after it: pending.
	assert.Equal(t, StatusPending, ResolveStatus(phases[2], order, phases))
}

func TestResolveStatus_LegacyCompletedPhaseIDs(t *testing.T) {
	phases := testPhases()
	order := testOrder()
	order.CompletedPhaseIDs = []string{"A"}

	assert.Equal(t, StatusCompleted, ResolveStatus(phases[0], order, phases))
	assert.Equal(t, StatusPending, ResolveStatus(phases[1], order, phases))
}

func TestResolveStatus_NilOrder(t *testing.T) {
	phases := testPhases()
	assert.Equal(t, StatusPending, ResolveStatus(phases[0], nil, phases))
}

func TestMeasurementCount_FallsBackToIDs(t *testing.T) {
	order := testOrder()
	order.PhaseStates = []storage.PhaseState{
		{PhaseConfigID: "A", Count: 5},
		{PhaseConfigID: "B", MeasurementIDs: []string{"m1", "m2", "m3"}},
	}

	assert.Equal(t, 5, MeasurementCount(order, "A"))
	assert.Equal(t, 3, MeasurementCount(order, "B"))
	assert.Equal(t, 0, MeasurementCount(order, "C"))
}
