package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"threadworks/internal/storage"
)

func TestNextPhase(t *testing.T) {
	phases := testPhases()

	next, err := NextPhase(phases, "A")
	assert.NoError(t, err)
	assert.Equal(t, "B", next.ID)

	_, err = NextPhase(phases, "C")
	assert.ErrorIs(t, err, ErrNoNextPhase)

	_, err = NextPhase(phases, "")
	assert.ErrorIs(t, err, ErrNoCurrentPhase)

	_, err = NextPhase(phases, "unknown")
	assert.ErrorIs(t, err, ErrPhaseNotInOrder)
}

func TestValidateAdvance(t *testing.T) {
	skippable := storage.PhaseConfig{ID: "B", CanSkip: true}
	mandatory := storage.PhaseConfig{ID: "A", CanSkip: false}

	// Plain completion always passes.
	assert.NoError(t, ValidateAdvance(mandatory, "", false))
	assert.NoError(t, ValidateAdvance(skippable, "", false))

	// Skipping a non-skippable phase is rejected even with a reason given.
	assert.ErrorIs(t, ValidateAdvance(mandatory, "in a hurry", true), ErrSkipNotAllowed)

	// A skip needs a non-blank reason.
	assert.ErrorIs(t, ValidateAdvance(skippable, "", true), ErrSkipReasonRequired)
	assert.ErrorIs(t, ValidateAdvance(skippable, "   ", true), ErrSkipReasonRequired)
	assert.NoError(t, ValidateAdvance(skippable, "material already sourced", true))
}

func TestRejectTargets(t *testing.T) {
	phases := testPhases()

	targets := RejectTargets(phases, "C")
	assert.Len(t, targets, 2)
	assert.Equal(t, "A", targets[0].ID)
	assert.Equal(t, "B", targets[1].ID)

	assert.Empty(t, RejectTargets(phases, "A"))
	assert.Empty(t, RejectTargets(phases, "unknown"))
}

func TestValidateReject(t *testing.T) {
	phases := testPhases()

	assert.NoError(t, ValidateReject(phases, "C", "A", "stitching came loose"))

	// First phase has nowhere to go back to.
	assert.ErrorIs(t, ValidateReject(phases, "A", "", "bad"), ErrNoRejectTargets)

	// The target must be chosen explicitly.
	assert.ErrorIs(t, ValidateReject(phases, "C", "", "bad"), ErrRejectTarget)

	// Same or later phase is not a reject.
	assert.ErrorIs(t, ValidateReject(phases, "B", "B", "bad"), ErrNotPreviousPhase)
	assert.ErrorIs(t, ValidateReject(phases, "B", "C", "bad"), ErrNotPreviousPhase)

	// A reject always carries a reason.
	assert.ErrorIs(t, ValidateReject(phases, "C", "A", "  "), ErrRejectReason)
}

func TestIsReadyToComplete(t *testing.T) {
	phases := testPhases()

	// 10 measurements, all in the last phase: ready.
	order := testOrder()
	order.TotalMeasurements = 10
	order.PhaseStates = []storage.PhaseState{
		{PhaseConfigID: "C", Count: 10},
	}
	assert.True(t, IsReadyToComplete(order, phases))

	// One still in an earlier phase: not ready.
	order.PhaseStates = []storage.PhaseState{
		{PhaseConfigID: "B", Count: 1},
		{PhaseConfigID: "C", Count: 9},
	}
	assert.False(t, IsReadyToComplete(order, phases))

	// No measurements at all: never ready.
	empty := testOrder()
	assert.False(t, IsReadyToComplete(empty, phases))

	assert.False(t, IsReadyToComplete(nil, phases))
	assert.False(t, IsReadyToComplete(order, nil))
}
