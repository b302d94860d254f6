package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadworks/internal/storage"
	"threadworks/internal/workflow"
)

func testAPI(t *testing.T, handler http.HandlerFunc) *Facade {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewFacade(New(srv.URL))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func sessionHandler(t *testing.T) http.HandlerFunc {
	phases := []storage.PhaseConfig{
		{ID: "A", PhaseName: "Cutting", SequenceOrder: 1, IsActive: true},
		{ID: "B", PhaseName: "Stitching", SequenceOrder: 2, IsActive: true, CanSkip: true},
		{ID: "C", PhaseName: "Packing", SequenceOrder: 3, IsActive: true},
	}
	orders := []storage.Order{
		{ID: "o1", Status: storage.OrderStatusInProgress, PhaseConfigIDs: []string{"A", "B", "C"}, CurrentPhaseID: "A"},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/phase-configs/active":
			writeJSON(w, phases)
		case "/api/orders":
			writeJSON(w, orders)
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}
}

func TestLoadSession(t *testing.T) {
	f := testAPI(t, sessionHandler(t))

	require.NoError(t, f.LoadSession(context.Background()))

	order := f.Order("o1")
	require.NotNil(t, order)
	assert.Equal(t, "A", order.CurrentPhaseID)
	assert.Nil(t, f.Order("missing"))
}

func TestMoveOrderToNextPhase_ReplacesCache(t *testing.T) {
	session := sessionHandler(t)
	f := testAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/api/orders/o1/move-to-next-phase" {
			var req MoveRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Nil(t, req.SkipReason)
			writeJSON(w, storage.Order{
				ID: "o1", Status: storage.OrderStatusInProgress,
				PhaseConfigIDs: []string{"A", "B", "C"}, CurrentPhaseID: "B",
				CompletedPhaseIDs: []string{"A"},
			})
			return
		}
		session(w, r)
	})

	require.NoError(t, f.LoadSession(context.Background()))

	order, err := f.MoveOrderToNextPhase(context.Background(), "o1", nil)
	require.NoError(t, err)
	assert.Equal(t, "B", order.CurrentPhaseID)

	// The cache holds the server's version now.
	assert.Equal(t, "B", f.Order("o1").CurrentPhaseID)

	select {
	case n := <-f.Notifications():
		assert.Equal(t, LevelSuccess, n.Level)
	default:
		t.Fatal("expected a notification")
	}
}

func TestMoveOrderToNextPhase_LocalValidation(t *testing.T) {
	// Any request reaching the server is a test failure: the rule violations
	// must be caught locally.
	f := testAPI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
	})

	blank := "   "
	_, err := f.MoveOrderToNextPhase(context.Background(), "o1", &blank)
	assert.ErrorIs(t, err, workflow.ErrSkipReasonRequired)

	_, err = f.MoveMeasurementToNextPhase(context.Background(), "m1", &blank)
	assert.ErrorIs(t, err, workflow.ErrSkipReasonRequired)

	_, err = f.RejectMeasurementToPhase(context.Background(), "o1", "m1", "", "bad seam")
	assert.ErrorIs(t, err, workflow.ErrRejectTarget)

	_, err = f.RejectMeasurementToPhase(context.Background(), "o1", "m1", "A", "  ")
	assert.ErrorIs(t, err, workflow.ErrRejectReason)
}

func TestMoveOrderToNextPhase_SkipNotAllowedLocally(t *testing.T) {
	f := testAPI(t, sessionHandler(t))
	require.NoError(t, f.LoadSession(context.Background()))

	// o1 is at phase A, which is not skippable; the cached catalog knows.
	reason := "no materials needed"
	_, err := f.MoveOrderToNextPhase(context.Background(), "o1", &reason)
	assert.ErrorIs(t, err, workflow.ErrSkipNotAllowed)
}

func TestBulkMove_PartialFailureIsData(t *testing.T) {
	session := sessionHandler(t)
	f := testAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/measurements/bulk/move-to-next-phase":
			var req BulkMoveRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Len(t, req.MeasurementIDs, 3)
			writeJSON(w, BulkResult{SuccessCount: 2, FailCount: 1, Message: "moved 2 of 3 measurements"})
		case r.URL.Path == "/api/orders/o1":
			writeJSON(w, storage.Order{ID: "o1", CurrentPhaseID: "A", PhaseConfigIDs: []string{"A", "B", "C"}})
		default:
			session(w, r)
		}
	})

	result, err := f.BulkMoveMeasurementsToNextPhase(context.Background(), "o1", []string{"m1", "m2", "m3"}, "u1", "Ravi")
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailCount)

	n := <-f.Notifications()
	assert.Equal(t, LevelWarning, n.Level)
	assert.Equal(t, "moved 2 of 3 measurements", n.Message)
}

func TestServerErrorSurfacesAsAPIError(t *testing.T) {
	f := testAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "not all measurements are in the final phase"})
	})

	_, err := f.MarkOrderAsComplete(context.Background(), "o1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "not all measurements are in the final phase", apiErr.Message)

	n := <-f.Notifications()
	assert.Equal(t, LevelError, n.Level)
}

func TestRejectTargetsFor(t *testing.T) {
	f := testAPI(t, sessionHandler(t))
	require.NoError(t, f.LoadSession(context.Background()))

	targets := f.RejectTargetsFor("o1", "C")
	require.Len(t, targets, 2)
	assert.Equal(t, "A", targets[0].ID)

	assert.Empty(t, f.RejectTargetsFor("o1", "A"))
	assert.Empty(t, f.RejectTargetsFor("missing", "C"))
}
