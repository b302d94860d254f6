package phases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadworks/internal/storage"
	"threadworks/internal/workflow"
)

// fakeStorage is an in-memory Storage for the service tests.
type fakeStorage struct {
	configs      []storage.PhaseConfig
	orders       map[string]*storage.Order
	measurements map[string]*storage.Measurement
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		configs: []storage.PhaseConfig{
			{ID: "A", PhaseName: "Cutting", PhaseKey: "cutting", SequenceOrder: 1, IsActive: true},
			{ID: "B", PhaseName: "Stitching", PhaseKey: "stitching", SequenceOrder: 2, IsActive: true, CanSkip: true},
			{ID: "C", PhaseName: "Packing", PhaseKey: "packing", SequenceOrder: 3, IsActive: true},
		},
		orders:       map[string]*storage.Order{},
		measurements: map[string]*storage.Measurement{},
	}
}

func (f *fakeStorage) GetAllPhaseConfigs(ctx context.Context) ([]storage.PhaseConfig, error) {
	return f.configs, nil
}

func (f *fakeStorage) GetOrder(ctx context.Context, id string) (*storage.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStorage) SaveOrder(ctx context.Context, order *storage.Order) error {
	cp := *order
	f.orders[order.ID] = &cp
	return nil
}

func (f *fakeStorage) UpdateOrder(ctx context.Context, order *storage.Order) error {
	if _, ok := f.orders[order.ID]; !ok {
		return storage.ErrNotFound
	}
	cp := *order
	f.orders[order.ID] = &cp
	return nil
}

func (f *fakeStorage) GetMeasurement(ctx context.Context, id string) (*storage.Measurement, error) {
	m, ok := f.measurements[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeStorage) GetMeasurementsByOrder(ctx context.Context, orderID string) ([]storage.Measurement, error) {
	var out []storage.Measurement
	for _, m := range f.measurements {
		if m.OrderID == orderID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeStorage) UpdateMeasurements(ctx context.Context, measurements []storage.Measurement) error {
	for i := range measurements {
		cp := measurements[i]
		f.measurements[cp.ID] = &cp
	}
	return nil
}

func (f *fakeStorage) addOrder(id string, phaseIDs []string, currentPhase string) {
	f.orders[id] = &storage.Order{
		ID:             id,
		OrderName:      "Uniforms " + id,
		CompanyID:      "company-1",
		Status:         storage.OrderStatusInProgress,
		PhaseConfigIDs: phaseIDs,
		CurrentPhaseID: currentPhase,
	}
}

func (f *fakeStorage) addMeasurement(id, orderID, phaseID string) {
	f.measurements[id] = &storage.Measurement{
		ID:             id,
		OrderID:        orderID,
		CompanyID:      "company-1",
		EmpID:          "emp-" + id,
		EmployeeName:   "Employee " + id,
		CurrentPhaseID: phaseID,
	}
}

func newTestService(f *fakeStorage) *Service {
	s := NewService(f)
	s.now = func() time.Time { return time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestCreateOrder(t *testing.T) {
	f := newFakeStorage()
	s := newTestService(f)

	order, err := s.CreateOrder(context.Background(), &storage.Order{
		OrderName:      "Summer uniforms",
		CompanyID:      "company-1",
		PhaseConfigIDs: []string{"B", "A", "C"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, storage.OrderStatusInProgress, order.Status)
	// First phase by sequence, not by selection order.
	assert.Equal(t, "A", order.CurrentPhaseID)
	require.Len(t, order.PhaseStates, 3)
	assert.Equal(t, storage.PhaseInProgress, order.PhaseStates[0].Status)
	assert.Equal(t, storage.PhasePending, order.PhaseStates[1].Status)
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFakeStorage()
	s := newTestService(f)

	_, err := s.CreateOrder(context.Background(), &storage.Order{CompanyID: "company-1"})
	assert.ErrorIs(t, err, ErrNoPhasesSelected)

	_, err = s.CreateOrder(context.Background(), &storage.Order{
		CompanyID:      "company-1",
		PhaseConfigIDs: []string{"A", "nope"},
	})
	assert.ErrorIs(t, err, ErrUnknownPhase)
}

func TestMoveOrderToNextPhase_Complete(t *testing.T) {
	f := newFakeStorage()
	f.addOrder("o1", []string{"A", "B", "C"}, "A")
	s := newTestService(f)

	order, err := s.MoveOrderToNextPhase(context.Background(), "o1", nil, "u1", "Ravi")
	require.NoError(t, err)

	assert.Equal(t, "B", order.CurrentPhaseID)
	assert.Contains(t, order.CompletedPhaseIDs, "A")
	assert.Empty(t, order.SkippedPhases)

	// Persisted, not just returned.
	saved, _ := f.GetOrder(context.Background(), "o1")
	assert.Equal(t, "B", saved.CurrentPhaseID)
}

func TestMoveOrderToNextPhase_SkipScenario(t *testing.T) {
	// Order with phases A -> B -> C, currently at A. Complete A, then skip B
	// with a reason: current becomes C, A is completed, B is recorded skipped.
	f := newFakeStorage()
	f.addOrder("o1", []string{"A", "B", "C"}, "A")
	s := newTestService(f)

	_, err := s.MoveOrderToNextPhase(context.Background(), "o1", nil, "u1", "Ravi")
	require.NoError(t, err)

	reason := "fabric arrives pre-stitched"
	order, err := s.MoveOrderToNextPhase(context.Background(), "o1", &reason, "u1", "Ravi")
	require.NoError(t, err)

	assert.Equal(t, "C", order.CurrentPhaseID)
	assert.Equal(t, []string{"A"}, order.CompletedPhaseIDs)
	require.Len(t, order.SkippedPhases, 1)
	assert.Equal(t, "B", order.SkippedPhases[0].PhaseID)
	assert.Equal(t, reason, order.SkippedPhases[0].Reason)
	assert.Equal(t, "Ravi", order.SkippedPhases[0].SkippedBy)

	// The aggregate reflects the skip.
	assert.Equal(t, storage.PhaseSkipped, order.PhaseStates[1].Status)
}

func TestMoveOrderToNextPhase_SkipRules(t *testing.T) {
	f := newFakeStorage()
	f.addOrder("o1", []string{"A", "B", "C"}, "A")
	s := newTestService(f)

	// A is not skippable.
	reason := "no time"
	_, err := s.MoveOrderToNextPhase(context.Background(), "o1", &reason, "", "")
	assert.ErrorIs(t, err, workflow.ErrSkipNotAllowed)

	// A blank reason is not a skip request the server accepts.
	f.orders["o1"].CurrentPhaseID = "B"
	blank := "  "
	_, err = s.MoveOrderToNextPhase(context.Background(), "o1", &blank, "", "")
	assert.ErrorIs(t, err, workflow.ErrSkipReasonRequired)
}

func TestMoveMeasurementToNextPhase(t *testing.T) {
	f := newFakeStorage()
	f.addOrder("o1", []string{"A", "B", "C"}, "A")
	f.addMeasurement("m1", "o1", "A")
	f.addMeasurement("m2", "o1", "A")
	s := newTestService(f)

	m, err := s.MoveMeasurementToNextPhase(context.Background(), "m1", nil, "u1", "Ravi")
	require.NoError(t, err)

	assert.Equal(t, "B", m.CurrentPhaseID)
	assert.Equal(t, []string{"A"}, m.CompletedPhaseIDs)

	// The order aggregate now shows one measurement in each phase and the
	// user's activity on A.
	order, _ := f.GetOrder(context.Background(), "o1")
	assert.Equal(t, 1, workflow.MeasurementCount(order, "A"))
	assert.Equal(t, 1, workflow.MeasurementCount(order, "B"))
	assert.Equal(t, 1, order.PhaseStates[0].UserActivities["u1"].CompletedCount)
}

func TestBulkMoveToNextPhase_CountsSum(t *testing.T) {
	f := newFakeStorage()
	f.addOrder("o1", []string{"A", "B", "C"}, "A")
	f.addMeasurement("m1", "o1", "A")
	f.addMeasurement("m2", "o1", "A")
	// m3 is already in the last phase; moving it must fail.
	f.addMeasurement("m3", "o1", "C")
	s := newTestService(f)

	ids := []string{"m1", "m2", "m3", "missing"}
	result, err := s.BulkMoveToNextPhase(context.Background(), ids, "u1", "Ravi")
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 2, result.FailCount)
	assert.Equal(t, len(ids), result.SuccessCount+result.FailCount)
	assert.Len(t, result.Failures, 2)

	m1, _ := f.GetMeasurement(context.Background(), "m1")
	assert.Equal(t, "B", m1.CurrentPhaseID)
	m3, _ := f.GetMeasurement(context.Background(), "m3")
	assert.Equal(t, "C", m3.CurrentPhaseID)
}

func TestBulkMoveToNextPhase_Empty(t *testing.T) {
	s := newTestService(newFakeStorage())

	_, err := s.BulkMoveToNextPhase(context.Background(), nil, "", "")
	assert.ErrorIs(t, err, ErrEmptyBulkRequest)
}

func TestRejectMeasurementToPhase(t *testing.T) {
	f := newFakeStorage()
	f.addOrder("o1", []string{"A", "B", "C"}, "C")
	f.measurements["m1"] = &storage.Measurement{
		ID:                "m1",
		OrderID:           "o1",
		CurrentPhaseID:    "C",
		CompletedPhaseIDs: []string{"A", "B"},
	}
	s := newTestService(f)

	m, err := s.RejectMeasurementToPhase(context.Background(), "m1", "B", "seam defect", "u1", "Priya")
	require.NoError(t, err)

	assert.Equal(t, "B", m.CurrentPhaseID)
	// B must be redone, only A stays completed.
	assert.Equal(t, []string{"A"}, m.CompletedPhaseIDs)

	order, _ := f.GetOrder(context.Background(), "o1")
	assert.Equal(t, 1, order.PhaseStates[2].UserActivities["u1"].RejectedCount)
	// The reopened phase shows the measurement again.
	assert.Equal(t, storage.PhaseInProgress, order.PhaseStates[1].Status)
}

func TestRejectMeasurementToPhase_Rules(t *testing.T) {
	f := newFakeStorage()
	f.addOrder("o1", []string{"A", "B", "C"}, "A")
	f.addMeasurement("m1", "o1", "A")
	f.addMeasurement("m2", "o1", "C")
	s := newTestService(f)

	// From the first phase there is nothing to reject to.
	_, err := s.RejectMeasurementToPhase(context.Background(), "m1", "", "bad", "", "")
	assert.ErrorIs(t, err, workflow.ErrNoRejectTargets)

	// Reason is mandatory.
	_, err = s.RejectMeasurementToPhase(context.Background(), "m2", "A", " ", "", "")
	assert.ErrorIs(t, err, workflow.ErrRejectReason)

	// Forward is not a reject.
	f.measurements["m2"].CurrentPhaseID = "B"
	_, err = s.RejectMeasurementToPhase(context.Background(), "m2", "C", "bad", "", "")
	assert.ErrorIs(t, err, workflow.ErrNotPreviousPhase)
}

func TestMarkOrderComplete(t *testing.T) {
	f := newFakeStorage()
	f.addOrder("o1", []string{"A", "B", "C"}, "C")
	for _, id := range []string{"m1", "m2", "m3"} {
		f.addMeasurement(id, "o1", "C")
	}
	s := newTestService(f)

	order, err := s.MarkOrderComplete(context.Background(), "o1")
	require.NoError(t, err)

	assert.Equal(t, storage.OrderStatusCompleted, order.Status)
	assert.Equal(t, "2026-08-01", order.CompletionDate)
	for _, st := range order.PhaseStates {
		assert.Equal(t, storage.PhaseCompleted, st.Status)
	}
}

func TestMarkOrderComplete_NotReady(t *testing.T) {
	f := newFakeStorage()
	f.addOrder("o1", []string{"A", "B", "C"}, "C")
	f.addMeasurement("m1", "o1", "C")
	f.addMeasurement("m2", "o1", "B")
	s := newTestService(f)

	_, err := s.MarkOrderComplete(context.Background(), "o1")
	assert.ErrorIs(t, err, workflow.ErrNotReadyToComplete)

	// Untouched.
	order, _ := f.GetOrder(context.Background(), "o1")
	assert.Equal(t, storage.OrderStatusInProgress, order.Status)
}

func TestMarkOrderComplete_NoMeasurements(t *testing.T) {
	f := newFakeStorage()
	f.addOrder("o1", []string{"A", "B", "C"}, "C")
	s := newTestService(f)

	_, err := s.MarkOrderComplete(context.Background(), "o1")
	assert.ErrorIs(t, err, workflow.ErrNotReadyToComplete)
}
