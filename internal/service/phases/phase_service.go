// Package phases executes phase transitions. It is the authoritative side of
// the workflow: every mutation recomputes the order's phaseStates aggregate
// before persisting, and the updated entity is returned so callers replace
// their copy instead of mutating optimistically.
package phases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"threadworks/internal/storage"
	"threadworks/internal/workflow"
)

type Storage interface {
	GetAllPhaseConfigs(ctx context.Context) ([]storage.PhaseConfig, error)
	GetOrder(ctx context.Context, id string) (*storage.Order, error)
	SaveOrder(ctx context.Context, order *storage.Order) error
	UpdateOrder(ctx context.Context, order *storage.Order) error
	GetMeasurement(ctx context.Context, id string) (*storage.Measurement, error)
	GetMeasurementsByOrder(ctx context.Context, orderID string) ([]storage.Measurement, error)
	UpdateMeasurements(ctx context.Context, measurements []storage.Measurement) error
}

// ErrEmptyBulkRequest rejects a bulk move with no ids; partial failures
// inside a non-empty batch are reported via BulkResult instead.
var (
	ErrEmptyBulkRequest = errors.New("no measurement ids provided")

	// ErrNoPhasesSelected rejects an order created without any phases.
	ErrNoPhasesSelected = errors.New("at least one phase must be selected")

	// ErrUnknownPhase rejects an order referencing a phase the catalog does
	// not know.
	ErrUnknownPhase = errors.New("order references an unknown phase")
)

type Service struct {
	storage Storage
	now     func() time.Time
}

func NewService(s Storage) *Service {
	return &Service{storage: s, now: time.Now}
}

// BulkResult summarizes a bulk move. Counts always add up to the number of
// requested ids; individual failures are data, not an error.
type BulkResult struct {
	SuccessCount int           `json:"successCount"`
	FailCount    int           `json:"failCount"`
	Message      string        `json:"message"`
	Failures     []BulkFailure `json:"failures,omitempty"`
}

type BulkFailure struct {
	MeasurementID string `json:"measurementId"`
	Reason        string `json:"reason"`
}

// CreateOrder validates the phase selection and seeds the order: the first
// selected phase (by sequence) becomes current and phaseStates starts out
// with that phase in progress.
func (s *Service) CreateOrder(ctx context.Context, order *storage.Order) (*storage.Order, error) {
	const op = "service.phases.CreateOrder"

	if len(order.PhaseConfigIDs) == 0 {
		return nil, ErrNoPhasesSelected
	}

	phases, err := s.orderPhases(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(phases) != len(order.PhaseConfigIDs) {
		return nil, ErrUnknownPhase
	}

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	order.Status = storage.OrderStatusInProgress
	order.CurrentPhaseID = phases[0].ID
	order.CompletedPhaseIDs = []string{}
	order.TotalMeasurements = 0
	order.PhaseStates = workflow.RebuildPhaseStates(order, phases, nil, s.now())

	if err := s.storage.SaveOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

// MoveOrderToNextPhase advances the whole order by one phase. A nil
// skipReason is a plain completion; a non-nil one skips the current phase and
// must not be blank.
func (s *Service) MoveOrderToNextPhase(ctx context.Context, orderID string, skipReason *string, userID, userName string) (*storage.Order, error) {
	const op = "service.phases.MoveOrderToNextPhase"

	order, err := s.storage.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	phases, err := s.orderPhases(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	current, ok := phaseByID(phases, order.CurrentPhaseID)
	if !ok {
		return nil, workflow.ErrNoCurrentPhase
	}
	skipping := skipReason != nil
	if err := workflow.ValidateAdvance(current, deref(skipReason), skipping); err != nil {
		return nil, err
	}
	next, err := workflow.NextPhase(phases, current.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if skipping {
		order.SkippedPhases = append(order.SkippedPhases, storage.SkippedPhase{
			PhaseID:   current.ID,
			PhaseName: current.PhaseName,
			Reason:    *skipReason,
			SkippedAt: now,
			SkippedBy: userName,
		})
	} else {
		order.CompletedPhaseIDs = appendUnique(order.CompletedPhaseIDs, current.ID)
	}
	order.CurrentPhaseID = next.ID

	if err := s.refreshOrder(ctx, order, phases, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.storage.UpdateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

// MoveMeasurementToNextPhase advances one measurement independently of its
// siblings. Skip semantics match the order-level move.
func (s *Service) MoveMeasurementToNextPhase(ctx context.Context, measurementID string, skipReason *string, userID, userName string) (*storage.Measurement, error) {
	const op = "service.phases.MoveMeasurementToNextPhase"

	m, order, phases, err := s.loadMeasurement(ctx, measurementID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	currentID := m.CurrentPhaseID
	if currentID == "" {
		currentID = order.CurrentPhaseID
	}
	current, ok := phaseByID(phases, currentID)
	if !ok {
		return nil, workflow.ErrNoCurrentPhase
	}
	skipping := skipReason != nil
	if err := workflow.ValidateAdvance(current, deref(skipReason), skipping); err != nil {
		return nil, err
	}
	next, err := workflow.NextPhase(phases, current.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if skipping {
		m.SkippedPhases = append(m.SkippedPhases, storage.SkippedPhase{
			PhaseID:   current.ID,
			PhaseName: current.PhaseName,
			Reason:    *skipReason,
			SkippedAt: now,
			SkippedBy: userName,
		})
	} else {
		m.CompletedPhaseIDs = appendUnique(m.CompletedPhaseIDs, current.ID)
	}
	m.CurrentPhaseID = next.ID

	if err := s.storage.UpdateMeasurements(ctx, []storage.Measurement{*m}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.refreshOrder(ctx, order, phases, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	workflow.RecordActivity(order.PhaseStates, current.ID, userID, userName, m.ID, true, now)
	if err := s.storage.UpdateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// BulkMoveToNextPhase applies a plain completion to every listed measurement
// and persists the successful ones as a single storage unit, so a batch never
// interleaves with itself. Per-item failures are reported, not raised.
func (s *Service) BulkMoveToNextPhase(ctx context.Context, measurementIDs []string, userID, userName string) (*BulkResult, error) {
	const op = "service.phases.BulkMoveToNextPhase"

	if len(measurementIDs) == 0 {
		return nil, ErrEmptyBulkRequest
	}

	result := &BulkResult{}
	now := s.now()

	var moved []storage.Measurement
	orders := map[string]*storage.Order{}
	orderPhases := map[string][]storage.PhaseConfig{}
	movedFrom := map[string]string{}

	for _, id := range measurementIDs {
		m, order, phases, err := s.loadMeasurement(ctx, id)
		if err != nil {
			result.FailCount++
			result.Failures = append(result.Failures, BulkFailure{MeasurementID: id, Reason: err.Error()})
			continue
		}
		orders[order.ID] = order
		orderPhases[order.ID] = phases

		currentID := m.CurrentPhaseID
		if currentID == "" {
			currentID = order.CurrentPhaseID
		}
		next, err := workflow.NextPhase(phases, currentID)
		if err != nil {
			result.FailCount++
			result.Failures = append(result.Failures, BulkFailure{MeasurementID: id, Reason: err.Error()})
			continue
		}

		movedFrom[m.ID] = currentID
		m.CompletedPhaseIDs = appendUnique(m.CompletedPhaseIDs, currentID)
		m.CurrentPhaseID = next.ID
		moved = append(moved, *m)
		result.SuccessCount++
	}

	if len(moved) > 0 {
		if err := s.storage.UpdateMeasurements(ctx, moved); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	for orderID, order := range orders {
		if err := s.refreshOrder(ctx, order, orderPhases[orderID], now); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		for _, m := range moved {
			if m.OrderID == orderID {
				workflow.RecordActivity(order.PhaseStates, movedFrom[m.ID], userID, userName, m.ID, true, now)
			}
		}
		if err := s.storage.UpdateOrder(ctx, order); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	result.Message = fmt.Sprintf("moved %d of %d measurements", result.SuccessCount, len(measurementIDs))
	return result, nil
}

// RejectMeasurementToPhase moves a measurement backward to an explicitly
// chosen earlier phase. The phases it is pulled back over must be redone, so
// they leave the measurement's completed set.
func (s *Service) RejectMeasurementToPhase(ctx context.Context, measurementID, targetPhaseID, reason, userID, userName string) (*storage.Measurement, error) {
	const op = "service.phases.RejectMeasurementToPhase"

	m, order, phases, err := s.loadMeasurement(ctx, measurementID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fromID := m.CurrentPhaseID
	if fromID == "" {
		fromID = order.CurrentPhaseID
	}
	if err := workflow.ValidateReject(phases, fromID, targetPhaseID, reason); err != nil {
		return nil, err
	}

	target, _ := phaseByID(phases, targetPhaseID)
	var kept []string
	for _, id := range m.CompletedPhaseIDs {
		if p, ok := phaseByID(phases, id); ok && p.SequenceOrder < target.SequenceOrder {
			kept = append(kept, id)
		}
	}
	m.CompletedPhaseIDs = kept
	m.CurrentPhaseID = targetPhaseID

	now := s.now()
	if err := s.storage.UpdateMeasurements(ctx, []storage.Measurement{*m}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.refreshOrder(ctx, order, phases, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	workflow.RecordActivity(order.PhaseStates, fromID, userID, userName, m.ID, false, now)
	if err := s.storage.UpdateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// MarkOrderComplete closes the order. Policy: every measurement must sit in
// the last selected phase and the order must have at least one measurement.
func (s *Service) MarkOrderComplete(ctx context.Context, orderID string) (*storage.Order, error) {
	const op = "service.phases.MarkOrderComplete"

	order, err := s.storage.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	phases, err := s.orderPhases(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	measurements, err := s.storage.GetMeasurementsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	now := s.now()
	order.TotalMeasurements = len(measurements)
	order.PhaseStates = workflow.RebuildPhaseStates(order, phases, measurements, now)

	if !workflow.IsReadyToComplete(order, phases) {
		return nil, workflow.ErrNotReadyToComplete
	}

	order.Status = storage.OrderStatusCompleted
	order.CompletionDate = now.Format("2006-01-02")
	order.CompletedPhaseIDs = appendUnique(order.CompletedPhaseIDs, phases[len(phases)-1].ID)
	order.CurrentPhaseID = phases[len(phases)-1].ID
	order.PhaseStates = workflow.RebuildPhaseStates(order, phases, measurements, now)

	if err := s.storage.UpdateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

func (s *Service) orderPhases(ctx context.Context, order *storage.Order) ([]storage.PhaseConfig, error) {
	configs, err := s.storage.GetAllPhaseConfigs(ctx)
	if err != nil {
		return nil, err
	}
	return workflow.NewCatalog(configs).ForOrder(order), nil
}

func (s *Service) loadMeasurement(ctx context.Context, id string) (*storage.Measurement, *storage.Order, []storage.PhaseConfig, error) {
	m, err := s.storage.GetMeasurement(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	order, err := s.storage.GetOrder(ctx, m.OrderID)
	if err != nil {
		return nil, nil, nil, err
	}
	phases, err := s.orderPhases(ctx, order)
	if err != nil {
		return nil, nil, nil, err
	}
	return m, order, phases, nil
}

// refreshOrder recomputes the aggregate in memory; callers persist.
func (s *Service) refreshOrder(ctx context.Context, order *storage.Order, phases []storage.PhaseConfig, now time.Time) error {
	measurements, err := s.storage.GetMeasurementsByOrder(ctx, order.ID)
	if err != nil {
		return err
	}
	order.TotalMeasurements = len(measurements)
	order.PhaseStates = workflow.RebuildPhaseStates(order, phases, measurements, now)
	return nil
}

func phaseByID(phases []storage.PhaseConfig, id string) (storage.PhaseConfig, bool) {
	for _, p := range phases {
		if p.ID == id {
			return p, true
		}
	}
	return storage.PhaseConfig{}, false
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
