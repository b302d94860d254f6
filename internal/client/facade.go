package client

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"threadworks/internal/storage"
	"threadworks/internal/workflow"
)

// Notification is a workflow event for the caller's UI layer. The facade
// reports outcomes as data; how they are shown is not its concern.
type Notification struct {
	Level   string `json:"level"` // success | warning | error
	Message string `json:"message"`
}

const (
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Facade drives the phase workflow over the API. It keeps a local cache of
// the catalog and orders and replaces cached entities wholesale with server
// responses; it never mutates them optimistically. Rule violations are raised
// locally before any request goes out.
type Facade struct {
	client *Client

	mu      sync.RWMutex
	catalog *workflow.Catalog
	orders  map[string]*storage.Order

	notifications chan Notification
}

func NewFacade(c *Client) *Facade {
	return &Facade{
		client:        c,
		orders:        map[string]*storage.Order{},
		notifications: make(chan Notification, 64),
	}
}

// Notifications returns the event channel. The channel is buffered and the
// facade drops events when nobody drains it, so ignoring it is safe.
func (f *Facade) Notifications() <-chan Notification {
	return f.notifications
}

// LoadSession fetches the phase catalog and all orders concurrently and
// primes the cache.
func (f *Facade) LoadSession(ctx context.Context) error {
	var phases []storage.PhaseConfig
	var orders []storage.Order

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		phases, err = f.client.GetActivePhases(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = f.client.GetOrders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.catalog = workflow.NewCatalog(phases)
	f.orders = make(map[string]*storage.Order, len(orders))
	for i := range orders {
		f.orders[orders[i].ID] = &orders[i]
	}
	return nil
}

// Order returns the cached order, or nil when it is not loaded.
func (f *Facade) Order(orderID string) *storage.Order {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.orders[orderID]
}

// MoveOrderToNextPhase advances the order. A nil skipReason completes the
// current phase; a non-nil one skips it and must not be blank.
func (f *Facade) MoveOrderToNextPhase(ctx context.Context, orderID string, skipReason *string) (*storage.Order, error) {
	if err := f.validateSkip(orderID, skipReason); err != nil {
		return nil, err
	}

	order, err := f.client.MoveOrderToNextPhase(ctx, orderID, MoveRequest{SkipReason: skipReason})
	if err != nil {
		f.notify(LevelError, fmt.Sprintf("failed to move order: %v", err))
		return nil, err
	}

	f.replaceOrder(order)
	f.notify(LevelSuccess, "order moved to the next phase")
	return order, nil
}

// MoveMeasurementToNextPhase advances one measurement. Skip semantics match
// the order-level move.
func (f *Facade) MoveMeasurementToNextPhase(ctx context.Context, measurementID string, skipReason *string) (*storage.Measurement, error) {
	if skipReason != nil && strings.TrimSpace(*skipReason) == "" {
		return nil, workflow.ErrSkipReasonRequired
	}

	m, err := f.client.MoveMeasurementToNextPhase(ctx, measurementID, MoveRequest{SkipReason: skipReason})
	if err != nil {
		f.notify(LevelError, fmt.Sprintf("failed to move measurement: %v", err))
		return nil, err
	}

	f.refreshOrder(ctx, m.OrderID)
	f.notify(LevelSuccess, "measurement moved to the next phase")
	return m, nil
}

// BulkMoveMeasurementsToNextPhase moves the listed measurements forward.
// Partial failure is not an error: the result carries both counts.
func (f *Facade) BulkMoveMeasurementsToNextPhase(ctx context.Context, orderID string, measurementIDs []string, userID, userName string) (*BulkResult, error) {
	if len(measurementIDs) == 0 {
		return nil, workflow.ErrPhaseNotInOrder
	}

	result, err := f.client.BulkMoveToNextPhase(ctx, BulkMoveRequest{
		MeasurementIDs: measurementIDs,
		UserID:         userID,
		UserName:       userName,
	})
	if err != nil {
		f.notify(LevelError, fmt.Sprintf("bulk move failed: %v", err))
		return nil, err
	}

	f.refreshOrder(ctx, orderID)
	if result.FailCount > 0 {
		f.notify(LevelWarning, result.Message)
	} else {
		f.notify(LevelSuccess, result.Message)
	}
	return result, nil
}

// RejectTargetsFor lists the earlier phases a measurement of the order may be
// rejected to, using the cached catalog.
func (f *Facade) RejectTargetsFor(orderID, fromPhaseID string) []storage.PhaseConfig {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.catalog == nil {
		return nil
	}
	order := f.orders[orderID]
	if order == nil {
		return nil
	}
	return workflow.RejectTargets(f.catalog.ForOrder(order), fromPhaseID)
}

// RejectMeasurementToPhase sends a measurement back to an earlier phase. The
// target and reason are validated locally first.
func (f *Facade) RejectMeasurementToPhase(ctx context.Context, orderID, measurementID, targetPhaseID, reason string) (*storage.Measurement, error) {
	if targetPhaseID == "" {
		return nil, workflow.ErrRejectTarget
	}
	if strings.TrimSpace(reason) == "" {
		return nil, workflow.ErrRejectReason
	}

	m, err := f.client.RejectMeasurementToPhase(ctx, measurementID, RejectRequest{
		TargetPhaseID: targetPhaseID,
		Reason:        reason,
	})
	if err != nil {
		f.notify(LevelError, fmt.Sprintf("failed to reject measurement: %v", err))
		return nil, err
	}

	f.refreshOrder(ctx, orderID)
	f.notify(LevelSuccess, "measurement rejected to earlier phase")
	return m, nil
}

// MarkOrderAsComplete closes the order. The server decides readiness; a 409
// comes back as an APIError.
func (f *Facade) MarkOrderAsComplete(ctx context.Context, orderID string) (*storage.Order, error) {
	order, err := f.client.MarkOrderComplete(ctx, orderID)
	if err != nil {
		f.notify(LevelError, fmt.Sprintf("failed to complete order: %v", err))
		return nil, err
	}

	f.replaceOrder(order)
	f.notify(LevelSuccess, "order marked as complete")
	return order, nil
}

// validateSkip applies the skip rules against the cached order and catalog so
// obviously invalid moves never reach the server. With no cache the server
// remains the judge.
func (f *Facade) validateSkip(orderID string, skipReason *string) error {
	if skipReason == nil {
		return nil
	}
	if strings.TrimSpace(*skipReason) == "" {
		return workflow.ErrSkipReasonRequired
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.catalog == nil {
		return nil
	}
	order := f.orders[orderID]
	if order == nil {
		return nil
	}
	current, ok := f.catalog.ByID(order.CurrentPhaseID)
	if !ok {
		return nil
	}
	return workflow.ValidateAdvance(current, *skipReason, true)
}

func (f *Facade) replaceOrder(order *storage.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[order.ID] = order
}

// refreshOrder refetches the order after a measurement-level change, since
// the measurement response does not carry the recomputed aggregate.
func (f *Facade) refreshOrder(ctx context.Context, orderID string) {
	order, err := f.client.GetOrder(ctx, orderID)
	if err != nil {
		return
	}
	f.replaceOrder(order)
}

func (f *Facade) notify(level, message string) {
	select {
	case f.notifications <- Notification{Level: level, Message: message}:
	default:
	}
}
