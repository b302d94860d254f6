package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"threadworks/internal/storage"
)

const orderColumns = `
	id, order_name, company_id, company_name, order_date, completion_date, delivery_date,
	status, phase_config_ids, completed_phase_ids, current_phase_id,
	skipped_phases, phase_states, total_measurements`

func (s *Storage) GetOrders(ctx context.Context) ([]storage.Order, error) {
	const op = "storage.mysql.GetOrders"

	stmt := `SELECT ` + orderColumns + ` FROM orders ORDER BY order_date DESC, id`
	return s.queryOrders(ctx, op, stmt)
}

func (s *Storage) GetOrdersByCompany(ctx context.Context, companyID string) ([]storage.Order, error) {
	const op = "storage.mysql.GetOrdersByCompany"

	stmt := `SELECT ` + orderColumns + ` FROM orders WHERE company_id = ? ORDER BY order_date DESC, id`
	return s.queryOrders(ctx, op, stmt, companyID)
}

func (s *Storage) GetOrder(ctx context.Context, id string) (*storage.Order, error) {
	const op = "storage.mysql.GetOrder"

	stmt := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	row := s.db.QueryRowContext(ctx, stmt, id)
	o, err := scanOrder(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

func (s *Storage) SaveOrder(ctx context.Context, o *storage.Order) error {
	const op = "storage.mysql.SaveOrder"

	cols, err := orderJSONColumns(o)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	stmt := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, stmt,
		o.ID, o.OrderName, o.CompanyID, o.CompanyName, o.OrderDate, o.CompletionDate, o.DeliveryDate,
		o.Status, cols.phaseConfigIDs, cols.completedPhaseIDs, o.CurrentPhaseID,
		cols.skippedPhases, cols.phaseStates, o.TotalMeasurements,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) UpdateOrder(ctx context.Context, o *storage.Order) error {
	const op = "storage.mysql.UpdateOrder"

	cols, err := orderJSONColumns(o)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	stmt := `
		UPDATE orders
		SET order_name = ?, company_id = ?, company_name = ?, order_date = ?, completion_date = ?,
		    delivery_date = ?, status = ?, phase_config_ids = ?,
		    completed_phase_ids = ?, current_phase_id = ?, skipped_phases = ?,
		    phase_states = ?, total_measurements = ?
		WHERE id = ?`
	_, err = s.db.ExecContext(ctx, stmt,
		o.OrderName, o.CompanyID, o.CompanyName, o.OrderDate, o.CompletionDate, o.DeliveryDate,
		o.Status, cols.phaseConfigIDs, cols.completedPhaseIDs, o.CurrentPhaseID,
		cols.skippedPhases, cols.phaseStates, o.TotalMeasurements, o.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type orderJSON struct {
	phaseConfigIDs    string
	completedPhaseIDs string
	skippedPhases     string
	phaseStates       string
}

func orderJSONColumns(o *storage.Order) (orderJSON, error) {
	var cols orderJSON
	var err error
	if cols.phaseConfigIDs, err = toJSON(o.PhaseConfigIDs, "[]"); err != nil {
		return cols, err
	}
	if cols.completedPhaseIDs, err = toJSON(o.CompletedPhaseIDs, "[]"); err != nil {
		return cols, err
	}
	if cols.skippedPhases, err = toJSON(o.SkippedPhases, "[]"); err != nil {
		return cols, err
	}
	if cols.phaseStates, err = toJSON(o.PhaseStates, "[]"); err != nil {
		return cols, err
	}
	return cols, nil
}

func (s *Storage) queryOrders(ctx context.Context, op, stmt string, args ...any) ([]storage.Order, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var orders []storage.Order
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func scanOrder(scan func(...any) error) (*storage.Order, error) {
	var o storage.Order
	var completionDate, deliveryDate, currentPhaseID sql.NullString
	var phaseConfigIDs, completedPhaseIDs, skippedPhases, phaseStates sql.NullString

	err := scan(
		&o.ID, &o.OrderName, &o.CompanyID, &o.CompanyName, &o.OrderDate, &completionDate, &deliveryDate,
		&o.Status, &phaseConfigIDs, &completedPhaseIDs, &currentPhaseID,
		&skippedPhases, &phaseStates, &o.TotalMeasurements,
	)
	if err != nil {
		return nil, err
	}

	o.CompletionDate = completionDate.String
	o.DeliveryDate = deliveryDate.String
	o.CurrentPhaseID = currentPhaseID.String
	if err := fromJSON(phaseConfigIDs, &o.PhaseConfigIDs); err != nil {
		return nil, err
	}
	if err := fromJSON(completedPhaseIDs, &o.CompletedPhaseIDs); err != nil {
		return nil, err
	}
	if err := fromJSON(skippedPhases, &o.SkippedPhases); err != nil {
		return nil, err
	}
	if err := fromJSON(phaseStates, &o.PhaseStates); err != nil {
		return nil, err
	}
	return &o, nil
}
