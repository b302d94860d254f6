package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"threadworks/internal/storage"
)

const measurementColumns = `
	id, order_id, company_id, emp_id, employee_name, department,
	current_phase_id, completed_phase_ids, skipped_phases, state, extra`

func (s *Storage) GetMeasurementsByOrder(ctx context.Context, orderID string) ([]storage.Measurement, error) {
	const op = "storage.mysql.GetMeasurementsByOrder"

	stmt := `SELECT ` + measurementColumns + ` FROM measurements WHERE order_id = ? ORDER BY emp_id, id`
	rows, err := s.db.QueryContext(ctx, stmt, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var measurements []storage.Measurement
	for rows.Next() {
		m, err := scanMeasurement(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		measurements = append(measurements, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return measurements, nil
}

func (s *Storage) GetMeasurement(ctx context.Context, id string) (*storage.Measurement, error) {
	const op = "storage.mysql.GetMeasurement"

	stmt := `SELECT ` + measurementColumns + ` FROM measurements WHERE id = ?`
	row := s.db.QueryRowContext(ctx, stmt, id)
	m, err := scanMeasurement(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

func (s *Storage) AddMeasurements(ctx context.Context, measurements []storage.Measurement) error {
	const op = "storage.mysql.AddMeasurements"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	if err := insertMeasurements(ctx, tx, measurements); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return tx.Commit()
}

// ReplaceMeasurements swaps the order's whole roster in one transaction.
func (s *Storage) ReplaceMeasurements(ctx context.Context, orderID string, measurements []storage.Measurement) error {
	const op = "storage.mysql.ReplaceMeasurements"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM measurements WHERE order_id = ?`, orderID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := insertMeasurements(ctx, tx, measurements); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return tx.Commit()
}

// UpdateMeasurements writes a batch in one transaction so bulk moves either
// land together or not at all.
func (s *Storage) UpdateMeasurements(ctx context.Context, measurements []storage.Measurement) error {
	const op = "storage.mysql.UpdateMeasurements"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	stmt := `
		UPDATE measurements
		SET order_id = ?, company_id = ?, emp_id = ?, employee_name = ?,
		    department = ?, current_phase_id = ?, completed_phase_ids = ?,
		    skipped_phases = ?, state = ?, extra = ?
		WHERE id = ?`
	for _, m := range measurements {
		completed, skipped, extra, err := measurementJSONColumns(&m)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		_, err = tx.ExecContext(ctx, stmt,
			m.OrderID, m.CompanyID, m.EmpID, m.EmployeeName, m.Department,
			m.CurrentPhaseID, completed, skipped, m.State, extra, m.ID,
		)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return tx.Commit()
}

func (s *Storage) DeleteMeasurement(ctx context.Context, id string) error {
	const op = "storage.mysql.DeleteMeasurement"

	res, err := s.db.ExecContext(ctx, `DELETE FROM measurements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireRow(res, op)
}

func insertMeasurements(ctx context.Context, tx *sql.Tx, measurements []storage.Measurement) error {
	stmt := `
		INSERT INTO measurements (` + measurementColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, m := range measurements {
		completed, skipped, extra, err := measurementJSONColumns(&m)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, stmt,
			m.ID, m.OrderID, m.CompanyID, m.EmpID, m.EmployeeName, m.Department,
			m.CurrentPhaseID, completed, skipped, m.State, extra,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func measurementJSONColumns(m *storage.Measurement) (completed, skipped, extra string, err error) {
	if completed, err = toJSON(m.CompletedPhaseIDs, "[]"); err != nil {
		return
	}
	if skipped, err = toJSON(m.SkippedPhases, "[]"); err != nil {
		return
	}
	extra, err = toJSON(m.Extra, "{}")
	return
}

func scanMeasurement(scan func(...any) error) (*storage.Measurement, error) {
	var m storage.Measurement
	var currentPhaseID, state sql.NullString
	var completed, skipped, extra sql.NullString

	err := scan(
		&m.ID, &m.OrderID, &m.CompanyID, &m.EmpID, &m.EmployeeName, &m.Department,
		&currentPhaseID, &completed, &skipped, &state, &extra,
	)
	if err != nil {
		return nil, err
	}

	m.CurrentPhaseID = currentPhaseID.String
	m.State = state.String
	if err := fromJSON(completed, &m.CompletedPhaseIDs); err != nil {
		return nil, err
	}
	if err := fromJSON(skipped, &m.SkippedPhases); err != nil {
		return nil, err
	}
	if err := fromJSON(extra, &m.Extra); err != nil {
		return nil, err
	}
	return &m, nil
}
