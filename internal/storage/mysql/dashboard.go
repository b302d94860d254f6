package mysql

import (
	"context"
	"fmt"

	"threadworks/internal/storage"
)

func (s *Storage) CountCompanies(ctx context.Context) (int, error) {
	return s.count(ctx, "storage.mysql.CountCompanies", `SELECT COUNT(*) FROM companies`)
}

func (s *Storage) CountOrders(ctx context.Context) (int, error) {
	return s.count(ctx, "storage.mysql.CountOrders", `SELECT COUNT(*) FROM orders`)
}

func (s *Storage) CountOrdersByStatus(ctx context.Context, status string) (int, error) {
	return s.count(ctx, "storage.mysql.CountOrdersByStatus", `SELECT COUNT(*) FROM orders WHERE status = ?`, status)
}

func (s *Storage) CountMeasurements(ctx context.Context) (int, error) {
	return s.count(ctx, "storage.mysql.CountMeasurements", `SELECT COUNT(*) FROM measurements`)
}

// MeasurementCountsByPhase is the workshop snapshot: how many measurements
// sit in each phase right now, across all orders.
func (s *Storage) MeasurementCountsByPhase(ctx context.Context) ([]storage.PhaseOccupancy, error) {
	const op = "storage.mysql.MeasurementCountsByPhase"

	stmt := `
		SELECT COALESCE(p.phase_name, m.current_phase_id, 'UNASSIGNED') AS state, COUNT(*) AS count
		FROM measurements m
		LEFT JOIN phase_configs p ON p.id = m.current_phase_id
		GROUP BY state
		ORDER BY MIN(COALESCE(p.sequence_order, 1000000))`
	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var snapshot []storage.PhaseOccupancy
	for rows.Next() {
		var row storage.PhaseOccupancy
		if err := rows.Scan(&row.State, &row.Count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		snapshot = append(snapshot, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return snapshot, nil
}

func (s *Storage) count(ctx context.Context, op, stmt string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
