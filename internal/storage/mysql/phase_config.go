package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"threadworks/internal/storage"
)

const phaseConfigColumns = `
	id, phase_name, phase_key, category, icon, sequence_order,
	movement_type, is_mandatory, can_skip, can_run_in_parallel,
	prerequisites, is_active`

func (s *Storage) GetAllPhaseConfigs(ctx context.Context) ([]storage.PhaseConfig, error) {
	const op = "storage.mysql.GetAllPhaseConfigs"

	stmt := `SELECT ` + phaseConfigColumns + ` FROM phase_configs ORDER BY sequence_order`
	return s.queryPhaseConfigs(ctx, op, stmt)
}

func (s *Storage) GetActivePhaseConfigs(ctx context.Context) ([]storage.PhaseConfig, error) {
	const op = "storage.mysql.GetActivePhaseConfigs"

	stmt := `SELECT ` + phaseConfigColumns + ` FROM phase_configs WHERE is_active = 1 ORDER BY sequence_order`
	return s.queryPhaseConfigs(ctx, op, stmt)
}

func (s *Storage) GetPhaseConfig(ctx context.Context, id string) (*storage.PhaseConfig, error) {
	const op = "storage.mysql.GetPhaseConfig"

	stmt := `SELECT ` + phaseConfigColumns + ` FROM phase_configs WHERE id = ?`
	return s.queryPhaseConfig(ctx, op, stmt, id)
}

func (s *Storage) GetPhaseConfigByKey(ctx context.Context, key string) (*storage.PhaseConfig, error) {
	const op = "storage.mysql.GetPhaseConfigByKey"

	stmt := `SELECT ` + phaseConfigColumns + ` FROM phase_configs WHERE phase_key = ?`
	return s.queryPhaseConfig(ctx, op, stmt, key)
}

func (s *Storage) SavePhaseConfig(ctx context.Context, p *storage.PhaseConfig) error {
	const op = "storage.mysql.SavePhaseConfig"

	prereqs, err := toJSON(p.Prerequisites, "[]")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	stmt := `
		INSERT INTO phase_configs (` + phaseConfigColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, stmt,
		p.ID, p.PhaseName, p.PhaseKey, p.Category, p.Icon, p.SequenceOrder,
		string(p.MovementType), p.IsMandatory, p.CanSkip, p.CanRunInParallel,
		prereqs, p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) UpdatePhaseConfig(ctx context.Context, p *storage.PhaseConfig) error {
	const op = "storage.mysql.UpdatePhaseConfig"

	prereqs, err := toJSON(p.Prerequisites, "[]")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	stmt := `
		UPDATE phase_configs
		SET phase_name = ?, phase_key = ?, category = ?, icon = ?,
		    sequence_order = ?, movement_type = ?, is_mandatory = ?,
		    can_skip = ?, can_run_in_parallel = ?, prerequisites = ?, is_active = ?
		WHERE id = ?`
	res, err := s.db.ExecContext(ctx, stmt,
		p.PhaseName, p.PhaseKey, p.Category, p.Icon, p.SequenceOrder,
		string(p.MovementType), p.IsMandatory, p.CanSkip, p.CanRunInParallel,
		prereqs, p.IsActive, p.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireRow(res, op)
}

// DeactivatePhaseConfig is the soft delete: history stays, new orders can no
// longer select the phase.
func (s *Storage) DeactivatePhaseConfig(ctx context.Context, id string) error {
	const op = "storage.mysql.DeactivatePhaseConfig"

	res, err := s.db.ExecContext(ctx, `UPDATE phase_configs SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireRow(res, op)
}

func (s *Storage) HardDeletePhaseConfig(ctx context.Context, id string) error {
	const op = "storage.mysql.HardDeletePhaseConfig"

	res, err := s.db.ExecContext(ctx, `DELETE FROM phase_configs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireRow(res, op)
}

// CountOrdersReferencingPhase guards the hard delete: a phase still attached
// to any order must not be removed.
func (s *Storage) CountOrdersReferencingPhase(ctx context.Context, id string) (int, error) {
	const op = "storage.mysql.CountOrdersReferencingPhase"

	stmt := `SELECT COUNT(*) FROM orders WHERE JSON_CONTAINS(phase_config_ids, JSON_QUOTE(?))`
	var count int
	if err := s.db.QueryRowContext(ctx, stmt, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// InitializeDefaultPhaseConfigs inserts the stock pipeline, leaving phases
// that already exist untouched.
func (s *Storage) InitializeDefaultPhaseConfigs(ctx context.Context) error {
	const op = "storage.mysql.InitializeDefaultPhaseConfigs"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	stmt := `
		INSERT IGNORE INTO phase_configs (` + phaseConfigColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, p := range storage.DefaultPhaseConfigs() {
		prereqs, err := toJSON(p.Prerequisites, "[]")
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		_, err = tx.ExecContext(ctx, stmt,
			p.ID, p.PhaseName, p.PhaseKey, p.Category, p.Icon, p.SequenceOrder,
			string(p.MovementType), p.IsMandatory, p.CanSkip, p.CanRunInParallel,
			prereqs, p.IsActive,
		)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return tx.Commit()
}

func (s *Storage) queryPhaseConfigs(ctx context.Context, op, stmt string, args ...any) ([]storage.PhaseConfig, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var configs []storage.PhaseConfig
	for rows.Next() {
		p, err := scanPhaseConfig(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		configs = append(configs, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return configs, nil
}

func (s *Storage) queryPhaseConfig(ctx context.Context, op, stmt string, args ...any) (*storage.PhaseConfig, error) {
	row := s.db.QueryRowContext(ctx, stmt, args...)
	p, err := scanPhaseConfig(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func scanPhaseConfig(scan func(...any) error) (*storage.PhaseConfig, error) {
	var p storage.PhaseConfig
	var movement string
	var prereqs sql.NullString

	err := scan(
		&p.ID, &p.PhaseName, &p.PhaseKey, &p.Category, &p.Icon, &p.SequenceOrder,
		&movement, &p.IsMandatory, &p.CanSkip, &p.CanRunInParallel,
		&prereqs, &p.IsActive,
	)
	if err != nil {
		return nil, err
	}
	p.MovementType = storage.MovementType(movement)
	if err := fromJSON(prereqs, &p.Prerequisites); err != nil {
		return nil, err
	}
	return &p, nil
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
