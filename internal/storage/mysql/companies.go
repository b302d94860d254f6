package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"threadworks/internal/storage"
)

func (s *Storage) GetCompanies(ctx context.Context) ([]storage.Company, error) {
	const op = "storage.mysql.GetCompanies"

	stmt := `
		SELECT id, company_name, company_description, notes, contact_person, contact_number
		FROM companies ORDER BY company_name`
	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var companies []storage.Company
	for rows.Next() {
		c, err := scanCompany(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		companies = append(companies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return companies, nil
}

func (s *Storage) GetCompany(ctx context.Context, id string) (*storage.Company, error) {
	const op = "storage.mysql.GetCompany"

	stmt := `
		SELECT id, company_name, company_description, notes, contact_person, contact_number
		FROM companies WHERE id = ?`
	row := s.db.QueryRowContext(ctx, stmt, id)
	c, err := scanCompany(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (s *Storage) SaveCompany(ctx context.Context, c *storage.Company) error {
	const op = "storage.mysql.SaveCompany"

	stmt := `
		INSERT INTO companies (id, company_name, company_description, notes, contact_person, contact_number)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, stmt,
		c.ID, c.CompanyName, c.CompanyDescription, c.Notes, c.ContactPerson, c.ContactNumber,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) UpdateCompany(ctx context.Context, c *storage.Company) error {
	const op = "storage.mysql.UpdateCompany"

	stmt := `
		UPDATE companies
		SET company_name = ?, company_description = ?, notes = ?, contact_person = ?, contact_number = ?
		WHERE id = ?`
	res, err := s.db.ExecContext(ctx, stmt,
		c.CompanyName, c.CompanyDescription, c.Notes, c.ContactPerson, c.ContactNumber, c.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireRow(res, op)
}

func (s *Storage) DeleteCompany(ctx context.Context, id string) error {
	const op = "storage.mysql.DeleteCompany"

	res, err := s.db.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireRow(res, op)
}

func scanCompany(scan func(...any) error) (*storage.Company, error) {
	var c storage.Company
	var description, notes, person, number sql.NullString

	err := scan(&c.ID, &c.CompanyName, &description, &notes, &person, &number)
	if err != nil {
		return nil, err
	}
	c.CompanyDescription = description.String
	c.Notes = notes.String
	c.ContactPerson = person.String
	c.ContactNumber = number.String
	return &c, nil
}
