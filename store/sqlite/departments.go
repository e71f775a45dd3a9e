package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harborhq/absence-engine/core"
	"github.com/harborhq/absence-engine/department"
)

// =============================================================================
// DEPARTMENTS (department.Store)
// =============================================================================

// GetDepartment returns the department with its member and head lists, or
// wraps ErrDepartmentNotFound.
func (s *Store) GetDepartment(ctx context.Context, id core.DepartmentID) (*department.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getDepartment(ctx, id)
}

func (s *Store) getDepartment(ctx context.Context, id core.DepartmentID) (*department.Department, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, two_stage_approval, last_modification
		FROM departments WHERE id = ?
	`, id)

	dept, err := scanDepartment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("department %s: %w", id, core.ErrDepartmentNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadDepartmentLists(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// SaveDepartment upserts the department and rewrites its member and head
// lists atomically.
func (s *Store) SaveDepartment(ctx context.Context, dept *department.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dept.ID == "" {
		dept.ID = core.DepartmentID(newID())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO departments (id, name, description, two_stage_approval, last_modification)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			two_stage_approval = excluded.two_stage_approval,
			last_modification = excluded.last_modification
	`, dept.ID, dept.Name, dept.Description, dept.TwoStageApproval, dateString(dept.LastModification))
	if err != nil {
		return fmt.Errorf("failed to save department: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM department_members WHERE department_id = ?", dept.ID); err != nil {
		return fmt.Errorf("failed to clear department members: %w", err)
	}
	for _, m := range dept.Members {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO department_members (department_id, person_id) VALUES (?, ?)",
			dept.ID, m); err != nil {
			return fmt.Errorf("failed to save department member: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM department_heads WHERE department_id = ?", dept.ID); err != nil {
		return fmt.Errorf("failed to clear department heads: %w", err)
	}
	for _, h := range dept.Heads {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO department_heads (department_id, person_id) VALUES (?, ?)",
			dept.ID, h); err != nil {
			return fmt.Errorf("failed to save department head: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteDepartment removes the department and its lists.
func (s *Store) DeleteDepartment(ctx context.Context, id core.DepartmentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM department_members WHERE department_id = ?",
		"DELETE FROM department_heads WHERE department_id = ?",
		"DELETE FROM departments WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to delete department: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) FindAllDepartments(ctx context.Context) ([]*department.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryDepartments(ctx, `
		SELECT id, name, description, two_stage_approval, last_modification
		FROM departments ORDER BY name ASC
	`)
}

func (s *Store) FindDepartmentsByMember(ctx context.Context, person core.PersonID) ([]*department.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryDepartments(ctx, `
		SELECT d.id, d.name, d.description, d.two_stage_approval, d.last_modification
		FROM departments d
		JOIN department_members m ON m.department_id = d.id
		WHERE m.person_id = ?
		ORDER BY d.name ASC
	`, person)
}

func (s *Store) FindDepartmentsByHead(ctx context.Context, person core.PersonID) ([]*department.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryDepartments(ctx, `
		SELECT d.id, d.name, d.description, d.two_stage_approval, d.last_modification
		FROM departments d
		JOIN department_heads h ON h.department_id = d.id
		WHERE h.person_id = ?
		ORDER BY d.name ASC
	`, person)
}

func (s *Store) queryDepartments(ctx context.Context, query string, args ...any) ([]*department.Department, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	var out []*department.Department
	for rows.Next() {
		dept, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, dept)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, dept := range out {
		if err := s.loadDepartmentLists(ctx, dept); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) loadDepartmentLists(ctx context.Context, dept *department.Department) error {
	members, err := s.queryPersonIDs(ctx,
		"SELECT person_id FROM department_members WHERE department_id = ? ORDER BY person_id", dept.ID)
	if err != nil {
		return err
	}
	dept.Members = members

	heads, err := s.queryPersonIDs(ctx,
		"SELECT person_id FROM department_heads WHERE department_id = ? ORDER BY person_id", dept.ID)
	if err != nil {
		return err
	}
	dept.Heads = heads
	return nil
}

func (s *Store) queryPersonIDs(ctx context.Context, query string, args ...any) ([]core.PersonID, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query person ids: %w", err)
	}
	defer rows.Close()

	var out []core.PersonID
	for rows.Next() {
		var id core.PersonID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan person id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanDepartment(row rowScanner) (*department.Department, error) {
	var dept department.Department
	var lastModification string

	err := row.Scan(&dept.ID, &dept.Name, &dept.Description, &dept.TwoStageApproval, &lastModification)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan department: %w", err)
	}
	if dept.LastModification, err = parseDate(lastModification); err != nil {
		return nil, err
	}
	return &dept, nil
}
