package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harborhq/absence-engine/core"
)

// =============================================================================
// PERSONS (application.PersonStore, mail.PersonDirectory)
// =============================================================================

// GetPerson returns the person or wraps core.ErrPersonNotFound.
func (s *Store) GetPerson(ctx context.Context, id core.PersonID) (*core.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, roles FROM persons WHERE id = ?", id)

	var p core.Person
	var roles string
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &roles); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("person %s: %w", id, core.ErrPersonNotFound)
		}
		return nil, fmt.Errorf("failed to scan person: %w", err)
	}
	p.Roles = core.RolesFromString(roles)
	return &p, nil
}

// SavePerson inserts or updates a person. A new person without an ID gets
// one assigned.
func (s *Store) SavePerson(ctx context.Context, p *core.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = core.PersonID(newID())
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO persons (id, name, email, roles)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			roles = excluded.roles
	`, p.ID, p.Name, p.Email, core.RolesToString(p.Roles))
	if err != nil {
		return fmt.Errorf("failed to save person: %w", err)
	}
	return nil
}

// FindPersonsByRole returns everyone carrying the role.
func (s *Store) FindPersonsByRole(ctx context.Context, role core.Role) ([]*core.Person, error) {
	persons, err := s.FindAllPersons(ctx)
	if err != nil {
		return nil, err
	}
	var out []*core.Person
	for _, p := range persons {
		if p.HasRole(role) {
			out = append(out, p)
		}
	}
	return out, nil
}

// FindAllPersons returns everyone, ordered by name.
func (s *Store) FindAllPersons(ctx context.Context) ([]*core.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, roles FROM persons ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query persons: %w", err)
	}
	defer rows.Close()

	var out []*core.Person
	for rows.Next() {
		var p core.Person
		var roles string
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &roles); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		p.Roles = core.RolesFromString(roles)
		out = append(out, &p)
	}
	return out, rows.Err()
}

// =============================================================================
// PUBLIC HOLIDAYS (workdays.HolidayCalendar)
// =============================================================================

// SavePublicHoliday records a non-working day.
func (s *Store) SavePublicHoliday(ctx context.Context, date core.Date, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO public_holidays (date, name)
		VALUES (?, ?)
		ON CONFLICT(date) DO UPDATE SET name = excluded.name
	`, date.String(), name)
	if err != nil {
		return fmt.Errorf("failed to save public holiday: %w", err)
	}
	return nil
}

// IsHoliday reports whether the date is a public holiday. Lookup failures
// degrade to false; a broken holiday table must not block day counting.
func (s *Store) IsHoliday(date core.Date) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM public_holidays WHERE date = ?",
		date.String(),
	).Scan(&count)
	return err == nil && count > 0
}
