package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harborhq/absence-engine/application"
	"github.com/harborhq/absence-engine/core"
)

// =============================================================================
// APPLICATIONS (application.Store)
// =============================================================================

const applicationColumns = `id, person_id, applier_id, boss_id, canceller_id, status,
	start_date, end_date, day_length, category, reason, address,
	holiday_replacement, team_informed, application_date, edited_date,
	cancel_date, signed_person, signed_boss`

// GetApplication returns the application or wraps ErrApplicationNotFound.
func (s *Store) GetApplication(ctx context.Context, id core.ApplicationID) (*application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+applicationColumns+" FROM applications WHERE id = ?", id)

	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("application %s: %w", id, core.ErrApplicationNotFound)
	}
	return app, err
}

// SaveApplication inserts or updates. A new application gets its ID
// assigned here.
func (s *Store) SaveApplication(ctx context.Context, app *application.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if app.ID == "" {
		app.ID = core.ApplicationID(newID())
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications
		(id, person_id, applier_id, boss_id, canceller_id, status,
		 start_date, end_date, day_length, category, reason, address,
		 holiday_replacement, team_informed, application_date, edited_date,
		 cancel_date, signed_person, signed_boss)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			person_id = excluded.person_id,
			applier_id = excluded.applier_id,
			boss_id = excluded.boss_id,
			canceller_id = excluded.canceller_id,
			status = excluded.status,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			day_length = excluded.day_length,
			category = excluded.category,
			reason = excluded.reason,
			address = excluded.address,
			holiday_replacement = excluded.holiday_replacement,
			team_informed = excluded.team_informed,
			application_date = excluded.application_date,
			edited_date = excluded.edited_date,
			cancel_date = excluded.cancel_date,
			signed_person = excluded.signed_person,
			signed_boss = excluded.signed_boss
	`,
		app.ID, app.Person, app.Applier, app.Boss, app.Canceller, app.Status,
		app.StartDate.String(), app.EndDate.String(), app.DayLength, app.Category,
		app.Reason, app.Address, app.HolidayReplacement, app.TeamInformed,
		dateString(app.ApplicationDate), dateString(app.EditedDate),
		dateString(app.CancelDate), app.SignedDataOfPerson, app.SignedDataOfBoss,
	)
	if err != nil {
		return fmt.Errorf("failed to save application: %w", err)
	}
	return nil
}

// FindApplicationsByPersonAndPeriod returns the person's applications
// whose leave period overlaps the given period, any status.
func (s *Store) FindApplicationsByPersonAndPeriod(ctx context.Context, person core.PersonID, period core.Period) ([]*application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// overlap: starts before the period ends and ends after it starts
	query := "SELECT " + applicationColumns + ` FROM applications
		WHERE person_id = ? AND start_date <= ? AND end_date >= ?
		ORDER BY start_date ASC`

	return s.queryApplications(ctx, query, person, period.End.String(), period.Start.String())
}

// FindApplicationsByStatus returns all applications in a status.
func (s *Store) FindApplicationsByStatus(ctx context.Context, status application.Status) ([]*application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + applicationColumns + ` FROM applications
		WHERE status = ? ORDER BY start_date ASC`

	return s.queryApplications(ctx, query, status)
}

func (s *Store) queryApplications(ctx context.Context, query string, args ...any) ([]*application.Application, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	var out []*application.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*application.Application, error) {
	var app application.Application
	var startDate, endDate, applicationDate, editedDate, cancelDate string

	err := row.Scan(
		&app.ID, &app.Person, &app.Applier, &app.Boss, &app.Canceller, &app.Status,
		&startDate, &endDate, &app.DayLength, &app.Category, &app.Reason,
		&app.Address, &app.HolidayReplacement, &app.TeamInformed,
		&applicationDate, &editedDate, &cancelDate,
		&app.SignedDataOfPerson, &app.SignedDataOfBoss,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}

	if app.StartDate, err = parseDate(startDate); err != nil {
		return nil, err
	}
	if app.EndDate, err = parseDate(endDate); err != nil {
		return nil, err
	}
	if app.ApplicationDate, err = parseDate(applicationDate); err != nil {
		return nil, err
	}
	if app.EditedDate, err = parseDate(editedDate); err != nil {
		return nil, err
	}
	if app.CancelDate, err = parseDate(cancelDate); err != nil {
		return nil, err
	}
	return &app, nil
}

// =============================================================================
// APPLICATION COMMENTS (application.CommentStore)
// =============================================================================

func (s *Store) CreateApplicationComment(ctx context.Context, c *application.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = core.CommentID(newID())
	}
	seq, err := s.nextSeq("application_comments", "application_id", string(c.Application))
	if err != nil {
		return fmt.Errorf("failed to sequence application comment: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO application_comments (id, application_id, person_id, action, date, text, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Application, c.Person, c.Action, dateString(c.Date), c.Text, seq)
	if err != nil {
		return fmt.Errorf("failed to save application comment: %w", err)
	}
	return nil
}

func (s *Store) FindApplicationComments(ctx context.Context, id core.ApplicationID) ([]*application.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, application_id, person_id, action, date, text
		FROM application_comments
		WHERE application_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query application comments: %w", err)
	}
	defer rows.Close()

	var out []*application.Comment
	for rows.Next() {
		var c application.Comment
		var date string
		if err := rows.Scan(&c.ID, &c.Application, &c.Person, &c.Action, &date, &c.Text); err != nil {
			return nil, fmt.Errorf("failed to scan application comment: %w", err)
		}
		if c.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
