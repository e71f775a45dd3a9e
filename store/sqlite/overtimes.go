package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harborhq/absence-engine/core"
	"github.com/harborhq/absence-engine/overtime"
)

// =============================================================================
// OVERTIME (overtime.Store)
// =============================================================================

// GetOvertime returns the record, or (nil, nil) when none exists.
func (s *Store) GetOvertime(ctx context.Context, id core.OvertimeID) (*overtime.Overtime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, person_id, start_date, end_date, hours, last_modification
		FROM overtimes WHERE id = ?
	`, id)

	o, err := scanOvertime(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

// SaveOvertime inserts or updates. A new record gets its ID assigned here.
func (s *Store) SaveOvertime(ctx context.Context, o *overtime.Overtime) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == "" {
		o.ID = core.OvertimeID(newID())
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO overtimes (id, person_id, start_date, end_date, hours, last_modification)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			person_id = excluded.person_id,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			hours = excluded.hours,
			last_modification = excluded.last_modification
	`, o.ID, o.Person, o.StartDate.String(), o.EndDate.String(),
		o.Hours.String(), dateString(o.LastModification))
	if err != nil {
		return fmt.Errorf("failed to save overtime: %w", err)
	}
	return nil
}

// FindOvertimeByPersonAndPeriod returns the person's records overlapping
// the period.
func (s *Store) FindOvertimeByPersonAndPeriod(ctx context.Context, person core.PersonID, period core.Period) ([]*overtime.Overtime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, person_id, start_date, end_date, hours, last_modification
		FROM overtimes
		WHERE person_id = ? AND start_date <= ? AND end_date >= ?
		ORDER BY start_date ASC
	`, person, period.End.String(), period.Start.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query overtimes: %w", err)
	}
	defer rows.Close()

	var out []*overtime.Overtime
	for rows.Next() {
		o, err := scanOvertime(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOvertime(row rowScanner) (*overtime.Overtime, error) {
	var o overtime.Overtime
	var startDate, endDate, hours, lastModification string

	err := row.Scan(&o.ID, &o.Person, &startDate, &endDate, &hours, &lastModification)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan overtime: %w", err)
	}

	if o.StartDate, err = parseDate(startDate); err != nil {
		return nil, err
	}
	if o.EndDate, err = parseDate(endDate); err != nil {
		return nil, err
	}
	if o.Hours, err = parseDecimal(hours); err != nil {
		return nil, err
	}
	if o.LastModification, err = parseDate(lastModification); err != nil {
		return nil, err
	}
	return &o, nil
}

// =============================================================================
// OVERTIME COMMENTS
// =============================================================================

func (s *Store) CreateOvertimeComment(ctx context.Context, c *overtime.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = core.CommentID(newID())
	}
	seq, err := s.nextSeq("overtime_comments", "overtime_id", string(c.Overtime))
	if err != nil {
		return fmt.Errorf("failed to sequence overtime comment: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO overtime_comments (id, overtime_id, person_id, date, text, seq)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.Overtime, c.Person, dateString(c.Date), c.Text, seq)
	if err != nil {
		return fmt.Errorf("failed to save overtime comment: %w", err)
	}
	return nil
}

func (s *Store) FindOvertimeComments(ctx context.Context, id core.OvertimeID) ([]*overtime.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, overtime_id, person_id, date, text
		FROM overtime_comments
		WHERE overtime_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query overtime comments: %w", err)
	}
	defer rows.Close()

	var out []*overtime.Comment
	for rows.Next() {
		var c overtime.Comment
		var date string
		if err := rows.Scan(&c.ID, &c.Overtime, &c.Person, &date, &c.Text); err != nil {
			return nil, fmt.Errorf("failed to scan overtime comment: %w", err)
		}
		if c.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
