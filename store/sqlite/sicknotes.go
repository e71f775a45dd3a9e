package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harborhq/absence-engine/core"
	"github.com/harborhq/absence-engine/sicknote"
)

// =============================================================================
// SICK NOTES (sicknote.Store)
// =============================================================================

const sickNoteColumns = `id, person_id, type, start_date, end_date, day_length,
	aub_start_date, aub_end_date, work_days, active, last_edited`

// GetSickNote returns the note or wraps ErrSickNoteNotFound.
func (s *Store) GetSickNote(ctx context.Context, id core.SickNoteID) (*sicknote.SickNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+sickNoteColumns+" FROM sick_notes WHERE id = ?", id)

	note, err := scanSickNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sick note %s: %w", id, core.ErrSickNoteNotFound)
	}
	return note, err
}

// SaveSickNote inserts or updates. A new note gets its ID assigned here.
func (s *Store) SaveSickNote(ctx context.Context, note *sicknote.SickNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if note.ID == "" {
		note.ID = core.SickNoteID(newID())
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sick_notes
		(id, person_id, type, start_date, end_date, day_length,
		 aub_start_date, aub_end_date, work_days, active, last_edited)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			person_id = excluded.person_id,
			type = excluded.type,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			day_length = excluded.day_length,
			aub_start_date = excluded.aub_start_date,
			aub_end_date = excluded.aub_end_date,
			work_days = excluded.work_days,
			active = excluded.active,
			last_edited = excluded.last_edited
	`,
		note.ID, note.Person, note.Type, note.StartDate.String(), note.EndDate.String(),
		note.DayLength, dateString(note.AubStartDate), dateString(note.AubEndDate),
		note.WorkDays.String(), note.Active, dateString(note.LastEdited),
	)
	if err != nil {
		return fmt.Errorf("failed to save sick note: %w", err)
	}
	return nil
}

// FindActiveSickNotes returns all active notes.
func (s *Store) FindActiveSickNotes(ctx context.Context) ([]*sicknote.SickNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + sickNoteColumns + ` FROM sick_notes
		WHERE active ORDER BY start_date ASC`
	return s.querySickNotes(ctx, query)
}

// FindSickNotesByPersonAndPeriod returns the person's notes overlapping
// the period, active or not.
func (s *Store) FindSickNotesByPersonAndPeriod(ctx context.Context, person core.PersonID, period core.Period) ([]*sicknote.SickNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + sickNoteColumns + ` FROM sick_notes
		WHERE person_id = ? AND start_date <= ? AND end_date >= ?
		ORDER BY start_date ASC`
	return s.querySickNotes(ctx, query, person, period.End.String(), period.Start.String())
}

func (s *Store) querySickNotes(ctx context.Context, query string, args ...any) ([]*sicknote.SickNote, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sick notes: %w", err)
	}
	defer rows.Close()

	var out []*sicknote.SickNote
	for rows.Next() {
		note, err := scanSickNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, note)
	}
	return out, rows.Err()
}

func scanSickNote(row rowScanner) (*sicknote.SickNote, error) {
	var note sicknote.SickNote
	var startDate, endDate, aubStart, aubEnd, workDays, lastEdited string

	err := row.Scan(&note.ID, &note.Person, &note.Type, &startDate, &endDate,
		&note.DayLength, &aubStart, &aubEnd, &workDays, &note.Active, &lastEdited)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan sick note: %w", err)
	}

	if note.StartDate, err = parseDate(startDate); err != nil {
		return nil, err
	}
	if note.EndDate, err = parseDate(endDate); err != nil {
		return nil, err
	}
	if note.AubStartDate, err = parseDate(aubStart); err != nil {
		return nil, err
	}
	if note.AubEndDate, err = parseDate(aubEnd); err != nil {
		return nil, err
	}
	if note.WorkDays, err = parseDecimal(workDays); err != nil {
		return nil, err
	}
	if note.LastEdited, err = parseDate(lastEdited); err != nil {
		return nil, err
	}
	return &note, nil
}

// =============================================================================
// SICK NOTE COMMENTS (sicknote.CommentStore)
// =============================================================================

func (s *Store) CreateSickNoteComment(ctx context.Context, c *sicknote.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = core.CommentID(newID())
	}
	seq, err := s.nextSeq("sick_note_comments", "sick_note_id", string(c.SickNote))
	if err != nil {
		return fmt.Errorf("failed to sequence sick note comment: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sick_note_comments (id, sick_note_id, person_id, action, date, text, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.SickNote, c.Person, c.Action, dateString(c.Date), c.Text, seq)
	if err != nil {
		return fmt.Errorf("failed to save sick note comment: %w", err)
	}
	return nil
}

func (s *Store) FindSickNoteComments(ctx context.Context, id core.SickNoteID) ([]*sicknote.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sick_note_id, person_id, action, date, text
		FROM sick_note_comments
		WHERE sick_note_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query sick note comments: %w", err)
	}
	defer rows.Close()

	var out []*sicknote.Comment
	for rows.Next() {
		var c sicknote.Comment
		var date string
		if err := rows.Scan(&c.ID, &c.SickNote, &c.Person, &c.Action, &date, &c.Text); err != nil {
			return nil, fmt.Errorf("failed to scan sick note comment: %w", err)
		}
		if c.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
