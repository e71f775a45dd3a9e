package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harborhq/absence-engine/calsync"
)

// =============================================================================
// ABSENCE MAPPINGS (calsync.MappingStore)
// =============================================================================

// GetAbsenceMapping returns the mapping for an absence, or (nil, nil)
// when none exists.
func (s *Store) GetAbsenceMapping(ctx context.Context, absenceID string, typ calsync.AbsenceType) (*calsync.AbsenceMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT absence_id, absence_type, event_id
		FROM absence_mappings
		WHERE absence_id = ? AND absence_type = ?
	`, absenceID, typ)

	var m calsync.AbsenceMapping
	err := row.Scan(&m.AbsenceID, &m.Type, &m.EventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan absence mapping: %w", err)
	}
	return &m, nil
}

func (s *Store) CreateAbsenceMapping(ctx context.Context, mapping *calsync.AbsenceMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO absence_mappings (absence_id, absence_type, event_id)
		VALUES (?, ?, ?)
		ON CONFLICT(absence_id, absence_type) DO UPDATE SET
			event_id = excluded.event_id
	`, mapping.AbsenceID, mapping.Type, mapping.EventID)
	if err != nil {
		return fmt.Errorf("failed to save absence mapping: %w", err)
	}
	return nil
}

func (s *Store) DeleteAbsenceMapping(ctx context.Context, absenceID string, typ calsync.AbsenceType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM absence_mappings WHERE absence_id = ? AND absence_type = ?",
		absenceID, typ)
	if err != nil {
		return fmt.Errorf("failed to delete absence mapping: %w", err)
	}
	return nil
}
