package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harborhq/absence-engine/account"
	"github.com/harborhq/absence-engine/core"
)

// =============================================================================
// HOLIDAYS ACCOUNTS (account.Store)
// =============================================================================

// GetHolidaysAccount returns the account for a person and year, or
// (nil, nil) when none exists.
func (s *Store) GetHolidaysAccount(ctx context.Context, year int, person core.PersonID) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT person_id, valid_from, valid_to, annual_vacation_days,
		       vacation_days, remaining_vacation_days, remaining_not_expiring
		FROM holidays_accounts
		WHERE person_id = ? AND year = ?
	`, person, year)

	var acc account.Account
	var validFrom, validTo, annual, vacation, remaining, notExpiring string
	err := row.Scan(&acc.Person, &validFrom, &validTo, &annual, &vacation, &remaining, &notExpiring)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan holidays account: %w", err)
	}

	if acc.ValidFrom, err = parseDate(validFrom); err != nil {
		return nil, err
	}
	if acc.ValidTo, err = parseDate(validTo); err != nil {
		return nil, err
	}
	if acc.AnnualVacationDays, err = parseDecimal(annual); err != nil {
		return nil, err
	}
	if acc.VacationDays, err = parseDecimal(vacation); err != nil {
		return nil, err
	}
	if acc.RemainingVacationDays, err = parseDecimal(remaining); err != nil {
		return nil, err
	}
	if acc.RemainingVacationDaysNotExpiring, err = parseDecimal(notExpiring); err != nil {
		return nil, err
	}
	return &acc, nil
}

// SaveHolidaysAccount upserts the account keyed by (person, year).
func (s *Store) SaveHolidaysAccount(ctx context.Context, acc *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays_accounts
		(person_id, year, valid_from, valid_to, annual_vacation_days,
		 vacation_days, remaining_vacation_days, remaining_not_expiring)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(person_id, year) DO UPDATE SET
			valid_from = excluded.valid_from,
			valid_to = excluded.valid_to,
			annual_vacation_days = excluded.annual_vacation_days,
			vacation_days = excluded.vacation_days,
			remaining_vacation_days = excluded.remaining_vacation_days,
			remaining_not_expiring = excluded.remaining_not_expiring
	`,
		acc.Person,
		acc.Year(),
		acc.ValidFrom.String(),
		acc.ValidTo.String(),
		acc.AnnualVacationDays.String(),
		acc.VacationDays.String(),
		acc.RemainingVacationDays.String(),
		acc.RemainingVacationDaysNotExpiring.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to save holidays account: %w", err)
	}
	return nil
}
