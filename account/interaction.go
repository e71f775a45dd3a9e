package account

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harborhq/absence-engine/core"
)

// =============================================================================
// INTERACTION SERVICE
// =============================================================================

// InteractionService owns the holidays account lifecycle: creation, editing,
// auto-creation of follow-up years, and propagation of leftover days into
// following years.
type InteractionService struct {
	Store        Store
	Calculator   *Calculator
	VacationDays *VacationDaysService
	Logger       *zap.Logger
}

func NewInteractionService(store Store, vacationDays *VacationDaysService, logger *zap.Logger) *InteractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InteractionService{
		Store:        store,
		Calculator:   NewCalculator(),
		VacationDays: vacationDays,
		Logger:       logger,
	}
}

// GetHolidaysAccount returns the account for a person and year, or nil when
// none exists.
func (s *InteractionService) GetHolidaysAccount(ctx context.Context, year int, person core.PersonID) (*Account, error) {
	return s.Store.GetHolidaysAccount(ctx, year, person)
}

// CreateHolidaysAccount creates an account for the given validity window.
// The actual entitlement is pro-rated from the annual entitlement.
func (s *InteractionService) CreateHolidaysAccount(ctx context.Context, person core.PersonID, validFrom, validTo core.Date, annual, remaining, notExpiring decimal.Decimal) (*Account, error) {
	if validTo.Before(validFrom) {
		return nil, core.ErrInvalidPeriod
	}

	acc := &Account{
		Person:                           person,
		ValidFrom:                        validFrom,
		ValidTo:                          validTo,
		AnnualVacationDays:               annual,
		RemainingVacationDays:            remaining,
		RemainingVacationDaysNotExpiring: notExpiring,
	}
	acc.VacationDays = s.Calculator.CalculateActualVacationDays(acc)

	if err := s.Store.SaveHolidaysAccount(ctx, acc); err != nil {
		return nil, fmt.Errorf("saving holidays account: %w", err)
	}

	s.Logger.Info("created holidays account",
		zap.String("person", string(person)),
		zap.Int("year", acc.Year()),
		zap.String("vacation_days", acc.VacationDays.String()))

	return acc, nil
}

// EditHolidaysAccount updates an existing account's window and entitlement,
// re-deriving the actual entitlement, and saves it.
func (s *InteractionService) EditHolidaysAccount(ctx context.Context, acc *Account, validFrom, validTo core.Date, annual, remaining, notExpiring decimal.Decimal) (*Account, error) {
	if validTo.Before(validFrom) {
		return nil, core.ErrInvalidPeriod
	}

	acc.ValidFrom = validFrom
	acc.ValidTo = validTo
	acc.AnnualVacationDays = annual
	acc.RemainingVacationDays = remaining
	acc.RemainingVacationDaysNotExpiring = notExpiring
	acc.VacationDays = s.Calculator.CalculateActualVacationDays(acc)

	if err := s.Store.SaveHolidaysAccount(ctx, acc); err != nil {
		return nil, fmt.Errorf("saving holidays account: %w", err)
	}

	s.Logger.Info("edited holidays account",
		zap.String("person", string(acc.Person)),
		zap.Int("year", acc.Year()))

	return acc, nil
}

// AutoCreateHolidaysAccount creates the account for the year after the
// reference account. The new account spans the full calendar year, keeps
// the annual entitlement, and carries over whatever is left on the
// reference account. Carried-over days expire by default.
func (s *InteractionService) AutoCreateHolidaysAccount(ctx context.Context, reference *Account) (*Account, error) {
	left, err := s.VacationDays.CalculateTotalLeftVacationDays(ctx, reference)
	if err != nil {
		return nil, err
	}

	nextYear := reference.Year() + 1
	acc := &Account{
		Person:                           reference.Person,
		ValidFrom:                        core.StartOfYear(nextYear),
		ValidTo:                          core.EndOfYear(nextYear),
		AnnualVacationDays:               reference.AnnualVacationDays,
		VacationDays:                     reference.AnnualVacationDays,
		RemainingVacationDays:            left,
		RemainingVacationDaysNotExpiring: decimal.Zero,
	}

	if err := s.Store.SaveHolidaysAccount(ctx, acc); err != nil {
		return nil, fmt.Errorf("saving auto-created holidays account: %w", err)
	}

	s.Logger.Info("auto-created holidays account",
		zap.String("person", string(acc.Person)),
		zap.Int("year", nextYear),
		zap.String("remaining", left.String()))

	return acc, nil
}

// EnsureHolidaysAccount returns the account for a person and year, creating
// it from the previous year's account when possible. Bridging spans a
// single year only: if neither the year nor the year before has an account
// the person is not set up and ErrAccountNotFound is returned.
func (s *InteractionService) EnsureHolidaysAccount(ctx context.Context, year int, person core.PersonID) (*Account, error) {
	acc, err := s.Store.GetHolidaysAccount(ctx, year, person)
	if err != nil {
		return nil, err
	}
	if acc != nil {
		return acc, nil
	}

	previous, err := s.Store.GetHolidaysAccount(ctx, year-1, person)
	if err != nil {
		return nil, err
	}
	if previous == nil {
		return nil, fmt.Errorf("person %s, year %d: %w", person, year, core.ErrAccountNotFound)
	}
	return s.AutoCreateHolidaysAccount(ctx, previous)
}

// UpdateRemainingVacationDays propagates the leftover days of the given
// year into every consecutive following year that already has an account.
// The walk stops at the first gap. The starting year's account itself is
// never modified.
func (s *InteractionService) UpdateRemainingVacationDays(ctx context.Context, year int, person core.PersonID) error {
	acc, err := s.Store.GetHolidaysAccount(ctx, year, person)
	if err != nil {
		return err
	}
	if acc == nil {
		return nil
	}

	for {
		next, err := s.Store.GetHolidaysAccount(ctx, acc.Year()+1, person)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}

		left, err := s.VacationDays.CalculateTotalLeftVacationDays(ctx, acc)
		if err != nil {
			return err
		}

		next.RemainingVacationDays = left
		if next.RemainingVacationDaysNotExpiring.GreaterThan(left) {
			next.RemainingVacationDaysNotExpiring = left
		}
		if err := s.Store.SaveHolidaysAccount(ctx, next); err != nil {
			return fmt.Errorf("saving holidays account %d: %w", next.Year(), err)
		}

		acc = next
	}
}
