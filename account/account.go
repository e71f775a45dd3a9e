/*
Package account manages per-person-per-year vacation entitlements.

PURPOSE:
  Tracks how many vacation days a person is entitled to for a calendar year,
  how many of those remain from the previous year, and how many are left
  after subtracting the days bound by leave applications.

KEY CONCEPTS:
  - Holidays account: one record per (person, year). Carries the annual
    entitlement, the pro-rated actual entitlement for partial years, and
    the carried-over remainder of the previous year.
  - Pro-rating: a person who joins mid-year is entitled to a fraction of
    the annual days, counted in months and rounded to half days.
  - Chain propagation: changing an account's usage ripples the leftover
    days into every consecutive following year's account.

EXAMPLE:
  svc := account.NewInteractionService(store, calc)
  acc, err := svc.EnsureHolidaysAccount(ctx, 2022, personID)

SEE ALSO:
  - calculator.go: pro-rated entitlement calculation
  - vacationdays.go: days-left arithmetic
  - interaction.go: lifecycle operations and chain propagation
*/
package account

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/harborhq/absence-engine/core"
)

// Account is a person's vacation entitlement for one calendar year.
type Account struct {
	Person    core.PersonID
	ValidFrom core.Date // usually Jan 1, later for mid-year joiners
	ValidTo   core.Date // usually Dec 31

	// AnnualVacationDays is the contractual entitlement for a full year.
	AnnualVacationDays decimal.Decimal

	// VacationDays is the actual entitlement for this account's validity
	// window, pro-rated from AnnualVacationDays for partial years.
	VacationDays decimal.Decimal

	// RemainingVacationDays carries over what was left of the previous year.
	RemainingVacationDays decimal.Decimal

	// RemainingVacationDaysNotExpiring is the share of the carry-over that
	// survives past the expiry date (e.g. March 31).
	RemainingVacationDaysNotExpiring decimal.Decimal
}

// Year returns the calendar year this account belongs to.
func (a *Account) Year() int { return a.ValidFrom.Year() }

// Period returns the validity window of the account.
func (a *Account) Period() core.Period {
	return core.NewPeriod(a.ValidFrom, a.ValidTo)
}

// Store persists holidays accounts.
type Store interface {
	// GetHolidaysAccount returns the account for a person and year, or
	// (nil, nil) when none exists.
	GetHolidaysAccount(ctx context.Context, year int, person core.PersonID) (*Account, error)

	// SaveHolidaysAccount inserts or updates an account, keyed by
	// (person, year of ValidFrom).
	SaveHolidaysAccount(ctx context.Context, account *Account) error
}

// UsageProvider reports how many vacation days of a person's account year
// are already bound by leave applications.
type UsageProvider interface {
	UsedVacationDays(ctx context.Context, person core.PersonID, year int) (decimal.Decimal, error)
}
