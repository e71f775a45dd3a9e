package account_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/harborhq/absence-engine/account"
	"github.com/harborhq/absence-engine/core"
)

func date(y, m, d int) core.Date {
	return core.NewDate(y, time.Month(m), d)
}

func entitlement(t *testing.T, from, to core.Date, annual string) decimal.Decimal {
	t.Helper()
	calc := account.NewCalculator()
	acc := &account.Account{
		Person:             "p-1",
		ValidFrom:          from,
		ValidTo:            to,
		AnnualVacationDays: decimal.RequireFromString(annual),
	}
	return calc.CalculateActualVacationDays(acc)
}

// =============================================================================
// FULL-YEAR ACCOUNTS
// =============================================================================

func TestCalculateActualVacationDays_FullYear_KeepsAnnual(t *testing.T) {
	// GIVEN: An account covering the entire calendar year
	// WHEN: Deriving the actual entitlement
	// THEN: The annual entitlement is kept exactly, no rounding

	got := entitlement(t, date(2022, 1, 1), date(2022, 12, 31), "28")
	assert.True(t, decimal.RequireFromString("28").Equal(got), "got %s", got)
}

func TestCalculateActualVacationDays_FullYear_FractionalAnnual(t *testing.T) {
	// GIVEN: A fractional annual entitlement of 33.3 for a full year
	// WHEN: Deriving the actual entitlement
	// THEN: 33.3 is kept as-is, not snapped to half days

	got := entitlement(t, date(2022, 1, 1), date(2022, 12, 31), "33.3")
	assert.True(t, decimal.RequireFromString("33.3").Equal(got), "got %s", got)
}

// =============================================================================
// MID-YEAR JOINERS
// =============================================================================

func TestCalculateActualVacationDays_JoinAugustFirst(t *testing.T) {
	// GIVEN: 28 annual days, joining August 1 (5 full months)
	// WHEN: Pro-rating 28 * 5 / 12 = 11.67
	// THEN: Rounds up to 12

	got := entitlement(t, date(2022, 8, 1), date(2022, 12, 31), "28")
	assert.True(t, decimal.RequireFromString("12").Equal(got), "got %s", got)
}

func TestCalculateActualVacationDays_JoinSeptemberFirst(t *testing.T) {
	// GIVEN: 28 annual days, joining September 1 (4 full months)
	// WHEN: Pro-rating 28 * 4 / 12 = 9.33
	// THEN: Rounds to 9.5

	got := entitlement(t, date(2022, 9, 1), date(2022, 12, 31), "28")
	assert.True(t, decimal.RequireFromString("9.5").Equal(got), "got %s", got)
}

func TestCalculateActualVacationDays_JoinSeptemberFirst_FractionalAnnual(t *testing.T) {
	// GIVEN: 33.3 annual days, joining September 1
	// WHEN: Pro-rating 33.3 * 4 / 12 = 11.1
	// THEN: Rounds down to 11

	got := entitlement(t, date(2022, 9, 1), date(2022, 12, 31), "33.3")
	assert.True(t, decimal.RequireFromString("11").Equal(got), "got %s", got)
}

func TestCalculateActualVacationDays_JoinMidMonth(t *testing.T) {
	// GIVEN: 28 annual days, joining May 15 (half May + 7 full months)
	// WHEN: Pro-rating 28 * 7.5 / 12 = 17.5
	// THEN: Exactly 17.5

	got := entitlement(t, date(2022, 5, 15), date(2022, 12, 31), "28")
	assert.True(t, decimal.RequireFromString("17.5").Equal(got), "got %s", got)
}

func TestCalculateActualVacationDays_JoinMidDecember(t *testing.T) {
	// GIVEN: 30 annual days, joining December 15 (half a month)
	// WHEN: Pro-rating 30 * 0.5 / 12 = 1.25
	// THEN: Rounds to 1.5

	got := entitlement(t, date(2022, 12, 15), date(2022, 12, 31), "30")
	assert.True(t, decimal.RequireFromString("1.5").Equal(got), "got %s", got)
}

func TestCalculateActualVacationDays_JoinNovember(t *testing.T) {
	// GIVEN: 30 annual days, joining November 1 (2 full months)
	// WHEN: Pro-rating 30 * 2 / 12 = 5
	// THEN: Exactly 5

	got := entitlement(t, date(2022, 11, 1), date(2022, 12, 31), "30")
	assert.True(t, decimal.RequireFromString("5").Equal(got), "got %s", got)
}

// =============================================================================
// PARTIAL-MONTH BOUNDARIES
// =============================================================================

func TestCalculateActualVacationDays_LeaveMidMonth(t *testing.T) {
	// GIVEN: 30 annual days, account ending December 16 (15 missing days)
	// WHEN: December counts half, 30 * 0.5 / 12 = 1.25
	// THEN: Rounds to 1.5

	got := entitlement(t, date(2022, 12, 1), date(2022, 12, 16), "30")
	assert.True(t, decimal.RequireFromString("1.5").Equal(got), "got %s", got)
}

func TestCalculateActualVacationDays_StartDayFourteen_CountsFullMonth(t *testing.T) {
	// GIVEN: 24 annual days (exactly 2 per month), joining December 14
	// WHEN: Day 14 still counts December as a full month
	// THEN: 2 days

	got := entitlement(t, date(2022, 12, 14), date(2022, 12, 31), "24")
	assert.True(t, decimal.RequireFromString("2").Equal(got), "got %s", got)
}

func TestCalculateActualVacationDays_StartDayFifteen_CountsHalfMonth(t *testing.T) {
	// GIVEN: 24 annual days, joining December 15
	// WHEN: Day 15 counts December as a half month
	// THEN: 1 day

	got := entitlement(t, date(2022, 12, 15), date(2022, 12, 31), "24")
	assert.True(t, decimal.RequireFromString("1").Equal(got), "got %s", got)
}

func TestCalculateActualVacationDays_TinyWindow_Zero(t *testing.T) {
	// GIVEN: A window covering less than half of a single month
	// WHEN: Deriving the actual entitlement
	// THEN: Zero days

	got := entitlement(t, date(2022, 12, 20), date(2022, 12, 27), "30")
	assert.True(t, got.IsZero(), "got %s", got)
}

func TestCalculateActualVacationDays_NeverExceedsAnnual(t *testing.T) {
	// GIVEN: A window whose rounded pro-rating would exceed the annual days
	// WHEN: Deriving the actual entitlement
	// THEN: Capped at the annual entitlement

	// Jan 1 to Dec 16: 11.5 months of 12, 0.5 * 12 / 12 would round fine,
	// but a tiny annual makes the cap observable.
	got := entitlement(t, date(2022, 1, 1), date(2022, 12, 16), "0.4")
	assert.True(t, got.LessThanOrEqual(decimal.RequireFromString("0.4")), "got %s", got)
}
