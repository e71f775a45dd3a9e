package account

import (
	"github.com/shopspring/decimal"

	"github.com/harborhq/absence-engine/core"
)

// =============================================================================
// ENTITLEMENT CALCULATION
// =============================================================================

var (
	twelve = decimal.NewFromInt(12)
	half   = decimal.New(5, -1)
)

// Calculator derives the actual vacation entitlement for an account's
// validity window from the contractual annual entitlement.
type Calculator struct{}

func NewCalculator() *Calculator { return &Calculator{} }

// CalculateActualVacationDays pro-rates the annual entitlement over the
// account's validity window, counted in months and rounded to half days.
//
// A window covering the whole calendar year keeps the annual entitlement
// exactly, including fractional entitlements like 33.3.
//
// Partial months count as follows: a start month joined on or before the
// 14th counts full, later starts count half. An end month missing at most
// 13 trailing days counts full, more counts half. A window inside a single
// month counts half when it covers at least half the month, otherwise
// nothing.
func (c *Calculator) CalculateActualVacationDays(account *Account) decimal.Decimal {
	start, end := account.ValidFrom, account.ValidTo
	annual := account.AnnualVacationDays

	if start.IsFirstOfYear() && end.IsLastOfYear() && start.Year() == end.Year() {
		return annual
	}

	months := monthsCovered(start, end)
	if months.IsZero() {
		return decimal.Zero
	}

	result := roundToHalfDays(annual.Mul(months).Div(twelve))
	if result.GreaterThan(annual) {
		return annual
	}
	return result
}

// monthsCovered counts the months of the window, partial months weighing
// half or full per the boundary rules above.
func monthsCovered(start, end core.Date) decimal.Decimal {
	sameMonth := start.Year() == end.Year() && start.Month() == end.Month()
	if sameMonth && !start.IsFirstOfMonth() && !end.IsLastOfMonth() {
		covered := end.Day() - start.Day() + 1
		if covered*2 >= start.DaysInMonth() {
			return half
		}
		return decimal.Zero
	}

	months := decimal.Zero
	fullFrom, fullTo := start, end

	if !start.IsFirstOfMonth() {
		if start.Day() <= 14 {
			months = months.Add(decimal.NewFromInt(1))
		} else {
			months = months.Add(half)
		}
		fullFrom = start.FirstOfMonth().AddMonths(1)
	}
	if !end.IsLastOfMonth() {
		missing := end.DaysInMonth() - end.Day()
		if missing <= 13 {
			months = months.Add(decimal.NewFromInt(1))
		} else {
			months = months.Add(half)
		}
		fullTo = end.FirstOfMonth().AddDays(-1)
	}
	if fullFrom.BeforeOrEqual(fullTo) {
		months = months.Add(decimal.NewFromInt(int64(core.MonthsBetween(fullFrom, fullTo))))
	}
	return months
}

// roundToHalfDays rounds to one decimal first, then snaps the first decimal
// digit to the nearest half day: 0-2 down, 3-5 to the half, 6-9 up.
func roundToHalfDays(d decimal.Decimal) decimal.Decimal {
	r := d.Round(1)
	floor := r.Floor()
	tenths := r.Sub(floor).Mul(decimal.NewFromInt(10)).IntPart()
	switch {
	case tenths <= 2:
		return floor
	case tenths <= 5:
		return floor.Add(half)
	default:
		return floor.Add(decimal.NewFromInt(1))
	}
}
