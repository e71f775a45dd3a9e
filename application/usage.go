package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/harborhq/absence-engine/core"
	"github.com/harborhq/absence-engine/workdays"
)

// =============================================================================
// VACATION DAY USAGE
// =============================================================================

// UsageCalculator reports how many vacation days of a year are bound by
// leave applications. It satisfies account.UsageProvider.
type UsageCalculator struct {
	Store    Store
	WorkDays *workdays.Service
}

func NewUsageCalculator(store Store, workDays *workdays.Service) *UsageCalculator {
	return &UsageCalculator{Store: store, WorkDays: workDays}
}

// UsedVacationDays sums the working days of every waiting or allowed
// holiday application of the person, clipped to the calendar year.
// Applications spilling over a year boundary only count the part inside
// the year.
func (c *UsageCalculator) UsedVacationDays(ctx context.Context, person core.PersonID, year int) (decimal.Decimal, error) {
	yearPeriod := core.YearPeriod(year)
	apps, err := c.Store.FindApplicationsByPersonAndPeriod(ctx, person, yearPeriod)
	if err != nil {
		return decimal.Zero, fmt.Errorf("finding applications for %s/%d: %w", person, year, err)
	}

	used := decimal.Zero
	for _, app := range apps {
		if app.Category != core.CategoryHoliday || !app.IsActive() {
			continue
		}
		clipped, ok := app.Period().Clip(yearPeriod)
		if !ok {
			continue
		}
		days, err := c.WorkDays.GetWorkDays(app.DayLength, clipped.Start, clipped.End)
		if err != nil {
			return decimal.Zero, fmt.Errorf("counting work days of application %s: %w", app.ID, err)
		}
		used = used.Add(days)
	}
	return used, nil
}
