/*
Package workdays counts working days inside date ranges.

PURPOSE:
  Every duration in the engine (application days, sick note days, used
  vacation) is expressed in working days, never calendar days. This package
  owns that conversion: weekends never count, public holidays never count,
  and a morning or noon absence weighs half of whatever a full day weighs.

KEY CONCEPTS:
  - HolidayCalendar: pluggable lookup for public holidays. The default
    calendar knows no holidays so only weekends are skipped.
  - Day length weighting: GetWorkDays multiplies the raw working day count
    by the day length weight, so a two week morning-only absence costs
    five days, not ten.

EXAMPLE:
  svc := workdays.NewService(workdays.NewFixedCalendar(holidays))
  days, err := svc.GetWorkDays(core.FullDay, from, to)

SEE ALSO:
  - core/date.go: the Date type and weekend predicate
  - application: clips periods to account years before counting
*/
package workdays

import (
	"github.com/shopspring/decimal"

	"github.com/harborhq/absence-engine/core"
)

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// HolidayCalendar answers whether a given date is a public holiday.
type HolidayCalendar interface {
	IsHoliday(date core.Date) bool
}

// DefaultCalendar knows no public holidays. Only weekends are non-working.
type DefaultCalendar struct{}

func (DefaultCalendar) IsHoliday(core.Date) bool { return false }

// FixedCalendar holds an explicit set of holiday dates.
type FixedCalendar struct {
	dates map[string]struct{}
}

// NewFixedCalendar builds a calendar from an explicit holiday list.
func NewFixedCalendar(holidays []core.Date) *FixedCalendar {
	c := &FixedCalendar{dates: make(map[string]struct{}, len(holidays))}
	for _, d := range holidays {
		c.dates[d.String()] = struct{}{}
	}
	return c
}

func (c *FixedCalendar) IsHoliday(date core.Date) bool {
	_, ok := c.dates[date.String()]
	return ok
}

// =============================================================================
// SERVICE
// =============================================================================

// Service counts working days between dates using a holiday calendar.
type Service struct {
	calendar HolidayCalendar
}

// NewService creates a working day service. A nil calendar falls back to
// DefaultCalendar (weekends only).
func NewService(calendar HolidayCalendar) *Service {
	if calendar == nil {
		calendar = DefaultCalendar{}
	}
	return &Service{calendar: calendar}
}

// GetWorkDays returns the number of working days between from and to
// inclusive, weighted by day length. Weekends and public holidays count
// zero. Returns ErrInvalidPeriod if to is before from.
func (s *Service) GetWorkDays(dayLength core.DayLength, from, to core.Date) (decimal.Decimal, error) {
	if to.Before(from) {
		return decimal.Zero, core.ErrInvalidPeriod
	}

	count := 0
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		if d.IsWeekend() {
			continue
		}
		if s.calendar.IsHoliday(d) {
			continue
		}
		count++
	}

	return decimal.NewFromInt(int64(count)).Mul(dayLength.Weight()), nil
}

// IsWorkDay reports whether a single date is a working day.
func (s *Service) IsWorkDay(date core.Date) bool {
	return !date.IsWeekend() && !s.calendar.IsHoliday(date)
}
