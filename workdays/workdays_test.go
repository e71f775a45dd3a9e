package workdays_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborhq/absence-engine/core"
	"github.com/harborhq/absence-engine/workdays"
)

func date(y, m, d int) core.Date {
	return core.NewDate(y, time.Month(m), d)
}

// =============================================================================
// WORKING DAY COUNTING
// =============================================================================

func TestGetWorkDays_FullWeek(t *testing.T) {
	// GIVEN: Monday through Sunday (2022-01-03 to 2022-01-09)
	// WHEN: Counting full working days
	// THEN: 5 days (weekend skipped)

	svc := workdays.NewService(nil)

	days, err := svc.GetWorkDays(core.FullDay, date(2022, 1, 3), date(2022, 1, 9))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5).Equal(days), "got %s", days)
}

func TestGetWorkDays_SingleDay(t *testing.T) {
	// GIVEN: A single Wednesday
	// WHEN: Counting full working days
	// THEN: Exactly 1

	svc := workdays.NewService(nil)

	days, err := svc.GetWorkDays(core.FullDay, date(2022, 1, 5), date(2022, 1, 5))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1).Equal(days))
}

func TestGetWorkDays_WeekendOnly(t *testing.T) {
	// GIVEN: Saturday and Sunday only
	// WHEN: Counting working days
	// THEN: Zero

	svc := workdays.NewService(nil)

	days, err := svc.GetWorkDays(core.FullDay, date(2022, 1, 8), date(2022, 1, 9))
	require.NoError(t, err)
	assert.True(t, days.IsZero())
}

func TestGetWorkDays_HalfDayWeight(t *testing.T) {
	// GIVEN: Two working weeks taken mornings only
	// WHEN: Counting with morning day length
	// THEN: 10 working days weighted to 5

	svc := workdays.NewService(nil)

	days, err := svc.GetWorkDays(core.MorningDay, date(2022, 1, 3), date(2022, 1, 14))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5).Equal(days), "got %s", days)
}

func TestGetWorkDays_HolidaySkipped(t *testing.T) {
	// GIVEN: A week containing a public holiday on Wednesday
	// WHEN: Counting working days with a fixed calendar
	// THEN: The holiday does not count

	cal := workdays.NewFixedCalendar([]core.Date{date(2022, 1, 5)})
	svc := workdays.NewService(cal)

	days, err := svc.GetWorkDays(core.FullDay, date(2022, 1, 3), date(2022, 1, 7))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(4).Equal(days), "got %s", days)
}

func TestGetWorkDays_InvalidPeriod(t *testing.T) {
	// GIVEN: End date before start date
	// WHEN: Counting working days
	// THEN: ErrInvalidPeriod

	svc := workdays.NewService(nil)

	_, err := svc.GetWorkDays(core.FullDay, date(2022, 1, 7), date(2022, 1, 3))
	assert.ErrorIs(t, err, core.ErrInvalidPeriod)
}

func TestIsWorkDay(t *testing.T) {
	cal := workdays.NewFixedCalendar([]core.Date{date(2022, 12, 26)})
	svc := workdays.NewService(cal)

	assert.True(t, svc.IsWorkDay(date(2022, 12, 27)), "regular Tuesday")
	assert.False(t, svc.IsWorkDay(date(2022, 12, 25)), "Sunday")
	assert.False(t, svc.IsWorkDay(date(2022, 12, 26)), "public holiday")
}
