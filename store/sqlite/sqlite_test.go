package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborhq/absence-engine/account"
	"github.com/harborhq/absence-engine/application"
	"github.com/harborhq/absence-engine/calsync"
	"github.com/harborhq/absence-engine/core"
	"github.com/harborhq/absence-engine/department"
	"github.com/harborhq/absence-engine/overtime"
	"github.com/harborhq/absence-engine/sicknote"
	"github.com/harborhq/absence-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(y, m, d int) core.Date {
	return core.NewDate(y, time.Month(m), d)
}

// =============================================================================
// PERSONS
// =============================================================================

func TestPersons_RoundTripAndRoles(t *testing.T) {
	// GIVEN: Two saved persons, one boss
	// WHEN: Loading by id and by role
	// THEN: Fields and roles survive, role query finds the boss only

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SavePerson(ctx, &core.Person{
		ID: "p-1", Name: "Lena", Email: "lena@example.org",
		Roles: []core.Role{core.RoleUser},
	}))
	require.NoError(t, store.SavePerson(ctx, &core.Person{
		ID: "boss-1", Name: "Max", Email: "max@example.org",
		Roles: []core.Role{core.RoleUser, core.RoleBoss},
	}))

	p, err := store.GetPerson(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Lena", p.Name)
	assert.True(t, p.HasRole(core.RoleUser))
	assert.False(t, p.HasRole(core.RoleBoss))

	bosses, err := store.FindPersonsByRole(ctx, core.RoleBoss)
	require.NoError(t, err)
	require.Len(t, bosses, 1)
	assert.Equal(t, core.PersonID("boss-1"), bosses[0].ID)

	_, err = store.GetPerson(ctx, "ghost")
	assert.ErrorIs(t, err, core.ErrPersonNotFound)
}

func TestPublicHolidays(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SavePublicHoliday(ctx, date(2022, 12, 26), "Boxing Day"))

	assert.True(t, store.IsHoliday(date(2022, 12, 26)))
	assert.False(t, store.IsHoliday(date(2022, 12, 27)))
}

// =============================================================================
// HOLIDAYS ACCOUNTS
// =============================================================================

func TestHolidaysAccounts_UpsertByPersonAndYear(t *testing.T) {
	// GIVEN: A saved 2022 account
	// WHEN: Saving again with changed carry-over and loading
	// THEN: One row, updated values, decimal precision intact

	store := newTestStore(t)
	ctx := context.Background()

	acc := &account.Account{
		Person:                           "p-1",
		ValidFrom:                        core.StartOfYear(2022),
		ValidTo:                          core.EndOfYear(2022),
		AnnualVacationDays:               decimal.RequireFromString("33.3"),
		VacationDays:                     decimal.RequireFromString("33.3"),
		RemainingVacationDays:            decimal.RequireFromString("2.5"),
		RemainingVacationDaysNotExpiring: decimal.Zero,
	}
	require.NoError(t, store.SaveHolidaysAccount(ctx, acc))

	acc.RemainingVacationDays = decimal.RequireFromString("4.5")
	require.NoError(t, store.SaveHolidaysAccount(ctx, acc))

	loaded, err := store.GetHolidaysAccount(ctx, 2022, "p-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.True(t, decimal.RequireFromString("33.3").Equal(loaded.AnnualVacationDays))
	assert.True(t, decimal.RequireFromString("4.5").Equal(loaded.RemainingVacationDays))
	assert.Equal(t, 2022, loaded.Year())

	missing, err := store.GetHolidaysAccount(ctx, 2023, "p-1")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// =============================================================================
// APPLICATIONS
// =============================================================================

func TestApplications_SaveAssignsIDAndRoundTrips(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	app := &application.Application{
		Person:             "p-1",
		Applier:            "p-1",
		Status:             application.StatusWaiting,
		StartDate:          date(2022, 4, 4),
		EndDate:            date(2022, 4, 8),
		DayLength:          core.FullDay,
		Category:           core.CategoryHoliday,
		Reason:             "summer",
		HolidayReplacement: "p-2",
		ApplicationDate:    date(2022, 3, 1),
		SignedDataOfPerson: []byte{0x01, 0x02},
	}
	require.NoError(t, store.SaveApplication(ctx, app))
	require.NotEmpty(t, app.ID)

	loaded, err := store.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.Person, loaded.Person)
	assert.Equal(t, application.StatusWaiting, loaded.Status)
	assert.Equal(t, date(2022, 4, 4), loaded.StartDate)
	assert.Equal(t, []byte{0x01, 0x02}, loaded.SignedDataOfPerson)
	assert.True(t, loaded.EditedDate.IsZero(), "unset dates stay zero")

	_, err = store.GetApplication(ctx, "ghost")
	assert.ErrorIs(t, err, core.ErrApplicationNotFound)
}

func TestApplications_FindByPersonAndPeriod_Overlap(t *testing.T) {
	// GIVEN: Applications inside, overlapping and outside the year
	// WHEN: Querying the 2022 year period
	// THEN: The boundary-spilling one is found, the 2023 one is not

	store := newTestStore(t)
	ctx := context.Background()

	inside := &application.Application{
		Person: "p-1", Status: application.StatusAllowed,
		StartDate: date(2022, 4, 4), EndDate: date(2022, 4, 8),
		DayLength: core.FullDay, Category: core.CategoryHoliday,
	}
	spilling := &application.Application{
		Person: "p-1", Status: application.StatusAllowed,
		StartDate: date(2022, 12, 29), EndDate: date(2023, 1, 4),
		DayLength: core.FullDay, Category: core.CategoryHoliday,
	}
	nextYear := &application.Application{
		Person: "p-1", Status: application.StatusAllowed,
		StartDate: date(2023, 2, 6), EndDate: date(2023, 2, 10),
		DayLength: core.FullDay, Category: core.CategoryHoliday,
	}
	otherPerson := &application.Application{
		Person: "p-2", Status: application.StatusAllowed,
		StartDate: date(2022, 4, 4), EndDate: date(2022, 4, 8),
		DayLength: core.FullDay, Category: core.CategoryHoliday,
	}
	for _, app := range []*application.Application{inside, spilling, nextYear, otherPerson} {
		require.NoError(t, store.SaveApplication(ctx, app))
	}

	found, err := store.FindApplicationsByPersonAndPeriod(ctx, "p-1", core.YearPeriod(2022))
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, inside.ID, found[0].ID)
	assert.Equal(t, spilling.ID, found[1].ID)

	waiting, err := store.FindApplicationsByStatus(ctx, application.StatusWaiting)
	require.NoError(t, err)
	assert.Empty(t, waiting)
}

func TestApplicationComments_OrderedPerApplication(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, action := range []application.CommentAction{
		application.CommentApplied, application.CommentAllowed, application.CommentCancelled,
	} {
		require.NoError(t, store.CreateApplicationComment(ctx, &application.Comment{
			Application: "app-1", Person: "p-1", Action: action, Date: date(2022, 3, 1),
		}))
	}
	require.NoError(t, store.CreateApplicationComment(ctx, &application.Comment{
		Application: "app-2", Person: "p-1", Action: application.CommentApplied, Date: date(2022, 3, 1),
	}))

	comments, err := store.FindApplicationComments(ctx, "app-1")
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, application.CommentApplied, comments[0].Action)
	assert.Equal(t, application.CommentAllowed, comments[1].Action)
	assert.Equal(t, application.CommentCancelled, comments[2].Action)
}

// =============================================================================
// SICK NOTES
// =============================================================================

func TestSickNotes_RoundTripAndActiveFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	active := &sicknote.SickNote{
		Person: "p-1", Active: true,
		StartDate: date(2022, 2, 21), EndDate: date(2022, 2, 25),
		AubStartDate: date(2022, 2, 21), AubEndDate: date(2022, 2, 23),
		WorkDays: decimal.NewFromInt(5), LastEdited: date(2022, 2, 21),
	}
	inactive := &sicknote.SickNote{
		Person: "p-1", Active: false,
		StartDate: date(2022, 3, 7), EndDate: date(2022, 3, 11),
		WorkDays: decimal.Zero, LastEdited: date(2022, 3, 7),
	}
	require.NoError(t, store.SaveSickNote(ctx, active))
	require.NoError(t, store.SaveSickNote(ctx, inactive))

	loaded, err := store.GetSickNote(ctx, active.ID)
	require.NoError(t, err)
	assert.True(t, loaded.HasAub())
	assert.Equal(t, date(2022, 2, 23), loaded.AubEndDate)
	assert.True(t, decimal.NewFromInt(5).Equal(loaded.WorkDays))

	activeNotes, err := store.FindActiveSickNotes(ctx)
	require.NoError(t, err)
	require.Len(t, activeNotes, 1)
	assert.Equal(t, active.ID, activeNotes[0].ID)

	both, err := store.FindSickNotesByPersonAndPeriod(ctx, "p-1", core.YearPeriod(2022))
	require.NoError(t, err)
	assert.Len(t, both, 2)

	_, err = store.GetSickNote(ctx, "ghost")
	assert.ErrorIs(t, err, core.ErrSickNoteNotFound)
}

// =============================================================================
// DEPARTMENTS
// =============================================================================

func TestDepartments_ListsRewrittenOnSave(t *testing.T) {
	// GIVEN: A department with members and heads
	// WHEN: Saving again with a changed member list
	// THEN: The lists reflect the latest save only

	store := newTestStore(t)
	ctx := context.Background()

	dept := &department.Department{
		Name:             "Engineering",
		Members:          []core.PersonID{"p-1", "p-2"},
		Heads:            []core.PersonID{"head-1"},
		LastModification: date(2022, 3, 1),
	}
	require.NoError(t, store.SaveDepartment(ctx, dept))
	require.NotEmpty(t, dept.ID)

	dept.Members = []core.PersonID{"p-2", "p-3"}
	require.NoError(t, store.SaveDepartment(ctx, dept))

	loaded, err := store.GetDepartment(ctx, dept.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []core.PersonID{"p-2", "p-3"}, loaded.Members)
	assert.ElementsMatch(t, []core.PersonID{"head-1"}, loaded.Heads)

	byMember, err := store.FindDepartmentsByMember(ctx, "p-3")
	require.NoError(t, err)
	require.Len(t, byMember, 1)

	gone, err := store.FindDepartmentsByMember(ctx, "p-1")
	require.NoError(t, err)
	assert.Empty(t, gone)

	byHead, err := store.FindDepartmentsByHead(ctx, "head-1")
	require.NoError(t, err)
	require.Len(t, byHead, 1)
}

func TestDepartments_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	dept := &department.Department{Name: "Support", Members: []core.PersonID{"p-1"}}
	require.NoError(t, store.SaveDepartment(ctx, dept))
	require.NoError(t, store.DeleteDepartment(ctx, dept.ID))

	_, err := store.GetDepartment(ctx, dept.ID)
	assert.ErrorIs(t, err, core.ErrDepartmentNotFound)

	byMember, err := store.FindDepartmentsByMember(ctx, "p-1")
	require.NoError(t, err)
	assert.Empty(t, byMember)
}

// =============================================================================
// OVERTIME
// =============================================================================

func TestOvertime_RoundTripAndPeriodQuery(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	o := &overtime.Overtime{
		Person:           "p-1",
		StartDate:        date(2022, 5, 2),
		EndDate:          date(2022, 5, 6),
		Hours:            decimal.RequireFromString("7.5"),
		LastModification: date(2022, 5, 6),
	}
	require.NoError(t, store.SaveOvertime(ctx, o))
	require.NotEmpty(t, o.ID)

	loaded, err := store.GetOvertime(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.True(t, decimal.RequireFromString("7.5").Equal(loaded.Hours))

	missing, err := store.GetOvertime(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)

	found, err := store.FindOvertimeByPersonAndPeriod(ctx, "p-1", core.YearPeriod(2022))
	require.NoError(t, err)
	require.Len(t, found, 1)

	none, err := store.FindOvertimeByPersonAndPeriod(ctx, "p-1", core.YearPeriod(2023))
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, store.CreateOvertimeComment(ctx, &overtime.Comment{
		Overtime: o.ID, Person: "p-1", Date: date(2022, 5, 6), Text: "release week",
	}))
	comments, err := store.FindOvertimeComments(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "release week", comments[0].Text)
}

// =============================================================================
// ABSENCE MAPPINGS
// =============================================================================

func TestAbsenceMappings_KeyedByIDAndType(t *testing.T) {
	// GIVEN: A sick note mapping and a vacation mapping sharing the same id
	// WHEN: Looking up and deleting one of them
	// THEN: The other is untouched

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateAbsenceMapping(ctx, &calsync.AbsenceMapping{
		AbsenceID: "x-1", Type: calsync.TypeSickNote, EventID: "ev-1",
	}))
	require.NoError(t, store.CreateAbsenceMapping(ctx, &calsync.AbsenceMapping{
		AbsenceID: "x-1", Type: calsync.TypeVacation, EventID: "ev-2",
	}))

	m, err := store.GetAbsenceMapping(ctx, "x-1", calsync.TypeSickNote)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "ev-1", m.EventID)

	require.NoError(t, store.DeleteAbsenceMapping(ctx, "x-1", calsync.TypeSickNote))

	m, err = store.GetAbsenceMapping(ctx, "x-1", calsync.TypeSickNote)
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = store.GetAbsenceMapping(ctx, "x-1", calsync.TypeVacation)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "ev-2", m.EventID)
}
