package department_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborhq/absence-engine/application"
	"github.com/harborhq/absence-engine/core"
	"github.com/harborhq/absence-engine/department"
)

func date(y, m, d int) core.Date {
	return core.NewDate(y, time.Month(m), d)
}

// =============================================================================
// TEST SETUP
// =============================================================================

type fakeDeptStore struct {
	depts  map[core.DepartmentID]*department.Department
	nextID int
}

func newFakeDeptStore() *fakeDeptStore {
	return &fakeDeptStore{depts: make(map[core.DepartmentID]*department.Department)}
}

func (s *fakeDeptStore) GetDepartment(_ context.Context, id core.DepartmentID) (*department.Department, error) {
	dept, ok := s.depts[id]
	if !ok {
		return nil, fmt.Errorf("department %s: %w", id, core.ErrDepartmentNotFound)
	}
	cp := *dept
	return &cp, nil
}

func (s *fakeDeptStore) SaveDepartment(_ context.Context, dept *department.Department) error {
	if dept.ID == "" {
		s.nextID++
		dept.ID = core.DepartmentID(fmt.Sprintf("dept-%d", s.nextID))
	}
	cp := *dept
	s.depts[dept.ID] = &cp
	return nil
}

func (s *fakeDeptStore) DeleteDepartment(_ context.Context, id core.DepartmentID) error {
	delete(s.depts, id)
	return nil
}

func (s *fakeDeptStore) FindAllDepartments(_ context.Context) ([]*department.Department, error) {
	var out []*department.Department
	for _, d := range s.depts {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeDeptStore) FindDepartmentsByMember(_ context.Context, person core.PersonID) ([]*department.Department, error) {
	var out []*department.Department
	for _, d := range s.depts {
		if d.HasMember(person) {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeDeptStore) FindDepartmentsByHead(_ context.Context, person core.PersonID) ([]*department.Department, error) {
	var out []*department.Department
	for _, d := range s.depts {
		if d.HasHead(person) {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeAppStore struct {
	apps []*application.Application
}

func (s *fakeAppStore) GetApplication(_ context.Context, _ core.ApplicationID) (*application.Application, error) {
	return nil, core.ErrApplicationNotFound
}

func (s *fakeAppStore) SaveApplication(_ context.Context, app *application.Application) error {
	s.apps = append(s.apps, app)
	return nil
}

func (s *fakeAppStore) FindApplicationsByPersonAndPeriod(_ context.Context, person core.PersonID, period core.Period) ([]*application.Application, error) {
	var out []*application.Application
	for _, app := range s.apps {
		if app.Person == person && app.Period().Overlaps(period) {
			out = append(out, app)
		}
	}
	return out, nil
}

func (s *fakeAppStore) FindApplicationsByStatus(_ context.Context, _ application.Status) ([]*application.Application, error) {
	return nil, nil
}

func newService(store *fakeDeptStore, apps *fakeAppStore) *department.Service {
	if apps == nil {
		apps = &fakeAppStore{}
	}
	svc := department.NewService(store, apps, nil)
	svc.Now = func() core.Date { return date(2022, 3, 1) }
	return svc
}

// =============================================================================
// CRUD
// =============================================================================

func TestCreate_StampsLastModification(t *testing.T) {
	// GIVEN: A department payload
	// WHEN: Creating
	// THEN: Saved with the modification stamp

	store := newFakeDeptStore()
	svc := newService(store, nil)

	dept, err := svc.Create(context.Background(), &department.Department{Name: "Engineering"})
	require.NoError(t, err)
	assert.Equal(t, date(2022, 3, 1), dept.LastModification)
	assert.NotEmpty(t, dept.ID)
}

func TestCreate_RequiresName(t *testing.T) {
	store := newFakeDeptStore()
	svc := newService(store, nil)

	_, err := svc.Create(context.Background(), &department.Department{})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "name")
}

func TestUpdate_Missing_Fails(t *testing.T) {
	// GIVEN: No department with the given id
	// WHEN: Updating
	// THEN: ErrDepartmentNotFound

	store := newFakeDeptStore()
	svc := newService(store, nil)

	_, err := svc.Update(context.Background(), &department.Department{ID: "nope", Name: "X"})
	assert.ErrorIs(t, err, core.ErrDepartmentNotFound)
}

func TestDelete_Missing_Fails(t *testing.T) {
	// GIVEN: No department with the given id
	// WHEN: Deleting
	// THEN: Hard error, not a silent no-op

	store := newFakeDeptStore()
	svc := newService(store, nil)

	err := svc.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrDepartmentNotFound)
}

// =============================================================================
// MEMBERSHIP
// =============================================================================

func twoDepartments(t *testing.T, store *fakeDeptStore) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.SaveDepartment(ctx, &department.Department{
		Name:    "Engineering",
		Members: []core.PersonID{"p-1", "p-2"},
		Heads:   []core.PersonID{"head-1"},
	}))
	require.NoError(t, store.SaveDepartment(ctx, &department.Department{
		Name:    "Support",
		Members: []core.PersonID{"p-2", "p-3"},
		Heads:   []core.PersonID{"head-1", "head-2"},
	}))
}

func TestGetManagedMembers_Distinct(t *testing.T) {
	// GIVEN: head-1 leads two departments sharing a member
	// WHEN: Listing managed members
	// THEN: Each person appears once

	store := newFakeDeptStore()
	twoDepartments(t, store)
	svc := newService(store, nil)

	members, err := svc.GetManagedMembers(context.Background(), "head-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []core.PersonID{"p-1", "p-2", "p-3"}, members)
}

func TestIsDepartmentHeadOf(t *testing.T) {
	store := newFakeDeptStore()
	twoDepartments(t, store)
	svc := newService(store, nil)
	ctx := context.Background()

	ok, err := svc.IsDepartmentHeadOf(ctx, "head-2", "p-3")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsDepartmentHeadOf(ctx, "head-2", "p-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetColleagueApplications_ExcludesSelfAndInactive(t *testing.T) {
	// GIVEN: p-1 shares a department with p-2; p-1 and p-2 both have
	//        applications, p-2 also has a rejected one
	// WHEN: Listing p-1's colleague applications
	// THEN: Only p-2's active application shows up

	store := newFakeDeptStore()
	twoDepartments(t, store)
	apps := &fakeAppStore{}
	ctx := context.Background()

	require.NoError(t, apps.SaveApplication(ctx, &application.Application{
		ID: "a-1", Person: "p-1", Status: application.StatusAllowed,
		StartDate: date(2022, 4, 4), EndDate: date(2022, 4, 8),
	}))
	require.NoError(t, apps.SaveApplication(ctx, &application.Application{
		ID: "a-2", Person: "p-2", Status: application.StatusWaiting,
		StartDate: date(2022, 4, 6), EndDate: date(2022, 4, 7),
	}))
	require.NoError(t, apps.SaveApplication(ctx, &application.Application{
		ID: "a-3", Person: "p-2", Status: application.StatusRejected,
		StartDate: date(2022, 5, 2), EndDate: date(2022, 5, 6),
	}))

	svc := newService(store, apps)

	colleague, err := svc.GetColleagueApplications(ctx, "p-1", core.YearPeriod(2022))
	require.NoError(t, err)
	require.Len(t, colleague, 1)
	assert.Equal(t, core.ApplicationID("a-2"), colleague[0].ID)
}

// =============================================================================
// ACCESS RULES
// =============================================================================

func TestCanAccessPersonData(t *testing.T) {
	store := newFakeDeptStore()
	twoDepartments(t, store)
	svc := newService(store, nil)
	ctx := context.Background()

	office := &core.Person{ID: "o-1", Roles: []core.Role{core.RoleOffice}}
	head := &core.Person{ID: "head-2", Roles: []core.Role{core.RoleDepartmentHead}}
	user := &core.Person{ID: "p-1", Roles: []core.Role{core.RoleUser}}

	ok, _ := svc.CanAccessPersonData(ctx, office, "p-1")
	assert.True(t, ok, "office sees everyone")

	ok, _ = svc.CanAccessPersonData(ctx, head, "p-3")
	assert.True(t, ok, "head sees their members")

	ok, _ = svc.CanAccessPersonData(ctx, head, "p-1")
	assert.False(t, ok, "head does not see other departments")

	ok, _ = svc.CanAccessPersonData(ctx, user, "p-1")
	assert.True(t, ok, "everyone sees themselves")

	ok, _ = svc.CanAccessPersonData(ctx, user, "p-2")
	assert.False(t, ok, "plain users see only themselves")
}

func TestCanDecideApplication_NeverOwn(t *testing.T) {
	store := newFakeDeptStore()
	twoDepartments(t, store)
	svc := newService(store, nil)

	boss := &core.Person{ID: "p-1", Roles: []core.Role{core.RoleBoss}}

	ok, _ := svc.CanDecideApplication(context.Background(), boss, "p-1")
	assert.False(t, ok, "no self approval even for bosses")

	ok, _ = svc.CanDecideApplication(context.Background(), boss, "p-2")
	assert.True(t, ok)
}

func TestRequiresSecondStage(t *testing.T) {
	// GIVEN: Engineering approves in two stages, Support does not
	// WHEN: Different deciders allow applications of their members
	// THEN: Only a bare department head is held to the first stage

	store := newFakeDeptStore()
	ctx := context.Background()
	require.NoError(t, store.SaveDepartment(ctx, &department.Department{
		Name:             "Engineering",
		TwoStageApproval: true,
		Members:          []core.PersonID{"p-1"},
		Heads:            []core.PersonID{"head-1"},
	}))
	require.NoError(t, store.SaveDepartment(ctx, &department.Department{
		Name:    "Support",
		Members: []core.PersonID{"p-2"},
		Heads:   []core.PersonID{"head-1"},
	}))
	svc := newService(store, nil)

	head := &core.Person{ID: "head-1", Roles: []core.Role{core.RoleDepartmentHead}}
	boss := &core.Person{ID: "boss-1", Roles: []core.Role{core.RoleBoss}}

	first, err := svc.RequiresSecondStage(ctx, head, "p-1")
	require.NoError(t, err)
	assert.True(t, first, "head decisions in a two stage department are first stage")

	first, err = svc.RequiresSecondStage(ctx, head, "p-2")
	require.NoError(t, err)
	assert.False(t, first, "single stage department")

	first, err = svc.RequiresSecondStage(ctx, boss, "p-1")
	require.NoError(t, err)
	assert.False(t, first, "bosses always decide finally")
}
