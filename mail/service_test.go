package mail_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborhq/absence-engine/application"
	"github.com/harborhq/absence-engine/core"
	"github.com/harborhq/absence-engine/mail"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type recordingSender struct {
	mails []mail.Mail
}

func (s *recordingSender) Send(_ context.Context, m mail.Mail) error {
	s.mails = append(s.mails, m)
	return nil
}

type fakeDirectory struct {
	persons map[core.PersonID]*core.Person
}

func (d *fakeDirectory) GetPerson(_ context.Context, id core.PersonID) (*core.Person, error) {
	if p, ok := d.persons[id]; ok {
		return p, nil
	}
	return nil, core.ErrPersonNotFound
}

func (d *fakeDirectory) FindPersonsByRole(_ context.Context, role core.Role) ([]*core.Person, error) {
	var out []*core.Person
	for _, p := range d.persons {
		if p.HasRole(role) {
			out = append(out, p)
		}
	}
	return out, nil
}

func newService() (*mail.Service, *recordingSender) {
	sender := &recordingSender{}
	dir := &fakeDirectory{persons: map[core.PersonID]*core.Person{
		"p-1":    {ID: "p-1", Name: "Lena", Email: "lena@example.org", Roles: []core.Role{core.RoleUser}},
		"p-2":    {ID: "p-2", Name: "Sam", Email: "sam@example.org", Roles: []core.Role{core.RoleUser}},
		"boss-1": {ID: "boss-1", Name: "Max", Email: "max@example.org", Roles: []core.Role{core.RoleBoss}},
		"boss-2": {ID: "boss-2", Name: "Kim", Email: "kim@example.org", Roles: []core.Role{core.RoleBoss}},
	}}
	return mail.NewService(sender, dir, "Absence Engine <absence@localhost>"), sender
}

func testApp() *application.Application {
	return &application.Application{
		Person:             "p-1",
		HolidayReplacement: "p-2",
		StartDate:          core.NewDate(2022, time.April, 4),
		EndDate:            core.NewDate(2022, time.April, 8),
	}
}

// =============================================================================
// MAIL BUILDING
// =============================================================================

func TestSendConfirmation_GoesToApplicant(t *testing.T) {
	svc, sender := newService()

	require.NoError(t, svc.SendConfirmation(context.Background(), testApp()))

	require.Len(t, sender.mails, 1)
	assert.Equal(t, "Absence Engine <absence@localhost>", sender.mails[0].From)
	assert.Equal(t, []string{"lena@example.org"}, sender.mails[0].To)
	assert.Contains(t, sender.mails[0].Body, "2022-04-04")
	assert.Contains(t, sender.mails[0].Body, "Lena")
}

func TestSendNewApplicationNotification_GoesToAllBosses(t *testing.T) {
	svc, sender := newService()

	require.NoError(t, svc.SendNewApplicationNotification(context.Background(), testApp()))

	require.Len(t, sender.mails, 1)
	assert.ElementsMatch(t, []string{"max@example.org", "kim@example.org"}, sender.mails[0].To)
}

func TestSendTemporaryAllowedNotification_MentionsPendingDecision(t *testing.T) {
	svc, sender := newService()

	require.NoError(t, svc.SendTemporaryAllowedNotification(context.Background(), testApp(), "fine by me"))

	require.Len(t, sender.mails, 1)
	assert.Equal(t, []string{"lena@example.org"}, sender.mails[0].To)
	assert.Contains(t, sender.mails[0].Body, "awaits a final decision")
	assert.Contains(t, sender.mails[0].Body, "Comment: fine by me")
}

func TestSendAllowedNotification_IncludesComment(t *testing.T) {
	svc, sender := newService()

	require.NoError(t, svc.SendAllowedNotification(context.Background(), testApp(), "enjoy"))

	require.Len(t, sender.mails, 1)
	assert.Contains(t, sender.mails[0].Body, "Comment: enjoy")
}

func TestSendCancelledNotification_Variants(t *testing.T) {
	svc, sender := newService()
	ctx := context.Background()

	require.NoError(t, svc.SendCancelledNotification(ctx, testApp(), false, ""))
	require.NoError(t, svc.SendCancelledNotification(ctx, testApp(), true, ""))

	require.Len(t, sender.mails, 2)
	assert.NotContains(t, sender.mails[0].Body, "behalf")
	assert.Contains(t, sender.mails[1].Body, "behalf")
}

func TestSendHolidayReplacementNotification_GoesToStandIn(t *testing.T) {
	svc, sender := newService()

	require.NoError(t, svc.SendHolidayReplacementNotification(context.Background(), testApp()))

	require.Len(t, sender.mails, 1)
	assert.Equal(t, []string{"sam@example.org"}, sender.mails[0].To)
	assert.Contains(t, sender.mails[0].Body, "Lena")
}

func TestSendConfirmation_UnknownPerson(t *testing.T) {
	svc, sender := newService()
	app := testApp()
	app.Person = "ghost"

	err := svc.SendConfirmation(context.Background(), app)
	assert.ErrorIs(t, err, core.ErrPersonNotFound)
	assert.Empty(t, sender.mails)
}
