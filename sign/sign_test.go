package sign_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborhq/absence-engine/application"
	"github.com/harborhq/absence-engine/core"
	"github.com/harborhq/absence-engine/sign"
)

func testApplication() *application.Application {
	return &application.Application{
		Person:    "p-1",
		StartDate: core.NewDate(2022, time.April, 4),
		EndDate:   core.NewDate(2022, time.April, 8),
		DayLength: core.FullDay,
		Category:  core.CategoryHoliday,
		Reason:    "summer",
	}
}

func TestSignAndVerify(t *testing.T) {
	// GIVEN: A signed application
	// WHEN: Verifying with the same signer
	// THEN: The signature matches

	signer, err := sign.NewHMACSigner("test-secret")
	require.NoError(t, err)

	app := testApplication()
	sig, err := signer.Sign(app, "p-1")
	require.NoError(t, err)
	assert.NotEmpty(t, sig)

	assert.True(t, signer.Verify(app, "p-1", sig))
}

func TestVerify_DetectsTampering(t *testing.T) {
	// GIVEN: A signed application whose period was edited afterwards
	// WHEN: Verifying
	// THEN: The signature no longer matches

	signer, err := sign.NewHMACSigner("test-secret")
	require.NoError(t, err)

	app := testApplication()
	sig, err := signer.Sign(app, "p-1")
	require.NoError(t, err)

	app.EndDate = core.NewDate(2022, time.April, 22)
	assert.False(t, signer.Verify(app, "p-1", sig))
}

func TestVerify_BoundToPerson(t *testing.T) {
	// GIVEN: An application signed by one person
	// WHEN: Verifying against another person
	// THEN: No match

	signer, err := sign.NewHMACSigner("test-secret")
	require.NoError(t, err)

	app := testApplication()
	sig, err := signer.Sign(app, "p-1")
	require.NoError(t, err)

	assert.False(t, signer.Verify(app, "boss-1", sig))
}

func TestSign_SurvivesStatusChange(t *testing.T) {
	// GIVEN: A signature taken while WAITING
	// WHEN: The status moves to ALLOWED
	// THEN: The signature still verifies

	signer, err := sign.NewHMACSigner("test-secret")
	require.NoError(t, err)

	app := testApplication()
	app.Status = application.StatusWaiting
	sig, err := signer.Sign(app, "p-1")
	require.NoError(t, err)

	app.Status = application.StatusAllowed
	assert.True(t, signer.Verify(app, "p-1", sig))
}

func TestNewHMACSigner_EmptySecret(t *testing.T) {
	_, err := sign.NewHMACSigner("")
	assert.ErrorIs(t, err, sign.ErrEmptySecret)
}
