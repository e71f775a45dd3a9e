/*
Package application implements the leave application lifecycle.

PURPOSE:
  A leave application is the unit of requested time off. It moves through
  a strict lifecycle: applied (waiting), then allowed or rejected by a
  privileged user, and possibly cancelled afterwards. Every transition
  persists the application, records a comment, notifies by mail, and keeps
  the vacation account chain and the external calendar in step.

KEY CONCEPTS:
  - Status machine: WAITING -> ALLOWED | REJECTED; WAITING/ALLOWED ->
    REVOKED/CANCELLED. A waiting application that is cancelled was never
    approved, so it ends as REVOKED; an allowed one ends as CANCELLED.
    In departments with two stage approval a department head's allow only
    parks the application as TEMPORARY_ALLOWED; a boss or office user
    finalizes (or rejects) it.
  - Side-effect ordering: persist, comment, mail, account recompute,
    calendar. Mail and calendar are best effort and never abort the
    transition.
  - Signatures: the applicant signs on apply, the privileged user signs
    on allow/reject. Signatures make the saved record tamper evident.

SEE ALSO:
  - interaction.go: the lifecycle operations
  - usage.go: how applications bind vacation days on an account
*/
package application

import (
	"github.com/shopspring/decimal"

	"github.com/harborhq/absence-engine/core"
)

// Status is the lifecycle state of an application.
type Status string

const (
	StatusWaiting Status = "WAITING"
	// StatusTemporaryAllowed marks the first stage of a two stage
	// approval: a department head said yes, a privileged decision is
	// still outstanding.
	StatusTemporaryAllowed Status = "TEMPORARY_ALLOWED"
	StatusAllowed          Status = "ALLOWED"
	StatusRejected         Status = "REJECTED"
	StatusCancelled        Status = "CANCELLED"
	// StatusRevoked marks a cancelled application that was never allowed.
	StatusRevoked Status = "REVOKED"
)

// Application is a request for a period of leave.
type Application struct {
	ID     core.ApplicationID
	Person core.PersonID

	// Applier is who submitted the application. Differs from Person when
	// an office user applies on someone's behalf.
	Applier   core.PersonID
	Boss      core.PersonID
	Canceller core.PersonID

	Status    Status
	StartDate core.Date
	EndDate   core.Date
	DayLength core.DayLength
	Category  core.VacationCategory

	Reason             string
	Address            string
	HolidayReplacement core.PersonID
	TeamInformed       bool

	ApplicationDate core.Date
	EditedDate      core.Date
	CancelDate      core.Date

	SignedDataOfPerson []byte
	SignedDataOfBoss   []byte
}

// Period returns the requested leave period.
func (a *Application) Period() core.Period {
	return core.NewPeriod(a.StartDate, a.EndDate)
}

// IsActive reports whether the application still binds vacation days.
func (a *Application) IsActive() bool {
	return a.Status == StatusWaiting || a.Status == StatusTemporaryAllowed || a.Status == StatusAllowed
}

// Weight is the fraction of a day each covered working day costs.
func (a *Application) Weight() decimal.Decimal {
	return a.DayLength.Weight()
}

// =============================================================================
// COMMENTS
// =============================================================================

// CommentAction records which transition a comment belongs to.
type CommentAction string

const (
	CommentApplied          CommentAction = "APPLIED"
	CommentTemporaryAllowed CommentAction = "TEMPORARY_ALLOWED"
	CommentAllowed          CommentAction = "ALLOWED"
	CommentRejected         CommentAction = "REJECTED"
	CommentCancelled        CommentAction = "CANCELLED"
	CommentRevoked          CommentAction = "REVOKED"
)

// Comment is the audit trail entry written on every lifecycle transition.
type Comment struct {
	ID          core.CommentID
	Application core.ApplicationID
	Person      core.PersonID
	Action      CommentAction
	Date        core.Date
	Text        string
}
