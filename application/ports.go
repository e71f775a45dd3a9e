package application

import (
	"context"

	"github.com/harborhq/absence-engine/account"
	"github.com/harborhq/absence-engine/calsync"
	"github.com/harborhq/absence-engine/core"
)

// =============================================================================
// PORTS - implemented by store/sqlite, mail, sign, calsync
// =============================================================================

// Store persists applications.
type Store interface {
	// GetApplication returns the application or wraps ErrApplicationNotFound.
	GetApplication(ctx context.Context, id core.ApplicationID) (*Application, error)

	// SaveApplication inserts or updates. A new application gets its ID
	// assigned here.
	SaveApplication(ctx context.Context, app *Application) error

	// FindApplicationsByPersonAndPeriod returns every application of the
	// person whose leave period overlaps the given period, any status.
	FindApplicationsByPersonAndPeriod(ctx context.Context, person core.PersonID, period core.Period) ([]*Application, error)

	// FindApplicationsByStatus returns all applications in a status.
	FindApplicationsByStatus(ctx context.Context, status Status) ([]*Application, error)
}

// CommentStore persists the audit trail.
type CommentStore interface {
	CreateApplicationComment(ctx context.Context, comment *Comment) error
	FindApplicationComments(ctx context.Context, id core.ApplicationID) ([]*Comment, error)
}

// Notifier sends lifecycle mails. Implementations report failures as
// errors; the lifecycle logs and continues.
type Notifier interface {
	// SendConfirmation goes to applicants who applied for themselves.
	SendConfirmation(ctx context.Context, app *Application) error

	// SendAppliedOnBehalfNotification goes to the person an office user
	// applied for.
	SendAppliedOnBehalfNotification(ctx context.Context, app *Application) error

	// SendNewApplicationNotification informs privileged users that a new
	// application waits for a decision.
	SendNewApplicationNotification(ctx context.Context, app *Application) error

	// SendTemporaryAllowedNotification tells the applicant the first
	// approval stage passed and a privileged decision is still pending.
	SendTemporaryAllowedNotification(ctx context.Context, app *Application, comment string) error

	SendAllowedNotification(ctx context.Context, app *Application, comment string) error
	SendRejectedNotification(ctx context.Context, app *Application, comment string) error

	// SendCancelledNotification informs about a cancellation. When
	// cancelledByOther is set, the mail goes to the applicant because
	// someone else cancelled for them.
	SendCancelledNotification(ctx context.Context, app *Application, cancelledByOther bool, comment string) error

	// SendHolidayReplacementNotification informs the stand-in of an
	// allowed application.
	SendHolidayReplacementNotification(ctx context.Context, app *Application) error
}

// Signer produces the tamper-evidence signatures stored on applications.
type Signer interface {
	Sign(app *Application, person core.PersonID) ([]byte, error)
}

// ApprovalPolicy decides whether an allow is only the first of two
// approval stages. Satisfied by department.Service.
type ApprovalPolicy interface {
	// RequiresSecondStage reports whether an allow by the decider leaves
	// the applicant's application parked until a privileged decision.
	RequiresSecondStage(ctx context.Context, decider *core.Person, applicant core.PersonID) (bool, error)
}

// AccountService is the slice of the account lifecycle the application
// lifecycle needs. Satisfied by account.InteractionService.
type AccountService interface {
	EnsureHolidaysAccount(ctx context.Context, year int, person core.PersonID) (*account.Account, error)
	UpdateRemainingVacationDays(ctx context.Context, year int, person core.PersonID) error
}

// CalendarSync mirrors absences into the external calendar. Satisfied by
// calsync.Service; all methods are best effort.
type CalendarSync interface {
	AddAbsence(ctx context.Context, ref calsync.AbsenceRef, absence calsync.Absence)
	UpdateAbsence(ctx context.Context, ref calsync.AbsenceRef, absence calsync.Absence)
	DeleteAbsence(ctx context.Context, ref calsync.AbsenceRef)
}
