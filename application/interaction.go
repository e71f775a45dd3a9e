package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/harborhq/absence-engine/calsync"
	"github.com/harborhq/absence-engine/core"
)

// PersonStore resolves person records, used to render calendar events.
type PersonStore interface {
	GetPerson(ctx context.Context, id core.PersonID) (*core.Person, error)
}

// InteractionService drives the application lifecycle. Side effects always
// run in the same order: persist, comment, mail, account recompute,
// calendar. Mail and calendar failures are logged and swallowed.
type InteractionService struct {
	Store    Store
	Comments CommentStore
	Persons  PersonStore
	Notifier Notifier
	Signer   Signer
	Accounts AccountService
	Approval ApprovalPolicy
	Calendar CalendarSync
	Logger   *zap.Logger

	// Now stamps transition dates. Overridable in tests.
	Now func() core.Date
}

func NewInteractionService(
	store Store,
	comments CommentStore,
	persons PersonStore,
	notifier Notifier,
	signer Signer,
	accounts AccountService,
	approval ApprovalPolicy,
	calendar CalendarSync,
	logger *zap.Logger,
) *InteractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InteractionService{
		Store:    store,
		Comments: comments,
		Persons:  persons,
		Notifier: notifier,
		Signer:   signer,
		Accounts: accounts,
		Approval: approval,
		Calendar: calendar,
		Logger:   logger,
		Now:      core.Today,
	}
}

// =============================================================================
// LIFECYCLE OPERATIONS
// =============================================================================

// Apply submits a new application for leave. The applier may be the
// applicant or an office user acting on their behalf. The applicant must
// have a holidays account for the start year (auto-created from the
// previous year when possible).
func (s *InteractionService) Apply(ctx context.Context, app *Application, applier *core.Person, comment string) (*Application, error) {
	if app.Status != "" {
		return nil, &core.StateTransitionError{Operation: "apply", Current: string(app.Status), Required: "new"}
	}
	if err := validateNewApplication(app); err != nil {
		return nil, err
	}

	if _, err := s.Accounts.EnsureHolidaysAccount(ctx, app.StartDate.Year(), app.Person); err != nil {
		return nil, err
	}

	app.Status = StatusWaiting
	app.Applier = applier.ID
	app.ApplicationDate = s.Now()

	sig, err := s.Signer.Sign(app, applier.ID)
	if err != nil {
		return nil, fmt.Errorf("signing application: %w", err)
	}
	app.SignedDataOfPerson = sig

	if err := s.Store.SaveApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("saving application: %w", err)
	}

	s.Logger.Info("application applied",
		zap.String("application", string(app.ID)),
		zap.String("person", string(app.Person)),
		zap.String("applier", string(applier.ID)),
		zap.String("period", app.Period().String()))

	if err := s.comment(ctx, app, applier.ID, CommentApplied, comment); err != nil {
		return nil, err
	}

	if applier.ID == app.Person {
		s.mail("confirmation", app.ID, s.Notifier.SendConfirmation(ctx, app))
	} else {
		s.mail("applied on behalf", app.ID, s.Notifier.SendAppliedOnBehalfNotification(ctx, app))
	}
	s.mail("new application", app.ID, s.Notifier.SendNewApplicationNotification(ctx, app))

	if err := s.Accounts.UpdateRemainingVacationDays(ctx, app.StartDate.Year(), app.Person); err != nil {
		return nil, err
	}

	s.Calendar.AddAbsence(ctx, calsync.RefForApplication(app.ID), s.absence(ctx, app))

	return app, nil
}

// Allow approves a waiting application. In a department with two stage
// approval, a department head's allow only parks the application as
// TEMPORARY_ALLOWED; a boss or office user finalizes it.
func (s *InteractionService) Allow(ctx context.Context, id core.ApplicationID, boss *core.Person, comment string) (*Application, error) {
	app, err := s.Store.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != StatusWaiting && app.Status != StatusTemporaryAllowed {
		return nil, &core.StateTransitionError{Operation: "allow", Current: string(app.Status), Required: string(StatusWaiting)}
	}

	firstStageOnly, err := s.requiresSecondStage(ctx, boss, app.Person)
	if err != nil {
		return nil, err
	}
	if app.Status == StatusTemporaryAllowed && firstStageOnly {
		return nil, &core.StateTransitionError{
			Operation: "allow",
			Current:   string(app.Status),
			Required:  "a decision by a boss or office user",
		}
	}

	parked := app.Status == StatusWaiting && firstStageOnly
	if parked {
		app.Status = StatusTemporaryAllowed
	} else {
		app.Status = StatusAllowed
	}
	app.Boss = boss.ID
	app.EditedDate = s.Now()

	sig, err := s.Signer.Sign(app, boss.ID)
	if err != nil {
		return nil, fmt.Errorf("signing application: %w", err)
	}
	app.SignedDataOfBoss = sig

	if err := s.Store.SaveApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("saving application: %w", err)
	}

	s.Logger.Info("application allowed",
		zap.String("application", string(app.ID)),
		zap.String("boss", string(boss.ID)),
		zap.String("status", string(app.Status)))

	if parked {
		if err := s.comment(ctx, app, boss.ID, CommentTemporaryAllowed, comment); err != nil {
			return nil, err
		}
		s.mail("temporary allowed", app.ID, s.Notifier.SendTemporaryAllowedNotification(ctx, app, comment))
		s.Calendar.UpdateAbsence(ctx, calsync.RefForApplication(app.ID), s.absence(ctx, app))
		return app, nil
	}

	if err := s.comment(ctx, app, boss.ID, CommentAllowed, comment); err != nil {
		return nil, err
	}

	s.mail("allowed", app.ID, s.Notifier.SendAllowedNotification(ctx, app, comment))
	if app.HolidayReplacement != "" {
		s.mail("holiday replacement", app.ID, s.Notifier.SendHolidayReplacementNotification(ctx, app))
	}

	s.Calendar.UpdateAbsence(ctx, calsync.RefForApplication(app.ID), s.absence(ctx, app))

	return app, nil
}

// Reject turns down a waiting application.
func (s *InteractionService) Reject(ctx context.Context, id core.ApplicationID, boss *core.Person, comment string) (*Application, error) {
	app, err := s.Store.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != StatusWaiting && app.Status != StatusTemporaryAllowed {
		return nil, &core.StateTransitionError{Operation: "reject", Current: string(app.Status), Required: string(StatusWaiting)}
	}

	app.Status = StatusRejected
	app.Boss = boss.ID
	app.EditedDate = s.Now()

	sig, err := s.Signer.Sign(app, boss.ID)
	if err != nil {
		return nil, fmt.Errorf("signing application: %w", err)
	}
	app.SignedDataOfBoss = sig

	if err := s.Store.SaveApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("saving application: %w", err)
	}

	s.Logger.Info("application rejected",
		zap.String("application", string(app.ID)),
		zap.String("boss", string(boss.ID)))

	if err := s.comment(ctx, app, boss.ID, CommentRejected, comment); err != nil {
		return nil, err
	}

	s.mail("rejected", app.ID, s.Notifier.SendRejectedNotification(ctx, app, comment))

	s.Calendar.DeleteAbsence(ctx, calsync.RefForApplication(app.ID))

	return app, nil
}

// Cancel withdraws a waiting or allowed application. A waiting one ends as
// REVOKED because it never bound approved days; an allowed one ends as
// CANCELLED and frees its days again.
func (s *InteractionService) Cancel(ctx context.Context, id core.ApplicationID, canceller *core.Person, comment string) (*Application, error) {
	app, err := s.Store.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if !app.IsActive() {
		return nil, &core.StateTransitionError{
			Operation: "cancel",
			Current:   string(app.Status),
			Required:  string(StatusWaiting) + " or " + string(StatusAllowed),
		}
	}

	wasAllowed := app.Status == StatusAllowed
	action := CommentRevoked
	if wasAllowed {
		app.Status = StatusCancelled
		action = CommentCancelled
	} else {
		app.Status = StatusRevoked
	}
	app.Canceller = canceller.ID
	app.CancelDate = s.Now()

	if err := s.Store.SaveApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("saving application: %w", err)
	}

	s.Logger.Info("application cancelled",
		zap.String("application", string(app.ID)),
		zap.String("canceller", string(canceller.ID)),
		zap.String("status", string(app.Status)))

	if err := s.comment(ctx, app, canceller.ID, action, comment); err != nil {
		return nil, err
	}

	if wasAllowed {
		s.mail("cancelled", app.ID, s.Notifier.SendCancelledNotification(ctx, app, false, comment))
	}
	if canceller.ID != app.Person {
		s.mail("cancelled on behalf", app.ID, s.Notifier.SendCancelledNotification(ctx, app, true, comment))
	}

	if err := s.Accounts.UpdateRemainingVacationDays(ctx, app.StartDate.Year(), app.Person); err != nil {
		return nil, err
	}

	s.Calendar.DeleteAbsence(ctx, calsync.RefForApplication(app.ID))

	return app, nil
}

// =============================================================================
// QUERIES
// =============================================================================

func (s *InteractionService) GetApplication(ctx context.Context, id core.ApplicationID) (*Application, error) {
	return s.Store.GetApplication(ctx, id)
}

// GetApplicationsByPersonAndYear lists a person's applications touching a
// calendar year.
func (s *InteractionService) GetApplicationsByPersonAndYear(ctx context.Context, person core.PersonID, year int) ([]*Application, error) {
	return s.Store.FindApplicationsByPersonAndPeriod(ctx, person, core.YearPeriod(year))
}

// GetWaitingApplications lists every application awaiting a decision,
// including temporarily allowed ones that still need a privileged one.
func (s *InteractionService) GetWaitingApplications(ctx context.Context) ([]*Application, error) {
	waiting, err := s.Store.FindApplicationsByStatus(ctx, StatusWaiting)
	if err != nil {
		return nil, err
	}
	parked, err := s.Store.FindApplicationsByStatus(ctx, StatusTemporaryAllowed)
	if err != nil {
		return nil, err
	}
	return append(waiting, parked...), nil
}

// GetComments returns the audit trail of an application.
func (s *InteractionService) GetComments(ctx context.Context, id core.ApplicationID) ([]*Comment, error) {
	return s.Comments.FindApplicationComments(ctx, id)
}

// =============================================================================
// HELPERS
// =============================================================================

// requiresSecondStage asks the approval policy whether the decider's allow
// is only the first stage. No policy means single stage approval.
func (s *InteractionService) requiresSecondStage(ctx context.Context, decider *core.Person, applicant core.PersonID) (bool, error) {
	if s.Approval == nil {
		return false, nil
	}
	firstStage, err := s.Approval.RequiresSecondStage(ctx, decider, applicant)
	if err != nil {
		return false, fmt.Errorf("resolving approval stages: %w", err)
	}
	return firstStage, nil
}

func validateNewApplication(app *Application) error {
	vErr := &core.ValidationError{}
	if app.Person == "" {
		vErr.Add("person", "person is mandatory")
	}
	if app.StartDate.IsZero() || app.EndDate.IsZero() {
		vErr.Add("period", "start and end date are mandatory")
	} else if app.EndDate.Before(app.StartDate) {
		vErr.Add("period", "end date must not be before start date")
	}
	if app.Category == "" {
		vErr.Add("category", "vacation category is mandatory")
	}
	if app.DayLength == "" {
		vErr.Add("dayLength", "day length is mandatory")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func (s *InteractionService) comment(ctx context.Context, app *Application, author core.PersonID, action CommentAction, text string) error {
	c := &Comment{
		Application: app.ID,
		Person:      author,
		Action:      action,
		Date:        s.Now(),
		Text:        text,
	}
	if err := s.Comments.CreateApplicationComment(ctx, c); err != nil {
		return fmt.Errorf("recording %s comment: %w", action, err)
	}
	return nil
}

// mail logs a notification failure without propagating it.
func (s *InteractionService) mail(kind string, id core.ApplicationID, err error) {
	if err != nil {
		s.Logger.Warn("notification failed",
			zap.String("kind", kind),
			zap.String("application", string(id)),
			zap.Error(err))
	}
}

// absence renders the application as a calendar absence. Person name
// lookup failures degrade to the raw id.
func (s *InteractionService) absence(ctx context.Context, app *Application) calsync.Absence {
	name := string(app.Person)
	if person, err := s.Persons.GetPerson(ctx, app.Person); err == nil && person != nil {
		name = person.Name
	}
	return calsync.Absence{
		Person:     app.Person,
		PersonName: name,
		Start:      app.StartDate,
		End:        app.EndDate,
		DayLength:  app.DayLength,
		Type:       calsync.TypeVacation,
	}
}
