package sicknote

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harborhq/absence-engine/application"
	"github.com/harborhq/absence-engine/calsync"
	"github.com/harborhq/absence-engine/core"
	"github.com/harborhq/absence-engine/workdays"
)

// Notifier sends sick note mails.
type Notifier interface {
	// SendSickNoteConvertedNotification informs the person that their
	// sick note became an allowed vacation application.
	SendSickNoteConvertedNotification(ctx context.Context, app *application.Application) error
}

// CalendarSync is the calendar slice the sick note lifecycle needs. On top
// of the application operations it can move an event from a sick note to
// the application it converted into. Satisfied by calsync.Service.
type CalendarSync interface {
	AddAbsence(ctx context.Context, ref calsync.AbsenceRef, absence calsync.Absence)
	UpdateAbsence(ctx context.Context, ref calsync.AbsenceRef, absence calsync.Absence)
	DeleteAbsence(ctx context.Context, ref calsync.AbsenceRef)
	TransferAbsence(ctx context.Context, from, to calsync.AbsenceRef, absence calsync.Absence)
}

// InteractionService drives the sick note lifecycle. As with applications,
// the order is persist, comment, mail, calendar; mail and calendar are
// best effort.
type InteractionService struct {
	Store       Store
	Comments    CommentStore
	Apps        application.Store
	AppComments application.CommentStore
	Persons     application.PersonStore
	Notifier    Notifier
	Signer      application.Signer
	WorkDays    *workdays.Service
	Calendar    CalendarSync
	Logger      *zap.Logger

	Now func() core.Date
}

func NewInteractionService(
	store Store,
	comments CommentStore,
	apps application.Store,
	appComments application.CommentStore,
	persons application.PersonStore,
	notifier Notifier,
	signer application.Signer,
	workDays *workdays.Service,
	calendar CalendarSync,
	logger *zap.Logger,
) *InteractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InteractionService{
		Store:       store,
		Comments:    comments,
		Apps:        apps,
		AppComments: appComments,
		Persons:     persons,
		Notifier:    notifier,
		Signer:      signer,
		WorkDays:    workDays,
		Calendar:    calendar,
		Logger:      logger,
		Now:         core.Today,
	}
}

// =============================================================================
// LIFECYCLE OPERATIONS
// =============================================================================

// Create records a new sick note. The working day count is derived from
// the sickness period and cached on the note.
func (s *InteractionService) Create(ctx context.Context, note *SickNote, creator *core.Person, comment string) (*SickNote, error) {
	if err := validateSickNote(note); err != nil {
		return nil, err
	}

	note.Active = true
	note.LastEdited = s.Now()

	days, err := s.WorkDays.GetWorkDays(note.DayLength, note.StartDate, note.EndDate)
	if err != nil {
		return nil, err
	}
	note.WorkDays = days

	if err := s.Store.SaveSickNote(ctx, note); err != nil {
		return nil, fmt.Errorf("saving sick note: %w", err)
	}

	s.Logger.Info("sick note created",
		zap.String("sick_note", string(note.ID)),
		zap.String("person", string(note.Person)),
		zap.String("period", note.Period().String()))

	if err := s.comment(ctx, note, creator.ID, CommentCreated, comment); err != nil {
		return nil, err
	}

	s.Calendar.AddAbsence(ctx, calsync.RefForSickNote(note.ID), s.absence(ctx, note))

	return note, nil
}

// Update edits the periods of an existing sick note and recomputes its
// working days.
func (s *InteractionService) Update(ctx context.Context, note *SickNote, editor *core.Person, comment string) (*SickNote, error) {
	if err := validateSickNote(note); err != nil {
		return nil, err
	}

	note.Active = true
	note.LastEdited = s.Now()

	days, err := s.WorkDays.GetWorkDays(note.DayLength, note.StartDate, note.EndDate)
	if err != nil {
		return nil, err
	}
	note.WorkDays = days

	if err := s.Store.SaveSickNote(ctx, note); err != nil {
		return nil, fmt.Errorf("saving sick note: %w", err)
	}

	s.Logger.Info("sick note updated", zap.String("sick_note", string(note.ID)))

	if err := s.comment(ctx, note, editor.ID, CommentEdited, comment); err != nil {
		return nil, err
	}

	s.Calendar.UpdateAbsence(ctx, calsync.RefForSickNote(note.ID), s.absence(ctx, note))

	return note, nil
}

// Convert turns a sick note into an allowed vacation application. The
// application is saved directly as ALLOWED, signed by the converting
// office user, and takes over the sick note's calendar event. The note
// stays stored but inactive with zero working days.
func (s *InteractionService) Convert(ctx context.Context, id core.SickNoteID, app *application.Application, converter *core.Person) (*application.Application, error) {
	note, err := s.Store.GetSickNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if !note.Active {
		return nil, &core.StateTransitionError{Operation: "convert", Current: "inactive", Required: "active"}
	}

	app.Person = note.Person
	app.Status = application.StatusAllowed
	app.Applier = converter.ID
	app.ApplicationDate = s.Now()
	app.EditedDate = s.Now()

	sig, err := s.Signer.Sign(app, converter.ID)
	if err != nil {
		return nil, fmt.Errorf("signing application: %w", err)
	}
	app.SignedDataOfBoss = sig

	if err := s.Apps.SaveApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("saving converted application: %w", err)
	}
	if err := s.AppComments.CreateApplicationComment(ctx, &application.Comment{
		Application: app.ID,
		Person:      converter.ID,
		Action:      application.CommentAllowed,
		Date:        s.Now(),
	}); err != nil {
		return nil, fmt.Errorf("recording conversion comment: %w", err)
	}

	if err := s.Notifier.SendSickNoteConvertedNotification(ctx, app); err != nil {
		s.Logger.Warn("notification failed",
			zap.String("kind", "sick note converted"),
			zap.String("application", string(app.ID)),
			zap.Error(err))
	}

	note.Active = false
	note.WorkDays = decimal.Zero
	note.LastEdited = s.Now()
	if err := s.Store.SaveSickNote(ctx, note); err != nil {
		return nil, fmt.Errorf("saving sick note: %w", err)
	}
	if err := s.comment(ctx, note, converter.ID, CommentConverted, ""); err != nil {
		return nil, err
	}

	s.Logger.Info("sick note converted",
		zap.String("sick_note", string(note.ID)),
		zap.String("application", string(app.ID)))

	s.Calendar.TransferAbsence(ctx,
		calsync.RefForSickNote(note.ID),
		calsync.RefForApplication(app.ID),
		s.applicationAbsence(ctx, app))

	return app, nil
}

// Cancel deactivates a sick note, e.g. when it was recorded by mistake.
func (s *InteractionService) Cancel(ctx context.Context, id core.SickNoteID, canceller *core.Person) (*SickNote, error) {
	note, err := s.Store.GetSickNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if !note.Active {
		return nil, &core.StateTransitionError{Operation: "cancel", Current: "inactive", Required: "active"}
	}

	note.Active = false
	note.WorkDays = decimal.Zero
	note.LastEdited = s.Now()

	if err := s.Store.SaveSickNote(ctx, note); err != nil {
		return nil, fmt.Errorf("saving sick note: %w", err)
	}

	s.Logger.Info("sick note cancelled", zap.String("sick_note", string(note.ID)))

	if err := s.comment(ctx, note, canceller.ID, CommentCancelled, ""); err != nil {
		return nil, err
	}

	s.Calendar.DeleteAbsence(ctx, calsync.RefForSickNote(note.ID))

	return note, nil
}

// =============================================================================
// QUERIES
// =============================================================================

func (s *InteractionService) GetSickNote(ctx context.Context, id core.SickNoteID) (*SickNote, error) {
	return s.Store.GetSickNote(ctx, id)
}

func (s *InteractionService) GetComments(ctx context.Context, id core.SickNoteID) ([]*Comment, error) {
	return s.Comments.FindSickNoteComments(ctx, id)
}

// =============================================================================
// HELPERS
// =============================================================================

func validateSickNote(note *SickNote) error {
	vErr := &core.ValidationError{}
	if note.Person == "" {
		vErr.Add("person", "person is mandatory")
	}
	if note.StartDate.IsZero() || note.EndDate.IsZero() {
		vErr.Add("period", "start and end date are mandatory")
	} else if note.EndDate.Before(note.StartDate) {
		vErr.Add("period", "end date must not be before start date")
	}
	switch note.Type {
	case "":
		note.Type = TypeSickNote
	case TypeSickNote, TypeSickNoteChild:
	default:
		vErr.Add("type", "unknown sick note type")
	}
	switch note.DayLength {
	case "":
		note.DayLength = core.FullDay
	case core.FullDay, core.MorningDay, core.NoonDay:
	default:
		vErr.Add("dayLength", "unknown day length")
	}
	if note.AubStartDate.IsZero() != note.AubEndDate.IsZero() {
		vErr.Add("aub", "certificate needs both start and end date")
	} else if note.HasAub() && note.AubEndDate.Before(note.AubStartDate) {
		vErr.Add("aub", "certificate end must not be before its start")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func (s *InteractionService) comment(ctx context.Context, note *SickNote, author core.PersonID, action CommentAction, text string) error {
	c := &Comment{
		SickNote: note.ID,
		Person:   author,
		Action:   action,
		Date:     s.Now(),
		Text:     text,
	}
	if err := s.Comments.CreateSickNoteComment(ctx, c); err != nil {
		return fmt.Errorf("recording %s comment: %w", action, err)
	}
	return nil
}

func (s *InteractionService) absence(ctx context.Context, note *SickNote) calsync.Absence {
	name := string(note.Person)
	if person, err := s.Persons.GetPerson(ctx, note.Person); err == nil && person != nil {
		name = person.Name
	}
	return calsync.Absence{
		Person:     note.Person,
		PersonName: name,
		Start:      note.StartDate,
		End:        note.EndDate,
		DayLength:  note.DayLength,
		Type:       calsync.TypeSickNote,
	}
}

func (s *InteractionService) applicationAbsence(ctx context.Context, app *application.Application) calsync.Absence {
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
