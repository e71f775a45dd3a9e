/*
Package sicknote tracks sickness absences.

PURPOSE:
  Office users record sick notes for staff. A sick note carries the
  sickness period, the covered working days, and optionally the period of
  the medical certificate. A sick note can later be converted into an
  allowed vacation application, e.g. when an employee chooses to spend
  vacation days instead of sick days.

KEY CONCEPTS:
  - Active flag: cancelled and converted notes stay in the store for the
    audit trail but no longer count anywhere. Their working days are
    zeroed so aggregates stay honest.
  - Conversion: produces an ALLOWED application directly, signed by the
    converting office user, and moves the calendar event over to it.
  - End of sick pay: after a configurable number of calendar days the
    employer's sick pay obligation ends; the engine surfaces notes
    approaching that point.

SEE ALSO:
  - interaction.go: create/edit/convert/cancel
  - sickdays.go: aggregates and end-of-sick-pay detection
*/
package sicknote

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/harborhq/absence-engine/core"
)

// Type distinguishes own sickness from caring for a sick child. Child
// sick days are paid differently and tracked separately.
type Type string

const (
	TypeSickNote      Type = "SICK_NOTE"
	TypeSickNoteChild Type = "SICK_NOTE_CHILD"
)

// SickNote is one recorded sickness absence.
type SickNote struct {
	ID     core.SickNoteID
	Person core.PersonID
	Type   Type

	StartDate core.Date
	EndDate   core.Date
	DayLength core.DayLength

	// AubStartDate/AubEndDate delimit the medical certificate, when one
	// was handed in.
	AubStartDate core.Date
	AubEndDate   core.Date

	// WorkDays is the cached working day count of the sickness period.
	// Zeroed when the note is cancelled or converted.
	WorkDays decimal.Decimal

	Active     bool
	LastEdited core.Date
}

// Period returns the sickness period.
func (s *SickNote) Period() core.Period {
	return core.NewPeriod(s.StartDate, s.EndDate)
}

// HasAub reports whether a medical certificate was handed in.
func (s *SickNote) HasAub() bool {
	return !s.AubStartDate.IsZero() && !s.AubEndDate.IsZero()
}

// =============================================================================
// COMMENTS
// =============================================================================

type CommentAction string

const (
	CommentCreated   CommentAction = "CREATED"
	CommentEdited    CommentAction = "EDITED"
	CommentConverted CommentAction = "CONVERTED_TO_VACATION"
	CommentCancelled CommentAction = "CANCELLED"
)

// Comment is the audit trail entry of a sick note mutation.
type Comment struct {
	ID       core.CommentID
	SickNote core.SickNoteID
	Person   core.PersonID
	Action   CommentAction
	Date     core.Date
	Text     string
}

// =============================================================================
// PORTS
// =============================================================================

// Store persists sick notes.
type Store interface {
	// GetSickNote returns the note or wraps ErrSickNoteNotFound.
	GetSickNote(ctx context.Context, id core.SickNoteID) (*SickNote, error)

	// SaveSickNote inserts or updates. A new note gets its ID assigned here.
	SaveSickNote(ctx context.Context, note *SickNote) error

	// FindActiveSickNotes returns all active notes.
	FindActiveSickNotes(ctx context.Context) ([]*SickNote, error)

	// FindSickNotesByPersonAndPeriod returns the person's notes whose
	// sickness period overlaps the given period, active or not.
	FindSickNotesByPersonAndPeriod(ctx context.Context, person core.PersonID, period core.Period) ([]*SickNote, error)
}

// CommentStore persists the audit trail.
type CommentStore interface {
	CreateSickNoteComment(ctx context.Context, comment *Comment) error
	FindSickNoteComments(ctx context.Context, id core.SickNoteID) ([]*Comment, error)
}
