/*
Package overtime records extra hours worked.

PURPOSE:
  Overtime records feed the OVERTIME vacation category: hours collected
  here can later be compensated with leave. The package validates and
  stores records and sums a person's balance per year.
*/
package overtime

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/harborhq/absence-engine/core"
)

// MaxCommentChars caps the free-text comment on a record.
const MaxCommentChars = 200

// Overtime is one recorded block of extra hours.
type Overtime struct {
	ID     core.OvertimeID
	Person core.PersonID

	StartDate core.Date
	EndDate   core.Date
	Hours     decimal.Decimal

	LastModification core.Date
}

// Period returns the span the hours were worked in.
func (o *Overtime) Period() core.Period {
	return core.NewPeriod(o.StartDate, o.EndDate)
}

// Comment is the note attached when recording or editing overtime.
type Comment struct {
	ID       core.CommentID
	Overtime core.OvertimeID
	Person   core.PersonID
	Date     core.Date
	Text     string
}

// Store persists overtime records.
type Store interface {
	// GetOvertime returns the record, or (nil, nil) when none exists.
	GetOvertime(ctx context.Context, id core.OvertimeID) (*Overtime, error)

	// SaveOvertime inserts or updates. A new record gets its ID assigned
	// here.
	SaveOvertime(ctx context.Context, overtime *Overtime) error

	// FindOvertimeByPersonAndPeriod returns the person's records whose
	// span overlaps the period.
	FindOvertimeByPersonAndPeriod(ctx context.Context, person core.PersonID, period core.Period) ([]*Overtime, error)

	CreateOvertimeComment(ctx context.Context, comment *Comment) error
	FindOvertimeComments(ctx context.Context, id core.OvertimeID) ([]*Comment, error)
}
