package sicknote

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/harborhq/absence-engine/core"
	"github.com/harborhq/absence-engine/workdays"
)

// =============================================================================
// SICK DAY AGGREGATES
// =============================================================================

// Overview aggregates a person's sick days in a period.
type Overview struct {
	// TotalSickDays is the working days covered by active sick notes,
	// clipped to the period.
	TotalSickDays decimal.Decimal

	// DaysWithAub is the share of those days backed by a certificate.
	DaysWithAub decimal.Decimal
}

// SickDaysService computes aggregates over sick notes.
type SickDaysService struct {
	Store    Store
	WorkDays *workdays.Service

	// SickPayLimitDays is after how many calendar days of sickness the
	// employer's sick pay ends.
	SickPayLimitDays int

	// NotificationDays is how many days ahead of the limit a note should
	// be surfaced.
	NotificationDays int

	Now func() core.Date
}

func NewSickDaysService(store Store, workDays *workdays.Service, sickPayLimitDays, notificationDays int) *SickDaysService {
	return &SickDaysService{
		Store:            store,
		WorkDays:         workDays,
		SickPayLimitDays: sickPayLimitDays,
		NotificationDays: notificationDays,
		Now:              core.Today,
	}
}

// GetOverview sums a person's sick days within a period. Inactive notes
// never count. Notes spilling over the period boundary only count the
// inside part.
func (s *SickDaysService) GetOverview(ctx context.Context, person core.PersonID, period core.Period) (*Overview, error) {
	notes, err := s.Store.FindSickNotesByPersonAndPeriod(ctx, person, period)
	if err != nil {
		return nil, fmt.Errorf("finding sick notes for %s: %w", person, err)
	}

	overview := &Overview{TotalSickDays: decimal.Zero, DaysWithAub: decimal.Zero}
	for _, note := range notes {
		if !note.Active {
			continue
		}
		clipped, ok := note.Period().Clip(period)
		if !ok {
			continue
		}
		days, err := s.WorkDays.GetWorkDays(note.DayLength, clipped.Start, clipped.End)
		if err != nil {
			return nil, err
		}
		overview.TotalSickDays = overview.TotalSickDays.Add(days)

		if note.HasAub() {
			aub, ok := core.NewPeriod(note.AubStartDate, note.AubEndDate).Clip(period)
			if !ok {
				continue
			}
			aubDays, err := s.WorkDays.GetWorkDays(note.DayLength, aub.Start, aub.End)
			if err != nil {
				return nil, err
			}
			overview.DaysWithAub = overview.DaysWithAub.Add(aubDays)
		}
	}
	return overview, nil
}

// FindReachingEndOfSickPay returns the active sick notes whose sickness
// has lasted long enough that sick pay ends within the notification
// window, or already ended.
func (s *SickDaysService) FindReachingEndOfSickPay(ctx context.Context) ([]*SickNote, error) {
	notes, err := s.Store.FindActiveSickNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("finding active sick notes: %w", err)
	}

	today := s.Now()
	var out []*SickNote
	for _, note := range notes {
		// day the sick pay obligation runs out
		limitDay := note.StartDate.AddDays(s.SickPayLimitDays - 1)
		if limitDay.After(note.EndDate) {
			continue
		}
		if today.AfterOrEqual(limitDay.AddDays(-s.NotificationDays)) {
			out = append(out, note)
		}
	}
	return out, nil
}
