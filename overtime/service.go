package overtime

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harborhq/absence-engine/core"
)

// Service validates and stores overtime records.
type Service struct {
	Store  Store
	Logger *zap.Logger

	Now func() core.Date
}

func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Store: store, Logger: logger, Now: core.Today}
}

// Record validates and saves an overtime record with its comment.
func (s *Service) Record(ctx context.Context, overtime *Overtime, author core.PersonID, comment string) (*Overtime, error) {
	if err := Validate(overtime, comment); err != nil {
		return nil, err
	}

	overtime.LastModification = s.Now()
	if err := s.Store.SaveOvertime(ctx, overtime); err != nil {
		return nil, fmt.Errorf("saving overtime: %w", err)
	}

	s.Logger.Info("overtime recorded",
		zap.String("overtime", string(overtime.ID)),
		zap.String("person", string(overtime.Person)),
		zap.String("hours", overtime.Hours.String()))

	if comment != "" {
		c := &Comment{
			Overtime: overtime.ID,
			Person:   author,
			Date:     s.Now(),
			Text:     comment,
		}
		if err := s.Store.CreateOvertimeComment(ctx, c); err != nil {
			return nil, fmt.Errorf("recording overtime comment: %w", err)
		}
	}

	return overtime, nil
}

// TotalHoursForYear sums the person's recorded hours in a calendar year.
// Records are attributed to the year their span starts in.
func (s *Service) TotalHoursForYear(ctx context.Context, person core.PersonID, year int) (decimal.Decimal, error) {
	records, err := s.Store.FindOvertimeByPersonAndPeriod(ctx, person, core.YearPeriod(year))
	if err != nil {
		return decimal.Zero, fmt.Errorf("finding overtime for %s/%d: %w", person, year, err)
	}

	total := decimal.Zero
	for _, r := range records {
		if r.StartDate.Year() != year {
			continue
		}
		total = total.Add(r.Hours)
	}
	return total, nil
}

// GetComments returns the notes attached to a record.
func (s *Service) GetComments(ctx context.Context, id core.OvertimeID) ([]*Comment, error) {
	return s.Store.FindOvertimeComments(ctx, id)
}

// Validate checks an overtime record and its comment.
func Validate(overtime *Overtime, comment string) error {
	vErr := &core.ValidationError{}
	if overtime.Person == "" {
		vErr.Add("person", "person is mandatory")
	}
	if overtime.StartDate.IsZero() || overtime.EndDate.IsZero() {
		vErr.Add("period", "start and end date are mandatory")
	} else if overtime.EndDate.Before(overtime.StartDate) {
		vErr.Add("period", "end date must not be before start date")
	}
	if overtime.Hours.IsZero() || overtime.Hours.IsNegative() {
		vErr.Add("hours", "hours must be positive")
	}
	if len([]rune(comment)) > MaxCommentChars {
		vErr.Add("comment", fmt.Sprintf("comment must not exceed %d characters", MaxCommentChars))
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
