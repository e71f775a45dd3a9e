package overtime_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborhq/absence-engine/core"
	"github.com/harborhq/absence-engine/overtime"
)

func date(y, m, d int) core.Date {
	return core.NewDate(y, time.Month(m), d)
}

// =============================================================================
// TEST SETUP
// =============================================================================

type fakeOvertimeStore struct {
	records  map[core.OvertimeID]*overtime.Overtime
	comments []*overtime.Comment
	nextID   int
}

func newFakeOvertimeStore() *fakeOvertimeStore {
	return &fakeOvertimeStore{records: make(map[core.OvertimeID]*overtime.Overtime)}
}

func (s *fakeOvertimeStore) GetOvertime(_ context.Context, id core.OvertimeID) (*overtime.Overtime, error) {
	r, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *fakeOvertimeStore) SaveOvertime(_ context.Context, r *overtime.Overtime) error {
	if r.ID == "" {
		s.nextID++
		r.ID = core.OvertimeID(fmt.Sprintf("ot-%d", s.nextID))
	}
	cp := *r
	s.records[r.ID] = &cp
	return nil
}

func (s *fakeOvertimeStore) FindOvertimeByPersonAndPeriod(_ context.Context, person core.PersonID, period core.Period) ([]*overtime.Overtime, error) {
	var out []*overtime.Overtime
	for _, r := range s.records {
		if r.Person == person && r.Period().Overlaps(period) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeOvertimeStore) CreateOvertimeComment(_ context.Context, c *overtime.Comment) error {
	s.comments = append(s.comments, c)
	return nil
}

func (s *fakeOvertimeStore) FindOvertimeComments(_ context.Context, id core.OvertimeID) ([]*overtime.Comment, error) {
	var out []*overtime.Comment
	for _, c := range s.comments {
		if c.Overtime == id {
			out = append(out, c)
		}
	}
	return out, nil
}

func record(person core.PersonID, start, end core.Date, hours string) *overtime.Overtime {
	return &overtime.Overtime{
		Person:    person,
		StartDate: start,
		EndDate:   end,
		Hours:     decimal.RequireFromString(hours),
	}
}

// =============================================================================
// RECORD
// =============================================================================

func TestRecord_SavesWithComment(t *testing.T) {
	// GIVEN: A valid overtime record with a comment
	// WHEN: Recording
	// THEN: Saved with a modification stamp and the comment attached

	store := newFakeOvertimeStore()
	svc := overtime.NewService(store, nil)
	svc.Now = func() core.Date { return date(2022, 3, 1) }

	r, err := svc.Record(context.Background(), record("p-1", date(2022, 2, 21), date(2022, 2, 25), "7.5"), "p-1", "release week")
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, date(2022, 3, 1), r.LastModification)

	comments, err := svc.GetComments(context.Background(), r.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "release week", comments[0].Text)
}

func TestRecord_NoComment_NoCommentRow(t *testing.T) {
	store := newFakeOvertimeStore()
	svc := overtime.NewService(store, nil)

	r, err := svc.Record(context.Background(), record("p-1", date(2022, 2, 21), date(2022, 2, 25), "3"), "p-1", "")
	require.NoError(t, err)

	comments, _ := svc.GetComments(context.Background(), r.ID)
	assert.Empty(t, comments)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	valid := record("p-1", date(2022, 2, 21), date(2022, 2, 25), "7.5")

	t.Run("valid record passes", func(t *testing.T) {
		assert.NoError(t, overtime.Validate(valid, "ok"))
	})

	t.Run("reversed period", func(t *testing.T) {
		r := record("p-1", date(2022, 2, 25), date(2022, 2, 21), "7.5")
		err := overtime.Validate(r, "")
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Fields, "period")
	})

	t.Run("zero hours", func(t *testing.T) {
		r := record("p-1", date(2022, 2, 21), date(2022, 2, 25), "0")
		err := overtime.Validate(r, "")
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Fields, "hours")
	})

	t.Run("negative hours", func(t *testing.T) {
		r := record("p-1", date(2022, 2, 21), date(2022, 2, 25), "-2")
		err := overtime.Validate(r, "")
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Fields, "hours")
	})

	t.Run("comment too long", func(t *testing.T) {
		err := overtime.Validate(valid, strings.Repeat("x", overtime.MaxCommentChars+1))
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Fields, "comment")
	})

	t.Run("comment at the limit", func(t *testing.T) {
		assert.NoError(t, overtime.Validate(valid, strings.Repeat("x", overtime.MaxCommentChars)))
	})
}

// =============================================================================
// BALANCE
// =============================================================================

func TestTotalHoursForYear(t *testing.T) {
	// GIVEN: Two 2022 records, one 2021 record, and a record starting in
	//        2021 that spills into 2022
	// WHEN: Summing 2022
	// THEN: Only records starting in 2022 count

	store := newFakeOvertimeStore()
	svc := overtime.NewService(store, nil)
	ctx := context.Background()

	_, err := svc.Record(ctx, record("p-1", date(2022, 2, 21), date(2022, 2, 25), "7.5"), "p-1", "")
	require.NoError(t, err)
	_, err = svc.Record(ctx, record("p-1", date(2022, 6, 6), date(2022, 6, 10), "4"), "p-1", "")
	require.NoError(t, err)
	_, err = svc.Record(ctx, record("p-1", date(2021, 3, 1), date(2021, 3, 5), "10"), "p-1", "")
	require.NoError(t, err)
	_, err = svc.Record(ctx, record("p-1", date(2021, 12, 27), date(2022, 1, 7), "6"), "p-1", "")
	require.NoError(t, err)

	total, err := svc.TotalHoursForYear(ctx, "p-1", 2022)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("11.5").Equal(total), "got %s", total)
}
