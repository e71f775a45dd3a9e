package api_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harborhq/absence-engine/api"
	"github.com/harborhq/absence-engine/core"
	"github.com/harborhq/absence-engine/mail"
	"github.com/harborhq/absence-engine/sicknote"
	"github.com/harborhq/absence-engine/store/sqlite"
	"github.com/harborhq/absence-engine/workdays"
)

func date(y, m, d int) core.Date {
	return core.NewDate(y, time.Month(m), d)
}

// =============================================================================
// TEST SETUP
// =============================================================================

// blockingSender stalls its first Send until released. Later sends pass
// straight through.
type blockingSender struct {
	firstStarted chan struct{}
	release      chan struct{}
	once         sync.Once
	sent         atomic.Int32
}

func newBlockingSender() *blockingSender {
	return &blockingSender{
		firstStarted: make(chan struct{}),
		release:      make(chan struct{}),
	}
}

func (s *blockingSender) Send(context.Context, mail.Mail) error {
	s.sent.Add(1)
	s.once.Do(func() {
		close(s.firstStarted)
		<-s.release
	})
	return nil
}

type countingSender struct {
	sent atomic.Int32
}

func (s *countingSender) Send(context.Context, mail.Mail) error {
	s.sent.Add(1)
	return nil
}

// newSickPayFixture seeds a store with an office recipient and two active
// sick notes that both sit inside the end-of-sick-pay window on 2022-04-04.
func newSickPayFixture(t *testing.T, sender mail.Sender) *api.SickPayWatch {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	require.NoError(t, store.SavePerson(ctx, &core.Person{
		ID: "office-1", Name: "Office", Email: "office@example.org",
		Roles: []core.Role{core.RoleOffice},
	}))

	require.NoError(t, store.SaveSickNote(ctx, &sicknote.SickNote{
		Person: "p-1", Type: sicknote.TypeSickNote, DayLength: core.FullDay,
		Active: true, StartDate: date(2022, 1, 3), EndDate: date(2022, 3, 31),
	}))
	require.NoError(t, store.SaveSickNote(ctx, &sicknote.SickNote{
		Person: "p-2", Type: sicknote.TypeSickNote, DayLength: core.FullDay,
		Active: true, StartDate: date(2022, 3, 1), EndDate: date(2022, 4, 30),
	}))

	sickDays := sicknote.NewSickDaysService(store, workdays.NewService(store), 42, 7)
	sickDays.Now = func() core.Date { return date(2022, 4, 4) }

	watch := api.NewSickPayWatch(sickDays, sender, store, zap.NewNop())
	watch.CheckInterval = time.Hour
	return watch
}

// =============================================================================
// SHUTDOWN
// =============================================================================

func TestSickPayWatch_StopWhileSending(t *testing.T) {
	// GIVEN: A running watch whose first notification send is stalled on a
	//        slow mail transport
	sender := newBlockingSender()
	watch := newSickPayFixture(t, sender)

	watch.Start()

	select {
	case <-sender.firstStarted:
	case <-time.After(3 * time.Second):
		t.Fatal("no notification was attempted")
	}

	// WHEN: Stop is called while the send loop is still in flight
	stopped := make(chan struct{})
	go func() {
		watch.Stop()
		close(stopped)
	}()

	// let Stop take the lifecycle lock and wait on the worker
	time.Sleep(50 * time.Millisecond)
	close(sender.release)

	// THEN: Stop returns once the loop drains instead of deadlocking
	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return while a notification send was in flight")
	}
	assert.Equal(t, int32(2), sender.sent.Load())
}

// =============================================================================
// DEDUPLICATION
// =============================================================================

func TestSickPayWatch_NotifiesEachNoteOnce(t *testing.T) {
	// GIVEN: Two notes inside the notification window
	sender := &countingSender{}
	watch := newSickPayFixture(t, sender)

	// WHEN: The check runs repeatedly
	watch.RunNow()
	watch.RunNow()
	watch.RunNow()

	// THEN: Each note was reported exactly once
	assert.Equal(t, int32(2), sender.sent.Load())
}
