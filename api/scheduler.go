/*
scheduler.go - Automated sick pay watch

PURPOSE:
  Periodically checks for active sick notes whose sick pay period is about
  to run out and notifies the office so it can act before payment stops.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Delegates detection to sicknote.SickDaysService
  - Remembers already-notified notes so each one is reported once

USAGE:
  watch := NewSickPayWatch(sickDays, sender, store, logger)
  watch.Start()
  // ... later
  watch.Stop()

SEE ALSO:
  - sicknote/sickdays.go: FindReachingEndOfSickPay
  - mail/service.go: Mail wording conventions
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/harborhq/absence-engine/core"
	"github.com/harborhq/absence-engine/mail"
	"github.com/harborhq/absence-engine/sicknote"
)

// SickPayWatch notifies the office about sick notes nearing the end of
// sick pay.
type SickPayWatch struct {
	SickDays      *sicknote.SickDaysService
	Sender        mail.Sender
	Persons       mail.PersonDirectory
	Logger        *zap.Logger
	CheckInterval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex // lifecycle only; never taken by the worker

	notifyMu sync.Mutex
	notified map[core.SickNoteID]bool
}

// NewSickPayWatch creates a new watch with a daily check interval.
func NewSickPayWatch(sickDays *sicknote.SickDaysService, sender mail.Sender, persons mail.PersonDirectory, logger *zap.Logger) *SickPayWatch {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SickPayWatch{
		SickDays:      sickDays,
		Sender:        sender,
		Persons:       persons,
		Logger:        logger,
		CheckInterval: 24 * time.Hour,
		stop:          make(chan struct{}),
		notified:      make(map[core.SickNoteID]bool),
	}
}

// Start begins the watch.
func (w *SickPayWatch) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.ticker = time.NewTicker(w.CheckInterval)
	w.wg.Add(1)
	go w.run()

	w.Logger.Info("sick pay watch started", zap.Duration("interval", w.CheckInterval))
}

// Stop stops the watch.
func (w *SickPayWatch) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ticker != nil {
		w.ticker.Stop()
		close(w.stop)
		w.wg.Wait()
		w.Logger.Info("sick pay watch stopped")
	}
}

func (w *SickPayWatch) run() {
	defer w.wg.Done()

	// Run immediately on start
	w.RunNow()

	for {
		select {
		case <-w.ticker.C:
			w.RunNow()
		case <-w.stop:
			return
		}
	}
}

// RunNow triggers an immediate check (for testing/admin).
func (w *SickPayWatch) RunNow() {
	ctx := context.Background()

	notes, err := w.SickDays.FindReachingEndOfSickPay(ctx)
	if err != nil {
		w.Logger.Error("sick pay check failed", zap.Error(err))
		return
	}

	office, err := w.Persons.FindPersonsByRole(ctx, core.RoleOffice)
	if err != nil {
		w.Logger.Error("failed to resolve office recipients", zap.Error(err))
		return
	}
	if len(office) == 0 {
		return
	}

	recipients := make([]string, len(office))
	for i, p := range office {
		recipients[i] = p.Email
	}

	for _, note := range notes {
		if w.alreadyNotified(note.ID) {
			continue
		}

		body := fmt.Sprintf(
			"The sick note of person %s (since %s) is approaching the end of continued sick pay.",
			note.Person, note.StartDate)
		err := w.Sender.Send(ctx, mail.Mail{
			To:      recipients,
			Subject: "End of sick pay approaching",
			Body:    body,
		})
		if err != nil {
			w.Logger.Warn("failed to send sick pay notification",
				zap.String("sick_note", string(note.ID)), zap.Error(err))
		}
	}
}

// alreadyNotified marks the note as reported and tells whether it had been
// reported before. Guarded by its own mutex so a send loop in flight never
// contends with Stop, which holds the lifecycle mutex across wg.Wait.
func (w *SickPayWatch) alreadyNotified(id core.SickNoteID) bool {
	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()

	if w.notified[id] {
		return true
	}
	w.notified[id] = true
	return false
}
