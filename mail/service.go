package mail

import (
	"context"
	"fmt"

	"github.com/harborhq/absence-engine/application"
	"github.com/harborhq/absence-engine/core"
)

// Service builds the lifecycle mails. It satisfies application.Notifier
// and sicknote.Notifier.
type Service struct {
	Sender  Sender
	Persons PersonDirectory

	// From is stamped on every outgoing mail.
	From string
}

func NewService(sender Sender, persons PersonDirectory, from string) *Service {
	return &Service{Sender: sender, Persons: persons, From: from}
}

// send stamps the sender identity and hands off to the transport.
func (s *Service) send(ctx context.Context, m Mail) error {
	m.From = s.From
	return s.Sender.Send(ctx, m)
}

// =============================================================================
// APPLICATION MAILS
// =============================================================================

func (s *Service) SendConfirmation(ctx context.Context, app *application.Application) error {
	person, err := s.Persons.GetPerson(ctx, app.Person)
	if err != nil {
		return err
	}
	return s.send(ctx, Mail{
		To:      []string{person.Email},
		Subject: "Your leave application was submitted",
		Body: fmt.Sprintf("Hello %s,\n\nyour application for leave from %s to %s was submitted and awaits a decision.",
			person.Name, app.StartDate, app.EndDate),
	})
}

func (s *Service) SendAppliedOnBehalfNotification(ctx context.Context, app *application.Application) error {
	person, err := s.Persons.GetPerson(ctx, app.Person)
	if err != nil {
		return err
	}
	return s.send(ctx, Mail{
		To:      []string{person.Email},
		Subject: "A leave application was submitted for you",
		Body: fmt.Sprintf("Hello %s,\n\nan application for leave from %s to %s was submitted on your behalf.",
			person.Name, app.StartDate, app.EndDate),
	})
}

func (s *Service) SendNewApplicationNotification(ctx context.Context, app *application.Application) error {
	bosses, err := s.Persons.FindPersonsByRole(ctx, core.RoleBoss)
	if err != nil {
		return err
	}
	if len(bosses) == 0 {
		return nil
	}
	person, err := s.Persons.GetPerson(ctx, app.Person)
	if err != nil {
		return err
	}
	return s.send(ctx, Mail{
		To:      addresses(bosses),
		Subject: "New leave application awaiting decision",
		Body: fmt.Sprintf("%s applied for leave from %s to %s.",
			person.Name, app.StartDate, app.EndDate),
	})
}

func (s *Service) SendTemporaryAllowedNotification(ctx context.Context, app *application.Application, comment string) error {
	person, err := s.Persons.GetPerson(ctx, app.Person)
	if err != nil {
		return err
	}
	return s.send(ctx, Mail{
		To:      []string{person.Email},
		Subject: "Your leave application was provisionally approved",
		Body: withComment(fmt.Sprintf("Hello %s,\n\nyour application for leave from %s to %s was approved by your department head and awaits a final decision.",
			person.Name, app.StartDate, app.EndDate), comment),
	})
}

func (s *Service) SendAllowedNotification(ctx context.Context, app *application.Application, comment string) error {
	person, err := s.Persons.GetPerson(ctx, app.Person)
	if err != nil {
		return err
	}
	return s.send(ctx, Mail{
		To:      []string{person.Email},
		Subject: "Your leave application was approved",
		Body: withComment(fmt.Sprintf("Hello %s,\n\nyour application for leave from %s to %s was approved.",
			person.Name, app.StartDate, app.EndDate), comment),
	})
}

func (s *Service) SendRejectedNotification(ctx context.Context, app *application.Application, comment string) error {
	person, err := s.Persons.GetPerson(ctx, app.Person)
	if err != nil {
		return err
	}
	return s.send(ctx, Mail{
		To:      []string{person.Email},
		Subject: "Your leave application was rejected",
		Body: withComment(fmt.Sprintf("Hello %s,\n\nyour application for leave from %s to %s was rejected.",
			person.Name, app.StartDate, app.EndDate), comment),
	})
}

func (s *Service) SendCancelledNotification(ctx context.Context, app *application.Application, cancelledByOther bool, comment string) error {
	person, err := s.Persons.GetPerson(ctx, app.Person)
	if err != nil {
		return err
	}
	subject := "Your leave application was cancelled"
	body := fmt.Sprintf("Hello %s,\n\nyour application for leave from %s to %s was cancelled.",
		person.Name, app.StartDate, app.EndDate)
	if cancelledByOther {
		subject = "Your leave application was cancelled for you"
		body = fmt.Sprintf("Hello %s,\n\nyour application for leave from %s to %s was cancelled on your behalf.",
			person.Name, app.StartDate, app.EndDate)
	}
	return s.send(ctx, Mail{
		To:      []string{person.Email},
		Subject: subject,
		Body:    withComment(body, comment),
	})
}

func (s *Service) SendHolidayReplacementNotification(ctx context.Context, app *application.Application) error {
	replacement, err := s.Persons.GetPerson(ctx, app.HolidayReplacement)
	if err != nil {
		return err
	}
	person, err := s.Persons.GetPerson(ctx, app.Person)
	if err != nil {
		return err
	}
	return s.send(ctx, Mail{
		To:      []string{replacement.Email},
		Subject: "You are the stand-in for an approved leave",
		Body: fmt.Sprintf("Hello %s,\n\nyou are the stand-in for %s from %s to %s.",
			replacement.Name, person.Name, app.StartDate, app.EndDate),
	})
}

// =============================================================================
// SICK NOTE MAILS
// =============================================================================

func (s *Service) SendSickNoteConvertedNotification(ctx context.Context, app *application.Application) error {
	person, err := s.Persons.GetPerson(ctx, app.Person)
	if err != nil {
		return err
	}
	return s.send(ctx, Mail{
		To:      []string{person.Email},
		Subject: "Your sick note was converted to vacation",
		Body: fmt.Sprintf("Hello %s,\n\nyour sick note from %s to %s was converted into approved leave.",
			person.Name, app.StartDate, app.EndDate),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func addresses(persons []*core.Person) []string {
	out := make([]string, 0, len(persons))
	for _, p := range persons {
		if p.Email != "" {
			out = append(out, p.Email)
		}
	}
	return out
}

func withComment(body, comment string) string {
	if comment == "" {
		return body
	}
	return body + "\n\nComment: " + comment
}
