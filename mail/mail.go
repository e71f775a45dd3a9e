/*
Package mail turns lifecycle events into notifications.

PURPOSE:
  Builds and dispatches the mails the absence lifecycle produces:
  confirmations to applicants, decision requests to privileged users, and
  decision results back to applicants. The actual transport sits behind
  the Sender port; the default sender only logs, which doubles as the
  dev-mode outbox.

KEY CONCEPTS:
  - Recipient resolution: bosses are everyone with the BOSS role, looked
    up through the person directory at send time.
  - Senders must be side-effect safe to retry; the lifecycle treats every
    send as best effort.

SEE ALSO:
  - application: defines the Notifier port this package implements
*/
package mail

import (
	"context"

	"go.uber.org/zap"

	"github.com/harborhq/absence-engine/core"
)

// Mail is one outgoing message.
type Mail struct {
	// From is the configured sender identity, e.g.
	// "Absence Engine <absence@localhost>".
	From    string
	To      []string
	Subject string
	Body    string
}

// Sender is the mail transport.
type Sender interface {
	Send(ctx context.Context, mail Mail) error
}

// LogSender writes mails to the log instead of sending them. Default for
// deployments without an SMTP setup.
type LogSender struct {
	Logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{Logger: logger}
}

func (s *LogSender) Send(_ context.Context, mail Mail) error {
	s.Logger.Info("outgoing mail",
		zap.String("from", mail.From),
		zap.Strings("to", mail.To),
		zap.String("subject", mail.Subject),
		zap.String("body", mail.Body))
	return nil
}

// PersonDirectory resolves mail recipients.
type PersonDirectory interface {
	GetPerson(ctx context.Context, id core.PersonID) (*core.Person, error)
	FindPersonsByRole(ctx context.Context, role core.Role) ([]*core.Person, error)
}
