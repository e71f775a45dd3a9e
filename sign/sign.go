/*
Package sign makes stored applications tamper evident.

PURPOSE:
  Every application is signed when it is submitted and again when it is
  decided. The signature binds the acting person to the application's
  core fields, so a record silently edited in the database no longer
  verifies.

KEY CONCEPTS:
  - HMAC-SHA256 over a canonical rendering of the application, keyed with
    a server-side secret. Not a full PKI: the goal is tamper evidence
    inside one deployment, not third-party verifiability.
*/
package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"strings"

	"github.com/harborhq/absence-engine/application"
	"github.com/harborhq/absence-engine/core"
)

// ErrEmptySecret guards against deployments that forgot to configure one.
var ErrEmptySecret = errors.New("signing secret must not be empty")

// HMACSigner signs applications with a shared server secret. It satisfies
// application.Signer.
type HMACSigner struct {
	secret []byte
}

func NewHMACSigner(secret string) (*HMACSigner, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &HMACSigner{secret: []byte(secret)}, nil
}

// Sign produces the signature of the application's core fields for the
// acting person.
func (s *HMACSigner) Sign(app *application.Application, person core.PersonID) ([]byte, error) {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(canonical(app, person)))
	return mac.Sum(nil), nil
}

// Verify reports whether a stored signature still matches the application.
func (s *HMACSigner) Verify(app *application.Application, person core.PersonID, signature []byte) bool {
	expected, _ := s.Sign(app, person)
	return hmac.Equal(expected, signature)
}

// canonical renders the fields covered by the signature. The status is
// deliberately excluded: it changes between apply and the decision, and
// both signatures must keep verifying afterwards.
func canonical(app *application.Application, person core.PersonID) string {
	return strings.Join([]string{
		string(person),
		string(app.Person),
		app.StartDate.String(),
		app.EndDate.String(),
		string(app.DayLength),
		string(app.Category),
		app.Reason,
	}, "|")
}
