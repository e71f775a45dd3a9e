/*
Package calsync mirrors absences into an external calendar.

PURPOSE:
  Keeps a provider-side calendar event in step with every vacation
  application and sick note, and remembers which event belongs to which
  absence through persistent mappings.

KEY CONCEPTS:
  - Provider: the actual calendar backend (Exchange, Google, ...). The
    engine ships a no-op provider so sync can be disabled entirely.
  - AbsenceMapping: (absence id, absence type) -> provider event id.
    A mapping exists only when the provider actually returned an event id.
  - Best effort: calendar failures are logged and swallowed. A leave
    application must never fail because the calendar is down.

EXAMPLE:
  svc := calsync.NewService(provider, mappingStore, logger)
  svc.AddAbsence(ctx, calsync.RefForApplication(appID), absence)

SEE ALSO:
  - application: drives sync on apply/allow/reject/cancel
  - sicknote: drives sync on create/edit/convert/cancel
*/
package calsync

import (
	"context"

	"go.uber.org/zap"

	"github.com/harborhq/absence-engine/core"
)

// AbsenceType distinguishes what kind of absence an event mirrors.
type AbsenceType string

const (
	TypeVacation AbsenceType = "VACATION"
	TypeSickNote AbsenceType = "SICKNOTE"
)

// Absence is the provider-facing view of an absence.
type Absence struct {
	Person     core.PersonID
	PersonName string
	Start      core.Date
	End        core.Date
	DayLength  core.DayLength
	Type       AbsenceType
}

// EventSubject renders the calendar event title.
func (a Absence) EventSubject() string {
	switch a.Type {
	case TypeSickNote:
		return a.PersonName + " sick"
	default:
		return a.PersonName + " on vacation"
	}
}

// AbsenceRef identifies the domain entity an event belongs to.
type AbsenceRef struct {
	ID   string
	Type AbsenceType
}

func RefForApplication(id core.ApplicationID) AbsenceRef {
	return AbsenceRef{ID: string(id), Type: TypeVacation}
}

func RefForSickNote(id core.SickNoteID) AbsenceRef {
	return AbsenceRef{ID: string(id), Type: TypeSickNote}
}

// AbsenceMapping links an absence to its provider event.
type AbsenceMapping struct {
	AbsenceID string
	Type      AbsenceType
	EventID   string
}

// =============================================================================
// PORTS
// =============================================================================

// Provider is the calendar backend.
type Provider interface {
	// AddEvent creates an event and returns its id. An empty id with a nil
	// error means the provider declined to create one (e.g. sync disabled).
	AddEvent(ctx context.Context, absence Absence) (string, error)

	// UpdateEvent rewrites an existing event.
	UpdateEvent(ctx context.Context, eventID string, absence Absence) error

	// DeleteEvent removes an event.
	DeleteEvent(ctx context.Context, eventID string) error
}

// NoopProvider disables calendar sync. It never produces event ids, so no
// mappings are ever created.
type NoopProvider struct{}

func (NoopProvider) AddEvent(context.Context, Absence) (string, error) { return "", nil }
func (NoopProvider) UpdateEvent(context.Context, string, Absence) error { return nil }
func (NoopProvider) DeleteEvent(context.Context, string) error { return nil }

// MappingStore persists absence mappings.
type MappingStore interface {
	// GetAbsenceMapping returns the mapping for an absence, or (nil, nil)
	// when none exists.
	GetAbsenceMapping(ctx context.Context, absenceID string, typ AbsenceType) (*AbsenceMapping, error)
	CreateAbsenceMapping(ctx context.Context, mapping *AbsenceMapping) error
	DeleteAbsenceMapping(ctx context.Context, absenceID string, typ AbsenceType) error
}

// =============================================================================
// SERVICE
// =============================================================================

// Service coordinates provider calls and mapping bookkeeping. All methods
// are best effort: failures are logged, never returned.
type Service struct {
	provider Provider
	mappings MappingStore
	logger   *zap.Logger
}

func NewService(provider Provider, mappings MappingStore, logger *zap.Logger) *Service {
	if provider == nil {
		provider = NoopProvider{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, mappings: mappings, logger: logger}
}

// AddAbsence creates a calendar event for the absence. A mapping is
// recorded only when the provider returned an event id.
func (s *Service) AddAbsence(ctx context.Context, ref AbsenceRef, absence Absence) {
	eventID, err := s.provider.AddEvent(ctx, absence)
	if err != nil {
		s.logger.Warn("calendar add failed",
			zap.String("absence", ref.ID),
			zap.String("type", string(ref.Type)),
			zap.Error(err))
		return
	}
	if eventID == "" {
		return
	}
	mapping := &AbsenceMapping{AbsenceID: ref.ID, Type: ref.Type, EventID: eventID}
	if err := s.mappings.CreateAbsenceMapping(ctx, mapping); err != nil {
		s.logger.Warn("absence mapping create failed",
			zap.String("absence", ref.ID),
			zap.Error(err))
	}
}

// UpdateAbsence rewrites the event mapped to the absence, if any.
func (s *Service) UpdateAbsence(ctx context.Context, ref AbsenceRef, absence Absence) {
	mapping, err := s.mappings.GetAbsenceMapping(ctx, ref.ID, ref.Type)
	if err != nil {
		s.logger.Warn("absence mapping lookup failed", zap.String("absence", ref.ID), zap.Error(err))
		return
	}
	if mapping == nil {
		return
	}
	if err := s.provider.UpdateEvent(ctx, mapping.EventID, absence); err != nil {
		s.logger.Warn("calendar update failed",
			zap.String("absence", ref.ID),
			zap.String("event", mapping.EventID),
			zap.Error(err))
	}
}

// DeleteAbsence removes the mapped event and the mapping itself.
func (s *Service) DeleteAbsence(ctx context.Context, ref AbsenceRef) {
	mapping, err := s.mappings.GetAbsenceMapping(ctx, ref.ID, ref.Type)
	if err != nil {
		s.logger.Warn("absence mapping lookup failed", zap.String("absence", ref.ID), zap.Error(err))
		return
	}
	if mapping == nil {
		return
	}
	if err := s.provider.DeleteEvent(ctx, mapping.EventID); err != nil {
		s.logger.Warn("calendar delete failed",
			zap.String("absence", ref.ID),
			zap.String("event", mapping.EventID),
			zap.Error(err))
	}
	if err := s.mappings.DeleteAbsenceMapping(ctx, ref.ID, ref.Type); err != nil {
		s.logger.Warn("absence mapping delete failed", zap.String("absence", ref.ID), zap.Error(err))
	}
}

// TransferAbsence moves the event of one absence onto another, keeping the
// same provider event. Used when a sick note turns into a vacation: the
// event is rewritten in place and the mapping is re-keyed to the new owner.
func (s *Service) TransferAbsence(ctx context.Context, from, to AbsenceRef, absence Absence) {
	mapping, err := s.mappings.GetAbsenceMapping(ctx, from.ID, from.Type)
	if err != nil {
		s.logger.Warn("absence mapping lookup failed", zap.String("absence", from.ID), zap.Error(err))
		return
	}
	if mapping == nil {
		return
	}
	if err := s.provider.UpdateEvent(ctx, mapping.EventID, absence); err != nil {
		s.logger.Warn("calendar update failed",
			zap.String("absence", from.ID),
			zap.String("event", mapping.EventID),
			zap.Error(err))
	}
	if err := s.mappings.DeleteAbsenceMapping(ctx, from.ID, from.Type); err != nil {
		s.logger.Warn("absence mapping delete failed", zap.String("absence", from.ID), zap.Error(err))
		return
	}
	next := &AbsenceMapping{AbsenceID: to.ID, Type: to.Type, EventID: mapping.EventID}
	if err := s.mappings.CreateAbsenceMapping(ctx, next); err != nil {
		s.logger.Warn("absence mapping create failed", zap.String("absence", to.ID), zap.Error(err))
	}
}
