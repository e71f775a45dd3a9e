/*
handlers.go - HTTP API handlers for the absence engine

PURPOSE:
  Exposes the absence engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain services.

ENDPOINTS:
  Persons:
    GET    /api/persons                      List all persons
    POST   /api/persons                      Create person
    GET    /api/persons/{id}                 Get person details
    GET    /api/persons/{id}/account/{year}  Get holidays account
    PUT    /api/persons/{id}/account/{year}  Create or edit holidays account
    GET    /api/persons/{id}/sickdays        Sick days overview for a year

  Applications:
    POST   /api/applications                 Submit application for leave
    GET    /api/applications                 List by person and year
    GET    /api/applications/waiting         List waiting applications
    GET    /api/applications/colleagues      Colleague absences for a year
    GET    /api/applications/{id}            Get application
    GET    /api/applications/{id}/comments   Lifecycle comments
    POST   /api/applications/{id}/allow      Allow (boss/department head)
    POST   /api/applications/{id}/reject     Reject (boss/department head)
    POST   /api/applications/{id}/cancel     Cancel or revoke

  Sick notes:
    POST   /api/sicknotes                    Create sick note (office)
    GET    /api/sicknotes/end-of-sick-pay    Notes nearing end of sick pay
    GET    /api/sicknotes/{id}               Get sick note
    PUT    /api/sicknotes/{id}               Edit sick note (office)
    POST   /api/sicknotes/{id}/convert       Convert to allowed vacation
    POST   /api/sicknotes/{id}/cancel        Cancel sick note
    GET    /api/sicknotes/{id}/comments      Lifecycle comments

  Departments, overtime, holidays:
    see server.go for the remaining routes

AUTHENTICATION:
  The acting person is taken from the X-Person-Id header and loaded from
  the store. There is no session handling; an upstream gateway is expected
  to authenticate and set the header. Authorization decisions (who may
  allow an application, who may manage sick notes) are made against the
  acting person's roles and department headships.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 403: Acting person lacks the required role or headship
  - 404: Entity not found
  - 409: Illegal lifecycle transition
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - scheduler.go: Background sick pay watch
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harborhq/absence-engine/account"
	"github.com/harborhq/absence-engine/application"
	"github.com/harborhq/absence-engine/core"
	"github.com/harborhq/absence-engine/department"
	"github.com/harborhq/absence-engine/overtime"
	"github.com/harborhq/absence-engine/sicknote"
	"github.com/harborhq/absence-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        *sqlite.Store
	Applications *application.InteractionService
	Accounts     *account.InteractionService
	VacationDays *account.VacationDaysService
	SickNotes    *sicknote.InteractionService
	SickDays     *sicknote.SickDaysService
	Departments  *department.Service
	Overtime     *overtime.Service
	Logger       *zap.Logger
}

// actingPerson resolves the person making the request from the
// X-Person-Id header.
func (h *Handler) actingPerson(r *http.Request) (*core.Person, error) {
	id := r.Header.Get("X-Person-Id")
	if id == "" {
		return nil, errors.New("missing X-Person-Id header")
	}
	return h.Store.GetPerson(r.Context(), core.PersonID(id))
}

// =============================================================================
// PERSON HANDLERS
// =============================================================================

// ListPersons returns all persons.
func (h *Handler) ListPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := h.Store.FindAllPersons(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list persons", err)
		return
	}

	dtos := make([]PersonDTO, len(persons))
	for i, p := range persons {
		dtos[i] = toPersonDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePerson creates a new person.
func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are mandatory", nil)
		return
	}

	roles := make([]core.Role, len(req.Roles))
	for i, role := range req.Roles {
		roles[i] = core.Role(role)
	}
	if len(roles) == 0 {
		roles = []core.Role{core.RoleUser}
	}

	person := &core.Person{
		ID:    core.PersonID(req.ID),
		Name:  req.Name,
		Email: req.Email,
		Roles: roles,
	}
	if err := h.Store.SavePerson(r.Context(), person); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create person", err)
		return
	}

	writeJSON(w, http.StatusCreated, toPersonDTO(person))
}

// GetPerson returns a single person.
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	person, err := h.Store.GetPerson(r.Context(), core.PersonID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "Failed to get person", err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonDTO(person))
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// GetAccount returns the holidays account of a person for a year,
// including the vacation days still left.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	person := core.PersonID(chi.URLParam(r, "id"))
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	viewer, err := h.actingPerson(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unknown acting person", err)
		return
	}
	allowed, err := h.Departments.CanAccessPersonData(ctx, viewer, person)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check access", err)
		return
	}
	if !allowed {
		writeError(w, http.StatusForbidden, "Not allowed to view this person's data", nil)
		return
	}

	acc, err := h.Accounts.GetHolidaysAccount(ctx, year, person)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get account", err)
		return
	}
	if acc == nil {
		writeError(w, http.StatusNotFound, "Holidays account not found", nil)
		return
	}

	dto := toAccountDTO(acc)
	left, err := h.VacationDays.CalculateTotalLeftVacationDays(ctx, acc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to calculate left vacation days", err)
		return
	}
	dto.TotalLeftVacationDays = left.String()

	writeJSON(w, http.StatusOK, dto)
}

// SaveAccount creates or edits the holidays account of a person for a year.
// Entitlement is pro-rated from the validity period.
func (h *Handler) SaveAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	person := core.PersonID(chi.URLParam(r, "id"))
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	actor, err := h.actingPerson(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unknown acting person", err)
		return
	}
	if !actor.HasRole(core.RoleOffice) {
		writeError(w, http.StatusForbidden, "Only the office may manage holidays accounts", nil)
		return
	}

	var req SaveAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	validFrom, err := core.ParseDate(req.ValidFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid valid_from (use YYYY-MM-DD)", err)
		return
	}
	validTo, err := core.ParseDate(req.ValidTo)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid valid_to (use YYYY-MM-DD)", err)
		return
	}
	annual, err := decimal.NewFromString(req.AnnualVacationDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid annual_vacation_days", err)
		return
	}
	remaining, notExpiring := decimal.Zero, decimal.Zero
	if req.RemainingVacationDays != "" {
		if remaining, err = decimal.NewFromString(req.RemainingVacationDays); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid remaining_vacation_days", err)
			return
		}
	}
	if req.RemainingVacationDaysNotExpiring != "" {
		if notExpiring, err = decimal.NewFromString(req.RemainingVacationDaysNotExpiring); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid remaining_vacation_days_not_expiring", err)
			return
		}
	}

	existing, err := h.Accounts.GetHolidaysAccount(ctx, year, person)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get account", err)
		return
	}

	var acc *account.Account
	if existing != nil {
		acc, err = h.Accounts.EditHolidaysAccount(ctx, existing, validFrom, validTo, annual, remaining, notExpiring)
	} else {
		acc, err = h.Accounts.CreateHolidaysAccount(ctx, person, validFrom, validTo, annual, remaining, notExpiring)
	}
	if err != nil {
		writeDomainError(w, "Failed to save account", err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountDTO(acc))
}

// =============================================================================
// APPLICATION HANDLERS
// =============================================================================

// SubmitApplication submits a new application for leave. The acting person
// is the applier; applying for someone else requires the office role or a
// department headship over the applicant.
func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	applier, err := h.actingPerson(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unknown acting person", err)
		return
	}

	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := core.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err := core.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}

	person := core.PersonID(req.Person)
	if person == "" {
		person = applier.ID
	}
	if person != applier.ID {
		allowed, err := h.Departments.CanAccessPersonData(ctx, applier, person)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to check access", err)
			return
		}
		if !allowed {
			writeError(w, http.StatusForbidden, "Not allowed to apply on behalf of this person", nil)
			return
		}
	}

	app := &application.Application{
		Person:             person,
		StartDate:          start,
		EndDate:            end,
		DayLength:          core.DayLength(req.DayLength),
		Category:           core.VacationCategory(req.Category),
		Reason:             req.Reason,
		Address:            req.Address,
		HolidayReplacement: core.PersonID(req.HolidayReplacement),
		TeamInformed:       req.TeamInformed,
	}

	saved, err := h.Applications.Apply(ctx, app, applier, req.Comment)
	if err != nil {
		writeDomainError(w, "Failed to submit application", err)
		return
	}

	writeJSON(w, http.StatusCreated, toApplicationDTO(saved))
}

// GetApplication returns a single application.
func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	app, err := h.Applications.GetApplication(r.Context(), core.ApplicationID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "Failed to get application", err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationDTO(app))
}

// ListApplications returns the applications of a person for a year.
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	person := core.PersonID(r.URL.Query().Get("person"))
	if person == "" {
		writeError(w, http.StatusBadRequest, "person query parameter is mandatory", nil)
		return
	}
	year, err := queryYear(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	viewer, err := h.actingPerson(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unknown acting person", err)
		return
	}
	allowed, err := h.Departments.CanAccessPersonData(ctx, viewer, person)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check access", err)
		return
	}
	if !allowed {
		writeError(w, http.StatusForbidden, "Not allowed to view this person's data", nil)
		return
	}

	apps, err := h.Applications.GetApplicationsByPersonAndYear(ctx, person, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list applications", err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationDTOs(apps))
}

// ListWaitingApplications returns all applications waiting for a decision.
func (h *Handler) ListWaitingApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.Applications.GetWaitingApplications(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list waiting applications", err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationDTOs(apps))
}

// ListColleagueApplications returns the active absences of the acting
// person's department colleagues for a year.
func (h *Handler) ListColleagueApplications(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.actingPerson(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unknown acting person", err)
		return
	}
	year, err := queryYear(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	apps, err := h.Departments.GetColleagueApplications(r.Context(), viewer.ID, core.YearPeriod(year))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list colleague applications", err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationDTOs(apps))
}

// GetApplicationComments returns the lifecycle comments of an application.
func (h *Handler) GetApplicationComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.Applications.GetComments(r.Context(), core.ApplicationID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get comments", err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationCommentDTOs(comments))
}

// AllowApplication allows a waiting application.
func (h *Handler) AllowApplication(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Applications.Allow)
}

// RejectApplication rejects a waiting application.
func (h *Handler) RejectApplication(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Applications.Reject)
}

type decisionFunc func(ctx context.Context, id core.ApplicationID, boss *core.Person, comment string) (*application.Application, error)

// decide carries the shared permission check and plumbing of allow/reject.
func (h *Handler) decide(w http.ResponseWriter, r *http.Request, op decisionFunc) {
	ctx := r.Context()
	id := core.ApplicationID(chi.URLParam(r, "id"))

	decider, err := h.actingPerson(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unknown acting person", err)
		return
	}

	app, err := h.Applications.GetApplication(ctx, id)
	if err != nil {
		writeDomainError(w, "Failed to get application", err)
		return
	}

	allowed, err := h.Departments.CanDecideApplication(ctx, decider, app.Person)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check permission", err)
		return
	}
	if !allowed {
		writeError(w, http.StatusForbidden, "Not allowed to decide this application", nil)
		return
	}

	var req DecisionRequest
	json.NewDecoder(r.Body).Decode(&req)

	decided, err := op(ctx, id, decider, req.Comment)
	if err != nil {
		writeDomainError(w, "Failed to decide application", err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationDTO(decided))
}

// CancelApplication cancels (or revokes) an application. A person may
// cancel their own applications; the office may cancel anyone's.
func (h *Handler) CancelApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := core.ApplicationID(chi.URLParam(r, "id"))

	canceller, err := h.actingPerson(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unknown acting person", err)
		return
	}

	app, err := h.Applications.GetApplication(ctx, id)
	if err != nil {
		writeDomainError(w, "Failed to get application", err)
		return
	}
	if app.Person != canceller.ID && !canceller.HasRole(core.RoleOffice) {
		writeError(w, http.StatusForbidden, "Not allowed to cancel this application", nil)
		return
	}

	var req DecisionRequest
	json.NewDecoder(r.Body).Decode(&req)

	cancelled, err := h.Applications.Cancel(ctx, id, canceller, req.Comment)
	if err != nil {
		writeDomainError(w, "Failed to cancel application", err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationDTO(cancelled))
}

// =============================================================================
// SICK NOTE HANDLERS
// =============================================================================

// CreateSickNote creates a new sick note. Office only.
func (h *Handler) CreateSickNote(w http.ResponseWriter, r *http.Request) {
	creator, err := h.actingPerson(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unknown acting person", err)
		return
	}
	if !department.CanManageSickNotes(creator) {
		writeError(w, http.StatusForbidden, "Only the office may manage sick notes", nil)
		return
	}

	note, comment, err := decodeSickNote(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	created, err := h.SickNotes.Create(r.Context(), note, creator, comment)
	if err != nil {
		writeDomainError(w, "Failed to create sick note", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSickNoteDTO(created))
}

// UpdateSickNote edits an existing sick note. Office only.
func (h *Handler) UpdateSickNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	editor, err := h.actingPerson(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unknown acting person", err)
		return
	}
	if !department.CanManageSickNotes(editor) {
		writeError(w, http.StatusForbidden, "Only the office may manage sick notes", nil)
		return
	}

	existing, err := h.SickNotes.GetSickNote(ctx, core.SickNoteID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "Failed to get sick note", err)
		return
	}

	note, comment, err := decodeSickNote(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	note.ID = existing.ID
	if note.Person == "" {
		note.Person = existing.Person
	}

	updated, err := h.SickNotes.Update(ctx, note, editor, comment)
	if err != nil {
		writeDomainError(w, "Failed to update sick note", err)
		return
	}
	writeJSON(w, http.StatusOK, toSickNoteDTO(updated))
}

// GetSickNote returns a single sick note.
func (h *Handler) GetSickNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.SickNotes.GetSickNote(r.Context(), core.SickNoteID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "Failed to get sick note", err)
		return
	}
	writeJSON(w, http.StatusOK, toSickNoteDTO(note))
}

// GetSickNoteComments returns the lifecycle comments of a sick note.
func (h *Handler) GetSickNoteComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.SickNotes.GetComments(r.Context(), core.SickNoteID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get comments", err)
		return
	}
	writeJSON(w, http.StatusOK, toSickNoteCommentDTOs(comments))
}

// ConvertSickNote converts a sick note into an allowed vacation
// application. Office only.
func (h *Handler) ConvertSickNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := core.SickNoteID(chi.URLParam(r, "id"))

	converter, err := h.actingPerson(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unknown acting person", err)
		return
	}
	if !department.CanManageSickNotes(converter) {
		writeError(w, http.StatusForbidden, "Only the office may convert sick notes", nil)
		return
	}

	var req ConvertSickNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	note, err := h.SickNotes.GetSickNote(ctx, id)
	if err != nil {
		writeDomainError(w, "Failed to get sick note", err)
		return
	}

	start, end := note.StartDate, note.EndDate
	if req.StartDate != "" {
		if start, err = core.ParseDate(req.StartDate); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
			return
		}
	}
	if req.EndDate != "" {
		if end, err = core.ParseDate(req.EndDate); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
			return
		}
	}
	dayLength := core.FullDay
	if req.DayLength != "" {
		dayLength = core.DayLength(req.DayLength)
	}

	app := &application.Application{
		Person:    note.Person,
		StartDate: start,
		EndDate:   end,
		DayLength: dayLength,
		Category:  core.CategoryHoliday,
		Reason:    req.Reason,
	}

	converted, err := h.SickNotes.Convert(ctx, id, app, converter)
	if err != nil {
		writeDomainError(w, "Failed to convert sick note", err)
		return
	}
	writeJSON(w, http.StatusCreated, toApplicationDTO(converted))
}

// CancelSickNote deactivates a sick note. Office only.
func (h *Handler) CancelSickNote(w http.ResponseWriter, r *http.Request) {
	canceller, err := h.actingPerson(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unknown acting person", err)
		return
	}
	if !department.CanManageSickNotes(canceller) {
		writeError(w, http.StatusForbidden, "Only the office may manage sick notes", nil)
		return
	}

	note, err := h.SickNotes.Cancel(r.Context(), core.SickNoteID(chi.URLParam(r, "id")), canceller)
	if err != nil {
		writeDomainError(w, "Failed to cancel sick note", err)
		return
	}
	writeJSON(w, http.StatusOK, toSickNoteDTO(note))
}

// GetSickDays returns a person's sick days overview for a year.
func (h *Handler) GetSickDays(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	person := core.PersonID(chi.URLParam(r, "id"))
	year, err := queryYear(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	viewer, err := h.actingPerson(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unknown acting person", err)
		return
	}
	allowed, err := h.Departments.CanAccessPersonData(ctx, viewer, person)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check access", err)
		return
	}
	if !allowed {
		writeError(w, http.StatusForbidden, "Not allowed to view this person's data", nil)
		return
	}

	overview, err := h.SickDays.GetOverview(ctx, person, core.YearPeriod(year))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get sick days overview", err)
		return
	}
	writeJSON(w, http.StatusOK, SickDaysDTO{
		TotalSickDays: overview.TotalSickDays.String(),
		DaysWithAub:   overview.DaysWithAub.String(),
	})
}

// ListEndOfSickPay returns active sick notes nearing the end of sick pay.
// Office only.
func (h *Handler) ListEndOfSickPay(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.actingPerson(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unknown acting person", err)
		return
	}
	if !department.CanManageSickNotes(viewer) {
		writeError(w, http.StatusForbidden, "Only the office may view the sick pay watch", nil)
		return
	}

	notes, err := h.SickDays.FindReachingEndOfSickPay(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to find notes reaching end of sick pay", err)
		return
	}
	writeJSON(w, http.StatusOK, toSickNoteDTOs(notes))
}

// =============================================================================
// DEPARTMENT HANDLERS
// =============================================================================

// ListDepartments returns all departments.
func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Departments.GetAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list departments", err)
		return
	}
	dtos := make([]DepartmentDTO, len(departments))
	for i, d := range departments {
		dtos[i] = toDepartmentDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetDepartment returns a single department.
func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	dept, err := h.Departments.Get(r.Context(), core.DepartmentID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "Failed to get department", err)
		return
	}
	writeJSON(w, http.StatusOK, toDepartmentDTO(dept))
}

// CreateDepartment creates a new department. Office only.
func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	h.saveDepartment(w, r, "")
}

// UpdateDepartment edits an existing department. Office only.
func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	h.saveDepartment(w, r, core.DepartmentID(chi.URLParam(r, "id")))
}

func (h *Handler) saveDepartment(w http.ResponseWriter, r *http.Request, id core.DepartmentID) {
	actor, err := h.actingPerson(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unknown acting person", err)
		return
	}
	if !department.CanManageDepartments(actor) {
		writeError(w, http.StatusForbidden, "Only the office may manage departments", nil)
		return
	}

	var req SaveDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	dept := &department.Department{
		ID:               id,
		Name:             req.Name,
		Description:      req.Description,
		TwoStageApproval: req.TwoStageApproval,
		Members:          toPersonIDs(req.Members),
		Heads:            toPersonIDs(req.Heads),
	}

	var saved *department.Department
	if id == "" {
		saved, err = h.Departments.Create(r.Context(), dept)
	} else {
		saved, err = h.Departments.Update(r.Context(), dept)
	}
	if err != nil {
		writeDomainError(w, "Failed to save department", err)
		return
	}

	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, toDepartmentDTO(saved))
}

// DeleteDepartment removes a department. Office only.
func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actingPerson(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unknown acting person", err)
		return
	}
	if !department.CanManageDepartments(actor) {
		writeError(w, http.StatusForbidden, "Only the office may manage departments", nil)
		return
	}

	if err := h.Departments.Delete(r.Context(), core.DepartmentID(chi.URLParam(r, "id"))); err != nil {
		writeDomainError(w, "Failed to delete department", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// OVERTIME HANDLERS
// =============================================================================

// RecordOvertime records overtime for a person.
func (h *Handler) RecordOvertime(w http.ResponseWriter, r *http.Request) {
	author, err := h.actingPerson(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unknown acting person", err)
		return
	}

	var req RecordOvertimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := core.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err := core.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}
	hours, err := decimal.NewFromString(req.Hours)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hours", err)
		return
	}

	person := core.PersonID(req.Person)
	if person == "" {
		person = author.ID
	}

	recorded, err := h.Overtime.Record(r.Context(), &overtime.Overtime{
		Person:    person,
		StartDate: start,
		EndDate:   end,
		Hours:     hours,
	}, author.ID, req.Comment)
	if err != nil {
		writeDomainError(w, "Failed to record overtime", err)
		return
	}
	writeJSON(w, http.StatusCreated, toOvertimeDTO(recorded))
}

// GetOvertimeTotal returns a person's total overtime hours for a year.
func (h *Handler) GetOvertimeTotal(w http.ResponseWriter, r *http.Request) {
	person := core.PersonID(r.URL.Query().Get("person"))
	if person == "" {
		writeError(w, http.StatusBadRequest, "person query parameter is mandatory", nil)
		return
	}
	year, err := queryYear(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	total, err := h.Overtime.TotalHoursForYear(r.Context(), person, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to calculate overtime total", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"person_id":   string(person),
		"year":        year,
		"total_hours": total.String(),
	})
}

// GetOvertimeComments returns the comments of an overtime record.
func (h *Handler) GetOvertimeComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.Overtime.GetComments(r.Context(), core.OvertimeID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get comments", err)
		return
	}
	dtos := make([]CommentDTO, len(comments))
	for i, c := range comments {
		dtos[i] = CommentDTO{
			ID:     string(c.ID),
			Person: string(c.Person),
			Date:   c.Date.String(),
			Text:   c.Text,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// CreateHoliday registers a public holiday. Office only.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actingPerson(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unknown acting person", err)
		return
	}
	if !actor.HasRole(core.RoleOffice) {
		writeError(w, http.StatusForbidden, "Only the office may manage public holidays", nil)
		return
	}

	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	day, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	if err := h.Store.SavePublicHoliday(r.Context(), day, req.Name); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save public holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"date": day.String(), "name": req.Name})
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeSickNote(r *http.Request) (*sicknote.SickNote, string, error) {
	var req SaveSickNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, "", err
	}

	note := &sicknote.SickNote{
		Person:    core.PersonID(req.Person),
		Type:      sicknote.Type(req.Type),
		DayLength: core.DayLength(req.DayLength),
	}
	var err error
	if note.StartDate, err = core.ParseDate(req.StartDate); err != nil {
		return nil, "", err
	}
	if note.EndDate, err = core.ParseDate(req.EndDate); err != nil {
		return nil, "", err
	}
	if req.AubStartDate != "" {
		if note.AubStartDate, err = core.ParseDate(req.AubStartDate); err != nil {
			return nil, "", err
		}
	}
	if req.AubEndDate != "" {
		if note.AubEndDate, err = core.ParseDate(req.AubEndDate); err != nil {
			return nil, "", err
		}
	}
	return note, req.Comment, nil
}

func queryYear(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return core.Today().Year(), nil
	}
	return strconv.Atoi(raw)
}

func toPersonIDs(ids []string) []core.PersonID {
	out := make([]core.PersonID, len(ids))
	for i, id := range ids {
		out[i] = core.PersonID(id)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	var vErr *core.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Fields: vErr.Fields})
	case core.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, core.ErrInvalidStateTransition):
		writeError(w, http.StatusConflict, message, err)
	case core.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
