/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Person:
    PersonDTO, CreatePersonRequest

  Account:
    AccountDTO, SaveAccountRequest

  Application:
    ApplicationDTO, ApplyRequest, DecisionRequest, CommentDTO

  Sick note:
    SickNoteDTO, SaveSickNoteRequest, ConvertSickNoteRequest, SickDaysDTO

  Department:
    DepartmentDTO, SaveDepartmentRequest

  Overtime:
    OvertimeDTO, RecordOvertimeRequest

CONVENTIONS:
  Dates travel as "YYYY-MM-DD" strings, decimals as strings to avoid
  float rounding on the wire. Zero dates are omitted.

SEE ALSO:
  - handlers.go: Uses these types
  - server.go: Route definitions
*/
package api

import (
	"github.com/harborhq/absence-engine/account"
	"github.com/harborhq/absence-engine/application"
	"github.com/harborhq/absence-engine/core"
	"github.com/harborhq/absence-engine/department"
	"github.com/harborhq/absence-engine/overtime"
	"github.com/harborhq/absence-engine/sicknote"
)

// =============================================================================
// PERSON TYPES
// =============================================================================

// PersonDTO represents a person in API responses.
type PersonDTO struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// CreatePersonRequest is the request to create a person.
type CreatePersonRequest struct {
	ID    string   `json:"id,omitempty"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

func toPersonDTO(p *core.Person) PersonDTO {
	roles := make([]string, len(p.Roles))
	for i, r := range p.Roles {
		roles[i] = string(r)
	}
	return PersonDTO{ID: string(p.ID), Name: p.Name, Email: p.Email, Roles: roles}
}

// =============================================================================
// ACCOUNT TYPES
// =============================================================================

// AccountDTO represents a holidays account in API responses.
type AccountDTO struct {
	Person                           string `json:"person_id"`
	Year                             int    `json:"year"`
	ValidFrom                        string `json:"valid_from"`
	ValidTo                          string `json:"valid_to"`
	AnnualVacationDays               string `json:"annual_vacation_days"`
	VacationDays                     string `json:"vacation_days"`
	RemainingVacationDays            string `json:"remaining_vacation_days"`
	RemainingVacationDaysNotExpiring string `json:"remaining_vacation_days_not_expiring"`
	TotalLeftVacationDays            string `json:"total_left_vacation_days,omitempty"`
}

// SaveAccountRequest creates or edits a holidays account.
type SaveAccountRequest struct {
	ValidFrom                        string `json:"valid_from"`
	ValidTo                          string `json:"valid_to"`
	AnnualVacationDays               string `json:"annual_vacation_days"`
	RemainingVacationDays            string `json:"remaining_vacation_days"`
	RemainingVacationDaysNotExpiring string `json:"remaining_vacation_days_not_expiring"`
}

func toAccountDTO(a *account.Account) AccountDTO {
	return AccountDTO{
		Person:                           string(a.Person),
		Year:                             a.Year(),
		ValidFrom:                        a.ValidFrom.String(),
		ValidTo:                          a.ValidTo.String(),
		AnnualVacationDays:               a.AnnualVacationDays.String(),
		VacationDays:                     a.VacationDays.String(),
		RemainingVacationDays:            a.RemainingVacationDays.String(),
		RemainingVacationDaysNotExpiring: a.RemainingVacationDaysNotExpiring.String(),
	}
}

// =============================================================================
// APPLICATION TYPES
// =============================================================================

// ApplicationDTO represents an application for leave in API responses.
type ApplicationDTO struct {
	ID                 string `json:"id"`
	Person             string `json:"person_id"`
	Applier            string `json:"applier_id,omitempty"`
	Boss               string `json:"boss_id,omitempty"`
	Canceller          string `json:"canceller_id,omitempty"`
	Status             string `json:"status"`
	StartDate          string `json:"start_date"`
	EndDate            string `json:"end_date"`
	DayLength          string `json:"day_length"`
	Category           string `json:"category"`
	Reason             string `json:"reason,omitempty"`
	Address            string `json:"address,omitempty"`
	HolidayReplacement string `json:"holiday_replacement_id,omitempty"`
	TeamInformed       bool   `json:"team_informed"`
	ApplicationDate    string `json:"application_date,omitempty"`
	EditedDate         string `json:"edited_date,omitempty"`
	CancelDate         string `json:"cancel_date,omitempty"`
}

// ApplyRequest is the request to submit an application for leave.
type ApplyRequest struct {
	Person             string `json:"person_id"`
	StartDate          string `json:"start_date"`
	EndDate            string `json:"end_date"`
	DayLength          string `json:"day_length"`
	Category           string `json:"category"`
	Reason             string `json:"reason,omitempty"`
	Address            string `json:"address,omitempty"`
	HolidayReplacement string `json:"holiday_replacement_id,omitempty"`
	TeamInformed       bool   `json:"team_informed"`
	Comment            string `json:"comment,omitempty"`
}

// DecisionRequest carries the comment for allow/reject/cancel operations.
type DecisionRequest struct {
	Comment string `json:"comment,omitempty"`
}

// CommentDTO represents a lifecycle comment in API responses.
type CommentDTO struct {
	ID     string `json:"id"`
	Person string `json:"person_id"`
	Action string `json:"action"`
	Date   string `json:"date"`
	Text   string `json:"text,omitempty"`
}

func toApplicationDTO(a *application.Application) ApplicationDTO {
	return ApplicationDTO{
		ID:                 string(a.ID),
		Person:             string(a.Person),
		Applier:            string(a.Applier),
		Boss:               string(a.Boss),
		Canceller:          string(a.Canceller),
		Status:             string(a.Status),
		StartDate:          a.StartDate.String(),
		EndDate:            a.EndDate.String(),
		DayLength:          string(a.DayLength),
		Category:           string(a.Category),
		Reason:             a.Reason,
		Address:            a.Address,
		HolidayReplacement: string(a.HolidayReplacement),
		TeamInformed:       a.TeamInformed,
		ApplicationDate:    dateOrEmpty(a.ApplicationDate),
		EditedDate:         dateOrEmpty(a.EditedDate),
		CancelDate:         dateOrEmpty(a.CancelDate),
	}
}

func toApplicationDTOs(apps []*application.Application) []ApplicationDTO {
	dtos := make([]ApplicationDTO, len(apps))
	for i, a := range apps {
		dtos[i] = toApplicationDTO(a)
	}
	return dtos
}

func toApplicationCommentDTOs(comments []*application.Comment) []CommentDTO {
	dtos := make([]CommentDTO, len(comments))
	for i, c := range comments {
		dtos[i] = CommentDTO{
			ID:     string(c.ID),
			Person: string(c.Person),
			Action: string(c.Action),
			Date:   c.Date.String(),
			Text:   c.Text,
		}
	}
	return dtos
}

// =============================================================================
// SICK NOTE TYPES
// =============================================================================

// SickNoteDTO represents a sick note in API responses.
type SickNoteDTO struct {
	ID           string `json:"id"`
	Person       string `json:"person_id"`
	Type         string `json:"type"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	DayLength    string `json:"day_length"`
	AubStartDate string `json:"aub_start_date,omitempty"`
	AubEndDate   string `json:"aub_end_date,omitempty"`
	WorkDays     string `json:"work_days"`
	Active       bool   `json:"active"`
	LastEdited   string `json:"last_edited,omitempty"`
}

// SaveSickNoteRequest creates or edits a sick note.
type SaveSickNoteRequest struct {
	Person       string `json:"person_id"`
	Type         string `json:"type,omitempty"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	DayLength    string `json:"day_length,omitempty"`
	AubStartDate string `json:"aub_start_date,omitempty"`
	AubEndDate   string `json:"aub_end_date,omitempty"`
	Comment      string `json:"comment,omitempty"`
}

// ConvertSickNoteRequest converts a sick note into an allowed application.
type ConvertSickNoteRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	DayLength string `json:"day_length"`
	Reason    string `json:"reason,omitempty"`
}

// SickDaysDTO summarizes sick days over a period.
type SickDaysDTO struct {
	TotalSickDays string `json:"total_sick_days"`
	DaysWithAub   string `json:"days_with_aub"`
}

func toSickNoteDTO(n *sicknote.SickNote) SickNoteDTO {
	return SickNoteDTO{
		ID:           string(n.ID),
		Person:       string(n.Person),
		Type:         string(n.Type),
		StartDate:    n.StartDate.String(),
		EndDate:      n.EndDate.String(),
		DayLength:    string(n.DayLength),
		AubStartDate: dateOrEmpty(n.AubStartDate),
		AubEndDate:   dateOrEmpty(n.AubEndDate),
		WorkDays:     n.WorkDays.String(),
		Active:       n.Active,
		LastEdited:   dateOrEmpty(n.LastEdited),
	}
}

func toSickNoteDTOs(notes []*sicknote.SickNote) []SickNoteDTO {
	dtos := make([]SickNoteDTO, len(notes))
	for i, n := range notes {
		dtos[i] = toSickNoteDTO(n)
	}
	return dtos
}

func toSickNoteCommentDTOs(comments []*sicknote.Comment) []CommentDTO {
	dtos := make([]CommentDTO, len(comments))
	for i, c := range comments {
		dtos[i] = CommentDTO{
			ID:     string(c.ID),
			Person: string(c.Person),
			Action: string(c.Action),
			Date:   c.Date.String(),
			Text:   c.Text,
		}
	}
	return dtos
}

// =============================================================================
// DEPARTMENT TYPES
// =============================================================================

// DepartmentDTO represents a department in API responses.
type DepartmentDTO struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	TwoStageApproval bool     `json:"two_stage_approval"`
	LastModification string   `json:"last_modification,omitempty"`
	Members          []string `json:"members"`
	Heads            []string `json:"heads"`
}

// SaveDepartmentRequest creates or edits a department.
type SaveDepartmentRequest struct {
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	TwoStageApproval bool     `json:"two_stage_approval"`
	Members          []string `json:"members"`
	Heads            []string `json:"heads"`
}

func toDepartmentDTO(d *department.Department) DepartmentDTO {
	return DepartmentDTO{
		ID:               string(d.ID),
		Name:             d.Name,
		Description:      d.Description,
		TwoStageApproval: d.TwoStageApproval,
		LastModification: dateOrEmpty(d.LastModification),
		Members:          personIDs(d.Members),
		Heads:            personIDs(d.Heads),
	}
}

// =============================================================================
// OVERTIME TYPES
// =============================================================================

// OvertimeDTO represents an overtime record in API responses.
type OvertimeDTO struct {
	ID               string `json:"id"`
	Person           string `json:"person_id"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	Hours            string `json:"hours"`
	LastModification string `json:"last_modification,omitempty"`
}

// RecordOvertimeRequest records overtime for a person.
type RecordOvertimeRequest struct {
	Person    string `json:"person_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Hours     string `json:"hours"`
	Comment   string `json:"comment,omitempty"`
}

func toOvertimeDTO(o *overtime.Overtime) OvertimeDTO {
	return OvertimeDTO{
		ID:               string(o.ID),
		Person:           string(o.Person),
		StartDate:        o.StartDate.String(),
		EndDate:          o.EndDate.String(),
		Hours:            o.Hours.String(),
		LastModification: dateOrEmpty(o.LastModification),
	}
}

// =============================================================================
// MISC TYPES
// =============================================================================

// CreateHolidayRequest registers a public holiday.
type CreateHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func dateOrEmpty(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func personIDs(ids []core.PersonID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
