/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's value types from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - schedule/aggregate.go: The view types these DTOs mirror
*/
package api

import (
	"github.com/warp/schedule-engine/schedule"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// PersonDTO represents a roster member in API responses.
type PersonDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ZoneName string `json:"zoneName"`
}

// CreatePersonRequest is the request to add a roster member.
type CreatePersonRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ZoneName string `json:"zoneName"`
}

// RuleDTO represents a recurring rule.
type RuleDTO struct {
	ID           string `json:"id"`
	TechnicianID string `json:"technicianId"`
	Days         []int  `json:"days"`
	Frequency    string `json:"frequency"`
	WeekAnchor   int    `json:"weekAnchor"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
	Status       string `json:"status"`
	Hours        string `json:"hours,omitempty"`
}

// CreateRuleRequest is the request to create a recurring rule.
// ID is assigned by the server.
type CreateRuleRequest struct {
	TechnicianID string `json:"technicianId"`
	Days         []int  `json:"days"`
	Frequency    string `json:"frequency"`
	WeekAnchor   int    `json:"weekAnchor"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
	Status       string `json:"status"`
	Hours        string `json:"hours,omitempty"`
}

// DayDocumentDTO is a day override document on the write path.
// Entry decoding accepts the legacy "id" field name.
type DayDocumentDTO struct {
	Date      string                   `json:"date"`
	Notes     string                   `json:"notes,omitempty"`
	StaffList []schedule.OverrideEntry `json:"staffList"`
}

// DayScheduleDTO is one resolved day view.
type DayScheduleDTO struct {
	Date      string                       `json:"date"`
	Notes     string                       `json:"notes"`
	Staff     []schedule.ResolvedDayStatus `json:"staff"`
	Primary   []schedule.ResolvedDayStatus `json:"primary"`
	Secondary []schedule.ResolvedDayStatus `json:"secondary"`
}

// MonthScheduleDTO is the month view plus the grid's leading blank count.
type MonthScheduleDTO struct {
	LeadingBlankDays int              `json:"leadingBlankDays"`
	Days             []DayScheduleDTO `json:"days"`
}

// CoverageDTO is one day of the coverage summary.
type CoverageDTO struct {
	Date      string `json:"date"`
	Scheduled int    `json:"scheduled"`
	Off       int    `json:"off"`
	Roster    int    `json:"roster"`
	Ratio     string `json:"ratio"`
}

// CreateReminderRequest schedules a reminder task.
type CreateReminderRequest struct {
	PersonID string `json:"personId"`
	Date     string `json:"date"`
	DueAt    string `json:"dueAt"` // RFC3339
}

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects the demo scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenarioId"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toDayScheduleDTO(ds schedule.DaySchedule) DayScheduleDTO {
	return DayScheduleDTO{
		Date:      ds.Date.Key(),
		Notes:     ds.Notes,
		Staff:     ds.Staff,
		Primary:   ds.Primary,
		Secondary: ds.Secondary,
	}
}

func toDayScheduleDTOs(days []schedule.DaySchedule) []DayScheduleDTO {
	dtos := make([]DayScheduleDTO, len(days))
	for i, d := range days {
		dtos[i] = toDayScheduleDTO(d)
	}
	return dtos
}

func toRuleDTO(r schedule.RecurringRule) RuleDTO {
	dto := RuleDTO{
		ID:           r.ID,
		TechnicianID: string(r.TechnicianID),
		Days:         r.Days,
		Frequency:    string(r.Frequency),
		WeekAnchor:   r.WeekAnchor,
		Status:       r.Status,
		Hours:        r.Hours,
	}
	if !r.StartDate.IsZero() {
		dto.StartDate = r.StartDate.Key()
	}
	if !r.EndDate.IsZero() {
		dto.EndDate = r.EndDate.Key()
	}
	return dto
}
