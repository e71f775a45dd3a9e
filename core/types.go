/*
Package core provides the shared domain primitives of the absence engine.

PURPOSE:
  This package contains the types every other package builds on: persons and
  their roles, day-granularity dates and periods, day lengths, vacation
  categories, and the typed identifiers used as foreign keys between
  repositories.

KEY CONCEPTS IN THIS FILE (types.go):
  - Person: an employee with a set of roles
  - Role: USER, BOSS, DEPARTMENT_HEAD, OFFICE
  - DayLength: full day, morning, noon (weight 1 or 0.5)
  - VacationCategory: holiday, special leave, unpaid leave, overtime

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for every day/hour quantity, never float64
  2. Type safety: distinct id types prevent mixing person/application ids
  3. Explicit joins: entities reference each other by id only, repositories
     resolve the relation

SEE ALSO:
  - date.go: Date and calendar arithmetic
  - errors.go: sentinel and structured errors
*/
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PersonID string
type ApplicationID string
type SickNoteID string
type DepartmentID string
type OvertimeID string
type CommentID string

// =============================================================================
// PERSON - referenced by id everywhere else, owned by the person store
// =============================================================================

type Role string

const (
	RoleUser           Role = "USER"
	RoleBoss           Role = "BOSS"
	RoleDepartmentHead Role = "DEPARTMENT_HEAD"
	RoleOffice         Role = "OFFICE"
)

type Person struct {
	ID    PersonID
	Name  string
	Email string
	Roles []Role
}

// HasRole reports whether the person carries the given role.
func (p *Person) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RolesFromString parses a comma separated role list as stored in the database.
func RolesFromString(s string) []Role {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	roles := make([]Role, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			roles = append(roles, Role(p))
		}
	}
	return roles
}

// RolesToString renders a role list for storage.
func RolesToString(roles []Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

// =============================================================================
// DAY LENGTH - how much of a day an absence covers
// =============================================================================

type DayLength string

const (
	FullDay    DayLength = "FULL"
	MorningDay DayLength = "MORNING"
	NoonDay    DayLength = "NOON"
)

var (
	dayWeightFull = decimal.NewFromInt(1)
	dayWeightHalf = decimal.NewFromFloat(0.5)
)

// Weight returns the day fraction this length represents.
func (d DayLength) Weight() decimal.Decimal {
	if d == MorningDay || d == NoonDay {
		return dayWeightHalf
	}
	return dayWeightFull
}

// =============================================================================
// VACATION CATEGORY
// =============================================================================

type VacationCategory string

const (
	CategoryHoliday  VacationCategory = "HOLIDAY"
	CategorySpecial  VacationCategory = "SPECIALLEAVE"
	CategoryUnpaid   VacationCategory = "UNPAIDLEAVE"
	CategoryOvertime VacationCategory = "OVERTIME"
)
