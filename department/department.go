/*
Package department groups people and scopes visibility.

PURPOSE:
  Departments bundle staff under department heads. Heads see and manage
  the absences of their members without needing a global privileged role.
  Members see their colleagues' upcoming leave so replacements can be
  arranged.

KEY CONCEPTS:
  - Membership and headship are independent lists: a head need not be a
    member, and a person can head several departments.
  - Deleting a department that does not exist is a hard error, unlike the
    forgiving account lookups. The caller clearly operated on stale data.

SEE ALSO:
  - permissions.go: who may see whose data
*/
package department

import (
	"context"

	"github.com/harborhq/absence-engine/core"
)

// Department groups people.
type Department struct {
	ID          core.DepartmentID
	Name        string
	Description string

	// TwoStageApproval requires a second privileged decision before an
	// application of a member counts as allowed.
	TwoStageApproval bool

	LastModification core.Date

	Members []core.PersonID
	Heads   []core.PersonID
}

// HasMember reports whether a person belongs to the department.
func (d *Department) HasMember(person core.PersonID) bool {
	for _, m := range d.Members {
		if m == person {
			return true
		}
	}
	return false
}

// HasHead reports whether a person heads the department.
func (d *Department) HasHead(person core.PersonID) bool {
	for _, h := range d.Heads {
		if h == person {
			return true
		}
	}
	return false
}

// Store persists departments including their member and head lists.
type Store interface {
	// GetDepartment returns the department or wraps ErrDepartmentNotFound.
	GetDepartment(ctx context.Context, id core.DepartmentID) (*Department, error)

	// SaveDepartment inserts or updates, member and head lists included.
	// A new department gets its ID assigned here.
	SaveDepartment(ctx context.Context, dept *Department) error

	// DeleteDepartment removes the department and its lists.
	DeleteDepartment(ctx context.Context, id core.DepartmentID) error

	FindAllDepartments(ctx context.Context) ([]*Department, error)

	// FindDepartmentsByMember returns every department the person is a
	// member of.
	FindDepartmentsByMember(ctx context.Context, person core.PersonID) ([]*Department, error)

	// FindDepartmentsByHead returns every department the person heads.
	FindDepartmentsByHead(ctx context.Context, person core.PersonID) ([]*Department, error)
}
