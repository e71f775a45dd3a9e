package department

import (
	"context"

	"github.com/harborhq/absence-engine/core"
)

// =============================================================================
// ACCESS RULES
// =============================================================================

// CanAccessPersonData decides whether a signed-in user may see another
// person's absences and account. Office and boss roles see everyone,
// department heads see their members, everyone sees themselves.
func (s *Service) CanAccessPersonData(ctx context.Context, viewer *core.Person, person core.PersonID) (bool, error) {
	if viewer.ID == person {
		return true, nil
	}
	if viewer.HasRole(core.RoleOffice) || viewer.HasRole(core.RoleBoss) {
		return true, nil
	}
	if viewer.HasRole(core.RoleDepartmentHead) {
		return s.IsDepartmentHeadOf(ctx, viewer.ID, person)
	}
	return false, nil
}

// CanDecideApplication decides whether a user may allow or reject an
// application of the given person. Deciding one's own application is
// never allowed.
func (s *Service) CanDecideApplication(ctx context.Context, decider *core.Person, applicant core.PersonID) (bool, error) {
	if decider.ID == applicant {
		return false, nil
	}
	if decider.HasRole(core.RoleBoss) {
		return true, nil
	}
	if decider.HasRole(core.RoleDepartmentHead) {
		return s.IsDepartmentHeadOf(ctx, decider.ID, applicant)
	}
	return false, nil
}

// RequiresSecondStage reports whether an allow by the decider only counts
// as the first approval stage for the applicant's application. True when
// the applicant belongs to a department with two stage approval and the
// decider carries nothing beyond department headship.
func (s *Service) RequiresSecondStage(ctx context.Context, decider *core.Person, applicant core.PersonID) (bool, error) {
	if decider.HasRole(core.RoleBoss) || decider.HasRole(core.RoleOffice) {
		return false, nil
	}
	depts, err := s.Store.FindDepartmentsByMember(ctx, applicant)
	if err != nil {
		return false, err
	}
	for _, dept := range depts {
		if dept.TwoStageApproval {
			return true, nil
		}
	}
	return false, nil
}

// CanManageSickNotes reports whether a user may record, edit, convert or
// cancel sick notes. Only office users may.
func CanManageSickNotes(user *core.Person) bool {
	return user.HasRole(core.RoleOffice)
}

// CanManageDepartments reports whether a user may create, edit or delete
// departments.
func CanManageDepartments(user *core.Person) bool {
	return user.HasRole(core.RoleOffice)
}
