package department

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/harborhq/absence-engine/application"
	"github.com/harborhq/absence-engine/core"
)

// Service owns department CRUD and membership queries.
type Service struct {
	Store  Store
	Apps   application.Store
	Logger *zap.Logger

	Now func() core.Date
}

func NewService(store Store, apps application.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Store: store, Apps: apps, Logger: logger, Now: core.Today}
}

// =============================================================================
// CRUD
// =============================================================================

func (s *Service) Create(ctx context.Context, dept *Department) (*Department, error) {
	if err := validateDepartment(dept); err != nil {
		return nil, err
	}
	dept.LastModification = s.Now()
	if err := s.Store.SaveDepartment(ctx, dept); err != nil {
		return nil, fmt.Errorf("saving department: %w", err)
	}
	s.Logger.Info("department created",
		zap.String("department", string(dept.ID)),
		zap.String("name", dept.Name))
	return dept, nil
}

// Update rewrites an existing department. The department must exist.
func (s *Service) Update(ctx context.Context, dept *Department) (*Department, error) {
	if err := validateDepartment(dept); err != nil {
		return nil, err
	}
	if _, err := s.Store.GetDepartment(ctx, dept.ID); err != nil {
		return nil, err
	}
	dept.LastModification = s.Now()
	if err := s.Store.SaveDepartment(ctx, dept); err != nil {
		return nil, fmt.Errorf("saving department: %w", err)
	}
	s.Logger.Info("department updated", zap.String("department", string(dept.ID)))
	return dept, nil
}

// Delete removes a department. Deleting a missing department is an error.
func (s *Service) Delete(ctx context.Context, id core.DepartmentID) error {
	if _, err := s.Store.GetDepartment(ctx, id); err != nil {
		return err
	}
	if err := s.Store.DeleteDepartment(ctx, id); err != nil {
		return fmt.Errorf("deleting department: %w", err)
	}
	s.Logger.Info("department deleted", zap.String("department", string(id)))
	return nil
}

func (s *Service) Get(ctx context.Context, id core.DepartmentID) (*Department, error) {
	return s.Store.GetDepartment(ctx, id)
}

func (s *Service) GetAll(ctx context.Context) ([]*Department, error) {
	return s.Store.FindAllDepartments(ctx)
}

// =============================================================================
// MEMBERSHIP QUERIES
// =============================================================================

// GetManagedMembers returns every distinct person in the departments the
// head leads.
func (s *Service) GetManagedMembers(ctx context.Context, head core.PersonID) ([]core.PersonID, error) {
	depts, err := s.Store.FindDepartmentsByHead(ctx, head)
	if err != nil {
		return nil, err
	}
	seen := make(map[core.PersonID]struct{})
	var members []core.PersonID
	for _, dept := range depts {
		for _, m := range dept.Members {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			members = append(members, m)
		}
	}
	return members, nil
}

// IsDepartmentHeadOf reports whether head leads a department that person
// belongs to.
func (s *Service) IsDepartmentHeadOf(ctx context.Context, head, person core.PersonID) (bool, error) {
	depts, err := s.Store.FindDepartmentsByHead(ctx, head)
	if err != nil {
		return false, err
	}
	for _, dept := range depts {
		if dept.HasMember(person) {
			return true, nil
		}
	}
	return false, nil
}

// GetColleagueApplications lists the waiting and allowed applications of
// the person's department colleagues within a period. The person's own
// applications are excluded.
func (s *Service) GetColleagueApplications(ctx context.Context, person core.PersonID, period core.Period) ([]*application.Application, error) {
	depts, err := s.Store.FindDepartmentsByMember(ctx, person)
	if err != nil {
		return nil, err
	}

	seen := make(map[core.PersonID]struct{})
	var out []*application.Application
	for _, dept := range depts {
		for _, member := range dept.Members {
			if member == person {
				continue
			}
			if _, ok := seen[member]; ok {
				continue
			}
			seen[member] = struct{}{}

			apps, err := s.Apps.FindApplicationsByPersonAndPeriod(ctx, member, period)
			if err != nil {
				return nil, err
			}
			for _, app := range apps {
				if app.IsActive() {
					out = append(out, app)
				}
			}
		}
	}
	return out, nil
}

func validateDepartment(dept *Department) error {
	vErr := &core.ValidationError{}
	if dept.Name == "" {
		vErr.Add("name", "name is mandatory")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
