package service

import (
	"context"

	"github.com/okian/applytrack/internal/adapters/repository"
	"github.com/okian/applytrack/internal/domain/model"
	"github.com/okian/applytrack/pkg/logger"
)

// ListSchools searches the catalog.
func (s *Service) ListSchools(ctx context.Context, search string) ([]model.School, error) {
	store, err := s.repo("service.ListSchools")
	if err != nil {
		return nil, err
	}
	return store.ListSchools(ctx, search, s.listLimit)
}

// CreateSchool adds a catalog school.
func (s *Service) CreateSchool(ctx context.Context, sc model.School) (*model.School, error) {
	store, err := s.repo("service.CreateSchool")
	if err != nil {
		return nil, err
	}
	return store.CreateSchool(ctx, sc)
}

// ListMySchools returns the owner's list.
func (s *Service) ListMySchools(ctx context.Context, owner string, f repository.MySchoolFilter) ([]model.MySchool, error) {
	store, err := s.repo("service.ListMySchools")
	if err != nil {
		return nil, err
	}
	return store.ListMySchools(ctx, owner, f)
}

// AddMySchool puts a catalog school on the owner's list.
func (s *Service) AddMySchool(ctx context.Context, owner string, m model.MySchool) (*model.MySchool, error) {
	store, err := s.repo("service.AddMySchool")
	if err != nil {
		return nil, err
	}
	out, err := store.AddMySchool(ctx, owner, m)
	if err == nil {
		s.logger.Debug(ctx, "school added to list", logger.String("owner", owner), logger.String("id", out.ID))
	}
	return out, err
}

// GetMySchool returns one list entry.
func (s *Service) GetMySchool(ctx context.Context, owner, id string) (*model.MySchool, error) {
	store, err := s.repo("service.GetMySchool")
	if err != nil {
		return nil, err
	}
	return store.GetMySchool(ctx, owner, id)
}

// UpdateMySchool applies a patch to a list entry.
func (s *Service) UpdateMySchool(ctx context.Context, owner, id string, p repository.MySchoolPatch) (*model.MySchool, error) {
	store, err := s.repo("service.UpdateMySchool")
	if err != nil {
		return nil, err
	}
	return store.UpdateMySchool(ctx, owner, id, p)
}

// DeleteMySchool removes a list entry and its applications.
func (s *Service) DeleteMySchool(ctx context.Context, owner, id string) error {
	store, err := s.repo("service.DeleteMySchool")
	if err != nil {
		return err
	}
	return store.DeleteMySchool(ctx, owner, id)
}

// ReorderMySchools ranks the given entries by position.
func (s *Service) ReorderMySchools(ctx context.Context, owner string, ids []string) error {
	store, err := s.repo("service.ReorderMySchools")
	if err != nil {
		return err
	}
	return store.ReorderMySchools(ctx, owner, ids)
}

// ListApplications returns the owner's applications.
func (s *Service) ListApplications(ctx context.Context, owner string) ([]model.Application, error) {
	store, err := s.repo("service.ListApplications")
	if err != nil {
		return nil, err
	}
	return store.ListApplications(ctx, owner, s.listLimit)
}

// ListApplicationsForMySchool returns the applications of one list entry.
func (s *Service) ListApplicationsForMySchool(ctx context.Context, owner, mySchoolID string) ([]model.Application, error) {
	store, err := s.repo("service.ListApplicationsForMySchool")
	if err != nil {
		return nil, err
	}
	return store.ListApplicationsForMySchool(ctx, owner, mySchoolID)
}

// CreateApplication starts an application.
func (s *Service) CreateApplication(ctx context.Context, owner string, a model.Application) (*model.Application, error) {
	store, err := s.repo("service.CreateApplication")
	if err != nil {
		return nil, err
	}
	return store.CreateApplication(ctx, owner, a)
}

// GetApplication returns one application.
func (s *Service) GetApplication(ctx context.Context, owner, id string) (*model.Application, error) {
	store, err := s.repo("service.GetApplication")
	if err != nil {
		return nil, err
	}
	return store.GetApplication(ctx, owner, id)
}

// SaveApplication applies a patch. Moving into Submitted or Decided stamps
// the matching timestamp once.
func (s *Service) SaveApplication(ctx context.Context, owner, id string, p repository.ApplicationPatch) (*model.Application, error) {
	store, err := s.repo("service.SaveApplication")
	if err != nil {
		return nil, err
	}
	out, err := store.SaveApplication(ctx, owner, id, p, s.Now())
	if err == nil && p.Status != nil {
		s.logger.Info(ctx, "application status saved",
			logger.String("owner", owner),
			logger.String("id", id),
			logger.String("status", out.Status))
	}
	return out, err
}

// DeleteApplication removes an application. Its tasks are detached.
func (s *Service) DeleteApplication(ctx context.Context, owner, id string) error {
	store, err := s.repo("service.DeleteApplication")
	if err != nil {
		return err
	}
	return store.DeleteApplication(ctx, owner, id)
}

// ListTasksForApplication returns the tasks of one application, open first.
func (s *Service) ListTasksForApplication(ctx context.Context, owner, applicationID string) ([]model.Task, error) {
	store, err := s.repo("service.ListTasksForApplication")
	if err != nil {
		return nil, err
	}
	return store.ListTasksForApplication(ctx, owner, applicationID)
}

// CreateTask adds a task.
func (s *Service) CreateTask(ctx context.Context, owner string, t model.Task) (*model.Task, error) {
	store, err := s.repo("service.CreateTask")
	if err != nil {
		return nil, err
	}
	return store.CreateTask(ctx, owner, t)
}

// ToggleTask marks a task done or open.
func (s *Service) ToggleTask(ctx context.Context, owner, id string, done bool) (*model.Task, error) {
	store, err := s.repo("service.ToggleTask")
	if err != nil {
		return nil, err
	}
	return store.SetTaskDone(ctx, owner, id, done, s.Now())
}

// UpdateTask applies a patch to a task.
func (s *Service) UpdateTask(ctx context.Context, owner, id string, p repository.TaskPatch) (*model.Task, error) {
	store, err := s.repo("service.UpdateTask")
	if err != nil {
		return nil, err
	}
	return store.UpdateTask(ctx, owner, id, p)
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(ctx context.Context, owner, id string) error {
	store, err := s.repo("service.DeleteTask")
	if err != nil {
		return err
	}
	return store.DeleteTask(ctx, owner, id)
}
