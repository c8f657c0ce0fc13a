package services

import (
	"context"
	"errors"

	"task-tracker/internal/apperr"
	"task-tracker/internal/models"
	"task-tracker/internal/repository"
)

// ProjectStore is the project side of the persistence layer.
type ProjectStore interface {
	FindProjectByID(ctx context.Context, id int64) (*models.Project, error)
}

// TaskStore is the task side of the persistence layer.
type TaskStore interface {
	ListTasksByProject(ctx context.Context, projectID int64, limit, offset int) ([]models.Task, error)
	CreateTask(ctx context.Context, fields models.TaskFields, projectID int64) (*models.Task, error)
	CountTasksByProject(ctx context.Context, projectID int64) (int64, error)
}

// PageConfig bounds the task listing page size.
type PageConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// Page is a requested window of a task listing.
type Page struct {
	Limit  int
	Offset int
}

type ProjectService struct {
	projects ProjectStore
	tasks    TaskStore
	paging   PageConfig
}

func NewProjectService(projects ProjectStore, tasks TaskStore, paging PageConfig) *ProjectService {
	return &ProjectService{
		projects: projects,
		tasks:    tasks,
		paging:   paging,
	}
}

func (s *ProjectService) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	project, err := s.projects.FindProjectByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("project %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

// GetProjectTasks returns one page of the project's tasks. The page is
// validated before the project lookup so bad input never reaches the store.
func (s *ProjectService) GetProjectTasks(ctx context.Context, projectID int64, page Page) ([]models.Task, error) {
	page, err := s.NormalizePage(page)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.tasks.ListTasksByProject(ctx, projectID, page.Limit, page.Offset)
}

// CountProjectTasks returns the total number of tasks in a project. It does
// not check that the project exists; callers list a page first.
func (s *ProjectService) CountProjectTasks(ctx context.Context, projectID int64) (int64, error) {
	return s.tasks.CountTasksByProject(ctx, projectID)
}

// CreateTask validates raw against the writable task fields and inserts the
// task under projectID. The project id always comes from the caller, never
// from raw.
func (s *ProjectService) CreateTask(ctx context.Context, projectID int64, raw map[string]any) (*models.Task, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	fields, err := ParseTaskFields(raw)
	if err != nil {
		return nil, err
	}
	return s.tasks.CreateTask(ctx, fields, projectID)
}

// NormalizePage rejects negative values, applies the default limit for zero,
// and clamps oversized limits to the configured maximum.
func (s *ProjectService) NormalizePage(page Page) (Page, error) {
	if page.Limit < 0 {
		return Page{}, apperr.Validation("limit must not be negative")
	}
	if page.Offset < 0 {
		return Page{}, apperr.Validation("offset must not be negative")
	}
	if page.Limit == 0 {
		page.Limit = s.paging.DefaultLimit
	}
	if s.paging.MaxLimit > 0 && page.Limit > s.paging.MaxLimit {
		page.Limit = s.paging.MaxLimit
	}
	if page.Limit <= 0 {
		page.Limit = 1
	}
	return page, nil
}
