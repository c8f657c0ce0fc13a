package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"task-tracker/internal/apperr"
	"task-tracker/internal/models"
)

// ErrNotFound is returned when a lookup matches no row. It is kept apart from
// execution failures so callers can tell a miss from a broken store.
var ErrNotFound = errors.New("record not found")

// ProjectRepository provides methods to interact with the project table.
type ProjectRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewProjectRepository creates a new ProjectRepository with the provided GORM connection.
// Each query runs under the given timeout.
func NewProjectRepository(db *gorm.DB, timeout time.Duration) *ProjectRepository {
	return &ProjectRepository{db: db, timeout: timeout}
}

// FindProjectByID retrieves a Project by its ID.
func (r *ProjectRepository) FindProjectByID(ctx context.Context, id int64) (*models.Project, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var row projectRow
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Infrastructure(errors.Wrapf(err, "select project %d", id), "find project")
	}
	return toProject(row), nil
}

// CreateProject inserts a project. Projects are owned by another system; this
// exists for seeding and tests.
func (r *ProjectRepository) CreateProject(ctx context.Context, name, description string) (*models.Project, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	row := projectRow{Name: name, Description: description}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, apperr.Infrastructure(errors.Wrap(err, "insert project"), "create project")
	}
	return toProject(row), nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
