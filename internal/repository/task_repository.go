package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"task-tracker/internal/apperr"
	"task-tracker/internal/models"
)

const listTasksByProjectQuery = `
	SELECT id, project_id, title, description, status, priority, due_date, created_at
	FROM task
	WHERE project_id = ?
	ORDER BY id ASC
	LIMIT ? OFFSET ?
`

// TaskRepository provides methods to interact with the task table.
type TaskRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewTaskRepository creates a new TaskRepository with the provided GORM connection.
func NewTaskRepository(db *gorm.DB, timeout time.Duration) *TaskRepository {
	return &TaskRepository{db: db, timeout: timeout}
}

// ListTasksByProject returns one page of a project's tasks ordered by id.
// LIMIT and OFFSET are bound as parameters. No match yields an empty slice.
func (r *TaskRepository) ListTasksByProject(ctx context.Context, projectID int64, limit, offset int) ([]models.Task, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var rows []taskRow
	err := r.db.WithContext(ctx).Raw(listTasksByProjectQuery, projectID, limit, offset).Scan(&rows).Error
	if err != nil {
		return nil, apperr.Infrastructure(
			errors.Wrapf(err, "select tasks for project %d (limit=%d offset=%d)", projectID, limit, offset),
			"list tasks",
		)
	}

	tasks := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, toTask(row))
	}
	return tasks, nil
}

// CreateTask inserts a task for projectID. The new id is read back by the
// driver (RETURNING on postgres, last insert rowid on sqlite).
func (r *TaskRepository) CreateTask(ctx context.Context, fields models.TaskFields, projectID int64) (*models.Task, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	row := newTaskRow(fields, projectID)
	if err := r.db.WithContext(ctx).Omit("Project").Create(&row).Error; err != nil {
		return nil, apperr.Infrastructure(errors.Wrapf(err, "insert task for project %d", projectID), "create task")
	}
	task := toTask(row)
	return &task, nil
}

// CountTasksByProject returns how many tasks belong to projectID.
func (r *TaskRepository) CountTasksByProject(ctx context.Context, projectID int64) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var n int64
	if err := r.db.WithContext(ctx).Model(&taskRow{}).Where("project_id = ?", projectID).Count(&n).Error; err != nil {
		return 0, apperr.Infrastructure(errors.Wrapf(err, "count tasks for project %d", projectID), "count tasks")
	}
	return n, nil
}

// AutoMigrate creates or updates the project and task tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&projectRow{}, &taskRow{})
}

// Ping checks that the store is reachable.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
