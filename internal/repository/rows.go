package repository

import (
	"time"

	"task-tracker/internal/models"
)

// projectRow maps the project table.
type projectRow struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"not null"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (projectRow) TableName() string {
	return "project"
}

// taskRow maps the task table.
type taskRow struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	ProjectID   int64      `gorm:"not null;index"`
	Title       string     `gorm:"not null"`
	Description string     `gorm:"column:description"`
	Status      string     `gorm:"not null;default:'todo'"`
	Priority    int        `gorm:"not null;default:3"`
	DueDate     *time.Time `gorm:"column:due_date"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`

	Project *projectRow `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

func (taskRow) TableName() string {
	return "task"
}

func toProject(row projectRow) *models.Project {
	return &models.Project{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
	}
}

func toTask(row taskRow) models.Task {
	return models.Task{
		ID:          row.ID,
		ProjectID:   row.ProjectID,
		Title:       row.Title,
		Description: row.Description,
		Status:      models.TaskStatus(row.Status),
		Priority:    row.Priority,
		DueDate:     row.DueDate,
		CreatedAt:   row.CreatedAt,
	}
}

// newTaskRow builds the insert row. The id is left zero so the store assigns it.
func newTaskRow(fields models.TaskFields, projectID int64) taskRow {
	return taskRow{
		ProjectID:   projectID,
		Title:       fields.Title,
		Description: fields.Description,
		Status:      string(fields.Status),
		Priority:    fields.Priority,
		DueDate:     fields.DueDate,
	}
}
