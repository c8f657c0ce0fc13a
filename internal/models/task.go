package models

import "time"

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

const (
	DefaultPriority = 3
	MinPriority     = 1
	MaxPriority     = 5
)

// Task is a unit of work belonging to exactly one project.
type Task struct {
	ID          int64
	ProjectID   int64
	Title       string
	Description string
	Status      TaskStatus
	Priority    int
	DueDate     *time.Time
	CreatedAt   time.Time
}

// TaskFields holds the client-writable columns of a task after validation.
// It never carries an id or a project id.
type TaskFields struct {
	Title       string
	Description string
	Status      TaskStatus
	Priority    int
	DueDate     *time.Time
}
