package models

import "time"

// Project is the read-only owner of tasks.
type Project struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}
