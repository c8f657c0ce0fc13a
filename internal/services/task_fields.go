package services

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"task-tracker/internal/apperr"
	"task-tracker/internal/models"
)

const (
	maxTitleLength       = 255
	maxDescriptionLength = 4000
	dueDateLayout        = "2006-01-02"
)

// readOnlyTaskFields are echoed back by clients that resend a task; they are
// dropped instead of rejected.
var readOnlyTaskFields = map[string]bool{
	"id": true,
}

type fieldParser func(value any, out *models.TaskFields) error

// writableTaskFields is the allow-list of client-settable task columns.
var writableTaskFields = map[string]fieldParser{
	"title":       parseTitle,
	"description": parseDescription,
	"status":      parseStatus,
	"priority":    parsePriority,
	"due_date":    parseDueDate,
}

// ParseTaskFields validates a raw client payload against the writable
// columns. Unknown keys, project_id included, are rejected; id is ignored.
// All problems are reported together, ordered by key.
func ParseTaskFields(raw map[string]any) (models.TaskFields, error) {
	fields := models.TaskFields{
		Status:   models.StatusTodo,
		Priority: models.DefaultPriority,
	}
	problems := make(map[string]string)

	for key, value := range raw {
		if readOnlyTaskFields[key] {
			continue
		}
		parse, ok := writableTaskFields[key]
		if !ok {
			problems[key] = "is not writable"
			continue
		}
		if err := parse(value, &fields); err != nil {
			problems[key] = err.Error()
		}
	}
	if _, ok := raw["title"]; !ok {
		problems["title"] = "is required"
	}

	if len(problems) > 0 {
		return models.TaskFields{}, apperr.Validation("invalid task fields: %s", formatProblems(problems))
	}
	return fields, nil
}

func formatProblems(problems map[string]string) string {
	keys := make([]string, 0, len(problems))
	for key := range problems {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+" "+problems[key])
	}
	return strings.Join(parts, "; ")
}

func parseTitle(value any, out *models.TaskFields) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("must be a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("must not be empty")
	}
	if utf8.RuneCountInString(s) > maxTitleLength {
		return fmt.Errorf("must be at most %d characters", maxTitleLength)
	}
	out.Title = s
	return nil
}

func parseDescription(value any, out *models.TaskFields) error {
	if value == nil {
		out.Description = ""
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("must be a string")
	}
	if utf8.RuneCountInString(s) > maxDescriptionLength {
		return fmt.Errorf("must be at most %d characters", maxDescriptionLength)
	}
	out.Description = s
	return nil
}

func parseStatus(value any, out *models.TaskFields) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("must be a string")
	}
	status := models.TaskStatus(s)
	if !status.Valid() {
		return fmt.Errorf("must be one of %s, %s, %s", models.StatusTodo, models.StatusInProgress, models.StatusDone)
	}
	out.Status = status
	return nil
}

func parsePriority(value any, out *models.TaskFields) error {
	n, ok := asInteger(value)
	if !ok {
		return fmt.Errorf("must be an integer")
	}
	if n < models.MinPriority || n > models.MaxPriority {
		return fmt.Errorf("must be between %d and %d", models.MinPriority, models.MaxPriority)
	}
	out.Priority = int(n)
	return nil
}

func parseDueDate(value any, out *models.TaskFields) error {
	if value == nil {
		out.DueDate = nil
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("must be a date in YYYY-MM-DD format")
	}
	due, err := time.Parse(dueDateLayout, s)
	if err != nil {
		return fmt.Errorf("must be a date in YYYY-MM-DD format")
	}
	out.DueDate = &due
	return nil
}

// asInteger accepts the integer shapes a decoded payload can carry. JSON
// numbers arrive as float64 and must have no fractional part.
func asInteger(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || math.Abs(v) > 1<<53 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	}
	return 0, false
}
