package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"task-tracker/internal/apperr"
	"task-tracker/internal/models"
	"task-tracker/internal/repository"
)

type fakeProjectStore struct {
	projects map[int64]*models.Project
	err      error
}

func (f *fakeProjectStore) FindProjectByID(_ context.Context, id int64) (*models.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	project, ok := f.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return project, nil
}

type fakeTaskStore struct {
	mu     sync.Mutex
	nextID atomic.Int64
	tasks  []models.Task
}

func (f *fakeTaskStore) ListTasksByProject(_ context.Context, projectID int64, limit, offset int) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Task{}
	skipped := 0
	for _, task := range f.tasks {
		if task.ProjectID != projectID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, task)
	}
	return out, nil
}

func (f *fakeTaskStore) CreateTask(_ context.Context, fields models.TaskFields, projectID int64) (*models.Task, error) {
	task := models.Task{
		ID:          f.nextID.Add(1),
		ProjectID:   projectID,
		Title:       fields.Title,
		Description: fields.Description,
		Status:      fields.Status,
		Priority:    fields.Priority,
		DueDate:     fields.DueDate,
		CreatedAt:   time.Now(),
	}
	f.mu.Lock()
	f.tasks = append(f.tasks, task)
	f.mu.Unlock()
	return &task, nil
}

func (f *fakeTaskStore) CountTasksByProject(_ context.Context, projectID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, task := range f.tasks {
		if task.ProjectID == projectID {
			n++
		}
	}
	return n, nil
}

func (f *fakeTaskStore) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

func newTestService() (*ProjectService, *fakeTaskStore) {
	projects := &fakeProjectStore{projects: map[int64]*models.Project{
		1: {ID: 1, Name: "Alpha"},
		2: {ID: 2, Name: "Beta"},
	}}
	tasks := &fakeTaskStore{}
	return NewProjectService(projects, tasks, PageConfig{DefaultLimit: 20, MaxLimit: 50}), tasks
}

func TestGetProject(t *testing.T) {
	svc, _ := newTestService()

	project, err := svc.GetProject(context.Background(), 1)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if project.ID != 1 {
		t.Fatalf("id = %d, want 1", project.ID)
	}
}

func TestGetProjectNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetProject(context.Background(), 99)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestGetProjectInfrastructureErrorPassesThrough(t *testing.T) {
	storeErr := apperr.Infrastructure(errors.New("connection reset"), "find project")
	svc := NewProjectService(&fakeProjectStore{err: storeErr}, &fakeTaskStore{}, PageConfig{DefaultLimit: 20, MaxLimit: 50})

	_, err := svc.GetProject(context.Background(), 1)
	if !errors.Is(err, storeErr) {
		t.Fatalf("err = %v, want store error", err)
	}
	if apperr.KindOf(err) != apperr.KindInfrastructure {
		t.Fatalf("kind = %q", apperr.KindOf(err))
	}
}

func TestNormalizePage(t *testing.T) {
	svc, _ := newTestService()
	tests := []struct {
		name    string
		in      Page
		want    Page
		wantErr bool
	}{
		{name: "default limit", in: Page{}, want: Page{Limit: 20}},
		{name: "explicit", in: Page{Limit: 5, Offset: 10}, want: Page{Limit: 5, Offset: 10}},
		{name: "clamped", in: Page{Limit: 500}, want: Page{Limit: 50}},
		{name: "negative limit", in: Page{Limit: -1}, wantErr: true},
		{name: "negative offset", in: Page{Limit: 1, Offset: -3}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.NormalizePage(tt.in)
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrValidation) {
					t.Fatalf("err = %v, want validation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if got != tt.want {
				t.Fatalf("page = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGetProjectTasksMissingProject(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetProjectTasks(context.Background(), 42, Page{Limit: 2})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestGetProjectTasksPagesAreConsistent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	for _, title := range []string{"one", "two", "three", "four", "five"} {
		if _, err := svc.CreateTask(ctx, 1, map[string]any{"title": title}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}

	first, err := svc.GetProjectTasks(ctx, 1, Page{Limit: 2})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	second, err := svc.GetProjectTasks(ctx, 1, Page{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	whole, err := svc.GetProjectTasks(ctx, 1, Page{Limit: 4})
	if err != nil {
		t.Fatalf("whole page: %v", err)
	}
	joined := append(first, second...)
	if len(joined) != 4 || len(whole) != 4 {
		t.Fatalf("lengths = %d/%d, want 4/4", len(joined), len(whole))
	}
	for i := range whole {
		if joined[i].ID != whole[i].ID {
			t.Fatalf("position %d: id %d != %d", i, joined[i].ID, whole[i].ID)
		}
	}

	count, err := svc.CountProjectTasks(ctx, 1)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 5 {
		t.Fatalf("count = %d, want 5", count)
	}
}

func TestCreateTaskIgnoresClientID(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreateTask(ctx, 1, map[string]any{"id": float64(777), "title": "first"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.CreateTask(ctx, 1, map[string]any{"id": float64(777), "title": "second"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID == 777 || second.ID == 777 {
		t.Fatal("client-supplied id reached the store")
	}
	if second.ID <= first.ID {
		t.Fatalf("ids not increasing: %d then %d", first.ID, second.ID)
	}
}

func TestCreateTaskRejectsProjectOverride(t *testing.T) {
	svc, tasks := newTestService()

	_, err := svc.CreateTask(context.Background(), 1, map[string]any{"title": "x", "project_id": float64(2)})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if n := tasks.len(); n != 0 {
		t.Fatalf("%d tasks written, want 0", n)
	}
}

func TestCreateTaskMissingProjectWritesNothing(t *testing.T) {
	svc, tasks := newTestService()

	_, err := svc.CreateTask(context.Background(), 404, map[string]any{"title": "x"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if n := tasks.len(); n != 0 {
		t.Fatalf("%d tasks written, want 0", n)
	}
}

func TestCreateTaskConcurrentIDsAreUnique(t *testing.T) {
	svc, _ := newTestService()
	const workers = 32

	var wg sync.WaitGroup
	ids := make([]int64, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			task, err := svc.CreateTask(context.Background(), 1, map[string]any{"title": "parallel"})
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = task.ID
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, workers)
	for i, id := range ids {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
}
