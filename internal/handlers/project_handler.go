package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"

	"task-tracker/internal/apperr"
	"task-tracker/internal/conversion"
	"task-tracker/internal/models"
	"task-tracker/internal/services"
)

// HeaderTotalCount carries the number of tasks in a project on list responses.
const HeaderTotalCount = "X-Total-Count"

// ProjectService is the service layer used by ProjectHandler.
type ProjectService interface {
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	GetProjectTasks(ctx context.Context, projectID int64, page services.Page) ([]models.Task, error)
	CountProjectTasks(ctx context.Context, projectID int64) (int64, error)
	CreateTask(ctx context.Context, projectID int64, raw map[string]any) (*models.Task, error)
}

// TaskCounter is told about every task the handler stores.
type TaskCounter interface {
	TaskCreated()
}

type noopCounter struct{}

func (noopCounter) TaskCreated() {}

type ProjectHandler struct {
	service ProjectService
	counter TaskCounter
	log     logrus.FieldLogger
}

// NewProjectHandler wires the handler. counter may be nil.
func NewProjectHandler(service ProjectService, counter TaskCounter, log logrus.FieldLogger) *ProjectHandler {
	if counter == nil {
		counter = noopCounter{}
	}
	return &ProjectHandler{
		service: service,
		counter: counter,
		log:     log,
	}
}

// GetProject returns a project by ID
// @Summary Get a project by ID
// @Description Get details of a specific project
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} conversion.ProjectResponse "Project found"
// @Failure 400 {object} conversion.ErrorBody "Invalid project ID"
// @Failure 404 {object} conversion.ErrorBody "Project not found"
// @Failure 500 {object} conversion.ErrorBody "Internal server error"
// @Router /project/{id} [get]
func (h *ProjectHandler) GetProject(c *fiber.Ctx) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return h.respondError(c, err, logrus.Fields{"id": utils.CopyString(c.Params("id"))})
	}

	project, err := h.service.GetProject(c.UserContext(), projectID)
	if err != nil {
		return h.respondError(c, err, logrus.Fields{"project_id": projectID})
	}

	return c.JSON(conversion.ToProjectResponse(project))
}

// ListProjectTasks returns a page of a project's tasks
// @Summary List tasks of a project
// @Description Get tasks of a project ordered by ID, paginated with limit and offset
// @Tags tasks
// @Produce json
// @Param id path int true "Project ID"
// @Param limit query int false "Page size (default 20, clamped to the configured maximum)"
// @Param offset query int false "Number of tasks to skip (default 0)"
// @Success 200 {array} conversion.TaskResponse "Page of tasks"
// @Header 200 {integer} X-Total-Count "Total tasks in the project"
// @Failure 400 {object} conversion.ErrorBody "Invalid project ID or paging parameters"
// @Failure 404 {object} conversion.ErrorBody "Project not found"
// @Failure 500 {object} conversion.ErrorBody "Internal server error"
// @Router /project/{id}/tasks [get]
func (h *ProjectHandler) ListProjectTasks(c *fiber.Ctx) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return h.respondError(c, err, logrus.Fields{"id": utils.CopyString(c.Params("id"))})
	}
	page, err := parsePage(c)
	if err != nil {
		return h.respondError(c, err, logrus.Fields{"project_id": projectID, "limit": utils.CopyString(c.Query("limit")), "offset": utils.CopyString(c.Query("offset"))})
	}

	params := logrus.Fields{"project_id": projectID, "limit": page.Limit, "offset": page.Offset}
	tasks, err := h.service.GetProjectTasks(c.UserContext(), projectID, page)
	if err != nil {
		return h.respondError(c, err, params)
	}
	total, err := h.service.CountProjectTasks(c.UserContext(), projectID)
	if err != nil {
		return h.respondError(c, err, params)
	}

	c.Set(HeaderTotalCount, strconv.FormatInt(total, 10))
	return c.JSON(conversion.ToTaskResponses(tasks))
}

// CreateTask creates a task inside a project
// @Summary Create a task
// @Description Create a task in the project. Writable fields: title, description, status, priority, due_date. A client-supplied id is ignored; project_id and unknown fields are rejected.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param task body object true "Task fields"
// @Success 201 {object} conversion.TaskResponse "Task created"
// @Failure 400 {object} conversion.ErrorBody "Invalid project ID or task fields"
// @Failure 404 {object} conversion.ErrorBody "Project not found"
// @Failure 500 {object} conversion.ErrorBody "Internal server error"
// @Router /project/{id}/tasks [post]
func (h *ProjectHandler) CreateTask(c *fiber.Ctx) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return h.respondError(c, err, logrus.Fields{"id": utils.CopyString(c.Params("id"))})
	}

	var raw map[string]any
	if err := c.BodyParser(&raw); err != nil || raw == nil {
		return h.respondError(c, apperr.Validation("request body must be a JSON object"), logrus.Fields{"project_id": projectID})
	}

	task, err := h.service.CreateTask(c.UserContext(), projectID, raw)
	if err != nil {
		return h.respondError(c, err, logrus.Fields{"project_id": projectID})
	}

	h.counter.TaskCreated()
	h.log.WithFields(logrus.Fields{"project_id": projectID, "task_id": task.ID}).Info("task created")
	return c.Status(fiber.StatusCreated).JSON(conversion.ToTaskResponse(task))
}

func parseProjectID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("project id must be a positive integer")
	}
	return id, nil
}

// parsePage reads limit and offset. Absent values are zero; range checks
// belong to the service.
func parsePage(c *fiber.Ctx) (services.Page, error) {
	var page services.Page
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return page, apperr.Validation("limit must be an integer")
		}
		page.Limit = n
	}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return page, apperr.Validation("offset must be an integer")
		}
		page.Offset = n
	}
	return page, nil
}
