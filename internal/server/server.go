package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"task-tracker/internal/handlers"
	"task-tracker/internal/logging"
	"task-tracker/internal/metrics"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Projects handlers.ProjectService
	Ping     func(ctx context.Context) error
	Log      logrus.FieldLogger
	Registry *prometheus.Registry
}

// New builds the Fiber app with middleware and all routes registered.
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "task-tracker",
		ErrorHandler:          handlers.ErrorHandler(deps.Log),
		DisableStartupMessage: true,
	})

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logging.AccessLog(deps.Log))
	var counter handlers.TaskCounter
	if deps.Registry != nil {
		m := metrics.NewMetrics(deps.Registry)
		counter = m
		app.Use(m.Middleware())
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}
	// Inside the access log and metrics so panicking requests are still recorded.
	app.Use(recover.New())

	health := handlers.NewHealthHandler(deps.Ping, deps.Log)
	app.Get("/health", health.Health)
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Project and task routes
	h := handlers.NewProjectHandler(deps.Projects, counter, deps.Log)
	app.Get("/project/:id", h.GetProject)
	app.Get("/project/:id/tasks", h.ListProjectTasks)
	app.Post("/project/:id/tasks", h.CreateTask)

	return app
}
