package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	_ "task-tracker/docs"
	"task-tracker/internal/config"
	"task-tracker/internal/logging"
	"task-tracker/internal/repository"
	"task-tracker/internal/server"
	"task-tracker/internal/services"
	"task-tracker/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := InitConfig()
	log := InitLogger(cfg)
	db := ConnectDatabase(cfg, log)
	defer func() {
		if err := storage.Close(db); err != nil {
			log.WithError(err).Warn("closing database")
		}
	}()
	MigrateDatabase(cfg, db, log)

	projectRepo := repository.NewProjectRepository(db, cfg.DBQueryTimeout)
	taskRepo := repository.NewTaskRepository(db, cfg.DBQueryTimeout)
	projectService := services.NewProjectService(projectRepo, taskRepo, services.PageConfig{
		DefaultLimit: cfg.PageDefaultLimit,
		MaxLimit:     cfg.PageMaxLimit,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := server.New(server.Deps{
		Projects: projectService,
		Ping:     func(ctx context.Context) error { return repository.Ping(ctx, db) },
		Log:      log,
		Registry: reg,
	})

	for _, r := range app.GetRoutes(true) {
		log.Debugf("route %s %s", r.Method, r.Path)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.WithError(err).Error("server shutdown")
		}
	}()

	log.WithField("port", cfg.AppPort).Info("server listening")
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.WithError(err).Error("server stopped")
	}
}

func InitConfig() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Config error: %v", err)
	}
	return cfg
}

func InitLogger(cfg *config.Config) *logrus.Logger {
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("Logger error: %v", err)
	}
	return log
}

func ConnectDatabase(cfg *config.Config, log *logrus.Logger) *gorm.DB {
	db, err := storage.NewDatabase(cfg, log)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	return db
}

func MigrateDatabase(cfg *config.Config, db *gorm.DB, log *logrus.Logger) {
	if !cfg.DBAutoMigrate {
		return
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	log.Info("database schema migrated")
}
