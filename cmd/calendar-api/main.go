package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/harborview/calendar-api/api/swagger"
	"github.com/harborview/calendar-api/internal/dto"
	"github.com/harborview/calendar-api/internal/handler"
	"github.com/harborview/calendar-api/internal/middleware"
	"github.com/harborview/calendar-api/internal/repository"
	"github.com/harborview/calendar-api/internal/service"
	"github.com/harborview/calendar-api/pkg/config"
	"github.com/harborview/calendar-api/pkg/logger"
	corsmiddleware "github.com/harborview/calendar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/harborview/calendar-api/pkg/middleware/requestid"
)

// @title Harborview Calendar API
// @version 1.0.0
// @description Calendar service with recurrence expansion, conflict detection and cascading edits
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	validate := validator.New()

	calendars := repository.NewCalendarRepository()

	metricsSvc := service.NewMetricsService()
	eventValidator := service.NewEventValidator(validate)
	recurrenceSvc := service.NewRecurrenceService(cfg.Calendar.MaxOccurrences, logr)
	conflictSvc := service.NewConflictService()
	eventSvc := service.NewEventService(calendars, eventValidator, recurrenceSvc, conflictSvc, metricsSvc, logr)
	calendarSvc := service.NewCalendarService(calendars, validate, logr)
	importSvc := service.NewImportService(eventSvc, cfg.Import.MaxRows, logr)
	exportSvc := service.NewExportService(eventSvc, service.ExportOptions{
		StorageDir:        cfg.Export.StorageDir,
		WorkerConcurrency: cfg.Export.WorkerConcurrency,
		WorkerRetries:     cfg.Export.WorkerRetries,
	}, logr)

	ctx := context.Background()
	if _, err := calendarSvc.Create(ctx, dto.CreateCalendarRequest{
		Name:     cfg.Calendar.DefaultName,
		Timezone: cfg.Calendar.DefaultTimezone,
	}); err != nil {
		logr.Sugar().Fatalw("failed to create default calendar", "error", err)
	}

	exportSvc.Start(ctx)
	defer exportSvc.Stop()

	eventHandler := handler.NewEventHandler(eventSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	transferHandler := handler.NewTransferHandler(importSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsSvc))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Scrape)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/calendars", calendarHandler.Create)
		api.GET("/calendars", calendarHandler.List)
		api.GET("/calendars/:name", calendarHandler.Get)
		api.PUT("/calendars/:name", calendarHandler.Update)
		api.DELETE("/calendars/:name", calendarHandler.Delete)

		api.POST("/calendars/:name/events", eventHandler.Create)
		api.PUT("/calendars/:name/events", eventHandler.EditByKey)
		api.PATCH("/calendars/:name/events", eventHandler.EditBySubject)
		api.GET("/calendars/:name/events", eventHandler.List)
		api.GET("/calendars/:name/busy", eventHandler.Busy)

		api.POST("/calendars/:name/import", transferHandler.Import)
		api.GET("/calendars/:name/export", transferHandler.Export)
		api.POST("/calendars/:name/exports", transferHandler.EnqueueExport)
		api.GET("/exports/:id", transferHandler.ExportStatus)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
