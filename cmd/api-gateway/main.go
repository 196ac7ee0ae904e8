package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sapta-dev/bimbel-admin-api/api/swagger"
	"github.com/sapta-dev/bimbel-admin-api/internal/handler"
	"github.com/sapta-dev/bimbel-admin-api/internal/middleware"
	"github.com/sapta-dev/bimbel-admin-api/internal/models"
	"github.com/sapta-dev/bimbel-admin-api/internal/repository"
	"github.com/sapta-dev/bimbel-admin-api/internal/service"
	"github.com/sapta-dev/bimbel-admin-api/pkg/cache"
	"github.com/sapta-dev/bimbel-admin-api/pkg/config"
	"github.com/sapta-dev/bimbel-admin-api/pkg/database"
	"github.com/sapta-dev/bimbel-admin-api/pkg/logger"
	corsmiddleware "github.com/sapta-dev/bimbel-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sapta-dev/bimbel-admin-api/pkg/middleware/requestid"
)

// @title Bimbel Admin API
// @version 0.1.0
// @description Lesson scheduling and lifecycle backend for the tutoring admin console
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}

	lessonRepo := repository.NewLessonRepository(db)
	slotRepo := repository.NewScheduleSlotRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	classRepo := repository.NewClassRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()

	audit := service.NewAuditService(auditRepo, cfg.Audit, logr)
	audit.Start(context.Background())
	defer audit.Stop()

	conflictSvc := service.NewConflictService(lessonRepo, classRepo, nil, logr, metrics)

	monitor := service.NewConflictMonitor(conflictSvc, cfg.Scheduling.ConflictDebounce, logr)
	defer monitor.Stop()

	slotValidator := service.NewSlotValidatorService(slotRepo, classRepo, cfg.Scheduling, nil, logr)
	generator := service.NewLessonGeneratorService(lessonRepo, calendarRepo, classRepo, cfg.Scheduling, logr, metrics)
	lifecycle := service.NewLessonLifecycleService(lessonRepo, classRepo, conflictSvc, cacheRepo, audit, cfg.Scheduling, nil, logr)
	slotSvc := service.NewScheduleSlotService(slotRepo, slotValidator, generator, nil, logr)
	calendarSvc := service.NewCalendarService(calendarRepo, logr)

	quick := service.NewQuickActionService(lifecycle, func(ctx context.Context) {
		if err := cacheRepo.InvalidateLessonLists(ctx); err != nil {
			logr.Sugar().Warnw("lesson list cache invalidation failed", "error", err)
		}
	}, nil, logr)

	var lessonHandler *handler.LessonHandler
	if cfg.Exports.Enabled {
		lessonHandler = handler.NewLessonHandler(lifecycle, quick, service.NewScheduleExportService(lessonRepo, logr))
	} else {
		lessonHandler = handler.NewLessonHandler(lifecycle, quick, nil)
	}
	slotHandler := handler.NewScheduleSlotHandler(slotSvc)
	conflictHandler := handler.NewConflictHandler(conflictSvc, monitor)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret))

	staffOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff)

	lessons := api.Group("/lessons")
	{
		lessons.GET("", lessonHandler.List)
		lessons.POST("", staffOnly, lessonHandler.Create)
		lessons.GET("/export", lessonHandler.Export)
		lessons.GET("/:id", lessonHandler.Get)
		lessons.PATCH("/:id", lessonHandler.Edit)
		lessons.DELETE("/:id", staffOnly, lessonHandler.Delete)
		lessons.POST("/:id/conduct", lessonHandler.Conduct)
		lessons.POST("/:id/cancel", lessonHandler.Cancel)
		lessons.POST("/:id/no-show", lessonHandler.NoShow)
		lessons.POST("/:id/reschedule", lessonHandler.Reschedule)
		lessons.POST("/:id/makeup", staffOnly, lessonHandler.CreateMakeup)
		lessons.POST("/:id/quick-action", lessonHandler.QuickAction)
	}

	slots := api.Group("/schedule-slots")
	{
		slots.GET("", slotHandler.ListByClass)
		slots.POST("", staffOnly, slotHandler.Create)
		slots.POST("/suggestions", slotHandler.Suggest)
		slots.PUT("/:id", staffOnly, slotHandler.Update)
		slots.DELETE("/:id", staffOnly, slotHandler.Archive)
		slots.POST("/:id/generate", staffOnly, slotHandler.Generate)
	}

	conflicts := api.Group("/conflicts")
	{
		conflicts.POST("/check", conflictHandler.Check)
		conflicts.POST("/watch", conflictHandler.Watch)
		conflicts.GET("/latest", conflictHandler.Latest)
	}

	calendar := api.Group("/calendar")
	{
		calendar.GET("/semester", calendarHandler.ActiveSemester)
		calendar.GET("/holidays", calendarHandler.ListHolidays)
		calendar.POST("/holidays", staffOnly, calendarHandler.CreateHoliday)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}
