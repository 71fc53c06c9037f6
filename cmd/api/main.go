package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/lms-schedule-api/api/swagger"
	"github.com/noah-isme/lms-schedule-api/internal/handler"
	"github.com/noah-isme/lms-schedule-api/internal/middleware"
	"github.com/noah-isme/lms-schedule-api/internal/repository"
	"github.com/noah-isme/lms-schedule-api/internal/service"
	"github.com/noah-isme/lms-schedule-api/pkg/cache"
	"github.com/noah-isme/lms-schedule-api/pkg/config"
	"github.com/noah-isme/lms-schedule-api/pkg/database"
	"github.com/noah-isme/lms-schedule-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/lms-schedule-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/lms-schedule-api/pkg/middleware/requestid"
)

// @title LMS Schedule API
// @version 0.1.0
// @description Assessment windows, schedule conflicts, term weeks and progress archives
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var cacheRepo service.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Progress.CacheTTL, logr, cacheRepo != nil && cfg.Progress.CacheEnabled)

	userRepo := repository.NewUserRepository(db)
	termRepo := repository.NewTermRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	archiveRepo := repository.NewArchiveRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	windowSvc := service.NewWindowService(assessmentRepo, cfg.Windows.MinDuration, logr, metricsSvc)
	assessmentSvc := service.NewAssessmentService(assessmentRepo, windowSvc, cfg.Windows.DefaultGracePeriod, validate, logr)
	conflictSvc := service.NewConflictService(logr)
	weekSvc := service.NewWeekService(logr)
	archiveSvc := service.NewArchiveService(scheduleRepo, archiveRepo, metricsSvc, logr, cfg.Archives.BatchSize)
	scheduleSvc := service.NewScheduleService(scheduleRepo, assessmentRepo, conflictSvc, archiveSvc, validate, logr)
	termSvc := service.NewTermService(termRepo, weekSvc, cacheSvc, cfg.Weeks.CacheTTL, validate, logr)
	progressSvc := service.NewProgressService(progressRepo, cacheSvc, validate, logr)
	exportSvc := service.NewExportService(progressSvc, cfg.Exports.PDFTitle, cfg.Exports.FilePrefix, cfg.Exports.MaxRows, logr)

	if cfg.Archives.Enabled {
		archiveSvc.StartQueue(context.Background())
		defer archiveSvc.StopQueue()
	}

	authHandler := handler.NewAuthHandler(authSvc)
	accessHandler := handler.NewAccessHandler(windowSvc)
	assessmentHandler := handler.NewAssessmentHandler(assessmentSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	termHandler := handler.NewTermHandler(termSvc)
	progressHandler := handler.NewProgressHandler(progressSvc, exportSvc)
	archiveHandler := handler.NewArchiveHandler(archiveSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.GET("/assessments", assessmentHandler.List)
	protected.POST("/assessments", middleware.RequireRoles("ADMIN", "TEACHER"), assessmentHandler.Create)
	protected.GET("/assessments/:id/access", accessHandler.CheckAccess)
	protected.POST("/assessments/:id/submissions", assessmentHandler.Submit)
	protected.POST("/windows/validate", middleware.RequireRoles("ADMIN", "TEACHER"), accessHandler.ValidateWindow)

	schedules := protected.Group("/schedules", middleware.RequireRoles("ADMIN", "TEACHER"))
	schedules.GET("", scheduleHandler.List)
	schedules.POST("", scheduleHandler.Create)
	schedules.GET("/conflicts", scheduleHandler.Conflicts)
	schedules.PUT("/:id", scheduleHandler.Update)
	schedules.DELETE("/:id", scheduleHandler.Delete)

	terms := protected.Group("/terms")
	terms.GET("", termHandler.List)
	terms.POST("", middleware.RequireRoles("ADMIN"), termHandler.Create)
	terms.GET("/active", termHandler.Active)
	terms.GET("/:id", termHandler.Get)
	terms.PUT("/:id", middleware.RequireRoles("ADMIN"), termHandler.Update)
	terms.GET("/:id/weeks", termHandler.Weeks)
	terms.GET("/:id/weeks/current", termHandler.CurrentWeek)

	progress := protected.Group("/progress", middleware.RequireRoles("ADMIN", "TEACHER"))
	progress.POST("", progressHandler.Record)
	progress.PATCH("/:id/complete", progressHandler.Complete)

	students := protected.Group("/students", middleware.RequireRoles("ADMIN", "TEACHER", "SELF"))
	students.GET("/:id/schedules", scheduleHandler.StudentSchedule)
	students.GET("/:id/schedule-gaps", scheduleHandler.Gaps)
	students.GET("/:id/progress", progressHandler.Summary)
	if cfg.Exports.Enabled {
		students.GET("/:id/progress/export", progressHandler.Export)
	}

	protected.POST("/maintenance/archive-run", middleware.RequireRoles("ADMIN"), archiveHandler.Run)
	protected.GET("/archives/schedules", middleware.RequireRoles("ADMIN", "TEACHER"), archiveHandler.List)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
