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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/foodbridge/pickup-api/api/swagger"
	"github.com/foodbridge/pickup-api/internal/handler"
	"github.com/foodbridge/pickup-api/internal/middleware"
	"github.com/foodbridge/pickup-api/internal/models"
	"github.com/foodbridge/pickup-api/internal/repository"
	"github.com/foodbridge/pickup-api/internal/scheduling"
	"github.com/foodbridge/pickup-api/internal/service"
	"github.com/foodbridge/pickup-api/pkg/cache"
	"github.com/foodbridge/pickup-api/pkg/config"
	"github.com/foodbridge/pickup-api/pkg/database"
	"github.com/foodbridge/pickup-api/pkg/jobs"
	"github.com/foodbridge/pickup-api/pkg/logger"
	corsmiddleware "github.com/foodbridge/pickup-api/pkg/middleware/cors"
	reqidmiddleware "github.com/foodbridge/pickup-api/pkg/middleware/requestid"
	"github.com/foodbridge/pickup-api/pkg/storage"
)

// @title FoodBridge Pickup API
// @version 1.0.0
// @description Food-parcel pickup enrollment and slot scheduling service
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	tz, err := time.LoadLocation(cfg.Pickup.Timezone)
	if err != nil {
		logr.Warn("pickup timezone not found, falling back to UTC",
			zap.String("timezone", cfg.Pickup.Timezone), zap.Error(err))
		tz = time.UTC
	}
	clock := scheduling.NewSystemClock(tz)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient, redisErr := cache.NewRedis(cfg.Redis); redisErr != nil {
		logr.Warn("redis unavailable, running without lookup cache", zap.Error(redisErr))
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Lookups.CacheTTL, logr, true)
	}

	locationRepo := repository.NewLocationRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	parcelRepo := repository.NewParcelRepository(db)
	householdRepo := repository.NewHouseholdRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	validate := validator.New()

	authSvc := service.NewAuthService(service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
	}, logr)

	locationSvc := service.NewLocationService(locationRepo, scheduleRepo, parcelRepo, cacheSvc, validate, logr,
		service.LocationServiceConfig{
			CacheTTL:           cfg.Lookups.CacheTTL,
			DefaultSlotMinutes: cfg.Pickup.DefaultSlotMinutes,
		})

	// The post-commit queue and the enrollment service reference each other;
	// the closure defers the handler lookup until jobs actually run.
	var enrollmentSvc *service.EnrollmentService
	postCommitQueue := jobs.NewQueue("enrollment-post-commit", func(ctx context.Context, job jobs.Job) error {
		return enrollmentSvc.HandlePostCommit(ctx, job)
	}, jobs.QueueConfig{Workers: 1, Logger: logr})

	enrollmentSvc = service.NewEnrollmentService(
		locationSvc, householdRepo, enrollmentRepo, parcelRepo, db,
		postCommitQueue, service.NewLogNotifier(logr), clock, validate, logr,
		service.EnrollmentServiceConfig{
			DraftTTL:      cfg.Drafts.TTL,
			NoticeTTL:     cfg.Drafts.NoticeTTL,
			HorizonMonths: cfg.Pickup.CapacityHorizonMonths,
		})
	postCommitQueue.Start(ctx)
	defer postCommitQueue.Stop()

	var manifestSvc *service.ManifestService
	if cfg.Manifests.Enabled {
		manifestRepo := repository.NewManifestRepository(db)
		fileStore, storageErr := storage.NewLocalStorage(cfg.Manifests.StorageDir)
		if storageErr != nil {
			logr.Fatal("failed to init manifest storage", zap.Error(storageErr))
		}
		signer := storage.NewSignedURLSigner(cfg.Manifests.SignedURLSecret, cfg.Manifests.SignedURLTTL)
		exporter := service.NewManifestExporter(parcelRepo, locationRepo, fileStore, signer,
			service.ManifestExportConfig{
				APIPrefix: cfg.APIPrefix,
				ResultTTL: cfg.Manifests.SignedURLTTL,
			}, logr, nil, nil)
		worker := service.NewManifestWorker(manifestRepo, exporter, cfg.Manifests.WorkerRetries, logr)
		manifestQueue := jobs.NewQueue("manifests", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Manifests.WorkerConcurrency,
			MaxRetries: cfg.Manifests.WorkerRetries,
			Logger:     logr,
		})
		manifestQueue.Start(ctx)
		defer manifestQueue.Stop()

		manifestSvc = service.NewManifestService(manifestRepo, locationRepo, manifestQueue, exporter, validate, logr,
			service.ManifestServiceConfig{
				ResultTTL:       cfg.Manifests.SignedURLTTL,
				CleanupInterval: cfg.Manifests.CleanupInterval,
				MaxRetries:      cfg.Manifests.WorkerRetries,
			})
		manifestSvc.RecoverPendingJobs(ctx)
		manifestSvc.StartCleanup(ctx)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	ops := r.Group("/metrics", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	ops.GET("", metricsHandler.Prometheus)
	ops.GET("/stats", metricsHandler.Stats)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	locationHandler := handler.NewLocationHandler(locationSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)

	api := r.Group(cfg.APIPrefix)

	if manifestSvc != nil {
		manifestHandler := handler.NewManifestHandler(manifestSvc)
		// Downloads authenticate through the signed token, not a session.
		api.GET("/manifests/download", manifestHandler.Download)

		manifests := api.Group("/manifests", middleware.JWT(authSvc),
			middleware.RequireRoles(models.RoleAdmin, models.RoleStaff))
		manifests.POST("", middleware.Audit(auditRepo, "manifest.create", "manifest"), manifestHandler.Create)
		manifests.GET("/:id", manifestHandler.Status)
	}

	api.Use(middleware.JWT(authSvc))

	locations := api.Group("/locations")
	locations.GET("", locationHandler.List)
	locations.GET("/:id", locationHandler.Get)
	locations.GET("/:id/schedules", locationHandler.Schedules)
	locations.GET("/:id/capacity", locationHandler.Capacity)
	locations.GET("/:id/slot-duration", locationHandler.SlotDuration)

	admin := middleware.RequireRoles(models.RoleAdmin)
	locations.POST("", admin, middleware.Audit(auditRepo, "location.create", "location"), locationHandler.Create)
	locations.PUT("/:id", admin, middleware.Audit(auditRepo, "location.update", "location"), locationHandler.Update)
	locations.DELETE("/:id", admin, middleware.Audit(auditRepo, "location.deactivate", "location"), locationHandler.Deactivate)
	locations.POST("/:id/schedules", admin, middleware.Audit(auditRepo, "schedule.create", "schedule"), locationHandler.CreateSchedule)
	api.DELETE("/schedules/:id", admin, middleware.Audit(auditRepo, "schedule.delete", "schedule"), locationHandler.DeleteSchedule)

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff)
	enrollments := api.Group("/enrollments", staff)
	enrollments.GET("", enrollmentHandler.List)
	enrollments.GET("/:id", enrollmentHandler.Get)

	drafts := api.Group("/enrollments/drafts", staff)
	drafts.POST("", enrollmentHandler.CreateDraft)
	drafts.GET("/:id", enrollmentHandler.GetDraft)
	drafts.PUT("/:id/location", enrollmentHandler.ChangeLocation)
	drafts.GET("/:id/calendar", enrollmentHandler.Calendar)
	drafts.GET("/:id/dates/:date/slots", enrollmentHandler.Slots)
	drafts.POST("/:id/dates", enrollmentHandler.SelectDate)
	drafts.DELETE("/:id/dates/:date", enrollmentHandler.DeselectDate)
	drafts.PUT("/:id/parcels/:date/time", enrollmentHandler.SetParcelTime)
	drafts.POST("/:id/bulk-time", enrollmentHandler.BulkTime)
	drafts.GET("/:id/bulk-time/window", enrollmentHandler.CommonWindow)
	drafts.POST("/:id/submit", middleware.Audit(auditRepo, "enrollment.submit", "enrollment"), enrollmentHandler.Submit)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("timezone", tz.String()))
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(serveErr))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown", zap.Error(err))
	}
}
