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

	_ "github.com/skillhub/evidence-api/api/swagger"
	"github.com/skillhub/evidence-api/internal/capture"
	"github.com/skillhub/evidence-api/internal/geo"
	"github.com/skillhub/evidence-api/internal/handler"
	"github.com/skillhub/evidence-api/internal/middleware"
	"github.com/skillhub/evidence-api/internal/models"
	"github.com/skillhub/evidence-api/internal/report"
	"github.com/skillhub/evidence-api/internal/repository"
	"github.com/skillhub/evidence-api/internal/service"
	"github.com/skillhub/evidence-api/pkg/cache"
	"github.com/skillhub/evidence-api/pkg/config"
	"github.com/skillhub/evidence-api/pkg/database"
	"github.com/skillhub/evidence-api/pkg/logger"
	corsmiddleware "github.com/skillhub/evidence-api/pkg/middleware/cors"
	reqidmiddleware "github.com/skillhub/evidence-api/pkg/middleware/requestid"
	"github.com/skillhub/evidence-api/pkg/storage"
)

// @title Skill Hub Evidence API
// @version 0.1.0
// @description Assessment evidence capture and reporting for training batches
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
		logr.Sugar().Warnw("redis unavailable, evidence cache disabled", "error", err)
		redisClient = nil
	}

	store, err := storage.New(cfg.Storage, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init photo storage", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cleanupSvc := service.NewCleanupService(store, cfg.Cleanup, metricsSvc, logr)
	cleanupSvc.Start(ctx)
	defer cleanupSvc.Stop()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Evidence.CacheTTL, logr, cfg.Evidence.CacheEnabled && redisClient != nil)

	councilRepo := repository.NewCouncilRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	evidenceRepo := repository.NewEvidenceRepository(db)

	geocoder := geo.NewNominatimClient(cfg.Geo, nil, logr)
	manager := capture.NewManager(capture.PushProvider{}, geocoder, cfg.Geo.GeocodeInterval, cfg.Geo.GeocodeTimeout, logr)
	manager.ObserveGeocodes(metricsSvc.RecordGeocode)
	manager.StartReaper(ctx, cfg.Capture.SessionTTL)

	authSvc := service.NewAuthService(batchRepo, validate, logr, cfg.JWT, cfg.Auth)
	batchSvc := service.NewBatchService(batchRepo, evidenceRepo, cleanupSvc, cacheSvc, validate, logr)
	councilSvc := service.NewCouncilService(councilRepo, batchRepo, batchSvc, validate, logr)
	captureSvc := service.NewCaptureService(manager, validate, logr)
	evidenceSvc := service.NewEvidenceService(evidenceRepo, manager, store, cleanupSvc, cacheSvc, metricsSvc, logr, cfg.Storage, cfg.Evidence.CacheTTL)
	reportSvc := service.NewReportService(batchRepo, evidenceRepo, report.NewFetcher(cfg.Reports.FetchTimeout, logr), cfg.Reports, logr)
	photoSvc := service.NewPhotoService(store, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	councilHandler := handler.NewCouncilHandler(councilSvc)
	batchHandler := handler.NewBatchHandler(batchSvc)
	captureHandler := handler.NewCaptureHandler(captureSvc, evidenceSvc)
	evidenceHandler := handler.NewEvidenceHandler(evidenceSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	photoHandler := handler.NewPhotoHandler(photoSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if cfg.Storage.Provider == "local" {
		r.Static(cfg.Storage.LocalBaseURL, cfg.Storage.LocalDir)
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	authed.GET("/councils", councilHandler.List)
	authed.POST("/councils", adminOnly, councilHandler.Create)
	authed.DELETE("/councils/:id", adminOnly, councilHandler.Delete)
	authed.POST("/councils/:id/batches", adminOnly, batchHandler.Create)

	authed.GET("/batches", batchHandler.List)
	authed.GET("/batches/:id", batchHandler.Get)
	authed.GET("/batches/:id/credentials", adminOnly, batchHandler.Credentials)
	authed.DELETE("/batches/:id", adminOnly, batchHandler.Delete)

	sessions := authed.Group("/capture/sessions")
	sessions.POST("", captureHandler.Open)
	sessions.GET("/:id", captureHandler.Get)
	sessions.DELETE("/:id", captureHandler.Close)
	sessions.POST("/:id/capture", captureHandler.Capture)
	sessions.POST("/:id/position", captureHandler.Position)
	sessions.DELETE("/:id/photos/:index", captureHandler.DeletePhoto)
	sessions.POST("/:id/submit", captureHandler.Submit)

	authed.GET("/evidence/:batchId", evidenceHandler.List)
	authed.DELETE("/evidence/records/:id", evidenceHandler.Delete)

	authed.GET("/reports/evidence/:batchId", reportHandler.Evidence)
	authed.GET("/reports/attendance/:batchId", reportHandler.Attendance)

	authed.POST("/photos/delete", photoHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "storage", cfg.Storage.Provider)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
