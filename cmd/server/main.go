package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/school-fees-api/api/swagger"
	"github.com/noah-isme/school-fees-api/internal/handler"
	"github.com/noah-isme/school-fees-api/internal/middleware"
	"github.com/noah-isme/school-fees-api/internal/models"
	"github.com/noah-isme/school-fees-api/internal/repository"
	"github.com/noah-isme/school-fees-api/internal/service"
	"github.com/noah-isme/school-fees-api/pkg/cache"
	"github.com/noah-isme/school-fees-api/pkg/config"
	"github.com/noah-isme/school-fees-api/pkg/database"
	"github.com/noah-isme/school-fees-api/pkg/export"
	"github.com/noah-isme/school-fees-api/pkg/jobs"
	"github.com/noah-isme/school-fees-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-fees-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-fees-api/pkg/middleware/requestid"
	"github.com/noah-isme/school-fees-api/pkg/storage"
)

// @title School Fees API
// @version 1.0.0
// @description Fee and salary ledger service for school administration
// @BasePath /api/v1
// @schemes http
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
		redisClient = nil
	}

	// Repositories.
	studentRepo := repository.NewStudentRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	feePaymentRepo := repository.NewFeePaymentRepository(db)
	salaryPaymentRepo := repository.NewSalaryPaymentRepository(db)
	structureRepo := repository.NewStructureRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	reportRepo := repository.NewReportRepository(db)
	userRepo := repository.NewUserRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     "school-fees-api",
	})
	studentSvc := service.NewStudentService(studentRepo, nil, logr)
	staffSvc := service.NewStaffService(staffRepo, nil, logr)
	feeSvc := service.NewFeeService(feePaymentRepo, studentRepo, settingsRepo, export.NewReceiptRenderer(), nil, logr)
	salarySvc := service.NewSalaryService(salaryPaymentRepo, staffRepo, settingsRepo, nil, logr)
	reportSvc := service.NewReportService(reportRepo, logr)
	settingsSvc := service.NewSettingsService(settingsRepo, nil, logr)
	importSvc := service.NewImportService(studentRepo, logr)

	var dashboardSvc *service.DashboardService
	if cfg.Dashboard.CacheEnabled && redisClient != nil {
		dashboardSvc = service.NewDashboardService(studentRepo, staffRepo, feePaymentRepo, salaryPaymentRepo, reportRepo, cacheRepo, cfg.Dashboard.CacheTTL, logr)
	} else {
		dashboardSvc = service.NewDashboardService(studentRepo, staffRepo, feePaymentRepo, salaryPaymentRepo, reportRepo, nil, cfg.Dashboard.CacheTTL, logr)
	}
	promotionSvc := service.NewPromotionService(studentRepo, dashboardSvc, logr)
	structureSvc := service.NewStructureService(structureRepo, studentRepo, dashboardSvc, nil, logr)

	// Exports run on an in-process worker queue backed by local storage.
	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(exportJobRepo, studentRepo, staffRepo, feePaymentRepo, reportSvc, exportStore, signer, logr)

	exportQueue := jobs.NewQueue("exports", exportSvc.Process, jobs.Options{
		Workers:     cfg.Exports.WorkerConcurrency,
		MaxAttempts: cfg.Exports.WorkerRetries,
		Logger:      logr,
	})
	if cfg.Exports.Enabled {
		exportQueue.Start(context.Background())
		defer exportQueue.Stop()
		exportSvc.SetQueue(exportQueue)

		go func() {
			ticker := time.NewTicker(cfg.Exports.CleanupInterval)
			defer ticker.Stop()
			for range ticker.C {
				if err := exportSvc.Cleanup(context.Background(), cfg.Exports.SignedURLTTL); err != nil {
					logr.Sugar().Warnw("export cleanup failed", "error", err)
				}
			}
		}()
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, promotionSvc, importSvc)
	staffHandler := handler.NewStaffHandler(staffSvc)
	feeHandler := handler.NewFeeHandler(feeSvc, metricsSvc)
	salaryHandler := handler.NewSalaryHandler(salarySvc, metricsSvc)
	structureHandler := handler.NewStructureHandler(structureSvc)
	reportHandler := handler.NewReportHandler(reportSvc, dashboardSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	exportHandler := handler.NewExportHandler(exportSvc, exportStore)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	admin := string(models.RoleAdmin)
	teacher := string(models.RoleTeacher)

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)
		api.GET("/exports/download", exportHandler.Download)

		authed := api.Group("")
		authed.Use(middleware.JWT(authSvc))
		{
			authed.GET("/auth/me", authHandler.Me)

			students := authed.Group("/students")
			{
				students.GET("", middleware.RBAC(admin, teacher), studentHandler.List)
				students.POST("", middleware.RBAC(admin), studentHandler.Create)
				students.POST("/promote", middleware.RBAC(admin), studentHandler.Promote)
				students.POST("/import", middleware.RBAC(admin), studentHandler.Import)
				students.GET("/:id", middleware.RBAC(admin, teacher, "SELF"), studentHandler.Get)
				students.PUT("/:id", middleware.RBAC(admin), studentHandler.Update)
				students.DELETE("/:id", middleware.RBAC(admin), studentHandler.Delete)
				students.GET("/:id/payments", middleware.RBAC(admin, teacher, "SELF"), feeHandler.History)
				students.GET("/:id/dues", middleware.RBAC(admin, teacher, "SELF"), feeHandler.Dues)
			}

			staff := authed.Group("/staff")
			{
				staff.GET("", middleware.RBAC(admin), staffHandler.List)
				staff.POST("", middleware.RBAC(admin), staffHandler.Create)
				staff.GET("/:id", middleware.RBAC(admin, "SELF"), staffHandler.Get)
				staff.PUT("/:id", middleware.RBAC(admin), staffHandler.Update)
				staff.DELETE("/:id", middleware.RBAC(admin), staffHandler.Delete)
				staff.GET("/:id/salaries", middleware.RBAC(admin, "SELF"), salaryHandler.History)
			}

			fees := authed.Group("/fees")
			fees.Use(middleware.RBAC(admin))
			{
				fees.POST("/payments", feeHandler.Record)
				fees.GET("/payments", feeHandler.List)
				fees.GET("/payments/:id/receipt", feeHandler.Receipt)
			}

			salaries := authed.Group("/salaries")
			salaries.Use(middleware.RBAC(admin))
			{
				salaries.POST("/payments", salaryHandler.Record)
				salaries.GET("/report", salaryHandler.Report)
			}

			structures := authed.Group("/structures")
			structures.Use(middleware.RBAC(admin))
			{
				structures.GET("/fees", structureHandler.ListFee)
				structures.PUT("/fees", structureHandler.SaveFee)
				structures.POST("/fees/apply", structureHandler.CascadeFee)
				structures.GET("/books", structureHandler.ListBook)
				structures.PUT("/books", structureHandler.SaveBook)
				structures.POST("/books/apply", structureHandler.CascadeBook)
			}

			reports := authed.Group("/reports")
			reports.Use(middleware.RBAC(admin, teacher))
			{
				reports.GET("/class-summary", reportHandler.ClassSummary)
				reports.GET("/pending", reportHandler.PendingStudents)
				reports.GET("/dashboard", reportHandler.Dashboard)
			}

			settings := authed.Group("/settings")
			settings.Use(middleware.RBAC(admin))
			{
				settings.GET("", settingsHandler.Get)
				settings.PUT("", settingsHandler.Update)
			}

			exports := authed.Group("/exports")
			exports.Use(middleware.RBAC(admin))
			{
				exports.POST("", exportHandler.Request)
				exports.GET("/:id", exportHandler.Status)
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
