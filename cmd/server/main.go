package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/udfnd/credittalk-admin-sub000/internal/config"
	"github.com/udfnd/credittalk-admin-sub000/internal/handler"
	"github.com/udfnd/credittalk-admin-sub000/internal/middleware"
	"github.com/udfnd/credittalk-admin-sub000/internal/model"
	"github.com/udfnd/credittalk-admin-sub000/internal/repository"
	"github.com/udfnd/credittalk-admin-sub000/internal/service"
	"github.com/udfnd/credittalk-admin-sub000/migrations"
	"github.com/udfnd/credittalk-admin-sub000/pkg/auth"
	"github.com/udfnd/credittalk-admin-sub000/pkg/gateway"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// @title           CreditTalk Admin API
// @version         1.0
// @description     Admin back-office for the CreditTalk anti-fraud platform: push notification dispatch engine and job ledger.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      api.localhost
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// ==================== Load Config ====================
	cfg := config.Load()
	log.Printf("🚀 Starting CreditTalk Admin API [env=%s]", cfg.App.Env)

	// ==================== Database (PostgreSQL) ====================
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.App.Env == "production" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to PostgreSQL")

	// ==================== Run Migrations ====================
	if err := migrations.Run(cfg.DB.URL()); err != nil {
		log.Printf("⚠️  Migration warning: %v", err)
		log.Println("📦 Falling back to GORM AutoMigrate...")
		if err := db.AutoMigrate(
			&model.User{},
			&model.DeviceToken{},
			&model.PushJob{},
			&model.HelpdeskQuestion{},
			&model.Report{},
		); err != nil {
			log.Fatalf("❌ Failed to migrate database: %v", err)
		}
	}
	log.Println("✅ Database migrated successfully")

	// ==================== Redis ====================
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	log.Println("✅ Connected to Redis")

	// ==================== Push Gateway ====================
	clientCache, err := gateway.New(gateway.Config{
		CredentialsFile: cfg.Firebase.CredentialsFile,
		CredentialsJSON: cfg.Firebase.CredentialsJSON,
		ProjectID:       cfg.Firebase.ProjectID,
		ClientTTL:       cfg.Firebase.ClientTTL,
	})
	if err != nil {
		log.Fatalf("❌ Push gateway misconfigured: %v", err)
	}

	// ==================== Initialize Layers ====================
	// JWT Manager
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewDeviceTokenRepository(db)
	jobRepo := repository.NewPushJobRepository(db)
	entityRepo := repository.NewEntityRepository(db, userRepo)

	// Push engine
	resolver := service.NewResolver(tokenRepo, entityRepo)
	dispatcher := service.NewDispatcher(cfg.Push.BatchSize, cfg.Push.MaxAttempts, cfg.Push.BaseBackoff)
	pushService := service.NewPushService(jobRepo, resolver, dispatcher, tokenRepo, userRepo, clientCache)

	// Scheduled runner
	runner := service.NewRunner(pushService, cfg.Push.PollInterval, cfg.Push.PollLimit)
	runnerCtx, runnerCancel := context.WithCancel(context.Background())
	defer runnerCancel()
	go runner.Run(runnerCtx)

	// Handlers
	authHandler := handler.NewAuthHandler(userRepo, jwtManager, rdb, cfg.JWT.Expiry)
	pushHandler := handler.NewPushHandler(pushService)

	// ==================== Gin Router ====================
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Swagger configuration
	router.StaticFile("/docs/swagger.json", "./docs/swagger.json")
	url := ginSwagger.URL("/docs/swagger.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, url))

	// Global middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS.Origins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "credittalk-admin",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// ==================== API Routes ====================
	api := router.Group("/api/v1")
	{
		// Auth routes (public)
		api.POST("/auth/login", authHandler.Login)

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware(jwtManager, rdb))
		{
			admin.POST("/notifications", pushHandler.Send)
			admin.POST("/notifications/target", pushHandler.NotifyTarget)
			admin.GET("/notifications/jobs", pushHandler.ListJobs)
			admin.GET("/notifications/jobs/:id", pushHandler.GetJob)
		}

		// Logout needs a valid token too
		protected := api.Group("")
		protected.Use(middleware.AdminAuthMiddleware(jwtManager, rdb))
		protected.POST("/auth/logout", authHandler.Logout)
	}

	// ==================== Start Server ====================
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	log.Printf("🌐 CreditTalk Admin API running on http://0.0.0.0:%s", cfg.App.Port)
	log.Printf("📋 API docs: http://0.0.0.0:%s/swagger/index.html", cfg.App.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	// Stop the poller first so no new job is claimed mid-shutdown
	runnerCancel()

	// Give ongoing requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server exited gracefully")
}
