package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"amfb-directdebit/internal/adapters/cache"
	"amfb-directdebit/internal/adapters/http/middleware"
	"amfb-directdebit/internal/adapters/http/routes"
	"amfb-directdebit/internal/adapters/persistence/models"
	"amfb-directdebit/internal/adapters/persistence/repositories"
	"amfb-directdebit/internal/config"
	"amfb-directdebit/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// @title AMFB Direct Debit API
// @version 1.0
// @description NIBSS direct debit mandate management API for Alert MFB
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@dap-alertgroup.com.ng

// @host ndd.dap-alertgroup.com.ng
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed the bootstrap IT admin account
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed data: %v", err)
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	mandateRepo := repositories.NewMandateRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)

	// Token cache: Redis when configured, in-memory otherwise
	var store cache.Store = cache.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		redisStore, err := cache.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		store = redisStore
		log.Println("✅ Using Redis token cache")
	}

	// Services
	tokenService := services.NewTokenService(store, cfg.NIBSS)
	nibssService := services.NewNIBSSService(tokenService, cfg.NIBSS)

	auditService := services.NewAuditService(auditRepo, 256)
	auditService.Start()
	defer auditService.Stop()

	notificationService := services.NewNotificationService(cfg.SMTP)

	mandateService := services.NewMandateService(nibssService, mandateRepo, auditService)
	billerService := services.NewBillerService(nibssService, auditService)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo, auditService, notificationService)

	// Reconciliation sweep
	reconService := services.NewReconService(mandateRepo, refreshTokenRepo, mandateService, cfg.Recon)
	if err := reconService.Start(); err != nil {
		log.Fatalf("❌ Failed to start reconciliation sweep: %v", err)
	}
	defer reconService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AMFB Direct Debit API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		BodyLimit:    4 * 1024 * 1024,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, cfg, routes.Services{
		Auth:    authService,
		User:    userService,
		Mandate: mandateService,
		Biller:  billerService,
		Audit:   auditService,
		Token:   tokenService,
	})

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
