package routes

import (
	"amfb-directdebit/internal/adapters/http/handlers"
	"amfb-directdebit/internal/adapters/http/middleware"
	"amfb-directdebit/internal/config"
	"amfb-directdebit/internal/core/domain"
	"amfb-directdebit/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// Services bundles the constructed services the routes depend on. They are
// built in main so their lifecycles (audit worker, recon cron) stay under the
// server's shutdown control.
type Services struct {
	Auth    *services.AuthService
	User    *services.UserService
	Mandate *services.MandateService
	Biller  *services.BillerService
	Audit   *services.AuditService
	Token   *services.TokenService
}

// Setup configures all routes for the application
func Setup(app *fiber.App, cfg *config.Config, svc Services) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(svc.Auth, svc.User, cfg)
	userHandler := handlers.NewUserHandler(svc.User)
	mandateHandler := handlers.NewMandateHandler(svc.Mandate)
	billerHandler := handlers.NewBillerHandler(svc.Biller)
	choicesHandler := handlers.NewChoicesHandler()
	auditHandler := handlers.NewAuditHandler(svc.Audit)
	tokenHandler := handlers.NewTokenHandler(svc.Token)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (public, rate limited)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// User management routes (IT only)
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.RequireRoles(domain.RoleIT))
	setupUserRoutes(userRoutes, userHandler)

	// Mandate routes (role enforced per operation)
	mandateRoutes := apiV1.Group("/mandates")
	mandateRoutes.Use(middleware.AuthMiddleware(cfg))
	setupMandateRoutes(mandateRoutes, mandateHandler)

	// Biller routes (IT only)
	billerRoutes := apiV1.Group("/billers")
	billerRoutes.Use(middleware.AuthMiddleware(cfg))
	billerRoutes.Use(middleware.RequireRoles(domain.RoleIT))
	billerRoutes.Post("/", billerHandler.CreateBiller)
	billerRoutes.Put("/", billerHandler.UpdateBiller)

	// Product routes (reads open to any authenticated user)
	productRoutes := apiV1.Group("/products")
	productRoutes.Use(middleware.AuthMiddleware(cfg))
	productRoutes.Get("/", billerHandler.GetProducts)
	productRoutes.Post("/",
		middleware.RequireRoles(domain.RoleIT),
		billerHandler.CreateProduct)
	productRoutes.Post("/disable",
		middleware.RequireRoles(domain.RoleIT),
		billerHandler.DisableProduct)

	// Choices (any authenticated user)
	apiV1.Get("/choices", middleware.AuthMiddleware(cfg), choicesHandler.Choices)

	// Audit trail (IT only)
	apiV1.Get("/audit-logs",
		middleware.AuthMiddleware(cfg),
		middleware.RequireRoles(domain.RoleIT),
		auditHandler.List)

	// Upstream token diagnostics (IT only)
	apiV1.Get("/token",
		middleware.AuthMiddleware(cfg),
		middleware.RequireRoles(domain.RoleIT),
		tokenHandler.Token)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (stricter rate limit)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", middleware.AuthRateLimiter(), handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures user management routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Get("/:id", handler.Get)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)
}

// setupMandateRoutes configures mandate routes. Creation belongs to customer
// service, approval workflow to credit; IT can do both.
func setupMandateRoutes(router fiber.Router, handler *handlers.MandateHandler) {
	router.Post("/paper",
		middleware.RequireRoles(domain.RoleCSO, domain.RoleIT),
		handler.CreatePaperMandate)
	router.Post("/balance-enquiry",
		middleware.RequireRoles(domain.RoleCSO),
		handler.CreateBalanceEnquiry)
	router.Post("/e-mandate",
		middleware.RequireRoles(domain.RoleCSO, domain.RoleIT),
		handler.CreateEMandate)

	router.Post("/status/update",
		middleware.RequireRoles(domain.RoleCredit, domain.RoleIT),
		handler.UpdateMandateStatus)
	router.Post("/process",
		middleware.RequireRoles(domain.RoleCredit, domain.RoleIT),
		handler.ProcessMandate)

	// Any authenticated user can read
	router.Get("/", handler.ListLocal)
	router.Post("/status", handler.MandateStatus)
	router.Post("/fetch", handler.FetchMandates)
}

