package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/smartscanner/scanner-backend/internal/config"
	"github.com/smartscanner/scanner-backend/internal/handlers"
	"github.com/smartscanner/scanner-backend/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	scanHandler *handlers.ScanHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	ocrHandler *handlers.OCRHandler,
	maintenanceHandler *handlers.MaintenanceHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Public auth endpoints get a stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/apple", authHandler.AppleSignIn)

	// Protected routes (JWT required)
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	api.Post("/scans", middleware.JWTProtected(cfg), scanHandler.RecordScan)
	api.Get("/scans/allowance", middleware.JWTProtected(cfg), scanHandler.Allowance)
	api.Post("/subscription/verify", middleware.JWTProtected(cfg), subscriptionHandler.Verify)
	api.Post("/ocr", middleware.JWTProtected(cfg), ocrHandler.Perform)

	// Manual sweep triggers (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Post("/maintenance/reset-scans", maintenanceHandler.ResetScans)
	admin.Post("/maintenance/expire-subscriptions", maintenanceHandler.ExpireSubscriptions)
}
