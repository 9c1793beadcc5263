package routes

import (
	"time"

	"github.com/campuskit/complaintbox/internal/config"
	"github.com/campuskit/complaintbox/internal/handlers"
	"github.com/campuskit/complaintbox/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	complaintHandler *handlers.ComplaintHandler,
	uploadDir string,
) {
	// Stored attachments are served as plain static files.
	app.Static("/uploads", uploadDir)

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Admin session — login gets a stricter 10 req/min limit
	admin := api.Group("/admin")
	admin.Post("/login", limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}), authHandler.Login)
	admin.Get("/verify", middleware.JWTProtected(cfg), authHandler.Verify)

	// Complaints — submission and tracking are public, everything else
	// requires an admin token.
	complaints := api.Group("/complaints")
	complaints.Post("/submit", complaintHandler.Submit)
	complaints.Get("/", middleware.JWTProtected(cfg), complaintHandler.List)
	complaints.Get("/export", middleware.JWTProtected(cfg), complaintHandler.ExportCSV)
	complaints.Get("/analytics/summary", middleware.JWTProtected(cfg), complaintHandler.Analytics)
	complaints.Get("/:id", complaintHandler.GetByID)
	complaints.Put("/:id/status", middleware.JWTProtected(cfg), complaintHandler.UpdateStatus)
	complaints.Delete("/:id", middleware.JWTProtected(cfg), complaintHandler.Delete)
}
