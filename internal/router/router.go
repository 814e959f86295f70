package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/sarenasr/Rappi-Dashboard/internal/config"
	"github.com/sarenasr/Rappi-Dashboard/internal/handlers"
	"github.com/sarenasr/Rappi-Dashboard/internal/logging"
	"github.com/sarenasr/Rappi-Dashboard/internal/middleware"
	"github.com/sarenasr/Rappi-Dashboard/internal/services"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, dataset *services.DatasetService,
	analytics *services.AnalyticsService, cfg config.Config,
) *handlers.Handler {
	h := handlers.New(logger, dataset, analytics)

	origins := cfg.Server.CORSOrigins
	if origins == "" {
		origins = "*"
	}

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger, logging.DefaultMiddlewareConfig()))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	// Dashboard views
	v1 := app.Group("/v1", middleware.APIKeyAuth(logger, "api", cfg.Auth.APIKeys, cfg.Auth.Enabled))
	v1.Get("/dataset", h.Dataset)
	v1.Get("/series", h.Series)
	v1.Get("/kpis", h.KPIs)
	v1.Get("/rolling", h.Rolling)
	v1.Get("/anomalies", h.Anomalies)
	v1.Get("/daily", h.Daily)
	v1.Get("/hourly", h.Hourly)
	v1.Get("/heatmap", h.Heatmap)
	v1.Get("/weekdays", h.Weekdays)
	v1.Get("/velocity", h.Velocity)
	v1.Get("/distribution", h.Distribution)
	v1.Get("/compare", h.Compare)
	v1.Get("/boxes", h.Boxes)
	v1.Get("/digest", h.Digest)
	v1.Get("/digest/text", h.DigestText)

	admin := app.Group("/admin", middleware.APIKeyAuth(logger, "admin", cfg.Auth.AdminKeySet(), cfg.Auth.Enabled))
	admin.Post("/reload", h.Reload)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, dataset *services.DatasetService,
	analytics *services.AnalyticsService, cfg config.Config,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Availability Monitor",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, dataset, analytics, cfg)

	return app
}
