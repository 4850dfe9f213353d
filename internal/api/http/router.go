package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gp-maquinas/maintenance-service/internal/api/http/handlers"
	"github.com/gp-maquinas/maintenance-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Services       *handlers.ServicesHandler
	Reports        *handlers.ReportsHandler
	Reference      *handlers.ReferenceHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Everything except login and the health
// probes sits behind token verification.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/verify", cfg.Auth.Verify)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/profile", cfg.AuthMiddleware.Handle, cfg.Auth.Profile)
	authGroup.Post("/password", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)
	authGroup.Post("/users/:id/deactivate", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Auth.DeactivateUser)

	services := app.Group("/services", cfg.AuthMiddleware.Handle)
	services.Get("/", cfg.Services.List)
	services.Get("/search", cfg.Services.Search)
	services.Get("/machine/:machineCode", cfg.Services.MachineHistory)
	services.Get("/:id", cfg.Services.Get)
	services.Post("/", cfg.Services.Create)
	services.Put("/:id", cfg.Services.Update)
	services.Delete("/:id", cfg.Services.Delete)

	reports := app.Group("/reports", cfg.AuthMiddleware.Handle)
	reports.Get("/", cfg.Reports.List)
	reports.Get("/:id", cfg.Reports.Get)
	reports.Post("/store", cfg.Reports.StoreReport)
	reports.Post("/financial", cfg.Reports.FinancialReport)
	reports.Post("/technicians", cfg.Reports.TechnicianReport)

	reference := app.Group("", cfg.AuthMiddleware.Handle)
	reference.Get("/stores", cfg.Reference.Stores)
	reference.Get("/service-types", cfg.Reference.ServiceTypes)
	reference.Get("/technicians", cfg.Reference.Technicians)
}
