package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/adoption-service/internal/api/http/handlers"
	"github.com/spec-kit/adoption-service/internal/auth"
	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Adoption       *handlers.AdoptionHandler
	Pets           *handlers.PetsHandler
	Vendors        *handlers.VendorsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	api.Get("/pets", cfg.Pets.Browse)
	api.Get("/pets/:id", cfg.Pets.Get)
	api.Get("/vendors/:id", cfg.Vendors.Get)

	protected := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())

	me := protected.Group("/users/me")
	me.Get("", cfg.Users.Me)
	me.Patch("", cfg.Users.UpdateMe)
	me.Get("/favorites", cfg.Pets.Favorites)
	me.Post("/favorites/:petId", cfg.Pets.ToggleFavorite)
	me.Get("/adoption-requests", cfg.Adoption.MyRequests)

	adoption := protected.Group("/adoption")
	adoption.Post("/apply", cfg.Adoption.Apply)
	adoption.Post("/approve", auth.RequireRole(domain.RoleVendor), cfg.Adoption.Approve)
	adoption.Post("/reject", auth.RequireRole(domain.RoleVendor), cfg.Adoption.Reject)
	adoption.Post("/reject-competing", auth.RequireRole(domain.RoleVendor), cfg.Adoption.RejectCompeting)
	adoption.Get("/:userId", auth.RequireSelfOrAdmin("userId"), cfg.Adoption.AdoptedPets)

	protected.Post("/vendors/apply", cfg.Vendors.Apply)

	vendor := protected.Group("/vendor", auth.RequireRole(domain.RoleVendor))
	vendor.Get("/me", cfg.Vendors.Mine)
	vendor.Get("/pets", cfg.Pets.VendorPets)
	vendor.Post("/pets", cfg.Pets.Create)
	vendor.Put("/pets/:id", cfg.Pets.Update)
	vendor.Delete("/pets/:id", cfg.Pets.Delete)
	vendor.Get("/adoption-requests", cfg.Adoption.VendorInbox)

	admin := protected.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Get("/users/:id", cfg.Admin.GetUser)
	admin.Post("/users/:id/ban", cfg.Admin.Ban)
	admin.Post("/users/:id/unban", cfg.Admin.Unban)
	admin.Delete("/users/:id", cfg.Admin.DeleteUser)
	admin.Get("/vendor-applications", cfg.Vendors.ListPendingApplications)
	admin.Post("/vendor-applications/:id/approve", cfg.Vendors.ApproveApplication)
	admin.Post("/vendor-applications/:id/reject", cfg.Vendors.RejectApplication)
	admin.Get("/vendors", cfg.Vendors.List)
	admin.Patch("/vendors/:id/status", cfg.Vendors.UpdateStatus)
	admin.Get("/analytics", cfg.Admin.Analytics)
	admin.Post("/reconcile", cfg.Admin.Reconcile)
}
