// Package routes mounts every HTTP surface onto the gin engine.
package routes

import (
	"github.com/gin-gonic/gin"

	"academy_backend/internal/auth"
	"academy_backend/internal/handlers"
	"academy_backend/internal/middleware"
	"academy_backend/internal/repositories"
	"academy_backend/internal/tenant"
	"academy_backend/internal/vault"
)

// Handlers bundles the ready-built HTTP handlers.
type Handlers struct {
	Health        *handlers.HealthHandler
	Site          *handlers.SiteHandler
	Auth          *handlers.AuthHandler
	Onboarding    *handlers.OnboardingHandler
	Users         *handlers.UserHandler
	Courses       *handlers.CourseHandler
	Enrollments   *handlers.EnrollmentHandler
	Progress      *handlers.ProgressHandler
	Quizzes       *handlers.QuizHandler
	Assignments   *handlers.AssignmentHandler
	Tokens        *handlers.TokenHandler
	Certificates  *handlers.CertificateHandler
	Notifications *handlers.NotificationHandler
	Admin         *handlers.AdminHandler
}

// Deps carries what the middleware chain needs.
type Deps struct {
	Resolver      *tenant.Resolver
	JWT           *auth.JWTManager
	Users         repositories.UserRepository
	Sites         repositories.SiteRepository
	Cipher        *vault.Cipher
	RootSubdomain string
}

// RegisterRoutes wires the three route tiers: public (tenant resolved, no
// auth), onboarding (no tenant at all) and protected (tenant + JWT). The
// maintenance gate runs after auth so admins keep working while the
// tenant is gated; public theme endpoints stay open so the maintenance
// page can still render branding.
func RegisterRoutes(engine *gin.Engine, h *Handlers, d Deps) {
	engine.Use(middleware.RequestLogger(), middleware.Recovery())

	h.Health.RegisterRoutes(engine)

	api := engine.Group("/api")

	// Tenant onboarding happens before a tenant exists.
	onboarding := api.Group("/onboarding")
	{
		h.Onboarding.RegisterRoutes(onboarding)
	}

	tenantScoped := middleware.TenantMiddleware(d.Resolver)
	gate := middleware.MaintenanceGate(d.Cipher)

	site := api.Group("/site", tenantScoped)
	{
		h.Site.RegisterRoutes(site)
	}

	// Certificate verification needs no auth, but like every public
	// endpoint it runs against the resolved tenant.
	h.Certificates.RegisterPublicRoutes(api.Group("/certificates", tenantScoped))

	// Auth stays reachable in maintenance mode so admins can sign in and
	// lift the flag.
	authGroup := api.Group("/auth", tenantScoped)
	{
		h.Auth.RegisterRoutes(authGroup)
	}

	authed := api.Group("", tenantScoped, middleware.AuthMiddleware(d.JWT, d.Users), gate)
	{
		h.Users.RegisterRoutes(authed.Group("/users"))
		h.Courses.RegisterRoutes(authed.Group("/courses"))
		h.Enrollments.RegisterRoutes(authed.Group("/enrollments"))
		h.Progress.RegisterRoutes(authed.Group("/progress"))
		h.Quizzes.RegisterRoutes(authed.Group("/quizzes"))
		h.Assignments.RegisterRoutes(authed.Group("/assignments"))
		h.Tokens.RegisterRoutes(authed.Group("/tokens"))
		h.Certificates.RegisterRoutes(authed.Group("/certificates"))
		h.Notifications.RegisterRoutes(authed.Group("/notifications"))
	}

	staff := authed.Group("", middleware.RequireInstructorOrAdmin())
	{
		h.Courses.RegisterAdminRoutes(staff.Group("/admin/courses"))
		h.Quizzes.RegisterAdminRoutes(staff.Group("/admin/quizzes"))
		h.Assignments.RegisterAdminRoutes(staff.Group("/admin/assignments"))
	}

	admin := authed.Group("/admin", middleware.RequireAdmin())
	{
		h.Tokens.RegisterAdminRoutes(admin.Group("/tokens"))
		h.Admin.RegisterRoutes(admin)
	}

	platform := authed.Group("/platform", middleware.RequireSuperAdmin(d.Sites, d.RootSubdomain))
	{
		h.Admin.RegisterPlatformRoutes(platform)
	}
}
