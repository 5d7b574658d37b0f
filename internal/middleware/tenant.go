package middleware

import (
	"github.com/gin-gonic/gin"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/logger"
	"academy_backend/internal/models"
	"academy_backend/internal/tenant"
	"academy_backend/internal/vault"
)

// Context keys set by the middleware chain.
const (
	ContextSite = "site"
	ContextUser = "user"
)

// TenantMiddleware resolves the request's host to a Site and aborts with
// 404 when no tenant matches. X-Tenant-Domain wins over Host so proxies
// and mobile clients can pin the tenant explicitly.
func TenantMiddleware(resolver *tenant.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		host := c.GetHeader("X-Tenant-Domain")
		if host == "" {
			host = c.Request.Host
		}
		host = tenant.NormalizeHost(host)

		site, err := resolver.Resolve(c.Request.Context(), host)
		if err != nil {
			appErrors.HandleError(c, appErrors.ErrSiteNotFound)
			return
		}
		if !site.IsActive {
			appErrors.HandleError(c, appErrors.ErrSiteNotFound)
			return
		}

		c.Set(ContextSite, site)
		c.Request = c.Request.WithContext(logger.WithSiteID(c.Request.Context(), site.ID))
		c.Next()
	}
}

// MaintenanceGate blocks non-admin traffic while the tenant is in
// maintenance mode. It must run after TenantMiddleware; on protected
// routes it runs after auth so admins pass through.
func MaintenanceGate(cipher *vault.Cipher) gin.HandlerFunc {
	return func(c *gin.Context) {
		site := SiteFromContext(c)
		if site == nil {
			c.Next()
			return
		}
		if !tenant.NewSettings(site, cipher).MaintenanceMode() {
			c.Next()
			return
		}
		if user := UserFromContext(c); user != nil && user.Role == models.UserRoleAdmin {
			c.Next()
			return
		}
		appErrors.HandleError(c, appErrors.ErrMaintenanceMode)
	}
}

// SiteFromContext returns the resolved tenant, or nil outside the
// middleware chain.
func SiteFromContext(c *gin.Context) *models.Site {
	if v, ok := c.Get(ContextSite); ok {
		if site, ok := v.(*models.Site); ok {
			return site
		}
	}
	return nil
}

// UserFromContext returns the authenticated actor, or nil on public
// routes.
func UserFromContext(c *gin.Context) *models.User {
	if v, ok := c.Get(ContextUser); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
