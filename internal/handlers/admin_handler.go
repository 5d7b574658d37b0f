package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/models"
	"academy_backend/internal/repositories"
	"academy_backend/internal/services"
	"academy_backend/internal/tenant"
	"academy_backend/internal/vault"
)

// Reconciler is the manual trigger for the counter reconciliation job.
type Reconciler interface {
	RunOnce(ctx context.Context) error
}

// AdminHandler bundles tenant administration: user management, site
// settings (including encrypted SMTP credentials), the audit log and the
// reconciliation trigger.
type AdminHandler struct {
	BaseHandler
	users      *services.UserService
	audit      *services.AuditService
	sites      repositories.SiteRepository
	cipher     *vault.Cipher
	resolver   *tenant.Resolver
	reconciler Reconciler
}

func NewAdminHandler(
	users *services.UserService,
	audit *services.AuditService,
	sites repositories.SiteRepository,
	cipher *vault.Cipher,
	resolver *tenant.Resolver,
	reconciler Reconciler,
) *AdminHandler {
	return &AdminHandler{
		users:      users,
		audit:      audit,
		sites:      sites,
		cipher:     cipher,
		resolver:   resolver,
		reconciler: reconciler,
	}
}

func (h *AdminHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/users", h.ListUsers)
	group.PUT("/users/:user_id/role", h.UpdateRole)
	group.PUT("/users/:user_id/status", h.UpdateStatus)
	group.DELETE("/users/:user_id", h.DeleteUser)
	group.GET("/site/settings", h.GetSiteSettings)
	group.PUT("/site/settings", h.UpdateSiteSettings)
	group.GET("/audit-log", h.AuditLog)
	group.POST("/reconcile", h.Reconcile)
}

// RegisterPlatformRoutes mounts the cross-tenant surface reserved for
// admins of the root site.
func (h *AdminHandler) RegisterPlatformRoutes(group *gin.RouterGroup) {
	group.GET("/sites", h.ListSites)
}

func (h *AdminHandler) ListSites(c *gin.Context) {
	page, size := h.pagination(c)
	items, total, err := h.sites.FindAll(c.Request.Context(), size, (page-1)*size)
	if err != nil {
		appErrors.HandleError(c, appErrors.InternalError(err))
		return
	}
	c.JSON(http.StatusOK, paged(items, total, page, size))
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, size := h.pagination(c)
	filter := repositories.UserFilter{
		Search: c.Query("search"),
		Role:   models.UserRole(c.Query("role")),
		Status: models.UserStatus(c.Query("status")),
		Page:   page,
		Size:   size,
	}
	items, total, err := h.users.List(c.Request.Context(), h.site(c), filter)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged(items, total, page, size))
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required,userrole"`
}

func (h *AdminHandler) UpdateRole(c *gin.Context) {
	var req updateRoleRequest
	if !h.bind(c, &req) {
		return
	}
	targetID := c.Param("user_id")
	user, err := h.users.UpdateRole(c.Request.Context(), h.site(c), targetID, models.UserRole(req.Role))
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	h.audit.Record(c.Request.Context(), h.site(c), h.actor(c).ID, "user_role_update", "user", targetID,
		map[string]interface{}{"role": req.Role})
	c.JSON(http.StatusOK, user)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if !h.bind(c, &req) {
		return
	}
	targetID := c.Param("user_id")
	user, err := h.users.UpdateStatus(c.Request.Context(), h.site(c), targetID, models.UserStatus(req.Status))
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	h.audit.Record(c.Request.Context(), h.site(c), h.actor(c).ID, "user_status_update", "user", targetID,
		map[string]interface{}{"status": req.Status})
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	targetID := c.Param("user_id")
	if err := h.users.Delete(c.Request.Context(), h.site(c), targetID); err != nil {
		appErrors.HandleError(c, err)
		return
	}
	h.audit.Record(c.Request.Context(), h.site(c), h.actor(c).ID, "user_delete", "user", targetID, nil)
	c.JSON(http.StatusOK, gin.H{"detail": "User deleted"})
}

// GetSiteSettings returns the theme config with the SMTP password masked.
func (h *AdminHandler) GetSiteSettings(c *gin.Context) {
	site := h.site(c)
	out := make(map[string]interface{}, len(site.ThemeConfig))
	for k, v := range site.ThemeConfig {
		out[k] = v
	}
	if enc, ok := out[models.ThemeKeySMTPPasswordEncrypted].(string); ok && enc != "" {
		out[models.ThemeKeySMTPPasswordEncrypted] = vault.Mask(h.cipher.Decrypt(enc), 3)
	}
	c.JSON(http.StatusOK, gin.H{
		"theme_config":   out,
		"vault_degraded": h.cipher.Degraded(),
		"custom_domain":  site.CustomDomain,
		"logo_url":       site.LogoURL,
	})
}

type updateSiteSettingsRequest struct {
	ThemeConfig  map[string]interface{} `json:"theme_config"`
	SMTPPassword *string                `json:"smtp_password"`
	LogoURL      *string                `json:"logo_url"`
	CustomDomain *string                `json:"custom_domain"`
}

// UpdateSiteSettings merges theme keys into the site config. A plain
// smtp_password is encrypted before it touches storage; the resolver
// cache is invalidated so the change is visible on the next request.
func (h *AdminHandler) UpdateSiteSettings(c *gin.Context) {
	var req updateSiteSettingsRequest
	if !h.bind(c, &req) {
		return
	}
	site := h.site(c)

	if site.ThemeConfig == nil {
		site.ThemeConfig = datatypes.JSONMap{}
	}
	for k, v := range req.ThemeConfig {
		if k == models.ThemeKeySMTPPasswordEncrypted {
			continue
		}
		site.ThemeConfig[k] = v
	}
	if req.SMTPPassword != nil {
		enc, err := h.cipher.Encrypt(*req.SMTPPassword)
		if err != nil {
			appErrors.HandleError(c, appErrors.InternalError(err))
			return
		}
		site.ThemeConfig[models.ThemeKeySMTPPasswordEncrypted] = enc
	}
	if req.LogoURL != nil {
		site.LogoURL = *req.LogoURL
	}
	if req.CustomDomain != nil {
		site.CustomDomain = *req.CustomDomain
	}

	if err := h.sites.Update(c.Request.Context(), site); err != nil {
		appErrors.HandleError(c, appErrors.InternalError(err))
		return
	}
	h.resolver.InvalidateAll()
	h.audit.Record(c.Request.Context(), h.site(c), h.actor(c).ID, "site_settings_update", "site", site.ID, nil)
	c.JSON(http.StatusOK, gin.H{"detail": "Settings updated", "vault_degraded": h.cipher.Degraded()})
}

func (h *AdminHandler) AuditLog(c *gin.Context) {
	page, size := h.pagination(c)
	items, total, err := h.audit.List(c.Request.Context(), h.site(c), page, size)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged(items, total, page, size))
}

// Reconcile recomputes the denormalized student counters from the
// enrollment table on demand.
func (h *AdminHandler) Reconcile(c *gin.Context) {
	if h.reconciler == nil {
		appErrors.HandleError(c, appErrors.Unavailable(nil))
		return
	}
	if err := h.reconciler.RunOnce(c.Request.Context()); err != nil {
		appErrors.HandleError(c, appErrors.InternalError(err))
		return
	}
	h.audit.Record(c.Request.Context(), h.site(c), h.actor(c).ID, "reconcile", "site", h.site(c).ID, nil)
	c.JSON(http.StatusOK, gin.H{"detail": "Reconciliation completed"})
}
