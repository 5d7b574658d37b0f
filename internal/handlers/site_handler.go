package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academy_backend/internal/tenant"
	"academy_backend/internal/vault"
)

// SiteHandler serves the public tenant endpoints: branding for the
// front-end shell and basic site info. Both require a resolved tenant
// but no auth.
type SiteHandler struct {
	BaseHandler
	cipher *vault.Cipher
}

func NewSiteHandler(cipher *vault.Cipher) *SiteHandler {
	return &SiteHandler{cipher: cipher}
}

func (h *SiteHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/theme", h.Theme)
	group.GET("/info", h.Info)
}

// Theme returns only safe branding keys; reward amounts and SMTP fields
// never appear here.
func (h *SiteHandler) Theme(c *gin.Context) {
	site := h.site(c)
	settings := tenant.NewSettings(site, h.cipher)
	c.JSON(http.StatusOK, settings.PublicTheme())
}

func (h *SiteHandler) Info(c *gin.Context) {
	site := h.site(c)
	settings := tenant.NewSettings(site, h.cipher)
	c.JSON(http.StatusOK, gin.H{
		"name":               site.Name,
		"subdomain":          site.Subdomain,
		"logo_url":           site.LogoURL,
		"allow_registration": settings.AllowRegistration(),
	})
}
