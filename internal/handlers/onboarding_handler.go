package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/services"
)

// OnboardingHandler serves tenant self-registration. These routes are
// public and resolve no tenant: they create one.
type OnboardingHandler struct {
	BaseHandler
	onboarding *services.OnboardingService
}

func NewOnboardingHandler(onboarding *services.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboarding: onboarding}
}

func (h *OnboardingHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/check-subdomain", h.CheckSubdomain)
	group.POST("/register-tenant", h.RegisterTenant)
}

type checkSubdomainRequest struct {
	Subdomain string `json:"subdomain" binding:"required"`
}

func (h *OnboardingHandler) CheckSubdomain(c *gin.Context) {
	var req checkSubdomainRequest
	if !h.bind(c, &req) {
		return
	}
	check, err := h.onboarding.CheckSubdomain(c.Request.Context(), req.Subdomain)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, check)
}

type registerTenantRequest struct {
	Subdomain     string `json:"subdomain" binding:"required,subdomain"`
	SiteName      string `json:"site_name" binding:"required,max=255"`
	AdminEmail    string `json:"admin_email" binding:"required,email"`
	AdminUsername string `json:"admin_username" binding:"required,min=3,max=50"`
	AdminPassword string `json:"admin_password" binding:"required,min=8"`
	FirstName     string `json:"first_name" binding:"max=100"`
	LastName      string `json:"last_name" binding:"max=100"`
}

func (h *OnboardingHandler) RegisterTenant(c *gin.Context) {
	var req registerTenantRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.onboarding.RegisterTenant(c.Request.Context(), services.RegisterTenantInput{
		Subdomain:     req.Subdomain,
		SiteName:      req.SiteName,
		AdminEmail:    req.AdminEmail,
		AdminUsername: req.AdminUsername,
		AdminPassword: req.AdminPassword,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
	})
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
