package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/services"
)

type CertificateHandler struct {
	BaseHandler
	certificates *services.CertificateService
}

func NewCertificateHandler(certificates *services.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificates: certificates}
}

func (h *CertificateHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("", h.ListMine)
}

// RegisterPublicRoutes mounts verification, which needs no auth but does
// need a resolved tenant.
func (h *CertificateHandler) RegisterPublicRoutes(group *gin.RouterGroup) {
	group.GET("/verify/:certificate_id", h.Verify)
}

func (h *CertificateHandler) ListMine(c *gin.Context) {
	certs, err := h.certificates.ListByUser(c.Request.Context(), h.site(c), h.actor(c).ID)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificates": certs})
}

func (h *CertificateHandler) Verify(c *gin.Context) {
	result, err := h.certificates.Verify(c.Request.Context(), h.site(c), c.Param("certificate_id"))
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
