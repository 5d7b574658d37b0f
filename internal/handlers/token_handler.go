package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/models"
	"academy_backend/internal/services"
)

// TokenHandler exposes the user-facing wallet plus the admin grant and
// deduct operations.
type TokenHandler struct {
	BaseHandler
	tokens *services.TokenService
	audit  *services.AuditService
}

func NewTokenHandler(tokens *services.TokenService, audit *services.AuditService) *TokenHandler {
	return &TokenHandler{tokens: tokens, audit: audit}
}

func (h *TokenHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/balance", h.Balance)
	group.GET("/transactions", h.Transactions)
	group.POST("/transfer", h.Transfer)
}

func (h *TokenHandler) RegisterAdminRoutes(group *gin.RouterGroup) {
	group.POST("/grant", h.Grant)
	group.POST("/deduct", h.Deduct)
}

func (h *TokenHandler) Balance(c *gin.Context) {
	balance, err := h.tokens.Balance(c.Request.Context(), h.site(c), h.actor(c).ID)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

func (h *TokenHandler) Transactions(c *gin.Context) {
	page, size := h.pagination(c)
	items, total, err := h.tokens.Transactions(c.Request.Context(), h.site(c), h.actor(c).ID, page, size)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged(items, total, page, size))
}

type transferRequest struct {
	ToUserID    string `json:"to_user_id" binding:"required,uuid"`
	Amount      int    `json:"amount" binding:"required,min=1"`
	Description string `json:"description" binding:"max=255"`
}

func (h *TokenHandler) Transfer(c *gin.Context) {
	var req transferRequest
	if !h.bind(c, &req) {
		return
	}
	err := h.tokens.Transfer(
		c.Request.Context(), h.site(c), h.actor(c).ID, req.ToUserID,
		req.Amount, req.Description,
	)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Transfer completed"})
}

type adminTokenRequest struct {
	UserID      string `json:"user_id" binding:"required,uuid"`
	Amount      int    `json:"amount" binding:"required,min=1"`
	Description string `json:"description" binding:"required,max=255"`
	ReferenceID string `json:"reference_id" binding:"omitempty,max=64"`
}

// Grant credits a user by admin fiat. A reference id makes the grant
// idempotent against retries.
func (h *TokenHandler) Grant(c *gin.Context) {
	var req adminTokenRequest
	if !h.bind(c, &req) {
		return
	}
	refType := ""
	if req.ReferenceID != "" {
		refType = models.ReferenceAdminGrant
	}
	tx, err := h.tokens.Award(c.Request.Context(), h.site(c), services.AwardParams{
		UserID:        req.UserID,
		Amount:        req.Amount,
		Description:   req.Description,
		ReferenceType: refType,
		ReferenceID:   req.ReferenceID,
	})
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	h.audit.Record(c.Request.Context(), h.site(c), h.actor(c).ID, "token_grant", "user", req.UserID,
		map[string]interface{}{"amount": req.Amount, "description": req.Description})
	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

func (h *TokenHandler) Deduct(c *gin.Context) {
	var req adminTokenRequest
	if !h.bind(c, &req) {
		return
	}
	refType := ""
	if req.ReferenceID != "" {
		refType = models.ReferenceAdminDeduct
	}
	tx, err := h.tokens.Spend(c.Request.Context(), h.site(c), services.SpendParams{
		UserID:        req.UserID,
		Amount:        req.Amount,
		Description:   req.Description,
		ReferenceType: refType,
		ReferenceID:   req.ReferenceID,
	})
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	h.audit.Record(c.Request.Context(), h.site(c), h.actor(c).ID, "token_deduct", "user", req.UserID,
		map[string]interface{}{"amount": req.Amount, "description": req.Description})
	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}
