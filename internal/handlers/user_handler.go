package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/services"
)

// UserHandler serves the authenticated user's own profile plus lookups of
// other users on the same tenant.
type UserHandler struct {
	BaseHandler
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/me", h.Me)
	group.PUT("/me", h.UpdateMe)
	group.GET("/:user_id", h.Get)
}

func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, h.actor(c))
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req updateProfileRequest
	if !h.bind(c, &req) {
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), h.site(c), h.actor(c).ID, services.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), h.site(c), c.Param("user_id"))
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
