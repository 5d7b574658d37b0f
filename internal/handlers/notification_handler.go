package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/models"
	"academy_backend/internal/services"
)

type NotificationHandler struct {
	BaseHandler
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("", h.List)
	group.GET("/unread-count", h.UnreadCount)
	group.PUT("/:notification_id/read", h.MarkRead)
	group.PUT("/read-all", h.MarkAllRead)
	group.GET("/settings", h.GetSettings)
	group.PUT("/settings", h.UpdateSettings)
}

func (h *NotificationHandler) List(c *gin.Context) {
	page, size := h.pagination(c)
	unreadOnly := c.Query("unread") == "true"
	items, total, err := h.notifications.List(c.Request.Context(), h.site(c), h.actor(c).ID, unreadOnly, page, size)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged(items, total, page, size))
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notifications.CountUnread(c.Request.Context(), h.site(c), h.actor(c).ID)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	err := h.notifications.MarkRead(c.Request.Context(), h.site(c), h.actor(c).ID, c.Param("notification_id"))
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	updated, err := h.notifications.MarkAllRead(c.Request.Context(), h.site(c), h.actor(c).ID)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *NotificationHandler) GetSettings(c *gin.Context) {
	settings, err := h.notifications.GetSettings(c.Request.Context(), h.site(c), h.actor(c).ID)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

type notificationSettingsRequest struct {
	EmailEnabled       bool `json:"email_enabled"`
	InAppEnabled       bool `json:"in_app_enabled"`
	CourseUpdates      bool `json:"course_updates"`
	ProgressMilestones bool `json:"progress_milestones"`
}

func (h *NotificationHandler) UpdateSettings(c *gin.Context) {
	var req notificationSettingsRequest
	if !h.bind(c, &req) {
		return
	}
	settings, err := h.notifications.UpdateSettings(c.Request.Context(), h.site(c), h.actor(c).ID, models.NotificationSettings{
		EmailEnabled:       req.EmailEnabled,
		InAppEnabled:       req.InAppEnabled,
		CourseUpdates:      req.CourseUpdates,
		ProgressMilestones: req.ProgressMilestones,
	})
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
