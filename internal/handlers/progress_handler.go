package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/services"
)

// ProgressHandler is the student-facing progress surface.
type ProgressHandler struct {
	BaseHandler
	progress *services.ProgressService
}

func NewProgressHandler(progress *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

func (h *ProgressHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.PUT("/lesson/:lesson_id", h.UpdateLesson)
	group.GET("/lesson/:lesson_id", h.GetLesson)
	group.GET("/course/:course_id", h.GetCourse)
}

type lessonProgressRequest struct {
	ProgressPercentage int     `json:"progress_percentage" binding:"min=0,max=100"`
	TimeSpent          *int    `json:"time_spent,omitempty" binding:"omitempty,min=0"`
	LastPosition       *int    `json:"last_position,omitempty" binding:"omitempty,min=0"`
	Notes              *string `json:"notes,omitempty"`
}

// UpdateLesson runs the progress engine and returns the stored row plus
// the recomputed course percentage.
func (h *ProgressHandler) UpdateLesson(c *gin.Context) {
	var req lessonProgressRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.progress.UpdateLessonProgress(
		c.Request.Context(), h.site(c), h.actor(c).ID, c.Param("lesson_id"),
		services.LessonProgressUpdate{
			ProgressPercentage: req.ProgressPercentage,
			TimeSpent:          req.TimeSpent,
			LastPosition:       req.LastPosition,
			Notes:              req.Notes,
		},
	)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ProgressHandler) GetLesson(c *gin.Context) {
	row, err := h.progress.GetLessonProgress(c.Request.Context(), h.site(c), h.actor(c).ID, c.Param("lesson_id"))
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *ProgressHandler) GetCourse(c *gin.Context) {
	rows, err := h.progress.CourseProgress(c.Request.Context(), h.site(c), h.actor(c).ID, c.Param("course_id"))
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lessons": rows})
}
