package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/services"
)

type EnrollmentHandler struct {
	BaseHandler
	enrollments *services.EnrollmentService
}

func NewEnrollmentHandler(enrollments *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

func (h *EnrollmentHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("", h.Enroll)
	group.GET("", h.ListMine)
	group.GET("/course/:course_id", h.Get)
	group.DELETE("/course/:course_id", h.Drop)
}

type enrollRequest struct {
	CourseID string  `json:"course_id" binding:"required,uuid"`
	CohortID *string `json:"cohort_id" binding:"omitempty,uuid"`
}

func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req enrollRequest
	if !h.bind(c, &req) {
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), h.site(c), h.actor(c).ID, req.CourseID, req.CohortID)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	page, size := h.pagination(c)
	items, total, err := h.enrollments.ListByUser(c.Request.Context(), h.site(c), h.actor(c).ID, page, size)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged(items, total, page, size))
}

func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollment, err := h.enrollments.Get(c.Request.Context(), h.site(c), h.actor(c).ID, c.Param("course_id"))
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

func (h *EnrollmentHandler) Drop(c *gin.Context) {
	if err := h.enrollments.Drop(c.Request.Context(), h.site(c), h.actor(c).ID, c.Param("course_id")); err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Enrollment dropped"})
}
