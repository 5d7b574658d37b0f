package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/services"
)

type AssignmentHandler struct {
	BaseHandler
	assignments *services.AssignmentService
}

func NewAssignmentHandler(assignments *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

func (h *AssignmentHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/:assignment_id/submissions", h.Submit)
	group.GET("/:assignment_id/submissions/me", h.MySubmission)
}

// RegisterAdminRoutes mounts the instructor-side lifecycle.
func (h *AssignmentHandler) RegisterAdminRoutes(group *gin.RouterGroup) {
	group.POST("", h.Create)
	group.PUT("/:assignment_id/publish", h.Publish)
	group.GET("/:assignment_id/submissions", h.ListSubmissions)
	group.PUT("/submissions/:submission_id/grade", h.Grade)
}

type submitAssignmentRequest struct {
	Content string `json:"content"`
	FileURL string `json:"file_url" binding:"omitempty,url"`
}

func (h *AssignmentHandler) Submit(c *gin.Context) {
	var req submitAssignmentRequest
	if !h.bind(c, &req) {
		return
	}
	submission, err := h.assignments.Submit(
		c.Request.Context(), h.site(c), h.actor(c).ID, c.Param("assignment_id"),
		req.Content, req.FileURL,
	)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, submission)
}

func (h *AssignmentHandler) MySubmission(c *gin.Context) {
	submission, err := h.assignments.GetSubmission(c.Request.Context(), h.site(c), h.actor(c).ID, c.Param("assignment_id"))
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

func (h *AssignmentHandler) ListSubmissions(c *gin.Context) {
	page, size := h.pagination(c)
	items, total, err := h.assignments.ListSubmissions(c.Request.Context(), h.site(c), c.Param("assignment_id"), page, size)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged(items, total, page, size))
}

type gradeRequest struct {
	Grade           int    `json:"grade" binding:"min=0"`
	Feedback        string `json:"feedback"`
	RequireRevision bool   `json:"require_revision"`
}

func (h *AssignmentHandler) Grade(c *gin.Context) {
	var req gradeRequest
	if !h.bind(c, &req) {
		return
	}
	submission, err := h.assignments.Grade(
		c.Request.Context(), h.site(c), h.actor(c).ID, c.Param("submission_id"),
		services.GradeInput{
			Grade:           req.Grade,
			Feedback:        req.Feedback,
			RequireRevision: req.RequireRevision,
		},
	)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

type createAssignmentRequest struct {
	CourseID    string     `json:"course_id" binding:"required,uuid"`
	LessonID    *string    `json:"lesson_id" binding:"omitempty,uuid"`
	Title       string     `json:"title" binding:"required,max=255"`
	Description string     `json:"description"`
	DueAt       *time.Time `json:"due_at"`
	MaxGrade    int        `json:"max_grade" binding:"min=0"`
}

func (h *AssignmentHandler) Create(c *gin.Context) {
	var req createAssignmentRequest
	if !h.bind(c, &req) {
		return
	}
	assignment, err := h.assignments.CreateAssignment(c.Request.Context(), h.site(c), services.CreateAssignmentInput{
		CourseID:    req.CourseID,
		LessonID:    req.LessonID,
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
		MaxGrade:    req.MaxGrade,
	})
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

func (h *AssignmentHandler) Publish(c *gin.Context) {
	var req publishRequest
	if !h.bind(c, &req) {
		return
	}
	assignment, err := h.assignments.PublishAssignment(c.Request.Context(), h.site(c), c.Param("assignment_id"), req.Published)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}
