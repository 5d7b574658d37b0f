package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/models"
	"academy_backend/internal/services"
)

// CourseHandler serves the catalog: public reads plus the
// instructor/admin management surface.
type CourseHandler struct {
	BaseHandler
	courses *services.CourseService
	audit   *services.AuditService
}

func NewCourseHandler(courses *services.CourseService, audit *services.AuditService) *CourseHandler {
	return &CourseHandler{courses: courses, audit: audit}
}

// RegisterRoutes mounts the authenticated read surface.
func (h *CourseHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("", h.List)
	group.GET("/categories", h.ListCategories)
	group.GET("/:course_id", h.Get)
	group.GET("/:course_id/sections", h.ListSections)
	group.GET("/:course_id/lessons", h.ListLessons)
	group.GET("/:course_id/cohorts", h.ListCohorts)
}

func (h *CourseHandler) RegisterAdminRoutes(group *gin.RouterGroup) {
	group.POST("", h.Create)
	group.PUT("/:course_id", h.Update)
	group.PUT("/:course_id/publish", h.Publish)
	group.POST("/categories", h.CreateCategory)
	group.DELETE("/categories/:category_id", h.DeleteCategory)
	group.POST("/:course_id/sections", h.CreateSection)
	group.POST("/lessons", h.CreateLesson)
	group.PUT("/lessons/:lesson_id", h.UpdateLesson)
	group.PUT("/lessons/:lesson_id/publish", h.PublishLesson)
	group.POST("/cohorts", h.CreateCohort)
	group.PUT("/cohorts/:cohort_id", h.UpdateCohort)
}

func (h *CourseHandler) List(c *gin.Context) {
	page, size := h.pagination(c)
	publishedOnly := h.actor(c).Role == models.UserRoleStudent
	items, total, err := h.courses.ListCourses(c.Request.Context(), h.site(c), publishedOnly, page, size)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged(items, total, page, size))
}

func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.GetCourse(c.Request.Context(), h.site(c), c.Param("course_id"))
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	if !course.IsPublished && h.actor(c).Role == models.UserRoleStudent {
		appErrors.HandleError(c, appErrors.ErrCourseNotFound)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) ListCategories(c *gin.Context) {
	categories, err := h.courses.ListCategories(c.Request.Context(), h.site(c))
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *CourseHandler) ListSections(c *gin.Context) {
	sections, err := h.courses.ListSections(c.Request.Context(), h.site(c), c.Param("course_id"))
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": sections})
}

func (h *CourseHandler) ListLessons(c *gin.Context) {
	publishedOnly := h.actor(c).Role == models.UserRoleStudent
	lessons, err := h.courses.ListLessons(c.Request.Context(), h.site(c), c.Param("course_id"), publishedOnly)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lessons": lessons})
}

func (h *CourseHandler) ListCohorts(c *gin.Context) {
	cohorts, err := h.courses.ListCohorts(c.Request.Context(), h.site(c), c.Param("course_id"))
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cohorts": cohorts})
}

type courseRequest struct {
	Title              string  `json:"title" binding:"required,max=255"`
	Description        string  `json:"description"`
	CategoryID         *string `json:"category_id" binding:"omitempty,uuid"`
	CoverURL           string  `json:"cover_url" binding:"omitempty,url"`
	TokenReward        int     `json:"token_reward" binding:"min=0"`
	CertificateEnabled bool    `json:"certificate_enabled"`
}

func (h *CourseHandler) Create(c *gin.Context) {
	var req courseRequest
	if !h.bind(c, &req) {
		return
	}
	course, err := h.courses.CreateCourse(c.Request.Context(), h.site(c), services.CourseInput{
		Title:              req.Title,
		Description:        req.Description,
		CategoryID:         req.CategoryID,
		InstructorID:       h.actor(c).ID,
		CoverURL:           req.CoverURL,
		TokenReward:        req.TokenReward,
		CertificateEnabled: req.CertificateEnabled,
	})
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	h.audit.Record(c.Request.Context(), h.site(c), h.actor(c).ID, "course_create", "course", course.ID, nil)
	c.JSON(http.StatusCreated, course)
}

func (h *CourseHandler) Update(c *gin.Context) {
	var req courseRequest
	if !h.bind(c, &req) {
		return
	}
	course, err := h.courses.UpdateCourse(c.Request.Context(), h.site(c), c.Param("course_id"), services.CourseInput{
		Title:              req.Title,
		Description:        req.Description,
		CategoryID:         req.CategoryID,
		CoverURL:           req.CoverURL,
		TokenReward:        req.TokenReward,
		CertificateEnabled: req.CertificateEnabled,
	})
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) Publish(c *gin.Context) {
	var req publishRequest
	if !h.bind(c, &req) {
		return
	}
	course, err := h.courses.PublishCourse(c.Request.Context(), h.site(c), c.Param("course_id"), req.Published)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	h.audit.Record(c.Request.Context(), h.site(c), h.actor(c).ID, "course_publish", "course", course.ID,
		map[string]interface{}{"published": req.Published})
	c.JSON(http.StatusOK, course)
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Slug        string `json:"slug" binding:"required,max=100"`
	Description string `json:"description"`
}

func (h *CourseHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if !h.bind(c, &req) {
		return
	}
	category, err := h.courses.CreateCategory(c.Request.Context(), h.site(c), req.Name, req.Slug, req.Description)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *CourseHandler) DeleteCategory(c *gin.Context) {
	if err := h.courses.DeleteCategory(c.Request.Context(), h.site(c), c.Param("category_id")); err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Category deleted"})
}

type sectionRequest struct {
	Title    string `json:"title" binding:"required,max=255"`
	Position int    `json:"position" binding:"min=0"`
}

func (h *CourseHandler) CreateSection(c *gin.Context) {
	var req sectionRequest
	if !h.bind(c, &req) {
		return
	}
	section, err := h.courses.CreateSection(c.Request.Context(), h.site(c), c.Param("course_id"), req.Title, req.Position)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, section)
}

type lessonRequest struct {
	CourseID  string  `json:"course_id" binding:"required,uuid"`
	SectionID *string `json:"section_id" binding:"omitempty,uuid"`
	Title     string  `json:"title" binding:"required,max=255"`
	Type      string  `json:"type" binding:"required,lessontype"`
	Content   string  `json:"content"`
	MediaURL  string  `json:"media_url" binding:"omitempty,url"`
	Duration  int     `json:"duration" binding:"min=0"`
	Position  int     `json:"position" binding:"min=0"`
}

func (h *CourseHandler) CreateLesson(c *gin.Context) {
	var req lessonRequest
	if !h.bind(c, &req) {
		return
	}
	lesson, err := h.courses.CreateLesson(c.Request.Context(), h.site(c), services.LessonInput{
		CourseID:  req.CourseID,
		SectionID: req.SectionID,
		Title:     req.Title,
		Type:      models.LessonType(req.Type),
		Content:   req.Content,
		MediaURL:  req.MediaURL,
		Duration:  req.Duration,
		Position:  req.Position,
	})
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

func (h *CourseHandler) UpdateLesson(c *gin.Context) {
	var req lessonRequest
	if !h.bind(c, &req) {
		return
	}
	lesson, err := h.courses.UpdateLesson(c.Request.Context(), h.site(c), c.Param("lesson_id"), services.LessonInput{
		CourseID:  req.CourseID,
		SectionID: req.SectionID,
		Title:     req.Title,
		Type:      models.LessonType(req.Type),
		Content:   req.Content,
		MediaURL:  req.MediaURL,
		Duration:  req.Duration,
		Position:  req.Position,
	})
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

// PublishLesson changes the published lesson set, so every enrollment's
// progress is recalculated behind it.
func (h *CourseHandler) PublishLesson(c *gin.Context) {
	var req publishRequest
	if !h.bind(c, &req) {
		return
	}
	lesson, err := h.courses.PublishLesson(c.Request.Context(), h.site(c), c.Param("lesson_id"), req.Published)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	h.audit.Record(c.Request.Context(), h.site(c), h.actor(c).ID, "lesson_publish", "lesson", lesson.ID,
		map[string]interface{}{"published": req.Published})
	c.JSON(http.StatusOK, lesson)
}

type cohortRequest struct {
	CourseID         string     `json:"course_id" binding:"required,uuid"`
	Name             string     `json:"name" binding:"required,max=255"`
	StartsAt         *time.Time `json:"starts_at"`
	EndsAt           *time.Time `json:"ends_at"`
	MaxStudents      int        `json:"max_students" binding:"min=0"`
	RegistrationOpen bool       `json:"registration_open"`
}

func (h *CourseHandler) CreateCohort(c *gin.Context) {
	var req cohortRequest
	if !h.bind(c, &req) {
		return
	}
	cohort, err := h.courses.CreateCohort(c.Request.Context(), h.site(c), services.CohortInput{
		CourseID:         req.CourseID,
		Name:             req.Name,
		StartsAt:         req.StartsAt,
		EndsAt:           req.EndsAt,
		MaxStudents:      req.MaxStudents,
		RegistrationOpen: req.RegistrationOpen,
	})
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cohort)
}

func (h *CourseHandler) UpdateCohort(c *gin.Context) {
	var req cohortRequest
	if !h.bind(c, &req) {
		return
	}
	cohort, err := h.courses.UpdateCohort(c.Request.Context(), h.site(c), c.Param("cohort_id"), services.CohortInput{
		CourseID:         req.CourseID,
		Name:             req.Name,
		StartsAt:         req.StartsAt,
		EndsAt:           req.EndsAt,
		MaxStudents:      req.MaxStudents,
		RegistrationOpen: req.RegistrationOpen,
	})
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cohort)
}
