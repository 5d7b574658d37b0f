package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/models"
	"academy_backend/internal/services"
)

type QuizHandler struct {
	BaseHandler
	quizzes *services.QuizService
}

func NewQuizHandler(quizzes *services.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

func (h *QuizHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/:quiz_id", h.Get)
	group.POST("/:quiz_id/attempts", h.Submit)
	group.GET("/:quiz_id/attempts", h.ListAttempts)
}

// RegisterAdminRoutes mounts the instructor/admin quiz management.
func (h *QuizHandler) RegisterAdminRoutes(group *gin.RouterGroup) {
	group.POST("", h.Create)
	group.PUT("/:quiz_id/publish", h.Publish)
}

// Get returns the quiz with its questions, correct answers stripped by
// the model's JSON tags.
func (h *QuizHandler) Get(c *gin.Context) {
	quiz, questions, err := h.quizzes.GetQuiz(c.Request.Context(), h.site(c), c.Param("quiz_id"))
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	if !quiz.IsPublished && h.actor(c).Role == models.UserRoleStudent {
		appErrors.HandleError(c, appErrors.NotFound("Quiz"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"quiz": quiz, "questions": questions})
}

type submitAttemptRequest struct {
	Answers   map[string]string `json:"answers" binding:"required"`
	TimeTaken int               `json:"time_taken" binding:"min=0"`
}

func (h *QuizHandler) Submit(c *gin.Context) {
	var req submitAttemptRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.quizzes.SubmitAttempt(
		c.Request.Context(), h.site(c), h.actor(c).ID, c.Param("quiz_id"),
		req.Answers, req.TimeTaken,
	)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *QuizHandler) ListAttempts(c *gin.Context) {
	attempts, err := h.quizzes.ListAttempts(c.Request.Context(), h.site(c), h.actor(c).ID, c.Param("quiz_id"))
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}

type createQuizRequest struct {
	CourseID     string                  `json:"course_id" binding:"required,uuid"`
	LessonID     *string                 `json:"lesson_id" binding:"omitempty,uuid"`
	Title        string                  `json:"title" binding:"required,max=255"`
	Description  string                  `json:"description"`
	PassingScore int                     `json:"passing_score" binding:"min=0,max=100"`
	MaxAttempts  int                     `json:"max_attempts" binding:"min=0"`
	TimeLimit    int                     `json:"time_limit" binding:"min=0"`
	Questions    []createQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

type createQuestionRequest struct {
	Text          string   `json:"text" binding:"required"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer" binding:"required"`
	Points        int      `json:"points" binding:"min=0"`
}

func (h *QuizHandler) Create(c *gin.Context) {
	var req createQuizRequest
	if !h.bind(c, &req) {
		return
	}
	questions := make([]services.QuestionInput, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, services.QuestionInput{
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
		})
	}
	quiz, err := h.quizzes.CreateQuiz(c.Request.Context(), h.site(c), services.CreateQuizInput{
		CourseID:     req.CourseID,
		LessonID:     req.LessonID,
		Title:        req.Title,
		Description:  req.Description,
		PassingScore: req.PassingScore,
		MaxAttempts:  req.MaxAttempts,
		TimeLimit:    req.TimeLimit,
		Questions:    questions,
	})
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

type publishRequest struct {
	Published bool `json:"published"`
}

func (h *QuizHandler) Publish(c *gin.Context) {
	var req publishRequest
	if !h.bind(c, &req) {
		return
	}
	quiz, err := h.quizzes.PublishQuiz(c.Request.Context(), h.site(c), c.Param("quiz_id"), req.Published)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}
