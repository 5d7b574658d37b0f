package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/logger"
	"academy_backend/internal/models"
	"academy_backend/internal/repositories"
	"academy_backend/internal/tenant"
	"academy_backend/internal/vault"
)

// QuizService grades quiz attempts and triggers the downstream reward and
// progress updates.
type QuizService struct {
	repos    *repositories.Registry
	tokens   *TokenService
	progress *ProgressService
	cipher   *vault.Cipher
}

func NewQuizService(repos *repositories.Registry, tokens *TokenService, progress *ProgressService, cipher *vault.Cipher) *QuizService {
	return &QuizService{repos: repos, tokens: tokens, progress: progress, cipher: cipher}
}

// AttemptResult is returned to the student after grading. Correct answers
// are never echoed back.
type AttemptResult struct {
	Attempt      *models.QuizAttempt `json:"attempt"`
	Score        int                 `json:"score"`
	Passed       bool                `json:"passed"`
	PassingScore int                 `json:"passing_score"`
	AttemptsLeft int                 `json:"attempts_left"` // -1 = unlimited
}

// SubmitAttempt grades one attempt. Answers map question id to the
// student's answer; comparison is case-insensitive on trimmed strings.
func (s *QuizService) SubmitAttempt(ctx context.Context, site *models.Site, userID, quizID string, answers map[string]string, timeTaken int) (*AttemptResult, error) {
	quiz, err := s.repos.Quizzes.FindQuiz(ctx, site.ID, quizID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.NotFound("Quiz")
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	if !quiz.IsPublished {
		return nil, appErrors.NotFound("Quiz")
	}

	enrollment, err := s.repos.Enrollments.FindByUserAndCourse(ctx, site.ID, userID, quiz.CourseID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.ErrNotEnrolled
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	if enrollment.Status != models.EnrollmentStatusActive && enrollment.Status != models.EnrollmentStatusCompleted {
		return nil, appErrors.ErrNotEnrolled
	}

	attempts, err := s.repos.Quizzes.CountAttempts(ctx, site.ID, userID, quizID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	if quiz.MaxAttempts > 0 && attempts >= int64(quiz.MaxAttempts) {
		return nil, appErrors.ErrAttemptLimitReached
	}

	questions, err := s.repos.Quizzes.FindQuestions(ctx, site.ID, quizID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	score := GradeQuiz(questions, answers)
	passed := score >= quiz.PassingScore

	attempt := &models.QuizAttempt{
		QuizID:        quizID,
		UserID:        userID,
		AttemptNumber: int(attempts) + 1,
		Score:         score,
		Passed:        passed,
		TimeTaken:     timeTaken,
	}
	attempt.SiteID = site.ID
	if raw, err := json.Marshal(answers); err == nil {
		attempt.Answers = datatypes.JSON(raw)
	}
	if err := s.repos.Quizzes.CreateAttempt(ctx, attempt); err != nil {
		return nil, appErrors.InternalError(err)
	}

	if passed {
		settings := tenant.NewSettings(site, s.cipher)
		if reward := settings.QuizTokenReward(); reward > 0 {
			_, err := s.tokens.Award(ctx, site, AwardParams{
				UserID:        userID,
				Amount:        reward,
				Description:   fmt.Sprintf("Passed quiz %q", quiz.Title),
				ReferenceType: models.ReferenceQuizPassed,
				ReferenceID:   quiz.ID,
			})
			if err != nil {
				logger.Warn("Quiz pass award failed", "quiz_id", quizID, "error", err)
			}
		}
		// A passed quiz may unblock the lesson it gates.
		if quiz.LessonID != nil {
			if err := s.progress.RefreshLesson(ctx, site, userID, *quiz.LessonID); err != nil {
				logger.Warn("Progress refresh after quiz failed",
					"lesson_id", *quiz.LessonID,
					"error", err,
				)
			}
		}
	}

	left := -1
	if quiz.MaxAttempts > 0 {
		left = quiz.MaxAttempts - attempt.AttemptNumber
	}
	return &AttemptResult{
		Attempt:      attempt,
		Score:        score,
		Passed:       passed,
		PassingScore: quiz.PassingScore,
		AttemptsLeft: left,
	}, nil
}

// GradeQuiz scores answers against questions: round(earned/total*100).
// A quiz with no questions grades to 0.
func GradeQuiz(questions []models.QuizQuestion, answers map[string]string) int {
	total := 0
	earned := 0
	for i := range questions {
		q := &questions[i]
		points := q.Points
		if points <= 0 {
			points = 1
		}
		total += points
		if answerMatches(answers[q.ID], q.CorrectAnswer) {
			earned += points
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(earned) / float64(total) * 100))
}

func answerMatches(given, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(correct))
}

func (s *QuizService) GetQuiz(ctx context.Context, site *models.Site, quizID string) (*models.Quiz, []models.QuizQuestion, error) {
	quiz, err := s.repos.Quizzes.FindQuiz(ctx, site.ID, quizID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, nil, appErrors.NotFound("Quiz")
	}
	if err != nil {
		return nil, nil, appErrors.InternalError(err)
	}
	questions, err := s.repos.Quizzes.FindQuestions(ctx, site.ID, quizID)
	if err != nil {
		return nil, nil, appErrors.InternalError(err)
	}
	return quiz, questions, nil
}

func (s *QuizService) ListAttempts(ctx context.Context, site *models.Site, userID, quizID string) ([]models.QuizAttempt, error) {
	attempts, err := s.repos.Quizzes.FindAttempts(ctx, site.ID, userID, quizID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return attempts, nil
}

// CreateQuizInput is the instructor-facing quiz definition.
type CreateQuizInput struct {
	CourseID     string
	LessonID     *string
	Title        string
	Description  string
	PassingScore int
	MaxAttempts  int
	TimeLimit    int
	Questions    []QuestionInput
}

type QuestionInput struct {
	Text          string
	Options       []string
	CorrectAnswer string
	Points        int
}

func (s *QuizService) CreateQuiz(ctx context.Context, site *models.Site, input CreateQuizInput) (*models.Quiz, error) {
	if _, err := s.repos.Courses.FindCourse(ctx, site.ID, input.CourseID); err != nil {
		return nil, appErrors.ErrCourseNotFound
	}
	if input.LessonID != nil {
		lesson, err := s.repos.Courses.FindLesson(ctx, site.ID, *input.LessonID)
		if err != nil {
			return nil, appErrors.ErrLessonNotFound
		}
		if lesson.CourseID != input.CourseID {
			return nil, appErrors.ValidationError("Lesson belongs to a different course")
		}
	}

	passingScore := input.PassingScore
	if passingScore <= 0 {
		passingScore = 60
	}
	quiz := &models.Quiz{
		CourseID:     input.CourseID,
		LessonID:     input.LessonID,
		Title:        input.Title,
		Description:  input.Description,
		PassingScore: passingScore,
		MaxAttempts:  input.MaxAttempts,
		TimeLimit:    input.TimeLimit,
	}
	quiz.ID = uuid.NewString()
	quiz.SiteID = site.ID

	err := s.repos.Atomic(func(r *repositories.Registry) error {
		if err := r.Quizzes.CreateQuiz(ctx, quiz); err != nil {
			return appErrors.InternalError(err)
		}
		for i, in := range input.Questions {
			question := &models.QuizQuestion{
				QuizID:        quiz.ID,
				Text:          in.Text,
				CorrectAnswer: in.CorrectAnswer,
				Points:        in.Points,
				Position:      i,
			}
			question.SiteID = site.ID
			if len(in.Options) > 0 {
				if raw, err := json.Marshal(in.Options); err == nil {
					question.Options = datatypes.JSON(raw)
				}
			}
			if err := r.Quizzes.CreateQuestion(ctx, question); err != nil {
				return appErrors.InternalError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

// PublishQuiz flips visibility. Publishing a lesson-gated quiz tightens
// that lesson's completion requirement for everyone enrolled.
func (s *QuizService) PublishQuiz(ctx context.Context, site *models.Site, quizID string, published bool) (*models.Quiz, error) {
	quiz, err := s.repos.Quizzes.FindQuiz(ctx, site.ID, quizID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.NotFound("Quiz")
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	quiz.IsPublished = published
	if err := s.repos.Quizzes.UpdateQuiz(ctx, quiz); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return quiz, nil
}
