package repositories

import (
	"context"

	"gorm.io/gorm"

	"academy_backend/internal/models"
)

type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	UpdateQuiz(ctx context.Context, quiz *models.Quiz) error
	FindQuiz(ctx context.Context, siteID, id string) (*models.Quiz, error)
	FindQuizzesByCourse(ctx context.Context, siteID, courseID string) ([]models.Quiz, error)
	// FindPublishedByLesson returns the published quiz attached to a
	// lesson, or ErrNotFound when the lesson has none.
	FindPublishedByLesson(ctx context.Context, siteID, lessonID string) (*models.Quiz, error)

	CreateQuestion(ctx context.Context, question *models.QuizQuestion) error
	FindQuestions(ctx context.Context, siteID, quizID string) ([]models.QuizQuestion, error)

	CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error
	FindAttempts(ctx context.Context, siteID, userID, quizID string) ([]models.QuizAttempt, error)
	CountAttempts(ctx context.Context, siteID, userID, quizID string) (int64, error)
	// HasPassingAttempt reports whether any attempt passed or scored at
	// least the quiz's passing score.
	HasPassingAttempt(ctx context.Context, siteID, userID, quizID string, passingScore int) (bool, error)
	HasAnyAttempt(ctx context.Context, siteID, userID, quizID string) (bool, error)
}

type quizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	return translate(r.db.WithContext(ctx).Create(quiz).Error)
}

func (r *quizRepository) UpdateQuiz(ctx context.Context, quiz *models.Quiz) error {
	return translate(r.db.WithContext(ctx).Save(quiz).Error)
}

func (r *quizRepository) FindQuiz(ctx context.Context, siteID, id string) (*models.Quiz, error) {
	var q models.Quiz
	err := r.db.WithContext(ctx).First(&q, "site_id = ? AND id = ?", siteID, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &q, nil
}

func (r *quizRepository) FindQuizzesByCourse(ctx context.Context, siteID, courseID string) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND course_id = ?", siteID, courseID).
		Find(&quizzes).Error
	return quizzes, err
}

func (r *quizRepository) FindPublishedByLesson(ctx context.Context, siteID, lessonID string) (*models.Quiz, error) {
	var q models.Quiz
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND lesson_id = ? AND is_published = true", siteID, lessonID).
		First(&q).Error
	if err != nil {
		return nil, translate(err)
	}
	return &q, nil
}

func (r *quizRepository) CreateQuestion(ctx context.Context, question *models.QuizQuestion) error {
	return translate(r.db.WithContext(ctx).Create(question).Error)
}

func (r *quizRepository) FindQuestions(ctx context.Context, siteID, quizID string) ([]models.QuizQuestion, error) {
	var questions []models.QuizQuestion
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND quiz_id = ?", siteID, quizID).
		Order("position ASC").Find(&questions).Error
	return questions, err
}

func (r *quizRepository) CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	return translate(r.db.WithContext(ctx).Create(attempt).Error)
}

func (r *quizRepository) FindAttempts(ctx context.Context, siteID, userID, quizID string) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND user_id = ? AND quiz_id = ?", siteID, userID, quizID).
		Order("attempt_number ASC").Find(&attempts).Error
	return attempts, err
}

func (r *quizRepository) CountAttempts(ctx context.Context, siteID, userID, quizID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Where("site_id = ? AND user_id = ? AND quiz_id = ?", siteID, userID, quizID).
		Count(&count).Error
	return count, err
}

func (r *quizRepository) HasPassingAttempt(ctx context.Context, siteID, userID, quizID string, passingScore int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Where("site_id = ? AND user_id = ? AND quiz_id = ?", siteID, userID, quizID).
		Where("passed = true OR score >= ?", passingScore).
		Count(&count).Error
	return count > 0, err
}

func (r *quizRepository) HasAnyAttempt(ctx context.Context, siteID, userID, quizID string) (bool, error) {
	count, err := r.CountAttempts(ctx, siteID, userID, quizID)
	return count > 0, err
}
