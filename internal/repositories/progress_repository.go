package repositories

import (
	"context"

	"gorm.io/gorm"

	"academy_backend/internal/models"
)

type ProgressRepository interface {
	Upsert(ctx context.Context, progress *models.LessonProgress) error
	Find(ctx context.Context, siteID, userID, lessonID string) (*models.LessonProgress, error)
	FindByUserAndCourse(ctx context.Context, siteID, userID, courseID string) ([]models.LessonProgress, error)
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Upsert(ctx context.Context, progress *models.LessonProgress) error {
	if progress.ID == "" {
		return translate(r.db.WithContext(ctx).Create(progress).Error)
	}
	return translate(r.db.WithContext(ctx).Save(progress).Error)
}

func (r *progressRepository) Find(ctx context.Context, siteID, userID, lessonID string) (*models.LessonProgress, error) {
	var p models.LessonProgress
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND user_id = ? AND lesson_id = ?", siteID, userID, lessonID).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *progressRepository) FindByUserAndCourse(ctx context.Context, siteID, userID, courseID string) ([]models.LessonProgress, error) {
	var rows []models.LessonProgress
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND user_id = ? AND course_id = ?", siteID, userID, courseID).
		Find(&rows).Error
	return rows, err
}
