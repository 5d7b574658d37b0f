package repositories

import (
	"context"

	"gorm.io/gorm"

	"academy_backend/internal/models"
)

type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, assignment *models.Assignment) error
	UpdateAssignment(ctx context.Context, assignment *models.Assignment) error
	FindAssignment(ctx context.Context, siteID, id string) (*models.Assignment, error)
	FindPublishedByLesson(ctx context.Context, siteID, lessonID string) (*models.Assignment, error)
	FindAssignmentsByCourse(ctx context.Context, siteID, courseID string) ([]models.Assignment, error)

	CreateSubmission(ctx context.Context, submission *models.AssignmentSubmission) error
	UpdateSubmission(ctx context.Context, submission *models.AssignmentSubmission) error
	FindSubmission(ctx context.Context, siteID, id string) (*models.AssignmentSubmission, error)
	FindSubmissionByUser(ctx context.Context, siteID, userID, assignmentID string) (*models.AssignmentSubmission, error)
	FindSubmissionsByAssignment(ctx context.Context, siteID, assignmentID string, page, size int) ([]models.AssignmentSubmission, int64, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) CreateAssignment(ctx context.Context, assignment *models.Assignment) error {
	return translate(r.db.WithContext(ctx).Create(assignment).Error)
}

func (r *assignmentRepository) UpdateAssignment(ctx context.Context, assignment *models.Assignment) error {
	return translate(r.db.WithContext(ctx).Save(assignment).Error)
}

func (r *assignmentRepository) FindAssignment(ctx context.Context, siteID, id string) (*models.Assignment, error) {
	var a models.Assignment
	err := r.db.WithContext(ctx).First(&a, "site_id = ? AND id = ?", siteID, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *assignmentRepository) FindPublishedByLesson(ctx context.Context, siteID, lessonID string) (*models.Assignment, error) {
	var a models.Assignment
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND lesson_id = ? AND is_published = true", siteID, lessonID).
		First(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *assignmentRepository) FindAssignmentsByCourse(ctx context.Context, siteID, courseID string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND course_id = ?", siteID, courseID).
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) CreateSubmission(ctx context.Context, submission *models.AssignmentSubmission) error {
	return translate(r.db.WithContext(ctx).Create(submission).Error)
}

func (r *assignmentRepository) UpdateSubmission(ctx context.Context, submission *models.AssignmentSubmission) error {
	return translate(r.db.WithContext(ctx).Save(submission).Error)
}

func (r *assignmentRepository) FindSubmission(ctx context.Context, siteID, id string) (*models.AssignmentSubmission, error) {
	var s models.AssignmentSubmission
	err := r.db.WithContext(ctx).First(&s, "site_id = ? AND id = ?", siteID, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *assignmentRepository) FindSubmissionByUser(ctx context.Context, siteID, userID, assignmentID string) (*models.AssignmentSubmission, error) {
	var s models.AssignmentSubmission
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND user_id = ? AND assignment_id = ?", siteID, userID, assignmentID).
		First(&s).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *assignmentRepository) FindSubmissionsByAssignment(ctx context.Context, siteID, assignmentID string, page, size int) ([]models.AssignmentSubmission, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.AssignmentSubmission{}).
		Where("site_id = ? AND assignment_id = ?", siteID, assignmentID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var submissions []models.AssignmentSubmission
	err := db.Order("submitted_at ASC").
		Limit(size).Offset((page - 1) * size).
		Find(&submissions).Error
	return submissions, total, err
}
