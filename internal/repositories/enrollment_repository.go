package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"academy_backend/internal/models"
)

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, siteID, id string) (*models.Enrollment, error)
	FindByUserAndCourse(ctx context.Context, siteID, userID, courseID string) (*models.Enrollment, error)
	// FindForUpdate locks the (user, course) enrollment row; the course
	// roll-up is a read-modify-write and must serialize on it.
	FindForUpdate(ctx context.Context, siteID, userID, courseID string) (*models.Enrollment, error)
	FindByUser(ctx context.Context, siteID, userID string, page, size int) ([]models.Enrollment, int64, error)
	FindByCourse(ctx context.Context, siteID, courseID string) ([]models.Enrollment, error)
	CountActiveByCourse(ctx context.Context, siteID, courseID string) (int64, error)
	CountActiveByCohort(ctx context.Context, siteID, cohortID string) (int64, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return translate(r.db.WithContext(ctx).Create(enrollment).Error)
}

func (r *enrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	return translate(r.db.WithContext(ctx).Save(enrollment).Error)
}

func (r *enrollmentRepository) FindByID(ctx context.Context, siteID, id string) (*models.Enrollment, error) {
	var e models.Enrollment
	err := r.db.WithContext(ctx).First(&e, "site_id = ? AND id = ?", siteID, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *enrollmentRepository) FindByUserAndCourse(ctx context.Context, siteID, userID, courseID string) (*models.Enrollment, error) {
	var e models.Enrollment
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND user_id = ? AND course_id = ?", siteID, userID, courseID).
		Where("status <> ?", models.EnrollmentStatusDropped).
		First(&e).Error
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *enrollmentRepository) FindForUpdate(ctx context.Context, siteID, userID, courseID string) (*models.Enrollment, error) {
	var e models.Enrollment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("site_id = ? AND user_id = ? AND course_id = ?", siteID, userID, courseID).
		Where("status <> ?", models.EnrollmentStatusDropped).
		First(&e).Error
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *enrollmentRepository) FindByUser(ctx context.Context, siteID, userID string, page, size int) ([]models.Enrollment, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("site_id = ? AND user_id = ?", siteID, userID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var enrollments []models.Enrollment
	err := db.Order("enrolled_at DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&enrollments).Error
	return enrollments, total, err
}

func (r *enrollmentRepository) FindByCourse(ctx context.Context, siteID, courseID string) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND course_id = ?", siteID, courseID).
		Where("status <> ?", models.EnrollmentStatusDropped).
		Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepository) CountActiveByCourse(ctx context.Context, siteID, courseID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("site_id = ? AND course_id = ?", siteID, courseID).
		Where("status IN ?", []models.EnrollmentStatus{models.EnrollmentStatusActive, models.EnrollmentStatusCompleted}).
		Count(&count).Error
	return count, err
}

func (r *enrollmentRepository) CountActiveByCohort(ctx context.Context, siteID, cohortID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("site_id = ? AND cohort_id = ?", siteID, cohortID).
		Where("status IN ?", []models.EnrollmentStatus{models.EnrollmentStatusActive, models.EnrollmentStatusCompleted}).
		Count(&count).Error
	return count, err
}
