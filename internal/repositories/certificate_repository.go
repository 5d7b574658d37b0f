package repositories

import (
	"context"

	"gorm.io/gorm"

	"academy_backend/internal/models"
)

type CertificateRepository interface {
	Create(ctx context.Context, cert *models.Certificate) error
	Update(ctx context.Context, cert *models.Certificate) error
	FindByUserAndCourse(ctx context.Context, siteID, userID, courseID string) (*models.Certificate, error)
	Find(ctx context.Context, siteID, id string) (*models.Certificate, error)
	FindByUser(ctx context.Context, siteID, userID string) ([]models.Certificate, error)
}

type certificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

func (r *certificateRepository) Create(ctx context.Context, cert *models.Certificate) error {
	return translate(r.db.WithContext(ctx).Create(cert).Error)
}

func (r *certificateRepository) Update(ctx context.Context, cert *models.Certificate) error {
	return translate(r.db.WithContext(ctx).Save(cert).Error)
}

func (r *certificateRepository) FindByUserAndCourse(ctx context.Context, siteID, userID, courseID string) (*models.Certificate, error) {
	var cert models.Certificate
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND user_id = ? AND course_id = ?", siteID, userID, courseID).
		First(&cert).Error
	if err != nil {
		return nil, translate(err)
	}
	return &cert, nil
}

func (r *certificateRepository) Find(ctx context.Context, siteID, id string) (*models.Certificate, error) {
	var cert models.Certificate
	err := r.db.WithContext(ctx).First(&cert, "site_id = ? AND id = ?", siteID, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &cert, nil
}

func (r *certificateRepository) FindByUser(ctx context.Context, siteID, userID string) ([]models.Certificate, error) {
	var certs []models.Certificate
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND user_id = ?", siteID, userID).
		Order("created_at DESC").Find(&certs).Error
	return certs, err
}
