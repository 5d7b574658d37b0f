package repositories

import (
	"context"

	"gorm.io/gorm"

	"academy_backend/internal/models"
)

type AuditRepository interface {
	Append(ctx context.Context, entry *models.AdminAuditLog) error
	FindBySite(ctx context.Context, siteID string, page, size int) ([]models.AdminAuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, entry *models.AdminAuditLog) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error)
}

func (r *auditRepository) FindBySite(ctx context.Context, siteID string, page, size int) ([]models.AdminAuditLog, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.AdminAuditLog{}).
		Where("site_id = ?", siteID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.AdminAuditLog
	err := db.Order("created_at DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&entries).Error
	return entries, total, err
}
