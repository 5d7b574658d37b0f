package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"academy_backend/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	FindByUser(ctx context.Context, siteID, userID string, unreadOnly bool, page, size int) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, siteID, userID, notificationID string) error
	MarkAllRead(ctx context.Context, siteID, userID string) (int64, error)
	CountUnread(ctx context.Context, siteID, userID string) (int64, error)

	FindSettings(ctx context.Context, siteID, userID string) (*models.NotificationSettings, error)
	SaveSettings(ctx context.Context, settings *models.NotificationSettings) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return translate(r.db.WithContext(ctx).Create(n).Error)
}

func (r *notificationRepository) FindByUser(ctx context.Context, siteID, userID string, unreadOnly bool, page, size int) ([]models.Notification, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("site_id = ? AND user_id = ?", siteID, userID)
	if unreadOnly {
		db = db.Where("is_read = false")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := db.Order("created_at DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&notifications).Error
	return notifications, total, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, siteID, userID, notificationID string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("site_id = ? AND user_id = ? AND id = ?", siteID, userID, notificationID).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, siteID, userID string) (int64, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("site_id = ? AND user_id = ? AND is_read = false", siteID, userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, siteID, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("site_id = ? AND user_id = ? AND is_read = false", siteID, userID).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) FindSettings(ctx context.Context, siteID, userID string) (*models.NotificationSettings, error) {
	var s models.NotificationSettings
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND user_id = ?", siteID, userID).
		First(&s).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *notificationRepository) SaveSettings(ctx context.Context, settings *models.NotificationSettings) error {
	if settings.ID == "" {
		return translate(r.db.WithContext(ctx).Create(settings).Error)
	}
	return translate(r.db.WithContext(ctx).Save(settings).Error)
}
