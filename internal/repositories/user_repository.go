package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"academy_backend/internal/models"
)

type UserFilter struct {
	Role   models.UserRole
	Status models.UserStatus
	Search string
	Page   int
	Size   int
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	// FindByID ignores tenancy; the caller must check SiteID. Used by the
	// auth middleware which compares the user's site against the resolved
	// tenant itself.
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, siteID, email string) (*models.User, error)
	FindByUsername(ctx context.Context, siteID, username string) (*models.User, error)
	FindWithFilter(ctx context.Context, siteID string, f UserFilter) ([]models.User, int64, error)
	UpdateLastLogin(ctx context.Context, userID string) error
	SoftDelete(ctx context.Context, siteID, userID string) error

	CreateVerificationToken(ctx context.Context, token *models.EmailVerificationToken) error
	LatestVerificationToken(ctx context.Context, siteID, userID string) (*models.EmailVerificationToken, error)
	MarkVerificationUsed(ctx context.Context, tokenID string, at time.Time) error

	CreateResetToken(ctx context.Context, token *models.PasswordResetToken) error
	FindResetToken(ctx context.Context, siteID, token string) (*models.PasswordResetToken, error)
	MarkResetUsed(ctx context.Context, tokenID string, at time.Time) error
	DeleteExpiredTokens(ctx context.Context, before time.Time) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// visible excludes soft-deleted rows from every normal query.
func (r *userRepository) visible(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Where("status <> ?", models.UserStatusDeleted)
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error)
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.visible(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, siteID, email string) (*models.User, error) {
	var user models.User
	err := r.visible(ctx).
		First(&user, "site_id = ? AND email = ?", siteID, email).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, siteID, username string) (*models.User, error) {
	var user models.User
	err := r.visible(ctx).
		First(&user, "site_id = ? AND username = ?", siteID, username).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindWithFilter(ctx context.Context, siteID string, f UserFilter) ([]models.User, int64, error) {
	db := r.visible(ctx).Model(&models.User{}).Where("site_id = ?", siteID)

	if f.Role != "" {
		db = db.Where("role = ?", f.Role)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		db = db.Where("email ILIKE ? OR username ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := db.Order("created_at DESC").
		Limit(f.Size).Offset((f.Page - 1) * f.Size).
		Find(&users).Error
	return users, total, err
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, userID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_login_at", &now).Error
}

func (r *userRepository) SoftDelete(ctx context.Context, siteID, userID string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("site_id = ? AND id = ?", siteID, userID).
		Update("status", models.UserStatusDeleted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) CreateVerificationToken(ctx context.Context, token *models.EmailVerificationToken) error {
	return translate(r.db.WithContext(ctx).Create(token).Error)
}

func (r *userRepository) LatestVerificationToken(ctx context.Context, siteID, userID string) (*models.EmailVerificationToken, error) {
	var token models.EmailVerificationToken
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND user_id = ?", siteID, userID).
		Order("created_at DESC").
		First(&token).Error
	if err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func (r *userRepository) MarkVerificationUsed(ctx context.Context, tokenID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.EmailVerificationToken{}).
		Where("id = ?", tokenID).
		Update("verified_at", &at).Error
}

func (r *userRepository) CreateResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	return translate(r.db.WithContext(ctx).Create(token).Error)
}

func (r *userRepository) FindResetToken(ctx context.Context, siteID, token string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	err := r.db.WithContext(ctx).
		First(&t, "site_id = ? AND token = ?", siteID, token).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *userRepository) MarkResetUsed(ctx context.Context, tokenID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.PasswordResetToken{}).
		Where("id = ?", tokenID).
		Update("used_at", &at).Error
}

func (r *userRepository) DeleteExpiredTokens(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&models.EmailVerificationToken{})
	if res.Error != nil {
		return 0, res.Error
	}
	deleted := res.RowsAffected

	res = r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&models.PasswordResetToken{})
	if res.Error != nil {
		return deleted, res.Error
	}
	return deleted + res.RowsAffected, nil
}
