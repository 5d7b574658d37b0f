package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"academy_backend/internal/models"
)

type TokenRepository interface {
	// BalanceForUpdate loads the (site, user) balance row under a FOR
	// UPDATE lock, creating a zero row first when absent. Ledger writes
	// serialize on it so balance_after stays monotonic per user.
	BalanceForUpdate(ctx context.Context, siteID, userID string) (*models.TokenBalance, error)
	FindBalance(ctx context.Context, siteID, userID string) (*models.TokenBalance, error)
	UpdateBalance(ctx context.Context, balance *models.TokenBalance) error

	CreateTransaction(ctx context.Context, tx *models.TokenTransaction) error
	// FindByReference looks up the idempotency key (user, reference_type,
	// reference_id).
	FindByReference(ctx context.Context, siteID, userID, referenceType, referenceID string) (*models.TokenTransaction, error)
	FindTransactions(ctx context.Context, siteID, userID string, page, size int) ([]models.TokenTransaction, int64, error)
	SumTransactions(ctx context.Context, siteID, userID string) (int64, error)
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) BalanceForUpdate(ctx context.Context, siteID, userID string) (*models.TokenBalance, error) {
	var balance models.TokenBalance
	db := r.db.WithContext(ctx)

	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("site_id = ? AND user_id = ?", siteID, userID).
		First(&balance).Error
	if err == nil {
		return &balance, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	balance = models.TokenBalance{UserID: userID, Balance: 0}
	balance.SiteID = siteID
	if err := db.Create(&balance).Error; err != nil {
		// Lost the create race; lock the row the winner inserted.
		if !isUniqueViolation(err) {
			return nil, err
		}
		err = db.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("site_id = ? AND user_id = ?", siteID, userID).
			First(&balance).Error
		if err != nil {
			return nil, translate(err)
		}
	}
	return &balance, nil
}

func (r *tokenRepository) FindBalance(ctx context.Context, siteID, userID string) (*models.TokenBalance, error) {
	var balance models.TokenBalance
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND user_id = ?", siteID, userID).
		First(&balance).Error
	if err != nil {
		return nil, translate(err)
	}
	return &balance, nil
}

func (r *tokenRepository) UpdateBalance(ctx context.Context, balance *models.TokenBalance) error {
	return translate(r.db.WithContext(ctx).Save(balance).Error)
}

func (r *tokenRepository) CreateTransaction(ctx context.Context, tx *models.TokenTransaction) error {
	return translate(r.db.WithContext(ctx).Create(tx).Error)
}

func (r *tokenRepository) FindByReference(ctx context.Context, siteID, userID, referenceType, referenceID string) (*models.TokenTransaction, error) {
	var tx models.TokenTransaction
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND user_id = ? AND reference_type = ? AND reference_id = ?",
			siteID, userID, referenceType, referenceID).
		First(&tx).Error
	if err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}

func (r *tokenRepository) FindTransactions(ctx context.Context, siteID, userID string, page, size int) ([]models.TokenTransaction, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.TokenTransaction{}).
		Where("site_id = ? AND user_id = ?", siteID, userID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txs []models.TokenTransaction
	err := db.Order("created_at DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&txs).Error
	return txs, total, err
}

func (r *tokenRepository) SumTransactions(ctx context.Context, siteID, userID string) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&models.TokenTransaction{}).
		Where("site_id = ? AND user_id = ?", siteID, userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}
