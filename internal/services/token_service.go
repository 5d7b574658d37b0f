package services

import (
	"context"

	"github.com/google/uuid"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/models"
	"academy_backend/internal/repositories"
	"academy_backend/internal/tenant"
	"academy_backend/internal/vault"
)

// TokenService is the credit/debit ledger. Every write locks the
// (site, user) balance row and appends a transaction carrying the balance
// after the write, so the running balance always equals the sum of the
// signed amounts.
type TokenService struct {
	repos  *repositories.Registry
	cipher *vault.Cipher
}

func NewTokenService(repos *repositories.Registry, cipher *vault.Cipher) *TokenService {
	return &TokenService{repos: repos, cipher: cipher}
}

// AwardParams describes one credit. ReferenceType+ReferenceID, when both
// set, form the idempotency key: a repeated award with the same key is a
// silent no-op.
type AwardParams struct {
	UserID        string
	Amount        int
	Description   string
	ReferenceType string
	ReferenceID   string
}

// Award credits the user. Returns the created transaction, or nil when the
// award was skipped (rewards disabled for the tenant, or the idempotency
// key already exists).
func (s *TokenService) Award(ctx context.Context, site *models.Site, p AwardParams) (*models.TokenTransaction, error) {
	if p.Amount <= 0 {
		return nil, appErrors.ValidationError("Award amount must be positive")
	}
	if !tenant.NewSettings(site, s.cipher).EnableTokenRewards() {
		return nil, nil
	}

	var created *models.TokenTransaction
	err := s.repos.Atomic(func(r *repositories.Registry) error {
		tx, err := s.credit(ctx, r, site.ID, p)
		created = tx
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SpendParams describes one debit.
type SpendParams struct {
	UserID        string
	Amount        int
	Description   string
	ReferenceType string
	ReferenceID   string
}

// Spend debits the user, failing when the balance would go negative.
// Spending is not gated by enable_token_rewards: the switch controls
// awards, not what users do with tokens they already hold.
func (s *TokenService) Spend(ctx context.Context, site *models.Site, p SpendParams) (*models.TokenTransaction, error) {
	if p.Amount <= 0 {
		return nil, appErrors.ValidationError("Spend amount must be positive")
	}

	var created *models.TokenTransaction
	err := s.repos.Atomic(func(r *repositories.Registry) error {
		tx, err := s.debit(ctx, r, site.ID, p)
		created = tx
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Transfer moves tokens between two users of the same tenant. Both legs
// run in one transaction and share a generated transfer reference, so a
// partial transfer can never be observed.
func (s *TokenService) Transfer(ctx context.Context, site *models.Site, fromUserID, toUserID string, amount int, description string) error {
	if amount <= 0 {
		return appErrors.ValidationError("Transfer amount must be positive")
	}
	if fromUserID == toUserID {
		return appErrors.ValidationError("Cannot transfer tokens to yourself")
	}

	transferID := uuid.NewString()
	return s.repos.Atomic(func(r *repositories.Registry) error {
		if _, err := s.debit(ctx, r, site.ID, SpendParams{
			UserID:        fromUserID,
			Amount:        amount,
			Description:   description,
			ReferenceType: models.ReferenceTransfer,
			ReferenceID:   transferID,
		}); err != nil {
			return err
		}
		_, err := s.credit(ctx, r, site.ID, AwardParams{
			UserID:        toUserID,
			Amount:        amount,
			Description:   description,
			ReferenceType: models.ReferenceTransfer,
			ReferenceID:   transferID,
		})
		return err
	})
}

func (s *TokenService) Balance(ctx context.Context, site *models.Site, userID string) (int, error) {
	balance, err := s.repos.Tokens.FindBalance(ctx, site.ID, userID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, appErrors.InternalError(err)
	}
	return balance.Balance, nil
}

func (s *TokenService) Transactions(ctx context.Context, site *models.Site, userID string, page, size int) ([]models.TokenTransaction, int64, error) {
	items, total, err := s.repos.Tokens.FindTransactions(ctx, site.ID, userID, page, size)
	if err != nil {
		return nil, 0, appErrors.InternalError(err)
	}
	return items, total, nil
}

// credit runs inside a transaction held by the caller.
func (s *TokenService) credit(ctx context.Context, r *repositories.Registry, siteID string, p AwardParams) (*models.TokenTransaction, error) {
	if p.ReferenceType != "" && p.ReferenceID != "" {
		existing, err := r.Tokens.FindByReference(ctx, siteID, p.UserID, p.ReferenceType, p.ReferenceID)
		if err != nil && !appErrors.Is(err, repositories.ErrNotFound) {
			return nil, appErrors.InternalError(err)
		}
		if existing != nil {
			return nil, nil
		}
	}

	balance, err := r.Tokens.BalanceForUpdate(ctx, siteID, p.UserID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	balance.Balance += p.Amount
	if err := r.Tokens.UpdateBalance(ctx, balance); err != nil {
		return nil, appErrors.InternalError(err)
	}

	tx := &models.TokenTransaction{
		UserID:        p.UserID,
		Amount:        p.Amount,
		BalanceAfter:  balance.Balance,
		Type:          models.TransactionTypeEarned,
		Description:   p.Description,
		ReferenceType: p.ReferenceType,
		ReferenceID:   p.ReferenceID,
	}
	tx.SiteID = siteID
	if err := r.Tokens.CreateTransaction(ctx, tx); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return tx, nil
}

// debit runs inside a transaction held by the caller.
func (s *TokenService) debit(ctx context.Context, r *repositories.Registry, siteID string, p SpendParams) (*models.TokenTransaction, error) {
	if p.ReferenceType != "" && p.ReferenceID != "" {
		existing, err := r.Tokens.FindByReference(ctx, siteID, p.UserID, p.ReferenceType, p.ReferenceID)
		if err != nil && !appErrors.Is(err, repositories.ErrNotFound) {
			return nil, appErrors.InternalError(err)
		}
		if existing != nil {
			return nil, nil
		}
	}

	balance, err := r.Tokens.BalanceForUpdate(ctx, siteID, p.UserID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	if balance.Balance < p.Amount {
		return nil, appErrors.ErrInsufficientTokens
	}
	balance.Balance -= p.Amount
	if err := r.Tokens.UpdateBalance(ctx, balance); err != nil {
		return nil, appErrors.InternalError(err)
	}

	tx := &models.TokenTransaction{
		UserID:        p.UserID,
		Amount:        -p.Amount,
		BalanceAfter:  balance.Balance,
		Type:          models.TransactionTypeSpent,
		Description:   p.Description,
		ReferenceType: p.ReferenceType,
		ReferenceID:   p.ReferenceID,
	}
	tx.SiteID = siteID
	if err := r.Tokens.CreateTransaction(ctx, tx); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return tx, nil
}
