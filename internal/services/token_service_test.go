package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/models"
	"academy_backend/internal/repositories"
)

// fakeTokenRepo is an in-memory ledger. The service locks nothing here;
// these tests exercise the bookkeeping, not concurrency.
type fakeTokenRepo struct {
	balances map[string]*models.TokenBalance
	txs      []*models.TokenTransaction
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{balances: make(map[string]*models.TokenBalance)}
}

func balanceKey(siteID, userID string) string {
	return siteID + "/" + userID
}

func (f *fakeTokenRepo) BalanceForUpdate(_ context.Context, siteID, userID string) (*models.TokenBalance, error) {
	key := balanceKey(siteID, userID)
	if b, ok := f.balances[key]; ok {
		return b, nil
	}
	b := &models.TokenBalance{UserID: userID}
	b.SiteID = siteID
	f.balances[key] = b
	return b, nil
}

func (f *fakeTokenRepo) FindBalance(_ context.Context, siteID, userID string) (*models.TokenBalance, error) {
	if b, ok := f.balances[balanceKey(siteID, userID)]; ok {
		return b, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeTokenRepo) UpdateBalance(_ context.Context, balance *models.TokenBalance) error {
	f.balances[balanceKey(balance.SiteID, balance.UserID)] = balance
	return nil
}

func (f *fakeTokenRepo) CreateTransaction(_ context.Context, tx *models.TokenTransaction) error {
	tx.ID = fmt.Sprintf("tx-%d", len(f.txs)+1)
	f.txs = append(f.txs, tx)
	return nil
}

func (f *fakeTokenRepo) FindByReference(_ context.Context, siteID, userID, referenceType, referenceID string) (*models.TokenTransaction, error) {
	for _, tx := range f.txs {
		if tx.SiteID == siteID && tx.UserID == userID &&
			tx.ReferenceType == referenceType && tx.ReferenceID == referenceID {
			return tx, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeTokenRepo) FindTransactions(_ context.Context, siteID, userID string, page, size int) ([]models.TokenTransaction, int64, error) {
	var out []models.TokenTransaction
	for _, tx := range f.txs {
		if tx.SiteID == siteID && tx.UserID == userID {
			out = append(out, *tx)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeTokenRepo) SumTransactions(_ context.Context, siteID, userID string) (int64, error) {
	var sum int64
	for _, tx := range f.txs {
		if tx.SiteID == siteID && tx.UserID == userID {
			sum += int64(tx.Amount)
		}
	}
	return sum, nil
}

func newTokenFixture() (*TokenService, *fakeTokenRepo, *models.Site) {
	repo := newFakeTokenRepo()
	repos := &repositories.Registry{Tokens: repo}
	site := &models.Site{Subdomain: "maria", Name: "Maria Academy", IsActive: true}
	site.ID = "site-1"
	return NewTokenService(repos, nil), repo, site
}

func TestAwardCreditsAndRecords(t *testing.T) {
	svc, repo, site := newTokenFixture()
	ctx := context.Background()

	tx, err := svc.Award(ctx, site, AwardParams{
		UserID:        "u1",
		Amount:        10,
		Description:   "Completed lesson",
		ReferenceType: models.ReferenceLessonCompleted,
		ReferenceID:   "lesson-1",
	})
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, 10, tx.Amount)
	assert.Equal(t, 10, tx.BalanceAfter)
	assert.Equal(t, models.TransactionTypeEarned, tx.Type)

	balance, err := svc.Balance(ctx, site, "u1")
	require.NoError(t, err)
	assert.Equal(t, 10, balance)
	assert.Len(t, repo.txs, 1)
}

func TestAwardIdempotentPerReference(t *testing.T) {
	svc, repo, site := newTokenFixture()
	ctx := context.Background()

	p := AwardParams{
		UserID:        "u1",
		Amount:        10,
		ReferenceType: models.ReferenceLessonCompleted,
		ReferenceID:   "lesson-1",
	}
	first, err := svc.Award(ctx, site, p)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := svc.Award(ctx, site, p)
	require.NoError(t, err)
	assert.Nil(t, second)

	balance, err := svc.Balance(ctx, site, "u1")
	require.NoError(t, err)
	assert.Equal(t, 10, balance)
	assert.Len(t, repo.txs, 1)
}

func TestAwardSkippedWhenRewardsDisabled(t *testing.T) {
	svc, repo, site := newTokenFixture()
	site.ThemeConfig = datatypes.JSONMap{"enable_token_rewards": false}

	tx, err := svc.Award(context.Background(), site, AwardParams{UserID: "u1", Amount: 10})
	require.NoError(t, err)
	assert.Nil(t, tx)
	assert.Empty(t, repo.txs)
}

func TestAwardRejectsNonPositiveAmount(t *testing.T) {
	svc, _, site := newTokenFixture()
	_, err := svc.Award(context.Background(), site, AwardParams{UserID: "u1", Amount: 0})
	assert.Error(t, err)
}

func TestSpendInsufficientBalance(t *testing.T) {
	svc, _, site := newTokenFixture()
	ctx := context.Background()

	_, err := svc.Award(ctx, site, AwardParams{UserID: "u1", Amount: 5})
	require.NoError(t, err)

	_, err = svc.Spend(ctx, site, SpendParams{UserID: "u1", Amount: 10})
	assert.ErrorIs(t, err, appErrors.ErrInsufficientTokens)

	balance, err := svc.Balance(ctx, site, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, balance)
}

func TestSpendNotGatedByRewardFlag(t *testing.T) {
	svc, _, site := newTokenFixture()
	ctx := context.Background()

	_, err := svc.Award(ctx, site, AwardParams{UserID: "u1", Amount: 20})
	require.NoError(t, err)

	// Disabling awards must not freeze tokens users already hold.
	site.ThemeConfig = datatypes.JSONMap{"enable_token_rewards": false}
	tx, err := svc.Spend(ctx, site, SpendParams{UserID: "u1", Amount: 8})
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, -8, tx.Amount)
	assert.Equal(t, 12, tx.BalanceAfter)
}

func TestBalanceAfterMatchesRunningSum(t *testing.T) {
	svc, repo, site := newTokenFixture()
	ctx := context.Background()

	_, err := svc.Award(ctx, site, AwardParams{UserID: "u1", Amount: 25})
	require.NoError(t, err)
	_, err = svc.Spend(ctx, site, SpendParams{UserID: "u1", Amount: 10})
	require.NoError(t, err)
	_, err = svc.Award(ctx, site, AwardParams{UserID: "u1", Amount: 15})
	require.NoError(t, err)

	running := 0
	for _, tx := range repo.txs {
		running += tx.Amount
		assert.Equal(t, running, tx.BalanceAfter)
	}
	sum, err := repo.SumTransactions(ctx, site.ID, "u1")
	require.NoError(t, err)
	balance, err := svc.Balance(ctx, site, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(balance), sum)
}

func TestTransferMovesBothLegs(t *testing.T) {
	svc, repo, site := newTokenFixture()
	ctx := context.Background()

	_, err := svc.Award(ctx, site, AwardParams{UserID: "alice", Amount: 30})
	require.NoError(t, err)

	require.NoError(t, svc.Transfer(ctx, site, "alice", "bob", 12, "thanks"))

	aliceBalance, err := svc.Balance(ctx, site, "alice")
	require.NoError(t, err)
	bobBalance, err := svc.Balance(ctx, site, "bob")
	require.NoError(t, err)
	assert.Equal(t, 18, aliceBalance)
	assert.Equal(t, 12, bobBalance)

	// Both legs share the generated transfer reference.
	var debit, credit *models.TokenTransaction
	for _, tx := range repo.txs {
		if tx.ReferenceType != models.ReferenceTransfer {
			continue
		}
		if tx.Amount < 0 {
			debit = tx
		} else {
			credit = tx
		}
	}
	require.NotNil(t, debit)
	require.NotNil(t, credit)
	assert.Equal(t, debit.ReferenceID, credit.ReferenceID)
}

func TestTransferRejectsSelfAndOverdraft(t *testing.T) {
	svc, _, site := newTokenFixture()
	ctx := context.Background()

	err := svc.Transfer(ctx, site, "alice", "alice", 5, "")
	assert.Error(t, err)

	err = svc.Transfer(ctx, site, "alice", "bob", 5, "")
	assert.ErrorIs(t, err, appErrors.ErrInsufficientTokens)
}
