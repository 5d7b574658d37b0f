package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*MemoryStore, *time.Time) {
	t.Helper()
	now := time.Now()
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	return s, &now
}

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s, now := newTestStore(t)

	require.NoError(t, s.Create(ctx, "sess-1", Data{"user_id": "u1"}, time.Minute))

	got, err := s.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got["user_id"])

	ttl, err := s.TTL(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	*now = now.Add(2 * time.Minute)
	_, err = s.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExtend(t *testing.T) {
	ctx := context.Background()
	s, now := newTestStore(t)

	require.NoError(t, s.Create(ctx, "sess-1", Data{}, time.Minute))
	require.NoError(t, s.Extend(ctx, "sess-1", time.Hour))

	*now = now.Add(30 * time.Minute)
	ok, err := s.Exists(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStoreUpdatePreservesTTL(t *testing.T) {
	ctx := context.Background()
	s, now := newTestStore(t)

	require.NoError(t, s.Create(ctx, "sess-1", Data{"step": 1}, time.Minute))
	*now = now.Add(30 * time.Second)
	require.NoError(t, s.Update(ctx, "sess-1", Data{"step": 2}, time.Hour, true))

	ttl, err := s.TTL(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, ttl)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.Create(ctx, "sess-1", Data{"code": "123456"}, time.Minute))
	got, err := s.Get(ctx, "sess-1")
	require.NoError(t, err)
	got["code"] = "mutated"

	again, err := s.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "123456", again["code"])
}

func TestVerifyCodeSingleUse(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.Create(ctx, "verify-1", Data{"code": "482915", "user_id": "u1"}, time.Minute))

	_, err := s.VerifyCode(ctx, "verify-1", "000000")
	assert.ErrorIs(t, err, ErrCodeMismatch)

	data, err := s.VerifyCode(ctx, "verify-1", "482915")
	require.NoError(t, err)
	assert.Equal(t, "u1", data["user_id"])

	_, err = s.VerifyCode(ctx, "verify-1", "482915")
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerifyCodeUnknownSession(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.VerifyCode(context.Background(), "nope", "123456")
	assert.ErrorIs(t, err, ErrNotFound)
}
