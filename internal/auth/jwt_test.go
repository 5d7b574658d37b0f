package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", 30*time.Minute, 7*24*time.Hour)

	access, err := m.IssueAccess("user-1")
	require.NoError(t, err)
	refresh, err := m.IssueRefresh("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	userID, err := m.Verify(access, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	userID, err = m.Verify(refresh, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestJWTRejectsWrongType(t *testing.T) {
	m := NewJWTManager("test-secret", 30*time.Minute, 7*24*time.Hour)

	refresh, err := m.IssueRefresh("user-1")
	require.NoError(t, err)

	_, err = m.Verify(refresh, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestJWTRejectsExpired(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute, 7*24*time.Hour)

	token, err := m.IssueAccess("user-1")
	require.NoError(t, err)

	_, err = m.Verify(token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTRejectsForeignSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", 30*time.Minute, time.Hour)
	verifier := NewJWTManager("secret-b", 30*time.Minute, time.Hour)

	token, err := issuer.IssueAccess("user-1")
	require.NoError(t, err)

	_, err = verifier.Verify(token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTRejectsGarbage(t *testing.T) {
	m := NewJWTManager("test-secret", 30*time.Minute, time.Hour)

	_, err := m.Verify("not.a.token", TokenTypeAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, CheckPasswordHash("hunter2hunter2", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("short"))
	assert.NoError(t, ValidatePassword("longenough"))
}
