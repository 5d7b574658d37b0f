package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy_backend/internal/auth"
	"academy_backend/internal/models"
	"academy_backend/internal/repositories"
)

type staticUsers struct {
	repositories.UserRepository
	user *models.User
}

func (s *staticUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, repositories.ErrNotFound
}

func authEngine(jwt *auth.JWTManager, users repositories.UserRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(jwt, users), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserFromContext(c).ID})
	})
	return r
}

func bearerRequest(token string) *http.Request {
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	m := auth.NewJWTManager("test-secret", -time.Minute, time.Hour)
	token, err := m.IssueAccess("user-1")
	require.NoError(t, err)

	r := authEngine(m, &staticUsers{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, bearerRequest(token))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token has expired")
}

func TestAuthMiddlewareGarbageToken(t *testing.T) {
	m := auth.NewJWTManager("test-secret", time.Hour, time.Hour)

	r := authEngine(m, &staticUsers{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, bearerRequest("not.a.token"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token")
}
