package appErrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesOnCode(t *testing.T) {
	err := ErrNotEnrolled.WithMessage("Not enrolled in course X")
	assert.True(t, Is(err, ErrNotEnrolled))
	assert.False(t, Is(err, ErrAlreadyEnrolled))

	wrapped := fmt.Errorf("enroll check: %w", err)
	assert.True(t, Is(wrapped, ErrNotEnrolled))
}

func TestConflictCodeIsDistinct(t *testing.T) {
	conflict := NewConflictError("Category slug already exists")
	assert.Equal(t, CodeConflict, conflict.Code)
	assert.Equal(t, http.StatusConflict, conflict.HTTPCode)
	assert.False(t, Is(conflict, ErrAlreadySubmitted))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := InternalError(cause)
	assert.True(t, errors.Is(err, cause))
}

func handleOn(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("GET", "/test", nil)
	HandleError(c, err)
	return rec
}

func TestHandleErrorEnvelope(t *testing.T) {
	rec := handleOn(t, ErrCrossTenant)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "User does not belong to this site", body.Detail)
}

func TestHandleErrorHidesInternals(t *testing.T) {
	rec := handleOn(t, errors.New("pq: relation does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, body.Detail, "pq:")
}

func TestHandleValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("POST", "/test", nil)

	HandleValidationError(c, errors.New("Field 'email' is required"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
