package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paginationContext(t *testing.T, query string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestPagination(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name     string
		query    string
		wantPage int
		wantSize int
	}{
		{"defaults", "", 1, 20},
		{"explicit", "page=3&size=50", 3, 50},
		{"size capped", "size=5000", 1, 1000},
		{"zero page falls back", "page=0", 1, 20},
		{"negative size falls back", "size=-5", 1, 20},
		{"garbage falls back", "page=abc&size=xyz", 1, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := paginationContext(t, tt.query)
			page, size := h.pagination(c)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSize, size)
		})
	}
}

func TestPagedEnvelope(t *testing.T) {
	resp := paged([]string{"a", "b"}, 41, 2, 20)
	assert.Equal(t, int64(41), resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 20, resp.Size)
	assert.Equal(t, 3, resp.Pages)

	empty := paged([]string{}, 0, 1, 20)
	assert.Equal(t, 0, empty.Pages)
}
