package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/middleware"
	"academy_backend/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 1000
)

// BaseHandler carries the helpers every handler shares: context access,
// body binding and the uniform pagination contract.
type BaseHandler struct{}

func (h *BaseHandler) site(c *gin.Context) *models.Site {
	return middleware.SiteFromContext(c)
}

func (h *BaseHandler) actor(c *gin.Context) *models.User {
	return middleware.UserFromContext(c)
}

// bind decodes the JSON body, translating binding failures into the 400
// envelope. Returns false when the request was already answered.
func (h *BaseHandler) bind(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		appErrors.HandleValidationError(c, err)
		return false
	}
	return true
}

// pagination reads page (>=1) and size (1..1000) query params.
func (h *BaseHandler) pagination(c *gin.Context) (page, size int) {
	page = 1
	size = defaultPageSize
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && v >= 1 {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultPageSize))); err == nil && v >= 1 {
		size = v
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// PagedResponse is the uniform list envelope.
type PagedResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
	Pages int         `json:"pages"`
}

func paged(items interface{}, total int64, page, size int) PagedResponse {
	pages := 0
	if size > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}
	return PagedResponse{Items: items, Total: total, Page: page, Size: size, Pages: pages}
}
