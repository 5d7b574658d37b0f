package appErrors

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academy_backend/internal/logger"
)

// ErrorResponse is the wire envelope for every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HandleError translates any error into the {detail} envelope with the
// status carried by the AppError, hiding internals behind a generic 500.
func HandleError(c *gin.Context, err error) {
	var appErr *AppError
	if !As(err, &appErr) {
		appErr = InternalError(err)
	}

	if appErr.HTTPCode >= 500 {
		logger.Error("request failed",
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"code", string(appErr.Code),
			"error", appErr.Error(),
		)
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{Detail: appErr.Message})
}

// HandleValidationError renders a binding/validation failure as a 400.
func HandleValidationError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
}
