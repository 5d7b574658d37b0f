package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/auth"
	"academy_backend/internal/logger"
	"academy_backend/internal/models"
	"academy_backend/internal/repositories"
)

// AuthMiddleware decodes the bearer token, loads the actor and binds it
// to the resolved tenant. A valid token for a user of another tenant is
// 403, not 404: the credential is genuine, the scope is wrong, and
// operators want to see that distinctly.
func AuthMiddleware(jwtManager *auth.JWTManager, users repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			appErrors.HandleError(c, appErrors.ErrUnauthorized)
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		userID, err := jwtManager.Verify(tokenStr, auth.TokenTypeAccess)
		if err != nil {
			if appErrors.Is(err, auth.ErrTokenExpired) {
				appErrors.HandleError(c, appErrors.ErrTokenExpired)
				return
			}
			appErrors.HandleError(c, appErrors.ErrInvalidToken)
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			appErrors.HandleError(c, appErrors.ErrUnauthorized)
			return
		}

		site := SiteFromContext(c)
		if site == nil || user.SiteID != site.ID {
			appErrors.HandleError(c, appErrors.ErrCrossTenant)
			return
		}

		switch user.Status {
		case models.UserStatusActive:
		case models.UserStatusSuspended:
			appErrors.HandleError(c, appErrors.ErrUserSuspended)
			return
		default:
			appErrors.HandleError(c, appErrors.ErrUnauthorized)
			return
		}

		c.Set(ContextUser, user)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), user.ID))
		c.Next()
	}
}

// RequireAdmin allows only tenant admins.
func RequireAdmin() gin.HandlerFunc {
	return requireRoles(models.UserRoleAdmin)
}

// RequireInstructorOrAdmin allows course-management roles.
func RequireInstructorOrAdmin() gin.HandlerFunc {
	return requireRoles(models.UserRoleInstructor, models.UserRoleAdmin)
}

func requireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := UserFromContext(c)
		if user == nil {
			appErrors.HandleError(c, appErrors.ErrUnauthorized)
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		appErrors.HandleError(c, appErrors.ErrForbidden)
	}
}

// RequireSuperAdmin additionally demands that the actor's tenant is the
// platform root.
func RequireSuperAdmin(sites repositories.SiteRepository, rootSubdomain string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := UserFromContext(c)
		if user == nil {
			appErrors.HandleError(c, appErrors.ErrUnauthorized)
			return
		}
		if user.Role != models.UserRoleAdmin {
			appErrors.HandleError(c, appErrors.ErrForbidden)
			return
		}
		root, err := sites.FindRoot(c.Request.Context(), rootSubdomain)
		if err != nil || user.SiteID != root.ID {
			appErrors.HandleError(c, appErrors.ErrForbidden)
			return
		}
		c.Next()
	}
}
