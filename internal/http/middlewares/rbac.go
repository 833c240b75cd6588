package middlewares

import (
	"net/http"

	"github.com/geocoder89/storefront/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RequireRole must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}
		if role != required {
			abortWithError(c, http.StatusForbidden, "forbidden", required+" role required")
			return
		}
		c.Next()
	}
}

// RequireSelf allows the request only when the token subject equals the named path
// parameter. Admins may act on any user. It must run after RequireAuth.
func (m *AuthMiddleware) RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := UserIDFromContext(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}

		if role, _ := RoleFromContext(c); role == user.RoleAdmin {
			c.Next()
			return
		}

		if c.Param(param) != uid {
			abortWithError(c, http.StatusForbidden, "forbidden", "Not allowed to access another user's data")
			return
		}
		c.Next()
	}
}
