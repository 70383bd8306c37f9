package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/gylounge/internal/helpers"
	"github.com/joshua-takyi/gylounge/internal/models"
)

const AdminClaimsKey = "admin"

type TokenValidator interface {
	ValidateToken(tokenStr string) (*helpers.CustomClaims, error)
}

// AdminAuth accepts a Supabase access token from the Authorization header or
// the access_token cookie and requires the admin role in app_metadata.
func AdminAuth(validator TokenValidator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if validator == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, models.ErrorResponse("admin authentication is not configured"))
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie("access_token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized access"))
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			logger.Info("admin token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized access"))
			return
		}

		admin := helpers.NewAdminClaims(claims)
		if !admin.IsAdmin() {
			logger.Warn("non-admin tried an admin route", "user_id", admin.UserID, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse("Forbidden"))
			return
		}

		c.Set(AdminClaimsKey, admin)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
