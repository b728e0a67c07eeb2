package middleware

import (
	"strings"

	"pgmanager/models"
	"pgmanager/services/admin"
	"pgmanager/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// tokenFrom reads the session token from the auth cookie, falling back to a
// bearer Authorization header.
func tokenFrom(c *gin.Context) string {
	if cookie, err := c.Cookie(utils.AuthCookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// JWTAuthAdminMiddleware resolves the session token to an active admin and
// attaches it to the gin context ("admin", "adminID") and the request context.
func JWTAuthAdminMiddleware(admins admin.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token == "" {
			utils.RespondError(c, utils.Unauthorized("authentication required"))
			return
		}
		a, err := admins.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !utils.IsKind(err, utils.KindUnauthorized) {
				utils.GetLogger().Error("auth lookup failed", zap.Error(err))
			}
			utils.RespondError(c, err)
			return
		}

		c.Set("admin", a)
		c.Set("adminID", a.ID)
		c.Request = c.Request.WithContext(utils.WithAdminID(c.Request.Context(), a.ID))
		if l, ok := c.Get("logger"); ok {
			if logger, ok := l.(*zap.Logger); ok {
				c.Set("logger", logger.With(zap.String("adminID", a.ID)))
			}
		}
		c.Next()
	}
}

// RequirePasswordChanged rejects admins that still carry an initial password.
// It runs after JWTAuthAdminMiddleware.
func RequirePasswordChanged() gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, ok := c.Get("admin"); ok {
			if a, ok := v.(*models.Admin); ok && a.MustChangePassword {
				utils.RespondError(c, utils.Forbidden("change your password before using this endpoint"))
				return
			}
		}
		c.Next()
	}
}
