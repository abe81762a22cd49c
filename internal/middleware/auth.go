package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venturedraft/venturedraft-backend/internal/platform/ctxutil"
	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
	"github.com/venturedraft/venturedraft-backend/internal/services"
)

// SessionCookieName is the single cookie this backend issues.
const SessionCookieName = "session_token"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

// RequireAuth resolves the session cookie to a user and stashes the
// identity in the request context. Every failure mode -- missing cookie,
// unknown token, expired session -- yields the same 401 body.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"user": nil})
			return
		}
		user, err := am.authService.GetSessionUser(c.Request.Context(), token)
		if err != nil {
			am.log.Error("Session lookup failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"user": nil})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"user": nil})
			return
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			UserID:    user.ID,
			UserEmail: user.Email,
			Token:     token,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
