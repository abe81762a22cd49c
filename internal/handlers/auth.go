package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venturedraft/venturedraft-backend/internal/middleware"
	"github.com/venturedraft/venturedraft-backend/internal/platform/apierr"
	"github.com/venturedraft/venturedraft-backend/internal/platform/ctxutil"
	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
	"github.com/venturedraft/venturedraft-backend/internal/services"
)

type AuthHandler struct {
	log          *logger.Logger
	authService  services.AuthService
	secureCookie bool
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		log:          log.With("handler", "AuthHandler"),
		authService:  authService,
		secureCookie: secureCookie,
	}
}

func (ah *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, token, int(ah.authService.SessionTTL().Seconds()), "/", "", ah.secureCookie, true)
}

func (ah *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", ah.secureCookie, true)
}

func (ah *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, ah.log, apierr.Validation("invalid request body"))
		return
	}
	user, token, err := ah.authService.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, ah.log, err)
		return
	}
	ah.setSessionCookie(c, token)
	RespondOK(c, gin.H{"user": user})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, ah.log, apierr.Validation("invalid request body"))
		return
	}
	user, token, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, ah.log, err)
		return
	}
	ah.setSessionCookie(c, token)
	RespondOK(c, gin.H{"user": user})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookieName); err == nil && token != "" {
		if err := ah.authService.Logout(c.Request.Context(), token); err != nil {
			RespondError(c, ah.log, err)
			return
		}
	}
	ah.clearSessionCookie(c)
	RespondOK(c, gin.H{"success": true})
}

// Me runs behind RequireAuth, so the identity is already resolved.
func (ah *AuthHandler) Me(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"user": nil})
		return
	}
	RespondOK(c, gin.H{"user": gin.H{"id": rd.UserID, "email": rd.UserEmail}})
}
