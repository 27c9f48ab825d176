package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"training_portal/internal/apiclient"
	"training_portal/internal/config"
	"training_portal/internal/model"
	"training_portal/internal/repository"
	"training_portal/internal/util"
	"training_portal/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionID pulls the session id from the cookie, falling back to a bearer header.
func SessionID(c *gin.Context, cookieName string) string {
	if id, err := c.Cookie(cookieName); err == nil && id != "" {
		return id
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// SessionMiddleware resolves the caller's session and binds a training API
// client carrying its token to the request.
func SessionMiddleware(store repository.SessionStore, api *apiclient.Client, cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := SessionID(c, cfg.CookieName)
		if id == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		session, err := store.Get(c.Request.Context(), id)
		if err != nil {
			if !errors.Is(err, repository.ErrSessionNotFound) {
				logger.Log.Error("Session lookup failed", zap.Error(err))
			}
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if exp, ok := util.TokenExpiry(session.Token); ok && time.Now().After(exp) {
			if err := store.Delete(c.Request.Context(), id); err != nil {
				logger.Log.Warn("Failed to delete expired session", zap.Error(err))
			}
			util.Error(c, http.StatusUnauthorized, util.ErrSessionExpired.Error())
			c.Abort()
			return
		}

		c.Set(util.ContextSessionKey, session)
		c.Set(util.ContextClientKey, api.WithToken(session.Token))
		c.Next()
	}
}

// RoleMiddleware admits the listed roles. Managers pass wherever mentors do.
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := util.GetSessionFromContext(c)
		if session == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if !HasRole(session.User, roles...) {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

func HasRole(user model.User, roles ...model.UserRole) bool {
	for _, role := range roles {
		if user.Role == role {
			return true
		}
		if role == model.Mentor && user.Role == model.Manager {
			return true
		}
	}
	return false
}
