package util

import (
	"time"

	"training_portal/internal/apiclient"
	"training_portal/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim of a training API token. The signature is not
// checked: the portal never holds the signing key and the training API verifies
// every call. ok is false when the token is not a JWT or carries no exp.
func TokenExpiry(token string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func GetSessionFromContext(c *gin.Context) *model.Session {
	v, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	s, ok := v.(*model.Session)
	if !ok {
		return nil
	}
	return s
}

// GetClientFromContext returns the training API client bound to the caller's token.
func GetClientFromContext(c *gin.Context) *apiclient.Client {
	v, exists := c.Get(ContextClientKey)
	if !exists {
		return nil
	}
	client, ok := v.(*apiclient.Client)
	if !ok {
		return nil
	}
	return client
}
