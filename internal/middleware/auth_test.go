package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"training_portal/internal/apiclient"
	"training_portal/internal/config"
	"training_portal/internal/model"
	"training_portal/internal/repository"
	"training_portal/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func token(t *testing.T, exp time.Time) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return signed
}

func setup(t *testing.T, store repository.SessionStore, roles ...model.UserRole) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.SessionConfig{CookieName: "portal_session"}
	r := gin.New()
	api := apiclient.NewWithHTTPClient("http://training.invalid", http.DefaultClient)
	handlers := []gin.HandlerFunc{SessionMiddleware(store, api, cfg)}
	if len(roles) > 0 {
		handlers = append(handlers, RoleMiddleware(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		util.Success(c, util.GetSessionFromContext(c).User.Username)
	})
	r.GET("/x", handlers...)
	return r
}

func TestSessionMiddleware(t *testing.T) {
	store := repository.NewMemorySessionStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &model.Session{ID: "live", Token: token(t, time.Now().Add(time.Hour)), User: model.User{ID: 1, Username: "ana", Role: model.Student}}))
	require.NoError(t, store.Save(ctx, &model.Session{ID: "stale", Token: token(t, time.Now().Add(-time.Hour)), User: model.User{ID: 2, Username: "bo", Role: model.Student}}))
	r := setup(t, store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: "live"})
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer live")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer stale")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	_, err := store.Get(ctx, "stale")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleMiddlewareManagerIsMentor(t *testing.T) {
	store := repository.NewMemorySessionStore()
	ctx := context.Background()
	for id, role := range map[string]model.UserRole{"s": model.Student, "m": model.Mentor, "g": model.Manager} {
		require.NoError(t, store.Save(ctx, &model.Session{ID: id, Token: "opaque", User: model.User{ID: 1, Username: id, Role: role}}))
	}
	r := setup(t, store, model.Mentor)

	for id, want := range map[string]int{"s": http.StatusForbidden, "m": http.StatusOK, "g": http.StatusOK} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+id)
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, id)
	}
}
