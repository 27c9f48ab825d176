package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"training_portal/internal/apiclient"
	"training_portal/internal/config"
	"training_portal/internal/middleware"
	"training_portal/internal/model"
	"training_portal/internal/repository"
	"training_portal/internal/service"
	"training_portal/internal/stepper"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testPortal struct {
	router   *gin.Engine
	sessions *repository.MemorySessionStore
	hits     atomic.Int32
}

var sessionCfg = config.SessionConfig{Store: "memory", CookieName: "portal_session", TTL: time.Hour}

func newTestPortal(t *testing.T, register func(r *gin.Engine)) *testPortal {
	t.Helper()
	gin.SetMode(gin.TestMode)

	p := &testPortal{sessions: repository.NewMemorySessionStore()}

	upstream := gin.New()
	upstream.Use(func(c *gin.Context) {
		p.hits.Add(1)
		c.Next()
	})
	register(upstream)
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	api := apiclient.NewWithHTTPClient(srv.URL, &http.Client{Timeout: 2 * time.Second})
	stepViews := service.NewStepViewService(nil, time.Hour)
	auth := NewAuthController(service.NewAuthService(api, p.sessions, stepViews, &config.Config{Session: sessionCfg}), sessionCfg)
	dashboard := NewDashboardController(service.NewDashboardService())
	project := NewProjectController(service.NewProjectService(), stepViews)
	submission := NewSubmissionController(&service.SubmissionService{MaxBytes: 16})
	mentor := NewMentorController(service.NewMentorService(nil))

	r := gin.New()
	r.POST("/portal/login", auth.Login)
	portal := r.Group("/portal")
	portal.Use(middleware.SessionMiddleware(p.sessions, api, sessionCfg))
	portal.POST("/logout", auth.Logout)
	portal.GET("/dashboard", dashboard.GetDashboard)
	portal.POST("/projects/:id/steps", project.OpenSteps)
	portal.GET("/projects/:id/steps", project.GetSteps)
	portal.POST("/projects/:id/steps/actions", project.StepAction)
	portal.POST("/projects/:id/submissions", submission.SubmitProject)
	mentorGroup := portal.Group("")
	mentorGroup.Use(middleware.RoleMiddleware(model.Mentor))
	mentorGroup.GET("/students", mentor.GetStudents)
	p.router = r
	return p
}

func (p *testPortal) signIn(t *testing.T, id string, role model.UserRole) {
	t.Helper()
	require.NoError(t, p.sessions.Save(context.Background(), &model.Session{
		ID:        id,
		Token:     "upstream-token",
		User:      model.User{ID: 1, Username: "user", Role: role},
		ExpiresAt: time.Now().Add(time.Hour),
	}))
}

func (p *testPortal) do(t *testing.T, req *http.Request, sessionID string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if sessionID != "" {
		req.Header.Set("Authorization", "Bearer "+sessionID)
	}
	w := httptest.NewRecorder()
	p.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLoginSetsSessionCookie(t *testing.T) {
	p := newTestPortal(t, func(r *gin.Engine) {
		r.POST("/api/login", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "token": "upstream-token",
				"user": gin.H{"id": 4, "username": "ana", "role": "student"}})
		})
	})

	w, env := p.do(t, jsonRequest(http.MethodPost, "/portal/login", model.LoginRequest{Username: "ana", Password: "pw"}), "")
	require.Equal(t, http.StatusOK, w.Code)

	var res SessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "ana", res.User.Username)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "portal_session="+res.SessionID)

	stored, err := p.sessions.Get(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "upstream-token", stored.Token)

	w, _ = p.do(t, jsonRequest(http.MethodPost, "/portal/logout", nil), res.SessionID)
	assert.Equal(t, http.StatusOK, w.Code)
	_, err = p.sessions.Get(context.Background(), res.SessionID)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestLoginPassesUpstreamRejection(t *testing.T) {
	p := newTestPortal(t, func(r *gin.Engine) {
		r.POST("/api/login", func(c *gin.Context) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid username or password"})
		})
	})

	w, env := p.do(t, jsonRequest(http.MethodPost, "/portal/login", model.LoginRequest{Username: "ana", Password: "bad"}), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid username or password", env.Message)
}

func TestDashboardRejectsUnknownRole(t *testing.T) {
	p := newTestPortal(t, func(r *gin.Engine) {})
	p.signIn(t, "guest", "guest")

	w, env := p.do(t, httptest.NewRequest(http.MethodGet, "/portal/dashboard", nil), "guest")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Unknown role", env.Message)
	assert.Equal(t, int32(0), p.hits.Load())
}

func TestMentorRoutesRequireMentor(t *testing.T) {
	p := newTestPortal(t, func(r *gin.Engine) {
		r.GET("/api/students", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "students": []gin.H{}})
		})
	})
	p.signIn(t, "student", model.Student)
	p.signIn(t, "manager", model.Manager)

	w, _ := p.do(t, httptest.NewRequest(http.MethodGet, "/portal/students", nil), "student")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = p.do(t, httptest.NewRequest(http.MethodGet, "/portal/students", nil), "manager")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = p.do(t, httptest.NewRequest(http.MethodGet, "/portal/students", nil), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func multipartRequest(t *testing.T, path, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.WriteField("notes", "see readme"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestSubmitRejectsFilesLocally(t *testing.T) {
	p := newTestPortal(t, func(r *gin.Engine) {
		r.POST("/api/projects/2/submit", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		})
	})
	p.signIn(t, "student", model.Student)

	w, _ := p.do(t, multipartRequest(t, "/portal/projects/2/submissions", "big.py", bytes.Repeat([]byte("x"), 17)), "student")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w, _ = p.do(t, multipartRequest(t, "/portal/projects/2/submissions", "", nil), "student")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, int32(0), p.hits.Load())
}

func TestStepViewFlow(t *testing.T) {
	var submitted atomic.Bool
	p := newTestPortal(t, func(r *gin.Engine) {
		r.GET("/api/projects/1/steps", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "steps": []gin.H{
				{"id": 11, "order_index": 2, "title": "Loops", "questions": []gin.H{{"id": 110, "options": gin.H{"A": "for", "B": "if"}, "points": 5}}},
				{"id": 10, "order_index": 1, "title": "Variables", "questions": []gin.H{{"id": 100, "options": gin.H{"A": "x = 1", "B": "1 = x"}, "points": 5}}},
			}})
		})
		r.GET("/api/projects/1/progress", func(c *gin.Context) {
			steps := []gin.H{{"step_id": 10, "is_completed": false}, {"step_id": 11, "is_completed": false}}
			pct := 0
			if submitted.Load() {
				steps[0]["is_completed"] = true
				pct = 50
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "progress": gin.H{"status": "in_progress", "progress_percentage": pct},
				"step_progress": steps, "overall_percentage": pct, "completed_steps": pct / 50, "total_steps": 2})
		})
		r.POST("/api/steps/10/answer", func(c *gin.Context) {
			submitted.Store(true)
			c.JSON(http.StatusOK, gin.H{"success": true, "all_correct": true, "total_points": 5, "max_points": 5,
				"results": []gin.H{{"question_id": 100, "selected_option": "A", "is_correct": true, "points_awarded": 5, "max_points": 5}}})
		})
	})
	p.signIn(t, "student", model.Student)

	w, _ := p.do(t, httptest.NewRequest(http.MethodGet, "/portal/projects/1/steps", nil), "student")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env := p.do(t, jsonRequest(http.MethodPost, "/portal/projects/1/steps", nil), "student")
	require.Equal(t, http.StatusOK, w.Code)
	var view stepper.View
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.NotNil(t, view.Current)
	assert.Equal(t, 10, view.Current.ID)
	assert.Equal(t, 2, view.TotalSteps)

	w, _ = p.do(t, jsonRequest(http.MethodPost, "/portal/projects/1/steps/actions",
		service.StepAction{Action: "select_option", QuestionID: 100, Option: "A"}), "student")
	require.Equal(t, http.StatusOK, w.Code)

	w, env = p.do(t, jsonRequest(http.MethodPost, "/portal/projects/1/steps/actions", service.StepAction{Action: "submit"}), "student")
	require.Equal(t, http.StatusOK, w.Code)
	view = stepper.View{}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.NotNil(t, view.SubmitResult)
	assert.True(t, view.SubmitResult.AllCorrect)
	assert.True(t, view.Completed)
	assert.True(t, view.CanContinue)
	assert.Equal(t, 50, view.Progress.ProgressPercentage)

	w, env = p.do(t, jsonRequest(http.MethodPost, "/portal/projects/1/steps/actions",
		service.StepAction{Action: "select_option", QuestionID: 100, Option: "B"}), "student")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, stepper.ErrStepCompleted.Error(), env.Message)

	w, env = p.do(t, jsonRequest(http.MethodPost, "/portal/projects/1/steps/actions", service.StepAction{Action: "continue"}), "student")
	require.Equal(t, http.StatusOK, w.Code)
	view = stepper.View{}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, 1, view.CurrentIndex)
	assert.Nil(t, view.SubmitResult)

	w, _ = p.do(t, jsonRequest(http.MethodPost, "/portal/projects/1/steps/actions", service.StepAction{Action: "fly"}), "student")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
