package controller

import (
	"net/http"
	"time"

	"training_portal/internal/config"
	"training_portal/internal/model"
	"training_portal/internal/service"
	"training_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	Session     config.SessionConfig
}

func NewAuthController(authService *service.AuthService, cfg config.SessionConfig) *AuthController {
	return &AuthController{
		AuthService: authService,
		Session:     cfg,
	}
}

// SessionResponse is returned by login and registration.
// swagger:model SessionResponse
type SessionResponse struct {
	SessionID string     `json:"session_id"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

func (c *AuthController) setSessionCookie(ctx *gin.Context, session *model.Session) {
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.Session.CookieName, session.ID, maxAge, "/", "", c.Session.Secure, true)
}

// Login godoc
// @Summary Sign in
// @Description Authenticates against the training API and opens a portal session
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body body model.LoginRequest true "Credentials"
// @Success 200 {object} util.Response{data=SessionResponse} "Signed in"
// @Failure 400 {object} util.Response "Bad Request"
// @Failure 401 {object} util.Response "Invalid credentials"
// @Failure 502 {object} util.Response "Training API unavailable"
// @Router /portal/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req model.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.AuthService.Login(ctx.Request.Context(), req)
	if err != nil {
		util.UpstreamError(ctx, err, "Login failed")
		return
	}

	c.setSessionCookie(ctx, session)
	util.Success(ctx, SessionResponse{SessionID: session.ID, ExpiresAt: session.ExpiresAt, User: session.User})
}

// Register godoc
// @Summary Register a student
// @Description Creates the account on the training API and opens a portal session. A missing e-mail becomes <username>@no-email.local
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body body model.RegisterRequest true "Registration"
// @Success 201 {object} util.Response{data=SessionResponse} "Registered"
// @Failure 400 {object} util.Response "Bad Request"
// @Failure 409 {object} util.Response "Username taken"
// @Failure 502 {object} util.Response "Training API unavailable"
// @Router /portal/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req model.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.AuthService.Register(ctx.Request.Context(), req)
	if err != nil {
		util.UpstreamError(ctx, err, "Registration failed")
		return
	}

	c.setSessionCookie(ctx, session)
	util.Created(ctx, SessionResponse{SessionID: session.ID, ExpiresAt: session.ExpiresAt, User: session.User})
}

// Logout godoc
// @Summary Sign out
// @Tags auth
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response "Signed out"
// @Router /portal/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.AuthService.Logout(ctx.Request.Context(), session.ID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ctx.SetCookie(c.Session.CookieName, "", -1, "/", "", c.Session.Secure, true)
	util.Success(ctx, nil)
}

// Me godoc
// @Summary Current user
// @Description Reloads the signed-in user from the training API
// @Tags auth
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "Current user"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /portal/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.AuthService.Me(ctx.Request.Context(), session)
	if err != nil {
		util.UpstreamError(ctx, err, "Could not load the current user")
		return
	}
	util.Success(ctx, user)
}
