package service

import (
	"context"
	"time"

	"training_portal/internal/apiclient"
	"training_portal/internal/config"
	"training_portal/internal/model"
	"training_portal/internal/repository"
	"training_portal/internal/util"
	"training_portal/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	API      *apiclient.Client
	Sessions repository.SessionStore
	Cfg      *config.Config
	Views    *StepViewService
	now      func() time.Time
}

func NewAuthService(api *apiclient.Client, sessions repository.SessionStore, views *StepViewService, cfg *config.Config) *AuthService {
	return &AuthService{
		API:      api,
		Sessions: sessions,
		Cfg:      cfg,
		Views:    views,
		now:      time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.Session, error) {
	auth, err := s.API.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, auth)
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.Session, error) {
	auth, err := s.API.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, auth)
}

// startSession stores a new session. It ends at the configured TTL or when the
// upstream token expires, whichever comes first.
func (s *AuthService) startSession(ctx context.Context, auth *model.AuthResponse) (*model.Session, error) {
	now := s.now()
	session := &model.Session{
		ID:        uuid.NewString(),
		Token:     auth.Token,
		User:      auth.User,
		CreatedAt: now,
	}
	if s.Cfg.Session.TTL > 0 {
		session.ExpiresAt = now.Add(s.Cfg.Session.TTL)
	}
	if exp, ok := util.TokenExpiry(auth.Token); ok {
		if session.ExpiresAt.IsZero() || exp.Before(session.ExpiresAt) {
			session.ExpiresAt = exp
		}
	}

	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	logger.Log.Info("Session started",
		zap.Int("userId", session.User.ID),
		zap.String("role", string(session.User.Role)),
	)
	return session, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if s.Views != nil {
		s.Views.CloseSession(sessionID)
	}
	return s.Sessions.Delete(ctx, sessionID)
}

// Me refreshes the stored user from the training API.
func (s *AuthService) Me(ctx context.Context, session *model.Session) (*model.User, error) {
	user, err := s.API.WithToken(session.Token).Me(ctx)
	if err != nil {
		return nil, err
	}
	if *user != session.User {
		session.User = *user
		if err := s.Sessions.Save(ctx, session); err != nil {
			logger.Log.Warn("Failed to refresh session user", zap.Error(err))
		}
	}
	return user, nil
}
