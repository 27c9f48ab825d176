package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"training_portal/internal/apiclient"
	"training_portal/internal/model"
	"training_portal/internal/stepper"
	"training_portal/pkg/logger"
	"training_portal/pkg/monitoring"

	"go.uber.org/zap"
)

var ErrStepViewNotOpen = errors.New("project steps are not open; open the project first")

type stepViewKey struct {
	sessionID string
	projectID int
}

type stepView struct {
	ctrl     *stepper.Controller
	lastUsed time.Time
}

// StepViewService keeps one step controller per (session, project) while the
// student has the project open. Views idle longer than the configured period
// are dropped.
type StepViewService struct {
	Hub  *LiveHub
	idle time.Duration
	now  func() time.Time

	mu    sync.Mutex
	views map[stepViewKey]*stepView
}

func NewStepViewService(hub *LiveHub, idle time.Duration) *StepViewService {
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	return &StepViewService{
		Hub:   hub,
		idle:  idle,
		now:   time.Now,
		views: make(map[stepViewKey]*stepView),
	}
}

// Open starts a fresh controller for the project, replacing any earlier one,
// and loads it.
func (s *StepViewService) Open(ctx context.Context, session *model.Session, api stepper.API, projectID int) stepper.View {
	sessionID := session.ID
	ctrl := stepper.New(api, projectID, stepper.Hooks{
		OnProgress: func(p model.ProjectProgress) {
			if s.Hub != nil {
				s.Hub.PushToSession(sessionID, WSMessage{Type: MsgProjectProgress, Data: p})
			}
		},
		OnScored: func() {
			if s.Hub != nil {
				s.Hub.RefreshLeaderboard(sessionID)
			}
		},
	})

	key := stepViewKey{sessionID: sessionID, projectID: projectID}
	s.mu.Lock()
	s.views[key] = &stepView{ctrl: ctrl, lastUsed: s.now()}
	monitoring.OpenStepViews.Set(float64(len(s.views)))
	s.mu.Unlock()

	ctrl.Open(ctx)
	return ctrl.View()
}

// Controller returns the open controller and marks it used.
func (s *StepViewService) Controller(sessionID string, projectID int) (*stepper.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[stepViewKey{sessionID: sessionID, projectID: projectID}]
	if !ok {
		return nil, ErrStepViewNotOpen
	}
	v.lastUsed = s.now()
	return v.ctrl, nil
}

func (s *StepViewService) Close(sessionID string, projectID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.views, stepViewKey{sessionID: sessionID, projectID: projectID})
	monitoring.OpenStepViews.Set(float64(len(s.views)))
}

func (s *StepViewService) CloseSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.views {
		if k.sessionID == sessionID {
			delete(s.views, k)
		}
	}
	monitoring.OpenStepViews.Set(float64(len(s.views)))
}

// Sweep drops views idle for longer than the idle period and reports how many went.
func (s *StepViewService) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.idle)
	removed := 0
	for k, v := range s.views {
		if v.lastUsed.Before(cutoff) {
			delete(s.views, k)
			removed++
		}
	}
	monitoring.OpenStepViews.Set(float64(len(s.views)))
	return removed
}

// Run sweeps idle views every minute until ctx ends.
func (s *StepViewService) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logger.Log.Debug("Dropped idle step views", zap.Int("count", n))
			}
		}
	}
}

// StepAction is one user action on an open step view.
type StepAction struct {
	Action     string `json:"action" binding:"required,oneof=select_option submit previous next select continue"`
	QuestionID int    `json:"question_id"`
	Option     string `json:"option"`
	Index      int    `json:"index"`
}

// Apply performs the action and returns the resulting view. Refused actions
// return the stepper error next to the unchanged view.
func (s *StepViewService) Apply(ctx context.Context, sessionID string, projectID int, action StepAction) (stepper.View, error) {
	ctrl, err := s.Controller(sessionID, projectID)
	if err != nil {
		return stepper.View{}, err
	}

	switch action.Action {
	case "select_option":
		err = ctrl.SelectOption(action.QuestionID, action.Option)
	case "submit":
		_, err = ctrl.Submit(ctx)
		// upstream failures are already part of the view as inline errors
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) {
			err = nil
		}
	case "previous":
		err = ctrl.Previous(ctx)
	case "next":
		err = ctrl.Next(ctx)
	case "select":
		err = ctrl.Select(ctx, action.Index)
	case "continue":
		err = ctrl.Continue(ctx)
	}
	return ctrl.View(), err
}
