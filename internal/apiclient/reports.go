package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"training_portal/internal/model"
)

func (c *Client) Leaderboard(ctx context.Context) (*model.Leaderboard, error) {
	var out model.Leaderboard
	err := c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: "/api/leaderboard",
		path:     "/api/leaderboard",
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) OverviewReport(ctx context.Context) (*model.OverviewReport, error) {
	var out struct {
		Report model.OverviewReport `json:"report"`
	}
	err := c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: "/api/reports/overview",
		path:     "/api/reports/overview",
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out.Report, nil
}

func (c *Client) ListStudents(ctx context.Context) ([]model.User, error) {
	var out struct {
		Students []model.User `json:"students" validate:"dive"`
	}
	err := c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: "/api/students",
		path:     "/api/students",
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Students, nil
}

func (c *Client) StudentProgress(ctx context.Context, studentID int) (*model.StudentProgress, error) {
	var out model.StudentProgress
	err := c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: "/api/students/:id/progress",
		path:     fmt.Sprintf("/api/students/%d/progress", studentID),
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddProgressFeedback(ctx context.Context, progressID int, feedback string) error {
	return c.call(ctx, request{
		method:   http.MethodPost,
		endpoint: "/api/progress/:id/feedback",
		path:     fmt.Sprintf("/api/progress/%d/feedback", progressID),
		body:     model.FeedbackRequest{Feedback: feedback},
	})
}
