package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"training_portal/internal/model"
)

func (c *Client) CreateProject(ctx context.Context, req model.CreateProjectRequest) (*model.Project, error) {
	var out struct {
		Project model.Project `json:"project"`
	}
	err := c.call(ctx, request{
		method:   http.MethodPost,
		endpoint: "/api/admin/projects",
		path:     "/api/admin/projects",
		body:     req,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out.Project, nil
}

func (c *Client) ResetStudentPassword(ctx context.Context, studentID int, req model.ResetPasswordRequest) (*model.ResetPasswordResult, error) {
	var out model.ResetPasswordResult
	err := c.call(ctx, request{
		method:   http.MethodPost,
		endpoint: "/api/admin/students/:id/reset-password",
		path:     fmt.Sprintf("/api/admin/students/%d/reset-password", studentID),
		body:     req,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
