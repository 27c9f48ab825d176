package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"training_portal/internal/model"
)

func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var out struct {
		Projects []model.Project `json:"projects" validate:"dive"`
	}
	err := c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: "/api/projects",
		path:     "/api/projects",
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Projects, nil
}

func (c *Client) GetProject(ctx context.Context, projectID int) (*model.Project, error) {
	var out struct {
		Project model.Project `json:"project"`
	}
	err := c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: "/api/projects/:id",
		path:     fmt.Sprintf("/api/projects/%d", projectID),
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out.Project, nil
}

// RunProject executes the project's code on the training API. A failed run is
// still a result: its Error field carries the reason next to any output.
func (c *Client) RunProject(ctx context.Context, projectID int) (*model.RunOutput, error) {
	var out model.RunOutput
	err := c.call(ctx, request{
		method:   http.MethodPost,
		endpoint: "/api/projects/:id/run",
		path:     fmt.Sprintf("/api/projects/%d/run", projectID),
		out:      &out,
		lenient:  true,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSteps returns the project's steps ordered by order_index.
func (c *Client) ListSteps(ctx context.Context, projectID int) ([]model.Step, error) {
	var out struct {
		Steps []model.Step `json:"steps" validate:"dive"`
	}
	err := c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: "/api/projects/:id/steps",
		path:     fmt.Sprintf("/api/projects/%d/steps", projectID),
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out.Steps, func(i, j int) bool {
		return out.Steps[i].OrderIndex < out.Steps[j].OrderIndex
	})
	return out.Steps, nil
}

func (c *Client) GetProjectProgress(ctx context.Context, projectID int) (*model.ProgressReport, error) {
	var out model.ProgressReport
	err := c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: "/api/projects/:id/progress",
		path:     fmt.Sprintf("/api/projects/%d/progress", projectID),
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProgress writes an aggregate status through the legacy progress path.
func (c *Client) UpdateProgress(ctx context.Context, update model.ProgressUpdate) error {
	return c.call(ctx, request{
		method:   http.MethodPost,
		endpoint: "/api/progress",
		path:     "/api/progress",
		body:     update,
	})
}

func (c *Client) GetStepAnswers(ctx context.Context, stepID int) (*model.PriorAnswers, error) {
	var out model.PriorAnswers
	err := c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: "/api/steps/:id/answers",
		path:     fmt.Sprintf("/api/steps/%d/answers", stepID),
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitStepAnswers(ctx context.Context, stepID int, answers map[int]string) (*model.AnswerSubmission, error) {
	var out model.AnswerSubmission
	err := c.call(ctx, request{
		method:   http.MethodPost,
		endpoint: "/api/steps/:id/answer",
		path:     fmt.Sprintf("/api/steps/%d/answer", stepID),
		body:     map[string]interface{}{"answers": answers},
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
