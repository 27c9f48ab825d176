package service

import (
	"context"

	"training_portal/internal/apiclient"
	"training_portal/internal/model"
)

const (
	msgRunNetwork = "Network error while running project."
	msgRunFailed  = "Could not run project"
)

type ProjectService struct{}

func NewProjectService() *ProjectService {
	return &ProjectService{}
}

func (s *ProjectService) List(ctx context.Context, api *apiclient.Client) ([]model.Project, error) {
	return api.ListProjects(ctx)
}

func (s *ProjectService) Get(ctx context.Context, api *apiclient.Client, projectID int) (*model.Project, error) {
	return api.GetProject(ctx, projectID)
}

// RunResult is what the output panel shows after a run.
type RunResult struct {
	Output string `json:"output"`
	Code   string `json:"code,omitempty"`
	Failed bool   `json:"failed"`
}

// Run executes the project upstream. Failures become output text rather than
// errors, the way the output panel presents them.
func (s *ProjectService) Run(ctx context.Context, api *apiclient.Client, projectID int) RunResult {
	out, err := api.RunProject(ctx, projectID)
	switch {
	case err != nil && apiclient.IsNetwork(err):
		return RunResult{Output: msgRunNetwork, Failed: true}
	case err != nil:
		return RunResult{Output: "Error: " + apiclient.MessageOf(err, msgRunFailed), Failed: true}
	case out.Error != "":
		return RunResult{Output: "Error: " + out.Error, Failed: true}
	}
	return RunResult{Output: out.Output, Code: out.Code}
}
