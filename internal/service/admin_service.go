package service

import (
	"context"
	"strings"

	"training_portal/internal/apiclient"
	"training_portal/internal/model"
	"training_portal/internal/util"
)

type AdminService struct{}

func NewAdminService() *AdminService {
	return &AdminService{}
}

func (s *AdminService) CreateProject(ctx context.Context, api *apiclient.Client, req model.CreateProjectRequest) (*model.Project, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.DifficultyLevel == "" {
		req.DifficultyLevel = "beginner"
	}
	return api.CreateProject(ctx, req)
}

// ResetPassword sets an explicit password or asks the training API to
// generate one. An explicit password wins when both are given.
func (s *AdminService) ResetPassword(ctx context.Context, api *apiclient.Client, studentID int, req model.ResetPasswordRequest) (*model.ResetPasswordResult, error) {
	if strings.TrimSpace(req.Password) != "" {
		req.Generate = false
	} else if !req.Generate {
		return nil, util.ErrInvalidPassword
	}
	return api.ResetStudentPassword(ctx, studentID, req)
}
