package service

import (
	"context"
	"mime/multipart"

	"training_portal/internal/apiclient"
	"training_portal/internal/config"
	"training_portal/internal/model"
	"training_portal/internal/util"
	"training_portal/pkg/logger"

	"go.uber.org/zap"
)

// SubmissionForm is one upload. ProjectID is ignored for final project submissions.
type SubmissionForm struct {
	ProjectID      int
	Final          bool
	File           *multipart.FileHeader
	Notes          string
	SubmissionType string
}

type SubmissionResult struct {
	Submission  *model.Submission  `json:"submission,omitempty"`
	Submissions []model.Submission `json:"submissions"`
	// ListError is set when the upload went through but the refreshed list did not load.
	ListError string `json:"list_error,omitempty"`
}

type SubmissionService struct {
	MaxBytes int64
}

func NewSubmissionService(cfg *config.Config) *SubmissionService {
	limit := cfg.Upload.MaxBytes
	if limit <= 0 {
		limit = config.DefaultMaxUploadBytes
	}
	return &SubmissionService{MaxBytes: limit}
}

// CheckFile applies the local limits. Nothing leaves the portal when it fails.
func (s *SubmissionService) CheckFile(fh *multipart.FileHeader) error {
	if fh == nil || fh.Filename == "" {
		return util.ErrNoFile
	}
	if fh.Size > s.MaxBytes {
		return util.ErrFileTooLarge
	}
	return nil
}

// Submit forwards the file and then reloads the matching submissions list.
func (s *SubmissionService) Submit(ctx context.Context, api *apiclient.Client, form SubmissionForm) (*SubmissionResult, error) {
	if err := s.CheckFile(form.File); err != nil {
		return nil, err
	}

	f, err := form.File.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mimeType, body, err := util.DetectMimeType(f, form.File.Filename)
	if err != nil {
		return nil, err
	}

	up := apiclient.Upload{
		Filename:       form.File.Filename,
		ContentType:    mimeType,
		Body:           body,
		Notes:          form.Notes,
		SubmissionType: form.SubmissionType,
	}

	var sub *model.Submission
	if form.Final {
		up.SubmissionType = model.SubmissionTypeFinalProject
		sub, err = api.SubmitFinalProject(ctx, up)
	} else {
		if up.SubmissionType == "" {
			up.SubmissionType = model.SubmissionTypeProject
		}
		sub, err = api.SubmitProject(ctx, form.ProjectID, up)
	}
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Submission uploaded",
		zap.Int("projectId", form.ProjectID),
		zap.Bool("final", form.Final),
		zap.String("mimeType", mimeType),
		zap.Int64("size", form.File.Size),
	)

	res := &SubmissionResult{Submission: sub, Submissions: []model.Submission{}}
	list, err := s.list(ctx, api, form.Final, form.ProjectID, up.SubmissionType)
	if err != nil {
		res.ListError = apiclient.Describe(err, "Network error while loading submissions.", "Could not load submissions.")
		return res, nil
	}
	res.Submissions = list
	return res, nil
}

func (s *SubmissionService) list(ctx context.Context, api *apiclient.Client, final bool, projectID int, submissionType string) ([]model.Submission, error) {
	if final {
		return api.ListFinalProjectSubmissions(ctx)
	}
	return api.ListProjectSubmissions(ctx, projectID, submissionType)
}

func (s *SubmissionService) ListForProject(ctx context.Context, api *apiclient.Client, projectID int, submissionType string) ([]model.Submission, error) {
	return api.ListProjectSubmissions(ctx, projectID, submissionType)
}

func (s *SubmissionService) ListFinal(ctx context.Context, api *apiclient.Client) ([]model.Submission, error) {
	return api.ListFinalProjectSubmissions(ctx)
}

func (s *SubmissionService) ListMine(ctx context.Context, api *apiclient.Client) ([]model.Submission, error) {
	return api.ListMySubmissions(ctx)
}
