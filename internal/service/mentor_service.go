package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"training_portal/internal/apiclient"
	"training_portal/internal/model"
	"training_portal/internal/util"
	"training_portal/pkg/logger"

	"go.uber.org/zap"
)

// MentorService backs the mentor and manager views: students, reports,
// submission review and feedback.
type MentorService struct {
	Storage *StorageService
}

func NewMentorService(storage *StorageService) *MentorService {
	return &MentorService{Storage: storage}
}

func (s *MentorService) Students(ctx context.Context, api *apiclient.Client) ([]model.User, error) {
	return api.ListStudents(ctx)
}

func (s *MentorService) StudentProgress(ctx context.Context, api *apiclient.Client, studentID int) (*model.StudentProgress, error) {
	return api.StudentProgress(ctx, studentID)
}

func (s *MentorService) Overview(ctx context.Context, api *apiclient.Client) (*model.OverviewReport, error) {
	return api.OverviewReport(ctx)
}

func (s *MentorService) AddFeedback(ctx context.Context, api *apiclient.Client, progressID int, feedback string) error {
	return api.AddProgressFeedback(ctx, progressID, strings.TrimSpace(feedback))
}

func (s *MentorService) Submissions(ctx context.Context, api *apiclient.Client, filter model.SubmissionFilter) ([]model.Submission, error) {
	return api.ListAllSubmissions(ctx, filter)
}

func (s *MentorService) Content(ctx context.Context, api *apiclient.Client, submissionID int) (*model.SubmissionContent, error) {
	return api.SubmissionContent(ctx, submissionID)
}

func (s *MentorService) Download(ctx context.Context, api *apiclient.Client, submissionID int) (*apiclient.Download, error) {
	return api.DownloadSubmission(ctx, submissionID)
}

// Review checks the status locally before it goes upstream.
func (s *MentorService) Review(ctx context.Context, api *apiclient.Client, submissionID int, req model.ReviewRequest) error {
	if !req.Status.Valid() {
		return util.ErrInvalidStatus
	}
	return api.ReviewSubmission(ctx, submissionID, req)
}

// ArchiveKey is where a submission file is kept in the archive store.
func ArchiveKey(submissionID int, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	return fmt.Sprintf("submissions/%d/%s", submissionID, name)
}

// Archive copies the submission file into the configured archive store and
// returns where it landed.
func (s *MentorService) Archive(ctx context.Context, api *apiclient.Client, submissionID int) (string, error) {
	if s.Storage == nil {
		return "", util.ErrStorageNotEnabled
	}
	dl, err := api.DownloadSubmission(ctx, submissionID)
	if err != nil {
		return "", err
	}
	defer dl.Body.Close()

	contentType := dl.ContentType
	if contentType == "" {
		contentType = util.MimeOctetStream
	}
	url, err := s.Storage.Upload(ctx, ArchiveKey(submissionID, dl.Filename), dl.Body, dl.ContentLength, contentType)
	if err != nil {
		return "", err
	}
	logger.Log.Info("Submission archived", zap.Int("submissionId", submissionID), zap.String("url", url))
	return url, nil
}
