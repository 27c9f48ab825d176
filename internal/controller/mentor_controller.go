package controller

import (
	"errors"
	"mime"
	"net/http"

	"training_portal/internal/apiclient"
	"training_portal/internal/model"
	"training_portal/internal/service"
	"training_portal/internal/util"
	"training_portal/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MentorController struct {
	MentorService *service.MentorService
}

func NewMentorController(mentorService *service.MentorService) *MentorController {
	return &MentorController{MentorService: mentorService}
}

// GetStudents godoc
// @Summary List students
// @Tags mentor
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.User} "Students"
// @Failure 403 {object} util.Response "Forbidden"
// @Router /portal/students [get]
func (c *MentorController) GetStudents(ctx *gin.Context) {
	students, err := c.MentorService.Students(ctx.Request.Context(), util.GetClientFromContext(ctx))
	if err != nil {
		util.UpstreamError(ctx, err, "Could not load students")
		return
	}
	util.Success(ctx, students)
}

// GetStudentProgress godoc
// @Summary A student's progress on every project
// @Tags mentor
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Student ID"
// @Success 200 {object} util.Response{data=model.StudentProgress} "Progress"
// @Router /portal/students/{id}/progress [get]
func (c *MentorController) GetStudentProgress(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	progress, err := c.MentorService.StudentProgress(ctx.Request.Context(), util.GetClientFromContext(ctx), id)
	if err != nil {
		util.UpstreamError(ctx, err, "Could not load student progress")
		return
	}
	util.Success(ctx, progress)
}

// GetOverview godoc
// @Summary Overview report
// @Tags mentor
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.OverviewReport} "Report"
// @Router /portal/reports/overview [get]
func (c *MentorController) GetOverview(ctx *gin.Context) {
	report, err := c.MentorService.Overview(ctx.Request.Context(), util.GetClientFromContext(ctx))
	if err != nil {
		util.UpstreamError(ctx, err, "Could not load the overview report")
		return
	}
	util.Success(ctx, report)
}

// AddFeedback godoc
// @Summary Leave feedback on a progress record
// @Tags mentor
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Progress ID"
// @Param   body body model.FeedbackRequest true "Feedback"
// @Success 200 {object} util.Response "Saved"
// @Router /portal/progress/{id}/feedback [post]
func (c *MentorController) AddFeedback(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req model.FeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.MentorService.AddFeedback(ctx.Request.Context(), util.GetClientFromContext(ctx), id, req.Feedback); err != nil {
		util.UpstreamError(ctx, err, "Could not save feedback")
		return
	}
	util.Success(ctx, nil)
}

// ListSubmissions godoc
// @Summary All submissions
// @Tags mentor
// @Produce  json
// @Security ApiKeyAuth
// @Param   project_id query int false "Project ID"
// @Param   student_id query int false "Student ID"
// @Param   submission_type query string false "Submission type"
// @Success 200 {object} util.Response{data=[]model.Submission} "Submissions"
// @Router /portal/mentor/submissions [get]
func (c *MentorController) ListSubmissions(ctx *gin.Context) {
	filter := model.SubmissionFilter{
		ProjectID:      util.QueryInt(ctx, "project_id", 0),
		StudentID:      util.QueryInt(ctx, "student_id", 0),
		SubmissionType: ctx.Query("submission_type"),
	}

	list, err := c.MentorService.Submissions(ctx.Request.Context(), util.GetClientFromContext(ctx), filter)
	if err != nil {
		util.UpstreamError(ctx, err, "Could not load submissions")
		return
	}
	util.Success(ctx, list)
}

// GetContent godoc
// @Summary Submission content
// @Description Text content of a submission, or is_binary for files that cannot be shown
// @Tags mentor
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Submission ID"
// @Success 200 {object} util.Response{data=model.SubmissionContent} "Content"
// @Router /portal/mentor/submissions/{id}/content [get]
func (c *MentorController) GetContent(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	content, err := c.MentorService.Content(ctx.Request.Context(), util.GetClientFromContext(ctx), id)
	if err != nil {
		util.UpstreamError(ctx, err, "Could not load submission content")
		return
	}
	util.Success(ctx, content)
}

// Download godoc
// @Summary Download a submission
// @Description Streams the stored file from the training API
// @Tags mentor
// @Produce  octet-stream
// @Security ApiKeyAuth
// @Param   id path int true "Submission ID"
// @Success 200 {file} file "Submission file"
// @Router /portal/mentor/submissions/{id}/download [get]
func (c *MentorController) Download(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	dl, err := c.MentorService.Download(ctx.Request.Context(), util.GetClientFromContext(ctx), id)
	if err != nil {
		util.UpstreamError(ctx, err, "Could not download submission")
		return
	}
	defer dl.Body.Close()

	contentType := dl.ContentType
	if contentType == "" {
		contentType = util.MimeOctetStream
	}
	headers := map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename}),
	}
	ctx.DataFromReader(http.StatusOK, dl.ContentLength, contentType, dl.Body, headers)
}

// Review godoc
// @Summary Review a submission
// @Tags mentor
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Submission ID"
// @Param   body body model.ReviewRequest true "Review"
// @Success 200 {object} util.Response "Reviewed"
// @Failure 400 {object} util.Response "Invalid status"
// @Router /portal/mentor/submissions/{id}/review [post]
func (c *MentorController) Review(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req model.ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.MentorService.Review(ctx.Request.Context(), util.GetClientFromContext(ctx), id, req)
	if err != nil {
		if errors.Is(err, util.ErrInvalidStatus) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.UpstreamError(ctx, err, "Could not save the review")
		return
	}
	util.Success(ctx, nil)
}

// Archive godoc
// @Summary Archive a submission
// @Description Copies the submission file into the configured object store
// @Tags mentor
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Submission ID"
// @Success 200 {object} util.Response{data=object} "Archived"
// @Failure 503 {object} util.Response "Storage not configured"
// @Router /portal/mentor/submissions/{id}/archive [post]
func (c *MentorController) Archive(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	url, err := c.MentorService.Archive(ctx.Request.Context(), util.GetClientFromContext(ctx), id)
	if err != nil {
		var apiErr *apiclient.Error
		switch {
		case errors.Is(err, util.ErrStorageNotEnabled):
			util.Error(ctx, http.StatusServiceUnavailable, err.Error())
		case errors.As(err, &apiErr):
			util.UpstreamError(ctx, err, "Could not download submission")
		default:
			logger.Log.Error("Archive failed", zap.Int("submissionId", id), zap.Error(err))
			util.InternalServerError(ctx)
		}
		return
	}
	util.Success(ctx, gin.H{"url": url})
}
