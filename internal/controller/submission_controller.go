package controller

import (
	"errors"
	"net/http"

	"training_portal/internal/service"
	"training_portal/internal/util"

	"github.com/gin-gonic/gin"
)

// formOverhead leaves room for the multipart envelope and text fields.
const formOverhead = 1 << 20

type SubmissionController struct {
	SubmissionService *service.SubmissionService
}

func NewSubmissionController(submissionService *service.SubmissionService) *SubmissionController {
	return &SubmissionController{SubmissionService: submissionService}
}

func (c *SubmissionController) readForm(ctx *gin.Context) (service.SubmissionForm, bool) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.SubmissionService.MaxBytes+formOverhead)

	var form service.SubmissionForm
	file, err := ctx.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			util.Error(ctx, http.StatusRequestEntityTooLarge, util.ErrFileTooLarge.Error())
		case errors.Is(err, http.ErrMissingFile):
			util.BadRequest(ctx, util.ErrNoFile.Error())
		default:
			util.BadRequest(ctx, err.Error())
		}
		return form, false
	}
	if err := c.SubmissionService.CheckFile(file); err != nil {
		if errors.Is(err, util.ErrFileTooLarge) {
			util.Error(ctx, http.StatusRequestEntityTooLarge, err.Error())
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return form, false
	}

	form.File = file
	form.Notes = ctx.PostForm("notes")
	form.SubmissionType = ctx.PostForm("submission_type")
	return form, true
}

func (c *SubmissionController) submit(ctx *gin.Context, form service.SubmissionForm) {
	res, err := c.SubmissionService.Submit(ctx.Request.Context(), util.GetClientFromContext(ctx), form)
	if err != nil {
		util.UpstreamError(ctx, err, "Could not submit the file")
		return
	}
	util.Created(ctx, res)
}

// SubmitProject godoc
// @Summary Submit a project file
// @Description Single file up to 10MB. The file is checked before anything is sent upstream
// @Tags submissions
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Project ID"
// @Param   file formData file true "Project file"
// @Param   notes formData string false "Notes for the mentor"
// @Param   submission_type formData string false "project or final_test" Enums(project, final_test)
// @Success 201 {object} util.Response{data=service.SubmissionResult} "Submitted"
// @Failure 400 {object} util.Response "No file selected"
// @Failure 413 {object} util.Response "File too large"
// @Router /portal/projects/{id}/submissions [post]
func (c *SubmissionController) SubmitProject(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	form, ok := c.readForm(ctx)
	if !ok {
		return
	}
	form.ProjectID = id
	c.submit(ctx, form)
}

// SubmitFinalProject godoc
// @Summary Submit the final project
// @Tags submissions
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "Final project archive"
// @Param   notes formData string false "Notes for the mentor"
// @Success 201 {object} util.Response{data=service.SubmissionResult} "Submitted"
// @Failure 400 {object} util.Response "No file selected"
// @Failure 413 {object} util.Response "File too large"
// @Router /portal/final-project/submissions [post]
func (c *SubmissionController) SubmitFinalProject(ctx *gin.Context) {
	form, ok := c.readForm(ctx)
	if !ok {
		return
	}
	form.Final = true
	c.submit(ctx, form)
}

// ListProjectSubmissions godoc
// @Summary Submissions for a project
// @Tags submissions
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Project ID"
// @Param   submission_type query string false "Submission type"
// @Success 200 {object} util.Response{data=[]model.Submission} "Submissions"
// @Router /portal/projects/{id}/submissions [get]
func (c *SubmissionController) ListProjectSubmissions(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	list, err := c.SubmissionService.ListForProject(ctx.Request.Context(), util.GetClientFromContext(ctx), id, ctx.Query("submission_type"))
	if err != nil {
		util.UpstreamError(ctx, err, "Could not load submissions")
		return
	}
	util.Success(ctx, list)
}

// ListFinalProjectSubmissions godoc
// @Summary Final project submissions
// @Tags submissions
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Submission} "Submissions"
// @Router /portal/final-project/submissions [get]
func (c *SubmissionController) ListFinalProjectSubmissions(ctx *gin.Context) {
	list, err := c.SubmissionService.ListFinal(ctx.Request.Context(), util.GetClientFromContext(ctx))
	if err != nil {
		util.UpstreamError(ctx, err, "Could not load submissions")
		return
	}
	util.Success(ctx, list)
}

// ListMySubmissions godoc
// @Summary All of the caller's submissions
// @Tags submissions
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Submission} "Submissions"
// @Router /portal/submissions [get]
func (c *SubmissionController) ListMySubmissions(ctx *gin.Context) {
	list, err := c.SubmissionService.ListMine(ctx.Request.Context(), util.GetClientFromContext(ctx))
	if err != nil {
		util.UpstreamError(ctx, err, "Could not load submissions")
		return
	}
	util.Success(ctx, list)
}
