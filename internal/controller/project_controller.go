package controller

import (
	"errors"
	"net/http"

	"training_portal/internal/service"
	"training_portal/internal/stepper"
	"training_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type ProjectController struct {
	ProjectService  *service.ProjectService
	StepViewService *service.StepViewService
}

func NewProjectController(projectService *service.ProjectService, stepViews *service.StepViewService) *ProjectController {
	return &ProjectController{
		ProjectService:  projectService,
		StepViewService: stepViews,
	}
}

// ListProjects godoc
// @Summary List projects
// @Description Projects visible to the caller, with the caller's progress for students
// @Tags projects
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Project} "Projects"
// @Router /portal/projects [get]
func (c *ProjectController) ListProjects(ctx *gin.Context) {
	projects, err := c.ProjectService.List(ctx.Request.Context(), util.GetClientFromContext(ctx))
	if err != nil {
		util.UpstreamError(ctx, err, "Could not load projects")
		return
	}
	util.Success(ctx, projects)
}

// GetProject godoc
// @Summary Project detail
// @Tags projects
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Project ID"
// @Success 200 {object} util.Response{data=model.Project} "Project"
// @Failure 404 {object} util.Response "Not Found"
// @Router /portal/projects/{id} [get]
func (c *ProjectController) GetProject(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	project, err := c.ProjectService.Get(ctx.Request.Context(), util.GetClientFromContext(ctx), id)
	if err != nil {
		util.UpstreamError(ctx, err, "Could not load project")
		return
	}
	util.Success(ctx, project)
}

// RunProject godoc
// @Summary Run project code
// @Description Runs the project on the training API. Failures come back as output text with failed set
// @Tags projects
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Project ID"
// @Success 200 {object} util.Response{data=service.RunResult} "Run output"
// @Router /portal/projects/{id}/run [post]
func (c *ProjectController) RunProject(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	util.Success(ctx, c.ProjectService.Run(ctx.Request.Context(), util.GetClientFromContext(ctx), id))
}

// OpenSteps godoc
// @Summary Open the step view
// @Description Loads steps and progress and selects the first unfinished step. Reopening discards the previous view
// @Tags steps
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Project ID"
// @Success 200 {object} util.Response{data=stepper.View} "Step view"
// @Router /portal/projects/{id}/steps [post]
func (c *ProjectController) OpenSteps(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}

	view := c.StepViewService.Open(ctx.Request.Context(), session, util.GetClientFromContext(ctx), id)
	util.Success(ctx, view)
}

// GetSteps godoc
// @Summary Current step view
// @Tags steps
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Project ID"
// @Success 200 {object} util.Response{data=stepper.View} "Step view"
// @Failure 404 {object} util.Response "Step view not open"
// @Router /portal/projects/{id}/steps [get]
func (c *ProjectController) GetSteps(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}

	ctrl, err := c.StepViewService.Controller(session.ID, id)
	if err != nil {
		util.Error(ctx, http.StatusNotFound, err.Error())
		return
	}
	util.Success(ctx, ctrl.View())
}

// StepAction godoc
// @Summary Act on the step view
// @Description select_option, submit, previous, next, select or continue. Upstream failures appear in the view's errors
// @Tags steps
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Project ID"
// @Param   body body service.StepAction true "Action"
// @Success 200 {object} util.Response{data=stepper.View} "Updated view"
// @Failure 404 {object} util.Response "Step view not open"
// @Failure 409 {object} util.Response{data=stepper.View} "Action refused"
// @Router /portal/projects/{id}/steps/actions [post]
func (c *ProjectController) StepAction(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}

	var action service.StepAction
	if err := ctx.ShouldBindJSON(&action); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.StepViewService.Apply(ctx.Request.Context(), session.ID, id, action)
	switch {
	case err == nil:
		util.Success(ctx, view)
	case errors.Is(err, service.ErrStepViewNotOpen):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case isRefusal(err):
		ctx.JSON(http.StatusConflict, util.Response{
			Code:    http.StatusConflict,
			Message: err.Error(),
			Data:    view,
		})
	default:
		util.LogInternalError(ctx, err)
	}
}

func isRefusal(err error) bool {
	for _, target := range []error{
		stepper.ErrNotLoaded, stepper.ErrOutOfRange, stepper.ErrStepCompleted,
		stepper.ErrNoQuestions, stepper.ErrNoAnswers, stepper.ErrUnknownQuestion,
		stepper.ErrUnknownOption, stepper.ErrSubmitting, stepper.ErrCannotContinue,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// CloseSteps godoc
// @Summary Close the step view
// @Tags steps
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Project ID"
// @Success 200 {object} util.Response "Closed"
// @Router /portal/projects/{id}/steps [delete]
func (c *ProjectController) CloseSteps(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}

	c.StepViewService.Close(session.ID, id)
	util.Success(ctx, nil)
}
