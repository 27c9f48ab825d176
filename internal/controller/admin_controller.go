package controller

import (
	"errors"

	"training_portal/internal/model"
	"training_portal/internal/service"
	"training_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	AdminService *service.AdminService
}

func NewAdminController(adminService *service.AdminService) *AdminController {
	return &AdminController{AdminService: adminService}
}

// CreateProject godoc
// @Summary Create a project
// @Description Managers only. Difficulty defaults to beginner
// @Tags admin
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body model.CreateProjectRequest true "Project"
// @Success 201 {object} util.Response{data=model.Project} "Created"
// @Failure 400 {object} util.Response "Bad Request"
// @Failure 403 {object} util.Response "Forbidden"
// @Router /portal/admin/projects [post]
func (c *AdminController) CreateProject(ctx *gin.Context) {
	var req model.CreateProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	project, err := c.AdminService.CreateProject(ctx.Request.Context(), util.GetClientFromContext(ctx), req)
	if err != nil {
		util.UpstreamError(ctx, err, "Could not create project")
		return
	}
	util.Created(ctx, project)
}

// ResetPassword godoc
// @Summary Reset a student's password
// @Description Set an explicit password or ask for a generated one, returned as temporary_password
// @Tags admin
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Student ID"
// @Param   body body model.ResetPasswordRequest true "Reset"
// @Success 200 {object} util.Response{data=model.ResetPasswordResult} "Reset"
// @Failure 400 {object} util.Response "Bad Request"
// @Router /portal/admin/students/{id}/reset-password [post]
func (c *AdminController) ResetPassword(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req model.ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AdminService.ResetPassword(ctx.Request.Context(), util.GetClientFromContext(ctx), id, req)
	if err != nil {
		if errors.Is(err, util.ErrInvalidPassword) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.UpstreamError(ctx, err, "Could not reset the password")
		return
	}
	util.Success(ctx, result)
}
