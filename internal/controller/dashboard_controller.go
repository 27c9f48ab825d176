package controller

import (
	"errors"
	"net/http"

	"training_portal/internal/service"
	"training_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// GetDashboard godoc
// @Summary Role dashboard
// @Description Student, mentor and manager dashboards. Failed sections are reported in errors and left empty
// @Tags dashboard
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.DashboardView} "Dashboard"
// @Failure 401 {object} util.Response "Unauthorized"
// @Failure 403 {object} util.Response "Unknown role"
// @Router /portal/dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.DashboardService.Build(ctx.Request.Context(), session, util.GetClientFromContext(ctx))
	if err != nil {
		if errors.Is(err, util.ErrUnknownRole) {
			util.Error(ctx, http.StatusForbidden, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, view)
}
