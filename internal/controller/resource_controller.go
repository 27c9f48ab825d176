package controller

import (
	"training_portal/internal/model"
	"training_portal/internal/service"
	"training_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type ResourceController struct {
	ResourceService *service.ResourceService
}

func NewResourceController(resourceService *service.ResourceService) *ResourceController {
	return &ResourceController{ResourceService: resourceService}
}

// GetResources godoc
// @Summary List resources
// @Description Search matches title or description, case-insensitively. category=all disables the category filter
// @Tags resources
// @Produce  json
// @Security ApiKeyAuth
// @Param   search query string false "Search text"
// @Param   category query string false "Category"
// @Success 200 {object} util.Response{data=service.ResourceList} "Resources"
// @Router /portal/resources [get]
func (c *ResourceController) GetResources(ctx *gin.Context) {
	filter := service.ResourceFilter{
		Search:   ctx.Query("search"),
		Category: ctx.DefaultQuery("category", service.AllCategories),
	}

	list, err := c.ResourceService.List(ctx.Request.Context(), util.GetClientFromContext(ctx), filter)
	if err != nil {
		util.UpstreamError(ctx, err, "Could not load resources")
		return
	}
	util.Success(ctx, list)
}

// GetResource godoc
// @Summary Resource detail
// @Tags resources
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Resource ID"
// @Success 200 {object} util.Response{data=model.Resource} "Resource"
// @Failure 404 {object} util.Response "Not Found"
// @Router /portal/resources/{id} [get]
func (c *ResourceController) GetResource(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	resource, err := c.ResourceService.Get(ctx.Request.Context(), util.GetClientFromContext(ctx), id)
	if err != nil {
		util.UpstreamError(ctx, err, "Could not load resource")
		return
	}
	util.Success(ctx, resource)
}

// CreateResource godoc
// @Summary Publish a resource
// @Description Mentors and managers only. Category defaults to General
// @Tags resources
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body model.CreateResourceRequest true "Resource"
// @Success 201 {object} util.Response{data=model.Resource} "Created"
// @Failure 400 {object} util.Response "Bad Request"
// @Failure 403 {object} util.Response "Forbidden"
// @Router /portal/resources [post]
func (c *ResourceController) CreateResource(ctx *gin.Context) {
	var req model.CreateResourceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resource, err := c.ResourceService.Create(ctx.Request.Context(), util.GetClientFromContext(ctx), req)
	if err != nil {
		util.UpstreamError(ctx, err, "Could not create resource")
		return
	}
	util.Created(ctx, resource)
}
