package controller

import (
	"training_portal/internal/service"
	"training_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	NotificationService *service.NotificationService
}

func NewNotificationController(notificationService *service.NotificationService) *NotificationController {
	return &NotificationController{NotificationService: notificationService}
}

// GetNotifications godoc
// @Summary Notification feed
// @Description The latest 20 notifications and the unread count
// @Tags notifications
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.NotificationFeed} "Feed"
// @Router /portal/notifications [get]
func (c *NotificationController) GetNotifications(ctx *gin.Context) {
	feed, err := c.NotificationService.Feed(ctx.Request.Context(), util.GetClientFromContext(ctx))
	if err != nil {
		util.UpstreamError(ctx, err, "Could not load notifications")
		return
	}
	util.Success(ctx, feed)
}

// MarkRead godoc
// @Summary Mark a notification read
// @Tags notifications
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Notification ID"
// @Success 200 {object} util.Response{data=model.NotificationFeed} "Updated feed"
// @Router /portal/notifications/{id}/read [post]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}

	feed, err := c.NotificationService.MarkRead(ctx.Request.Context(), session.ID, util.GetClientFromContext(ctx), id)
	if err != nil {
		util.UpstreamError(ctx, err, "Could not mark the notification read")
		return
	}
	util.Success(ctx, feed)
}

// MarkAllRead godoc
// @Summary Mark every notification read
// @Tags notifications
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.NotificationFeed} "Updated feed"
// @Router /portal/notifications/read-all [post]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}

	feed, err := c.NotificationService.MarkAllRead(ctx.Request.Context(), session.ID, util.GetClientFromContext(ctx))
	if err != nil {
		util.UpstreamError(ctx, err, "Could not mark notifications read")
		return
	}
	util.Success(ctx, feed)
}
