package controller

import (
	"training_portal/internal/service"
	"training_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type LiveController struct {
	Hub *service.LiveHub
}

func NewLiveController(hub *service.LiveHub) *LiveController {
	return &LiveController{Hub: hub}
}

// HandleWS godoc
// @Summary Live view connection
// @Description Pushes leaderboard snapshots for every role and notification feeds for students while the socket is open. Send {"type":"refresh","data":"leaderboard"} for an immediate update
// @Tags live
// @Security ApiKeyAuth
// @Success 101 {string} string "Switching Protocols"
// @Router /portal/live [get]
func (c *LiveController) HandleWS(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}
	c.Hub.ServeWS(ctx.Writer, ctx.Request, session, util.GetClientFromContext(ctx))
}
