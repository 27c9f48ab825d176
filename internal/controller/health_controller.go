package controller

import (
	"net/http"

	"training_portal/internal/apiclient"
	"training_portal/internal/repository"
	"training_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	API      *apiclient.Client
	Sessions repository.SessionStore
}

func NewHealthController(api *apiclient.Client, sessions repository.SessionStore) *HealthController {
	return &HealthController{API: api, Sessions: sessions}
}

// @Summary Health check
// @Description Checks the training API and the session store
// @Tags system
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	components := gin.H{"training_api": "up", "sessions": "up"}
	healthy := true

	if err := c.API.Health(ctx.Request.Context()); err != nil {
		components["training_api"] = "down"
		healthy = false
	}
	if err := c.Sessions.Ping(ctx.Request.Context()); err != nil {
		components["sessions"] = "down"
		healthy = false
	}

	if !healthy {
		ctx.JSON(http.StatusServiceUnavailable, util.Response{
			Code:    http.StatusServiceUnavailable,
			Message: "Service degraded",
			Data:    gin.H{"status": "degraded", "components": components},
		})
		return
	}

	util.Success(ctx, gin.H{
		"status":     "ok",
		"components": components,
	})
}
