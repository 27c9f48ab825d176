package util

import (
	"net/http"

	"training_portal/internal/apiclient"
	"training_portal/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope every portal endpoint answers with.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err), zap.String("path", c.FullPath()))
	InternalServerError(c)
}

// UpstreamError answers with the training API's own failure. Client errors
// keep their status; everything else becomes 502.
func UpstreamError(c *gin.Context, err error, fallback string) {
	status := apiclient.StatusOf(err)
	switch {
	case apiclient.IsNetwork(err):
		logger.Log.Warn("Training API unreachable", zap.Error(err), zap.String("path", c.FullPath()))
		Error(c, http.StatusBadGateway, "Training API is unreachable")
		return
	case status >= 400 && status < 500:
	default:
		logger.Log.Warn("Training API call failed", zap.Error(err), zap.String("path", c.FullPath()))
		status = http.StatusBadGateway
	}
	Error(c, status, apiclient.MessageOf(err, fallback))
}
