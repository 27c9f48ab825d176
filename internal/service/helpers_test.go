package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"training_portal/internal/apiclient"

	"github.com/gin-gonic/gin"
)

func newFakeAPI(t *testing.T, register func(r *gin.Engine)) *apiclient.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return apiclient.NewWithHTTPClient(srv.URL, &http.Client{Timeout: 2 * time.Second}).WithToken("tok")
}
