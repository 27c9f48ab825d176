package app

import (
	"training_portal/docs"
	"training_portal/internal/config"
	"training_portal/internal/middleware"
	"training_portal/internal/model"
	"training_portal/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Training Portal API
// @version 1.0
// @description View models over the training API: dashboards, guided project steps, submissions and live leaderboards.

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/api/health", c.health.HealthCheck)

	// public
	public := router.Group("/portal")
	{
		public.POST("/login", c.auth.Login)
		public.POST("/register", c.auth.Register)
	}

	// session required
	portal := router.Group("/portal")
	portal.Use(middleware.SessionMiddleware(a.Sessions, a.API, cfg.Session))
	{
		a.registerStudentRoutes(portal, c)

		mentor := portal.Group("")
		mentor.Use(middleware.RoleMiddleware(model.Mentor))
		a.registerMentorRoutes(mentor, c)

		admin := portal.Group("/admin")
		admin.Use(middleware.RoleMiddleware(model.Manager))
		a.registerAdminRoutes(admin, c)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/logout", c.auth.Logout)
	rg.GET("/me", c.auth.Me)
	rg.GET("/dashboard", c.dashboard.GetDashboard)
	rg.GET("/live", c.live.HandleWS)

	// projects and steps
	rg.GET("/projects", c.project.ListProjects)
	rg.GET("/projects/:id", c.project.GetProject)
	rg.POST("/projects/:id/run", c.project.RunProject)
	rg.POST("/projects/:id/steps", c.project.OpenSteps)
	rg.GET("/projects/:id/steps", c.project.GetSteps)
	rg.POST("/projects/:id/steps/actions", c.project.StepAction)
	rg.DELETE("/projects/:id/steps", c.project.CloseSteps)

	// submissions
	rg.POST("/projects/:id/submissions", c.submission.SubmitProject)
	rg.GET("/projects/:id/submissions", c.submission.ListProjectSubmissions)
	rg.POST("/final-project/submissions", c.submission.SubmitFinalProject)
	rg.GET("/final-project/submissions", c.submission.ListFinalProjectSubmissions)
	rg.GET("/submissions", c.submission.ListMySubmissions)

	// notifications
	rg.GET("/notifications", c.notification.GetNotifications)
	rg.POST("/notifications/:id/read", c.notification.MarkRead)
	rg.POST("/notifications/read-all", c.notification.MarkAllRead)

	rg.GET("/resources", c.resource.GetResources)
	rg.GET("/resources/:id", c.resource.GetResource)
}

func (a *App) registerMentorRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/resources", c.resource.CreateResource)
	rg.GET("/students", c.mentor.GetStudents)
	rg.GET("/students/:id/progress", c.mentor.GetStudentProgress)
	rg.GET("/reports/overview", c.mentor.GetOverview)
	rg.POST("/progress/:id/feedback", c.mentor.AddFeedback)

	submissions := rg.Group("/mentor/submissions")
	{
		submissions.GET("", c.mentor.ListSubmissions)
		submissions.GET("/:id/content", c.mentor.GetContent)
		submissions.GET("/:id/download", c.mentor.Download)
		submissions.POST("/:id/review", c.mentor.Review)
		submissions.POST("/:id/archive", c.mentor.Archive)
	}
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/projects", c.admin.CreateProject)
	rg.POST("/students/:id/reset-password", c.admin.ResetPassword)
}
