package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"training_portal/internal/apiclient"
	"training_portal/internal/config"
	"training_portal/internal/controller"
	"training_portal/internal/repository"
	"training_portal/internal/service"
	"training_portal/pkg/configwatcher"
	"training_portal/pkg/database"
	"training_portal/pkg/logger"
	"training_portal/pkg/monitoring"
	"training_portal/pkg/security"
	"training_portal/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config    *config.Config
	ConfigDir string
	Router    *gin.Engine
	DB        *gorm.DB
	Redis     *redis.Client
	API       *apiclient.Client
	Sessions  repository.SessionStore

	services        *services
	ctx             context.Context
	cancel          context.CancelFunc
	shutdownTracer  func(context.Context) error
	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	dashboard    *service.DashboardService
	project      *service.ProjectService
	stepViews    *service.StepViewService
	submission   *service.SubmissionService
	notification *service.NotificationService
	resource     *service.ResourceService
	mentor       *service.MentorService
	admin        *service.AdminService
	liveHub      *service.LiveHub
}

type controllers struct {
	auth         *controller.AuthController
	dashboard    *controller.DashboardController
	project      *controller.ProjectController
	submission   *controller.SubmissionController
	notification *controller.NotificationController
	resource     *controller.ResourceController
	mentor       *controller.MentorController
	admin        *controller.AdminController
	live         *controller.LiveController
	health       *controller.HealthController
}

// RegisterConfigCallback adds a function run with every reloaded config.
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
	logger.Log.Info("Configuration reloaded")
}

func (a *App) initSessionStore(cfg *config.Config) repository.SessionStore {
	switch cfg.Session.Store {
	case "redis":
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		a.Redis = rdb
		return repository.NewRedisSessionStore(rdb)
	case "database":
		db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == "debug")
		if err != nil {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		}
		a.DB = db
		return repository.NewDBSessionStore(db)
	default:
		return repository.NewMemorySessionStore()
	}
}

func (a *App) initServices(cfg *config.Config) *services {
	hub := service.NewLiveHub(cfg.Polling)
	hub.SetAllowedOrigins(cfg.CORS.AllowedOrigins)
	stepViews := service.NewStepViewService(hub, cfg.Polling.ViewIdle)
	storage := service.NewStorageService(cfg)

	return &services{
		auth:         service.NewAuthService(a.API, a.Sessions, stepViews, cfg),
		storage:      storage,
		dashboard:    service.NewDashboardService(),
		project:      service.NewProjectService(),
		stepViews:    stepViews,
		submission:   service.NewSubmissionService(cfg),
		notification: service.NewNotificationService(hub),
		resource:     service.NewResourceService(),
		mentor:       service.NewMentorService(storage),
		admin:        service.NewAdminService(),
		liveHub:      hub,
	}
}

func (a *App) initControllers(s *services, cfg *config.Config) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth, cfg.Session),
		dashboard:    controller.NewDashboardController(s.dashboard),
		project:      controller.NewProjectController(s.project, s.stepViews),
		submission:   controller.NewSubmissionController(s.submission),
		notification: controller.NewNotificationController(s.notification),
		resource:     controller.NewResourceController(s.resource),
		mentor:       controller.NewMentorController(s.mentor),
		admin:        controller.NewAdminController(s.admin),
		live:         controller.NewLiveController(s.liveHub),
		health:       controller.NewHealthController(a.API, a.Sessions),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(a.ctx, cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	go s.stepViews.Run(a.ctx)

	if store, ok := a.Sessions.(*repository.DBSessionStore); ok {
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-a.ctx.Done():
					return
				case <-ticker.C:
					n, err := store.PurgeExpired(a.ctx)
					if err != nil {
						logger.Log.Error("Session purge failed", zap.Error(err))
						continue
					}
					if n > 0 {
						logger.Log.Info("Purged expired sessions", zap.Int64("count", n))
					}
				}
			}
		}()
	}

	if a.ConfigDir != "" {
		go func() {
			if err := configwatcher.WatchConfig(a.ctx, a.ConfigDir, a.applyConfig); err != nil {
				logger.Log.Warn("Config watcher not started", zap.Error(err))
			}
		}()
	}
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		API:       apiclient.New(cfg.API),
		ctx:       ctx,
		cancel:    cancel,
	}
	app.Sessions = app.initSessionStore(cfg)

	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("training-portal", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.shutdownTracer = tp.Shutdown
	}

	services := app.initServices(cfg)
	app.services = services
	controllers := app.initControllers(services, cfg)

	app.RegisterConfigCallback(func(c *config.Config) {
		logger.SetLevel(c)
		services.liveHub.SetIntervals(c.Polling.Leaderboard, c.Polling.Notifications)
		services.liveHub.SetAllowedOrigins(c.CORS.AllowedOrigins)
	})

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/archive", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	logger.Log.Info("Training portal ready",
		zap.String("api", cfg.API.BaseURL),
		zap.String("sessionStore", cfg.Session.Store),
		zap.String("storage", cfg.Storage.Type),
	)
	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// close live views before the listener
	if a.services != nil && a.services.liveHub != nil {
		a.services.liveHub.Shutdown()
	}
	a.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	log.Println("Server exiting")
}
