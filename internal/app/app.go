package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"puspa_backend/internal/backend"
	"puspa_backend/internal/config"
	"puspa_backend/internal/controller"
	"puspa_backend/internal/repository"
	"puspa_backend/internal/service"
	"puspa_backend/pkg/configwatcher"
	"puspa_backend/pkg/database"
	"puspa_backend/pkg/logger"
	"puspa_backend/pkg/monitoring"
	"puspa_backend/pkg/security"
	"puspa_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
	shutdownTracer  func(context.Context) error
}

type repositories struct {
	assessment *repository.AssessmentRepository
}

type services struct {
	ranges  *service.RangeStore
	session *service.SessionService
	history *service.HistoryService
	schema  *service.SchemaService
}

type controllers struct {
	session *controller.SessionController
	history *controller.HistoryController
	schema  *controller.SchemaController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	if db == nil {
		return &repositories{}
	}
	return &repositories{
		assessment: repository.NewAssessmentRepository(db),
	}
}

// initBackend 远端或本地后端，启用 Redis 时外面再包一层题库缓存
func (a *App) initBackend(repos *repositories, cfg *config.Config, rdb *redis.Client) (backend.Backend, service.SchemaInvalidator, error) {
	var b backend.Backend
	switch cfg.Backend.Mode {
	case config.BackendRemote:
		b = backend.NewRemoteBackend(cfg.Backend.BaseURL, cfg.Backend.Timeout())
	case config.BackendLocal:
		if repos.assessment == nil {
			return nil, nil, fmt.Errorf("backend mode %s requires a database", config.BackendLocal)
		}
		b = backend.NewLocalBackend(repos.assessment)
	default:
		return nil, nil, fmt.Errorf("unknown backend mode %q", cfg.Backend.Mode)
	}

	if rdb == nil {
		return b, nil, nil
	}
	cached := backend.NewCachedBackend(b, rdb, cfg.Schema.CacheTTL())
	return cached, cached, nil
}

func (a *App) initServices(b backend.Backend, cache service.SchemaInvalidator, cfg *config.Config) (*services, error) {
	s := &services{}

	s.ranges = service.NewRangeStore(cfg.History)
	session, err := service.NewSessionService(b, s.ranges, cfg.Session)
	if err != nil {
		return nil, err
	}
	s.session = session
	s.history = service.NewHistoryService(b, s.ranges)
	s.schema = service.NewSchemaService(cache)

	// 区间表随配置热更新
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.ranges.Update(newCfg.History)
	})

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		session: controller.NewSessionController(s.session),
		history: controller.NewHistoryController(s.history),
		schema:  controller.NewSchemaController(s.schema),
		health:  controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit, "/api/health", "/metrics"))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// Build 在已初始化的基础设施上装配服务与路由，db 与 rdb 均可为空
func Build(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	b, cache, err := app.initBackend(repos, cfg, rdb)
	if err != nil {
		return nil, err
	}
	services, err := app.initServices(b, cache, cfg)
	if err != nil {
		return nil, err
	}
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	return app, nil
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	var db *gorm.DB
	if cfg.Backend.Mode == config.BackendLocal {
		var err error
		db, err = database.InitDB(&cfg.Database, cfg.Server.Mode)
		if err != nil {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		var err error
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			// 缓存不是必需的
			logger.Log.Warn("Redis unavailable, schema cache disabled", zap.Error(err))
			rdb = nil
		}
	}

	app, err := Build(cfg, db, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to build application", zap.Error(err))
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("puspa-assessment", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.shutdownTracer = tp.Shutdown
	}

	return app
}

func (a *App) reloadConfig(newCfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(newCfg)
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if a.Config.Path != "" {
		go func() {
			if err := configwatcher.WatchConfig(watchCtx, a.Config.Path, a.reloadConfig); err != nil {
				logger.Log.Warn("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stopWatch()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := a.services.session.Shutdown(ctx); err != nil {
		logger.Log.Warn("Session shutdown incomplete", zap.Error(err))
	}
	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
	logger.Log.Sync()
}
