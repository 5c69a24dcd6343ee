package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfantasy/nimo-mes/internal/config"
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/handler"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/bitfantasy/nimo-mes/internal/mes/sse"
	"github.com/bitfantasy/nimo-mes/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting nimo-mes service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// AutoMigrate MES tables
	if err := entity.AutoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to auto-migrate MES tables", zap.Error(err))
	}
	zapLogger.Info("MES database migration completed")

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 初始化依赖
	hub := sse.NewHub(zapLogger)
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, hub, zapLogger, cfg)
	handlers := handler.NewHandlers(services, hub)

	// 按配置开启周期自动刷新
	if cfg.Refresh.AutoEnabled {
		services.Dashboard.StartAutoRefresh(cfg.Refresh.AutoInterval)
		zapLogger.Info("Dashboard auto refresh enabled",
			zap.Duration("interval", cfg.Refresh.AutoInterval),
		)
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	// 注册路由
	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")
	services.Dashboard.StopAutoRefresh()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "nimo-mes"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "nimo-mes"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":    "nimo-mes",
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// MES API v1
	v1 := r.Group("/api/v1/mes")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		// 制造订单
		orders := v1.Group("/orders")
		{
			orders.GET("", h.Order.List)
			orders.POST("", h.Order.Create)
			orders.GET("/:id", h.Order.Get)
			orders.GET("/:id/availability", h.Order.Availability)
			orders.POST("/:id/confirm", h.Order.Confirm)
			orders.POST("/:id/start", h.Order.Start)
			orders.POST("/:id/close", h.Order.Close)
			orders.POST("/:id/complete", h.Order.Complete)
			orders.POST("/:id/cancel", h.Order.Cancel)

			// 订单物料
			orders.POST("/:id/components", h.Order.AddComponent)
			orders.PUT("/:id/components/:componentId", h.Order.UpdateComponent)

			// 订单下的工单
			orders.GET("/:id/work-orders", h.WorkOrder.Queue)
			orders.POST("/:id/work-orders", h.WorkOrder.Create)
		}

		// 工单
		workOrders := v1.Group("/work-orders")
		{
			workOrders.GET("", h.WorkOrder.List)
			workOrders.GET("/:id", h.WorkOrder.Get)
			workOrders.GET("/:id/elapsed", h.WorkOrder.Elapsed)
			workOrders.POST("/:id/confirm", h.WorkOrder.Confirm)
			workOrders.POST("/:id/start", h.WorkOrder.Start)
			workOrders.POST("/:id/close", h.WorkOrder.Close)
			workOrders.POST("/:id/complete", h.WorkOrder.Complete)
			workOrders.POST("/:id/cancel", h.WorkOrder.Cancel)
			workOrders.POST("/:id/timer/pause", h.WorkOrder.PauseTimer)
			workOrders.POST("/:id/timer/resume", h.WorkOrder.ResumeTimer)
		}

		// 工作中心
		workCenters := v1.Group("/work-centers")
		{
			workCenters.GET("", h.WorkCenter.List)
			workCenters.POST("", h.WorkCenter.Create)
			workCenters.GET("/:id", h.WorkCenter.Get)
		}

		// 看板
		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/snapshot", h.Dashboard.Snapshot)
			dashboard.POST("/refresh", h.Dashboard.Refresh)
			dashboard.POST("/auto-refresh/start", h.Dashboard.StartAutoRefresh)
			dashboard.POST("/auto-refresh/stop", h.Dashboard.StopAutoRefresh)
			dashboard.GET("/events", h.Dashboard.Stream)
		}
	}
}
