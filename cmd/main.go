package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fluxgen-backend/internal/config"
	"fluxgen-backend/internal/handler"
	"fluxgen-backend/internal/provider"
	"fluxgen-backend/internal/service"
	"fluxgen-backend/internal/storage"
	"fluxgen-backend/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// 初始化 provider 和服务
	imageProvider, err := buildProvider(cfg)
	if err != nil {
		logger.Fatalf("初始化 provider 失败: %v", err)
	}

	sessionStorage := storage.NewMemoryStorage(cfg.Session.TTL, cfg.Session.CleanupInterval)
	if err := sessionStorage.Init(); err != nil {
		logger.Fatalf("初始化存储失败: %v", err)
	}

	generateService := service.NewGenerateService(imageProvider)
	sessionService := service.NewSessionService(sessionStorage, generateService, cfg.Session.NoticeTTL)

	// 初始化处理器
	sessionHandler := handler.NewSessionHandler(sessionService)

	// 创建路由
	router := setupRouter(cfg, sessionHandler)

	// 创建HTTP服务器
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// 启动服务器
	go func() {
		logger.Infof("服务器启动在端口 %d, provider: %s", cfg.Server.Port, cfg.Provider.Type)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待信号优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("服务器正在关闭...")
	if err := server.Close(); err != nil {
		logger.Errorf("服务器关闭失败: %v", err)
	}
	if err := sessionStorage.Close(); err != nil {
		logger.Errorf("存储关闭失败: %v", err)
	}
	logger.Info("服务器已关闭")
}

func buildProvider(cfg *config.Config) (provider.ImageProvider, error) {
	switch cfg.Provider.Type {
	case "flux":
		return provider.NewFluxClient(cfg.Flux), nil
	case "openai":
		return provider.NewOpenAIProvider(cfg.OpenAI), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Provider.Type)
	}
}

func setupRouter(cfg *config.Config, sessionHandler *handler.SessionHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS配置
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	// 单页表单
	router.GET("/", handler.Index)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	// API路由
	api := router.Group("/api")
	{
		session := api.Group("/session")
		{
			session.POST("", sessionHandler.CreateSession)
			session.GET("/:session_id", sessionHandler.GetSession)
			session.DELETE("/:session_id", sessionHandler.DeleteSession)
			session.POST("/:session_id/focus-prompt", sessionHandler.FocusPrompt)
			session.PUT("/:session_id/key", sessionHandler.ConfirmKey)
			session.DELETE("/:session_id/key", sessionHandler.RemoveKey)
			session.PUT("/:session_id/field", sessionHandler.UpdateField)
			session.POST("/:session_id/generate", sessionHandler.Generate)
		}
	}

	return router
}
