package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"giftwise-backend/internal/common/config"
	"giftwise-backend/internal/common/logger"
	"giftwise-backend/internal/common/middleware"
	gifthttp "giftwise-backend/internal/features/gift/delivery/http"
	giftrepo "giftwise-backend/internal/features/gift/repository/keyval"
	giftservice "giftwise-backend/internal/features/gift/service"
	listhttp "giftwise-backend/internal/features/list/delivery/http"
	listrepo "giftwise-backend/internal/features/list/repository/keyval"
	listservice "giftwise-backend/internal/features/list/service"
	"giftwise-backend/internal/platform/keyval"
	"giftwise-backend/internal/platform/redis"
	"giftwise-backend/internal/platform/telegram"
)

func main() {
	cfg := config.Load()
	logger.Init("giftwise-backend", cfg.Debug)

	ctx := context.Background()

	var store keyval.Store
	var redisClient *redis.Client
	switch cfg.Store.Backend {
	case "memory":
		logger.Warn().Msg("Using in-memory store; data will not survive a restart")
		store = keyval.NewMemoryStore()
	default:
		var err error
		redisClient, err = redis.Open(ctx, redis.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		store = keyval.NewRedisStore(redisClient.Client)
		logger.Info().Str("host", cfg.Redis.Host).Msg("Redis connection established")
	}

	listRepository := listrepo.NewListRepository(store)
	giftRepository := giftrepo.NewGiftRepository(store)

	var notifier giftservice.ClaimNotifier
	if cfg.Telegram.NotificationsEnabled {
		notifier = telegram.NewNotifier(cfg.Telegram.BotToken)
	}

	listSvc := listservice.NewListService(listRepository, cfg.PublicBaseURL)
	giftSvc := giftservice.NewGiftService(giftRepository, listRepository, notifier)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept", "init_data", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	listHandler := listhttp.NewListHandler(listSvc)
	giftHandler := gifthttp.NewGiftHandler(giftSvc)

	v1 := router.Group("/api/v1")
	giftHandler.RegisterPublicRoutes(v1)

	authed := v1.Group("", middleware.TelegramAuth(
		cfg.Telegram.BotToken,
		time.Duration(cfg.Telegram.InitDataTTLSec)*time.Second,
	))
	listHandler.RegisterRoutes(authed)
	giftHandler.RegisterRoutes(authed)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "giftwise-backend",
		})
	})
	router.GET("/ready", func(c *gin.Context) {
		if redisClient != nil {
			if err := redisClient.Healthy(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "unready",
					"error":  "redis unavailable",
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}
