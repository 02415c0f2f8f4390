package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobboard_chat/internal/config"
	"jobboard_chat/internal/domain"
	"jobboard_chat/internal/handler"
	"jobboard_chat/internal/middleware"
	"jobboard_chat/internal/realtime"
	"jobboard_chat/internal/repository"
	"jobboard_chat/internal/service"
	"jobboard_chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	appLogger := logger.New(cfg.Log.Level)

	// Подключение к PostgreSQL
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.DSN)
	if err != nil {
		appLogger.Fatal("Failed to parse database DSN", "error", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConnections)
	poolConfig.MaxConnIdleTime = cfg.Database.MaxIdleTime
	poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	dbPool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		appLogger.Fatal("Failed to ping database", "error", err)
	}
	appLogger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(context.Background(), dbPool, appLogger); err != nil {
			appLogger.Fatal("Failed to apply migrations", "error", err)
		}
	}

	// Подключение к Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", "error", err)
	}
	appLogger.Info("Redis connection established")

	// Шина уведомлений для живых подписок
	var notifier realtime.Notifier
	switch cfg.Chat.RealtimeBackend {
	case config.RealtimeBackendLocal:
		notifier = realtime.NewLocalNotifier()
		appLogger.Warn("Using in-process change feed, live updates are not shared between instances")
	default:
		notifier = realtime.NewRedisNotifier(rdb, appLogger)
	}
	defer notifier.Close()

	repos := repository.NewRepositories(dbPool, rdb, appLogger)
	profiles := service.NewProfileClient(cfg.Profile.BaseURL, cfg.Profile.Token, cfg.Profile.Timeout)

	services, err := service.NewServices(repos, notifier, profiles, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize services", "error", err)
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, cfg.JWT.Issuer, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, appLogger)

	checks := map[string]handler.HealthCheck{
		"postgres": dbPool.Ping,
		"redis": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	}
	handlers := handler.NewHandlers(services, checks, cfg, appLogger)

	router := setupRouter(handlers, authMiddleware, rateLimitMiddleware, cfg, appLogger)

	// WriteTimeout не ставится: он оборвал бы долгие WebSocket соединения
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		appLogger.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Ожидание сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}

	// Дожидаемся фоновых запросов имен, чтобы не писать в закрытый пул
	services.Names.Wait()

	appLogger.Info("Server exited")
}

func setupRouter(
	handlers *handler.Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
	log logger.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.Health.Check)
	router.GET("/ready", handlers.Health.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware.RequireAuth())
	{
		conversations := v1.Group("/conversations")
		{
			conversations.POST("", handlers.Conversation.Open)
			conversations.GET("/:key", handlers.Conversation.Get)
			conversations.GET("/:key/messages", handlers.Conversation.GetMessages)
			conversations.POST("/:key/messages",
				rateLimitMiddleware.Limit(domain.SendRateLimit(cfg.Chat.SendLimitPerMin)),
				handlers.Conversation.SendMessage,
			)
			conversations.POST("/:key/read", handlers.Conversation.MarkRead)
		}

		employers := v1.Group("/employers/:id")
		{
			employers.GET("/conversations", handlers.Conversation.ListByEmployer)
			employers.GET("/unread-count", handlers.Stats.GetUnreadCount)
		}

		v1.POST("/events/refresh", handlers.Events.Refresh)
	}

	// Живые подписки
	ws := router.Group("/ws")
	ws.Use(authMiddleware.RequireAuth())
	{
		ws.GET("/conversations/:key", handlers.Stream.Conversation)
		ws.GET("/employers/:id/conversations", handlers.Stream.Conversations)
	}

	return router
}
