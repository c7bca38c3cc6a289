package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"

	"todo-tracker/backend/internal/cache"
	"todo-tracker/backend/internal/config"
	"todo-tracker/backend/internal/database"
	"todo-tracker/backend/internal/logging"
	"todo-tracker/backend/internal/middleware"
	"todo-tracker/backend/internal/monitoring"
	"todo-tracker/backend/internal/repositories"
	"todo-tracker/backend/internal/server"
	"todo-tracker/backend/internal/services"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log := logging.New(cfg.AppName, cfg.Server.Environment, cfg.Log.Level)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		logging.LogError(log, "server stopped with error", err, nil)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	poolConfig := &database.PoolConfig{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.GetDatabaseDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		LogLevel:        logger.Warn,
		SlowThreshold:   database.DefaultPoolConfig().SlowThreshold,
	}

	pool, err := database.ConnectWithRetry(ctx, poolConfig, log, cfg.Database.ReconnectDelay)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Migrate(ctx); err != nil {
		return err
	}

	watcher := database.NewWatcher(pool, cfg.Database.HealthInterval, cfg.Database.ReconnectDelay, log)
	go watcher.Run(ctx)

	metrics := monitoring.NewMetrics()
	metrics.AddSource("database", pool.Stats)

	health := monitoring.NewHealthChecker(0)
	health.Register("database", true, pool.Health)
	health.Register("database_watcher", false, watcher.Check)

	tokens := services.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := services.NewAuthService(repositories.NewUserRepository(pool.DB), tokens, cfg.Auth.BCryptCost, log)

	var taskService services.TaskService = services.NewTaskService(repositories.NewTaskRepository(pool.DB))
	if cfg.Redis.Enabled {
		redisCache := newRedisCache(cfg, log)
		defer redisCache.Close()

		if err := redisCache.Health(ctx); err != nil {
			log.WithError(err).Warn("redis unreachable, serving task lists without cache")
		} else {
			taskService = services.NewCachedTaskService(taskService, redisCache, cfg.Redis.TaskListTTL, log)
			metrics.AddSource("cache", redisCache.Stats)
			health.Register("cache", false, redisCache.Health)
		}
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstSize, cfg.RateLimit.CleanupInterval)
		go limiter.Cleanup(ctx, cfg.RateLimit.CleanupInterval)
	}

	router := server.NewRouter(server.Dependencies{
		AuthService:    authService,
		TaskService:    taskService,
		Limiter:        limiter,
		Metrics:        metrics,
		Health:         health,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Log:            log,
	})

	return server.New(cfg.Server, router, log).Run(ctx)
}

func newRedisCache(cfg *config.Config, log logrus.FieldLogger) *cache.RedisCache {
	cacheConfig := cache.DefaultCacheConfig()
	cacheConfig.Addr = cfg.GetRedisAddr()
	cacheConfig.Password = cfg.Redis.Password
	cacheConfig.DB = cfg.Redis.DB
	cacheConfig.PoolSize = cfg.Redis.PoolSize
	cacheConfig.MinIdleConns = cfg.Redis.MinIdleConns
	cacheConfig.MaxRetries = cfg.Redis.MaxRetries
	cacheConfig.DialTimeout = cfg.Redis.DialTimeout
	cacheConfig.ReadTimeout = cfg.Redis.ReadTimeout
	cacheConfig.WriteTimeout = cfg.Redis.WriteTimeout
	return cache.NewRedisCache(cacheConfig, log)
}
