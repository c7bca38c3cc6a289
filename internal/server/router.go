package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todo-tracker/backend/internal/handlers"
	"todo-tracker/backend/internal/middleware"
	"todo-tracker/backend/internal/monitoring"
	"todo-tracker/backend/internal/services"
)

type Dependencies struct {
	AuthService    services.AuthService
	TaskService    services.TaskService
	Limiter        *middleware.RateLimiter
	Metrics        *monitoring.Metrics
	Health         *monitoring.HealthChecker
	AllowedOrigins []string
	Log            logrus.FieldLogger
}

func NewRouter(deps Dependencies) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	if deps.Metrics == nil {
		deps.Metrics = monitoring.NewMetrics()
	}
	if deps.Health == nil {
		deps.Health = monitoring.NewHealthChecker(0)
	}

	r := gin.New()
	r.Use(middleware.RecoveryWithLog(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(deps.Metrics.Middleware())
	r.Use(cors.New(corsConfig(deps.AllowedOrigins)))
	r.Use(middleware.RateLimit(deps.Limiter))
	r.Use(middleware.ErrorReporter(log))

	authHandler := handlers.NewAuthHandler(deps.AuthService, log)
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/password", authHandler.ChangePassword)

	taskHandler := handlers.NewTaskHandler(deps.TaskService, log)
	todo := r.Group("/todo")
	{
		todo.POST("", taskHandler.CreateTask)
		todo.GET("", taskHandler.ListTasks)
		todo.DELETE("", taskHandler.DeleteTask)
		todo.PUT("", taskHandler.UpdateTask)
	}

	r.GET("/health", deps.Health.Handler())
	r.GET("/live", monitoring.LivenessHandler())
	r.GET("/metrics", deps.Metrics.Handler())

	return r
}

// corsConfig treats a "*" entry as allow-all. Credentials are only
// allowed for an explicit origin list.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}

	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
