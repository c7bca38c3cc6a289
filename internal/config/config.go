package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultJWTSecret is a development placeholder and is rejected in production.
const DefaultJWTSecret = "secret"

type Config struct {
	AppName   string          `json:"app_name"`
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Auth      AuthConfig      `json:"auth"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	CORS      CORSConfig      `json:"cors"`
	Log       LogConfig       `json:"log"`
}

type ServerConfig struct {
	Host            string        `json:"host"`
	Port            string        `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	Environment     string        `json:"environment"`
}

type DatabaseConfig struct {
	Driver          string        `json:"driver"`
	Host            string        `json:"host"`
	Port            string        `json:"port"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	Name            string        `json:"name"`
	SSLMode         string        `json:"ssl_mode"`
	SQLitePath      string        `json:"sqlite_path"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	HealthInterval  time.Duration `json:"health_interval"`
	ReconnectDelay  time.Duration `json:"reconnect_delay"`
}

type RedisConfig struct {
	Enabled      bool          `json:"enabled"`
	Host         string        `json:"host"`
	Port         string        `json:"port"`
	Password     string        `json:"password"`
	DB           int           `json:"db"`
	PoolSize     int           `json:"pool_size"`
	MinIdleConns int           `json:"min_idle_conns"`
	MaxRetries   int           `json:"max_retries"`
	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	TaskListTTL  time.Duration `json:"task_list_ttl"`
}

type AuthConfig struct {
	JWTSecret  string        `json:"jwt_secret"`
	TokenTTL   time.Duration `json:"token_ttl"`
	BCryptCost int           `json:"bcrypt_cost"`
}

type RateLimitConfig struct {
	Enabled         bool          `json:"enabled"`
	RequestsPerMin  int           `json:"requests_per_minute"`
	BurstSize       int           `json:"burst_size"`
	CleanupInterval time.Duration `json:"cleanup_interval"`
}

type CORSConfig struct {
	AllowedOrigins []string `json:"allowed_origins"`
}

type LogConfig struct {
	Level string `json:"level"`
}

func LoadConfig() (*Config, error) {
	config := &Config{
		AppName: getEnv("APP_NAME", "todo-tracker"),
		Server: ServerConfig{
			Host:            getEnv("HOST", "0.0.0.0"),
			Port:            getEnv("PORT", "3000"),
			ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			Environment:     getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "todo_tracker"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			SQLitePath:      getEnv("DB_SQLITE_PATH", "todo.db"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
			HealthInterval:  getEnvAsDuration("DB_HEALTH_INTERVAL", 30*time.Second),
			ReconnectDelay:  getEnvAsDuration("DB_RECONNECT_DELAY", 5*time.Second),
		},
		Redis: RedisConfig{
			Enabled:      getEnvAsBool("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
			MaxRetries:   getEnvAsInt("REDIS_MAX_RETRIES", 3),
			DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			TaskListTTL:  getEnvAsDuration("REDIS_TASK_LIST_TTL", 15*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", DefaultJWTSecret),
			TokenTTL:   getEnvAsDuration("TOKEN_TTL", time.Hour),
			BCryptCost: getEnvAsInt("BCRYPT_COST", 10),
		},
		RateLimit: RateLimitConfig{
			Enabled:         getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMin:  getEnvAsInt("RATE_LIMIT_RPM", 100),
			BurstSize:       getEnvAsInt("RATE_LIMIT_BURST", 10),
			CleanupInterval: getEnvAsDuration("RATE_LIMIT_CLEANUP", 10*time.Minute),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", ""),
		},
	}

	switch config.Database.Driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.Database.Driver == "postgres" && config.Database.Password == "" && config.IsProduction() {
		return nil, fmt.Errorf("database password is required in production")
	}

	if config.Auth.JWTSecret == DefaultJWTSecret && config.IsProduction() {
		return nil, fmt.Errorf("JWT secret must be set in production")
	}

	return config, nil
}

// GetDatabaseDSN returns the DSN for the configured driver.
func (c *Config) GetDatabaseDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.SQLitePath
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	if len(res) == 0 {
		return defaultValue
	}
	return res
}
