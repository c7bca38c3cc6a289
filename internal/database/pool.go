package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"todo-tracker/backend/internal/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var ErrNoConnection = errors.New("database connection not initialized")

type PoolConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	LogLevel        logger.LogLevel
	SlowThreshold   time.Duration
}

type DatabasePool struct {
	DB     *gorm.DB
	config *PoolConfig
	log    logrus.FieldLogger
}

func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		Driver:          DriverPostgres,
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute * 30,
		LogLevel:        logger.Info,
		SlowThreshold:   200 * time.Millisecond,
	}
}

func (c *PoolConfig) validate() error {
	if c.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}
	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 {
		return fmt.Errorf("connection limits must not be negative")
	}
	if c.ConnMaxLifetime < 0 || c.ConnMaxIdleTime < 0 {
		return fmt.Errorf("connection lifetimes must not be negative")
	}
	switch c.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Driver)
	}
	return nil
}

func (c *PoolConfig) dialector() gorm.Dialector {
	if c.Driver == DriverSQLite {
		return sqlite.Open(c.DSN)
	}
	return postgres.Open(c.DSN)
}

// NewDatabasePool opens the pool and verifies it with a ping.
func NewDatabasePool(config *PoolConfig, log logrus.FieldLogger) (*DatabasePool, error) {
	if config == nil {
		config = DefaultPoolConfig()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	db, err := gorm.Open(config.dialector(), &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             config.SlowThreshold,
			LogLevel:                  config.LogLevel,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	maxOpen := config.MaxOpenConns
	// each connection to a private in-memory sqlite database sees its own empty schema
	if config.Driver == DriverSQLite && isMemoryDSN(config.DSN) {
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.WithFields(logrus.Fields{
		"driver":         config.Driver,
		"max_open_conns": maxOpen,
		"max_idle_conns": config.MaxIdleConns,
	}).Info("database connected")

	return &DatabasePool{DB: db, config: config, log: log}, nil
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// ConnectWithRetry keeps calling NewDatabasePool every delay until it
// succeeds or ctx is done.
func ConnectWithRetry(ctx context.Context, config *PoolConfig, log logrus.FieldLogger, delay time.Duration) (*DatabasePool, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	for {
		pool, err := NewDatabasePool(config, log)
		if err == nil {
			return pool, nil
		}
		log.WithError(err).WithField("retry_in", delay.String()).Error("database connection failed")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// Migrate creates or updates the users and tasks tables.
func (p *DatabasePool) Migrate(ctx context.Context) error {
	if p.DB == nil {
		return ErrNoConnection
	}
	if err := p.DB.WithContext(ctx).AutoMigrate(&models.User{}, &models.Task{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (p *DatabasePool) Health(ctx context.Context) error {
	if p.DB == nil {
		return ErrNoConnection
	}

	sqlDB, err := p.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	return sqlDB.PingContext(ctx)
}

func (p *DatabasePool) Stats() map[string]interface{} {
	if p.DB == nil {
		return map[string]interface{}{"error": ErrNoConnection.Error()}
	}

	sqlDB, err := p.DB.DB()
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}

	stats := sqlDB.Stats()
	return map[string]interface{}{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}
}

func (p *DatabasePool) Close() error {
	if p.DB == nil {
		return nil
	}

	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
