package database

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"gorm.io/gorm/logger"

	"todo-tracker/backend/internal/models"
)

func memoryConfig() *PoolConfig {
	config := DefaultPoolConfig()
	config.Driver = DriverSQLite
	config.DSN = "file::memory:"
	config.LogLevel = logger.Silent
	return config
}

func TestDefaultPoolConfig(t *testing.T) {
	config := DefaultPoolConfig()

	if config.Driver != DriverPostgres {
		t.Errorf("Expected Driver to be postgres, got %s", config.Driver)
	}

	if config.MaxOpenConns != 25 {
		t.Errorf("Expected MaxOpenConns to be 25, got %d", config.MaxOpenConns)
	}

	if config.MaxIdleConns != 10 {
		t.Errorf("Expected MaxIdleConns to be 10, got %d", config.MaxIdleConns)
	}

	if config.ConnMaxLifetime != time.Hour {
		t.Errorf("Expected ConnMaxLifetime to be 1 hour, got %v", config.ConnMaxLifetime)
	}

	if config.ConnMaxIdleTime != time.Minute*30 {
		t.Errorf("Expected ConnMaxIdleTime to be 30 minutes, got %v", config.ConnMaxIdleTime)
	}

	if config.LogLevel != logger.Info {
		t.Errorf("Expected LogLevel to be Info, got %v", config.LogLevel)
	}
}

func TestNewDatabasePool_WithNilConfig(t *testing.T) {
	_, err := NewDatabasePool(nil, nil)

	if err == nil {
		t.Error("Expected error due to empty DSN, got nil")
	}
}

func TestPoolConfig_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PoolConfig)
	}{
		{name: "Empty DSN", mutate: func(c *PoolConfig) { c.DSN = "" }},
		{name: "Negative connections", mutate: func(c *PoolConfig) { c.MaxOpenConns = -1 }},
		{name: "Negative lifetime", mutate: func(c *PoolConfig) { c.ConnMaxLifetime = -time.Hour }},
		{name: "Unknown driver", mutate: func(c *PoolConfig) { c.Driver = "mysql" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := memoryConfig()
			tt.mutate(config)

			if _, err := NewDatabasePool(config, nil); err == nil {
				t.Error("Expected error but pool creation succeeded")
			}
		})
	}
}

func TestNewDatabasePool_SQLiteMemory(t *testing.T) {
	log, hook := test.NewNullLogger()

	pool, err := NewDatabasePool(memoryConfig(), log)
	if err != nil {
		t.Fatalf("Expected pool, got error: %v", err)
	}
	defer pool.Close()

	if err := pool.Health(context.Background()); err != nil {
		t.Errorf("Expected healthy pool, got: %v", err)
	}

	stats := pool.Stats()
	if stats["max_open_connections"] != 1 {
		t.Errorf("Expected in-memory pool capped at 1 connection, got %v", stats["max_open_connections"])
	}

	if hook.LastEntry() == nil || hook.LastEntry().Message != "database connected" {
		t.Error("Expected connection to be logged")
	}
}

func TestDatabasePool_Migrate(t *testing.T) {
	pool, err := NewDatabasePool(memoryConfig(), nil)
	if err != nil {
		t.Fatalf("Expected pool, got error: %v", err)
	}
	defer pool.Close()

	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	if !pool.DB.Migrator().HasTable(&models.User{}) {
		t.Error("Expected users table")
	}

	if !pool.DB.Migrator().HasTable(&models.Task{}) {
		t.Error("Expected tasks table")
	}

	// running twice is a no-op
	if err := pool.Migrate(context.Background()); err != nil {
		t.Errorf("Second migration failed: %v", err)
	}
}

func TestDatabasePool_HealthAfterClose(t *testing.T) {
	pool, err := NewDatabasePool(memoryConfig(), nil)
	if err != nil {
		t.Fatalf("Expected pool, got error: %v", err)
	}

	pool.Close()

	if err := pool.Health(context.Background()); err == nil {
		t.Error("Expected error after close")
	}
}

func TestConnectWithRetry_StopsOnCancel(t *testing.T) {
	log, hook := test.NewNullLogger()
	config := memoryConfig()
	config.Driver = "mysql"

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := ConnectWithRetry(ctx, config, log, 10*time.Millisecond)
	if err == nil {
		t.Fatal("Expected error once the context expired")
	}

	if len(hook.AllEntries()) < 2 {
		t.Errorf("Expected several failed attempts to be logged, got %d", len(hook.AllEntries()))
	}
}

func TestConnectWithRetry_Succeeds(t *testing.T) {
	pool, err := ConnectWithRetry(context.Background(), memoryConfig(), nil, time.Millisecond)
	if err != nil {
		t.Fatalf("Expected pool, got error: %v", err)
	}
	pool.Close()
}

func TestDatabasePool_Stats_WithoutConnection(t *testing.T) {
	pool := &DatabasePool{DB: nil}

	stats := pool.Stats()

	if _, hasError := stats["error"]; !hasError {
		t.Error("Expected error in stats when DB is nil")
	}
}

func TestDatabasePool_Health_WithoutConnection(t *testing.T) {
	pool := &DatabasePool{DB: nil}

	if err := pool.Health(context.Background()); err != ErrNoConnection {
		t.Errorf("Expected ErrNoConnection, got %v", err)
	}
}

func TestDatabasePool_Close_WithoutConnection(t *testing.T) {
	pool := &DatabasePool{DB: nil}

	if err := pool.Close(); err != nil {
		t.Errorf("Expected no error when closing nil DB, got: %v", err)
	}
}

func BenchmarkDefaultPoolConfig(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = DefaultPoolConfig()
	}
}
