package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"

	"todo-tracker/backend/internal/database"
	"todo-tracker/backend/internal/logging"
)

var dbSeq atomic.Int64

func MakeNoopLogger() *logrus.Logger {
	return logging.Discard()
}

// NewTestPool opens a migrated in-memory sqlite database private to the test.
func NewTestPool(t testing.TB) *database.DatabasePool {
	t.Helper()

	config := database.DefaultPoolConfig()
	config.Driver = database.DriverSQLite
	config.DSN = fmt.Sprintf("file:test%d?mode=memory&cache=shared&_fk=1", dbSeq.Add(1))
	config.LogLevel = logger.Silent

	pool, err := database.NewDatabasePool(config, MakeNoopLogger())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return pool
}
