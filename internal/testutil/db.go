// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/Skotchmaster/shopcore/internal/db"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitTestDB opens a private in-memory sqlite database with every table migrated.
func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	// one connection keeps the in-memory database alive and shared
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}
