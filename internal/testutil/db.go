// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"ice-breakun/backend/internal/repository"
	"ice-breakun/backend/pkg/config"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq atomic.Uint64

// NewDB opens a migrated in-memory database private to the calling test.
// The handle is closed when the test finishes.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("icebreakun_test_%d", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(config.MemoryDSN(name)), config.GormConfig(true))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, repository.Migrate(db))

	t.Cleanup(func() {
		_ = config.Close(db)
	})
	return db
}
