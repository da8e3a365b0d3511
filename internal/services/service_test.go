package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pathsixdesigns/pathsix-crm/internal/db"
)

var testDBSeq atomic.Int64

// openTestDB opens an isolated in-memory database with referential actions
// enabled, mirroring the production connection settings.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// busy_timeout keeps concurrent writers queueing instead of failing fast.
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared&_busy_timeout=5000", testDBSeq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.AutoMigrate(conn))
	db.Seed(conn)
	return conn
}
