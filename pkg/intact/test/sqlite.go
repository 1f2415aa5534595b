package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/intactdb/pkg/intact/adapter/database/config"
	gormadapter "github.com/tigerroll/intactdb/pkg/intact/adapter/database/gorm"
	"github.com/tigerroll/intactdb/pkg/intact/component/migration"
	"github.com/tigerroll/intactdb/pkg/intact/component/migration/filesystem"
	"github.com/tigerroll/intactdb/pkg/intact/core/tx"
)

// NewSQLiteStore opens an in-memory SQLite database, applies the curation schema and
// returns the connection with a transaction manager over it. A single pooled connection
// keeps every statement on the same in-memory database.
func NewSQLiteStore(t *testing.T) (*gormadapter.GormDBAdapter, tx.TransactionManager) {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormadapter.NewGormLogger("SILENT")})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	conn, err := gormadapter.NewGormDBAdapter(gormDB, dbconfig.DatabaseConfig{Type: "sqlite", Database: ":memory:"}, "store")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, migration.NewMigrator(conn, filesystem.ProvideMigrationsFS()).Up(context.Background()))
	return conn, gormadapter.NewGormTransactionManager(NewSingleConnectionResolver(conn), "store")
}
