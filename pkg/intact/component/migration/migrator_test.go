package migration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/intactdb/pkg/intact/adapter/database/config"
	gormadapter "github.com/tigerroll/intactdb/pkg/intact/adapter/database/gorm"
	"github.com/tigerroll/intactdb/pkg/intact/component/migration"
	"github.com/tigerroll/intactdb/pkg/intact/component/migration/filesystem"
	sqlrepo "github.com/tigerroll/intactdb/pkg/intact/infrastructure/repository/sql"
	"github.com/tigerroll/intactdb/pkg/intact/test"
)

func TestMigrator_UpIsIdempotentAndDownDropsSchema(t *testing.T) {
	ctx := context.Background()
	conn, _ := test.NewSQLiteStore(t)
	m := migration.NewMigrator(conn, filesystem.ProvideMigrationsFS())

	version, dirty, ok, err := m.Version(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)

	require.NoError(t, m.Up(ctx))

	var seq []sqlrepo.SequenceEntity
	require.NoError(t, conn.ExecuteQuery(ctx, &seq, map[string]interface{}{"name": "ac"}))
	require.Len(t, seq, 1)
	assert.Equal(t, int64(0), seq[0].Value)

	require.NoError(t, m.Down(ctx))
	_, err = sqlrepo.Count[sqlrepo.CvTermEntity](ctx, conn, nil)
	require.Error(t, err)

	_, _, ok, err = m.Version(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMigrator_VersionOfEmptyDatabaseCreatesNothing(t *testing.T) {
	ctx := context.Background()
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormadapter.NewGormLogger("SILENT")})
	require.NoError(t, err)
	conn, err := gormadapter.NewGormDBAdapter(gormDB, dbconfig.DatabaseConfig{Type: "sqlite"}, "empty")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	sqlDB, err := conn.GetSQLDB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	m := migration.NewMigrator(conn, filesystem.ProvideMigrationsFS())
	_, _, ok, err := m.Version(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, gormDB.Migrator().HasTable(migration.MigrationsTable), "the version table is left alone")

	require.NoError(t, m.Up(ctx))
	version, _, ok, err := m.Version(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint(1), version)
}

func TestMigrator_UnsupportedDatabase(t *testing.T) {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormadapter.NewGormLogger("SILENT")})
	require.NoError(t, err)
	conn, err := gormadapter.NewGormDBAdapter(gormDB, dbconfig.DatabaseConfig{Type: "oracle"}, "legacy")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	err = migration.NewMigrator(conn, filesystem.ProvideMigrationsFS()).Up(context.Background())
	assert.ErrorContains(t, err, "unsupported database type for migration: oracle")
}

func TestMigrator_CanceledContext(t *testing.T) {
	conn, _ := test.NewSQLiteStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, migration.NewMigrator(conn, filesystem.ProvideMigrationsFS()).Up(ctx), context.Canceled)
}
