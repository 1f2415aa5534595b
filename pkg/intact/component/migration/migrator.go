// Package migration applies the embedded curation schema with golang-migrate.
package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/fx"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
	"github.com/tigerroll/intactdb/pkg/intact/component/migration/filesystem"
	"github.com/tigerroll/intactdb/pkg/intact/core/config"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// MigrationsTable tracks the applied schema version.
const MigrationsTable = "ia_schema_migrations"

// Migrator runs the migrations of fsys against one connection.
type Migrator struct {
	conn database.DBConnection
	fsys fs.FS
}

// NewMigrator creates a Migrator.
func NewMigrator(conn database.DBConnection, fsys fs.FS) *Migrator {
	return &Migrator{conn: conn, fsys: fsys}
}

func (m *Migrator) databaseDriver(sqlDB *sql.DB) (migratedb.Driver, error) {
	switch m.conn.Type() {
	case "postgres", "redshift":
		return postgres.WithInstance(sqlDB, &postgres.Config{MigrationsTable: MigrationsTable})
	case "mysql":
		return mysql.WithInstance(sqlDB, &mysql.Config{MigrationsTable: MigrationsTable})
	case "sqlite":
		return sqlite.WithInstance(sqlDB, &sqlite.Config{MigrationsTable: MigrationsTable})
	default:
		return nil, fmt.Errorf("unsupported database type for migration: %s", m.conn.Type())
	}
}

// instance builds a migrate instance over the pooled connection. The instance is not
// closed after use: its database driver would close the shared pool.
func (m *Migrator) instance() (*migrate.Migrate, error) {
	sqlDB, err := m.conn.GetSQLDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	source, err := iofs.New(m.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs source driver: %w", err)
	}
	driver, err := m.databaseDriver(sqlDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}
	mi, err := migrate.NewWithInstance("iofs", source, m.conn.Type(), driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mi, nil
}

func (m *Migrator) run(ctx context.Context, command string, step func(*migrate.Migrate) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Infof("Executing migration '%s' on '%s' (Table: %s)", command, m.conn.Name(), MigrationsTable)
	mi, err := m.instance()
	if err != nil {
		return err
	}
	if err := step(mi); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		if v, dirty, verr := mi.Version(); verr == nil {
			logger.Errorf("Migration '%s' failed at version %d (dirty: %t).", command, v, dirty)
		}
		return fmt.Errorf("migration '%s' failed (DB: %s): %w", command, m.conn.Type(), err)
	}
	logger.Infof("Migration '%s' completed successfully.", command)
	return nil
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, "up", func(mi *migrate.Migrate) error { return mi.Up() })
}

// Down rolls back every applied migration.
func (m *Migrator) Down(ctx context.Context) error {
	return m.run(ctx, "down", func(mi *migrate.Migrate) error { return mi.Down() })
}

// schemaVersion maps the version table maintained by golang-migrate.
type schemaVersion struct {
	Version int64 `gorm:"column:version"`
	Dirty   bool  `gorm:"column:dirty"`
}

func (schemaVersion) TableName() string { return MigrationsTable }

// Version returns the applied schema version; ok is false on an empty database. A database
// that never ran a migration is reported without creating the version table.
func (m *Migrator) Version(ctx context.Context) (version uint, dirty bool, ok bool, err error) {
	if _, err := m.conn.Count(ctx, &schemaVersion{}, nil); err != nil {
		if m.conn.IsTableNotExistError(err) {
			return 0, false, false, nil
		}
		return 0, false, false, fmt.Errorf("failed to read %s: %w", MigrationsTable, err)
	}
	mi, err := m.instance()
	if err != nil {
		return 0, false, false, err
	}
	version, dirty, err = mi.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, err
	}
	return version, dirty, true, nil
}

// MigratorParams defines the dependencies of NewStoreMigrator.
type MigratorParams struct {
	fx.In
	Config     *config.Config
	DBResolver database.DBConnectionResolver
	FS         fs.FS `name:"curationMigrationsFS"`
}

// NewStoreMigrator creates the Migrator of the configured store connection.
func NewStoreMigrator(p MigratorParams) (*Migrator, error) {
	name := p.Config.Intact.Infrastructure.StoreDBRef
	conn, err := p.DBResolver.ResolveDBConnection(context.Background(), name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store connection '%s': %w", name, err)
	}
	return NewMigrator(conn, p.FS), nil
}

// Module provides the store Migrator and the embedded migrations.
var Module = fx.Options(
	filesystem.Module,
	fx.Provide(NewStoreMigrator),
)
