// Package sqlite provides a gorm DBProvider for SQLite databases.
package sqlite

import (
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
	dbconfig "github.com/tigerroll/intactdb/pkg/intact/adapter/database/config"
	gormadapter "github.com/tigerroll/intactdb/pkg/intact/adapter/database/gorm"
	"github.com/tigerroll/intactdb/pkg/intact/core/config"
)

func init() {
	gormadapter.RegisterDialector("sqlite", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		if cfg.Database == "" {
			return nil, errors.New("SQLite database path cannot be empty")
		}
		return sqlite.Open(ConnectionString(cfg)), nil
	})
}

// SQLiteDBProvider implements database.DBProvider for SQLite connections.
type SQLiteDBProvider struct {
	*gormadapter.BaseProvider
}

// ConnectionString returns the file path (or ":memory:") the sqlite dialector expects.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	return c.Database
}

// NewProvider creates a new database.DBProvider for SQLite.
func NewProvider(cfg *config.Config) database.DBProvider {
	return &SQLiteDBProvider{BaseProvider: gormadapter.NewBaseProvider(cfg, "sqlite")}
}
