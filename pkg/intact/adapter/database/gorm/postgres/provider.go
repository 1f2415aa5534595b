// Package postgres provides a gorm DBProvider for PostgreSQL databases.
package postgres

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
	dbconfig "github.com/tigerroll/intactdb/pkg/intact/adapter/database/config"
	gormadapter "github.com/tigerroll/intactdb/pkg/intact/adapter/database/gorm"
	"github.com/tigerroll/intactdb/pkg/intact/core/config"
)

func init() {
	gormadapter.RegisterDialector("postgres", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		return postgres.Open(ConnectionString(cfg)), nil
	})
}

// PostgresDBProvider implements database.DBProvider for PostgreSQL connections.
type PostgresDBProvider struct {
	*gormadapter.BaseProvider
}

// ConnectionString builds the key/value DSN expected by gorm.io/driver/postgres.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	sslmode := c.Sslmode
	if sslmode == "" {
		sslmode = "disable"
	}
	parts := []string{
		fmt.Sprintf("host=%s", c.Host),
		fmt.Sprintf("port=%d", c.Port),
		fmt.Sprintf("user=%s", c.User),
		fmt.Sprintf("password=%s", c.Password),
		fmt.Sprintf("dbname=%s", c.Database),
		fmt.Sprintf("sslmode=%s", sslmode),
	}
	if c.Schema != "" {
		parts = append(parts, fmt.Sprintf("search_path=%s", c.Schema))
	}
	return strings.Join(parts, " ")
}

// NewProvider creates a new database.DBProvider for PostgreSQL.
func NewProvider(cfg *config.Config) database.DBProvider {
	return &PostgresDBProvider{BaseProvider: gormadapter.NewBaseProvider(cfg, "postgres")}
}
