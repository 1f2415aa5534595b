// Package mysql provides a gorm DBProvider for MySQL databases.
package mysql

import (
	"fmt"
	"time"

	driver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
	dbconfig "github.com/tigerroll/intactdb/pkg/intact/adapter/database/config"
	gormadapter "github.com/tigerroll/intactdb/pkg/intact/adapter/database/gorm"
	"github.com/tigerroll/intactdb/pkg/intact/core/config"
)

func init() {
	gormadapter.RegisterDialector("mysql", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		return mysql.Open(ConnectionString(cfg)), nil
	})
}

// MySQLDBProvider implements database.DBProvider for MySQL connections.
type MySQLDBProvider struct {
	*gormadapter.BaseProvider
}

// ConnectionString builds the go-sql-driver DSN. With clientFoundRows an update that
// leaves a row unchanged still counts it as affected.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	dc := driver.NewConfig()
	dc.User = c.User
	dc.Passwd = c.Password
	dc.Net = "tcp"
	dc.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	dc.DBName = c.Database
	dc.Loc = time.Local
	dc.ParseTime = true
	dc.MultiStatements = true
	dc.ClientFoundRows = true
	dc.Params = map[string]string{"charset": "utf8mb4"}
	return dc.FormatDSN()
}

// NewProvider creates a new database.DBProvider for MySQL.
func NewProvider(cfg *config.Config) database.DBProvider {
	return &MySQLDBProvider{BaseProvider: gormadapter.NewBaseProvider(cfg, "mysql")}
}
