// Package gorm implements the database abstractions on top of gorm.
package gorm

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
	dbconfig "github.com/tigerroll/intactdb/pkg/intact/adapter/database/config"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// GormDBAdapter implements database.DBConnection.
type GormDBAdapter struct {
	executor
	sqlDB  *sql.DB
	cfg    dbconfig.DatabaseConfig
	dbType string
	name   string
}

// NewGormDBAdapter wraps an open *gorm.DB. Writes outside an explicit transaction skip
// gorm's implicit per-statement transaction.
func NewGormDBAdapter(db *gorm.DB, cfg dbconfig.DatabaseConfig, name string) (*GormDBAdapter, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}
	return &GormDBAdapter{
		executor: executor{db: db.Session(&gorm.Session{SkipDefaultTransaction: true})},
		sqlDB:    sqlDB,
		cfg:      cfg,
		dbType:   cfg.Type,
		name:     name,
	}, nil
}

// GetGormDB returns the underlying *gorm.DB instance. Only the gorm adapter packages use it.
func (a *GormDBAdapter) GetGormDB() *gorm.DB {
	return a.db
}

func (a *GormDBAdapter) Close() error {
	if a.sqlDB != nil {
		logger.Infof("Closing database connection '%s'...", a.name)
		return a.sqlDB.Close()
	}
	return nil
}

func (a *GormDBAdapter) Type() string { return a.dbType }

func (a *GormDBAdapter) Name() string { return a.name }

// RefreshConnection pings the pool.
func (a *GormDBAdapter) RefreshConnection(ctx context.Context) error {
	if a.sqlDB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	return a.sqlDB.PingContext(ctx)
}

func (a *GormDBAdapter) Config() dbconfig.DatabaseConfig { return a.cfg }

func (a *GormDBAdapter) GetSQLDB() (*sql.DB, error) {
	if a.sqlDB == nil {
		return nil, fmt.Errorf("underlying sql.DB is nil")
	}
	return a.sqlDB, nil
}

func (a *GormDBAdapter) IsTableNotExistError(err error) bool {
	return isTableNotExistError(err)
}

// isTableNotExistError matches the missing-table messages of PostgreSQL, MySQL and SQLite.
func isTableNotExistError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	return (strings.Contains(errMsg, "relation \"") && strings.Contains(errMsg, "\" does not exist")) ||
		(strings.Contains(errMsg, "Error 1146") && strings.Contains(errMsg, "doesn't exist")) ||
		strings.Contains(errMsg, "no such table:")
}

var _ database.DBConnection = (*GormDBAdapter)(nil)
