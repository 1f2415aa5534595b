// Package database defines the persistence abstractions used by the curation store.
// Query arguments are column/value maps; a slice value becomes an IN condition.
package database

import (
	"context"
	"database/sql"

	dbconfig "github.com/tigerroll/intactdb/pkg/intact/adapter/database/config"
)

// Operations accepted by DBExecutor.ExecuteUpdate.
const (
	OpCreate = "CREATE"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// DBExecutor runs reads and writes against a connection or an open transaction.
type DBExecutor interface {
	// ExecuteUpdate performs a CREATE, UPDATE or DELETE.
	// For UPDATE, model is either an entity pointer (non-zero fields are written) or a
	// map[string]interface{} of column values, which allows columns to be cleared.
	ExecuteUpdate(ctx context.Context, model interface{}, operation string, tableName string, query map[string]interface{}) (rowsAffected int64, err error)

	// ExecuteUpsert inserts model, resolving conflicts on conflictColumns by updating updateColumns
	// (or doing nothing when updateColumns is empty).
	ExecuteUpsert(ctx context.Context, model interface{}, tableName string, conflictColumns []string, updateColumns []string) (rowsAffected int64, err error)

	// ExecuteQuery loads every row matching query into target (a pointer to a slice).
	ExecuteQuery(ctx context.Context, target interface{}, query map[string]interface{}) error

	// ExecuteQueryAdvanced is ExecuteQuery with ordering and offset/limit paging. Zero limit means no limit.
	ExecuteQueryAdvanced(ctx context.Context, target interface{}, query map[string]interface{}, orderBy string, offset, limit int) error

	// Count returns the number of rows matching query.
	Count(ctx context.Context, model interface{}, query map[string]interface{}) (int64, error)

	// Pluck loads the distinct values of column into target.
	Pluck(ctx context.Context, model interface{}, column string, target interface{}, query map[string]interface{}) error
}

// DBConnection is a named, pooled connection.
type DBConnection interface {
	DBExecutor

	Type() string
	Name() string
	Close() error
	IsTableNotExistError(err error) bool
	RefreshConnection(ctx context.Context) error
	Config() dbconfig.DatabaseConfig
	GetSQLDB() (*sql.DB, error)
}

// DBConnectionResolver resolves named connections, reconnecting when a pooled connection went bad.
type DBConnectionResolver interface {
	ResolveDBConnection(ctx context.Context, name string) (DBConnection, error)
}

// DBProvider creates and caches connections for one database type.
type DBProvider interface {
	GetConnection(name string) (DBConnection, error)
	CloseAll() error
	Type() string
	ForceReconnect(name string) (DBConnection, error)
}

// DBProviderGroup is the fx value group every DBProvider is registered into.
const DBProviderGroup = "db_providers"
