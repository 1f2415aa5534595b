// Package tx defines explicit transaction handles. Callers begin a transaction, pass the
// handle down the call chain and commit or roll it back themselves.
package tx

import (
	"context"
	"database/sql"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
)

// TxExecutor is the set of operations available inside a transaction.
// Reads are included so that a pass observes its own uncommitted writes.
type TxExecutor interface {
	database.DBExecutor
}

// Tx is an open transaction.
type Tx interface {
	TxExecutor

	// Savepoint creates a savepoint with the given name.
	Savepoint(name string) error
	// RollbackToSavepoint rolls back to the named savepoint.
	RollbackToSavepoint(name string) error
}

// TransactionManager begins and ends transactions on one connection.
type TransactionManager interface {
	Begin(ctx context.Context, opts ...*sql.TxOptions) (Tx, error)
	Commit(tx Tx) error
	Rollback(tx Tx) error
}

// TransactionManagerFactory creates a TransactionManager bound to a connection.
type TransactionManagerFactory interface {
	NewTransactionManager(conn database.DBConnection) TransactionManager
}
