package gorm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
	"github.com/tigerroll/intactdb/pkg/intact/core/tx"
)

// GormTxAdapter implements tx.Tx over an open gorm transaction.
type GormTxAdapter struct {
	executor
}

// Savepoint implements tx.Tx.
func (t *GormTxAdapter) Savepoint(name string) error {
	return t.db.SavePoint(name).Error
}

// RollbackToSavepoint implements tx.Tx.
func (t *GormTxAdapter) RollbackToSavepoint(name string) error {
	return t.db.RollbackTo(name).Error
}

// GormTransactionManager implements tx.TransactionManager. The connection is resolved on
// every Begin so that a reconnect performed by the resolver is picked up.
type GormTransactionManager struct {
	dbResolver database.DBConnectionResolver
	dbName     string
}

// NewGormTransactionManager creates a transaction manager for the named connection.
func NewGormTransactionManager(dbResolver database.DBConnectionResolver, dbName string) *GormTransactionManager {
	return &GormTransactionManager{dbResolver: dbResolver, dbName: dbName}
}

func (m *GormTransactionManager) Begin(ctx context.Context, opts ...*sql.TxOptions) (tx.Tx, error) {
	conn, err := m.dbResolver.ResolveDBConnection(ctx, m.dbName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve DB connection '%s' for transaction: %w", m.dbName, err)
	}
	adapter, ok := conn.(*GormDBAdapter)
	if !ok {
		return nil, fmt.Errorf("internal error: DBConnection implementation is not *GormDBAdapter")
	}

	var txOpts *sql.TxOptions
	if len(opts) > 0 && opts[0] != nil {
		txOpts = opts[0]
	}

	gormTx := adapter.GetGormDB().WithContext(ctx).Begin(txOpts)
	if gormTx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", gormTx.Error)
	}
	return &GormTxAdapter{executor: executor{db: gormTx}}, nil
}

func (m *GormTransactionManager) Commit(t tx.Tx) error {
	gormTx, ok := t.(*GormTxAdapter)
	if !ok {
		return fmt.Errorf("invalid transaction type: expected *GormTxAdapter")
	}
	return gormTx.db.Commit().Error
}

func (m *GormTransactionManager) Rollback(t tx.Tx) error {
	gormTx, ok := t.(*GormTxAdapter)
	if !ok {
		return fmt.Errorf("invalid transaction type: expected *GormTxAdapter")
	}
	err := gormTx.db.Rollback().Error
	if errors.Is(err, sql.ErrTxDone) || errors.Is(err, gorm.ErrInvalidTransaction) {
		// Already committed or rolled back.
		return nil
	}
	return err
}

// GormTransactionManagerFactory is the gorm implementation of tx.TransactionManagerFactory.
type GormTransactionManagerFactory struct {
	dbResolver database.DBConnectionResolver
}

// NewGormTransactionManagerFactory creates an instance of GormTransactionManagerFactory.
func NewGormTransactionManagerFactory(dbResolver database.DBConnectionResolver) tx.TransactionManagerFactory {
	return &GormTransactionManagerFactory{dbResolver: dbResolver}
}

// NewTransactionManager creates a GormTransactionManager for conn.
func (f *GormTransactionManagerFactory) NewTransactionManager(conn database.DBConnection) tx.TransactionManager {
	return NewGormTransactionManager(f.dbResolver, conn.Name())
}

var (
	_ tx.Tx                 = (*GormTxAdapter)(nil)
	_ tx.TransactionManager = (*GormTransactionManager)(nil)
)
