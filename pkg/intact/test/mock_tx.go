// Package test holds mocks and fixtures shared by the package tests.
package test

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/tigerroll/intactdb/pkg/intact/core/tx"
)

// MockTx is a mock implementation of the tx.Tx interface.
type MockTx struct {
	mock.Mock
}

func (m *MockTx) ExecuteUpdate(ctx context.Context, model interface{}, operation string, tableName string, query map[string]interface{}) (int64, error) {
	args := m.Called(ctx, model, operation, tableName, query)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTx) ExecuteUpsert(ctx context.Context, model interface{}, tableName string, conflictColumns []string, updateColumns []string) (int64, error) {
	args := m.Called(ctx, model, tableName, conflictColumns, updateColumns)
	return args.Get(0).(int64), args.Error(1)
}

// ExecuteQuery mocks reads. A Run func on the expectation can fill target.
func (m *MockTx) ExecuteQuery(ctx context.Context, target interface{}, query map[string]interface{}) error {
	args := m.Called(ctx, target, query)
	return args.Error(0)
}

func (m *MockTx) ExecuteQueryAdvanced(ctx context.Context, target interface{}, query map[string]interface{}, orderBy string, offset, limit int) error {
	args := m.Called(ctx, target, query, orderBy, offset, limit)
	return args.Error(0)
}

func (m *MockTx) Count(ctx context.Context, model interface{}, query map[string]interface{}) (int64, error) {
	args := m.Called(ctx, model, query)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTx) Pluck(ctx context.Context, model interface{}, column string, target interface{}, query map[string]interface{}) error {
	args := m.Called(ctx, model, column, target, query)
	return args.Error(0)
}

func (m *MockTx) Savepoint(name string) error {
	return m.Called(name).Error(0)
}

func (m *MockTx) RollbackToSavepoint(name string) error {
	return m.Called(name).Error(0)
}

// MockTxManager is a mock implementation of the tx.TransactionManager interface.
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context, opts ...*sql.TxOptions) (tx.Tx, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(tx.Tx), args.Error(1)
}

func (m *MockTxManager) Commit(t tx.Tx) error {
	return m.Called(t).Error(0)
}

func (m *MockTxManager) Rollback(t tx.Tx) error {
	return m.Called(t).Error(0)
}

var (
	_ tx.Tx                 = (*MockTx)(nil)
	_ tx.TransactionManager = (*MockTxManager)(nil)
)
