package sql_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
	sqlrepo "github.com/tigerroll/intactdb/pkg/intact/infrastructure/repository/sql"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
	mocktx "github.com/tigerroll/intactdb/pkg/intact/test"
)

func returnSequence(value int64, version int) func(args testify_mock.Arguments) {
	return func(args testify_mock.Arguments) {
		rows := args.Get(1).(*[]sqlrepo.SequenceEntity)
		*rows = []sqlrepo.SequenceEntity{{Name: "ac", Value: value, Version: version}}
	}
}

func TestACGenerator_Next(t *testing.T) {
	tx := &mocktx.MockTx{}
	ctx := context.Background()

	tx.On("ExecuteQuery", ctx, testify_mock.Anything, map[string]interface{}{"name": "ac"}).
		Run(returnSequence(41, 3)).Return(nil).Once()
	tx.On("ExecuteUpdate", ctx,
		map[string]interface{}{"value": int64(42), "version": 4},
		database.OpUpdate, "ia_sequence",
		map[string]interface{}{"name": "ac", "version": 3},
	).Return(int64(1), nil).Once()

	ac, err := sqlrepo.NewACGenerator("EBI", "ac", 3).Next(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, "EBI-42", ac)
	tx.AssertExpectations(t)
}

func TestACGenerator_RetriesLostUpdate(t *testing.T) {
	tx := &mocktx.MockTx{}
	ctx := context.Background()

	tx.On("ExecuteQuery", ctx, testify_mock.Anything, testify_mock.Anything).
		Run(returnSequence(10, 1)).Return(nil).Once()
	tx.On("ExecuteUpdate", ctx, testify_mock.Anything, database.OpUpdate, "ia_sequence",
		map[string]interface{}{"name": "ac", "version": 1}).Return(int64(0), nil).Once()
	tx.On("ExecuteQuery", ctx, testify_mock.Anything, testify_mock.Anything).
		Run(returnSequence(11, 2)).Return(nil).Once()
	tx.On("ExecuteUpdate", ctx, testify_mock.Anything, database.OpUpdate, "ia_sequence",
		map[string]interface{}{"name": "ac", "version": 2}).Return(int64(1), nil).Once()

	ac, err := sqlrepo.NewACGenerator("EBI", "ac", 3).Next(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, "EBI-12", ac)
	tx.AssertExpectations(t)
}

func TestACGenerator_GivesUpAfterAttempts(t *testing.T) {
	tx := &mocktx.MockTx{}
	ctx := context.Background()

	tx.On("ExecuteQuery", ctx, testify_mock.Anything, testify_mock.Anything).
		Run(returnSequence(10, 1)).Return(nil)
	tx.On("ExecuteUpdate", ctx, testify_mock.Anything, database.OpUpdate, "ia_sequence", testify_mock.Anything).
		Return(int64(0), nil)

	_, err := sqlrepo.NewACGenerator("EBI", "ac", 2).Next(ctx, tx)
	require.Error(t, err)
	assert.True(t, exception.IsOptimisticLockingFailure(err))
	tx.AssertNumberOfCalls(t, "ExecuteUpdate", 2)
}

func TestACGenerator_CreatesMissingSequence(t *testing.T) {
	tx := &mocktx.MockTx{}
	ctx := context.Background()

	tx.On("ExecuteQuery", ctx, testify_mock.Anything, testify_mock.Anything).Return(nil)
	tx.On("ExecuteUpsert", ctx, &sqlrepo.SequenceEntity{Name: "ac", Value: 1}, "ia_sequence", []string{"name"}, []string(nil)).
		Return(int64(1), nil)

	ac, err := sqlrepo.NewACGenerator("TEST", "ac", 1).Next(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, "TEST-1", ac)
}

func TestACGenerator_QueryFailureIsPersisterError(t *testing.T) {
	tx := &mocktx.MockTx{}
	ctx := context.Background()
	tx.On("ExecuteQuery", ctx, testify_mock.Anything, testify_mock.Anything).Return(errors.New("connection reset"))

	_, err := sqlrepo.NewACGenerator("EBI", "ac", 5).Next(ctx, tx)
	assert.ErrorIs(t, err, exception.ErrPersister)
	tx.AssertNumberOfCalls(t, "ExecuteQuery", 1)
}
