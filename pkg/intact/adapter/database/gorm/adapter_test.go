package gorm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
	dbconfig "github.com/tigerroll/intactdb/pkg/intact/adapter/database/config"
	gormadapter "github.com/tigerroll/intactdb/pkg/intact/adapter/database/gorm"
	"github.com/tigerroll/intactdb/pkg/intact/test"
)

type termRow struct {
	AC         string `gorm:"column:ac;primaryKey"`
	ShortLabel string `gorm:"column:shortlabel"`
	Owner      string `gorm:"column:owner"`
}

func (termRow) TableName() string { return "ia_test_term" }

func setupMockAdapter(t *testing.T) (*gormadapter.GormDBAdapter, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: gormadapter.NewGormLogger("SILENT")})
	require.NoError(t, err)

	adapter, err := gormadapter.NewGormDBAdapter(gormDB, dbconfig.DatabaseConfig{Type: "mysql"}, "store")
	require.NoError(t, err)

	t.Cleanup(func() {
		mock.ExpectClose()
		_ = adapter.Close()
	})
	return adapter, mock
}

func TestGormDBAdapter_ExecuteQuery(t *testing.T) {
	adapter, mock := setupMockAdapter(t)

	mock.ExpectQuery("SELECT \\* FROM `ia_test_term` WHERE `ia_test_term`.`shortlabel` = \\?").
		WithArgs("psi-mi").
		WillReturnRows(sqlmock.NewRows([]string{"ac", "shortlabel"}).AddRow("EBI-1", "psi-mi"))

	var rows []termRow
	err := adapter.ExecuteQuery(context.Background(), &rows, map[string]interface{}{"shortlabel": "psi-mi"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "EBI-1", rows[0].AC)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormDBAdapter_ExecuteQueryAdvanced_Paging(t *testing.T) {
	adapter, mock := setupMockAdapter(t)

	mock.ExpectQuery("SELECT \\* FROM `ia_test_term` ORDER BY ac LIMIT .* OFFSET .*").
		WillReturnRows(sqlmock.NewRows([]string{"ac"}).AddRow("EBI-3"))

	var rows []termRow
	err := adapter.ExecuteQueryAdvanced(context.Background(), &rows, nil, "ac", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []termRow{{AC: "EBI-3"}}, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormDBAdapter_Count(t *testing.T) {
	adapter, mock := setupMockAdapter(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `ia_test_term` WHERE `ia_test_term`.`owner` = \\?").
		WithArgs("curator").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := adapter.Count(context.Background(), &termRow{}, map[string]interface{}{"owner": "curator"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestGormDBAdapter_ExecuteUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("create", func(t *testing.T) {
		adapter, mock := setupMockAdapter(t)
		mock.ExpectExec("INSERT INTO `ia_test_term`").WillReturnResult(sqlmock.NewResult(0, 1))

		n, err := adapter.ExecuteUpdate(ctx, &termRow{AC: "EBI-1", ShortLabel: "x"}, database.OpCreate, "ia_test_term", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("column map update clears values", func(t *testing.T) {
		adapter, mock := setupMockAdapter(t)
		mock.ExpectExec("UPDATE `ia_test_term` SET `owner`=\\? WHERE `ia_test_term`.`ac` = \\?").
			WithArgs("", "EBI-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		n, err := adapter.ExecuteUpdate(ctx, map[string]interface{}{"owner": ""}, database.OpUpdate, "ia_test_term", map[string]interface{}{"ac": "EBI-1"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete", func(t *testing.T) {
		adapter, mock := setupMockAdapter(t)
		mock.ExpectExec("DELETE FROM `ia_test_term` WHERE `ia_test_term`.`owner` = \\?").
			WithArgs("gone").
			WillReturnResult(sqlmock.NewResult(0, 2))

		n, err := adapter.ExecuteUpdate(ctx, &termRow{}, database.OpDelete, "ia_test_term", map[string]interface{}{"owner": "gone"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("unsupported operation", func(t *testing.T) {
		adapter, _ := setupMockAdapter(t)
		_, err := adapter.ExecuteUpdate(ctx, &termRow{}, "MERGE", "ia_test_term", nil)
		assert.ErrorContains(t, err, "unsupported update operation")
	})

	t.Run("column map without table", func(t *testing.T) {
		adapter, _ := setupMockAdapter(t)
		_, err := adapter.ExecuteUpdate(ctx, map[string]interface{}{"owner": ""}, database.OpUpdate, "", nil)
		assert.Error(t, err)
	})
}

func TestGormTransactionManager_BeginCommitRollback(t *testing.T) {
	adapter, mock := setupMockAdapter(t)
	tm := gormadapter.NewGormTransactionManager(test.NewSingleConnectionResolver(adapter), "store")
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `ia_test_term`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	txn, err := tm.Begin(ctx)
	require.NoError(t, err)
	_, err = txn.ExecuteUpdate(ctx, &termRow{AC: "EBI-9"}, database.OpCreate, "ia_test_term", nil)
	require.NoError(t, err)
	require.NoError(t, tm.Commit(txn))

	mock.ExpectBegin()
	mock.ExpectRollback()
	txn, err = tm.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tm.Rollback(txn))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTransactionManager_RejectsForeignTx(t *testing.T) {
	adapter, _ := setupMockAdapter(t)
	tm := gormadapter.NewGormTransactionManager(test.NewSingleConnectionResolver(adapter), "store")

	err := tm.Commit(new(test.MockTx))
	assert.ErrorContains(t, err, "expected *GormTxAdapter")
}

func TestIsTableNotExistError(t *testing.T) {
	adapter, _ := setupMockAdapter(t)
	assert.True(t, adapter.IsTableNotExistError(errors.New("no such table: ia_cvterm")))
	assert.True(t, adapter.IsTableNotExistError(errors.New(`ERROR: relation "ia_cvterm" does not exist`)))
	assert.False(t, adapter.IsTableNotExistError(errors.New("duplicate key")))
	assert.False(t, adapter.IsTableNotExistError(nil))
}
