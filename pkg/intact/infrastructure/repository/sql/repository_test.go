package sql_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/intactdb/pkg/intact/adapter/database/config"
	gormadapter "github.com/tigerroll/intactdb/pkg/intact/adapter/database/gorm"
	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	sqlrepo "github.com/tigerroll/intactdb/pkg/intact/infrastructure/repository/sql"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
)

// setupGormMock sets up a GORM adapter over sqlmock using the mysql dialector.
func setupGormMock(t *testing.T) (*gormadapter.GormDBAdapter, sqlmock.Sqlmock) {
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

func TestFindByAC(t *testing.T) {
	adapter, mock := setupGormMock(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT \\* FROM `ia_cv_term` WHERE `ia_cv_term`.`ac` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"ac", "short_label", "mi_identifier", "obj_class"}).
			AddRow("EBI-1", "uniprotkb", "MI:0486", "database"))

	row, err := sqlrepo.FindByAC[sqlrepo.CvTermEntity](ctx, adapter, "EBI-1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "MI:0486", row.MIIdentifier)
	assert.Equal(t, "database", row.ObjClass)

	mock.ExpectQuery("SELECT \\* FROM `ia_cv_term` WHERE `ia_cv_term`.`ac` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"ac"}))
	row, err = sqlrepo.FindByAC[sqlrepo.CvTermEntity](ctx, adapter, "EBI-404")
	require.NoError(t, err)
	assert.Nil(t, row)

	row, err = sqlrepo.FindByAC[sqlrepo.CvTermEntity](ctx, adapter, "")
	assert.NoError(t, err)
	assert.Nil(t, row)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindBy_OrdersByAC(t *testing.T) {
	adapter, mock := setupGormMock(t)

	mock.ExpectQuery("SELECT \\* FROM `ia_xref` WHERE .* ORDER BY ac").
		WillReturnRows(sqlmock.NewRows([]string{"ac", "parent_ac", "parent_kind", "primary_id"}).
			AddRow("EBI-5", "EBI-4", "interactor", "P04637").
			AddRow("EBI-6", "EBI-4", "interactor", "Q00987"))

	rows, err := sqlrepo.FindBy[sqlrepo.XrefEntity](context.Background(), adapter, sqlrepo.OwnedBy("EBI-4", model.KindInteractor))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, model.KindInteractor, rows[1].ParentKind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert(t *testing.T) {
	adapter, mock := setupGormMock(t)

	mock.ExpectExec("INSERT INTO `ia_organism`").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := sqlrepo.Insert(context.Background(), adapter, &sqlrepo.OrganismEntity{AC: "EBI-2", TaxID: 9606})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	adapter, mock := setupGormMock(t)
	ctx := context.Background()

	mock.ExpectExec("UPDATE `ia_publication` SET `owner`=\\?,`status`=\\? WHERE `ia_publication`.`ac` = \\?").
		WithArgs("", "new", "EBI-7").
		WillReturnResult(sqlmock.NewResult(0, 1))
	err := sqlrepo.Update[sqlrepo.PublicationEntity](ctx, adapter, "EBI-7",
		map[string]interface{}{"status": "new", "owner": ""})
	require.NoError(t, err)

	mock.ExpectExec("UPDATE `ia_publication`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = sqlrepo.Update[sqlrepo.PublicationEntity](ctx, adapter, "EBI-8", map[string]interface{}{"title": "x"})
	assert.ErrorIs(t, err, exception.ErrCounterpartNotFound)

	// no columns, no statement
	assert.NoError(t, sqlrepo.Update[sqlrepo.PublicationEntity](ctx, adapter, "EBI-7", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBy(t *testing.T) {
	adapter, mock := setupGormMock(t)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM `ia_range` WHERE `ia_range`.`feature_ac` = \\?").
		WithArgs("EBI-9").
		WillReturnResult(sqlmock.NewResult(0, 3))
	n, err := sqlrepo.DeleteBy[sqlrepo.RangeEntity](ctx, adapter, map[string]interface{}{"feature_ac": "EBI-9"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = sqlrepo.DeleteBy[sqlrepo.RangeEntity](ctx, adapter, nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOwned_CoversEveryPolymorphicTable(t *testing.T) {
	adapter, mock := setupGormMock(t)

	for _, table := range []string{"ia_xref", "ia_annotation", "ia_alias", "ia_confidence", "ia_parameter", "ia_lifecycle_event"} {
		mock.ExpectExec("DELETE FROM `" + table + "` WHERE").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	n, err := sqlrepo.DeleteOwned(context.Background(), adapter, "EBI-1", model.KindPublication)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOwned_StopsOnFailure(t *testing.T) {
	adapter, mock := setupGormMock(t)

	mock.ExpectExec("DELETE FROM `ia_xref`").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `ia_annotation`").WillReturnError(errors.New("lock timeout"))

	n, err := sqlrepo.DeleteOwned(context.Background(), adapter, "EBI-1", model.KindComplex)
	assert.Error(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount(t *testing.T) {
	adapter, mock := setupGormMock(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `ia_publication` WHERE `ia_publication`.`status` = \\?").
		WithArgs("released").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	n, err := sqlrepo.Count[sqlrepo.PublicationEntity](context.Background(), adapter,
		map[string]interface{}{"status": model.StatusReleased})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
