package gorm

import (
	"context"
	"fmt"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
)

// TableNamer represents a struct that has a TableName() string method.
type TableNamer interface {
	TableName() string
}

var tableNamerType = reflect.TypeOf((*TableNamer)(nil)).Elem()

// applyTableName scopes db to the table of model, which may be an entity or a slice of entities.
func applyTableName(db *gorm.DB, model interface{}) *gorm.DB {
	if namer, ok := model.(TableNamer); ok {
		return db.Table(namer.TableName())
	}

	val := reflect.ValueOf(model)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() == reflect.Slice || val.Kind() == reflect.Array {
		elemType := val.Type().Elem()
		if elemType.Kind() == reflect.Ptr {
			elemType = elemType.Elem()
		}
		if reflect.PointerTo(elemType).Implements(tableNamerType) {
			if namer, ok := reflect.New(elemType).Interface().(TableNamer); ok {
				return db.Table(namer.TableName())
			}
		}
	}
	return db.Model(model)
}

// executor implements database.DBExecutor over a *gorm.DB, which is either a pooled
// connection or an open transaction.
type executor struct {
	db *gorm.DB
}

func where(db *gorm.DB, query map[string]interface{}) *gorm.DB {
	if len(query) == 0 {
		return db
	}
	return db.Where(query)
}

func (e executor) ExecuteQuery(ctx context.Context, target interface{}, query map[string]interface{}) error {
	db := applyTableName(e.db.WithContext(ctx), target)
	return where(db, query).Find(target).Error
}

func (e executor) ExecuteQueryAdvanced(ctx context.Context, target interface{}, query map[string]interface{}, orderBy string, offset, limit int) error {
	db := where(applyTableName(e.db.WithContext(ctx), target), query)
	if orderBy != "" {
		db = db.Order(orderBy)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	return db.Find(target).Error
}

func (e executor) Count(ctx context.Context, model interface{}, query map[string]interface{}) (int64, error) {
	db := where(applyTableName(e.db.WithContext(ctx), model), query)
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (e executor) Pluck(ctx context.Context, model interface{}, column string, target interface{}, query map[string]interface{}) error {
	db := where(applyTableName(e.db.WithContext(ctx), model), query)
	return db.Distinct().Pluck(column, target).Error
}

func (e executor) ExecuteUpdate(ctx context.Context, model interface{}, operation string, tableName string, query map[string]interface{}) (int64, error) {
	db := e.db.WithContext(ctx)
	if tableName != "" {
		db = db.Table(tableName)
	}

	var result *gorm.DB
	switch operation {
	case database.OpCreate:
		result = db.Create(model)
	case database.OpUpdate:
		if values, ok := model.(map[string]interface{}); ok {
			if tableName == "" {
				return 0, fmt.Errorf("column map update requires a table name")
			}
			result = where(db, query).Updates(values)
		} else {
			result = where(db.Model(model), query).Updates(model)
		}
	case database.OpDelete:
		result = where(db, query).Delete(model)
	default:
		return 0, fmt.Errorf("unsupported update operation: %s", operation)
	}

	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (e executor) ExecuteUpsert(ctx context.Context, model interface{}, tableName string, conflictColumns []string, updateColumns []string) (int64, error) {
	db := e.db.WithContext(ctx)
	if tableName != "" {
		db = db.Table(tableName)
	}

	onConflict := clause.OnConflict{}
	for _, col := range conflictColumns {
		onConflict.Columns = append(onConflict.Columns, clause.Column{Name: col})
	}
	if len(updateColumns) > 0 {
		onConflict.DoUpdates = clause.AssignmentColumns(updateColumns)
	} else {
		onConflict.DoNothing = true
	}

	result := db.Clauses(onConflict).Create(model)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

var _ database.DBExecutor = executor{}
