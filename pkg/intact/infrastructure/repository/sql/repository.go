// Package sql holds the relational schema of the curation store and the generic
// repository functions over it. Every function takes the executor explicitly, which is
// normally the transaction of the current reconciliation pass.
package sql

import (
	"context"
	"fmt"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
)

// ByAC is the query selecting one row by accession.
func ByAC(ac string) map[string]interface{} {
	return map[string]interface{}{"ac": ac}
}

func tableOf[E Entity]() string {
	var zero E
	return zero.TableName()
}

// FindByAC loads the row with the given AC. It returns nil when no row exists.
func FindByAC[E Entity](ctx context.Context, exec database.DBExecutor, ac string) (*E, error) {
	if ac == "" {
		return nil, nil
	}
	var rows []E
	if err := exec.ExecuteQueryAdvanced(ctx, &rows, ByAC(ac), "", 0, 1); err != nil {
		return nil, fmt.Errorf("failed to load %s (AC: %s): %w", tableOf[E](), ac, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// FindBy loads every row matching query, ordered by AC.
func FindBy[E Entity](ctx context.Context, exec database.DBExecutor, query map[string]interface{}) ([]E, error) {
	var rows []E
	if err := exec.ExecuteQueryAdvanced(ctx, &rows, query, "ac", 0, 0); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", tableOf[E](), err)
	}
	return rows, nil
}

// FindPage loads one page of rows matching query, ordered by AC.
func FindPage[E Entity](ctx context.Context, exec database.DBExecutor, query map[string]interface{}, offset, limit int) ([]E, error) {
	var rows []E
	if err := exec.ExecuteQueryAdvanced(ctx, &rows, query, "ac", offset, limit); err != nil {
		return nil, fmt.Errorf("failed to query page of %s (offset %d): %w", tableOf[E](), offset, err)
	}
	return rows, nil
}

// PluckAC returns the distinct accessions of the rows matching query.
func PluckAC[E Entity](ctx context.Context, exec database.DBExecutor, query map[string]interface{}) ([]string, error) {
	return PluckColumn[E](ctx, exec, "ac", query)
}

// PluckColumn returns the distinct values of a text column of the rows matching query.
func PluckColumn[E Entity](ctx context.Context, exec database.DBExecutor, column string, query map[string]interface{}) ([]string, error) {
	var values []string
	var zero E
	if err := exec.Pluck(ctx, &zero, column, &values, query); err != nil {
		return nil, fmt.Errorf("failed to pluck %s of %s: %w", column, tableOf[E](), err)
	}
	return values, nil
}

// Count returns the number of rows matching query.
func Count[E Entity](ctx context.Context, exec database.DBExecutor, query map[string]interface{}) (int64, error) {
	var zero E
	n, err := exec.Count(ctx, &zero, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", tableOf[E](), err)
	}
	return n, nil
}

// Insert creates row.
func Insert[E Entity](ctx context.Context, exec database.DBExecutor, row *E) error {
	if _, err := exec.ExecuteUpdate(ctx, row, database.OpCreate, tableOf[E](), nil); err != nil {
		return fmt.Errorf("failed to insert into %s (AC: %s): %w", tableOf[E](), (*row).GetAC(), err)
	}
	return nil
}

// Update writes columns to the row with the given AC. A missing row is reported as
// exception.ErrCounterpartNotFound.
func Update[E Entity](ctx context.Context, exec database.DBExecutor, ac string, columns map[string]interface{}) error {
	if len(columns) == 0 {
		return nil
	}
	n, err := exec.ExecuteUpdate(ctx, columns, database.OpUpdate, tableOf[E](), ByAC(ac))
	if err != nil {
		return fmt.Errorf("failed to update %s (AC: %s): %w", tableOf[E](), ac, err)
	}
	if n == 0 {
		return fmt.Errorf("failed to update %s (AC: %s): %w", tableOf[E](), ac, exception.ErrCounterpartNotFound)
	}
	return nil
}

// DeleteBy deletes every row matching query and returns the number of deleted rows.
func DeleteBy[E Entity](ctx context.Context, exec database.DBExecutor, query map[string]interface{}) (int64, error) {
	if len(query) == 0 {
		return 0, fmt.Errorf("refusing to delete from %s without a condition", tableOf[E]())
	}
	var zero E
	n, err := exec.ExecuteUpdate(ctx, &zero, database.OpDelete, tableOf[E](), query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", tableOf[E](), err)
	}
	return n, nil
}

// OwnedBy is the query selecting the polymorphic children of owner.
func OwnedBy(ownerAC string, ownerKind model.EntityKind) map[string]interface{} {
	return map[string]interface{}{"parent_ac": ownerAC, "parent_kind": ownerKind}
}

// DeleteOwned deletes the rows of every polymorphic child table that belong to the owner.
func DeleteOwned(ctx context.Context, exec database.DBExecutor, ownerAC string, ownerKind model.EntityKind) (int64, error) {
	q := OwnedBy(ownerAC, ownerKind)
	var total int64
	for _, del := range []func(context.Context, database.DBExecutor, map[string]interface{}) (int64, error){
		DeleteBy[XrefEntity],
		DeleteBy[AnnotationEntity],
		DeleteBy[AliasEntity],
		DeleteBy[ConfidenceEntity],
		DeleteBy[ParameterEntity],
		DeleteBy[LifecycleEventEntity],
	} {
		n, err := del(ctx, exec, q)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
