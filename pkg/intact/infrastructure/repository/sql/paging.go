package sql

import (
	"context"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
)

// PageIterator fetches rows matching a query in fixed-size pages ordered by AC.
// Pages are loaded on demand; the iterator is exhausted after the first short page.
type PageIterator[E Entity] struct {
	exec     database.DBExecutor
	query    map[string]interface{}
	pageSize int
	offset   int
	done     bool
}

// NewPageIterator creates an iterator. A non-positive pageSize defaults to 100.
func NewPageIterator[E Entity](exec database.DBExecutor, query map[string]interface{}, pageSize int) *PageIterator[E] {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &PageIterator[E]{exec: exec, query: query, pageSize: pageSize}
}

// Next returns the next page, or an empty page once the rows are exhausted.
func (it *PageIterator[E]) Next(ctx context.Context) ([]E, error) {
	if it.done {
		return nil, nil
	}
	page, err := FindPage[E](ctx, it.exec, it.query, it.offset, it.pageSize)
	if err != nil {
		return nil, err
	}
	it.offset += len(page)
	if len(page) < it.pageSize {
		it.done = true
	}
	return page, nil
}

// ForEach calls fn for every page until the rows are exhausted or fn fails.
func (it *PageIterator[E]) ForEach(ctx context.Context, fn func(page []E) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		if err := fn(page); err != nil {
			return err
		}
	}
}
