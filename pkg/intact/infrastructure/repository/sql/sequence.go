package sql

import (
	"context"
	"fmt"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
	logger "github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// ACGenerator hands out accessions ("<prefix>-<n>") from a row of ia_sequence.
// Concurrent writers are detected with a versioned update and retried.
type ACGenerator struct {
	prefix   string
	name     string
	attempts int
}

// NewACGenerator creates a generator over the named sequence row.
func NewACGenerator(prefix, name string, attempts int) *ACGenerator {
	if attempts <= 0 {
		attempts = 1
	}
	return &ACGenerator{prefix: prefix, name: name, attempts: attempts}
}

// Next allocates the next accession through exec.
func (g *ACGenerator) Next(ctx context.Context, exec database.DBExecutor) (string, error) {
	const op = "ACGenerator.Next"
	var lastErr error
	for attempt := 1; attempt <= g.attempts; attempt++ {
		value, err := g.advance(ctx, exec)
		if err == nil {
			return fmt.Sprintf("%s-%d", g.prefix, value), nil
		}
		if !exception.IsOptimisticLockingFailure(err) {
			return "", exception.NewPersisterError(op, fmt.Sprintf("failed to advance sequence '%s'", g.name), err)
		}
		logger.Debugf("Sequence '%s' was advanced concurrently (attempt %d/%d), retrying.", g.name, attempt, g.attempts)
		lastErr = err
	}
	return "", lastErr
}

func (g *ACGenerator) advance(ctx context.Context, exec database.DBExecutor) (int64, error) {
	var rows []SequenceEntity
	if err := exec.ExecuteQuery(ctx, &rows, map[string]interface{}{"name": g.name}); err != nil {
		return 0, err
	}

	if len(rows) == 0 {
		row := &SequenceEntity{Name: g.name, Value: 1, Version: 0}
		n, err := exec.ExecuteUpsert(ctx, row, row.TableName(), []string{"name"}, nil)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, exception.NewOptimisticLockingFailureException("ACGenerator.advance",
				fmt.Sprintf("sequence '%s' was created concurrently", g.name), nil)
		}
		return 1, nil
	}

	current := rows[0]
	next := current.Value + 1
	n, err := exec.ExecuteUpdate(ctx,
		map[string]interface{}{"value": next, "version": current.Version + 1},
		database.OpUpdate,
		current.TableName(),
		map[string]interface{}{"name": g.name, "version": current.Version},
	)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, exception.NewOptimisticLockingFailureException("ACGenerator.advance",
			fmt.Sprintf("sequence '%s' with version %d not found for update", g.name, current.Version), nil)
	}
	return next, nil
}
