package exception_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
)

func TestKindsMatchThroughWrapping(t *testing.T) {
	finder := exception.NewFinderError("CvTermSynchronizer.Find", "ambiguous MI:0326", exception.ErrAmbiguousMatch)
	merge := exception.NewMergeError("Listener.OnEnrichmentComplete", "drain failed", finder)
	wrapped := fmt.Errorf("pass aborted: %w", merge)

	assert.True(t, errors.Is(wrapped, exception.ErrMerge))
	assert.True(t, errors.Is(wrapped, exception.ErrFinder))
	assert.True(t, errors.Is(wrapped, exception.ErrAmbiguousMatch))
	assert.False(t, errors.Is(wrapped, exception.ErrPersister))
	assert.Equal(t, exception.KindMerge, exception.KindOf(wrapped))
}

func TestIntactErrorFormatting(t *testing.T) {
	err := exception.NewPersisterError("sql.Insert", "insert ia_cvterm", errors.New("constraint failed"))
	assert.Equal(t, "[persister:sql.Insert] insert ia_cvterm: constraint failed", err.Error())
	assert.Equal(t, "insert ia_cvterm", exception.ExtractErrorMessage(err))
	assert.NotEmpty(t, err.StackTrace)

	bare := exception.NewConfigError("config", "missing database", nil)
	assert.Equal(t, "[config:config] missing database", bare.Error())
}

func TestOptimisticLockingFailure(t *testing.T) {
	cause := errors.New("0 rows affected")
	err := exception.NewOptimisticLockingFailureException("sequence.Next", "lost update", cause)

	assert.True(t, exception.IsOptimisticLockingFailure(err))
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, exception.ErrSynchronizer))
	assert.False(t, exception.IsOptimisticLockingFailure(errors.New("other")))
	assert.False(t, exception.IsOptimisticLockingFailure(nil))
}

func TestExtractErrorMessagePlainError(t *testing.T) {
	assert.Equal(t, "", exception.ExtractErrorMessage(nil))
	assert.Equal(t, "boom", exception.ExtractErrorMessage(errors.New("boom")))
}
