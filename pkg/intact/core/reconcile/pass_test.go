package reconcile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/reconcile"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
	mocktx "github.com/tigerroll/intactdb/pkg/intact/test"
)

func newManager() (*mocktx.MockTxManager, *mocktx.MockTx) {
	tm := &mocktx.MockTxManager{}
	tx := &mocktx.MockTx{}
	tm.On("Begin", testify_mock.Anything, testify_mock.Anything).Return(tx, nil)
	return tm, tx
}

func TestRun_CommitsAndRunsHooksOnce(t *testing.T) {
	tm, tx := newManager()
	tm.On("Commit", tx).Return(nil)

	calls := 0
	var committed bool
	var seen *reconcile.Pass
	err := reconcile.Run(context.Background(), tm, func(ctx context.Context, p *reconcile.Pass) error {
		seen = p
		assert.Same(t, tx, p.Executor())
		p.AfterCompletion(func(c bool) { calls++; committed = c })

		cv := &model.CvTerm{AC: "EBI-1"}
		p.MarkResolved(cv, "EBI-1")
		p.CacheProbe(model.KindCvTerm, "MI:0326", "EBI-1")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, committed)

	_, ok := seen.CachedProbe(model.KindCvTerm, "MI:0326")
	assert.False(t, ok, "caches are cleared after completion")
	tm.AssertExpectations(t)
}

func TestRun_RollsBackOnError(t *testing.T) {
	tm, tx := newManager()
	tm.On("Rollback", tx).Return(nil)

	boom := errors.New("boom")
	var committed = true
	err := reconcile.Run(context.Background(), tm, func(ctx context.Context, p *reconcile.Pass) error {
		p.AfterCompletion(func(c bool) { committed = c })
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, committed)
	tm.AssertNotCalled(t, "Commit", tx)
}

func TestRun_RollsBackFailedPass(t *testing.T) {
	tm, tx := newManager()
	tm.On("Rollback", tx).Return(nil)

	mergeErr := exception.NewMergeError("test", "drain failed", errors.New("cause"))
	err := reconcile.Run(context.Background(), tm, func(ctx context.Context, p *reconcile.Pass) error {
		p.Fail(mergeErr)
		p.Fail(errors.New("second failure is ignored"))
		return nil
	})
	assert.ErrorIs(t, err, exception.ErrMerge)
	tm.AssertNotCalled(t, "Commit", tx)
}

func TestRun_BeginFailure(t *testing.T) {
	tm := &mocktx.MockTxManager{}
	tm.On("Begin", testify_mock.Anything, testify_mock.Anything).Return(nil, errors.New("no connection"))

	called := false
	err := reconcile.Run(context.Background(), tm, func(ctx context.Context, p *reconcile.Pass) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestPass_Forget(t *testing.T) {
	p := reconcile.NewPass(&mocktx.MockTx{})
	a := &model.Organism{TaxID: 9606}
	b := &model.Organism{TaxID: 10090}
	p.MarkResolved(a, "EBI-1")
	p.MarkResolved(b, "EBI-2")
	p.CacheProbe(model.KindOrganism, "9606", "EBI-1")

	p.Forget("EBI-1")

	_, ok := p.Resolved(a)
	assert.False(t, ok)
	_, ok = p.CachedProbe(model.KindOrganism, "9606")
	assert.False(t, ok)
	ac, ok := p.Resolved(b)
	assert.True(t, ok)
	assert.Equal(t, "EBI-2", ac)
}
