package test

import (
	"context"

	"github.com/stretchr/testify/mock"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/reconcile"
)

// MockStore is a mock implementation of lifecycle.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) LoadReleasable(ctx context.Context, p *reconcile.Pass, ac string) (model.Releasable, error) {
	args := m.Called(ctx, p, ac)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Releasable), args.Error(1)
}

func (m *MockStore) SaveCuration(ctx context.Context, p *reconcile.Pass, rel model.Releasable) error {
	return m.Called(ctx, p, rel).Error(0)
}

func (m *MockStore) History(ctx context.Context, p *reconcile.Pass, owner model.Owner) ([]*model.LifecycleEvent, error) {
	args := m.Called(ctx, p, owner)
	events, _ := args.Get(0).([]*model.LifecycleEvent)
	return events, args.Error(1)
}

func (m *MockStore) ACsInStatus(ctx context.Context, p *reconcile.Pass, kind model.EntityKind, status model.Status, pageSize int) ([]string, error) {
	args := m.Called(ctx, p, kind, status, pageSize)
	acs, _ := args.Get(0).([]string)
	return acs, args.Error(1)
}

// MockChildSynchronizer is a mock implementation of reconcile.ChildSynchronizer.
type MockChildSynchronizer struct {
	mock.Mock
}

func (m *MockChildSynchronizer) Exists(ctx context.Context, p *reconcile.Pass, obj model.Identifiable) (bool, error) {
	args := m.Called(ctx, p, obj)
	return args.Bool(0), args.Error(1)
}

func (m *MockChildSynchronizer) SynchronizeChildren(ctx context.Context, p *reconcile.Pass, owner model.Identifiable, pending *reconcile.PendingUpdates) error {
	return m.Called(ctx, p, owner, pending).Error(0)
}

func (m *MockChildSynchronizer) SynchronizeChildReferences(ctx context.Context, p *reconcile.Pass, pending *reconcile.PendingUpdates) error {
	return m.Called(ctx, p, pending).Error(0)
}

var _ reconcile.ChildSynchronizer = (*MockChildSynchronizer)(nil)
