package reconcile

import (
	"context"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
)

// Synchronizer reconciles domain objects of one kind with their persisted counterparts.
type Synchronizer[T model.Identifiable] interface {
	// Find returns the AC of the persisted counterpart of obj, or "" when there is none.
	// It fails with a finder error when the lookup is ambiguous or the probe fails.
	Find(ctx context.Context, p *Pass, obj T) (string, error)

	// Synchronize inserts obj or merges it into its counterpart and returns the persisted
	// object. With deep set, nested collections are merged additively as well.
	Synchronize(ctx context.Context, p *Pass, obj T, deep bool) (T, error)

	// Delete removes the counterpart of obj with its exclusively owned children.
	Delete(ctx context.Context, p *Pass, obj T) error
}

// ChildSynchronizer persists children accumulated in the ledger.
type ChildSynchronizer interface {
	// Exists reports whether obj has an AC backed by a persisted row.
	Exists(ctx context.Context, p *Pass, obj model.Identifiable) (bool, error)

	// SynchronizeChildren persists pending children under owner and replaces the owner's
	// collection entries with their persisted counterparts.
	SynchronizeChildren(ctx context.Context, p *Pass, owner model.Identifiable, pending *PendingUpdates) error

	// SynchronizeChildReferences synchronizes only the shared references of pending children.
	SynchronizeChildReferences(ctx context.Context, p *Pass, pending *PendingUpdates) error
}
