package synchronizer

import (
	"context"
	"fmt"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/reconcile"
	sqlrepo "github.com/tigerroll/intactdb/pkg/intact/infrastructure/repository/sql"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
	logger "github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// lookup returns the ACs of the rows matching a natural key.
type lookup func(ctx context.Context) ([]string, error)

// entitySync runs the shared resolution protocol for one top-level kind. The function
// fields describe what differs between kinds.
type entitySync[T model.Identifiable, E sqlrepo.Entity] struct {
	r    *Registry
	name string
	kind model.EntityKind

	// probe returns the natural key of obj and how to look it up. An empty key means obj
	// can only be found by AC.
	probe func(ctx context.Context, p *reconcile.Pass, obj T, owner model.Owner) (string, lookup, error)
	// owner resolves the owner of a standalone obj. create selects synchronize over find.
	owner func(ctx context.Context, p *reconcile.Pass, obj T, create bool) (model.Owner, error)
	// refs synchronizes the shared references of obj shallowly.
	refs  func(ctx context.Context, p *reconcile.Pass, obj T) error
	toRow func(obj T, owner model.Owner) *E
	// diff returns the columns whose stored value a non-empty incoming value changes.
	diff func(row *E, obj T) map[string]interface{}
	// fill copies stored values into the empty fields of obj.
	fill func(obj T, row *E)
	// children synchronizes owned collections. fresh is set right after the insert of obj.
	children func(ctx context.Context, p *reconcile.Pass, obj T, fresh bool) error
	// purge deletes the exclusively owned children of the row with the given AC.
	purge func(ctx context.Context, p *reconcile.Pass, ac string) error
}

func pluck[E sqlrepo.Entity](p *reconcile.Pass, query map[string]interface{}) lookup {
	return func(ctx context.Context) ([]string, error) {
		return sqlrepo.PluckAC[E](ctx, p.Executor(), query)
	}
}

// find locates the counterpart of obj: pass identity map, then AC, then natural key.
// It also returns the natural key so that an insert can seed the probe cache.
func (s *entitySync[T, E]) find(ctx context.Context, p *reconcile.Pass, obj T, owner model.Owner) (*E, string, error) {
	op := s.name + ".Find"
	exec := p.Executor()

	if ac, ok := p.Resolved(obj); ok {
		row, err := sqlrepo.FindByAC[E](ctx, exec, ac)
		if err != nil {
			return nil, "", exception.NewFinderError(op, "failed to load resolved counterpart", err)
		}
		if row != nil {
			return row, "", nil
		}
	}

	if ac := obj.GetAC(); ac != "" {
		row, err := sqlrepo.FindByAC[E](ctx, exec, ac)
		if err != nil {
			return nil, "", exception.NewFinderError(op, fmt.Sprintf("failed to load %s by AC %s", s.kind, ac), err)
		}
		if row != nil {
			return row, "", nil
		}
		logger.Debugf("%s: AC %s has no persisted row, probing by natural key.", op, ac)
	}

	if s.probe == nil {
		return nil, "", nil
	}
	key, find, err := s.probe(ctx, p, obj, owner)
	if err != nil {
		return nil, "", asKind(err, exception.KindFinder, op, "natural key probe failed")
	}
	if key == "" {
		return nil, "", nil
	}

	if ac, ok := p.CachedProbe(s.kind, key); ok {
		row, err := sqlrepo.FindByAC[E](ctx, exec, ac)
		if err != nil {
			return nil, key, exception.NewFinderError(op, "failed to load cached counterpart", err)
		}
		if row != nil {
			return row, key, nil
		}
	}

	acs, err := find(ctx)
	if err != nil {
		return nil, key, exception.NewFinderError(op, fmt.Sprintf("failed to probe %s '%s'", s.kind, key), err)
	}
	switch len(acs) {
	case 0:
		return nil, key, nil
	case 1:
		row, err := sqlrepo.FindByAC[E](ctx, exec, acs[0])
		if err != nil {
			return nil, key, exception.NewFinderError(op, "failed to load probed counterpart", err)
		}
		if row != nil {
			p.CacheProbe(s.kind, key, acs[0])
		}
		return row, key, nil
	default:
		return nil, key, exception.NewFinderError(op,
			fmt.Sprintf("%d persisted %s rows match '%s': %v", len(acs), s.kind, key, acs),
			exception.ErrAmbiguousMatch)
	}
}

// Find implements reconcile.Synchronizer.
func (s *entitySync[T, E]) Find(ctx context.Context, p *reconcile.Pass, obj T) (string, error) {
	owner, err := s.resolveOwner(ctx, p, obj, false)
	if err != nil {
		return "", err
	}
	row, _, err := s.find(ctx, p, obj, owner)
	if err != nil || row == nil {
		return "", err
	}
	return (*row).GetAC(), nil
}

func (s *entitySync[T, E]) resolveOwner(ctx context.Context, p *reconcile.Pass, obj T, create bool) (model.Owner, error) {
	if s.owner == nil {
		return model.Owner{}, nil
	}
	return s.owner(ctx, p, obj, create)
}

// Synchronize implements reconcile.Synchronizer.
func (s *entitySync[T, E]) Synchronize(ctx context.Context, p *reconcile.Pass, obj T, deep bool) (T, error) {
	if ac, ok := p.Resolved(obj); ok {
		return s.alreadyResolved(ctx, obj, ac), nil
	}
	owner, err := s.resolveOwner(ctx, p, obj, true)
	if err != nil {
		return obj, err
	}
	return s.synchronizeUnder(ctx, p, obj, owner, deep)
}

// alreadyResolved returns obj, resolved earlier in the pass, as a reuse of its counterpart.
func (s *entitySync[T, E]) alreadyResolved(ctx context.Context, obj T, ac string) T {
	obj.SetAC(ac)
	s.r.recorder.RecordOutcome(ctx, s.kind, model.OutcomeReused)
	return obj
}

func (s *entitySync[T, E]) synchronizeUnder(ctx context.Context, p *reconcile.Pass, obj T, owner model.Owner, deep bool) (T, error) {
	if ac, ok := p.Resolved(obj); ok {
		return s.alreadyResolved(ctx, obj, ac), nil
	}
	ctx, end := s.r.tracer.StartSpan(ctx, "synchronize."+string(s.kind), map[string]string{"ac": obj.GetAC()})
	defer end()

	row, key, err := s.find(ctx, p, obj, owner)
	if err != nil {
		return obj, s.r.failed(ctx, s.kind, err)
	}
	if s.refs != nil {
		if err := s.refs(ctx, p, obj); err != nil {
			return obj, err
		}
	}

	var outcome model.Outcome
	if row == nil {
		ac, err := s.r.acs.Next(ctx, p.Executor())
		if err != nil {
			return obj, s.r.failed(ctx, s.kind, asKind(err, exception.KindPersister, s.name+".Synchronize", "failed to allocate an accession"))
		}
		obj.SetAC(ac)
		if err := sqlrepo.Insert(ctx, p.Executor(), s.toRow(obj, owner)); err != nil {
			obj.SetAC("")
			return obj, s.r.failed(ctx, s.kind, exception.NewPersisterError(s.name+".Synchronize",
				fmt.Sprintf("failed to insert %s", s.kind), err))
		}
		p.MarkResolved(obj, ac)
		if key != "" {
			p.CacheProbe(s.kind, key, ac)
		}
		outcome = model.OutcomeInserted
		if s.children != nil {
			if err := s.children(ctx, p, obj, true); err != nil {
				return obj, err
			}
		}
	} else {
		ac := (*row).GetAC()
		obj.SetAC(ac)
		p.MarkResolved(obj, ac)
		outcome = model.OutcomeReused
		if cols := s.diff(row, obj); len(cols) > 0 {
			if err := sqlrepo.Update[E](ctx, p.Executor(), ac, cols); err != nil {
				return obj, s.r.failed(ctx, s.kind, exception.NewSynchronizerError(s.name+".Synchronize",
					fmt.Sprintf("failed to merge %s %s", s.kind, ac), err))
			}
			outcome = model.OutcomeMerged
		}
		s.fill(obj, row)
		if deep && s.children != nil {
			if err := s.children(ctx, p, obj, false); err != nil {
				return obj, err
			}
		}
	}

	s.r.recorder.RecordOutcome(ctx, s.kind, outcome)
	logger.Debugf("%s: %s %s (%s).", s.name, outcome, s.kind, obj.GetAC())
	return obj, nil
}

// Delete implements reconcile.Synchronizer.
func (s *entitySync[T, E]) Delete(ctx context.Context, p *reconcile.Pass, obj T) error {
	ctx, end := s.r.tracer.StartSpan(ctx, "delete."+string(s.kind), map[string]string{"ac": obj.GetAC()})
	defer end()

	owner, err := s.resolveOwner(ctx, p, obj, false)
	if err != nil {
		return err
	}
	row, _, err := s.find(ctx, p, obj, owner)
	if err != nil {
		return s.r.failed(ctx, s.kind, err)
	}
	if row == nil {
		return s.r.failed(ctx, s.kind, exception.NewFinderError(s.name+".Delete",
			fmt.Sprintf("cannot delete %s '%s'", s.kind, obj.GetAC()), exception.ErrCounterpartNotFound))
	}
	if err := s.deleteRow(ctx, p, (*row).GetAC()); err != nil {
		return s.r.failed(ctx, s.kind, err)
	}
	obj.SetAC("")
	return nil
}

// deleteRow removes the row with the given AC, its owned children and its polymorphic children.
func (s *entitySync[T, E]) deleteRow(ctx context.Context, p *reconcile.Pass, ac string) error {
	op := s.name + ".Delete"
	if s.purge != nil {
		if err := s.purge(ctx, p, ac); err != nil {
			return err
		}
	}
	if _, err := sqlrepo.DeleteOwned(ctx, p.Executor(), ac, s.kind); err != nil {
		return exception.NewPersisterError(op, fmt.Sprintf("failed to delete children of %s %s", s.kind, ac), err)
	}
	n, err := sqlrepo.DeleteBy[E](ctx, p.Executor(), sqlrepo.ByAC(ac))
	if err != nil {
		return exception.NewPersisterError(op, fmt.Sprintf("failed to delete %s %s", s.kind, ac), err)
	}
	p.Forget(ac)
	if n > 0 {
		s.r.recorder.RecordOutcome(ctx, s.kind, model.OutcomeDeleted)
	}
	logger.Debugf("%s: deleted %s %s.", s.name, s.kind, ac)
	return nil
}

// deleteWhere deletes every row of this kind matching query through deleteRow.
func (s *entitySync[T, E]) deleteWhere(ctx context.Context, p *reconcile.Pass, query map[string]interface{}) error {
	acs, err := sqlrepo.PluckAC[E](ctx, p.Executor(), query)
	if err != nil {
		return exception.NewFinderError(s.name+".Delete", fmt.Sprintf("failed to list owned %s rows", s.kind), err)
	}
	for _, ac := range acs {
		if err := s.deleteRow(ctx, p, ac); err != nil {
			return err
		}
	}
	return nil
}

// syncCollection synchronizes each element of list under owner and replaces it with its
// counterpart. Elements resolving to an AC already present are dropped.
func syncCollection[X any, P interface {
	*X
	model.Identifiable
}, E sqlrepo.Entity](ctx context.Context, p *reconcile.Pass, s *entitySync[P, E], owner model.Owner, list *[]P) error {
	out := make([]P, 0, len(*list))
	seen := make(map[string]bool, len(*list))
	for _, child := range *list {
		if child == nil {
			continue
		}
		synced, err := s.synchronizeUnder(ctx, p, child, owner, true)
		if err != nil {
			return err
		}
		ac := synced.GetAC()
		if seen[ac] {
			continue
		}
		seen[ac] = true
		out = append(out, synced)
	}
	*list = out
	return nil
}

// syncRef synchronizes a shared reference shallowly and replaces it with its counterpart.
func syncRef[X any, P interface {
	*X
	model.Identifiable
}, E sqlrepo.Entity](ctx context.Context, p *reconcile.Pass, s *entitySync[P, E], ref *P) error {
	if *ref == nil {
		return nil
	}
	synced, err := s.Synchronize(ctx, p, *ref, false)
	if err != nil {
		return err
	}
	*ref = synced
	return nil
}

// findRef returns the AC of the counterpart of a reference without writing anything.
func findRef[X any, P interface {
	*X
	model.Identifiable
}, E sqlrepo.Entity](ctx context.Context, p *reconcile.Pass, s *entitySync[P, E], ref P) (string, error) {
	if ref == nil {
		return "", nil
	}
	if ac, ok := p.Resolved(ref); ok {
		return ac, nil
	}
	return s.Find(ctx, p, ref)
}

// asKind keeps err when it already carries a kind, otherwise wraps it into the given kind.
func asKind(err error, kind exception.Kind, module, message string) error {
	if exception.KindOf(err) != "" {
		return err
	}
	return exception.NewIntactError(kind, module, message, err)
}
