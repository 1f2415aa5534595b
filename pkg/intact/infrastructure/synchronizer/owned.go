package synchronizer

import (
	"context"
	"fmt"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/reconcile"
	sqlrepo "github.com/tigerroll/intactdb/pkg/intact/infrastructure/repository/sql"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
)

// ownedSync reconciles children that are matched within their owner only: xrefs,
// annotations, aliases, confidences, parameters, ranges and lifecycle events.
type ownedSync[C model.Identifiable, E sqlrepo.Entity] struct {
	r    *Registry
	name string
	kind model.EntityKind

	// key is the natural key of a child within its owner. Empty means AC only.
	key     func(child C) string
	toModel func(row *E) C
	refs    func(ctx context.Context, p *reconcile.Pass, child C) error
	toRow   func(child C, owner model.Owner) *E
	diff    func(row *E, child C) map[string]interface{}
	fill    func(child C, row *E)
	// ownedBy is the query selecting the children of owner.
	ownedBy func(owner model.Owner) map[string]interface{}
}

func polymorphic(owner model.Owner) map[string]interface{} {
	return sqlrepo.OwnedBy(owner.AC, owner.Kind)
}

// syncAll reconciles list under owner. The result is aligned with list: each entry is the
// counterpart of the child at the same index. Unless fresh, children are matched against
// the persisted children of owner; unmatched children are inserted and existing children
// are never removed.
func (s *ownedSync[C, E]) syncAll(ctx context.Context, p *reconcile.Pass, owner model.Owner, list []C, fresh bool) ([]C, error) {
	op := s.name + ".Synchronize"
	exec := p.Executor()

	byAC := make(map[string]*E)
	byKey := make(map[string]*E)
	if !fresh {
		rows, err := sqlrepo.FindBy[E](ctx, exec, s.ownedBy(owner))
		if err != nil {
			return nil, s.r.failed(ctx, s.kind, exception.NewFinderError(s.name+".Find",
				fmt.Sprintf("failed to load %s children of %s %s", s.kind, owner.Kind, owner.AC), err))
		}
		for i := range rows {
			row := &rows[i]
			byAC[(*row).GetAC()] = row
			if k := s.key(s.toModel(row)); k != "" {
				if _, dup := byKey[k]; !dup {
					byKey[k] = row
				}
			}
		}
	}

	canonical := make(map[string]C, len(list))
	out := make([]C, len(list))
	for i, child := range list {
		if ac, ok := p.Resolved(child); ok {
			if first, seen := canonical[ac]; seen {
				out[i] = first
			} else {
				canonical[ac] = child
				out[i] = child
			}
			s.r.recorder.RecordOutcome(ctx, s.kind, model.OutcomeReused)
			continue
		}
		if s.refs != nil {
			if err := s.refs(ctx, p, child); err != nil {
				return nil, err
			}
		}

		var match *E
		if ac := child.GetAC(); ac != "" {
			match = byAC[ac]
		}
		key := s.key(child)
		if match == nil && key != "" {
			match = byKey[key]
		}

		var outcome model.Outcome
		if match == nil {
			ac, err := s.r.acs.Next(ctx, exec)
			if err != nil {
				return nil, s.r.failed(ctx, s.kind, asKind(err, exception.KindPersister, op, "failed to allocate an accession"))
			}
			child.SetAC(ac)
			row := s.toRow(child, owner)
			if err := sqlrepo.Insert(ctx, exec, row); err != nil {
				child.SetAC("")
				return nil, s.r.failed(ctx, s.kind, exception.NewPersisterError(op,
					fmt.Sprintf("failed to insert %s under %s %s", s.kind, owner.Kind, owner.AC), err))
			}
			byAC[ac] = row
			if key != "" {
				byKey[key] = row
			}
			outcome = model.OutcomeInserted
		} else {
			ac := (*match).GetAC()
			child.SetAC(ac)
			outcome = model.OutcomeReused
			if cols := s.diff(match, child); len(cols) > 0 {
				if err := sqlrepo.Update[E](ctx, exec, ac, cols); err != nil {
					return nil, s.r.failed(ctx, s.kind, exception.NewSynchronizerError(op,
						fmt.Sprintf("failed to merge %s %s", s.kind, ac), err))
				}
				outcome = model.OutcomeMerged
			}
			s.fill(child, match)
		}
		p.MarkResolved(child, child.GetAC())
		s.r.recorder.RecordOutcome(ctx, s.kind, outcome)

		if first, seen := canonical[child.GetAC()]; seen {
			out[i] = first
		} else {
			canonical[child.GetAC()] = child
			out[i] = child
		}
	}
	return out, nil
}

// syncList reconciles *list under owner and replaces it with the deduplicated counterparts.
func (s *ownedSync[C, E]) syncList(ctx context.Context, p *reconcile.Pass, owner model.Owner, list *[]C, fresh bool) error {
	synced, err := s.syncAll(ctx, p, owner, nonNil(*list), fresh)
	if err != nil {
		return err
	}
	*list = dedupe(synced)
	return nil
}

// merge reconciles pending under owner and folds the counterparts into *list: a pending
// entry already in *list is replaced in place, others are appended.
func (s *ownedSync[C, E]) merge(ctx context.Context, p *reconcile.Pass, owner model.Owner, list *[]C, pending []C) error {
	pending = nonNil(pending)
	synced, err := s.syncAll(ctx, p, owner, pending, false)
	if err != nil {
		return err
	}
	*list = dedupe(fold(*list, pending, synced))
	return nil
}

// refsOnly synchronizes the references of pending children without persisting them.
func (s *ownedSync[C, E]) refsOnly(ctx context.Context, p *reconcile.Pass, pending []C) error {
	if s.refs == nil {
		return nil
	}
	for _, child := range nonNil(pending) {
		if err := s.refs(ctx, p, child); err != nil {
			return err
		}
	}
	return nil
}

func isNil(obj model.Identifiable) bool {
	if obj == nil {
		return true
	}
	switch o := obj.(type) {
	case *model.Xref:
		return o == nil
	case *model.Annotation:
		return o == nil
	case *model.Alias:
		return o == nil
	case *model.Confidence:
		return o == nil
	case *model.Parameter:
		return o == nil
	case *model.Range:
		return o == nil
	case *model.LifecycleEvent:
		return o == nil
	case *model.Participant:
		return o == nil
	}
	return false
}

func nonNil[C model.Identifiable](list []C) []C {
	out := make([]C, 0, len(list))
	for _, c := range list {
		if !isNil(c) {
			out = append(out, c)
		}
	}
	return out
}

// fold replaces each pending entry of list by its counterpart, appending the ones missing.
func fold[C model.Identifiable](list, pending, synced []C) []C {
	index := make(map[model.Identifiable]int, len(list))
	for i, c := range list {
		index[c] = i
	}
	out := append([]C(nil), list...)
	for i, c := range pending {
		if at, ok := index[c]; ok {
			out[at] = synced[i]
		} else {
			out = append(out, synced[i])
		}
	}
	return out
}

// dedupe drops later entries sharing an AC with an earlier one. Transient entries are kept.
func dedupe[C model.Identifiable](list []C) []C {
	out := make([]C, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, c := range list {
		if isNil(c) {
			continue
		}
		if ac := c.GetAC(); ac != "" {
			if seen[ac] {
				continue
			}
			seen[ac] = true
		}
		out = append(out, c)
	}
	return out
}
