package synchronizer

import (
	"context"
	"fmt"
	"sort"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/reconcile"
	sqlrepo "github.com/tigerroll/intactdb/pkg/intact/infrastructure/repository/sql"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
)

// LoadReleasable returns the publication or complex with the given AC, or nil when
// neither exists. The curation history is not loaded.
func (r *Registry) LoadReleasable(ctx context.Context, p *reconcile.Pass, ac string) (model.Releasable, error) {
	exec := p.Executor()
	pub, err := sqlrepo.FindByAC[sqlrepo.PublicationEntity](ctx, exec, ac)
	if err != nil {
		return nil, exception.NewFinderError("Registry.LoadReleasable", fmt.Sprintf("failed to load publication %s", ac), err)
	}
	if pub != nil {
		obj := sqlrepo.ToPublication(pub)
		p.MarkResolved(obj, ac)
		return obj, nil
	}
	cplx, err := sqlrepo.FindByAC[sqlrepo.ComplexEntity](ctx, exec, ac)
	if err != nil {
		return nil, exception.NewFinderError("Registry.LoadReleasable", fmt.Sprintf("failed to load complex %s", ac), err)
	}
	if cplx != nil {
		obj := sqlrepo.ToComplex(cplx)
		p.MarkResolved(obj, ac)
		return obj, nil
	}
	return nil, nil
}

// SaveCuration writes the status, owner and reviewer of rel. Empty values are written too,
// so that unassign clears the owner.
func (r *Registry) SaveCuration(ctx context.Context, p *reconcile.Pass, rel model.Releasable) error {
	c := rel.CurationState()
	cols := map[string]interface{}{
		"status":   string(c.Status),
		"owner":    c.Owner,
		"reviewer": c.Reviewer,
	}
	var err error
	switch rel.Kind() {
	case model.KindPublication:
		err = sqlrepo.Update[sqlrepo.PublicationEntity](ctx, p.Executor(), rel.GetAC(), cols)
	case model.KindComplex:
		err = sqlrepo.Update[sqlrepo.ComplexEntity](ctx, p.Executor(), rel.GetAC(), cols)
	default:
		return exception.NewSynchronizerError("Registry.SaveCuration", fmt.Sprintf("%s is not releasable", rel.Kind()), nil)
	}
	if err != nil {
		return r.failed(ctx, rel.Kind(), exception.NewSynchronizerError("Registry.SaveCuration",
			fmt.Sprintf("failed to save curation state of %s %s", rel.Kind(), rel.GetAC()), err))
	}
	return nil
}

// History returns the lifecycle events of the releasable with the given AC, oldest first.
func (r *Registry) History(ctx context.Context, p *reconcile.Pass, owner model.Owner) ([]*model.LifecycleEvent, error) {
	rows, err := sqlrepo.FindBy[sqlrepo.LifecycleEventEntity](ctx, p.Executor(), polymorphic(owner))
	if err != nil {
		return nil, exception.NewFinderError("Registry.History",
			fmt.Sprintf("failed to load the history of %s %s", owner.Kind, owner.AC), err)
	}
	events := make([]*model.LifecycleEvent, 0, len(rows))
	for i := range rows {
		events = append(events, sqlrepo.ToLifecycleEvent(&rows[i]))
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].OccurredAt.Before(events[j].OccurredAt) })
	return events, nil
}

// ACsInStatus pages through the releasables of kind in the given status and returns their ACs.
func (r *Registry) ACsInStatus(ctx context.Context, p *reconcile.Pass, kind model.EntityKind, status model.Status, pageSize int) ([]string, error) {
	query := map[string]interface{}{"status": string(status)}
	var acs []string
	var err error
	switch kind {
	case model.KindPublication:
		err = sqlrepo.NewPageIterator[sqlrepo.PublicationEntity](p.Executor(), query, pageSize).
			ForEach(ctx, func(page []sqlrepo.PublicationEntity) error {
				for _, row := range page {
					acs = append(acs, row.AC)
				}
				return nil
			})
	case model.KindComplex:
		err = sqlrepo.NewPageIterator[sqlrepo.ComplexEntity](p.Executor(), query, pageSize).
			ForEach(ctx, func(page []sqlrepo.ComplexEntity) error {
				for _, row := range page {
					acs = append(acs, row.AC)
				}
				return nil
			})
	default:
		return nil, exception.NewFinderError("Registry.ACsInStatus", fmt.Sprintf("%s is not releasable", kind), nil)
	}
	if err != nil {
		return nil, exception.NewFinderError("Registry.ACsInStatus",
			fmt.Sprintf("failed to page %s rows in status '%s'", kind, status), err)
	}
	return acs, nil
}
