package synchronizer

import (
	"context"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/reconcile"
	sqlrepo "github.com/tigerroll/intactdb/pkg/intact/infrastructure/repository/sql"
)

func noColumns[E any, C any](*E, C) map[string]interface{} { return nil }

func newXrefSync(r *Registry) *ownedSync[*model.Xref, sqlrepo.XrefEntity] {
	return &ownedSync[*model.Xref, sqlrepo.XrefEntity]{
		r:       r,
		name:    "XrefSynchronizer",
		kind:    model.KindXref,
		key:     model.XrefKey,
		toModel: sqlrepo.ToXref,
		refs: func(ctx context.Context, p *reconcile.Pass, x *model.Xref) error {
			if err := syncRef(ctx, p, r.cvTerms, &x.Database); err != nil {
				return err
			}
			return syncRef(ctx, p, r.cvTerms, &x.Qualifier)
		},
		toRow: sqlrepo.FromXref,
		diff: func(row *sqlrepo.XrefEntity, x *model.Xref) map[string]interface{} {
			c := columns{}
			c.str("secondary_id", row.SecondaryID, x.SecondaryID)
			c.str("version", row.Version, x.Version)
			return c
		},
		fill: func(x *model.Xref, row *sqlrepo.XrefEntity) {
			fillCv(&x.Database, row.DatabaseAC)
			fillStr(&x.PrimaryID, row.PrimaryID)
			fillStr(&x.SecondaryID, row.SecondaryID)
			fillStr(&x.Version, row.Version)
			fillCv(&x.Qualifier, row.QualifierAC)
		},
		ownedBy: polymorphic,
	}
}

func newAnnotationSync(r *Registry) *ownedSync[*model.Annotation, sqlrepo.AnnotationEntity] {
	return &ownedSync[*model.Annotation, sqlrepo.AnnotationEntity]{
		r:       r,
		name:    "AnnotationSynchronizer",
		kind:    model.KindAnnotation,
		key:     model.AnnotationKey,
		toModel: sqlrepo.ToAnnotation,
		refs: func(ctx context.Context, p *reconcile.Pass, a *model.Annotation) error {
			return syncRef(ctx, p, r.cvTerms, &a.Topic)
		},
		toRow: sqlrepo.FromAnnotation,
		diff:  noColumns[sqlrepo.AnnotationEntity, *model.Annotation],
		fill: func(a *model.Annotation, row *sqlrepo.AnnotationEntity) {
			fillCv(&a.Topic, row.TopicAC)
			fillStr(&a.Value, row.Value)
		},
		ownedBy: polymorphic,
	}
}

func newAliasSync(r *Registry) *ownedSync[*model.Alias, sqlrepo.AliasEntity] {
	return &ownedSync[*model.Alias, sqlrepo.AliasEntity]{
		r:       r,
		name:    "AliasSynchronizer",
		kind:    model.KindAlias,
		key:     model.AliasKey,
		toModel: sqlrepo.ToAlias,
		refs: func(ctx context.Context, p *reconcile.Pass, a *model.Alias) error {
			return syncRef(ctx, p, r.cvTerms, &a.Type)
		},
		toRow: sqlrepo.FromAlias,
		diff:  noColumns[sqlrepo.AliasEntity, *model.Alias],
		fill: func(a *model.Alias, row *sqlrepo.AliasEntity) {
			fillCv(&a.Type, row.TypeAC)
			fillStr(&a.Name, row.Name)
		},
		ownedBy: polymorphic,
	}
}

func newConfidenceSync(r *Registry) *ownedSync[*model.Confidence, sqlrepo.ConfidenceEntity] {
	return &ownedSync[*model.Confidence, sqlrepo.ConfidenceEntity]{
		r:       r,
		name:    "ConfidenceSynchronizer",
		kind:    model.KindConfidence,
		key:     model.ConfidenceKey,
		toModel: sqlrepo.ToConfidence,
		refs: func(ctx context.Context, p *reconcile.Pass, c *model.Confidence) error {
			return syncRef(ctx, p, r.cvTerms, &c.Type)
		},
		toRow: sqlrepo.FromConfidence,
		diff:  noColumns[sqlrepo.ConfidenceEntity, *model.Confidence],
		fill: func(c *model.Confidence, row *sqlrepo.ConfidenceEntity) {
			fillCv(&c.Type, row.TypeAC)
			fillStr(&c.Value, row.Value)
		},
		ownedBy: polymorphic,
	}
}

func newParameterSync(r *Registry) *ownedSync[*model.Parameter, sqlrepo.ParameterEntity] {
	return &ownedSync[*model.Parameter, sqlrepo.ParameterEntity]{
		r:       r,
		name:    "ParameterSynchronizer",
		kind:    model.KindParameter,
		key:     model.ParameterKey,
		toModel: sqlrepo.ToParameter,
		refs: func(ctx context.Context, p *reconcile.Pass, param *model.Parameter) error {
			if err := syncRef(ctx, p, r.cvTerms, &param.Type); err != nil {
				return err
			}
			return syncRef(ctx, p, r.cvTerms, &param.Unit)
		},
		toRow: sqlrepo.FromParameter,
		diff: func(row *sqlrepo.ParameterEntity, param *model.Parameter) map[string]interface{} {
			c := columns{}
			c.float("uncertainty", row.Uncertainty, param.Uncertainty)
			return c
		},
		fill: func(param *model.Parameter, row *sqlrepo.ParameterEntity) {
			fillCv(&param.Type, row.TypeAC)
			fillCv(&param.Unit, row.UnitAC)
			fillFloat(&param.Uncertainty, row.Uncertainty)
		},
		ownedBy: polymorphic,
	}
}

// Ranges belong to a feature through feature_ac rather than the polymorphic parent columns.
func newRangeSync(r *Registry) *ownedSync[*model.Range, sqlrepo.RangeEntity] {
	return &ownedSync[*model.Range, sqlrepo.RangeEntity]{
		r:       r,
		name:    "RangeSynchronizer",
		kind:    model.KindRange,
		key:     model.RangeKey,
		toModel: sqlrepo.ToRange,
		refs: func(ctx context.Context, p *reconcile.Pass, rg *model.Range) error {
			if err := syncRef(ctx, p, r.cvTerms, &rg.StartStatus); err != nil {
				return err
			}
			return syncRef(ctx, p, r.cvTerms, &rg.EndStatus)
		},
		toRow: func(rg *model.Range, owner model.Owner) *sqlrepo.RangeEntity {
			return sqlrepo.FromRange(rg, owner.AC)
		},
		diff: noColumns[sqlrepo.RangeEntity, *model.Range],
		fill: func(rg *model.Range, row *sqlrepo.RangeEntity) {
			fillCv(&rg.StartStatus, row.StartStatusAC)
			fillCv(&rg.EndStatus, row.EndStatusAC)
		},
		ownedBy: func(owner model.Owner) map[string]interface{} {
			return map[string]interface{}{"feature_ac": owner.AC}
		},
	}
}

// Lifecycle events are append-only: they are matched by AC and never updated.
func newEventSync(r *Registry) *ownedSync[*model.LifecycleEvent, sqlrepo.LifecycleEventEntity] {
	return &ownedSync[*model.LifecycleEvent, sqlrepo.LifecycleEventEntity]{
		r:       r,
		name:    "LifecycleEventSynchronizer",
		kind:    model.KindLifecycleEvent,
		key:     func(*model.LifecycleEvent) string { return "" },
		toModel: sqlrepo.ToLifecycleEvent,
		toRow:   sqlrepo.FromLifecycleEvent,
		diff:    noColumns[sqlrepo.LifecycleEventEntity, *model.LifecycleEvent],
		fill: func(ev *model.LifecycleEvent, row *sqlrepo.LifecycleEventEntity) {
			if ev.Type == "" {
				ev.Type = row.EventType
			}
			fillStr(&ev.Actor, row.Actor)
			fillStr(&ev.Note, row.Note)
			if ev.OccurredAt.IsZero() {
				ev.OccurredAt = row.OccurredAt
			}
		},
		ownedBy: polymorphic,
	}
}
