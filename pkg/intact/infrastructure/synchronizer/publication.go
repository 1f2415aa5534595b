package synchronizer

import (
	"context"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/reconcile"
	sqlrepo "github.com/tigerroll/intactdb/pkg/intact/infrastructure/repository/sql"
)

func newPublicationSync(r *Registry) *entitySync[*model.Publication, sqlrepo.PublicationEntity] {
	return &entitySync[*model.Publication, sqlrepo.PublicationEntity]{
		r:    r,
		name: "PublicationSynchronizer",
		kind: model.KindPublication,
		probe: func(_ context.Context, p *reconcile.Pass, pub *model.Publication, _ model.Owner) (string, lookup, error) {
			if pub.PubmedID == "" {
				return "", nil, nil
			}
			return "pubmed:" + pub.PubmedID, pluck[sqlrepo.PublicationEntity](p, map[string]interface{}{"pubmed_id": pub.PubmedID}), nil
		},
		refs: func(ctx context.Context, p *reconcile.Pass, pub *model.Publication) error {
			return syncRef(ctx, p, r.sources, &pub.Source)
		},
		toRow: func(pub *model.Publication, _ model.Owner) *sqlrepo.PublicationEntity {
			resetCuration(&pub.Curation)
			return sqlrepo.FromPublication(pub)
		},
		diff: func(row *sqlrepo.PublicationEntity, pub *model.Publication) map[string]interface{} {
			c := columns{}
			c.str("pubmed_id", row.PubmedID, pub.PubmedID)
			c.str("title", row.Title, pub.Title)
			c.str("journal", row.Journal, pub.Journal)
			c.num("year", row.Year, pub.Year)
			c.str("source_ac", row.SourceAC, sqlrepo.ACOf(pub.Source))
			return c
		},
		fill: func(pub *model.Publication, row *sqlrepo.PublicationEntity) {
			fillStr(&pub.PubmedID, row.PubmedID)
			fillStr(&pub.Title, row.Title)
			fillStr(&pub.Journal, row.Journal)
			fillInt(&pub.Year, row.Year)
			if pub.Source == nil && row.SourceAC != "" {
				pub.Source = &model.Source{AC: row.SourceAC}
			}
			storedCuration(&pub.Curation, row.Status, row.Owner, row.Reviewer)
		},
		children: func(ctx context.Context, p *reconcile.Pass, pub *model.Publication, fresh bool) error {
			owner := model.OwnerOf(pub)
			if err := r.xrefs.syncList(ctx, p, owner, &pub.Xrefs, fresh); err != nil {
				return err
			}
			if err := r.annotations.syncList(ctx, p, owner, &pub.Annotations, fresh); err != nil {
				return err
			}
			if err := r.events.syncList(ctx, p, owner, &pub.Events, fresh); err != nil {
				return err
			}
			return syncCollection(ctx, p, r.experiments, owner, &pub.Experiments)
		},
		purge: func(ctx context.Context, p *reconcile.Pass, ac string) error {
			return r.experiments.deleteWhere(ctx, p, map[string]interface{}{"publication_ac": ac})
		},
	}
}

// Experiments are identified by shortlabel within their publication.
func newExperimentSync(r *Registry) *entitySync[*model.Experiment, sqlrepo.ExperimentEntity] {
	return &entitySync[*model.Experiment, sqlrepo.ExperimentEntity]{
		r:    r,
		name: "ExperimentSynchronizer",
		kind: model.KindExperiment,
		owner: func(ctx context.Context, p *reconcile.Pass, e *model.Experiment, create bool) (model.Owner, error) {
			return parentOwner(ctx, p, r.publications, &e.Publication, create)
		},
		probe: func(_ context.Context, p *reconcile.Pass, e *model.Experiment, owner model.Owner) (string, lookup, error) {
			if e.ShortLabel == "" || owner.AC == "" {
				return "", nil, nil
			}
			return owner.AC + "/" + e.ShortLabel, pluck[sqlrepo.ExperimentEntity](p, map[string]interface{}{
				"short_label":    e.ShortLabel,
				"publication_ac": owner.AC,
			}), nil
		},
		refs: func(ctx context.Context, p *reconcile.Pass, e *model.Experiment) error {
			if err := syncRef(ctx, p, r.organisms, &e.HostOrganism); err != nil {
				return err
			}
			if err := syncRef(ctx, p, r.cvTerms, &e.DetectionMethod); err != nil {
				return err
			}
			return syncRef(ctx, p, r.cvTerms, &e.IdentificationMethod)
		},
		toRow: func(e *model.Experiment, owner model.Owner) *sqlrepo.ExperimentEntity {
			return sqlrepo.FromExperiment(e, owner.AC)
		},
		diff: func(row *sqlrepo.ExperimentEntity, e *model.Experiment) map[string]interface{} {
			c := columns{}
			c.str("short_label", row.ShortLabel, e.ShortLabel)
			c.str("host_organism_ac", row.HostOrganismAC, organismAC(e.HostOrganism))
			c.str("detection_method_ac", row.DetectionMethodAC, cvAC(e.DetectionMethod))
			c.str("identification_method_ac", row.IdentificationMethodAC, cvAC(e.IdentificationMethod))
			return c
		},
		fill: func(e *model.Experiment, row *sqlrepo.ExperimentEntity) {
			fillStr(&e.ShortLabel, row.ShortLabel)
			fillOrganism(&e.HostOrganism, row.HostOrganismAC)
			fillCv(&e.DetectionMethod, row.DetectionMethodAC)
			fillCv(&e.IdentificationMethod, row.IdentificationMethodAC)
		},
		children: func(ctx context.Context, p *reconcile.Pass, e *model.Experiment, fresh bool) error {
			owner := model.OwnerOf(e)
			if err := r.xrefs.syncList(ctx, p, owner, &e.Xrefs, fresh); err != nil {
				return err
			}
			if err := r.annotations.syncList(ctx, p, owner, &e.Annotations, fresh); err != nil {
				return err
			}
			return syncCollection(ctx, p, r.interactions, owner, &e.Interactions)
		},
		purge: func(ctx context.Context, p *reconcile.Pass, ac string) error {
			return r.interactions.deleteWhere(ctx, p, map[string]interface{}{"experiment_ac": ac})
		},
	}
}

// Interactions are identified by shortlabel within their experiment.
func newInteractionSync(r *Registry) *entitySync[*model.Interaction, sqlrepo.InteractionEntity] {
	return &entitySync[*model.Interaction, sqlrepo.InteractionEntity]{
		r:    r,
		name: "InteractionSynchronizer",
		kind: model.KindInteraction,
		owner: func(ctx context.Context, p *reconcile.Pass, i *model.Interaction, create bool) (model.Owner, error) {
			return parentOwner(ctx, p, r.experiments, &i.Experiment, create)
		},
		probe: func(_ context.Context, p *reconcile.Pass, i *model.Interaction, owner model.Owner) (string, lookup, error) {
			if i.ShortLabel == "" || owner.AC == "" {
				return "", nil, nil
			}
			return owner.AC + "/" + i.ShortLabel, pluck[sqlrepo.InteractionEntity](p, map[string]interface{}{
				"short_label":   i.ShortLabel,
				"experiment_ac": owner.AC,
			}), nil
		},
		refs: func(ctx context.Context, p *reconcile.Pass, i *model.Interaction) error {
			return syncRef(ctx, p, r.cvTerms, &i.InteractionType)
		},
		toRow: func(i *model.Interaction, owner model.Owner) *sqlrepo.InteractionEntity {
			return sqlrepo.FromInteraction(i, owner.AC)
		},
		diff: func(row *sqlrepo.InteractionEntity, i *model.Interaction) map[string]interface{} {
			c := columns{}
			c.str("short_label", row.ShortLabel, i.ShortLabel)
			c.str("interaction_type_ac", row.InteractionTypeAC, cvAC(i.InteractionType))
			return c
		},
		fill: func(i *model.Interaction, row *sqlrepo.InteractionEntity) {
			fillStr(&i.ShortLabel, row.ShortLabel)
			fillCv(&i.InteractionType, row.InteractionTypeAC)
		},
		children: func(ctx context.Context, p *reconcile.Pass, i *model.Interaction, fresh bool) error {
			owner := model.OwnerOf(i)
			if err := r.xrefs.syncList(ctx, p, owner, &i.Xrefs, fresh); err != nil {
				return err
			}
			if err := r.annotations.syncList(ctx, p, owner, &i.Annotations, fresh); err != nil {
				return err
			}
			if err := r.confidences.syncList(ctx, p, owner, &i.Confidences, fresh); err != nil {
				return err
			}
			if err := r.parameters.syncList(ctx, p, owner, &i.Parameters, fresh); err != nil {
				return err
			}
			return syncCollection(ctx, p, r.participants, owner, &i.Participants)
		},
		purge: func(ctx context.Context, p *reconcile.Pass, ac string) error {
			return r.participants.deleteWhere(ctx, p, sqlrepo.OwnedBy(ac, model.KindInteraction))
		},
	}
}

// parentOwner resolves the back-reference of a standalone experiment or interaction. The
// parent is synchronized shallowly when create is set and only looked up otherwise.
func parentOwner[X any, P interface {
	*X
	model.Identifiable
}, E sqlrepo.Entity](ctx context.Context, p *reconcile.Pass, s *entitySync[P, E], parent *P, create bool) (model.Owner, error) {
	if *parent == nil {
		return model.Owner{Kind: s.kind}, nil
	}
	if create {
		if err := syncRef(ctx, p, s, parent); err != nil {
			return model.Owner{}, err
		}
		return model.OwnerOf(*parent), nil
	}
	ac, err := findRef(ctx, p, s, *parent)
	if err != nil {
		return model.Owner{}, err
	}
	return model.Owner{AC: ac, Kind: s.kind}, nil
}
