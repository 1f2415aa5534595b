package synchronizer

import (
	"context"
	"sort"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/reconcile"
	sqlrepo "github.com/tigerroll/intactdb/pkg/intact/infrastructure/repository/sql"
)

// Participants are matched within their owner by interactor, experimental role and
// biological role. Two participants sharing all three collapse into one row.
func newParticipantSync(r *Registry) *entitySync[*model.Participant, sqlrepo.ParticipantEntity] {
	return &entitySync[*model.Participant, sqlrepo.ParticipantEntity]{
		r:    r,
		name: "ParticipantSynchronizer",
		kind: model.KindParticipant,
		probe: r.participantProbe,
		refs: func(ctx context.Context, p *reconcile.Pass, part *model.Participant) error {
			if err := syncRef(ctx, p, r.interactors, &part.Interactor); err != nil {
				return err
			}
			if err := syncRef(ctx, p, r.cvTerms, &part.BiologicalRole); err != nil {
				return err
			}
			return syncRef(ctx, p, r.cvTerms, &part.ExperimentalRole)
		},
		toRow: sqlrepo.FromParticipant,
		diff: func(row *sqlrepo.ParticipantEntity, part *model.Participant) map[string]interface{} {
			c := columns{}
			c.str("interactor_ac", row.InteractorAC, sqlrepo.ACOf(part.Interactor))
			c.str("biological_role_ac", row.BiologicalRoleAC, cvAC(part.BiologicalRole))
			c.str("experimental_role_ac", row.ExperimentalRoleAC, cvAC(part.ExperimentalRole))
			c.num("stoichiometry_min", row.StoichiometryMin, part.StoichiometryMin)
			c.num("stoichiometry_max", row.StoichiometryMax, part.StoichiometryMax)
			return c
		},
		fill: func(part *model.Participant, row *sqlrepo.ParticipantEntity) {
			if part.Interactor == nil && row.InteractorAC != "" {
				part.Interactor = &model.Interactor{AC: row.InteractorAC}
			}
			fillCv(&part.BiologicalRole, row.BiologicalRoleAC)
			fillCv(&part.ExperimentalRole, row.ExperimentalRoleAC)
			fillInt(&part.StoichiometryMin, row.StoichiometryMin)
			fillInt(&part.StoichiometryMax, row.StoichiometryMax)
		},
		children: func(ctx context.Context, p *reconcile.Pass, part *model.Participant, fresh bool) error {
			owner := model.OwnerOf(part)
			if err := r.xrefs.syncList(ctx, p, owner, &part.Xrefs, fresh); err != nil {
				return err
			}
			if err := r.aliases.syncList(ctx, p, owner, &part.Aliases, fresh); err != nil {
				return err
			}
			if err := r.confidences.syncList(ctx, p, owner, &part.Confidences, fresh); err != nil {
				return err
			}
			if err := r.parameters.syncList(ctx, p, owner, &part.Parameters, fresh); err != nil {
				return err
			}
			return syncCollection(ctx, p, r.features, owner, &part.Features)
		},
		purge: func(ctx context.Context, p *reconcile.Pass, ac string) error {
			return r.features.deleteWhere(ctx, p, map[string]interface{}{"participant_ac": ac})
		},
	}
}

// participantProbe only looks the references up: a participant whose interactor or roles
// were never persisted has no counterpart.
func (r *Registry) participantProbe(ctx context.Context, p *reconcile.Pass, part *model.Participant, owner model.Owner) (string, lookup, error) {
	if owner.AC == "" || part.Interactor == nil {
		return "", nil, nil
	}
	interactorAC, err := findRef(ctx, p, r.interactors, part.Interactor)
	if err != nil || interactorAC == "" {
		return "", nil, err
	}
	key := owner.AC + "/" + interactorAC
	query := map[string]interface{}{
		"parent_ac":     owner.AC,
		"parent_kind":   owner.Kind,
		"interactor_ac": interactorAC,
	}
	roles := []struct {
		column string
		term   *model.CvTerm
	}{
		{"experimental_role_ac", part.ExperimentalRole},
		{"biological_role_ac", part.BiologicalRole},
	}
	for _, role := range roles {
		termAC, err := findRef(ctx, p, r.cvTerms, role.term)
		if err != nil {
			return "", nil, err
		}
		if role.term != nil && termAC == "" {
			return "", nil, nil
		}
		query[role.column] = termAC
		key += "/" + termAC
	}
	return key, lowestAC(pluck[sqlrepo.ParticipantEntity](p, query)), nil
}

// lowestAC narrows a lookup to its lowest AC in string order, so that owned rows duplicated
// before they had a natural key resolve deterministically instead of failing as ambiguous.
func lowestAC(find lookup) lookup {
	return func(ctx context.Context) ([]string, error) {
		acs, err := find(ctx)
		if err != nil || len(acs) < 2 {
			return acs, err
		}
		sort.Strings(acs)
		return acs[:1], nil
	}
}

// Features are matched by shortlabel and type within their participant. A feature without
// a shortlabel is matched by AC only.
func newFeatureSync(r *Registry) *entitySync[*model.Feature, sqlrepo.FeatureEntity] {
	return &entitySync[*model.Feature, sqlrepo.FeatureEntity]{
		r:    r,
		name: "FeatureSynchronizer",
		kind: model.KindFeature,
		probe: func(ctx context.Context, p *reconcile.Pass, f *model.Feature, owner model.Owner) (string, lookup, error) {
			if f.ShortLabel == "" || owner.AC == "" {
				return "", nil, nil
			}
			typeAC, err := findRef(ctx, p, r.cvTerms, f.Type)
			if err != nil || (f.Type != nil && typeAC == "") {
				return "", nil, err
			}
			return owner.AC + "/" + f.ShortLabel + "/" + typeAC, lowestAC(pluck[sqlrepo.FeatureEntity](p, map[string]interface{}{
				"participant_ac": owner.AC,
				"short_label":    f.ShortLabel,
				"type_ac":        typeAC,
			})), nil
		},
		refs: func(ctx context.Context, p *reconcile.Pass, f *model.Feature) error {
			return syncRef(ctx, p, r.cvTerms, &f.Type)
		},
		toRow: func(f *model.Feature, owner model.Owner) *sqlrepo.FeatureEntity {
			return sqlrepo.FromFeature(f, owner.AC)
		},
		diff: func(row *sqlrepo.FeatureEntity, f *model.Feature) map[string]interface{} {
			c := columns{}
			c.str("short_label", row.ShortLabel, f.ShortLabel)
			c.str("type_ac", row.TypeAC, cvAC(f.Type))
			return c
		},
		fill: func(f *model.Feature, row *sqlrepo.FeatureEntity) {
			fillStr(&f.ShortLabel, row.ShortLabel)
			fillCv(&f.Type, row.TypeAC)
		},
		children: func(ctx context.Context, p *reconcile.Pass, f *model.Feature, fresh bool) error {
			owner := model.OwnerOf(f)
			if err := r.xrefs.syncList(ctx, p, owner, &f.Xrefs, fresh); err != nil {
				return err
			}
			if err := r.annotations.syncList(ctx, p, owner, &f.Annotations, fresh); err != nil {
				return err
			}
			if err := r.aliases.syncList(ctx, p, owner, &f.Aliases, fresh); err != nil {
				return err
			}
			return r.ranges.syncList(ctx, p, owner, &f.Ranges, fresh)
		},
		purge: func(ctx context.Context, p *reconcile.Pass, ac string) error {
			_, err := sqlrepo.DeleteBy[sqlrepo.RangeEntity](ctx, p.Executor(), map[string]interface{}{"feature_ac": ac})
			return err
		},
	}
}
