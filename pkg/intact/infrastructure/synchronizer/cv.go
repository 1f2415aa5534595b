package synchronizer

import (
	"context"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/reconcile"
	sqlrepo "github.com/tigerroll/intactdb/pkg/intact/infrastructure/repository/sql"
)

// CV terms are identified by their MI, MOD or PAR identifier, in that order, and fall
// back to shortlabel within their object class.
func newCvTermSync(r *Registry) *entitySync[*model.CvTerm, sqlrepo.CvTermEntity] {
	return &entitySync[*model.CvTerm, sqlrepo.CvTermEntity]{
		r:    r,
		name: "CvTermSynchronizer",
		kind: model.KindCvTerm,
		probe: func(_ context.Context, p *reconcile.Pass, t *model.CvTerm, _ model.Owner) (string, lookup, error) {
			switch {
			case t.MIIdentifier != "":
				return "mi:" + t.MIIdentifier, pluck[sqlrepo.CvTermEntity](p, map[string]interface{}{"mi_identifier": t.MIIdentifier}), nil
			case t.MODIdentifier != "":
				return "mod:" + t.MODIdentifier, pluck[sqlrepo.CvTermEntity](p, map[string]interface{}{"mod_identifier": t.MODIdentifier}), nil
			case t.PARIdentifier != "":
				return "par:" + t.PARIdentifier, pluck[sqlrepo.CvTermEntity](p, map[string]interface{}{"par_identifier": t.PARIdentifier}), nil
			case t.ShortLabel != "":
				return "label:" + t.ObjClass + "/" + t.ShortLabel, pluck[sqlrepo.CvTermEntity](p, map[string]interface{}{
					"short_label": t.ShortLabel,
					"obj_class":   t.ObjClass,
				}), nil
			}
			return "", nil, nil
		},
		toRow: func(t *model.CvTerm, _ model.Owner) *sqlrepo.CvTermEntity { return sqlrepo.FromCvTerm(t) },
		diff: func(row *sqlrepo.CvTermEntity, t *model.CvTerm) map[string]interface{} {
			c := columns{}
			c.str("short_label", row.ShortLabel, t.ShortLabel)
			c.str("full_name", row.FullName, t.FullName)
			c.str("mi_identifier", row.MIIdentifier, t.MIIdentifier)
			c.str("mod_identifier", row.MODIdentifier, t.MODIdentifier)
			c.str("par_identifier", row.PARIdentifier, t.PARIdentifier)
			c.str("obj_class", row.ObjClass, t.ObjClass)
			return c
		},
		fill: func(t *model.CvTerm, row *sqlrepo.CvTermEntity) {
			fillStr(&t.ShortLabel, row.ShortLabel)
			fillStr(&t.FullName, row.FullName)
			fillStr(&t.MIIdentifier, row.MIIdentifier)
			fillStr(&t.MODIdentifier, row.MODIdentifier)
			fillStr(&t.PARIdentifier, row.PARIdentifier)
			fillStr(&t.ObjClass, row.ObjClass)
		},
		children: func(ctx context.Context, p *reconcile.Pass, t *model.CvTerm, fresh bool) error {
			owner := model.OwnerOf(t)
			if err := r.annotations.syncList(ctx, p, owner, &t.Annotations, fresh); err != nil {
				return err
			}
			return r.aliases.syncList(ctx, p, owner, &t.Aliases, fresh)
		},
	}
}

func newOrganismSync(r *Registry) *entitySync[*model.Organism, sqlrepo.OrganismEntity] {
	return &entitySync[*model.Organism, sqlrepo.OrganismEntity]{
		r:    r,
		name: "OrganismSynchronizer",
		kind: model.KindOrganism,
		probe: func(_ context.Context, p *reconcile.Pass, o *model.Organism, _ model.Owner) (string, lookup, error) {
			if o.TaxID == 0 {
				return "", nil, nil
			}
			return "taxid:" + o.TaxIDString(), pluck[sqlrepo.OrganismEntity](p, map[string]interface{}{"tax_id": o.TaxID}), nil
		},
		toRow: func(o *model.Organism, _ model.Owner) *sqlrepo.OrganismEntity { return sqlrepo.FromOrganism(o) },
		diff: func(row *sqlrepo.OrganismEntity, o *model.Organism) map[string]interface{} {
			c := columns{}
			c.num("tax_id", row.TaxID, o.TaxID)
			c.str("common_name", row.CommonName, o.CommonName)
			c.str("scientific_name", row.ScientificName, o.ScientificName)
			return c
		},
		fill: func(o *model.Organism, row *sqlrepo.OrganismEntity) {
			fillInt(&o.TaxID, row.TaxID)
			fillStr(&o.CommonName, row.CommonName)
			fillStr(&o.ScientificName, row.ScientificName)
		},
		children: func(ctx context.Context, p *reconcile.Pass, o *model.Organism, fresh bool) error {
			return r.aliases.syncList(ctx, p, model.OwnerOf(o), &o.Aliases, fresh)
		},
	}
}

// Sources are identified by MI identifier, then by shortlabel.
func newSourceSync(r *Registry) *entitySync[*model.Source, sqlrepo.SourceEntity] {
	return &entitySync[*model.Source, sqlrepo.SourceEntity]{
		r:    r,
		name: "SourceSynchronizer",
		kind: model.KindSource,
		probe: func(_ context.Context, p *reconcile.Pass, s *model.Source, _ model.Owner) (string, lookup, error) {
			switch {
			case s.MIIdentifier != "":
				return "mi:" + s.MIIdentifier, pluck[sqlrepo.SourceEntity](p, map[string]interface{}{"mi_identifier": s.MIIdentifier}), nil
			case s.ShortLabel != "":
				return "label:" + s.ShortLabel, pluck[sqlrepo.SourceEntity](p, map[string]interface{}{"short_label": s.ShortLabel}), nil
			}
			return "", nil, nil
		},
		toRow: func(s *model.Source, _ model.Owner) *sqlrepo.SourceEntity { return sqlrepo.FromSource(s) },
		diff: func(row *sqlrepo.SourceEntity, s *model.Source) map[string]interface{} {
			c := columns{}
			c.str("short_label", row.ShortLabel, s.ShortLabel)
			c.str("full_name", row.FullName, s.FullName)
			c.str("mi_identifier", row.MIIdentifier, s.MIIdentifier)
			return c
		},
		fill: func(s *model.Source, row *sqlrepo.SourceEntity) {
			fillStr(&s.ShortLabel, row.ShortLabel)
			fillStr(&s.FullName, row.FullName)
			fillStr(&s.MIIdentifier, row.MIIdentifier)
		},
		children: func(ctx context.Context, p *reconcile.Pass, s *model.Source, fresh bool) error {
			owner := model.OwnerOf(s)
			if err := r.xrefs.syncList(ctx, p, owner, &s.Xrefs, fresh); err != nil {
				return err
			}
			return r.annotations.syncList(ctx, p, owner, &s.Annotations, fresh)
		},
	}
}
