package synchronizer

import (
	"context"
	"sort"
	"strings"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/reconcile"
	sqlrepo "github.com/tigerroll/intactdb/pkg/intact/infrastructure/repository/sql"
)

// identityProbe builds the natural key of an interactor or complex from its identity xrefs.
// The database and qualifier terms are only looked up: a database that was never persisted
// cannot appear on a stored xref, so such xrefs are skipped.
func (r *Registry) identityProbe(ctx context.Context, p *reconcile.Pass, kind model.EntityKind, xrefs []*model.Xref) (string, lookup, error) {
	var (
		keys    []string
		queries []map[string]interface{}
	)
	for _, x := range model.IdentityXrefs(xrefs) {
		dbAC, err := findRef(ctx, p, r.cvTerms, x.Database)
		if err != nil {
			return "", nil, err
		}
		qualifierAC, err := findRef(ctx, p, r.cvTerms, x.Qualifier)
		if err != nil {
			return "", nil, err
		}
		if dbAC == "" || qualifierAC == "" || x.PrimaryID == "" {
			continue
		}
		keys = append(keys, dbAC+":"+x.PrimaryID)
		queries = append(queries, map[string]interface{}{
			"parent_kind":  kind,
			"database_ac":  dbAC,
			"primary_id":   x.PrimaryID,
			"qualifier_ac": qualifierAC,
		})
	}
	if len(keys) == 0 {
		return "", nil, nil
	}
	sort.Strings(keys)

	return "identity:" + strings.Join(keys, ","), func(ctx context.Context) ([]string, error) {
		seen := make(map[string]bool)
		var acs []string
		for _, q := range queries {
			parents, err := sqlrepo.PluckColumn[sqlrepo.XrefEntity](ctx, p.Executor(), "parent_ac", q)
			if err != nil {
				return nil, err
			}
			for _, ac := range parents {
				if !seen[ac] {
					seen[ac] = true
					acs = append(acs, ac)
				}
			}
		}
		sort.Strings(acs)
		return acs, nil
	}, nil
}

func newInteractorSync(r *Registry) *entitySync[*model.Interactor, sqlrepo.InteractorEntity] {
	return &entitySync[*model.Interactor, sqlrepo.InteractorEntity]{
		r:    r,
		name: "InteractorSynchronizer",
		kind: model.KindInteractor,
		probe: func(ctx context.Context, p *reconcile.Pass, i *model.Interactor, _ model.Owner) (string, lookup, error) {
			return r.identityProbe(ctx, p, model.KindInteractor, i.Xrefs)
		},
		refs: func(ctx context.Context, p *reconcile.Pass, i *model.Interactor) error {
			if err := syncRef(ctx, p, r.cvTerms, &i.Type); err != nil {
				return err
			}
			return syncRef(ctx, p, r.organisms, &i.Organism)
		},
		toRow: func(i *model.Interactor, _ model.Owner) *sqlrepo.InteractorEntity { return sqlrepo.FromInteractor(i) },
		diff: func(row *sqlrepo.InteractorEntity, i *model.Interactor) map[string]interface{} {
			c := columns{}
			c.str("short_label", row.ShortLabel, i.ShortLabel)
			c.str("full_name", row.FullName, i.FullName)
			c.str("sequence", row.Sequence, i.Sequence)
			c.str("type_ac", row.TypeAC, cvAC(i.Type))
			c.str("organism_ac", row.OrganismAC, organismAC(i.Organism))
			return c
		},
		fill: func(i *model.Interactor, row *sqlrepo.InteractorEntity) {
			fillStr(&i.ShortLabel, row.ShortLabel)
			fillStr(&i.FullName, row.FullName)
			fillStr(&i.Sequence, row.Sequence)
			fillCv(&i.Type, row.TypeAC)
			fillOrganism(&i.Organism, row.OrganismAC)
		},
		children: func(ctx context.Context, p *reconcile.Pass, i *model.Interactor, fresh bool) error {
			owner := model.OwnerOf(i)
			if err := r.xrefs.syncList(ctx, p, owner, &i.Xrefs, fresh); err != nil {
				return err
			}
			if err := r.annotations.syncList(ctx, p, owner, &i.Annotations, fresh); err != nil {
				return err
			}
			return r.aliases.syncList(ctx, p, owner, &i.Aliases, fresh)
		},
	}
}

func newComplexSync(r *Registry) *entitySync[*model.Complex, sqlrepo.ComplexEntity] {
	return &entitySync[*model.Complex, sqlrepo.ComplexEntity]{
		r:    r,
		name: "ComplexSynchronizer",
		kind: model.KindComplex,
		probe: func(ctx context.Context, p *reconcile.Pass, c *model.Complex, _ model.Owner) (string, lookup, error) {
			return r.identityProbe(ctx, p, model.KindComplex, c.Xrefs)
		},
		refs: func(ctx context.Context, p *reconcile.Pass, c *model.Complex) error {
			if err := syncRef(ctx, p, r.organisms, &c.Organism); err != nil {
				return err
			}
			return syncRef(ctx, p, r.cvTerms, &c.Type)
		},
		toRow: func(c *model.Complex, _ model.Owner) *sqlrepo.ComplexEntity {
			resetCuration(&c.Curation)
			return sqlrepo.FromComplex(c)
		},
		diff: func(row *sqlrepo.ComplexEntity, c *model.Complex) map[string]interface{} {
			cols := columns{}
			cols.str("short_label", row.ShortLabel, c.ShortLabel)
			cols.str("full_name", row.FullName, c.FullName)
			cols.str("organism_ac", row.OrganismAC, organismAC(c.Organism))
			cols.str("type_ac", row.TypeAC, cvAC(c.Type))
			return cols
		},
		fill: func(c *model.Complex, row *sqlrepo.ComplexEntity) {
			fillStr(&c.ShortLabel, row.ShortLabel)
			fillStr(&c.FullName, row.FullName)
			fillOrganism(&c.Organism, row.OrganismAC)
			fillCv(&c.Type, row.TypeAC)
			storedCuration(&c.Curation, row.Status, row.Owner, row.Reviewer)
		},
		children: func(ctx context.Context, p *reconcile.Pass, c *model.Complex, fresh bool) error {
			owner := model.OwnerOf(c)
			if err := r.xrefs.syncList(ctx, p, owner, &c.Xrefs, fresh); err != nil {
				return err
			}
			if err := r.annotations.syncList(ctx, p, owner, &c.Annotations, fresh); err != nil {
				return err
			}
			if err := r.aliases.syncList(ctx, p, owner, &c.Aliases, fresh); err != nil {
				return err
			}
			if err := r.confidences.syncList(ctx, p, owner, &c.Confidences, fresh); err != nil {
				return err
			}
			if err := r.parameters.syncList(ctx, p, owner, &c.Parameters, fresh); err != nil {
				return err
			}
			if err := r.events.syncList(ctx, p, owner, &c.Events, fresh); err != nil {
				return err
			}
			return syncCollection(ctx, p, r.participants, owner, &c.Participants)
		},
		purge: func(ctx context.Context, p *reconcile.Pass, ac string) error {
			return r.participants.deleteWhere(ctx, p, sqlrepo.OwnedBy(ac, model.KindComplex))
		},
	}
}

// Status, owner and reviewer are written by Registry.SaveCuration only, behind the
// lifecycle guard. Synchronize ignores incoming values and reports the stored ones.
func storedCuration(c *model.Curation, status model.Status, owner, reviewer string) {
	c.Status, c.Owner, c.Reviewer = status, owner, reviewer
}

// resetCuration clears the curation state of a releasable about to be inserted.
func resetCuration(c *model.Curation) {
	storedCuration(c, model.StatusNone, "", "")
}
