package synchronizer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/enrichment"
	"github.com/tigerroll/intactdb/pkg/intact/core/reconcile"
	sqlrepo "github.com/tigerroll/intactdb/pkg/intact/infrastructure/repository/sql"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
)

func geneName() *model.CvTerm {
	return &model.CvTerm{ShortLabel: "gene name", MIIdentifier: "MI:0301", ObjClass: "alias type"}
}

func TestEnrichment_DrainsIntoPersistedOwner(t *testing.T) {
	s := newStore(t)
	l := enrichment.NewListener(s.reg, s.stats)

	var ac string
	s.run(t, func(ctx context.Context, p *reconcile.Pass) error {
		i, err := s.reg.Interactors().Synchronize(ctx, p, &model.Interactor{ShortLabel: "tp53"}, false)
		ac = i.AC
		return err
	})

	s.run(t, func(ctx context.Context, p *reconcile.Pass) error {
		owner := &model.Interactor{AC: ac}
		x := &model.Xref{Database: uniprot(), PrimaryID: "P04637", Qualifier: identity()}
		l.OnXrefAdded(p, owner, x)
		l.OnAliasAdded(p, owner, &model.Alias{Type: geneName(), Name: "TP53"})
		l.OnAliasAdded(p, owner, &model.Alias{Type: geneName(), Name: "TP53"})

		require.NoError(t, l.OnEnrichmentComplete(ctx, p, owner, enrichment.StatusSuccess, "uniprot"))
		require.Len(t, owner.Xrefs, 1)
		assert.Same(t, x, owner.Xrefs[0])
		assert.NotEmpty(t, x.AC)
		assert.Len(t, owner.Aliases, 1, "aliases sharing a natural key collapse to one counterpart")
		assert.Equal(t, reconcile.StateDrainedOnCompletion, p.Ledger().State(owner))
		return nil
	})

	assert.Equal(t, int64(1), count[sqlrepo.XrefEntity](t, s, sqlrepo.OwnedBy(ac, model.KindInteractor)))
	assert.Equal(t, int64(1), count[sqlrepo.AliasEntity](t, s, sqlrepo.OwnedBy(ac, model.KindInteractor)))

	s.run(t, func(ctx context.Context, p *reconcile.Pass) error {
		i := &model.Interactor{Xrefs: []*model.Xref{{Database: uniprot(), PrimaryID: "P04637", Qualifier: identity()}}}
		found, err := s.reg.Interactors().Find(ctx, p, i)
		require.NoError(t, err)
		assert.Equal(t, ac, found, "drained identity xrefs make the owner findable")
		return nil
	})
}

func TestEnrichment_TransientOwnerOnlyPersistsReferences(t *testing.T) {
	s := newStore(t)
	l := enrichment.NewListener(s.reg, s.stats)

	s.run(t, func(ctx context.Context, p *reconcile.Pass) error {
		owner := &model.Interactor{}
		alias := &model.Alias{Type: geneName(), Name: "BRCA1"}
		l.OnAliasAdded(p, owner, alias)
		require.NoError(t, l.OnEnrichmentError(ctx, p, owner, errors.New("timeout")))
		assert.NotEmpty(t, alias.Type.AC)
		assert.Empty(t, alias.AC)
		return nil
	})

	assert.Equal(t, int64(1), count[sqlrepo.CvTermEntity](t, s, map[string]interface{}{"mi_identifier": "MI:0301"}))
	assert.Equal(t, int64(0), count[sqlrepo.AliasEntity](t, s, nil))
}

func TestEnrichment_MergeFailureRollsBackThePass(t *testing.T) {
	s := newStore(t)
	l := enrichment.NewListener(s.reg, s.stats)
	ctx := context.Background()

	var ac string
	s.run(t, func(ctx context.Context, p *reconcile.Pass) error {
		i, err := s.reg.Interactors().Synchronize(ctx, p, &model.Interactor{ShortLabel: "mdm2"}, false)
		ac = i.AC
		return err
	})
	require.NoError(t, sqlrepo.Insert(ctx, s.conn, &sqlrepo.CvTermEntity{AC: "LEGACY-1", MIIdentifier: "MI:0486"}))
	require.NoError(t, sqlrepo.Insert(ctx, s.conn, &sqlrepo.CvTermEntity{AC: "LEGACY-2", MIIdentifier: "MI:0486"}))

	err := reconcile.Run(ctx, s.tm, func(ctx context.Context, p *reconcile.Pass) error {
		owner := &model.Interactor{AC: ac}
		l.OnAliasAdded(p, owner, &model.Alias{Type: geneName(), Name: "MDM2"})
		l.OnXrefAdded(p, owner, &model.Xref{Database: uniprot(), PrimaryID: "Q00987"})
		mergeErr := l.OnEnrichmentComplete(ctx, p, owner, enrichment.StatusSuccess, "")
		assert.Same(t, mergeErr, p.Failure())
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, exception.ErrMerge)
	assert.ErrorIs(t, err, exception.ErrAmbiguousMatch)
	assert.Equal(t, int64(0), count[sqlrepo.AliasEntity](t, s, nil))
	assert.Equal(t, int64(0), count[sqlrepo.XrefEntity](t, s, nil))
}
