package synchronizer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/intactdb/pkg/intact/core/config"
	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/lifecycle"
	"github.com/tigerroll/intactdb/pkg/intact/core/metrics"
	"github.com/tigerroll/intactdb/pkg/intact/core/reconcile"
	sqlrepo "github.com/tigerroll/intactdb/pkg/intact/infrastructure/repository/sql"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
)

func newManager(t *testing.T, s *store) *lifecycle.Manager {
	t.Helper()
	m, err := lifecycle.NewManager(lifecycle.ManagerParams{
		Config:   config.NewConfig(),
		Store:    s.reg,
		Children: s.reg,
		Recorder: s.stats,
		Tracer:   metrics.NewNoOpTracer(),
	})
	require.NoError(t, err)
	return m
}

func insertPublication(t *testing.T, s *store, pubmedID string) string {
	t.Helper()
	var ac string
	s.run(t, func(ctx context.Context, p *reconcile.Pass) error {
		pub, err := s.reg.Publications().Synchronize(ctx, p, &model.Publication{PubmedID: pubmedID}, false)
		ac = pub.AC
		return err
	})
	return ac
}

func TestLifecycle_TransitionsArePersisted(t *testing.T) {
	s := newStore(t)
	m := newManager(t, s)
	ac := insertPublication(t, s, "10831611")
	day := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	steps := []model.TransitionRequest{
		{Transition: model.TransitionCreate, Actor: "admin", OccurredAt: day},
		{Transition: model.TransitionAssign, Actor: "admin", Curator: "curator1", OccurredAt: day.Add(time.Hour)},
		{Transition: model.TransitionUnassign, Actor: "admin", Note: "on leave", OccurredAt: day.Add(2 * time.Hour)},
	}
	for _, req := range steps {
		s.run(t, func(ctx context.Context, p *reconcile.Pass) error {
			event, err := m.Apply(ctx, p, ac, req)
			require.NoError(t, err)
			assert.NotEmpty(t, event.AC)
			return nil
		})
	}

	row, err := sqlrepo.FindByAC[sqlrepo.PublicationEntity](context.Background(), s.conn, ac)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNew, row.Status)
	assert.Empty(t, row.Owner, "unassign clears the owner")

	s.run(t, func(ctx context.Context, p *reconcile.Pass) error {
		history, err := m.History(ctx, p, ac)
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, []model.EventType{model.EventCreated, model.EventAssigned, model.EventUnassigned},
			[]model.EventType{history[0].Type, history[1].Type, history[2].Type})
		assert.Equal(t, "on leave", history[2].Note)
		assert.True(t, history[0].OccurredAt.Equal(day))

		status, err := m.Status(ctx, p, ac)
		require.NoError(t, err)
		assert.Equal(t, model.StatusNew, status)
		return nil
	})
	assert.Equal(t, 1, s.stats.Snapshot().Transitions[model.TransitionUnassign])
}

func TestLifecycle_IllegalTransitionRollsBack(t *testing.T) {
	s := newStore(t)
	m := newManager(t, s)
	ac := insertPublication(t, s, "1")

	err := reconcile.Run(context.Background(), s.tm, func(ctx context.Context, p *reconcile.Pass) error {
		_, err := m.Apply(ctx, p, ac, model.TransitionRequest{Transition: model.TransitionAccept, Actor: "reviewer"})
		return err
	})
	assert.ErrorIs(t, err, exception.ErrIllegalTransition)
	assert.Equal(t, int64(0), count[sqlrepo.LifecycleEventEntity](t, s, nil))
	assert.Equal(t, 1, s.stats.Snapshot().Errors[model.KindPublication][string(exception.KindLifecycle)])
}

func TestLifecycle_ComplexIsReleasable(t *testing.T) {
	s := newStore(t)
	m := newManager(t, s)
	var ac string
	s.run(t, func(ctx context.Context, p *reconcile.Pass) error {
		cplx, err := s.reg.Complexes().Synchronize(ctx, p, &model.Complex{ShortLabel: "ccr4-not"}, false)
		ac = cplx.AC
		return err
	})
	s.run(t, func(ctx context.Context, p *reconcile.Pass) error {
		_, err := m.Apply(ctx, p, ac, model.TransitionRequest{Transition: model.TransitionCreate, Actor: "admin"})
		return err
	})
	s.run(t, func(ctx context.Context, p *reconcile.Pass) error {
		_, err := m.Apply(ctx, p, ac, model.TransitionRequest{Transition: model.TransitionClaim, Actor: "curator2"})
		return err
	})

	row, err := sqlrepo.FindByAC[sqlrepo.ComplexEntity](context.Background(), s.conn, ac)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCurationInProgress, row.Status)
	assert.Equal(t, "curator2", row.Owner)
	assert.Equal(t, int64(2), count[sqlrepo.LifecycleEventEntity](t, s, sqlrepo.OwnedBy(ac, model.KindComplex)))
}

func TestLifecycle_ReleaseReady(t *testing.T) {
	s := newStore(t)
	m := newManager(t, s)
	ready := insertPublication(t, s, "1")
	other := insertPublication(t, s, "2")
	ctx := context.Background()
	require.NoError(t, sqlrepo.Update[sqlrepo.PublicationEntity](ctx, s.conn, ready, map[string]interface{}{"status": string(model.StatusReadyForRelease)}))
	require.NoError(t, sqlrepo.Update[sqlrepo.PublicationEntity](ctx, s.conn, other, map[string]interface{}{"status": string(model.StatusAccepted)}))

	s.run(t, func(ctx context.Context, p *reconcile.Pass) error {
		report, err := m.ReleaseReady(ctx, p, "release-bot", "monthly release")
		require.NoError(t, err)
		assert.Equal(t, []string{ready}, report.Released)
		assert.Empty(t, report.Failed)
		return nil
	})

	row, err := sqlrepo.FindByAC[sqlrepo.PublicationEntity](ctx, s.conn, ready)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReleased, row.Status)
	row, err = sqlrepo.FindByAC[sqlrepo.PublicationEntity](ctx, s.conn, other)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, row.Status)
}

func TestLifecycle_UnknownAC(t *testing.T) {
	s := newStore(t)
	m := newManager(t, s)
	err := reconcile.Run(context.Background(), s.tm, func(ctx context.Context, p *reconcile.Pass) error {
		_, err := m.Apply(ctx, p, "EBI-404", model.TransitionRequest{Transition: model.TransitionCreate})
		return err
	})
	assert.ErrorIs(t, err, exception.ErrReleasableNotFound)
}

func TestSynchronize_IgnoresIncomingCurationState(t *testing.T) {
	s := newStore(t)
	m := newManager(t, s)
	ac := insertPublication(t, s, "123")
	s.run(t, func(ctx context.Context, p *reconcile.Pass) error {
		_, err := m.Apply(ctx, p, ac, model.TransitionRequest{Transition: model.TransitionCreate, Actor: "admin"})
		return err
	})

	s.run(t, func(ctx context.Context, p *reconcile.Pass) error {
		incoming := &model.Publication{
			PubmedID: "123",
			Title:    "renamed",
			Curation: model.Curation{Status: model.StatusReleased, Owner: "mallory", Reviewer: "mallory"},
		}
		pub, err := s.reg.Publications().Synchronize(ctx, p, incoming, false)
		require.NoError(t, err)
		assert.Equal(t, ac, pub.AC)
		assert.Equal(t, model.StatusNew, pub.Status, "the stored state is reported back")
		assert.Empty(t, pub.Owner)
		return nil
	})

	row, err := sqlrepo.FindByAC[sqlrepo.PublicationEntity](context.Background(), s.conn, ac)
	require.NoError(t, err)
	assert.Equal(t, "renamed", row.Title)
	assert.Equal(t, model.StatusNew, row.Status)
	assert.Empty(t, row.Owner)
	assert.Empty(t, row.Reviewer)

	s.run(t, func(ctx context.Context, p *reconcile.Pass) error {
		history, err := m.History(ctx, p, ac)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, model.EventCreated, history[0].Type)
		return nil
	})
}

func TestSynchronize_InsertStartsWithoutCurationState(t *testing.T) {
	s := newStore(t)
	var pubAC, cplxAC string
	s.run(t, func(ctx context.Context, p *reconcile.Pass) error {
		pub, err := s.reg.Publications().Synchronize(ctx, p, &model.Publication{
			PubmedID: "456",
			Curation: model.Curation{Status: model.StatusReadyForRelease, Owner: "curator1"},
		}, false)
		require.NoError(t, err)
		assert.Equal(t, model.StatusNone, pub.Status)
		pubAC = pub.AC

		cplx, err := s.reg.Complexes().Synchronize(ctx, p, &model.Complex{
			ShortLabel: "released-on-arrival",
			Curation:   model.Curation{Status: model.StatusReleased, Reviewer: "reviewer1"},
		}, false)
		require.NoError(t, err)
		cplxAC = cplx.AC
		return nil
	})

	ctx := context.Background()
	pub, err := sqlrepo.FindByAC[sqlrepo.PublicationEntity](ctx, s.conn, pubAC)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNone, pub.Status)
	assert.Empty(t, pub.Owner)
	cplx, err := sqlrepo.FindByAC[sqlrepo.ComplexEntity](ctx, s.conn, cplxAC)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNone, cplx.Status)
	assert.Empty(t, cplx.Reviewer)
	assert.Equal(t, int64(0), count[sqlrepo.ComplexEntity](t, s, map[string]interface{}{"status": string(model.StatusReleased)}))
}
