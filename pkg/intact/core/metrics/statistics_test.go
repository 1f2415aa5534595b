package metrics_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/metrics"
)

func TestStatistics_CountsConcurrently(t *testing.T) {
	stats := metrics.NewStatistics()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats.RecordOutcome(ctx, model.KindCvTerm, model.OutcomeReused)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, stats.Count(model.KindCvTerm, model.OutcomeReused))
	assert.Equal(t, 0, stats.Count(model.KindCvTerm, model.OutcomeInserted))
}

func TestStatistics_SnapshotIsACopy(t *testing.T) {
	stats := metrics.NewStatistics()
	ctx := context.Background()
	stats.RecordOutcome(ctx, model.KindPublication, model.OutcomeInserted)
	stats.RecordTransition(ctx, model.KindPublication, model.TransitionCreate, model.StatusNew)
	stats.RecordError(ctx, model.KindXref, "finder")
	stats.RecordDuration(ctx, "pass", 2*time.Second, nil)

	snap := stats.Snapshot()
	stats.RecordOutcome(ctx, model.KindPublication, model.OutcomeInserted)

	assert.Equal(t, 1, snap.Outcomes[model.KindPublication][model.OutcomeInserted])
	assert.Equal(t, 1, snap.Transitions[model.TransitionCreate])
	assert.Equal(t, 1, snap.Errors[model.KindXref]["finder"])
	assert.Equal(t, 2*time.Second, snap.Durations["pass"])
	assert.Contains(t, snap.String(), "publication      inserted=1 merged=0 reused=0 deleted=0")
}

func TestCompositeRecorder_FansOut(t *testing.T) {
	a, b := metrics.NewStatistics(), metrics.NewStatistics()
	c := metrics.NewCompositeRecorder(a, nil, b)
	c.RecordOutcome(context.Background(), model.KindOrganism, model.OutcomeMerged)

	assert.Equal(t, 1, a.Count(model.KindOrganism, model.OutcomeMerged))
	assert.Equal(t, 1, b.Count(model.KindOrganism, model.OutcomeMerged))
}
