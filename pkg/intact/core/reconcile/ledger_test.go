package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/reconcile"
)

func TestLedger_EntryLifecycle(t *testing.T) {
	l := reconcile.NewLedger()
	owner := &model.Interactor{ShortLabel: "p53"}
	other := &model.Interactor{ShortLabel: "p53"}

	assert.Equal(t, reconcile.StateNoUpdates, l.State(owner))

	l.AddXref(owner, &model.Xref{PrimaryID: "P04637"})
	l.AddAlias(owner, &model.Alias{Name: "TP53"})
	assert.Equal(t, reconcile.StateUpdatesRecorded, l.State(owner))
	assert.Equal(t, reconcile.StateNoUpdates, l.State(other), "entries are keyed by identity, not equality")
	assert.Equal(t, 1, l.Len())

	u := l.Drain(owner, reconcile.StateDrainedOnCompletion)
	require.NotNil(t, u)
	assert.Equal(t, 2, u.Len())
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, reconcile.StateDrainedOnCompletion, l.State(owner))

	assert.Nil(t, l.Drain(owner, reconcile.StateDrainedOnError))
}

func TestLedger_RecordsEveryChildKind(t *testing.T) {
	l := reconcile.NewLedger()
	f := &model.Feature{}
	l.AddXref(f, &model.Xref{})
	l.AddAnnotation(f, &model.Annotation{})
	l.AddAlias(f, &model.Alias{})
	l.AddConfidence(f, &model.Confidence{})
	l.AddParameter(f, &model.Parameter{})
	l.AddRange(f, &model.Range{})
	l.AddParticipant(f, &model.Participant{})
	l.AddLifecycleEvent(f, &model.LifecycleEvent{})

	u := l.Drain(f, reconcile.StateDrainedOnError)
	assert.Equal(t, 8, u.Len())
	assert.Equal(t, reconcile.StateDrainedOnError, l.State(f))
}
