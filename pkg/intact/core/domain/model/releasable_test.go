package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
)

func newPublication(status model.Status) *model.Publication {
	p := &model.Publication{AC: "EBI-1", PubmedID: "12345"}
	p.Status = status
	return p
}

func TestApply_LegalTransitions(t *testing.T) {
	cases := []struct {
		transition model.Transition
		from       model.Status
		to         model.Status
		event      model.EventType
	}{
		{model.TransitionCreate, model.StatusNone, model.StatusNew, model.EventCreated},
		{model.TransitionAssign, model.StatusNew, model.StatusAssigned, model.EventAssigned},
		{model.TransitionClaim, model.StatusNew, model.StatusCurationInProgress, model.EventOwnerChanged},
		{model.TransitionReserve, model.StatusNew, model.StatusAssigned, model.EventReserved},
		{model.TransitionStartCuration, model.StatusAssigned, model.StatusCurationInProgress, model.EventCurationStarted},
		{model.TransitionUnassign, model.StatusAssigned, model.StatusNew, model.EventUnassigned},
		{model.TransitionReadyForChecking, model.StatusCurationInProgress, model.StatusReadyForChecking, model.EventReadyForChecking},
		{model.TransitionAccept, model.StatusReadyForChecking, model.StatusAccepted, model.EventAccepted},
		{model.TransitionReject, model.StatusReadyForChecking, model.StatusCurationInProgress, model.EventRejected},
		{model.TransitionRevert, model.StatusReadyForChecking, model.StatusCurationInProgress, model.EventReverted},
		{model.TransitionRevert, model.StatusReadyForRelease, model.StatusAccepted, model.EventReverted},
		{model.TransitionReadyForRelease, model.StatusAccepted, model.StatusReadyForRelease, model.EventReadyForRelease},
		{model.TransitionRemoveOnHold, model.StatusAcceptedOnHold, model.StatusReadyForRelease, model.EventOnHoldRemoved},
		{model.TransitionRemoveOnHold, model.StatusReleasedOnHold, model.StatusReleased, model.EventOnHoldRemoved},
		{model.TransitionRelease, model.StatusReadyForRelease, model.StatusReleased, model.EventReleased},
		{model.TransitionPutOnHold, model.StatusAccepted, model.StatusAcceptedOnHold, model.EventPutOnHold},
		{model.TransitionPutOnHold, model.StatusReleased, model.StatusReleasedOnHold, model.EventPutOnHold},
		{model.TransitionRevertToReadyForChecking, model.StatusAccepted, model.StatusReadyForChecking, model.EventReverted},
		{model.TransitionRevertToReadyForChecking, model.StatusAcceptedOnHold, model.StatusReadyForChecking, model.EventReverted},
		{model.TransitionMoveToOnHold, model.StatusReadyForRelease, model.StatusAcceptedOnHold, model.EventPutOnHold},
	}

	for _, tc := range cases {
		t.Run(string(tc.transition)+"/"+string(tc.from), func(t *testing.T) {
			p := newPublication(tc.from)
			event, err := model.Apply(p, model.TransitionRequest{Transition: tc.transition, Actor: "alice", Curator: "bob"})
			require.NoError(t, err)
			assert.Equal(t, tc.to, p.Status)
			assert.Equal(t, tc.event, event.Type)
			assert.Equal(t, "alice", event.Actor)
			assert.False(t, event.OccurredAt.IsZero())
			require.Len(t, p.Events, 1)
			assert.Same(t, event, p.Events[0])
		})
	}
}

func TestApply_OwnerAndReviewer(t *testing.T) {
	p := newPublication(model.StatusNew)
	_, err := model.Apply(p, model.TransitionRequest{Transition: model.TransitionAssign, Actor: "alice", Curator: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "bob", p.Owner)

	_, err = model.Apply(p, model.TransitionRequest{Transition: model.TransitionUnassign, Actor: "alice"})
	require.NoError(t, err)
	assert.Empty(t, p.Owner)

	_, err = model.Apply(p, model.TransitionRequest{Transition: model.TransitionClaim, Actor: "carol"})
	require.NoError(t, err)
	assert.Equal(t, "carol", p.Owner)
	assert.Equal(t, model.StatusCurationInProgress, p.Status)

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	event, err := model.Apply(p, model.TransitionRequest{
		Transition: model.TransitionReadyForChecking, Actor: "carol", Reviewer: "dave", Note: "done", OccurredAt: at,
	})
	require.NoError(t, err)
	assert.Equal(t, "dave", p.Reviewer)
	assert.Equal(t, at, event.OccurredAt)
	assert.Equal(t, "done", event.Note)
	assert.Len(t, p.Events, 4)
}

func TestApply_IllegalTransitionLeavesStateUnchanged(t *testing.T) {
	c := &model.Complex{AC: "EBI-9"}
	c.Status = model.StatusNew
	c.Owner = "bob"

	event, err := model.Apply(c, model.TransitionRequest{Transition: model.TransitionRelease, Actor: "alice"})
	assert.Nil(t, event)
	require.Error(t, err)
	assert.True(t, errors.Is(err, exception.ErrLifecycle))
	assert.True(t, errors.Is(err, exception.ErrIllegalTransition))
	assert.Equal(t, model.StatusNew, c.Status)
	assert.Equal(t, "bob", c.Owner)
	assert.Empty(t, c.Events)

	// create is only legal once
	_, err = model.Apply(c, model.TransitionRequest{Transition: model.TransitionCreate, Actor: "alice"})
	assert.ErrorIs(t, err, exception.ErrIllegalTransition)
}

func TestApply_AssignRequiresCurator(t *testing.T) {
	p := newPublication(model.StatusNew)
	_, err := model.Apply(p, model.TransitionRequest{Transition: model.TransitionAssign, Actor: "alice"})
	assert.ErrorIs(t, err, exception.ErrIllegalTransition)
	assert.Equal(t, model.StatusNew, p.Status)
}

func TestParseTransition(t *testing.T) {
	for _, tr := range model.Transitions() {
		parsed, err := model.ParseTransition(string(tr))
		assert.NoError(t, err)
		assert.Equal(t, tr, parsed)
	}
	_, err := model.ParseTransition("publish")
	assert.ErrorIs(t, err, exception.ErrLifecycle)
}
