package model

import (
	"fmt"
	"time"

	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
	logger "github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// Status is the curation state of a releasable object.
type Status string

const (
	StatusNone               Status = ""
	StatusNew                Status = "new"
	StatusAssigned           Status = "assigned"
	StatusCurationInProgress Status = "curation-in-progress"
	StatusReadyForChecking   Status = "ready-for-checking"
	StatusAccepted           Status = "accepted"
	StatusAcceptedOnHold     Status = "accepted-on-hold"
	StatusReadyForRelease    Status = "ready-for-release"
	StatusReleased           Status = "released"
	StatusReleasedOnHold     Status = "released-on-hold"
)

// Transition names a curation workflow step.
type Transition string

const (
	TransitionCreate                   Transition = "create"
	TransitionAssign                   Transition = "assign"
	TransitionClaim                    Transition = "claim"
	TransitionReserve                  Transition = "reserve"
	TransitionStartCuration            Transition = "start-curation"
	TransitionUnassign                 Transition = "unassign"
	TransitionReadyForChecking         Transition = "ready-for-checking"
	TransitionAccept                   Transition = "accept"
	TransitionReject                   Transition = "reject"
	TransitionRevert                   Transition = "revert"
	TransitionReadyForRelease          Transition = "ready-for-release"
	TransitionRemoveOnHold             Transition = "remove-on-hold"
	TransitionRelease                  Transition = "release"
	TransitionPutOnHold                Transition = "put-on-hold"
	TransitionRevertToReadyForChecking Transition = "revert-to-ready-for-checking"
	TransitionMoveToOnHold             Transition = "move-to-on-hold"
)

// EventType is the type of a recorded lifecycle event.
type EventType string

const (
	EventCreated          EventType = "CREATED"
	EventAssigned         EventType = "ASSIGNED"
	EventOwnerChanged     EventType = "OWNER_CHANGED"
	EventReserved         EventType = "RESERVED"
	EventCurationStarted  EventType = "CURATION_STARTED"
	EventUnassigned       EventType = "UNASSIGNED"
	EventReadyForChecking EventType = "READY_FOR_CHECKING"
	EventAccepted         EventType = "ACCEPTED"
	EventRejected         EventType = "REJECTED"
	EventReverted         EventType = "REVERTED"
	EventReadyForRelease  EventType = "READY_FOR_RELEASE"
	EventPutOnHold        EventType = "PUT_ON_HOLD"
	EventOnHoldRemoved    EventType = "ON_HOLD_REMOVED"
	EventReleased         EventType = "RELEASED"
)

// Curation holds the workflow state shared by publications and complexes.
type Curation struct {
	Status   Status
	Owner    string
	Reviewer string
	Events   []*LifecycleEvent
}

// Releasable is an object that goes through the curation workflow.
type Releasable interface {
	Identifiable
	CurationState() *Curation
}

type edge struct {
	from  Status
	to    Status
	event EventType
}

var transitions = map[Transition][]edge{
	TransitionCreate:        {{StatusNone, StatusNew, EventCreated}},
	TransitionAssign:        {{StatusNew, StatusAssigned, EventAssigned}},
	TransitionClaim:         {{StatusNew, StatusCurationInProgress, EventOwnerChanged}},
	TransitionReserve:       {{StatusNew, StatusAssigned, EventReserved}},
	TransitionStartCuration: {{StatusAssigned, StatusCurationInProgress, EventCurationStarted}},
	TransitionUnassign:      {{StatusAssigned, StatusNew, EventUnassigned}},
	TransitionReadyForChecking: {
		{StatusCurationInProgress, StatusReadyForChecking, EventReadyForChecking},
	},
	TransitionAccept: {{StatusReadyForChecking, StatusAccepted, EventAccepted}},
	TransitionReject: {{StatusReadyForChecking, StatusCurationInProgress, EventRejected}},
	TransitionRevert: {
		{StatusReadyForChecking, StatusCurationInProgress, EventReverted},
		{StatusReadyForRelease, StatusAccepted, EventReverted},
	},
	TransitionReadyForRelease: {{StatusAccepted, StatusReadyForRelease, EventReadyForRelease}},
	TransitionRemoveOnHold: {
		{StatusAcceptedOnHold, StatusReadyForRelease, EventOnHoldRemoved},
		{StatusReleasedOnHold, StatusReleased, EventOnHoldRemoved},
	},
	TransitionRelease: {{StatusReadyForRelease, StatusReleased, EventReleased}},
	TransitionPutOnHold: {
		{StatusAccepted, StatusAcceptedOnHold, EventPutOnHold},
		{StatusReleased, StatusReleasedOnHold, EventPutOnHold},
	},
	TransitionRevertToReadyForChecking: {
		{StatusAccepted, StatusReadyForChecking, EventReverted},
		{StatusAcceptedOnHold, StatusReadyForChecking, EventReverted},
	},
	TransitionMoveToOnHold: {{StatusReadyForRelease, StatusAcceptedOnHold, EventPutOnHold}},
}

// ParseTransition validates a transition name.
func ParseTransition(name string) (Transition, error) {
	t := Transition(name)
	if _, ok := transitions[t]; !ok {
		return "", exception.NewLifecycleError("model.ParseTransition",
			fmt.Sprintf("unknown transition '%s'", name), exception.ErrIllegalTransition)
	}
	return t, nil
}

// Transitions returns every known transition name.
func Transitions() []Transition {
	return []Transition{
		TransitionCreate, TransitionAssign, TransitionClaim, TransitionReserve,
		TransitionStartCuration, TransitionUnassign, TransitionReadyForChecking,
		TransitionAccept, TransitionReject, TransitionRevert, TransitionReadyForRelease,
		TransitionRemoveOnHold, TransitionRelease, TransitionPutOnHold,
		TransitionRevertToReadyForChecking, TransitionMoveToOnHold,
	}
}

// NextStatus returns the target state and event of applying t in state from.
func NextStatus(t Transition, from Status) (Status, EventType, bool) {
	for _, e := range transitions[t] {
		if e.from == from {
			return e.to, e.event, true
		}
	}
	return "", "", false
}

// TransitionRequest carries the arguments of one transition.
type TransitionRequest struct {
	Transition Transition
	Actor      string
	Note       string
	// Curator is the new owner for assign.
	Curator string
	// Reviewer is recorded by ready-for-checking.
	Reviewer string
	// OccurredAt defaults to the current time.
	OccurredAt time.Time
}

// Apply moves r along req.Transition and appends the resulting event to its history.
// An illegal transition leaves r unchanged.
func Apply(r Releasable, req TransitionRequest) (*LifecycleEvent, error) {
	c := r.CurationState()
	to, eventType, ok := NextStatus(req.Transition, c.Status)
	if !ok {
		err := exception.NewLifecycleError("model.Apply",
			fmt.Sprintf("cannot %s %s %s in state '%s'", req.Transition, r.Kind(), r.GetAC(), c.Status),
			exception.ErrIllegalTransition)
		logger.Warnf("Rejected lifecycle transition '%s' of %s (AC: %s) in state '%s'.",
			req.Transition, r.Kind(), r.GetAC(), c.Status)
		return nil, err
	}
	if req.Transition == TransitionAssign && req.Curator == "" {
		return nil, exception.NewLifecycleError("model.Apply", "assign requires a curator", exception.ErrIllegalTransition)
	}

	switch req.Transition {
	case TransitionAssign:
		c.Owner = req.Curator
	case TransitionClaim, TransitionReserve:
		c.Owner = req.Actor
	case TransitionUnassign:
		c.Owner = ""
	case TransitionReadyForChecking:
		if req.Reviewer != "" {
			c.Reviewer = req.Reviewer
		}
	}

	at := req.OccurredAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	event := &LifecycleEvent{Type: eventType, Actor: req.Actor, OccurredAt: at, Note: req.Note}
	logger.Debugf("%s %s: %s -> %s (%s).", r.Kind(), r.GetAC(), c.Status, to, eventType)
	c.Status = to
	c.Events = append(c.Events, event)
	return event, nil
}
