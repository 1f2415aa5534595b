package reconcile

import (
	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
)

// EntryState is the per-object state of the pending-update ledger.
type EntryState string

const (
	StateNoUpdates           EntryState = "no-updates"
	StateUpdatesRecorded     EntryState = "updates-recorded"
	StateDrainedOnCompletion EntryState = "drained-on-completion"
	StateDrainedOnError      EntryState = "drained-on-error"
)

// PendingUpdates are the children an object gained since the pass began.
type PendingUpdates struct {
	Xrefs           []*model.Xref
	Annotations     []*model.Annotation
	Aliases         []*model.Alias
	Confidences     []*model.Confidence
	Parameters      []*model.Parameter
	Ranges          []*model.Range
	Participants    []*model.Participant
	LifecycleEvents []*model.LifecycleEvent
}

// Len returns the number of pending children.
func (u *PendingUpdates) Len() int {
	return len(u.Xrefs) + len(u.Annotations) + len(u.Aliases) + len(u.Confidences) +
		len(u.Parameters) + len(u.Ranges) + len(u.Participants) + len(u.LifecycleEvents)
}

// Ledger maps domain objects, by identity, to their pending children.
// It is owned by a single Pass and is not safe for concurrent use.
type Ledger struct {
	entries map[model.Identifiable]*PendingUpdates
	drained map[model.Identifiable]EntryState
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		entries: make(map[model.Identifiable]*PendingUpdates),
		drained: make(map[model.Identifiable]EntryState),
	}
}

// entry returns the entry of obj, creating it on the first mutation.
func (l *Ledger) entry(obj model.Identifiable) *PendingUpdates {
	u, ok := l.entries[obj]
	if !ok {
		u = &PendingUpdates{}
		l.entries[obj] = u
		delete(l.drained, obj)
	}
	return u
}

func (l *Ledger) AddXref(owner model.Identifiable, x *model.Xref) {
	u := l.entry(owner)
	u.Xrefs = append(u.Xrefs, x)
}

func (l *Ledger) AddAnnotation(owner model.Identifiable, a *model.Annotation) {
	u := l.entry(owner)
	u.Annotations = append(u.Annotations, a)
}

func (l *Ledger) AddAlias(owner model.Identifiable, a *model.Alias) {
	u := l.entry(owner)
	u.Aliases = append(u.Aliases, a)
}

func (l *Ledger) AddConfidence(owner model.Identifiable, c *model.Confidence) {
	u := l.entry(owner)
	u.Confidences = append(u.Confidences, c)
}

func (l *Ledger) AddParameter(owner model.Identifiable, p *model.Parameter) {
	u := l.entry(owner)
	u.Parameters = append(u.Parameters, p)
}

func (l *Ledger) AddRange(owner model.Identifiable, r *model.Range) {
	u := l.entry(owner)
	u.Ranges = append(u.Ranges, r)
}

func (l *Ledger) AddParticipant(owner model.Identifiable, p *model.Participant) {
	u := l.entry(owner)
	u.Participants = append(u.Participants, p)
}

func (l *Ledger) AddLifecycleEvent(owner model.Identifiable, e *model.LifecycleEvent) {
	u := l.entry(owner)
	u.LifecycleEvents = append(u.LifecycleEvents, e)
}

// State returns the ledger state of obj.
func (l *Ledger) State(obj model.Identifiable) EntryState {
	if _, ok := l.entries[obj]; ok {
		return StateUpdatesRecorded
	}
	if s, ok := l.drained[obj]; ok {
		return s
	}
	return StateNoUpdates
}

// Drain removes and returns the entry of obj, or nil when nothing was recorded.
// final is either StateDrainedOnCompletion or StateDrainedOnError.
func (l *Ledger) Drain(obj model.Identifiable, final EntryState) *PendingUpdates {
	u, ok := l.entries[obj]
	if !ok {
		return nil
	}
	delete(l.entries, obj)
	l.drained[obj] = final
	return u
}

// Len returns the number of objects with pending updates.
func (l *Ledger) Len() int { return len(l.entries) }

// Clear drops every entry.
func (l *Ledger) Clear() {
	l.entries = make(map[model.Identifiable]*PendingUpdates)
	l.drained = make(map[model.Identifiable]EntryState)
}
