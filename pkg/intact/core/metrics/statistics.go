package metrics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
)

// Statistics counts outcomes per kind in memory. The CLI prints a snapshot after each command.
type Statistics struct {
	mu          sync.Mutex
	outcomes    map[model.EntityKind]map[model.Outcome]int
	errors      map[model.EntityKind]map[string]int
	transitions map[model.Transition]int
	durations   map[string]time.Duration
}

// NewStatistics creates an empty Statistics.
func NewStatistics() *Statistics {
	return &Statistics{
		outcomes:    make(map[model.EntityKind]map[model.Outcome]int),
		errors:      make(map[model.EntityKind]map[string]int),
		transitions: make(map[model.Transition]int),
		durations:   make(map[string]time.Duration),
	}
}

// Snapshot is a point-in-time copy of Statistics.
type Snapshot struct {
	Outcomes    map[model.EntityKind]map[model.Outcome]int
	Errors      map[model.EntityKind]map[string]int
	Transitions map[model.Transition]int
	Durations   map[string]time.Duration
}

func (s *Statistics) RecordOutcome(ctx context.Context, kind model.EntityKind, outcome model.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcomes[kind] == nil {
		s.outcomes[kind] = make(map[model.Outcome]int)
	}
	s.outcomes[kind][outcome]++
}

func (s *Statistics) RecordError(ctx context.Context, kind model.EntityKind, errorKind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errors[kind] == nil {
		s.errors[kind] = make(map[string]int)
	}
	s.errors[kind][errorKind]++
}

func (s *Statistics) RecordTransition(ctx context.Context, kind model.EntityKind, transition model.Transition, to model.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions[transition]++
}

// RecordDuration accumulates durations by name.
func (s *Statistics) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.durations[name] += duration
}

// Count returns the number of recorded outcomes of kind.
func (s *Statistics) Count(kind model.EntityKind, outcome model.Outcome) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcomes[kind][outcome]
}

// Snapshot copies the current counters.
func (s *Statistics) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Outcomes:    make(map[model.EntityKind]map[model.Outcome]int, len(s.outcomes)),
		Errors:      make(map[model.EntityKind]map[string]int, len(s.errors)),
		Transitions: make(map[model.Transition]int, len(s.transitions)),
		Durations:   make(map[string]time.Duration, len(s.durations)),
	}
	for k, m := range s.outcomes {
		snap.Outcomes[k] = make(map[model.Outcome]int, len(m))
		for o, n := range m {
			snap.Outcomes[k][o] = n
		}
	}
	for k, m := range s.errors {
		snap.Errors[k] = make(map[string]int, len(m))
		for e, n := range m {
			snap.Errors[k][e] = n
		}
	}
	for t, n := range s.transitions {
		snap.Transitions[t] = n
	}
	for name, d := range s.durations {
		snap.Durations[name] = d
	}
	return snap
}

// String renders the snapshot as one line per kind, sorted by kind.
func (snap Snapshot) String() string {
	kinds := make([]string, 0, len(snap.Outcomes))
	for k := range snap.Outcomes {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	var b strings.Builder
	for _, k := range kinds {
		m := snap.Outcomes[model.EntityKind(k)]
		fmt.Fprintf(&b, "%-16s inserted=%d merged=%d reused=%d deleted=%d\n", k,
			m[model.OutcomeInserted], m[model.OutcomeMerged], m[model.OutcomeReused], m[model.OutcomeDeleted])
	}
	transitions := make([]string, 0, len(snap.Transitions))
	for t := range snap.Transitions {
		transitions = append(transitions, string(t))
	}
	sort.Strings(transitions)
	for _, t := range transitions {
		fmt.Fprintf(&b, "transition %-28s %d\n", t, snap.Transitions[model.Transition(t)])
	}
	for k, m := range snap.Errors {
		for e, n := range m {
			fmt.Fprintf(&b, "error %s/%s %d\n", k, e, n)
		}
	}
	return b.String()
}

var _ MetricRecorder = (*Statistics)(nil)
