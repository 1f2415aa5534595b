// Package reconcile carries the state of one reconciliation pass: the open transaction,
// the pending-update ledger and the identity-resolution caches. A Pass replaces any
// process-wide ledger; it is created by Run and handed explicitly to every synchronizer.
package reconcile

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/tx"
	logger "github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// Pass is one reconciliation unit of work. It is not safe for concurrent use.
type Pass struct {
	ID        string
	StartedAt time.Time

	tx       tx.Tx
	ledger   *Ledger
	resolved map[model.Identifiable]string
	probes   map[string]string
	hooks    []func(committed bool)
	failure  error
	done     bool
}

// NewPass creates a pass over an open transaction. The built-in completion hook clears
// the identity-resolution caches.
func NewPass(t tx.Tx) *Pass {
	p := &Pass{
		ID:        model.NewID(),
		StartedAt: time.Now(),
		tx:        t,
		ledger:    NewLedger(),
		resolved:  make(map[model.Identifiable]string),
		probes:    make(map[string]string),
	}
	p.AfterCompletion(func(bool) { p.clearCaches() })
	return p
}

// Executor returns the transaction every read and write of the pass must go through.
func (p *Pass) Executor() tx.Tx { return p.tx }

// Ledger returns the pending-update ledger.
func (p *Pass) Ledger() *Ledger { return p.ledger }

// Resolved returns the AC obj was resolved to earlier in this pass.
func (p *Pass) Resolved(obj model.Identifiable) (string, bool) {
	ac, ok := p.resolved[obj]
	return ac, ok
}

// MarkResolved records that obj was resolved to ac.
func (p *Pass) MarkResolved(obj model.Identifiable, ac string) {
	p.resolved[obj] = ac
}

func probeKey(kind model.EntityKind, key string) string {
	return string(kind) + "|" + key
}

// CachedProbe returns the AC a natural-key probe found earlier in this pass.
func (p *Pass) CachedProbe(kind model.EntityKind, key string) (string, bool) {
	ac, ok := p.probes[probeKey(kind, key)]
	return ac, ok
}

// CacheProbe stores the result of a natural-key probe.
func (p *Pass) CacheProbe(kind model.EntityKind, key, ac string) {
	p.probes[probeKey(kind, key)] = ac
}

// Forget drops every cached resolution to ac, used after a delete.
func (p *Pass) Forget(ac string) {
	for obj, resolved := range p.resolved {
		if resolved == ac {
			delete(p.resolved, obj)
		}
	}
	for key, resolved := range p.probes {
		if resolved == ac {
			delete(p.probes, key)
		}
	}
}

// Fail marks the pass as failed. The first failure is kept and Run rolls back.
func (p *Pass) Fail(err error) {
	if p.failure == nil {
		p.failure = err
	}
}

// Failure returns the error that failed the pass, if any.
func (p *Pass) Failure() error { return p.failure }

// AfterCompletion registers fn to run once the transaction committed or rolled back.
func (p *Pass) AfterCompletion(fn func(committed bool)) {
	p.hooks = append(p.hooks, fn)
}

func (p *Pass) complete(committed bool) {
	if p.done {
		return
	}
	p.done = true
	for _, fn := range p.hooks {
		fn(committed)
	}
}

func (p *Pass) clearCaches() {
	p.resolved = make(map[model.Identifiable]string)
	p.probes = make(map[string]string)
	p.ledger.Clear()
}

// Run begins a pass, calls fn and commits. It rolls back instead when fn returns an error
// or the pass was failed by a merge error. The completion hooks run in both cases.
func Run(ctx context.Context, tm tx.TransactionManager, fn func(ctx context.Context, p *Pass) error, opts ...*sql.TxOptions) (err error) {
	t, err := tm.Begin(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to begin reconciliation pass: %w", err)
	}
	p := NewPass(t)
	logger.Debugf("Reconciliation pass %s started.", p.ID)

	committed := false
	defer func() {
		if r := recover(); r != nil {
			if rbErr := tm.Rollback(t); rbErr != nil {
				logger.Errorf("Failed to roll back pass %s after panic: %v", p.ID, rbErr)
			}
			p.complete(false)
			panic(r)
		}
		p.complete(committed)
	}()

	if fnErr := fn(ctx, p); fnErr != nil || p.failure != nil {
		if fnErr == nil {
			fnErr = p.failure
		}
		if rbErr := tm.Rollback(t); rbErr != nil {
			logger.Errorf("Failed to roll back pass %s: %v", p.ID, rbErr)
		}
		logger.Warnf("Reconciliation pass %s rolled back: %v", p.ID, fnErr)
		return fnErr
	}

	if err := tm.Commit(t); err != nil {
		return fmt.Errorf("failed to commit reconciliation pass %s: %w", p.ID, err)
	}
	committed = true
	logger.Debugf("Reconciliation pass %s committed in %s.", p.ID, time.Since(p.StartedAt))
	return nil
}
