// Package enrichment receives the callbacks of an upstream enrichment run and persists the
// children it added once the enrichment of an object completes or fails.
package enrichment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/metrics"
	"github.com/tigerroll/intactdb/pkg/intact/core/reconcile"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
	logger "github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// Status is the outcome reported by the enricher on completion.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Listener records child additions in the pass ledger and drains them on the final callback.
type Listener struct {
	children reconcile.ChildSynchronizer
	recorder metrics.MetricRecorder
}

// NewListener creates a Listener.
func NewListener(children reconcile.ChildSynchronizer, recorder metrics.MetricRecorder) *Listener {
	return &Listener{children: children, recorder: recorder}
}

func (l *Listener) OnXrefAdded(p *reconcile.Pass, owner model.Identifiable, x *model.Xref) {
	p.Ledger().AddXref(owner, x)
}

func (l *Listener) OnAnnotationAdded(p *reconcile.Pass, owner model.Identifiable, a *model.Annotation) {
	p.Ledger().AddAnnotation(owner, a)
}

func (l *Listener) OnAliasAdded(p *reconcile.Pass, owner model.Identifiable, a *model.Alias) {
	p.Ledger().AddAlias(owner, a)
}

func (l *Listener) OnConfidenceAdded(p *reconcile.Pass, owner model.Identifiable, c *model.Confidence) {
	p.Ledger().AddConfidence(owner, c)
}

func (l *Listener) OnParameterAdded(p *reconcile.Pass, owner model.Identifiable, param *model.Parameter) {
	p.Ledger().AddParameter(owner, param)
}

func (l *Listener) OnRangeAdded(p *reconcile.Pass, owner *model.Feature, r *model.Range) {
	p.Ledger().AddRange(owner, r)
}

func (l *Listener) OnParticipantAdded(p *reconcile.Pass, owner model.Identifiable, part *model.Participant) {
	p.Ledger().AddParticipant(owner, part)
}

func (l *Listener) OnLifecycleEventAdded(p *reconcile.Pass, owner model.Releasable, e *model.LifecycleEvent) {
	p.Ledger().AddLifecycleEvent(owner, e)
}

// OnEnrichmentComplete persists the children recorded for obj.
func (l *Listener) OnEnrichmentComplete(ctx context.Context, p *reconcile.Pass, obj model.Identifiable, status Status, message string) error {
	logger.Debugf("Enrichment of %s (AC: %s) completed with %s: %s", obj.Kind(), obj.GetAC(), status, message)
	return l.drain(ctx, p, obj, reconcile.StateDrainedOnCompletion, "Listener.OnEnrichmentComplete")
}

// OnEnrichmentError persists the children recorded for obj even though its enrichment
// failed, so that obj stays consistent with what was added before the failure.
func (l *Listener) OnEnrichmentError(ctx context.Context, p *reconcile.Pass, obj model.Identifiable, cause error) error {
	logger.Warnf("Enrichment of %s (AC: %s) failed: %v", obj.Kind(), obj.GetAC(), cause)
	return l.drain(ctx, p, obj, reconcile.StateDrainedOnError, "Listener.OnEnrichmentError")
}

// drain removes the ledger entry of obj and synchronizes its children. A persisted owner
// gets its children merged; a transient owner only gets their references synchronized,
// the children themselves are persisted with the owner later. Failures fail the pass.
func (l *Listener) drain(ctx context.Context, p *reconcile.Pass, obj model.Identifiable, final reconcile.EntryState, op string) error {
	pending := p.Ledger().Drain(obj, final)
	if pending == nil || pending.Len() == 0 {
		return nil
	}
	start := time.Now()

	exists, err := l.children.Exists(ctx, p, obj)
	if err == nil {
		if exists {
			err = l.children.SynchronizeChildren(ctx, p, obj, pending)
		} else {
			err = l.children.SynchronizeChildReferences(ctx, p, pending)
		}
	}
	if err != nil {
		merr := exception.NewMergeError(op,
			fmt.Sprintf("failed to merge %d pending children of %s (AC: %s)", pending.Len(), obj.Kind(), obj.GetAC()), err)
		l.recorder.RecordError(ctx, obj.Kind(), string(exception.KindMerge))
		p.Fail(merr)
		logger.Errorf("%v", merr)
		return merr
	}

	l.recorder.RecordDuration(ctx, "enrichment_drain", time.Since(start), map[string]string{"kind": string(obj.Kind())})
	logger.Debugf("Drained %d pending children of %s (AC: %s), owner persisted: %t.", pending.Len(), obj.Kind(), obj.GetAC(), exists)
	return nil
}

// Module provides the Listener.
var Module = fx.Options(
	fx.Provide(NewListener),
)
