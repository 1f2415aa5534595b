// Package lifecycle applies curation lifecycle transitions to persisted publications and
// complexes.
package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/fx"

	"github.com/tigerroll/intactdb/pkg/intact/core/config"
	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/metrics"
	"github.com/tigerroll/intactdb/pkg/intact/core/reconcile"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
	logger "github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// Store loads and saves the curation state of releasables.
type Store interface {
	// LoadReleasable returns the publication or complex with the given AC, or nil.
	LoadReleasable(ctx context.Context, p *reconcile.Pass, ac string) (model.Releasable, error)
	// SaveCuration writes status, owner and reviewer, including empty values.
	SaveCuration(ctx context.Context, p *reconcile.Pass, rel model.Releasable) error
	// History returns the persisted events of owner, oldest first.
	History(ctx context.Context, p *reconcile.Pass, owner model.Owner) ([]*model.LifecycleEvent, error)
	// ACsInStatus returns the ACs of the releasables of kind in status.
	ACsInStatus(ctx context.Context, p *reconcile.Pass, kind model.EntityKind, status model.Status, pageSize int) ([]string, error)
}

// Manager applies transitions inside a reconciliation pass.
type Manager struct {
	store    Store
	children reconcile.ChildSynchronizer
	recorder metrics.MetricRecorder
	tracer   metrics.Tracer
	location *time.Location
	pageSize int
}

// ManagerParams defines the dependencies of NewManager.
type ManagerParams struct {
	fx.In
	Config   *config.Config
	Store    Store
	Children reconcile.ChildSynchronizer
	Recorder metrics.MetricRecorder
	Tracer   metrics.Tracer
}

// NewManager creates a Manager. Event timestamps use the configured timezone, UTC when unset.
func NewManager(p ManagerParams) (*Manager, error) {
	loc := time.UTC
	if tz := p.Config.Intact.System.Timezone; tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, exception.NewConfigError("lifecycle.NewManager", fmt.Sprintf("invalid timezone '%s'", tz), err)
		}
		loc = l
	}
	return &Manager{
		store:    p.Store,
		children: p.Children,
		recorder: p.Recorder,
		tracer:   p.Tracer,
		location: loc,
		pageSize: p.Config.Intact.Synchronizer.PageSize,
	}, nil
}

func (m *Manager) load(ctx context.Context, p *reconcile.Pass, op, ac string) (model.Releasable, error) {
	rel, err := m.store.LoadReleasable(ctx, p, ac)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		err := exception.NewLifecycleError(op, fmt.Sprintf("no publication or complex with AC '%s'", ac), exception.ErrReleasableNotFound)
		logger.Errorf("%v", err)
		return nil, err
	}
	return rel, nil
}

// Apply loads the releasable with the given AC, moves it along req.Transition, persists the
// new curation state and inserts the event. The persisted event is returned.
func (m *Manager) Apply(ctx context.Context, p *reconcile.Pass, ac string, req model.TransitionRequest) (*model.LifecycleEvent, error) {
	ctx, end := m.tracer.StartSpan(ctx, "lifecycle."+string(req.Transition), map[string]string{"ac": ac})
	defer end()

	rel, err := m.load(ctx, p, "Manager.Apply", ac)
	if err != nil {
		m.tracer.RecordError(ctx, "LifecycleManager", err)
		return nil, err
	}
	if req.OccurredAt.IsZero() {
		req.OccurredAt = time.Now().In(m.location)
	}

	from := rel.CurationState().Status
	event, err := model.Apply(rel, req)
	if err != nil {
		m.recorder.RecordError(ctx, rel.Kind(), string(exception.KindLifecycle))
		m.tracer.RecordError(ctx, "LifecycleManager", err)
		return nil, err
	}
	if err := m.store.SaveCuration(ctx, p, rel); err != nil {
		return nil, err
	}
	pending := &reconcile.PendingUpdates{LifecycleEvents: []*model.LifecycleEvent{event}}
	if err := m.children.SynchronizeChildren(ctx, p, rel, pending); err != nil {
		return nil, err
	}

	to := rel.CurationState().Status
	m.recorder.RecordTransition(ctx, rel.Kind(), req.Transition, to)
	m.tracer.RecordEvent(ctx, string(event.Type), map[string]interface{}{"from": string(from), "to": string(to)})
	logger.Infof("%s %s: %s (%s -> %s) by '%s'.", rel.Kind(), ac, req.Transition, from, to, req.Actor)
	return event, nil
}

// Status returns the current curation status of the releasable with the given AC.
func (m *Manager) Status(ctx context.Context, p *reconcile.Pass, ac string) (model.Status, error) {
	rel, err := m.load(ctx, p, "Manager.Status", ac)
	if err != nil {
		return "", err
	}
	return rel.CurationState().Status, nil
}

// History returns the lifecycle events of the releasable with the given AC, oldest first.
func (m *Manager) History(ctx context.Context, p *reconcile.Pass, ac string) ([]*model.LifecycleEvent, error) {
	rel, err := m.load(ctx, p, "Manager.History", ac)
	if err != nil {
		return nil, err
	}
	return m.store.History(ctx, p, model.OwnerOf(rel))
}

// ReleaseReport is the outcome of ReleaseReady.
type ReleaseReport struct {
	Released []string
	// Failed maps the AC of every publication whose release was rolled back to the cause.
	Failed map[string]error
}

// Err returns the release failures as one error, or nil.
func (r *ReleaseReport) Err() error {
	var result *multierror.Error
	for _, ac := range sortedKeys(r.Failed) {
		result = multierror.Append(result, fmt.Errorf("%s: %w", ac, r.Failed[ac]))
	}
	return result.ErrorOrNil()
}

func sortedKeys(m map[string]error) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ReleaseReady releases every publication in ready-for-release. The candidates are collected
// page by page before the first transition is applied. Each release runs behind its own
// savepoint: a failed release is rolled back and reported without undoing the others.
// The returned error is reserved for failures that leave the pass unusable.
func (m *Manager) ReleaseReady(ctx context.Context, p *reconcile.Pass, actor, note string) (*ReleaseReport, error) {
	start := time.Now()
	acs, err := m.store.ACsInStatus(ctx, p, model.KindPublication, model.StatusReadyForRelease, m.pageSize)
	if err != nil {
		return nil, err
	}
	report := &ReleaseReport{Released: make([]string, 0, len(acs)), Failed: make(map[string]error)}
	for i, ac := range acs {
		savepoint := fmt.Sprintf("release_%d", i)
		if err := p.Executor().Savepoint(savepoint); err != nil {
			return report, exception.NewLifecycleError("Manager.ReleaseReady",
				fmt.Sprintf("failed to create savepoint before releasing %s", ac), err)
		}
		req := model.TransitionRequest{Transition: model.TransitionRelease, Actor: actor, Note: note}
		if _, err := m.Apply(ctx, p, ac, req); err != nil {
			if rbErr := p.Executor().RollbackToSavepoint(savepoint); rbErr != nil {
				return report, exception.NewLifecycleError("Manager.ReleaseReady",
					fmt.Sprintf("failed to roll back the release of %s", ac), multierror.Append(err, rbErr))
			}
			logger.Warnf("Release of publication %s rolled back: %v", ac, err)
			report.Failed[ac] = err
			continue
		}
		report.Released = append(report.Released, ac)
	}
	m.recorder.RecordDuration(ctx, "release_ready", time.Since(start), map[string]string{"kind": string(model.KindPublication)})
	logger.Infof("Released %d publication(s), %d failed.", len(report.Released), len(report.Failed))
	return report, nil
}

// Module provides the Manager.
var Module = fx.Options(
	fx.Provide(NewManager),
)
