// Package synchronizer implements the per-kind reconciliation of domain objects with the
// relational store. Every synchronizer is built from the same find/insert/merge protocol
// and shares a Registry so that a kind can synchronize its references through the
// synchronizer of the referenced kind.
package synchronizer

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/fx"

	"github.com/tigerroll/intactdb/pkg/intact/core/config"
	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/lifecycle"
	"github.com/tigerroll/intactdb/pkg/intact/core/metrics"
	"github.com/tigerroll/intactdb/pkg/intact/core/reconcile"
	sqlrepo "github.com/tigerroll/intactdb/pkg/intact/infrastructure/repository/sql"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
	logger "github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// Registry holds one synchronizer per kind.
type Registry struct {
	recorder metrics.MetricRecorder
	tracer   metrics.Tracer
	acs      *sqlrepo.ACGenerator

	cvTerms      *entitySync[*model.CvTerm, sqlrepo.CvTermEntity]
	organisms    *entitySync[*model.Organism, sqlrepo.OrganismEntity]
	sources      *entitySync[*model.Source, sqlrepo.SourceEntity]
	interactors  *entitySync[*model.Interactor, sqlrepo.InteractorEntity]
	publications *entitySync[*model.Publication, sqlrepo.PublicationEntity]
	experiments  *entitySync[*model.Experiment, sqlrepo.ExperimentEntity]
	interactions *entitySync[*model.Interaction, sqlrepo.InteractionEntity]
	complexes    *entitySync[*model.Complex, sqlrepo.ComplexEntity]
	participants *entitySync[*model.Participant, sqlrepo.ParticipantEntity]
	features     *entitySync[*model.Feature, sqlrepo.FeatureEntity]

	xrefs       *ownedSync[*model.Xref, sqlrepo.XrefEntity]
	annotations *ownedSync[*model.Annotation, sqlrepo.AnnotationEntity]
	aliases     *ownedSync[*model.Alias, sqlrepo.AliasEntity]
	confidences *ownedSync[*model.Confidence, sqlrepo.ConfidenceEntity]
	parameters  *ownedSync[*model.Parameter, sqlrepo.ParameterEntity]
	ranges      *ownedSync[*model.Range, sqlrepo.RangeEntity]
	events      *ownedSync[*model.LifecycleEvent, sqlrepo.LifecycleEventEntity]
}

// NewRegistry wires every synchronizer. Nil recorder or tracer fall back to no-ops.
func NewRegistry(acs *sqlrepo.ACGenerator, recorder metrics.MetricRecorder, tracer metrics.Tracer) *Registry {
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	if tracer == nil {
		tracer = metrics.NewNoOpTracer()
	}
	r := &Registry{recorder: recorder, tracer: tracer, acs: acs}

	r.cvTerms = newCvTermSync(r)
	r.organisms = newOrganismSync(r)
	r.sources = newSourceSync(r)
	r.interactors = newInteractorSync(r)
	r.publications = newPublicationSync(r)
	r.experiments = newExperimentSync(r)
	r.interactions = newInteractionSync(r)
	r.complexes = newComplexSync(r)
	r.participants = newParticipantSync(r)
	r.features = newFeatureSync(r)

	r.xrefs = newXrefSync(r)
	r.annotations = newAnnotationSync(r)
	r.aliases = newAliasSync(r)
	r.confidences = newConfidenceSync(r)
	r.parameters = newParameterSync(r)
	r.ranges = newRangeSync(r)
	r.events = newEventSync(r)
	return r
}

// failed records err against kind and returns it unchanged.
func (r *Registry) failed(ctx context.Context, kind model.EntityKind, err error) error {
	r.recorder.RecordError(ctx, kind, string(exception.KindOf(err)))
	r.tracer.RecordError(ctx, string(kind), err)
	logger.Warnf("Reconciliation of %s failed: %v", kind, err)
	return err
}

func (r *Registry) CvTerms() reconcile.Synchronizer[*model.CvTerm]           { return r.cvTerms }
func (r *Registry) Organisms() reconcile.Synchronizer[*model.Organism]       { return r.organisms }
func (r *Registry) Sources() reconcile.Synchronizer[*model.Source]           { return r.sources }
func (r *Registry) Interactors() reconcile.Synchronizer[*model.Interactor]   { return r.interactors }
func (r *Registry) Publications() reconcile.Synchronizer[*model.Publication] { return r.publications }
func (r *Registry) Experiments() reconcile.Synchronizer[*model.Experiment]   { return r.experiments }
func (r *Registry) Interactions() reconcile.Synchronizer[*model.Interaction] { return r.interactions }
func (r *Registry) Complexes() reconcile.Synchronizer[*model.Complex]        { return r.complexes }
func (r *Registry) Participants() reconcile.Synchronizer[*model.Participant] { return r.participants }
func (r *Registry) Features() reconcile.Synchronizer[*model.Feature]         { return r.features }

// Exists implements reconcile.ChildSynchronizer.
func (r *Registry) Exists(ctx context.Context, p *reconcile.Pass, obj model.Identifiable) (bool, error) {
	ac := obj.GetAC()
	if ac == "" {
		return false, nil
	}
	if _, ok := p.Resolved(obj); ok {
		return true, nil
	}
	exec := p.Executor()
	var (
		n   int64
		err error
	)
	query := sqlrepo.ByAC(ac)
	switch obj.Kind() {
	case model.KindCvTerm:
		n, err = sqlrepo.Count[sqlrepo.CvTermEntity](ctx, exec, query)
	case model.KindOrganism:
		n, err = sqlrepo.Count[sqlrepo.OrganismEntity](ctx, exec, query)
	case model.KindSource:
		n, err = sqlrepo.Count[sqlrepo.SourceEntity](ctx, exec, query)
	case model.KindInteractor:
		n, err = sqlrepo.Count[sqlrepo.InteractorEntity](ctx, exec, query)
	case model.KindPublication:
		n, err = sqlrepo.Count[sqlrepo.PublicationEntity](ctx, exec, query)
	case model.KindExperiment:
		n, err = sqlrepo.Count[sqlrepo.ExperimentEntity](ctx, exec, query)
	case model.KindInteraction:
		n, err = sqlrepo.Count[sqlrepo.InteractionEntity](ctx, exec, query)
	case model.KindComplex:
		n, err = sqlrepo.Count[sqlrepo.ComplexEntity](ctx, exec, query)
	case model.KindParticipant:
		n, err = sqlrepo.Count[sqlrepo.ParticipantEntity](ctx, exec, query)
	case model.KindFeature:
		n, err = sqlrepo.Count[sqlrepo.FeatureEntity](ctx, exec, query)
	default:
		return false, exception.NewFinderError("Registry.Exists", fmt.Sprintf("%s cannot own children", obj.Kind()), nil)
	}
	if err != nil {
		return false, exception.NewFinderError("Registry.Exists", fmt.Sprintf("failed to look up %s %s", obj.Kind(), ac), err)
	}
	return n > 0, nil
}

// SynchronizeChildren implements reconcile.ChildSynchronizer. Each category is merged
// independently; the failures of all categories are returned together.
func (r *Registry) SynchronizeChildren(ctx context.Context, p *reconcile.Pass, owner model.Identifiable, u *reconcile.PendingUpdates) error {
	o := model.OwnerOf(owner)
	var result *multierror.Error

	if len(u.Xrefs) > 0 {
		if h, ok := owner.(model.XrefHolder); ok {
			result = multierror.Append(result, r.xrefs.merge(ctx, p, o, h.XrefList(), u.Xrefs))
		} else {
			result = multierror.Append(result, cannotOwn(owner, model.KindXref))
		}
	}
	if len(u.Annotations) > 0 {
		if h, ok := owner.(model.AnnotationHolder); ok {
			result = multierror.Append(result, r.annotations.merge(ctx, p, o, h.AnnotationList(), u.Annotations))
		} else {
			result = multierror.Append(result, cannotOwn(owner, model.KindAnnotation))
		}
	}
	if len(u.Aliases) > 0 {
		if h, ok := owner.(model.AliasHolder); ok {
			result = multierror.Append(result, r.aliases.merge(ctx, p, o, h.AliasList(), u.Aliases))
		} else {
			result = multierror.Append(result, cannotOwn(owner, model.KindAlias))
		}
	}
	if len(u.Confidences) > 0 {
		if h, ok := owner.(model.ConfidenceHolder); ok {
			result = multierror.Append(result, r.confidences.merge(ctx, p, o, h.ConfidenceList(), u.Confidences))
		} else {
			result = multierror.Append(result, cannotOwn(owner, model.KindConfidence))
		}
	}
	if len(u.Parameters) > 0 {
		if h, ok := owner.(model.ParameterHolder); ok {
			result = multierror.Append(result, r.parameters.merge(ctx, p, o, h.ParameterList(), u.Parameters))
		} else {
			result = multierror.Append(result, cannotOwn(owner, model.KindParameter))
		}
	}
	if len(u.Ranges) > 0 {
		if h, ok := owner.(model.RangeHolder); ok {
			result = multierror.Append(result, r.ranges.merge(ctx, p, o, h.RangeList(), u.Ranges))
		} else {
			result = multierror.Append(result, cannotOwn(owner, model.KindRange))
		}
	}
	if len(u.Participants) > 0 {
		if h, ok := owner.(model.ParticipantHolder); ok {
			result = multierror.Append(result, r.mergeParticipants(ctx, p, o, h.ParticipantList(), u.Participants))
		} else {
			result = multierror.Append(result, cannotOwn(owner, model.KindParticipant))
		}
	}
	if len(u.LifecycleEvents) > 0 {
		if rel, ok := owner.(model.Releasable); ok {
			result = multierror.Append(result, r.events.merge(ctx, p, o, &rel.CurationState().Events, u.LifecycleEvents))
		} else {
			result = multierror.Append(result, cannotOwn(owner, model.KindLifecycleEvent))
		}
	}
	return result.ErrorOrNil()
}

func (r *Registry) mergeParticipants(ctx context.Context, p *reconcile.Pass, owner model.Owner, list *[]*model.Participant, pending []*model.Participant) error {
	pending = nonNil(pending)
	synced := make([]*model.Participant, len(pending))
	for i, part := range pending {
		s, err := r.participants.synchronizeUnder(ctx, p, part, owner, true)
		if err != nil {
			return err
		}
		synced[i] = s
	}
	*list = dedupe(fold(*list, pending, synced))
	return nil
}

// SynchronizeChildReferences implements reconcile.ChildSynchronizer.
func (r *Registry) SynchronizeChildReferences(ctx context.Context, p *reconcile.Pass, u *reconcile.PendingUpdates) error {
	var result *multierror.Error
	result = multierror.Append(result,
		r.xrefs.refsOnly(ctx, p, u.Xrefs),
		r.annotations.refsOnly(ctx, p, u.Annotations),
		r.aliases.refsOnly(ctx, p, u.Aliases),
		r.confidences.refsOnly(ctx, p, u.Confidences),
		r.parameters.refsOnly(ctx, p, u.Parameters),
		r.ranges.refsOnly(ctx, p, u.Ranges),
	)
	for _, part := range nonNil(u.Participants) {
		result = multierror.Append(result, r.participants.refs(ctx, p, part))
	}
	return result.ErrorOrNil()
}

func cannotOwn(owner model.Identifiable, child model.EntityKind) error {
	return exception.NewSynchronizerError("Registry.SynchronizeChildren",
		fmt.Sprintf("%s cannot own %s children", owner.Kind(), child), nil)
}

// NewACGeneratorProvider builds the accession generator from the synchronizer settings.
func NewACGeneratorProvider(cfg *config.SynchronizerConfig) *sqlrepo.ACGenerator {
	return sqlrepo.NewACGenerator(cfg.ACPrefix, cfg.SequenceName, cfg.SequenceAttempts)
}

// Module provides the Registry as the reconcile.ChildSynchronizer and lifecycle.Store of
// the application.
var Module = fx.Options(
	fx.Provide(
		NewACGeneratorProvider,
		fx.Annotate(
			NewRegistry,
			fx.As(fx.Self()),
			fx.As(new(reconcile.ChildSynchronizer)),
			fx.As(new(lifecycle.Store)),
		),
	),
)

var (
	_ reconcile.ChildSynchronizer = (*Registry)(nil)
	_ lifecycle.Store             = (*Registry)(nil)
)
