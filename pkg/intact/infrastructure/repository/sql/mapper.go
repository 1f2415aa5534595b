package sql

import (
	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
)

// --- Mapper functions ---
//
// From* build a row from a domain object whose references are already resolved.
// To* build a shallow domain object; references carry only their AC.

// ACOf returns the AC of a possibly nil reference.
func ACOf[T any, P interface {
	*T
	model.Identifiable
}](ref P) string {
	if ref == nil {
		return ""
	}
	return ref.GetAC()
}

func cvRef(ac string) *model.CvTerm {
	if ac == "" {
		return nil
	}
	return &model.CvTerm{AC: ac}
}

func FromCvTerm(t *model.CvTerm) *CvTermEntity {
	return &CvTermEntity{
		AC:            t.AC,
		ShortLabel:    t.ShortLabel,
		FullName:      t.FullName,
		MIIdentifier:  t.MIIdentifier,
		MODIdentifier: t.MODIdentifier,
		PARIdentifier: t.PARIdentifier,
		ObjClass:      t.ObjClass,
	}
}

func ToCvTerm(e *CvTermEntity) *model.CvTerm {
	return &model.CvTerm{
		AC:            e.AC,
		ShortLabel:    e.ShortLabel,
		FullName:      e.FullName,
		MIIdentifier:  e.MIIdentifier,
		MODIdentifier: e.MODIdentifier,
		PARIdentifier: e.PARIdentifier,
		ObjClass:      e.ObjClass,
	}
}

func FromOrganism(o *model.Organism) *OrganismEntity {
	return &OrganismEntity{AC: o.AC, TaxID: o.TaxID, CommonName: o.CommonName, ScientificName: o.ScientificName}
}

func ToOrganism(e *OrganismEntity) *model.Organism {
	return &model.Organism{AC: e.AC, TaxID: e.TaxID, CommonName: e.CommonName, ScientificName: e.ScientificName}
}

func FromSource(s *model.Source) *SourceEntity {
	return &SourceEntity{AC: s.AC, ShortLabel: s.ShortLabel, FullName: s.FullName, MIIdentifier: s.MIIdentifier}
}

func ToSource(e *SourceEntity) *model.Source {
	return &model.Source{AC: e.AC, ShortLabel: e.ShortLabel, FullName: e.FullName, MIIdentifier: e.MIIdentifier}
}

func FromInteractor(i *model.Interactor) *InteractorEntity {
	return &InteractorEntity{
		AC:         i.AC,
		ShortLabel: i.ShortLabel,
		FullName:   i.FullName,
		Sequence:   i.Sequence,
		TypeAC:     ACOf(i.Type),
		OrganismAC: ACOf(i.Organism),
	}
}

func ToInteractor(e *InteractorEntity) *model.Interactor {
	i := &model.Interactor{
		AC:         e.AC,
		ShortLabel: e.ShortLabel,
		FullName:   e.FullName,
		Sequence:   e.Sequence,
		Type:       cvRef(e.TypeAC),
	}
	if e.OrganismAC != "" {
		i.Organism = &model.Organism{AC: e.OrganismAC}
	}
	return i
}

// FromPublication leaves the curation columns empty. They belong to the lifecycle.
func FromPublication(p *model.Publication) *PublicationEntity {
	return &PublicationEntity{
		AC:       p.AC,
		PubmedID: p.PubmedID,
		Title:    p.Title,
		Journal:  p.Journal,
		Year:     p.Year,
		SourceAC: ACOf(p.Source),
	}
}

func ToPublication(e *PublicationEntity) *model.Publication {
	p := &model.Publication{
		AC:       e.AC,
		PubmedID: e.PubmedID,
		Title:    e.Title,
		Journal:  e.Journal,
		Year:     e.Year,
	}
	if e.SourceAC != "" {
		p.Source = &model.Source{AC: e.SourceAC}
	}
	p.Status, p.Owner, p.Reviewer = e.Status, e.Owner, e.Reviewer
	return p
}

func FromExperiment(x *model.Experiment, publicationAC string) *ExperimentEntity {
	return &ExperimentEntity{
		AC:                     x.AC,
		ShortLabel:             x.ShortLabel,
		PublicationAC:          publicationAC,
		HostOrganismAC:         ACOf(x.HostOrganism),
		DetectionMethodAC:      ACOf(x.DetectionMethod),
		IdentificationMethodAC: ACOf(x.IdentificationMethod),
	}
}

func ToExperiment(e *ExperimentEntity) *model.Experiment {
	x := &model.Experiment{
		AC:                   e.AC,
		ShortLabel:           e.ShortLabel,
		DetectionMethod:      cvRef(e.DetectionMethodAC),
		IdentificationMethod: cvRef(e.IdentificationMethodAC),
	}
	if e.HostOrganismAC != "" {
		x.HostOrganism = &model.Organism{AC: e.HostOrganismAC}
	}
	return x
}

func FromInteraction(i *model.Interaction, experimentAC string) *InteractionEntity {
	return &InteractionEntity{
		AC:                i.AC,
		ShortLabel:        i.ShortLabel,
		ExperimentAC:      experimentAC,
		InteractionTypeAC: ACOf(i.InteractionType),
	}
}

func ToInteraction(e *InteractionEntity) *model.Interaction {
	return &model.Interaction{AC: e.AC, ShortLabel: e.ShortLabel, InteractionType: cvRef(e.InteractionTypeAC)}
}

func FromComplex(c *model.Complex) *ComplexEntity {
	return &ComplexEntity{
		AC:         c.AC,
		ShortLabel: c.ShortLabel,
		FullName:   c.FullName,
		OrganismAC: ACOf(c.Organism),
		TypeAC:     ACOf(c.Type),
	}
}

func ToComplex(e *ComplexEntity) *model.Complex {
	c := &model.Complex{AC: e.AC, ShortLabel: e.ShortLabel, FullName: e.FullName, Type: cvRef(e.TypeAC)}
	if e.OrganismAC != "" {
		c.Organism = &model.Organism{AC: e.OrganismAC}
	}
	c.Status, c.Owner, c.Reviewer = e.Status, e.Owner, e.Reviewer
	return c
}

func FromParticipant(p *model.Participant, owner model.Owner) *ParticipantEntity {
	return &ParticipantEntity{
		AC:                 p.AC,
		ParentAC:           owner.AC,
		ParentKind:         owner.Kind,
		InteractorAC:       ACOf(p.Interactor),
		BiologicalRoleAC:   ACOf(p.BiologicalRole),
		ExperimentalRoleAC: ACOf(p.ExperimentalRole),
		StoichiometryMin:   p.StoichiometryMin,
		StoichiometryMax:   p.StoichiometryMax,
	}
}

func ToParticipant(e *ParticipantEntity) *model.Participant {
	p := &model.Participant{
		AC:               e.AC,
		BiologicalRole:   cvRef(e.BiologicalRoleAC),
		ExperimentalRole: cvRef(e.ExperimentalRoleAC),
		StoichiometryMin: e.StoichiometryMin,
		StoichiometryMax: e.StoichiometryMax,
	}
	if e.InteractorAC != "" {
		p.Interactor = &model.Interactor{AC: e.InteractorAC}
	}
	return p
}

func FromFeature(f *model.Feature, participantAC string) *FeatureEntity {
	return &FeatureEntity{AC: f.AC, ParticipantAC: participantAC, ShortLabel: f.ShortLabel, TypeAC: ACOf(f.Type)}
}

func ToFeature(e *FeatureEntity) *model.Feature {
	return &model.Feature{AC: e.AC, ShortLabel: e.ShortLabel, Type: cvRef(e.TypeAC)}
}

func FromRange(r *model.Range, featureAC string) *RangeEntity {
	return &RangeEntity{
		AC:            r.AC,
		FeatureAC:     featureAC,
		StartPos:      r.Start,
		EndPos:        r.End,
		StartStatusAC: ACOf(r.StartStatus),
		EndStatusAC:   ACOf(r.EndStatus),
	}
}

func ToRange(e *RangeEntity) *model.Range {
	return &model.Range{
		AC:          e.AC,
		Start:       e.StartPos,
		End:         e.EndPos,
		StartStatus: cvRef(e.StartStatusAC),
		EndStatus:   cvRef(e.EndStatusAC),
	}
}

func FromXref(x *model.Xref, owner model.Owner) *XrefEntity {
	return &XrefEntity{
		AC:          x.AC,
		ParentAC:    owner.AC,
		ParentKind:  owner.Kind,
		DatabaseAC:  ACOf(x.Database),
		PrimaryID:   x.PrimaryID,
		SecondaryID: x.SecondaryID,
		Version:     x.Version,
		QualifierAC: ACOf(x.Qualifier),
	}
}

func ToXref(e *XrefEntity) *model.Xref {
	return &model.Xref{
		AC:          e.AC,
		Database:    cvRef(e.DatabaseAC),
		PrimaryID:   e.PrimaryID,
		SecondaryID: e.SecondaryID,
		Version:     e.Version,
		Qualifier:   cvRef(e.QualifierAC),
	}
}

func FromAnnotation(a *model.Annotation, owner model.Owner) *AnnotationEntity {
	return &AnnotationEntity{AC: a.AC, ParentAC: owner.AC, ParentKind: owner.Kind, TopicAC: ACOf(a.Topic), Value: a.Value}
}

func ToAnnotation(e *AnnotationEntity) *model.Annotation {
	return &model.Annotation{AC: e.AC, Topic: cvRef(e.TopicAC), Value: e.Value}
}

func FromAlias(a *model.Alias, owner model.Owner) *AliasEntity {
	return &AliasEntity{AC: a.AC, ParentAC: owner.AC, ParentKind: owner.Kind, TypeAC: ACOf(a.Type), Name: a.Name}
}

func ToAlias(e *AliasEntity) *model.Alias {
	return &model.Alias{AC: e.AC, Type: cvRef(e.TypeAC), Name: e.Name}
}

func FromConfidence(c *model.Confidence, owner model.Owner) *ConfidenceEntity {
	return &ConfidenceEntity{AC: c.AC, ParentAC: owner.AC, ParentKind: owner.Kind, TypeAC: ACOf(c.Type), Value: c.Value}
}

func ToConfidence(e *ConfidenceEntity) *model.Confidence {
	return &model.Confidence{AC: e.AC, Type: cvRef(e.TypeAC), Value: e.Value}
}

func FromParameter(p *model.Parameter, owner model.Owner) *ParameterEntity {
	return &ParameterEntity{
		AC:          p.AC,
		ParentAC:    owner.AC,
		ParentKind:  owner.Kind,
		TypeAC:      ACOf(p.Type),
		UnitAC:      ACOf(p.Unit),
		Factor:      p.Factor,
		Base:        p.Base,
		Exponent:    p.Exponent,
		Uncertainty: p.Uncertainty,
	}
}

func ToParameter(e *ParameterEntity) *model.Parameter {
	return &model.Parameter{
		AC:          e.AC,
		Type:        cvRef(e.TypeAC),
		Unit:        cvRef(e.UnitAC),
		Factor:      e.Factor,
		Base:        e.Base,
		Exponent:    e.Exponent,
		Uncertainty: e.Uncertainty,
	}
}

func FromLifecycleEvent(ev *model.LifecycleEvent, owner model.Owner) *LifecycleEventEntity {
	return &LifecycleEventEntity{
		AC:         ev.AC,
		ParentAC:   owner.AC,
		ParentKind: owner.Kind,
		EventType:  ev.Type,
		Actor:      ev.Actor,
		OccurredAt: ev.OccurredAt,
		Note:       ev.Note,
	}
}

func ToLifecycleEvent(e *LifecycleEventEntity) *model.LifecycleEvent {
	return &model.LifecycleEvent{AC: e.AC, Type: e.EventType, Actor: e.Actor, OccurredAt: e.OccurredAt, Note: e.Note}
}
