// Package model defines the domain objects of the curation store.
//
// An object with an empty AC is transient. Synchronizing it gives it the accession of
// its persisted counterpart, so both converge to the same identity.
package model

import "github.com/google/uuid"

// EntityKind names a persisted entity kind. It doubles as the parent_kind discriminator
// of the polymorphic child tables.
type EntityKind string

const (
	KindCvTerm         EntityKind = "cv_term"
	KindOrganism       EntityKind = "organism"
	KindSource         EntityKind = "source"
	KindInteractor     EntityKind = "interactor"
	KindPublication    EntityKind = "publication"
	KindExperiment     EntityKind = "experiment"
	KindInteraction    EntityKind = "interaction"
	KindComplex        EntityKind = "complex"
	KindParticipant    EntityKind = "participant"
	KindFeature        EntityKind = "feature"
	KindRange          EntityKind = "range"
	KindXref           EntityKind = "xref"
	KindAnnotation     EntityKind = "annotation"
	KindAlias          EntityKind = "alias"
	KindConfidence     EntityKind = "confidence"
	KindParameter      EntityKind = "parameter"
	KindLifecycleEvent EntityKind = "lifecycle_event"
)

// Outcome is the result of reconciling one object.
type Outcome string

const (
	OutcomeInserted Outcome = "inserted"
	OutcomeMerged   Outcome = "merged"
	OutcomeReused   Outcome = "reused"
	OutcomeDeleted  Outcome = "deleted"
)

// Identifiable is implemented by every domain object.
type Identifiable interface {
	GetAC() string
	SetAC(ac string)
	Kind() EntityKind
}

// Owner identifies the parent row of an owned child.
type Owner struct {
	AC   string
	Kind EntityKind
}

// OwnerOf returns the owner reference of obj.
func OwnerOf(obj Identifiable) Owner {
	return Owner{AC: obj.GetAC(), Kind: obj.Kind()}
}

// NewID generates a random identifier, used for reconciliation pass IDs.
func NewID() string {
	return uuid.New().String()
}
