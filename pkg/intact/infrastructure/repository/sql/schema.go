package sql

import (
	"time"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
)

// Entity is a persisted row type. Methods use value receivers so that E and *E both qualify.
type Entity interface {
	TableName() string
	Kind() model.EntityKind
	GetAC() string
}

// CvTermEntity is a schema model used for persistence.
type CvTermEntity struct {
	AC            string `gorm:"column:ac;primaryKey"`
	ShortLabel    string `gorm:"column:short_label"`
	FullName      string `gorm:"column:full_name"`
	MIIdentifier  string `gorm:"column:mi_identifier"`
	MODIdentifier string `gorm:"column:mod_identifier"`
	PARIdentifier string `gorm:"column:par_identifier"`
	ObjClass      string `gorm:"column:obj_class"`
}

func (CvTermEntity) TableName() string      { return "ia_cv_term" }
func (CvTermEntity) Kind() model.EntityKind { return model.KindCvTerm }
func (e CvTermEntity) GetAC() string        { return e.AC }

// OrganismEntity is a schema model used for persistence.
type OrganismEntity struct {
	AC             string `gorm:"column:ac;primaryKey"`
	TaxID          int    `gorm:"column:tax_id"`
	CommonName     string `gorm:"column:common_name"`
	ScientificName string `gorm:"column:scientific_name"`
}

func (OrganismEntity) TableName() string      { return "ia_organism" }
func (OrganismEntity) Kind() model.EntityKind { return model.KindOrganism }
func (e OrganismEntity) GetAC() string        { return e.AC }

// SourceEntity is a schema model used for persistence.
type SourceEntity struct {
	AC           string `gorm:"column:ac;primaryKey"`
	ShortLabel   string `gorm:"column:short_label"`
	FullName     string `gorm:"column:full_name"`
	MIIdentifier string `gorm:"column:mi_identifier"`
}

func (SourceEntity) TableName() string      { return "ia_source" }
func (SourceEntity) Kind() model.EntityKind { return model.KindSource }
func (e SourceEntity) GetAC() string        { return e.AC }

// InteractorEntity is a schema model used for persistence.
type InteractorEntity struct {
	AC         string `gorm:"column:ac;primaryKey"`
	ShortLabel string `gorm:"column:short_label"`
	FullName   string `gorm:"column:full_name"`
	Sequence   string `gorm:"column:sequence"`
	TypeAC     string `gorm:"column:type_ac"`
	OrganismAC string `gorm:"column:organism_ac"`
}

func (InteractorEntity) TableName() string      { return "ia_interactor" }
func (InteractorEntity) Kind() model.EntityKind { return model.KindInteractor }
func (e InteractorEntity) GetAC() string        { return e.AC }

// PublicationEntity is a schema model used for persistence.
type PublicationEntity struct {
	AC       string       `gorm:"column:ac;primaryKey"`
	PubmedID string       `gorm:"column:pubmed_id"`
	Title    string       `gorm:"column:title"`
	Journal  string       `gorm:"column:journal"`
	Year     int          `gorm:"column:year"`
	SourceAC string       `gorm:"column:source_ac"`
	Status   model.Status `gorm:"column:status"`
	Owner    string       `gorm:"column:owner"`
	Reviewer string       `gorm:"column:reviewer"`
}

func (PublicationEntity) TableName() string      { return "ia_publication" }
func (PublicationEntity) Kind() model.EntityKind { return model.KindPublication }
func (e PublicationEntity) GetAC() string        { return e.AC }

// ExperimentEntity is a schema model used for persistence.
type ExperimentEntity struct {
	AC                     string `gorm:"column:ac;primaryKey"`
	ShortLabel             string `gorm:"column:short_label"`
	PublicationAC          string `gorm:"column:publication_ac"`
	HostOrganismAC         string `gorm:"column:host_organism_ac"`
	DetectionMethodAC      string `gorm:"column:detection_method_ac"`
	IdentificationMethodAC string `gorm:"column:identification_method_ac"`
}

func (ExperimentEntity) TableName() string      { return "ia_experiment" }
func (ExperimentEntity) Kind() model.EntityKind { return model.KindExperiment }
func (e ExperimentEntity) GetAC() string        { return e.AC }

// InteractionEntity is a schema model used for persistence.
type InteractionEntity struct {
	AC                string `gorm:"column:ac;primaryKey"`
	ShortLabel        string `gorm:"column:short_label"`
	ExperimentAC      string `gorm:"column:experiment_ac"`
	InteractionTypeAC string `gorm:"column:interaction_type_ac"`
}

func (InteractionEntity) TableName() string      { return "ia_interaction" }
func (InteractionEntity) Kind() model.EntityKind { return model.KindInteraction }
func (e InteractionEntity) GetAC() string        { return e.AC }

// ComplexEntity is a schema model used for persistence.
type ComplexEntity struct {
	AC         string       `gorm:"column:ac;primaryKey"`
	ShortLabel string       `gorm:"column:short_label"`
	FullName   string       `gorm:"column:full_name"`
	OrganismAC string       `gorm:"column:organism_ac"`
	TypeAC     string       `gorm:"column:type_ac"`
	Status     model.Status `gorm:"column:status"`
	Owner      string       `gorm:"column:owner"`
	Reviewer   string       `gorm:"column:reviewer"`
}

func (ComplexEntity) TableName() string      { return "ia_complex" }
func (ComplexEntity) Kind() model.EntityKind { return model.KindComplex }
func (e ComplexEntity) GetAC() string        { return e.AC }

// ParticipantEntity is a schema model used for persistence.
type ParticipantEntity struct {
	AC                 string           `gorm:"column:ac;primaryKey"`
	ParentAC           string           `gorm:"column:parent_ac"`
	ParentKind         model.EntityKind `gorm:"column:parent_kind"`
	InteractorAC       string           `gorm:"column:interactor_ac"`
	BiologicalRoleAC   string           `gorm:"column:biological_role_ac"`
	ExperimentalRoleAC string           `gorm:"column:experimental_role_ac"`
	StoichiometryMin   int              `gorm:"column:stoichiometry_min"`
	StoichiometryMax   int              `gorm:"column:stoichiometry_max"`
}

func (ParticipantEntity) TableName() string      { return "ia_participant" }
func (ParticipantEntity) Kind() model.EntityKind { return model.KindParticipant }
func (e ParticipantEntity) GetAC() string        { return e.AC }

// FeatureEntity is a schema model used for persistence.
type FeatureEntity struct {
	AC            string `gorm:"column:ac;primaryKey"`
	ParticipantAC string `gorm:"column:participant_ac"`
	ShortLabel    string `gorm:"column:short_label"`
	TypeAC        string `gorm:"column:type_ac"`
}

func (FeatureEntity) TableName() string      { return "ia_feature" }
func (FeatureEntity) Kind() model.EntityKind { return model.KindFeature }
func (e FeatureEntity) GetAC() string        { return e.AC }

// RangeEntity is a schema model used for persistence.
type RangeEntity struct {
	AC            string `gorm:"column:ac;primaryKey"`
	FeatureAC     string `gorm:"column:feature_ac"`
	StartPos      int    `gorm:"column:start_pos"`
	EndPos        int    `gorm:"column:end_pos"`
	StartStatusAC string `gorm:"column:start_status_ac"`
	EndStatusAC   string `gorm:"column:end_status_ac"`
}

func (RangeEntity) TableName() string      { return "ia_range" }
func (RangeEntity) Kind() model.EntityKind { return model.KindRange }
func (e RangeEntity) GetAC() string        { return e.AC }

// XrefEntity is a schema model used for persistence.
type XrefEntity struct {
	AC          string           `gorm:"column:ac;primaryKey"`
	ParentAC    string           `gorm:"column:parent_ac"`
	ParentKind  model.EntityKind `gorm:"column:parent_kind"`
	DatabaseAC  string           `gorm:"column:database_ac"`
	PrimaryID   string           `gorm:"column:primary_id"`
	SecondaryID string           `gorm:"column:secondary_id"`
	Version     string           `gorm:"column:version"`
	QualifierAC string           `gorm:"column:qualifier_ac"`
}

func (XrefEntity) TableName() string      { return "ia_xref" }
func (XrefEntity) Kind() model.EntityKind { return model.KindXref }
func (e XrefEntity) GetAC() string        { return e.AC }

// AnnotationEntity is a schema model used for persistence.
type AnnotationEntity struct {
	AC         string           `gorm:"column:ac;primaryKey"`
	ParentAC   string           `gorm:"column:parent_ac"`
	ParentKind model.EntityKind `gorm:"column:parent_kind"`
	TopicAC    string           `gorm:"column:topic_ac"`
	Value      string           `gorm:"column:value"`
}

func (AnnotationEntity) TableName() string      { return "ia_annotation" }
func (AnnotationEntity) Kind() model.EntityKind { return model.KindAnnotation }
func (e AnnotationEntity) GetAC() string        { return e.AC }

// AliasEntity is a schema model used for persistence.
type AliasEntity struct {
	AC         string           `gorm:"column:ac;primaryKey"`
	ParentAC   string           `gorm:"column:parent_ac"`
	ParentKind model.EntityKind `gorm:"column:parent_kind"`
	TypeAC     string           `gorm:"column:type_ac"`
	Name       string           `gorm:"column:name"`
}

func (AliasEntity) TableName() string      { return "ia_alias" }
func (AliasEntity) Kind() model.EntityKind { return model.KindAlias }
func (e AliasEntity) GetAC() string        { return e.AC }

// ConfidenceEntity is a schema model used for persistence.
type ConfidenceEntity struct {
	AC         string           `gorm:"column:ac;primaryKey"`
	ParentAC   string           `gorm:"column:parent_ac"`
	ParentKind model.EntityKind `gorm:"column:parent_kind"`
	TypeAC     string           `gorm:"column:type_ac"`
	Value      string           `gorm:"column:value"`
}

func (ConfidenceEntity) TableName() string      { return "ia_confidence" }
func (ConfidenceEntity) Kind() model.EntityKind { return model.KindConfidence }
func (e ConfidenceEntity) GetAC() string        { return e.AC }

// ParameterEntity is a schema model used for persistence.
type ParameterEntity struct {
	AC          string           `gorm:"column:ac;primaryKey"`
	ParentAC    string           `gorm:"column:parent_ac"`
	ParentKind  model.EntityKind `gorm:"column:parent_kind"`
	TypeAC      string           `gorm:"column:type_ac"`
	UnitAC      string           `gorm:"column:unit_ac"`
	Factor      float64          `gorm:"column:factor"`
	Base        int              `gorm:"column:base"`
	Exponent    int              `gorm:"column:exponent"`
	Uncertainty float64          `gorm:"column:uncertainty"`
}

func (ParameterEntity) TableName() string      { return "ia_parameter" }
func (ParameterEntity) Kind() model.EntityKind { return model.KindParameter }
func (e ParameterEntity) GetAC() string        { return e.AC }

// LifecycleEventEntity is a schema model used for persistence.
type LifecycleEventEntity struct {
	AC         string           `gorm:"column:ac;primaryKey"`
	ParentAC   string           `gorm:"column:parent_ac"`
	ParentKind model.EntityKind `gorm:"column:parent_kind"`
	EventType  model.EventType  `gorm:"column:event_type"`
	Actor      string           `gorm:"column:actor"`
	OccurredAt time.Time        `gorm:"column:occurred_at"`
	Note       string           `gorm:"column:note"`
}

func (LifecycleEventEntity) TableName() string      { return "ia_lifecycle_event" }
func (LifecycleEventEntity) Kind() model.EntityKind { return model.KindLifecycleEvent }
func (e LifecycleEventEntity) GetAC() string        { return e.AC }

// SequenceEntity backs accession generation.
type SequenceEntity struct {
	Name    string `gorm:"column:name;primaryKey"`
	Value   int64  `gorm:"column:value"`
	Version int    `gorm:"column:version"`
}

func (SequenceEntity) TableName() string { return "ia_sequence" }
