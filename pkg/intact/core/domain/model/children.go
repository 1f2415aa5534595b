package model

import (
	"strconv"
	"strings"
	"time"
)

// Xref is a typed pointer from an entity to an external database record.
type Xref struct {
	AC          string
	Database    *CvTerm
	PrimaryID   string
	SecondaryID string
	Version     string
	Qualifier   *CvTerm
}

func (x *Xref) GetAC() string    { return x.AC }
func (x *Xref) SetAC(ac string)  { x.AC = ac }
func (x *Xref) Kind() EntityKind { return KindXref }

// IsIdentity reports whether the xref identifies its owner.
func (x *Xref) IsIdentity() bool { return x.Qualifier.IsIdentityQualifier() }

// Annotation is a free-text comment under a topic term.
type Annotation struct {
	AC    string
	Topic *CvTerm
	Value string
}

func (a *Annotation) GetAC() string    { return a.AC }
func (a *Annotation) SetAC(ac string)  { a.AC = ac }
func (a *Annotation) Kind() EntityKind { return KindAnnotation }

// Alias is an alternative name of a given type.
type Alias struct {
	AC   string
	Type *CvTerm
	Name string
}

func (a *Alias) GetAC() string    { return a.AC }
func (a *Alias) SetAC(ac string)  { a.AC = ac }
func (a *Alias) Kind() EntityKind { return KindAlias }

// Confidence is a typed confidence score, stored as text.
type Confidence struct {
	AC    string
	Type  *CvTerm
	Value string
}

func (c *Confidence) GetAC() string    { return c.AC }
func (c *Confidence) SetAC(ac string)  { c.AC = ac }
func (c *Confidence) Kind() EntityKind { return KindConfidence }

// Parameter is a measured quantity, factor x base^exponent in the given unit.
type Parameter struct {
	AC          string
	Type        *CvTerm
	Unit        *CvTerm
	Factor      float64
	Base        int
	Exponent    int
	Uncertainty float64
}

func (p *Parameter) GetAC() string    { return p.AC }
func (p *Parameter) SetAC(ac string)  { p.AC = ac }
func (p *Parameter) Kind() EntityKind { return KindParameter }

// Range locates a feature on the interactor sequence.
type Range struct {
	AC          string
	Start       int
	End         int
	StartStatus *CvTerm
	EndStatus   *CvTerm
}

func (r *Range) GetAC() string    { return r.AC }
func (r *Range) SetAC(ac string)  { r.AC = ac }
func (r *Range) Kind() EntityKind { return KindRange }

// LifecycleEvent is an immutable record of one curation transition.
type LifecycleEvent struct {
	AC         string
	Type       EventType
	Actor      string
	OccurredAt time.Time
	Note       string
}

func (e *LifecycleEvent) GetAC() string    { return e.AC }
func (e *LifecycleEvent) SetAC(ac string)  { e.AC = ac }
func (e *LifecycleEvent) Kind() EntityKind { return KindLifecycleEvent }

// CvRef returns the identity used to compare CV references inside natural keys:
// the AC once resolved, otherwise the vocabulary identifier or shortlabel.
func CvRef(t *CvTerm) string {
	switch {
	case t == nil:
		return ""
	case t.AC != "":
		return t.AC
	case t.MIIdentifier != "":
		return t.MIIdentifier
	case t.MODIdentifier != "":
		return t.MODIdentifier
	case t.PARIdentifier != "":
		return t.PARIdentifier
	default:
		return t.ObjClass + "/" + t.ShortLabel
	}
}

func joinKey(parts ...string) string { return strings.Join(parts, "|") }

// XrefKey is the natural key of an xref within its owner.
func XrefKey(x *Xref) string {
	return joinKey(CvRef(x.Database), x.PrimaryID, CvRef(x.Qualifier))
}

// AnnotationKey is the natural key of an annotation within its owner.
func AnnotationKey(a *Annotation) string { return joinKey(CvRef(a.Topic), a.Value) }

// AliasKey is the natural key of an alias within its owner.
func AliasKey(a *Alias) string { return joinKey(CvRef(a.Type), a.Name) }

// ConfidenceKey is the natural key of a confidence within its owner.
func ConfidenceKey(c *Confidence) string { return joinKey(CvRef(c.Type), c.Value) }

// ParameterKey is the natural key of a parameter within its owner.
func ParameterKey(p *Parameter) string {
	return joinKey(CvRef(p.Type), CvRef(p.Unit),
		strconv.FormatFloat(p.Factor, 'g', -1, 64), strconv.Itoa(p.Base), strconv.Itoa(p.Exponent))
}

// RangeKey is the natural key of a range within its feature.
func RangeKey(r *Range) string {
	return joinKey(strconv.Itoa(r.Start), strconv.Itoa(r.End), CvRef(r.StartStatus), CvRef(r.EndStatus))
}
