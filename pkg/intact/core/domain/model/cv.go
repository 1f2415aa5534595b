package model

import "strconv"

// Well-known PSI-MI identifiers.
const (
	// IdentityMI is the xref qualifier marking an identifying cross-reference.
	IdentityMI = "MI:0356"
	// IdentityLabel is the shortlabel of the identity qualifier.
	IdentityLabel = "identity"
)

// CvTerm is a controlled vocabulary term. Its natural key is the first present of the
// MI, MOD and PAR identifiers, falling back to shortlabel within its object class.
type CvTerm struct {
	AC            string
	ShortLabel    string
	FullName      string
	MIIdentifier  string
	MODIdentifier string
	PARIdentifier string
	// ObjClass is the vocabulary the term belongs to, e.g. "database" or "topic".
	ObjClass    string
	Annotations []*Annotation
	Aliases     []*Alias
}

func (t *CvTerm) GetAC() string                  { return t.AC }
func (t *CvTerm) SetAC(ac string)                { t.AC = ac }
func (t *CvTerm) Kind() EntityKind               { return KindCvTerm }
func (t *CvTerm) AnnotationList() *[]*Annotation { return &t.Annotations }
func (t *CvTerm) AliasList() *[]*Alias           { return &t.Aliases }

// IsIdentityQualifier reports whether t is the identity xref qualifier.
func (t *CvTerm) IsIdentityQualifier() bool {
	if t == nil {
		return false
	}
	if t.MIIdentifier != "" {
		return t.MIIdentifier == IdentityMI
	}
	return t.ShortLabel == IdentityLabel
}

// Organism is a biological source organism, keyed by taxonomy id.
type Organism struct {
	AC             string
	TaxID          int
	CommonName     string
	ScientificName string
	Aliases        []*Alias
}

func (o *Organism) GetAC() string        { return o.AC }
func (o *Organism) SetAC(ac string)      { o.AC = ac }
func (o *Organism) Kind() EntityKind     { return KindOrganism }
func (o *Organism) AliasList() *[]*Alias { return &o.Aliases }

// TaxIDString returns the taxonomy id as text.
func (o *Organism) TaxIDString() string { return strconv.Itoa(o.TaxID) }

// Source is the institution that curated a publication.
type Source struct {
	AC           string
	ShortLabel   string
	FullName     string
	MIIdentifier string
	Xrefs        []*Xref
	Annotations  []*Annotation
}

func (s *Source) GetAC() string                  { return s.AC }
func (s *Source) SetAC(ac string)                { s.AC = ac }
func (s *Source) Kind() EntityKind               { return KindSource }
func (s *Source) XrefList() *[]*Xref             { return &s.Xrefs }
func (s *Source) AnnotationList() *[]*Annotation { return &s.Annotations }
