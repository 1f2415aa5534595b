package model

// Holder interfaces expose owned collections by reference so a synchronizer can replace
// transient entries with their persisted counterparts in place.

type XrefHolder interface {
	Identifiable
	XrefList() *[]*Xref
}

type AnnotationHolder interface {
	Identifiable
	AnnotationList() *[]*Annotation
}

type AliasHolder interface {
	Identifiable
	AliasList() *[]*Alias
}

type ConfidenceHolder interface {
	Identifiable
	ConfidenceList() *[]*Confidence
}

type ParameterHolder interface {
	Identifiable
	ParameterList() *[]*Parameter
}

type ParticipantHolder interface {
	Identifiable
	ParticipantList() *[]*Participant
}

type RangeHolder interface {
	Identifiable
	RangeList() *[]*Range
}

// Interactor is a molecule taking part in interactions. It is identified by its
// identity xref.
type Interactor struct {
	AC          string
	ShortLabel  string
	FullName    string
	Sequence    string
	Type        *CvTerm
	Organism    *Organism
	Xrefs       []*Xref
	Annotations []*Annotation
	Aliases     []*Alias
}

func (i *Interactor) GetAC() string                  { return i.AC }
func (i *Interactor) SetAC(ac string)                { i.AC = ac }
func (i *Interactor) Kind() EntityKind               { return KindInteractor }
func (i *Interactor) XrefList() *[]*Xref             { return &i.Xrefs }
func (i *Interactor) AnnotationList() *[]*Annotation { return &i.Annotations }
func (i *Interactor) AliasList() *[]*Alias           { return &i.Aliases }

// IdentityXrefs returns the xrefs qualified as identity.
func IdentityXrefs(xrefs []*Xref) []*Xref {
	var out []*Xref
	for _, x := range xrefs {
		if x != nil && x.IsIdentity() {
			out = append(out, x)
		}
	}
	return out
}

// Publication groups the experiments curated from one paper.
type Publication struct {
	AC          string
	PubmedID    string
	Title       string
	Journal     string
	Year        int
	Source      *Source
	Experiments []*Experiment
	Xrefs       []*Xref
	Annotations []*Annotation
	Curation
}

func (p *Publication) GetAC() string                  { return p.AC }
func (p *Publication) SetAC(ac string)                { p.AC = ac }
func (p *Publication) Kind() EntityKind               { return KindPublication }
func (p *Publication) XrefList() *[]*Xref             { return &p.Xrefs }
func (p *Publication) AnnotationList() *[]*Annotation { return &p.Annotations }
func (p *Publication) CurationState() *Curation       { return &p.Curation }

// Experiment is one experimental setup described by a publication.
type Experiment struct {
	AC         string
	ShortLabel string
	// Publication is optional when the experiment is synchronized as part of its publication.
	Publication          *Publication
	HostOrganism         *Organism
	DetectionMethod      *CvTerm
	IdentificationMethod *CvTerm
	Interactions         []*Interaction
	Xrefs                []*Xref
	Annotations          []*Annotation
}

func (e *Experiment) GetAC() string                  { return e.AC }
func (e *Experiment) SetAC(ac string)                { e.AC = ac }
func (e *Experiment) Kind() EntityKind               { return KindExperiment }
func (e *Experiment) XrefList() *[]*Xref             { return &e.Xrefs }
func (e *Experiment) AnnotationList() *[]*Annotation { return &e.Annotations }

// Interaction is an observed interaction between participants.
type Interaction struct {
	AC              string
	ShortLabel      string
	Experiment      *Experiment
	InteractionType *CvTerm
	Participants    []*Participant
	Xrefs           []*Xref
	Annotations     []*Annotation
	Confidences     []*Confidence
	Parameters      []*Parameter
}

func (i *Interaction) GetAC() string                    { return i.AC }
func (i *Interaction) SetAC(ac string)                  { i.AC = ac }
func (i *Interaction) Kind() EntityKind                 { return KindInteraction }
func (i *Interaction) XrefList() *[]*Xref               { return &i.Xrefs }
func (i *Interaction) AnnotationList() *[]*Annotation   { return &i.Annotations }
func (i *Interaction) ConfidenceList() *[]*Confidence   { return &i.Confidences }
func (i *Interaction) ParameterList() *[]*Parameter     { return &i.Parameters }
func (i *Interaction) ParticipantList() *[]*Participant { return &i.Participants }

// Complex is a curated stable macromolecular complex.
type Complex struct {
	AC           string
	ShortLabel   string
	FullName     string
	Organism     *Organism
	Type         *CvTerm
	Participants []*Participant
	Xrefs        []*Xref
	Annotations  []*Annotation
	Aliases      []*Alias
	Confidences  []*Confidence
	Parameters   []*Parameter
	Curation
}

func (c *Complex) GetAC() string                    { return c.AC }
func (c *Complex) SetAC(ac string)                  { c.AC = ac }
func (c *Complex) Kind() EntityKind                 { return KindComplex }
func (c *Complex) XrefList() *[]*Xref               { return &c.Xrefs }
func (c *Complex) AnnotationList() *[]*Annotation   { return &c.Annotations }
func (c *Complex) AliasList() *[]*Alias             { return &c.Aliases }
func (c *Complex) ConfidenceList() *[]*Confidence   { return &c.Confidences }
func (c *Complex) ParameterList() *[]*Parameter     { return &c.Parameters }
func (c *Complex) ParticipantList() *[]*Participant { return &c.Participants }
func (c *Complex) CurationState() *Curation         { return &c.Curation }

// Participant is an interactor in the context of one interaction or complex.
type Participant struct {
	AC               string
	Interactor       *Interactor
	BiologicalRole   *CvTerm
	ExperimentalRole *CvTerm
	StoichiometryMin int
	StoichiometryMax int
	Features         []*Feature
	Confidences      []*Confidence
	Parameters       []*Parameter
	Xrefs            []*Xref
	Aliases          []*Alias
}

func (p *Participant) GetAC() string                  { return p.AC }
func (p *Participant) SetAC(ac string)                { p.AC = ac }
func (p *Participant) Kind() EntityKind               { return KindParticipant }
func (p *Participant) XrefList() *[]*Xref             { return &p.Xrefs }
func (p *Participant) AliasList() *[]*Alias           { return &p.Aliases }
func (p *Participant) ConfidenceList() *[]*Confidence { return &p.Confidences }
func (p *Participant) ParameterList() *[]*Parameter   { return &p.Parameters }

// Feature is a region of a participant with a biological role.
type Feature struct {
	AC          string
	ShortLabel  string
	Type        *CvTerm
	Ranges      []*Range
	Xrefs       []*Xref
	Annotations []*Annotation
	Aliases     []*Alias
}

func (f *Feature) GetAC() string                  { return f.AC }
func (f *Feature) SetAC(ac string)                { f.AC = ac }
func (f *Feature) Kind() EntityKind               { return KindFeature }
func (f *Feature) XrefList() *[]*Xref             { return &f.Xrefs }
func (f *Feature) AnnotationList() *[]*Annotation { return &f.Annotations }
func (f *Feature) AliasList() *[]*Alias           { return &f.Aliases }
func (f *Feature) RangeList() *[]*Range           { return &f.Ranges }
