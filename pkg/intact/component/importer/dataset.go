// Package importer loads curated datasets from YAML and reconciles them with the store.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
)

// Dataset is the YAML document. Shared vocabulary is declared once under a key and
// referenced by that key from publications and complexes, so every reference to a key
// resolves to the same object.
type Dataset struct {
	CvTerms      map[string]CvTermDoc     `yaml:"cv_terms"`
	Organisms    map[string]OrganismDoc   `yaml:"organisms"`
	Sources      map[string]SourceDoc     `yaml:"sources"`
	Interactors  map[string]InteractorDoc `yaml:"interactors"`
	Publications []PublicationDoc         `yaml:"publications"`
	Complexes    []ComplexDoc             `yaml:"complexes"`
}

type CvTermDoc struct {
	ShortLabel string `yaml:"short_label"`
	FullName   string `yaml:"full_name"`
	MI         string `yaml:"mi"`
	MOD        string `yaml:"mod"`
	PAR        string `yaml:"par"`
	Class      string `yaml:"class"`
}

type OrganismDoc struct {
	TaxID          int    `yaml:"tax_id"`
	CommonName     string `yaml:"common_name"`
	ScientificName string `yaml:"scientific_name"`
}

type SourceDoc struct {
	ShortLabel string `yaml:"short_label"`
	FullName   string `yaml:"full_name"`
	MI         string `yaml:"mi"`
}

type XrefDoc struct {
	Database    string `yaml:"database"`
	ID          string `yaml:"id"`
	SecondaryID string `yaml:"secondary_id"`
	Version     string `yaml:"version"`
	Qualifier   string `yaml:"qualifier"`
}

type AnnotationDoc struct {
	Topic string `yaml:"topic"`
	Value string `yaml:"value"`
}

type AliasDoc struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
}

type ConfidenceDoc struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

type ParameterDoc struct {
	Type        string  `yaml:"type"`
	Unit        string  `yaml:"unit"`
	Factor      float64 `yaml:"factor"`
	Base        int     `yaml:"base"`
	Exponent    int     `yaml:"exponent"`
	Uncertainty float64 `yaml:"uncertainty"`
}

type InteractorDoc struct {
	ShortLabel  string          `yaml:"short_label"`
	FullName    string          `yaml:"full_name"`
	Sequence    string          `yaml:"sequence"`
	Type        string          `yaml:"type"`
	Organism    string          `yaml:"organism"`
	Xrefs       []XrefDoc       `yaml:"xrefs"`
	Annotations []AnnotationDoc `yaml:"annotations"`
	Aliases     []AliasDoc      `yaml:"aliases"`
}

type RangeDoc struct {
	Start       int    `yaml:"start"`
	End         int    `yaml:"end"`
	StartStatus string `yaml:"start_status"`
	EndStatus   string `yaml:"end_status"`
}

type FeatureDoc struct {
	ShortLabel  string          `yaml:"short_label"`
	Type        string          `yaml:"type"`
	Ranges      []RangeDoc      `yaml:"ranges"`
	Xrefs       []XrefDoc       `yaml:"xrefs"`
	Annotations []AnnotationDoc `yaml:"annotations"`
	Aliases     []AliasDoc      `yaml:"aliases"`
}

type ParticipantDoc struct {
	Interactor       string          `yaml:"interactor"`
	BiologicalRole   string          `yaml:"biological_role"`
	ExperimentalRole string          `yaml:"experimental_role"`
	Stoichiometry    [2]int          `yaml:"stoichiometry"`
	Features         []FeatureDoc    `yaml:"features"`
	Confidences      []ConfidenceDoc `yaml:"confidences"`
	Parameters       []ParameterDoc  `yaml:"parameters"`
	Xrefs            []XrefDoc       `yaml:"xrefs"`
	Aliases          []AliasDoc      `yaml:"aliases"`
}

type InteractionDoc struct {
	ShortLabel   string           `yaml:"short_label"`
	Type         string           `yaml:"type"`
	Participants []ParticipantDoc `yaml:"participants"`
	Xrefs        []XrefDoc        `yaml:"xrefs"`
	Annotations  []AnnotationDoc  `yaml:"annotations"`
	Confidences  []ConfidenceDoc  `yaml:"confidences"`
	Parameters   []ParameterDoc   `yaml:"parameters"`
}

type ExperimentDoc struct {
	ShortLabel           string           `yaml:"short_label"`
	HostOrganism         string           `yaml:"host_organism"`
	DetectionMethod      string           `yaml:"detection_method"`
	IdentificationMethod string           `yaml:"identification_method"`
	Interactions         []InteractionDoc `yaml:"interactions"`
	Xrefs                []XrefDoc        `yaml:"xrefs"`
	Annotations          []AnnotationDoc  `yaml:"annotations"`
}

type PublicationDoc struct {
	PubmedID    string          `yaml:"pubmed_id"`
	Title       string          `yaml:"title"`
	Journal     string          `yaml:"journal"`
	Year        int             `yaml:"year"`
	Source      string          `yaml:"source"`
	Experiments []ExperimentDoc `yaml:"experiments"`
	Xrefs       []XrefDoc       `yaml:"xrefs"`
	Annotations []AnnotationDoc `yaml:"annotations"`
}

type ComplexDoc struct {
	ShortLabel   string           `yaml:"short_label"`
	FullName     string           `yaml:"full_name"`
	Organism     string           `yaml:"organism"`
	Type         string           `yaml:"type"`
	Participants []ParticipantDoc `yaml:"participants"`
	Xrefs        []XrefDoc        `yaml:"xrefs"`
	Annotations  []AnnotationDoc  `yaml:"annotations"`
	Aliases      []AliasDoc       `yaml:"aliases"`
	Confidences  []ConfidenceDoc  `yaml:"confidences"`
	Parameters   []ParameterDoc   `yaml:"parameters"`
}

// Decode reads a Dataset. Unknown keys are rejected.
func Decode(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var ds Dataset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &ds, nil
}

// builder turns documents into a domain graph, resolving vocabulary keys to shared objects.
type builder struct {
	ds          *Dataset
	cvTerms     map[string]*model.CvTerm
	organisms   map[string]*model.Organism
	sources     map[string]*model.Source
	interactors map[string]*model.Interactor
	errs        []error
}

// Build resolves every reference and returns the publications and complexes to reconcile.
// All unresolved keys are reported together.
func (ds *Dataset) Build() ([]*model.Publication, []*model.Complex, error) {
	b := &builder{
		ds:          ds,
		cvTerms:     make(map[string]*model.CvTerm, len(ds.CvTerms)),
		organisms:   make(map[string]*model.Organism, len(ds.Organisms)),
		sources:     make(map[string]*model.Source, len(ds.Sources)),
		interactors: make(map[string]*model.Interactor, len(ds.Interactors)),
	}
	pubs := make([]*model.Publication, 0, len(ds.Publications))
	for _, d := range ds.Publications {
		pubs = append(pubs, b.publication(d))
	}
	complexes := make([]*model.Complex, 0, len(ds.Complexes))
	for _, d := range ds.Complexes {
		complexes = append(complexes, b.complex(d))
	}
	if len(b.errs) > 0 {
		return nil, nil, errors.Join(b.errs...)
	}
	return pubs, complexes, nil
}

func (b *builder) cv(key string) *model.CvTerm {
	if key == "" {
		return nil
	}
	if t, ok := b.cvTerms[key]; ok {
		return t
	}
	d, ok := b.ds.CvTerms[key]
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("unknown cv term '%s'", key))
		return nil
	}
	t := &model.CvTerm{
		ShortLabel:    d.ShortLabel,
		FullName:      d.FullName,
		MIIdentifier:  d.MI,
		MODIdentifier: d.MOD,
		PARIdentifier: d.PAR,
		ObjClass:      d.Class,
	}
	if t.ShortLabel == "" {
		t.ShortLabel = key
	}
	b.cvTerms[key] = t
	return t
}

func (b *builder) organism(key string) *model.Organism {
	if key == "" {
		return nil
	}
	if o, ok := b.organisms[key]; ok {
		return o
	}
	d, ok := b.ds.Organisms[key]
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("unknown organism '%s'", key))
		return nil
	}
	o := &model.Organism{TaxID: d.TaxID, CommonName: d.CommonName, ScientificName: d.ScientificName}
	b.organisms[key] = o
	return o
}

func (b *builder) source(key string) *model.Source {
	if key == "" {
		return nil
	}
	if s, ok := b.sources[key]; ok {
		return s
	}
	d, ok := b.ds.Sources[key]
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("unknown source '%s'", key))
		return nil
	}
	s := &model.Source{ShortLabel: d.ShortLabel, FullName: d.FullName, MIIdentifier: d.MI}
	if s.ShortLabel == "" {
		s.ShortLabel = key
	}
	b.sources[key] = s
	return s
}

func (b *builder) interactor(key string) *model.Interactor {
	if i, ok := b.interactors[key]; ok {
		return i
	}
	d, ok := b.ds.Interactors[key]
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("unknown interactor '%s'", key))
		return nil
	}
	i := &model.Interactor{
		ShortLabel:  d.ShortLabel,
		FullName:    d.FullName,
		Sequence:    d.Sequence,
		Type:        b.cv(d.Type),
		Organism:    b.organism(d.Organism),
		Xrefs:       b.xrefs(d.Xrefs),
		Annotations: b.annotations(d.Annotations),
		Aliases:     b.aliases(d.Aliases),
	}
	if i.ShortLabel == "" {
		i.ShortLabel = key
	}
	b.interactors[key] = i
	return i
}

func (b *builder) xrefs(docs []XrefDoc) []*model.Xref {
	var out []*model.Xref
	for _, d := range docs {
		out = append(out, &model.Xref{
			Database:    b.cv(d.Database),
			PrimaryID:   d.ID,
			SecondaryID: d.SecondaryID,
			Version:     d.Version,
			Qualifier:   b.cv(d.Qualifier),
		})
	}
	return out
}

func (b *builder) annotations(docs []AnnotationDoc) []*model.Annotation {
	var out []*model.Annotation
	for _, d := range docs {
		out = append(out, &model.Annotation{Topic: b.cv(d.Topic), Value: d.Value})
	}
	return out
}

func (b *builder) aliases(docs []AliasDoc) []*model.Alias {
	var out []*model.Alias
	for _, d := range docs {
		out = append(out, &model.Alias{Type: b.cv(d.Type), Name: d.Name})
	}
	return out
}

func (b *builder) confidences(docs []ConfidenceDoc) []*model.Confidence {
	var out []*model.Confidence
	for _, d := range docs {
		out = append(out, &model.Confidence{Type: b.cv(d.Type), Value: d.Value})
	}
	return out
}

func (b *builder) parameters(docs []ParameterDoc) []*model.Parameter {
	var out []*model.Parameter
	for _, d := range docs {
		out = append(out, &model.Parameter{
			Type:        b.cv(d.Type),
			Unit:        b.cv(d.Unit),
			Factor:      d.Factor,
			Base:        d.Base,
			Exponent:    d.Exponent,
			Uncertainty: d.Uncertainty,
		})
	}
	return out
}

func (b *builder) participants(docs []ParticipantDoc) []*model.Participant {
	var out []*model.Participant
	for _, d := range docs {
		p := &model.Participant{
			Interactor:       b.interactor(d.Interactor),
			BiologicalRole:   b.cv(d.BiologicalRole),
			ExperimentalRole: b.cv(d.ExperimentalRole),
			StoichiometryMin: d.Stoichiometry[0],
			StoichiometryMax: d.Stoichiometry[1],
			Confidences:      b.confidences(d.Confidences),
			Parameters:       b.parameters(d.Parameters),
			Xrefs:            b.xrefs(d.Xrefs),
			Aliases:          b.aliases(d.Aliases),
		}
		for _, fd := range d.Features {
			f := &model.Feature{
				ShortLabel:  fd.ShortLabel,
				Type:        b.cv(fd.Type),
				Xrefs:       b.xrefs(fd.Xrefs),
				Annotations: b.annotations(fd.Annotations),
				Aliases:     b.aliases(fd.Aliases),
			}
			for _, rd := range fd.Ranges {
				f.Ranges = append(f.Ranges, &model.Range{
					Start:       rd.Start,
					End:         rd.End,
					StartStatus: b.cv(rd.StartStatus),
					EndStatus:   b.cv(rd.EndStatus),
				})
			}
			p.Features = append(p.Features, f)
		}
		out = append(out, p)
	}
	return out
}

func (b *builder) publication(d PublicationDoc) *model.Publication {
	pub := &model.Publication{
		PubmedID:    d.PubmedID,
		Title:       d.Title,
		Journal:     d.Journal,
		Year:        d.Year,
		Source:      b.source(d.Source),
		Xrefs:       b.xrefs(d.Xrefs),
		Annotations: b.annotations(d.Annotations),
	}
	for _, ed := range d.Experiments {
		exp := &model.Experiment{
			ShortLabel:           ed.ShortLabel,
			Publication:          pub,
			HostOrganism:         b.organism(ed.HostOrganism),
			DetectionMethod:      b.cv(ed.DetectionMethod),
			IdentificationMethod: b.cv(ed.IdentificationMethod),
			Xrefs:                b.xrefs(ed.Xrefs),
			Annotations:          b.annotations(ed.Annotations),
		}
		for _, id := range ed.Interactions {
			exp.Interactions = append(exp.Interactions, &model.Interaction{
				ShortLabel:      id.ShortLabel,
				Experiment:      exp,
				InteractionType: b.cv(id.Type),
				Participants:    b.participants(id.Participants),
				Xrefs:           b.xrefs(id.Xrefs),
				Annotations:     b.annotations(id.Annotations),
				Confidences:     b.confidences(id.Confidences),
				Parameters:      b.parameters(id.Parameters),
			})
		}
		pub.Experiments = append(pub.Experiments, exp)
	}
	return pub
}

func (b *builder) complex(d ComplexDoc) *model.Complex {
	return &model.Complex{
		ShortLabel:   d.ShortLabel,
		FullName:     d.FullName,
		Organism:     b.organism(d.Organism),
		Type:         b.cv(d.Type),
		Participants: b.participants(d.Participants),
		Xrefs:        b.xrefs(d.Xrefs),
		Annotations:  b.annotations(d.Annotations),
		Aliases:      b.aliases(d.Aliases),
		Confidences:  b.confidences(d.Confidences),
		Parameters:   b.parameters(d.Parameters),
	}
}
