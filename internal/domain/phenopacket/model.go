package phenopacket

import (
	"time"

	"github.com/oncopacket/oncopacket/internal/domain/terminology"
)

// SchemaVersion is the GA4GH Phenopacket schema version emitted in metadata.
const SchemaVersion = "2.0"

// OntologyClass is an ontology term as it appears on the wire.
type OntologyClass struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// FromTerm converts a normalized term.
func FromTerm(t terminology.Term) *OntologyClass {
	return &OntologyClass{ID: t.ID, Label: t.Label}
}

// Sex values.
const (
	SexUnknown = "UNKNOWN_SEX"
	SexFemale  = "FEMALE"
	SexMale    = "MALE"
)

// Phenopacket is the top-level record built for one subject.
type Phenopacket struct {
	ID              string            `json:"id"`
	Subject         *Individual       `json:"subject,omitempty"`
	Diseases        []*Disease        `json:"diseases,omitempty"`
	Biosamples      []*Biosample      `json:"biosamples,omitempty"`
	Interpretations []*Interpretation `json:"interpretations,omitempty"`
	MetaData        *MetaData         `json:"metaData"`
}

// Individual describes the subject.
type Individual struct {
	ID                  string         `json:"id"`
	AlternateIDs        []string       `json:"alternateIds,omitempty"`
	TimeAtLastEncounter *TimeElement   `json:"timeAtLastEncounter,omitempty"`
	VitalStatus         *VitalStatus   `json:"vitalStatus,omitempty"`
	Sex                 string         `json:"sex,omitempty"`
	Taxonomy            *OntologyClass `json:"taxonomy,omitempty"`
}

// TimeElement holds an age as an ISO 8601 duration.
type TimeElement struct {
	Age *Age `json:"age,omitempty"`
}

// Age wraps an ISO 8601 duration string.
type Age struct {
	ISO8601Duration string `json:"iso8601duration"`
}

// AgeElement returns a TimeElement for an ISO 8601 duration.
func AgeElement(iso string) *TimeElement {
	return &TimeElement{Age: &Age{ISO8601Duration: iso}}
}

// VitalStatus of an individual.
type VitalStatus struct {
	Status             terminology.VitalStatus `json:"status"`
	TimeOfDeath        *TimeElement            `json:"timeOfDeath,omitempty"`
	CauseOfDeath       *OntologyClass          `json:"causeOfDeath,omitempty"`
	SurvivalTimeInDays *int                    `json:"survivalTimeInDays,omitempty"`
}

// Disease diagnosed in the subject.
type Disease struct {
	Term         *OntologyClass   `json:"term"`
	Onset        *TimeElement     `json:"onset,omitempty"`
	DiseaseStage []*OntologyClass `json:"diseaseStage,omitempty"`
	PrimarySite  *OntologyClass   `json:"primarySite,omitempty"`
}

// Biosample taken from the subject.
type Biosample struct {
	ID               string         `json:"id"`
	IndividualID     string         `json:"individualId,omitempty"`
	SampledTissue    *OntologyClass `json:"sampledTissue,omitempty"`
	SampleType       *OntologyClass `json:"sampleType,omitempty"`
	TimeOfCollection *TimeElement   `json:"timeOfCollection,omitempty"`
	TumorProgression *OntologyClass `json:"tumorProgression,omitempty"`
}

// Interpretation groups the genomic findings of a subject.
type Interpretation struct {
	ID             string     `json:"id"`
	ProgressStatus string     `json:"progressStatus"`
	Diagnosis      *Diagnosis `json:"diagnosis,omitempty"`
}

// Diagnosis links a disease to its genomic interpretations.
type Diagnosis struct {
	Disease                *OntologyClass           `json:"disease"`
	GenomicInterpretations []*GenomicInterpretation `json:"genomicInterpretations,omitempty"`
}

// GenomicInterpretation wraps one variant.
type GenomicInterpretation struct {
	SubjectOrBiosampleID  string                 `json:"subjectOrBiosampleId"`
	InterpretationStatus  string                 `json:"interpretationStatus"`
	VariantInterpretation *VariantInterpretation `json:"variantInterpretation,omitempty"`
}

// VariantInterpretation wraps a variation descriptor.
type VariantInterpretation struct {
	VariationDescriptor *VariationDescriptor `json:"variationDescriptor"`
}

// VariationDescriptor describes a single somatic variant.
type VariationDescriptor struct {
	ID              string          `json:"id"`
	Expressions     []*Expression   `json:"expressions,omitempty"`
	VcfRecord       *VcfRecord      `json:"vcfRecord,omitempty"`
	GeneContext     *GeneDescriptor `json:"geneContext,omitempty"`
	MoleculeContext string          `json:"moleculeContext,omitempty"`
}

// VcfRecord is a minimal VCF line.
type VcfRecord struct {
	GenomeAssembly string `json:"genomeAssembly"`
	Chrom          string `json:"chrom"`
	Pos            uint64 `json:"pos"`
	ID             string `json:"id"`
	Ref            string `json:"ref"`
	Alt            string `json:"alt"`
}

// Expression is an HGVS (or other syntax) representation of the variant.
type Expression struct {
	Syntax string `json:"syntax"`
	Value  string `json:"value"`
}

// GeneDescriptor names the affected gene.
type GeneDescriptor struct {
	ValueID string `json:"valueId"`
	Symbol  string `json:"symbol"`
}

// MetaData records provenance of a phenopacket.
type MetaData struct {
	Created                  time.Time   `json:"created"`
	CreatedBy                string      `json:"createdBy"`
	Resources                []*Resource `json:"resources,omitempty"`
	PhenopacketSchemaVersion string      `json:"phenopacketSchemaVersion"`
}

// Resource is an ontology referenced by the phenopacket.
type Resource struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	URL             string `json:"url"`
	Version         string `json:"version"`
	NamespacePrefix string `json:"namespacePrefix"`
	IRIPrefix       string `json:"iriPrefix"`
}

// Resources referenced by the terms this module emits.
var (
	ResourceNCIT = &Resource{
		ID: "ncit", Name: "NCI Thesaurus", URL: "http://purl.obolibrary.org/obo/ncit.owl",
		Version: "24.01d", NamespacePrefix: "NCIT", IRIPrefix: "http://purl.obolibrary.org/obo/NCIT_",
	}
	ResourceUBERON = &Resource{
		ID: "uberon", Name: "Uber-anatomy ontology", URL: "http://purl.obolibrary.org/obo/uberon.owl",
		Version: "2024-01-18", NamespacePrefix: "UBERON", IRIPrefix: "http://purl.obolibrary.org/obo/UBERON_",
	}
	ResourceNCBITaxon = &Resource{
		ID: "ncbitaxon", Name: "NCBI organismal classification", URL: "http://purl.obolibrary.org/obo/ncbitaxon.owl",
		Version: "2023-06-20", NamespacePrefix: "NCBITaxon", IRIPrefix: "http://purl.obolibrary.org/obo/NCBITaxon_",
	}
)
