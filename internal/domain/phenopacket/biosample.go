package phenopacket

import (
	"fmt"

	"github.com/oncopacket/oncopacket/internal/platform/tabular"
)

// Specimen table columns.
const (
	ColSpecimenID         = "specimen_id"
	ColAnatomicalSite     = "anatomical_site"
	ColSourceMaterialType = "source_material_type"
	ColDaysToCollection   = "days_to_collection"
)

var (
	tissue = &OntologyClass{ID: "NCIT:C12801", Label: "Tissue"}
	blood  = &OntologyClass{ID: "NCIT:C12434", Label: "Blood"}
)

type sampleKind struct {
	sampleType  *OntologyClass
	progression *OntologyClass
}

// sampleKinds maps GDC source material types. Normal samples have no tumor
// progression.
var sampleKinds = map[string]sampleKind{
	"Primary Tumor":        {tissue, &OntologyClass{ID: "NCIT:C8509", Label: "Primary Neoplasm"}},
	"Metastatic":           {tissue, &OntologyClass{ID: "NCIT:C3261", Label: "Metastatic Neoplasm"}},
	"Recurrent Tumor":      {tissue, &OntologyClass{ID: "NCIT:C4813", Label: "Recurrent Malignant Neoplasm"}},
	"Solid Tissue Normal":  {tissue, nil},
	"Blood Derived Normal": {blood, nil},
}

// Biosample builds a biosample from one specimen row.
func (f *Factory) Biosample(row tabular.Row) (*Biosample, error) {
	id, ok := row.Get(ColSpecimenID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, ColSpecimenID)
	}
	b := &Biosample{ID: id, IndividualID: row.Value(ColSubjectID)}

	if site, ok := row.Get(ColAnatomicalSite); ok {
		term, err := f.norm.AnatomicalSite(site)
		if err != nil {
			return nil, fmt.Errorf("specimen %s: %w", id, err)
		}
		b.SampledTissue = FromTerm(term)
	}
	if kind, ok := sampleKinds[row.Value(ColSourceMaterialType)]; ok {
		b.SampleType = kind.sampleType
		b.TumorProgression = kind.progression
	}

	b.TimeOfCollection = ageElement(row, ColDaysToCollection)
	return b, nil
}
