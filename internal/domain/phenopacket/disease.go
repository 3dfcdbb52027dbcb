package phenopacket

import (
	"fmt"

	"github.com/oncopacket/oncopacket/internal/platform/tabular"
)

// Diagnosis table columns.
const (
	ColStage                = "stage"
	ColPrimaryDiagnosisSite = "primary_diagnosis_site"
	ColPrimaryDiagnosis     = "primary_diagnosis"
	ColAgeAtDiagnosis       = "age_at_diagnosis"
)

// MalignantNeoplasm is the disease term assigned to every diagnosis row.
var MalignantNeoplasm = &OntologyClass{ID: "NCIT:C9305", Label: "Malignant Neoplasm"}

// Disease builds a disease from one diagnosis row. fallbackStage, typically
// fetched from GDC, is used when the row has no stage of its own.
//
// Unmapped stages become "Stage Unknown"; an unmapped primary site is an
// error carrying the offending value.
func (f *Factory) Disease(row tabular.Row, fallbackStage string) (*Disease, error) {
	d := &Disease{Term: MalignantNeoplasm}

	stage, ok := row.Get(ColStage)
	if !ok {
		stage = fallbackStage
	}
	d.DiseaseStage = []*OntologyClass{FromTerm(f.norm.Stage(stage))}

	if site, ok := row.Get(ColPrimaryDiagnosisSite); ok {
		term, err := f.norm.AnatomicalSite(site)
		if err != nil {
			return nil, fmt.Errorf("diagnosis of %s: %w", row.Value(ColSubjectID), err)
		}
		d.PrimarySite = FromTerm(term)
	}

	d.Onset = ageElement(row, ColAgeAtDiagnosis)
	return d, nil
}
