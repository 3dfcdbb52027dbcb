package phenopacket

import (
	"context"
	"errors"
	"testing"

	"github.com/oncopacket/oncopacket/internal/domain/terminology"
	"github.com/oncopacket/oncopacket/internal/platform/tabular"
)

func newTestNormalizer(t *testing.T) *terminology.Normalizer {
	t.Helper()
	n, err := terminology.NewNormalizer(context.Background(), terminology.NewEmbeddedSource())
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}
	return n
}

func subjectRow() tabular.Row {
	return tabular.Row{
		"subject_id":         "TCGA-05-4244",
		"subject_identifier": "CDA-4244",
		"species":            "human",
		"sex":                "male",
		"days_to_birth":      "-15987.0",
		"vital_status":       "Dead",
		"days_to_death":      "1234.0",
		"cause_of_death":     "Cancer Related",
	}
}

// =========== Individual ===========

func TestFactory_Individual(t *testing.T) {
	f := NewFactory(newTestNormalizer(t))
	ind, err := f.Individual(subjectRow())
	if err != nil {
		t.Fatalf("Individual: %v", err)
	}
	if ind.ID != "TCGA-05-4244" {
		t.Errorf("unexpected id %q", ind.ID)
	}
	if len(ind.AlternateIDs) != 1 || ind.AlternateIDs[0] != "CDA-4244" {
		t.Errorf("unexpected alternate ids %v", ind.AlternateIDs)
	}
	if ind.Sex != SexMale {
		t.Errorf("expected MALE, got %s", ind.Sex)
	}
	if ind.Taxonomy == nil || ind.Taxonomy.ID != "NCBITaxon:9606" {
		t.Errorf("expected human taxonomy, got %+v", ind.Taxonomy)
	}
	if ind.TimeAtLastEncounter == nil || ind.TimeAtLastEncounter.Age.ISO8601Duration != "P43Y9M1W2D" {
		t.Errorf("unexpected age %+v", ind.TimeAtLastEncounter)
	}

	vs := ind.VitalStatus
	if vs == nil {
		t.Fatal("expected vital status")
	}
	if vs.Status != terminology.StatusDeceased {
		t.Errorf("expected DECEASED, got %s", vs.Status)
	}
	if vs.SurvivalTimeInDays == nil || *vs.SurvivalTimeInDays != 1234 {
		t.Errorf("unexpected survival time %v", vs.SurvivalTimeInDays)
	}
	if vs.CauseOfDeath == nil || vs.CauseOfDeath.ID != "NCIT:C3262" {
		t.Errorf("unexpected cause of death %+v", vs.CauseOfDeath)
	}
}

func TestFactory_Individual_MissingID(t *testing.T) {
	f := NewFactory(newTestNormalizer(t))
	row := subjectRow()
	row["subject_id"] = "nan"
	if _, err := f.Individual(row); !errors.Is(err, ErrMissingField) {
		t.Errorf("expected ErrMissingField, got %v", err)
	}
}

func TestFactory_Individual_Sparse(t *testing.T) {
	f := NewFactory(newTestNormalizer(t))
	ind, err := f.Individual(tabular.Row{
		"subject_id":    "S1",
		"sex":           "Not Reported",
		"species":       "mouse",
		"days_to_birth": "unknown",
		"vital_status":  "Not Reported",
	})
	if err != nil {
		t.Fatalf("Individual: %v", err)
	}
	if ind.Sex != SexUnknown {
		t.Errorf("expected UNKNOWN_SEX, got %s", ind.Sex)
	}
	if ind.Taxonomy != nil || ind.TimeAtLastEncounter != nil || ind.VitalStatus != nil {
		t.Errorf("expected optional fields omitted, got %+v", ind)
	}
	if ind.AlternateIDs != nil {
		t.Errorf("expected no alternate ids, got %v", ind.AlternateIDs)
	}
}

func TestFactory_Individual_ZeroAgeOmitted(t *testing.T) {
	f := NewFactory(newTestNormalizer(t))
	ind, err := f.Individual(tabular.Row{"subject_id": "S1", "days_to_birth": "0"})
	if err != nil {
		t.Fatalf("Individual: %v", err)
	}
	if ind.TimeAtLastEncounter != nil {
		t.Errorf("expected zero age to be omitted, got %+v", ind.TimeAtLastEncounter)
	}
}

func TestFactory_VitalStatus(t *testing.T) {
	f := NewFactory(newTestNormalizer(t))
	tests := []struct {
		name      string
		row       tabular.Row
		want      terminology.VitalStatus
		survival  int
		hasCause  bool
		hasStatus bool
	}{
		{"alive", tabular.Row{"vital_status": "Alive"}, terminology.StatusAlive, -1, false, true},
		{"dead with unknown cause", tabular.Row{"vital_status": "Dead", "cause_of_death": "Not Reported"}, terminology.StatusDeceased, -1, false, true},
		{"dead survival zero", tabular.Row{"vital_status": "Dead", "days_to_death": "0"}, terminology.StatusDeceased, 0, false, true},
		{"dead bad survival", tabular.Row{"vital_status": "Dead", "days_to_death": "soon"}, terminology.StatusDeceased, -1, false, true},
		{"dead infection", tabular.Row{"vital_status": "Dead", "cause_of_death": "Infection"}, terminology.StatusDeceased, -1, true, true},
		{"lowercase", tabular.Row{"vital_status": "dead"}, "", -1, false, false},
		{"missing", tabular.Row{}, "", -1, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := f.VitalStatus(tt.row)
			if !tt.hasStatus {
				if vs != nil {
					t.Fatalf("expected nil, got %+v", vs)
				}
				return
			}
			if vs == nil || vs.Status != tt.want {
				t.Fatalf("expected %s, got %+v", tt.want, vs)
			}
			if tt.survival < 0 && vs.SurvivalTimeInDays != nil {
				t.Errorf("expected no survival time, got %d", *vs.SurvivalTimeInDays)
			}
			if tt.survival >= 0 && (vs.SurvivalTimeInDays == nil || *vs.SurvivalTimeInDays != tt.survival) {
				t.Errorf("expected survival %d, got %v", tt.survival, vs.SurvivalTimeInDays)
			}
			if (vs.CauseOfDeath != nil) != tt.hasCause {
				t.Errorf("cause of death = %+v, want present=%v", vs.CauseOfDeath, tt.hasCause)
			}
		})
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"15987", 15987, false},
		{"-15987.0", 15987, false},
		{" 42.9 ", 42, false},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseDays(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDays(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDays(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

// =========== Disease ===========

func TestFactory_Disease(t *testing.T) {
	f := NewFactory(newTestNormalizer(t))
	d, err := f.Disease(tabular.Row{
		"subject_id":             "S1",
		"stage":                  "Stage IIIC1",
		"primary_diagnosis_site": "Lung, NOS",
		"age_at_diagnosis":       "366",
	}, "")
	if err != nil {
		t.Fatalf("Disease: %v", err)
	}
	if d.Term.ID != "NCIT:C9305" {
		t.Errorf("unexpected term %+v", d.Term)
	}
	if len(d.DiseaseStage) != 1 || d.DiseaseStage[0].ID != "NCIT:C95179" {
		t.Errorf("unexpected stage %+v", d.DiseaseStage)
	}
	if d.PrimarySite == nil || d.PrimarySite.ID != "UBERON:0002048" {
		t.Errorf("unexpected primary site %+v", d.PrimarySite)
	}
	if d.Onset == nil || d.Onset.Age.ISO8601Duration != "P1Y1D" {
		t.Errorf("unexpected onset %+v", d.Onset)
	}
}

func TestFactory_Disease_StageFallback(t *testing.T) {
	f := NewFactory(newTestNormalizer(t))

	d, err := f.Disease(tabular.Row{"subject_id": "S1"}, "Stage IVA")
	if err != nil {
		t.Fatalf("Disease: %v", err)
	}
	if d.DiseaseStage[0].ID != "NCIT:C27979" {
		t.Errorf("expected fallback stage, got %+v", d.DiseaseStage[0])
	}
	if d.PrimarySite != nil {
		t.Errorf("expected no primary site, got %+v", d.PrimarySite)
	}

	d, err = f.Disease(tabular.Row{"subject_id": "S1", "stage": "IIIA"}, "Stage IVA")
	if err != nil {
		t.Fatalf("Disease: %v", err)
	}
	if d.DiseaseStage[0].ID != "NCIT:C27977" {
		t.Errorf("row stage must win over fallback, got %+v", d.DiseaseStage[0])
	}
}

func TestFactory_Disease_UnknownStage(t *testing.T) {
	f := NewFactory(newTestNormalizer(t))
	d, err := f.Disease(tabular.Row{"subject_id": "S1", "stage": "Stage X"}, "")
	if err != nil {
		t.Fatalf("Disease: %v", err)
	}
	if d.DiseaseStage[0].ID != terminology.StageUnknown.ID {
		t.Errorf("expected Stage Unknown sentinel, got %+v", d.DiseaseStage[0])
	}
}

func TestFactory_Disease_UnknownSite(t *testing.T) {
	f := NewFactory(newTestNormalizer(t))
	_, err := f.Disease(tabular.Row{"subject_id": "S1", "primary_diagnosis_site": "Elbow"}, "")
	if !errors.Is(err, terminology.ErrLookupFailure) {
		t.Fatalf("expected ErrLookupFailure, got %v", err)
	}
	var le *terminology.LookupError
	if !errors.As(err, &le) || le.Value != "Elbow" {
		t.Errorf("expected LookupError for Elbow, got %v", err)
	}
}

// =========== Biosample ===========

func TestFactory_Biosample(t *testing.T) {
	f := NewFactory(newTestNormalizer(t))
	b, err := f.Biosample(tabular.Row{
		"specimen_id":          "SP-1",
		"subject_id":           "S1",
		"anatomical_site":      "breast",
		"source_material_type": "Primary Tumor",
		"days_to_collection":   "7",
	})
	if err != nil {
		t.Fatalf("Biosample: %v", err)
	}
	if b.ID != "SP-1" || b.IndividualID != "S1" {
		t.Errorf("unexpected ids %+v", b)
	}
	if b.SampledTissue == nil || b.SampledTissue.ID != "UBERON:0000310" {
		t.Errorf("unexpected tissue %+v", b.SampledTissue)
	}
	if b.TumorProgression == nil || b.TumorProgression.ID != "NCIT:C8509" {
		t.Errorf("unexpected progression %+v", b.TumorProgression)
	}
	if b.SampleType == nil || b.SampleType.ID != "NCIT:C12801" {
		t.Errorf("unexpected sample type %+v", b.SampleType)
	}
	if b.TimeOfCollection == nil || b.TimeOfCollection.Age.ISO8601Duration != "P1W" {
		t.Errorf("unexpected collection time %+v", b.TimeOfCollection)
	}
}

func TestFactory_Biosample_Normal(t *testing.T) {
	f := NewFactory(newTestNormalizer(t))
	b, err := f.Biosample(tabular.Row{"specimen_id": "SP-2", "source_material_type": "Blood Derived Normal"})
	if err != nil {
		t.Fatalf("Biosample: %v", err)
	}
	if b.TumorProgression != nil {
		t.Errorf("normal sample must have no progression, got %+v", b.TumorProgression)
	}
	if b.SampleType == nil || b.SampleType.ID != "NCIT:C12434" {
		t.Errorf("expected blood sample type, got %+v", b.SampleType)
	}
}

func TestFactory_Biosample_Errors(t *testing.T) {
	f := NewFactory(newTestNormalizer(t))
	if _, err := f.Biosample(tabular.Row{"subject_id": "S1"}); !errors.Is(err, ErrMissingField) {
		t.Errorf("expected ErrMissingField, got %v", err)
	}
	_, err := f.Biosample(tabular.Row{"specimen_id": "SP-3", "anatomical_site": "Knee"})
	if !errors.Is(err, terminology.ErrLookupFailure) {
		t.Errorf("expected ErrLookupFailure, got %v", err)
	}
}
